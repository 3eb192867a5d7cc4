package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dmitrijs2005/gophstore/internal/client/codec"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

const (
	typeText   = "text"
	typeJSON   = "json"
	typeStruct = "struct"
)

// itemFormat turns command line input into a value of a registered type and
// renders such values for output.
type itemFormat struct {
	parse  func(string) (any, error)
	format func(any) (string, error)
}

// itemTypes couples the codec registry with the text form of each type.
// Items without a type hold raw bytes and bypass the registry.
type itemTypes struct {
	registry *codec.Registry
	formats  map[string]itemFormat
}

func newItemTypes() *itemTypes {
	r := codec.NewRegistry()
	codec.Register(r, codec.Text(typeText))
	codec.Register(r, codec.JSON[any](typeJSON))
	codec.Register(r, codec.Proto(typeStruct, func() *structpb.Struct { return &structpb.Struct{} }))

	return &itemTypes{
		registry: r,
		formats: map[string]itemFormat{
			typeText: {
				parse:  func(s string) (any, error) { return s, nil },
				format: func(v any) (string, error) { return fmt.Sprint(v), nil },
			},
			typeJSON: {
				parse: func(s string) (any, error) {
					var v any
					if err := json.Unmarshal([]byte(s), &v); err != nil {
						return nil, err
					}
					return v, nil
				},
				format: func(v any) (string, error) {
					b, err := json.Marshal(v)
					return string(b), err
				},
			},
			typeStruct: {
				parse: func(s string) (any, error) {
					st := &structpb.Struct{}
					if err := protojson.Unmarshal([]byte(s), st); err != nil {
						return nil, err
					}
					return st, nil
				},
				format: func(v any) (string, error) {
					st, ok := v.(*structpb.Struct)
					if !ok {
						return "", fmt.Errorf("unexpected %T", v)
					}
					b, err := protojson.Marshal(st)
					return string(b), err
				},
			},
		},
	}
}

func (t *itemTypes) names() []string {
	names := t.registry.Types()
	sort.Strings(names)
	return names
}

// lookup returns the codec and text form registered for typ.
func (t *itemTypes) lookup(typ string) (codec.Codec[any], itemFormat, error) {
	c, err := t.registry.Lookup(typ)
	if err != nil {
		return codec.Codec[any]{}, itemFormat{}, err
	}
	return c, t.formats[typ], nil
}

// parse reads text as a value of typ.
func (t *itemTypes) parse(typ, text string) (codec.Codec[any], any, error) {
	c, f, err := t.lookup(typ)
	if err != nil {
		return c, nil, err
	}
	v, err := f.parse(text)
	if err != nil {
		return c, nil, fmt.Errorf("%w: invalid %s data: %v", errUsage, typ, err)
	}
	return c, v, nil
}

// render decodes item with the registry and formats it.
func (t *itemTypes) render(item wire.Item) (string, error) {
	if item.Type == "" {
		return string(item.Data), nil
	}
	v, err := t.registry.Decode(item)
	if err != nil {
		return "", err
	}
	return t.formats[item.Type].format(v)
}

func (t *itemTypes) format(typ string, v any) (string, error) {
	return t.formats[typ].format(v)
}
