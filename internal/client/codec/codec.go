// Package codec adapts application types to stored items. The runtime never
// interprets item bytes itself; callers hand it a Codec for each type.
package codec

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophstore/internal/common"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"google.golang.org/protobuf/proto"
)

// Codec converts between T and the bytes of items whose Type is Type.
type Codec[T any] struct {
	Type      string
	Marshal   func(T) ([]byte, error)
	Unmarshal func([]byte) (T, error)
}

// Entry is a value to be stored under Key.
type Entry[T any] struct {
	Key   string
	Value T
}

// Proto builds a codec for a protobuf message type. newFn returns an empty
// message to unmarshal into.
func Proto[T proto.Message](typeName string, newFn func() T) Codec[T] {
	return Codec[T]{
		Type: typeName,
		Marshal: func(v T) ([]byte, error) {
			return proto.Marshal(v)
		},
		Unmarshal: func(b []byte) (T, error) {
			v := newFn()
			if err := proto.Unmarshal(b, v); err != nil {
				var zero T
				return zero, err
			}
			return v, nil
		},
	}
}

// JSON builds a codec that stores T as JSON.
func JSON[T any](typeName string) Codec[T] {
	return Codec[T]{
		Type: typeName,
		Marshal: func(v T) ([]byte, error) {
			return json.Marshal(v)
		},
		Unmarshal: func(b []byte) (T, error) {
			var v T
			err := json.Unmarshal(b, &v)
			return v, err
		},
	}
}

// Text stores strings as their raw bytes.
func Text(typeName string) Codec[string] {
	return Codec[string]{
		Type: typeName,
		Marshal: func(v string) ([]byte, error) {
			return []byte(v), nil
		},
		Unmarshal: func(b []byte) (string, error) {
			return string(b), nil
		},
	}
}

// Decode checks the item's type and unmarshals it.
func Decode[T any](c Codec[T], item wire.Item) (T, error) {
	var zero T
	if item.Type != c.Type {
		return zero, common.NewError(common.CodeTypeMismatch, "item %q has type %q, want %q", item.Key, item.Type, c.Type)
	}
	v, err := c.Unmarshal(item.Data)
	if err != nil {
		return zero, common.WrapError(common.CodeUnmarshal, err, "item %q", item.Key)
	}
	return v, nil
}

// Decoder returns Decode bound to c, in the shape cursors expect.
func (c Codec[T]) Decoder() func(wire.Item) (T, error) {
	return func(item wire.Item) (T, error) {
		return Decode(c, item)
	}
}

// Encode marshals v into a put item under key.
func Encode[T any](c Codec[T], key string, v T) (wire.PutItem, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return wire.PutItem{}, common.WrapError(common.CodeMarshal, err, "item %q", key)
	}
	return wire.PutItem{Key: key, Type: c.Type, Data: b}, nil
}

// Registry resolves type names for code that handles heterogeneous items,
// such as the CLI. Values are stored untyped as any.
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec[any]
}

func NewRegistry() *Registry {
	return &Registry{codecs: map[string]Codec[any]{}}
}

// Register adds c to r under c.Type.
func Register[T any](r *Registry, c Codec[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codecs[c.Type] = Codec[any]{
		Type: c.Type,
		Marshal: func(v any) ([]byte, error) {
			t, ok := v.(T)
			if !ok {
				return nil, fmt.Errorf("cannot store %T as %q", v, c.Type)
			}
			return c.Marshal(t)
		},
		Unmarshal: func(b []byte) (any, error) {
			v, err := c.Unmarshal(b)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Lookup returns the codec registered for typeName.
func (r *Registry) Lookup(typeName string) (Codec[any], error) {
	r.mu.RLock()
	c, ok := r.codecs[typeName]
	r.mu.RUnlock()
	if !ok {
		return Codec[any]{}, common.NewError(common.CodeUnknownItemType, "unknown item type %q", typeName)
	}
	return c, nil
}

// Types lists the registered type names in no particular order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.codecs))
	for name := range r.codecs {
		out = append(out, name)
	}
	return out
}

// Decode unmarshals item with the codec registered for its type.
func (r *Registry) Decode(item wire.Item) (any, error) {
	c, err := r.Lookup(item.Type)
	if err != nil {
		return nil, common.NewError(common.CodeUnknownItemType, "item %q has unknown type %q", item.Key, item.Type)
	}
	return Decode(c, item)
}
