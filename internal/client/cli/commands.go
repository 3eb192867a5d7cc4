package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophstore/internal/client/codec"
	"github.com/dmitrijs2005/gophstore/internal/client/services"
	"github.com/dmitrijs2005/gophstore/internal/wire"
)

var errUsage = errors.New("usage")

// untyped marks an item whose data is stored as given.
const untyped = "-"

// Get prints items by key. With -t every item must be of that type.
func (a *App) Get(ctx context.Context, args []string) error {
	if len(args) >= 2 && args[0] == "-t" {
		return a.getTyped(ctx, args[1], args[2:])
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: get [-t type] <key>...", errUsage)
	}

	items, err := a.items.Get(ctx, args...)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "not found")
		return nil
	}
	for _, it := range items {
		a.printItem(it)
	}
	return nil
}

func (a *App) getTyped(ctx context.Context, typ string, keys []string) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: get -t <type> <key>...", errUsage)
	}
	c, _, err := a.types.lookup(typ)
	if err != nil {
		return err
	}

	values, err := services.GetAs(ctx, a.items, c, keys...)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		fmt.Fprintln(a.out, "not found")
		return nil
	}
	for _, k := range keys {
		if v, ok := values[k]; ok {
			a.printValue(k, typ, v)
		}
	}
	return nil
}

// Put stores one item. Data comes from the remaining args or is prompted
// for. The type must be registered unless it is "-".
func (a *App) Put(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: put <key> [type] [data...]; types: %s, %s",
			errUsage, strings.Join(a.types.names(), ", "), untyped)
	}

	key, typ := args[0], untyped
	if len(args) > 1 {
		typ = args[1]
	}
	var data string
	if len(args) > 2 {
		data = strings.Join(args[2:], " ")
	} else {
		var err error
		if data, err = GetMultiline(a.reader, "Data", a.out); err != nil {
			return err
		}
	}

	var (
		stored []wire.Item
		err    error
	)
	if typ == untyped {
		stored, err = a.items.Put(ctx, wire.PutItem{Key: key, Data: []byte(data)})
	} else {
		c, v, perr := a.types.parse(typ, data)
		if perr != nil {
			return perr
		}
		stored, err = services.PutAs(ctx, a.items, c, codec.Entry[any]{Key: key, Value: v})
	}
	if err != nil {
		return err
	}
	for _, it := range stored {
		fmt.Fprintf(a.out, "stored %s (version %d)\n", it.Key, it.Version)
	}
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: delete <key>...", errUsage)
	}
	if err := a.items.Delete(ctx, args...); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %d key(s)\n", len(args))
	return nil
}

// List refreshes the cached window under the prefix and prints it.
func (a *App) List(ctx context.Context, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	res, err := a.views.Refresh(ctx, prefix)
	if err != nil {
		return err
	}

	switch {
	case res.Reset:
		fmt.Fprintf(a.out, "window reset, %d item(s)\n", len(res.Items))
	case res.Synced:
		fmt.Fprintf(a.out, "synced %d change(s)\n", res.Changes)
	}
	a.printItems(res.Items)
	return nil
}

// Find lists the items of one type under a prefix straight from the server.
func (a *App) Find(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: find <type> [prefix]", errUsage)
	}
	typ, prefix := args[0], ""
	if len(args) > 1 {
		prefix = args[1]
	}
	c, _, err := a.types.lookup(typ)
	if err != nil {
		return err
	}

	entries, err := services.ListAs(ctx, a.items, c, prefix, wire.ListOptions{Limit: a.config.PageSize})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "(empty)")
		return nil
	}
	for _, e := range entries {
		a.printValue(e.Key, typ, e.Value)
	}
	return nil
}

// Cached prints the cached window without contacting the server.
func (a *App) Cached(ctx context.Context, args []string) error {
	prefix := ""
	if len(args) > 0 {
		prefix = args[0]
	}

	items, err := a.views.Items(ctx, prefix)
	if err != nil {
		return err
	}
	a.printItems(items)
	return nil
}

func (a *App) printItems(items []wire.Item) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "(empty)")
		return
	}
	for _, it := range items {
		a.printItem(it)
	}
}

// printItem prints the item header and its decoded value. Items that cannot
// be decoded are still listed, with the reason.
func (a *App) printItem(it wire.Item) {
	typ := it.Type
	if typ == "" {
		typ = untyped
	}
	fmt.Fprintf(a.out, "%s\t%s\tv%d\n", it.Key, typ, it.Version)

	text, err := a.types.render(it)
	switch {
	case err != nil:
		fmt.Fprintf(a.out, "  ! %v\n", err)
	case text != "":
		fmt.Fprintf(a.out, "  %s\n", text)
	}
}

func (a *App) printValue(key, typ string, v any) {
	fmt.Fprintf(a.out, "%s\t%s\n", key, typ)
	text, err := a.types.format(typ, v)
	if err != nil {
		fmt.Fprintf(a.out, "  ! %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "  %s\n", text)
}
