package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface of the REPL. App satisfies it; tests use
// a stub.
type execIface interface {
	Get(ctx context.Context, args []string) error
	Put(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Find(ctx context.Context, args []string) error
	Cached(ctx context.Context, args []string) error
}

var errUnknownCommand = errors.New("unknown command")

const helpText = "Available commands: get, put, delete, (l)ist, sync, find, cached, help, exit"

// dispatch runs one command.
func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "get":
		return a.Get(ctx, args)
	case "put":
		return a.Put(ctx, args)
	case "delete", "rm":
		return a.Delete(ctx, args)
	case "l", "list", "sync":
		return a.List(ctx, args)
	case "find":
		return a.Find(ctx, args)
	case "cached":
		return a.Cached(ctx, args)
	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
	}
}

// runREPL reads commands from scanner until EOF or exit. Command errors are
// printed and the loop goes on.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner, w io.Writer) {
	for {
		fmt.Fprint(w, "gophstore> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			fmt.Fprintln(w, helpText)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			if err := dispatch(ctx, a, parts[0], parts[1:]); err != nil {
				fmt.Fprintln(w, "error:", err)
			}
		}
	}
}
