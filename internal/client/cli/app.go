package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/client/auth"
	"github.com/dmitrijs2005/gophstore/internal/client/cache"
	"github.com/dmitrijs2005/gophstore/internal/client/client"
	"github.com/dmitrijs2005/gophstore/internal/client/config"
	"github.com/dmitrijs2005/gophstore/internal/client/services"
	"github.com/dmitrijs2005/gophstore/internal/logging"
	"github.com/dmitrijs2005/gophstore/internal/wire"
	"google.golang.org/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger

	remote *client.GRPCClient
	cache  *cache.Store
	items  *services.ItemService
	views  *services.ViewService
	types  *itemTypes

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the cache and connects to the server described by c. An
// empty secret is prompted for.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if c.Secret == "" {
		secret, err := GetSecret(os.Stderr)
		if err != nil {
			return nil, err
		}
		c.Secret = string(secret)
	}

	logger := logging.NewJSONLogger(os.Stderr, slog.LevelWarn)
	return newApp(ctx, c, logger, bufio.NewReader(os.Stdin), os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, in *bufio.Reader, out io.Writer, dialOpts ...grpc.DialOption) (*App, error) {
	store, err := cache.Open(ctx, c.CacheDSN)
	if err != nil {
		return nil, fmt.Errorf("error initializing cache: %w", err)
	}

	remote, err := client.New(c.ServerEndpointAddr,
		client.WithLogger(logger),
		client.WithDialOptions(dialOpts...),
		client.WithSecret(c.Secret,
			auth.WithRetry(c.RetryBase, c.RetryMax, c.RetryAttempts),
		),
	)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &App{
		config: c,
		logger: logger,
		remote: remote,
		cache:  store,
		items:  services.NewItemService(remote),
		views:  services.NewViewService(remote, store, wire.ListOptions{Limit: c.PageSize}, logger),
		types:  newItemTypes(),
		reader: in,
		out:    out,
	}, nil
}

func (a *App) Close() error {
	err := a.remote.Close()
	if cerr := a.cache.Close(); err == nil {
		err = cerr
	}
	return err
}

// Run executes args as a single command, or starts the REPL when args is
// empty.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "gophstore CLI (type 'help' for commands)")
		runREPL(ctx, a, bufio.NewScanner(a.reader), a.out)
		return nil
	}
	return dispatch(ctx, a, args[0], args[1:])
}
