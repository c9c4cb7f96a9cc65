// Package server wires the trust core together: store, keyring, challenge
// service, gateway and the default users API.
package server

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/trustkeeper/internal/logging"
	"github.com/dmitrijs2005/trustkeeper/internal/server/challenge"
	"github.com/dmitrijs2005/trustkeeper/internal/server/config"
	"github.com/dmitrijs2005/trustkeeper/internal/server/gateway"
	"github.com/dmitrijs2005/trustkeeper/internal/server/keyring"
	"github.com/dmitrijs2005/trustkeeper/internal/server/models"
	"github.com/dmitrijs2005/trustkeeper/internal/server/store"
	"github.com/dmitrijs2005/trustkeeper/internal/server/users"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	store   store.Store
	users   *users.Service
	gateway *gateway.Gateway
}

// NewApp builds the trust core for c. Logs are JSON lines on logOut.
func NewApp(ctx context.Context, c *config.Config, prompter gateway.Prompter, logOut io.Writer) (*App, error) {
	logger := logging.NewJSONLogger(logOut, slog.LevelInfo, c.Domain)

	st, err := store.New(ctx, logger, c)
	if err != nil {
		return nil, err
	}
	k := keyring.New(st, logger, c)
	ch, err := challenge.New(st, logger, c)
	if err != nil {
		return nil, err
	}

	return &App{
		config:  c,
		logger:  logger,
		store:   st,
		users:   users.NewService(st, logger),
		gateway: gateway.New(logger, c, st, k, ch, prompter),
	}, nil
}

func (app *App) Gateway() *gateway.Gateway {
	return app.gateway
}

// Init loads the domain and installs the super user when needed.
func (app *App) Init(ctx context.Context) (map[string]*models.UserRecord, error) {
	return app.gateway.Init(ctx, app.users)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run initializes the domain and keeps it loaded until ctx is done or a
// termination signal arrives; the cache is flushed on the way out.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting trust core...", "env", app.config.Environment)
	app.initSignalHandler(cancelFunc)

	all, err := app.Init(ctx)
	if err != nil {
		app.logger.Error(ctx, "init failed", "error", err)
		return err
	}
	app.logger.Info(ctx, "domain ready", "users", len(all))

	<-ctx.Done()

	if err := app.store.SaveCache(context.WithoutCancel(ctx)); err != nil {
		app.logger.Error(ctx, "cache flush failed", "error", err)
		return err
	}
	app.logger.Info(ctx, "trust core stopped")
	return nil
}
