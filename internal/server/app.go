// Package server initializes and runs the chat server.
// It opens the storage backend, runs migrations, starts the
// synchronization loop and the SSH endpoint, and handles graceful
// shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/shack/internal/logging"
	"github.com/dmitrijs2005/shack/internal/server/chat"
	"github.com/dmitrijs2005/shack/internal/server/config"
	"github.com/dmitrijs2005/shack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/shack/internal/server/services"
	"github.com/dmitrijs2005/shack/internal/server/sshd"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	hub    *chat.Hub
	sshd   *sshd.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("sqlite", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewSQLiteRepositoryManager()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("repository init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	cs := services.NewCredentialService(db, rm, logger)
	ms := services.NewMessageService(db, rm, cfg.HistoryLimit, logger)

	hub := chat.NewHub(ms, cfg.TickInterval, logger)
	srv := sshd.NewServer(cfg.EndpointAddrSSH, cfg.HostKeyPath, cfg.AuthRejectionDelay, cs, hub, logger)

	return &App{config: cfg, logger: logger, db: db, hub: hub, sshd: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startSSHServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.sshd.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.hub.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startSSHServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
