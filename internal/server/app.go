// Package server wires configuration, storage, the auth services and the
// network endpoints into one runnable application.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/gophforum/internal/logging"
	"github.com/dmitrijs2005/gophforum/internal/server/config"
	"github.com/dmitrijs2005/gophforum/internal/server/credentials"
	"github.com/dmitrijs2005/gophforum/internal/server/metrics"
	"github.com/dmitrijs2005/gophforum/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophforum/internal/server/services"
	"github.com/dmitrijs2005/gophforum/internal/server/sessions"

	gs "github.com/dmitrijs2005/gophforum/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	registry    *prometheus.Registry
	metrics     *metrics.Metrics
}

// NewApp opens the database, applies migrations and builds the services.
// Logs go to out.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {

	logger := logging.NewJSON(out, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN, repomanager.OpenOptions{}, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	creds, err := credentials.NewManager(credentials.Params{
		Time:       c.HashTime,
		Memory:     c.HashMemoryKiB,
		Threads:    c.HashThreads,
		SaltLength: credentials.DefaultParams().SaltLength,
		KeyLength:  credentials.DefaultParams().KeyLength,
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	authority := sessions.NewAuthority(db, rm, sessions.Policy{
		TTL:                      c.SessionTTL,
		TokenLength:              c.TokenLength,
		ResolveRequiresUnexpired: c.ResolveRequiresUnexpired,
	})

	us := services.NewUserService(db, rm, creds, authority, logger)

	registry := metrics.NewRegistry()

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: us,
		registry:    registry,
		metrics:     metrics.NewMetrics(registry),
	}, nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, gs.Options{
		RequestTimeout:     app.config.RequestTimeout,
		LoginRatePerMinute: app.config.LoginRatePerMinute,
		LoginBurst:         app.config.LoginBurst,
		Metrics:            app.metrics,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startMetricsServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := metrics.NewServer(app.config.MetricsAddr, app.registry, app.db, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is done or SIGINT/SIGTERM/SIGQUIT arrives, then
// closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.WithoutCancel(ctx), "db close", "error", err)
	}
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
}

// Main loads the configuration from the process arguments and runs the app.
func Main() int {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	app.Run(ctx)
	return 0
}
