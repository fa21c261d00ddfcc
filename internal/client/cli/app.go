package cli

import (
	"bufio"
	"context"
	"errors"
	"io"

	"github.com/dmitrijs2005/gophforum/internal/client/client"
	"github.com/dmitrijs2005/gophforum/internal/client/config"
	"github.com/dmitrijs2005/gophforum/internal/client/services"
)

// App carries what the commands share: settings, the auth service and the
// terminal streams.
type App struct {
	config      *config.Config
	authService services.AuthService
	reader      *bufio.Reader
	out         io.Writer
	closers     []func() error
}

// newApp builds the App for cfg. Tests replace it to inject fakes.
var newApp = func(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) (*App, error) {
	db, err := client.InitDatabase(ctx, cfg.StatePath)
	if err != nil {
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(cfg.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	as := services.NewAuthService(apiClient, db, cfg.ServerEndpointAddr)

	return &App{
		config:      cfg,
		authService: as,
		reader:      bufio.NewReader(in),
		out:         out,
		closers:     []func() error{as.Close, db.Close},
	}, nil
}

// Close releases the connection and the state file.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// withTimeout bounds one command by the configured timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.config.Timeout)
}
