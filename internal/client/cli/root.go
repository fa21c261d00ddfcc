// Package cli implements the gophforum command-line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophforum/internal/client/client"
	"github.com/dmitrijs2005/gophforum/internal/client/config"
	"github.com/dmitrijs2005/gophforum/internal/client/services"
)

// needsApp marks commands that talk to the server or the state file;
// help and completion run without them.
const needsApp = "needs-app"

func withApp(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[needsApp] = "true"
	return cmd
}

type rootFlags struct {
	configFile string
	addr       string
	statePath  string
	timeout    time.Duration
}

// NewRootCommand builds the command tree reading prompts from in and
// writing results to out.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	var (
		flags rootFlags
		app   *App
	)

	root := &cobra.Command{
		Use:           "gophforum",
		Short:         "GophForum account client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[needsApp] == "" {
				return nil
			}
			cfg, err := config.Load(flags.configFile)
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg, flags)

			app, err = newApp(cmd.Context(), cfg, in, out)
			return err
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "JSON config file")
	pf.StringVarP(&flags.addr, "addr", "a", "", "server address (host:port)")
	pf.StringVarP(&flags.statePath, "state", "s", "", "local state file")
	pf.DurationVarP(&flags.timeout, "timeout", "t", 0, "per-command timeout")

	appRef := func() *App { return app }
	root.AddCommand(
		withApp(newRegisterCommand(appRef)),
		withApp(newLoginCommand(appRef)),
		withApp(newWhoAmICommand(appRef)),
		withApp(newStatusCommand(appRef)),
		withApp(newLogoutCommand(appRef)),
	)

	// close the app after every command, also when it fails
	for _, c := range root.Commands() {
		run := c.RunE
		c.RunE = func(cmd *cobra.Command, args []string) error {
			defer func() {
				if app != nil {
					_ = app.Close()
				}
			}()
			return run(cmd, args)
		}
	}
	return root
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f rootFlags) {
	if cmd.Flags().Changed("addr") {
		cfg.ServerEndpointAddr = f.addr
	}
	if cmd.Flags().Changed("state") {
		cfg.StatePath = f.statePath
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = f.timeout
	}
}

// describe turns client errors into short user-facing text.
func describe(err error) error {
	switch {
	case errors.Is(err, services.ErrNotLoggedIn):
		return errors.New("not logged in, run 'gophforum login' first")
	case errors.Is(err, client.ErrUnavailable):
		return errors.New("server unavailable")
	}
	return err
}

// Execute runs the client against the process arguments and returns the
// exit code.
func Execute() int {
	if err := NewRootCommand(os.Stdin, os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}
