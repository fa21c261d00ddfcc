package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/gophforum/internal/common"
)

// Prompt seams, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func (a *App) username(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return getSimpleText(a.reader, "Username", a.out)
}

func newRegisterCommand(app func() *App) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "register [username]",
		Short: "Create an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			name, err := a.username(args)
			if err != nil {
				return err
			}
			password, err := getPassword(a.reader, a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			id, err := a.authService.Register(ctx, name, email, password)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(a.out, "Registered %s (id %d)\n", name, id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "optional e-mail address")
	return cmd
}

func newLoginCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and remember the session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			name, err := a.username(args)
			if err != nil {
				return err
			}
			password, err := getPassword(a.reader, a.out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(password)

			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			s, err := a.authService.Login(ctx, name, password)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(a.out, "Logged in as %s, session valid until %s\n", s.Username, s.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func newWhoAmICommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the account of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			id, name, err := a.authService.WhoAmI(ctx)
			if err != nil {
				return describe(err)
			}
			fmt.Fprintf(a.out, "%s (id %d)\n", name, id)
			return nil
		},
	}
}

func newStatusCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check whether the stored session is still honored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			ctx, cancel := a.withTimeout(cmd.Context())
			defer cancel()

			s, ok, err := a.authService.Status(ctx)
			if err != nil {
				return describe(err)
			}
			if !ok {
				fmt.Fprintf(a.out, "Session of %s on %s is no longer valid\n", s.Username, s.Server)
				return nil
			}
			fmt.Fprintf(a.out, "Logged in as %s on %s until %s\n", s.Username, s.Server, s.ExpiresAt.Local().Format(time.RFC1123))
			return nil
		},
	}
}

func newLogoutCommand(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			if err := a.authService.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}
