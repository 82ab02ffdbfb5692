package commands

import (
	"github.com/spf13/cobra"
)

const (
	// skipApp marks commands that run without configuration or a session
	skipApp = "skip-app"

	// needsSession marks commands, and their subcommands, that need a logged-in user
	needsSession = "needs-session"
)

var sessionRequired = map[string]string{needsSession: "true"}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	app := &App{}
	opts := Options{}

	rootCmd := &cobra.Command{
		Use:           "pomoyka",
		Short:         "Book and pay for car-wash appointments at PoMoyka centers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipApp] == "true" || cmd.Name() == "help" {
				return nil
			}
			if err := app.Open(cmd.Context(), opts, cmd.ErrOrStderr()); err != nil {
				return err
			}
			if requiresSession(cmd) {
				if err := app.RequireSession(); err != nil {
					app.Close()
					return err
				}
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	// Add subcommands
	rootCmd.AddCommand(
		NewLoginCommand(app),
		NewRegisterCommand(app),
		NewLogoutCommand(app),
		NewStatusCommand(app),
		NewProfileCommand(app),
		NewCarCommand(app),
		NewCentersCommand(app),
		NewBookCommand(app),
		NewBookingsCommand(app),
		NewTransactionsCommand(app),
		NewRateCommand(app),
		NewVersionCommand(),
	)

	return rootCmd
}

func requiresSession(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[needsSession] == "true" {
			return true
		}
	}
	return false
}
