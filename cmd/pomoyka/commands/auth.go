package commands

import (
	"fmt"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/spf13/cobra"
)

// NewLoginCommand creates the login command
func NewLoginCommand(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			if err := p.fill(&email, "Email"); err != nil {
				return err
			}
			if err := p.fill(&password, "Password"); err != nil {
				return err
			}

			resp, err := app.Session.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s", email)
			if resp.User != nil && resp.User.Role != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", resp.User.Role)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when omitted)")

	return cmd
}

// NewRegisterCommand creates the register command
func NewRegisterCommand(app *App) *cobra.Command {
	var (
		req     models.RegisterRequest
		carType string
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with a car and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			for _, field := range []struct {
				value *string
				label string
			}{
				{&req.User.FirstName, "First name"},
				{&req.User.LastName, "Last name"},
				{&req.User.Email, "Email"},
				{&req.User.PasswordHash, "Password"},
				{&req.Car.Name, "Car name"},
				{&req.Car.LicensePlate, "License plate"},
			} {
				if err := p.fill(field.value, field.label); err != nil {
					return err
				}
			}

			parsed, err := models.ParseCarType(carType)
			if err != nil {
				return err
			}
			req.Car.CarType = parsed

			result, err := app.Session.Register(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Registered successfully")
			if result.Warning != "" {
				fmt.Fprintf(out, "Warning: %s\n", result.Warning)
			} else {
				fmt.Fprintf(out, "Logged in as %s\n", req.Normalize().User.Email)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.User.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.User.LastName, "last-name", "", "last name")
	cmd.Flags().StringVarP(&req.User.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&req.User.PasswordHash, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&req.Car.Name, "car-name", "", "car make and model")
	cmd.Flags().StringVar(&req.Car.LicensePlate, "plate", "", "license plate")
	cmd.Flags().StringVar(&carType, "car-type", string(models.CarTypeHatchback), "car type: hatchback, crossOver or suv")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			app.Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		},
	}
}

// NewStatusCommand creates the status command
func NewStatusCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session status",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			snap := app.Session.Snapshot()

			fmt.Fprintf(out, "API:     %s\n", app.API.BaseURL())
			fmt.Fprintf(out, "Session: %s\n", snap.Status)
			if !snap.Authenticated() {
				return
			}

			expiry, ok := snap.AccessExpiresAt()
			if !ok {
				return
			}
			if expiry.Before(time.Now()) {
				fmt.Fprintf(out, "Access:  expired %s (refreshed on next request)\n", expiry.Local().Format(displayTimeLayout))
			} else {
				fmt.Fprintf(out, "Access:  valid until %s\n", expiry.Local().Format(displayTimeLayout))
			}
		},
	}
}
