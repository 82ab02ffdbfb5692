package commands

import (
	"fmt"
	"os"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/spf13/cobra"
)

// NewProfileCommand creates the profile command
func NewProfileCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "profile",
		Short:       "Show or update your profile",
		Annotations: sessionRequired,
	}

	cmd.AddCommand(
		newProfileShowCommand(app),
		newProfileUpdateCommand(app),
		newProfileImageCommand(app),
	)

	return cmd
}

func newProfileShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			profile, err := app.API.GetMyProfile(ctx)
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			imageURL, err := app.API.GetUserImageURL(ctx)
			if err != nil {
				app.Logger.WithError(err).Warn("Failed to load profile image")
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:  %s %s\n", profile.FirstName, profile.LastName)
			fmt.Fprintf(out, "Email: %s\n", profile.Email)
			fmt.Fprintf(out, "Role:  %s\n", profile.Role)
			if imageURL != "" {
				fmt.Fprintf(out, "Image: %s\n", imageURL)
			}
			return nil
		},
	}
}

func newProfileUpdateCommand(app *App) *cobra.Command {
	var (
		req      models.UpdateProfileRequest
		password string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update your name, email or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			current, err := app.API.GetMyProfile(ctx)
			if err != nil {
				return fmt.Errorf("failed to load profile: %w", err)
			}

			// Unset flags keep the current values
			if !cmd.Flags().Changed("first-name") {
				req.FirstName = current.FirstName
			}
			if !cmd.Flags().Changed("last-name") {
				req.LastName = current.LastName
			}
			if !cmd.Flags().Changed("email") {
				req.Email = current.Email
			}
			if cmd.Flags().Changed("password") {
				req.Password = &password
			}

			if err := app.API.UpdateMyProfile(ctx, req); err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
			if req.Password != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Password changed, other devices will need to log in again")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "new first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "new last name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "new email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "new password")

	return cmd
}

func newProfileImageCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "image",
		Short: "Manage your profile image",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set [file]",
			Short: "Upload a new profile image",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read image: %w", err)
				}
				if err := app.API.UploadImage(cmd.Context(), args[0], data); err != nil {
					return fmt.Errorf("failed to upload image: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Profile image updated")
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete",
			Short: "Remove your profile image",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.API.DeleteImage(cmd.Context()); err != nil {
					return fmt.Errorf("failed to delete image: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Profile image removed")
				return nil
			},
		},
	)

	return cmd
}
