package commands

import (
	"fmt"
	"io"

	"github.com/pomoyka/pomoyka-client/internal/api"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/spf13/cobra"
)

// NewBookingsCommand creates the bookings command
func NewBookingsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "bookings",
		Aliases:     []string{"b"},
		Short:       "List or cancel your bookings",
		Annotations: sessionRequired,
	}

	cmd.AddCommand(
		newBookingsListCommand(app),
		newBookingsShowCommand(app),
		newBookingsCancelCommand(app),
	)

	return cmd
}

func newBookingsListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bookings, err := app.API.GetMyBookings(cmd.Context())
			if err != nil {
				return historyError(cmd.OutOrStdout(), "bookings", err)
			}
			return printBookings(cmd.OutOrStdout(), bookings)
		},
	}
}

func newBookingsShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [booking-id]",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.API.GetBookingByID(cmd.Context(), args[0])
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("booking %s not found", args[0])
				}
				return fmt.Errorf("failed to load booking: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", b.ID)
			fmt.Fprintf(out, "Center:  %s\n", b.CenterName)
			fmt.Fprintf(out, "Service: %s\n", b.ServiceName)
			fmt.Fprintf(out, "Time:    %s\n", b.BookedTime.Local().Format(displayTimeLayout))
			fmt.Fprintf(out, "Price:   %s\n", formatPrice(b.Price))
			fmt.Fprintf(out, "Status:  %s\n", b.Status)
			return nil
		},
	}
}

func newBookingsCancelCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [booking-id]",
		Short: "Cancel a booking still waiting for payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			b, err := app.API.GetBookingByID(ctx, args[0])
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("booking %s not found", args[0])
				}
				return fmt.Errorf("failed to load booking: %w", err)
			}
			if !b.CanCancel() {
				return fmt.Errorf("booking %s is %s and can no longer be cancelled", b.ID, b.Status)
			}

			bookings, err := app.Coordinator(cmd.InOrStdin(), cmd.OutOrStdout()).CancelWaiting(ctx, b.ID)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Booking %s cancelled\n\n", b.ID)
			return printBookings(cmd.OutOrStdout(), bookings)
		},
	}
}

func printBookings(out io.Writer, bookings []models.Booking) error {
	if len(bookings) == 0 {
		fmt.Fprintln(out, "No bookings yet")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "ID\tTIME\tCENTER\tSERVICE\tPRICE\tSTATUS")
	for _, b := range bookings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID,
			b.BookedTime.Local().Format(displayTimeLayout),
			b.CenterName,
			b.ServiceName,
			formatPrice(b.Price),
			b.Status,
		)
	}
	return w.Flush()
}
