package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/services"
	"github.com/spf13/cobra"
)

// transitionMessages describes the non-terminal handshake steps
var transitionMessages = map[services.State]string{
	services.StateAwaitingPaymentRedirect: "Booking created, opening payment",
	services.StatePaymentInProgress:       "Waiting for payment",
	services.StateNotifyingComplete:       "Payment received, confirming booking",
	services.StateNotifyingCancel:         "Payment not completed, cancelling booking",
	services.StatePollingStatus:           "Checking booking status",
}

var actionHints = map[services.Action]string{
	services.ActionViewBookings: "view your bookings: pomoyka bookings list",
	services.ActionBookAgain:    "book again: pomoyka book",
	services.ActionRetryBooking: "try again: pomoyka book",
	services.ActionGoHome:       "browse centers: pomoyka centers list",
}

// NewBookCommand creates the book command
func NewBookCommand(app *App) *cobra.Command {
	var serviceID, rawTime string

	cmd := &cobra.Command{
		Use:         "book",
		Short:       "Book a service and pay for it",
		Long:        "Book a service and pay for it through LiqPay. The payment page is written to a file; paste the addresses it lands on until the outcome is detected.",
		Args:        cobra.NoArgs,
		Annotations: sessionRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			coordinator := app.Coordinator(cmd.InOrStdin(), out)

			bookedTime := defaultBookedTime(coordinator.InitialTime(), time.Now())
			if rawTime != "" {
				parsed, err := parseBookedTime(rawTime, time.Local)
				if err != nil {
					return err
				}
				bookedTime = parsed
			}

			fmt.Fprintf(out, "Booking %s for %s\n", serviceID, bookedTime.Format(displayTimeLayout))
			coordinator.OnTransition = func(from, to services.State) {
				if msg, ok := transitionMessages[to]; ok {
					fmt.Fprintf(out, "... %s\n", msg)
				}
			}

			outcome, err := coordinator.Run(cmd.Context(), services.BookingRequest{
				CenterServiceID: serviceID,
				BookedTime:      bookedTime,
			})
			if err != nil {
				return err
			}

			return printOutcome(out, outcome)
		},
	}

	cmd.Flags().StringVarP(&serviceID, "service", "s", "", "center service id (see `pomoyka centers show`)")
	cmd.Flags().StringVarP(&rawTime, "time", "t", "", "booking time, YYYY-MM-DD HH:MM local (defaults to the next bookable hour)")
	_ = cmd.MarkFlagRequired("service")

	return cmd
}

// printOutcome reports the outcome and returns an error for a failed booking
func printOutcome(out io.Writer, outcome *services.Outcome) error {
	if outcome.State == services.StateSuccess {
		fmt.Fprintln(out, "Booking confirmed")
	} else {
		fmt.Fprintln(out, "Booking failed")
	}

	if b := outcome.Booking; b != nil {
		fmt.Fprintf(out, "  %s, %s\n", b.CenterName, b.ServiceName)
		fmt.Fprintf(out, "  %s, %s\n", b.BookedTime.Local().Format(displayTimeLayout), formatPrice(b.Price))
	}
	if outcome.BookingID != "" {
		fmt.Fprintf(out, "  Booking ID: %s\n", outcome.BookingID)
	}
	if outcome.Notice != "" {
		fmt.Fprintln(out, outcome.Notice)
	}

	hints := make([]string, 0, len(outcome.Actions))
	for _, action := range outcome.Actions {
		if hint, ok := actionHints[action]; ok {
			hints = append(hints, hint)
		}
	}
	if len(hints) > 0 {
		fmt.Fprintf(out, "Next: %s\n", strings.Join(hints, "; "))
	}

	if outcome.State == services.StateSuccess {
		return nil
	}
	if outcome.Err != nil {
		return fmt.Errorf("booking failed: %w", outcome.Err)
	}
	return errors.New("booking failed")
}
