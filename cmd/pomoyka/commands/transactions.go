package commands

import (
	"fmt"
	"strconv"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/spf13/cobra"
)

// NewTransactionsCommand creates the transactions command
func NewTransactionsCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "transactions",
		Aliases:     []string{"tx"},
		Short:       "List your payments and ratings",
		Args:        cobra.NoArgs,
		Annotations: sessionRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			transactions, err := app.API.GetMyTransactions(cmd.Context())
			if err != nil {
				return historyError(cmd.OutOrStdout(), "transactions", err)
			}

			out := cmd.OutOrStdout()
			if len(transactions) == 0 {
				fmt.Fprintln(out, "No transactions yet")
				return nil
			}

			w := newTable(out)
			fmt.Fprintln(w, "ID\tDATE\tCENTER\tSERVICE\tAMOUNT\tRATING")
			for i := range transactions {
				t := &transactions[i]
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID,
					t.CreatedAt.Local().Format(displayTimeLayout),
					t.CenterName,
					t.ServiceName,
					formatPrice(t.Amount),
					formatStars(t.RatingValue),
				)
			}
			return w.Flush()
		},
	}
}

// NewRateCommand creates the rate command
func NewRateCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "rate [transaction-id] [stars]",
		Short:       "Rate a paid visit from 1 to 5 stars",
		Args:        cobra.ExactArgs(2),
		Annotations: sessionRequired,
		RunE: func(cmd *cobra.Command, args []string) error {
			stars, err := strconv.Atoi(args[1])
			if err != nil || stars < 1 || stars > models.MaxRatingValue+1 {
				return fmt.Errorf("stars must be a number from 1 to %d, got %q", models.MaxRatingValue+1, args[1])
			}

			req := models.CreateRatingRequest{
				TransactionID: args[0],
				RatingValue:   models.RatingFromStars(stars),
			}
			if err := app.API.CreateRating(cmd.Context(), req); err != nil {
				return fmt.Errorf("failed to rate transaction: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Thanks! Rated %s\n", formatStars(&req.RatingValue))
			return nil
		},
	}
}
