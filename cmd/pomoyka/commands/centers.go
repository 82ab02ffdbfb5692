package commands

import (
	"fmt"
	"io"

	"github.com/pomoyka/pomoyka-client/internal/api"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/spf13/cobra"
)

// NewCentersCommand creates the centers command
func NewCentersCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "centers",
		Aliases:     []string{"c"},
		Short:       "Browse car-wash centers and their prices",
		Annotations: sessionRequired,
	}

	cmd.AddCommand(
		newCentersListCommand(app),
		newCentersShowCommand(app),
	)

	return cmd
}

func newCentersListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all centers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			centers, err := app.API.GetAllCenters(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load centers: %w", err)
			}
			if len(centers) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No centers available")
				return nil
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tADDRESS\tSERVICES")
			for _, c := range centers {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.CenterID, c.CenterName, c.Address, len(c.Services))
			}
			return w.Flush()
		},
	}
}

func newCentersShowCommand(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show [center-id]",
		Short: "Show a center and the prices for your car",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			center, err := app.API.GetCenterByID(ctx, args[0])
			if err != nil {
				if api.IsNotFound(err) {
					return fmt.Errorf("center %s not found", args[0])
				}
				return fmt.Errorf("failed to load center: %w", err)
			}

			services := center.Services
			if !all {
				car, err := app.API.GetMyCar(ctx)
				switch {
				case err == nil:
					services = center.ServicesFor(car.CarType)
				case api.IsNotFound(err):
					// No car yet, show every price
				default:
					app.Logger.WithError(err).Warn("Failed to load car, showing all prices")
				}
			}

			return printCenter(cmd.OutOrStdout(), center, services)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "show prices for every car type")

	return cmd
}

func printCenter(out io.Writer, center *models.Center, services []models.PricedService) error {
	fmt.Fprintf(out, "%s\n%s\n\n", center.CenterName, center.Address)
	if len(services) == 0 {
		fmt.Fprintln(out, "No services available")
		return nil
	}

	w := newTable(out)
	fmt.Fprintln(w, "SERVICE ID\tSERVICE\tCAR TYPE\tPRICE")
	for _, s := range services {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.CenterServiceID, s.ServiceName, s.CarType, formatPrice(s.Price))
	}
	return w.Flush()
}
