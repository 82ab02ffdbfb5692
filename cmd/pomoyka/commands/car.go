package commands

import (
	"fmt"

	"github.com/pomoyka/pomoyka-client/internal/api"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/spf13/cobra"
)

// NewCarCommand creates the car command
func NewCarCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "car",
		Short:       "Show or update your car",
		Annotations: sessionRequired,
	}

	cmd.AddCommand(
		newCarShowCommand(app),
		newCarUpdateCommand(app),
	)

	return cmd
}

func newCarShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your car",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			car, err := app.API.GetMyCar(cmd.Context())
			if err != nil {
				if api.IsNotFound(err) {
					fmt.Fprintln(cmd.OutOrStdout(), "No car registered, add one with `pomoyka car update`")
					return nil
				}
				return fmt.Errorf("failed to load car: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Car:   %s\n", car.Name)
			fmt.Fprintf(out, "Plate: %s\n", displayPlate(car.LicensePlate))
			fmt.Fprintf(out, "Type:  %s\n", car.CarType)
			return nil
		},
	}
}

func newCarUpdateCommand(app *App) *cobra.Command {
	var (
		req     models.UpdateCarRequest
		carType string
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Register or update your car",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			current, err := app.API.GetMyCar(ctx)
			if err != nil && !api.IsNotFound(err) {
				return fmt.Errorf("failed to load car: %w", err)
			}
			if current != nil {
				if !cmd.Flags().Changed("name") {
					req.Name = current.Name
				}
				if !cmd.Flags().Changed("plate") {
					req.LicensePlate = current.LicensePlate
				}
				if !cmd.Flags().Changed("type") {
					carType = string(current.CarType)
				}
			}

			p := newPrompter(cmd)
			if err := p.fill(&req.Name, "Car name"); err != nil {
				return err
			}
			if err := p.fill(&req.LicensePlate, "License plate"); err != nil {
				return err
			}
			parsed, err := models.ParseCarType(carType)
			if err != nil {
				return err
			}
			req.CarType = parsed

			if err := app.API.UpdateMyCar(ctx, req); err != nil {
				return fmt.Errorf("failed to update car: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Car updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "car make and model")
	cmd.Flags().StringVar(&req.LicensePlate, "plate", "", "license plate")
	cmd.Flags().StringVar(&carType, "type", string(models.CarTypeHatchback), "car type: hatchback, crossOver or suv")

	return cmd
}
