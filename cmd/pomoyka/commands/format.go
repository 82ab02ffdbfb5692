package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/api"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/pkg/validator"
)

const displayTimeLayout = "2006-01-02 15:04"

// bookedTimeLayouts are accepted for --time, most specific first
var bookedTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	displayTimeLayout,
}

// parseBookedTime reads a booking time. Layouts without an offset are read in loc.
func parseBookedTime(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for i, layout := range bookedTimeLayouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid booking time %q, use YYYY-MM-DD HH:MM", raw)
}

// defaultBookedTime is the suggested time moved forward to the next full
// hour once the suggestion has already started
func defaultBookedTime(suggested, now time.Time) time.Time {
	if suggested.After(now) {
		return suggested
	}
	return suggested.Add(time.Hour)
}

func formatPrice(amount float64) string {
	return fmt.Sprintf("%.2f UAH", amount)
}

func formatStars(value *int) string {
	if value == nil || *value < models.MinRatingValue || *value > models.MaxRatingValue {
		return "-"
	}
	stars := *value + 1
	return strings.Repeat("★", stars) + strings.Repeat("☆", models.MaxRatingValue+1-stars)
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

// displayPlate spaces a plate as AA 1234 BB; plates in another format are
// shown as stored
func displayPlate(plate string) string {
	formatted, err := validator.NewPlateValidator().Format(plate)
	if err != nil {
		return plate
	}
	return formatted
}

// historyError renders a failed history load. A 403 means the account is not
// a client account: the history is hidden and the command still succeeds.
func historyError(out io.Writer, what string, err error) error {
	switch {
	case api.IsForbidden(err):
		fmt.Fprintf(out, "%s are only kept for client accounts; this account is signed in with an administrator role.\n", strings.ToUpper(what[:1])+what[1:])
		return nil
	case api.IsTransient(err):
		return fmt.Errorf("failed to load %s, check your connection and try again: %w", what, err)
	default:
		return fmt.Errorf("failed to load %s: %w", what, err)
	}
}
