package services

import (
	"context"
	"errors"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
)

var errStillPending = errors.New("booking status is not terminal yet")

// BookingFetcher fetches a booking by id
type BookingFetcher interface {
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
}

// PollResult is the outcome of polling one booking
type PollResult struct {
	Booking  *models.Booking // Last successfully fetched record, nil if every poll failed
	Attempts int
	Resolved bool // Booking reached a terminal status
}

// StatusPoller polls a booking until it reaches a terminal status or the
// attempt bound is exhausted
type StatusPoller struct {
	fetcher     BookingFetcher
	interval    time.Duration
	maxAttempts int
	logger      *logrus.Logger
}

// NewStatusPoller creates a poller. Non-positive settings fall back to 2s and 10 attempts.
func NewStatusPoller(fetcher BookingFetcher, interval time.Duration, maxAttempts int, logger *logrus.Logger) *StatusPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxAttempts < 1 {
		maxAttempts = 10
	}
	return &StatusPoller{
		fetcher:     fetcher,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Poll fetches the booking once per interval. A failed fetch counts as a
// non-terminal attempt. Exhausting the attempts is not an error; only
// context cancellation is.
func (p *StatusPoller) Poll(ctx context.Context, bookingID string) (*PollResult, error) {
	result := &PollResult{}
	backoff := retry.WithMaxRetries(uint64(p.maxAttempts-1), retry.NewConstant(p.interval))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		result.Attempts++

		booking, err := p.fetcher.GetBookingByID(ctx, bookingID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.WithFields(logrus.Fields{
				"booking_id": bookingID,
				"attempt":    result.Attempts,
				"error":      err.Error(),
			}).Warn("Booking status poll failed")
			return retry.RetryableError(err)
		}

		result.Booking = booking
		p.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"attempt":    result.Attempts,
			"status":     booking.Status,
		}).Debug("Booking status polled")

		if booking.Status.IsTerminal() {
			result.Resolved = true
			return nil
		}
		return retry.RetryableError(errStillPending)
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		p.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"attempts":   result.Attempts,
		}).Warn("Booking status still not terminal after maximum attempts")
	}

	return result, nil
}
