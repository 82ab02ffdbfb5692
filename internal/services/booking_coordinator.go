package services

import (
	"context"
	"fmt"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/internal/payment"
	"github.com/sirupsen/logrus"
)

// Notices shown with an outcome
const (
	NoticeConfirmationDelayed = "Payment received, but the booking confirmation is delayed. Check your bookings later."
	NoticePaymentFailed       = "Payment was not completed."
	NoticeBookingCancelled    = "The booking was cancelled."
	NoticeCreateFailed        = "Failed to create booking."
)

// Action is a follow-up offered with an outcome
type Action string

const (
	ActionViewBookings Action = "view_bookings"
	ActionBookAgain    Action = "book_again"
	ActionRetryBooking Action = "retry_booking"
	ActionGoHome       Action = "go_home"
)

// BookingAPI is the part of the backend the coordinator drives
type BookingAPI interface {
	BookingFetcher
	CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.PaymentResponse, error)
	CompleteBooking(ctx context.Context, id string) error
	CancelBooking(ctx context.Context, id string) error
	GetMyBookings(ctx context.Context) ([]models.Booking, error)
}

// CoordinatorConfig holds configuration for the coordinator
type CoordinatorConfig struct {
	Window          BookingWindow
	PollInterval    time.Duration // Delay between status polls (default 2s)
	MaxPollAttempts int           // Status polls before giving up (default 10)
	CheckoutURL     string        // LiqPay form action
	AllowedPrefixes []string      // Navigation targets allowed inside the payment surface
	Now             func() time.Time
}

// DefaultCoordinatorConfig returns default configuration
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Window:          DefaultBookingWindow(),
		PollInterval:    2 * time.Second,
		MaxPollAttempts: 10,
		CheckoutURL:     payment.DefaultCheckoutURL,
		AllowedPrefixes: payment.DefaultAllowedPrefixes,
		Now:             time.Now,
	}
}

// BookingRequest is what the user picked
type BookingRequest struct {
	CenterServiceID string
	BookedTime      time.Time
}

// Outcome is the terminal result of one booking attempt
type Outcome struct {
	State     State
	BookingID string
	Booking   *models.Booking // Record from the last status poll, for display
	Signal    payment.Signal  // Navigation outcome observed on the payment surface
	Delayed   bool            // Success assumed without confirmation
	Notice    string
	Actions   []Action
	Err       error // Cause of a Failed outcome, when there is one
}

// BookingCoordinator drives a booking from creation through external
// payment to a confirmed terminal state
type BookingCoordinator struct {
	api     BookingAPI
	surface payment.NavigationSurface
	gate    *payment.Gate
	poller  *StatusPoller
	config  CoordinatorConfig
	logger  *logrus.Logger

	// OnTransition is called after every handshake transition
	OnTransition func(from, to State)
}

// NewBookingCoordinator creates a new coordinator
func NewBookingCoordinator(
	api BookingAPI,
	surface payment.NavigationSurface,
	config CoordinatorConfig,
	logger *logrus.Logger,
) *BookingCoordinator {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Window == (BookingWindow{}) {
		config.Window = DefaultBookingWindow()
	}
	return &BookingCoordinator{
		api:     api,
		surface: surface,
		gate:    payment.NewGate(config.AllowedPrefixes),
		poller:  NewStatusPoller(api, config.PollInterval, config.MaxPollAttempts, logger),
		config:  config,
		logger:  logger,
	}
}

// ============================================================================
// RUN
// ============================================================================

// Run books and pays for one appointment. Validation errors and context
// cancellation are returned as errors; every other path ends in an Outcome.
func (c *BookingCoordinator) Run(ctx context.Context, req BookingRequest) (*Outcome, error) {
	// 1. Fast-fail on the booking time
	if req.CenterServiceID == "" {
		return nil, fmt.Errorf("a service must be selected")
	}
	if err := c.config.Window.Validate(c.config.Now(), req.BookedTime); err != nil {
		return nil, err
	}

	hs := NewHandshake(c.OnTransition)

	// 2. Create the booking
	created, err := c.api.CreateBooking(ctx, models.CreateBookingRequest{
		CenterServiceID: req.CenterServiceID,
		BookedTime:      req.BookedTime.Format(time.RFC3339), // Keeps the offset the window was checked in
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"center_service_id": req.CenterServiceID,
			"error":             err.Error(),
		}).Error("Failed to create booking")
		if tErr := hs.Transition(StateFailed); tErr != nil {
			return nil, tErr
		}
		return &Outcome{
			State:   StateFailed,
			Notice:  NoticeCreateFailed,
			Actions: failedActions(),
			Err:     err,
		}, nil
	}

	log := c.logger.WithField("booking_id", created.BookingID)
	log.Info("Booking created, awaiting payment")
	if err := hs.Transition(StateAwaitingPaymentRedirect); err != nil {
		return nil, err
	}

	// 3. Watch the payment surface for the outcome
	checkout := payment.Checkout{Data: created.Data, Signature: created.Signature, Action: c.config.CheckoutURL}
	if err := c.awaitPayment(ctx, hs, checkout, log); err != nil {
		return nil, err
	}
	signal := hs.Signal()

	// 4. Tell the backend, best-effort
	c.notify(ctx, created.BookingID, signal, log)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err := hs.Transition(StatePollingStatus); err != nil {
		return nil, err
	}

	// 5. Reconcile with the backend's view
	polled, err := c.poller.Poll(ctx, created.BookingID)
	if err != nil {
		return nil, err
	}

	outcome := c.resolve(created.BookingID, signal, polled)
	if err := hs.Transition(outcome.State); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"state":    outcome.State,
		"signal":   signal.String(),
		"attempts": polled.Attempts,
		"delayed":  outcome.Delayed,
	}).Info("Booking attempt finished")

	return outcome, nil
}

// awaitPayment opens the surface and consumes navigation URLs until the
// handshake accepts a terminal signal. A surface that closes first, or
// cannot be opened, counts as an aborted payment.
func (c *BookingCoordinator) awaitPayment(ctx context.Context, hs *Handshake, checkout payment.Checkout, log *logrus.Entry) error {
	surfaceCtx, closeSurface := context.WithCancel(ctx)
	defer closeSurface()

	urls, err := c.surface.Open(surfaceCtx, checkout)
	if err != nil {
		log.WithError(err).Error("Failed to open payment surface")
		hs.Accept(payment.SignalFailure)
		return nil
	}
	if err := hs.Transition(StatePaymentInProgress); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case url, ok := <-urls:
			if !ok {
				log.Warn("Payment surface closed without an outcome")
				hs.Accept(payment.SignalFailure)
				return nil
			}
			if !c.gate.Allow(url) {
				log.WithField("url", url).Warn("Blocked navigation outside the payment gateway")
				continue
			}

			signal := payment.Classify(url)
			if signal == payment.SignalNone {
				continue
			}
			if hs.Accept(signal) {
				log.WithField("signal", signal.String()).Info("Payment outcome detected")
				return nil
			}
		}
	}
}

func (c *BookingCoordinator) notify(ctx context.Context, bookingID string, signal payment.Signal, log *logrus.Entry) {
	var err error
	if signal == payment.SignalSuccess {
		err = c.api.CompleteBooking(ctx, bookingID)
	} else {
		err = c.api.CancelBooking(ctx, bookingID)
	}
	if err != nil && ctx.Err() == nil {
		log.WithFields(logrus.Fields{
			"signal": signal.String(),
			"error":  err.Error(),
		}).Warn("Failed to notify backend of payment outcome, continuing to status check")
	}
}

func (c *BookingCoordinator) resolve(bookingID string, signal payment.Signal, polled *PollResult) *Outcome {
	outcome := &Outcome{BookingID: bookingID, Booking: polled.Booking, Signal: signal}

	switch {
	case polled.Resolved && polled.Booking.Status == models.BookingStatusDone:
		outcome.State = StateSuccess
	case polled.Resolved:
		outcome.State = StateFailed
		outcome.Notice = NoticeBookingCancelled
		if signal == payment.SignalFailure {
			outcome.Notice = NoticePaymentFailed
		}
	case signal == payment.SignalSuccess:
		outcome.State = StateSuccess
		outcome.Delayed = true
		outcome.Notice = NoticeConfirmationDelayed
	default:
		outcome.State = StateFailed
		outcome.Notice = NoticePaymentFailed
	}

	if outcome.State == StateSuccess {
		outcome.Actions = []Action{ActionViewBookings, ActionBookAgain}
	} else {
		outcome.Actions = failedActions()
	}
	return outcome
}

func failedActions() []Action {
	return []Action{ActionRetryBooking, ActionGoHome}
}

// ============================================================================
// CANCEL FROM LIST
// ============================================================================

// CancelWaiting cancels a booking that is still waiting for payment and
// returns the refreshed booking list
func (c *BookingCoordinator) CancelWaiting(ctx context.Context, bookingID string) ([]models.Booking, error) {
	if err := c.api.CancelBooking(ctx, bookingID); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	c.logger.WithField("booking_id", bookingID).Info("Booking cancelled by user")

	bookings, err := c.api.GetMyBookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("booking cancelled, but failed to refresh bookings: %w", err)
	}
	return bookings, nil
}

// InitialTime suggests the first bookable time shown to the user
func (c *BookingCoordinator) InitialTime() time.Time {
	return c.config.Window.InitialTime(c.config.Now())
}
