package services

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPollerLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestStatusPoller_StopsAtTerminalStatus(t *testing.T) {
	api := &fakeBookingAPI{statuses: []models.BookingStatus{
		models.BookingStatusWaiting,
		models.BookingStatusWaiting,
		models.BookingStatusCancelled,
	}}
	poller := NewStatusPoller(api, time.Millisecond, 10, newPollerLogger())

	result, err := poller.Poll(context.Background(), "b-1")
	require.NoError(t, err)
	assert.True(t, result.Resolved)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, models.BookingStatusCancelled, result.Booking.Status)
}

func TestStatusPoller_BoundedAttempts(t *testing.T) {
	api := &fakeBookingAPI{statuses: []models.BookingStatus{models.BookingStatusWaiting}}
	poller := NewStatusPoller(api, time.Millisecond, 4, newPollerLogger())

	result, err := poller.Poll(context.Background(), "b-1")
	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Equal(t, 4, result.Attempts)
	assert.Equal(t, 4, api.polls)
}

func TestStatusPoller_EveryFetchFails(t *testing.T) {
	fetchErr := errors.New("boom")
	api := &fakeBookingAPI{pollErrs: map[int]error{1: fetchErr, 2: fetchErr}}
	poller := NewStatusPoller(api, time.Millisecond, 2, newPollerLogger())

	result, err := poller.Poll(context.Background(), "b-1")
	require.NoError(t, err)
	assert.False(t, result.Resolved)
	assert.Nil(t, result.Booking)
	assert.Equal(t, 2, result.Attempts)
}

func TestStatusPoller_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeBookingAPI{
		statuses: []models.BookingStatus{models.BookingStatusWaiting},
		onPoll: func(attempt int) {
			if attempt == 2 {
				cancel()
			}
		},
	}
	poller := NewStatusPoller(api, time.Millisecond, 10, newPollerLogger())

	_, err := poller.Poll(ctx, "b-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewStatusPoller_Defaults(t *testing.T) {
	poller := NewStatusPoller(&fakeBookingAPI{}, 0, 0, newPollerLogger())
	assert.Equal(t, 2*time.Second, poller.interval)
	assert.Equal(t, 10, poller.maxAttempts)
}
