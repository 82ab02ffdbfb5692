package services

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBookingInPast is returned for a booking time not strictly in the future
	ErrBookingInPast = errors.New("booking time must be in the future")

	// ErrOutsideWorkingHours is returned for a booking time outside the bookable window
	ErrOutsideWorkingHours = errors.New("booking time is outside working hours")
)

// BookingWindow is the daily bookable window in local hours. The closing
// hour itself is bookable on the hour only.
type BookingWindow struct {
	OpenHour  int
	CloseHour int
}

// DefaultBookingWindow returns the 08:00-18:00 window
func DefaultBookingWindow() BookingWindow {
	return BookingWindow{OpenHour: 8, CloseHour: 18}
}

// Validate checks t against now and the window. Hours are read in t's location.
func (w BookingWindow) Validate(now, t time.Time) error {
	if !t.After(now) {
		return ErrBookingInPast
	}

	hour, minute := t.Hour(), t.Minute()
	if hour < w.OpenHour || hour > w.CloseHour || (hour == w.CloseHour && minute > 0) {
		return fmt.Errorf("%w: booking is available only between %02d:00 and %02d:00", ErrOutsideWorkingHours, w.OpenHour, w.CloseHour)
	}

	return nil
}

// InitialTime suggests a starting booking time: opening time today before
// the window opens, opening time tomorrow once it has closed, otherwise the
// current hour.
func (w BookingWindow) InitialTime(now time.Time) time.Time {
	year, month, day := now.Date()
	switch {
	case now.Hour() < w.OpenHour:
		return time.Date(year, month, day, w.OpenHour, 0, 0, 0, now.Location())
	case now.Hour() >= w.CloseHour:
		return time.Date(year, month, day+1, w.OpenHour, 0, 0, 0, now.Location())
	default:
		return time.Date(year, month, day, now.Hour(), 0, 0, 0, now.Location())
	}
}
