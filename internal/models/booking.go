package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BookingStatus represents the canonical status of a booking
type BookingStatus string

const (
	BookingStatusWaiting   BookingStatus = "waiting"   // Created, payment not confirmed yet
	BookingStatusDone      BookingStatus = "done"      // Paid and confirmed by the backend
	BookingStatusCancelled BookingStatus = "cancelled" // Payment failed, aborted or cancelled by the user
	BookingStatusUnknown   BookingStatus = "unknown"   // Unrecognised server value, never terminal
)

// legacyStatuses maps every status string seen from the backend to the
// canonical vocabulary. Keys are lower-case.
var legacyStatuses = map[string]BookingStatus{
	"":          BookingStatusWaiting,
	"waiting":   BookingStatusWaiting,
	"pending":   BookingStatusWaiting,
	"created":   BookingStatusWaiting,
	"done":      BookingStatusDone,
	"completed": BookingStatusDone,
	"confirmed": BookingStatusDone,
	"paid":      BookingStatusDone,
	"success":   BookingStatusDone,
	"cancelled": BookingStatusCancelled,
	"canceled":  BookingStatusCancelled,
	"failed":    BookingStatusCancelled,
	"rejected":  BookingStatusCancelled,
}

// ParseBookingStatus normalises a server status string, case-insensitively
func ParseBookingStatus(raw string) BookingStatus {
	if status, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return BookingStatusUnknown
}

// IsTerminal reports whether no further automatic transition is expected
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusDone || s == BookingStatusCancelled
}

// Booking represents a scheduled car-wash appointment
type Booking struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId,omitempty"`
	CenterID        string        `json:"centerId,omitempty"`
	CenterName      string        `json:"centerName"`
	CenterServiceID string        `json:"centerServiceId,omitempty"`
	ServiceName     string        `json:"serviceName"`
	BookedTime      time.Time     `json:"bookedTime"`
	Status          BookingStatus `json:"status"`
	Price           float64       `json:"price"`
}

// CanCancel checks if the user may cancel the booking from the list
func (b *Booking) CanCancel() bool {
	return b.Status == BookingStatusWaiting
}

// UnmarshalJSON accepts every shape the backend has shipped for a booking:
// flat or nested center and service, string or numeric price.
func (b *Booking) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              string          `json:"id"`
		BookingID       string          `json:"bookingId"`
		UserID          string          `json:"userId"`
		CenterID        string          `json:"centerId"`
		CenterName      string          `json:"centerName"`
		Center          *namedRef       `json:"center"`
		CenterServiceID string          `json:"centerServiceId"`
		ServiceName     string          `json:"serviceName"`
		Service         *namedRef       `json:"service"`
		BookedTime      string          `json:"bookedTime"`
		Status          string          `json:"status"`
		Price           json.RawMessage `json:"price"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	b.ID = firstNonEmpty(raw.ID, raw.BookingID)
	b.UserID = raw.UserID
	b.CenterID = raw.CenterID
	b.CenterName = raw.CenterName
	if b.CenterName == "" && raw.Center != nil {
		b.CenterName = raw.Center.Name
	}
	b.CenterServiceID = raw.CenterServiceID
	b.ServiceName = raw.ServiceName
	if b.ServiceName == "" && raw.Service != nil {
		b.ServiceName = raw.Service.Name
	}
	b.Status = ParseBookingStatus(raw.Status)

	if raw.BookedTime != "" {
		t, err := time.Parse(time.RFC3339, raw.BookedTime)
		if err != nil {
			return fmt.Errorf("invalid bookedTime %q: %w", raw.BookedTime, err)
		}
		b.BookedTime = t
	}

	price, err := decodeFlexibleNumber(raw.Price)
	if err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	b.Price = price

	return nil
}

// BookingList decodes either a JSON array of bookings or a single booking
type BookingList []Booking

// UnmarshalJSON implements json.Unmarshaler
func (l *BookingList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = BookingList{}
		return nil
	}
	if trimmed[0] == '{' {
		var single Booking
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return err
		}
		*l = BookingList{single}
		return nil
	}
	var many []Booking
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	CenterServiceID string `json:"centerServiceId" binding:"required"`
	BookedTime      string `json:"bookedTime" binding:"required"` // RFC3339
}

// PaymentResponse is returned by booking creation: the booking id plus an
// opaque LiqPay payload for the external checkout
type PaymentResponse struct {
	BookingID string `json:"bookingId"`
	Data      string `json:"data"`
	Signature string `json:"signature"`
}

type namedRef struct {
	Name string `json:"name"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// decodeFlexibleNumber accepts a JSON number, a numeric string, or nothing.
// A string that does not parse is an error.
func decodeFlexibleNumber(raw json.RawMessage) (float64, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, err
		}
		if strings.TrimSpace(s) == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number %q: %w", s, err)
		}
		return v, nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return 0, err
	}
	return v, nil
}
