package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pomoyka/pomoyka-client/internal/models"
)

// CreateBooking creates a booking in the waiting state and returns the
// LiqPay payload for its payment
func (c *Client) CreateBooking(ctx context.Context, req models.CreateBookingRequest) (*models.PaymentResponse, error) {
	var out models.PaymentResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/Booking/Create",
		body:   req,
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteBooking tells the backend the payment page reported success
func (c *Client) CompleteBooking(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/Booking/Complete/" + url.PathEscape(id)})
}

// CancelBooking cancels a booking
func (c *Client) CancelBooking(ctx context.Context, id string) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/api/Booking/Cancel/" + url.PathEscape(id)})
}

// GetBookingByID fetches one booking
func (c *Client) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var out models.Booking
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/Booking/GetById/" + url.PathEscape(id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyBookings lists the user's bookings. Admin accounts get a 403
// error; check it with IsForbidden.
func (c *Client) GetMyBookings(ctx context.Context) ([]models.Booking, error) {
	var out models.BookingList
	err := c.do(ctx, call{
		method:  http.MethodGet,
		path:    "/api/Booking/GetMy",
		timeout: c.listTimeout,
		out:     &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
