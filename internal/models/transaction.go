package models

import (
	"fmt"
	"time"
)

// Rating bounds accepted by the backend
const (
	MinRatingValue = 0
	MaxRatingValue = 4
)

// Transaction is the financial record of a paid booking, optionally rated
type Transaction struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`

	// Booking info
	BookingID     string        `json:"bookingId"`
	BookedTime    time.Time     `json:"bookedTime"`
	BookingStatus BookingStatus `json:"bookingStatus"`

	// User info
	UserID        string `json:"userId"`
	UserFirstName string `json:"userFirstName"`
	UserLastName  string `json:"userLastName"`
	UserEmail     string `json:"userEmail"`

	// Center info
	CenterID   string `json:"centerId"`
	CenterName string `json:"centerName"`

	// Service info
	ServiceName string  `json:"serviceName"`
	CarType     CarType `json:"carType"`

	// Rating info
	RatingID    *string `json:"ratingId,omitempty"`
	RatingValue *int    `json:"ratingValue,omitempty"`
}

// IsRated reports whether the transaction already carries a rating
func (t *Transaction) IsRated() bool {
	return t.RatingID != nil || t.RatingValue != nil
}

// CreateRatingRequest represents a rating of a transaction
type CreateRatingRequest struct {
	TransactionID string `json:"transactionId" binding:"required"`
	RatingValue   int    `json:"ratingValue"`
}

// Validate checks the rating bounds
func (r *CreateRatingRequest) Validate() error {
	if r.TransactionID == "" {
		return fmt.Errorf("transaction id is required")
	}
	if r.RatingValue < MinRatingValue || r.RatingValue > MaxRatingValue {
		return fmt.Errorf("rating value must be between %d and %d, got %d", MinRatingValue, MaxRatingValue, r.RatingValue)
	}
	return nil
}

// RatingFromStars converts a 1..5 star selection to the 0..4 wire value
func RatingFromStars(stars int) int {
	return stars - 1
}
