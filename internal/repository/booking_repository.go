package repository

import (
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pomoyka/pomoyka-client/internal/models"
)

// BookingRepository keeps bookings in memory
type BookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
}

// NewBookingRepository creates an empty booking repository
func NewBookingRepository() *BookingRepository {
	return &BookingRepository{bookings: make(map[string]models.Booking)}
}

// Create stores a new booking in the waiting status and assigns its ID
func (r *BookingRepository) Create(booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.Status == "" {
		booking.Status = models.BookingStatusWaiting
	}
	r.bookings[booking.ID] = *booking
	return nil
}

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &booking, nil
}

// ListByUser returns the user's bookings, most recent appointment first
func (r *BookingRepository) ListByUser(userID string) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Booking, 0)
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].BookedTime.After(out[j].BookedTime)
	})
	return out
}

// UpdateStatus moves a booking from one status to another. It fails with
// ErrStatusConflict when the booking is no longer in the from status.
func (r *BookingRepository) UpdateStatus(id string, from, to models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	if booking.Status != from {
		return &booking, ErrStatusConflict
	}

	booking.Status = to
	r.bookings[id] = booking
	return &booking, nil
}
