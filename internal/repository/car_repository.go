package repository

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pomoyka/pomoyka-client/internal/models"
)

// CarRepository keeps one car per user
type CarRepository struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]models.Car
}

// NewCarRepository creates an empty car repository
func NewCarRepository() *CarRepository {
	return &CarRepository{byUser: make(map[uuid.UUID]models.Car)}
}

// Upsert stores the user's car, keeping its ID when it already exists
func (r *CarRepository) Upsert(userID uuid.UUID, car models.Car) models.Car {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byUser[userID]; ok {
		car.ID = existing.ID
	} else if car.ID == "" {
		car.ID = uuid.NewString()
	}
	r.byUser[userID] = car
	return car
}

// GetByUser retrieves the user's car
func (r *CarRepository) GetByUser(userID uuid.UUID) (*models.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	car, ok := r.byUser[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &car, nil
}
