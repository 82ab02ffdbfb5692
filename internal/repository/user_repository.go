package repository

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pomoyka/pomoyka-client/internal/models"
)

// User is an account of the dev backend
type User struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	Email        string
	PasswordHash []byte // bcrypt
	Role         models.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile returns the wire representation of the user
func (u *User) Profile() models.Profile {
	return models.Profile{
		ID:        u.ID.String(),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

// Image is a stored profile picture
type Image struct {
	ContentType string
	Data        []byte
	UpdatedAt   time.Time
}

// UserRepository keeps accounts and their profile pictures in memory
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	images  map[uuid.UUID]Image
}

// NewUserRepository creates an empty user repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		images:  make(map[uuid.UUID]Image),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create stores a new user, assigning its ID and timestamps
func (r *UserRepository) Create(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(user.Email)
	if _, exists := r.byEmail[key]; exists {
		return ErrEmailTaken
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	stored := *user
	r.byID[user.ID] = &stored
	r.byEmail[key] = user.ID
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *user
	return &out, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r.byID[id]
	return &out, nil
}

// Update replaces the profile fields of an existing user
func (r *UserRepository) Update(user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[user.ID]
	if !ok {
		return ErrNotFound
	}

	oldKey := emailKey(current.Email)
	newKey := emailKey(user.Email)
	if newKey != oldKey {
		if _, taken := r.byEmail[newKey]; taken {
			return ErrEmailTaken
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = user.ID
	}

	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = time.Now()
	stored := *user
	r.byID[user.ID] = &stored
	return nil
}

// SetImage stores the user's profile picture
func (r *UserRepository) SetImage(id uuid.UUID, img Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	img.UpdatedAt = time.Now()
	r.images[id] = img
	return nil
}

// GetImage returns the user's profile picture
func (r *UserRepository) GetImage(id uuid.UUID) (Image, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	img, ok := r.images[id]
	if !ok {
		return Image{}, ErrNotFound
	}
	return img, nil
}

// DeleteImage removes the user's profile picture
func (r *UserRepository) DeleteImage(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[id]; !ok {
		return ErrNotFound
	}
	delete(r.images, id)
	return nil
}
