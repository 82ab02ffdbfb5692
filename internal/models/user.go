package models

import "strings"

// Role represents the account role reported by the backend
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
)

// AuthUser is the user summary embedded in auth responses
type AuthUser struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    string    `json:"expiresAt,omitempty"`
	User         *AuthUser `json:"user,omitempty"`
}

// HasTokens reports whether both credentials are present
func (r *AuthResponse) HasTokens() bool {
	return r != nil && r.AccessToken != "" && r.RefreshToken != ""
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest represents the refresh payload
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterUser is the user part of a registration payload
type RegisterUser struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required"`
	PasswordHash string `json:"passwordHash" binding:"required"`
}

// RegisterCar is the car part of a registration payload
type RegisterCar struct {
	Name         string  `json:"name" binding:"required"`
	LicensePlate string  `json:"licensePlate" binding:"required"`
	CarType      CarType `json:"carType" binding:"required"`
}

// RegisterRequest represents the registration payload
type RegisterRequest struct {
	User RegisterUser `json:"user"`
	Car  RegisterCar  `json:"car"`
}

// Normalize trims names, lower-cases the email and upper-cases the plate
func (r RegisterRequest) Normalize() RegisterRequest {
	r.User.FirstName = strings.TrimSpace(r.User.FirstName)
	r.User.LastName = strings.TrimSpace(r.User.LastName)
	r.User.Email = strings.ToLower(strings.TrimSpace(r.User.Email))
	r.Car.Name = strings.TrimSpace(r.Car.Name)
	r.Car.LicensePlate = strings.ToUpper(strings.TrimSpace(r.Car.LicensePlate))
	return r
}

// Profile represents the authenticated user's profile
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// UpdateProfileRequest represents a profile update; a nil password keeps the current one
type UpdateProfileRequest struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Password  *string `json:"password"`
}

// Normalize trims names and lower-cases the email
func (r UpdateProfileRequest) Normalize() UpdateProfileRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	return r
}
