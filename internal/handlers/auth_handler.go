package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/internal/repository"
	"github.com/pomoyka/pomoyka-client/internal/utils"
	"github.com/pomoyka/pomoyka-client/pkg/jwt"
	"github.com/pomoyka/pomoyka-client/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at registration
const MinPasswordLength = 6

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	jwtService             *jwt.Service
	userRepository         *repository.UserRepository
	carRepository          *repository.CarRepository
	refreshTokenRepository *repository.RefreshTokenRepository
	refreshTokenExpiry     time.Duration
	plateValidator         *validator.PlateValidator
	logger                 *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	jwtService *jwt.Service,
	userRepository *repository.UserRepository,
	carRepository *repository.CarRepository,
	refreshTokenRepository *repository.RefreshTokenRepository,
	refreshTokenExpiry time.Duration,
	logger *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		jwtService:             jwtService,
		userRepository:         userRepository,
		carRepository:          carRepository,
		refreshTokenRepository: refreshTokenRepository,
		refreshTokenExpiry:     refreshTokenExpiry,
		plateValidator:         validator.NewPlateValidator(),
		logger:                 logger,
	}
}

// RegisterResponse is returned after a successful registration
type RegisterResponse struct {
	ID      string      `json:"id"`
	Email   string      `json:"email"`
	Car     *models.Car `json:"car,omitempty"`
	Message string      `json:"message"`
}

// Register handles POST /api/Auth/Register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Invalid request body", "INVALID_REQUEST")
		return
	}
	req = req.Normalize()

	email, err := validator.ValidateEmail(req.User.Email)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Email address is invalid", "INVALID_EMAIL")
		return
	}
	if len(req.User.PasswordHash) < MinPasswordLength {
		respondError(c, http.StatusBadRequest, "validation_error", "Password must be at least 6 characters", "WEAK_PASSWORD")
		return
	}
	carType, err := models.ParseCarType(string(req.Car.CarType))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), "INVALID_CAR_TYPE")
		return
	}
	plate, err := h.plateValidator.Validate(req.Car.LicensePlate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), "INVALID_LICENSE_PLATE")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.User.PasswordHash), bcrypt.DefaultCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		respondError(c, http.StatusInternalServerError, "registration_failed", "Failed to create account", "")
		return
	}

	user := &repository.User{
		FirstName:    req.User.FirstName,
		LastName:     req.User.LastName,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleClient,
	}
	if err := h.userRepository.Create(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "conflict", "An account with this email already exists", "EMAIL_TAKEN")
			return
		}
		h.logger.WithError(err).Error("Failed to create user")
		respondError(c, http.StatusInternalServerError, "registration_failed", "Failed to create account", "")
		return
	}

	car := h.carRepository.Upsert(user.ID, models.Car{
		Name:         req.Car.Name,
		LicensePlate: plate,
		CarType:      carType,
	})

	h.logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"car_type": car.CarType,
	}).Info("User registered")

	c.JSON(http.StatusOK, RegisterResponse{
		ID:      user.ID.String(),
		Email:   user.Email,
		Car:     &car,
		Message: "Registration successful",
	})
}

// Login handles POST /api/Auth/Login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Invalid request body", "INVALID_REQUEST")
		return
	}

	user, err := h.userRepository.GetByEmail(req.Email)
	if err == nil {
		err = bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(req.Password))
	}
	if err != nil {
		h.logger.WithField("ip", c.ClientIP()).Warn("Login rejected")
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", "INVALID_CREDENTIALS")
		return
	}

	device := utils.ParseUserAgent(c.Request.UserAgent())
	resp, err := h.issueTokens(user, device.DeviceType)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens")
		respondError(c, http.StatusInternalServerError, "token_generation_failed", "Failed to generate tokens", "")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":     user.ID,
		"device_type": device.DeviceType,
		"platform":    device.Platform,
		"client":      device.Client,
	}).Info("User logged in")

	c.JSON(http.StatusOK, resp)
}

// RefreshToken handles POST /api/Auth/RefreshToken. The presented refresh
// token is revoked once the new pair is stored.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "Invalid request body", "INVALID_REQUEST")
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.logger.WithError(err).Warn("Refresh token validation failed")
		respondError(c, http.StatusUnauthorized, "invalid_token", "Invalid or expired refresh token", "INVALID_TOKEN")
		return
	}

	userID, err := h.refreshTokenRepository.Use(req.RefreshToken)
	if err != nil || userID != claims.UserID {
		h.logger.WithField("user_id", claims.UserID).Warn("Refresh token revoked or unknown")
		respondError(c, http.StatusUnauthorized, "token_revoked", "Refresh token has been revoked", "TOKEN_REVOKED")
		return
	}

	user, err := h.userRepository.GetByID(userID)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "user_not_found", "User no longer exists", "USER_NOT_FOUND")
		return
	}

	device := utils.ParseUserAgent(c.Request.UserAgent())
	resp, err := h.issueTokens(user, device.DeviceType)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue tokens")
		respondError(c, http.StatusInternalServerError, "token_generation_failed", "Failed to generate tokens", "")
		return
	}

	if err := h.refreshTokenRepository.Revoke(req.RefreshToken); err != nil {
		h.logger.WithError(err).Warn("Failed to revoke rotated refresh token")
	}

	h.logger.WithField("user_id", user.ID).Info("Tokens refreshed")
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) issueTokens(user *repository.User, deviceType string) (*models.AuthResponse, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, err := h.jwtService.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	h.refreshTokenRepository.Store(user.ID, refreshToken, deviceType, time.Now().Add(h.refreshTokenExpiry))

	resp := &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &models.AuthUser{ID: user.ID.String(), Role: user.Role},
	}
	if expiry, err := jwt.GetTokenExpiry(accessToken); err == nil {
		resp.ExpiresAt = expiry.UTC().Format(time.RFC3339)
	}
	return resp, nil
}
