package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pomoyka/pomoyka-client/internal/middleware"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/internal/repository"
	"github.com/pomoyka/pomoyka-client/pkg/validator"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ImageField is the multipart field carrying the avatar
	ImageField = "image"

	// MaxImageSize is the largest accepted avatar
	MaxImageSize = 5 << 20
)

// UserHandler handles profile and avatar requests
type UserHandler struct {
	userRepository         *repository.UserRepository
	refreshTokenRepository *repository.RefreshTokenRepository
	logger                 *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	userRepository *repository.UserRepository,
	refreshTokenRepository *repository.RefreshTokenRepository,
	logger *logrus.Logger,
) *UserHandler {
	return &UserHandler{
		userRepository:         userRepository,
		refreshTokenRepository: refreshTokenRepository,
		logger:                 logger,
	}
}

// GetMyProfile handles GET /api/User/GetMyProfile
func (h *UserHandler) GetMyProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	user, err := h.userRepository.GetByID(userCtx.UserID)
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "User not found", "USER_NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, user.Profile())
}

// UpdateMyProfile handles PUT /api/User/UpdateMyProfile. Changing the
// password revokes every refresh token of the account.
func (h *UserHandler) UpdateMyProfile(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Invalid request body", "INVALID_REQUEST")
		return
	}
	req = req.Normalize()

	user, err := h.userRepository.GetByID(userCtx.UserID)
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "User not found", "USER_NOT_FOUND")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" {
		email, err := validator.ValidateEmail(req.Email)
		if err != nil {
			respondError(c, http.StatusBadRequest, "validation_error", "Email address is invalid", "INVALID_EMAIL")
			return
		}
		user.Email = email
	}

	passwordChanged := false
	if req.Password != nil && *req.Password != "" {
		if len(*req.Password) < MinPasswordLength {
			respondError(c, http.StatusBadRequest, "validation_error", "Password must be at least 6 characters", "WEAK_PASSWORD")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			h.logger.WithError(err).Error("Failed to hash password")
			respondError(c, http.StatusInternalServerError, "update_failed", "Failed to update profile", "")
			return
		}
		user.PasswordHash = hash
		passwordChanged = true
	}

	if err := h.userRepository.Update(user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "conflict", "An account with this email already exists", "EMAIL_TAKEN")
			return
		}
		h.logger.WithError(err).Error("Failed to update user")
		respondError(c, http.StatusInternalServerError, "update_failed", "Failed to update profile", "")
		return
	}

	if passwordChanged {
		revoked := h.refreshTokenRepository.RevokeAllForUser(user.ID)
		h.logger.WithFields(logrus.Fields{
			"user_id":        user.ID,
			"revoked_tokens": revoked,
		}).Info("Password changed, refresh tokens revoked")
	}

	c.JSON(http.StatusOK, user.Profile())
}

// GetUserImageURL handles GET /api/User/GetUserImageUrl
func (h *UserHandler) GetUserImageURL(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if _, err := h.userRepository.GetImage(userCtx.UserID); err != nil {
		respondError(c, http.StatusNotFound, "not_found", "No profile image", "IMAGE_NOT_FOUND")
		return
	}

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	c.JSON(http.StatusOK, scheme+"://"+c.Request.Host+"/api/User/Image/"+userCtx.UserID.String())
}

// UploadImage handles POST /api/User/UploadImage (multipart field "image")
func (h *UserHandler) UploadImage(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	header, err := c.FormFile(ImageField)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Image file is required", "MISSING_IMAGE")
		return
	}
	if header.Size > MaxImageSize {
		respondError(c, http.StatusRequestEntityTooLarge, "validation_error", "Image is too large", "IMAGE_TOO_LARGE")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Image file is unreadable", "INVALID_IMAGE")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil || len(data) == 0 {
		respondError(c, http.StatusBadRequest, "validation_error", "Image file is unreadable", "INVALID_IMAGE")
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		respondError(c, http.StatusUnsupportedMediaType, "validation_error", "File is not an image", "INVALID_IMAGE")
		return
	}

	if err := h.userRepository.SetImage(userCtx.UserID, repository.Image{ContentType: contentType, Data: data}); err != nil {
		respondError(c, http.StatusNotFound, "not_found", "User not found", "USER_NOT_FOUND")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":      userCtx.UserID,
		"content_type": contentType,
		"size_bytes":   len(data),
	}).Info("Profile image uploaded")

	c.JSON(http.StatusOK, MessageResponse{Message: "Image uploaded"})
}

// DeleteImage handles DELETE /api/User/DeleteImage
func (h *UserHandler) DeleteImage(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	if err := h.userRepository.DeleteImage(userCtx.UserID); err != nil {
		respondError(c, http.StatusNotFound, "not_found", "No profile image", "IMAGE_NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Image deleted"})
}

// ServeImage handles GET /api/User/Image/:id
func (h *UserHandler) ServeImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "Image not found", "IMAGE_NOT_FOUND")
		return
	}

	img, err := h.userRepository.GetImage(id)
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "Image not found", "IMAGE_NOT_FOUND")
		return
	}

	c.Data(http.StatusOK, img.ContentType, img.Data)
}
