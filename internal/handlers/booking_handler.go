package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/internal/payment"
	"github.com/pomoyka/pomoyka-client/internal/repository"
	"github.com/pomoyka/pomoyka-client/internal/services"
	"github.com/sirupsen/logrus"
)

// BookingHandlerConfig holds the booking handler's payment and window settings
type BookingHandlerConfig struct {
	Window     services.BookingWindow
	PublicKey  string // LiqPay public key
	PrivateKey string // LiqPay private key used to sign checkout payloads
	Currency   string
	Sandbox    bool
	Now        func() time.Time
}

// BookingHandler handles booking lifecycle requests
type BookingHandler struct {
	bookingRepository     *repository.BookingRepository
	centerRepository      *repository.CenterRepository
	transactionRepository *repository.TransactionRepository
	userRepository        *repository.UserRepository
	config                BookingHandlerConfig
	logger                *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingRepository *repository.BookingRepository,
	centerRepository *repository.CenterRepository,
	transactionRepository *repository.TransactionRepository,
	userRepository *repository.UserRepository,
	config BookingHandlerConfig,
	logger *logrus.Logger,
) *BookingHandler {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Currency == "" {
		config.Currency = "UAH"
	}
	return &BookingHandler{
		bookingRepository:     bookingRepository,
		centerRepository:      centerRepository,
		transactionRepository: transactionRepository,
		userRepository:        userRepository,
		config:                config,
		logger:                logger,
	}
}

// Create handles POST /api/Booking/Create. It stores a waiting booking and
// returns a signed LiqPay payload for the checkout.
func (h *BookingHandler) Create(c *gin.Context) {
	userID := currentUserID(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Invalid request body", "INVALID_REQUEST")
		return
	}

	bookedTime, err := time.Parse(time.RFC3339, req.BookedTime)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "bookedTime must be an RFC3339 timestamp", "INVALID_BOOKED_TIME")
		return
	}

	if err := h.config.Window.Validate(h.config.Now(), bookedTime); err != nil {
		code := "OUTSIDE_WORKING_HOURS"
		if errors.Is(err, services.ErrBookingInPast) {
			code = "BOOKING_IN_PAST"
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), code)
		return
	}

	center, service, err := h.centerRepository.FindService(req.CenterServiceID)
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "Service not found", "SERVICE_NOT_FOUND")
		return
	}

	booking := &models.Booking{
		UserID:          userID,
		CenterID:        center.CenterID,
		CenterName:      center.CenterName,
		CenterServiceID: service.CenterServiceID,
		ServiceName:     service.ServiceName,
		BookedTime:      bookedTime,
		Status:          models.BookingStatusWaiting,
		Price:           service.Price,
	}
	if err := h.bookingRepository.Create(booking); err != nil {
		h.logger.WithError(err).Error("Failed to create booking")
		respondError(c, http.StatusInternalServerError, "booking_failed", "Failed to create booking", "")
		return
	}

	params := payment.Params{
		Version:     3,
		PublicKey:   h.config.PublicKey,
		Action:      "pay",
		Amount:      service.Price,
		Currency:    h.config.Currency,
		Description: fmt.Sprintf("%s at %s, %s", service.ServiceName, center.CenterName, bookedTime.Format("2006-01-02 15:04")),
		OrderID:     booking.ID,
	}
	if h.config.Sandbox {
		params.Sandbox = 1
	}

	checkout, err := payment.NewCheckout(h.config.PrivateKey, params)
	if err != nil {
		h.logger.WithError(err).Error("Failed to sign checkout payload")
		respondError(c, http.StatusInternalServerError, "booking_failed", "Failed to prepare payment", "")
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"user_id":           userID,
		"center_service_id": service.CenterServiceID,
		"amount":            service.Price,
	}).Info("Booking created")

	c.JSON(http.StatusOK, models.PaymentResponse{
		BookingID: booking.ID,
		Data:      checkout.Data,
		Signature: checkout.Signature,
	})
}

// Complete handles POST /api/Booking/Complete/:id. A booking that is
// already done is acknowledged again.
func (h *BookingHandler) Complete(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	updated, err := h.bookingRepository.UpdateStatus(booking.ID, models.BookingStatusWaiting, models.BookingStatusDone)
	switch {
	case err == nil:
		h.recordTransaction(updated)
	case errors.Is(err, repository.ErrStatusConflict) && updated.Status == models.BookingStatusDone:
		// Already done
	default:
		h.statusConflict(c, booking.ID, err)
		return
	}

	h.logger.WithField("booking_id", booking.ID).Info("Booking completed")
	c.JSON(http.StatusOK, MessageResponse{Message: "Booking completed"})
}

// Cancel handles POST /api/Booking/Cancel/:id. Only waiting bookings can be cancelled.
func (h *BookingHandler) Cancel(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}

	updated, err := h.bookingRepository.UpdateStatus(booking.ID, models.BookingStatusWaiting, models.BookingStatusCancelled)
	if err != nil && !(errors.Is(err, repository.ErrStatusConflict) && updated.Status == models.BookingStatusCancelled) {
		h.statusConflict(c, booking.ID, err)
		return
	}

	h.logger.WithField("booking_id", booking.ID).Info("Booking cancelled")
	c.JSON(http.StatusOK, MessageResponse{Message: "Booking cancelled"})
}

// GetByID handles GET /api/Booking/GetById/:id
func (h *BookingHandler) GetByID(c *gin.Context) {
	booking, ok := h.ownedBooking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, booking)
}

// GetMy handles GET /api/Booking/GetMy
func (h *BookingHandler) GetMy(c *gin.Context) {
	c.JSON(http.StatusOK, h.bookingRepository.ListByUser(currentUserID(c)))
}

func (h *BookingHandler) ownedBooking(c *gin.Context) (*models.Booking, bool) {
	booking, err := h.bookingRepository.GetByID(c.Param("id"))
	if err != nil || booking.UserID != currentUserID(c) {
		respondError(c, http.StatusNotFound, "not_found", "Booking not found", "BOOKING_NOT_FOUND")
		return nil, false
	}
	return booking, true
}

func (h *BookingHandler) statusConflict(c *gin.Context, bookingID string, err error) {
	if errors.Is(err, repository.ErrStatusConflict) {
		respondError(c, http.StatusConflict, "conflict", "Booking is no longer waiting", "BOOKING_STATUS_CONFLICT")
		return
	}
	h.logger.WithFields(logrus.Fields{
		"booking_id": bookingID,
		"error":      err.Error(),
	}).Error("Failed to update booking status")
	respondError(c, http.StatusInternalServerError, "booking_failed", "Failed to update booking", "")
}

func (h *BookingHandler) recordTransaction(booking *models.Booking) {
	tx := &models.Transaction{
		Amount:        booking.Price,
		BookingID:     booking.ID,
		BookedTime:    booking.BookedTime,
		BookingStatus: booking.Status,
		UserID:        booking.UserID,
		CenterID:      booking.CenterID,
		CenterName:    booking.CenterName,
		ServiceName:   booking.ServiceName,
	}

	if _, service, err := h.centerRepository.FindService(booking.CenterServiceID); err == nil {
		tx.CarType = service.CarType
	}
	if id, err := uuid.Parse(booking.UserID); err == nil {
		if user, err := h.userRepository.GetByID(id); err == nil {
			tx.UserFirstName = user.FirstName
			tx.UserLastName = user.LastName
			tx.UserEmail = user.Email
		}
	}

	if err := h.transactionRepository.Create(tx); err != nil {
		h.logger.WithFields(logrus.Fields{
			"booking_id": booking.ID,
			"error":      err.Error(),
		}).Error("Failed to record transaction")
	}
}
