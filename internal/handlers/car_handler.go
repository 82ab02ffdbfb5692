package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pomoyka/pomoyka-client/internal/middleware"
	"github.com/pomoyka/pomoyka-client/internal/models"
	"github.com/pomoyka/pomoyka-client/internal/repository"
	"github.com/pomoyka/pomoyka-client/pkg/validator"
	"github.com/sirupsen/logrus"
)

// CarHandler handles the user's car
type CarHandler struct {
	carRepository  *repository.CarRepository
	plateValidator *validator.PlateValidator
	logger         *logrus.Logger
}

// NewCarHandler creates a new car handler
func NewCarHandler(carRepository *repository.CarRepository, logger *logrus.Logger) *CarHandler {
	return &CarHandler{
		carRepository:  carRepository,
		plateValidator: validator.NewPlateValidator(),
		logger:         logger,
	}
}

// GetMyCar handles GET /api/Car/GetMyCar
func (h *CarHandler) GetMyCar(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	car, err := h.carRepository.GetByUser(userCtx.UserID)
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "No car registered", "CAR_NOT_FOUND")
		return
	}

	c.JSON(http.StatusOK, car)
}

// UpdateMyCar handles PUT /api/Car/UpdateMyCar
func (h *CarHandler) UpdateMyCar(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req models.UpdateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", "Invalid request body", "INVALID_REQUEST")
		return
	}
	req = req.Normalize()

	carType, err := models.ParseCarType(string(req.CarType))
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), "INVALID_CAR_TYPE")
		return
	}
	plate, err := h.plateValidator.Validate(req.LicensePlate)
	if err != nil {
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), "INVALID_LICENSE_PLATE")
		return
	}

	car := h.carRepository.Upsert(userCtx.UserID, models.Car{
		Name:         req.Name,
		LicensePlate: plate,
		CarType:      carType,
	})

	h.logger.WithFields(logrus.Fields{
		"user_id":  userCtx.UserID,
		"car_type": car.CarType,
	}).Info("Car updated")

	c.JSON(http.StatusOK, car)
}
