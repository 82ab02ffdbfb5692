package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pomoyka/pomoyka-client/internal/repository"
)

// CenterHandler serves the center catalogue
type CenterHandler struct {
	centerRepository *repository.CenterRepository
}

// NewCenterHandler creates a new center handler
func NewCenterHandler(centerRepository *repository.CenterRepository) *CenterHandler {
	return &CenterHandler{centerRepository: centerRepository}
}

// GetAll handles GET /api/Centers/GetAll
func (h *CenterHandler) GetAll(c *gin.Context) {
	c.JSON(http.StatusOK, h.centerRepository.GetAll())
}

// GetByID handles GET /api/Centers/GetById/:id
func (h *CenterHandler) GetByID(c *gin.Context) {
	center, err := h.centerRepository.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "not_found", "Center not found", "CENTER_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, center)
}
