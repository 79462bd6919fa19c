package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "busenjoyer/internal/errors"
	"busenjoyer/internal/models"
)

// ListBuses - GET /api/partner/buses
// Список автобусов компании со счётчиком рейсов
func (h *Handlers) ListBuses(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	buses, err := h.services.Fleet.List(c.Request.Context(), companyID)
	if err != nil {
		writeError(c, err, "Failed to list buses")
		return
	}

	c.JSON(http.StatusOK, buses)
}

// CreateBus - POST /api/partner/buses
// Зарегистрировать автобус
func (h *Handlers) CreateBus(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	var req models.CreateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus, err := h.services.Fleet.Create(c.Request.Context(), companyID, &req)
	if err != nil {
		writeError(c, err, "Failed to create bus")
		return
	}

	c.JSON(http.StatusCreated, bus)
}

// UpdateBus - PUT /api/partner/buses/:id
// Изменить автобус; вместимость нельзя уменьшить ниже уже проданных мест
func (h *Handlers) UpdateBus(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	busID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.Validation("id", "must be an integer"), "")
		return
	}

	var req models.UpdateBusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bus, err := h.services.Fleet.Update(c.Request.Context(), companyID, busID, &req)
	if err != nil {
		writeError(c, err, "Failed to update bus")
		return
	}

	c.JSON(http.StatusOK, bus)
}

// DeleteBus - DELETE /api/partner/buses/:id
// Удалить автобус, если он не назначен ни на один рейс
func (h *Handlers) DeleteBus(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	busID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.Validation("id", "must be an integer"), "")
		return
	}

	if err := h.services.Fleet.Delete(c.Request.Context(), companyID, busID); err != nil {
		writeError(c, err, "Failed to delete bus")
		return
	}

	c.Status(http.StatusNoContent)
}
