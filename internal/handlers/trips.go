package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "busenjoyer/internal/errors"
	"busenjoyer/internal/models"
)

// Partner trip handlers. All of them act on behalf of the company resolved
// by the PartnerAuth middleware.

// ListTrips - GET /api/partner/trips
// Список рейсов компании партнёра
func (h *Handlers) ListTrips(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	filter := models.ListTripsFilter{
		Window: models.TimeWindow(c.Query("type")),
		Sort:   models.SortOrder(c.Query("sort")),
	}

	trips, err := h.services.Trips.List(c.Request.Context(), companyID, filter)
	if err != nil {
		writeError(c, err, "Failed to list trips")
		return
	}

	c.JSON(http.StatusOK, trips)
}

// CreateTrip - POST /api/partner/trips
// Создать рейс
func (h *Handlers) CreateTrip(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.services.Trips.Create(c.Request.Context(), companyID, &req)
	if err != nil {
		writeError(c, err, "Failed to create trip")
		return
	}

	c.JSON(http.StatusCreated, trip)
}

// UpdateTrip - PUT /api/partner/trips/:id
// Изменить рейс, пока на него не продан ни один билет
func (h *Handlers) UpdateTrip(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.Validation("id", "must be an integer"), "")
		return
	}

	var req models.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trip, err := h.services.Trips.Update(c.Request.Context(), companyID, tripID, &req)
	if err != nil {
		writeError(c, err, "Failed to update trip")
		return
	}

	c.JSON(http.StatusOK, trip)
}

// DeleteTrip - DELETE /api/partner/trips/:id
// Удалить рейс, пока на него не продан ни один билет
func (h *Handlers) DeleteTrip(c *gin.Context) {
	companyID, ok := currentCompanyID(c)
	if !ok {
		return
	}

	tripID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.Validation("id", "must be an integer"), "")
		return
	}

	if err := h.services.Trips.Delete(c.Request.Context(), companyID, tripID); err != nil {
		writeError(c, err, "Failed to delete trip")
		return
	}

	c.Status(http.StatusNoContent)
}
