package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"busenjoyer/internal/models"
)

// SearchTrips - GET /api/trips/search
// Найти рейсы между городами на дату
func (h *Handlers) SearchTrips(c *gin.Context) {
	fromID, _ := strconv.ParseInt(c.Query("from"), 10, 64)
	toID, _ := strconv.ParseInt(c.Query("to"), 10, 64)
	passengers, _ := strconv.Atoi(c.DefaultQuery("passengers", "1"))

	req := &models.SearchTripsRequest{
		OriginCityID:      fromID,
		DestinationCityID: toID,
		Date:              c.Query("date"),
		Passengers:        passengers,
		Sort:              models.SortOrder(c.Query("sort")),
	}

	response, err := h.services.Search.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "Failed to search trips")
		return
	}

	c.JSON(http.StatusOK, response)
}
