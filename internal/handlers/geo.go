package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "busenjoyer/internal/errors"
	"busenjoyer/internal/models"
)

// ListCities - GET /api/cities
// Список городов; справочник меняется редко, поэтому кешируется в Valkey
func (h *Handlers) ListCities(c *gin.Context) {
	if h.valkeyClient != nil {
		rawJSON, err := h.valkeyClient.GetCityListRaw(c.Request.Context())
		if err == nil {
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
	}

	cities, err := h.services.Geo.ListCities(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to list cities")
		return
	}

	if h.valkeyClient != nil {
		if err := h.valkeyClient.SetCityList(c.Request.Context(), cities); err != nil {
			slog.Warn("Failed to cache city list", "error", err)
		}
	}

	c.JSON(http.StatusOK, cities)
}

// CreateCity - POST /api/partner/cities
// Добавить город в справочник
func (h *Handlers) CreateCity(c *gin.Context) {
	var req models.CreateCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	city, err := h.services.Geo.CreateCity(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create city")
		return
	}

	if h.valkeyClient != nil {
		if err := h.valkeyClient.InvalidateCityList(c.Request.Context()); err != nil {
			slog.Warn("Failed to invalidate city list cache", "error", err)
		}
	}

	c.JSON(http.StatusCreated, city)
}

// ListStations - GET /api/stations
// Список станций, опционально в пределах одного города
func (h *Handlers) ListStations(c *gin.Context) {
	var cityID int64
	if raw := c.Query("city_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, apperrors.Validation("city_id", "must be an integer"), "")
			return
		}
		cityID = parsed
	}

	stations, err := h.services.Geo.ListStations(c.Request.Context(), cityID)
	if err != nil {
		writeError(c, err, "Failed to list stations")
		return
	}

	c.JSON(http.StatusOK, stations)
}

// CreateStation - POST /api/partner/stations
// Добавить станцию в существующий город
func (h *Handlers) CreateStation(c *gin.Context) {
	var req models.CreateStationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	station, err := h.services.Geo.CreateStation(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to create station")
		return
	}

	c.JSON(http.StatusCreated, station)
}

// SuggestGeo - GET /api/geo/suggest
// Подсказки по городам и станциям из Elasticsearch
func (h *Handlers) SuggestGeo(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		writeError(c, apperrors.Validation("q", "is required"), "")
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	if size < 1 || size > 50 {
		writeError(c, apperrors.Validation("size", "must be between 1 and 50"), "")
		return
	}

	suggestions, err := h.services.Geo.Suggest(c.Request.Context(), query, size)
	if err != nil {
		writeError(c, err, "Failed to suggest")
		return
	}

	c.JSON(http.StatusOK, suggestions)
}
