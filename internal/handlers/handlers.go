package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"busenjoyer/internal/cache"
	apperrors "busenjoyer/internal/errors"
	"busenjoyer/internal/middleware"
	"busenjoyer/internal/service"
)

type Handlers struct {
	services     *service.Services
	valkeyClient *cache.ValkeyClient
}

func NewHandlers(services *service.Services, valkeyClient *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services:     services,
		valkeyClient: valkeyClient,
	}
}

// writeError переводит доменные ошибки в HTTP статусы
func writeError(c *gin.Context, err error, fallback string) {
	if ve, ok := apperrors.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrPastTrip):
		c.JSON(http.StatusConflict, gin.H{"error": "Trip already departed"})
	case errors.Is(err, apperrors.ErrNoSeats):
		c.JSON(http.StatusConflict, gin.H{"error": "No seats left on this trip"})
	case errors.Is(err, apperrors.ErrAlreadyReturned):
		c.JSON(http.StatusConflict, gin.H{"error": "Ticket already returned"})
	case errors.Is(err, apperrors.ErrTripLocked):
		c.JSON(http.StatusConflict, gin.H{"error": "Trip has sold tickets and cannot be modified"})
	case errors.Is(err, apperrors.ErrBusInUse):
		c.JSON(http.StatusConflict, gin.H{"error": "Bus is assigned to trips"})
	default:
		slog.Error(fallback, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// currentUserID достаёт аутентифицированного пользователя из контекста
func currentUserID(c *gin.Context) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return 0, false
	}
	return userID, true
}

// currentCompanyID достаёт компанию партнёра из контекста
func currentCompanyID(c *gin.Context) (int64, bool) {
	companyID, ok := middleware.CompanyIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "Partner account required"})
		return 0, false
	}
	return companyID, true
}
