package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busenjoyer/internal/models"
)

// RegisterUser - POST /api/users/register
// Зарегистрировать пассажира
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req models.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.services.Accounts.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to register user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

// RegisterPartner - POST /api/partners/register
// Зарегистрировать партнёра вместе с его компанией
func (h *Handlers) RegisterPartner(c *gin.Context) {
	var req models.RegisterPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, company, err := h.services.Accounts.RegisterPartner(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err, "Failed to register partner")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "company": company})
}
