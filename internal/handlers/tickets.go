package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "busenjoyer/internal/errors"
	"busenjoyer/internal/models"
)

// BookTicket - POST /api/tickets
// Купить билет на рейс
func (h *Handlers) BookTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.BookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.Book(c.Request.Context(), userID, &req)
	if err != nil {
		writeError(c, err, "Failed to book ticket")
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

// ReturnTicket - POST /api/tickets/:id/return
// Вернуть билет
func (h *Handlers) ReturnTicket(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ticketID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, apperrors.Validation("id", "must be an integer"), "")
		return
	}

	ticket, err := h.services.Tickets.Return(c.Request.Context(), userID, ticketID)
	if err != nil {
		writeError(c, err, "Failed to return ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ListTickets - GET /api/tickets
// Список билетов пользователя с фильтрами type, returned и сортировкой
func (h *Handlers) ListTickets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	filter := models.ListTicketsFilter{
		Window: models.TimeWindow(c.Query("type")),
		Sort:   models.SortOrder(c.Query("sort")),
	}

	if raw := c.Query("returned"); raw != "" {
		returned, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, apperrors.Validation("returned", "must be true or false"), "")
			return
		}
		filter.Returned = &returned
	}

	tickets, err := h.services.Tickets.List(c.Request.Context(), userID, filter)
	if err != nil {
		writeError(c, err, "Failed to list tickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}
