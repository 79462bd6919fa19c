package service

import (
	"context"
	"fmt"
	"time"

	"busenjoyer/internal/inventory"
	"busenjoyer/internal/logger"
	"busenjoyer/internal/metrics"
	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

// TicketService is the booking state machine. A ticket is REQUESTED, then
// either BOOKED (persisted row) or REJECTED (typed error); a booked ticket
// can only leave that state through an explicit return.
type TicketService struct {
	tickets   TicketStore
	trips     TripStore
	inventory *inventory.Engine
	events    Publisher
}

func NewTicketService(tickets TicketStore, trips TripStore, engine *inventory.Engine, events Publisher) *TicketService {
	return &TicketService{
		tickets:   tickets,
		trips:     trips,
		inventory: engine,
		events:    events,
	}
}

// Book purchases one seat on a trip. Precondition order: trip exists,
// departure is in the future, a seat is free. The availability check here is
// advisory only - the store re-checks it under a trip row lock in the same
// transaction as the insert, which is what actually prevents overselling.
func (s *TicketService) Book(ctx context.Context, userID int64, req *models.BookTicketRequest) (*models.Ticket, error) {
	trip, err := s.trips.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if trip == nil {
		metrics.BookingRejections.WithLabelValues("not_found").Inc()
		return nil, apperrors.ErrNotFound
	}

	if !trip.Departure.After(time.Now()) {
		metrics.BookingRejections.WithLabelValues("past_trip").Inc()
		return nil, apperrors.ErrPastTrip
	}

	remaining, err := s.inventory.Remaining(ctx, trip)
	if err != nil {
		return nil, fmt.Errorf("failed to compute remaining seats: %w", err)
	}
	if remaining < 1 {
		metrics.BookingRejections.WithLabelValues("no_seats").Inc()
		return nil, apperrors.ErrNoSeats
	}

	ticket := &models.Ticket{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		UserID:    userID,
		TripID:    trip.ID,
	}

	if err := s.tickets.Book(ctx, ticket); err != nil {
		if err == apperrors.ErrNoSeats {
			// Lost the race for the last seat to a concurrent booking
			metrics.BookingRejections.WithLabelValues("no_seats").Inc()
		}
		return nil, err
	}
	ticket.TripDeparture = trip.Departure

	metrics.TicketsBooked.Inc()
	s.publish(ctx, models.EventTicketBooked, models.TicketBookedEvent{
		TicketID:  ticket.ID,
		TripID:    trip.ID,
		UserID:    userID,
		Timestamp: time.Now(),
	})

	return ticket, nil
}

// Return cancels a ticket: owned by the caller, trip not yet departed,
// not already returned. The flag flips false to true exactly once; the seat
// becomes available to the inventory engine's next computation for free.
func (s *TicketService) Return(ctx context.Context, userID, ticketID int64) (*models.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, apperrors.ErrNotFound
	}

	if ticket.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	if !ticket.TripDeparture.After(time.Now()) {
		return nil, apperrors.ErrPastTrip
	}

	if ticket.Returned {
		return nil, apperrors.ErrAlreadyReturned
	}

	if err := s.tickets.Return(ctx, ticketID); err != nil {
		return nil, err
	}
	ticket.Returned = true

	metrics.TicketsReturned.Inc()
	s.publish(ctx, models.EventTicketReturned, models.TicketReturnedEvent{
		TicketID:  ticket.ID,
		TripID:    ticket.TripID,
		UserID:    userID,
		Timestamp: time.Now(),
	})

	return ticket, nil
}

// List returns the caller's tickets, optionally narrowed to a time window,
// a returned state, and sorted by trip departure.
func (s *TicketService) List(ctx context.Context, userID int64, filter models.ListTicketsFilter) ([]models.Ticket, error) {
	tickets, err := s.tickets.GetByUserID(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	if tickets == nil {
		tickets = []models.Ticket{}
	}
	return tickets, nil
}

func (s *TicketService) publish(ctx context.Context, subject string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
