// Package inventory computes remaining seats for trips. The count is derived
// from ticket state on every read and never cached in storage: bookings and
// returns mutate tickets independently, and a persisted counter would drift.
package inventory

import (
	"context"
	"fmt"

	"busenjoyer/internal/models"
)

// ActiveTicketCounter counts non-returned tickets for a trip.
type ActiveTicketCounter interface {
	CountActive(ctx context.Context, tripID int64) (int, error)
}

// Engine answers "how many seats are left on this trip". It is a pure
// reader: it never mutates ticket or trip state.
type Engine struct {
	tickets ActiveTicketCounter
}

func NewEngine(tickets ActiveTicketCounter) *Engine {
	return &Engine{tickets: tickets}
}

// ErrNegativeSeats signals that active tickets exceed the bus capacity. The
// booking transaction makes this impossible; observing it means a missed
// concurrency guard and is treated as a consistency failure, not a domain
// error.
type ErrNegativeSeats struct {
	TripID   int64
	Capacity int
	Active   int
}

func (e *ErrNegativeSeats) Error() string {
	return fmt.Sprintf("trip %d holds %d active tickets over capacity %d", e.TripID, e.Active, e.Capacity)
}

// Remaining computes capacity minus active tickets for the trip. The trip
// must carry its bus capacity (joined read).
func (e *Engine) Remaining(ctx context.Context, trip *models.Trip) (int, error) {
	active, err := e.tickets.CountActive(ctx, trip.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tickets: %w", err)
	}

	remaining := trip.Seats - active
	if remaining < 0 {
		return 0, &ErrNegativeSeats{TripID: trip.ID, Capacity: trip.Seats, Active: active}
	}

	return remaining, nil
}
