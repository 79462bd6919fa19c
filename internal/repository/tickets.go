package repository

import (
	"context"
	"database/sql"
	"fmt"

	"busenjoyer/internal/database"
	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Book inserts a ticket after re-checking capacity under a row lock on the
// trip. The naive "count tickets, then insert" sequence is unsafe under
// concurrency: two bookings racing for the last seat would both pass the
// count. Holding FOR UPDATE on the trip row serializes the check-then-insert
// against other bookings for the same trip.
func (r *TicketRepository) Book(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		var capacity int
		lockQuery := `
			SELECT b.seats
			FROM trips t
			JOIN buses b ON b.id = t.bus_id
			WHERE t.id = $1
			FOR UPDATE OF t`

		err := tx.QueryRowContext(ctx, lockQuery, ticket.TripID).Scan(&capacity)
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock trip: %w", err)
		}

		var active int
		countQuery := `SELECT COUNT(*) FROM tickets WHERE trip_id = $1 AND NOT returned`
		if err := tx.QueryRowContext(ctx, countQuery, ticket.TripID).Scan(&active); err != nil {
			return fmt.Errorf("failed to count active tickets: %w", err)
		}

		if active >= capacity {
			return apperrors.ErrNoSeats
		}

		insertQuery := `
			INSERT INTO tickets (first_name, last_name, user_id, trip_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id, purchase_at, returned`

		err = tx.QueryRowContext(ctx, insertQuery,
			ticket.FirstName,
			ticket.LastName,
			ticket.UserID,
			ticket.TripID,
		).Scan(&ticket.ID, &ticket.PurchaseAt, &ticket.Returned)
		if err != nil {
			return fmt.Errorf("failed to insert ticket: %w", err)
		}

		return nil
	})
}

// Return flips the returned flag exactly once. The conditional WHERE makes a
// repeated return report zero affected rows instead of silently succeeding.
func (r *TicketRepository) Return(ctx context.Context, id int64) error {
	query := `UPDATE tickets SET returned = TRUE WHERE id = $1 AND NOT returned`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrAlreadyReturned
	}

	return nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	query := `
		SELECT t.id, t.first_name, t.last_name, t.user_id, t.trip_id,
		       t.purchase_at, t.returned, tr.departure
		FROM tickets t
		JOIN trips tr ON tr.id = t.trip_id
		WHERE t.id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.FirstName,
		&ticket.LastName,
		&ticket.UserID,
		&ticket.TripID,
		&ticket.PurchaseAt,
		&ticket.Returned,
		&ticket.TripDeparture,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return ticket, err
}

// CountActive counts non-returned tickets for a trip. The seat inventory is
// derived from this count on every read, never cached.
func (r *TicketRepository) CountActive(ctx context.Context, tripID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tickets WHERE trip_id = $1 AND NOT returned`

	if err := r.db.QueryRowContext(ctx, query, tripID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active tickets: %w", err)
	}

	return count, nil
}

// CountAll counts tickets for a trip regardless of the returned flag. Used
// by the trip lock check: even a fully returned trip keeps its history.
func (r *TicketRepository) CountAll(ctx context.Context, tripID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM tickets WHERE trip_id = $1`

	if err := r.db.QueryRowContext(ctx, query, tripID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}

	return count, nil
}

// GetByUserID lists a user's tickets filtered by time window, returned flag
// and sorted by trip departure. One query builder instead of a listing
// variant per filter combination.
func (r *TicketRepository) GetByUserID(ctx context.Context, userID int64, filter models.ListTicketsFilter) ([]models.Ticket, error) {
	var args []interface{}
	argIndex := 1

	query := `
		SELECT t.id, t.first_name, t.last_name, t.user_id, t.trip_id,
		       t.purchase_at, t.returned, tr.departure
		FROM tickets t
		JOIN trips tr ON tr.id = t.trip_id
		WHERE t.user_id = $1`
	args = append(args, userID)
	argIndex++

	switch filter.Window {
	case models.WindowFuture:
		query += " AND tr.departure > NOW()"
	case models.WindowPast:
		query += " AND tr.departure < NOW()"
	}

	if filter.Returned != nil {
		query += fmt.Sprintf(" AND t.returned = $%d", argIndex)
		args = append(args, *filter.Returned)
		argIndex++
	}

	switch filter.Sort {
	case models.SortDesc:
		query += " ORDER BY tr.departure DESC"
	default:
		query += " ORDER BY tr.departure ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.FirstName,
			&ticket.LastName,
			&ticket.UserID,
			&ticket.TripID,
			&ticket.PurchaseAt,
			&ticket.Returned,
			&ticket.TripDeparture,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	return tickets, rows.Err()
}

// FindOverbooked reports trips whose active ticket count exceeds the bus
// capacity. A non-empty result means a missed concurrency guard somewhere.
func (r *TicketRepository) FindOverbooked(ctx context.Context) ([]models.Trip, error) {
	query := `
		SELECT t.id, t.departure, b.seats, COUNT(tk.id) AS active
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		JOIN tickets tk ON tk.trip_id = t.id AND NOT tk.returned
		GROUP BY t.id, t.departure, b.seats
		HAVING COUNT(tk.id) > b.seats`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		var active int
		if err := rows.Scan(&trip.ID, &trip.Departure, &trip.Seats, &active); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}
