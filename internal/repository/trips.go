package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"busenjoyer/internal/database"
	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

type TripRepository struct {
	db *database.DB
}

func NewTripRepository(db *database.DB) *TripRepository {
	return &TripRepository{db: db}
}

const tripColumns = `
	t.id, t.departure, t.arrival, t.price, t.bus_id,
	t.departure_station_id, t.arrival_station_id,
	t.origin_city_id, t.destination_city_id,
	t.created_at, t.updated_at, b.seats, b.company_id`

func scanTrip(row interface{ Scan(...interface{}) error }, trip *models.Trip) error {
	return row.Scan(
		&trip.ID,
		&trip.Departure,
		&trip.Arrival,
		&trip.Price,
		&trip.BusID,
		&trip.DepartureStation,
		&trip.ArrivalStation,
		&trip.OriginCityID,
		&trip.DestinationCityID,
		&trip.CreatedAt,
		&trip.UpdatedAt,
		&trip.Seats,
		&trip.CompanyID,
	)
}

func (r *TripRepository) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	trip := &models.Trip{}
	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		WHERE t.id = $1`

	err := scanTrip(r.db.QueryRowContext(ctx, query, id), trip)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return trip, err
}

// Search returns candidate trips for a route on a calendar day. Same-day
// searches exclude trips that already departed. Capacity filtering happens
// above this layer, in the inventory engine.
func (r *TripRepository) Search(ctx context.Context, originCityID, destinationCityID int64, day time.Time, sort models.SortOrder) ([]models.Trip, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	lowerBound := dayStart
	if now := time.Now(); now.After(dayStart) && now.Before(dayEnd) {
		lowerBound = now
	}

	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		WHERE t.origin_city_id = $1
		  AND t.destination_city_id = $2
		  AND t.departure >= $3
		  AND t.departure < $4`

	switch sort {
	case models.SortDesc:
		query += " ORDER BY t.departure DESC"
	default:
		query += " ORDER BY t.departure ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, originCityID, destinationCityID, lowerBound, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

// GetByCompanyID lists a company's trips filtered by time window and sorted
// by departure. One query builder for every partner listing variant.
func (r *TripRepository) GetByCompanyID(ctx context.Context, companyID int64, filter models.ListTripsFilter) ([]models.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		WHERE b.company_id = $1`

	switch filter.Window {
	case models.WindowFuture:
		query += " AND t.departure > NOW()"
	case models.WindowPast:
		query += " AND t.departure < NOW()"
	}

	switch filter.Sort {
	case models.SortDesc:
		query += " ORDER BY t.departure DESC"
	default:
		query += " ORDER BY t.departure ASC"
	}

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrips(rows)
}

func collectTrips(rows *sql.Rows) ([]models.Trip, error) {
	var trips []models.Trip
	for rows.Next() {
		var trip models.Trip
		if err := scanTrip(rows, &trip); err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	query := `
		INSERT INTO trips (departure, arrival, price, bus_id,
		                   departure_station_id, arrival_station_id,
		                   origin_city_id, destination_city_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		trip.Departure,
		trip.Arrival,
		trip.Price,
		trip.BusID,
		trip.DepartureStation,
		trip.ArrivalStation,
		trip.OriginCityID,
		trip.DestinationCityID,
	).Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt)

	return mapConstraintError(err)
}

// Update rewrites a trip's schedule, price and route. The lock check and the
// ownership check run inside the same transaction as the write, with the
// trip row locked, so "zero tickets exist" cannot go stale between check and
// mutation.
func (r *TripRepository) Update(ctx context.Context, trip *models.Trip, companyID int64) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := lockTripForMutation(ctx, tx, trip.ID, companyID); err != nil {
			return err
		}

		query := `
			UPDATE trips
			SET departure = $1, arrival = $2, price = $3, bus_id = $4,
			    departure_station_id = $5, arrival_station_id = $6,
			    origin_city_id = $7, destination_city_id = $8,
			    updated_at = NOW()
			WHERE id = $9
			RETURNING updated_at`

		err := tx.QueryRowContext(ctx, query,
			trip.Departure,
			trip.Arrival,
			trip.Price,
			trip.BusID,
			trip.DepartureStation,
			trip.ArrivalStation,
			trip.OriginCityID,
			trip.DestinationCityID,
			trip.ID,
		).Scan(&trip.UpdatedAt)

		return mapConstraintError(err)
	})
}

func (r *TripRepository) Delete(ctx context.Context, id, companyID int64) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := lockTripForMutation(ctx, tx, id, companyID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `DELETE FROM trips WHERE id = $1`, id)
		return err
	})
}

// lockTripForMutation locks the trip row, verifies the acting company owns
// it, and rejects the mutation when any ticket - returned or not - exists.
// History of any booking freezes the schedule.
func lockTripForMutation(ctx context.Context, tx *sql.Tx, tripID, companyID int64) error {
	var owner int64
	lockQuery := `
		SELECT b.company_id
		FROM trips t
		JOIN buses b ON b.id = t.bus_id
		WHERE t.id = $1
		FOR UPDATE OF t`

	err := tx.QueryRowContext(ctx, lockQuery, tripID).Scan(&owner)
	if err == sql.ErrNoRows {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock trip: %w", err)
	}

	if owner != companyID {
		return apperrors.ErrForbidden
	}

	var tickets int
	countQuery := `SELECT COUNT(*) FROM tickets WHERE trip_id = $1`
	if err := tx.QueryRowContext(ctx, countQuery, tripID).Scan(&tickets); err != nil {
		return fmt.Errorf("failed to count tickets: %w", err)
	}

	if tickets > 0 {
		return apperrors.ErrTripLocked
	}

	return nil
}
