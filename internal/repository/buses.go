package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"busenjoyer/internal/database"
	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

type BusRepository struct {
	db *database.DB
}

func NewBusRepository(db *database.DB) *BusRepository {
	return &BusRepository{db: db}
}

func (r *BusRepository) GetByID(ctx context.Context, id int64) (*models.Bus, error) {
	bus := &models.Bus{}
	query := `
		SELECT id, licence_plate, seats, brand, company_id
		FROM buses
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&bus.ID,
		&bus.LicencePlate,
		&bus.Seats,
		&bus.Brand,
		&bus.CompanyID,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return bus, err
}

// GetByCompanyID lists a company's buses with the number of trips assigned
// to each, in one aggregate query.
func (r *BusRepository) GetByCompanyID(ctx context.Context, companyID int64) ([]models.BusListItem, error) {
	query := `
		SELECT b.id, b.licence_plate, b.seats, b.brand, b.company_id,
		       COUNT(t.id) AS trip_count
		FROM buses b
		LEFT JOIN trips t ON t.bus_id = b.id
		WHERE b.company_id = $1
		GROUP BY b.id
		ORDER BY b.licence_plate`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buses []models.BusListItem
	for rows.Next() {
		var item models.BusListItem
		err := rows.Scan(
			&item.ID,
			&item.LicencePlate,
			&item.Seats,
			&item.Brand,
			&item.CompanyID,
			&item.TripCount,
		)
		if err != nil {
			return nil, err
		}
		buses = append(buses, item)
	}

	return buses, rows.Err()
}

func (r *BusRepository) Create(ctx context.Context, bus *models.Bus) error {
	query := `
		INSERT INTO buses (licence_plate, seats, brand, company_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		bus.LicencePlate,
		bus.Seats,
		bus.Brand,
		bus.CompanyID,
	).Scan(&bus.ID)

	return mapConstraintError(err)
}

// UpdateSeats resizes a bus. The new capacity must cover the largest active
// ticket count among the bus's trips; shrinking below it would break the
// seat invariant for an in-flight trip. Checked under a lock on the bus row
// so a concurrent booking cannot slip in between check and write.
func (r *BusRepository) UpdateSeats(ctx context.Context, id int64, seats int, brand string) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx, `SELECT seats FROM buses WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return apperrors.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock bus: %w", err)
		}

		if seats < current {
			var maxActive int
			query := `
				SELECT COALESCE(MAX(cnt), 0) FROM (
					SELECT COUNT(tk.id) AS cnt
					FROM trips t
					JOIN tickets tk ON tk.trip_id = t.id AND NOT tk.returned
					WHERE t.bus_id = $1
					GROUP BY t.id
				) counts`
			if err := tx.QueryRowContext(ctx, query, id).Scan(&maxActive); err != nil {
				return fmt.Errorf("failed to count active tickets: %w", err)
			}

			if seats < maxActive {
				return apperrors.Validation("seats",
					fmt.Sprintf("cannot shrink below %d already sold seats", maxActive))
			}
		}

		_, err = tx.ExecContext(ctx, `UPDATE buses SET seats = $1, brand = $2 WHERE id = $3`, seats, brand, id)
		return err
	})
}

// Delete removes a bus unless trips reference it. The FK on trips.bus_id is
// RESTRICT, so the database is the backstop; the pre-check gives the caller
// a domain error rather than a raw constraint violation.
func (r *BusRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithinTx(ctx, func(tx *sql.Tx) error {
		var trips int
		query := `SELECT COUNT(*) FROM trips WHERE bus_id = $1`
		if err := tx.QueryRowContext(ctx, query, id).Scan(&trips); err != nil {
			return fmt.Errorf("failed to count trips: %w", err)
		}

		if trips > 0 {
			return apperrors.ErrBusInUse
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM buses WHERE id = $1`, id)
		if err != nil {
			// FK RESTRICT backstop in case a trip appeared after the count
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
				return apperrors.ErrBusInUse
			}
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperrors.ErrNotFound
		}

		return nil
	})
}

// mapConstraintError translates Postgres constraint violations into domain
// errors so handlers never see driver details.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}

	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation: referenced row is missing
			return apperrors.ErrNotFound
		case "23505": // unique_violation
			return apperrors.Validation(pqErr.Constraint, "already exists")
		case "23514": // check_violation
			return apperrors.Validation(pqErr.Constraint, "constraint violated")
		}
	}

	return err
}
