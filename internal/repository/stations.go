package repository

import (
	"context"
	"database/sql"

	"busenjoyer/internal/database"
	"busenjoyer/internal/models"
)

type StationRepository struct {
	db *database.DB
}

func NewStationRepository(db *database.DB) *StationRepository {
	return &StationRepository{db: db}
}

const stationColumns = `id, name, street_type, street, number, city_id`

func (r *StationRepository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	station := &models.Station{}
	query := `SELECT ` + stationColumns + ` FROM stations WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&station.ID,
		&station.Name,
		&station.StreetType,
		&station.Street,
		&station.Number,
		&station.CityID,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return station, err
}

// GetByCityID lists stations of a city for the station pickers.
func (r *StationRepository) GetByCityID(ctx context.Context, cityID int64) ([]models.Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations WHERE city_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStations(rows)
}

func (r *StationRepository) List(ctx context.Context) ([]models.Station, error) {
	query := `SELECT ` + stationColumns + ` FROM stations ORDER BY city_id, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStations(rows)
}

func collectStations(rows *sql.Rows) ([]models.Station, error) {
	var stations []models.Station
	for rows.Next() {
		var station models.Station
		err := rows.Scan(
			&station.ID,
			&station.Name,
			&station.StreetType,
			&station.Street,
			&station.Number,
			&station.CityID,
		)
		if err != nil {
			return nil, err
		}
		stations = append(stations, station)
	}
	return stations, rows.Err()
}

func (r *StationRepository) Create(ctx context.Context, station *models.Station) error {
	query := `
		INSERT INTO stations (name, street_type, street, number, city_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		station.Name,
		station.StreetType,
		station.Street,
		station.Number,
		station.CityID,
	).Scan(&station.ID)

	return mapConstraintError(err)
}
