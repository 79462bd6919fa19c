package repository

import (
	"context"
	"database/sql"

	"busenjoyer/internal/database"
	"busenjoyer/internal/models"
)

type CityRepository struct {
	db *database.DB
}

func NewCityRepository(db *database.DB) *CityRepository {
	return &CityRepository{db: db}
}

func (r *CityRepository) List(ctx context.Context) ([]models.City, error) {
	query := `SELECT id, name, region, country FROM cities ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var city models.City
		if err := rows.Scan(&city.ID, &city.Name, &city.Region, &city.Country); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}

	return cities, rows.Err()
}

func (r *CityRepository) GetByID(ctx context.Context, id int64) (*models.City, error) {
	city := &models.City{}
	query := `SELECT id, name, region, country FROM cities WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(&city.ID, &city.Name, &city.Region, &city.Country)
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return city, err
}

func (r *CityRepository) Create(ctx context.Context, city *models.City) error {
	query := `
		INSERT INTO cities (name, region, country)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, city.Name, city.Region, city.Country).Scan(&city.ID)
	return mapConstraintError(err)
}
