package service

import (
	"context"
	"fmt"
	"time"

	"busenjoyer/internal/inventory"
	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

const dateLayout = "2006-01-02"

// SearchService answers "which trips between two cities on a date still have
// capacity for N passengers". It composes the catalog with the inventory
// engine and performs no mutation.
type SearchService struct {
	trips     TripStore
	inventory *inventory.Engine
}

func NewSearchService(trips TripStore, engine *inventory.Engine) *SearchService {
	return &SearchService{trips: trips, inventory: engine}
}

func (s *SearchService) Search(ctx context.Context, req *models.SearchTripsRequest) (models.SearchTripsResponse, error) {
	day, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	candidates, err := s.trips.Search(ctx, req.OriginCityID, req.DestinationCityID, day, req.Sort)
	if err != nil {
		return nil, fmt.Errorf("failed to search trips: %w", err)
	}

	result := models.SearchTripsResponse{}
	for i := range candidates {
		trip := &candidates[i]

		remaining, err := s.inventory.Remaining(ctx, trip)
		if err != nil {
			return nil, fmt.Errorf("failed to compute remaining seats: %w", err)
		}

		if remaining < req.Passengers {
			continue
		}

		total := trip.Price * int64(req.Passengers)
		result = append(result, models.SearchTripsResponseItem{
			Trip:           *trip,
			RemainingSeats: remaining,
			TotalPrice:     total,
			PriceDisplay:   fmt.Sprintf("%.2f", float64(total)/100.0),
		})
	}

	return result, nil
}

func (s *SearchService) validate(req *models.SearchTripsRequest) (time.Time, error) {
	if req.OriginCityID == 0 {
		return time.Time{}, apperrors.Validation("origin_city_id", "is required")
	}
	if req.DestinationCityID == 0 {
		return time.Time{}, apperrors.Validation("destination_city_id", "is required")
	}
	if req.Date == "" {
		return time.Time{}, apperrors.Validation("date", "is required")
	}
	if req.Passengers < 1 {
		return time.Time{}, apperrors.Validation("passengers", "must be at least 1")
	}

	day, err := time.ParseInLocation(dateLayout, req.Date, time.Local)
	if err != nil {
		return time.Time{}, apperrors.Validation("date", "must be a date in YYYY-MM-DD format")
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if day.Before(today) {
		return time.Time{}, apperrors.Validation("date", "must not be in the past")
	}

	switch req.Sort {
	case models.SortNone, models.SortAsc, models.SortDesc:
	default:
		return time.Time{}, apperrors.Validation("sort", "must be asc or desc")
	}

	return day, nil
}
