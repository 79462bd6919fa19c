package service

import (
	"context"
	"fmt"
	"time"

	"busenjoyer/internal/logger"
	"busenjoyer/internal/models"
	"busenjoyer/internal/search"

	apperrors "busenjoyer/internal/errors"
)

// GeoService owns the city/station reference data. Mutations publish events
// so the consumers keep the Elasticsearch suggest index in sync; the service
// itself never blocks on indexing.
type GeoService struct {
	cities   CityStore
	stations StationStore
	es       *search.ElasticsearchClient
	events   Publisher
}

func NewGeoService(cities CityStore, stations StationStore, es *search.ElasticsearchClient, events Publisher) *GeoService {
	return &GeoService{
		cities:   cities,
		stations: stations,
		es:       es,
		events:   events,
	}
}

func (s *GeoService) ListCities(ctx context.Context) ([]models.City, error) {
	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}

	if cities == nil {
		cities = []models.City{}
	}
	return cities, nil
}

func (s *GeoService) CreateCity(ctx context.Context, req *models.CreateCityRequest) (*models.City, error) {
	city := &models.City{
		Name:    req.Name,
		Region:  req.Region,
		Country: req.Country,
	}

	if err := s.cities.Create(ctx, city); err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventCityCreated, models.CityCreatedEvent{
		CityID:    city.ID,
		Timestamp: time.Now(),
	})

	return city, nil
}

// ListStations returns stations of one city when cityID is nonzero, all
// stations otherwise.
func (s *GeoService) ListStations(ctx context.Context, cityID int64) ([]models.Station, error) {
	var stations []models.Station
	var err error

	if cityID != 0 {
		stations, err = s.stations.GetByCityID(ctx, cityID)
	} else {
		stations, err = s.stations.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}

	if stations == nil {
		stations = []models.Station{}
	}
	return stations, nil
}

func (s *GeoService) CreateStation(ctx context.Context, req *models.CreateStationRequest) (*models.Station, error) {
	city, err := s.cities.GetByID(ctx, req.CityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, apperrors.ErrNotFound
	}

	station := &models.Station{
		Name:       req.Name,
		StreetType: req.StreetType,
		Street:     req.Street,
		Number:     req.Number,
		CityID:     req.CityID,
	}

	if err := s.stations.Create(ctx, station); err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventStationCreated, models.StationCreatedEvent{
		StationID: station.ID,
		Timestamp: time.Now(),
	})

	return station, nil
}

// Suggest answers typeahead lookups from the geo index.
func (s *GeoService) Suggest(ctx context.Context, query string, size int) ([]models.GeoSuggestion, error) {
	if query == "" {
		return nil, apperrors.Validation("query", "is required")
	}
	if s.es == nil {
		return nil, fmt.Errorf("suggest index is not available")
	}

	return s.es.Suggest(ctx, query, size)
}

func (s *GeoService) publish(ctx context.Context, subject string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
