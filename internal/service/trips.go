package service

import (
	"context"
	"fmt"
	"time"

	"busenjoyer/internal/logger"
	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

// TripService is the partner-facing side of the trip catalog. Every write is
// scoped to the acting partner's company; the freeze rules for ticketed
// trips are enforced by the store inside the mutation transaction.
type TripService struct {
	trips  TripStore
	buses  BusStore
	events Publisher
}

func NewTripService(trips TripStore, buses BusStore, events Publisher) *TripService {
	return &TripService{trips: trips, buses: buses, events: events}
}

func (s *TripService) Create(ctx context.Context, companyID int64, req *models.CreateTripRequest) (*models.Trip, error) {
	if err := s.validate(ctx, companyID, req); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		Departure:         req.Departure,
		Arrival:           req.Arrival,
		Price:             req.Price,
		BusID:             req.BusID,
		DepartureStation:  req.DepartureStation,
		ArrivalStation:    req.ArrivalStation,
		OriginCityID:      req.OriginCityID,
		DestinationCityID: req.DestinationCityID,
	}

	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.publish(ctx, models.EventTripCreated, models.TripCreatedEvent{
		TripID:    trip.ID,
		BusID:     trip.BusID,
		Departure: trip.Departure,
		Timestamp: time.Now(),
	})

	return trip, nil
}

func (s *TripService) Update(ctx context.Context, companyID, tripID int64, req *models.CreateTripRequest) (*models.Trip, error) {
	if err := s.validate(ctx, companyID, req); err != nil {
		return nil, err
	}

	trip := &models.Trip{
		ID:                tripID,
		Departure:         req.Departure,
		Arrival:           req.Arrival,
		Price:             req.Price,
		BusID:             req.BusID,
		DepartureStation:  req.DepartureStation,
		ArrivalStation:    req.ArrivalStation,
		OriginCityID:      req.OriginCityID,
		DestinationCityID: req.DestinationCityID,
	}

	if err := s.trips.Update(ctx, trip, companyID); err != nil {
		return nil, err
	}

	return trip, nil
}

func (s *TripService) Delete(ctx context.Context, companyID, tripID int64) error {
	if err := s.trips.Delete(ctx, tripID, companyID); err != nil {
		return err
	}

	s.publish(ctx, models.EventTripDeleted, models.TripDeletedEvent{
		TripID:    tripID,
		Timestamp: time.Now(),
	})

	return nil
}

func (s *TripService) List(ctx context.Context, companyID int64, filter models.ListTripsFilter) ([]models.Trip, error) {
	trips, err := s.trips.GetByCompanyID(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}

	if trips == nil {
		trips = []models.Trip{}
	}
	return trips, nil
}

// validate rejects malformed schedules and buses the partner does not own.
func (s *TripService) validate(ctx context.Context, companyID int64, req *models.CreateTripRequest) error {
	if !req.Arrival.After(req.Departure) {
		return apperrors.Validation("arrival", "must be after departure")
	}
	if req.Price <= 0 {
		return apperrors.Validation("price", "must be positive")
	}
	if req.OriginCityID == req.DestinationCityID {
		return apperrors.Validation("destination_city_id", "must differ from origin")
	}

	bus, err := s.buses.GetByID(ctx, req.BusID)
	if err != nil {
		return fmt.Errorf("failed to get bus: %w", err)
	}
	if bus == nil {
		return apperrors.ErrNotFound
	}
	if bus.CompanyID != companyID {
		return apperrors.ErrForbidden
	}

	return nil
}

func (s *TripService) publish(ctx context.Context, subject string, data interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"event_type", subject)
	}
}
