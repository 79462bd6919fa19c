package service

import (
	"context"
	"fmt"

	"busenjoyer/internal/models"

	apperrors "busenjoyer/internal/errors"
)

// FleetService manages a partner company's buses.
type FleetService struct {
	buses BusStore
}

func NewFleetService(buses BusStore) *FleetService {
	return &FleetService{buses: buses}
}

func (s *FleetService) List(ctx context.Context, companyID int64) ([]models.BusListItem, error) {
	buses, err := s.buses.GetByCompanyID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list buses: %w", err)
	}

	if buses == nil {
		buses = []models.BusListItem{}
	}
	return buses, nil
}

func (s *FleetService) Create(ctx context.Context, companyID int64, req *models.CreateBusRequest) (*models.Bus, error) {
	if req.Seats < 1 {
		return nil, apperrors.Validation("seats", "must be at least 1")
	}

	bus := &models.Bus{
		LicencePlate: req.LicencePlate,
		Seats:        req.Seats,
		Brand:        req.Brand,
		CompanyID:    companyID,
	}

	if err := s.buses.Create(ctx, bus); err != nil {
		return nil, err
	}

	return bus, nil
}

// Update resizes a bus. Ownership is checked here; the capacity safeguard
// against shrinking below sold seats lives in the store, under a lock.
func (s *FleetService) Update(ctx context.Context, companyID, busID int64, req *models.UpdateBusRequest) (*models.Bus, error) {
	if req.Seats < 1 {
		return nil, apperrors.Validation("seats", "must be at least 1")
	}

	bus, err := s.getOwned(ctx, companyID, busID)
	if err != nil {
		return nil, err
	}

	if err := s.buses.UpdateSeats(ctx, busID, req.Seats, req.Brand); err != nil {
		return nil, err
	}

	bus.Seats = req.Seats
	bus.Brand = req.Brand
	return bus, nil
}

func (s *FleetService) Delete(ctx context.Context, companyID, busID int64) error {
	if _, err := s.getOwned(ctx, companyID, busID); err != nil {
		return err
	}

	return s.buses.Delete(ctx, busID)
}

func (s *FleetService) getOwned(ctx context.Context, companyID, busID int64) (*models.Bus, error) {
	bus, err := s.buses.GetByID(ctx, busID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bus: %w", err)
	}
	if bus == nil {
		return nil, apperrors.ErrNotFound
	}
	if bus.CompanyID != companyID {
		return nil, apperrors.ErrForbidden
	}

	return bus, nil
}
