package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	apperrors "busenjoyer/internal/errors"
	"busenjoyer/internal/models"
)

// memStore is the shared state behind the in-memory store fakes. One mutex
// guards everything, so tripStoreFake, ticketStoreFake and busStoreFake see
// a consistent view. ticketStoreFake.Book holds the mutex across the capacity
// check and the insert, matching the row-lock transaction the real store
// runs, so the booking tests exercise the same atomicity contract.
type memStore struct {
	mu sync.Mutex

	buses   map[int64]*models.Bus
	trips   map[int64]*models.Trip
	tickets map[int64]*models.Ticket

	nextBusID    int64
	nextTripID   int64
	nextTicketID int64
}

func newMemStore() *memStore {
	return &memStore{
		buses:   make(map[int64]*models.Bus),
		trips:   make(map[int64]*models.Trip),
		tickets: make(map[int64]*models.Ticket),
	}
}

func (m *memStore) tripStore() *tripStoreFake     { return &tripStoreFake{m} }
func (m *memStore) ticketStore() *ticketStoreFake { return &ticketStoreFake{m} }
func (m *memStore) busStore() *busStoreFake       { return &busStoreFake{m} }

func (m *memStore) addBus(seats int, companyID int64) *models.Bus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextBusID++
	bus := &models.Bus{
		ID:           m.nextBusID,
		LicencePlate: fmt.Sprintf("AA%04dBB", m.nextBusID),
		Seats:        seats,
		CompanyID:    companyID,
	}
	m.buses[bus.ID] = bus
	return bus
}

func (m *memStore) addTrip(busID int64, departure time.Time, originCityID, destinationCityID int64, price int64) *models.Trip {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextTripID++
	trip := &models.Trip{
		ID:                m.nextTripID,
		Departure:         departure,
		Arrival:           departure.Add(4 * time.Hour),
		Price:             price,
		BusID:             busID,
		OriginCityID:      originCityID,
		DestinationCityID: destinationCityID,
	}
	m.trips[trip.ID] = trip
	return trip
}

// tripView mimics the join with buses the real trip queries perform.
func (m *memStore) tripView(trip *models.Trip) *models.Trip {
	view := *trip
	if bus, ok := m.buses[trip.BusID]; ok {
		view.Seats = bus.Seats
		view.CompanyID = bus.CompanyID
	}
	return &view
}

func (m *memStore) countActiveLocked(tripID int64) int {
	active := 0
	for _, t := range m.tickets {
		if t.TripID == tripID && !t.Returned {
			active++
		}
	}
	return active
}

func (m *memStore) countAllLocked(tripID int64) int {
	all := 0
	for _, t := range m.tickets {
		if t.TripID == tripID {
			all++
		}
	}
	return all
}

// ticketStoreFake implements TicketStore.
type ticketStoreFake struct{ *memStore }

func (f *ticketStoreFake) Book(ctx context.Context, ticket *models.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	trip, ok := f.trips[ticket.TripID]
	if !ok {
		return apperrors.ErrNotFound
	}

	bus := f.buses[trip.BusID]
	if f.countActiveLocked(trip.ID) >= bus.Seats {
		return apperrors.ErrNoSeats
	}

	f.nextTicketID++
	stored := *ticket
	stored.ID = f.nextTicketID
	stored.PurchaseAt = time.Now()
	stored.Returned = false
	f.tickets[stored.ID] = &stored

	ticket.ID = stored.ID
	ticket.PurchaseAt = stored.PurchaseAt
	ticket.Returned = false
	return nil
}

func (f *ticketStoreFake) Return(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if ticket.Returned {
		return apperrors.ErrAlreadyReturned
	}

	ticket.Returned = true
	return nil
}

func (f *ticketStoreFake) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ticket, ok := f.tickets[id]
	if !ok {
		return nil, nil
	}

	view := *ticket
	if trip, ok := f.trips[ticket.TripID]; ok {
		view.TripDeparture = trip.Departure
	}
	return &view, nil
}

func (f *ticketStoreFake) GetByUserID(ctx context.Context, userID int64, filter models.ListTicketsFilter) ([]models.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	var result []models.Ticket
	for _, ticket := range f.tickets {
		if ticket.UserID != userID {
			continue
		}

		view := *ticket
		if trip, ok := f.trips[ticket.TripID]; ok {
			view.TripDeparture = trip.Departure
		}

		switch filter.Window {
		case models.WindowFuture:
			if !view.TripDeparture.After(now) {
				continue
			}
		case models.WindowPast:
			if view.TripDeparture.After(now) {
				continue
			}
		}

		if filter.Returned != nil && view.Returned != *filter.Returned {
			continue
		}

		result = append(result, view)
	}

	switch filter.Sort {
	case models.SortAsc:
		sort.Slice(result, func(i, j int) bool {
			return result[i].TripDeparture.Before(result[j].TripDeparture)
		})
	case models.SortDesc:
		sort.Slice(result, func(i, j int) bool {
			return result[i].TripDeparture.After(result[j].TripDeparture)
		})
	}

	return result, nil
}

func (f *ticketStoreFake) CountActive(ctx context.Context, tripID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.countActiveLocked(tripID), nil
}

// tripStoreFake implements TripStore.
type tripStoreFake struct{ *memStore }

func (f *tripStoreFake) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	trip, ok := f.trips[id]
	if !ok {
		return nil, nil
	}
	return f.tripView(trip), nil
}

func (f *tripStoreFake) Search(ctx context.Context, originCityID, destinationCityID int64, day time.Time, sortOrder models.SortOrder) ([]models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	lower := day
	upper := day.Add(24 * time.Hour)
	if now := time.Now(); now.After(lower) {
		lower = now
	}

	var result []models.Trip
	for _, trip := range f.trips {
		if trip.OriginCityID != originCityID || trip.DestinationCityID != destinationCityID {
			continue
		}
		if !trip.Departure.After(lower) || !trip.Departure.Before(upper) {
			continue
		}
		result = append(result, *f.tripView(trip))
	}

	switch sortOrder {
	case models.SortDesc:
		sort.Slice(result, func(i, j int) bool {
			return result[i].Departure.After(result[j].Departure)
		})
	default:
		sort.Slice(result, func(i, j int) bool {
			return result[i].Departure.Before(result[j].Departure)
		})
	}

	return result, nil
}

func (f *tripStoreFake) GetByCompanyID(ctx context.Context, companyID int64, filter models.ListTripsFilter) ([]models.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.Trip
	for _, trip := range f.trips {
		view := f.tripView(trip)
		if view.CompanyID != companyID {
			continue
		}
		result = append(result, *view)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Departure.Before(result[j].Departure)
	})
	return result, nil
}

func (f *tripStoreFake) Create(ctx context.Context, trip *models.Trip) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextTripID++
	trip.ID = f.nextTripID
	trip.CreatedAt = time.Now()
	trip.UpdatedAt = trip.CreatedAt
	stored := *trip
	f.trips[trip.ID] = &stored
	return nil
}

func (f *tripStoreFake) Update(ctx context.Context, trip *models.Trip, companyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.trips[trip.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if bus := f.buses[existing.BusID]; bus == nil || bus.CompanyID != companyID {
		return apperrors.ErrForbidden
	}
	if f.countAllLocked(trip.ID) > 0 {
		return apperrors.ErrTripLocked
	}

	stored := *trip
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	f.trips[trip.ID] = &stored
	return nil
}

func (f *tripStoreFake) Delete(ctx context.Context, id, companyID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.trips[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if bus := f.buses[existing.BusID]; bus == nil || bus.CompanyID != companyID {
		return apperrors.ErrForbidden
	}
	if f.countAllLocked(id) > 0 {
		return apperrors.ErrTripLocked
	}

	delete(f.trips, id)
	return nil
}

// busStoreFake implements BusStore.
type busStoreFake struct{ *memStore }

func (f *busStoreFake) GetByID(ctx context.Context, id int64) (*models.Bus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bus, ok := f.buses[id]
	if !ok {
		return nil, nil
	}
	view := *bus
	return &view, nil
}

func (f *busStoreFake) GetByCompanyID(ctx context.Context, companyID int64) ([]models.BusListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []models.BusListItem
	for _, bus := range f.buses {
		if bus.CompanyID != companyID {
			continue
		}

		tripCount := 0
		for _, trip := range f.trips {
			if trip.BusID == bus.ID {
				tripCount++
			}
		}

		result = append(result, models.BusListItem{Bus: *bus, TripCount: tripCount})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *busStoreFake) Create(ctx context.Context, bus *models.Bus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextBusID++
	bus.ID = f.nextBusID
	stored := *bus
	f.buses[bus.ID] = &stored
	return nil
}

func (f *busStoreFake) UpdateSeats(ctx context.Context, id int64, seats int, brand string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bus, ok := f.buses[id]
	if !ok {
		return apperrors.ErrNotFound
	}

	if seats < bus.Seats {
		maxSold := 0
		for _, trip := range f.trips {
			if trip.BusID != id {
				continue
			}
			if sold := f.countActiveLocked(trip.ID); sold > maxSold {
				maxSold = sold
			}
		}
		if seats < maxSold {
			return apperrors.Validation("seats", fmt.Sprintf("cannot shrink below %d already sold seats", maxSold))
		}
	}

	bus.Seats = seats
	bus.Brand = brand
	return nil
}

func (f *busStoreFake) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	bus, ok := f.buses[id]
	if !ok {
		return apperrors.ErrNotFound
	}

	for _, trip := range f.trips {
		if trip.BusID == bus.ID {
			return apperrors.ErrBusInUse
		}
	}

	delete(f.buses, id)
	return nil
}

// fakePublisher records published subjects.
type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (p *fakePublisher) Publish(subject string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return nil
}

func (p *fakePublisher) published(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	count := 0
	for _, s := range p.subjects {
		if s == subject {
			count++
		}
	}
	return count
}
