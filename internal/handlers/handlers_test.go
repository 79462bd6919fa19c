package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "busenjoyer/internal/errors"
	"busenjoyer/internal/inventory"
	"busenjoyer/internal/middleware"
	"busenjoyer/internal/models"
	"busenjoyer/internal/service"
)

// testBackend is a minimal in-memory implementation of the store interfaces
// the exercised routes need. Booking keeps the check-then-insert atomic under
// one mutex, like the transactional store does.
type testBackend struct {
	mu      sync.Mutex
	buses   map[int64]*models.Bus
	trips   map[int64]*models.Trip
	tickets map[int64]*models.Ticket
	nextID  int64
}

func newTestBackend() *testBackend {
	return &testBackend{
		buses:   make(map[int64]*models.Bus),
		trips:   make(map[int64]*models.Trip),
		tickets: make(map[int64]*models.Ticket),
	}
}

func (b *testBackend) addBus(seats int, companyID int64) *models.Bus {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	bus := &models.Bus{ID: b.nextID, LicencePlate: fmt.Sprintf("AA%04dBB", b.nextID), Seats: seats, CompanyID: companyID}
	b.buses[bus.ID] = bus
	return bus
}

func (b *testBackend) addTrip(busID int64, departure time.Time) *models.Trip {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	trip := &models.Trip{
		ID:                b.nextID,
		Departure:         departure,
		Arrival:           departure.Add(4 * time.Hour),
		Price:             35000,
		BusID:             busID,
		OriginCityID:      1,
		DestinationCityID: 2,
	}
	b.trips[trip.ID] = trip
	return trip
}

func (b *testBackend) tripView(trip *models.Trip) *models.Trip {
	view := *trip
	if bus, ok := b.buses[trip.BusID]; ok {
		view.Seats = bus.Seats
		view.CompanyID = bus.CompanyID
	}
	return &view
}

func (b *testBackend) countActiveLocked(tripID int64) int {
	active := 0
	for _, t := range b.tickets {
		if t.TripID == tripID && !t.Returned {
			active++
		}
	}
	return active
}

func (b *testBackend) countAllLocked(tripID int64) int {
	all := 0
	for _, t := range b.tickets {
		if t.TripID == tripID {
			all++
		}
	}
	return all
}

type tripBackend struct{ *testBackend }

func (b *tripBackend) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	trip, ok := b.trips[id]
	if !ok {
		return nil, nil
	}
	return b.tripView(trip), nil
}

func (b *tripBackend) Search(ctx context.Context, originCityID, destinationCityID int64, day time.Time, sortOrder models.SortOrder) ([]models.Trip, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	lower := day
	upper := day.Add(24 * time.Hour)
	if now := time.Now(); now.After(lower) {
		lower = now
	}

	var result []models.Trip
	for _, trip := range b.trips {
		if trip.OriginCityID != originCityID || trip.DestinationCityID != destinationCityID {
			continue
		}
		if !trip.Departure.After(lower) || !trip.Departure.Before(upper) {
			continue
		}
		result = append(result, *b.tripView(trip))
	}

	sort.Slice(result, func(i, j int) bool {
		if sortOrder == models.SortDesc {
			return result[i].Departure.After(result[j].Departure)
		}
		return result[i].Departure.Before(result[j].Departure)
	})
	return result, nil
}

func (b *tripBackend) GetByCompanyID(ctx context.Context, companyID int64, filter models.ListTripsFilter) ([]models.Trip, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var result []models.Trip
	for _, trip := range b.trips {
		view := b.tripView(trip)
		if view.CompanyID == companyID {
			result = append(result, *view)
		}
	}
	return result, nil
}

func (b *tripBackend) Create(ctx context.Context, trip *models.Trip) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	trip.ID = b.nextID
	stored := *trip
	b.trips[trip.ID] = &stored
	return nil
}

func (b *tripBackend) Update(ctx context.Context, trip *models.Trip, companyID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.trips[trip.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if bus := b.buses[existing.BusID]; bus == nil || bus.CompanyID != companyID {
		return apperrors.ErrForbidden
	}
	if b.countAllLocked(trip.ID) > 0 {
		return apperrors.ErrTripLocked
	}

	stored := *trip
	b.trips[trip.ID] = &stored
	return nil
}

func (b *tripBackend) Delete(ctx context.Context, id, companyID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.trips[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if bus := b.buses[existing.BusID]; bus == nil || bus.CompanyID != companyID {
		return apperrors.ErrForbidden
	}
	if b.countAllLocked(id) > 0 {
		return apperrors.ErrTripLocked
	}

	delete(b.trips, id)
	return nil
}

type ticketBackend struct{ *testBackend }

func (b *ticketBackend) Book(ctx context.Context, ticket *models.Ticket) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	trip, ok := b.trips[ticket.TripID]
	if !ok {
		return apperrors.ErrNotFound
	}

	bus := b.buses[trip.BusID]
	if b.countActiveLocked(trip.ID) >= bus.Seats {
		return apperrors.ErrNoSeats
	}

	b.nextID++
	stored := *ticket
	stored.ID = b.nextID
	stored.PurchaseAt = time.Now()
	b.tickets[stored.ID] = &stored

	ticket.ID = stored.ID
	ticket.PurchaseAt = stored.PurchaseAt
	return nil
}

func (b *ticketBackend) Return(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ticket, ok := b.tickets[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	if ticket.Returned {
		return apperrors.ErrAlreadyReturned
	}
	ticket.Returned = true
	return nil
}

func (b *ticketBackend) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ticket, ok := b.tickets[id]
	if !ok {
		return nil, nil
	}

	view := *ticket
	if trip, ok := b.trips[ticket.TripID]; ok {
		view.TripDeparture = trip.Departure
	}
	return &view, nil
}

func (b *ticketBackend) GetByUserID(ctx context.Context, userID int64, filter models.ListTicketsFilter) ([]models.Ticket, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var result []models.Ticket
	for _, ticket := range b.tickets {
		if ticket.UserID != userID {
			continue
		}
		view := *ticket
		if trip, ok := b.trips[ticket.TripID]; ok {
			view.TripDeparture = trip.Departure
		}
		result = append(result, view)
	}
	return result, nil
}

func (b *ticketBackend) CountActive(ctx context.Context, tripID int64) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.countActiveLocked(tripID), nil
}

type busBackend struct{ *testBackend }

func (b *busBackend) GetByID(ctx context.Context, id int64) (*models.Bus, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bus, ok := b.buses[id]
	if !ok {
		return nil, nil
	}
	view := *bus
	return &view, nil
}

func (b *busBackend) GetByCompanyID(ctx context.Context, companyID int64) ([]models.BusListItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var result []models.BusListItem
	for _, bus := range b.buses {
		if bus.CompanyID != companyID {
			continue
		}
		tripCount := 0
		for _, trip := range b.trips {
			if trip.BusID == bus.ID {
				tripCount++
			}
		}
		result = append(result, models.BusListItem{Bus: *bus, TripCount: tripCount})
	}
	return result, nil
}

func (b *busBackend) Create(ctx context.Context, bus *models.Bus) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	bus.ID = b.nextID
	stored := *bus
	b.buses[bus.ID] = &stored
	return nil
}

func (b *busBackend) UpdateSeats(ctx context.Context, id int64, seats int, brand string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	bus, ok := b.buses[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	bus.Seats = seats
	bus.Brand = brand
	return nil
}

func (b *busBackend) Delete(ctx context.Context, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.buses[id]; !ok {
		return apperrors.ErrNotFound
	}
	for _, trip := range b.trips {
		if trip.BusID == id {
			return apperrors.ErrBusInUse
		}
	}
	delete(b.buses, id)
	return nil
}

// testAuth injects a fixed user into the request context, standing in for
// the BasicAuth middleware.
func testAuth(userID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(middleware.ContextWithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

func testCompany(companyID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(middleware.ContextWithCompanyID(c.Request.Context(), companyID))
		c.Next()
	}
}

// setupRouter wires the real handlers and services onto the test backend.
// userID 0 leaves the protected routes unauthenticated.
func setupRouter(b *testBackend, userID, companyID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)

	trips := &tripBackend{b}
	tickets := &ticketBackend{b}
	buses := &busBackend{b}
	engine := inventory.NewEngine(tickets)

	services := &service.Services{
		Search:  service.NewSearchService(trips, engine),
		Tickets: service.NewTicketService(tickets, trips, engine, nil),
		Trips:   service.NewTripService(trips, buses, nil),
		Fleet:   service.NewFleetService(buses),
	}
	h := NewHandlers(services, nil)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/trips/search", h.SearchTrips)

	ticketRoutes := api.Group("/tickets")
	if userID != 0 {
		ticketRoutes.Use(testAuth(userID))
	}
	ticketRoutes.POST("", h.BookTicket)
	ticketRoutes.GET("", h.ListTickets)
	ticketRoutes.POST("/:id/return", h.ReturnTicket)

	partner := api.Group("/partner")
	if userID != 0 {
		partner.Use(testAuth(userID), testCompany(companyID))
	}
	partner.GET("/trips", h.ListTrips)
	partner.POST("/trips", h.CreateTrip)
	partner.PUT("/trips/:id", h.UpdateTrip)
	partner.DELETE("/trips/:id", h.DeleteTrip)
	partner.GET("/buses", h.ListBuses)
	partner.POST("/buses", h.CreateBus)
	partner.PUT("/buses/:id", h.UpdateBus)
	partner.DELETE("/buses/:id", h.DeleteBus)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func futureMorning() time.Time {
	day := time.Now().Add(48 * time.Hour)
	return time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.Local)
}

func TestSearchTripsEndpoint(t *testing.T) {
	b := newTestBackend()
	bus := b.addBus(40, 1)
	departure := futureMorning()
	trip := b.addTrip(bus.ID, departure)

	r := setupRouter(b, 0, 0)

	path := fmt.Sprintf("/api/trips/search?from=1&to=2&date=%s&passengers=2", departure.Format("2006-01-02"))
	w := doJSON(t, r, http.MethodGet, path, nil)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.SearchTripsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result, 1)
	assert.Equal(t, trip.ID, result[0].Trip.ID)
	assert.Equal(t, 40, result[0].RemainingSeats)
	assert.Equal(t, int64(70000), result[0].TotalPrice)
}

func TestSearchTripsEndpointValidation(t *testing.T) {
	r := setupRouter(newTestBackend(), 0, 0)

	w := doJSON(t, r, http.MethodGet, "/api/trips/search?from=1&passengers=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/trips/search?from=1&to=2&date=not-a-date&passengers=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookTicketEndpoint(t *testing.T) {
	b := newTestBackend()
	bus := b.addBus(40, 1)
	trip := b.addTrip(bus.ID, futureMorning())

	r := setupRouter(b, 7, 0)

	w := doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{
		TripID:    trip.ID,
		FirstName: "Taras",
		LastName:  "Kovalenko",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.NotZero(t, ticket.ID)
	assert.Equal(t, trip.ID, ticket.TripID)
	assert.False(t, ticket.Returned)
}

func TestBookTicketEndpointErrors(t *testing.T) {
	b := newTestBackend()
	bus := b.addBus(1, 1)
	trip := b.addTrip(bus.ID, futureMorning())
	departed := b.addTrip(bus.ID, time.Now().Add(-time.Hour))

	r := setupRouter(b, 7, 0)

	// Missing required fields
	w := doJSON(t, r, http.MethodPost, "/api/tickets", map[string]interface{}{"trip_id": trip.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown trip
	w = doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: 999, FirstName: "A", LastName: "B"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Departed trip
	w = doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: departed.ID, FirstName: "A", LastName: "B"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Sold out
	w = doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: trip.ID, FirstName: "A", LastName: "B"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: trip.ID, FirstName: "C", LastName: "D"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookTicketEndpointUnauthenticated(t *testing.T) {
	b := newTestBackend()
	bus := b.addBus(40, 1)
	trip := b.addTrip(bus.ID, futureMorning())

	r := setupRouter(b, 0, 0)

	w := doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: trip.ID, FirstName: "A", LastName: "B"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReturnTicketEndpoint(t *testing.T) {
	b := newTestBackend()
	bus := b.addBus(40, 1)
	trip := b.addTrip(bus.ID, futureMorning())

	r := setupRouter(b, 7, 0)

	w := doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: trip.ID, FirstName: "A", LastName: "B"})
	require.Equal(t, http.StatusCreated, w.Code)

	var ticket models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))

	path := fmt.Sprintf("/api/tickets/%d/return", ticket.ID)

	w = doJSON(t, r, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var returned models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &returned))
	assert.True(t, returned.Returned)

	// Second return of the same ticket
	w = doJSON(t, r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Malformed ID
	w = doJSON(t, r, http.MethodPost, "/api/tickets/abc/return", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown ticket
	w = doJSON(t, r, http.MethodPost, "/api/tickets/9999/return", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTicketsEndpoint(t *testing.T) {
	b := newTestBackend()
	bus := b.addBus(40, 1)
	trip := b.addTrip(bus.ID, futureMorning())

	r := setupRouter(b, 7, 0)

	w := doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: trip.ID, FirstName: "A", LastName: "B"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/tickets", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var tickets []models.Ticket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tickets))
	assert.Len(t, tickets, 1)

	// Bad returned filter value
	w = doJSON(t, r, http.MethodGet, "/api/tickets?returned=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTripEndpoint(t *testing.T) {
	b := newTestBackend()
	mine := b.addBus(40, 1)
	theirs := b.addBus(40, 2)

	r := setupRouter(b, 7, 1)
	departure := futureMorning()

	req := models.CreateTripRequest{
		Departure:         departure,
		Arrival:           departure.Add(5 * time.Hour),
		Price:             35000,
		BusID:             mine.ID,
		DepartureStation:  1,
		ArrivalStation:    2,
		OriginCityID:      1,
		DestinationCityID: 2,
	}

	w := doJSON(t, r, http.MethodPost, "/api/partner/trips", req)
	require.Equal(t, http.StatusCreated, w.Code)

	// Not the partner's bus
	req.BusID = theirs.ID
	w = doJSON(t, r, http.MethodPost, "/api/partner/trips", req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Arrival before departure
	req.BusID = mine.ID
	req.Arrival = departure.Add(-time.Hour)
	w = doJSON(t, r, http.MethodPost, "/api/partner/trips", req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutateLockedTripEndpoint(t *testing.T) {
	b := newTestBackend()
	bus := b.addBus(40, 1)
	trip := b.addTrip(bus.ID, futureMorning())

	r := setupRouter(b, 7, 1)

	// Sell one ticket, freezing the trip
	w := doJSON(t, r, http.MethodPost, "/api/tickets", models.BookTicketRequest{TripID: trip.ID, FirstName: "A", LastName: "B"})
	require.Equal(t, http.StatusCreated, w.Code)

	departure := futureMorning()
	req := models.CreateTripRequest{
		Departure:         departure,
		Arrival:           departure.Add(5 * time.Hour),
		Price:             42000,
		BusID:             bus.ID,
		DepartureStation:  1,
		ArrivalStation:    2,
		OriginCityID:      1,
		DestinationCityID: 2,
	}

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/partner/trips/%d", trip.ID), req)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/partner/trips/%d", trip.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBusEndpoints(t *testing.T) {
	b := newTestBackend()
	r := setupRouter(b, 7, 1)

	w := doJSON(t, r, http.MethodPost, "/api/partner/buses", models.CreateBusRequest{
		LicencePlate: "AA1234BB",
		Seats:        48,
		Brand:        "Neoplan",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var bus models.Bus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bus))
	assert.Equal(t, int64(1), bus.CompanyID)

	// A bus referenced by a trip cannot be deleted
	b.addTrip(bus.ID, futureMorning())
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/partner/buses/%d", bus.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/partner/buses", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var buses []models.BusListItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &buses))
	require.Len(t, buses, 1)
	assert.Equal(t, 1, buses[0].TripCount)
}
