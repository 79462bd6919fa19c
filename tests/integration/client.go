package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"busenjoyer/internal/models"
)

// TestClient provides methods for testing the API
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// Basic Auth credentials; empty phone leaves requests anonymous
	Phone    string
	Password string
}

// NewTestClient creates a new test client
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithAuth returns a copy of the client that authenticates as the given user
func (c *TestClient) WithAuth(phone, password string) *TestClient {
	clone := *c
	clone.Phone = phone
	clone.Password = password
	return &clone
}

// makeRequest makes an HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Phone != "" {
		req.SetBasicAuth(c.Phone, c.Password)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

func (c *TestClient) decode(t *testing.T, resp *http.Response, wantStatus int, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", wantStatus, resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
}

// HealthCheck verifies the API is up
func (c *TestClient) HealthCheck(t *testing.T) {
	resp := c.makeRequest(t, "GET", "/health", nil)
	c.decode(t, resp, http.StatusOK, nil)
}

// RegisterUser registers a passenger account
func (c *TestClient) RegisterUser(t *testing.T, req models.RegisterUserRequest) *models.User {
	resp := c.makeRequest(t, "POST", "/api/users/register", req)

	var user models.User
	c.decode(t, resp, http.StatusCreated, &user)
	return &user
}

// RegisterPartner registers a partner account with its company
func (c *TestClient) RegisterPartner(t *testing.T, req models.RegisterPartnerRequest) {
	resp := c.makeRequest(t, "POST", "/api/partners/register", req)
	c.decode(t, resp, http.StatusCreated, nil)
}

// CreateCity creates a reference city (partner auth required)
func (c *TestClient) CreateCity(t *testing.T, req models.CreateCityRequest) *models.City {
	resp := c.makeRequest(t, "POST", "/api/partner/cities", req)

	var city models.City
	c.decode(t, resp, http.StatusCreated, &city)
	return &city
}

// CreateStation creates a station in a city (partner auth required)
func (c *TestClient) CreateStation(t *testing.T, req models.CreateStationRequest) *models.Station {
	resp := c.makeRequest(t, "POST", "/api/partner/stations", req)

	var station models.Station
	c.decode(t, resp, http.StatusCreated, &station)
	return &station
}

// CreateBus registers a bus for the partner's company
func (c *TestClient) CreateBus(t *testing.T, req models.CreateBusRequest) *models.Bus {
	resp := c.makeRequest(t, "POST", "/api/partner/buses", req)

	var bus models.Bus
	c.decode(t, resp, http.StatusCreated, &bus)
	return &bus
}

// CreateTrip publishes a trip
func (c *TestClient) CreateTrip(t *testing.T, req models.CreateTripRequest) *models.Trip {
	resp := c.makeRequest(t, "POST", "/api/partner/trips", req)

	var trip models.Trip
	c.decode(t, resp, http.StatusCreated, &trip)
	return &trip
}

// SearchTrips searches trips between two cities on a date
func (c *TestClient) SearchTrips(t *testing.T, fromID, toID int64, date string, passengers int) models.SearchTripsResponse {
	path := fmt.Sprintf("/api/trips/search?from=%d&to=%d&date=%s&passengers=%d", fromID, toID, date, passengers)
	resp := c.makeRequest(t, "GET", path, nil)

	var result models.SearchTripsResponse
	c.decode(t, resp, http.StatusOK, &result)
	return result
}

// BookTicket books one seat on a trip
func (c *TestClient) BookTicket(t *testing.T, tripID int64, firstName, lastName string) *models.Ticket {
	resp := c.makeRequest(t, "POST", "/api/tickets", models.BookTicketRequest{
		TripID:    tripID,
		FirstName: firstName,
		LastName:  lastName,
	})

	var ticket models.Ticket
	c.decode(t, resp, http.StatusCreated, &ticket)
	return &ticket
}

// BookTicketExpectStatus books and asserts a specific status code
func (c *TestClient) BookTicketExpectStatus(t *testing.T, tripID int64, wantStatus int) {
	resp := c.makeRequest(t, "POST", "/api/tickets", models.BookTicketRequest{
		TripID:    tripID,
		FirstName: "Load",
		LastName:  "Test",
	})
	c.decode(t, resp, wantStatus, nil)
}

// ReturnTicket returns a previously booked ticket
func (c *TestClient) ReturnTicket(t *testing.T, ticketID int64) *models.Ticket {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/tickets/%d/return", ticketID), nil)

	var ticket models.Ticket
	c.decode(t, resp, http.StatusOK, &ticket)
	return &ticket
}

// ListTickets lists the authenticated user's tickets
func (c *TestClient) ListTickets(t *testing.T, query string) []models.Ticket {
	path := "/api/tickets"
	if query != "" {
		path += "?" + query
	}
	resp := c.makeRequest(t, "GET", path, nil)

	var tickets []models.Ticket
	c.decode(t, resp, http.StatusOK, &tickets)
	return tickets
}
