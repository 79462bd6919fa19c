package integration

import (
	"net/http"
	"testing"
)

// TestSearch_FiltersAndValidation exercises the public search endpoint
// against a seeded trip.
func TestSearch_FiltersAndValidation(t *testing.T) {
	anon := requireAPI(t)
	s := setupFullStack(t, anon, 10)

	LogTestStep(t, "Searching in the published direction")
	found := anon.SearchTrips(t, s.origin.ID, s.dest.ID, s.date, 1)
	if len(found) != 1 {
		t.Fatalf("Expected one trip, got %d", len(found))
	}
	if found[0].TotalPrice != 35000 {
		t.Fatalf("Expected total price 35000 for one passenger, got %d", found[0].TotalPrice)
	}

	LogTestStep(t, "Group larger than the bus finds nothing")
	found = anon.SearchTrips(t, s.origin.ID, s.dest.ID, s.date, 11)
	if len(found) != 0 {
		t.Fatalf("Expected no trips for 11 passengers on a 10-seat bus, got %d", len(found))
	}

	LogTestStep(t, "Reverse direction finds nothing")
	found = anon.SearchTrips(t, s.dest.ID, s.origin.ID, s.date, 1)
	if len(found) != 0 {
		t.Fatalf("Expected no trips in reverse direction, got %d", len(found))
	}

	LogTestStep(t, "Past date is rejected")
	resp := anon.makeRequest(t, "GET", "/api/trips/search?from="+itoa(s.origin.ID)+"&to="+itoa(s.dest.ID)+"&date=2020-01-01&passengers=1", nil)
	anon.decode(t, resp, http.StatusBadRequest, nil)

	LogTestStep(t, "Missing parameters are rejected")
	resp = anon.makeRequest(t, "GET", "/api/trips/search?from="+itoa(s.origin.ID), nil)
	anon.decode(t, resp, http.StatusBadRequest, nil)
}

// TestSearch_TotalPriceScalesWithPassengers verifies pricing math.
func TestSearch_TotalPriceScalesWithPassengers(t *testing.T) {
	anon := requireAPI(t)
	s := setupFullStack(t, anon, 10)

	found := anon.SearchTrips(t, s.origin.ID, s.dest.ID, s.date, 4)
	if len(found) != 1 {
		t.Fatalf("Expected one trip, got %d", len(found))
	}
	if found[0].TotalPrice != 4*35000 {
		t.Fatalf("Expected total price %d, got %d", 4*35000, found[0].TotalPrice)
	}
	if found[0].PriceDisplay != "1400.00" {
		t.Fatalf("Expected price display 1400.00, got %s", found[0].PriceDisplay)
	}
}
