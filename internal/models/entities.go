package models

import (
	"time"
)

// User represents a user account in the system
type User struct {
	UserID       int64     `json:"user_id" db:"user_id"`
	Phone        string    `json:"phone" db:"phone"`
	Email        *string   `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	Surname      string    `json:"surname" db:"surname"`
	IsPartner    bool      `json:"is_partner" db:"is_partner"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
	IsActive     bool      `json:"is_active" db:"is_active"`
}

// Company represents a transportation company owned by a partner
type Company struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

// Partner links a user account to the company it manages
type Partner struct {
	ID        int64 `json:"id" db:"id"`
	UserID    int64 `json:"user_id" db:"user_id"`
	CompanyID int64 `json:"company_id" db:"company_id"`
}

// City represents a city reference record
type City struct {
	ID      int64  `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Region  string `json:"region" db:"region"`
	Country string `json:"country" db:"country"`
}

// Station represents a bus station inside a city
type Station struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	StreetType *string `json:"street_type" db:"street_type"`
	Street     *string `json:"street" db:"street"`
	Number     *string `json:"number" db:"number"`
	CityID     int64   `json:"city_id" db:"city_id"`
}

// Bus represents a vehicle. Seats is the fixed inventory ceiling for every
// trip the bus is assigned to.
type Bus struct {
	ID           int64  `json:"id" db:"id"`
	LicencePlate string `json:"licence_plate" db:"licence_plate"`
	Seats        int    `json:"seats" db:"seats"`
	Brand        string `json:"brand" db:"brand"`
	CompanyID    int64  `json:"company_id" db:"company_id"`
}

// Trip represents a scheduled departure of a bus between two stations.
// Schedule, price and bus become frozen once any ticket references the trip.
type Trip struct {
	ID                int64     `json:"id" db:"id"`
	Departure         time.Time `json:"departure" db:"departure"`
	Arrival           time.Time `json:"arrival" db:"arrival"`
	Price             int64     `json:"price" db:"price"` // kopecks
	BusID             int64     `json:"bus_id" db:"bus_id"`
	DepartureStation  int64     `json:"departure_station_id" db:"departure_station_id"`
	ArrivalStation    int64     `json:"arrival_station_id" db:"arrival_station_id"`
	OriginCityID      int64     `json:"origin_city_id" db:"origin_city_id"`
	DestinationCityID int64     `json:"destination_city_id" db:"destination_city_id"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	// Filled from the buses table on joined reads
	Seats     int   `json:"seats,omitempty"`
	CompanyID int64 `json:"-"`
}

// Ticket represents a passenger's claim on one seat of a trip.
// The trip linkage and purchase timestamp are immutable; Returned transitions
// false -> true exactly once.
type Ticket struct {
	ID         int64     `json:"id" db:"id"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	UserID     int64     `json:"user_id" db:"user_id"`
	TripID     int64     `json:"trip_id" db:"trip_id"`
	PurchaseAt time.Time `json:"purchase_at" db:"purchase_at"`
	Returned   bool      `json:"returned" db:"returned"`

	// Filled from the trips table on joined reads
	TripDeparture time.Time `json:"trip_departure,omitempty"`
}
