package models

import "time"

// NATS Event Types
const (
	EventTicketBooked   = "ticket.booked"
	EventTicketReturned = "ticket.returned"
	EventTripCreated    = "trip.created"
	EventTripDeleted    = "trip.deleted"
	EventCityCreated    = "city.created"
	EventStationCreated = "station.created"
)

// TicketBookedEvent represents a successful booking
type TicketBookedEvent struct {
	TicketID  int64     `json:"ticket_id"`
	TripID    int64     `json:"trip_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketReturnedEvent represents a ticket return
type TicketReturnedEvent struct {
	TicketID  int64     `json:"ticket_id"`
	TripID    int64     `json:"trip_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

// TripCreatedEvent represents a newly published trip
type TripCreatedEvent struct {
	TripID    int64     `json:"trip_id"`
	BusID     int64     `json:"bus_id"`
	Departure time.Time `json:"departure"`
	Timestamp time.Time `json:"timestamp"`
}

// TripDeletedEvent represents a removed trip
type TripDeletedEvent struct {
	TripID    int64     `json:"trip_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CityCreatedEvent triggers a geo index update
type CityCreatedEvent struct {
	CityID    int64     `json:"city_id"`
	Timestamp time.Time `json:"timestamp"`
}

// StationCreatedEvent triggers a geo index update
type StationCreatedEvent struct {
	StationID int64     `json:"station_id"`
	Timestamp time.Time `json:"timestamp"`
}
