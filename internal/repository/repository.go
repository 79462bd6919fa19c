package repository

import (
	"busenjoyer/internal/database"
)

type Repositories struct {
	Users    *UserRepository
	Cities   *CityRepository
	Stations *StationRepository
	Buses    *BusRepository
	Trips    *TripRepository
	Tickets  *TicketRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Cities:   NewCityRepository(db),
		Stations: NewStationRepository(db),
		Buses:    NewBusRepository(db),
		Trips:    NewTripRepository(db),
		Tickets:  NewTicketRepository(db),
	}
}
