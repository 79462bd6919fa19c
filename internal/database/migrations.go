package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createCompaniesTable,
		createPartnersTable,
		createCitiesTable,
		createStationsTable,
		createBusesTable,
		createTripsTable,
		createTicketsTable,
		createTripsRouteIndex,
		createTicketsTripIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    user_id BIGSERIAL PRIMARY KEY,
    phone VARCHAR(32) UNIQUE NOT NULL,
    email VARCHAR(255),
    password_hash VARCHAR(64) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    surname VARCHAR(100) NOT NULL,
    is_partner BOOLEAN NOT NULL DEFAULT FALSE,
    registered_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    is_active BOOLEAN NOT NULL DEFAULT TRUE
);`

const createCompaniesTable = `
CREATE TABLE IF NOT EXISTS companies (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    slug VARCHAR(255) UNIQUE NOT NULL
);`

const createPartnersTable = `
CREATE TABLE IF NOT EXISTS partners (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,

    UNIQUE(user_id)
);`

const createCitiesTable = `
CREATE TABLE IF NOT EXISTS cities (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    region VARCHAR(255) NOT NULL,
    country VARCHAR(255) NOT NULL
);`

const createStationsTable = `
CREATE TABLE IF NOT EXISTS stations (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    street_type VARCHAR(255),
    street VARCHAR(255),
    number VARCHAR(64),
    city_id BIGINT NOT NULL REFERENCES cities(id) ON DELETE CASCADE
);`

const createBusesTable = `
CREATE TABLE IF NOT EXISTS buses (
    id BIGSERIAL PRIMARY KEY,
    licence_plate VARCHAR(64) UNIQUE NOT NULL,
    seats INTEGER NOT NULL,
    brand VARCHAR(255) NOT NULL DEFAULT '',
    company_id BIGINT NOT NULL REFERENCES companies(id) ON DELETE RESTRICT,

    CHECK (seats > 0)
);`

const createTripsTable = `
CREATE TABLE IF NOT EXISTS trips (
    id BIGSERIAL PRIMARY KEY,
    departure TIMESTAMPTZ NOT NULL,
    arrival TIMESTAMPTZ NOT NULL,
    price BIGINT NOT NULL,
    bus_id BIGINT NOT NULL REFERENCES buses(id) ON DELETE RESTRICT,
    departure_station_id BIGINT NOT NULL REFERENCES stations(id) ON DELETE RESTRICT,
    arrival_station_id BIGINT NOT NULL REFERENCES stations(id) ON DELETE RESTRICT,
    origin_city_id BIGINT NOT NULL REFERENCES cities(id) ON DELETE RESTRICT,
    destination_city_id BIGINT NOT NULL REFERENCES cities(id) ON DELETE RESTRICT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (arrival > departure),
    CHECK (price > 0)
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255) NOT NULL,
    user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    trip_id BIGINT NOT NULL REFERENCES trips(id) ON DELETE RESTRICT,
    purchase_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    returned BOOLEAN NOT NULL DEFAULT FALSE
);`

const createTripsRouteIndex = `
CREATE INDEX IF NOT EXISTS idx_trips_route_departure
    ON trips (origin_city_id, destination_city_id, departure);`

const createTicketsTripIndex = `
CREATE INDEX IF NOT EXISTS idx_tickets_trip_active
    ON tickets (trip_id) WHERE NOT returned;`
