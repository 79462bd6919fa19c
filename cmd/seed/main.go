package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gosimple/slug"

	"busenjoyer/internal/config"
	"busenjoyer/internal/database"
	"busenjoyer/internal/models"
	"busenjoyer/internal/repository"
	"busenjoyer/internal/service"
)

var (
	tripsPerRoute = flag.Int("trips", 3, "Number of trips to create per route")
	daysAhead     = flag.Int("days", 7, "Spread trip departures over this many days")
)

// Seeder наполняет пустую базу демонстрационными данными:
// города, станции, партнёр с автобусами и расписание рейсов
type Seeder struct {
	repos *repository.Repositories
}

func main() {
	flag.Parse()

	slog.Info("Starting demo data seeder...")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	seeder := &Seeder{repos: repository.NewRepositories(db)}

	if err := seeder.Run(context.Background()); err != nil {
		slog.Error("Failed to seed demo data", "error", err)
		os.Exit(1)
	}

	slog.Info("Demo data seeded successfully!")
}

func (s *Seeder) Run(ctx context.Context) error {
	cities, err := s.seedCities(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed cities: %w", err)
	}

	stations, err := s.seedStations(ctx, cities)
	if err != nil {
		return fmt.Errorf("failed to seed stations: %w", err)
	}

	buses, err := s.seedPartner(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed partner: %w", err)
	}

	if err := s.seedPassenger(ctx); err != nil {
		return fmt.Errorf("failed to seed passenger: %w", err)
	}

	if err := s.seedTrips(ctx, cities, stations, buses); err != nil {
		return fmt.Errorf("failed to seed trips: %w", err)
	}

	return nil
}

func (s *Seeder) seedCities(ctx context.Context) ([]models.City, error) {
	names := []string{"Kyiv", "Lviv", "Odesa", "Kharkiv", "Dnipro"}

	cities := make([]models.City, 0, len(names))
	for _, name := range names {
		city := models.City{Name: name, Region: name + " Oblast", Country: "Ukraine"}
		if err := s.repos.Cities.Create(ctx, &city); err != nil {
			return nil, err
		}
		cities = append(cities, city)
	}

	slog.Info("Seeded cities", "count", len(cities))
	return cities, nil
}

func (s *Seeder) seedStations(ctx context.Context, cities []models.City) (map[int64]models.Station, error) {
	streetType := "vulytsia"
	street := "Vokzalna"
	number := "1"

	// Одна центральная станция на город
	stations := make(map[int64]models.Station, len(cities))
	for _, city := range cities {
		station := models.Station{
			Name:       city.Name + " Central Bus Station",
			StreetType: &streetType,
			Street:     &street,
			Number:     &number,
			CityID:     city.ID,
		}
		if err := s.repos.Stations.Create(ctx, &station); err != nil {
			return nil, err
		}
		stations[city.ID] = station
	}

	slog.Info("Seeded stations", "count", len(stations))
	return stations, nil
}

func (s *Seeder) seedPartner(ctx context.Context) ([]models.Bus, error) {
	companyName := "Demo Bus Lines"
	user := &models.User{
		Phone:        "+380501112233",
		PasswordHash: service.HashPassword("partner-demo"),
		FirstName:    "Olena",
		Surname:      "Demchenko",
	}
	company := &models.Company{
		Name: companyName,
		Slug: slug.Make(companyName),
	}

	if err := s.repos.Users.CreatePartner(ctx, user, company); err != nil {
		return nil, err
	}

	buses := []models.Bus{
		{LicencePlate: "AA1234BB", Seats: 48, Brand: "Neoplan", CompanyID: company.ID},
		{LicencePlate: "AA5678CC", Seats: 20, Brand: "Mercedes Sprinter", CompanyID: company.ID},
	}
	for i := range buses {
		if err := s.repos.Buses.Create(ctx, &buses[i]); err != nil {
			return nil, err
		}
	}

	slog.Info("Seeded partner", "company", company.Name, "buses", len(buses))
	return buses, nil
}

func (s *Seeder) seedPassenger(ctx context.Context) error {
	user := &models.User{
		Phone:        "+380671234567",
		PasswordHash: service.HashPassword("passenger-demo"),
		FirstName:    "Taras",
		Surname:      "Kovalenko",
	}
	return s.repos.Users.Create(ctx, user)
}

func (s *Seeder) seedTrips(ctx context.Context, cities []models.City, stations map[int64]models.Station, buses []models.Bus) error {
	if len(cities) < 2 || len(buses) == 0 {
		return fmt.Errorf("not enough reference data to create trips")
	}

	created := 0
	for i := 0; i < len(cities)-1; i++ {
		origin := cities[i]
		destination := cities[i+1]

		for n := 0; n < *tripsPerRoute; n++ {
			bus := buses[(i+n)%len(buses)]
			departure := time.Now().Truncate(time.Hour).
				Add(time.Duration(1+(i+n)%*daysAhead) * 24 * time.Hour).
				Add(time.Duration(8+n*4) * time.Hour)

			trip := models.Trip{
				Departure:         departure,
				Arrival:           departure.Add(5 * time.Hour),
				Price:             35000 + int64(n)*5000, // kopecks
				BusID:             bus.ID,
				DepartureStation:  stations[origin.ID].ID,
				ArrivalStation:    stations[destination.ID].ID,
				OriginCityID:      origin.ID,
				DestinationCityID: destination.ID,
			}
			if err := s.repos.Trips.Create(ctx, &trip); err != nil {
				return err
			}
			created++
		}
	}

	slog.Info("Seeded trips", "count", created)
	return nil
}
