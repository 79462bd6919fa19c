package service

import (
	"context"
	"time"

	"busenjoyer/internal/cache"
	"busenjoyer/internal/inventory"
	"busenjoyer/internal/models"
	"busenjoyer/internal/repository"
	"busenjoyer/internal/search"
)

// Store interfaces are satisfied by the repository types. Services depend on
// them instead of the concrete repositories so the booking and search logic
// can be exercised against in-memory fakes.

type TripStore interface {
	GetByID(ctx context.Context, id int64) (*models.Trip, error)
	Search(ctx context.Context, originCityID, destinationCityID int64, day time.Time, sort models.SortOrder) ([]models.Trip, error)
	GetByCompanyID(ctx context.Context, companyID int64, filter models.ListTripsFilter) ([]models.Trip, error)
	Create(ctx context.Context, trip *models.Trip) error
	Update(ctx context.Context, trip *models.Trip, companyID int64) error
	Delete(ctx context.Context, id, companyID int64) error
}

type TicketStore interface {
	Book(ctx context.Context, ticket *models.Ticket) error
	Return(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)
	GetByUserID(ctx context.Context, userID int64, filter models.ListTicketsFilter) ([]models.Ticket, error)
	CountActive(ctx context.Context, tripID int64) (int, error)
}

type BusStore interface {
	GetByID(ctx context.Context, id int64) (*models.Bus, error)
	GetByCompanyID(ctx context.Context, companyID int64) ([]models.BusListItem, error)
	Create(ctx context.Context, bus *models.Bus) error
	UpdateSeats(ctx context.Context, id int64, seats int, brand string) error
	Delete(ctx context.Context, id int64) error
}

type CityStore interface {
	List(ctx context.Context) ([]models.City, error)
	GetByID(ctx context.Context, id int64) (*models.City, error)
	Create(ctx context.Context, city *models.City) error
}

type StationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Station, error)
	GetByCityID(ctx context.Context, cityID int64) ([]models.Station, error)
	List(ctx context.Context) ([]models.Station, error)
	Create(ctx context.Context, station *models.Station) error
}

type UserStore interface {
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	CreatePartner(ctx context.Context, user *models.User, company *models.Company) error
	GetCompanyByUserID(ctx context.Context, userID int64) (*models.Company, error)
}

// Publisher emits domain events. Publishing is best-effort: a failed publish
// is logged, never propagated to the caller.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Services struct {
	Search   *SearchService
	Tickets  *TicketService
	Trips    *TripService
	Fleet    *FleetService
	Geo      *GeoService
	Accounts *AccountService
}

func NewServices(repos *repository.Repositories, events Publisher, valkey *cache.ValkeyClient, es *search.ElasticsearchClient) *Services {
	engine := inventory.NewEngine(repos.Tickets)

	return &Services{
		Search:   NewSearchService(repos.Trips, engine),
		Tickets:  NewTicketService(repos.Tickets, repos.Trips, engine, events),
		Trips:    NewTripService(repos.Trips, repos.Buses, events),
		Fleet:    NewFleetService(repos.Buses),
		Geo:      NewGeoService(repos.Cities, repos.Stations, es, events),
		Accounts: NewAccountService(repos.Users, valkey),
	}
}
