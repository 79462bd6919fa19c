package consumers

import (
	"context"
	"log/slog"

	"busenjoyer/internal/config"
	"busenjoyer/internal/database"
	"busenjoyer/internal/messaging"
	"busenjoyer/internal/models"
	"busenjoyer/internal/repository"
	"busenjoyer/internal/search"
)

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	// Elasticsearch keeps the geo suggest index in sync with reference data
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, geo indexing disabled", "error", err)
		esClient = nil
	}

	repos := repository.NewRepositories(db)
	handlers := NewHandlers(repos, esClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	// Geo reference events drive the Elasticsearch suggest index
	_, err := cs.nats.SubscribeQueue(models.EventCityCreated, "consumers", cs.handlers.HandleCityCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventStationCreated, "consumers", cs.handlers.HandleStationCreated)
	if err != nil {
		return err
	}

	// Ticket lifecycle events
	_, err = cs.nats.SubscribeQueue(models.EventTicketBooked, "consumers", cs.handlers.HandleTicketBooked)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventTicketReturned, "consumers", cs.handlers.HandleTicketReturned)
	if err != nil {
		return err
	}

	// Trip lifecycle events
	_, err = cs.nats.SubscribeQueue(models.EventTripCreated, "consumers", cs.handlers.HandleTripCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventTripDeleted, "consumers", cs.handlers.HandleTripDeleted)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
