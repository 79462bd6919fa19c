package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"busenjoyer/internal/models"
	"busenjoyer/internal/repository"
	"busenjoyer/internal/search"
)

type Handlers struct {
	repos    *repository.Repositories
	esClient *search.ElasticsearchClient
}

func NewHandlers(repos *repository.Repositories, esClient *search.ElasticsearchClient) *Handlers {
	return &Handlers{
		repos:    repos,
		esClient: esClient,
	}
}

func (h *Handlers) HandleCityCreated(m *stan.Msg) {
	var event models.CityCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal city created event", "error", err)
		return
	}

	if h.esClient == nil {
		m.Ack()
		return
	}

	ctx := context.Background()
	city, err := h.repos.Cities.GetByID(ctx, event.CityID)
	if err != nil || city == nil {
		slog.Error("Failed to load city for indexing", "city_id", event.CityID, "error", err)
		return
	}

	if err := h.esClient.IndexCity(ctx, city); err != nil {
		slog.Error("Failed to index city", "city_id", city.ID, "error", err)
		return
	}

	slog.Info("Indexed city", "city_id", city.ID, "name", city.Name)
	m.Ack()
}

func (h *Handlers) HandleStationCreated(m *stan.Msg) {
	var event models.StationCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal station created event", "error", err)
		return
	}

	if h.esClient == nil {
		m.Ack()
		return
	}

	ctx := context.Background()
	station, err := h.repos.Stations.GetByID(ctx, event.StationID)
	if err != nil || station == nil {
		slog.Error("Failed to load station for indexing", "station_id", event.StationID, "error", err)
		return
	}

	city, err := h.repos.Cities.GetByID(ctx, station.CityID)
	if err != nil || city == nil {
		slog.Error("Failed to load station city for indexing", "city_id", station.CityID, "error", err)
		return
	}

	if err := h.esClient.IndexStation(ctx, station, city); err != nil {
		slog.Error("Failed to index station", "station_id", station.ID, "error", err)
		return
	}

	slog.Info("Indexed station", "station_id", station.ID, "name", station.Name)
	m.Ack()
}

func (h *Handlers) HandleTicketBooked(m *stan.Msg) {
	var event models.TicketBookedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket booked event", "error", err)
		return
	}

	// Place for confirmation emails and analytics
	slog.Info("Processing ticket booked event",
		"ticket_id", event.TicketID,
		"trip_id", event.TripID,
		"user_id", event.UserID)

	m.Ack()
}

func (h *Handlers) HandleTicketReturned(m *stan.Msg) {
	var event models.TicketReturnedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket returned event", "error", err)
		return
	}

	slog.Info("Processing ticket returned event",
		"ticket_id", event.TicketID,
		"trip_id", event.TripID,
		"user_id", event.UserID)

	m.Ack()
}

func (h *Handlers) HandleTripCreated(m *stan.Msg) {
	var event models.TripCreatedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal trip created event", "error", err)
		return
	}

	slog.Info("Processing trip created event",
		"trip_id", event.TripID,
		"bus_id", event.BusID,
		"departure", event.Departure)

	m.Ack()
}

func (h *Handlers) HandleTripDeleted(m *stan.Msg) {
	var event models.TripDeletedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal trip deleted event", "error", err)
		return
	}

	slog.Info("Processing trip deleted event", "trip_id", event.TripID)

	m.Ack()
}
