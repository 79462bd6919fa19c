package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"time"

	"busenjoyer/internal/config"
	"busenjoyer/internal/database"
	"busenjoyer/internal/logger"
	"busenjoyer/internal/repository"
	"busenjoyer/internal/search"
)

func main() {
	logger.Init("info", "text")
	slog.Info("Starting geo index synchronization")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	slog.Info("Connecting to database")
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Elasticsearch
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("Failed to connect to Elasticsearch: %v", err)
	}

	repos := repository.NewRepositories(db)

	if err := syncGeo(context.Background(), repos, esClient); err != nil {
		log.Fatalf("Geo synchronization failed: %v", err)
	}

	slog.Info("Geo synchronization completed successfully")
}

// syncGeo reindexes every city and station into the suggest index. Existing
// documents are overwritten because document IDs are stable.
func syncGeo(ctx context.Context, repos *repository.Repositories, esClient *search.ElasticsearchClient) error {
	start := time.Now()

	cities, err := repos.Cities.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cities: %w", err)
	}

	cityByID := make(map[int64]int, len(cities))
	for i := range cities {
		cityByID[cities[i].ID] = i

		if err := esClient.IndexCity(ctx, &cities[i]); err != nil {
			return fmt.Errorf("failed to index city %d: %w", cities[i].ID, err)
		}
	}
	slog.Info("Indexed cities", "count", len(cities))

	stations, err := repos.Stations.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stations: %w", err)
	}

	indexed := 0
	for i := range stations {
		idx, ok := cityByID[stations[i].CityID]
		if !ok {
			slog.Warn("Station references unknown city, skipping",
				"station_id", stations[i].ID, "city_id", stations[i].CityID)
			continue
		}

		if err := esClient.IndexStation(ctx, &stations[i], &cities[idx]); err != nil {
			return fmt.Errorf("failed to index station %d: %w", stations[i].ID, err)
		}
		indexed++
	}
	slog.Info("Indexed stations", "count", indexed)

	slog.Info("Reindex finished", "duration", time.Since(start).String())
	return nil
}
