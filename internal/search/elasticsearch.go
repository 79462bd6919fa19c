package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"busenjoyer/internal/config"
	"busenjoyer/internal/models"
)

// ElasticsearchClient индексирует города и станции для подсказок поиска.
// Поиск рейсов сюда не выносится: остаток мест должен считаться по базе на
// каждый запрос, а индекс этого не гарантирует.
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// GeoDocument - документ гео-индекса (город или станция)
type GeoDocument struct {
	DocID  string `json:"doc_id"`
	Kind   string `json:"kind"` // city|station
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	CityID int64  `json:"city_id,omitempty"`
}

// NewElasticsearchClient создает новый клиент Elasticsearch
func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	if err := client.ensureIndex(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

// ensureIndex создает индекс если он не существует
func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mapping := map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"geo_analyzer": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "geo_edge_ngram"},
					},
				},
				"filter": map[string]interface{}{
					"geo_edge_ngram": map[string]interface{}{
						"type":     "edge_ngram",
						"min_gram": 2,
						"max_gram": 15,
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"doc_id": map[string]interface{}{
					"type": "keyword",
				},
				"kind": map[string]interface{}{
					"type": "keyword",
				},
				"id": map[string]interface{}{
					"type": "long",
				},
				"text": map[string]interface{}{
					"type":            "text",
					"analyzer":        "geo_analyzer",
					"search_analyzer": "standard",
				},
				"city_id": map[string]interface{}{
					"type": "long",
				},
			},
		},
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  strings.NewReader(string(mappingJSON)),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

// IndexCity индексирует город
func (c *ElasticsearchClient) IndexCity(ctx context.Context, city *models.City) error {
	doc := GeoDocument{
		DocID: "city-" + strconv.FormatInt(city.ID, 10),
		Kind:  "city",
		ID:    city.ID,
		Text:  fmt.Sprintf("%s, %s, %s", city.Name, city.Region, city.Country),
	}
	return c.index(ctx, doc)
}

// IndexStation индексирует станцию
func (c *ElasticsearchClient) IndexStation(ctx context.Context, station *models.Station, city *models.City) error {
	parts := []string{station.Name}
	if station.Street != nil {
		street := *station.Street
		if station.StreetType != nil {
			street = *station.StreetType + " " + street
		}
		parts = append(parts, street)
	}
	if city != nil {
		parts = append(parts, city.Name)
	}

	doc := GeoDocument{
		DocID:  "station-" + strconv.FormatInt(station.ID, 10),
		Kind:   "station",
		ID:     station.ID,
		Text:   strings.Join(parts, ", "),
		CityID: station.CityID,
	}
	return c.index(ctx, doc)
}

func (c *ElasticsearchClient) index(ctx context.Context, doc GeoDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: doc.DocID,
		Body:       strings.NewReader(string(payload)),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}

	return nil
}

// Suggest выполняет поиск подсказок по префиксу
func (c *ElasticsearchClient) Suggest(ctx context.Context, query string, size int) ([]models.GeoSuggestion, error) {
	if size <= 0 {
		size = 10
	}

	searchRequest := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"text": map[string]interface{}{
					"query":    query,
					"operator": "and",
				},
			},
		},
		"size": size,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  strings.NewReader(string(searchJSON)),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source GeoDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	suggestions := make([]models.GeoSuggestion, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		suggestions[i] = models.GeoSuggestion{
			Kind:   hit.Source.Kind,
			ID:     hit.Source.ID,
			Text:   hit.Source.Text,
			CityID: hit.Source.CityID,
		}
	}

	return suggestions, nil
}
