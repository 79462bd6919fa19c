package api

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"busenjoyer/internal/cache"
	"busenjoyer/internal/config"
	"busenjoyer/internal/database"
	"busenjoyer/internal/handlers"
	"busenjoyer/internal/messaging"
	"busenjoyer/internal/middleware"
	"busenjoyer/internal/repository"
	"busenjoyer/internal/search"
	"busenjoyer/internal/service"
)

// Server представляет HTTP сервер API
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

// NewServer создает новый экземпляр сервера
func NewServer(cfg *config.Config) *Server {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Подключаемся к NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	// Кеш и поиск не обязательны: сервис деградирует без них
	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		slog.Warn("Valkey unavailable, running without cache", "error", err)
		valkeyClient = nil
	}

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		slog.Warn("Elasticsearch unavailable, geo suggestions disabled", "error", err)
		esClient = nil
	}

	// Создаем репозитории
	repos := repository.NewRepositories(db)

	// Создаем сервисы
	services := service.NewServices(repos, natsClient, valkeyClient, esClient)

	// Создаем роутер
	router := gin.New()

	// Применяем middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	// Создаем сервер
	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	// Настраиваем роуты
	server.setupRoutes()

	return server
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api")

	// Публичные роуты: справочники, поиск рейсов, регистрация
	{
		api.GET("/cities", h.ListCities)
		api.GET("/stations", h.ListStations)
		api.GET("/geo/suggest", h.SuggestGeo)
		api.GET("/trips/search", h.SearchTrips)
		api.POST("/users/register", h.RegisterUser)
		api.POST("/partners/register", h.RegisterPartner)
	}

	// Билеты требуют Basic Auth
	tickets := api.Group("/tickets")
	tickets.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		tickets.POST("", h.BookTicket)
		tickets.GET("", h.ListTickets)
		tickets.POST("/:id/return", h.ReturnTicket)
	}

	// Кабинет партнёра: рейсы, автобусы и справочники
	partner := api.Group("/partner")
	partner.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	partner.Use(middleware.PartnerAuth(s.services.Accounts))
	{
		partner.GET("/trips", h.ListTrips)
		partner.POST("/trips", h.CreateTrip)
		partner.PUT("/trips/:id", h.UpdateTrip)
		partner.DELETE("/trips/:id", h.DeleteTrip)

		partner.GET("/buses", h.ListBuses)
		partner.POST("/buses", h.CreateBus)
		partner.PUT("/buses/:id", h.UpdateBus)
		partner.DELETE("/buses/:id", h.DeleteBus)

		partner.POST("/cities", h.CreateCity)
		partner.POST("/stations", h.CreateStation)
	}

	// Health check и метрики
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// healthCheck обрабатывает health check запросы
func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())
	if dbHealth.Status != "healthy" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": dbHealth,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "busenjoyer-api",
		"version":  "1.0.0",
		"database": dbHealth,
	})
}

// Run запускает HTTP сервер
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// GetServices возвращает сервисы для фоновых задач
func (s *Server) GetServices() *service.Services {
	return s.services
}

// GetRepositories возвращает репозитории для фоновых задач
func (s *Server) GetRepositories() *repository.Repositories {
	return s.repos
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Printf("Error closing Valkey connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
