package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"pricecheck/internal/config"
	"pricecheck/internal/domain/models"
	"pricecheck/internal/logging"
	"pricecheck/internal/pipeline"
	"pricecheck/server/handlers"
	"pricecheck/server/middleware"
	"pricecheck/server/monitoring"
	"pricecheck/server/services"
)

// Version версия HTTP API
const Version = "1.0.0"

// History история прогонов с проверкой доступности
type History interface {
	services.HistoryStore
	Ping(ctx context.Context) error
}

// Options зависимости сервера
type Options struct {
	Config  *config.Config
	Store   *config.Store
	Driver  *pipeline.Driver
	History History
	// KeyCount число ключей API для проверки здоровья
	KeyCount int
	Logger   *slog.Logger
}

// Server HTTP API проценки
type Server struct {
	config     *config.Config
	driver     *pipeline.Driver
	logger     *slog.Logger
	health     *monitoring.HealthChecker
	runs       *handlers.RunHandler
	configs    *handlers.ConfigHandler
	healthView *handlers.HealthHandler

	handlerOnce sync.Once
	httpHandler http.Handler
	httpServer  *http.Server
}

// New собирает сервер из готовых зависимостей
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Store == nil || opts.Driver == nil || opts.History == nil {
		return nil, fmt.Errorf("server: config, store, driver and history are required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	uploadDir := filepath.Join(os.TempDir(), "pricecheck-uploads")
	runService := services.NewRunService(opts.Driver, opts.History, opts.Store.Username(), uploadDir, opts.Logger)
	configService := services.NewConfigService(opts.Store, opts.Logger)

	health := monitoring.NewHealthChecker(Version)
	health.RegisterComponent("history_db", monitoring.PingCheck(opts.History.Ping))
	health.RegisterComponent("api_keys", apiKeysCheck(opts.KeyCount))
	health.RegisterComponent("driver", driverCheck(opts.Driver))

	return &Server{
		config:     opts.Config,
		driver:     opts.Driver,
		logger:     opts.Logger.With("component", "http"),
		health:     health,
		runs:       handlers.NewRunHandler(runService, opts.Logger),
		configs:    handlers.NewConfigHandler(configService, opts.Logger),
		healthView: handlers.NewHealthHandler(health),
	}, nil
}

// Handler возвращает gin-роутер со всеми маршрутами
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		s.httpHandler = s.buildRouter()
	})
	return s.httpHandler
}

func (s *Server) buildRouter() *gin.Engine {
	// Режим Gin можно переопределить через GIN_MODE
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware(s.logger))
	router.Use(middleware.GinRecoveryMiddleware(s.logger))

	handlers.RegisterSwaggerRoutes(router, "localhost:"+s.config.Port)

	api := router.Group("/api")
	{
		api.GET("/health", s.healthView.HandleHealth)

		runs := api.Group("/runs")
		runs.POST("", s.runs.HandleStartRun)
		runs.GET("", s.runs.HandleListRuns)
		runs.GET("/:id", s.runs.HandleGetRun)
		runs.POST("/:id/cancel", s.runs.HandleCancelRun)
		runs.GET("/:id/result", s.runs.HandleRunResult)
		runs.GET("/:id/errors", s.runs.HandleRunErrors)

		cfg := api.Group("/config")
		cfg.GET("/parser", s.configs.HandleGetParser)
		cfg.PUT("/parser", s.configs.HandleUpdateParser)
		cfg.POST("/parser/reset", s.configs.HandleResetParser)
		cfg.GET("/app", s.configs.HandleGetApp)
		cfg.PUT("/app", s.configs.HandleUpdateApp)
	}

	return router
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // выгрузка xlsx большого прогона
		IdleTimeout:  120 * time.Second,
	}

	s.health.LogHealthStatus(s.logger)
	log.Printf("Starting HTTP server on %s...", addr)
	log.Printf("API доступно по адресу: http://localhost%s/api, Swagger: http://localhost%s/swagger/index.html", addr, addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("не удалось запустить HTTP сервер на %s: %w", addr, err)
	}
	return nil
}

// Shutdown отменяет активный прогон и останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Initiating graceful shutdown...")

	if run := s.driver.Active(); run != nil {
		log.Printf("Cancelling active run %s", run.ID)
		run.Cancel()
		select {
		case <-run.Done():
		case <-ctx.Done():
			log.Printf("Run %s did not stop before shutdown deadline", run.ID)
		}
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("ошибка остановки сервера: %w", err)
		}
	}

	log.Println("Graceful shutdown completed")
	return nil
}

func apiKeysCheck(count int) monitoring.HealthCheckFunc {
	return func(context.Context) monitoring.ComponentHealth {
		health := monitoring.ComponentHealth{
			Status:    monitoring.HealthStatusHealthy,
			Message:   fmt.Sprintf("%d key(s) configured", count),
			Timestamp: time.Now(),
		}
		if count == 0 {
			health.Status = monitoring.HealthStatusDegraded
			health.Message = "no api keys configured, runs cannot start"
		}
		return health
	}
}

func driverCheck(driver *pipeline.Driver) monitoring.HealthCheckFunc {
	return func(context.Context) monitoring.ComponentHealth {
		state := driver.State()
		message := string(state)
		if run := driver.Active(); run != nil && state == models.RunStateRunning {
			summary := run.Summary()
			message = fmt.Sprintf("running %s: %d%%", run.ID, summary.Progress)
		}
		return monitoring.ComponentHealth{
			Status:    monitoring.HealthStatusHealthy,
			Message:   message,
			Timestamp: time.Now(),
		}
	}
}
