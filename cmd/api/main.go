package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gorilla/mux"
	"github.com/michaelkobetss/test-task-otpusk/internal/application/orchestrator"
	"github.com/michaelkobetss/test-task-otpusk/internal/application/session"
	"github.com/michaelkobetss/test-task-otpusk/internal/domain/search"
	"github.com/michaelkobetss/test-task-otpusk/internal/infrastructure/adapter"
	"github.com/michaelkobetss/test-task-otpusk/internal/infrastructure/config"
	"github.com/michaelkobetss/test-task-otpusk/internal/infrastructure/handler"
	"github.com/michaelkobetss/test-task-otpusk/internal/obs"
	"github.com/michaelkobetss/test-task-otpusk/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

type Application struct {
	config *config.Config
	logger *slog.Logger
	server *http.Server

	otpuskAPI    *adapter.OtpuskAPIAdapter
	cooldowns    search.CooldownStore
	redisAdapter *adapter.RedisCooldownAdapter

	store        *session.Store
	orchestrator *orchestrator.Orchestrator
	metrics      *obs.Metrics

	searchHandler *handler.SearchHandler
}

func main() {
	applicationLogger := logger.SetupLogger("info")

	cfg, err := config.LoadConfig()
	if err != nil {
		applicationLogger.Error(fmt.Sprintf("Failed to load configuration: %s", err.Error()))
		os.Exit(1)
	}

	app, err := NewApplication(cfg, applicationLogger)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

func NewApplication(cfg *config.Config, applicationLogger *slog.Logger) (*Application, error) {
	metrics := obs.NewMetrics(prometheus.NewRegistry())

	otpuskAPI := adapter.NewOtpuskAPIAdapter(&adapter.APIConfig{
		BaseURL:    cfg.OtpuskAPI.BaseURL,
		APIKey:     cfg.OtpuskAPI.APIKey,
		Timeout:    cfg.OtpuskAPI.Timeout,
		RateLimit:  cfg.OtpuskAPI.RateLimit,
		BurstLimit: cfg.OtpuskAPI.BurstLimit,
		CircuitBreaker: &adapter.CircuitBreakerConfig{
			MaxRequests: uint32(cfg.OtpuskAPI.CircuitBreakerMaxFailures),
			Interval:    60 * time.Second,
			Timeout:     time.Duration(cfg.OtpuskAPI.CircuitBreakerResetSeconds) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		},
	}, applicationLogger)

	var cooldowns search.CooldownStore
	var redisAdapter *adapter.RedisCooldownAdapter
	if cfg.Redis.Enabled {
		applicationLogger.Info("Connecting to Redis", "address", cfg.Redis.Address())
		redisAdapter = adapter.NewRedisCooldownAdapterFromAddr(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.Database)
		cooldowns = redisAdapter
	} else {
		applicationLogger.Info("Redis disabled, cooldowns held in memory")
		cooldowns = adapter.NewMemoryCooldownAdapter()
	}

	store := session.NewStore()

	orch := orchestrator.New(
		otpuskAPI,
		otpuskAPI,
		cooldowns,
		store,
		metrics,
		applicationLogger,
		orchestrator.Config{
			EmptyRetryBudget: cfg.Search.EmptyRetryBudget,
			NetworkRetries:   cfg.Search.NetworkRetries,
			RetryBackoff:     cfg.Search.RetryBackoff,
			TickInterval:     cfg.Search.TickInterval,
		},
	)

	searchHandler := handler.NewSearchHandler(orch, store, applicationLogger)

	app := &Application{
		config:        cfg,
		logger:        applicationLogger,
		otpuskAPI:     otpuskAPI,
		cooldowns:     cooldowns,
		redisAdapter:  redisAdapter,
		store:         store,
		orchestrator:  orch,
		metrics:       metrics,
		searchHandler: searchHandler,
	}
	app.server = initServer(cfg.Server, searchHandler, metrics, applicationLogger)

	return app, nil
}

func (app *Application) Start() error {
	ctx := context.Background()

	app.logger.Info("Starting tour search service",
		"address", app.config.Server.Address(),
		"gateway", app.config.OtpuskAPI.BaseURL)

	if err := app.performHealthChecks(ctx); err != nil {
		app.logger.Error("Health checks failed", "error", err)
		return err
	}

	go func() {
		figure.NewFigure("TOURS", "", true).Print()
		fmt.Println("")
		fmt.Println("Tour search service started at " + app.config.Server.Address())
		fmt.Println("")
		if err := app.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("HTTP server failed", "error", err)
		}
	}()

	app.waitForShutdown()

	return nil
}

func (app *Application) performHealthChecks(ctx context.Context) error {
	if app.redisAdapter != nil {
		if err := app.redisAdapter.Ping(ctx); err != nil {
			app.logger.Warn("Redis health check failed", "error", err)
		}
	}
	return nil
}

func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	app.logger.Info("Shutting down server...")

	app.orchestrator.Cancel()
	app.orchestrator.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("Server forced to shutdown", "error", err)
	}

	if app.redisAdapter != nil {
		if err := app.redisAdapter.Close(); err != nil {
			app.logger.Error("Error closing Redis", "error", err)
		}
	}

	app.logger.Info("Server stopped gracefully")
}

func initServer(cfg config.ServerConfig, searchHandler *handler.SearchHandler, metrics *obs.Metrics, logger *slog.Logger) *http.Server {
	router := mux.NewRouter()

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/search", searchHandler.StartSearch).Methods("POST")
	api.HandleFunc("/search/cancel", searchHandler.CancelSearch).Methods("POST")
	api.HandleFunc("/search/state", searchHandler.GetState).Methods("GET")
	api.HandleFunc("/search/retries/{key}", searchHandler.GetRetries).Methods("GET")
	api.HandleFunc("/tours/{id}", searchHandler.GetTour).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/invalidate/{key}", searchHandler.Invalidate).Methods("POST")

	router.HandleFunc("/health", searchHandler.HealthCheck).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	router.Use(metricsMiddleware(metrics))
	router.Use(loggingMiddleware(logger))
	if cfg.EnableCORS {
		router.Use(corsMiddleware)
	}

	return &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}
