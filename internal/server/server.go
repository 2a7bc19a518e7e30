// Package server exposes the monitoring system over HTTP: current
// conditions with risk metrics, stored history, predictions, pattern
// analysis, risk scoring, alerts, and operational endpoints.
package server

import (
	"context"
	"errors"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/config"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/forecast"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// Store is the persistence surface the handlers need.
type Store interface {
	GetHistory(location string, hours int) ([]models.Reading, error)
	LatestReading(location string) (*models.Reading, error)
	InsertPrediction(location string, p *models.Prediction) error
	RecentPredictions(location string, limit int) ([]models.Prediction, error)
	Stats() (*models.DatabaseStats, error)
	CleanupOldReadings(days int) (int64, error)
}

// Fetcher retrieves live current conditions on cache misses.
type Fetcher interface {
	FetchCurrent(ctx context.Context, location string) (*models.Reading, error)
}

// ResponseCache absorbs repeated current-weather lookups. ErrMiss from
// GetJSON means fetch live; any cache write failure is non-fatal.
type ResponseCache interface {
	GetJSON(ctx context.Context, location string, dest interface{}) error
	SetJSON(ctx context.Context, location string, value interface{}) error
	Flush(ctx context.Context) (int64, error)
}

// Server holds the wired dependencies behind the HTTP handlers.
type Server struct {
	app     *fiber.App
	cfg     *config.Config
	store   Store
	fetcher Fetcher
	cache   ResponseCache
	engine  *forecast.Engine
	log     *logrus.Logger
}

// New assembles the fiber app with logging, panic recovery, and a central
// error handler that renders fiber errors as JSON.
func New(cfg *config.Config, store Store, fetcher Fetcher, rc ResponseCache, log *logrus.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		cache:   rc,
		engine:  forecast.New(cfg.Forecast),
		log:     log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "environmental-monitoring",
		ErrorHandler: errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(logger.New())

	s.registerRoutes()
	return s
}

// Listen serves until the listener fails or Shutdown is called.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")
	api.Get("/weather", s.handleCurrentWeather)
	api.Get("/historical/:location", s.handleHistory)
	api.Get("/predict/:location", s.handlePredict)
	api.Get("/predict/:location/multi", s.handlePredictMulti)
	api.Get("/predictions/:location", s.handleStoredPredictions)
	api.Get("/analysis/:location", s.handleAnalysis)
	api.Post("/risk/calculate", s.handleRiskCalculate)
	api.Post("/alerts/generate", s.handleAlerts)
	api.Get("/stats", s.handleStats)
	api.Post("/cache/clear", s.handleCacheClear)
	api.Post("/database/cleanup", s.handleDatabaseCleanup)
}

// ignore silences cache write errors; a broken cache degrades to live
// fetches instead of failing requests.
func (s *Server) cacheWrite(ctx context.Context, location string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, location, value); err != nil {
		s.log.WithError(err).Warn("cache write failed")
	}
}
