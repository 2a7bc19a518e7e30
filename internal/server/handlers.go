package server

import (
	"errors"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/cache"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/metrics"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/risk"
)

var validate = validator.New()

// weatherResponse is the current-conditions payload, cached as a unit so a
// hit returns the risk metrics computed at fetch time.
type weatherResponse struct {
	Data        *models.Reading    `json:"data"`
	RiskMetrics models.RiskMetrics `json:"risk_metrics"`
	Cached      bool               `json:"cached"`
}

// conditionsRequest is the body of the risk and alert endpoints: a current
// observation as sent by the upstream provider.
type conditionsRequest struct {
	Location string            `json:"location"`
	Current  conditionsPayload `json:"current" validate:"required"`
}

// conditionsPayload shadows visibility with a pointer so an omitted field
// means clear conditions, the same convention conditionsFromReading applies
// to stored readings.
type conditionsPayload struct {
	models.CurrentConditions
	VisibilityKm *float64 `json:"visibility_km,omitempty" validate:"omitempty,gte=0"`
}

func (p *conditionsPayload) conditions() models.CurrentConditions {
	cond := p.CurrentConditions
	cond.VisibilityKm = deref(p.VisibilityKm, 10)
	return cond
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleCurrentWeather(c *fiber.Ctx) error {
	location := c.Query("location")
	if location == "" {
		return fiber.NewError(fiber.StatusBadRequest, "location query parameter is required")
	}

	ctx := c.Context()

	if s.cache != nil {
		var resp weatherResponse
		if err := s.cache.GetJSON(ctx, location, &resp); err == nil {
			resp.Cached = true
			return c.JSON(resp)
		} else if !errors.Is(err, cache.ErrMiss) {
			s.log.WithError(err).Warn("cache read failed")
		}
	}

	reading, err := s.fetcher.FetchCurrent(ctx, location)
	if err != nil {
		// Serve the last stored reading rather than failing outright when
		// the upstream is down.
		stored, dbErr := s.store.LatestReading(location)
		if dbErr != nil || stored == nil {
			return fiber.NewError(fiber.StatusBadGateway, "failed to fetch weather data")
		}
		s.log.WithField("location", location).WithError(err).
			Warn("upstream fetch failed, serving last stored reading")
		reading = stored
	}

	resp := weatherResponse{
		Data:        reading,
		RiskMetrics: risk.Metrics(conditionsFromReading(reading), time.Now().UTC()),
	}
	s.cacheWrite(ctx, location, resp)

	return c.JSON(resp)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	location := pathLocation(c)
	hours := s.boundedHours(c, s.cfg.Monitoring.DefaultHistoryHours)

	readings, err := s.store.GetHistory(location, hours)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load history")
	}
	if readings == nil {
		readings = []models.Reading{}
	}

	return c.JSON(fiber.Map{
		"location": location,
		"hours":    hours,
		"count":    len(readings),
		"readings": readings,
	})
}

func (s *Server) handlePredict(c *fiber.Ctx) error {
	location := pathLocation(c)

	history, err := s.store.GetHistory(location, s.cfg.Monitoring.DefaultHistoryHours)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load history")
	}

	prediction := s.engine.PredictNextHour(history)
	if prediction == nil {
		return fiber.NewError(fiber.StatusBadRequest,
			"insufficient data for prediction; need more readings")
	}
	prediction.Location = location

	if err := s.store.InsertPrediction(location, prediction); err != nil {
		// Persisting is best effort; the caller still gets the prediction.
		s.log.WithField("location", location).WithError(err).Warn("failed to store prediction")
	}
	metrics.RecordPrediction(location, "single")

	return c.JSON(fiber.Map{
		"location":   location,
		"status":     models.StatusSuccess,
		"prediction": prediction,
	})
}

func (s *Server) handlePredictMulti(c *fiber.Ctx) error {
	location := pathLocation(c)

	hours := c.QueryInt("hours", 6)
	if hours < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "hours must be at least 1")
	}
	if hours > 12 {
		hours = 12
	}

	history, err := s.store.GetHistory(location, s.cfg.Monitoring.DefaultHistoryHours)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load history")
	}

	predictions := s.engine.PredictHours(history, hours)
	if predictions == nil {
		return fiber.NewError(fiber.StatusBadRequest,
			"insufficient data for prediction; need more readings")
	}
	metrics.RecordPrediction(location, "multi")

	return c.JSON(fiber.Map{
		"location":    location,
		"hours":       hours,
		"count":       len(predictions),
		"predictions": predictions,
	})
}

func (s *Server) handleAnalysis(c *fiber.Ctx) error {
	location := pathLocation(c)
	hours := s.boundedHours(c, s.cfg.Monitoring.DefaultHistoryHours)

	history, err := s.store.GetHistory(location, hours)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load history")
	}

	// Too little data is a report status, not an HTTP error.
	report := s.engine.AnalyzePatterns(history)

	return c.JSON(fiber.Map{
		"location": location,
		"hours":    hours,
		"analysis": report,
	})
}

func (s *Server) handleRiskCalculate(c *fiber.Ctx) error {
	req, err := parseConditions(c)
	if err != nil {
		return err
	}

	cond := req.Current.conditions()
	assessment := risk.Assess(&cond, time.Now().UTC())
	return c.JSON(assessment)
}

func (s *Server) handleAlerts(c *fiber.Ctx) error {
	req, err := parseConditions(c)
	if err != nil {
		return err
	}

	cond := req.Current.conditions()
	alerts := risk.GenerateAlerts(&cond)
	return c.JSON(fiber.Map{
		"alerts":    alerts,
		"count":     len(alerts),
		"location":  req.Location,
		"timestamp": time.Now().UTC(),
	})
}

func (s *Server) handleStoredPredictions(c *fiber.Ctx) error {
	location := pathLocation(c)

	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	predictions, err := s.store.RecentPredictions(location, limit)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load predictions")
	}
	if predictions == nil {
		predictions = []models.Prediction{}
	}

	return c.JSON(fiber.Map{
		"location":    location,
		"count":       len(predictions),
		"predictions": predictions,
	})
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.store.Stats()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load stats")
	}
	return c.JSON(stats)
}

func (s *Server) handleCacheClear(c *fiber.Ctx) error {
	if s.cache == nil {
		return c.JSON(fiber.Map{"message": "cache not configured", "items_cleared": 0})
	}

	cleared, err := s.cache.Flush(c.Context())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to clear cache")
	}

	return c.JSON(fiber.Map{
		"message":       "Cache cleared successfully",
		"items_cleared": cleared,
	})
}

func (s *Server) handleDatabaseCleanup(c *fiber.Ctx) error {
	var body struct {
		Days int `json:"days"`
	}
	// Body is optional; the configured retention applies by default.
	_ = c.BodyParser(&body)

	days := body.Days
	if days <= 0 {
		days = s.cfg.Monitoring.RetentionDays
	}

	deleted, err := s.store.CleanupOldReadings(days)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to clean up readings")
	}

	return c.JSON(fiber.Map{
		"deleted": deleted,
		"days":    days,
	})
}

func parseConditions(c *fiber.Ctx) (*conditionsRequest, error) {
	var req conditionsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "weather data is required")
	}
	if err := validate.Struct(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return &req, nil
}

// pathLocation decodes the :location parameter, which may carry encoded
// spaces for multi-word city names.
func pathLocation(c *fiber.Ctx) string {
	raw := c.Params("location")
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// boundedHours reads the hours query parameter and clamps it to the
// configured maximum window.
func (s *Server) boundedHours(c *fiber.Ctx, def int) int {
	hours := c.QueryInt("hours", def)
	if hours < 1 {
		hours = def
	}
	if hours > s.cfg.Monitoring.MaxHistoryHours {
		hours = s.cfg.Monitoring.MaxHistoryHours
	}
	return hours
}

// conditionsFromReading flattens a stored reading into the risk input,
// treating missing fields as zero except visibility, which defaults clear.
func conditionsFromReading(r *models.Reading) *models.CurrentConditions {
	cond := &models.CurrentConditions{
		Location:     r.Location,
		TempC:        deref(r.TempC, 0),
		Humidity:     deref(r.Humidity, 0),
		WindKph:      deref(r.WindKph, 0),
		WindDir:      r.WindDir,
		PressureMb:   deref(r.PressureMb, 0),
		VisibilityKm: deref(r.VisibilityKm, 10),
		UVIndex:      deref(r.UVIndex, 0),
		IsDay:        r.IsDay,
	}
	if r.PM25 != nil || r.PM10 != nil || r.O3 != nil || r.NO2 != nil || r.SO2 != nil || r.CO != nil {
		cond.AirQuality = &models.AirQuality{
			PM25: deref(r.PM25, 0),
			PM10: deref(r.PM10, 0),
			O3:   deref(r.O3, 0),
			NO2:  deref(r.NO2, 0),
			SO2:  deref(r.SO2, 0),
			CO:   deref(r.CO, 0),
		}
	}
	return cond
}

func deref(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
