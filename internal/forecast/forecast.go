// Package forecast derives short-horizon predictions and statistical
// summaries from an ordered sequence of environmental readings. All
// operations are pure functions of their input plus the engine clock; the
// engine holds no state between calls and is safe for concurrent use.
package forecast

import (
	"math"
	"time"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// Algorithm identifies the prediction method in stored and served results.
const Algorithm = "Linear Trend + Moving Average"

// Config holds the tuning constants of the engine. Zero values are not
// usable; start from DefaultConfig.
type Config struct {
	// WindowSize is how many trailing readings the predictors use.
	WindowSize int `yaml:"window_size"`
	// MinForecastReadings gates single- and multi-step prediction.
	MinForecastReadings int `yaml:"min_forecast_readings"`
	// MinAnalysisReadings gates pattern analysis. Larger than the forecast
	// floor because the analyzer characterizes a distribution, not just a
	// direction.
	MinAnalysisReadings int `yaml:"min_analysis_readings"`

	// Single-step confidence is 1 - variance/100, bounded to this range.
	ConfidenceFloor   float64 `yaml:"confidence_floor"`
	ConfidenceCeiling float64 `yaml:"confidence_ceiling"`

	// Multi-step confidence is max(DecayFloor, DecayBase - DecayStep*h).
	DecayBase  float64 `yaml:"decay_base"`
	DecayStep  float64 `yaml:"decay_step"`
	DecayFloor float64 `yaml:"decay_floor"`

	// Trend classification thresholds are variable-specific: temperature
	// moves on a much tighter scale than humidity or PM2.5.
	TempTrendThreshold     float64 `yaml:"temp_trend_threshold"`
	HumidityTrendThreshold float64 `yaml:"humidity_trend_threshold"`
	PM25TrendThreshold     float64 `yaml:"pm25_trend_threshold"`

	// Anomaly flag thresholds for pattern analysis.
	TempStdDevAnomaly    float64 `yaml:"temp_stddev_anomaly"`
	HumidityRangeAnomaly float64 `yaml:"humidity_range_anomaly"`
	PM25MaxAnomaly       float64 `yaml:"pm25_max_anomaly"`

	// ReadingIntervalHours is the assumed spacing between readings, used
	// only for the reported time-span estimate. The engine itself is
	// index-based and never inspects timestamps.
	ReadingIntervalHours float64 `yaml:"reading_interval_hours"`
}

// DefaultConfig returns the stock engine tuning.
func DefaultConfig() Config {
	return Config{
		WindowSize:             12,
		MinForecastReadings:    3,
		MinAnalysisReadings:    10,
		ConfidenceFloor:        0.5,
		ConfidenceCeiling:      0.95,
		DecayBase:              0.85,
		DecayStep:              0.08,
		DecayFloor:             0.3,
		TempTrendThreshold:     0.1,
		HumidityTrendThreshold: 0.5,
		PM25TrendThreshold:     0.5,
		TempStdDevAnomaly:      5,
		HumidityRangeAnomaly:   40,
		PM25MaxAnomaly:         100,
		ReadingIntervalHours:   0.083,
	}
}

// Engine computes predictions and pattern reports.
type Engine struct {
	cfg Config
	now func() time.Time
}

// New creates an Engine with the given tuning.
func New(cfg Config) *Engine {
	return &Engine{cfg: cfg, now: time.Now}
}

// series is one variable's non-missing values extracted from a reading
// window, in window order. Each variable filters independently, so a
// reading missing one field still contributes its other fields.
type series []float64

func extract(readings []models.Reading, field func(models.Reading) *float64) series {
	var values series
	for _, r := range readings {
		if v := field(r); v != nil {
			values = append(values, *v)
		}
	}
	return values
}

func tempOf(r models.Reading) *float64     { return r.TempC }
func humidityOf(r models.Reading) *float64 { return r.Humidity }
func pm25Of(r models.Reading) *float64     { return r.PM25 }

// last returns the most recent value of the series, or 0 when empty.
func (s series) last() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1]
}

// window returns the trailing WindowSize readings (or all of them).
func (e *Engine) window(history []models.Reading) []models.Reading {
	if len(history) > e.cfg.WindowSize {
		return history[len(history)-e.cfg.WindowSize:]
	}
	return history
}

// PredictNextHour extrapolates each tracked variable one step ahead using
// its windowed linear trend. The input must be ordered oldest first. It
// returns nil when fewer than MinForecastReadings readings are supplied;
// that is the insufficient-data signal, not an error.
func (e *Engine) PredictNextHour(history []models.Reading) *models.Prediction {
	if len(history) < e.cfg.MinForecastReadings {
		return nil
	}

	recent := e.window(history)

	temps := extract(recent, tempOf)
	humidity := extract(recent, humidityOf)
	pm25 := extract(recent, pm25Of)

	tempTrend := Trend(temps)
	humidityTrend := Trend(humidity)
	pm25Trend := Trend(pm25)

	predictedTemp := temps.last() + tempTrend
	predictedHumidity := clamp(humidity.last()+humidityTrend, 0, 100)

	// No PM2.5 values at all reports a zero trend and zero prediction
	// rather than an absent block; callers treat 0 as "no signal".
	predictedPM25 := 0.0
	if len(pm25) > 0 {
		predictedPM25 = math.Max(0, pm25.last()+pm25Trend)
	}

	// Confidence tracks how consistent the recent temperatures were. The
	// floor and ceiling are deliberate: the engine never claims more than
	// 0.95 or less than 0.5 certainty for a single step.
	variance := calculateVariance(temps)
	confidence := clamp(1-variance/100, e.cfg.ConfidenceFloor, e.cfg.ConfidenceCeiling)

	return &models.Prediction{
		PredictionFor:     e.now().Add(time.Hour),
		PredictedTempC:    round1(predictedTemp),
		PredictedHumidity: math.Round(predictedHumidity),
		PredictedPM25:     round1(predictedPM25),
		ConfidenceScore:   round2(confidence),
		Algorithm:         Algorithm,
		DataPointsUsed:    len(recent),
		Trends: models.TrendDiagnostics{
			TemperatureTrend: round2(tempTrend),
			HumidityTrend:    round2(humidityTrend),
			PM25Trend:        round2(pm25Trend),
		},
	}
}

// PredictHours produces one prediction per hour ahead, 1..hours. Every step
// extrapolates from the same base window and last-observed values, scaling
// the base trend by the step count; steps are never re-based on earlier
// predictions, so each one is independently reproducible and rounding
// artifacts do not compound. Returns an empty slice when the history is
// below the forecast floor.
func (e *Engine) PredictHours(history []models.Reading, hours int) []models.HourlyPrediction {
	if len(history) < e.cfg.MinForecastReadings || hours < 1 {
		return nil
	}

	recent := e.window(history)

	temps := extract(recent, tempOf)
	humidity := extract(recent, humidityOf)
	pm25 := extract(recent, pm25Of)

	tempTrend := Trend(temps)
	humidityTrend := Trend(humidity)
	pm25Trend := Trend(pm25)

	now := e.now()
	predictions := make([]models.HourlyPrediction, 0, hours)

	for h := 1; h <= hours; h++ {
		step := float64(h)

		predictedTemp := temps.last() + tempTrend*step
		predictedHumidity := clamp(humidity.last()+humidityTrend*step, 0, 100)
		predictedPM25 := 0.0
		if len(pm25) > 0 {
			predictedPM25 = math.Max(0, pm25.last()+pm25Trend*step)
		}

		// Long-horizon confidence reflects horizon distance alone, not the
		// single-step variance model.
		confidence := math.Max(e.cfg.DecayFloor, e.cfg.DecayBase-e.cfg.DecayStep*step)

		predictions = append(predictions, models.HourlyPrediction{
			PredictionFor:     now.Add(time.Duration(h) * time.Hour),
			HoursAhead:        h,
			PredictedTempC:    round1(predictedTemp),
			PredictedHumidity: math.Round(predictedHumidity),
			PredictedPM25:     round1(predictedPM25),
			ConfidenceScore:   round2(confidence),
		})
	}

	return predictions
}
