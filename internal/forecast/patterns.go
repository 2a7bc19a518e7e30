package forecast

import (
	"fmt"
	"math"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// Anomaly flag messages raised by pattern analysis.
const (
	AnomalyTempVariability      = "High temperature variability detected"
	AnomalyHumidityFluctuations = "Significant humidity fluctuations"
	AnomalyAirPollution         = "Severe air pollution episodes detected"
)

// AnalyzePatterns computes descriptive statistics and anomaly flags over the
// entire supplied sequence (no windowing, unlike the predictors). Below
// MinAnalysisReadings readings it returns an insufficient-data report with a
// human-readable message; that is a status, not an error.
func (e *Engine) AnalyzePatterns(history []models.Reading) models.PatternReport {
	if len(history) < e.cfg.MinAnalysisReadings {
		return models.PatternReport{
			Status: models.StatusInsufficientData,
			Message: fmt.Sprintf("Need at least %d data points for pattern analysis",
				e.cfg.MinAnalysisReadings),
		}
	}

	temps := extract(history, tempOf)
	humidity := extract(history, humidityOf)
	pm25 := extract(history, pm25Of)

	var tempStats *models.TemperatureStats
	if len(temps) > 0 {
		tempStats = &models.TemperatureStats{
			Mean:   round1(calculateMean(temps)),
			Min:    round1(minOf(temps)),
			Max:    round1(maxOf(temps)),
			StdDev: round2(calculateStdDev(temps)),
			Trend:  classifyTrend(Trend(temps), e.cfg.TempTrendThreshold),
		}
	}

	var humidityStats *models.HumidityStats
	if len(humidity) > 0 {
		humidityStats = &models.HumidityStats{
			Mean:  math.Round(calculateMean(humidity)),
			Min:   minOf(humidity),
			Max:   maxOf(humidity),
			Trend: classifyTrend(Trend(humidity), e.cfg.HumidityTrendThreshold),
		}
	}

	// The PM2.5 block needs at least two values; with fewer it is absent,
	// not zero-filled.
	var pm25Stats *models.PM25Stats
	if len(pm25) >= 2 {
		pm25Stats = &models.PM25Stats{
			Mean:  round1(calculateMean(pm25)),
			Min:   round1(minOf(pm25)),
			Max:   round1(maxOf(pm25)),
			Trend: classifyTrend(Trend(pm25), e.cfg.PM25TrendThreshold),
		}
	}

	anomalies := []string{}
	if tempStats != nil && tempStats.StdDev > e.cfg.TempStdDevAnomaly {
		anomalies = append(anomalies, AnomalyTempVariability)
	}
	if humidityStats != nil && humidityStats.Max-humidityStats.Min > e.cfg.HumidityRangeAnomaly {
		anomalies = append(anomalies, AnomalyHumidityFluctuations)
	}
	if pm25Stats != nil && pm25Stats.Max > e.cfg.PM25MaxAnomaly {
		anomalies = append(anomalies, AnomalyAirPollution)
	}

	completeness := 0
	if len(pm25) > 0 {
		completeness = int(math.Round(float64(len(pm25)) / float64(len(history)) * 100))
	}

	return models.PatternReport{
		Status:      models.StatusSuccess,
		Temperature: tempStats,
		Humidity:    humidityStats,
		PM25:        pm25Stats,
		Anomalies:   anomalies,
		DataQuality: &models.DataQuality{
			ReadingsCount: len(history),
			// Estimated span assuming the configured sampling interval; the
			// engine does not measure actual timestamp deltas.
			TimeSpanHours: float64(len(history)) * e.cfg.ReadingIntervalHours,
			Completeness:  completeness,
		},
	}
}

// classifyTrend maps a slope to a qualitative direction using a
// variable-specific threshold.
func classifyTrend(slope, threshold float64) string {
	switch {
	case slope > threshold:
		return "increasing"
	case slope < -threshold:
		return "decreasing"
	default:
		return "stable"
	}
}
