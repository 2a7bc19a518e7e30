// Package risk scores environmental hazard from current conditions: a
// PM2.5-based air quality index, a weighted multi-factor risk score, and
// rule-based contextual alerts.
package risk

import (
	"math"
	"time"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// AQI risk levels, from the US EPA PM2.5 breakpoints.
const (
	LevelGood               = "good"
	LevelModerate           = "moderate"
	LevelUnhealthySensitive = "unhealthy_sensitive"
	LevelUnhealthy          = "unhealthy"
	LevelVeryUnhealthy      = "very_unhealthy"
	LevelHazardous          = "hazardous"
	LevelLow                = "low"
)

// AQIFromPM25 maps a PM2.5 concentration (µg/m³) onto the AQI scale and its
// risk level via piecewise linear interpolation between breakpoints.
func AQIFromPM25(pm25 float64) (int, string) {
	var aqi float64
	var level string

	switch {
	case pm25 <= 12:
		aqi = pm25 * 50 / 12
		level = LevelGood
	case pm25 <= 35:
		aqi = 50 + (pm25-12)*50/23
		level = LevelModerate
	case pm25 <= 55:
		aqi = 100 + (pm25-35)*50/20
		level = LevelUnhealthySensitive
	case pm25 <= 150:
		aqi = 150 + (pm25-55)*50/95
		level = LevelUnhealthy
	case pm25 <= 250:
		aqi = 200 + (pm25-150)*100/100
		level = LevelVeryUnhealthy
	default:
		aqi = 300 + (pm25-250)*100/100
		level = LevelHazardous
	}

	return int(math.Round(aqi)), level
}

// Metrics computes the lightweight AQI summary attached to current-weather
// responses. Without air quality data the level stays "low" and the index
// is absent.
func Metrics(cond *models.CurrentConditions, now time.Time) models.RiskMetrics {
	m := models.RiskMetrics{
		Timestamp:       now,
		RiskLevel:       LevelLow,
		Recommendations: []string{},
	}

	if cond == nil || cond.AirQuality == nil {
		return m
	}

	aqi, level := AQIFromPM25(cond.AirQuality.PM25)
	m.AirQualityIndex = &aqi
	m.RiskLevel = level

	switch level {
	case LevelUnhealthy, LevelVeryUnhealthy, LevelHazardous:
		m.Recommendations = append(m.Recommendations,
			"Avoid outdoor activities",
			"Use air purifiers indoors")
	case LevelModerate:
		m.Recommendations = append(m.Recommendations,
			"Sensitive groups should limit outdoor exposure")
	}

	return m
}
