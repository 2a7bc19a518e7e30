package risk

import (
	"fmt"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// Alert severities, ordered worst first.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
)

// GenerateAlerts evaluates the contextual alert rules against current
// conditions. Rules combine several variables at once, so a reading that
// trips nothing individually can still produce an alert.
func GenerateAlerts(cond *models.CurrentConditions) []models.Alert {
	alerts := []models.Alert{}

	aq := cond.AirQuality
	if aq != nil {
		// Poor dispersion: particulates with too little wind to move them.
		switch {
		case aq.PM25 > 75 && cond.WindKph < 10:
			alerts = append(alerts, models.Alert{
				Severity: SeverityCritical,
				Category: "air_quality",
				Title:    "Air Quality - Poor Dispersion",
				Message: fmt.Sprintf("PM2.5 concentration is %.1f μg/m³ with minimal air movement (%g km/h wind). Stagnant conditions are preventing pollutant dispersion and pollutants are accumulating near ground level.",
					aq.PM25, cond.WindKph),
				Recommendation: "Stay indoors with windows closed. Use air purifiers. Avoid all outdoor physical activities. Wear an N95 mask if going outside is unavoidable.",
			})
		case aq.PM25 > 50 && cond.WindKph < 15:
			alerts = append(alerts, models.Alert{
				Severity: SeverityHigh,
				Category: "air_quality",
				Title:    "Elevated Air Pollution with Poor Ventilation",
				Message: fmt.Sprintf("PM2.5 levels at %.1f μg/m³ combined with low wind speed (%g km/h). Weak winds are insufficient to disperse local pollution.",
					aq.PM25, cond.WindKph),
				Recommendation: "Limit outdoor activities, especially for sensitive groups. Postpone outdoor exercise until air quality improves.",
			})
		}

		// Photochemical smog: heat, sunlight, and NO2 cooking up ozone.
		if cond.TempC > 28 && aq.NO2 > 50 && aq.O3 > 100 && cond.IsDay && cond.UVIndex > 5 {
			alerts = append(alerts, models.Alert{
				Severity: SeverityHigh,
				Category: "photochemical",
				Title:    "Photochemical Smog Formation",
				Message: fmt.Sprintf("Ground-level ozone at %.1f μg/m³ with high NO₂ (%.1f μg/m³) under sunny conditions (%g°C, UV %g). Photochemical reactions will intensify through the day and peak in the afternoon.",
					aq.O3, aq.NO2, cond.TempC, cond.UVIndex),
				Recommendation: "Avoid outdoor exercise between 12 PM and 4 PM. People with respiratory conditions should take extra precaution. Conditions improve after sunset.",
			})
		}

		// Temperature inversion: calm, humid, stable air capping pollution.
		if cond.WindKph < 5 && aq.PM25 > 35 && cond.Humidity > 75 {
			alerts = append(alerts, models.Alert{
				Severity: SeverityCritical,
				Category: "inversion",
				Title:    "Temperature Inversion Event",
				Message: fmt.Sprintf("Atmospheric conditions are trapping pollutants. PM2.5: %.1f μg/m³, wind: %g km/h, humidity: %g%%. An inversion layer is preventing vertical air mixing.",
					aq.PM25, cond.WindKph, cond.Humidity),
				Recommendation: "Minimize all outdoor exposure. Keep vulnerable people indoors. Close windows and external air vents until the weather pattern changes.",
			})
		}
	}

	// Heat stress via apparent temperature.
	if cond.TempC > 28 && cond.Humidity > 60 {
		hi := HeatIndexC(cond.TempC, cond.Humidity)
		if hi > 40 {
			alerts = append(alerts, models.Alert{
				Severity: SeverityCritical,
				Category: "heat",
				Title:    "Heat Index - Danger Level",
				Message: fmt.Sprintf("Heat index is %.1f°C with actual temperature %g°C and humidity %g%%. High humidity prevents sweat evaporation, creating dangerous conditions for heat exhaustion and heat stroke.",
					hi, cond.TempC, cond.Humidity),
				Recommendation: "Stay in air conditioning. Drink water frequently. Never leave anyone in parked vehicles. Watch for dizziness, nausea, rapid heartbeat, or confusion.",
			})
		} else if hi > 32 {
			alerts = append(alerts, models.Alert{
				Severity: SeverityHigh,
				Category: "heat",
				Title:    "High Heat Index",
				Message: fmt.Sprintf("Heat index at %.1f°C creates heat stress risk. Temperature: %g°C, humidity: %g%%.",
					hi, cond.TempC, cond.Humidity),
				Recommendation: "Limit outdoor activities between 11 AM and 4 PM. Stay hydrated. Take frequent breaks in shade or air conditioning.",
			})
		}
	}

	// UV exposure under mostly clear skies.
	if cond.UVIndex > 8 && cond.CloudPct < 40 {
		severity := SeverityHigh
		if cond.UVIndex > 10 {
			severity = SeverityCritical
		}
		burnMinutes := int(200/(cond.UVIndex*1.5) + 0.5)
		if burnMinutes < 10 {
			burnMinutes = 10
		}
		alerts = append(alerts, models.Alert{
			Severity: severity,
			Category: "uv",
			Title:    "UV Radiation Warning",
			Message: fmt.Sprintf("UV index is %g with %g%% cloud cover. Unprotected skin can burn in approximately %d minutes.",
				cond.UVIndex, cond.CloudPct, burnMinutes),
			Recommendation: "Apply broad-spectrum SPF 30+ sunscreen every 2 hours. Wear protective clothing and UV-blocking sunglasses. Seek shade between 10 AM and 4 PM.",
		})
	}

	// Gale and storm force winds.
	if cond.WindKph > 50 {
		severity, category := SeverityHigh, "Gale Force"
		if cond.WindKph > 75 {
			severity, category = SeverityCritical, "Storm Force"
		}
		dir := cond.WindDir
		if dir == "" {
			dir = "N"
		}
		alerts = append(alerts, models.Alert{
			Severity: severity,
			Category: "wind",
			Title:    fmt.Sprintf("%s Winds", category),
			Message: fmt.Sprintf("Wind speed at %g km/h from %s. At these speeds loose objects become projectiles and trees or power lines may fall.",
				cond.WindKph, dir),
			Recommendation: "Stay indoors and away from windows. Secure loose outdoor items. Avoid driving, especially high-profile vehicles. Prepare for power outages.",
		})
	}

	return alerts
}
