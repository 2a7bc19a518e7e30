package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// Risk score levels.
const (
	RiskHigh     = "HIGH RISK"
	RiskModerate = "MODERATE RISK"
	RiskLow      = "LOW RISK"
)

// maxRiskScore caps the summed factor weights.
const maxRiskScore = 100

// HeatIndexC computes the apparent temperature in Celsius using the
// Rothfusz regression, which operates in Fahrenheit.
func HeatIndexC(tempC, humidity float64) float64 {
	tf := tempC*9/5 + 32
	hi := -42.379 + 2.04901523*tf + 10.14333127*humidity -
		0.22475541*tf*humidity - 0.00683783*tf*tf -
		0.05481717*humidity*humidity + 0.00122874*tf*tf*humidity +
		0.00085282*tf*humidity*humidity - 0.00000199*tf*tf*humidity*humidity
	return (hi - 32) * 5 / 9
}

// Assess computes the weighted multi-factor risk score for a set of current
// conditions. Factors that do not fire are omitted; the result lists fired
// factors sorted by score, highest first.
func Assess(cond *models.CurrentConditions, now time.Time) models.RiskAssessment {
	score := 0
	factors := []models.RiskFactor{}

	add := func(f models.RiskFactor) {
		factors = append(factors, f)
		score += f.Score
	}

	aq := cond.AirQuality
	if aq != nil {
		pm25Value := fmt.Sprintf("%.1f μg/m³", aq.PM25)
		switch {
		case aq.PM25 > 250:
			add(models.RiskFactor{Name: "Air Quality (PM2.5)", Value: pm25Value, Score: 50, Level: "Hazardous", Color: "danger"})
		case aq.PM25 > 150:
			add(models.RiskFactor{Name: "Air Quality (PM2.5)", Value: pm25Value, Score: 45, Level: "Very Unhealthy", Color: "danger"})
		case aq.PM25 > 80:
			add(models.RiskFactor{Name: "Air Quality (PM2.5)", Value: pm25Value, Score: 30, Level: "Unhealthy", Color: "warning"})
		case aq.PM25 > 50:
			add(models.RiskFactor{Name: "Air Quality (PM2.5)", Value: pm25Value, Score: 20, Level: "Moderate", Color: "warning"})
		case aq.PM25 > 35:
			add(models.RiskFactor{Name: "Air Quality (PM2.5)", Value: pm25Value, Score: 10, Level: "Acceptable", Color: "info"})
		}

		no2Value := fmt.Sprintf("%.1f μg/m³", aq.NO2)
		switch {
		case aq.NO2 > 200:
			add(models.RiskFactor{Name: "Nitrogen Dioxide", Value: no2Value, Score: 15, Level: "Very High", Color: "danger"})
		case aq.NO2 > 100:
			add(models.RiskFactor{Name: "Nitrogen Dioxide", Value: no2Value, Score: 10, Level: "High", Color: "warning"})
		case aq.NO2 > 50:
			add(models.RiskFactor{Name: "Nitrogen Dioxide", Value: no2Value, Score: 5, Level: "Moderate", Color: "info"})
		}

		o3Value := fmt.Sprintf("%.1f μg/m³", aq.O3)
		switch {
		case aq.O3 > 180:
			add(models.RiskFactor{Name: "Ozone Level", Value: o3Value, Score: 15, Level: "Very High", Color: "danger"})
		case aq.O3 > 120:
			add(models.RiskFactor{Name: "Ozone Level", Value: o3Value, Score: 10, Level: "High", Color: "warning"})
		case aq.O3 > 80:
			add(models.RiskFactor{Name: "Ozone Level", Value: o3Value, Score: 5, Level: "Moderate", Color: "info"})
		}
	}

	tempValue := fmt.Sprintf("%g°C", cond.TempC)
	switch {
	case cond.TempC > 40:
		add(models.RiskFactor{Name: "Extreme Heat", Value: tempValue, Score: 15, Level: "Dangerous", Color: "danger"})
	case cond.TempC > 35:
		add(models.RiskFactor{Name: "High Temperature", Value: tempValue, Score: 10, Level: "Heat Stress", Color: "warning"})
	case cond.TempC < -15:
		add(models.RiskFactor{Name: "Extreme Cold", Value: tempValue, Score: 15, Level: "Dangerous", Color: "danger"})
	case cond.TempC < -5:
		add(models.RiskFactor{Name: "Low Temperature", Value: tempValue, Score: 10, Level: "Cold Stress", Color: "warning"})
	}

	humidityValue := fmt.Sprintf("%g%%", cond.Humidity)
	switch {
	case cond.Humidity > 85 && cond.TempC > 28:
		add(models.RiskFactor{Name: "High Humidity + Heat", Value: humidityValue, Score: 10, Level: "Oppressive", Color: "warning"})
	case cond.Humidity < 20:
		add(models.RiskFactor{Name: "Very Low Humidity", Value: humidityValue, Score: 8, Level: "Dry Air", Color: "info"})
	}

	windValue := fmt.Sprintf("%g km/h", cond.WindKph)
	switch {
	case cond.WindKph > 75:
		add(models.RiskFactor{Name: "Severe Wind", Value: windValue, Score: 15, Level: "Storm Force", Color: "danger"})
	case cond.WindKph > 50:
		add(models.RiskFactor{Name: "High Wind", Value: windValue, Score: 10, Level: "Strong Gale", Color: "warning"})
	}

	uvValue := fmt.Sprintf("%g", cond.UVIndex)
	switch {
	case cond.UVIndex > 10:
		add(models.RiskFactor{Name: "UV Radiation", Value: uvValue, Score: 10, Level: "Extreme", Color: "danger"})
	case cond.UVIndex > 7:
		add(models.RiskFactor{Name: "UV Radiation", Value: uvValue, Score: 7, Level: "Very High", Color: "warning"})
	}

	visValue := fmt.Sprintf("%g km", cond.VisibilityKm)
	switch {
	case cond.VisibilityKm < 1:
		add(models.RiskFactor{Name: "Poor Visibility", Value: visValue, Score: 10, Level: "Dense Fog/Smog", Color: "danger"})
	case cond.VisibilityKm < 5:
		add(models.RiskFactor{Name: "Reduced Visibility", Value: visValue, Score: 6, Level: "Fog/Haze", Color: "warning"})
	}

	// Heat index only matters when it is actually warm; the regression is
	// not meaningful at low temperatures.
	if cond.TempC > 25 {
		hi := HeatIndexC(cond.TempC, cond.Humidity)
		hiValue := fmt.Sprintf("%.1f°C", hi)
		switch {
		case hi > 41:
			add(models.RiskFactor{Name: "Heat Index", Value: hiValue, Score: 15, Level: "Extreme Danger", Color: "danger"})
		case hi > 32:
			add(models.RiskFactor{Name: "Heat Index", Value: hiValue, Score: 10, Level: "Danger", Color: "warning"})
		}
	}

	if aq != nil && cond.WindKph < 10 && aq.PM25 > 30 {
		add(models.RiskFactor{
			Name:  "Air Stagnation",
			Value: fmt.Sprintf("%g km/h wind", cond.WindKph),
			Score: 10, Level: "Pollutant Trap", Color: "danger",
		})
	}

	if score > maxRiskScore {
		score = maxRiskScore
	}

	level, labelClass := RiskLow, "low"
	switch {
	case score > 70:
		level, labelClass = RiskHigh, "high"
	case score > 40:
		level, labelClass = RiskModerate, "moderate"
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].Score > factors[j].Score
	})

	return models.RiskAssessment{
		RiskScore:  score,
		RiskLevel:  level,
		LabelClass: labelClass,
		Factors:    factors,
		Timestamp:  now,
	}
}
