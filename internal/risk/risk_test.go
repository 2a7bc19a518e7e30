package risk

import (
	"testing"
	"time"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

var testNow = time.Date(2025, 7, 15, 14, 0, 0, 0, time.UTC)

func TestAQIFromPM25(t *testing.T) {
	tests := []struct {
		name      string
		pm25      float64
		wantAQI   int
		wantLevel string
	}{
		{"zero", 0, 0, LevelGood},
		{"good upper bound", 12, 50, LevelGood},
		{"moderate upper bound", 35, 100, LevelModerate},
		{"sensitive upper bound", 55, 150, LevelUnhealthySensitive},
		{"unhealthy upper bound", 150, 200, LevelUnhealthy},
		{"very unhealthy upper bound", 250, 300, LevelVeryUnhealthy},
		{"hazardous", 350, 400, LevelHazardous},
		{"mid good", 6, 25, LevelGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			aqi, level := AQIFromPM25(tt.pm25)
			if aqi != tt.wantAQI {
				t.Errorf("AQIFromPM25(%v) aqi = %d, want %d", tt.pm25, aqi, tt.wantAQI)
			}
			if level != tt.wantLevel {
				t.Errorf("AQIFromPM25(%v) level = %q, want %q", tt.pm25, level, tt.wantLevel)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	t.Run("no air quality data", func(t *testing.T) {
		m := Metrics(&models.CurrentConditions{TempC: 20}, testNow)
		if m.AirQualityIndex != nil {
			t.Errorf("AirQualityIndex = %v, want nil", *m.AirQualityIndex)
		}
		if m.RiskLevel != LevelLow {
			t.Errorf("RiskLevel = %q, want %q", m.RiskLevel, LevelLow)
		}
		if len(m.Recommendations) != 0 {
			t.Errorf("Recommendations = %v, want empty", m.Recommendations)
		}
	})

	t.Run("unhealthy air", func(t *testing.T) {
		cond := &models.CurrentConditions{AirQuality: &models.AirQuality{PM25: 100}}
		m := Metrics(cond, testNow)
		if m.AirQualityIndex == nil {
			t.Fatal("AirQualityIndex = nil, want value")
		}
		if m.RiskLevel != LevelUnhealthy {
			t.Errorf("RiskLevel = %q, want %q", m.RiskLevel, LevelUnhealthy)
		}
		if len(m.Recommendations) != 2 {
			t.Errorf("Recommendations = %v, want two entries", m.Recommendations)
		}
	})

	t.Run("moderate air", func(t *testing.T) {
		cond := &models.CurrentConditions{AirQuality: &models.AirQuality{PM25: 20}}
		m := Metrics(cond, testNow)
		if m.RiskLevel != LevelModerate {
			t.Errorf("RiskLevel = %q, want %q", m.RiskLevel, LevelModerate)
		}
		if len(m.Recommendations) != 1 {
			t.Errorf("Recommendations = %v, want one entry", m.Recommendations)
		}
	})
}

func TestHeatIndexC(t *testing.T) {
	// 32.2°C at 85% humidity is a standard NWS table point around 47°C.
	hi := HeatIndexC(32.2222, 85)
	if hi < 46 || hi > 49 {
		t.Errorf("HeatIndexC(32.2, 85) = %v, want roughly 47", hi)
	}

	// More humidity must feel hotter at the same temperature.
	if HeatIndexC(32, 80) <= HeatIndexC(32, 60) {
		t.Error("heat index not increasing with humidity")
	}
}

func TestAssessBenignConditions(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        20,
		Humidity:     50,
		WindKph:      12,
		UVIndex:      3,
		VisibilityKm: 10,
		AirQuality:   &models.AirQuality{PM25: 8, NO2: 15, O3: 40},
	}

	a := Assess(cond, testNow)
	if a.RiskScore != 0 {
		t.Errorf("RiskScore = %d, want 0", a.RiskScore)
	}
	if a.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %q, want %q", a.RiskLevel, RiskLow)
	}
	if len(a.Factors) != 0 {
		t.Errorf("Factors = %v, want none", a.Factors)
	}
}

func TestAssessExtremeConditionsCapped(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        42,
		Humidity:     90,
		WindKph:      80,
		UVIndex:      11,
		VisibilityKm: 0.5,
		AirQuality:   &models.AirQuality{PM25: 260, NO2: 250, O3: 200},
	}

	a := Assess(cond, testNow)
	if a.RiskScore != 100 {
		t.Errorf("RiskScore = %d, want capped at 100", a.RiskScore)
	}
	if a.RiskLevel != RiskHigh {
		t.Errorf("RiskLevel = %q, want %q", a.RiskLevel, RiskHigh)
	}
	if a.LabelClass != "high" {
		t.Errorf("LabelClass = %q, want high", a.LabelClass)
	}
	if len(a.Factors) == 0 {
		t.Fatal("Factors empty, want fired factors")
	}
	for i := 1; i < len(a.Factors); i++ {
		if a.Factors[i].Score > a.Factors[i-1].Score {
			t.Errorf("factors not sorted by score: %d before %d",
				a.Factors[i-1].Score, a.Factors[i].Score)
		}
	}
}

func TestAssessModerateConditions(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        36,
		Humidity:     30,
		WindKph:      9,
		UVIndex:      8,
		VisibilityKm: 10,
		AirQuality:   &models.AirQuality{PM25: 60, NO2: 60, O3: 40},
	}

	a := Assess(cond, testNow)
	if a.RiskLevel != RiskModerate {
		t.Errorf("RiskLevel = %q (score %d), want %q", a.RiskLevel, a.RiskScore, RiskModerate)
	}
	if a.RiskScore <= 40 || a.RiskScore > 70 {
		t.Errorf("RiskScore = %d, want in moderate band (41-70)", a.RiskScore)
	}
}

func TestAssessAirStagnation(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        18,
		Humidity:     50,
		WindKph:      5,
		VisibilityKm: 10,
		AirQuality:   &models.AirQuality{PM25: 40},
	}

	a := Assess(cond, testNow)
	var found bool
	for _, f := range a.Factors {
		if f.Name == "Air Stagnation" {
			found = true
			if f.Score != 10 {
				t.Errorf("stagnation score = %d, want 10", f.Score)
			}
		}
	}
	if !found {
		t.Errorf("Air Stagnation factor missing from %v", a.Factors)
	}
}

func TestGenerateAlertsQuietConditions(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        18,
		Humidity:     50,
		WindKph:      15,
		UVIndex:      3,
		VisibilityKm: 10,
		CloudPct:     60,
		AirQuality:   &models.AirQuality{PM25: 10, NO2: 20, O3: 50},
	}

	alerts := GenerateAlerts(cond)
	if len(alerts) != 0 {
		t.Errorf("alerts = %v, want none", alerts)
	}
	if alerts == nil {
		t.Error("alerts must be an empty list, not absent")
	}
}

func TestGenerateAlertsDispersion(t *testing.T) {
	tests := []struct {
		name         string
		pm25, wind   float64
		wantSeverity string
	}{
		{"critical at heavy pm25 and calm air", 80, 5, SeverityCritical},
		{"high at elevated pm25 and weak wind", 60, 12, SeverityHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := &models.CurrentConditions{
				TempC:        18,
				Humidity:     50,
				WindKph:      tt.wind,
				VisibilityKm: 10,
				AirQuality:   &models.AirQuality{PM25: tt.pm25},
			}
			alerts := GenerateAlerts(cond)
			if len(alerts) != 1 {
				t.Fatalf("alerts = %v, want exactly one", alerts)
			}
			if alerts[0].Severity != tt.wantSeverity || alerts[0].Category != "air_quality" {
				t.Errorf("alert = %s/%s, want %s/air_quality",
					alerts[0].Severity, alerts[0].Category, tt.wantSeverity)
			}
		})
	}
}

func TestGenerateAlertsPhotochemicalSmog(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        32,
		Humidity:     40,
		WindKph:      20,
		UVIndex:      7,
		IsDay:        true,
		CloudPct:     50,
		VisibilityKm: 10,
		AirQuality:   &models.AirQuality{PM25: 20, NO2: 80, O3: 140},
	}

	alerts := GenerateAlerts(cond)
	var found bool
	for _, a := range alerts {
		if a.Category == "photochemical" {
			found = true
			if a.Severity != SeverityHigh {
				t.Errorf("smog severity = %q, want high", a.Severity)
			}
		}
	}
	if !found {
		t.Errorf("photochemical alert missing from %v", alerts)
	}

	// Same conditions at night must not fire the rule.
	cond.IsDay = false
	for _, a := range GenerateAlerts(cond) {
		if a.Category == "photochemical" {
			t.Error("photochemical alert fired at night")
		}
	}
}

func TestGenerateAlertsInversion(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        15,
		Humidity:     85,
		WindKph:      3,
		VisibilityKm: 10,
		AirQuality:   &models.AirQuality{PM25: 45},
	}

	alerts := GenerateAlerts(cond)
	var found bool
	for _, a := range alerts {
		if a.Category == "inversion" && a.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Errorf("inversion alert missing from %v", alerts)
	}
}

func TestGenerateAlertsHeatStress(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        35,
		Humidity:     80,
		WindKph:      15,
		VisibilityKm: 10,
	}

	alerts := GenerateAlerts(cond)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want exactly one heat alert", alerts)
	}
	if alerts[0].Category != "heat" || alerts[0].Severity != SeverityCritical {
		t.Errorf("alert = %s/%s, want critical/heat", alerts[0].Severity, alerts[0].Category)
	}
}

func TestGenerateAlertsUV(t *testing.T) {
	cond := &models.CurrentConditions{
		TempC:        22,
		Humidity:     30,
		WindKph:      10,
		UVIndex:      11,
		CloudPct:     10,
		VisibilityKm: 10,
	}

	alerts := GenerateAlerts(cond)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %v, want exactly one UV alert", alerts)
	}
	if alerts[0].Category != "uv" || alerts[0].Severity != SeverityCritical {
		t.Errorf("alert = %s/%s, want critical/uv", alerts[0].Severity, alerts[0].Category)
	}

	// Heavy cloud suppresses the rule regardless of the index.
	cond.CloudPct = 70
	if got := GenerateAlerts(cond); len(got) != 0 {
		t.Errorf("alerts under cloud = %v, want none", got)
	}
}

func TestGenerateAlertsWind(t *testing.T) {
	tests := []struct {
		name         string
		wind         float64
		wantSeverity string
		wantTitle    string
	}{
		{"storm force", 80, SeverityCritical, "Storm Force Winds"},
		{"gale force", 60, SeverityHigh, "Gale Force Winds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond := &models.CurrentConditions{
				TempC:        18,
				Humidity:     50,
				WindKph:      tt.wind,
				WindDir:      "NW",
				VisibilityKm: 10,
			}
			alerts := GenerateAlerts(cond)
			if len(alerts) != 1 {
				t.Fatalf("alerts = %v, want exactly one", alerts)
			}
			if alerts[0].Severity != tt.wantSeverity || alerts[0].Title != tt.wantTitle {
				t.Errorf("alert = %s %q, want %s %q",
					alerts[0].Severity, alerts[0].Title, tt.wantSeverity, tt.wantTitle)
			}
		})
	}
}
