package models

import "time"

// Reading is a single timestamped environmental observation for a monitored
// location. Pollutant and weather fields are pointers because the upstream
// provider may omit any of them; a nil field is excluded from analysis
// rather than treated as zero.
type Reading struct {
	ID            int64     `json:"id,omitempty"`
	Location      string    `json:"location"`
	Timestamp     time.Time `json:"timestamp"`
	TempC         *float64  `json:"temp_c"`
	Humidity      *float64  `json:"humidity"`
	WindKph       *float64  `json:"wind_kph,omitempty"`
	WindDir       string    `json:"wind_dir,omitempty"`
	PressureMb    *float64  `json:"pressure_mb,omitempty"`
	VisibilityKm  *float64  `json:"visibility_km,omitempty"`
	UVIndex       *float64  `json:"uv_index,omitempty"`
	PM25          *float64  `json:"pm2_5"`
	PM10          *float64  `json:"pm10,omitempty"`
	O3            *float64  `json:"o3,omitempty"`
	NO2           *float64  `json:"no2,omitempty"`
	SO2           *float64  `json:"so2,omitempty"`
	CO            *float64  `json:"co,omitempty"`
	ConditionText string    `json:"condition_text,omitempty"`
	IsDay         bool      `json:"is_day,omitempty"`
}

// TrendDiagnostics carries the raw per-variable regression slopes behind a
// prediction, rounded to two decimals.
type TrendDiagnostics struct {
	TemperatureTrend float64 `json:"temperature_trend"`
	HumidityTrend    float64 `json:"humidity_trend"`
	PM25Trend        float64 `json:"pm25_trend"`
}

// Prediction is a single-step (next hour) forecast.
type Prediction struct {
	ID                int64            `json:"id,omitempty"`
	Location          string           `json:"location,omitempty"`
	PredictionFor     time.Time        `json:"prediction_for"`
	PredictedTempC    float64          `json:"predicted_temp_c"`
	PredictedHumidity float64          `json:"predicted_humidity"`
	PredictedPM25     float64          `json:"predicted_pm2_5"`
	ConfidenceScore   float64          `json:"confidence_score"`
	Algorithm         string           `json:"algorithm"`
	DataPointsUsed    int              `json:"data_points_used"`
	Trends            TrendDiagnostics `json:"trends"`
}

// HourlyPrediction is one step of a multi-hour forecast series.
type HourlyPrediction struct {
	PredictionFor     time.Time `json:"prediction_for"`
	HoursAhead        int       `json:"hours_ahead"`
	PredictedTempC    float64   `json:"predicted_temp_c"`
	PredictedHumidity float64   `json:"predicted_humidity"`
	PredictedPM25     float64   `json:"predicted_pm2_5"`
	ConfidenceScore   float64   `json:"confidence_score"`
}

// Pattern analysis statuses.
const (
	StatusSuccess          = "success"
	StatusInsufficientData = "insufficient_data"
)

// TemperatureStats summarizes temperature over an analysis window.
type TemperatureStats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
	Trend  string  `json:"trend"`
}

// HumidityStats summarizes humidity over an analysis window.
type HumidityStats struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Trend string  `json:"trend"`
}

// PM25Stats summarizes PM2.5 over an analysis window. The block is absent
// entirely when fewer than two PM2.5 values exist.
type PM25Stats struct {
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Trend string  `json:"trend"`
}

// DataQuality describes how much data backed a pattern analysis.
type DataQuality struct {
	ReadingsCount int     `json:"readings_count"`
	TimeSpanHours float64 `json:"time_span_hours"`
	Completeness  int     `json:"completeness"`
}

// PatternReport is a snapshot statistical summary of a reading sequence.
type PatternReport struct {
	Status      string            `json:"status"`
	Message     string            `json:"message,omitempty"`
	Temperature *TemperatureStats `json:"temperature,omitempty"`
	Humidity    *HumidityStats    `json:"humidity,omitempty"`
	PM25        *PM25Stats        `json:"pm2_5"`
	Anomalies   []string          `json:"anomalies,omitempty"`
	DataQuality *DataQuality      `json:"data_quality,omitempty"`
}

// AirQuality carries pollutant concentrations for risk evaluation.
type AirQuality struct {
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
}

// CurrentConditions is the input to risk scoring and alert generation.
type CurrentConditions struct {
	Location     string      `json:"location,omitempty"`
	TempC        float64     `json:"temp_c"`
	Humidity     float64     `json:"humidity" validate:"gte=0,lte=100"`
	WindKph      float64     `json:"wind_kph" validate:"gte=0"`
	WindDir      string      `json:"wind_dir,omitempty"`
	PressureMb   float64     `json:"pressure_mb,omitempty"`
	VisibilityKm float64     `json:"visibility_km,omitempty"`
	UVIndex      float64     `json:"uv_index,omitempty"`
	CloudPct     float64     `json:"cloud,omitempty" validate:"gte=0,lte=100"`
	IsDay        bool        `json:"is_day,omitempty"`
	AirQuality   *AirQuality `json:"air_quality,omitempty"`
}

// RiskFactor is one scored contributor to an overall risk assessment.
type RiskFactor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Score int    `json:"score"`
	Level string `json:"level"`
	Color string `json:"color"`
}

// RiskAssessment is the multi-factor environmental risk score for a set of
// current conditions.
type RiskAssessment struct {
	RiskScore  int          `json:"risk_score"`
	RiskLevel  string       `json:"risk_level"`
	LabelClass string       `json:"label_class"`
	Factors    []RiskFactor `json:"factors"`
	Timestamp  time.Time    `json:"timestamp"`
}

// RiskMetrics is the lightweight AQI summary attached to current weather
// responses.
type RiskMetrics struct {
	Timestamp       time.Time `json:"timestamp"`
	AirQualityIndex *int      `json:"air_quality_index"`
	RiskLevel       string    `json:"risk_level"`
	Recommendations []string  `json:"recommendations"`
}

// Alert is a rule-based contextual alert derived from current conditions.
type Alert struct {
	Severity       string `json:"severity"`
	Category       string `json:"category"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Recommendation string `json:"recommendation"`
}

// LocationStats is the per-location slice of DatabaseStats.
type LocationStats struct {
	Readings int64     `json:"readings"`
	Oldest   time.Time `json:"oldest"`
	Newest   time.Time `json:"newest"`
}

// DatabaseStats summarizes stored data volume.
type DatabaseStats struct {
	TotalReadings    int64                    `json:"total_readings"`
	TotalPredictions int64                    `json:"total_predictions"`
	Locations        map[string]LocationStats `json:"locations"`
}
