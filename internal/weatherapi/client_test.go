package weatherapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleResponse = `{
	"location": {"name": "London", "localtime_epoch": 1718000000},
	"current": {
		"temp_c": 18.3,
		"humidity": 72,
		"wind_kph": 15.1,
		"wind_dir": "SW",
		"pressure_mb": 1012,
		"vis_km": 10,
		"uv": 4,
		"is_day": 1,
		"condition": {"text": "Partly cloudy"},
		"air_quality": {
			"pm2_5": 8.4,
			"pm10": 12.1,
			"o3": 61.5,
			"no2": 18.9,
			"so2": 3.2,
			"co": 230.3
		}
	}
}`

func fastBackoff() Option {
	return WithBackoff(BackoffConfig{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	})
}

func TestFetchCurrent(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"key": r.URL.Query().Get("key"),
			"q":   r.URL.Query().Get("q"),
			"aqi": r.URL.Query().Get("aqi"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastBackoff())
	reading, err := c.FetchCurrent(context.Background(), "London")
	if err != nil {
		t.Fatalf("FetchCurrent() error = %v", err)
	}

	if gotQuery["key"] != "test-key" || gotQuery["q"] != "London" || gotQuery["aqi"] != "yes" {
		t.Errorf("request query = %v, want key/q/aqi set", gotQuery)
	}

	if reading.Location != "London" {
		t.Errorf("Location = %q, want London", reading.Location)
	}
	if reading.TempC == nil || *reading.TempC != 18.3 {
		t.Errorf("TempC = %v, want 18.3", reading.TempC)
	}
	if reading.Humidity == nil || *reading.Humidity != 72 {
		t.Errorf("Humidity = %v, want 72", reading.Humidity)
	}
	if reading.PM25 == nil || *reading.PM25 != 8.4 {
		t.Errorf("PM25 = %v, want 8.4", reading.PM25)
	}
	if reading.CO == nil || *reading.CO != 230.3 {
		t.Errorf("CO = %v, want 230.3", reading.CO)
	}
	if reading.ConditionText != "Partly cloudy" {
		t.Errorf("ConditionText = %q", reading.ConditionText)
	}
	if !reading.IsDay {
		t.Error("IsDay = false, want true")
	}
	if reading.WindDir != "SW" {
		t.Errorf("WindDir = %q, want SW", reading.WindDir)
	}
}

func TestFetchCurrentMissingAirQuality(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"location": {"name": "Tokyo"}, "current": {"temp_c": 25.0, "humidity": 60, "condition": {"text": "Sunny"}}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastBackoff())
	reading, err := c.FetchCurrent(context.Background(), "Tokyo")
	if err != nil {
		t.Fatalf("FetchCurrent() error = %v", err)
	}

	if reading.PM25 != nil || reading.O3 != nil {
		t.Errorf("pollutants = %v/%v, want nil without air_quality block", reading.PM25, reading.O3)
	}
	if reading.WindKph != nil {
		t.Errorf("WindKph = %v, want nil when omitted", reading.WindKph)
	}
}

func TestFetchCurrentRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastBackoff())
	if _, err := c.FetchCurrent(context.Background(), "London"); err != nil {
		t.Fatalf("FetchCurrent() error = %v, want recovery on third attempt", err)
	}
	if calls != 3 {
		t.Errorf("upstream called %d times, want 3", calls)
	}
}

func TestFetchCurrentGivesUpAfterRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastBackoff())
	if _, err := c.FetchCurrent(context.Background(), "London"); err == nil {
		t.Fatal("FetchCurrent() error = nil, want failure after exhausted retries")
	}
	if calls != 3 {
		t.Errorf("upstream called %d times, want initial attempt plus 2 retries", calls)
	}
}

func TestFetchCurrentBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient("bad-key", WithBaseURL(srv.URL), fastBackoff())
	if _, err := c.FetchCurrent(context.Background(), "Nowhere"); err == nil {
		t.Fatal("FetchCurrent() error = nil, want status error")
	}
}

func TestFetchCurrentMissingAPIKey(t *testing.T) {
	c := NewClient("")
	if _, err := c.FetchCurrent(context.Background(), "London"); err == nil {
		t.Fatal("FetchCurrent() error = nil, want configuration error")
	}
}

func TestFetchCurrentContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("test-key", WithBaseURL(srv.URL), fastBackoff())
	if _, err := c.FetchCurrent(ctx, "London"); err == nil {
		t.Fatal("FetchCurrent() error = nil, want context error")
	}
}
