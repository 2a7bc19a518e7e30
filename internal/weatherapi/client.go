// Package weatherapi fetches current observations from weatherapi.com and
// maps them to readings. Requests run behind a circuit breaker with retried
// exponential backoff so one flaky upstream window does not stall the
// collection schedule.
package weatherapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/metrics"
	"github.com/afnaanali/environmental-monitoring-and-alert-system/internal/models"
)

// DefaultBaseURL is the production current-conditions endpoint.
const DefaultBaseURL = "https://api.weatherapi.com/v1/current.json"

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
)

// Client talks to weatherapi.com.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the upstream endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithBackoff overrides the retry schedule.
func WithBackoff(b BackoffConfig) Option {
	return func(c *Client) { c.backoff = b }
}

// NewClient builds a Client with production resilience defaults.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		backoff: BackoffConfig{
			MaxRetries:      3,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		circuit: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "weatherapi",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// currentPayload mirrors the subset of the weatherapi.com response we keep.
type currentPayload struct {
	Location struct {
		Name           string `json:"name"`
		LocaltimeEpoch int64  `json:"localtime_epoch"`
	} `json:"location"`
	Current struct {
		TempC      *float64 `json:"temp_c"`
		Humidity   *float64 `json:"humidity"`
		WindKph    *float64 `json:"wind_kph"`
		WindDir    string   `json:"wind_dir"`
		PressureMb *float64 `json:"pressure_mb"`
		VisKm      *float64 `json:"vis_km"`
		UV         *float64 `json:"uv"`
		IsDay      int      `json:"is_day"`
		Condition  struct {
			Text string `json:"text"`
		} `json:"condition"`
		AirQuality *struct {
			PM25 *float64 `json:"pm2_5"`
			PM10 *float64 `json:"pm10"`
			O3   *float64 `json:"o3"`
			NO2  *float64 `json:"no2"`
			SO2  *float64 `json:"so2"`
			CO   *float64 `json:"co"`
		} `json:"air_quality"`
	} `json:"current"`
}

// FetchCurrent retrieves the current conditions for a location, air quality
// included. Missing upstream fields stay nil on the returned reading.
func (c *Client) FetchCurrent(ctx context.Context, location string) (*models.Reading, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("weatherapi api key is not configured")
	}

	start := time.Now()
	resp, err := c.doWithResilience(ctx, func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", c.apiKey)
		values.Set("q", location)
		values.Set("aqi", "yes")
		return http.NewRequest(http.MethodGet, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), nil)
	})
	metrics.RecordWeatherFetch(location, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conditions for %s: %w", location, err)
	}
	defer resp.Body.Close()

	var payload currentPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode weatherapi response for %s: %w", location, err)
	}

	reading := &models.Reading{
		Location:      location,
		Timestamp:     time.Now().UTC(),
		TempC:         payload.Current.TempC,
		Humidity:      payload.Current.Humidity,
		WindKph:       payload.Current.WindKph,
		WindDir:       payload.Current.WindDir,
		PressureMb:    payload.Current.PressureMb,
		VisibilityKm:  payload.Current.VisKm,
		UVIndex:       payload.Current.UV,
		ConditionText: payload.Current.Condition.Text,
		IsDay:         payload.Current.IsDay == 1,
	}
	if aq := payload.Current.AirQuality; aq != nil {
		reading.PM25 = aq.PM25
		reading.PM10 = aq.PM10
		reading.O3 = aq.O3
		reading.NO2 = aq.NO2
		reading.SO2 = aq.SO2
		reading.CO = aq.CO
	}

	return reading, nil
}

// doWithResilience executes the request with retries, exponential backoff,
// and the circuit breaker.
func (c *Client) doWithResilience(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := c.circuit.Execute(func() (interface{}, error) {
			resp, execErr := c.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// An open circuit means the upstream is already known bad; do not
		// burn retries against it.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt >= c.backoff.MaxRetries {
			return nil, lastErr
		}

		delay := c.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > c.backoff.MaxInterval && c.backoff.MaxInterval > 0 {
			delay = c.backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
