// Package weather proxies the Open-Meteo geocoding and forecast APIs
// for an event's track location. All calls share one client with a
// bounded timeout; provider failures surface as errors, never hangs.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"race-weekend-api/internal/config"
)

const (
	geocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	forecastURL = "https://api.open-meteo.com/v1/forecast"
)

// ErrNoResults means the provider answered but could not geocode the
// location; callers map it to not-found rather than bad-gateway.
var ErrNoResults = errors.New("location not found")

var (
	httpClient *http.Client
	clientOnce sync.Once
)

func client() *http.Client {
	clientOnce.Do(func() {
		httpClient = &http.Client{
			Timeout: time.Duration(config.Get().WeatherTimeoutSec) * time.Second,
		}
	})
	return httpClient
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

// Geocode resolves "city, state" to coordinates.
func Geocode(ctx context.Context, city, state string) (lat, lon float64, err error) {
	q := url.Values{
		"name":     {fmt.Sprintf("%s, %s", city, state)},
		"count":    {"1"},
		"language": {"en"},
		"format":   {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geocodeURL+"?"+q.Encode(), nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := client().Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, 0, fmt.Errorf("geocoding provider returned %d", resp.StatusCode)
	}
	var body geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, 0, err
	}
	if len(body.Results) == 0 {
		return 0, 0, ErrNoResults
	}
	return body.Results[0].Latitude, body.Results[0].Longitude, nil
}

// DailyForecast fetches the daily temperature and precipitation block
// for the given coordinates. The payload is passed through untouched.
func DailyForecast(ctx context.Context, lat, lon float64) (json.RawMessage, error) {
	q := url.Values{
		"latitude":  {fmt.Sprintf("%g", lat)},
		"longitude": {fmt.Sprintf("%g", lon)},
		"daily":     {"temperature_2m_max,temperature_2m_min,precipitation_probability_max"},
		"timezone":  {"auto"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, forecastURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather provider returned %d", resp.StatusCode)
	}
	var body struct {
		Daily json.RawMessage `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Daily == nil {
		body.Daily = json.RawMessage("{}")
	}
	return body.Daily, nil
}
