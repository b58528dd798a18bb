package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
	_ "time/tzdata"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Prague coordinates.
const (
	DefaultLatitude  = 50.0755
	DefaultLongitude = 14.4378
	DefaultTimezone  = "Europe/Prague"
)

var codeConditions = map[int]Condition{
	0: Clear, 1: Clear,
	2: Cloudy, 3: Cloudy,
	45: Fog, 48: Fog,
	51: Rain, 53: Rain, 55: Rain,
	61: Rain, 63: Rain, 65: Rain, 66: Rain, 67: Rain,
	71: Snow, 73: Snow, 75: Snow, 77: Snow,
	80: Rain, 81: Rain, 82: Rain,
	85: Snow, 86: Snow,
	95: Storm, 96: Storm, 99: Storm,
}

// ConditionForCode maps a WMO weather code; unknown codes are cloudy.
func ConditionForCode(code int) Condition {
	if c, ok := codeConditions[code]; ok {
		return c
	}
	return Cloudy
}

// Client fetches daily forecasts from Open-Meteo.
type Client struct {
	httpClient *http.Client
	baseURL    string
	latitude   float64
	longitude  float64
	location   *time.Location
}

// ClientConfig holds the forecast location. Zero values fall back to Prague.
type ClientConfig struct {
	BaseURL   string
	Latitude  float64
	Longitude float64
	Timezone  string
}

// NewClient creates an Open-Meteo client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Latitude == 0 && cfg.Longitude == 0 {
		cfg.Latitude, cfg.Longitude = DefaultLatitude, DefaultLongitude
	}
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.BaseURL,
		latitude:   cfg.Latitude,
		longitude:  cfg.Longitude,
		location:   loc,
	}, nil
}

type forecastResponse struct {
	Daily struct {
		Time    []string   `json:"time"`
		TempMax []*float64 `json:"temperature_2m_max"`
		TempMin []*float64 `json:"temperature_2m_min"`
		Code    []*int     `json:"weathercode"`
	} `json:"daily"`
}

// Fetch returns the forecast for the workdays Monday to Friday starting at
// monday. Days outside the forecast horizon are omitted.
func (c *Client) Fetch(ctx context.Context, monday time.Time) ([]Day, error) {
	friday := monday.AddDate(0, 0, 4)
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	q.Set("timezone", c.location.String())
	q.Set("start_date", monday.Format(time.DateOnly))
	q.Set("end_date", friday.Format(time.DateOnly))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast api error: status %d", resp.StatusCode)
	}

	var fr forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&fr); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	wanted := make(map[string]bool, 5)
	for i := 0; i < 5; i++ {
		wanted[monday.AddDate(0, 0, i).Format(time.DateOnly)] = true
	}

	var days []Day
	for i, ds := range fr.Daily.Time {
		if !wanted[ds] {
			continue
		}
		date, err := time.ParseInLocation(time.DateOnly, ds, c.location)
		if err != nil {
			return nil, fmt.Errorf("failed to parse forecast date %q: %w", ds, err)
		}
		code := intAt(fr.Daily.Code, i, DefaultCode)
		days = append(days, Day{
			Date:      date,
			TempMax:   math.Round(floatAt(fr.Daily.TempMax, i, DefaultTempMax)),
			TempMin:   math.Round(floatAt(fr.Daily.TempMin, i, DefaultTempMin)),
			Code:      code,
			Condition: ConditionForCode(code),
		})
	}
	return days, nil
}

func floatAt(vs []*float64, i int, def float64) float64 {
	if i < len(vs) && vs[i] != nil {
		return *vs[i]
	}
	return def
}

func intAt(vs []*int, i int, def int) int {
	if i < len(vs) && vs[i] != nil {
		return *vs[i]
	}
	return def
}
