// Package weather maps the workday forecast to target dish heaviness.
package weather

import (
	"context"
	"time"

	"go.uber.org/zap"

	"lunch-menu-planner/internal/dish"
)

// Condition is a coarse description of the day's weather.
type Condition string

const (
	Clear  Condition = "clear"
	Cloudy Condition = "cloudy"
	Fog    Condition = "fog"
	Rain   Condition = "rain"
	Snow   Condition = "snow"
	Storm  Condition = "storm"
)

// Neutral values used when a day is missing from the forecast.
const (
	DefaultTempMax = 10.0
	DefaultTempMin = 5.0
	DefaultCode    = 2
)

// Day is the forecast for a single date.
type Day struct {
	Date      time.Time `json:"date"`
	TempMax   float64   `json:"temp_max"`
	TempMin   float64   `json:"temp_min"`
	Code      int       `json:"weathercode"`
	Condition Condition `json:"condition"`
}

// Weights is the target share of light, medium and heavy dishes for a day.
// The three values sum to 1.
type Weights struct {
	Light  float64
	Medium float64
	Heavy  float64
}

// For returns the weight of a heaviness class.
func (w Weights) For(h dish.Heaviness) float64 {
	switch h {
	case dish.HeavinessLight:
		return w.Light
	case dish.HeavinessMedium:
		return w.Medium
	case dish.HeavinessHeavy:
		return w.Heavy
	}
	return 0
}

// TargetWeights maps a daily maximum temperature (°C) to heaviness weights.
// Bands are (25, ∞), [15, 25], [5, 15) and below 5.
func TargetWeights(tempMax float64) Weights {
	switch {
	case tempMax > 25:
		return Weights{Light: 0.6, Medium: 0.3, Heavy: 0.1}
	case tempMax >= 15:
		return Weights{Light: 0.3, Medium: 0.5, Heavy: 0.2}
	case tempMax >= 5:
		return Weights{Light: 0.2, Medium: 0.4, Heavy: 0.4}
	default:
		return Weights{Light: 0.1, Medium: 0.3, Heavy: 0.6}
	}
}

// Weights returns the target weights for this day.
func (d Day) Weights() Weights {
	return TargetWeights(d.TempMax)
}

// DefaultDay is the neutral forecast for date.
func DefaultDay(date time.Time) Day {
	return Day{
		Date:      date,
		TempMax:   DefaultTempMax,
		TempMin:   DefaultTempMin,
		Code:      DefaultCode,
		Condition: Cloudy,
	}
}

// Default returns the neutral forecast for the five workdays from monday.
func Default(monday time.Time) []Day {
	days := make([]Day, 5)
	for i := range days {
		days[i] = DefaultDay(monday.AddDate(0, 0, i))
	}
	return days
}

// Source provides forecasts for the workdays of a week.
type Source interface {
	Fetch(ctx context.Context, monday time.Time) ([]Day, error)
}

// ForWeek returns exactly five days starting at monday. Days the source does
// not cover, or every day when the source fails, get the neutral default.
func ForWeek(ctx context.Context, src Source, monday time.Time, logger *zap.Logger) []Day {
	if logger == nil {
		logger = zap.NewNop()
	}
	week := Default(monday)
	if src == nil {
		return week
	}

	fetched, err := src.Fetch(ctx, monday)
	if err != nil {
		logger.Warn("weather forecast unavailable, using neutral defaults", zap.Error(err))
		return week
	}

	byDate := make(map[string]Day, len(fetched))
	for _, d := range fetched {
		byDate[d.Date.Format(time.DateOnly)] = d
	}
	missing := 0
	for i, d := range week {
		if got, ok := byDate[d.Date.Format(time.DateOnly)]; ok {
			got.Date = d.Date
			week[i] = got
			continue
		}
		missing++
	}
	if missing > 0 {
		logger.Warn("forecast incomplete, filled with neutral defaults", zap.Int("missing_days", missing))
	}
	return week
}
