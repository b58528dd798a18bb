package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-menu-planner/internal/dish"
)

func TestTargetWeights(t *testing.T) {
	cases := []struct {
		temp float64
		want Weights
	}{
		{32, Weights{0.6, 0.3, 0.1}},
		{25.5, Weights{0.6, 0.3, 0.1}},
		{25, Weights{0.3, 0.5, 0.2}},
		{15, Weights{0.3, 0.5, 0.2}},
		{14.9, Weights{0.2, 0.4, 0.4}},
		{5, Weights{0.2, 0.4, 0.4}},
		{4.9, Weights{0.1, 0.3, 0.6}},
		{-12, Weights{0.1, 0.3, 0.6}},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.temp), func(t *testing.T) {
			got := TargetWeights(tc.temp)
			assert.Equal(t, tc.want, got)
			assert.InDelta(t, 1.0, got.Light+got.Medium+got.Heavy, 1e-9)
		})
	}
}

func TestWeightsFor(t *testing.T) {
	w := TargetWeights(30)
	assert.Equal(t, 0.6, w.For(dish.HeavinessLight))
	assert.Equal(t, 0.3, w.For(dish.HeavinessMedium))
	assert.Equal(t, 0.1, w.For(dish.HeavinessHeavy))
	assert.Zero(t, w.For(""))
}

func TestConditionForCode(t *testing.T) {
	assert.Equal(t, Clear, ConditionForCode(0))
	assert.Equal(t, Fog, ConditionForCode(48))
	assert.Equal(t, Snow, ConditionForCode(86))
	assert.Equal(t, Storm, ConditionForCode(99))
	assert.Equal(t, Cloudy, ConditionForCode(1234))
}

var monday = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func TestClientFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "50.0755", q.Get("latitude"))
		assert.Equal(t, "14.4378", q.Get("longitude"))
		assert.Equal(t, "Europe/Prague", q.Get("timezone"))
		assert.Equal(t, "2025-03-10", q.Get("start_date"))
		assert.Equal(t, "2025-03-14", q.Get("end_date"))

		fmt.Fprintln(w, `{"daily": {
			"time": ["2025-03-09", "2025-03-10", "2025-03-11", "2025-03-12"],
			"temperature_2m_max": [1, 12.6, null, 27.2],
			"temperature_2m_min": [0, 3.4, 2, null],
			"weathercode": [0, 61, 3, null]
		}}`)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)

	days, err := client.Fetch(context.Background(), monday)
	require.NoError(t, err)
	require.Len(t, days, 3)

	assert.Equal(t, "2025-03-10", days[0].Date.Format(time.DateOnly))
	assert.Equal(t, 13.0, days[0].TempMax)
	assert.Equal(t, 3.0, days[0].TempMin)
	assert.Equal(t, Rain, days[0].Condition)

	assert.Equal(t, DefaultTempMax, days[1].TempMax)
	assert.Equal(t, Cloudy, days[1].Condition)

	assert.Equal(t, 27.0, days[2].TempMax)
	assert.Equal(t, DefaultTempMin, days[2].TempMin)
	assert.Equal(t, DefaultCode, days[2].Code)
}

func TestClientFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(ClientConfig{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Fetch(context.Background(), monday)
	assert.Error(t, err)
}

type stubSource struct {
	days []Day
	err  error
}

func (s stubSource) Fetch(context.Context, time.Time) ([]Day, error) {
	return s.days, s.err
}

func TestForWeek(t *testing.T) {
	ctx := context.Background()

	t.Run("SourceError", func(t *testing.T) {
		days := ForWeek(ctx, stubSource{err: errors.New("offline")}, monday, nil)
		require.Len(t, days, 5)
		for i, d := range days {
			assert.Equal(t, monday.AddDate(0, 0, i), d.Date)
			assert.Equal(t, DefaultDay(d.Date), d)
		}
	})

	t.Run("NilSource", func(t *testing.T) {
		assert.Equal(t, Default(monday), ForWeek(ctx, nil, monday, nil))
	})

	t.Run("PartialForecast", func(t *testing.T) {
		wed := Day{Date: monday.AddDate(0, 0, 2), TempMax: 28, TempMin: 16, Code: 0, Condition: Clear}
		days := ForWeek(ctx, stubSource{days: []Day{wed}}, monday, nil)
		require.Len(t, days, 5)
		assert.Equal(t, 28.0, days[2].TempMax)
		assert.Equal(t, DefaultTempMax, days[0].TempMax)
		assert.Equal(t, Cloudy, days[4].Condition)
	})
}
