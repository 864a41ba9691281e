package forgeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_DashboardToday(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/dashboard/today", r.URL.Path)
		assert.Equal(t, "dc-1", r.URL.Query().Get("discord_id"))
		require.NoError(t, json.NewEncoder(w).Encode(dashboard.DailySummary{
			Date:       "2025-06-10",
			Calories:   540,
			CaloriePct: 27.0,
		}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	summary, err := client.DashboardToday(context.Background(), "dc-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-10", summary.Date)
	assert.Equal(t, 540, summary.Calories)
	assert.InDelta(t, 27.0, summary.CaloriePct, 0.001)
}

func TestClient_ParseNutrition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/nutrition/parse", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req nutrition.ParseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dc-1", req.DiscordID)
		assert.Equal(t, "2 eggs and toast", req.Text)

		calories := 280
		require.NoError(t, json.NewEncoder(w).Encode(nutrition.ParseResponse{
			Success: true,
			Message: "Logged: 2 eggs and toast",
			Parsed: &nutrition.Parsed{
				Description: "2 eggs and toast",
				Calories:    &calories,
			},
		}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	res, err := client.ParseNutrition(context.Background(), "dc-1", "2 eggs and toast")
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.Parsed)
	assert.Equal(t, "2 eggs and toast", res.Parsed.Description)
}

func TestClient_AddWeight_created(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req weight.AddRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.InDelta(t, 183.4, req.Weight, 0.001)

		w.WriteHeader(http.StatusCreated)
		require.NoError(t, json.NewEncoder(w).Encode(weight.Log{ID: 7, Weight: req.Weight}))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	added, err := client.AddWeight(context.Background(), weight.AddRequest{
		DiscordID: "dc-1",
		Weight:    183.4,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, added.ID)
}

func TestClient_errorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/fasting/active":
			http.Error(w, "no active fast", http.StatusNotFound)
		case "/api/fasting/start":
			http.Error(w, "a fast is already active", http.StatusConflict)
		case "/api/weight":
			http.Error(w, "error, weight must be positive", http.StatusBadRequest)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	ctx := context.Background()

	_, err := client.ActiveFast(ctx, "dc-1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = client.StartFast(ctx, fasting.StartRequest{DiscordID: "dc-1"})
	assert.ErrorIs(t, err, ErrFastActive)

	_, err = client.AddWeight(ctx, weight.AddRequest{DiscordID: "dc-1", Weight: -2})
	assert.ErrorIs(t, err, ErrInvalidParams)
	assert.Contains(t, err.Error(), "weight must be positive")

	_, err = client.Goals(ctx, "dc-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestClient_SetGoals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/goals", r.URL.Path)

		var goals users.Goals
		require.NoError(t, json.NewDecoder(r.Body).Decode(&goals))
		require.NoError(t, json.NewEncoder(w).Encode(goals))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	updated, err := client.SetGoals(context.Background(), "dc-1", users.Goals{
		TargetWeight:     175,
		DailyCalorieGoal: 1800,
		DailyProteinGoal: 160,
		DailyCarbGoal:    180,
		DailyFatGoal:     60,
		DailyWaterGoal:   80,
	})
	require.NoError(t, err)
	assert.Equal(t, 1800, updated.DailyCalorieGoal)
}
