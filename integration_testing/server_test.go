package integration_testing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/weight"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	suite := newSuite(ctx)
	defer suite.cleanup()

	m.Run()
}

func postJSON(t *testing.T, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(serverEndpoint+path, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func getJSON(t *testing.T, path string, dest any) {
	t.Helper()
	resp, err := http.Get(serverEndpoint + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestServer_weightLifecycle(t *testing.T) {
	resp := postJSON(t, "/api/weight", weight.AddRequest{
		DiscordID: "itest-user-1",
		Weight:    183.4,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var added weight.Log
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&added))
	assert.NotZero(t, added.ID)
	assert.InDelta(t, 183.4, added.Weight, 0.001)

	var latest weight.Log
	getJSON(t, "/api/weight/latest?discord_id=itest-user-1", &latest)
	assert.Equal(t, added.ID, latest.ID)

	var history weight.HistoryResponse
	getJSON(t, "/api/weight/history?discord_id=itest-user-1&days=30", &history)
	require.Equal(t, 1, history.Total)
	assert.Equal(t, added.ID, history.Logs[0].ID)
}

func TestServer_dashboardToday(t *testing.T) {
	resp := postJSON(t, "/api/weight", weight.AddRequest{
		DiscordID: "itest-user-2",
		Weight:    190.0,
	})
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var summary dashboard.DailySummary
	getJSON(t, "/api/dashboard/today?discord_id=itest-user-2", &summary)

	require.NotNil(t, summary.Weight)
	assert.InDelta(t, 190.0, *summary.Weight, 0.001)
	// defaults apply until goals are set
	assert.Equal(t, 2000, summary.CalorieGoal)
	assert.Equal(t, 150, summary.ProteinGoal)
	assert.Equal(t, 64, summary.WaterGoal)
	assert.Zero(t, summary.Calories)
}

func TestServer_goalsRoundTrip(t *testing.T) {
	payload := map[string]any{
		"target_weight":      175.0,
		"daily_calorie_goal": 1800,
		"daily_protein_goal": 160,
		"daily_carb_goal":    180,
		"daily_fat_goal":     60,
		"daily_water_goal":   80,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(
		http.MethodPut,
		fmt.Sprintf("%s/api/goals?discord_id=itest-user-3", serverEndpoint),
		bytes.NewReader(body),
	)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var goals map[string]any
	getJSON(t, "/api/goals?discord_id=itest-user-3", &goals)
	assert.EqualValues(t, 1800, goals["daily_calorie_goal"])
	assert.EqualValues(t, 80, goals["daily_water_goal"])
}

func TestServer_unknownPath(t *testing.T) {
	resp, err := http.Get(serverEndpoint + "/nope")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
