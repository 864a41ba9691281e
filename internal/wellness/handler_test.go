package wellness

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forgefit/forge/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m)
}

func newTestHandler(t *testing.T) (*Handler, *repoMock) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	repo := NewMockMetricsRepo()
	return NewHandler(repo, users.NewMockUsersRepo(), loc), repo
}

func TestMood_JSON(t *testing.T) {
	moodJson, err := json.Marshal(MoodGood)
	require.NoError(t, err)
	assert.Equal(t, `"GOOD"`, string(moodJson))

	var fromOrdinal Mood
	require.NoError(t, json.Unmarshal([]byte(`4`), &fromOrdinal))
	assert.Equal(t, MoodGood, fromOrdinal)

	var fromName Mood
	require.NoError(t, json.Unmarshal([]byte(`"TERRIBLE"`), &fromName))
	assert.Equal(t, MoodTerrible, fromName)

	var invalid Mood
	assert.Error(t, json.Unmarshal([]byte(`6`), &invalid))
	assert.Error(t, json.Unmarshal([]byte(`"MEH"`), &invalid))
}

func upsert(t *testing.T, handler *Handler, reqBody string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest("POST", "/metrics", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handler.HandleUpsert(rr, req)
	return rr
}

func TestHandler_Upsert_preservesUnsuppliedFields(t *testing.T) {
	handler, repo := newTestHandler(t)

	rr := upsert(t, handler, `{"discord_id": "12345", "date": "2025-06-10", "sleep_hours": 7}`)
	require.Equal(t, http.StatusOK, rr.Code)

	// logging only mood for the same date keeps sleep_hours at 7
	rr = upsert(t, handler, `{"discord_id": "12345", "date": "2025-06-10", "mood": 4}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var metric DailyMetric
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &metric))
	require.NotNil(t, metric.SleepHours)
	assert.Equal(t, 7.0, *metric.SleepHours)
	require.NotNil(t, metric.Mood)
	assert.Equal(t, MoodGood, *metric.Mood)

	// still a single row for the day
	assert.Len(t, repo.metrics, 1)
}

func TestHandler_Upsert_moodByName(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := upsert(t, handler, `{"discord_id": "12345", "date": "2025-06-10", "mood": "GREAT"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var metric DailyMetric
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &metric))
	require.NotNil(t, metric.Mood)
	assert.Equal(t, MoodGreat, *metric.Mood)
}

func TestHandler_Upsert_invalidInput(t *testing.T) {
	handler, _ := newTestHandler(t)

	for name, reqBody := range map[string]string{
		"missing discord id":     `{"sleep_hours": 7}`,
		"mood out of range":      `{"discord_id": "12345", "mood": 9}`,
		"sleep quality range":    `{"discord_id": "12345", "sleep_quality": 0}`,
		"energy level range":     `{"discord_id": "12345", "energy_level": 11}`,
		"garbage date":           `{"discord_id": "12345", "date": "soonish"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rr := upsert(t, handler, reqBody)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_Today_none(t *testing.T) {
	handler, _ := newTestHandler(t)

	req, err := http.NewRequest("GET", "/metrics/today?discord_id=12345", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleToday(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_History(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := upsert(t, handler, `{"discord_id": "12345", "sleep_hours": 7.5, "mood": 3}`)
	require.Equal(t, http.StatusOK, rr.Code)

	req, err := http.NewRequest("GET", "/metrics/history?discord_id=12345&days=30", nil)
	require.NoError(t, err)
	rr = httptest.NewRecorder()

	handler.HandleHistory(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Total)
	require.NotNil(t, resp.Metrics[0].Mood)
	assert.Equal(t, MoodOkay, *resp.Metrics[0].Mood)
}
