package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forgefit/forge/internal/telemetry/metrics"
	"github.com/forgefit/forge/internal/users"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m)
}

func ptrOf[T any](v T) *T {
	return &v
}

func newTestHandler(t *testing.T, parser *parserMock, usda *usdaMock) (*Handler, *repoMock, *metrics.Manager) {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	repo := NewMockNutritionRepo()
	m := metrics.NewTestManager()
	return NewHandler(repo, parser, usda, users.NewMockUsersRepo(), m, loc), repo, m
}

func TestHandler_Parse(t *testing.T) {
	parser := &parserMock{
		parsed: &Parsed{
			Description: "apple",
			Calories:    ptrOf(95),
			ProteinG:    ptrOf(0.5),
			MealType:    ptrOf("snack"),
		},
	}
	handler, repo, m := newTestHandler(t, parser, &usdaMock{})

	reqBody := `{"text": "an apple", "discord_id": "12345"}`
	req, err := http.NewRequest("POST", "/nutrition/parse", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleParse(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Logged: apple", resp.Message)
	require.NotNil(t, resp.LogID)

	logged := repo.logs[*resp.LogID]
	require.NotNil(t, logged)
	require.NotNil(t, logged.RawInput)
	assert.Equal(t, "an apple", *logged.RawInput)
	assert.Equal(t, "apple", logged.Description)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterNutritionLogs))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CounterParseFailures))
}

func TestHandler_Parse_failure(t *testing.T) {
	parser := &parserMock{
		err: &ParseError{Reason: "not food related"},
	}
	handler, repo, m := newTestHandler(t, parser, &usdaMock{})

	reqBody := `{"text": "how is the weather", "discord_id": "12345"}`
	req, err := http.NewRequest("POST", "/nutrition/parse", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleParse(rr, req)
	// recoverable failure: structured response, not an error status
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "not food related", resp.Message)
	assert.Empty(t, repo.logs)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterParseFailures))
}

func TestHandler_Parse_upstreamDown(t *testing.T) {
	parser := &parserMock{
		err: errors.New("connection refused"),
	}
	handler, _, _ := newTestHandler(t, parser, &usdaMock{})

	reqBody := `{"text": "an apple", "discord_id": "12345"}`
	req, err := http.NewRequest("POST", "/nutrition/parse", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleParse(rr, req)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHandler_Add(t *testing.T) {
	handler, repo, _ := newTestHandler(t, &parserMock{}, &usdaMock{})

	reqBody := `{"discord_id": "12345", "description": "protein shake", "calories": 220, "protein_g": 40}`
	req, err := http.NewRequest("POST", "/nutrition", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleAdd(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var added Log
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	assert.Equal(t, "protein shake", added.Description)
	require.NotNil(t, added.Calories)
	assert.Equal(t, 220, *added.Calories)
	assert.Len(t, repo.logs, 1)
}

func TestHandler_Add_missingDescription(t *testing.T) {
	handler, _, _ := newTestHandler(t, &parserMock{}, &usdaMock{})

	reqBody := `{"discord_id": "12345", "calories": 220}`
	req, err := http.NewRequest("POST", "/nutrition", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleAdd(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Today(t *testing.T) {
	handler, repo, _ := newTestHandler(t, &parserMock{}, &usdaMock{})

	user, err := handler.users.FindOrCreate(context.Background(), "12345")
	require.NoError(t, err)

	// one full meal and one water entry with null macros
	_, err = repo.Add(context.Background(), Log{
		UserID: user.ID, Description: "oatmeal",
		Calories: ptrOf(300), ProteinG: ptrOf(10.0), LoggedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	_, err = repo.Add(context.Background(), Log{
		UserID: user.ID, Description: "water",
		WaterOz: ptrOf(24.0), LoggedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	req, err := http.NewRequest("GET", "/nutrition/today?discord_id=12345", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleToday(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp TodayResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Logs, 2)
	// null macros coalesce to zero in the sums
	assert.Equal(t, 300, resp.Totals.Calories)
	assert.Equal(t, 10.0, resp.Totals.ProteinG)
	assert.Equal(t, 24.0, resp.Totals.WaterOz)
}

func TestHandler_USDASearch_shortQuery(t *testing.T) {
	handler, _, _ := newTestHandler(t, &parserMock{}, &usdaMock{
		foods: []Food{{FDCID: 1, Description: "should not be returned"}},
	})

	req, err := http.NewRequest("GET", "/nutrition/usda/search?query=a", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleUSDASearch(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Results)
}
