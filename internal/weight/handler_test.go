package weight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forgefit/forge/internal/civildate"
	"github.com/forgefit/forge/internal/users"

	"github.com/gorilla/mux"
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
	repo := NewMockWeightRepo()
	return NewHandler(repo, users.NewMockUsersRepo(), loc), repo
}

func TestHandler_Add(t *testing.T) {
	handler, repo := newTestHandler(t)

	reqBody := `{"discord_id": "12345", "weight": 181.4, "date": "2025-06-10"}`
	req, err := http.NewRequest("POST", "/weight", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleAdd(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	var added Log
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &added))
	assert.Equal(t, 181.4, added.Weight)
	assert.Equal(t, civildate.Date(2025, time.June, 10), added.Date)
	assert.Len(t, repo.logs, 1)
}

func TestHandler_Add_defaultsToToday(t *testing.T) {
	handler, repo := newTestHandler(t)

	reqBody := `{"discord_id": "12345", "weight": 181.4}`
	req, err := http.NewRequest("POST", "/weight", bytes.NewBufferString(reqBody))
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleAdd(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	for _, wl := range repo.logs {
		assert.Equal(t, civildate.Today(loc), wl.Date)
	}
}

func TestHandler_Add_invalidInput(t *testing.T) {
	handler, _ := newTestHandler(t)

	for name, reqBody := range map[string]string{
		"missing discord id": `{"weight": 181.4}`,
		"zero weight":        `{"discord_id": "12345", "weight": 0}`,
		"negative weight":    `{"discord_id": "12345", "weight": -5}`,
		"garbage date":       `{"discord_id": "12345", "weight": 181.4, "date": "sometime"}`,
		"not json":           `weight is 181`,
	} {
		t.Run(name, func(t *testing.T) {
			req, err := http.NewRequest("POST", "/weight", bytes.NewBufferString(reqBody))
			require.NoError(t, err)
			rr := httptest.NewRecorder()
			handler.HandleAdd(rr, req)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_Latest(t *testing.T) {
	handler, repo := newTestHandler(t)

	user, err := handler.users.FindOrCreate(context.Background(), "12345")
	require.NoError(t, err)

	_, err = repo.Add(context.Background(), Log{
		UserID: user.ID, Weight: 183, Date: civildate.Date(2025, time.June, 8),
	})
	require.NoError(t, err)
	_, err = repo.Add(context.Background(), Log{
		UserID: user.ID, Weight: 181.2, Date: civildate.Date(2025, time.June, 10),
	})
	require.NoError(t, err)

	req, err := http.NewRequest("GET", "/weight/latest?discord_id=12345", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleLatest(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var latest Log
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &latest))
	assert.Equal(t, 181.2, latest.Weight)
}

func TestHandler_Latest_none(t *testing.T) {
	handler, _ := newTestHandler(t)

	req, err := http.NewRequest("GET", "/weight/latest?discord_id=12345", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleLatest(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_History(t *testing.T) {
	handler, repo := newTestHandler(t)

	user, err := handler.users.FindOrCreate(context.Background(), "12345")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = repo.Add(context.Background(), Log{
			UserID: user.ID, Weight: 183 - float64(i), Date: civildate.Date(2025, time.June, 8+i),
		})
		require.NoError(t, err)
	}

	req, err := http.NewRequest("GET", "/weight/history?discord_id=12345&days=30", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleHistory(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Total)
	// oldest first
	assert.Equal(t, 183.0, resp.Logs[0].Weight)
	assert.Equal(t, 181.0, resp.Logs[2].Weight)
}

func TestHandler_Delete_ownerScoped(t *testing.T) {
	handler, repo := newTestHandler(t)

	owner, err := handler.users.FindOrCreate(context.Background(), "owner")
	require.NoError(t, err)
	added, err := repo.Add(context.Background(), Log{
		UserID: owner.ID, Weight: 180, Date: civildate.Date(2025, time.June, 10),
	})
	require.NoError(t, err)

	// someone else's delete reports not found and leaves the row intact
	req, err := http.NewRequest("DELETE", fmt.Sprintf("/weight/%d?discord_id=intruder", added.ID), nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", added.ID)})
	rr := httptest.NewRecorder()
	handler.HandleDelete(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Len(t, repo.logs, 1)

	// the owner's delete succeeds
	req, err = http.NewRequest("DELETE", fmt.Sprintf("/weight/%d?discord_id=owner", added.ID), nil)
	require.NoError(t, err)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprintf("%d", added.ID)})
	rr = httptest.NewRecorder()
	handler.HandleDelete(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp DeleteResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, added.ID, resp.DeletedID)
	assert.Empty(t, repo.logs)
}

func TestHandler_Undo(t *testing.T) {
	handler, repo := newTestHandler(t)

	user, err := handler.users.FindOrCreate(context.Background(), "12345")
	require.NoError(t, err)
	_, err = repo.Add(context.Background(), Log{
		UserID: user.ID, Weight: 183, Date: civildate.Date(2025, time.June, 8),
	})
	require.NoError(t, err)
	latest, err := repo.Add(context.Background(), Log{
		UserID: user.ID, Weight: 181.2, Date: civildate.Date(2025, time.June, 10),
	})
	require.NoError(t, err)

	req, err := http.NewRequest("DELETE", "/weight/latest?discord_id=12345", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()

	handler.HandleUndo(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp DeleteResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, latest.ID, resp.DeletedID)
	assert.Len(t, repo.logs, 1)
}
