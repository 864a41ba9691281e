package fasting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/pkg"
)

type fastingRepo interface {
	Start(ctx context.Context, window Window) (*Window, error)
	Active(ctx context.Context, userID int) (*Window, error)
	End(ctx context.Context, userID int, endedAt time.Time) (*Window, error)
	History(ctx context.Context, userID int, since time.Time) ([]Window, error)
	Delete(ctx context.Context, userID, id int) error
}

type userResolver interface {
	FindOrCreate(ctx context.Context, discordID string) (*users.User, error)
}

type StartRequest struct {
	DiscordID   string     `json:"discord_id"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	FastingType string     `json:"fasting_type,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
}

type WindowResponse struct {
	Window
	DurationHours float64 `json:"duration_hours"`
}

type HistoryResponse struct {
	Windows []WindowResponse `json:"windows"`
	Total   int              `json:"total"`
}

type DeleteResponse struct {
	DeletedID int `json:"deleted_id"`
}

type Handler struct {
	repo  fastingRepo
	users userResolver
}

func NewHandler(repo fastingRepo, users userResolver) *Handler {
	return &Handler{
		repo:  repo,
		users: users,
	}
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.start")
	defer span.End()

	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("start fast, unmarshal json params: %s", err)
		http.Error(w, "start fast failed", http.StatusBadRequest)
		return
	}
	if req.DiscordID == "" {
		http.Error(w, "error, discord_id empty", http.StatusBadRequest)
		return
	}

	now := time.Now().UTC()
	startedAt := now
	if req.StartedAt != nil {
		startedAt = req.StartedAt.UTC()
	}
	if req.EndedAt != nil && req.EndedAt.Before(startedAt) {
		http.Error(w, "error, fast ends before it starts", http.StatusBadRequest)
		return
	}

	user, err := handler.users.FindOrCreate(ctx, req.DiscordID)
	if err != nil {
		log.Errorf("start fast, resolve user: %s", err)
		http.Error(w, "failed to resolve user", http.StatusServiceUnavailable)
		return
	}

	started, err := handler.repo.Start(ctx, Window{
		UserID:      user.ID,
		StartedAt:   startedAt,
		EndedAt:     req.EndedAt,
		FastingType: req.FastingType,
		Notes:       req.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrFastAlreadyActive) {
			http.Error(w, "a fasting window is already active", http.StatusConflict)
			return
		}
		log.Errorf("failed to start fast for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to start fast", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, WindowResponse{
		Window:        *started,
		DurationHours: started.Duration(now),
	}, http.StatusCreated)
}

func (handler *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.active")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	active, err := handler.repo.Active(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrNoActiveFast) {
			http.Error(w, "no active fasting window", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get active fast for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get active fast", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, WindowResponse{
		Window:        *active,
		DurationHours: active.Duration(time.Now().UTC()),
	}, http.StatusOK)
}

func (handler *Handler) HandleEnd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.end")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	ended, err := handler.repo.End(ctx, user.ID, now)
	if err != nil {
		if errors.Is(err, ErrNoActiveFast) {
			http.Error(w, "no active fasting window", http.StatusNotFound)
			return
		}
		log.Errorf("failed to end fast for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to end fast", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, WindowResponse{
		Window:        *ended,
		DurationHours: ended.Duration(now),
	}, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.history")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "error, days NaN", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	now := time.Now().UTC()
	windows, err := handler.repo.History(ctx, user.ID, now.AddDate(0, 0, -days))
	if err != nil {
		log.Errorf("failed to get fasting history for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get fasting history", http.StatusInternalServerError)
		return
	}

	responses := make([]WindowResponse, 0, len(windows))
	for _, window := range windows {
		responses = append(responses, WindowResponse{
			Window:        window,
			DurationHours: window.Duration(now),
		})
	}

	handler.writeJSON(w, HistoryResponse{Windows: responses, Total: len(responses)}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.fasting.delete")
	defer span.End()

	vars := mux.Vars(r)
	id, err := strconv.Atoi(vars["id"])
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	if err := handler.repo.Delete(ctx, user.ID, id); err != nil {
		if errors.Is(err, ErrWindowNotFound) {
			http.Error(w, "fasting window not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete fasting window %d for user %d: %s", id, user.ID, err)
		http.Error(w, "error, failed to delete fasting window", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) resolveUser(ctx context.Context, w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	discordID := r.URL.Query().Get("discord_id")
	if discordID == "" {
		http.Error(w, "error, discord_id empty", http.StatusBadRequest)
		return nil, false
	}
	user, err := handler.users.FindOrCreate(ctx, discordID)
	if err != nil {
		log.Errorf("resolve user [%s]: %s", discordID, err)
		http.Error(w, "failed to resolve user", http.StatusServiceUnavailable)
		return nil, false
	}
	return user, true
}

func (handler *Handler) writeJSON(w http.ResponseWriter, v any, statusCode int) {
	respBytes, err := json.Marshal(v)
	if err != nil {
		log.Errorf("failed to marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, statusCode)
}
