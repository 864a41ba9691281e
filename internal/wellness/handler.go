package wellness

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/forgefit/forge/internal/civildate"
	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/pkg"
)

type metricsRepo interface {
	Upsert(ctx context.Context, metric DailyMetric) (*DailyMetric, error)
	ForDay(ctx context.Context, userID int, day time.Time) (*DailyMetric, error)
	History(ctx context.Context, userID int, since time.Time) ([]DailyMetric, error)
}

type userResolver interface {
	FindOrCreate(ctx context.Context, discordID string) (*users.User, error)
}

type UpsertRequest struct {
	DiscordID    string   `json:"discord_id"`
	Date         string   `json:"date,omitempty"`
	SleepHours   *float64 `json:"sleep_hours,omitempty"`
	SleepQuality *int     `json:"sleep_quality,omitempty"`
	Mood         *Mood    `json:"mood,omitempty"`
	EnergyLevel  *int     `json:"energy_level,omitempty"`
	Notes        *string  `json:"notes,omitempty"`
}

type HistoryResponse struct {
	Metrics []DailyMetric `json:"metrics"`
	Total   int           `json:"total"`
}

type Handler struct {
	repo  metricsRepo
	users userResolver
	loc   *time.Location
}

func NewHandler(repo metricsRepo, users userResolver, loc *time.Location) *Handler {
	return &Handler{
		repo:  repo,
		users: users,
		loc:   loc,
	}
}

func (handler *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.wellness.upsert")
	defer span.End()

	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("upsert daily metric, unmarshal json params: %s", err)
		http.Error(w, "log daily metric failed", http.StatusBadRequest)
		return
	}
	if req.DiscordID == "" {
		http.Error(w, "error, discord_id empty", http.StatusBadRequest)
		return
	}
	if req.SleepQuality != nil && (*req.SleepQuality < 1 || *req.SleepQuality > 5) {
		http.Error(w, "error, sleep quality out of range", http.StatusBadRequest)
		return
	}
	if req.EnergyLevel != nil && (*req.EnergyLevel < 1 || *req.EnergyLevel > 5) {
		http.Error(w, "error, energy level out of range", http.StatusBadRequest)
		return
	}

	day := civildate.Today(handler.loc)
	if req.Date != "" {
		parsed, err := civildate.Parse(req.Date)
		if err != nil {
			http.Error(w, "error, invalid date", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	user, err := handler.users.FindOrCreate(ctx, req.DiscordID)
	if err != nil {
		log.Errorf("upsert daily metric, resolve user: %s", err)
		http.Error(w, "failed to resolve user", http.StatusServiceUnavailable)
		return
	}

	metric, err := handler.repo.Upsert(ctx, DailyMetric{
		UserID:       user.ID,
		Date:         day,
		SleepHours:   req.SleepHours,
		SleepQuality: req.SleepQuality,
		Mood:         req.Mood,
		EnergyLevel:  req.EnergyLevel,
		Notes:        req.Notes,
	})
	if err != nil {
		log.Errorf("failed to upsert daily metric for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to log daily metric", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, metric, http.StatusOK)
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.wellness.today")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	metric, err := handler.repo.ForDay(ctx, user.ID, civildate.Today(handler.loc))
	if err != nil {
		if errors.Is(err, ErrDailyMetricNotFound) {
			http.Error(w, "no metrics logged today", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get today metrics for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get daily metrics", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, metric, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.wellness.history")
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

	since := civildate.Today(handler.loc).AddDate(0, 0, -days)
	metrics, err := handler.repo.History(ctx, user.ID, since)
	if err != nil {
		log.Errorf("failed to get metrics history for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get metrics history", http.StatusInternalServerError)
		return
	}

	if metrics == nil {
		metrics = []DailyMetric{}
	}
	handler.writeJSON(w, HistoryResponse{Metrics: metrics, Total: len(metrics)}, http.StatusOK)
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
