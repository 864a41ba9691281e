package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/forgefit/forge/internal/civildate"
	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/pkg"
)

type usersStore interface {
	FindOrCreate(ctx context.Context, discordID string) (*users.User, error)
	SetGoals(ctx context.Context, userID int, goals users.Goals) error
}

type WeekResponse struct {
	Summaries []DailySummary `json:"summaries"`
}

type Handler struct {
	summarizer *Summarizer
	users      usersStore
	loc        *time.Location
}

func NewHandler(summarizer *Summarizer, users usersStore, loc *time.Location) *Handler {
	return &Handler{
		summarizer: summarizer,
		users:      users,
		loc:        loc,
	}
}

// HandleToday summarizes the current civil day, or the day given via the
// optional date query param.
func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.today")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	day := civildate.Today(handler.loc)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := civildate.Parse(dateStr)
		if err != nil {
			http.Error(w, "error, invalid date", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	summary, err := handler.summarizer.Summarize(ctx, user, day)
	if err != nil {
		log.Errorf("failed to summarize day for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to build summary", http.StatusServiceUnavailable)
		return
	}

	handler.writeJSON(w, summary, http.StatusOK)
}

func (handler *Handler) HandleWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.week")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	summaries, err := handler.summarizer.SummarizeWeek(ctx, user)
	if err != nil {
		log.Errorf("failed to summarize week for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to build week summary", http.StatusServiceUnavailable)
		return
	}

	handler.writeJSON(w, WeekResponse{Summaries: summaries}, http.StatusOK)
}

func (handler *Handler) HandleGetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.getgoals")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	handler.writeJSON(w, user.Goals(), http.StatusOK)
}

// HandleSetGoals replaces all six goal fields. Partial updates are the
// caller's job: read, merge, then put the full set.
func (handler *Handler) HandleSetGoals(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.setgoals")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	var goals users.Goals
	if err := json.NewDecoder(r.Body).Decode(&goals); err != nil {
		log.Tracef("set goals, unmarshal json params: %s", err)
		http.Error(w, "set goals failed", http.StatusBadRequest)
		return
	}
	if goals.TargetWeight < 0 ||
		goals.DailyCalorieGoal < 0 || goals.DailyProteinGoal < 0 ||
		goals.DailyCarbGoal < 0 || goals.DailyFatGoal < 0 || goals.DailyWaterGoal < 0 {
		http.Error(w, "error, goals must not be negative", http.StatusBadRequest)
		return
	}

	if err := handler.users.SetGoals(ctx, user.ID, goals); err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to set goals for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to set goals", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, goals, http.StatusOK)
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
