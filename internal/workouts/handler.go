package workouts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/forgefit/forge/internal/civildate"
	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/pkg"
)

type workoutsRepo interface {
	Add(ctx context.Context, workout Workout) (*Workout, error)
	ForDay(ctx context.Context, userID int, day time.Time) ([]Workout, error)
	History(ctx context.Context, userID int, since time.Time) ([]Workout, error)
	Delete(ctx context.Context, userID, id int) error
}

type userResolver interface {
	FindOrCreate(ctx context.Context, discordID string) (*users.User, error)
}

type AddRequest struct {
	DiscordID       string  `json:"discord_id"`
	WorkoutType     string  `json:"workout_type"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	CaloriesBurned  *int    `json:"calories_burned,omitempty"`
	Description     *string `json:"description,omitempty"`
	Date            string  `json:"date,omitempty"`
}

type ListResponse struct {
	Workouts []Workout `json:"workouts"`
	Total    int       `json:"total"`
}

type DeleteResponse struct {
	DeletedID int `json:"deleted_id"`
}

type Handler struct {
	repo  workoutsRepo
	users userResolver
	loc   *time.Location
}

func NewHandler(repo workoutsRepo, users userResolver, loc *time.Location) *Handler {
	return &Handler{
		repo:  repo,
		users: users,
		loc:   loc,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.add")
	defer span.End()

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add workout, unmarshal json params: %s", err)
		http.Error(w, "add workout failed", http.StatusBadRequest)
		return
	}
	if req.DiscordID == "" {
		http.Error(w, "error, discord_id empty", http.StatusBadRequest)
		return
	}

	workoutType := TypeOther
	if req.WorkoutType != "" {
		parsed, err := ParseType(req.WorkoutType)
		if err != nil {
			http.Error(w, "error, invalid workout type", http.StatusBadRequest)
			return
		}
		workoutType = parsed
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
		log.Errorf("add workout, resolve user: %s", err)
		http.Error(w, "failed to resolve user", http.StatusServiceUnavailable)
		return
	}

	added, err := handler.repo.Add(ctx, Workout{
		UserID:          user.ID,
		Date:            day,
		Type:            workoutType,
		DurationMinutes: req.DurationMinutes,
		CaloriesBurned:  req.CaloriesBurned,
		Description:     req.Description,
	})
	if err != nil {
		log.Errorf("failed to add workout for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.today")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	workouts, err := handler.repo.ForDay(ctx, user.ID, civildate.Today(handler.loc))
	if err != nil {
		log.Errorf("failed to get today workouts for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get workouts", http.StatusInternalServerError)
		return
	}

	if workouts == nil {
		workouts = []Workout{}
	}
	handler.writeJSON(w, ListResponse{Workouts: workouts, Total: len(workouts)}, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.history")
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
	workouts, err := handler.repo.History(ctx, user.ID, since)
	if err != nil {
		log.Errorf("failed to get workout history for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get workout history", http.StatusInternalServerError)
		return
	}

	if workouts == nil {
		workouts = []Workout{}
	}
	handler.writeJSON(w, ListResponse{Workouts: workouts, Total: len(workouts)}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
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
		if errors.Is(err, ErrWorkoutNotFound) {
			http.Error(w, "workout not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete workout %d for user %d: %s", id, user.ID, err)
		http.Error(w, "error, failed to delete workout", http.StatusInternalServerError)
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
