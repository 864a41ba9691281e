package weight

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

type weightRepo interface {
	Add(ctx context.Context, wl Log) (*Log, error)
	Latest(ctx context.Context, userID int) (*Log, error)
	History(ctx context.Context, userID, days int) ([]Log, error)
	Delete(ctx context.Context, userID, id int) error
	DeleteLatest(ctx context.Context, userID int) (*Log, error)
}

type userResolver interface {
	FindOrCreate(ctx context.Context, discordID string) (*users.User, error)
}

type AddRequest struct {
	DiscordID string  `json:"discord_id"`
	Weight    float64 `json:"weight"`
	Date      string  `json:"date,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type DeleteResponse struct {
	DeletedID int `json:"deleted_id"`
}

type HistoryResponse struct {
	Logs  []Log `json:"logs"`
	Total int   `json:"total"`
}

type Handler struct {
	repo  weightRepo
	users userResolver
	loc   *time.Location
}

func NewHandler(repo weightRepo, users userResolver, loc *time.Location) *Handler {
	return &Handler{
		repo:  repo,
		users: users,
		loc:   loc,
	}
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.add")
	defer span.End()

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add weight, unmarshal json params: %s", err)
		http.Error(w, "add weight failed", http.StatusBadRequest)
		return
	}
	if req.DiscordID == "" {
		http.Error(w, "error, discord_id empty", http.StatusBadRequest)
		return
	}
	if req.Weight <= 0 {
		http.Error(w, "error, weight must be positive", http.StatusBadRequest)
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
		log.Errorf("add weight, resolve user: %s", err)
		http.Error(w, "failed to resolve user", http.StatusServiceUnavailable)
		return
	}

	added, err := handler.repo.Add(ctx, Log{
		UserID: user.ID,
		Weight: req.Weight,
		Date:   day,
		Notes:  req.Notes,
	})
	if err != nil {
		log.Errorf("failed to add weight log for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to add weight log", http.StatusInternalServerError)
		return
	}

	addedJson, err := json.Marshal(added)
	if err != nil {
		log.Errorf("failed to marshal weight log: %s", err)
		http.Error(w, "error, failed to add weight log", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, addedJson, http.StatusCreated)
}

func (handler *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.latest")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	latest, err := handler.repo.Latest(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrWeightLogNotFound) {
			http.Error(w, "no weight logged", http.StatusNotFound)
			return
		}
		log.Errorf("failed to get latest weight for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get latest weight", http.StatusInternalServerError)
		return
	}

	latestJson, err := json.Marshal(latest)
	if err != nil {
		log.Errorf("failed to marshal weight log: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, latestJson, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.history")
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

	logs, err := handler.repo.History(ctx, user.ID, days)
	if err != nil {
		log.Errorf("failed to get weight history for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get weight history", http.StatusInternalServerError)
		return
	}

	historyJson, err := json.Marshal(HistoryResponse{
		Logs:  logs,
		Total: len(logs),
	})
	if err != nil {
		log.Errorf("failed to marshal weight history: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, historyJson, http.StatusOK)
}

// HandleUndo removes the user's most recent weight log.
func (handler *Handler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.undo")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	deleted, err := handler.repo.DeleteLatest(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrWeightLogNotFound) {
			http.Error(w, "no weight logged", http.StatusNotFound)
			return
		}
		log.Errorf("failed to undo weight log for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to undo weight log", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(DeleteResponse{DeletedID: deleted.ID})
	if err != nil {
		log.Errorf("failed to marshal undo response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.weight.delete")
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
		if errors.Is(err, ErrWeightLogNotFound) {
			http.Error(w, "weight log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete weight log %d for user %d: %s", id, user.ID, err)
		http.Error(w, "error, failed to delete weight log", http.StatusInternalServerError)
		return
	}

	respJson, err := json.Marshal(DeleteResponse{DeletedID: id})
	if err != nil {
		log.Errorf("failed to marshal delete response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusOK)
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
