package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/forgefit/forge/internal/civildate"
	"github.com/forgefit/forge/internal/telemetry/metrics"
	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/pkg"
)

type nutritionRepo interface {
	Add(ctx context.Context, nl Log) (*Log, error)
	ForInterval(ctx context.Context, userID int, start, end time.Time) ([]Log, error)
	SumForInterval(ctx context.Context, userID int, start, end time.Time) (Totals, error)
	History(ctx context.Context, userID int, since time.Time) ([]Log, error)
	Delete(ctx context.Context, userID, id int) error
	DeleteLatest(ctx context.Context, userID int) (*Log, error)
}

type textParser interface {
	Parse(ctx context.Context, text string) (*Parsed, error)
}

type foodDB interface {
	Search(ctx context.Context, query string, limit int) ([]Food, error)
	FoodDetails(ctx context.Context, fdcID int) (*Food, error)
}

type userResolver interface {
	FindOrCreate(ctx context.Context, discordID string) (*users.User, error)
}

type ParseRequest struct {
	Text      string `json:"text"`
	DiscordID string `json:"discord_id"`
}

type ParseResponse struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Parsed  *Parsed `json:"parsed,omitempty"`
	LogID   *int    `json:"log_id,omitempty"`
}

type AddRequest struct {
	DiscordID   string   `json:"discord_id"`
	Description string   `json:"description"`
	Calories    *int     `json:"calories,omitempty"`
	ProteinG    *float64 `json:"protein_g,omitempty"`
	CarbsG      *float64 `json:"carbs_g,omitempty"`
	FatG        *float64 `json:"fat_g,omitempty"`
	FiberG      *float64 `json:"fiber_g,omitempty"`
	WaterOz     *float64 `json:"water_oz,omitempty"`
	MealType    *string  `json:"meal_type,omitempty"`
	RawInput    *string  `json:"raw_input,omitempty"`
	USDAFDCID   *int     `json:"usda_fdc_id,omitempty"`
}

type TodayResponse struct {
	Logs   []Log  `json:"logs"`
	Totals Totals `json:"totals"`
}

type HistoryResponse struct {
	Logs  []Log `json:"logs"`
	Total int   `json:"total"`
}

type DeleteResponse struct {
	DeletedID int `json:"deleted_id"`
}

type SearchResponse struct {
	Results []Food `json:"results"`
}

type Handler struct {
	repo    nutritionRepo
	parser  textParser
	usda    foodDB
	users   userResolver
	metrics *metrics.Manager
	loc     *time.Location
}

func NewHandler(
	repo nutritionRepo,
	parser textParser,
	usda foodDB,
	users userResolver,
	metrics *metrics.Manager,
	loc *time.Location,
) *Handler {
	return &Handler{
		repo:    repo,
		parser:  parser,
		usda:    usda,
		users:   users,
		metrics: metrics,
		loc:     loc,
	}
}

// HandleParse runs free text through the parser and logs the result. A parse
// failure is a structured non-fatal response, not an error status.
func (handler *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.parse")
	defer span.End()

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("parse nutrition, unmarshal json params: %s", err)
		http.Error(w, "parse failed", http.StatusBadRequest)
		return
	}
	if req.Text == "" || req.DiscordID == "" {
		http.Error(w, "error, text or discord_id empty", http.StatusBadRequest)
		return
	}

	user, err := handler.users.FindOrCreate(ctx, req.DiscordID)
	if err != nil {
		log.Errorf("parse nutrition, resolve user: %s", err)
		http.Error(w, "failed to resolve user", http.StatusServiceUnavailable)
		return
	}

	parsed, err := handler.parser.Parse(ctx, req.Text)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			handler.metrics.CounterParseFailures.Inc()
			handler.writeJSON(w, ParseResponse{
				Success: false,
				Message: parseErr.Reason,
			}, http.StatusOK)
			return
		}
		log.Errorf("parse nutrition for user %d: %s", user.ID, err)
		http.Error(w, "parser unavailable", http.StatusBadGateway)
		return
	}

	added, err := handler.repo.Add(ctx, Log{
		UserID:      user.ID,
		RawInput:    &req.Text,
		Description: parsed.Description,
		Calories:    parsed.Calories,
		ProteinG:    parsed.ProteinG,
		CarbsG:      parsed.CarbsG,
		FatG:        parsed.FatG,
		FiberG:      parsed.FiberG,
		WaterOz:     parsed.WaterOz,
		MealType:    parsed.MealType,
	})
	if err != nil {
		log.Errorf("failed to add parsed nutrition log for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to add nutrition log", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNutritionLogs.Inc()
	handler.writeJSON(w, ParseResponse{
		Success: true,
		Message: fmt.Sprintf("Logged: %s", added.Description),
		Parsed:  parsed,
		LogID:   &added.ID,
	}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.add")
	defer span.End()

	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Tracef("add nutrition, unmarshal json params: %s", err)
		http.Error(w, "add nutrition failed", http.StatusBadRequest)
		return
	}
	if req.DiscordID == "" || req.Description == "" {
		http.Error(w, "error, discord_id or description empty", http.StatusBadRequest)
		return
	}

	user, err := handler.users.FindOrCreate(ctx, req.DiscordID)
	if err != nil {
		log.Errorf("add nutrition, resolve user: %s", err)
		http.Error(w, "failed to resolve user", http.StatusServiceUnavailable)
		return
	}

	added, err := handler.repo.Add(ctx, Log{
		UserID:      user.ID,
		RawInput:    req.RawInput,
		Description: req.Description,
		Calories:    req.Calories,
		ProteinG:    req.ProteinG,
		CarbsG:      req.CarbsG,
		FatG:        req.FatG,
		FiberG:      req.FiberG,
		WaterOz:     req.WaterOz,
		MealType:    req.MealType,
		USDAFDCID:   req.USDAFDCID,
	})
	if err != nil {
		log.Errorf("failed to add nutrition log for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to add nutrition log", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterNutritionLogs.Inc()
	handler.writeJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.today")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	start, end := civildate.DayBounds(civildate.Today(handler.loc), handler.loc)
	logs, err := handler.repo.ForInterval(ctx, user.ID, start, end)
	if err != nil {
		log.Errorf("failed to get today nutrition for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get nutrition logs", http.StatusInternalServerError)
		return
	}
	totals, err := handler.repo.SumForInterval(ctx, user.ID, start, end)
	if err != nil {
		log.Errorf("failed to sum today nutrition for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get nutrition totals", http.StatusInternalServerError)
		return
	}

	if logs == nil {
		logs = []Log{}
	}
	handler.writeJSON(w, TodayResponse{Logs: logs, Totals: totals}, http.StatusOK)
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.history")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "error, days NaN", http.StatusBadRequest)
			return
		}
		days = parsed
	}

	startDay := civildate.Today(handler.loc).AddDate(0, 0, -(days - 1))
	since, _ := civildate.DayBounds(startDay, handler.loc)
	logs, err := handler.repo.History(ctx, user.ID, since)
	if err != nil {
		log.Errorf("failed to get nutrition history for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to get nutrition history", http.StatusInternalServerError)
		return
	}

	if logs == nil {
		logs = []Log{}
	}
	handler.writeJSON(w, HistoryResponse{Logs: logs, Total: len(logs)}, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.delete")
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
		if errors.Is(err, ErrNutritionLogNotFound) {
			http.Error(w, "nutrition log not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete nutrition log %d for user %d: %s", id, user.ID, err)
		http.Error(w, "error, failed to delete nutrition log", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

// HandleUndo removes the user's most recent nutrition log.
func (handler *Handler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.undo")
	defer span.End()

	user, ok := handler.resolveUser(ctx, w, r)
	if !ok {
		return
	}

	deleted, err := handler.repo.DeleteLatest(ctx, user.ID)
	if err != nil {
		if errors.Is(err, ErrNutritionLogNotFound) {
			http.Error(w, "no nutrition logged", http.StatusNotFound)
			return
		}
		log.Errorf("failed to undo nutrition log for user %d: %s", user.ID, err)
		http.Error(w, "error, failed to undo nutrition log", http.StatusInternalServerError)
		return
	}

	handler.writeJSON(w, DeleteResponse{DeletedID: deleted.ID}, http.StatusOK)
}

func (handler *Handler) HandleUSDASearch(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.usdasearch")
	defer span.End()

	query := r.URL.Query().Get("query")
	if len(query) < 2 {
		handler.writeJSON(w, SearchResponse{Results: []Food{}}, http.StatusOK)
		return
	}

	limit := 5
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			http.Error(w, "error, limit NaN", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	foods, err := handler.usda.Search(ctx, query, limit)
	if err != nil {
		log.Errorf("usda search [%s]: %s", query, err)
		http.Error(w, "food database unavailable", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, SearchResponse{Results: foods}, http.StatusOK)
}

func (handler *Handler) HandleUSDAFood(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.nutrition.usdafood")
	defer span.End()

	vars := mux.Vars(r)
	fdcID, err := strconv.Atoi(vars["fdcId"])
	if err != nil {
		http.Error(w, "error, fdc id NaN", http.StatusBadRequest)
		return
	}

	food, err := handler.usda.FoodDetails(ctx, fdcID)
	if err != nil {
		if errors.Is(err, ErrFoodNotFound) {
			http.Error(w, "food not found", http.StatusNotFound)
			return
		}
		log.Errorf("usda food details %d: %s", fdcID, err)
		http.Error(w, "food database unavailable", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, food, http.StatusOK)
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
