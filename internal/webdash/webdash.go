// Package webdash serves the browser dashboard: server rendered pages
// over the backend REST API, for single user use behind a reverse proxy.
package webdash

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/forgeapi"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"
	"github.com/forgefit/forge/internal/workouts"
	"github.com/forgefit/forge/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

// forgeApi is the slice of the backend client the dashboard needs.
type forgeApi interface {
	DashboardToday(ctx context.Context, discordID string) (*dashboard.DailySummary, error)
	DashboardWeek(ctx context.Context, discordID string) ([]dashboard.DailySummary, error)
	Goals(ctx context.Context, discordID string) (*users.Goals, error)
	WeightHistory(ctx context.Context, discordID string, days int) ([]weight.Log, error)
	AddWeight(ctx context.Context, req weight.AddRequest) (*weight.Log, error)
	AddNutrition(ctx context.Context, req nutrition.AddRequest) (*nutrition.Log, error)
	NutritionHistory(ctx context.Context, discordID string, days int) ([]nutrition.Log, error)
	DeleteNutrition(ctx context.Context, discordID string, id int) (int, error)
	AddWorkout(ctx context.Context, req workouts.AddRequest) (*workouts.Workout, error)
	StartFast(ctx context.Context, req fasting.StartRequest) (*fasting.WindowResponse, error)
	EndFast(ctx context.Context, discordID string) (*fasting.WindowResponse, error)
	ActiveFast(ctx context.Context, discordID string) (*fasting.WindowResponse, error)
	FastingHistory(ctx context.Context, discordID string, days int) ([]fasting.WindowResponse, error)
	DeleteFast(ctx context.Context, discordID string, id int) (int, error)
	SearchFood(ctx context.Context, query string, limit int) ([]nutrition.Food, error)
}

type Handler struct {
	api       forgeApi
	discordID string // single user mode: all requests act as this user
	loc       *time.Location
	templates *template.Template
}

func NewHandler(api forgeApi, discordID string, loc *time.Location) (*Handler, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Handler{
		api:       api,
		discordID: discordID,
		loc:       loc,
		templates: templates,
	}, nil
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/", handler.HandleDashboard).Methods("GET").Name("dashboard")
	r.HandleFunc("/log", handler.HandleLogPage).Methods("GET").Name("log-page")
	r.HandleFunc("/log", handler.HandleLogForm).Methods("POST").Name("log-form")
	r.HandleFunc("/trends", handler.HandleTrends).Methods("GET").Name("trends")

	r.HandleFunc("/api/chart/weight", handler.HandleWeightChart).Methods("GET").Name("chart-weight")
	r.HandleFunc("/api/chart/nutrition", handler.HandleNutritionChart).Methods("GET").Name("chart-nutrition")

	r.HandleFunc("/api/nutrition/{id}", handler.HandleDeleteNutrition).Methods("DELETE").Name("delete-nutrition")
	r.HandleFunc("/api/fasting/start", handler.HandleStartFast).Methods("POST").Name("start-fast")
	r.HandleFunc("/api/fasting/end", handler.HandleEndFast).Methods("POST").Name("end-fast")
	r.HandleFunc("/api/fasting/active", handler.HandleActiveFast).Methods("GET").Name("active-fast")
	r.HandleFunc("/api/fasting/{id}", handler.HandleDeleteFast).Methods("DELETE").Name("delete-fast")
	r.HandleFunc("/api/food/search", handler.HandleFoodSearch).Methods("GET").Name("food-search")
}

type dashboardPage struct {
	Today         *dashboard.DailySummary
	Week          []dashboard.DailySummary
	Goals         *users.Goals
	WeightHistory []weight.Log
	ActiveFast    *fasting.WindowResponse
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	today, err := handler.api.DashboardToday(ctx, handler.discordID)
	if err != nil {
		handler.renderError(w, "fetch today's summary", err)
		return
	}
	week, err := handler.api.DashboardWeek(ctx, handler.discordID)
	if err != nil {
		handler.renderError(w, "fetch week", err)
		return
	}
	goals, err := handler.api.Goals(ctx, handler.discordID)
	if err != nil {
		handler.renderError(w, "fetch goals", err)
		return
	}
	weightHistory, err := handler.api.WeightHistory(ctx, handler.discordID, 30)
	if err != nil {
		handler.renderError(w, "fetch weight history", err)
		return
	}

	activeFast, err := handler.api.ActiveFast(ctx, handler.discordID)
	if err != nil && !errors.Is(err, forgeapi.ErrNotFound) {
		handler.renderError(w, "fetch active fast", err)
		return
	}

	handler.render(w, "dashboard.html", dashboardPage{
		Today:         today,
		Week:          week,
		Goals:         goals,
		WeightHistory: weightHistory,
		ActiveFast:    activeFast,
	})
}

// DayGroup is a civil day of log entries, newest day first in the
// rendered list.
type DayGroup struct {
	Date    string
	Logs    []nutrition.Log
	Fasts   []fasting.WindowResponse
	HasData bool
}

type logPage struct {
	Days   []DayGroup
	Window int
}

func (handler *Handler) HandleLogPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 7
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err == nil && parsed > 0 {
			days = parsed
		}
	}

	history, err := handler.api.NutritionHistory(ctx, handler.discordID, days)
	if err != nil {
		handler.renderError(w, "fetch nutrition history", err)
		return
	}
	fastingHistory, err := handler.api.FastingHistory(ctx, handler.discordID, days)
	if err != nil {
		handler.renderError(w, "fetch fasting history", err)
		return
	}

	handler.render(w, "log.html", logPage{
		Days:   GroupByDay(history, fastingHistory, handler.loc),
		Window: days,
	})
}

func (handler *Handler) HandleLogForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	var err error
	switch formType := r.PostFormValue("type"); formType {
	case "nutrition":
		err = handler.submitNutritionForm(ctx, r)
	case "water":
		err = handler.submitWaterForm(ctx, r)
	case "weight":
		err = handler.submitWeightForm(ctx, r)
	case "workout":
		err = handler.submitWorkoutForm(ctx, r)
	default:
		http.Error(w, fmt.Sprintf("unknown form type: %s", formType), http.StatusBadRequest)
		return
	}

	if err != nil {
		handler.renderError(w, "submit log form", err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (handler *Handler) submitNutritionForm(ctx context.Context, r *http.Request) error {
	req := nutrition.AddRequest{
		DiscordID:   handler.discordID,
		Description: r.PostFormValue("description"),
	}
	if calories := formInt(r, "calories"); calories != nil {
		req.Calories = calories
	}
	req.ProteinG = formFloat(r, "protein")
	req.CarbsG = formFloat(r, "carbs")
	req.FatG = formFloat(r, "fat")
	req.FiberG = formFloat(r, "fiber")
	if mealType := r.PostFormValue("meal_type"); mealType != "" {
		req.MealType = &mealType
	}

	_, err := handler.api.AddNutrition(ctx, req)
	return err
}

func (handler *Handler) submitWaterForm(ctx context.Context, r *http.Request) error {
	_, err := handler.api.AddNutrition(ctx, nutrition.AddRequest{
		DiscordID:   handler.discordID,
		Description: "Water",
		WaterOz:     formFloat(r, "water_oz"),
	})
	return err
}

func (handler *Handler) submitWeightForm(ctx context.Context, r *http.Request) error {
	weightLbs, err := strconv.ParseFloat(r.PostFormValue("weight"), 64)
	if err != nil {
		return fmt.Errorf("invalid weight: %w", err)
	}
	_, err = handler.api.AddWeight(ctx, weight.AddRequest{
		DiscordID: handler.discordID,
		Weight:    weightLbs,
	})
	return err
}

func (handler *Handler) submitWorkoutForm(ctx context.Context, r *http.Request) error {
	req := workouts.AddRequest{
		DiscordID:       handler.discordID,
		WorkoutType:     r.PostFormValue("workout_type"),
		DurationMinutes: formInt(r, "duration"),
		CaloriesBurned:  formInt(r, "calories_burned"),
	}
	if description := r.PostFormValue("workout_description"); description != "" {
		req.Description = &description
	}
	_, err := handler.api.AddWorkout(ctx, req)
	return err
}

type trendsPage struct {
	WeightHistory []weight.Log
	Week          []dashboard.DailySummary
	Window        int
}

func (handler *Handler) HandleTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err == nil && parsed > 0 {
			days = parsed
		}
	}

	weightHistory, err := handler.api.WeightHistory(ctx, handler.discordID, days)
	if err != nil {
		handler.renderError(w, "fetch weight history", err)
		return
	}
	week, err := handler.api.DashboardWeek(ctx, handler.discordID)
	if err != nil {
		handler.renderError(w, "fetch week", err)
		return
	}

	handler.render(w, "trends.html", trendsPage{
		WeightHistory: weightHistory,
		Week:          week,
		Window:        days,
	})
}

// WeightChart is the chart.js payload for the weight trend line.
type WeightChart struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

func (handler *Handler) HandleWeightChart(w http.ResponseWriter, r *http.Request) {
	days := 30
	if daysParam := r.URL.Query().Get("days"); daysParam != "" {
		parsed, err := strconv.Atoi(daysParam)
		if err == nil && parsed > 0 {
			days = parsed
		}
	}

	history, err := handler.api.WeightHistory(r.Context(), handler.discordID, days)
	if err != nil {
		log.Errorf("weight chart: %s", err)
		http.Error(w, "failed to fetch weight history", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, BuildWeightChart(history))
}

// NutritionChart is the chart.js payload for the weekly nutrition bars,
// oldest day first.
type NutritionChart struct {
	Labels   []string  `json:"labels"`
	Calories []int     `json:"calories"`
	Protein  []float64 `json:"protein"`
	Water    []float64 `json:"water"`
}

func (handler *Handler) HandleNutritionChart(w http.ResponseWriter, r *http.Request) {
	week, err := handler.api.DashboardWeek(r.Context(), handler.discordID)
	if err != nil {
		log.Errorf("nutrition chart: %s", err)
		http.Error(w, "failed to fetch week", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, BuildNutritionChart(week))
}

func (handler *Handler) HandleDeleteNutrition(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	deletedID, err := handler.api.DeleteNutrition(r.Context(), handler.discordID, id)
	if errors.Is(err, forgeapi.ErrNotFound) {
		http.Error(w, "log not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("delete nutrition log %d: %s", id, err)
		http.Error(w, "failed to delete", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, nutrition.DeleteResponse{DeletedID: deletedID})
}

func (handler *Handler) HandleStartFast(w http.ResponseWriter, r *http.Request) {
	req := fasting.StartRequest{DiscordID: handler.discordID}
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		req.DiscordID = handler.discordID
	}

	window, err := handler.api.StartFast(r.Context(), req)
	if errors.Is(err, forgeapi.ErrFastActive) {
		http.Error(w, "a fast is already active", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("start fast: %s", err)
		http.Error(w, "failed to start fast", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, window)
}

func (handler *Handler) HandleEndFast(w http.ResponseWriter, r *http.Request) {
	window, err := handler.api.EndFast(r.Context(), handler.discordID)
	if errors.Is(err, forgeapi.ErrNotFound) {
		http.Error(w, "no active fast", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("end fast: %s", err)
		http.Error(w, "failed to end fast", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, window)
}

func (handler *Handler) HandleActiveFast(w http.ResponseWriter, r *http.Request) {
	window, err := handler.api.ActiveFast(r.Context(), handler.discordID)
	if errors.Is(err, forgeapi.ErrNotFound) {
		// the frontend treats null as "no active fast"
		handler.writeJSON(w, nil)
		return
	}
	if err != nil {
		log.Errorf("active fast: %s", err)
		http.Error(w, "failed to fetch active fast", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, window)
}

func (handler *Handler) HandleDeleteFast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	deletedID, err := handler.api.DeleteFast(r.Context(), handler.discordID, id)
	if errors.Is(err, forgeapi.ErrNotFound) {
		http.Error(w, "fast not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Errorf("delete fast %d: %s", id, err)
		http.Error(w, "failed to delete", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, fasting.DeleteResponse{DeletedID: deletedID})
}

func (handler *Handler) HandleFoodSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	limit := 5
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := handler.api.SearchFood(r.Context(), query, limit)
	if err != nil {
		log.Errorf("food search: %s", err)
		http.Error(w, "failed to search foods", http.StatusBadGateway)
		return
	}

	handler.writeJSON(w, nutrition.SearchResponse{Results: results})
}

// GroupByDay buckets nutrition logs and fasting windows by their civil
// day in loc, newest day first.
func GroupByDay(
	logs []nutrition.Log,
	fasts []fasting.WindowResponse,
	loc *time.Location,
) []DayGroup {
	groups := make(map[string]*DayGroup)
	dayOf := func(t time.Time) string {
		return t.In(loc).Format("2006-01-02")
	}
	groupFor := func(day string) *DayGroup {
		if group, ok := groups[day]; ok {
			return group
		}
		group := &DayGroup{Date: day}
		groups[day] = group
		return group
	}

	for _, logEntry := range logs {
		group := groupFor(dayOf(logEntry.LoggedAt))
		group.Logs = append(group.Logs, logEntry)
		group.HasData = true
	}
	for _, fast := range fasts {
		group := groupFor(dayOf(fast.StartedAt))
		group.Fasts = append(group.Fasts, fast)
		group.HasData = true
	}

	days := make([]DayGroup, 0, len(groups))
	for _, group := range groups {
		days = append(days, *group)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date > days[j].Date
	})
	return days
}

func BuildWeightChart(history []weight.Log) WeightChart {
	chart := WeightChart{
		Labels: make([]string, 0, len(history)),
		Data:   make([]float64, 0, len(history)),
	}
	for _, entry := range history {
		chart.Labels = append(chart.Labels, entry.Date.Format("2006-01-02"))
		chart.Data = append(chart.Data, entry.Weight)
	}
	return chart
}

func BuildNutritionChart(week []dashboard.DailySummary) NutritionChart {
	chart := NutritionChart{
		Labels:   make([]string, 0, len(week)),
		Calories: make([]int, 0, len(week)),
		Protein:  make([]float64, 0, len(week)),
		Water:    make([]float64, 0, len(week)),
	}
	// the week endpoint returns most recent day first, charts want
	// oldest first
	for i := len(week) - 1; i >= 0; i-- {
		day := week[i]
		chart.Labels = append(chart.Labels, day.Date)
		chart.Calories = append(chart.Calories, day.Calories)
		chart.Protein = append(chart.Protein, day.ProteinG)
		chart.Water = append(chart.Water, day.WaterOz)
	}
	return chart
}

func (handler *Handler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", pkg.ContentType.HTML)
	if err := handler.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
	}
}

func (handler *Handler) renderError(w http.ResponseWriter, action string, err error) {
	log.Errorf("%s: %s", action, err)
	http.Error(w, "backend unavailable, try again later", http.StatusBadGateway)
}

func (handler *Handler) writeJSON(w http.ResponseWriter, payload any) {
	respBytes, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal response: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respBytes, http.StatusOK)
}

func formInt(r *http.Request, field string) *int {
	raw := r.PostFormValue(field)
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &value
}

func formFloat(r *http.Request, field string) *float64 {
	raw := r.PostFormValue(field)
	if raw == "" {
		return nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &value
}
