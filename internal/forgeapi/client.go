// Package forgeapi is a thin typed client over the backend REST API,
// shared by the discord bot and the web dashboard.
package forgeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"
	"github.com/forgefit/forge/internal/wellness"
	"github.com/forgefit/forge/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrFastActive    = errors.New("a fast is already active")
	ErrInvalidParams = errors.New("invalid params")
)

type Client struct {
	baseURL    string // e.g. http://forge-api:8080
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) ParseNutrition(ctx context.Context, discordID, text string) (*nutrition.ParseResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.parseNutrition")
	defer span.End()

	var res nutrition.ParseResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/nutrition/parse", nil, nutrition.ParseRequest{
		DiscordID: discordID,
		Text:      text,
	}, &res)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &res, nil
}

func (c *Client) AddNutrition(ctx context.Context, req nutrition.AddRequest) (*nutrition.Log, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.addNutrition")
	defer span.End()

	var added nutrition.Log
	if err := c.doJSON(ctx, http.MethodPost, "/api/nutrition", nil, req, &added); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &added, nil
}

func (c *Client) NutritionToday(ctx context.Context, discordID string) (*nutrition.TodayResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.nutritionToday")
	defer span.End()

	var res nutrition.TodayResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/nutrition/today", userQuery(discordID), nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &res, nil
}

func (c *Client) NutritionHistory(ctx context.Context, discordID string, days int) ([]nutrition.Log, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.nutritionHistory")
	defer span.End()

	query := userQuery(discordID)
	query.Set("days", strconv.Itoa(days))

	var res nutrition.HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/nutrition/history", query, nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return res.Logs, nil
}

func (c *Client) DeleteNutrition(ctx context.Context, discordID string, id int) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.deleteNutrition")
	defer span.End()

	var res nutrition.DeleteResponse
	err := c.doJSON(
		ctx, http.MethodDelete,
		fmt.Sprintf("/api/nutrition/%d", id),
		userQuery(discordID), nil, &res,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetStatus(codes.Ok, "")
	return res.DeletedID, nil
}

func (c *Client) UndoNutrition(ctx context.Context, discordID string) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.undoNutrition")
	defer span.End()

	var res nutrition.DeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/nutrition/latest", userQuery(discordID), nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetStatus(codes.Ok, "")
	return res.DeletedID, nil
}

func (c *Client) SearchFood(ctx context.Context, query string, limit int) ([]nutrition.Food, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.searchFood")
	defer span.End()

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))

	var res nutrition.SearchResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/food/search", params, nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return res.Results, nil
}

func (c *Client) AddWeight(ctx context.Context, req weight.AddRequest) (*weight.Log, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.addWeight")
	defer span.End()

	var added weight.Log
	if err := c.doJSON(ctx, http.MethodPost, "/api/weight", nil, req, &added); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &added, nil
}

func (c *Client) LatestWeight(ctx context.Context, discordID string) (*weight.Log, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.latestWeight")
	defer span.End()

	var latest weight.Log
	if err := c.doJSON(ctx, http.MethodGet, "/api/weight/latest", userQuery(discordID), nil, &latest); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &latest, nil
}

func (c *Client) WeightHistory(ctx context.Context, discordID string, days int) ([]weight.Log, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.weightHistory")
	defer span.End()

	query := userQuery(discordID)
	query.Set("days", strconv.Itoa(days))

	var res weight.HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/weight/history", query, nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return res.Logs, nil
}

func (c *Client) UndoWeight(ctx context.Context, discordID string) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.undoWeight")
	defer span.End()

	var res weight.DeleteResponse
	if err := c.doJSON(ctx, http.MethodDelete, "/api/weight/latest", userQuery(discordID), nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetStatus(codes.Ok, "")
	return res.DeletedID, nil
}

func (c *Client) AddWorkout(ctx context.Context, req workouts.AddRequest) (*workouts.Workout, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.addWorkout")
	defer span.End()

	var added workouts.Workout
	if err := c.doJSON(ctx, http.MethodPost, "/api/workouts", nil, req, &added); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &added, nil
}

func (c *Client) UpsertDailyMetric(ctx context.Context, req wellness.UpsertRequest) (*wellness.DailyMetric, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.upsertDailyMetric")
	defer span.End()

	var metric wellness.DailyMetric
	if err := c.doJSON(ctx, http.MethodPost, "/api/metrics", nil, req, &metric); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &metric, nil
}

func (c *Client) StartFast(ctx context.Context, req fasting.StartRequest) (*fasting.WindowResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.startFast")
	defer span.End()

	var res fasting.WindowResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/fasting/start", nil, req, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &res, nil
}

func (c *Client) EndFast(ctx context.Context, discordID string) (*fasting.WindowResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.endFast")
	defer span.End()

	var res fasting.WindowResponse
	err := c.doJSON(
		ctx, http.MethodPost, "/api/fasting/end", nil,
		fasting.StartRequest{DiscordID: discordID}, &res,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &res, nil
}

func (c *Client) ActiveFast(ctx context.Context, discordID string) (*fasting.WindowResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.activeFast")
	defer span.End()

	var res fasting.WindowResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/fasting/active", userQuery(discordID), nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &res, nil
}

func (c *Client) FastingHistory(ctx context.Context, discordID string, days int) ([]fasting.WindowResponse, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.fastingHistory")
	defer span.End()

	query := userQuery(discordID)
	query.Set("days", strconv.Itoa(days))

	var res fasting.HistoryResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/fasting/history", query, nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return res.Windows, nil
}

func (c *Client) DeleteFast(ctx context.Context, discordID string, id int) (int, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.deleteFast")
	defer span.End()

	var res fasting.DeleteResponse
	err := c.doJSON(
		ctx, http.MethodDelete,
		fmt.Sprintf("/api/fasting/%d", id),
		userQuery(discordID), nil, &res,
	)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetStatus(codes.Ok, "")
	return res.DeletedID, nil
}

func (c *Client) DashboardToday(ctx context.Context, discordID string) (*dashboard.DailySummary, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.dashboardToday")
	defer span.End()

	var summary dashboard.DailySummary
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/today", userQuery(discordID), nil, &summary); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &summary, nil
}

func (c *Client) DashboardWeek(ctx context.Context, discordID string) ([]dashboard.DailySummary, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.dashboardWeek")
	defer span.End()

	var res dashboard.WeekResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/week", userQuery(discordID), nil, &res); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return res.Summaries, nil
}

func (c *Client) Goals(ctx context.Context, discordID string) (*users.Goals, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.goals")
	defer span.End()

	var goals users.Goals
	if err := c.doJSON(ctx, http.MethodGet, "/api/goals", userQuery(discordID), nil, &goals); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &goals, nil
}

func (c *Client) SetGoals(ctx context.Context, discordID string, goals users.Goals) (*users.Goals, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "forgeapi.setGoals")
	defer span.End()

	var updated users.Goals
	if err := c.doJSON(ctx, http.MethodPut, "/api/goals", userQuery(discordID), goals, &updated); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &updated, nil
}

func userQuery(discordID string) url.Values {
	query := url.Values{}
	query.Set("discord_id", discordID)
	return query
}

func (c *Client) doJSON(
	ctx context.Context,
	method, path string,
	query url.Values,
	reqBody, respDest any,
) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return err
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Errorf("forge api client: close response body: %s", err)
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return ErrFastActive
	case resp.StatusCode == http.StatusBadRequest:
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s", ErrInvalidParams, bytes.TrimSpace(msg))
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if respDest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(respDest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
