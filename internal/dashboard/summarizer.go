package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/forgefit/forge/internal/civildate"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/telemetry/tracing"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"
	"github.com/forgefit/forge/internal/wellness"
)

//go:generate mockgen -source=$GOFILE -destination=summarizer_mocks_test.go -package=dashboard_test

type weightStore interface {
	ForDay(ctx context.Context, userID int, day time.Time) (*weight.Log, error)
}

type nutritionStore interface {
	SumForInterval(ctx context.Context, userID int, start, end time.Time) (nutrition.Totals, error)
}

type workoutsStore interface {
	MinutesForDay(ctx context.Context, userID int, day time.Time) (int, error)
}

type metricsStore interface {
	ForDay(ctx context.Context, userID int, day time.Time) (*wellness.DailyMetric, error)
}

// DailySummary is one civil day of logs folded together with the user's
// goals. Absent data never fails a summary: weight, sleep and mood go null,
// sums and percentages go zero.
type DailySummary struct {
	Date           string   `json:"date"`
	Weight         *float64 `json:"weight"`
	Calories       int      `json:"calories"`
	ProteinG       float64  `json:"protein_g"`
	CarbsG         float64  `json:"carbs_g"`
	FatG           float64  `json:"fat_g"`
	FiberG         float64  `json:"fiber_g"`
	WaterOz        float64  `json:"water_oz"`
	WorkoutMinutes int      `json:"workout_minutes"`
	SleepHours     *float64 `json:"sleep_hours"`
	Mood           *string  `json:"mood"`
	CalorieGoal    int      `json:"calorie_goal"`
	ProteinGoal    int      `json:"protein_goal"`
	WaterGoal      int      `json:"water_goal"`
	CaloriePct     float64  `json:"calorie_pct"`
	ProteinPct     float64  `json:"protein_pct"`
	WaterPct       float64  `json:"water_pct"`
}

type Summarizer struct {
	weights   weightStore
	nutrition nutritionStore
	workouts  workoutsStore
	metrics   metricsStore
	loc       *time.Location
}

func NewSummarizer(
	weights weightStore,
	nutrition nutritionStore,
	workouts workoutsStore,
	metrics metricsStore,
	loc *time.Location,
) *Summarizer {
	return &Summarizer{
		weights:   weights,
		nutrition: nutrition,
		workouts:  workouts,
		metrics:   metrics,
		loc:       loc,
	}
}

// Summarize folds the user's logs for one civil day into a DailySummary.
// Weight carries forward from the last measurement on or before the day;
// nutrition is summed over the day's absolute-time interval; workout minutes
// are summed by calendar date. The only error path is a store failure.
func (s *Summarizer) Summarize(ctx context.Context, user *users.User, day time.Time) (_ *DailySummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.summarize")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	start, end := civildate.DayBounds(day, s.loc)

	summary := &DailySummary{
		Date:        civildate.Format(day),
		CalorieGoal: user.CalorieGoal(),
		ProteinGoal: user.ProteinGoal(),
		WaterGoal:   user.WaterGoal(),
	}

	weightLog, err := s.weights.ForDay(ctx, user.ID, day)
	switch {
	case err == nil:
		summary.Weight = &weightLog.Weight
	case errors.Is(err, weight.ErrWeightLogNotFound):
		// never weighed in: stays null
	default:
		return nil, fmt.Errorf("weight for day: %w", err)
	}

	totals, err := s.nutrition.SumForInterval(ctx, user.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("nutrition sums: %w", err)
	}
	summary.Calories = totals.Calories
	summary.ProteinG = totals.ProteinG
	summary.CarbsG = totals.CarbsG
	summary.FatG = totals.FatG
	summary.FiberG = totals.FiberG
	summary.WaterOz = totals.WaterOz

	minutes, err := s.workouts.MinutesForDay(ctx, user.ID, day)
	if err != nil {
		return nil, fmt.Errorf("workout minutes: %w", err)
	}
	summary.WorkoutMinutes = minutes

	metric, err := s.metrics.ForDay(ctx, user.ID, day)
	switch {
	case err == nil:
		summary.SleepHours = metric.SleepHours
		if metric.Mood != nil {
			name := metric.Mood.String()
			summary.Mood = &name
		}
	case errors.Is(err, wellness.ErrDailyMetricNotFound):
		// nothing logged: stays null
	default:
		return nil, fmt.Errorf("daily metric: %w", err)
	}

	summary.CaloriePct = goalPct(float64(summary.Calories), summary.CalorieGoal)
	summary.ProteinPct = goalPct(summary.ProteinG, summary.ProteinGoal)
	summary.WaterPct = goalPct(summary.WaterOz, summary.WaterGoal)

	return summary, nil
}

// SummarizeWeek computes the trailing 7 civil days including today, most
// recent first. Each day is an independent full computation.
func (s *Summarizer) SummarizeWeek(ctx context.Context, user *users.User) (_ []DailySummary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "dashboard.summarizeweek")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	today := civildate.Today(s.loc)
	summaries := make([]DailySummary, 0, 7)
	for i := 0; i < 7; i++ {
		summary, err := s.Summarize(ctx, user, today.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// goalPct derives progress toward a goal, rounded half-up to one decimal.
// A zero goal reports zero percent, never a division error.
func goalPct(actual float64, goal int) float64 {
	if goal == 0 {
		return 0
	}
	return math.Round(actual/float64(goal)*100*10) / 10
}
