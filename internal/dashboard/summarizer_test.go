package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/forgefit/forge/internal/civildate"
	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"
	"github.com/forgefit/forge/internal/wellness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	m.Run()
	goleak.VerifyTestMain(m)
}

func ptrOf[T any](v T) *T {
	return &v
}

type summarizerMocks struct {
	weights   *MockweightStore
	nutrition *MocknutritionStore
	workouts  *MockworkoutsStore
	metrics   *MockmetricsStore
}

func newTestSummarizer(t *testing.T) (*dashboard.Summarizer, summarizerMocks, *time.Location) {
	t.Helper()
	ctrl := gomock.NewController(t)
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	mocks := summarizerMocks{
		weights:   NewMockweightStore(ctrl),
		nutrition: NewMocknutritionStore(ctrl),
		workouts:  NewMockworkoutsStore(ctrl),
		metrics:   NewMockmetricsStore(ctrl),
	}
	return dashboard.NewSummarizer(
		mocks.weights, mocks.nutrition, mocks.workouts, mocks.metrics, loc,
	), mocks, loc
}

func TestSummarizer_fullDay(t *testing.T) {
	summarizer, mocks, loc := newTestSummarizer(t)

	user := &users.User{ID: 1, DiscordID: "12345"}
	day := civildate.Date(2025, time.June, 10)
	start, end := civildate.DayBounds(day, loc)

	mocks.weights.EXPECT().
		ForDay(gomock.Any(), 1, day).
		Return(&weight.Log{ID: 3, UserID: 1, Weight: 181.4, Date: day}, nil)
	mocks.nutrition.EXPECT().
		SumForInterval(gomock.Any(), 1, start, end).
		Return(nutrition.Totals{
			Calories: 305, ProteinG: 42.5, CarbsG: 20, FatG: 10, FiberG: 3, WaterOz: 48,
		}, nil)
	mocks.workouts.EXPECT().
		MinutesForDay(gomock.Any(), 1, day).
		Return(45, nil)
	mocks.metrics.EXPECT().
		ForDay(gomock.Any(), 1, day).
		Return(&wellness.DailyMetric{
			UserID: 1, Date: day,
			SleepHours: ptrOf(7.5), Mood: ptrOf(wellness.MoodGood),
		}, nil)

	summary, err := summarizer.Summarize(context.Background(), user, day)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-10", summary.Date)
	require.NotNil(t, summary.Weight)
	assert.Equal(t, 181.4, *summary.Weight)
	assert.Equal(t, 305, summary.Calories)
	assert.Equal(t, 42.5, summary.ProteinG)
	assert.Equal(t, 48.0, summary.WaterOz)
	assert.Equal(t, 45, summary.WorkoutMinutes)
	require.NotNil(t, summary.SleepHours)
	assert.Equal(t, 7.5, *summary.SleepHours)
	require.NotNil(t, summary.Mood)
	assert.Equal(t, "GOOD", *summary.Mood)

	// default goals, half-up rounding to one decimal: 305/2000 -> 15.3
	assert.Equal(t, 2000, summary.CalorieGoal)
	assert.Equal(t, 15.3, summary.CaloriePct)
	assert.Equal(t, 28.3, summary.ProteinPct)
	assert.Equal(t, 75.0, summary.WaterPct)
}

func TestSummarizer_emptyDay(t *testing.T) {
	summarizer, mocks, loc := newTestSummarizer(t)

	// all goals zero: percentages still come out zero, never an error
	user := &users.User{
		ID: 1, DiscordID: "12345",
		DailyCalorieGoal: ptrOf(0),
		DailyProteinGoal: ptrOf(0),
		DailyWaterGoal:   ptrOf(0),
	}
	day := civildate.Date(2025, time.June, 10)
	start, end := civildate.DayBounds(day, loc)

	mocks.weights.EXPECT().
		ForDay(gomock.Any(), 1, day).
		Return(nil, weight.ErrWeightLogNotFound)
	mocks.nutrition.EXPECT().
		SumForInterval(gomock.Any(), 1, start, end).
		Return(nutrition.Totals{}, nil)
	mocks.workouts.EXPECT().
		MinutesForDay(gomock.Any(), 1, day).
		Return(0, nil)
	mocks.metrics.EXPECT().
		ForDay(gomock.Any(), 1, day).
		Return(nil, wellness.ErrDailyMetricNotFound)

	summary, err := summarizer.Summarize(context.Background(), user, day)
	require.NoError(t, err)

	assert.Nil(t, summary.Weight)
	assert.Equal(t, 0, summary.Calories)
	assert.Equal(t, 0.0, summary.ProteinG)
	assert.Equal(t, 0.0, summary.WaterOz)
	assert.Equal(t, 0, summary.WorkoutMinutes)
	assert.Nil(t, summary.SleepHours)
	assert.Nil(t, summary.Mood)
	assert.Equal(t, 0.0, summary.CaloriePct)
	assert.Equal(t, 0.0, summary.ProteinPct)
	assert.Equal(t, 0.0, summary.WaterPct)
}

func TestSummarizer_weightCarryForward(t *testing.T) {
	summarizer, mocks, loc := newTestSummarizer(t)

	user := &users.User{ID: 1, DiscordID: "12345"}
	dayOne := civildate.Date(2025, time.June, 1)
	dayThree := civildate.Date(2025, time.June, 3)
	start, end := civildate.DayBounds(dayThree, loc)

	// the store answers the day-3 query with the day-1 measurement
	mocks.weights.EXPECT().
		ForDay(gomock.Any(), 1, dayThree).
		Return(&weight.Log{ID: 1, UserID: 1, Weight: 184.0, Date: dayOne}, nil)
	mocks.nutrition.EXPECT().
		SumForInterval(gomock.Any(), 1, start, end).
		Return(nutrition.Totals{}, nil)
	mocks.workouts.EXPECT().
		MinutesForDay(gomock.Any(), 1, dayThree).
		Return(0, nil)
	mocks.metrics.EXPECT().
		ForDay(gomock.Any(), 1, dayThree).
		Return(nil, wellness.ErrDailyMetricNotFound)

	summary, err := summarizer.Summarize(context.Background(), user, dayThree)
	require.NoError(t, err)
	require.NotNil(t, summary.Weight)
	assert.Equal(t, 184.0, *summary.Weight)
}

func TestSummarizer_week(t *testing.T) {
	summarizer, mocks, loc := newTestSummarizer(t)

	user := &users.User{ID: 1, DiscordID: "12345"}
	today := civildate.Today(loc)

	// every one of the 7 days is computed independently and in full
	for i := 0; i < 7; i++ {
		day := today.AddDate(0, 0, -i)
		start, end := civildate.DayBounds(day, loc)
		mocks.weights.EXPECT().
			ForDay(gomock.Any(), 1, day).
			Return(nil, weight.ErrWeightLogNotFound)
		mocks.nutrition.EXPECT().
			SumForInterval(gomock.Any(), 1, start, end).
			Return(nutrition.Totals{Calories: 100 * i}, nil)
		mocks.workouts.EXPECT().
			MinutesForDay(gomock.Any(), 1, day).
			Return(0, nil)
		mocks.metrics.EXPECT().
			ForDay(gomock.Any(), 1, day).
			Return(nil, wellness.ErrDailyMetricNotFound)
	}

	summaries, err := summarizer.SummarizeWeek(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, summaries, 7)

	// most recent first
	assert.Equal(t, civildate.Format(today), summaries[0].Date)
	assert.Equal(t, civildate.Format(today.AddDate(0, 0, -6)), summaries[6].Date)
	for i, summary := range summaries {
		assert.Equal(t, 100*i, summary.Calories)
	}
}

func TestSummarizer_storeFailurePropagates(t *testing.T) {
	summarizer, mocks, _ := newTestSummarizer(t)

	user := &users.User{ID: 1, DiscordID: "12345"}
	day := civildate.Date(2025, time.June, 10)

	mocks.weights.EXPECT().
		ForDay(gomock.Any(), 1, day).
		Return(nil, assert.AnError)

	_, err := summarizer.Summarize(context.Background(), user, day)
	assert.ErrorIs(t, err, assert.AnError)
}
