package bot

import (
	"testing"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShouldParseMessage(t *testing.T) {
	parse := []string{
		"I had 2 eggs and toast",
		"just ate a burrito",
		"chicken salad for lunch",
		"I've had 16oz of water",
		"log: protein shake",
		"LOGGED a banana",
	}
	for _, msg := range parse {
		assert.True(t, ShouldParseMessage(msg), msg)
	}

	skip := []string{
		"what should I eat today?",
		"hey, how is everyone",
		"going for a run",
		"",
	}
	for _, msg := range skip {
		assert.False(t, ShouldParseMessage(msg), msg)
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░ 50%", ProgressBar(50, 10))
	assert.Equal(t, "░░░░░░░░░░ 0%", ProgressBar(0, 10))
	// over 100% stays a full bar
	assert.Equal(t, "██████████ 130%", ProgressBar(130, 10))
}

func TestParsedReply(t *testing.T) {
	calories := 280
	protein := 20.0
	water := 12.0

	assert.Equal(t,
		"Logged: **2 eggs and toast** (280 cal, 20g protein)",
		ParsedReply(&nutrition.Parsed{
			Description: "2 eggs and toast",
			Calories:    &calories,
			ProteinG:    &protein,
		}),
	)
	assert.Equal(t,
		"Logged: **glass of water** (12oz water)",
		ParsedReply(&nutrition.Parsed{
			Description: "glass of water",
			WaterOz:     &water,
		}),
	)
	assert.Equal(t, "Logged: **black coffee**", ParsedReply(&nutrition.Parsed{
		Description: "black coffee",
	}))
	assert.Equal(t, "Logged.", ParsedReply(nil))
}

func TestTodayEmbed(t *testing.T) {
	weightLbs := 183.4
	mood := "GOOD"
	summary := &dashboard.DailySummary{
		Date:           "2025-06-10",
		Weight:         &weightLbs,
		Calories:       540,
		ProteinG:       42.5,
		WaterOz:        48,
		WorkoutMinutes: 30,
		Mood:           &mood,
		CalorieGoal:    2000,
		ProteinGoal:    150,
		WaterGoal:      64,
		CaloriePct:     27.0,
		ProteinPct:     28.3,
		WaterPct:       75.0,
	}

	embed := todayEmbed(summary)
	assert.Equal(t, "Today's Summary - 2025-06-10", embed.Title)
	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "Calories", embed.Fields[0].Name)
	assert.Contains(t, embed.Fields[0].Value, "540 / 2000")
	assert.Equal(t, "183.4 lbs", embed.Fields[3].Value)
	assert.Equal(t, "30 min", embed.Fields[4].Value)
	assert.Equal(t, "Good", embed.Fields[5].Value)
}

func TestWeekEmbed_capsAtSevenDays(t *testing.T) {
	week := make([]dashboard.DailySummary, 9)
	for i := range week {
		week[i] = dashboard.DailySummary{Date: "2025-06-10", Calories: 100 * i}
	}

	embed := weekEmbed(week)
	assert.Len(t, embed.Fields, 7)
	assert.Contains(t, embed.Fields[0].Value, "✅ 0 cal")
}

func TestWeekEmbed_overBudgetMarker(t *testing.T) {
	embed := weekEmbed([]dashboard.DailySummary{
		{Date: "2025-06-10", Calories: 2400, CaloriePct: 120},
	})
	require.Len(t, embed.Fields, 1)
	assert.Contains(t, embed.Fields[0].Value, "⚠️")
}

func TestMergeGoals(t *testing.T) {
	current := users.Goals{
		TargetWeight:     180,
		DailyCalorieGoal: 2000,
		DailyProteinGoal: 150,
		DailyCarbGoal:    200,
		DailyFatGoal:     65,
		DailyWaterGoal:   64,
	}

	calories := 1800
	water := 80
	merged := MergeGoals(current, &calories, nil, &water)

	assert.Equal(t, 1800, merged.DailyCalorieGoal)
	assert.Equal(t, 150, merged.DailyProteinGoal)
	assert.Equal(t, 80, merged.DailyWaterGoal)
	assert.InDelta(t, 180.0, merged.TargetWeight, 0.001)

	unchanged := MergeGoals(current, nil, nil, nil)
	assert.Equal(t, current, unchanged)
}
