package bot

import (
	"fmt"
	"strings"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/users"

	"github.com/bwmarrin/discordgo"
)

const (
	colorGreen = 0x2ecc71
	colorBlue  = 0x3498db
	colorGold  = 0xf1c40f
)

// ProgressBar renders pct as a fixed width bar of filled and empty
// blocks, capped at full.
func ProgressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %.0f%%", bar, pct)
}

// ParsedReply builds the confirmation message for a parsed food log.
func ParsedReply(parsed *nutrition.Parsed) string {
	if parsed == nil {
		return "Logged."
	}

	reply := fmt.Sprintf("Logged: **%s**", parsed.Description)

	var details []string
	if parsed.Calories != nil && *parsed.Calories > 0 {
		details = append(details, fmt.Sprintf("%d cal", *parsed.Calories))
	}
	if parsed.ProteinG != nil && *parsed.ProteinG > 0 {
		details = append(details, fmt.Sprintf("%.0fg protein", *parsed.ProteinG))
	}
	if parsed.WaterOz != nil && *parsed.WaterOz > 0 {
		details = append(details, fmt.Sprintf("%.0foz water", *parsed.WaterOz))
	}

	if len(details) > 0 {
		reply += fmt.Sprintf(" (%s)", strings.Join(details, ", "))
	}
	return reply
}

func todayEmbed(summary *dashboard.DailySummary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("Today's Summary - %s", summary.Date),
		Color: colorGreen,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name: "Calories",
				Value: fmt.Sprintf(
					"%d / %d\n%s",
					summary.Calories, summary.CalorieGoal, ProgressBar(summary.CaloriePct, 10),
				),
				Inline: true,
			},
			{
				Name: "Protein",
				Value: fmt.Sprintf(
					"%.0fg / %dg\n%s",
					summary.ProteinG, summary.ProteinGoal, ProgressBar(summary.ProteinPct, 10),
				),
				Inline: true,
			},
			{
				Name: "Water",
				Value: fmt.Sprintf(
					"%.0foz / %doz\n%s",
					summary.WaterOz, summary.WaterGoal, ProgressBar(summary.WaterPct, 10),
				),
				Inline: true,
			},
		},
	}

	if summary.Weight != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Weight",
			Value:  fmt.Sprintf("%g lbs", *summary.Weight),
			Inline: true,
		})
	}
	if summary.WorkoutMinutes > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Workout",
			Value:  fmt.Sprintf("%d min", summary.WorkoutMinutes),
			Inline: true,
		})
	}
	if summary.Mood != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Mood",
			Value:  titleCase(*summary.Mood),
			Inline: true,
		})
	}

	return embed
}

func weekEmbed(week []dashboard.DailySummary) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "This Week's Progress",
		Color: colorBlue,
	}

	for i, day := range week {
		if i >= 7 {
			break
		}
		calEmoji := "✅"
		if day.CaloriePct > 100 {
			calEmoji = "⚠️"
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: day.Date,
			Value: fmt.Sprintf(
				"%s %d cal | %.0fg protein | %.0foz water",
				calEmoji, day.Calories, day.ProteinG, day.WaterOz,
			),
		})
	}

	return embed
}

func goalsEmbed(goals *users.Goals) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Your Goals",
		Color: colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Target Weight", Value: fmt.Sprintf("%g lbs", goals.TargetWeight), Inline: true},
			{Name: "Daily Calories", Value: fmt.Sprintf("%d", goals.DailyCalorieGoal), Inline: true},
			{Name: "Daily Protein", Value: fmt.Sprintf("%dg", goals.DailyProteinGoal), Inline: true},
			{Name: "Daily Water", Value: fmt.Sprintf("%doz", goals.DailyWaterGoal), Inline: true},
		},
	}
}

func fastStatusReply(window *fasting.WindowResponse) string {
	if window.Active() {
		return fmt.Sprintf(
			"Fasting for **%.1f hours** (%s, started %s)",
			window.DurationHours, window.FastingType,
			window.StartedAt.Format("Jan 2 15:04 MST"),
		)
	}
	return fmt.Sprintf(
		"Last fast: **%.1f hours** (%s)",
		window.DurationHours, window.FastingType,
	)
}

// MergeGoals overlays the provided overrides on the current goals. A
// nil override keeps the current value.
func MergeGoals(current users.Goals, calories, protein, water *int) users.Goals {
	merged := current
	if calories != nil {
		merged.DailyCalorieGoal = *calories
	}
	if protein != nil {
		merged.DailyProteinGoal = *protein
	}
	if water != nil {
		merged.DailyWaterGoal = *water
	}
	return merged
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToLower(s)
	return strings.ToUpper(s[:1]) + s[1:]
}
