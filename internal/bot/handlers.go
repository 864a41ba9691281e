package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/forgeapi"
	"github.com/forgefit/forge/internal/weight"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx := context.Background()
	data := i.ApplicationCommandData()
	discordID := interactionUserID(i)
	if discordID == "" {
		log.Errorf("interaction %s without a user", data.Name)
		return
	}

	switch data.Name {
	case "weight":
		b.handleWeightCommand(ctx, s, i, discordID)
	case "today":
		b.handleTodayCommand(ctx, s, i, discordID)
	case "week":
		b.handleWeekCommand(ctx, s, i, discordID)
	case "undo":
		b.handleUndoCommand(ctx, s, i, discordID)
	case "goals":
		b.handleGoalsCommand(ctx, s, i, discordID)
	case "fast":
		b.handleFastCommand(ctx, s, i, discordID)
	default:
		log.Warnf("unknown command: %s", data.Name)
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func (b *Bot) handleWeightCommand(
	ctx context.Context,
	s *discordgo.Session, i *discordgo.InteractionCreate,
	discordID string,
) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		respondEphemeral(s, i, "Weight value missing.")
		return
	}
	weightLbs := options[0].FloatValue()

	_, err := b.api.AddWeight(ctx, weight.AddRequest{
		DiscordID: discordID,
		Weight:    weightLbs,
	})
	if err != nil {
		log.Errorf("add weight for %s: %s", discordID, err)
		respondEphemeral(s, i, "Failed to log weight, try again later.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf("Logged weight: **%g lbs**", weightLbs))
}

func (b *Bot) handleTodayCommand(
	ctx context.Context,
	s *discordgo.Session, i *discordgo.InteractionCreate,
	discordID string,
) {
	summary, err := b.api.DashboardToday(ctx, discordID)
	if err != nil {
		log.Errorf("dashboard today for %s: %s", discordID, err)
		respondEphemeral(s, i, "Failed to fetch today's summary.")
		return
	}
	respondEmbed(s, i, todayEmbed(summary))
}

func (b *Bot) handleWeekCommand(
	ctx context.Context,
	s *discordgo.Session, i *discordgo.InteractionCreate,
	discordID string,
) {
	week, err := b.api.DashboardWeek(ctx, discordID)
	if err != nil {
		log.Errorf("dashboard week for %s: %s", discordID, err)
		respondEphemeral(s, i, "Failed to fetch this week's progress.")
		return
	}
	respondEmbed(s, i, weekEmbed(week))
}

func (b *Bot) handleUndoCommand(
	ctx context.Context,
	s *discordgo.Session, i *discordgo.InteractionCreate,
	discordID string,
) {
	today, err := b.api.NutritionToday(ctx, discordID)
	if err != nil {
		log.Errorf("nutrition today for %s: %s", discordID, err)
		respondEphemeral(s, i, "Failed to fetch today's logs.")
		return
	}
	if len(today.Logs) == 0 {
		respondEphemeral(s, i, "No logs to undo today.")
		return
	}

	lastLog := today.Logs[len(today.Logs)-1]
	if _, err := b.api.DeleteNutrition(ctx, discordID, lastLog.ID); err != nil {
		log.Errorf("delete nutrition log %d for %s: %s", lastLog.ID, discordID, err)
		respondEphemeral(s, i, "Failed to delete the last log.")
		return
	}

	calories := 0
	if lastLog.Calories != nil {
		calories = *lastLog.Calories
	}
	respondEphemeral(s, i, fmt.Sprintf(
		"Deleted: **%s** (%d cal)", lastLog.Description, calories,
	))
}

func (b *Bot) handleGoalsCommand(
	ctx context.Context,
	s *discordgo.Session, i *discordgo.InteractionCreate,
	discordID string,
) {
	var calories, protein, water *int
	for _, opt := range i.ApplicationCommandData().Options {
		value := int(opt.IntValue())
		switch opt.Name {
		case "calories":
			calories = &value
		case "protein":
			protein = &value
		case "water":
			water = &value
		}
	}

	current, err := b.api.Goals(ctx, discordID)
	if err != nil {
		log.Errorf("get goals for %s: %s", discordID, err)
		respondEphemeral(s, i, "Failed to fetch goals.")
		return
	}

	if calories == nil && protein == nil && water == nil {
		respondEphemeralEmbed(s, i, goalsEmbed(current))
		return
	}

	updated, err := b.api.SetGoals(ctx, discordID, MergeGoals(*current, calories, protein, water))
	if err != nil {
		log.Errorf("set goals for %s: %s", discordID, err)
		respondEphemeral(s, i, "Failed to update goals.")
		return
	}

	respondEphemeral(s, i, fmt.Sprintf(
		"Goals updated:\n- Calories: %d\n- Protein: %dg\n- Water: %doz",
		updated.DailyCalorieGoal, updated.DailyProteinGoal, updated.DailyWaterGoal,
	))
}

func (b *Bot) handleFastCommand(
	ctx context.Context,
	s *discordgo.Session, i *discordgo.InteractionCreate,
	discordID string,
) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		respondEphemeral(s, i, "Fast action missing.")
		return
	}

	switch action := options[0].StringValue(); action {
	case "start":
		window, err := b.api.StartFast(ctx, fasting.StartRequest{DiscordID: discordID})
		if errors.Is(err, forgeapi.ErrFastActive) {
			respondEphemeral(s, i, "A fast is already active, end it first.")
			return
		}
		if err != nil {
			log.Errorf("start fast for %s: %s", discordID, err)
			respondEphemeral(s, i, "Failed to start the fast.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf(
			"Fast started (%s). Hold the line.", window.FastingType,
		))
	case "end":
		window, err := b.api.EndFast(ctx, discordID)
		if errors.Is(err, forgeapi.ErrNotFound) {
			respondEphemeral(s, i, "No active fast to end.")
			return
		}
		if err != nil {
			log.Errorf("end fast for %s: %s", discordID, err)
			respondEphemeral(s, i, "Failed to end the fast.")
			return
		}
		respondEphemeral(s, i, fmt.Sprintf(
			"Fast ended after **%.1f hours**.", window.DurationHours,
		))
	case "status":
		window, err := b.api.ActiveFast(ctx, discordID)
		if errors.Is(err, forgeapi.ErrNotFound) {
			respondEphemeral(s, i, "No active fast.")
			return
		}
		if err != nil {
			log.Errorf("active fast for %s: %s", discordID, err)
			respondEphemeral(s, i, "Failed to check fast status.")
			return
		}
		respondEphemeral(s, i, fastStatusReply(window))
	default:
		respondEphemeral(s, i, fmt.Sprintf("Unknown fast action: %s", action))
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("interaction respond: %s", err)
	}
}

func respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Errorf("interaction respond: %s", err)
	}
}

func respondEphemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("interaction respond: %s", err)
	}
}
