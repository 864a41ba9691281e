// Package bot is the discord front door: slash commands for the common
// operations plus natural language food logging in any channel the bot
// can read.
package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/forgefit/forge/internal/dashboard"
	"github.com/forgefit/forge/internal/fasting"
	"github.com/forgefit/forge/internal/nutrition"
	"github.com/forgefit/forge/internal/users"
	"github.com/forgefit/forge/internal/weight"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// forgeApi is the slice of the backend client the bot needs.
type forgeApi interface {
	ParseNutrition(ctx context.Context, discordID, text string) (*nutrition.ParseResponse, error)
	NutritionToday(ctx context.Context, discordID string) (*nutrition.TodayResponse, error)
	DeleteNutrition(ctx context.Context, discordID string, id int) (int, error)
	AddWeight(ctx context.Context, req weight.AddRequest) (*weight.Log, error)
	DashboardToday(ctx context.Context, discordID string) (*dashboard.DailySummary, error)
	DashboardWeek(ctx context.Context, discordID string) ([]dashboard.DailySummary, error)
	Goals(ctx context.Context, discordID string) (*users.Goals, error)
	SetGoals(ctx context.Context, discordID string, goals users.Goals) (*users.Goals, error)
	StartFast(ctx context.Context, req fasting.StartRequest) (*fasting.WindowResponse, error)
	EndFast(ctx context.Context, discordID string) (*fasting.WindowResponse, error)
	ActiveFast(ctx context.Context, discordID string) (*fasting.WindowResponse, error)
}

// messageTriggers mark a message as a food logging attempt. Matched
// anywhere in the lowercased content.
var messageTriggers = []string{
	"i had", "i ate", "i drank", "just had", "just ate",
	"i've had", "i've eaten", "ive had", "ive eaten",
	"for breakfast", "for lunch", "for dinner", "for a snack",
	"logged", "log:",
}

type Bot struct {
	session *discordgo.Session
	api     forgeApi

	registeredCommands []*discordgo.ApplicationCommand
}

func New(token string, api forgeApi) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("new discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return &Bot{
		session: session,
		api:     api,
	}, nil
}

func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Infof("forge bot connected as %s", s.State.User.Username)
	})
	b.session.AddHandler(b.onMessage)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	appID := b.session.State.User.ID
	for _, cmd := range slashCommands() {
		registered, err := b.session.ApplicationCommandCreate(appID, "", cmd)
		if err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
		b.registeredCommands = append(b.registeredCommands, registered)
	}
	log.Infof("registered %d slash commands", len(b.registeredCommands))

	return nil
}

func (b *Bot) Stop() error {
	appID := b.session.State.User.ID
	for _, cmd := range b.registeredCommands {
		if err := b.session.ApplicationCommandDelete(appID, "", cmd.ID); err != nil {
			log.Errorf("delete command %s: %s", cmd.Name, err)
		}
	}
	return b.session.Close()
}

func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "weight",
			Description: "Log your weight",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "weight",
					Description: "Your weight in pounds",
					Required:    true,
				},
			},
		},
		{
			Name:        "today",
			Description: "Show today's summary",
		},
		{
			Name:        "week",
			Description: "Show this week's progress",
		},
		{
			Name:        "undo",
			Description: "Delete your last log entry",
		},
		{
			Name:        "goals",
			Description: "View or set your daily goals",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "calories",
					Description: "Daily calorie goal",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "protein",
					Description: "Daily protein goal (grams)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "water",
					Description: "Daily water goal (oz)",
				},
			},
		},
		{
			Name:        "fast",
			Description: "Start, end or check your fasting window",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "action",
					Description: "start / end / status",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "start", Value: "start"},
						{Name: "end", Value: "end"},
						{Name: "status", Value: "status"},
					},
				},
			},
		},
	}
}

// ShouldParseMessage reports whether a message looks like a food
// logging attempt.
func ShouldParseMessage(content string) bool {
	content = strings.ToLower(strings.TrimSpace(content))
	for _, trigger := range messageTriggers {
		if strings.Contains(content, trigger) {
			return true
		}
	}
	return false
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !ShouldParseMessage(m.Content) {
		return
	}

	ctx := context.Background()
	res, err := b.api.ParseNutrition(ctx, m.Author.ID, m.Content)
	if err != nil {
		log.Errorf("parse message from %s: %s", m.Author.ID, err)
		b.react(m, "❌")
		b.reply(m, "Couldn't reach the backend, try again later.")
		return
	}

	if !res.Success {
		b.react(m, "❌")
		b.reply(m, fmt.Sprintf("Couldn't parse that: %s", res.Message))
		return
	}

	b.react(m, "✅")
	b.reply(m, ParsedReply(res.Parsed))
}

func (b *Bot) react(m *discordgo.MessageCreate, emoji string) {
	if err := b.session.MessageReactionAdd(m.ChannelID, m.ID, emoji); err != nil {
		log.Errorf("add reaction: %s", err)
	}
}

func (b *Bot) reply(m *discordgo.MessageCreate, content string) {
	_, err := b.session.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		log.Errorf("send reply: %s", err)
	}
}
