package discord

import (
	"fmt"

	"github.com/JoshPaulie/fivesnight/internal/hub"
	"github.com/JoshPaulie/fivesnight/internal/ledger"
	"github.com/JoshPaulie/fivesnight/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// Component custom IDs. These round-trip through Discord, so they are
// part of the bot's wire surface.
const (
	idJoin      = "fivesnight_join"
	idLeave     = "fivesnight_leave"
	idFormTeams = "fivesnight_form_teams"
	idCheck     = "fivesnight_check_queue"
	idTeamOne   = "fivesnight_team_one"
	idTeamTwo   = "fivesnight_team_two"
)

// Bot is the Discord adapter. It is the only package that knows about
// interactions, embeds, and buttons; everything it does funnels into hub
// and lobby messages.
type Bot struct {
	session *discordgo.Session
	hub     *hub.Hub
	ledger  *ledger.Ledger
	guildID string
}

func New(token, guildID string, h *hub.Hub, l *ledger.Ledger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		session: session,
		hub:     h,
		ledger:  l,
		guildID: guildID,
	}

	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("logged on", "user", s.State.User.Username, "id", s.State.User.ID)
	})
	session.AddHandler(b.onInteraction)

	return b, nil
}

// Start opens the gateway connection and registers the guild commands.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "create",
			Description: "Create a virtual queue for players to join (creates teams & assigns roles)",
		},
		{
			Name:        "record",
			Description: "Record the last match & indicate who won",
		},
		{
			Name:        "winrates",
			Description: "Get everyone's winrates!",
		},
	}
	for _, cmd := range commands {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.guildID, cmd); err != nil {
			return fmt.Errorf("register command %q: %w", cmd.Name, err)
		}
	}

	logger.Info("commands registered", "guild", b.guildID)
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		switch i.ApplicationCommandData().Name {
		case "create":
			b.handleCreate(s, i)
		case "record":
			b.handleRecord(s, i)
		case "winrates":
			b.handleWinrates(s, i)
		}

	case discordgo.InteractionMessageComponent:
		switch i.MessageComponentData().CustomID {
		case idJoin:
			b.handleJoin(s, i)
		case idLeave:
			b.handleLeave(s, i)
		case idFormTeams:
			b.handleFormTeams(s, i)
		case idCheck:
			b.handleCheckQueue(s, i)
		case idTeamOne:
			b.handleResult(s, i, true)
		case idTeamTwo:
			b.handleResult(s, i, false)
		}
	}
}
