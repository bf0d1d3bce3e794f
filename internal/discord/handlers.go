package discord

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/JoshPaulie/fivesnight/internal/engine"
	"github.com/JoshPaulie/fivesnight/internal/hub"
	"github.com/JoshPaulie/fivesnight/internal/lobby"
	"github.com/JoshPaulie/fivesnight/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const (
	colorGreen   = 0x57F287
	colorRed     = 0xED4245
	colorBlurple = 0x5865F2
	colorGreyple = 0x99AAB5
	colorBlue    = 0x3498DB
)

func (b *Bot) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	organizer := interactionPlayer(i)

	reply := make(chan *lobby.Lobby, 1)
	b.hub.Inbox() <- hub.StartSession{ChannelID: i.ChannelID, Organizer: organizer, Reply: reply}
	<-reply

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "A 5v5 is starting!",
			Description: fmt.Sprintf("Organized by **%s**", organizer.Name),
			Color:       colorBlurple,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Join", Style: discordgo.SuccessButton, CustomID: idJoin},
				discordgo.Button{Label: "Leave", Style: discordgo.DangerButton, CustomID: idLeave},
				discordgo.Button{Label: "Create Teams", Style: discordgo.PrimaryButton, CustomID: idFormTeams},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Check Queue", Style: discordgo.SecondaryButton, CustomID: idCheck},
			}},
		},
	})
}

func (b *Bot) handleJoin(s *discordgo.Session, i *discordgo.InteractionCreate) {
	lb := b.liveSession(i.ChannelID)
	if lb == nil {
		b.ephemeralText(s, i, "There's no open queue in this channel.")
		return
	}

	res := b.do(lb, engine.Command{Type: engine.CmdJoin, Actor: interactionPlayer(i)})
	if res.Err != nil {
		b.ephemeralText(s, i, "The queue is no longer open.")
		return
	}
	if len(res.Events) == 0 {
		// Already queued, nothing to do.
		b.ack(s, i)
		return
	}

	b.ephemeralEmbed(s, i, &discordgo.MessageEmbed{
		Title:       "You've joined the queue!",
		Description: fmt.Sprintf("Current queue size: (%d)", len(res.Session.Queue)),
		Color:       colorGreen,
	})
}

func (b *Bot) handleLeave(s *discordgo.Session, i *discordgo.InteractionCreate) {
	lb := b.liveSession(i.ChannelID)
	if lb == nil {
		b.ephemeralText(s, i, "There's no open queue in this channel.")
		return
	}

	res := b.do(lb, engine.Command{Type: engine.CmdLeave, Actor: interactionPlayer(i)})
	if res.Err != nil {
		b.ephemeralText(s, i, "The queue is no longer open.")
		return
	}
	if len(res.Events) == 0 {
		b.ack(s, i)
		return
	}

	b.ephemeralEmbed(s, i, &discordgo.MessageEmbed{
		Title: "You've left the queue.",
		Color: colorRed,
	})
}

func (b *Bot) handleFormTeams(s *discordgo.Session, i *discordgo.InteractionCreate) {
	lb := b.liveSession(i.ChannelID)
	if lb == nil {
		b.ephemeralText(s, i, "There's no open queue in this channel.")
		return
	}

	res := b.do(lb, engine.Command{Type: engine.CmdFormTeams, Actor: interactionPlayer(i)})
	if errors.Is(res.Err, engine.ErrPermissionDenied) {
		b.ephemeralText(s, i, fmt.Sprintf("Only the organizer (%s) can finish the queue", res.Session.Organizer.Name))
		return
	}
	if res.Err != nil {
		b.ephemeralText(s, i, "The queue is no longer open.")
		return
	}
	if engine.ContainsEvent(res.Events, engine.EvtEmptyTeam) {
		b.respond(s, i, &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "This queue was discarded.",
				Description: "One or more teams had 0 members.",
				Color:       colorGreyple,
			}},
		})
		return
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{
			teamEmbed("Team 1", res.Session.TeamOne, colorBlue),
			teamEmbed("Team 2", res.Session.TeamTwo, colorRed),
			{
				Title:       "Don't forget to record which team won 🏆",
				Description: "After the game, use the `/record` command to log the outcome of the match!",
				Color:       colorBlurple,
				Footer:      &discordgo.MessageEmbedFooter{Text: "Everyone's 5v5 winrates can be checked with /winrates"},
			},
		},
	})
}

func (b *Bot) handleCheckQueue(s *discordgo.Session, i *discordgo.InteractionCreate) {
	lb := b.liveSession(i.ChannelID)
	if lb == nil {
		b.ephemeralText(s, i, "There's no open queue in this channel.")
		return
	}

	view, ok := b.view(lb)
	if !ok {
		b.ephemeralText(s, i, "There's no open queue in this channel.")
		return
	}

	queueLen := len(view.Session.Queue)
	title := fmt.Sprintf("There are (%d) people in the queue", queueLen)
	if queueLen == 1 {
		title = "There is (1) person in the queue"
	}

	var bullets strings.Builder
	for _, p := range view.Session.Queue {
		fmt.Fprintf(&bullets, "- %s\n", p.Name)
	}

	b.ephemeralEmbed(s, i, &discordgo.MessageEmbed{
		Title:       title,
		Description: bullets.String(),
		Color:       colorGreyple,
	})
}

func (b *Bot) handleRecord(s *discordgo.Session, i *discordgo.InteractionCreate) {
	lb := b.liveSession(i.ChannelID)
	if lb == nil || !b.awaitingResult(lb) {
		b.respond(s, i, &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title: "There hasn't been a match played recently.",
				Color: colorGreyple,
			}},
		})
		return
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{
			Title: "Who won the last game?",
			Color: colorGreyple,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Team One", Style: discordgo.PrimaryButton, CustomID: idTeamOne},
				discordgo.Button{Label: "Team Two", Style: discordgo.DangerButton, CustomID: idTeamTwo},
			}},
		},
	})
}

func (b *Bot) handleResult(s *discordgo.Session, i *discordgo.InteractionCreate, teamOneWon bool) {
	winner := engine.TeamTwo
	if teamOneWon {
		winner = engine.TeamOne
	}

	lb := b.liveSession(i.ChannelID)
	if lb == nil {
		b.ephemeralText(s, i, "There hasn't been a match played recently.")
		return
	}

	res := b.do(lb, engine.Command{Type: engine.CmdRecordResult, Winner: winner})
	if errors.Is(res.Err, engine.ErrNoActiveMatch) {
		b.ephemeralText(s, i, "There hasn't been a match played recently.")
		return
	}
	if res.Err != nil {
		logger.Error("record result failed", "error", res.Err)
		b.ephemeralText(s, i, "Couldn't save the match result. Nothing was recorded; try again.")
		return
	}

	names := make([]string, 0, 5)
	for _, p := range res.Session.Roster(winner) {
		names = append(names, p.Name)
	}

	// Replace the "who won" message so the match can't be recorded twice.
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Match recorded! GG!",
				Description: fmt.Sprintf("Congrats to %s 🏆", strings.Join(names, ", ")),
				Color:       colorGreen,
			}},
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		logger.Warn("interaction respond failed", "error", err)
	}
}

func (b *Bot) handleWinrates(s *discordgo.Session, i *discordgo.InteractionCreate) {
	standings, err := b.ledger.Leaderboard()
	if err != nil {
		logger.Error("leaderboard read failed", "error", err)
		b.ephemeralText(s, i, "Couldn't read the match history.")
		return
	}
	if len(standings) == 0 {
		b.respond(s, i, &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title: "No games have been played yet.",
				Color: colorGreyple,
			}},
		})
		return
	}

	embed := &discordgo.MessageEmbed{Title: "Match history!", Color: colorBlurple}
	for _, st := range standings {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  b.displayName(s, st.PlayerID),
			Value: fmt.Sprintf("%d/%d (%.1f%%)", st.Wins, st.Games, st.WinRate),
		})
	}

	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

// liveSession fetches the channel's session, nil when none is live.
func (b *Bot) liveSession(channelID string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	b.hub.Inbox() <- hub.GetSession{ChannelID: channelID, Reply: reply}
	return <-reply
}

// do sends a command to the lobby and waits for its reply, guarding
// against a lobby that shut down mid-flight.
func (b *Bot) do(lb *lobby.Lobby, cmd engine.Command) lobby.Result {
	reply := make(chan lobby.Result, 1)
	select {
	case lb.Inbox() <- lobby.Do{Cmd: cmd, Reply: reply}:
	case <-lb.Done():
		return lobby.Result{Err: engine.ErrNoActiveMatch}
	}

	select {
	case res := <-reply:
		return res
	case <-lb.Done():
		return lobby.Result{Err: engine.ErrNoActiveMatch}
	case <-time.After(5 * time.Second):
		return lobby.Result{Err: engine.ErrNoActiveMatch}
	}
}

func (b *Bot) awaitingResult(lb *lobby.Lobby) bool {
	view, ok := b.view(lb)
	return ok && view.Session.Phase == engine.PhaseAwaitingResult
}

// view fetches a race-free session snapshot, guarding against a lobby
// that shut down mid-flight.
func (b *Bot) view(lb *lobby.Lobby) (lobby.View, bool) {
	reply := make(chan lobby.View, 1)
	select {
	case lb.Inbox() <- lobby.GetState{Reply: reply}:
	case <-lb.Done():
		return lobby.View{}, false
	}
	select {
	case view := <-reply:
		return view, true
	case <-lb.Done():
		return lobby.View{}, false
	}
}

func (b *Bot) displayName(s *discordgo.Session, playerID int64) string {
	id := strconv.FormatInt(playerID, 10)
	if member, err := s.State.Member(b.guildID, id); err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		return member.User.Username
	}
	if member, err := s.GuildMember(b.guildID, id); err == nil {
		if member.Nick != "" {
			return member.Nick
		}
		return member.User.Username
	}
	return id
}

func teamEmbed(title string, team []engine.RoleAssignment, color int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Title: title, Color: color}
	for _, ra := range team {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  ra.Player.Name,
			Value: string(ra.Role),
		})
	}
	return embed
}

func interactionPlayer(i *discordgo.InteractionCreate) engine.Player {
	user := i.User
	if i.Member != nil {
		user = i.Member.User
	}
	id, _ := strconv.ParseInt(user.ID, 10, 64)
	name := user.Username
	if i.Member != nil && i.Member.Nick != "" {
		name = i.Member.Nick
	}
	return engine.Player{ID: id, Name: name}
}

func (b *Bot) respond(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logger.Warn("interaction respond failed", "error", err)
	}
}

func (b *Bot) ephemeralEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	b.respond(s, i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
		Flags:  discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) ephemeralText(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	b.respond(s, i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

// ack acknowledges a component press without sending anything visible.
func (b *Bot) ack(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		logger.Warn("interaction ack failed", "error", err)
	}
}
