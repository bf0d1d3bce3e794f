package engine

import (
	"errors"
	"math/rand"
	"slices"
)

var ErrPermissionDenied = errors.New("only the organizer can do that")
var ErrQueueNotOpen = errors.New("queue is not open")
var ErrNoActiveMatch = errors.New("no match is awaiting a result")
var ErrUnsupportedCommand = errors.New("unsupported command")

type Team string

const (
	TeamOne Team = "one"
	TeamTwo Team = "two"
)

type Phase string

const (
	PhaseOpen Phase = "open"
	// PhaseTeamsFormed sits between the split and role assignment. A
	// single FormTeams command passes through it, so observers only ever
	// see AwaitingResult or Closed afterwards.
	PhaseTeamsFormed    Phase = "teams_formed"
	PhaseAwaitingResult Phase = "awaiting_result"
	PhaseClosed         Phase = "closed"
)

// Player is an opaque platform identity. Name is display-only and never
// used for comparisons.
type Player struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type RoleAssignment struct {
	Player Player `json:"player"`
	Role   Role   `json:"role"`
}

// Session is one queue-to-match lifecycle. It is a value: Apply never
// mutates its input, it returns the successor state.
type Session struct {
	Organizer Player           `json:"organizer"`
	Queue     []Player         `json:"queue"`
	Phase     Phase            `json:"phase"`
	TeamOne   []RoleAssignment `json:"team_one,omitempty"`
	TeamTwo   []RoleAssignment `json:"team_two,omitempty"`
	Winner    Team             `json:"winner,omitempty"`
}

type CommandType string

const (
	CmdJoin         CommandType = "Join"
	CmdLeave        CommandType = "Leave"
	CmdFormTeams    CommandType = "FormTeams"
	CmdRecordResult CommandType = "RecordResult"
)

type Command struct {
	Type   CommandType
	Actor  Player
	Winner Team // RecordResult only
}

type EventType string

const (
	EvtPlayerJoined  EventType = "PlayerJoined"
	EvtPlayerLeft    EventType = "PlayerLeft"
	EvtTeamsFormed   EventType = "TeamsFormed"
	EvtEmptyTeam     EventType = "EmptyTeam"
	EvtMatchRecorded EventType = "MatchRecorded"
	EvtSessionClosed EventType = "SessionClosed"
)

type Event struct {
	Type   EventType
	Player Player
	Winner Team
}

// Apply runs one command against the session and returns the events it
// produced plus the successor state. The caller owns the rng so tests can
// seed it. Idempotent no-ops (joining twice, leaving while absent) return
// no events and no error.
func Apply(s Session, cmd Command, rng *rand.Rand) ([]Event, Session, error) {
	newState := s

	switch cmd.Type {
	case CmdJoin:
		if s.Phase != PhaseOpen {
			return nil, s, ErrQueueNotOpen
		}
		if s.Queued(cmd.Actor.ID) {
			return nil, s, nil
		}
		newState.Queue = append(slices.Clone(s.Queue), cmd.Actor)
		return []Event{{Type: EvtPlayerJoined, Player: cmd.Actor}}, newState, nil

	case CmdLeave:
		if s.Phase != PhaseOpen {
			return nil, s, ErrQueueNotOpen
		}
		if !s.Queued(cmd.Actor.ID) {
			return nil, s, nil
		}
		newState.Queue = slices.DeleteFunc(slices.Clone(s.Queue), func(p Player) bool {
			return p.ID == cmd.Actor.ID
		})
		return []Event{{Type: EvtPlayerLeft, Player: cmd.Actor}}, newState, nil

	case CmdFormTeams:
		if s.Phase != PhaseOpen {
			return nil, s, ErrQueueNotOpen
		}
		if cmd.Actor.ID != s.Organizer.ID {
			return nil, s, ErrPermissionDenied
		}

		shuffled := slices.Clone(s.Queue)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		// Floor split: team two takes the first half, so on odd queues the
		// extra player lands on team one. Order carries no meaning after
		// the shuffle.
		half := len(shuffled) / 2
		teamTwo := shuffled[:half]
		teamOne := shuffled[half:]

		if len(teamOne) == 0 || len(teamTwo) == 0 {
			newState.Phase = PhaseClosed
			return []Event{{Type: EvtEmptyTeam}, {Type: EvtSessionClosed}}, newState, nil
		}

		newState.TeamOne = AssignRoles(teamOne, rng)
		newState.TeamTwo = AssignRoles(teamTwo, rng)
		newState.Phase = PhaseAwaitingResult
		return []Event{{Type: EvtTeamsFormed}}, newState, nil

	case CmdRecordResult:
		if s.Phase != PhaseAwaitingResult {
			return nil, s, ErrNoActiveMatch
		}
		if cmd.Winner != TeamOne && cmd.Winner != TeamTwo {
			return nil, s, ErrUnsupportedCommand
		}
		newState.Winner = cmd.Winner
		newState.Phase = PhaseClosed
		events := []Event{
			{Type: EvtMatchRecorded, Winner: cmd.Winner},
			{Type: EvtSessionClosed},
		}
		return events, newState, nil

	default:
		return nil, s, ErrUnsupportedCommand
	}
}

// Queued reports whether the player is in the queue.
func (s Session) Queued(id int64) bool {
	return slices.ContainsFunc(s.Queue, func(p Player) bool { return p.ID == id })
}

// Roster returns the players on a team, without their role assignments.
func (s Session) Roster(t Team) []Player {
	var assigned []RoleAssignment
	if t == TeamOne {
		assigned = s.TeamOne
	} else {
		assigned = s.TeamTwo
	}
	players := make([]Player, 0, len(assigned))
	for _, ra := range assigned {
		players = append(players, ra.Player)
	}
	return players
}

// Live reports whether the session still accepts commands.
func (s Session) Live() bool {
	return s.Phase != PhaseClosed
}
