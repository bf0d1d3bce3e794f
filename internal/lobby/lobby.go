package lobby

import (
	"context"
	"math/rand"
	"time"

	"github.com/JoshPaulie/fivesnight/internal/engine"
	"github.com/JoshPaulie/fivesnight/pkg/logger"
)

type Msg interface{ isLobbyMsg() }

// Do runs one session command and replies with the outcome.
type Do struct {
	Cmd   engine.Command
	Reply chan Result
}

func (Do) isLobbyMsg() {}

// Watch registers a spectator outbox that receives session snapshots.
type Watch struct {
	ClientID string
	Outbox   chan Snapshot
}

func (Watch) isLobbyMsg() {}

type Unwatch struct{ ClientID string }

func (Unwatch) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Result is what a command produced: the events, the session as it stands
// after the command, and the rejection (if any) as an engine sentinel.
type Result struct {
	Events  []engine.Event
	Session engine.Session
	Err     error
}

type Snapshot struct {
	Version int
	Session engine.Session
}

type View struct {
	Version     int
	NumWatchers int
	Session     engine.Session
}

// Recorder is the slice of the match ledger the lobby needs.
type Recorder interface {
	RecordResult(winners, losers []int64) error
}

// Lobby owns one engine.Session. Every mutation flows through the inbox
// and is applied by a single goroutine, which is what serializes joins,
// leaves, team formation and result recording. An inactivity timer
// discards the session (no ledger writes) when nobody interacts with it.
type Lobby struct {
	inbox    chan Msg
	session  engine.Session
	version  int
	watchers map[string]chan Snapshot
	recorder Recorder
	rng      *rand.Rand
	timeout  time.Duration
	expiry   *time.Timer
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewLobby(parent context.Context, initial engine.Session, recorder Recorder, timeout time.Duration) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		inbox:    make(chan Msg, 64),
		session:  initial,
		version:  0,
		watchers: make(map[string]chan Snapshot),
		recorder: recorder,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		timeout:  timeout,
		expiry:   time.NewTimer(timeout),
		ctx:      ctx,
		cancel:   cancel,
	}

	go l.loop()
	return l
}

// Inbox exposes the message channel to the chat/ws adapters and tests.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby has shut down; the hub uses it to spot
// expired sessions.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }

func (l *Lobby) loop() {
	defer l.expiry.Stop()

	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case <-l.expiry.C:
			// Nobody touched the session in time. Discard it as closed
			// with no winner; the ledger is never involved.
			logger.Info("session expired", "organizer", l.session.Organizer.ID)
			l.session.Phase = engine.PhaseClosed
			l.version++
			l.broadcast(Snapshot{Version: l.version, Session: l.session})
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Watch:
				l.watchers[msg.ClientID] = msg.Outbox
				msg.Outbox <- Snapshot{Version: l.version, Session: l.session}

			case Unwatch:
				delete(l.watchers, msg.ClientID)

			case Do:
				l.resetExpiry()
				events, newState, err := engine.Apply(l.session, msg.Cmd, l.rng)
				if err != nil {
					l.reply(msg.Reply, Result{Session: l.session, Err: err})
					break
				}

				if engine.ContainsEvent(events, engine.EvtMatchRecorded) {
					// The ledger write happens before the state commit so a
					// failed write leaves the match still awaiting its result.
					winners := newState.Roster(newState.Winner)
					losers := newState.Roster(other(newState.Winner))
					if err := l.recorder.RecordResult(ids(winners), ids(losers)); err != nil {
						logger.Error("ledger write failed", "error", err)
						l.reply(msg.Reply, Result{Session: l.session, Err: err})
						break
					}
				}

				l.session = newState
				if len(events) > 0 {
					l.version++
					l.broadcast(Snapshot{Version: l.version, Session: l.session})
				}
				l.reply(msg.Reply, Result{Events: events, Session: l.session})

				if engine.ContainsEvent(events, engine.EvtSessionClosed) {
					l.shutdown()
					return
				}

			case GetState:
				msg.Reply <- View{
					Version:     l.version,
					NumWatchers: len(l.watchers),
					Session:     l.session,
				}

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) resetExpiry() {
	if !l.expiry.Stop() {
		select {
		case <-l.expiry.C:
		default:
		}
	}
	l.expiry.Reset(l.timeout)
}

func (l *Lobby) reply(ch chan Result, res Result) {
	if ch == nil {
		return
	}
	select {
	case ch <- res:
	default:
	}
}

func (l *Lobby) shutdown() {
	for id, ch := range l.watchers {
		close(ch)
		delete(l.watchers, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.watchers {
		select {
		case ch <- snap:
			// ok
		default:
			// Watcher is slow/full - drop them.
			close(ch)
			delete(l.watchers, id)
		}
	}
}

func other(t engine.Team) engine.Team {
	if t == engine.TeamOne {
		return engine.TeamTwo
	}
	return engine.TeamOne
}

func ids(players []engine.Player) []int64 {
	out := make([]int64, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}
