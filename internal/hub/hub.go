package hub

import (
	"context"
	"time"

	"github.com/JoshPaulie/fivesnight/internal/engine"
	"github.com/JoshPaulie/fivesnight/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

// StartSession opens a new queue in a channel. Any prior live session for
// that channel is abandoned, matching the bot's observed behavior: an
// unrecorded match is simply discarded when a new queue starts.
type StartSession struct {
	ChannelID string
	Organizer engine.Player
	Reply     chan *lobby.Lobby
}

type GetSession struct {
	ChannelID string
	Reply     chan *lobby.Lobby
}

type RemoveSession struct {
	ChannelID string
}

type ShutdownHub struct{}

func (StartSession) isHubMsg()  {}
func (GetSession) isHubMsg()    {}
func (RemoveSession) isHubMsg() {}
func (ShutdownHub) isHubMsg()   {}

// Hub owns the live sessions, one per channel. Like the lobby it is an
// actor: the map is only touched by the hub goroutine.
type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*lobby.Lobby
	recorder lobby.Recorder
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, recorder lobby.Recorder, timeout time.Duration) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*lobby.Lobby),
		recorder: recorder,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case StartSession:
				if old := h.live(msg.ChannelID); old != nil {
					old.Inbox() <- lobby.Shutdown{}
				}
				lb := lobby.NewLobby(h.ctx, engine.NewSession(msg.Organizer), h.recorder, h.timeout)
				h.sessions[msg.ChannelID] = lb
				msg.Reply <- lb

			case GetSession:
				msg.Reply <- h.live(msg.ChannelID) // May be nil

			case RemoveSession:
				delete(h.sessions, msg.ChannelID)

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// live returns the channel's session, pruning it first if it already shut
// down (recorded, discarded, or expired).
func (h *Hub) live(channelID string) *lobby.Lobby {
	lb := h.sessions[channelID]
	if lb == nil {
		return nil
	}
	select {
	case <-lb.Done():
		delete(h.sessions, channelID)
		return nil
	default:
		return lb
	}
}

func (h *Hub) shutdown() {
	for _, lb := range h.sessions {
		lb.Inbox() <- lobby.Shutdown{}
	}
	clear(h.sessions)
	h.cancel()
}
