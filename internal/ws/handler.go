package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/JoshPaulie/fivesnight/internal/hub"
	"github.com/JoshPaulie/fivesnight/internal/lobby"
	"github.com/JoshPaulie/fivesnight/internal/types"
	"github.com/coder/websocket"
	"github.com/google/uuid"
)

// Handler upgrades a spectator connection and streams session snapshots
// for one channel's live queue. Watchers are read-only; all mutations go
// through the chat adapter.
func Handler(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := r.URL.Query().Get("channel")
		if channelID == "" {
			http.Error(w, "missing channel", http.StatusBadRequest)
			return
		}

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetSession{ChannelID: channelID, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "no live session", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan lobby.Snapshot, 8)
		clientID := uuid.NewString()

		select {
		case lb.Inbox() <- lobby.Watch{ClientID: clientID, Outbox: out}:
		case <-lb.Done():
			conn.Close(websocket.StatusNormalClosure, "session closed")
			return
		}
		defer func() {
			select {
			case lb.Inbox() <- lobby.Unwatch{ClientID: clientID}:
			case <-lb.Done():
			}
		}()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "SessionSnapshot", Version: snap.Version, Session: &snap.Session}
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		// Reader loop: watchers never send commands, but reading is what
		// notices the peer going away.
		for {
			_, _, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}
