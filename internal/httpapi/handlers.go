package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/JoshPaulie/fivesnight/internal/hub"
	"github.com/JoshPaulie/fivesnight/internal/ledger"
	"github.com/JoshPaulie/fivesnight/internal/lobby"
	"github.com/JoshPaulie/fivesnight/pkg/logger"
	"github.com/go-chi/chi/v5"
)

// Leaderboard serves the win-rate standings as JSON. Players with no
// recorded games are excluded since their rate is undefined.
func Leaderboard(l *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		standings, err := l.Leaderboard()
		if err != nil {
			logger.Error("leaderboard read failed", "error", err)
			http.Error(w, "ledger unavailable", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Leaderboard []ledger.Standing `json:"leaderboard"`
			Total       int               `json:"total"`
		}{Leaderboard: standings, Total: len(standings)})
	}
}

// Session serves a point-in-time view of a channel's live queue.
func Session(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID := chi.URLParam(r, "channelID")

		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.GetSession{ChannelID: channelID, Reply: reply}
		lb := <-reply
		if lb == nil {
			http.Error(w, "no live session", http.StatusNotFound)
			return
		}

		viewReply := make(chan lobby.View, 1)
		select {
		case lb.Inbox() <- lobby.GetState{Reply: viewReply}:
		case <-lb.Done():
			http.Error(w, "no live session", http.StatusNotFound)
			return
		}

		select {
		case view := <-viewReply:
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(view.Session)
		case <-lb.Done():
			http.Error(w, "no live session", http.StatusNotFound)
		}
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
