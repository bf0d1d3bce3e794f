package httpapi

import (
	"net/http"

	"github.com/JoshPaulie/fivesnight/internal/hub"
	"github.com/JoshPaulie/fivesnight/internal/ledger"
	"github.com/JoshPaulie/fivesnight/internal/ws"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *hub.Hub, l *ledger.Ledger) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", Healthz)
	r.Get("/leaderboard", Leaderboard(l))
	r.Get("/sessions/{channelID}", Session(h))
	r.Get("/ws", ws.Handler(h))
	return r
}
