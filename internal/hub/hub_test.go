package hub

import (
	"context"
	"testing"
	"time"

	"github.com/JoshPaulie/fivesnight/internal/engine"
	"github.com/JoshPaulie/fivesnight/internal/lobby"
)

type nopRecorder struct{}

func (nopRecorder) RecordResult(winners, losers []int64) error { return nil }

func organizer() engine.Player {
	return engine.Player{ID: 1, Name: "organizer"}
}

func TestHub_Start_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, nopRecorder{}, time.Minute)
	reply := make(chan *lobby.Lobby, 1)

	h.Inbox() <- StartSession{ChannelID: "general", Organizer: organizer(), Reply: reply}
	lb1 := <-reply

	h.Inbox() <- GetSession{ChannelID: "general", Reply: reply}
	lb2 := <-reply

	if lb1 == nil || lb2 == nil || lb1 != lb2 {
		t.Fatalf("expected same session pointer")
	}
}

func TestHub_GetUnknownChannelIsNil(t *testing.T) {
	h := NewHub(context.Background(), nopRecorder{}, time.Minute)
	reply := make(chan *lobby.Lobby, 1)

	h.Inbox() <- GetSession{ChannelID: "nowhere", Reply: reply}
	if lb := <-reply; lb != nil {
		t.Fatalf("expected nil for unknown channel, got %v", lb)
	}
}

func TestHub_StartReplacesLiveSession(t *testing.T) {
	h := NewHub(context.Background(), nopRecorder{}, time.Minute)
	reply := make(chan *lobby.Lobby, 1)

	h.Inbox() <- StartSession{ChannelID: "general", Organizer: organizer(), Reply: reply}
	old := <-reply

	h.Inbox() <- StartSession{ChannelID: "general", Organizer: organizer(), Reply: reply}
	fresh := <-reply

	if old == fresh {
		t.Fatalf("expected a fresh session")
	}
	select {
	case <-old.Done():
	case <-time.After(time.Second):
		t.Fatalf("abandoned session should shut down")
	}

	h.Inbox() <- GetSession{ChannelID: "general", Reply: reply}
	if lb := <-reply; lb != fresh {
		t.Fatalf("expected the fresh session to be live")
	}
}

func TestHub_PrunesExpiredSession(t *testing.T) {
	h := NewHub(context.Background(), nopRecorder{}, 30*time.Millisecond)
	reply := make(chan *lobby.Lobby, 1)

	h.Inbox() <- StartSession{ChannelID: "general", Organizer: organizer(), Reply: reply}
	lb := <-reply

	select {
	case <-lb.Done():
	case <-time.After(time.Second):
		t.Fatalf("session should expire")
	}

	h.Inbox() <- GetSession{ChannelID: "general", Reply: reply}
	if got := <-reply; got != nil {
		t.Fatalf("expired session should be pruned, got %v", got)
	}
}
