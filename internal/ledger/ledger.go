package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
)

// ErrNoGamesPlayed guards the win-rate division; a player with zero games
// has no defined rate and is excluded from leaderboards.
var ErrNoGamesPlayed = errors.New("no games played")

// Record is one player's win/loss aggregate. The JSON field names are the
// on-disk contract and must not change.
type Record struct {
	Games int `json:"games"`
	Wins  int `json:"wins"`
}

// WinRate returns the percentage of games won.
func (r Record) WinRate() (float64, error) {
	if r.Games == 0 {
		return 0, ErrNoGamesPlayed
	}
	return float64(r.Wins) / float64(r.Games) * 100, nil
}

// FormatWinRate renders the rate to one decimal with a trailing %,
// e.g. 2 wins over 4 games -> "50.0%".
func FormatWinRate(r Record) (string, error) {
	rate, err := r.WinRate()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%.1f%%", rate), nil
}

// Standing is one leaderboard row.
type Standing struct {
	PlayerID int64   `json:"player_id"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"win_rate"`
}

// Ledger is the file-backed match history. The file holds a flat mapping
// of string-encoded player IDs to records; the in-memory API only speaks
// int64 IDs. Every operation is a full read (and on mutation a full
// rewrite) of the file, serialized by one mutex — fine at the tens of
// players this bot serves.
type Ledger struct {
	mu   sync.Mutex
	path string
}

func New(path string) *Ledger {
	return &Ledger{path: path}
}

// RecordMatch adds one played game for the player, counting a win when
// won is true. A missing record starts from zero.
func (l *Ledger) RecordMatch(playerID int64, won bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return err
	}
	apply(records, playerID, won)
	return l.save(records)
}

// RecordResult applies a whole match in a single read-modify-write:
// either every player's record is updated or none is.
func (l *Ledger) RecordResult(winners, losers []int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return err
	}
	for _, id := range winners {
		apply(records, id, true)
	}
	for _, id := range losers {
		apply(records, id, false)
	}
	return l.save(records)
}

// Get returns the player's record; ok is false when they have never
// played.
func (l *Ledger) Get(playerID int64) (Record, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load()
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := records[playerID]
	return rec, ok, nil
}

// All returns every record keyed by player ID. Iteration order is not
// meaningful.
func (l *Ledger) All() (map[int64]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Leaderboard returns standings sorted by win rate, ties broken by games
// played then player ID. Zero-game records are excluded since their rate
// is undefined.
func (l *Ledger) Leaderboard() ([]Standing, error) {
	records, err := l.All()
	if err != nil {
		return nil, err
	}

	standings := make([]Standing, 0, len(records))
	for id, rec := range records {
		rate, err := rec.WinRate()
		if err != nil {
			continue
		}
		standings = append(standings, Standing{
			PlayerID: id,
			Games:    rec.Games,
			Wins:     rec.Wins,
			WinRate:  rate,
		})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].WinRate != standings[j].WinRate {
			return standings[i].WinRate > standings[j].WinRate
		}
		if standings[i].Games != standings[j].Games {
			return standings[i].Games > standings[j].Games
		}
		return standings[i].PlayerID < standings[j].PlayerID
	})
	return standings, nil
}

func apply(records map[int64]Record, playerID int64, won bool) {
	rec := records[playerID]
	rec.Games++
	if won {
		rec.Wins++
	}
	records[playerID] = rec
}

// load reads the whole store. A missing file is an empty ledger; an
// unreadable or corrupt one aborts the operation.
func (l *Ledger) load() (map[int64]Record, error) {
	b, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[int64]Record{}, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	raw := map[string]Record{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse ledger: %w", err)
	}

	records := make(map[int64]Record, len(raw))
	for key, rec := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse ledger key %q: %w", key, err)
		}
		records[id] = rec
	}
	return records, nil
}

// save rewrites the whole store. The payload is marshaled before the
// file is touched so a marshal failure leaves the old contents intact.
func (l *Ledger) save(records map[int64]Record) error {
	raw := make(map[string]Record, len(records))
	for id, rec := range records {
		raw[strconv.FormatInt(id, 10)] = rec
	}

	b, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("create ledger dir: %w", err)
	}
	if err := os.WriteFile(l.path, b, 0644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
