package ledger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "match_history.json"))
}

func TestRecordMatch_WinAndLoss(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.RecordMatch(42, true))
	require.NoError(t, l.RecordMatch(42, false))

	rec, ok, err := l.Get(42)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2, rec.Games)
	assert.Equal(t, 1, rec.Wins)
}

func TestGet_AbsentPlayer(t *testing.T) {
	l := newTestLedger(t)

	_, ok, err := l.Get(999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecordResult_UpdatesBothTeams(t *testing.T) {
	l := newTestLedger(t)

	winners := []int64{1, 2, 3, 4, 5}
	losers := []int64{6, 7, 8, 9, 10}
	require.NoError(t, l.RecordResult(winners, losers))

	for _, id := range winners {
		rec, ok, err := l.Get(id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Record{Games: 1, Wins: 1}, rec)
	}
	for _, id := range losers {
		rec, ok, err := l.Get(id)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, Record{Games: 1, Wins: 0}, rec)
	}
}

func TestRoundTrip_ReproducesMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match_history.json")
	l := New(path)

	require.NoError(t, l.RecordResult([]int64{1, 2}, []int64{3}))
	require.NoError(t, l.RecordMatch(1, true))

	before, err := l.All()
	require.NoError(t, err)

	// A fresh ledger over the same file must see the identical mapping.
	after, err := New(path).All()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMissingFileIsEmptyLedger(t *testing.T) {
	l := newTestLedger(t)

	all, err := l.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCorruptFileAbortsMutation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match_history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	l := New(path)
	err := l.RecordMatch(1, true)
	require.Error(t, err)

	// Nothing was written over the corrupt contents.
	b, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(b))
}

func TestWinRateFormatting(t *testing.T) {
	s, err := FormatWinRate(Record{Games: 4, Wins: 2})
	require.NoError(t, err)
	assert.Equal(t, "50.0%", s)

	s, err = FormatWinRate(Record{Games: 3, Wins: 1})
	require.NoError(t, err)
	assert.Equal(t, "33.3%", s)
}

func TestWinRate_ZeroGamesGuarded(t *testing.T) {
	_, err := Record{}.WinRate()
	require.ErrorIs(t, err, ErrNoGamesPlayed)

	_, err = FormatWinRate(Record{})
	require.ErrorIs(t, err, ErrNoGamesPlayed)
}

func TestLeaderboard_SortedAndGuarded(t *testing.T) {
	l := newTestLedger(t)

	require.NoError(t, l.RecordResult([]int64{1, 2}, []int64{3}))
	require.NoError(t, l.RecordResult([]int64{1}, []int64{2}))

	standings, err := l.Leaderboard()
	require.NoError(t, err)
	require.Len(t, standings, 3)

	assert.Equal(t, int64(1), standings[0].PlayerID)
	assert.InDelta(t, 100.0, standings[0].WinRate, 0.01)
	assert.Equal(t, int64(2), standings[1].PlayerID)
	assert.InDelta(t, 50.0, standings[1].WinRate, 0.01)
	assert.Equal(t, int64(3), standings[2].PlayerID)
	assert.InDelta(t, 0.0, standings[2].WinRate, 0.01)
}

func TestStoreUsesStringKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match_history.json")
	l := New(path)
	require.NoError(t, l.RecordMatch(177131156028784640, true))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"177131156028784640"`)
}
