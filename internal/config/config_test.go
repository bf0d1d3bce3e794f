package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresToken(t *testing.T) {
	t.Setenv("FIVESNIGHT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("FIVESNIGHT_TOKEN", "token")
	t.Setenv("FIVESNIGHT_LEDGER_PATH", "")
	t.Setenv("FIVESNIGHT_SESSION_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "match_history.json", cfg.LedgerPath)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 180*time.Second, cfg.SessionTimeout)
}

func TestLoad_BadTimeoutFallsBack(t *testing.T) {
	t.Setenv("FIVESNIGHT_TOKEN", "token")
	t.Setenv("FIVESNIGHT_SESSION_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 180*time.Second, cfg.SessionTimeout)
}
