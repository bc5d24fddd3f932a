package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsWhenUnset(t *testing.T) {
	clearSirpentEnv(t)

	cfg := Load()
	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "square", cfg.GridTiling)
	assert.Equal(t, 20, cfg.GridWidth)
	assert.Equal(t, 2, cfg.MinimumPlayers)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 10, cfg.DBMaxIdleConns)
	assert.Equal(t, 100, cfg.DBMaxOpenConns)
	assert.Equal(t, time.Hour, cfg.DBConnMaxLifetime())
}

func TestLoadReadsDBPoolOverridesFromEnv(t *testing.T) {
	clearSirpentEnv(t)
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SIRPENT_DB_MAX_IDLE_CONNS", "3")
	t.Setenv("SIRPENT_DB_CONN_MAX_LIFETIME_MINUTES", "15")

	cfg := Load()
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 3, cfg.DBMaxIdleConns)
	assert.Equal(t, 15*time.Minute, cfg.DBConnMaxLifetime())
}

func TestLoadReadsOverridesFromEnv(t *testing.T) {
	clearSirpentEnv(t)
	t.Setenv("SIRPENT_LISTEN_ADDR", ":4000")
	t.Setenv("SIRPENT_GRID_TILING", "hexagon")
	t.Setenv("SIRPENT_MINIMUM_PLAYERS", "4")
	t.Setenv("SIRPENT_MOVE_TIMEOUT_MILLIS", "250")

	cfg := Load()
	assert.Equal(t, ":4000", cfg.ListenAddr)
	assert.Equal(t, "hexagon", cfg.GridTiling)
	assert.Equal(t, 4, cfg.MinimumPlayers)
	assert.Equal(t, uint64(250), cfg.MoveTimeoutMillis)
}

func TestLoadFallsBackOnUnparsableInt(t *testing.T) {
	clearSirpentEnv(t)
	t.Setenv("SIRPENT_MINIMUM_PLAYERS", "not-a-number")

	cfg := Load()
	assert.Equal(t, 2, cfg.MinimumPlayers)
}

func clearSirpentEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				key := kv[:i]
				if hasPrefix(key, "SIRPENT_") || hasPrefix(key, "DB_") {
					t.Setenv(key, "")
					os.Unsetenv(key)
				}
				break
			}
		}
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
