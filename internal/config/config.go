/*
 * file: config.go
 * package: config
 * description:
 *     Process configuration loaded from the environment, with an
 *     optional .env file for local development. Every setting, including
 *     the database connection and pool settings the database adapter
 *     receives through Config, is read with os.Getenv and falls back to a
 *     default when unset or unparsable.
 */

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every value the composition root needs to start listening
// and to run games, sourced entirely from the environment.
type Config struct {
	ListenAddr string

	GridTiling string
	GridWidth  int
	GridHeight int

	MoveTimeoutMillis      uint64
	HandshakeTimeoutMillis uint64

	MinimumPlayers int
	MaxFrameBytes  int

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	DBMaxIdleConns        int
	DBMaxOpenConns        int
	DBConnMaxLifetimeMins int
}

// Load reads a .env file if one is present (silently ignoring its
// absence, same as the teacher's adapters never require one), then
// populates Config from the process environment, falling back to
// defaults for anything unset.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		ListenAddr: getString("SIRPENT_LISTEN_ADDR", ":9999"),

		GridTiling: getString("SIRPENT_GRID_TILING", "square"),
		GridWidth:  getInt("SIRPENT_GRID_WIDTH", 20),
		GridHeight: getInt("SIRPENT_GRID_HEIGHT", 20),

		MoveTimeoutMillis:      getUint64("SIRPENT_MOVE_TIMEOUT_MILLIS", 1000),
		HandshakeTimeoutMillis: getUint64("SIRPENT_HANDSHAKE_TIMEOUT_MILLIS", 5000),

		MinimumPlayers: getInt("SIRPENT_MINIMUM_PLAYERS", 2),
		MaxFrameBytes:  getInt("SIRPENT_MAX_FRAME_BYTES", 1<<20),

		DBHost:     getString("DB_HOST", "localhost"),
		DBPort:     getString("DB_PORT", "5432"),
		DBUser:     getString("DB_USER", "postgres"),
		DBPassword: getString("DB_PASSWORD", ""),
		DBName:     getString("DB_NAME", "sirpent"),

		DBMaxIdleConns:        getInt("SIRPENT_DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:        getInt("SIRPENT_DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetimeMins: getInt("SIRPENT_DB_CONN_MAX_LIFETIME_MINUTES", 60),
	}
}

// DBConnMaxLifetime returns the configured connection max-lifetime as a
// time.Duration.
func (c Config) DBConnMaxLifetime() time.Duration {
	return time.Duration(c.DBConnMaxLifetimeMins) * time.Minute
}

// MoveTimeout returns the configured move timeout as a time.Duration.
func (c Config) MoveTimeout() time.Duration {
	return time.Duration(c.MoveTimeoutMillis) * time.Millisecond
}

// HandshakeTimeout returns the configured handshake timeout as a
// time.Duration.
func (c Config) HandshakeTimeout() time.Duration {
	return time.Duration(c.HandshakeTimeoutMillis) * time.Millisecond
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getUint64(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
