/*
 * file: stats.go
 * package: domain
 * description:
 *     Persistence-facing entities for the match history / leaderboard side
 *     store. Generalised from the teacher's Player/Game GORM models: a
 *     snake game has many winners (or none), not a single opponent pair,
 *     so PlayerRecord tracks wins/losses/draws across arbitrarily many
 *     concurrent opponents rather than assuming two seats.
 */

package domain

import "time"

// PlayerRecord is a player's running win/loss/draw tally, keyed by the
// name assigned at handshake time. Names are never released (see
// nameserver), so PlayerRecord rows are never recycled either.
type PlayerRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Wins      int       `gorm:"default:0" json:"wins"`
	Losses    int       `gorm:"default:0" json:"losses"`
	Draws     int       `gorm:"default:0" json:"draws"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// MatchRecord is a completed game's outcome, recorded only after the
// Outcome broadcast — never while the game is in progress, so a process
// restart mid-game loses nothing the spec promised to keep (persistence of
// in-flight games is an explicit non-goal).
type MatchRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GameUUID    string    `gorm:"size:36;uniqueIndex;not null" json:"game_uuid"`
	GridTiling  string    `gorm:"size:20;not null" json:"grid_tiling"`
	Players     string    `gorm:"type:text;not null" json:"players"`
	Winners     string    `gorm:"type:text;not null" json:"winners"`
	RoundCount  int       `gorm:"not null" json:"round_count"`
	ConcludedAt time.Time `json:"concluded_at"`
}
