/*
 * file: ports.go
 * package: ports
 * description:
 * 			This file defines the interfaces that form the boundaries of the application's core logic (hexagon).
 * 			These ports allow the core services to be decoupled from specific infrastructure implementations
 */

package ports

import "github.com/sirpent/sirpent-go/internal/core/domain"

// MatchRepository defines the contract for recording completed games.
// Implementations persist only concluded outcomes; in-flight game state is
// never written here (cross-restart game persistence is out of scope).
type MatchRepository interface {
	RecordMatch(match *domain.MatchRecord) error
	GetOrCreatePlayer(name string) (*domain.PlayerRecord, error)
	UpdatePlayer(player *domain.PlayerRecord) error
}
