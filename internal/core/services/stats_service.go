/*
 * file: stats_service.go
 * package: services
 * description:
 *     Business logic for recording concluded match outcomes and
 *     updating the match-history / leaderboard side store.
 */

package services

import (
	"time"

	"github.com/sirpent/sirpent-go/internal/core/domain"
	"github.com/sirpent/sirpent-go/internal/core/ports"
)

/*
 * StatsService provides business logic for recording newly concluded
 * outcomes.
 *
 * Fields:
 *   - matches (ports.MatchRepository): Repository used to persist outcomes.
 */
type StatsService struct {
	matches ports.MatchRepository
}

/*
 * NewStatsService creates a new instance of StatsService.
 *
 * Parameters:
 *   - matches (ports.MatchRepository): The repository implementation for match writes.
 *
 * Returns:
 *   - *StatsService: A new service instance configured with the provided repository.
 */
func NewStatsService(matches ports.MatchRepository) *StatsService {
	return &StatsService{matches: matches}
}

/*
 * RecordOutcome persists a concluded game's outcome and updates every
 * named player's win/loss/draw counters. Called once per game, after the
 * Outcome broadcast, never before: recording happens post-hoc and never
 * blocks or participates in game progress.
 *
 * Parameters:
 *   - gameUUID (string): The concluded game's identifier.
 *   - gridTiling (string): The tiling the game was played on.
 *   - players ([]string): Every name admitted to the game.
 *   - winners ([]string): Names remaining in round.snakes at conclusion.
 *   - roundCount (int): The final round number reached.
 *
 * Returns:
 *   - error: An error if persistence fails.
 */
func (s *StatsService) RecordOutcome(gameUUID, gridTiling string, players, winners []string, roundCount int) error {
	winnerSet := make(map[string]struct{}, len(winners))
	for _, w := range winners {
		winnerSet[w] = struct{}{}
	}

	for _, name := range players {
		player, err := s.matches.GetOrCreatePlayer(name)
		if err != nil {
			return err
		}
		switch {
		case len(winners) == 0:
			player.Draws++
		case isWinner(winnerSet, name):
			player.Wins++
		default:
			player.Losses++
		}
		if err := s.matches.UpdatePlayer(player); err != nil {
			return err
		}
	}

	return s.matches.RecordMatch(&domain.MatchRecord{
		GameUUID:    gameUUID,
		GridTiling:  gridTiling,
		Players:     joinNames(players),
		Winners:     joinNames(winners),
		RoundCount:  roundCount,
		ConcludedAt: time.Now(),
	})
}

func isWinner(winnerSet map[string]struct{}, name string) bool {
	_, ok := winnerSet[name]
	return ok
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ","
		}
		out += n
	}
	return out
}
