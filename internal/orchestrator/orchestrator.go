/*
 * file: orchestrator.go
 * package: orchestrator
 * description:
 *     Drives one game start to finish: admits players, broadcasts Game,
 *     loops rounds until concluded, broadcasts Outcome. A straight-line
 *     routine, not a hand-rolled state machine: the concurrent rewrite of
 *     a futures-driven state enum needs no explicit state variant.
 */

package orchestrator

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sirpent/sirpent-go/internal/core/domain"
	"github.com/sirpent/sirpent-go/internal/engine"
	"github.com/sirpent/sirpent-go/internal/geometry"
	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/sirpent/sirpent-go/internal/relay"
	"github.com/sirpent/sirpent-go/internal/room"
)

// Config carries everything a single game run needs beyond its player and
// spectator rooms.
type Config struct {
	Grid      geometry.Grid
	MoveTimeout time.Duration
}

// PlayerName resolves a ClientId to the name assigned during handshake.
// The orchestrator never computes names itself.
type PlayerName func(hub.ClientId) (string, bool)

// Run executes Start -> Round -> End for one game and returns the final,
// concluded Round and the UUID it was played under.
func Run(ctx context.Context, h *hub.RelayHub, rng *rand.Rand, cfg Config, players, spectators *room.Room, name PlayerName) (*domain.Round, string, error) {
	tiling, err := geometry.Lookup(cfg.Grid.Tiling)
	if err != nil {
		return nil, "", err
	}

	gameUUID := uuid.NewString()
	round := domain.NewRound()
	var playerNames []string

	for _, id := range players.Members() {
		n, ok := name(id)
		if !ok {
			continue
		}
		round.Snakes[n] = &domain.Snake{Segments: []geometry.Vector{tiling.RandomCell(cfg.Grid, rng)}}
		playerNames = append(playerNames, n)
	}

	engine.SeedFood(tiling, cfg.Grid, round, rng)

	info := domain.GameInfo{UUID: gameUUID, Grid: cfg.Grid, Players: playerNames}
	broadcastJointly(players, spectators, message.Game{Game: info})

	for {
		broadcastJointly(players, spectators, message.Round{Round: *round, GameUUID: gameUUID})

		moves := collectMoves(ctx, h, players, name, round, cfg.MoveTimeout)
		round = engine.Next(tiling, cfg.Grid, round, moves, rng)

		if engine.Concluded(round) {
			break
		}
	}

	winners := make([]string, 0, len(round.Snakes))
	for n := range round.Snakes {
		winners = append(winners, n)
	}
	broadcastJointly(players, spectators, message.Outcome{Winners: winners, Conclusion: *round, GameUUID: gameUUID})

	return round, gameUUID, nil
}

// broadcastJointly sends msg to both rooms and waits for both fan-outs to
// finish before proceeding. Per-client failures are logged and otherwise
// ignored, never aborting the game; an errgroup.Group with no error return
// is used purely for its "wait for every goroutine" semantics.
func broadcastJointly(players, spectators *room.Room, msg message.Message) {
	var g errgroup.Group
	g.Go(func() error { logFailures(players.Broadcast(msg)); return nil })
	g.Go(func() error { logFailures(spectators.Broadcast(msg)); return nil })
	g.Wait()
}

func logFailures(results []hub.TransmitResult) {
	for _, r := range results {
		if r.Err != nil {
			log.Printf("WARN: orchestrator: transmit to %s failed: %v", r.ID, r.Err)
		}
	}
}

// collectMoves group-receives from the subset of players whose name is
// currently in round.Snakes, with an Optional(T_move) deadline. A
// timeout or non-Move message yields no direction for that player.
func collectMoves(ctx context.Context, h *hub.RelayHub, players *room.Room, name PlayerName, round *domain.Round, moveTimeout time.Duration) map[string]geometry.Direction {
	var live []hub.ClientId
	for _, id := range players.Members() {
		n, ok := name(id)
		if !ok {
			continue
		}
		if _, alive := round.Snakes[n]; alive {
			live = append(live, id)
		}
	}

	results := h.ReceiveGroup(ctx, live, relay.DeadlinePolicy{Kind: relay.DeadlineOptional, Duration: moveTimeout})

	moves := make(map[string]geometry.Direction, len(results))
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		n, ok := name(res.ID)
		if !ok {
			continue
		}
		move, ok := res.Result.Msg.(message.Move)
		if !ok {
			continue
		}
		moves[n] = move.Direction
	}
	return moves
}
