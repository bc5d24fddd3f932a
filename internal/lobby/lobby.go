/*
 * file: lobby.go
 * package: lobby
 * description:
 *     Matchmaking queue: admits handshaken players into a waiting room and
 *     starts one Game Orchestrator run per batch of MinPlayers, supporting
 *     multiple concurrent games rather than one game per process lifetime.
 */

package lobby

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/sirpent/sirpent-go/internal/core/domain"
	"github.com/sirpent/sirpent-go/internal/geometry"
	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/orchestrator"
	"github.com/sirpent/sirpent-go/internal/room"
)

// Config bounds one lobby's matchmaking and game parameters.
type Config struct {
	MinPlayers   int
	PollInterval time.Duration
	Grid         geometry.Grid
	MoveTimeout  time.Duration
}

// Outcome is reported for every game a Lobby completes, for the stats
// service to persist.
type Outcome struct {
	GameUUID string
	Round    *domain.Round
	Grid     geometry.Grid
}

// Lobby waits for enough players, then runs games concurrently as batches
// fill, using a shared but mutex-guarded seed source so concurrent games
// never race on a single *rand.Rand.
type Lobby struct {
	h          *hub.RelayHub
	waiting    *room.Room
	spectators *room.Room
	nameOf     orchestrator.PlayerName
	cfg        Config

	seedMu  sync.Mutex
	seedRng *rand.Rand

	gamesSeq int
	onOutcome func(Outcome)
}

// New returns a Lobby seeded from seed, admitting into its own waiting
// room and broadcasting jointly with spectators.
func New(h *hub.RelayHub, spectators *room.Room, name orchestrator.PlayerName, cfg Config, seed int64, onOutcome func(Outcome)) *Lobby {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	return &Lobby{
		h:          h,
		waiting:    room.New("lobby-waiting", h),
		spectators: spectators,
		nameOf:     name,
		cfg:        cfg,
		seedRng:    rand.New(rand.NewSource(seed)),
		onOutcome:  onOutcome,
	}
}

// Join enqueues id into the waiting room. Joining is independent of
// whether a game is currently in progress: new arrivals simply wait for
// the next batch.
func (l *Lobby) Join(id hub.ClientId) {
	l.waiting.Insert(id)
}

// Waiting exposes the lobby's waiting room so the handshake step can
// insert newly registered players directly into it.
func (l *Lobby) Waiting() *room.Room {
	return l.waiting
}

func (l *Lobby) nextSeed() int64 {
	l.seedMu.Lock()
	defer l.seedMu.Unlock()
	return l.seedRng.Int63()
}

// Run polls the waiting room until ctx is cancelled, launching one game
// per full batch of MinPlayers. Games run concurrently; Run itself never
// blocks on a game's completion.
func (l *Lobby) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.cfg.PollInterval):
		}

		if l.waiting.Len() < l.cfg.MinPlayers {
			continue
		}

		members := l.waiting.Members()
		if len(members) > l.cfg.MinPlayers {
			members = members[:l.cfg.MinPlayers]
		}

		l.gamesSeq++
		gameRoom := room.New(fmt.Sprintf("game-%d", l.gamesSeq), l.h)
		for _, id := range members {
			gameRoom.Insert(id)
			l.waiting.Remove(id)
		}

		gameRng := rand.New(rand.NewSource(l.nextSeed()))
		go l.runGame(ctx, gameRng, gameRoom)
	}
}

func (l *Lobby) runGame(ctx context.Context, rng *rand.Rand, players *room.Room) {
	round, gameUUID, err := orchestrator.Run(ctx, l.h, rng, orchestrator.Config{
		Grid:        l.cfg.Grid,
		MoveTimeout: l.cfg.MoveTimeout,
	}, players, l.spectators, l.nameOf)
	if err != nil {
		log.Printf("ERROR: lobby: game failed to start: %v", err)
		return
	}
	log.Printf("INFO: lobby: game %s concluded after %d rounds", gameUUID, round.RoundNumber)
	if l.onOutcome != nil {
		l.onOutcome(Outcome{GameUUID: gameUUID, Round: round, Grid: l.cfg.Grid})
	}
}
