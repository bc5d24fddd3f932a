/*
 * file: server.go
 * package: server
 * description:
 *     The composition root's actual wiring, factored out of main so that
 *     both the default binary and the cmd/sirpentd wrapper can share it.
 *     Builds the hub, rooms, lobby, and persistence stack from a Config
 *     and runs the TCP accept loop until ctx is cancelled.
 */

package server

import (
	"context"
	"log"
	"net"
	"sync"

	"github.com/sirpent/sirpent-go/internal/adapters/db"
	"github.com/sirpent/sirpent-go/internal/config"
	"github.com/sirpent/sirpent-go/internal/core/services"
	"github.com/sirpent/sirpent-go/internal/geometry"
	"github.com/sirpent/sirpent-go/internal/handshake"
	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/infra/repository"
	"github.com/sirpent/sirpent-go/internal/lobby"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/sirpent/sirpent-go/internal/nameserver"
	"github.com/sirpent/sirpent-go/internal/relay"
	"github.com/sirpent/sirpent-go/internal/room"
)

// Run wires every component from cfg and serves connections until ctx is
// cancelled or setup fails (database connection, unknown grid tiling, or
// listener bind). It always returns a non-nil error; after cancellation
// that error is ctx.Err().
func Run(ctx context.Context, cfg config.Config) error {
	dbConn, err := db.InitializeDatabase(cfg)
	if err != nil {
		return err
	}
	log.Println("SUCCESS: Database connection pool established.")

	matchRepo := repository.NewGormMatchRepository(dbConn)
	statsService := services.NewStatsService(matchRepo)

	grid := geometry.Grid{Tiling: cfg.GridTiling, Width: cfg.GridWidth, Height: cfg.GridHeight}
	if _, err := geometry.Lookup(grid.Tiling); err != nil {
		return err
	}

	relayCfg := relay.DefaultConfig()
	relayCfg.MaxFrameBytes = cfg.MaxFrameBytes

	h := hub.New("sirpent", relayCfg)
	ns := nameserver.New()
	spectators := room.New("spectators", h)
	names := newNameRegistry()

	l := lobby.New(h, spectators, names.lookup, lobby.Config{
		MinPlayers:  cfg.MinimumPlayers,
		Grid:        grid,
		MoveTimeout: cfg.MoveTimeout(),
	}, 1, func(o lobby.Outcome) {
		recordOutcome(statsService, o)
	})

	go l.Run(ctx)

	listener, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer listener.Close()
	log.Printf("INFO: sirpent server listening on %s", cfg.ListenAddr)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	handshakeCfg := handshake.Config{
		SirpentVersion:   "1.0",
		Grid:             grid,
		MoveTimeout:      cfg.MoveTimeout(),
		HandshakeTimeout: cfg.HandshakeTimeout(),
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("ERROR: accept failed: %v", err)
			continue
		}
		go serve(ctx, h, ns, names, l, spectators, handshakeCfg, conn)
	}
}

// serve runs the handshake for a single freshly accepted connection. A
// registered player lands directly in the lobby's waiting room (the
// handshake inserts it there); a registered spectator is set watching
// under enforced silence.
func serve(ctx context.Context, h *hub.RelayHub, ns *nameserver.Nameserver, names *nameRegistry, l *lobby.Lobby, spectators *room.Room, cfg handshake.Config, conn net.Conn) {
	id := h.Accept(conn)

	outcome, err := handshake.Run(ctx, h, ns, l.Waiting(), spectators, cfg, id)
	if err != nil {
		log.Printf("WARN: handshake failed for %s: %v", id, err)
		return
	}
	names.set(outcome.ID, outcome.Name)

	if outcome.Kind == message.Spectator {
		go handshake.EnforceSilence(ctx, h, id)
	}
}

func recordOutcome(stats *services.StatsService, o lobby.Outcome) {
	winners := make([]string, 0, len(o.Round.Snakes))
	for name := range o.Round.Snakes {
		winners = append(winners, name)
	}
	seen := make(map[string]struct{}, len(winners))
	for _, name := range winners {
		seen[name] = struct{}{}
	}
	players := append([]string{}, winners...)
	for name := range o.Round.Directions {
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			players = append(players, name)
		}
	}
	if err := stats.RecordOutcome(o.GameUUID, o.Grid.Tiling, players, winners, o.Round.RoundNumber); err != nil {
		log.Printf("ERROR: failed to record match outcome: %v", err)
	}
}

// nameRegistry maps a ClientId to the name its handshake assigned. The
// orchestrator consults it once per round to address per-client moves;
// it never needs to know how names were chosen, only what they are now.
type nameRegistry struct {
	mu    sync.RWMutex
	names map[hub.ClientId]string
}

func newNameRegistry() *nameRegistry {
	return &nameRegistry{names: make(map[hub.ClientId]string)}
}

func (n *nameRegistry) set(id hub.ClientId, name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.names[id] = name
}

func (n *nameRegistry) lookup(id hub.ClientId) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	name, ok := n.names[id]
	return name, ok
}
