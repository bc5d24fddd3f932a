/*
 * file: handshake.go
 * package: handshake
 * description:
 *     Protocol exchange that turns a freshly accepted, still-anonymous
 *     connection into a named, welcomed, role-classified room member.
 */

package handshake

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/sirpent/sirpent-go/internal/geometry"
	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/sirpent/sirpent-go/internal/nameserver"
	"github.com/sirpent/sirpent-go/internal/relay"
	"github.com/sirpent/sirpent-go/internal/room"
)

// ErrNotRegister is returned when the handshake deadline's single message
// is not a Register.
var ErrNotRegister = errors.New("handshake: expected register")

// Config carries everything the handshake needs beyond the hub and
// nameserver: the grid the welcomed client will play on, its per-move
// deadline, and the hard deadline for step 2 of the exchange.
type Config struct {
	SirpentVersion   string
	Grid             geometry.Grid
	MoveTimeout      time.Duration
	HandshakeTimeout time.Duration
}

// Outcome is what a completed handshake delivers to its caller: the final
// name and which room the client was placed into.
type Outcome struct {
	ID   hub.ClientId
	Name string
	Kind message.ClientKind
}

// Run drives steps 1-5 against id. Any failure at any step closes the
// connection via h.Close and returns an error; the name is never rolled
// back on a late failure.
func Run(ctx context.Context, h *hub.RelayHub, ns *nameserver.Nameserver, players, spectators *room.Room, cfg Config, id hub.ClientId) (Outcome, error) {
	if err := h.Transmit(id, message.Version{Sirpent: cfg.SirpentVersion, Protocol: message.ProtocolVersion}); err != nil {
		h.Close(id)
		return Outcome{}, errors.Wrap(err, "handshake: transmit version")
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, cfg.HandshakeTimeout)
	defer cancel()

	res, err := h.ReceiveInto(deadlineCtx, id, relay.DeadlinePolicy{
		Kind:     relay.DeadlineDisconnecting,
		Duration: cfg.HandshakeTimeout,
	})
	if err != nil {
		h.Close(id)
		return Outcome{}, errors.Wrap(err, "handshake: receive register")
	}
	reg, ok := res.Msg.(message.Register)
	if !ok {
		h.Close(id)
		return Outcome{}, ErrNotRegister
	}

	finalName := ns.Assign(reg.DesiredName)

	var timeoutMillis *uint64
	if cfg.MoveTimeout > 0 {
		ms := uint64(cfg.MoveTimeout / time.Millisecond)
		timeoutMillis = &ms
	}
	welcome := message.Welcome{Name: finalName, Grid: cfg.Grid, TimeoutMillis: timeoutMillis}
	if err := h.Transmit(id, welcome); err != nil {
		h.Close(id)
		return Outcome{}, errors.Wrap(err, "handshake: transmit welcome")
	}

	switch reg.Kind {
	case message.Player:
		players.Insert(id)
	case message.Spectator:
		spectators.Insert(id)
	default:
		h.Close(id)
		return Outcome{}, ErrNotRegister
	}

	return Outcome{ID: id, Name: finalName, Kind: reg.Kind}, nil
}
