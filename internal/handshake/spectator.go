package handshake

import (
	"context"
	"log"

	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/relay"
)

// EnforceSilence closes id's connection the moment it sends anything at
// all. Spectators are receive-only: the Welcome having already placed id
// into the spectators room, any message it originates afterward violates
// that contract and ends the connection immediately.
//
// Run this in its own goroutine right after a Spectator's handshake
// completes. It returns once id is Gone, by whatever cause, or once ctx
// is cancelled.
func EnforceSilence(ctx context.Context, h *hub.RelayHub, id hub.ClientId) {
	for {
		res, err := h.ReceiveInto(ctx, id, relay.DeadlinePolicy{Kind: relay.DeadlineNone})
		if err != nil {
			return
		}
		if res.Status == relay.StatusGone {
			return
		}
		log.Printf("WARN: handshake: spectator %s broke silence, closing", id)
		h.Close(id)
		return
	}
}
