/*
 * file: hub.go
 * package: hub
 * description:
 *     Process-wide registry of ClientRelays addressed by ClientId. A
 *     RelayHub owns its registry exclusively: every mutation happens under
 *     its mutex, and every relay-facing command is dispatched by ID lookup
 *     rather than by handing out the relay itself.
 */

package hub

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/sirpent/sirpent-go/internal/relay"
)

// ClientId addresses a single connection within one hub. Values from
// different hubs never compare equal.
type ClientId struct {
	Hub string
	Seq uint64
}

func (id ClientId) String() string {
	return fmt.Sprintf("%s/%d", id.Hub, id.Seq)
}

var (
	ErrUnknownClient = errors.New("hub: unknown client id")
	ErrForeignHub    = errors.New("hub: client id belongs to a different hub")
)

// RelayHub accepts connections, assigns each a ClientId, and dispatches
// Commands to the relay behind that ID.
type RelayHub struct {
	id  string
	cfg relay.Config

	mu      sync.RWMutex
	clients map[ClientId]*relay.ClientRelay
	nextSeq uint64
}

// New returns an empty hub identified by id (used only to reject IDs
// issued by a different hub instance).
func New(id string, cfg relay.Config) *RelayHub {
	return &RelayHub{id: id, cfg: cfg, clients: make(map[ClientId]*relay.ClientRelay)}
}

// ID returns the hub's own identity, used by Rooms to reject ClientIds
// minted by a different hub before ever touching their membership set.
func (h *RelayHub) ID() string { return h.id }

// Accept wraps conn in a new ClientRelay and registers it.
func (h *RelayHub) Accept(conn net.Conn) ClientId {
	h.mu.Lock()
	h.nextSeq++
	id := ClientId{Hub: h.id, Seq: h.nextSeq}
	h.mu.Unlock()

	r := relay.New(conn, h.cfg, func(cause error) { h.evict(id, cause) })

	h.mu.Lock()
	h.clients[id] = r
	h.mu.Unlock()

	log.Printf("INFO: hub %s: accepted %s from %s", h.id, id, conn.RemoteAddr())
	return id
}

func (h *RelayHub) evict(id ClientId, cause error) {
	h.mu.Lock()
	_, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()
	if ok {
		log.Printf("INFO: hub %s: %s gone: %v", h.id, id, cause)
	}
}

func (h *RelayHub) lookup(id ClientId) (*relay.ClientRelay, error) {
	if id.Hub != h.id {
		return nil, ErrForeignHub
	}
	h.mu.RLock()
	r, ok := h.clients[id]
	h.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownClient
	}
	return r, nil
}

// Transmit sends msg to id's relay and waits for the enqueue result.
func (h *RelayHub) Transmit(id ClientId, msg message.Message) error {
	r, err := h.lookup(id)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	if err := r.Submit(relay.TransmitCmd{Msg: msg, Reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// ReceiveInto waits for id's relay to deliver its next inbound message,
// subject to ctx cancellation and policy.
func (h *RelayHub) ReceiveInto(ctx context.Context, id ClientId, policy relay.DeadlinePolicy) (relay.ReceiveResult, error) {
	r, err := h.lookup(id)
	if err != nil {
		return relay.ReceiveResult{}, err
	}
	reply := make(chan relay.ReceiveResult, 1)
	if err := r.Submit(relay.ReceiveIntoCmd{Ctx: ctx, Policy: policy, Reply: reply}); err != nil {
		return relay.ReceiveResult{}, err
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return relay.ReceiveResult{}, ctx.Err()
	}
}

// DiscardReceiveBuffer drops id's unclaimed inbound messages.
func (h *RelayHub) DiscardReceiveBuffer(id ClientId) error {
	r, err := h.lookup(id)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	if err := r.Submit(relay.DiscardReceiveBufferCmd{Reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// StatusInto reports id's relay status.
func (h *RelayHub) StatusInto(id ClientId) (relay.Status, error) {
	r, err := h.lookup(id)
	if err != nil {
		return relay.StatusGone, err
	}
	reply := make(chan relay.Status, 1)
	if err := r.Submit(relay.StatusIntoCmd{Reply: reply}); err != nil {
		return relay.StatusGone, nil
	}
	return <-reply, nil
}

// Close tears down id's relay.
func (h *RelayHub) Close(id ClientId) error {
	r, err := h.lookup(id)
	if err != nil {
		return err
	}
	reply := make(chan error, 1)
	if err := r.Submit(relay.CloseCmd{Reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// TransmitResult pairs a ClientId with the outcome of a group Transmit.
type TransmitResult struct {
	ID  ClientId
	Err error
}

// TransmitGroup fans Transmit out across ids concurrently and gathers one
// result per ID. It never short-circuits on the first failure: a dead
// relay in the group does not stop delivery to the rest.
func (h *RelayHub) TransmitGroup(ids []ClientId, msg message.Message) []TransmitResult {
	results := make([]TransmitResult, len(ids))
	var wg sync.WaitGroup
	wg.Add(len(ids))
	for i, id := range ids {
		go func(i int, id ClientId) {
			defer wg.Done()
			results[i] = TransmitResult{ID: id, Err: h.Transmit(id, msg)}
		}(i, id)
	}
	wg.Wait()
	return results
}

// ReceiveGroupResult pairs a ClientId with its ReceiveInto outcome.
type ReceiveGroupResult struct {
	ID     ClientId
	Result relay.ReceiveResult
	Err    error
}

// ReceiveGroup fans ReceiveInto out across ids concurrently, applying the
// same ctx and policy to every member, and gathers one result per ID.
func (h *RelayHub) ReceiveGroup(ctx context.Context, ids []ClientId, policy relay.DeadlinePolicy) []ReceiveGroupResult {
	results := make([]ReceiveGroupResult, len(ids))
	var wg sync.WaitGroup
	wg.Add(len(ids))
	for i, id := range ids {
		go func(i int, id ClientId) {
			defer wg.Done()
			res, err := h.ReceiveInto(ctx, id, policy)
			results[i] = ReceiveGroupResult{ID: id, Result: res, Err: err}
		}(i, id)
	}
	wg.Wait()
	return results
}

// CloseGroup closes every relay in ids concurrently, ignoring individual
// errors (a relay already Gone is not a failure from the group's view).
func (h *RelayHub) CloseGroup(ids []ClientId) {
	var wg sync.WaitGroup
	wg.Add(len(ids))
	for _, id := range ids {
		go func(id ClientId) {
			defer wg.Done()
			h.Close(id)
		}(id)
	}
	wg.Wait()
}

// ServeConn runs conn through Accept and returns the new ClientId at once.
// A background goroutine polls the relay's status at a coarse interval,
// stops once the relay is Gone, and closes the relay if ctx is cancelled
// first.
func (h *RelayHub) ServeConn(ctx context.Context, conn net.Conn) ClientId {
	id := h.Accept(conn)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				h.Close(id)
				return
			case <-ticker.C:
				status, err := h.StatusInto(id)
				if err != nil || status == relay.StatusGone {
					return
				}
			}
		}
	}()
	return id
}
