/*
 * file: room.go
 * package: room
 * description:
 *     A named set of ClientIds sharing a hub. Group operations (broadcast,
 *     receive, status, close) delegate to the hub's fan-out/gather
 *     primitives over exactly the room's current members.
 */

package room

import (
	"context"
	"sync"

	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/sirpent/sirpent-go/internal/relay"
)

// Room is a hub-scoped set of ClientIds. Safe for concurrent use.
type Room struct {
	name string
	h    *hub.RelayHub

	mu      sync.RWMutex
	members map[hub.ClientId]struct{}
}

// New returns an empty room bound to h.
func New(name string, h *hub.RelayHub) *Room {
	return &Room{name: name, h: h, members: make(map[hub.ClientId]struct{})}
}

// Name returns the room's identifying label.
func (room *Room) Name() string { return room.name }

// Insert adds id to the room and reports whether it was accepted.
// Inserting an already-present id is a no-op success; an id minted by a
// different hub is rejected without mutating the membership set.
func (room *Room) Insert(id hub.ClientId) bool {
	if id.Hub != room.h.ID() {
		return false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	room.members[id] = struct{}{}
	return true
}

// Remove drops id from the room, if present.
func (room *Room) Remove(id hub.ClientId) {
	room.mu.Lock()
	defer room.mu.Unlock()
	delete(room.members, id)
}

// Contains reports whether id is currently a member.
func (room *Room) Contains(id hub.ClientId) bool {
	room.mu.RLock()
	defer room.mu.RUnlock()
	_, ok := room.members[id]
	return ok
}

// Members returns a snapshot of the room's current ClientIds.
func (room *Room) Members() []hub.ClientId {
	room.mu.RLock()
	defer room.mu.RUnlock()
	ids := make([]hub.ClientId, 0, len(room.members))
	for id := range room.members {
		ids = append(ids, id)
	}
	return ids
}

// Len reports the current membership count.
func (room *Room) Len() int {
	room.mu.RLock()
	defer room.mu.RUnlock()
	return len(room.members)
}

// Broadcast sends msg to every current member and gathers per-member
// results; a failed member does not stop delivery to the rest.
func (room *Room) Broadcast(msg message.Message) []hub.TransmitResult {
	return room.h.TransmitGroup(room.Members(), msg)
}

// ReceiveSet waits for every current member's next inbound message under
// a shared ctx and policy, gathering one result per member.
func (room *Room) ReceiveSet(ctx context.Context, policy relay.DeadlinePolicy) []hub.ReceiveGroupResult {
	return room.h.ReceiveGroup(ctx, room.Members(), policy)
}

// StatusSet reports every current member's status.
func (room *Room) StatusSet() map[hub.ClientId]relay.Status {
	members := room.Members()
	out := make(map[hub.ClientId]relay.Status, len(members))
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(members))
	for _, id := range members {
		go func(id hub.ClientId) {
			defer wg.Done()
			status, err := room.h.StatusInto(id)
			if err != nil {
				status = relay.StatusGone
			}
			mu.Lock()
			out[id] = status
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return out
}

// CloseAll closes every current member's relay and clears the room.
func (room *Room) CloseAll() {
	members := room.Members()
	room.h.CloseGroup(members)
	room.mu.Lock()
	room.members = make(map[hub.ClientId]struct{})
	room.mu.Unlock()
}
