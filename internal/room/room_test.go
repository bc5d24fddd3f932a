package room

import (
	"net"
	"testing"
	"time"

	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/sirpent/sirpent-go/internal/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *hub.RelayHub {
	return hub.New("room-test-hub", relay.DefaultConfig())
}

func TestInsertContainsRemove(t *testing.T) {
	h := newTestHub()
	s, c := net.Pipe()
	defer c.Close()
	id := h.Accept(s)

	r := New("lobby", h)
	assert.False(t, r.Contains(id))
	r.Insert(id)
	assert.True(t, r.Contains(id))
	assert.Equal(t, 1, r.Len())

	r.Remove(id)
	assert.False(t, r.Contains(id))
}

func TestInsertRejectsForeignHubID(t *testing.T) {
	h := newTestHub()
	other := hub.New("some-other-hub", relay.DefaultConfig())
	s, c := net.Pipe()
	defer c.Close()
	foreignID := other.Accept(s)

	r := New("lobby", h)
	assert.False(t, r.Insert(foreignID))
	assert.False(t, r.Contains(foreignID))
	assert.Equal(t, 0, r.Len())
}

func TestBroadcastReachesAllMembers(t *testing.T) {
	h := newTestHub()
	r := New("arena", h)

	type peer struct {
		server net.Conn
		client net.Conn
	}
	peers := make([]peer, 3)
	for i := range peers {
		s, c := net.Pipe()
		peers[i] = peer{server: s, client: c}
		id := h.Accept(s)
		r.Insert(id)
		defer c.Close()
	}

	received := make(chan struct{}, len(peers))
	for _, p := range peers {
		go func(c net.Conn) {
			buf := make([]byte, 256)
			c.SetReadDeadline(time.Now().Add(time.Second))
			if _, err := c.Read(buf); err == nil {
				received <- struct{}{}
			}
		}(p.client)
	}

	results := r.Broadcast(message.Version{Sirpent: "sirpent", Protocol: "0.4"})
	require.Len(t, results, len(peers))
	for _, res := range results {
		assert.NoError(t, res.Err)
	}

	for range peers {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("not all members received the broadcast")
		}
	}
}

func TestCloseAllClearsMembership(t *testing.T) {
	h := newTestHub()
	s1, c1 := net.Pipe()
	s2, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	r := New("arena", h)
	r.Insert(h.Accept(s1))
	r.Insert(h.Accept(s2))
	require.Equal(t, 2, r.Len())

	r.CloseAll()
	assert.Equal(t, 0, r.Len())
}
