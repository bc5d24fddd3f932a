package orchestrator

import (
	"context"
	"encoding/json"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/sirpent/sirpent-go/internal/geometry"
	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/sirpent/sirpent-go/internal/relay"
	"github.com/sirpent/sirpent-go/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readKind(t *testing.T, conn net.Conn) message.Kind {
	t.Helper()
	buf := make([]byte, 4096)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	var env struct {
		Kind message.Kind `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(buf[:n-1], &env))
	return env.Kind
}

func TestSinglePlayerGameRunsToOutcome(t *testing.T) {
	h := hub.New("orchestrator-hub", relay.DefaultConfig())
	players := room.New("players", h)
	spectators := room.New("spectators", h)

	server, client := net.Pipe()
	defer client.Close()
	id := h.Accept(server)
	players.Insert(id)

	names := map[hub.ClientId]string{id: "a"}
	nameOf := func(cid hub.ClientId) (string, bool) { n, ok := names[cid]; return n, ok }

	cfg := Config{
		Grid:        geometry.Grid{Tiling: "square", Width: 8, Height: 8},
		MoveTimeout: 30 * time.Millisecond,
	}

	resultCh := make(chan error, 1)
	go func() {
		_, _, err := Run(context.Background(), h, rand.New(rand.NewSource(7)), cfg, players, spectators, nameOf)
		resultCh <- err
	}()

	assert.Equal(t, message.KindGame, readKind(t, client))
	// no move is ever sent, so the lone snake dies of NoMoveMade in the
	// first round and the game concludes right after it.
	for i := 0; i < 5; i++ {
		kind := readKind(t, client)
		if kind == message.KindOutcome {
			break
		}
		assert.Equal(t, message.KindRound, kind)
	}

	select {
	case err := <-resultCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("game never concluded")
	}
}
