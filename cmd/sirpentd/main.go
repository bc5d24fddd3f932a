/*
 * file: main.go
 * package: main
 * description:
 *     sirpentd is the flag-configurable form of the sirpent server: the
 *     listen address, grid tiling and size, minimum player count, and the
 *     move and handshake timeouts can be passed as command-line flags,
 *     overriding what config.Load read from the environment. The frame
 *     size limit and the database settings have no flags and come from
 *     the environment only.
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/sirpent/sirpent-go/internal/config"
	"github.com/sirpent/sirpent-go/internal/server"
)

func main() {
	cfg := config.Load()

	listenAddr := flag.StringP("listen", "l", cfg.ListenAddr, "address to listen on")
	gridTiling := flag.String("grid-tiling", cfg.GridTiling, "grid tiling (square, hexagon, triangle)")
	gridWidth := flag.Int("grid-width", cfg.GridWidth, "grid width")
	gridHeight := flag.Int("grid-height", cfg.GridHeight, "grid height")
	minPlayers := flag.Int("min-players", cfg.MinimumPlayers, "minimum players per game")
	moveTimeoutMillis := flag.Uint64("move-timeout-ms", cfg.MoveTimeoutMillis, "per-move deadline in milliseconds")
	handshakeTimeoutMillis := flag.Uint64("handshake-timeout-ms", cfg.HandshakeTimeoutMillis, "handshake deadline in milliseconds")
	flag.Parse()

	cfg.ListenAddr = *listenAddr
	cfg.GridTiling = *gridTiling
	cfg.GridWidth = *gridWidth
	cfg.GridHeight = *gridHeight
	cfg.MinimumPlayers = *minPlayers
	cfg.MoveTimeoutMillis = *moveTimeoutMillis
	cfg.HandshakeTimeoutMillis = *handshakeTimeoutMillis

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := server.Run(ctx, cfg); err != nil && ctx.Err() == nil {
		log.Fatalf("FATAL: sirpentd exited: %v", err)
	}
}
