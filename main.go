/*
 * file: main.go
 * package: main
 * description:
 *     Default entry point: loads configuration from the environment and
 *     runs the server until interrupted.
 */

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirpent/sirpent-go/internal/config"
	"github.com/sirpent/sirpent-go/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	if err := server.Run(ctx, cfg); err != nil && ctx.Err() == nil {
		log.Fatalf("FATAL: server exited: %v", err)
	}
}
