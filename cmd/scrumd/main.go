// Command scrumd is the coordination engine's server entrypoint: it
// wires the store, event bus, facade, webhook dispatcher, and HTTP/WS
// transport together and serves until told to stop, mirroring the
// teacher's cmd/cliaimonitor bring-up sequence scoped to this engine's
// own components.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/scrumhq/scrum/internal/clock"
	"github.com/scrumhq/scrum/internal/config"
	"github.com/scrumhq/scrum/internal/events"
	"github.com/scrumhq/scrum/internal/facade"
	"github.com/scrumhq/scrum/internal/server"
	"github.com/scrumhq/scrum/internal/store"
	"github.com/scrumhq/scrum/internal/webhooks"
)

const banner = `
  ╔═══════════════════════════════════════════════════════╗
  ║                                                       ║
  ║                      scrumd                          ║
  ║        agent-facing sprint coordination engine        ║
  ║                                                       ║
  ╚═══════════════════════════════════════════════════════╝
`

func main() {
	configPath := flag.String("config", "configs/scrum.yaml", "engine configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create data directory: %v\n", err)
			os.Exit(1)
		}
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store at %s: %v\n", cfg.DBPath, err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Print(banner)
	fmt.Printf("  store ready at %s\n", cfg.DBPath)

	bus := events.NewBus(nil)
	eng := facade.New(db, bus, clock.System{}, cfg)

	dispatcher := webhooks.New(db, clock.System{})
	dispatchCtx, cancelDispatch := context.WithCancel(context.Background())
	defer cancelDispatch()
	go dispatcher.Run(dispatchCtx, bus)
	fmt.Println("  webhook dispatcher started")

	srv := server.New(eng, bus, cfg)

	runCtx, cancelRun := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(runCtx)
	}()

	fmt.Printf("  listening on %s\n", cfg.Addr())
	fmt.Println()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		}
	case <-shutdown:
		fmt.Println("shutting down (signal received)...")
		cancelRun()
		if err := <-serverErr; err != nil {
			fmt.Fprintf(os.Stderr, "server shutdown error: %v\n", err)
		}
	}

	cancelDispatch()
	fmt.Println("stopped")
}
