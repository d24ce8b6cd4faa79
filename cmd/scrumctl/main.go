// Command scrumctl is the coordination engine's operational CLI:
// single-action database inspection and migration, mirroring the
// teacher's cmd/dbctl flag-per-action shape but scoped to the scrum
// store instead of the agent_control table.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/scrumhq/scrum/internal/metrics"
	"github.com/scrumhq/scrum/internal/store"
)

func main() {
	dbPath := flag.String("db", "data/scrum.db", "path to the scrum SQLite database")
	action := flag.String("action", "", "action to perform: migrate, inspect, board, agent")
	agentID := flag.String("agent", "", "agent id (for -action agent)")
	jsonOutput := flag.Bool("json", false, "output as JSON")
	flag.Parse()

	if *action == "" {
		fmt.Fprintf(os.Stderr, "usage: scrumctl -db <path> -action <migrate|inspect|board|agent> [-agent <id>] [-json]\n")
		os.Exit(1)
	}

	// Open applies the schema migration unconditionally, so "migrate"
	// and every other action both bring the database up to date first.
	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()

	switch *action {
	case "migrate":
		fmt.Printf("database at %s is up to date\n", *dbPath)

	case "inspect":
		if err := inspect(ctx, db, *jsonOutput); err != nil {
			fmt.Fprintf(os.Stderr, "inspect failed: %v\n", err)
			os.Exit(1)
		}

	case "board":
		snap, err := metrics.Board(ctx, db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "board failed: %v\n", err)
			os.Exit(1)
		}
		json.NewEncoder(os.Stdout).Encode(snap)

	case "agent":
		if *agentID == "" {
			fmt.Fprintf(os.Stderr, "-agent is required for -action agent\n")
			os.Exit(1)
		}
		agent, err := db.GetAgent(ctx, *agentID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "get agent failed: %v\n", err)
			os.Exit(1)
		}
		json.NewEncoder(os.Stdout).Encode(agent)

	default:
		fmt.Fprintf(os.Stderr, "unknown action: %s\n", *action)
		os.Exit(1)
	}
}

func inspect(ctx context.Context, db *store.Store, jsonOutput bool) error {
	if err := db.Health(ctx); err != nil {
		return err
	}
	if jsonOutput {
		json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "ok"})
		return nil
	}
	fmt.Println("database reachable")
	return nil
}
