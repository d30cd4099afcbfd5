// Package main rebuilds ledger and governance state from the event log,
// prints a summary and verifies that a second rebuild is identical.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"collection-governance/internal/config"
	"collection-governance/internal/domain"
	"collection-governance/internal/orchestrator"
	"collection-governance/internal/replay"
	"collection-governance/internal/token"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	outputJSON := flag.Bool("json", false, "Output as JSON")
	quiet := flag.Bool("quiet", false, "Do not print individual events")

	flag.Parse()

	logger := log.New(os.Stderr, "[replay] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if *useMemory {
		cfg.Storage.UseMemory = true
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	stores, err := orchestrator.OpenStores(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatalf("open stores: %v", err)
	}
	defer stores.Close()

	ledgerAddr, err := cfg.LedgerAddress()
	if err != nil {
		logger.Fatalf("derive ledger address: %v", err)
	}
	stateOpts := orchestrator.StateOptions(cfg, ledgerAddr, token.NewMemoryToken(cfg.Payment.Symbol).Client(ledgerAddr))

	runner := replay.NewRunner(stores.Events)

	first, err := replay.NewState(stateOpts)
	if err != nil {
		logger.Fatalf("init state: %v", err)
	}
	engine := NewLoggingEngine(first, *outputJSON || *quiet)
	if _, err := runner.RunAll(ctx, engine); err != nil {
		logger.Fatalf("replay failed: %v", err)
	}

	second, err := replay.NewState(stateOpts)
	if err != nil {
		logger.Fatalf("init state: %v", err)
	}
	if _, err := runner.RunAll(ctx, second); err != nil {
		logger.Fatalf("second replay failed: %v", err)
	}

	stats := engine.Stats()
	for _, m := range replay.Verify(first, second) {
		stats.Mismatches = append(stats.Mismatches, m.String())
	}

	if *outputJSON {
		output, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(output))
	} else {
		printSummary(stats)
	}

	if len(stats.Mismatches) > 0 {
		os.Exit(1)
	}
}

func printSummary(stats ReplayStats) {
	fmt.Printf("\n=== Replay Summary ===\n")
	fmt.Printf("Total Events:      %d\n", stats.TotalEvents)
	fmt.Printf("Last Sequence:     %d\n", stats.LastSequence)
	fmt.Printf("Items Sold:        %d\n", stats.ItemsSold)
	fmt.Printf("Holders:           %d\n", stats.Holders)
	fmt.Printf("Proposals:         %d\n", stats.Proposals)
	if stats.TotalEvents > 0 {
		fmt.Printf("First Event Time:  %s\n", stats.FirstEventTime.Format(time.RFC3339))
		fmt.Printf("Last Event Time:   %s\n", stats.LastEventTime.Format(time.RFC3339))
	}

	names := make([]string, 0, len(stats.ByName))
	for name := range stats.ByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %-28s %d\n", name, stats.ByName[name])
	}

	if len(stats.Mismatches) == 0 {
		fmt.Println("Verification:      OK")
		return
	}
	fmt.Printf("Verification:      %d mismatches\n", len(stats.Mismatches))
	for _, m := range stats.Mismatches {
		fmt.Printf("  %s\n", m)
	}
}

// LoggingEngine applies events to a State and collects statistics.
type LoggingEngine struct {
	state *replay.State
	quiet bool
	stats ReplayStats
}

// ReplayStats holds replay statistics.
type ReplayStats struct {
	TotalEvents    int            `json:"total_events"`
	LastSequence   uint64         `json:"last_sequence"`
	ByName         map[string]int `json:"by_name"`
	ItemsSold      uint64         `json:"items_sold"`
	Holders        int            `json:"holders"`
	Proposals      uint64         `json:"proposals"`
	FirstEventTime time.Time      `json:"first_event_time,omitempty"`
	LastEventTime  time.Time      `json:"last_event_time,omitempty"`
	Mismatches     []string       `json:"mismatches,omitempty"`
}

// NewLoggingEngine creates a new logging engine over state.
func NewLoggingEngine(state *replay.State, quiet bool) *LoggingEngine {
	return &LoggingEngine{
		state: state,
		quiet: quiet,
		stats: ReplayStats{ByName: make(map[string]int)},
	}
}

// OnEvent applies an event and records it.
func (e *LoggingEngine) OnEvent(ctx context.Context, event *domain.Event) error {
	if err := e.state.OnEvent(ctx, event); err != nil {
		return err
	}

	e.stats.TotalEvents++
	e.stats.LastSequence = event.Sequence
	e.stats.ByName[event.Name.String()]++
	if e.stats.FirstEventTime.IsZero() {
		e.stats.FirstEventTime = event.OccurredAt
	}
	e.stats.LastEventTime = event.OccurredAt

	if !e.quiet {
		fmt.Printf("[%s] seq=%d %s %s\n",
			event.OccurredAt.Format(time.RFC3339Nano),
			event.Sequence,
			event.Name,
			event.Payload.Subject(),
		)
	}
	return nil
}

// Stats returns replay statistics.
func (e *LoggingEngine) Stats() ReplayStats {
	s := e.stats
	s.ItemsSold = e.state.Ledger.SoldCount()
	s.Holders = len(e.state.Ledger.Holders())
	s.Proposals = e.state.Governance.TotalProposals()
	return s
}

// Ensure LoggingEngine implements replay.ReplayEngine
var _ replay.ReplayEngine = (*LoggingEngine)(nil)
