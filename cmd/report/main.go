package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"collection-governance/internal/config"
	"collection-governance/internal/orchestrator"
	"collection-governance/internal/reporting"
	"collection-governance/internal/token"
)

func main() {
	// Parse flags
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	outputDir := flag.String("output-dir", "docs", "Output directory for generated files")
	useFixtures := flag.Bool("use-fixtures", false, "Use an in-memory demo history instead of the database")
	flag.Parse()

	ctx := context.Background()
	logger := log.New(os.Stderr, "[report] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	var stores *orchestrator.Stores
	if *useFixtures {
		stores, err = loadFixtures(ctx, cfg, logger)
	} else {
		stores, err = orchestrator.OpenStores(ctx, cfg.Storage, logger)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening stores: %v\n", err)
		os.Exit(1)
	}
	defer stores.Close()

	ledgerAddr, err := cfg.LedgerAddress()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error deriving ledger address: %v\n", err)
		os.Exit(1)
	}
	stateOpts := orchestrator.StateOptions(cfg, ledgerAddr, token.NewMemoryToken(cfg.Payment.Symbol).Client(ledgerAddr))

	gen := reporting.NewGenerator(stores.Events, stores.Activity, stateOpts)
	if *useFixtures {
		// Fixed clock for deterministic output
		gen = gen.WithClock(func() time.Time { return fixtureEnd })
	}

	report, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output dir: %v\n", err)
		os.Exit(1)
	}

	outputs := []struct {
		name string
		body string
	}{
		{"REPORT.md", reporting.RenderMarkdown(report)},
		{"HOLDERS.csv", reporting.RenderHoldersCSV(report.Holders)},
		{"PROPOSALS.csv", reporting.RenderProposalsCSV(report.Proposals)},
	}
	for _, out := range outputs {
		path := filepath.Join(*outputDir, out.name)
		if err := os.WriteFile(path, []byte(out.body), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Report generated successfully (%d events, last sequence %d):\n", report.EventCount, report.LastSequence)
	for _, out := range outputs {
		fmt.Printf("  - %s/%s\n", *outputDir, out.name)
	}
}
