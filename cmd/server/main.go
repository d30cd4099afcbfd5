// Package main runs the collection service: the GraphQL API for purchases
// and governance, the live event stream, and health, status and metrics
// endpoints.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"collection-governance/internal/api/graph"
	"collection-governance/internal/config"
	"collection-governance/internal/observability"
	"collection-governance/internal/orchestrator"
)

// Server holds the running service and its HTTP surface.
type Server struct {
	cfg     *config.Config
	orch    *orchestrator.Orchestrator
	logger  *log.Logger
	started time.Time
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "Path to YAML config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *useMemory {
		cfg.Storage.UseMemory = true
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch, err := orchestrator.New(ctx, orchestrator.Options{Config: cfg, Logger: logger})
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}

	server := &Server{cfg: cfg, orch: orch, logger: logger, started: time.Now()}
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go observability.TrackUptime(ctx, 15*time.Second)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Starting HTTP server on %s", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("HTTP server error: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Websocket connections are hijacked, so the hub closes them separately.
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown: %v", err)
	}
	if err := orch.Close(); err != nil {
		logger.Printf("Close components: %v", err)
	}

	logger.Println("Shutdown complete")
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle(s.cfg.Server.GraphQLPath, graph.NewHandler(s.orch.Core))
	mux.Handle(s.cfg.Server.EventsPath, s.orch.Hub)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	return mux
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status            string    `json:"status"`
	Uptime            string    `json:"uptime"`
	Started           time.Time `json:"started"`
	LedgerAddress     string    `json:"ledger_address"`
	ReplayedEvents    uint64    `json:"replayed_events"`
	LastSequence      uint64    `json:"last_sequence"`
	EventLogBacklog   int       `json:"event_log_backlog"`
	ItemsAvailable    uint64    `json:"items_available"`
	StreamSubscribers int       `json:"stream_subscribers"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := "running"
	if s.orch.Core.Backlog() > 0 {
		status = "degraded"
	}
	resp := StatusResponse{
		Status:            status,
		Uptime:            time.Since(s.started).Truncate(time.Second).String(),
		Started:           s.started,
		LedgerAddress:     s.orch.LedgerAddress.String(),
		ReplayedEvents:    s.orch.Replayed,
		LastSequence:      s.orch.Core.LastSequence(),
		EventLogBacklog:   s.orch.Core.Backlog(),
		ItemsAvailable:    s.orch.Core.AvailableCount(),
		StreamSubscribers: s.orch.Hub.Subscribers(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
