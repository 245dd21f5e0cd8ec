// enrichctl runs the media-enrichment pipeline's HTTP API and worker pool,
// grounded on the teacher's cmd/tarsy/main.go entrypoint (flag parsing,
// godotenv, config.Initialize, database client, gin router).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/txjustice/media-enrich/pkg/api"
	"github.com/txjustice/media-enrich/pkg/config"
	"github.com/txjustice/media-enrich/pkg/coordinator"
	"github.com/txjustice/media-enrich/pkg/enrich"
	"github.com/txjustice/media-enrich/pkg/incidentdb"
	"github.com/txjustice/media-enrich/pkg/llmextract"
	"github.com/txjustice/media-enrich/pkg/queue"
	"github.com/txjustice/media-enrich/pkg/websearch"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	ginMode := getEnv("GIN_MODE", "debug")
	gin.SetMode(ginMode)

	log.Printf("Starting enrichctl")
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(*configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	dbClient, err := incidentdb.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	log.Println("Connected to PostgreSQL database, migrations applied")

	searchClient := websearch.NewTavilyClient(cfg.SearchAPIKey, cfg.SearchQPS)

	llmClient, err := llmextract.NewAnthropicClient(cfg.LLMAPIKey, cfg.LLMModel)
	if err != nil {
		log.Fatalf("Failed to construct LLM client: %v", err)
	}

	nodes := &coordinator.Nodes{
		Extract:  &enrich.Extractor{Repo: dbClient},
		Search:   &enrich.Searcher{Client: searchClient},
		Validate: &enrich.Validator{},
		Merge:    &enrich.Merger{LLM: llmClient},
	}

	pool := queue.NewWorkerPool(cfg.Queue, dbClient, nodes)
	pool.Start(ctx)
	defer pool.Stop()
	log.Printf("Worker pool started with %d workers", cfg.Queue.WorkerCount)

	server := api.NewServer(dbClient, dbClient, pool)

	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("Health check available at: http://localhost%s/health", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("HTTP server stopped: %v", err)
	case sig := <-sigCh:
		log.Printf("Received signal %s, shutting down", sig)
	}
}
