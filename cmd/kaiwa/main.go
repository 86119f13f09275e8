// Package main is the Kaiwa CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/driftlab/kaiwa/internal/cli"
	"github.com/driftlab/kaiwa/internal/config"
	"github.com/driftlab/kaiwa/internal/extract"
	"github.com/driftlab/kaiwa/internal/gateway"
	"github.com/driftlab/kaiwa/internal/ingest"
	"github.com/driftlab/kaiwa/internal/query"
	"github.com/driftlab/kaiwa/internal/server"
	"github.com/driftlab/kaiwa/internal/vector"
	"github.com/driftlab/kaiwa/internal/workspace"
	"github.com/driftlab/kaiwa/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kaiwa/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "query":
		runQuery()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kaiwa version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Store    workspace.Store
	Blobs    *workspace.BlobStore
	Gateway  gateway.Gateway
	Manager  *vector.Manager
	Ingestor *ingest.Ingestor
	Engine   *query.Engine
}

func (c *Components) Close() {
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := workspace.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	blobs, err := workspace.NewBlobStore(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize blob store: %w", err)
	}

	var gw gateway.Gateway
	openaiGW, err := gateway.NewOpenAIGateway(&cfg.Gateway)
	if err != nil {
		logger.Warn("gateway unavailable, using deterministic mock (answers will be canned)", zap.Error(err))
		gw = gateway.NewMockGateway(cfg.Gateway.EmbeddingDimensions)
	} else {
		gw = openaiGW
	}

	manager, err := vector.NewManager(cfg.Storage.IndexDir, gw, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize index manager: %w", err)
	}
	chunker, err := ingest.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunking config: %w", err)
	}
	ingestor := ingest.NewIngestor(store, blobs, extract.NewExtractor(logger), chunker, manager, logger)
	engine := query.NewEngine(manager, gw, cfg.Query.TopK, cfg.Query.PreviewLength, logger)

	return &Components{
		Store:    store,
		Blobs:    blobs,
		Gateway:  gw,
		Manager:  manager,
		Ingestor: ingestor,
		Engine:   engine,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Ingestor,
		components.Engine,
		components.Store,
		components.Blobs,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	conversationID := fs.String("conversation", "", "conversation identifier")
	_ = fs.Parse(os.Args[2:])

	if *conversationID == "" || fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa ingest --conversation <id> <root-file-id>")
		os.Exit(1)
	}
	rootFileID := fs.Arg(0)

	components, logger := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	result, err := components.Ingestor.Ingest(context.Background(), *conversationID, rootFileID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingestion failed: %v\n", err)
		os.Exit(1)
	}
	_ = cli.WriteIngestResult(os.Stdout, result, cli.OutputText)
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	conversationID := fs.String("conversation", "", "conversation identifier")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	if *conversationID == "" || fs.NArg() < 1 {
		fmt.Println("Usage: kaiwa query --conversation <id> <question>")
		os.Exit(1)
	}
	question := fs.Arg(0)

	components, logger := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	result, err := components.Engine.Answer(context.Background(), *conversationID, question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteQueryResult(os.Stdout, result, cli.OutputFormat(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// statusReport aggregates store counts for the status command.
type statusReport struct {
	Workspaces    int64 `json:"workspaces"`
	Files         int64 `json:"files"`
	Conversations int64 `json:"conversations"`
}

func collectStatus(ctx context.Context, store workspace.Store) (*statusReport, error) {
	workspaces, err := store.CountWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("count workspaces: %w", err)
	}
	files, err := store.CountFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	conversations, err := store.CountConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("count conversations: %w", err)
	}
	return &statusReport{
		Workspaces:    workspaces,
		Files:         files,
		Conversations: conversations,
	}, nil
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	components, logger := mustInitialize(*configPath)
	defer components.Close()
	defer logger.Sync()

	report, err := collectStatus(context.Background(), components.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Printf("Workspaces:    %d\n", report.Workspaces)
		fmt.Printf("Files:         %d\n", report.Files)
		fmt.Printf("Conversations: %d\n", report.Conversations)
	}
}

func mustInitialize(configPath string) (*Components, *zap.Logger) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	return components, logger
}

func printUsage() {
	fmt.Println(`kaiwa - document workspace question answering

Usage:
  kaiwa server [flags]                              Start the HTTP server
  kaiwa ingest --conversation <id> <root-file-id>   Build a conversation's index
  kaiwa query --conversation <id> <question>        Ask a question
  kaiwa status [--output json]                      Show store counts
  kaiwa version                                     Show version
  kaiwa help                                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kaiwa/config.yaml)
  --debug            Enable debug logging

Examples:
  kaiwa server
  kaiwa ingest --conversation chat-42 8f2c1a
  kaiwa status --output json
  kaiwa query --conversation chat-42 "What does the contract say about renewal?"
  kaiwa query --conversation chat-42 --output json "Summarize the design"`)
}
