// Package main is the Kotae CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hayasui/kotae/internal/ai"
	"github.com/hayasui/kotae/internal/chunk"
	"github.com/hayasui/kotae/internal/cli"
	"github.com/hayasui/kotae/internal/config"
	"github.com/hayasui/kotae/internal/corpus"
	"github.com/hayasui/kotae/internal/extract"
	"github.com/hayasui/kotae/internal/ingest"
	"github.com/hayasui/kotae/internal/models"
	"github.com/hayasui/kotae/internal/querygate"
	"github.com/hayasui/kotae/internal/search"
	"github.com/hayasui/kotae/internal/server"
	"github.com/hayasui/kotae/internal/store"
	"github.com/hayasui/kotae/internal/watcher"
	"github.com/hayasui/kotae/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kotae/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used, so that "kotae server" from the project dir uses the project's
// config. Returns the config and the path that was actually loaded.
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
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "delete":
		runDelete()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kotae version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (file events, retrieval detail, etc.)")
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
		zap.Bool("mock_ai", cfg.Mistral.Mock),
	)

	components, err := initializeComponents(cfg, logger, debugMode)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var watchSvc *watcher.Watcher
	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if len(cfg.Watch.Directories) > 0 {
		ing := components.Ingestor
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.New(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			func(path string) {
				if _, err := ing.IngestFile(context.Background(), path); err != nil {
					logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			func(path string) {
				if _, err := ing.Remove(context.Background(), filepath.Base(path)); err != nil {
					logger.Warn("watch remove failed", zap.String("path", path), zap.Error(err))
				}
			},
			watchOpts...,
		)
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	srv := server.NewServer(
		components.Engine,
		components.Ingestor,
		components.Store,
		watchSvc,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildQuery joins all positional args with spaces so multi-word questions
// work the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// askArgsReorder moves any flags (and their values) that appear after the
// question to the front of the slice so that flag.Parse() sees them. Go's
// flag package stops at the first non-flag argument.
func askArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: kotae ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "The question is all remaining arguments joined by spaces; quoting is optional.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  kotae ask what is in the onboarding guide?
  kotae ask "what is in the onboarding guide?"      # same as above
  kotae ask --output json how do I reset my token   # structured JSON for other apps
  kotae ask --server "" where is the cluster config # direct storage, no server needed
`)
}

func runAsk() {
	askArgs := askArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage when server is not running)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(askArgs)

	query := buildQuery(fs.Args())
	if query == "" {
		printAskUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
		format = cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	if *serverURL != "" {
		// Use the HTTP API when a server is running (avoids a SQLite lock conflict).
		response, err := askViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteAskResult(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	response, err := components.Engine.Ask(context.Background(), query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ask failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteAskResult(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func askViaHTTP(serverURL, query string) (*models.AskResponse, error) {
	body, err := json.Marshal(&models.AskRequest{Query: query})
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/ask", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		files, fragments, err := ingestDirectory(ctx, components.Ingestor, path, cfg.Watch.Extensions)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d fragment(s) from %d file(s) in %s\n", fragments, files, path)
		return
	}
	n, err := components.Ingestor.IngestFile(ctx, path)
	if err != nil {
		fmt.Printf("Ingesting failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Ingested %d fragment(s) from %s\n", n, filepath.Base(path))
}

// ingestDirectory walks root and ingests every file matching extensions.
// Unsupported and empty files are skipped with a notice rather than aborting
// the walk.
func ingestDirectory(ctx context.Context, ing *ingest.Ingestor, root string, extensions []string) (files, fragments int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		if !extract.Supported(filepath.Ext(path)) {
			return nil
		}
		if len(extensions) > 0 {
			matched := false
			for _, e := range extensions {
				if strings.EqualFold(strings.TrimPrefix(e, "."), strings.TrimPrefix(filepath.Ext(path), ".")) {
					matched = true
					break
				}
			}
			if !matched {
				return nil
			}
		}
		n, ingestErr := ing.IngestFile(ctx, path)
		if ingestErr != nil {
			fmt.Printf("Skipping %s: %v\n", path, ingestErr)
			return nil
		}
		files++
		fragments += n
		return nil
	})
	return files, fragments, err
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: kotae delete [flags] <source-file>")
		os.Exit(1)
	}
	source := filepath.Base(fs.Arg(0))

	if *serverURL != "" {
		req, _ := http.NewRequest(http.MethodDelete,
			*serverURL+"/api/v1/documents/"+url.PathEscape(source), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Delete failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Document deleted: %s\n", source)
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger, cfg.Debug)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	deleted, err := components.Ingestor.Remove(context.Background(), source)
	if err != nil {
		fmt.Printf("Deletion failed: %v\n", err)
		os.Exit(1)
	}
	if deleted == 0 {
		fmt.Printf("Source not found: %s\n", source)
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s (%d fragments)\n", source, deleted)
}

// statusResponse is the shape of the GET /api/v1/status response.
type statusResponse struct {
	Fragments      int64    `json:"fragments"`
	Sources        int64    `json:"sources"`
	WatchDirs      []string `json:"watch_dirs,omitempty"`
	DiskUsageBytes *int64   `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (for direct storage mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = use direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger, cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		stats, err := components.Store.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Fragments: stats.Fragments,
			Sources:   stats.Sources,
			WatchDirs: cfg.Watch.Directories,
		}
		if diskBytes, err := store.DatabaseDiskUsage(cfg.Storage.DatabasePath); err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("fragments:  %d   # count of stored fragments\n", status.Fragments)
		fmt.Printf("sources:    %d   # count of distinct source files\n", status.Sources)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage: %d   # database size in bytes\n", *status.DiskUsageBytes)
		}
		for _, d := range status.WatchDirs {
			fmt.Printf("watching:   %s\n", d)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

// Components holds initialized services.
type Components struct {
	Store    store.Store
	Embedder ai.Embedder
	Manager  *corpus.Manager
	Engine   *search.Engine
	Ingestor *ingest.Ingestor
}

func (c *Components) Close() {
	if c.Embedder != nil {
		c.Embedder.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, debug bool) (*Components, error) {
	st, err := store.NewSQLiteStore(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var embedder ai.Embedder
	var generator ai.Generator
	if cfg.Mistral.Mock {
		embedder = ai.NewMockEmbedder(cfg.Mistral.MockDimensions)
		generator = ai.NewMockGenerator()
		logger.Info("using mock AI backends", zap.Int("dimensions", cfg.Mistral.MockDimensions))
	} else {
		embedderOpts := []ai.EmbedderOption{}
		if debug {
			embedderOpts = append(embedderOpts, ai.WithEmbedderLogger(logger))
		}
		mistralEmbedder, err := ai.NewMistralEmbedder(
			cfg.Mistral.APIKey,
			cfg.Mistral.BaseURL,
			cfg.Mistral.EmbeddingModel,
			cfg.Mistral.EmbedBatchSize,
			embedderOpts...,
		)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		mistralGenerator, err := ai.NewMistralGenerator(
			cfg.Mistral.APIKey,
			cfg.Mistral.BaseURL,
			cfg.Mistral.ChatModel,
			cfg.Mistral.Temperature,
		)
		if err != nil {
			mistralEmbedder.Close()
			_ = st.Close()
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
		embedder = mistralEmbedder
		generator = mistralGenerator
	}

	managerOpts := []corpus.Option{}
	if debug {
		managerOpts = append(managerOpts, corpus.WithLogger(logger))
	}
	manager := corpus.NewManager(st, cfg.Retrieval.K1, cfg.Retrieval.B, managerOpts...)
	if err := manager.Rebuild(context.Background()); err != nil {
		embedder.Close()
		_ = st.Close()
		return nil, fmt.Errorf("failed to build corpus snapshot: %w", err)
	}

	engineOpts := []search.Option{}
	if debug {
		engineOpts = append(engineOpts, search.WithLogger(logger))
	}
	engine := search.NewEngine(querygate.New(), embedder, generator, manager, &cfg.Retrieval, engineOpts...)

	extractorOpts := []extract.Option{}
	ingestorOpts := []ingest.Option{}
	if debug {
		extractorOpts = append(extractorOpts, extract.WithLogger(logger))
		ingestorOpts = append(ingestorOpts, ingest.WithLogger(logger))
	}
	ingestor := ingest.NewIngestor(
		st,
		embedder,
		manager,
		extract.NewExtractor(extractorOpts...),
		chunk.NewChunker(cfg.Chunking.MaxChars, cfg.Chunking.OverlapChars),
		ingestorOpts...,
	)

	return &Components{
		Store:    st,
		Embedder: embedder,
		Manager:  manager,
		Engine:   engine,
		Ingestor: ingestor,
	}, nil
}

func printUsage() {
	fmt.Println(`kotae - Question answering over your own documents

Usage:
  kotae server [flags]              Start the HTTP server
  kotae ask [flags] <question>      Ask a question against the ingested corpus
  kotae ingest [flags] <path>       Ingest a document or directory
  kotae delete [flags] <source>     Delete a document by source file name
  kotae status [flags]              Show corpus status
  kotae version                     Show version
  kotae help                        Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kotae/config.yaml)
  --debug            Enable debug logging (file events, retrieval detail, etc.)

Ask Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") to use direct storage when server is not running.
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --config string    Config file path

Delete Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.

Status Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use empty (--server "") for direct storage.
  --output string    Output format: text or json (default: text)

Examples:
  kotae server
  kotae ask "what does the runbook say about failover?"
  kotae ask --output json where are the backups stored
  kotae ingest docs/handbook.pdf
  kotae ingest ~/notes
  kotae delete handbook.pdf
  kotae status
  kotae status --output json`)
}
