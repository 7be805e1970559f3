package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/shopwatch/internal/api"
	"github.com/kalambet/shopwatch/internal/bot"
	"github.com/kalambet/shopwatch/internal/config"
	"github.com/kalambet/shopwatch/internal/conversation"
	"github.com/kalambet/shopwatch/internal/line"
	"github.com/kalambet/shopwatch/internal/llm"
	"github.com/kalambet/shopwatch/internal/relevance"
	"github.com/kalambet/shopwatch/internal/review"
	"github.com/kalambet/shopwatch/internal/search"
	"github.com/kalambet/shopwatch/internal/storage"
	"github.com/kalambet/shopwatch/internal/tracker"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the shopwatch server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running shopwatch server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show shopwatch system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "shopwatch.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "shopwatch version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("shopwatch is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("shopwatch is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build the search aggregator over all price sources.
	filter := relevance.New(relevance.DefaultConfig())
	aggregator := search.NewAggregator(filter, slog.Default(),
		search.NewFindPrice(),
		search.NewBigGo(),
		search.NewPChome(),
	)

	// Review generation falls back to templates when no OpenAI key is set.
	var llmClient *llm.Client
	if cfg.Review.OpenAIAPIKey != "" {
		llmClient = llm.NewClient(cfg.Review.OpenAIAPIKey, cfg.Review.Model)
		slog.Info("review generation via OpenAI", "model", cfg.Review.Model)
	} else {
		slog.Info("no OpenAI API key configured, using template reviews")
	}
	reviewer := review.NewGenerator(llmClient)

	trackerSvc := tracker.NewService(store, aggregator, slog.Default())
	lineClient := line.NewClient(cfg.Line.ChannelAccessToken)
	botHandler := bot.NewHandler(trackerSvc, reviewer, aggregator, conversation.NewStore(), slog.Default())

	// Start the periodic price sweep. Tracker owners get a LINE push the
	// first time the market price crosses their target.
	sweeper := tracker.NewSweeper(store, aggregator, lineClient, cfg.Tracker.CheckInterval, slog.Default())
	go sweeper.Run(ctx)

	// Compose top-level router: webhook routes + optional admin routes.
	webhook := api.NewWebhookHandler(api.WebhookDeps{
		ChannelSecret: cfg.Line.ChannelSecret,
		Bot:           botHandler,
		Replier:       lineClient,
		Logger:        slog.Default(),
	})
	topRouter := chi.NewRouter()
	topRouter.Mount("/", webhook)
	if cfg.Server.AdminToken != "" {
		topRouter.Mount("/admin", api.NewAdminHandler(api.AdminDeps{
			Store: store,
			Token: cfg.Server.AdminToken,
		}))
	} else {
		slog.Info("no admin token configured, admin API disabled")
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store:   store,
		Tracker: trackerSvc,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// The webhook must be reachable by the LINE platform, so bind all
	// interfaces rather than loopback.
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: topRouter,
	}

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "shopwatch listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("shopwatch is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop shopwatch (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to shopwatch (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	running := false
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if cfg.Review.OpenAIAPIKey != "" {
		printStatus("Reviews", "OpenAI (%s)", cfg.Review.Model)
	} else {
		printStatus("Reviews", "template fallback (no API key)")
	}
	printStatus("Check interval", "%s", cfg.Tracker.CheckInterval)

	// Show tracker count if the server is running and the admin API is enabled.
	if running && cfg.Server.AdminToken != "" {
		apiClient := newAPIClient(cfg)
		trackers, err := apiClient.listTrackers(context.Background(), "")
		if err == nil {
			printStatus("Active trackers", "%d", len(trackers))
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}
