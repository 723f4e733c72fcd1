package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/tracker/internal/config"
	"github.com/iudanet/tracker/internal/logging"
	"github.com/iudanet/tracker/internal/server/handlers"
	"github.com/iudanet/tracker/internal/server/jwt"
	"github.com/iudanet/tracker/internal/server/middleware"
	"github.com/iudanet/tracker/internal/server/storage/sqlite"
	"github.com/iudanet/tracker/pkg/api"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to server config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	dbPath := flag.String("db", "", "Path to SQLite database (overrides config)")
	issueToken := flag.String("issue-token", "", "Print an access token for the user id and exit")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Address = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	tokens := jwt.NewService(cfg.JWTSecret, cfg.TokenTTL)

	if *issueToken != "" {
		token, expiresAt, err := tokens.Issue(*issueToken)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		fmt.Fprintf(os.Stderr, "Expires at %s\n", expiresAt.Format(time.RFC3339))
		return
	}

	logger, closer := logging.New(cfg.Log)
	defer closer.Close()

	if err := run(cfg, tokens, logger); err != nil {
		logger.Error("Server stopped with error", "error", err)
		closer.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Server, tokens *jwt.Service, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthPath := api.BasePath + "/health"

	mux := http.NewServeMux()
	mux.Handle("GET "+healthPath, http.HandlerFunc(handlers.NewHealthHandler(logger, store).Health))
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	handlers.NewEntityHandler(logger, store).Routes(mux, middleware.AuthMiddleware(logger, tokens))

	chain := []func(http.Handler) http.Handler{
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger, healthPath),
	}
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger)
		chain = append(chain, limiter.Middleware)
		go sweep(ctx, limiter, cfg.RateWindow)
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           middleware.Chain(mux, chain...),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Tracker server starting", "address", cfg.Address, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return <-errCh
}

// sweep периодически очищает устаревшие окна rate limiter
func sweep(ctx context.Context, limiter *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}

func printVersion() {
	fmt.Printf("Tracker Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
