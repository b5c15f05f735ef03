package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"reelify/api"
	"reelify/config"
	"reelify/handlers"
	"reelify/services/catalog"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	configFlag := flag.String("config", "", "path to settings.json (default $REELIFY_CONFIG or cache/settings.json)")
	debug := flag.Bool("pprof", false, "expose /debug/pprof to localhost callers")
	flag.Parse()

	fmt.Println("🎬 reelify gateway starting...")

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env: %v", err)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = os.Getenv("REELIFY_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join("cache", "settings.json")
	}

	// Init config manager and load settings (creates defaults if missing)
	cfgManager := config.NewManager(configPath)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}
	config.ApplyEnv(&settings, os.Getenv)
	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	setupLogging(settings.Log)

	if settings.Upstream.APIKey == "" {
		log.Println("❌ TMDB_API_KEY is not set. Catalog routes will answer 500 until it is configured.")
	}

	svc := catalog.NewService(settings.Upstream, nil)

	watcher, err := config.NewWatcher(cfgManager, 500*time.Millisecond, func(updated config.Settings) {
		config.ApplyEnv(&updated, os.Getenv)
		svc.UpdateSettings(updated.Upstream)
		slog.Info("upstream settings reloaded", "configured", svc.Configured(), "language", updated.Upstream.Language)
	})
	if err != nil {
		log.Printf("Warning: settings hot reload disabled: %v", err)
	} else if err := watcher.Start(); err != nil {
		log.Printf("Warning: settings hot reload disabled: %v", err)
		watcher = nil
	}

	opts := api.Options{EnableDebug: *debug}
	if settings.IsProduction() {
		opts.StaticDir = settings.Server.StaticDir
	}

	r := mux.NewRouter()
	api.Register(r,
		handlers.NewCatalogHandler(svc, settings.IsProduction()),
		handlers.NewHealthHandler(svc.Configured),
		opts,
	)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	fmt.Printf("Server starting on %s (%s)\n", addr, settings.Server.Environment)
	if opts.StaticDir != "" {
		fmt.Printf("📁 Serving web client from %s\n", opts.StaticDir)
	}

	// Upstream calls retry within the request, so the write timeout covers
	// every attempt plus backoff.
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(settings.Upstream.TimeoutSeconds*settings.Upstream.MaxAttempts+15) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-shutdownChan
	log.Println("🛑 Shutdown signal received, cleaning up...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			log.Printf("Settings watcher shutdown error: %v", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("✅ Shutdown complete")
}

// setupLogging points log and slog at stdout, mirrored to a rotating file
// when one is configured.
func setupLogging(cfg config.LogConfig) {
	var out io.Writer = os.Stdout
	if cfg.File != "" {
		logDir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("Warning: could not create log directory %s: %v", logDir, err)
		} else {
			out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			})
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.Level)})))
	if cfg.File != "" {
		log.Printf("Logging to file: %s", cfg.File)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
