package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/victoria/internal/api/rest"
	"github.com/fortuna/victoria/internal/cache"
	"github.com/fortuna/victoria/internal/config"
	"github.com/fortuna/victoria/internal/events"
	"github.com/fortuna/victoria/internal/fetch"
	"github.com/fortuna/victoria/internal/pipeline"
	"github.com/fortuna/victoria/internal/store"
)

const (
	serviceName    = "victoria"
	serviceVersion = "1.0.0"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (default: VICTORIA_CONFIG)")
	serve := flag.Bool("serve", false, "serve the artifacts API after the pipeline run")
	flag.Parse()

	log.Printf("Starting %s v%s - Competition Rating Pipeline", serviceName, serviceVersion)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Resource cache: local files by default, Redis when configured.
	var resourceCache cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(cfg.RedisURL, serviceName+":cache:")
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		resourceCache = redisStore
		log.Println("✓ Connected to Redis resource cache")
	} else {
		cacheDir := cfg.CacheDir
		if cacheDir == "" {
			cacheDir = cfg.DataDir + "/cache"
		}
		fileStore, err := cache.NewFileStore(cacheDir)
		if err != nil {
			log.Fatalf("Failed to create resource cache: %v", err)
		}
		resourceCache = fileStore
	}

	// Optional Postgres mirror.
	var db *store.Database
	if cfg.PostgresDSN != "" {
		db, err = store.NewDatabase(cfg.PostgresDSN)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer db.Close()
		if err := db.EnsureSchema(); err != nil {
			log.Fatalf("Failed to ensure schema: %v", err)
		}
		log.Println("✓ Connected to Postgres")
	}

	client := fetch.NewClient(cfg.BaseURL, resourceCache, cfg.NavTimeout())
	defer client.Close()

	bus := events.NewBus()
	orch := pipeline.New(cfg, client, resourceCache, db, bus)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Per-match failures are logged inside the run and do not affect the
	// exit code; only unwritable final artifacts do.
	exitCode := 0
	if err := orch.Run(ctx); err != nil {
		log.Printf("❌ Pipeline finished with fatal errors: %v", err)
		exitCode = 1
	}

	if !*serve {
		os.Exit(exitCode)
	}

	server := rest.NewServer(cfg.ServeAddr, cfg.DataDir, cfg.ModelGroups(), bus)
	go func() {
		log.Printf("Artifacts API listening on %s", cfg.ServeAddr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("API server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("API shutdown error: %v", err)
	}

	os.Exit(exitCode)
}
