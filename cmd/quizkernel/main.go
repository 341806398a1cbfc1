// quizkernel runs the adaptive assessment kernel's HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/quizkernel/pkg/api"
	"github.com/codeready-toolchain/quizkernel/pkg/config"
	"github.com/codeready-toolchain/quizkernel/pkg/database"
	"github.com/codeready-toolchain/quizkernel/pkg/irt"
	"github.com/codeready-toolchain/quizkernel/pkg/kernel"
	"github.com/codeready-toolchain/quizkernel/pkg/models"
	"github.com/codeready-toolchain/quizkernel/pkg/repository"
	"github.com/codeready-toolchain/quizkernel/pkg/repository/memory"
	"github.com/codeready-toolchain/quizkernel/pkg/repository/postgres"
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
		log.Printf("Warning: could not load %s: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	storageBackend := getEnv("STORAGE_BACKEND", "memory")

	log.Printf("Starting quizkernel")
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Config Directory: %s", *configDir)
	log.Printf("Storage Backend: %s", storageBackend)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}
	stats := cfg.Stats()
	log.Printf("Loaded %d quizzes, %d questions, %d knowledge components",
		stats.Quizzes, stats.Questions, stats.KnowledgeComponents)

	repo, dbPool, err := setupRepository(ctx, storageBackend, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage backend: %v", err)
	}
	if dbPool != nil {
		defer dbPool.Close()
	}

	engine := kernel.NewEngine(repo, cfg.KnowledgeComponents, engineOptions(cfg)...)

	server := api.NewServer(cfg, engine, repo, dbPool)

	go func() {
		log.Printf("HTTP server listening on :%s", httpPort)
		log.Printf("Health check available at: http://localhost:%s/healthz", httpPort)
		if err := server.Start(":" + httpPort); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// engineOptions translates a catalogue's deployment-overridable priors
// into kernel.Options, falling back to the package defaults for any
// field left unset in YAML.
func engineOptions(cfg *config.Config) []kernel.Option {
	if cfg.Engine.PriorMean == nil && cfg.Engine.PriorSd == nil {
		return nil
	}
	mean, sd := irt.DefaultPriorMean, irt.DefaultPriorSd
	if cfg.Engine.PriorMean != nil {
		mean = *cfg.Engine.PriorMean
	}
	if cfg.Engine.PriorSd != nil {
		sd = *cfg.Engine.PriorSd
	}
	return []kernel.Option{kernel.WithPriors(mean, sd)}
}

// setupRepository builds the Repository named by backend: "memory" seeds
// an in-process store from cfg (suitable for demos and local dev),
// "postgres" opens a pool, applies migrations, and returns a Store
// backed by it. The returned pool is nil for the memory backend, which
// NewServer takes as a signal to skip the database health check.
func setupRepository(ctx context.Context, backend string, cfg *config.Config) (repository.Repository, *pgxpool.Pool, error) {
	switch backend {
	case "memory":
		store := memory.New()
		cfg.SeedMemoryStore(store)
		// The kernel treats user identity as externally managed; the
		// memory backend has no user-provisioning endpoint, so a demo
		// user is seeded here for local runs against it.
		store.SeedUser(models.User{ID: "demo-user"})
		return store, nil, nil
	case "postgres":
		dbCfg, err := database.LoadConfigFromEnv()
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(dbCfg.DSN()); err != nil {
			return nil, nil, err
		}
		pool, err := database.NewPool(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		log.Println("Connected to PostgreSQL and applied migrations")
		return postgres.New(pool), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown STORAGE_BACKEND %q: must be \"memory\" or \"postgres\"", backend)
	}
}
