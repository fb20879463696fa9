package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yazelin/jaba-ai/internal/audit"
	"github.com/yazelin/jaba-ai/internal/backend"
	"github.com/yazelin/jaba-ai/internal/config"
	"github.com/yazelin/jaba-ai/internal/imaging"
	"github.com/yazelin/jaba-ai/internal/logging"
	"github.com/yazelin/jaba-ai/internal/router"
	"github.com/yazelin/jaba-ai/internal/session"
	"github.com/yazelin/jaba-ai/internal/storage"
	"github.com/yazelin/jaba-ai/internal/store"
)

func main() {

	// ───────────────────────── ENV + CONFIG ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("❌ Config load failed:", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("❌ Missing auth.jwt_secret (AUTH_JWT_SECRET)")
	}

	logger, err := logging.NewLogger()
	if err != nil {
		log.Fatal("❌ Logger init failed:", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// ───────────────────────── BACKEND CLIENT ─────────────────────────
	client := backend.NewClient(cfg.Backend, logger)
	scope := backend.Scope{APIPrefix: cfg.Backend.APIPrefix}

	// ───────────────────────── STORE DIRECTORY ─────────────────────────
	var cache store.Cache
	if cfg.Redis.Host != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		cache = store.NewRedisCache(rdb)
	}

	directory := store.NewDirectory(
		func(ctx context.Context) ([]backend.Store, error) {
			return client.ListStores(ctx, scope)
		},
		nil,
		cache,
		time.Duration(cfg.Redis.TTL)*time.Second,
		logger,
	)
	if err := directory.WarmUp(ctx); err != nil {
		logger.Warn("store directory warm-up failed", zap.Error(err))
	}

	// ───────────────────────── AUDIT ─────────────────────────
	var recorder audit.Recorder
	if cfg.Database.URL != "" {
		pg, err := audit.NewPostgresRecorder(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal("❌ Audit database init failed:", err)
		}
		defer pg.Close()
		recorder = pg
	} else {
		recorder = audit.NewInMemoryRecorder()
	}

	// ───────────────────────── IMAGE ARCHIVE ─────────────────────────
	var archive session.Archiver
	if cfg.R2.Endpoint != "" {
		r2, err := storage.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatal("❌ R2 init failed:", err)
		}
		archive = r2
	}

	// ───────────────────────── SESSIONS ─────────────────────────
	compressor := &imaging.Compressor{
		MaxDimension: cfg.Workflow.MaxDimension,
		Quality:      cfg.Workflow.JPEGQuality,
	}

	manager := session.NewManager(session.ManagerConfig{
		Backend:        client,
		Directory:      directory,
		Audit:          recorder,
		Archive:        archive,
		Compressor:     compressor,
		Logger:         logger,
		APIPrefix:      cfg.Backend.APIPrefix,
		CanCreateStore: cfg.Workflow.CanCreateStore,
	})
	handler := session.NewHandler(manager)

	// ───────────────────────── START ─────────────────────────
	r := router.NewRouter(handler, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("API running", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatal("❌ Server stopped:", err)
	}
}
