package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/cache"
	"github.com/otcheredev/notes-service/internal/config"
	"github.com/otcheredev/notes-service/internal/database"
	"github.com/otcheredev/notes-service/internal/handlers"
	"github.com/otcheredev/notes-service/internal/repository"
	"github.com/otcheredev/notes-service/internal/repository/memory"
	"github.com/otcheredev/notes-service/internal/seed"
	"github.com/otcheredev/notes-service/internal/server"
	"github.com/otcheredev/notes-service/internal/services"
	"github.com/otcheredev/notes-service/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting notes service")

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid password hashing settings")
	}

	checks := make(map[string]handlers.CheckFunc)

	// Initialize stores
	var (
		store      repository.Store
		auditStore services.AuditStore
	)
	switch cfg.Store.Type {
	case "memory":
		memStore := memory.NewStore()
		if cfg.Store.Seed {
			if err := seed.Demo(context.Background(), memStore, hasher); err != nil {
				log.Fatal().Err(err).Msg("Failed to seed memory store")
			}
		}
		store, auditStore = memStore, memory.NewAuditLog()
		log.Warn().Msg("Using in-memory store, data is lost on restart")
	default:
		db, err := database.Connect(database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
			LogLevel: cfg.Database.LogLevel,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer database.Close(db)

		store, auditStore = repository.NewGormStore(db), repository.NewAuditRepository(db)
		checks["database"] = func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}
	}

	// Initialize cache
	var cacheImpl cache.Cache
	if cfg.Cache.Type == "redis" {
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		redisCache, err := cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisCache.Close()
		cacheImpl = redisCache
		checks["cache"] = redisCache.Ping
		log.Info().Msg("Redis cache initialized")
	} else {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		cacheImpl = memCache
		log.Info().Msg("Memory cache initialized")
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte(cfg.Auth.JWTSecret),
		Algorithm: cfg.Auth.JWTAlgorithm,
		TTL:       cfg.Auth.TokenTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	// Initialize services
	guard := services.NewLoginGuard(cacheImpl, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginAttemptWindow)
	authService, err := services.NewAuthService(store, hasher, tokens, guard)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth service")
	}

	quota := services.NewQuotaEnforcer(cfg.Quota.FreePlanNoteLimit, cfg.Quota.Strict)
	auditService := services.NewAuditService(auditStore)

	handler := server.NewRouter(cfg, server.Deps{
		Tokens:  tokens,
		Auth:    authService,
		Notes:   services.NewNoteService(store, quota, auditService),
		Tenants: services.NewTenantService(store, quota, auditService),
		Audit:   auditService,
		Checks:  checks,
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", addr).
			Str("store", cfg.Store.Type).
			Int("free_plan_note_limit", cfg.Quota.FreePlanNoteLimit).
			Bool("strict_quota", cfg.Quota.Strict).
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
