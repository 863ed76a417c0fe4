package main

import (
	"context"
	"time"

	"github.com/otcheredev/notes-service/internal/auth"
	"github.com/otcheredev/notes-service/internal/config"
	"github.com/otcheredev/notes-service/internal/database"
	"github.com/otcheredev/notes-service/internal/repository"
	"github.com/otcheredev/notes-service/internal/seed"
	"github.com/otcheredev/notes-service/pkg/logger"
	"github.com/rs/zerolog/log"
)

// seed loads the demo tenants and accounts into PostgreSQL
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid password hashing settings")
	}

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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := seed.Demo(ctx, repository.NewGormStore(db), hasher); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().Msg("Seeding complete")
}
