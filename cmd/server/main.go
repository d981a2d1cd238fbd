package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/backup"
	"github.com/Nixie-Tech-LLC/hydra/internal/config"
	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/identity"
	"github.com/Nixie-Tech-LLC/hydra/internal/integrity"
	"github.com/Nixie-Tech-LLC/hydra/internal/maintenance"
	"github.com/Nixie-Tech-LLC/hydra/internal/storage"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// open the metadata store; this also runs pending migrations
	store := db.New(cfg.DatabasePath)
	if err := store.Open(); err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	videos := storage.NewVideoStore(cfg.VideoDir)
	if err := os.MkdirAll(videos.Dir(), 0o755); err != nil {
		log.Fatal().Err(err).Msg("failed to create video directory")
	}

	resolver := identity.NewResolver(store)
	auditor := integrity.NewAuditor(store, videos)
	manager := maintenance.NewManager(store, videos)

	policy, err := backup.LoadPolicy(cfg.BackupPolicyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load backup policy")
	}
	scheduler := backup.NewScheduler(store, cfg.BackupDir, cfg.BackupPolicyPath, policy)
	scheduler.Start()
	defer scheduler.Stop()

	r := gin.Default()
	RegisterRoutes(r, cfg, store, videos, resolver, auditor, scheduler, manager)

	log.Info().Str("address", cfg.ServerAddress).Msg("listening")
	if err := r.Run(cfg.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
