package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds environment-based settings.
type Config struct {
	ServerAddress    string
	JWTSecret        string
	DatabasePath     string
	VideoDir         string
	BackupDir        string
	BackupPolicyPath string
}

// Load reads configuration from a .env file (if present) and the
// environment. JWT_SECRET is required; everything else defaults under
// DATA_DIR.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("could not read .env file")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	addr := os.Getenv("SERVER_ADDRESS")
	if addr == "" {
		addr = ":8080"
	}
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	cfg := &Config{
		ServerAddress:    addr,
		JWTSecret:        secret,
		DatabasePath:     envOr("DATABASE_PATH", filepath.Join(dataDir, "hydra.db")),
		VideoDir:         envOr("VIDEO_DIR", filepath.Join(dataDir, "videos")),
		BackupDir:        envOr("BACKUP_DIR", filepath.Join(dataDir, "backups")),
		BackupPolicyPath: envOr("BACKUP_POLICY_PATH", filepath.Join(dataDir, "backup-policy.json")),
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
