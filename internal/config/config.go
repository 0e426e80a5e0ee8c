package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"os"
	"strings"
)

const (
	defaultDBPath = "./invoicer.db"
	defaultPort   = "8080"
	defaultEnv    = "development"
	dotEnvPath    = ".env"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env           string
	SessionSecret string
	DBPath        string
	Port          string
	// ExportDir keeps a server-side copy of every exported PDF when set.
	ExportDir string

	// DotEnvKeys lists the variables that came from the .env file.
	DotEnvKeys []string
	// EphemeralSecret is set when SESSION_SECRET was missing and a random
	// per-process secret is used instead; sessions do not survive a restart.
	EphemeralSecret bool
}

// Load reads environment variables and returns a populated Config.
func Load() Config {
	return load(dotEnvPath)
}

func load(envFile string) Config {
	// Best-effort: production should use real env injection.
	applied, err := loadDotEnv(envFile)
	if err != nil {
		log.Printf("warning: reading %s: %v", envFile, err)
	}
	if len(applied) > 0 {
		log.Printf("loaded %s from %s", strings.Join(applied, ", "), envFile)
	}

	cfg := Config{
		Env:           os.Getenv("APP_ENV"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		DBPath:        os.Getenv("DB_PATH"),
		Port:          os.Getenv("PORT"),
		ExportDir:     strings.TrimSpace(os.Getenv("EXPORT_DIR")),
		DotEnvKeys:    applied,
	}

	if cfg.Env == "" {
		cfg.Env = defaultEnv
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}

	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set, using a random per-process secret")
		cfg.SessionSecret = randomSecret()
		cfg.EphemeralSecret = true
	}

	return cfg
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("generate session secret: %v", err)
	}
	return hex.EncodeToString(b)
}

// IsDev reports whether the app runs in a local development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.Env) {
	case "", "dev", "development", "local":
		return true
	}
	return false
}

// Validate rejects settings that are only acceptable on a developer machine.
func (c Config) Validate() error {
	if c.EphemeralSecret && !c.IsDev() {
		return errors.New("SESSION_SECRET must be set outside development")
	}
	return nil
}
