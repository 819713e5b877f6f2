// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr  string
	DBPath      string
	StaticDir   string
	LegacyPath  string
	TokenUses   int
	VisionModel string
	APIKey      string
}

// HasAPIKey reports whether an upstream API key was resolved. When false the
// token and vision routes answer with a configuration error; the remaining
// routes keep working.
func (c *Config) HasAPIKey() bool {
	return c.APIKey != ""
}

// Load reads configuration from the environment and returns a validated Config.
// A .env file in the working directory is loaded first if present. The API key
// is resolved once here via ResolveAPIKey and is immutable afterwards; its
// absence is not an error. Optional variables with defaults:
// LABSERVER_LISTEN_ADDR (127.0.0.1:8081), LABSERVER_DB_PATH (user_data.db),
// LABSERVER_STATIC_DIR (.), LABSERVER_LEGACY_CONFIG (config.js),
// LABSERVER_TOKEN_USES (100), LABSERVER_VISION_MODEL (gemini-3-flash-preview).
func Load() (*Config, error) {
	// Mirror of the browser app's dotenv behavior; a missing file is normal.
	_ = godotenv.Load()

	listenAddr := "127.0.0.1:8081"
	if v, ok := os.LookupEnv("LABSERVER_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "user_data.db"
	if v, ok := os.LookupEnv("LABSERVER_DB_PATH"); ok {
		dbPath = v
	}

	staticDir := "."
	if v, ok := os.LookupEnv("LABSERVER_STATIC_DIR"); ok {
		staticDir = v
	}

	legacyPath := "config.js"
	if v, ok := os.LookupEnv("LABSERVER_LEGACY_CONFIG"); ok {
		legacyPath = v
	}

	tokenUses := 100
	if v, ok := os.LookupEnv("LABSERVER_TOKEN_USES"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("LABSERVER_TOKEN_USES has invalid value %q: must be a positive integer", v)
		}
		tokenUses = parsed
	}

	visionModel := "gemini-3-flash-preview"
	if v, ok := os.LookupEnv("LABSERVER_VISION_MODEL"); ok {
		visionModel = v
	}

	return &Config{
		ListenAddr:  listenAddr,
		DBPath:      dbPath,
		StaticDir:   staticDir,
		LegacyPath:  legacyPath,
		TokenUses:   tokenUses,
		VisionModel: visionModel,
		APIKey:      ResolveAPIKey(legacyPath),
	}, nil
}
