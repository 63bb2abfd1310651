package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process configuration sourced from the environment.
type Config struct {
	Addr          string        // listen address for the websocket/HTTP server
	PublicBaseURL string        // base URL encoded into lobby share QR codes
	EngineBaseURL string        // rules engine base URL
	EngineAPIKey  string        // shared secret sent as X-API-Key
	EngineTimeout time.Duration // per-request timeout for engine calls
	Debug         bool
}

// Load reads .env (if present) and assembles the configuration from the
// environment, falling back to development defaults.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("config: loaded .env")
	}

	return Config{
		Addr:          getEnv("ADDR", ":8001"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8001"),
		EngineBaseURL: getEnv("ENGINE_API_URL", "http://localhost:5001"),
		EngineAPIKey:  getEnv("ENGINE_API_KEY", "poker-game-api-key-2024"),
		EngineTimeout: time.Duration(getEnvInt("ENGINE_TIMEOUT_SECONDS", 30)) * time.Second,
		Debug:         os.Getenv("DEBUG") != "",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
