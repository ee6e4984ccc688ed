package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hotelstaff/orderfeed/internal/enum"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string
	BackendBaseURL string
	BackendTimeout time.Duration
	SessionSecret  string
	SessionTTL     time.Duration
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	Vocabularies   map[enum.Domain]enum.Vocabulary
}

// Load reads configuration from the environment, after merging an optional
// .env file from the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, relying on system env vars")
	}

	backendTimeout, err := time.ParseDuration(getEnv("BACKEND_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("BACKEND_TIMEOUT: %w", err)
	}
	sessionTTL, err := time.ParseDuration(getEnv("SESSION_TTL", "12h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	roomVocab, err := enum.ParseVocabulary(getEnv("ROOM_STATUS_VOCABULARY", "live"))
	if err != nil {
		return nil, fmt.Errorf("ROOM_STATUS_VOCABULARY: %w", err)
	}
	outdoorVocab, err := enum.ParseVocabulary(getEnv("OUTDOOR_STATUS_VOCABULARY", "live"))
	if err != nil {
		return nil, fmt.Errorf("OUTDOOR_STATUS_VOCABULARY: %w", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		BackendBaseURL: strings.TrimRight(getEnv("BACKEND_BASE_URL", "https://qr.nukadscan.com/dashboard"), "/"),
		BackendTimeout: backendTimeout,
		SessionSecret:  getEnv("SESSION_SECRET", "dev-secret-change-in-production"),
		SessionTTL:     sessionTTL,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:8081,http://localhost:19006")),
		Vocabularies: map[enum.Domain]enum.Vocabulary{
			enum.DomainRoom:    roomVocab,
			enum.DomainOutdoor: outdoorVocab,
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
