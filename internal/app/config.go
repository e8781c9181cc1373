package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	DatabaseURL string
	SentryDSN   string

	// AI providers
	OpenAIAPIKey     string
	OpenAIModel      string
	ElevenLabsAPIKey string

	// Voice settings
	TTSVoiceID    string // ElevenLabs voice ID
	TTSStability  float64
	TTSSimilarity float64

	// Dashboard authentication
	DashboardKey string
	JWTSecret    string
	JWTExpiry    time.Duration

	// Notifications
	DiscordWebhookURL string
}

func LoadConfigFromEnv() Config {
	jwtExpiry, err := time.ParseDuration(getenv("JWT_EXPIRY", "24h"))
	if err != nil {
		jwtExpiry = 24 * time.Hour
	}

	return Config{
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		DatabaseURL: getenv("DATABASE_URL", ""),
		SentryDSN:   getenv("SENTRY_DSN", ""),

		// AI providers
		OpenAIAPIKey:     getenv("OPENAI_API_KEY", ""),
		OpenAIModel:      getenv("OPENAI_MODEL", "gpt-4o-mini"),
		ElevenLabsAPIKey: getenv("ELEVENLABS_API_KEY", ""),

		// Voice settings
		TTSVoiceID:    getenv("TTS_VOICE_ID", ""),
		TTSStability:  getenvFloat("TTS_STABILITY", -1),
		TTSSimilarity: getenvFloat("TTS_SIMILARITY", -1),

		// Dashboard authentication
		DashboardKey: os.Getenv("DASHBOARD_ACCESS_KEY"),
		JWTSecret:    os.Getenv("JWT_SECRET"), // Required - no fallback for security
		JWTExpiry:    jwtExpiry,

		// Notifications
		DiscordWebhookURL: getenv("DISCORD_WEBHOOK_URL", ""),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvFloat parses a float env var, falling back to def on absence or
// parse failure.
func getenvFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
