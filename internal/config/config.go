package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the server reads from the environment. A .env
// file in the working directory is loaded first so local development does
// not need exported variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8081"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Origins allowed to call the API; the kiosk frontend dev server by
	// default.
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`

	// Assistant settings. With no API key the chat and voice endpoints
	// answer 503 and the rest of the kiosk works normally.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// VoiceEnabled gates the WebSocket voice endpoint separately from text
	// chat, since the speech upstream bills differently.
	VoiceEnabled bool `envconfig:"VOICE_ENABLED" default:"false"`
}

// Load reads the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	return &cfg, nil
}
