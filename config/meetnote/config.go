package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port        int    `env:"PORT" env-default:"8000"`
	DatabaseURL string `env:"DATABASE_URL" env-default:"meetnote.db"`

	JWTSecret string        `env:"SECRET_KEY" env-default:"your-secret-key-change-this-in-production"`
	TokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"168h"`

	Whisper    WhisperConfig
	OpenRouter OpenRouterConfig

	CORSOrigins   []string `env:"CORS_ORIGINS" env-default:"http://localhost:3000,http://localhost:3001,http://localhost:5173"`
	MaxAudioSize  int64    `env:"MAX_AUDIO_SIZE" env-default:"25000000"`
	RecordingsDir string   `env:"RECORDINGS_DIR" env-default:"./recordings"`
}

type WhisperConfig struct {
	APIURL      string `env:"WHISPER_API_URL"`
	APIKey      string `env:"WHISPER_API_KEY"`
	Model       string `env:"WHISPER_MODEL" env-default:"base"`
	Device      string `env:"WHISPER_DEVICE" env-default:"cpu"`
	ComputeType string `env:"WHISPER_COMPUTE_TYPE" env-default:"int8"`
	Language    string `env:"WHISPER_LANGUAGE" env-default:"en"`
}

type OpenRouterConfig struct {
	APIKey  string `env:"OPENROUTER_API_KEY"`
	BaseURL string `env:"OPENROUTER_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	Model   string `env:"OPENROUTER_MODEL" env-default:"mistralai/mistral-7b-instruct:free"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}

	return &cfg
}
