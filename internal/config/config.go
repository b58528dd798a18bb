package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Proposers.
const (
	ProposerSearch = "search"
	ProposerGemini = "gemini"
	ProposerGroq   = "groq"
)

// Config holds the configuration for the application.
type Config struct {
	DatabasePath        string
	CatalogSnapshotPath string

	// Planner
	Proposer    string
	MaxAttempts int
	Seed        uint64

	GeminiAPIKey string
	GeminiModel  string
	GroqAPIKey   string
	GroqModel    string

	// Weather; zero values mean Prague.
	WeatherLatitude  float64
	WeatherLongitude float64
	WeatherTimezone  string

	GhostURL      string
	GhostAdminKey string

	// Telegram Config
	TelegramBotToken       string
	TelegramWebhookURL     string
	TelegramAllowedUserIDs []int64

	Port     string
	LogLevel string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_path", "data/db/menu.db")
	v.SetDefault("catalog_snapshot_path", "data/catalog.json")
	v.SetDefault("proposer", ProposerSearch)
	v.SetDefault("planner_max_attempts", 3)
	v.SetDefault("planner_seed", 0)
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("groq_model", "llama-3.3-70b-versatile")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
}

// NewFromEnv creates a new Config from environment variables. Values from
// .env.local and .env are loaded first; variables already set win.
func NewFromEnv() (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	return FromViper(v)
}

// FromViper reads and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		DatabasePath:        v.GetString("database_path"),
		CatalogSnapshotPath: v.GetString("catalog_snapshot_path"),
		Proposer:            strings.ToLower(strings.TrimSpace(v.GetString("proposer"))),
		MaxAttempts:         v.GetInt("planner_max_attempts"),
		Seed:                v.GetUint64("planner_seed"),
		GeminiAPIKey:        v.GetString("gemini_api_key"),
		GeminiModel:         v.GetString("gemini_model"),
		GroqAPIKey:          v.GetString("groq_api_key"),
		GroqModel:           v.GetString("groq_model"),
		WeatherLatitude:     v.GetFloat64("weather_latitude"),
		WeatherLongitude:    v.GetFloat64("weather_longitude"),
		WeatherTimezone:     v.GetString("weather_timezone"),
		GhostURL:            v.GetString("ghost_api_url"),
		GhostAdminKey:       v.GetString("ghost_admin_api_key"),
		TelegramBotToken:    v.GetString("telegram_bot_token"),
		TelegramWebhookURL:  v.GetString("telegram_webhook_url"),
		Port:                v.GetString("port"),
		LogLevel:            v.GetString("log_level"),
	}

	ids, err := parseUserIDs(v.GetString("telegram_allowed_user_ids"))
	if err != nil {
		return nil, err
	}
	cfg.TelegramAllowedUserIDs = ids

	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("PLANNER_MAX_ATTEMPTS must be positive, got %d", cfg.MaxAttempts)
	}

	switch cfg.Proposer {
	case ProposerSearch:
	case ProposerGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
	case ProposerGroq:
		if cfg.GroqAPIKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY environment variable not set")
		}
	default:
		return nil, fmt.Errorf("unknown PROPOSER %q (want search, gemini or groq)", cfg.Proposer)
	}

	return cfg, nil
}

func parseUserIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOWED_USER_IDS entry %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GhostEnabled reports whether publishing is configured.
func (c *Config) GhostEnabled() bool {
	return c.GhostURL != "" && c.GhostAdminKey != ""
}
