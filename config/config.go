package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Session   SessionConfig   `mapstructure:"session"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address        string `mapstructure:"address"`
	MaxMessageLen  int    `mapstructure:"max_message_len"`
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// LLMConfig selects and configures the completion backend.
type LLMConfig struct {
	Provider    string        `mapstructure:"provider"` // openai, gemini
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// SearchConfig configures the web search adapter.
type SearchConfig struct {
	Provider           string   `mapstructure:"provider"` // serper, brave
	APIKey             string   `mapstructure:"api_key"`
	MaxResultsPerQuery int      `mapstructure:"max_results_per_query"`
	PriorityDomains    []string `mapstructure:"priority_domains"`
}

// FetchConfig configures the content fetcher.
type FetchConfig struct {
	Fetcher        string        `mapstructure:"fetcher"` // readability, chromedp
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxChars       int           `mapstructure:"max_chars"`
	MaxFetches     int           `mapstructure:"max_fetches"`
	MaxPrioritized int           `mapstructure:"max_prioritized"`
}

// SessionConfig configures session storage and eviction.
type SessionConfig struct {
	Store         string        `mapstructure:"store"` // inmemory, redis
	SnapshotPath  string        `mapstructure:"snapshot_path"`
	MaxAge        time.Duration `mapstructure:"max_age"`
	SweepSchedule string        `mapstructure:"sweep_schedule"` // cron expression
	Redis         RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings for the redis session store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Addr) == "" {
		return fmt.Errorf("session.redis.addr required when session.store is redis")
	}
	return nil
}

// TelemetryConfig contains metrics settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func (s SessionConfig) Validate() error {
	if s.MaxAge <= 0 {
		return fmt.Errorf("session.max_age must be > 0")
	}
	if s.Store == "redis" {
		return s.Redis.Validate()
	}
	return nil
}

// LoadConfig loads config from file
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.default_timeout", "60s")
	viper.SetDefault("server.address", ":10002")
	viper.SetDefault("server.max_message_len", 5000)
	viper.SetDefault("server.allowed_origins", "*")
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.timeout", "30s")
	viper.SetDefault("search.provider", "serper")
	viper.SetDefault("search.max_results_per_query", 10)
	viper.SetDefault("search.priority_domains", []string{"indiankanoon.org", "devgan.in"})
	viper.SetDefault("fetch.fetcher", "readability")
	viper.SetDefault("fetch.timeout", "15s")
	viper.SetDefault("fetch.max_chars", 2000)
	viper.SetDefault("fetch.max_fetches", 8)
	viper.SetDefault("fetch.max_prioritized", 4)
	viper.SetDefault("session.store", "inmemory")
	viper.SetDefault("session.snapshot_path", "sessions.json")
	viper.SetDefault("session.max_age", "24h")
	viper.SetDefault("session.sweep_schedule", "0 * * * *")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("ADHIKAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // ADHIKAR_LLM_API_KEY and friends

	if err := viper.ReadInConfig(); err != nil {
		// config file is optional; defaults plus env cover a dev setup
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	// API keys commonly arrive via bare env vars
	if config.LLM.APIKey == "" {
		switch config.LLM.Provider {
		case "gemini":
			config.LLM.APIKey = os.Getenv("GOOGLE_API_KEY")
		default:
			config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	if config.Search.APIKey == "" {
		switch config.Search.Provider {
		case "brave":
			config.Search.APIKey = os.Getenv("BRAVE_API_KEY")
		default:
			config.Search.APIKey = os.Getenv("SERPER_API_KEY")
		}
	}

	if err := config.Session.Validate(); err != nil {
		panic(err)
	}
	return &config
}
