package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	Providers Providers `mapstructure:"providers"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
	Email     Email     `mapstructure:"email"`
	Server    Server    `mapstructure:"server"`
	Store     Store     `mapstructure:"store"`
	History   History   `mapstructure:"history"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey          string `mapstructure:"api_key"`
	Model           string `mapstructure:"model"`
	MatchTimeout    string `mapstructure:"match_timeout"`
	GenerateTimeout string `mapstructure:"generate_timeout"`
}

// Providers holds external data provider credentials
type Providers struct {
	Naver   NaverConfig   `mapstructure:"naver"`
	YouTube YouTubeConfig `mapstructure:"youtube"`
}

// NaverConfig holds Naver open-API credentials (DataLab trends + news search)
type NaverConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// YouTubeConfig holds the YouTube Data API key
type YouTubeConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// Pipeline holds matching/enrichment tuning knobs
type Pipeline struct {
	PageSize        int    `mapstructure:"page_size"`
	PaperTimeout    string `mapstructure:"paper_timeout"`
	NewsTimeout     string `mapstructure:"news_timeout"`
	PaperQueryDelay string `mapstructure:"paper_query_delay"`
}

// Email holds SMTP delivery configuration
type Email struct {
	SMTPHost    string `mapstructure:"smtp_host"`
	SMTPPort    int    `mapstructure:"smtp_port"`
	Username    string `mapstructure:"username"`
	AppPassword string `mapstructure:"app_password"`
	Recipient   string `mapstructure:"recipient"`
	FromName    string `mapstructure:"from_name"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	CORSEnabled  bool   `mapstructure:"cors_enabled"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// Store holds session-store configuration
type Store struct {
	DataDir string `mapstructure:"data_dir"`
}

// History holds idea-history retention configuration
type History struct {
	MaxEntries int `mapstructure:"max_entries"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".ideaforge")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// AI defaults
	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.match_timeout", "25s")
	viper.SetDefault("ai.gemini.generate_timeout", "30s")

	// Pipeline defaults
	viper.SetDefault("pipeline.page_size", 5)
	viper.SetDefault("pipeline.paper_timeout", "4s")
	viper.SetDefault("pipeline.news_timeout", "3s")
	viper.SetDefault("pipeline.paper_query_delay", "300ms")

	// Email defaults
	viper.SetDefault("email.smtp_host", "smtp.gmail.com")
	viper.SetDefault("email.smtp_port", 587)
	viper.SetDefault("email.from_name", "Ideaforge")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.cors_enabled", true)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s")

	// Store defaults
	viper.SetDefault("store.data_dir", ".ideaforge-cache")

	// History defaults
	viper.SetDefault("history.max_entries", 200)
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Naver DataLab / news search credentials
	bindEnvKeys("providers.naver.client_id", []string{
		"NAVER_CLIENT_ID",
	})
	bindEnvKeys("providers.naver.client_secret", []string{
		"NAVER_CLIENT_SECRET",
	})

	// YouTube Data API
	bindEnvKeys("providers.youtube.api_key", []string{
		"YOUTUBE_API_KEY",
	})

	// Gmail SMTP delivery
	bindEnvKeys("email.username", []string{
		"GMAIL_USER",
		"EMAIL_USERNAME",
	})
	bindEnvKeys("email.app_password", []string{
		"GMAIL_APP_PASSWORD",
		"EMAIL_PASSWORD",
	})
	bindEnvKeys("email.recipient", []string{
		"EMAIL_RECIPIENT",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"IDEAFORGE_DEBUG",
	})
}

// bindEnvKeys binds a config key to the first non-empty environment variable
func bindEnvKeys(configKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(configKey, value)
			return
		}
	}
}

// validateConfig checks duration strings and numeric bounds
func validateConfig(config *Config) error {
	durations := map[string]string{
		"ai.gemini.match_timeout":    config.AI.Gemini.MatchTimeout,
		"ai.gemini.generate_timeout": config.AI.Gemini.GenerateTimeout,
		"pipeline.paper_timeout":     config.Pipeline.PaperTimeout,
		"pipeline.news_timeout":      config.Pipeline.NewsTimeout,
		"pipeline.paper_query_delay": config.Pipeline.PaperQueryDelay,
		"server.read_timeout":        config.Server.ReadTimeout,
		"server.write_timeout":       config.Server.WriteTimeout,
	}
	for key, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %q", key, value)
		}
	}

	if config.Pipeline.PageSize <= 0 {
		return fmt.Errorf("pipeline.page_size must be positive, got %d", config.Pipeline.PageSize)
	}
	if config.History.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries must be positive, got %d", config.History.MaxEntries)
	}

	return nil
}

// MatchTimeoutDuration returns the parsed matching-stage budget.
func (g GeminiConfig) MatchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(g.MatchTimeout)
	return d
}

// GenerateTimeoutDuration returns the parsed generation-stage budget.
func (g GeminiConfig) GenerateTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(g.GenerateTimeout)
	return d
}

// PaperTimeoutDuration returns the parsed per-match paper search budget.
func (p Pipeline) PaperTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(p.PaperTimeout)
	return d
}

// NewsTimeoutDuration returns the parsed per-match news search budget.
func (p Pipeline) NewsTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(p.NewsTimeout)
	return d
}

// PaperQueryDelayDuration returns the parsed delay between paper query variants.
func (p Pipeline) PaperQueryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(p.PaperQueryDelay)
	return d
}
