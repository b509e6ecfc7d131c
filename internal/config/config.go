package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Console  ConsoleConfig  `mapstructure:"console"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ConsoleConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type WorkerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SyncConfig struct {
	// PollInterval enables a periodic full refresh when positive.
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// LogSeedLimit caps how many persisted worker logs are fetched on start.
	LogSeedLimit int `mapstructure:"log_seed_limit"`
}

type DatabaseConfig struct {
	Path        string `mapstructure:"path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("console.port", 8090)
	v.SetDefault("console.mode", "debug")
	v.SetDefault("console.cors.allow_all_origins", true)
	v.SetDefault("console.cors.allowed_origins", []string{})
	v.SetDefault("worker.base_url", "http://localhost:8000")
	v.SetDefault("worker.timeout", 30*time.Second)
	v.SetDefault("sync.poll_interval", 0)
	v.SetDefault("sync.log_seed_limit", 500)
	v.SetDefault("database.path", "./data/frameforge.db")
	v.SetDefault("database.auto_migrate", true)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("worker.base_url", "WORKER_BASE_URL")
	v.BindEnv("worker.token", "WORKER_TOKEN")
	v.BindEnv("console.port", "CONSOLE_PORT")
	v.BindEnv("database.path", "DATABASE_PATH")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Worker.BaseURL == "" {
		return nil, fmt.Errorf("worker.base_url is required")
	}

	return &cfg, nil
}
