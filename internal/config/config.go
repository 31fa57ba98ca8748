package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	nuts "github.com/vaudience/go-nuts"
)

// Storage backends
const (
	BackendCSV      = "csv"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all configuration for the station hub
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Twilio     TwilioConfig     `mapstructure:"twilio"`
	Drive      DriveConfig      `mapstructure:"drive"`
	Report     ReportConfig     `mapstructure:"report"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	PublicURL       string        `mapstructure:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	CSVPath string `mapstructure:"csv_path"`
}

type DatabaseConfig struct {
	Postgres   PostgresConfig `mapstructure:"postgres"`
	SQLitePath string         `mapstructure:"sqlite_path"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig is optional. An empty Host disables redis and the replay
// guard falls back to an in-process cache.
type RedisConfig struct {
	Host      string        `mapstructure:"host"`
	Port      int           `mapstructure:"port"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	ReplayTTL time.Duration `mapstructure:"replay_ttl"`
}

type TwilioConfig struct {
	AuthToken string `mapstructure:"auth_token"`
}

type DriveConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	CredentialsPath string        `mapstructure:"credentials_path"`
	TokenPath       string        `mapstructure:"token_path"`
	FolderID        string        `mapstructure:"folder_id"`
	UploadInterval  time.Duration `mapstructure:"upload_interval"`
}

type ReportConfig struct {
	Title   string `mapstructure:"title"`
	DataURL string `mapstructure:"data_url"`
}

type MonitoringConfig struct {
	MetricsEnabled bool `mapstructure:"metrics_enabled"`
}

// Load initializes configuration from .env, environment variables and config file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		nuts.L.Debugf("[Config] No .env file loaded: %v", err)
	}

	v := viper.New()
	v.SetEnvPrefix("SBSBS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 4567)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Storage defaults
	v.SetDefault("storage.backend", BackendCSV)
	v.SetDefault("storage.csv_path", "SBSBS.csv")

	// Database defaults
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.sqlite_path", "sbsbs.db")

	// Redis defaults
	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.replay_ttl", "24h")

	v.SetDefault("twilio.auth_token", "")

	// Drive defaults
	v.SetDefault("drive.enabled", false)
	v.SetDefault("drive.credentials_path", "assets/credentials.json")
	v.SetDefault("drive.token_path", "tokens/token.json")
	v.SetDefault("drive.folder_id", "")
	v.SetDefault("drive.upload_interval", "0s")

	// Report defaults
	v.SetDefault("report.title", "Smart Boa Snake Basking Station")
	v.SetDefault("report.data_url", "/report/data.json")

	v.SetDefault("monitoring.metrics_enabled", true)
}

func validateConfig(config *Config) error {
	switch config.Storage.Backend {
	case BackendCSV:
		if config.Storage.CSVPath == "" {
			return fmt.Errorf("storage csv_path is required for the csv backend")
		}
	case BackendPostgres:
		if config.Database.Postgres.Host == "" {
			return fmt.Errorf("postgres host is required for the postgres backend")
		}
	case BackendSQLite:
		if config.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite_path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", config.Storage.Backend)
	}
	if config.Drive.UploadInterval < 0 {
		return fmt.Errorf("drive upload_interval must not be negative")
	}
	if config.Redis.ReplayTTL <= 0 {
		return fmt.Errorf("redis replay_ttl must be positive")
	}
	return nil
}
