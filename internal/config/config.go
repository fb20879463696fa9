package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	R2       R2Config       `mapstructure:"r2"`
	Workflow WorkflowConfig `mapstructure:"workflow"`
}

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// BackendConfig points at the recognition collaborator.
type BackendConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	APIPrefix            string `mapstructure:"api_prefix"`
	Token                string `mapstructure:"token"`
	Timeout              int    `mapstructure:"timeout"`
	MaxRequestsPerSecond int    `mapstructure:"max_requests_per_second"`
}

// AuthConfig holds admin token verification settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// DatabaseConfig holds the audit database connection string.
// Empty URL keeps the audit log in memory.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// RedisConfig holds the store-directory cache connection details.
// Empty host disables the cache.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	TTL      int    `mapstructure:"ttl"`
}

// R2Config holds the image archive bucket credentials.
// Empty endpoint disables archiving.
type R2Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	BaseURL   string `mapstructure:"base_url"`
}

// WorkflowConfig tunes the recognition workflow itself.
type WorkflowConfig struct {
	CanCreateStore bool `mapstructure:"can_create_store"`
	MaxDimension   int  `mapstructure:"max_dimension"`
	JPEGQuality    int  `mapstructure:"jpeg_quality"`
}

// Load loads configuration from config.yaml with environment variable overrides.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No file is fine: defaults plus environment.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.allow_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	viper.SetDefault("backend.base_url", "http://localhost:9000")
	viper.SetDefault("backend.api_prefix", "/api/admin")
	viper.SetDefault("backend.token", "")
	viper.SetDefault("backend.timeout", 60)
	viper.SetDefault("backend.max_requests_per_second", 5)

	// Credential keys need an empty default registered, otherwise viper
	// never binds them and env-only deployments lose the override.
	viper.SetDefault("auth.jwt_secret", "")

	viper.SetDefault("database.url", "")

	viper.SetDefault("redis.host", "")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.database", 0)
	viper.SetDefault("redis.ttl", 300)

	viper.SetDefault("r2.endpoint", "")
	viper.SetDefault("r2.access_key", "")
	viper.SetDefault("r2.secret_key", "")
	viper.SetDefault("r2.bucket", "")
	viper.SetDefault("r2.base_url", "")

	viper.SetDefault("workflow.can_create_store", true)
	viper.SetDefault("workflow.max_dimension", 1920)
	viper.SetDefault("workflow.jpeg_quality", 85)
}
