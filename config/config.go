package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable pointing at an optional YAML file.
const ConfigPathEnvVar = "CONFIG_PATH"

// Database drivers understood by the store.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string `koanf:"server_port"`
	ServerHost string `koanf:"server_host"`

	// Database configuration
	DBDriver       string `koanf:"db_driver"`
	DBPath         string `koanf:"db_path"`
	DBHost         string `koanf:"db_host"`
	DBPort         string `koanf:"db_port"`
	DBUser         string `koanf:"db_user"`
	DBPassword     string `koanf:"db_password"`
	DBName         string `koanf:"db_name"`
	DBSSLMode      string `koanf:"db_ssl_mode"`
	DBMaxOpenConns int    `koanf:"db_max_open_conns"`

	// Redis configuration, used for rate limiting only
	RedisHost     string `koanf:"redis_host"`
	RedisPort     string `koanf:"redis_port"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
	RedisURL      string `koanf:"redis_url"`

	RecipeCreateLimit int           `koanf:"recipe_create_limit"`
	RecipeModifyLimit int           `koanf:"recipe_modify_limit"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`

	// JWT configuration. Tokens are issued by the identity service; we only verify them.
	JWTSecret string `koanf:"jwt_secret"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// Comma separated list of allowed browser origins
	CORSOrigins string `koanf:"cors_origins"`

	PageSize int `koanf:"page_size"`

	// Recipe images
	S3Bucket    string        `koanf:"s3_bucket_name"`
	AWSRegion   string        `koanf:"aws_region"`
	ImageURLTTL time.Duration `koanf:"image_url_ttl"`
}

func defaultConfig() Config {
	return Config{
		ServerPort:        "8080",
		ServerHost:        "0.0.0.0",
		DBDriver:          DriverPostgres,
		DBPath:            "foodgram.db",
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "foodgram",
		DBName:            "foodgram",
		DBSSLMode:         "disable",
		DBMaxOpenConns:    25,
		RedisPort:         "6379",
		RecipeCreateLimit: 30,
		RecipeModifyLimit: 60,
		RateLimitWindow:   time.Hour,
		LogLevel:          "info",
		LogFormat:         "json",
		CORSOrigins:       "http://localhost:3000",
		PageSize:          6,
		ImageURLTTL:       15 * time.Minute,
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// environment variables and finally Docker secrets for unset credentials.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// DB_HOST -> db_host. Unknown variables are ignored.
	if err := k.Load(env.Provider("", ".", func(key string) string {
		key = strings.ToLower(key)
		if !k.Exists(key) {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	loadSecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// AllowedOrigins returns the parsed CORS origin list.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// loadSecrets fills credentials that were not provided through env or file
func loadSecrets(cfg *Config) {
	if cfg.DBPassword == "" {
		cfg.DBPassword = readSecret("db_password")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = readSecret("jwt_secret")
	}
	if cfg.RedisPassword == "" {
		cfg.RedisPassword = readSecret("redis_password")
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
