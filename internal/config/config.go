package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAppEnv         = "dev"
	defaultDBPath         = "./dev.db"
	defaultPort           = "8080"
	defaultSessionBackend = BackendSQLite
	defaultSessionTTL     = 24 * time.Hour
	defaultRedisAddr      = "localhost:6379"
	defaultLogLevel       = "info"
)

// Session backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds application configuration sourced from an optional YAML
// file and environment variables.
type Config struct {
	AppEnv         string        `yaml:"app_env"`
	Port           string        `yaml:"port"`
	DBPath         string        `yaml:"db_path"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionBackend string        `yaml:"session_backend"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	RedisAddr      string        `yaml:"redis_addr"`
	LogLevel       string        `yaml:"log_level"`
}

// Load reads the dotenv file, the YAML file named by CONFIG_FILE and the
// environment, in increasing precedence, and validates the result.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	// We don't fail if the file is missing; production should use real env injection.
	_ = loadDotEnv(".env")

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		AppEnv:         defaultAppEnv,
		Port:           defaultPort,
		DBPath:         defaultDBPath,
		SessionBackend: defaultSessionBackend,
		SessionTTL:     defaultSessionTTL,
		RedisAddr:      defaultRedisAddr,
		LogLevel:       defaultLogLevel,
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse yaml %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	for key, dst := range map[string]*string{
		"APP_ENV":         &cfg.AppEnv,
		"PORT":            &cfg.Port,
		"DB_PATH":         &cfg.DBPath,
		"SESSION_SECRET":  &cfg.SessionSecret,
		"SESSION_BACKEND": &cfg.SessionBackend,
		"REDIS_ADDR":      &cfg.RedisAddr,
		"LOG_LEVEL":       &cfg.LogLevel,
	} {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: SESSION_TTL %q: %w", v, err)
		}
		cfg.SessionTTL = ttl
	}

	return nil
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("port %q is out of range [1, 65535]", c.Port)
	}
	switch c.SessionBackend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db_path is required for the sqlite session backend")
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis_addr is required for the redis session backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("session_backend %q unknown: want sqlite|memory|redis", c.SessionBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q unknown: want debug|info|warn|error", c.LogLevel)
	}
	return nil
}

// IsDev reports whether the application runs in the development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

// Warnings lists configuration problems that do not prevent startup.
func (c Config) Warnings() []string {
	var warnings []string
	if c.SessionSecret == "" {
		warnings = append(warnings, "SESSION_SECRET is not set; session cookies are signed with an empty key")
	}
	return warnings
}
