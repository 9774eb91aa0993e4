// Package config carga la configuración del servicio desde YAML con
// overrides por variables de entorno.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servicio.
type Config struct {
	App     AppConfig     `yaml:"app"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Cache   CacheConfig   `yaml:"cache"`
	JWT     JWTConfig     `yaml:"jwt"`
	OAuth   OAuthConfig   `yaml:"oauth"`
	Log     LogConfig     `yaml:"log"`
}

type AppConfig struct {
	Name    string `yaml:"name"`
	Env     string `yaml:"env"` // dev | prod
	Version string `yaml:"version"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	MetricsAddr     string        `yaml:"metrics_addr"` // vacío = sin listener de métricas
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
	ShutdownTimeout time.Duration `yaml:"-"`

	ReadTimeoutStr     string `yaml:"read_timeout"`
	WriteTimeoutStr    string `yaml:"write_timeout"`
	ShutdownTimeoutStr string `yaml:"shutdown_timeout"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // postgres | memory
	DSN    string `yaml:"dsn"`
}

type CacheConfig struct {
	Driver   string `yaml:"driver"` // redis | memory
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	AccessTTL  time.Duration `yaml:"-"`
	RefreshTTL time.Duration `yaml:"-"`

	AccessTTLStr  string `yaml:"access_ttl"`
	RefreshTTLStr string `yaml:"refresh_ttl"`
}

type OAuthConfig struct {
	CodeTTL        time.Duration `yaml:"-"`
	AccessTokenTTL time.Duration `yaml:"-"`

	CodeTTLStr        string `yaml:"code_ttl"`
	AccessTokenTTLStr string `yaml:"access_token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Load lee el YAML (opcional), aplica defaults y overrides de entorno.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := parseDurations(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:    "keygate",
			Env:     "dev",
			Version: "dev",
		},
		Server: ServerConfig{
			Addr:               ":8080",
			MetricsAddr:        ":9090",
			ReadTimeoutStr:     "10s",
			WriteTimeoutStr:    "15s",
			ShutdownTimeoutStr: "10s",
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			Driver: "memory",
			Host:   "127.0.0.1",
			Port:   6379,
		},
		JWT: JWTConfig{
			AccessTTLStr:  "15m",
			RefreshTTLStr: "168h", // 7 días
		},
		OAuth: OAuthConfig{
			CodeTTLStr:        "5m",
			AccessTokenTTLStr: "1h",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyEnvOverrides aplica variables KEYGATE_* sobre la config.
func applyEnvOverrides(c *Config) {
	c.App.Env = getEnvStr("KEYGATE_ENV", c.App.Env)
	c.Log.Level = getEnvStr("KEYGATE_LOG_LEVEL", c.Log.Level)

	c.Server.Addr = getEnvStr("KEYGATE_ADDR", c.Server.Addr)
	c.Server.MetricsAddr = getEnvStr("KEYGATE_METRICS_ADDR", c.Server.MetricsAddr)

	c.Storage.Driver = getEnvStr("KEYGATE_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.DSN = getEnvStr("DATABASE_URL", c.Storage.DSN)

	c.Cache.Driver = getEnvStr("KEYGATE_CACHE_DRIVER", c.Cache.Driver)
	c.Cache.Host = getEnvStr("REDIS_HOST", c.Cache.Host)
	c.Cache.Port = getEnvInt("REDIS_PORT", c.Cache.Port)
	c.Cache.Password = getEnvStr("REDIS_PASSWORD", c.Cache.Password)
	c.Cache.DB = getEnvInt("REDIS_DB", c.Cache.DB)
	c.Cache.Prefix = getEnvStr("KEYGATE_CACHE_PREFIX", c.Cache.Prefix)

	c.JWT.Secret = getEnvStr("JWT_SECRET", c.JWT.Secret)
	c.JWT.AccessTTLStr = getEnvStr("KEYGATE_JWT_ACCESS_TTL", c.JWT.AccessTTLStr)
	c.JWT.RefreshTTLStr = getEnvStr("KEYGATE_JWT_REFRESH_TTL", c.JWT.RefreshTTLStr)

	c.OAuth.CodeTTLStr = getEnvStr("KEYGATE_OAUTH_CODE_TTL", c.OAuth.CodeTTLStr)
	c.OAuth.AccessTokenTTLStr = getEnvStr("KEYGATE_OAUTH_TOKEN_TTL", c.OAuth.AccessTokenTTLStr)
}

func parseDurations(c *Config) error {
	var err error
	if c.Server.ReadTimeout, err = parseDur("server.read_timeout", c.Server.ReadTimeoutStr); err != nil {
		return err
	}
	if c.Server.WriteTimeout, err = parseDur("server.write_timeout", c.Server.WriteTimeoutStr); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout, err = parseDur("server.shutdown_timeout", c.Server.ShutdownTimeoutStr); err != nil {
		return err
	}
	if c.JWT.AccessTTL, err = parseDur("jwt.access_ttl", c.JWT.AccessTTLStr); err != nil {
		return err
	}
	if c.JWT.RefreshTTL, err = parseDur("jwt.refresh_ttl", c.JWT.RefreshTTLStr); err != nil {
		return err
	}
	if c.OAuth.CodeTTL, err = parseDur("oauth.code_ttl", c.OAuth.CodeTTLStr); err != nil {
		return err
	}
	if c.OAuth.AccessTokenTTL, err = parseDur("oauth.access_token_ttl", c.OAuth.AccessTokenTTLStr); err != nil {
		return err
	}
	return nil
}

func parseDur(field, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q: %w", field, s, err)
	}
	return d, nil
}

func validate(c *Config) error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: jwt.secret is required (set JWT_SECRET)")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("config: jwt.secret must be at least 32 bytes")
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn is required with driver=postgres (set DATABASE_URL)")
	}
	return nil
}

// --- helpers de entorno ---

func getEnvStr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}
