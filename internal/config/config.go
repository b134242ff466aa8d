package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Sync targets selectable with SYNC_TARGET.
const (
	TargetDashboard   = "dashboard"
	TargetFerramentas = "ferramentas"
)

// Config is the root configuration structure. It is read-only after Load returns.
type Config struct {
	AppEnv      string            `yaml:"app_env"`
	Server      ServerConfig      `yaml:"server"`
	Dashboard   DatabaseConfig    `yaml:"dashboard"`
	Ferramentas DatabaseConfig    `yaml:"ferramentas"`
	Legacy      LegacyStoreConfig `yaml:"legacy"`
	Redis       RedisConfig       `yaml:"redis"`
	Auth        AuthConfig        `yaml:"auth"`
	Sync        SyncConfig        `yaml:"sync"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// DatabaseConfig describes one relational store.
type DatabaseConfig struct {
	URL          string `yaml:"-"` // env-only, carries credentials
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// LegacyStoreConfig describes the legacy document store.
type LegacyStoreConfig struct {
	URI              string `yaml:"-"` // env-only
	Database         string `yaml:"database"`
	CollectionPrefix string `yaml:"collection_prefix"`
}

// RedisConfig is optional; an empty Host disables Redis and the in-memory cache is used.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"-"`
	DB       int    `yaml:"db"`
}

// AuthConfig holds the keys accepted by the API.
type AuthConfig struct {
	AnonKey    string `yaml:"-"`
	ServiceKey string `yaml:"-"`
	JWTSecret  string `yaml:"-"`
}

// SyncConfig controls the scheduler, the poller and the gateway.
type SyncConfig struct {
	Enabled     bool     `yaml:"enabled"`
	RunOnStart  bool     `yaml:"run_on_start"`
	Interval    Duration `yaml:"interval"`
	Window      Duration `yaml:"window"`
	PageSize    int      `yaml:"page_size"`
	CallTimeout Duration `yaml:"call_timeout"`
	Target      string   `yaml:"target"`
	Cities      []string `yaml:"cities"`
	Brands      []string `yaml:"brands"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// A missing required variable is returned as an error; callers treat it as fatal.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("BACKOFFICE_CONFIG_PATH", "config/backoffice.yaml")
	if err := loadYAMLFile(cfg, configPath, false); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path. The file must exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	if err := loadYAMLFile(cfg, path, true); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newDefaults() *Config {
	return &Config{
		AppEnv: "development",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(2 * time.Minute),
			ShutdownTimeout: Duration(15 * time.Second),
			AllowedOrigins:  []string{"https://*", "http://localhost:3000"},
		},
		Dashboard:   DatabaseConfig{MaxOpenConns: 10},
		Ferramentas: DatabaseConfig{MaxOpenConns: 5},
		Legacy: LegacyStoreConfig{
			Database:         "multipark",
			CollectionPrefix: "reservations",
		},
		Redis: RedisConfig{Port: "6379"},
		Sync: SyncConfig{
			Enabled:     true,
			RunOnStart:  true,
			Interval:    Duration(5 * time.Minute),
			Window:      Duration(2 * time.Hour),
			PageSize:    100,
			CallTimeout: Duration(30 * time.Second),
			Target:      TargetDashboard,
			Cities:      []string{"lisbon", "porto", "faro"},
			Brands:      []string{"airpark", "redpark", "skypark"},
		},
	}
}

func loadYAMLFile(cfg *Config, path string, mustExist bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Malformed numeric or duration values are rejected rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}

	// Server
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	// Stores
	if v := os.Getenv("DASHBOARD_DATABASE_URL"); v != "" {
		cfg.Dashboard.URL = v
	}
	if v := os.Getenv("FERRAMENTAS_DATABASE_URL"); v != "" {
		cfg.Ferramentas.URL = v
	}
	if v := os.Getenv("LEGACY_MONGO_URI"); v != "" {
		cfg.Legacy.URI = v
	}
	if v := os.Getenv("LEGACY_MONGO_DB"); v != "" {
		cfg.Legacy.Database = v
	}

	// Redis
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		cfg.Redis.Port = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	// Auth
	if v := os.Getenv("API_ANON_KEY"); v != "" {
		cfg.Auth.AnonKey = v
	}
	if v := os.Getenv("API_SERVICE_KEY"); v != "" {
		cfg.Auth.ServiceKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	// Sync
	if v := os.Getenv("SYNC_ENABLED"); v != "" {
		cfg.Sync.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SYNC_RUN_ON_START"); v != "" {
		cfg.Sync.RunOnStart = v == "true" || v == "1"
	}
	if err := envDuration("SYNC_INTERVAL", &cfg.Sync.Interval); err != nil {
		return err
	}
	if err := envDuration("SYNC_WINDOW", &cfg.Sync.Window); err != nil {
		return err
	}
	if err := envDuration("SYNC_CALL_TIMEOUT", &cfg.Sync.CallTimeout); err != nil {
		return err
	}
	if v := os.Getenv("SYNC_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SYNC_PAGE_SIZE: %w", err)
		}
		cfg.Sync.PageSize = n
	}
	if v := os.Getenv("SYNC_TARGET"); v != "" {
		cfg.Sync.Target = strings.ToLower(v)
	}
	if v := os.Getenv("SYNC_CITIES"); v != "" {
		cfg.Sync.Cities = splitList(v)
	}
	if v := os.Getenv("SYNC_BRANDS"); v != "" {
		cfg.Sync.Brands = splitList(v)
	}

	return nil
}

// validate checks that required configuration values are set.
func (c *Config) validate() error {
	var missing []string
	if c.Dashboard.URL == "" {
		missing = append(missing, "DASHBOARD_DATABASE_URL")
	}
	if c.Ferramentas.URL == "" {
		missing = append(missing, "FERRAMENTAS_DATABASE_URL")
	}
	if c.Legacy.URI == "" {
		missing = append(missing, "LEGACY_MONGO_URI")
	}
	if c.Auth.AnonKey == "" {
		missing = append(missing, "API_ANON_KEY")
	}
	if c.Auth.ServiceKey == "" {
		missing = append(missing, "API_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if c.Sync.Target != TargetDashboard && c.Sync.Target != TargetFerramentas {
		return fmt.Errorf("SYNC_TARGET must be %q or %q, got %q", TargetDashboard, TargetFerramentas, c.Sync.Target)
	}
	if c.Sync.Interval <= 0 {
		return errors.New("sync interval must be positive")
	}
	if c.Sync.Window <= 0 {
		return errors.New("sync window must be positive")
	}
	if c.Sync.PageSize <= 0 {
		return errors.New("sync page size must be positive")
	}
	if len(c.Sync.Cities) == 0 || len(c.Sync.Brands) == 0 {
		return errors.New("at least one city and one brand are required")
	}
	return nil
}

// RedisEnabled reports whether a Redis host was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}

func envDuration(key string, dst *Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = Duration(d)
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
