// Package config reads config.toml and SHOP_* environment overrides into a
// validated Config.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding config.toml
const EnvPrefix = "SHOP"

// Default admin credentials, only acceptable outside production
const (
	DefaultAdminLogin    = "admin"
	DefaultAdminPassword = "admin"
	defaultJWTSecret     = "change-me-in-production"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Swagger   SwaggerConfig   `mapstructure:"swagger"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig selects postgres or a local sqlite file. Lifetimes are minutes.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// DSN renders a postgres URL with user and password escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

// StorageConfig points at the bucket holding product images.
// PublicBaseURL is prepended to object keys, e.g. https://cdn.example.com/product-images
type StorageConfig struct {
	Driver        string `mapstructure:"driver"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	Region        string `mapstructure:"region"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	UsePathStyle  bool   `mapstructure:"use_path_style"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	CreateBucket  bool   `mapstructure:"create_bucket"`
}

type JWTConfig struct {
	Secret                 string        `mapstructure:"secret"`
	RefreshSecret          string        `mapstructure:"refresh_secret"`
	AccessTokenExpiration  time.Duration `mapstructure:"access_token_expiration"`
	RefreshTokenExpiration time.Duration `mapstructure:"refresh_token_expiration"`
	Issuer                 string        `mapstructure:"issuer"`
	// refresh rotations allowed before the admin has to log in again
	MaxRefreshCount int `mapstructure:"max_refresh_count"`
}

// AdminConfig holds the admin login and its throttling. Password only
// applies until one is saved in shop settings.
type AdminConfig struct {
	Login           string `mapstructure:"login"`
	Password        string `mapstructure:"password"`
	LoginRatePerMin int    `mapstructure:"login_rate_per_min"`
	LoginBurst      int    `mapstructure:"login_burst"`
}

type CacheConfig struct {
	ListTTL         time.Duration `mapstructure:"list_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	SessionTTL      time.Duration `mapstructure:"session_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
	Output string `mapstructure:"output"` // stdout, stderr or a file path
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	CORSAllowOrigins  []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods  []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders  []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
	SessionCookie     string        `mapstructure:"session_cookie"`
	CookieSecure      bool          `mapstructure:"cookie_secure"`
}

// SwaggerConfig guards /swagger. An empty AllowedIPs admits every address.
type SwaggerConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	RequireAuth bool     `mapstructure:"require_auth"`
	AllowedIPs  []string `mapstructure:"allowed_ips"`
}

type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"` // OTLP gRPC, host:port
	SamplingRatio     float64 `mapstructure:"sampling_ratio"`
	ServiceName       string  `mapstructure:"service_name"`
	Insecure          bool    `mapstructure:"insecure"`
	MetricsEnabled    bool    `mapstructure:"metrics_enabled"`
	LogsEnabled       bool    `mapstructure:"logs_enabled"`
	DBTraceEnabled    bool    `mapstructure:"db_trace_enabled"`
	ProfilingEnabled  bool    `mapstructure:"profiling_enabled"`
	PyroscopeURL      string  `mapstructure:"pyroscope_url"`
}

// defaults registers every key, which is also what lets AutomaticEnv reach
// keys that config.toml leaves out.
var defaults = map[string]any{
	"app.name": "greenshop-backend",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             "postgres",
	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "greenshop",
	"database.sslmode":            "disable",
	"database.sqlite_path":        "greenshop.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,
	"database.auto_migrate":       false,

	"redis.enabled":  false,
	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"storage.driver":          "stub",
	"storage.bucket":          "product-images",
	"storage.endpoint":        "",
	"storage.region":          "us-east-1",
	"storage.access_key":      "",
	"storage.secret_key":      "",
	"storage.use_ssl":         false,
	"storage.use_path_style":  false,
	"storage.public_base_url": "",
	"storage.create_bucket":   false,

	"jwt.secret":                   defaultJWTSecret,
	"jwt.refresh_secret":           "",
	"jwt.access_token_expiration":  "15m",
	"jwt.refresh_token_expiration": "24h",
	"jwt.issuer":                   "greenshop-backend",
	"jwt.max_refresh_count":        30,

	"admin.login":              DefaultAdminLogin,
	"admin.password":           DefaultAdminPassword,
	"admin.login_rate_per_min": 5,
	"admin.login_burst":        5,

	"cache.list_ttl":         "5m",
	"cache.cleanup_interval": "1m",
	"cache.session_ttl":      "720h",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        "15s",
	"http.write_timeout":       "30s",
	"http.idle_timeout":        "60s",
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       32 << 20, // several 5MB images per upload
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 300,
	"http.rate_limit_window":   "1m",
	// no "*" fallback: an empty list refuses cross-origin requests
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID", "X-Session-ID"},
	"http.trusted_proxies":    []string{},
	"http.session_cookie":     "sid",
	"http.cookie_secure":      false,

	"swagger.enabled":      false,
	"swagger.require_auth": false,
	"swagger.allowed_ips":  []string{},

	"telemetry.enabled":            false,
	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "",
	"telemetry.insecure":           false,
	"telemetry.metrics_enabled":    false,
	"telemetry.logs_enabled":       false,
	"telemetry.db_trace_enabled":   false,
	"telemetry.profiling_enabled":  false,
	"telemetry.pyroscope_url":      "http://localhost:4040",
}

// Load reads config.toml from the working directory, ./backend or /app.
// SHOP_* variables win over the file, which wins over defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, dir := range []string{".", "./backend", "/app"} {
		v.AddConfigPath(dir)
	}

	var notFound viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromViper(v)
}

// FromViper decodes an already populated viper instance with defaults and
// environment overrides applied.
func FromViper(v *viper.Viper) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	db := c.Database
	if db.Driver != "postgres" && db.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", db.Driver)
	}
	switch {
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) exceeds database.max_open_conns (%d)", db.MaxIdleConns, db.MaxOpenConns)
	}

	switch c.Storage.Driver {
	case "stub":
	case "s3":
		if c.Storage.PublicBaseURL == "" {
			return errors.New("storage.public_base_url is required with the s3 driver")
		}
	default:
		return fmt.Errorf("storage.driver must be s3 or stub, got %q", c.Storage.Driver)
	}

	if c.Cache.ListTTL < 0 || c.Cache.SessionTTL < 0 {
		return errors.New("cache durations cannot be negative")
	}
	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be within [0, 1], got %g", r)
	}

	if c.App.IsProduction() {
		return c.validateProduction()
	}
	return nil
}

// validateProduction refuses development conveniences: default secrets,
// plaintext database links, stub storage and open docs.
func (c *Config) validateProduction() error {
	var problems []string
	if c.JWT.Secret == defaultJWTSecret || len(c.JWT.Secret) < 32 {
		problems = append(problems, "jwt.secret must be at least 32 characters")
	}
	if c.Admin.Password == DefaultAdminPassword {
		problems = append(problems, "admin.password must not be the default")
	}
	if c.Database.Driver == "postgres" {
		if c.Database.Password == "" {
			problems = append(problems, "database.password is required")
		}
		if c.Database.SSLMode == "disable" {
			problems = append(problems, "database.sslmode must not be disable")
		}
	}
	if c.Storage.Driver != "s3" {
		problems = append(problems, "storage.driver must be s3")
	}
	if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
		problems = append(problems, "http.cors_allow_origins must list explicit origins")
	}
	if !c.HTTP.CookieSecure {
		problems = append(problems, "http.cookie_secure must be true")
	}
	if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
		problems = append(problems, "swagger must be disabled, authenticated or IP restricted")
	}
	if len(problems) > 0 {
		return fmt.Errorf("production config: %s", strings.Join(problems, "; "))
	}
	return nil
}
