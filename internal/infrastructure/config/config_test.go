package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "greenshop-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "greenshop", cfg.Database.DBName)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "stub", cfg.Storage.Driver)
	assert.Equal(t, "admin", cfg.Admin.Login)
	assert.Equal(t, "admin", cfg.Admin.Password)
	assert.Equal(t, 5*time.Minute, cfg.Cache.ListTTL)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "sid", cfg.HTTP.SessionCookie)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-Session-ID")
	assert.Equal(t, cfg.App.Name, cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SHOP_APP_PORT", "9000")
	t.Setenv("SHOP_DATABASE_DRIVER", "sqlite")
	t.Setenv("SHOP_DATABASE_SQLITE_PATH", "/tmp/shop.db")
	t.Setenv("SHOP_REDIS_ENABLED", "true")
	t.Setenv("SHOP_REDIS_PORT", "6380")
	t.Setenv("SHOP_CACHE_LIST_TTL", "90s")
	t.Setenv("SHOP_ADMIN_LOGIN", "owner")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/shop.db", cfg.Database.SQLitePath)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, 90*time.Second, cfg.Cache.ListTTL)
	assert.Equal(t, "owner", cfg.Admin.Login)
}

func TestLoad_FromTOML(t *testing.T) {
	v := viper.New()
	v.SetConfigType("toml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
[app]
name = "toml-shop"

[storage]
driver = "s3"
bucket = "images"
public_base_url = "https://cdn.example.com/images"

[http]
cors_allow_origins = ["https://shop.example.com"]
`)))

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "toml-shop", cfg.App.Name)
	assert.Equal(t, "s3", cfg.Storage.Driver)
	assert.Equal(t, "https://cdn.example.com/images", cfg.Storage.PublicBaseURL)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.HTTP.CORSAllowOrigins)
}

func TestValidate(t *testing.T) {
	validProduction := func() *Config {
		cfg, err := FromViper(viper.New())
		require.NoError(t, err)
		cfg.App.Env = "production"
		cfg.JWT.Secret = strings.Repeat("s", 32)
		cfg.Admin.Password = "a-strong-password"
		cfg.Database.Password = "db-pass"
		cfg.Database.SSLMode = "require"
		cfg.Storage.Driver = "s3"
		cfg.Storage.PublicBaseURL = "https://cdn.example.com"
		cfg.HTTP.CookieSecure = true
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid production config", func(*Config) {}, ""},
		{"unknown database driver", func(c *Config) { c.Database.Driver = "mysql" }, "database.driver"},
		{"unknown storage driver", func(c *Config) { c.Storage.Driver = "ftp" }, "storage.driver"},
		{"s3 without public url", func(c *Config) { c.Storage.PublicBaseURL = "" }, "public_base_url"},
		{"idle above open conns", func(c *Config) { c.Database.MaxIdleConns = 100 }, "max_idle_conns"},
		{"default jwt secret", func(c *Config) { c.JWT.Secret = defaultJWTSecret }, "jwt.secret"},
		{"default admin password", func(c *Config) { c.Admin.Password = DefaultAdminPassword }, "admin.password"},
		{"sslmode disabled", func(c *Config) { c.Database.SSLMode = "disable" }, "sslmode"},
		{"stub storage", func(c *Config) { c.Storage.Driver = "stub" }, "storage.driver must be s3"},
		{"wildcard cors", func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, "cors_allow_origins"},
		{"insecure cookie", func(c *Config) { c.HTTP.CookieSecure = false }, "cookie_secure"},
		{"open swagger", func(c *Config) { c.Swagger.Enabled = true }, "swagger"},
		{"sampling ratio out of range", func(c *Config) { c.Telemetry.SamplingRatio = 2 }, "sampling_ratio"},
		{"sqlite skips postgres checks", func(c *Config) {
			c.Database.Driver = "sqlite"
			c.Database.Password = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validProduction()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_CollectsProductionProblems(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	cfg.App.Env = "production"

	err = cfg.validate()
	require.Error(t, err)
	for _, want := range []string{"jwt.secret", "admin.password", "database.password", "storage.driver", "cookie_secure"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoad_EnvListOverride(t *testing.T) {
	t.Setenv("SHOP_SWAGGER_ALLOWED_IPS", "10.0.0.0/8,127.0.0.1")
	t.Setenv("SHOP_TELEMETRY_SERVICE_NAME", "shop-api")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.Swagger.AllowedIPs)
	assert.Equal(t, "shop-api", cfg.Telemetry.ServiceName)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "shop", Password: "secret", DBName: "greenshop", SSLMode: "require"}

	assert.Equal(t, "postgres://shop:secret@db:5432/greenshop?sslmode=require", d.DSN())
}
