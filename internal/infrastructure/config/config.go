package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	OAuth     OAuthConfig
	Admin     AdminConfig
	Storage   StorageConfig
	PYQ       PYQConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
	// BaseURL is the externally visible origin of the API, used to build
	// the OAuth callback URL
	BaseURL string
	// FrontendURL is where the browser is redirected after sign-in
	FrontendURL string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
}

// CookieConfig holds cookie settings for the refresh token and OAuth state
type CookieConfig struct {
	Domain   string // Domain for cookies (empty = current domain)
	Path     string // Path for cookies
	Secure   bool   // Secure flag (should be true in production for HTTPS)
	SameSite string // SameSite policy: "strict", "lax", or "none"
}

// OAuthConfig holds Google OAuth client settings
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	// CallbackPath is appended to App.BaseURL to form the redirect URL
	CallbackPath string
	// HostedDomain optionally restricts sign-in to one Google Workspace
	// domain, e.g. "college.edu"
	HostedDomain string
}

// AdminConfig holds the bootstrap admin settings
type AdminConfig struct {
	// Emails listed here are promoted to the admin role on first sign-in
	BootstrapEmails []string
}

// StorageConfig holds object storage settings for uploaded files
type StorageConfig struct {
	Bucket            string
	AccessKey         string
	SecretKey         string
	Endpoint          string
	UseSSL            bool
	Region            string
	UsePathStyle      bool
	PresignExpiration time.Duration
	// PublicBaseURL is the base URL uploaded files are served from.
	// Empty means files are served relative to the API host.
	PublicBaseURL string
}

// PYQConfig holds settings for the static question-paper index generator
type PYQConfig struct {
	// SourceDir is the directory tree scanned by cmd/pyqindex
	SourceDir string
	// OutputPath is where the generated pyq-data.json is written
	OutputPath string
	// BaseURL prefixes the generated file URLs
	BaseURL string
	// IndexPath is the generated index served at /api/pyq; empty disables it
	IndexPath string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string
	Insecure          bool // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool // Enable database query tracing (otelgorm)
}

// defaults are registered on the viper instance so config file and
// environment values always win over them.
var defaults = map[string]any{
	"app.name":         "studyhub-backend",
	"app.env":          "development",
	"app.port":         "8080",
	"app.frontend_url": "http://localhost:3000",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.dbname":             "studyhub",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host": "localhost",
	"redis.port": 6379,

	"jwt.access_token_expiration":  15 * time.Minute,
	"jwt.refresh_token_expiration": 168 * time.Hour,
	"jwt.issuer":                   "studyhub-backend",
	"jwt.max_refresh_count":        10,

	"cookie.path":      "/",
	"cookie.same_site": "lax",

	"oauth.callback_path": "/api/auth/google/callback",

	"storage.region":             "us-east-1",
	"storage.presign_expiration": 15 * time.Minute,

	"pyq.source_dir":  "./pyq",
	"pyq.output_path": "./pyq-data.json",

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        15 * time.Second,
	"http.write_timeout":       15 * time.Second,
	"http.idle_timeout":        60 * time.Second,
	"http.max_header_bytes":    1 << 20,  // 1MB
	"http.max_body_size":       10 << 20, // 10MB
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   time.Minute,
	// CORS origins deliberately have no default: an empty list means no
	// cross-origin requests are allowed until explicitly configured.
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},

	"telemetry.collector_endpoint": "localhost:4317",
	"telemetry.sampling_ratio":     1.0,
	"telemetry.service_name":       "studyhub-backend",
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STUDYHUB_ prefix (e.g., STUDYHUB_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars cover it
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STUDYHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("app.name"),
			Env:         v.GetString("app.env"),
			Port:        v.GetString("app.port"),
			BaseURL:     v.GetString("app.base_url"),
			FrontendURL: v.GetString("app.frontend_url"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Cookie: CookieConfig{
			Domain:   v.GetString("cookie.domain"),
			Path:     v.GetString("cookie.path"),
			Secure:   v.GetBool("cookie.secure"),
			SameSite: v.GetString("cookie.same_site"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     v.GetString("oauth.google_client_id"),
			GoogleClientSecret: v.GetString("oauth.google_client_secret"),
			CallbackPath:       v.GetString("oauth.callback_path"),
			HostedDomain:       v.GetString("oauth.hosted_domain"),
		},
		Admin: AdminConfig{
			BootstrapEmails: v.GetStringSlice("admin.bootstrap_emails"),
		},
		Storage: StorageConfig{
			Bucket:            v.GetString("storage.bucket"),
			AccessKey:         v.GetString("storage.access_key"),
			SecretKey:         v.GetString("storage.secret_key"),
			Endpoint:          v.GetString("storage.endpoint"),
			UseSSL:            v.GetBool("storage.use_ssl"),
			Region:            v.GetString("storage.region"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
			PublicBaseURL:     v.GetString("storage.public_base_url"),
		},
		PYQ: PYQConfig{
			SourceDir:  v.GetString("pyq.source_dir"),
			OutputPath: v.GetString("pyq.output_path"),
			BaseURL:    v.GetString("pyq.base_url"),
			IndexPath:  v.GetString("pyq.index_path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		},
	}

	// BaseURL depends on the resolved port, so it cannot be a static default
	if cfg.App.BaseURL == "" {
		cfg.App.BaseURL = "http://localhost:" + cfg.App.Port
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if err := c.Database.validate(); err != nil {
		return err
	}

	if c.App.Env == "production" {
		if err := c.validateProduction(); err != nil {
			return err
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

func (d *DatabaseConfig) validate() error {
	switch {
	case d.MaxOpenConns <= 0:
		return fmt.Errorf("database.max_open_conns must be positive")
	case d.MaxIdleConns < 0:
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	case d.MaxIdleConns > d.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			d.MaxIdleConns, d.MaxOpenConns)
	}
	return nil
}

// validateProduction enforces the settings a public deployment must not
// run without.
func (c *Config) validateProduction() error {
	switch {
	case c.JWT.Secret == "":
		return fmt.Errorf("jwt.secret is required in production")
	case len(c.JWT.Secret) < 32:
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	case c.Database.Password == "":
		return fmt.Errorf("database.password is required in production")
	case c.Database.SSLMode == "disable":
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	case c.OAuth.GoogleClientID == "" || c.OAuth.GoogleClientSecret == "":
		return fmt.Errorf("oauth.google_client_id and oauth.google_client_secret are required in production")
	case !c.Cookie.Secure:
		return fmt.Errorf("cookie.secure must be true in production (HTTPS required for secure cookies)")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	return nil
}

// GoogleCallbackURL returns the absolute redirect URL registered with Google
func (c *Config) GoogleCallbackURL() string {
	return strings.TrimSuffix(c.App.BaseURL, "/") + c.OAuth.CallbackPath
}

// IsBootstrapAdmin reports whether the email is in the bootstrap admin list
func (c *AdminConfig) IsBootstrapAdmin(email string) bool {
	for _, e := range c.BootstrapEmails {
		if strings.EqualFold(strings.TrimSpace(e), email) {
			return true
		}
	}
	return false
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
