package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	HTTP        HTTPConfig
	Scheduler   SchedulerConfig
	Telemetry   TelemetryConfig
	Storage     StorageConfig
	Pricing     PricingConfig
	Bling       BlingConfig
	Shopify     ShopifyConfig
	MercadoPago MercadoPagoConfig
	Resend      ResendConfig
	SMTP        SMTPConfig
	WhatsApp    WhatsAppConfig
	Tracking    TrackingConfig
	Swagger     SwaggerConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// IsProduction reports whether the service runs with production checks
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
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
	LogLevel        string
	SlowThreshold   time.Duration
	LogSQL          bool
}

// RedisConfig holds Redis connection settings. Redis backs webhook
// de-duplication; when disabled an in-process store is used.
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret string
	Issuer string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	TrustedProxies   []string
	// RequestTimeout bounds handler work for API routes
	RequestTimeout time.Duration
	// PublicRateLimit requests per PublicRateWindow and client IP on
	// webhook and tracking routes
	PublicRateLimit  int
	PublicRateWindow time.Duration
}

// SchedulerConfig holds the periodic re-sync settings
type SchedulerConfig struct {
	Enabled           bool
	Interval          time.Duration
	MaxPagesPerTick   int
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string  // e.g. "localhost:4317"
	SamplingRatio     float64 // 0.0-1.0
	ServiceName       string
	Insecure          bool

	MetricsEnabled  bool
	MetricsInterval time.Duration
	LogsEnabled     bool

	DBTracing          bool
	SlowQueryThreshold time.Duration

	// Pyroscope continuous profiling; spans get profile ids when both are on
	ProfilingEnabled bool
	ProfilingServer  string
}

// StorageConfig holds the S3 settings used for the NF-e archive
type StorageConfig struct {
	Enabled         bool
	Bucket          string
	Region          string
	Endpoint        string // empty for AWS, set for MinIO and friends
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool

	// PresignExpiration is how long NF-e download links stay valid
	PresignExpiration time.Duration
}

// PricingConfig holds discount knobs that are not per-client
type PricingConfig struct {
	RepresentativeDiscountPct float64
}

// BlingConfig holds Bling ERP API v3 credentials
type BlingConfig struct {
	Enabled        bool
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	RequestsPerSec float64
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
	RateLimitDelay time.Duration
}

// ShopifyConfig holds Admin and Storefront API settings for one shop
type ShopifyConfig struct {
	Enabled         bool
	ShopDomain      string // loja.myshopify.com
	APIVersion      string
	AdminToken      string
	StorefrontToken string
	WebhookSecret   string
	Timeout         time.Duration
	// TenantID owns orders arriving through the shop's webhooks
	TenantID string
}

// MercadoPagoConfig holds Mercado Pago credentials
type MercadoPagoConfig struct {
	Enabled     bool
	BaseURL     string
	AccessToken string
	NotifyURL   string
	Timeout     time.Duration
	// TenantID owns payments arriving through notifications
	TenantID string
}

// ResendConfig holds the Resend email API settings
type ResendConfig struct {
	Enabled bool
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
}

// SMTPConfig holds the SMTP fallback email settings
type SMTPConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// WhatsAppConfig holds Meta WhatsApp Cloud API settings
type WhatsAppConfig struct {
	Enabled       bool
	BaseURL       string
	APIVersion    string
	PhoneNumberID string
	AccessToken   string
	Timeout       time.Duration
}

// TrackingConfig holds the public base URL used to build tracking links and
// the key click links are signed with. SigningKey falls back to jwt.secret.
type TrackingConfig struct {
	BaseURL    string
	SigningKey string
}

// SwaggerConfig holds the API docs endpoint settings. Enabled defaults to
// true outside production and false in production.
type SwaggerConfig struct {
	Enabled bool
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with EBD_ prefix (e.g., EBD_DATABASE_PASSWORD),
// including those loaded from an optional .env file
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("EBD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
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
			LogLevel:        v.GetString("database.log_level"),
			SlowThreshold:   v.GetDuration("database.slow_threshold"),
			LogSQL:          v.GetBool("database.log_sql"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			Issuer: v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
			RequestTimeout:   v.GetDuration("http.request_timeout"),
			PublicRateLimit:  v.GetInt("http.public_rate_limit"),
			PublicRateWindow: v.GetDuration("http.public_rate_window"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			Interval:          v.GetDuration("scheduler.interval"),
			MaxPagesPerTick:   v.GetInt("scheduler.max_pages_per_tick"),
			MaxConcurrentJobs: v.GetInt("scheduler.max_concurrent_jobs"),
			JobTimeout:        v.GetDuration("scheduler.job_timeout"),
			RetryAttempts:     v.GetInt("scheduler.retry_attempts"),
			RetryDelay:        v.GetDuration("scheduler.retry_delay"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),

			MetricsEnabled:  v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval: v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:     v.GetBool("telemetry.logs_enabled"),

			DBTracing:          v.GetBool("telemetry.db_tracing"),
			SlowQueryThreshold: v.GetDuration("telemetry.slow_query_threshold"),

			ProfilingEnabled: v.GetBool("telemetry.profiling_enabled"),
			ProfilingServer:  v.GetString("telemetry.profiling_server"),
		},
		Storage: StorageConfig{
			Enabled:           v.GetBool("storage.enabled"),
			Bucket:            v.GetString("storage.bucket"),
			Region:            v.GetString("storage.region"),
			Endpoint:          v.GetString("storage.endpoint"),
			AccessKeyID:       v.GetString("storage.access_key_id"),
			SecretAccessKey:   v.GetString("storage.secret_access_key"),
			UsePathStyle:      v.GetBool("storage.use_path_style"),
			PresignExpiration: v.GetDuration("storage.presign_expiration"),
		},
		Pricing: PricingConfig{
			RepresentativeDiscountPct: v.GetFloat64("pricing.representative_discount_pct"),
		},
		Bling: BlingConfig{
			Enabled:        v.GetBool("bling.enabled"),
			BaseURL:        v.GetString("bling.base_url"),
			TokenURL:       v.GetString("bling.token_url"),
			ClientID:       v.GetString("bling.client_id"),
			ClientSecret:   v.GetString("bling.client_secret"),
			RequestsPerSec: v.GetFloat64("bling.requests_per_sec"),
			Timeout:        v.GetDuration("bling.timeout"),
			MaxRetries:     v.GetInt("bling.max_retries"),
			RetryDelay:     v.GetDuration("bling.retry_delay"),
			RateLimitDelay: v.GetDuration("bling.rate_limit_delay"),
		},
		Shopify: ShopifyConfig{
			Enabled:         v.GetBool("shopify.enabled"),
			ShopDomain:      v.GetString("shopify.shop_domain"),
			APIVersion:      v.GetString("shopify.api_version"),
			AdminToken:      v.GetString("shopify.admin_token"),
			StorefrontToken: v.GetString("shopify.storefront_token"),
			WebhookSecret:   v.GetString("shopify.webhook_secret"),
			Timeout:         v.GetDuration("shopify.timeout"),
			TenantID:        v.GetString("shopify.tenant_id"),
		},
		MercadoPago: MercadoPagoConfig{
			Enabled:     v.GetBool("mercadopago.enabled"),
			BaseURL:     v.GetString("mercadopago.base_url"),
			AccessToken: v.GetString("mercadopago.access_token"),
			NotifyURL:   v.GetString("mercadopago.notify_url"),
			Timeout:     v.GetDuration("mercadopago.timeout"),
			TenantID:    v.GetString("mercadopago.tenant_id"),
		},
		Resend: ResendConfig{
			Enabled: v.GetBool("resend.enabled"),
			BaseURL: v.GetString("resend.base_url"),
			APIKey:  v.GetString("resend.api_key"),
			From:    v.GetString("resend.from"),
			Timeout: v.GetDuration("resend.timeout"),
		},
		SMTP: SMTPConfig{
			Enabled:  v.GetBool("smtp.enabled"),
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		WhatsApp: WhatsAppConfig{
			Enabled:       v.GetBool("whatsapp.enabled"),
			BaseURL:       v.GetString("whatsapp.base_url"),
			APIVersion:    v.GetString("whatsapp.api_version"),
			PhoneNumberID: v.GetString("whatsapp.phone_number_id"),
			AccessToken:   v.GetString("whatsapp.access_token"),
			Timeout:       v.GetDuration("whatsapp.timeout"),
		},
		Tracking: TrackingConfig{
			BaseURL:    v.GetString("tracking.base_url"),
			SigningKey: v.GetString("tracking.signing_key"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
	}

	if !v.IsSet("swagger.enabled") {
		cfg.Swagger.Enabled = !cfg.App.IsProduction()
	}
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "ebd-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "ebd"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}
	if cfg.Database.SlowThreshold == 0 {
		cfg.Database.SlowThreshold = 200 * time.Millisecond
	}

	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}

	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "ebd-backend"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}

	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 2 << 20
	}
	if cfg.HTTP.RequestTimeout == 0 {
		cfg.HTTP.RequestTimeout = 60 * time.Second
	}
	if cfg.HTTP.PublicRateLimit == 0 {
		cfg.HTTP.PublicRateLimit = 120
	}
	if cfg.HTTP.PublicRateWindow == 0 {
		cfg.HTTP.PublicRateWindow = time.Minute
	}

	if cfg.Scheduler.Interval == 0 {
		cfg.Scheduler.Interval = 15 * time.Minute
	}
	if cfg.Scheduler.MaxPagesPerTick == 0 {
		cfg.Scheduler.MaxPagesPerTick = 10
	}
	if cfg.Scheduler.MaxConcurrentJobs == 0 {
		cfg.Scheduler.MaxConcurrentJobs = 3
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 10 * time.Minute
	}
	if cfg.Scheduler.RetryAttempts == 0 {
		cfg.Scheduler.RetryAttempts = 3
	}
	if cfg.Scheduler.RetryDelay == 0 {
		cfg.Scheduler.RetryDelay = time.Minute
	}

	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.MetricsInterval == 0 {
		cfg.Telemetry.MetricsInterval = time.Minute
	}
	if cfg.Telemetry.SlowQueryThreshold == 0 {
		cfg.Telemetry.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}

	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "sa-east-1"
	}
	if cfg.Storage.PresignExpiration == 0 {
		cfg.Storage.PresignExpiration = 15 * time.Minute
	}

	if cfg.Bling.BaseURL == "" {
		cfg.Bling.BaseURL = "https://api.bling.com.br/Api/v3"
	}
	if cfg.Bling.TokenURL == "" {
		cfg.Bling.TokenURL = cfg.Bling.BaseURL + "/oauth/token"
	}
	if cfg.Bling.RequestsPerSec == 0 {
		cfg.Bling.RequestsPerSec = 3
	}
	if cfg.Bling.Timeout == 0 {
		cfg.Bling.Timeout = 30 * time.Second
	}
	if cfg.Bling.MaxRetries == 0 {
		cfg.Bling.MaxRetries = 2
	}
	if cfg.Bling.RetryDelay == 0 {
		cfg.Bling.RetryDelay = time.Second
	}
	if cfg.Bling.RateLimitDelay == 0 {
		cfg.Bling.RateLimitDelay = 2 * time.Second
	}

	if cfg.Shopify.APIVersion == "" {
		cfg.Shopify.APIVersion = "2024-01"
	}
	if cfg.Shopify.Timeout == 0 {
		cfg.Shopify.Timeout = 30 * time.Second
	}

	if cfg.MercadoPago.BaseURL == "" {
		cfg.MercadoPago.BaseURL = "https://api.mercadopago.com"
	}
	if cfg.MercadoPago.Timeout == 0 {
		cfg.MercadoPago.Timeout = 30 * time.Second
	}

	if cfg.Resend.BaseURL == "" {
		cfg.Resend.BaseURL = "https://api.resend.com"
	}
	if cfg.Resend.Timeout == 0 {
		cfg.Resend.Timeout = 15 * time.Second
	}

	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}

	if cfg.WhatsApp.BaseURL == "" {
		cfg.WhatsApp.BaseURL = "https://graph.facebook.com"
	}
	if cfg.WhatsApp.APIVersion == "" {
		cfg.WhatsApp.APIVersion = "v20.0"
	}
	if cfg.WhatsApp.Timeout == 0 {
		cfg.WhatsApp.Timeout = 15 * time.Second
	}

	if cfg.Tracking.BaseURL == "" {
		cfg.Tracking.BaseURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.Tracking.SigningKey == "" {
		cfg.Tracking.SigningKey = cfg.JWT.Secret
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.ProfilingServer == "" {
		return fmt.Errorf("telemetry.profiling_server is required when profiling is enabled")
	}
	if c.Pricing.RepresentativeDiscountPct < 0 || c.Pricing.RepresentativeDiscountPct > 100 {
		return fmt.Errorf("pricing.representative_discount_pct must be between 0 and 100, got %v",
			c.Pricing.RepresentativeDiscountPct)
	}

	if c.Bling.Enabled && (c.Bling.ClientID == "" || c.Bling.ClientSecret == "") {
		return fmt.Errorf("bling.client_id and bling.client_secret are required when bling is enabled")
	}
	if c.Shopify.Enabled && c.Shopify.ShopDomain == "" {
		return fmt.Errorf("shopify.shop_domain is required when shopify is enabled")
	}
	if c.MercadoPago.Enabled && c.MercadoPago.AccessToken == "" {
		return fmt.Errorf("mercadopago.access_token is required when mercadopago is enabled")
	}
	if c.Storage.Enabled && c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required when storage is enabled")
	}
	if c.Resend.Enabled && c.Resend.APIKey == "" {
		return fmt.Errorf("resend.api_key is required when resend is enabled")
	}
	if c.SMTP.Enabled && c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host is required when smtp is enabled")
	}
	if c.WhatsApp.Enabled && (c.WhatsApp.PhoneNumberID == "" || c.WhatsApp.AccessToken == "") {
		return fmt.Errorf("whatsapp.phone_number_id and whatsapp.access_token are required when whatsapp is enabled")
	}

	if c.App.IsProduction() {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if len(c.Tracking.SigningKey) < 32 {
			return fmt.Errorf("tracking.signing_key must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Database.LogSQL {
			return fmt.Errorf("database.log_sql must be false in production")
		}
		if c.Shopify.Enabled && c.Shopify.WebhookSecret == "" {
			return fmt.Errorf("shopify.webhook_secret is required in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
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
