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
	Admin     AdminConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Payment   PaymentConfig
	Shipping  ShippingConfig
	Email     EmailConfig
	Receipt   ReceiptConfig
	Storage   StorageConfig
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
	Name        string
	Env         string
	Port        string
	StoreName   string // Printed on receipts and used in email subjects
	FrontendURL string // Base URL of the storefront, used for payment back URLs
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
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings for the admin API
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// AdminConfig holds the single admin account for the order management API
type AdminConfig struct {
	Username     string
	PasswordHash string // bcrypt hash
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout          time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	MaxHeaderBytes       int
	MaxBodySize          int64
	RateLimitEnabled     bool
	RateLimitRequests    int
	RateLimitWindow      time.Duration
	CheckoutRateRequests int           // Max checkout attempts per window
	CheckoutRateWindow   time.Duration // Checkout rate limit window
	AuthRateRequests     int           // Max login attempts per window
	AuthRateWindow       time.Duration // Login rate limit window
	CORSAllowOrigins     []string
	CORSAllowMethods     []string
	CORSAllowHeaders     []string
	TrustedProxies       []string
}

// PaymentConfig holds payment gateway settings
type PaymentConfig struct {
	BaseURL               string // Gateway API base URL
	AccessToken           string // Gateway API access token
	WebhookSecret         string // Secret for webhook signature verification
	NotificationURL       string // Public URL the gateway posts webhooks to
	StatementDescriptor   string // Text shown on the buyer's card statement
	MaxInstallments       int
	BinaryMode            bool          // Reject pending payments at the gateway
	PreferenceExpiration  time.Duration // How long a checkout preference stays valid
	RequestTimeout        time.Duration
	AllowUnsignedWebhooks bool // Accept webhooks without a signature header (development only)
}

// ShippingConfig holds carrier integration settings
type ShippingConfig struct {
	BaseURL        string // Carrier API base URL
	APIKey         string
	APISecret      string
	OriginCEP      string   // Warehouse postal code, digits only
	Services       []string // Carrier service codes to quote (e.g., SEDEX, PAC)
	RequestTimeout time.Duration
	TokenTTL       time.Duration // Carrier auth token cache lifetime
	FallbackRate   float64       // Flat rate in BRL when the carrier is unreachable
	FallbackDays   int           // Delivery estimate for the flat rate
	ExtraDays      int           // Handling buffer added to carrier delivery estimates
	FreeThreshold  float64       // Order total (BRL) above which shipping is free; 0 disables
}

// EmailConfig holds transactional email settings
type EmailConfig struct {
	Enabled        bool
	BaseURL        string // Email provider API base URL
	APIKey         string
	FromAddress    string
	FromName       string
	WebhookSecret  string // Secret for email event webhook verification
	RequestTimeout time.Duration
}

// ReceiptConfig holds PDF receipt rendering settings
type ReceiptConfig struct {
	Enabled       bool
	RenderTimeout time.Duration
}

// StorageConfig holds S3-compatible object storage settings for receipt archival
type StorageConfig struct {
	Enabled         bool
	Endpoint        string // Custom endpoint for S3-compatible services (empty = AWS)
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool // Required for MinIO and most S3-compatible services
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with VESTI_ prefix (e.g., VESTI_PAYMENT_ACCESS_TOKEN)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	// Set config file settings
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	// Enable environment variable override
	v.SetEnvPrefix("VESTI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Build config struct
	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("app.name"),
			Env:         v.GetString("app.env"),
			Port:        v.GetString("app.port"),
			StoreName:   v.GetString("app.store_name"),
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
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Admin: AdminConfig{
			Username:     v.GetString("admin.username"),
			PasswordHash: v.GetString("admin.password_hash"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:          v.GetDuration("http.read_timeout"),
			WriteTimeout:         v.GetDuration("http.write_timeout"),
			IdleTimeout:          v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:       v.GetInt("http.max_header_bytes"),
			MaxBodySize:          v.GetInt64("http.max_body_size"),
			RateLimitEnabled:     v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:    v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:      v.GetDuration("http.rate_limit_window"),
			CheckoutRateRequests: v.GetInt("http.checkout_rate_requests"),
			CheckoutRateWindow:   v.GetDuration("http.checkout_rate_window"),
			AuthRateRequests:     v.GetInt("http.auth_rate_requests"),
			AuthRateWindow:       v.GetDuration("http.auth_rate_window"),
			CORSAllowOrigins:     v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:     v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:     v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:       v.GetStringSlice("http.trusted_proxies"),
		},
		Payment: PaymentConfig{
			BaseURL:               v.GetString("payment.base_url"),
			AccessToken:           v.GetString("payment.access_token"),
			WebhookSecret:         v.GetString("payment.webhook_secret"),
			NotificationURL:       v.GetString("payment.notification_url"),
			StatementDescriptor:   v.GetString("payment.statement_descriptor"),
			MaxInstallments:       v.GetInt("payment.max_installments"),
			BinaryMode:            v.GetBool("payment.binary_mode"),
			PreferenceExpiration:  v.GetDuration("payment.preference_expiration"),
			RequestTimeout:        v.GetDuration("payment.request_timeout"),
			AllowUnsignedWebhooks: v.GetBool("payment.allow_unsigned_webhooks"),
		},
		Shipping: ShippingConfig{
			BaseURL:        v.GetString("shipping.base_url"),
			APIKey:         v.GetString("shipping.api_key"),
			APISecret:      v.GetString("shipping.api_secret"),
			OriginCEP:      v.GetString("shipping.origin_cep"),
			Services:       v.GetStringSlice("shipping.services"),
			RequestTimeout: v.GetDuration("shipping.request_timeout"),
			TokenTTL:       v.GetDuration("shipping.token_ttl"),
			FallbackRate:   v.GetFloat64("shipping.fallback_rate"),
			FallbackDays:   v.GetInt("shipping.fallback_days"),
			ExtraDays:      v.GetInt("shipping.extra_days"),
			FreeThreshold:  v.GetFloat64("shipping.free_threshold"),
		},
		Email: EmailConfig{
			Enabled:        v.GetBool("email.enabled"),
			BaseURL:        v.GetString("email.base_url"),
			APIKey:         v.GetString("email.api_key"),
			FromAddress:    v.GetString("email.from_address"),
			FromName:       v.GetString("email.from_name"),
			WebhookSecret:  v.GetString("email.webhook_secret"),
			RequestTimeout: v.GetDuration("email.request_timeout"),
		},
		Receipt: ReceiptConfig{
			Enabled:       v.GetBool("receipt.enabled"),
			RenderTimeout: v.GetDuration("receipt.render_timeout"),
		},
		Storage: StorageConfig{
			Enabled:         v.GetBool("storage.enabled"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
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

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "vesti-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.StoreName == "" {
		cfg.App.StoreName = "Vesti"
	}
	if cfg.App.FrontendURL == "" {
		cfg.App.FrontendURL = "http://localhost:3000"
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
		cfg.Database.DBName = "vesti"
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
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 8 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "vesti-backend"
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
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB, checkout payloads are small
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// Checkout endpoints get stricter limits to slow down carding attempts
	if cfg.HTTP.CheckoutRateRequests == 0 {
		cfg.HTTP.CheckoutRateRequests = 10
	}
	if cfg.HTTP.CheckoutRateWindow == 0 {
		cfg.HTTP.CheckoutRateWindow = time.Minute
	}
	// Login attempts are throttled harder than regular traffic
	if cfg.HTTP.AuthRateRequests == 0 {
		cfg.HTTP.AuthRateRequests = 10
	}
	if cfg.HTTP.AuthRateWindow == 0 {
		cfg.HTTP.AuthRateWindow = time.Minute
	}
	// NOTE: CORS origins are intentionally not given a default fallback to "*".
	// An empty list means no cross-origin requests are allowed until explicitly configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Payment.BaseURL == "" {
		cfg.Payment.BaseURL = "https://api.mercadopago.com"
	}
	if cfg.Payment.StatementDescriptor == "" {
		cfg.Payment.StatementDescriptor = "VESTI"
	}
	if cfg.Payment.MaxInstallments == 0 {
		cfg.Payment.MaxInstallments = 12
	}
	if cfg.Payment.PreferenceExpiration == 0 {
		cfg.Payment.PreferenceExpiration = 24 * time.Hour
	}
	if cfg.Payment.RequestTimeout == 0 {
		cfg.Payment.RequestTimeout = 10 * time.Second
	}
	if cfg.Shipping.RequestTimeout == 0 {
		cfg.Shipping.RequestTimeout = 10 * time.Second
	}
	if cfg.Shipping.TokenTTL == 0 {
		cfg.Shipping.TokenTTL = 23 * time.Hour
	}
	if len(cfg.Shipping.Services) == 0 {
		cfg.Shipping.Services = []string{"SEDEX", "PAC"}
	}
	if cfg.Shipping.FallbackRate == 0 {
		cfg.Shipping.FallbackRate = 25.00
	}
	if cfg.Shipping.FallbackDays == 0 {
		cfg.Shipping.FallbackDays = 10
	}
	if cfg.Shipping.ExtraDays == 0 {
		cfg.Shipping.ExtraDays = 2
	}
	if cfg.Email.RequestTimeout == 0 {
		cfg.Email.RequestTimeout = 10 * time.Second
	}
	if cfg.Email.FromName == "" {
		cfg.Email.FromName = cfg.App.StoreName
	}
	if cfg.Receipt.RenderTimeout == 0 {
		cfg.Receipt.RenderTimeout = 30 * time.Second
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "sa-east-1"
	}
	// Telemetry defaults
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "vesti-backend"
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

	if c.Shipping.OriginCEP != "" && len(c.Shipping.OriginCEP) != 8 {
		return fmt.Errorf("shipping.origin_cep must be 8 digits, got %q", c.Shipping.OriginCEP)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Admin.PasswordHash == "" {
			return fmt.Errorf("admin.password_hash is required in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Payment.AccessToken == "" {
			return fmt.Errorf("payment.access_token is required in production")
		}
		if c.Payment.WebhookSecret == "" {
			return fmt.Errorf("payment.webhook_secret is required in production")
		}
		if c.Payment.AllowUnsignedWebhooks {
			return fmt.Errorf("payment.allow_unsigned_webhooks must be false in production")
		}
		if c.Payment.NotificationURL != "" && !strings.HasPrefix(c.Payment.NotificationURL, "https://") {
			return fmt.Errorf("payment.notification_url must use https in production")
		}
		// CORS must not use wildcard with credentials
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	// Validate telemetry configuration (all environments)
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// IsProduction returns true when the app is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Warnings reports settings that pass validation in the current environment
// but should never go unnoticed. The caller logs each one at startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Payment.AllowUnsignedWebhooks {
		warnings = append(warnings, "accepting unsigned payment webhooks, signature verification is disabled")
	}
	return warnings
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

// Addr returns the host:port address for the Redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
