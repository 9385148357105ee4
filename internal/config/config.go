package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	S3        S3Config
	Log       LogConfig
	Extractor ExtractorConfig
	Reconcile ReconcileConfig
	CORS      CORSConfig
	Email     EmailConfig
	Hospital  HospitalConfig
}

// HospitalConfig holds the display settings of the hospital unit the
// service runs for. Orders created by reconciliation are stamped with Unit.
type HospitalConfig struct {
	Unit string `mapstructure:"unit"`
}

// EmailConfig holds email delivery settings for triage summaries.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ReportEmail string `mapstructure:"report_email"`
	FrontendURL string `mapstructure:"frontend_url"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ProviderConfig holds settings for a single remote extraction provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds extraction strategy settings with multi-provider support.
type ExtractorConfig struct {
	DefaultMode     string `mapstructure:"default_mode"`
	MaxPages        int    `mapstructure:"max_pages"`
	MaxPayloadBytes int    `mapstructure:"max_payload_bytes"`

	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, or nil if not configured.
func (e *ExtractorConfig) PrimaryConfig() *ProviderConfig {
	if e.Primary.Provider != "" {
		return &e.Primary
	}
	return nil
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// ReconcileConfig holds order and catalog matching settings.
type ReconcileConfig struct {
	FuzzyThreshold      float64 `mapstructure:"fuzzy_threshold"`
	DefaultProductClass string  `mapstructure:"default_product_class"`
	CandidateLimit      int     `mapstructure:"candidate_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings. An empty Bucket disables original-document archiving.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the SVA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "sva")
	v.SetDefault("db.password", "sva_secret")
	v.SetDefault("db.name", "sva_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "sa-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "sa-east-1")
	v.SetDefault("email.from_address", "noreply@sva.local")
	v.SetDefault("email.from_name", "SVA Suprimentos")
	v.SetDefault("email.report_email", "")
	v.SetDefault("email.frontend_url", "http://localhost:3000")

	// Hospital defaults
	v.SetDefault("hospital.unit", "Hospital")

	// Extractor defaults
	v.SetDefault("extractor.default_mode", "local")
	v.SetDefault("extractor.max_pages", 30)
	v.SetDefault("extractor.max_payload_bytes", 20*1024*1024)
	v.SetDefault("extractor.primary.provider", "")
	v.SetDefault("extractor.primary.api_key", "")
	v.SetDefault("extractor.primary.default_model", "")
	v.SetDefault("extractor.primary.endpoint", "")
	v.SetDefault("extractor.primary.timeout_secs", 120)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.api_key", "")
	v.SetDefault("extractor.secondary.default_model", "")
	v.SetDefault("extractor.secondary.endpoint", "")
	v.SetDefault("extractor.secondary.timeout_secs", 120)

	// Reconcile defaults
	v.SetDefault("reconcile.fuzzy_threshold", 0.85)
	v.SetDefault("reconcile.default_product_class", "Material Hospitalar")
	v.SetDefault("reconcile.candidate_limit", 20)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                       "SVA_SERVER_PORT",
		"server.read_timeout":               "SVA_SERVER_READ_TIMEOUT",
		"server.write_timeout":              "SVA_SERVER_WRITE_TIMEOUT",
		"server.environment":                "SVA_SERVER_ENVIRONMENT",
		"db.host":                           "SVA_DB_HOST",
		"db.port":                           "SVA_DB_PORT",
		"db.user":                           "SVA_DB_USER",
		"db.password":                       "SVA_DB_PASSWORD",
		"db.name":                           "SVA_DB_NAME",
		"db.sslmode":                        "SVA_DB_SSLMODE",
		"db.max_open":                       "SVA_DB_MAX_OPEN",
		"db.max_idle":                       "SVA_DB_MAX_IDLE",
		"s3.region":                         "SVA_S3_REGION",
		"s3.bucket":                         "SVA_S3_BUCKET",
		"s3.endpoint":                       "SVA_S3_ENDPOINT",
		"s3.access_key":                     "SVA_S3_ACCESS_KEY",
		"s3.secret_key":                     "SVA_S3_SECRET_KEY",
		"s3.max_file_size_mb":               "SVA_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                 "SVA_S3_PRESIGN_EXPIRY",
		"log.level":                         "SVA_LOG_LEVEL",
		"log.format":                        "SVA_LOG_FORMAT",
		"cors.allowed_origins":              "SVA_CORS_ALLOWED_ORIGINS",
		"email.provider":                    "SVA_EMAIL_PROVIDER",
		"email.region":                      "SVA_EMAIL_REGION",
		"email.from_address":                "SVA_EMAIL_FROM_ADDRESS",
		"email.from_name":                   "SVA_EMAIL_FROM_NAME",
		"email.report_email":                "SVA_EMAIL_REPORT_EMAIL",
		"email.frontend_url":                "SVA_EMAIL_FRONTEND_URL",
		"hospital.unit":                     "SVA_HOSPITAL_UNIT",
		"extractor.default_mode":            "SVA_EXTRACTOR_DEFAULT_MODE",
		"extractor.max_pages":               "SVA_EXTRACTOR_MAX_PAGES",
		"extractor.max_payload_bytes":       "SVA_EXTRACTOR_MAX_PAYLOAD_BYTES",
		"extractor.primary.provider":        "SVA_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":         "SVA_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.default_model":   "SVA_EXTRACTOR_PRIMARY_DEFAULT_MODEL",
		"extractor.primary.endpoint":        "SVA_EXTRACTOR_PRIMARY_ENDPOINT",
		"extractor.primary.timeout_secs":    "SVA_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.secondary.provider":      "SVA_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":       "SVA_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.default_model": "SVA_EXTRACTOR_SECONDARY_DEFAULT_MODEL",
		"extractor.secondary.endpoint":      "SVA_EXTRACTOR_SECONDARY_ENDPOINT",
		"extractor.secondary.timeout_secs":  "SVA_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"reconcile.fuzzy_threshold":         "SVA_RECONCILE_FUZZY_THRESHOLD",
		"reconcile.default_product_class":   "SVA_RECONCILE_DEFAULT_PRODUCT_CLASS",
		"reconcile.candidate_limit":         "SVA_RECONCILE_CANDIDATE_LIMIT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SVA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SVA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ReportEmail: v.GetString("email.report_email"),
		FrontendURL: v.GetString("email.frontend_url"),
	}

	cfg.Hospital = HospitalConfig{
		Unit: v.GetString("hospital.unit"),
	}

	cfg.Extractor = ExtractorConfig{
		DefaultMode:     v.GetString("extractor.default_mode"),
		MaxPages:        v.GetInt("extractor.max_pages"),
		MaxPayloadBytes: v.GetInt("extractor.max_payload_bytes"),
		Primary:         loadProvider(v, "extractor.primary"),
		Secondary:       loadProvider(v, "extractor.secondary"),
	}

	cfg.Reconcile = ReconcileConfig{
		FuzzyThreshold:      v.GetFloat64("reconcile.fuzzy_threshold"),
		DefaultProductClass: v.GetString("reconcile.default_product_class"),
		CandidateLimit:      v.GetInt("reconcile.candidate_limit"),
	}

	if cfg.Reconcile.FuzzyThreshold <= 0 || cfg.Reconcile.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("reconcile.fuzzy_threshold must be in (0, 1], got %v", cfg.Reconcile.FuzzyThreshold)
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}
