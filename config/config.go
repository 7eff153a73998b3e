// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath        = pflag.String("config", ".", "Directory containing config.toml")
	_                 = pflag.Bool("seed", false, "Insert the demo owner and sample listings, then exit")
	validLogLevels    = []string{"debug", "info", "warn", "error", "fatal"}
	validEnvs         = []string{"development", "production"}
	validDBDrivers    = []string{"sqlite", "postgres"}
	validStorageTypes = []string{"inline", "s3"}
	validMailDrivers  = []string{"smtp", "log"}
)

// ErrNoSecret is returned by Setup when no JWT secret was configured. The
// caller can print GenSecret() as a suggestion.
var ErrNoSecret = errors.New("jwt.secret is not set")

// Config is a typed snapshot of everything the application needs after
// Setup has validated it.
type Config struct {
	Env         string
	LogLevel    string
	FrontendURL string

	Port        int
	CORSOrigins []string

	DBDriver string
	DBDSN    string

	JWTSecret []byte
	JWTTTL    time.Duration

	OTPLength          int
	OTPTTL             time.Duration
	OTPResetGrace      time.Duration
	OTPCleanupInterval time.Duration
	OTPRetention       time.Duration

	MailDriver   string
	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string

	RateLimit    int
	OTPRateLimit int
	MaxBodySize  int64

	RedisAddr string

	StorageType        string
	AWSRegion          string
	AWSAccessKey       string
	AWSSecretAccessKey string
	AWSBucket          string
	AWSEndpoint        string
	AWSPublicURL       string

	TurnstileEnabled bool
	TurnstileSecret  string

	// Seed makes the binary insert demo data and exit instead of serving.
	Seed bool
}

// Development reports whether internal error details may be exposed to clients.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// GenSecret returns a random hex string suitable for jwt.secret.
func GenSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func setDefaults() {
	v.SetDefault("app.env", "production")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.frontend_url", "http://localhost:3000")

	v.SetDefault("host.port", 5000)
	v.SetDefault("host.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("jwt.ttl", "720h")

	v.SetDefault("otp.length", 6)
	v.SetDefault("otp.ttl", "10m")
	v.SetDefault("otp.reset_grace", "10m")
	v.SetDefault("otp.cleanup_interval", "1h")
	v.SetDefault("otp.retention", "24h")

	v.SetDefault("mail.driver", "smtp")
	v.SetDefault("mail.port", 587)

	v.SetDefault("security.rate_limit", 10)
	v.SetDefault("security.otp_rate_limit", 1)
	v.SetDefault("security.max_body_size", 10)

	v.SetDefault("storage.type", "inline")

	v.SetDefault("cloudflare.turnstile.enabled", false)
}

func bindEnvs() {
	v.BindEnv("app.env", "APP_ENV", "NODE_ENV")
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")
	v.BindEnv("app.frontend_url", "APP_FRONTEND_URL", "FRONTEND_URL")

	v.BindEnv("host.port", "HOST_PORT", "PORT")
	v.BindEnv("host.cors_origins", "HOST_CORS_ORIGINS")

	v.BindEnv("db.driver", "DB_DRIVER")
	v.BindEnv("db.dsn", "DB_DSN", "DATABASE_URL")

	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.ttl", "JWT_TTL")

	v.BindEnv("otp.length", "OTP_LENGTH")
	v.BindEnv("otp.ttl", "OTP_TTL")
	v.BindEnv("otp.reset_grace", "OTP_RESET_GRACE")
	v.BindEnv("otp.cleanup_interval", "OTP_CLEANUP_INTERVAL")
	v.BindEnv("otp.retention", "OTP_RETENTION")

	v.BindEnv("mail.driver", "MAIL_DRIVER")
	v.BindEnv("mail.host", "MAIL_HOST")
	v.BindEnv("mail.port", "MAIL_PORT")
	v.BindEnv("mail.username", "MAIL_USERNAME", "EMAIL_USER")
	v.BindEnv("mail.password", "MAIL_PASSWORD", "EMAIL_PASSWORD")
	v.BindEnv("mail.from", "MAIL_FROM")

	v.BindEnv("security.rate_limit", "SECURITY_RATE_LIMIT")
	v.BindEnv("security.otp_rate_limit", "SECURITY_OTP_RATE_LIMIT")
	v.BindEnv("security.max_body_size", "SECURITY_MAX_BODY_SIZE")

	v.BindEnv("cache.redis_addr", "CACHE_REDIS_ADDR")

	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("aws.region", "AWS_REGION")
	v.BindEnv("aws.access_key", "AWS_ACCESS_KEY")
	v.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("aws.bucket", "AWS_BUCKET")
	v.BindEnv("aws.endpoint", "AWS_ENDPOINT")
	v.BindEnv("aws.public_url", "AWS_PUBLIC_URL")

	v.BindEnv("cloudflare.turnstile.enabled", "CLOUDFLARE_TURNSTILE_ENABLED")
	v.BindEnv("cloudflare.turnstile.secret_token", "CLOUDFLARE_TURNSTILE_SECRET_TOKEN")
}

// Setup prepares everything config-related so that the app can
// start working. A missing config.toml is fine as long as the
// environment provides the required values. Function will return
// an error if something is critically wrong and the application
// can't run because of that.
func Setup() error {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	bindEnvs()
	setDefaults()

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	return Validate()
}

// Validate checks the values currently held by viper.
func Validate() error {
	if !slices.Contains(validEnvs, v.GetString("app.env")) {
		return errors.New("app.env must be development or production")
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid db.driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		return ErrNoSecret
	}

	for _, key := range []string{"jwt.ttl", "otp.ttl", "otp.reset_grace", "otp.cleanup_interval", "otp.retention"} {
		if v.GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}

	if l := v.GetInt("otp.length"); l < 4 || l > 10 {
		return errors.New("otp.length must be between 4 and 10")
	}

	if !slices.Contains(validMailDrivers, v.GetString("mail.driver")) {
		return errors.New("invalid mail.driver provided")
	}

	if v.GetString("mail.driver") == "smtp" {
		if v.GetString("mail.host") == "" {
			return errors.New("mail.host can't be empty")
		}
		if v.GetString("mail.from") == "" && v.GetString("mail.username") == "" {
			return errors.New("mail.from or mail.username must be set")
		}
	}

	if v.GetInt("security.rate_limit") <= 0 || v.GetInt("security.otp_rate_limit") <= 0 {
		return errors.New("rate limits must be bigger than 0")
	}

	if v.GetInt("security.max_body_size") <= 0 {
		return errors.New("security.max_body_size must be bigger than 0")
	}

	if !slices.Contains(validStorageTypes, v.GetString("storage.type")) {
		return errors.New("invalid storage type provided")
	}

	if v.GetString("storage.type") == "s3" {
		if v.GetString("aws.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("aws.access_key") == "" {
			return errors.New("access key can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if v.GetString("aws.public_url") == "" {
			return errors.New("aws.public_url can't be empty")
		}
	}

	if v.GetBool("cloudflare.turnstile.enabled") && v.GetString("cloudflare.turnstile.secret_token") == "" {
		return errors.New("turnstile secret token is missing")
	}

	return nil
}

// Load returns the validated configuration as a typed struct.
func Load() *Config {
	from := v.GetString("mail.from")
	if from == "" {
		from = v.GetString("mail.username")
	}

	return &Config{
		Env:         v.GetString("app.env"),
		LogLevel:    v.GetString("app.log_level"),
		FrontendURL: v.GetString("app.frontend_url"),

		Port:        v.GetInt("host.port"),
		CORSOrigins: v.GetStringSlice("host.cors_origins"),

		DBDriver: v.GetString("db.driver"),
		DBDSN:    v.GetString("db.dsn"),

		JWTSecret: []byte(v.GetString("jwt.secret")),
		JWTTTL:    v.GetDuration("jwt.ttl"),

		OTPLength:          v.GetInt("otp.length"),
		OTPTTL:             v.GetDuration("otp.ttl"),
		OTPResetGrace:      v.GetDuration("otp.reset_grace"),
		OTPCleanupInterval: v.GetDuration("otp.cleanup_interval"),
		OTPRetention:       v.GetDuration("otp.retention"),

		MailDriver:   v.GetString("mail.driver"),
		MailHost:     v.GetString("mail.host"),
		MailPort:     v.GetInt("mail.port"),
		MailUsername: v.GetString("mail.username"),
		MailPassword: v.GetString("mail.password"),
		MailFrom:     from,

		RateLimit:    v.GetInt("security.rate_limit"),
		OTPRateLimit: v.GetInt("security.otp_rate_limit"),
		MaxBodySize:  v.GetInt64("security.max_body_size") << 20,

		RedisAddr: v.GetString("cache.redis_addr"),

		StorageType:        v.GetString("storage.type"),
		AWSRegion:          v.GetString("aws.region"),
		AWSAccessKey:       v.GetString("aws.access_key"),
		AWSSecretAccessKey: v.GetString("aws.secret_access_key"),
		AWSBucket:          v.GetString("aws.bucket"),
		AWSEndpoint:        v.GetString("aws.endpoint"),
		AWSPublicURL:       v.GetString("aws.public_url"),

		TurnstileEnabled: v.GetBool("cloudflare.turnstile.enabled"),
		TurnstileSecret:  v.GetString("cloudflare.turnstile.secret_token"),

		Seed: v.GetBool("seed"),
	}
}
