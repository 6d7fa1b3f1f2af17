package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates every runtime setting of the storefront API. It is parsed
// once in main and handed to constructors; nothing reads the environment after
// startup.
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Token     TokenConfig
	SMTP      SMTPConfig
	S3        S3Config
	Seller    SellerConfig
	Google    GoogleConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr        string `env:"SERVER_ADDR"  envDefault:":4000"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
}

// Production reports whether the service runs with production hardening
// (secure cookies, cross-site cookie policy for the hosted frontend).
func (c ServerConfig) Production() bool {
	return c.Environment == "production"
}

// MongoConfig holds document store settings.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"      envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"grocer"`
}

// RedisConfig holds rate-limit counter store settings.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"   envDefault:"0"`
}

// TokenConfig holds signing settings for session and reset credentials.
type TokenConfig struct {
	Secret          string        `env:"JWT_SECRET"`
	Issuer          string        `env:"JWT_ISSUER"        envDefault:"grocer-api"`
	SessionTTL      time.Duration `env:"SESSION_TTL"       envDefault:"168h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL"   envDefault:"5m"`
	OTPChallengeTTL time.Duration `env:"OTP_CHALLENGE_TTL" envDefault:"10m"`
}

func (c TokenConfig) validate() error {
	if c.Secret == "" {
		return fmt.Errorf("missing JWT_SECRET environment variable")
	}
	return nil
}

// SMTPConfig holds mail relay settings for OTP delivery.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

func (c SMTPConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}

// S3Config holds product image storage settings. The endpoint is explicit so
// that a MinIO deployment works the same as AWS.
type S3Config struct {
	Region       string `env:"S3_REGION"     envDefault:"us-east-1"`
	Bucket       string `env:"S3_BUCKET"     envDefault:"grocer-product-images"`
	BaseEndpoint string `env:"S3_ENDPOINT"`
	AccessKey    string `env:"S3_ACCESS_KEY"`
	SecretKey    string `env:"S3_SECRET_KEY"`
	PublicURL    string `env:"S3_PUBLIC_URL"`
}

// SellerConfig holds the single seller-panel credential pair.
type SellerConfig struct {
	Email    string `env:"SELLER_EMAIL"`
	Password string `env:"SELLER_PASSWORD"`
}

func (c SellerConfig) validate() error {
	if c.Email == "" {
		return fmt.Errorf("missing SELLER_EMAIL environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SELLER_PASSWORD environment variable")
	}
	return nil
}

// GoogleConfig holds the OAuth client used to validate federated login tokens.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

// RateLimitConfig tunes the two throttle classes in front of the auth
// endpoints. Verification limits are stricter than the general auth limits.
type RateLimitConfig struct {
	AuthMaxAttempts   int           `env:"RATE_AUTH_MAX"    envDefault:"30"`
	VerifyMaxAttempts int           `env:"RATE_VERIFY_MAX"  envDefault:"10"`
	Window            time.Duration `env:"RATE_WINDOW"      envDefault:"15m"`
}

// Load parses the full configuration from the environment.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Token.validate(); err != nil {
		return nil, err
	}
	if err := cfg.SMTP.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Seller.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
