// Package config handles configuration for the server component,
// including defaults, environment, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the simplog server. It is built once at
// startup and not changed afterwards.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - EndpointAddrHTTP: bind address for /health and /metrics.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory store.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenIssuer: iss and aud of issued tokens.
//   - S3Bucket / S3Region / S3BaseEndpoint / S3AccessKey / S3SecretKey:
//     employee image storage. Empty bucket keeps images in the database.
//   - AuthRateLimit: credential RPCs per peer per minute, 0 disables.
//   - ShutdownTimeout: grace period for in-flight requests.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC string
	EndpointAddrHTTP string
	DatabaseDSN      string
	SecretKey        string
	TokenIssuer      string
	S3Bucket         string
	S3Region         string
	S3BaseEndpoint   string
	S3AccessKey      string
	S3SecretKey      string
	AuthRateLimit    int
	ShutdownTimeout  time.Duration
	LogLevel         string
}

// DefaultSecretKey is the development signing secret. It is public, so
// tokens signed with it prove nothing.
const DefaultSecretKey = "secretKey"

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = DefaultSecretKey
	c.TokenIssuer = "simplog"
	c.S3Region = "us-east-1"
	c.AuthRateLimit = 30
	c.ShutdownTimeout = 10 * time.Second
	c.LogLevel = "info"
}

// UsesDefaultSecret reports whether tokens would be signed with
// DefaultSecretKey.
func (c *Config) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("grpc address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.TokenIssuer == "" {
		errs = append(errs, errors.New("token issuer is empty"))
	}
	if c.AuthRateLimit < 0 {
		errs = append(errs, errors.New("auth rate limit must not be negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown timeout must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from the process environment (after reading
// .env if present) and os.Args.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return Load(os.Args[1:], os.LookupEnv)
}

// Load applies defaults, then environment variables, then the optional JSON
// file named by -c/-config, then flags.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
