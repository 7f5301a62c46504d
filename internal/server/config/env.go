package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables read by parseEnv.
const (
	EnvGRPCAddr        = "SIMPLOG_GRPC_ADDR"
	EnvHTTPAddr        = "SIMPLOG_HTTP_ADDR"
	EnvDatabaseDSN     = "SIMPLOG_DATABASE_DSN"
	EnvSecretKey       = "SIMPLOG_SECRET_KEY"
	EnvTokenIssuer     = "SIMPLOG_TOKEN_ISSUER"
	EnvS3Bucket        = "SIMPLOG_S3_BUCKET"
	EnvS3Region        = "SIMPLOG_S3_REGION"
	EnvS3BaseEndpoint  = "SIMPLOG_S3_BASE_ENDPOINT"
	EnvS3AccessKey     = "SIMPLOG_S3_ACCESS_KEY"
	EnvS3SecretKey     = "SIMPLOG_S3_SECRET_KEY"
	EnvAuthRateLimit   = "SIMPLOG_AUTH_RATE_LIMIT"
	EnvShutdownTimeout = "SIMPLOG_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "SIMPLOG_LOG_LEVEL"
)

func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvGRPCAddr:       &config.EndpointAddrGRPC,
		EnvHTTPAddr:       &config.EndpointAddrHTTP,
		EnvDatabaseDSN:    &config.DatabaseDSN,
		EnvSecretKey:      &config.SecretKey,
		EnvTokenIssuer:    &config.TokenIssuer,
		EnvS3Bucket:       &config.S3Bucket,
		EnvS3Region:       &config.S3Region,
		EnvS3BaseEndpoint: &config.S3BaseEndpoint,
		EnvS3AccessKey:    &config.S3AccessKey,
		EnvS3SecretKey:    &config.S3SecretKey,
		EnvLogLevel:       &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvAuthRateLimit); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvAuthRateLimit, err)
		}
		config.AuthRateLimit = n
	}

	if v, ok := lookup(EnvShutdownTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvShutdownTimeout, err)
		}
		config.ShutdownTimeout = d
	}

	return nil
}
