package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/simplog/internal/flagx"
	"github.com/dmitrijs2005/simplog/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept both "10s"
// strings and integer nanoseconds. Pointer fields distinguish an explicit
// zero from an absent key.
type JsonConfig struct {
	EndpointAddrGRPC string          `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	DatabaseDSN      *string         `json:"database_dsn"`
	SecretKey        string          `json:"secret_key"`
	TokenIssuer      string          `json:"token_issuer"`
	S3Bucket         *string         `json:"s3_bucket"`
	S3Region         string          `json:"s3_region"`
	S3BaseEndpoint   string          `json:"s3_base_endpoint"`
	S3AccessKey      string          `json:"s3_access_key"`
	S3SecretKey      string          `json:"s3_secret_key"`
	AuthRateLimit    *int            `json:"auth_rate_limit"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	LogLevel         string          `json:"log_level"`
}

// parseJson overlays the file named by -c/-config in args, if any. Keys
// missing from the file leave the current value alone.
func parseJson(config *Config, args []string) error {

	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.TokenIssuer, c.TokenIssuer)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.AuthRateLimit != nil {
		config.AuthRateLimit = *c.AuthRateLimit
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
