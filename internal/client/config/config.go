// Package config handles configuration for the simplog CLI: defaults,
// environment and an optional JSON file, in that order. Command-line flags
// are bound on top by the cli package.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by the CLI.
const (
	EnvServerAddr = "SIMPLOG_ADDR"
	EnvToken      = "SIMPLOG_TOKEN"
)

// Config holds runtime settings for the simplog CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - Token: bearer token for employee commands, from a previous login.
//   - RequestTimeout: deadline applied to each RPC.
type Config struct {
	ServerEndpointAddr string
	Token              string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig reads .env if present and builds a Config from the process
// environment and os.Args.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return Load(os.Args[1:], os.LookupEnv)
}

// Load applies defaults, environment and the JSON file named by -c/--config
// in args. Later sources take precedence over earlier ones.
func Load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v, ok := lookup(EnvServerAddr); ok && v != "" {
		cfg.ServerEndpointAddr = v
	}
	if v, ok := lookup(EnvToken); ok {
		cfg.Token = v
	}

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
