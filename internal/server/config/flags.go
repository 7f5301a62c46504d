package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/simplog/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-m string     ops HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN, empty for the in-memory store
//	-s string     JWT HMAC secret key
//	-i string     JWT issuer
//	-b string     S3 bucket for employee images
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-r int        credential RPCs per peer per minute
//	-l string     log level
//	-shutdown     graceful shutdown timeout (e.g., "10s")
//
// S3 credentials are not accepted as flags so they stay out of process
// listings.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-m", "-d", "-s", "-i", "-b", "-g", "-e", "-r", "-l", "-shutdown"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.EndpointAddrHTTP, "m", config.EndpointAddrHTTP, "address and port for health and metrics")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.IntVar(&config.AuthRateLimit, "r", config.AuthRateLimit, "credential requests per peer per minute")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.DurationVar(&config.ShutdownTimeout, "shutdown", config.ShutdownTimeout, "graceful shutdown timeout")

	return fs.Parse(args)
}
