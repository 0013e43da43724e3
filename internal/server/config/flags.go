package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophsite/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-r string     staff gRPC bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN, or "memory"
//	-s string     JWT HMAC secret key
//	-t int        access token validity, minutes
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string     public media base URL
//	-x int        upload size limit, bytes
//	-w duration   change event coalesce window (e.g., "250ms")
//	-i duration   carousel rotate interval
//	-f string     log format: json, text or zap
//	-l string     log level
//
// Duration flags except -t use Go duration syntax.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-r", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-m", "-x", "-w", "-i", "-f", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "address and port of the staff gRPC endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN or \"memory\"")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "m", config.S3PublicBaseURL, "public media base URL")
	fs.IntVar(&config.UploadMaxBytes, "x", config.UploadMaxBytes, "upload size limit (bytes)")
	fs.DurationVar(&config.CoalesceWindow, "w", config.CoalesceWindow, "change event coalesce window")
	fs.DurationVar(&config.RotateInterval, "i", config.RotateInterval, "carousel rotate interval")
	fs.StringVar(&config.LogFormat, "f", config.LogFormat, "log format (json, text, zap)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
}
