package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-r", "127.0.0.1:50052", "-d", "db", "-s", "secret", "-t", "15",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-m", "https://cdn.example.com", "-x", "2048", "-w", "100ms", "-i", "3s", "-f", "zap", "-l", "debug",
			},
			expected: &Config{
				HTTPAddr:                    "127.0.0.1:9090",
				EndpointAddrGRPC:            "127.0.0.1:50052",
				DatabaseDSN:                 "db",
				SecretKey:                   "secret",
				AccessTokenValidityDuration: 15 * time.Minute,
				S3RootUser:                  "user",
				S3RootPassword:              "password",
				S3Bucket:                    "bucket",
				S3Region:                    "us-west-1",
				S3BaseEndpoint:              "http://endpoint",
				S3PublicBaseURL:             "https://cdn.example.com",
				UploadMaxBytes:              2048,
				CoalesceWindow:              100 * time.Millisecond,
				RotateInterval:              3 * time.Second,
				LogFormat:                   "zap",
				LogLevel:                    "debug",
			},
		},
		{
			name: "unknown flags are ignored",
			args: []string{"cmd", "-c", "cfg.json", "-z", "1", "-a", ":1"},
			expected: &Config{
				HTTPAddr: ":1",
			},
		},
		{
			name:        "bad duration",
			args:        []string{"cmd", "-w", "soon"},
			expectPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
