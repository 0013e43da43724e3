package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/gophsite/internal/flagx"
	"github.com/dmitrijs2005/gophsite/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// accept "250ms" style strings or integer nanoseconds.
type JsonConfig struct {
	HTTPAddr                    string         `json:"http_addr"`
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3PublicBaseURL             string         `json:"s3_public_base_url"`
	UploadMaxBytes              int            `json:"upload_max_bytes"`
	CoalesceWindow              timex.Duration `json:"coalesce_window"`
	RotateInterval              timex.Duration `json:"rotate_interval"`
	LoginRatePerMinute          int            `json:"login_rate_per_minute"`
	LogFormat                   string         `json:"log_format"`
	LogLevel                    string         `json:"log_level"`
	StaffAccounts               []StaffAccount `json:"staff_accounts"`
}

// parseJson overlays values from the JSON file named by -c/-config or
// $GOPHSITE_CONFIG. Keys absent from the file keep their current value.
// An unreadable or malformed file panics.
func parseJson(config *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.CoalesceWindow.Duration > 0 {
		config.CoalesceWindow = c.CoalesceWindow.Duration
	}
	if c.RotateInterval.Duration > 0 {
		config.RotateInterval = c.RotateInterval.Duration
	}
	if c.UploadMaxBytes > 0 {
		config.UploadMaxBytes = c.UploadMaxBytes
	}
	if c.LoginRatePerMinute > 0 {
		config.LoginRatePerMinute = c.LoginRatePerMinute
	}
	if len(c.StaffAccounts) > 0 {
		config.StaffAccounts = c.StaffAccounts
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
