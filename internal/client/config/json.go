package config

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/dmitrijs2005/gophsite/internal/flagx"
	"github.com/dmitrijs2005/gophsite/internal/timex"
)

// JsonConfig is the on-disk shape of the CLI configuration.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	StatePath           string         `json:"state_path"`
	Transport           string         `json:"transport"`
	GRPCAddr            string         `json:"grpc_addr"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with the values present in the JSON file. Keys
// missing from the file keep their current value. Read or decode errors
// panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigPath()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.Transport != "" {
		cfg.Transport = jc.Transport
	}
	if jc.GRPCAddr != "" {
		cfg.GRPCAddr = jc.GRPCAddr
	}
	if jc.StatePath != "" {
		cfg.StatePath = jc.StatePath
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}
