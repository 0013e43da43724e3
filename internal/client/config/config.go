package config

import "time"

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// Config holds runtime settings for the admin CLI.
//
// Fields:
//   - ServerURL: base URL of the site server API.
//   - StatePath: SQLite file keeping the staff token between runs.
//   - RequestTimeout: per-request HTTP timeout.
//   - OnlineCheckInterval: how often the client checks the server.
//   - Transport: "http" or "grpc".
//   - GRPCAddr: host:port of the staff gRPC endpoint.
type Config struct {
	ServerURL           string
	Transport           string
	GRPCAddr            string
	StatePath           string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Transport = TransportHTTP
	c.GRPCAddr = "127.0.0.1:50051"
	c.StatePath = "gophsite-admin.db"
	c.RequestTimeout = 10 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
}

// LoadConfig applies defaults, then the JSON file and finally flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
