// Package config loads runtime configuration for the admin CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c / -config or $GOPHSITE_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the site server
//	-s string   path of the local state database
//	-t int      request timeout (seconds)
//	-i int      online status check interval (seconds)
//	-p string   transport, "http" (default) or "grpc"
//	-g string   staff gRPC endpoint address
//
// # JSON schema
//
// Durations are either strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "transport": "grpc",
//	  "grpc_addr": "127.0.0.1:50051",
//	  "state_path": "gophsite-admin.db",
//	  "request_timeout": "10s",
//	  "online_check_interval": "3s"
//	}
package config
