// Package config handles configuration for the server,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the chat server.
//
// Fields:
//   - EndpointAddrSSH: bind address for the public SSH endpoint.
//   - DatabaseDSN: SQLite DSN for the message log and credential store.
//   - HostKeyPath: where the SSH host key lives; generated on first start.
//   - TickInterval: period of the synchronization loop.
//   - HistoryLimit: how many recent messages a view is built from.
//   - AuthRejectionDelay: pause before answering a failed login attempt.
type Config struct {
	EndpointAddrSSH    string
	DatabaseDSN        string
	HostKeyPath        string
	TickInterval       time.Duration
	AuthRejectionDelay time.Duration
	HistoryLimit       int
}

// LoadDefaults populates Config with sensible development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrSSH = ":2222"
	c.DatabaseDSN = "file:shack.db"
	c.HostKeyPath = "shack_key"
	c.TickInterval = 50 * time.Millisecond
	c.AuthRejectionDelay = 3 * time.Second
	c.HistoryLimit = 1000
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
