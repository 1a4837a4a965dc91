package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/shack/internal/flagx"
	"github.com/dmitrijs2005/shack/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "50ms" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrSSH    string         `json:"endpoint_addr_ssh"`
	DatabaseDSN        string         `json:"database_dsn"`
	HostKeyPath        string         `json:"host_key_path"`
	TickInterval       timex.Duration `json:"tick_interval"`
	AuthRejectionDelay timex.Duration `json:"auth_rejection_delay"`
	HistoryLimit       int            `json:"history_limit"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrSSH = c.EndpointAddrSSH
	config.DatabaseDSN = c.DatabaseDSN
	config.HostKeyPath = c.HostKeyPath
	config.TickInterval = time.Duration(c.TickInterval.Duration)
	config.AuthRejectionDelay = time.Duration(c.AuthRejectionDelay.Duration)
	config.HistoryLimit = c.HistoryLimit
}
