package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_ssh":    "www.example:2222",
		"database_dsn":         "file:chat.db",
		"host_key_path":        "/etc/shack/host_key",
		"tick_interval":        "100ms",
		"auth_rejection_delay": "5s",
		"history_limit":        500,
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:2222", cfg.EndpointAddrSSH)
		assert.Equal(t, "file:chat.db", cfg.DatabaseDSN)
		assert.Equal(t, "/etc/shack/host_key", cfg.HostKeyPath)
		assert.Equal(t, 100*time.Millisecond, cfg.TickInterval)
		assert.Equal(t, 5*time.Second, cfg.AuthRejectionDelay)
		assert.Equal(t, 500, cfg.HistoryLimit)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrSSH:    "defaults:1234",
			DatabaseDSN:        "file:chat.db",
			HostKeyPath:        "key",
			TickInterval:       20 * time.Millisecond,
			AuthRejectionDelay: 2 * time.Second,
			HistoryLimit:       100,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrSSH)
		assert.Equal(t, "file:chat.db", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.HostKeyPath)
		assert.Equal(t, 20*time.Millisecond, cfg.TickInterval)
		assert.Equal(t, 2*time.Second, cfg.AuthRejectionDelay)
		assert.Equal(t, 100, cfg.HistoryLimit)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
