package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/shack/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   SSH bind address (e.g., ":2222")
//	-d string   SQLite DSN
//	-k string   host key path
//	-t int      synchronization tick interval, milliseconds
//	-l int      history limit, messages
//	-r int      failed login delay, seconds
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-t", "-l", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrSSH, "a", config.EndpointAddrSSH, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.HostKeyPath, "k", config.HostKeyPath, "SSH host key path")

	tickInterval := fs.Int("t", int(config.TickInterval.Milliseconds()), "tick_interval (in milliseconds)")
	authRejectionDelay := fs.Int("r", int(config.AuthRejectionDelay.Seconds()), "auth_rejection_delay (in seconds)")

	fs.IntVar(&config.HistoryLimit, "l", config.HistoryLimit, "history limit (messages)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TickInterval = time.Duration(*tickInterval) * time.Millisecond
	config.AuthRejectionDelay = time.Duration(*authRejectionDelay) * time.Second
}
