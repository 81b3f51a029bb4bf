package feedprobe

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/vibefeed/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initializes the text logger on stdout, teeing into logFile
// when one is given.
func SetupLogging(logFile string, verbose bool) (io.Closer, error) {
	var (
		out    io.Writer = os.Stdout
		closer io.Closer = io.NopCloser(nil)
	)
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
		closer = file
	}

	if err := logger.InitWithOptions(logger.WithFormat(logger.FormatText), logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		_ = logger.SetLevelString("debug")
	}
	return closer, nil
}

// ShowHelp prints usage information for the probe tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Vibefeed Probe
==============

Replays a matrix of cities, preferences and weather overrides against a
running vibefeed service and checks every feed it returns.

Usage:
  go run ./cmd/feed-probe [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -cities string
        Comma separated city slugs (default: every city from /api/cities)
  -rounds int
        Times the whole matrix is replayed (default 1)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 15s)
  -limit int
        Expected maximum places per section (default 6)
  -output string
        Write per-probe results as JSON
  -log string
        Also write log output to this file
  -verbose
        Log every probe
  -help
        Show this help message

Examples:
  go run ./cmd/feed-probe -cities athens,santorini -rounds 3
  go run ./cmd/feed-probe -url http://localhost:8080 -verbose
`)
}
