package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/okian/vibefeed/internal/feedprobe"
)

const (
	defaultRounds       = 1
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 15 * time.Second
	defaultProbeTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		cities     = flag.String("cities", "", "Comma separated city slugs (default: every city from /api/cities)")
		rounds     = flag.Int("rounds", defaultRounds, "Times the whole matrix is replayed")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		limit      = flag.Int("limit", feedprobe.DefaultSectionLimit, "Expected maximum places per section")
		outputFile = flag.String("output", "", "Write per-probe results as JSON")
		logFile    = flag.String("log", "", "Also write log output to this file")
		verbose    = flag.Bool("verbose", false, "Log every probe")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		feedprobe.ShowHelp()
		return
	}

	closer, err := feedprobe.SetupLogging(*logFile, *verbose)
	if err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), defaultProbeTimeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := &feedprobe.Config{
		BaseURL:      strings.TrimRight(*baseURL, "/"),
		Cities:       splitList(*cities),
		Rounds:       *rounds,
		Workers:      *workers,
		Timeout:      *timeout,
		SectionLimit: *limit,
		OutputFile:   *outputFile,
		Verbose:      *verbose,
	}

	if _, err := feedprobe.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		stop()
		cancel()
		os.Exit(1)
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
