// Package feedprobe drives a running vibefeed service with a matrix of
// feed requests and checks every answer against the ranking invariants.
package feedprobe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Cities       []string      // City slugs; empty means every city the service lists
	Rounds       int           // Times the whole matrix is replayed
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	SectionLimit int           // Expected maximum places per section
	OutputFile   string        // Optional JSON report path
	Verbose      bool          // Log every probe
}

// Probe is one feed request of the matrix.
type Probe struct {
	RequestID string `json:"requestId"`
	City      string `json:"city"`
	Audience  string `json:"audience"`
	Vibe      string `json:"vibe"`
	Mobility  string `json:"mobility"`
	Budget    string `json:"budget"`
	Weather   string `json:"weather,omitempty"`
}

// Result is the outcome of one probe.
type Result struct {
	Probe      Probe         `json:"probe"`
	Status     int           `json:"status"`
	Latency    time.Duration `json:"latency"`
	Places     int           `json:"places"`
	Violations []string      `json:"violations,omitempty"`
	Err        string        `json:"error,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Planned    int
	Completed  int
	Failed     int
	Violations int
	Places     int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	MaxLatency time.Duration
}
