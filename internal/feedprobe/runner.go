package feedprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	service "github.com/okian/vibefeed/internal/app"
	"github.com/okian/vibefeed/pkg/logger"
)

// ErrViolations is returned when at least one feed broke an invariant.
var ErrViolations = errors.New("feed invariants violated")

const directoryPermission = 0750

// Run executes a complete probe: health check, city discovery, the probe
// matrix over a worker pool, then the report.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("feedprobe")

	log.Info(ctx, "starting vibefeed probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("rounds", config.Rounds),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout),
		logger.Bool("verbose", config.Verbose))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	cities := config.Cities
	if len(cities) == 0 {
		var err error
		if cities, err = client.CitySlugs(ctx); err != nil {
			return stats, fmt.Errorf("city discovery failed: %w", err)
		}
	}
	if len(cities) == 0 {
		return stats, errors.New("no cities to probe")
	}

	plan := BuildPlan(cities, config.Rounds)
	stats.Planned = len(plan)
	log.Info(ctx, "probe plan built", logger.Int("cities", len(cities)), logger.Int("probes", len(plan)))

	results := execute(ctx, client, config, plan, stats)

	if config.OutputFile != "" {
		if err := saveResults(config.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		} else {
			log.Info(ctx, "results saved", logger.String("file", config.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Violations > 0 {
		return stats, fmt.Errorf("%w: %d", ErrViolations, stats.Violations)
	}
	return stats, nil
}

// execute fans the plan out over config.Workers goroutines.
func execute(ctx context.Context, client *HTTPClient, config *Config, plan []Probe, stats *Stats) []Result {
	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	limit := config.SectionLimit
	if limit <= 0 {
		limit = DefaultSectionLimit
	}

	var (
		completed, failed, violations, places int64
		maxLatency                            int64
		wg                                    sync.WaitGroup
	)
	results := make([]Result, len(plan))
	jobs := make(chan int, workers*WorkerChannelMultiplier)
	log := logger.Named("feedprobe")

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				p := plan[i]
				start := time.Now()
				status, feed, err := client.Feed(ctx, p)
				res := Result{Probe: p, Status: status, Latency: time.Since(start)}

				if err != nil {
					res.Err = err.Error()
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "probe failed", logger.String("requestId", p.RequestID), logger.Error(err))
				} else {
					res.Places = countPlaces(feed)
					res.Violations = Verify(p, feed, limit)
					atomic.AddInt64(&completed, 1)
					atomic.AddInt64(&places, int64(res.Places))
					atomic.AddInt64(&violations, int64(len(res.Violations)))
					for _, v := range res.Violations {
						log.Error(ctx, "invariant violated", logger.String("requestId", p.RequestID), logger.String("violation", v))
					}
				}
				for {
					cur := atomic.LoadInt64(&maxLatency)
					if int64(res.Latency) <= cur || atomic.CompareAndSwapInt64(&maxLatency, cur, int64(res.Latency)) {
						break
					}
				}
				if config.Verbose {
					log.Info(ctx, "probe done",
						logger.String("city", p.City),
						logger.String("vibe", p.Vibe),
						logger.String("weather", p.Weather),
						logger.Int("status", status),
						logger.Int("places", res.Places),
						logger.Duration("latency", res.Latency))
				}
				results[i] = res
			}
		}()
	}

dispatch:
	for i := range plan {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Completed = int(completed)
	stats.Failed = int(failed)
	stats.Violations = int(violations)
	stats.Places = int(places)
	stats.MaxLatency = time.Duration(maxLatency)
	return results
}

func countPlaces(feed *service.Feed) int {
	if feed == nil {
		return 0
	}
	s := feed.Sections
	return len(s.Featured) + len(s.HotNow) + len(s.LaterToday) + len(s.Evening) + len(s.Rainy)
}

func saveResults(filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(filename, data, logFilePermission)
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, probesPerSecond float64
	if stats.Planned > 0 {
		successRate = float64(stats.Completed) / float64(stats.Planned) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		probesPerSecond = float64(stats.Completed+stats.Failed) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("planned", stats.Planned),
		logger.Int("completed", stats.Completed),
		logger.Int("failed", stats.Failed),
		logger.Int("violations", stats.Violations),
		logger.Int("places", stats.Places),
		logger.Duration("duration", stats.Duration),
		logger.Duration("maxLatency", stats.MaxLatency),
		logger.Float64("successRate", successRate),
		logger.Float64("probesPerSecond", probesPerSecond))
}
