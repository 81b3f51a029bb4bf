package feedprobe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/vibefeed/internal/adapters/http/api"
	service "github.com/okian/vibefeed/internal/app"
	"github.com/okian/vibefeed/internal/domain/model"
	"github.com/okian/vibefeed/pkg/logger"
)

func TestMain(m *testing.M) {
	_ = logger.InitWithOptions(logger.WithOutput(io.Discard))
	os.Exit(m.Run())
}

// fakeService answers like a vibefeed server. When unsorted is set the
// hot-now section comes back in ascending order.
func fakeService(t *testing.T, unsorted bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"status":"ok"}`))
	})
	mux.HandleFunc("/api/cities", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"defaultCity":"athens","cities":[{"slug":"athens"},{"slug":"corfu"}]}`))
	})
	mux.HandleFunc("/api/feed", func(w http.ResponseWriter, r *http.Request) {
		hot := []model.ScoredPlace{
			{PlaceID: "a", Score: 80, LiveVibeIndex: 70, LiveVibeState: model.VibeStateLively},
			{PlaceID: "b", Score: 60, LiveVibeIndex: 0, LiveVibeState: model.VibeStateClosed},
		}
		if unsorted {
			hot[0], hot[1] = hot[1], hot[0]
		}
		feed := service.Feed{
			OK: true,
			Context: service.FeedContext{
				City:      service.FeedCity{Slug: r.URL.Query().Get("city")},
				RequestID: r.Header.Get(api.HeaderRequestID),
			},
			Sections: service.FeedSections{HotNow: hot},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(feed)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_Success(t *testing.T) {
	srv := fakeService(t, false)
	out := filepath.Join(t.TempDir(), "report", "results.json")

	stats, err := Run(context.Background(), &Config{
		BaseURL:    srv.URL,
		Rounds:     1,
		Workers:    4,
		Timeout:    5 * time.Second,
		OutputFile: out,
	})
	require.NoError(t, err)

	expected := 2 * len(preferenceSets) * len(weatherOverrides)
	assert.Equal(t, expected, stats.Planned)
	assert.Equal(t, expected, stats.Completed)
	assert.Zero(t, stats.Failed)
	assert.Zero(t, stats.Violations)
	assert.Equal(t, expected*2, stats.Places)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var results []Result
	require.NoError(t, json.Unmarshal(data, &results))
	assert.Len(t, results, expected)
}

func TestRun_ExplicitCities(t *testing.T) {
	srv := fakeService(t, false)

	stats, err := Run(context.Background(), &Config{
		BaseURL: srv.URL,
		Cities:  []string{"santorini"},
		Workers: 1,
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, len(preferenceSets)*len(weatherOverrides), stats.Completed)
}

func TestRun_Violations(t *testing.T) {
	srv := fakeService(t, true)

	stats, err := Run(context.Background(), &Config{
		BaseURL: srv.URL,
		Cities:  []string{"athens"},
		Workers: 2,
		Timeout: 5 * time.Second,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrViolations))
	assert.Equal(t, len(preferenceSets)*len(weatherOverrides), stats.Violations)
}

func TestRun_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Timeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health check")
}

func TestRun_FeedErrorsCountAsFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {})
	mux.HandleFunc("/api/feed", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"ok":false,"error":"boom"}`, http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	stats, err := Run(context.Background(), &Config{
		BaseURL: srv.URL,
		Cities:  []string{"athens"},
		Workers: 3,
		Timeout: time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, stats.Planned, stats.Failed)
	assert.Zero(t, stats.Completed)
}
