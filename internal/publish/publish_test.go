package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/webbench/internal/aggregate"
	"github.com/DjordjeVuckovic/webbench/internal/plan"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission() Submission {
	results := aggregate.New("pageload")
	results.Fold("a", 120)
	results.Fold("a", 131)
	results.Fold("b", 99.5)

	return Submission{
		Browser:   "firefox",
		Branch:    "nightly",
		Version:   "102.0",
		Benchmark: plan.Benchmark{Suite: "pageload", Name: "page", Value: "time_ms"},
		Results:   results,
		Machine:   "bench host",
		OS:        "linux",
		Arch:      "amd64",
		RunID:     uuid.MustParse("c2b8e6fa-0000-4000-8000-000000000001"),
		Timestamp: time.Unix(1700000000, 0),
	}
}

func TestEncodeLineProtocol(t *testing.T) {
	out := EncodeLineProtocol(testSubmission())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "benchmarks,suite=pageload,name=a,browser=firefox,branch=nightly,browser-version=102.0")
	assert.Contains(t, lines[0], `machine=bench\ host`)
	assert.Contains(t, lines[0], "value=120i")
	assert.Contains(t, lines[1], "value=131i")
	assert.Contains(t, lines[2], "name=b")
	assert.Contains(t, lines[2], "value=99.5")

	timestamp := fmt.Sprintf("%d", time.Unix(1700000000, 0).UnixNano())
	for _, line := range lines {
		assert.True(t, strings.HasSuffix(line, timestamp), "line %q should end with the run timestamp", line)
	}
}

func TestEscapeTag(t *testing.T) {
	assert.Equal(t, `a\ b`, escapeTag("a b"))
	assert.Equal(t, `a\,b`, escapeTag("a,b"))
	assert.Equal(t, `a\=b`, escapeTag("a=b"))
}

func TestResultsService(t *testing.T) {
	t.Run("posts submission body", func(t *testing.T) {
		var got submissionBody
		var user, pass string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ = r.BasicAuth()
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		svc, err := NewResultsService(ResultsServiceConfig{Endpoint: srv.URL, Key: "k", Secret: "s"})
		require.NoError(t, err)

		require.NoError(t, svc.Publish(context.Background(), testSubmission()))
		assert.Equal(t, "k", user)
		assert.Equal(t, "s", pass)
		assert.Equal(t, "firefox", got.BuildName)
		assert.Equal(t, "102.0", got.Version)
		assert.Equal(t, "102.0", got.Revision)
		assert.Equal(t, "pageload", got.Suite)
		assert.Equal(t, []float64{120, 131}, got.Results["a"])
		assert.Equal(t, []float64{99.5}, got.Results["b"])
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "forbidden", http.StatusForbidden)
		}))
		defer srv.Close()

		svc, err := NewResultsService(ResultsServiceConfig{Endpoint: srv.URL, Key: "k", Secret: "s"})
		require.NoError(t, err)

		err = svc.Publish(context.Background(), testSubmission())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "403")
	})

	t.Run("missing credentials rejected", func(t *testing.T) {
		_, err := NewResultsService(ResultsServiceConfig{Endpoint: "http://example.com"})
		assert.Error(t, err)
	})
}

type fakePublisher struct {
	calls int
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, _ Submission) error {
	f.calls++
	return f.err
}

func TestMulti(t *testing.T) {
	failing := &fakePublisher{err: errors.New("sink down")}
	healthy := &fakePublisher{}

	m := Multi{failing, healthy}
	err := m.Publish(context.Background(), testSubmission())

	// Best-effort: per-sink failures are swallowed and every sink is tried.
	assert.NoError(t, err)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, healthy.calls)
}
