// Package publish ships aggregated benchmark results to downstream result
// stores. Publishing is best-effort: a failing sink is logged and never
// affects the trial loop.
package publish

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/DjordjeVuckovic/webbench/internal/aggregate"
	"github.com/DjordjeVuckovic/webbench/internal/plan"
	"github.com/google/uuid"
)

// Submission is one publishable unit: the aggregate for a single benchmark
// suite against a single browser target, plus run identity metadata.
type Submission struct {
	Browser   string
	Branch    string
	Version   string
	Benchmark plan.Benchmark
	Results   *aggregate.Result
	Machine   string
	OS        string
	Arch      string
	RunID     uuid.UUID
	Timestamp time.Time
}

func NewSubmission(browser, branch, version string, b plan.Benchmark, results *aggregate.Result) Submission {
	hostname, _ := os.Hostname()
	return Submission{
		Browser:   browser,
		Branch:    branch,
		Version:   version,
		Benchmark: b,
		Results:   results,
		Machine:   hostname,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		RunID:     uuid.New(),
		Timestamp: time.Now(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, sub Submission) error
}

// Multi fans a submission out to several sinks, logging and continuing on
// per-sink failure.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, sub Submission) error {
	for _, p := range m {
		if err := p.Publish(ctx, sub); err != nil {
			slog.Error("publish results", "browser", sub.Browser, "suite", sub.Benchmark.Suite, "error", err)
		}
	}
	return nil
}
