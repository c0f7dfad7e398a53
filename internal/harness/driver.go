package harness

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DjordjeVuckovic/webbench/internal/aggregate"
	"github.com/DjordjeVuckovic/webbench/internal/plan"
	"github.com/DjordjeVuckovic/webbench/internal/publish"
	"github.com/DjordjeVuckovic/webbench/internal/target"
)

// ErrTrialsFailed reports that at least one trial across the plan produced
// no results. Partial aggregates for succeeding trials are still published.
var ErrTrialsFailed = errors.New("one or more trials produced no results")

// RunnerFactory builds the runner for one trial of a target against a
// benchmark URL.
type RunnerFactory func(tgt target.Target, url string) (Runner, error)

// Driver walks the benchmark plan: for each enabled benchmark and each
// browser target it performs the configured number of trials through the
// engine, folds records into a per-(suite, target) aggregate and hands the
// aggregate to the publisher.
type Driver struct {
	channel   *ResultChannel
	targets   []target.Target
	newRunner RunnerFactory
	publisher publish.Publisher // nil disables publishing
	baseURL   string
}

func NewDriver(channel *ResultChannel, targets []target.Target, newRunner RunnerFactory, publisher publish.Publisher, baseURL string) *Driver {
	return &Driver{
		channel:   channel,
		targets:   targets,
		newRunner: newRunner,
		publisher: publisher,
		baseURL:   baseURL,
	}
}

// Run executes the whole plan strictly sequentially: trial i+1 of any pair
// never starts before trial i's runner has been stopped and waited on,
// because the channel and the serving port are shared across trials.
//
// Per-trial failures (timeouts, malformed postbacks, runner construction)
// are logged and recorded, not propagated; Run returns ErrTrialsFailed at
// the end if any occurred.
func (d *Driver) Run(ctx context.Context, benchmarks []plan.Benchmark) error {
	failed := false

	for _, b := range benchmarks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !b.Enabled {
			slog.Debug("skipping disabled benchmark", "suite", b.Suite)
			continue
		}
		slog.Info("starting benchmark", "suite", b.Suite)
		url := d.baseURL + b.URL

		for _, tgt := range d.targets {
			if !d.runPair(ctx, b, tgt, url) {
				failed = true
			}
		}
	}

	if failed {
		return ErrTrialsFailed
	}
	return nil
}

// runPair performs all trials of one benchmark against one target and
// publishes the resulting aggregate. It reports false when any trial
// failed to produce results.
func (d *Driver) runPair(ctx context.Context, b plan.Benchmark, tgt target.Target, url string) bool {
	ok := true
	results := aggregate.New(b.Suite)
	var version string

	for i := 0; i < b.Runs; i++ {
		slog.Debug("trial", "suite", b.Suite, "target", tgt.Name, "run", i)

		runner, err := d.newRunner(tgt, url)
		if err != nil {
			slog.Error("construct runner", "target", tgt.Name, "error", err)
			ok = false
			continue
		}

		outcome, err := RunTrial(d.channel, runner, b.Timeout)
		if err != nil {
			slog.Error("trial failed", "suite", b.Suite, "target", tgt.Name, "run", i, "error", err)
			ok = false
			continue
		}
		if outcome.Absent() {
			slog.Error("no results found", "suite", b.Suite, "target", tgt.Name, "run", i)
			ok = false
			continue
		}
		if outcome.Version != "" {
			version = outcome.Version
		}

		for _, rec := range outcome.Results {
			key, err := rec.GroupingKey(b)
			if err != nil {
				slog.Warn("skipping result record", "suite", b.Suite, "error", err)
				ok = false
				continue
			}
			value, err := rec.Measurement(b)
			if err != nil {
				slog.Warn("skipping result record", "suite", b.Suite, "error", err)
				ok = false
				continue
			}
			results.Fold(key, value)
		}
	}

	if d.publisher != nil {
		sub := publish.NewSubmission(tgt.Name, tgt.Branch, tgt.ApplyVersionPolicy(version), b, results)
		if err := d.publisher.Publish(ctx, sub); err != nil {
			// Best-effort: publishing never affects the run's success flag.
			slog.Error("publish results", "suite", b.Suite, "target", tgt.Name, "error", err)
		}
	}

	return ok
}
