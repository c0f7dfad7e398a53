package harness

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/webbench/internal/plan"
)

// Outcome is the result of one trial. Results is nil when the trial timed
// out or the postback was unusable; Version is empty whenever Results is
// nil, and may also be empty with Results present when the user-agent
// carried no recognizable browser token.
type Outcome struct {
	Version string
	Results plan.RawResults
}

// Absent reports whether the trial produced no results.
func (o Outcome) Absent() bool { return o.Results == nil }

// RunTrial drives one benchmark trial: reset the channel, start the runner,
// wait (bounded) for the page to post results, then stop and reap the
// runner regardless of outcome.
//
// A timeout is an expected outcome, returned as an absent Outcome with a
// nil error; only a runner that fails to start is an error.
func RunTrial(channel *ResultChannel, runner Runner, timeout time.Duration) (Outcome, error) {
	channel.Reset()

	if err := runner.Start(); err != nil {
		return Outcome{}, fmt.Errorf("start runner: %w", err)
	}

	postback, ok := channel.Await(timeout)
	if !ok {
		slog.Error("timed out waiting for results", "timeout", timeout)
	}

	// The browser must never be left running, timeout or not.
	if err := runner.Stop(); err != nil {
		slog.Warn("stop runner", "error", err)
	}
	if err := runner.Wait(); err != nil {
		slog.Warn("wait for runner", "error", err)
	}

	if !ok {
		return Outcome{}, nil
	}

	version, found := ExtractVersion(postback.UserAgent())
	if !found {
		slog.Warn("no browser version in user-agent", "user_agent", postback.UserAgent())
	}

	// Deep copy so the channel can be reused by the next trial without
	// aliasing the returned records.
	return Outcome{Version: version, Results: postback.Results.Copy()}, nil
}
