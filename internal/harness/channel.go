// Package harness contains the run-and-collect orchestration core: the
// result channel a benchmark page posts into, the browser runner variants,
// the per-trial engine and the plan driver that ties them together.
package harness

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/webbench/internal/plan"
)

// Postback is one result delivery from a benchmark page: the raw result
// records plus the request headers that accompanied them.
type Postback struct {
	Headers http.Header
	Results plan.RawResults
}

// UserAgent returns the posting client's user-agent string.
func (p *Postback) UserAgent() string {
	return p.Headers.Get("User-Agent")
}

// ResultChannel is the process-wide inbox for benchmark postbacks. It holds
// at most one pending postback; Deliver overwrites an unconsumed value.
//
// The expected discipline is one writer (the HTTP handler) and one reader
// (the engine) per trial. The channel does not serialize overlapping trials;
// callers must not run two trials against the same channel at once, because
// postbacks correlate to trials purely by time.
type ResultChannel struct {
	mu      sync.Mutex
	pending *Postback
	ready   chan struct{}
}

func NewResultChannel() *ResultChannel {
	return &ResultChannel{ready: make(chan struct{})}
}

// Reset clears any pending postback and re-arms the wait gate. Must be
// called before every trial so a late postback from the previous trial
// cannot be misattributed.
func (c *ResultChannel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
	c.ready = make(chan struct{})
}

// Deliver parses payload as a JSON array of result records and stores it
// together with the request headers, waking any waiter. A parse failure
// stores nothing, leaving the trial to time out.
func (c *ResultChannel) Deliver(headers http.Header, payload []byte) error {
	var results plan.RawResults
	if err := json.Unmarshal(payload, &results); err != nil {
		return fmt.Errorf("parse postback payload: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &Postback{Headers: headers.Clone(), Results: results}
	select {
	case <-c.ready:
	default:
		close(c.ready)
	}
	return nil
}

// Peek returns the currently stored postback, if any.
func (c *ResultChannel) Peek() (*Postback, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.pending != nil
}

// Await blocks until a postback is delivered or timeout elapses, then
// reports what is stored. This is the engine's single suspension point.
func (c *ResultChannel) Await(timeout time.Duration) (*Postback, bool) {
	c.mu.Lock()
	ready := c.ready
	c.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ready:
	case <-timer.C:
	}
	return c.Peek()
}
