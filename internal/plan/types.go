package plan

import (
	"encoding/json"
	"fmt"
	"time"
)

// Benchmark describes one benchmark suite entry of the plan. The list order
// in benchmarks.json is the execution order.
type Benchmark struct {
	Suite   string        `json:"suite"`
	URL     string        `json:"url"`
	Runs    int           `json:"number_of_runs"`
	Timeout time.Duration `json:"-"`
	Name    string        `json:"name"`
	Value   string        `json:"value"`
	Enabled bool          `json:"enabled"`
}

// benchmarkJSON mirrors Benchmark on the wire, where timeout is a number of
// seconds as in the original plan format.
type benchmarkJSON struct {
	Suite   string  `json:"suite"`
	URL     string  `json:"url"`
	Runs    int     `json:"number_of_runs"`
	Timeout float64 `json:"timeout"`
	Name    string  `json:"name"`
	Value   string  `json:"value"`
	Enabled bool    `json:"enabled"`
}

func (b *Benchmark) UnmarshalJSON(data []byte) error {
	var raw benchmarkJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Benchmark{
		Suite:   raw.Suite,
		URL:     raw.URL,
		Runs:    raw.Runs,
		Timeout: time.Duration(raw.Timeout * float64(time.Second)),
		Name:    raw.Name,
		Value:   raw.Value,
		Enabled: raw.Enabled,
	}
	return nil
}

func (b Benchmark) MarshalJSON() ([]byte, error) {
	return json.Marshal(benchmarkJSON{
		Suite:   b.Suite,
		URL:     b.URL,
		Runs:    b.Runs,
		Timeout: b.Timeout.Seconds(),
		Name:    b.Name,
		Value:   b.Value,
		Enabled: b.Enabled,
	})
}

// Record is one raw measurement reported by a benchmark page. It carries at
// least the fields named by the owning Benchmark's Name and Value keys.
type Record map[string]any

// RawResults is the ordered sequence of records from a single postback.
type RawResults []Record

// Copy returns a deep copy so the caller can hold the results past the next
// trial without aliasing the shared channel storage.
func (r RawResults) Copy() RawResults {
	if r == nil {
		return nil
	}
	out := make(RawResults, len(r))
	for i, rec := range r {
		cp := make(Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// GroupingKey returns the record's value for the benchmark's grouping field.
func (rec Record) GroupingKey(b Benchmark) (string, error) {
	v, ok := rec[b.Name]
	if !ok {
		return "", fmt.Errorf("record is missing grouping field %q", b.Name)
	}
	return fmt.Sprint(v), nil
}

// Measurement returns the record's numeric measurement for the benchmark's
// value field.
func (rec Record) Measurement(b Benchmark) (float64, error) {
	v, ok := rec[b.Value]
	if !ok {
		return 0, fmt.Errorf("record is missing value field %q", b.Value)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("value field %q is not numeric: %w", b.Value, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value field %q has non-numeric type %T", b.Value, v)
	}
}
