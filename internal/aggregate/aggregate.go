// Package aggregate accumulates raw benchmark measurements into per-suite
// collections. It does pure accumulation: deduplication and statistical
// reduction belong to whatever consumes the result.
package aggregate

// Result collects measurements for one benchmark suite against one browser
// target. Values are bucketed by grouping key; insertion order is preserved
// within each bucket and across first-seen keys, because run order matters
// for time-series inspection.
type Result struct {
	suite  string
	keys   []string
	values map[string][]float64
}

func New(suite string) *Result {
	return &Result{
		suite:  suite,
		values: make(map[string][]float64),
	}
}

func (r *Result) Suite() string { return r.suite }

// Fold appends value to the sequence for key.
func (r *Result) Fold(key string, value float64) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = append(r.values[key], value)
}

// Keys returns the grouping keys in first-seen order.
func (r *Result) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Values returns the measurements folded for key, in run order.
func (r *Result) Values(key string) []float64 {
	vals := r.values[key]
	out := make([]float64, len(vals))
	copy(out, vals)
	return out
}

// Len reports the total number of folded measurements.
func (r *Result) Len() int {
	n := 0
	for _, vals := range r.values {
		n += len(vals)
	}
	return n
}
