package plan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("valid plan", func(t *testing.T) {
		data := `[
  {
    "suite": "pageload",
    "url": "test.html",
    "number_of_runs": 2,
    "timeout": 5,
    "name": "page",
    "value": "time_ms",
    "enabled": true
  },
  {
    "suite": "octane",
    "url": "octane/index.html",
    "number_of_runs": 5,
    "timeout": 600,
    "name": "test_name",
    "value": "score",
    "enabled": false
  }
]`
		benchmarks, err := Parse([]byte(data))
		require.NoError(t, err)
		require.Len(t, benchmarks, 2)
		assert.Equal(t, "pageload", benchmarks[0].Suite)
		assert.Equal(t, 5*time.Second, benchmarks[0].Timeout)
		assert.True(t, benchmarks[0].Enabled)
		assert.Equal(t, "octane", benchmarks[1].Suite)
		assert.Equal(t, 10*time.Minute, benchmarks[1].Timeout)
		assert.False(t, benchmarks[1].Enabled)
	})

	t.Run("execution order preserved", func(t *testing.T) {
		data := `[
  {"suite": "c", "url": "c.html", "number_of_runs": 1, "timeout": 1, "name": "n", "value": "v", "enabled": true},
  {"suite": "a", "url": "a.html", "number_of_runs": 1, "timeout": 1, "name": "n", "value": "v", "enabled": true},
  {"suite": "b", "url": "b.html", "number_of_runs": 1, "timeout": 1, "name": "n", "value": "v", "enabled": true}
]`
		benchmarks, err := Parse([]byte(data))
		require.NoError(t, err)
		var suites []string
		for _, b := range benchmarks {
			suites = append(suites, b.Suite)
		}
		assert.Equal(t, []string{"c", "a", "b"}, suites)
	})

	t.Run("empty plan", func(t *testing.T) {
		_, err := Parse([]byte(`[]`))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no benchmarks")
	})

	t.Run("missing runs", func(t *testing.T) {
		data := `[{"suite": "s", "url": "u.html", "timeout": 1, "name": "n", "value": "v", "enabled": true}]`
		_, err := Parse([]byte(data))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "number_of_runs")
	})

	t.Run("missing value field", func(t *testing.T) {
		data := `[{"suite": "s", "url": "u.html", "number_of_runs": 1, "timeout": 1, "name": "n", "enabled": true}]`
		_, err := Parse([]byte(data))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "value field")
	})

	t.Run("default timeout applied", func(t *testing.T) {
		data := `[{"suite": "s", "url": "u.html", "number_of_runs": 1, "name": "n", "value": "v", "enabled": true}]`
		benchmarks, err := Parse([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, benchmarks[0].Timeout)
	})

	t.Run("fractional timeout", func(t *testing.T) {
		data := `[{"suite": "s", "url": "u.html", "number_of_runs": 1, "timeout": 2.5, "name": "n", "value": "v", "enabled": true}]`
		benchmarks, err := Parse([]byte(data))
		require.NoError(t, err)
		assert.Equal(t, 2500*time.Millisecond, benchmarks[0].Timeout)
	})
}

func TestRawResultsCopy(t *testing.T) {
	orig := RawResults{{"page": "a", "time_ms": 120.0}}
	cp := orig.Copy()

	orig[0]["time_ms"] = 999.0
	assert.Equal(t, 120.0, cp[0]["time_ms"])

	assert.Nil(t, RawResults(nil).Copy())
}

func TestRecordAccessors(t *testing.T) {
	b := Benchmark{Name: "page", Value: "time_ms"}

	t.Run("present fields", func(t *testing.T) {
		rec := Record{"page": "a", "time_ms": 120.0}
		key, err := rec.GroupingKey(b)
		require.NoError(t, err)
		assert.Equal(t, "a", key)

		v, err := rec.Measurement(b)
		require.NoError(t, err)
		assert.Equal(t, 120.0, v)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := Record{"other": 1.0}
		_, err := rec.GroupingKey(b)
		assert.Error(t, err)
		_, err = rec.Measurement(b)
		assert.Error(t, err)
	})

	t.Run("non-numeric value", func(t *testing.T) {
		rec := Record{"page": "a", "time_ms": "fast"}
		_, err := rec.Measurement(b)
		assert.Error(t, err)
	})
}
