package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const DefaultTimeout = 60 * time.Second

func LoadFromFile(path string) ([]Benchmark, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]Benchmark, error) {
	var benchmarks []Benchmark
	if err := json.Unmarshal(data, &benchmarks); err != nil {
		return nil, fmt.Errorf("parse plan JSON: %w", err)
	}
	if err := validate(benchmarks); err != nil {
		return nil, err
	}
	return benchmarks, nil
}

func validate(benchmarks []Benchmark) error {
	if len(benchmarks) == 0 {
		return fmt.Errorf("plan has no benchmarks")
	}
	for i := range benchmarks {
		b := &benchmarks[i]
		if b.Suite == "" {
			return fmt.Errorf("benchmark at index %d has no suite", i)
		}
		if b.URL == "" {
			return fmt.Errorf("benchmark %q has no url", b.Suite)
		}
		if b.Runs <= 0 {
			return fmt.Errorf("benchmark %q must have a positive number_of_runs, got %d", b.Suite, b.Runs)
		}
		if b.Name == "" {
			return fmt.Errorf("benchmark %q has no result name field", b.Suite)
		}
		if b.Value == "" {
			return fmt.Errorf("benchmark %q has no result value field", b.Suite)
		}
		if b.Timeout <= 0 {
			b.Timeout = DefaultTimeout
		}
	}
	return nil
}
