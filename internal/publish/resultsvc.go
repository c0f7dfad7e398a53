package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResultsServiceConfig configures the HTTP results-service submitter.
// Key and Secret authenticate the submission; both are required.
type ResultsServiceConfig struct {
	Endpoint string
	Key      string
	Secret   string
}

// ResultsService posts one JSON document per submission to a remote results
// service. Responses are logged by the caller through the returned error;
// there are no retries.
type ResultsService struct {
	config ResultsServiceConfig
	client *http.Client
}

func NewResultsService(cfg ResultsServiceConfig) (*ResultsService, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("results service endpoint is required")
	}
	if cfg.Key == "" || cfg.Secret == "" {
		return nil, fmt.Errorf("results service key and secret are required")
	}
	return &ResultsService{
		config: cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type submissionBody struct {
	RunID     string               `json:"run_id"`
	Machine   string               `json:"machine_name"`
	OS        string               `json:"os"`
	Platform  string               `json:"platform"`
	BuildName string               `json:"build_name"`
	Version   string               `json:"version"`
	Branch    string               `json:"branch"`
	Revision  string               `json:"revision"`
	Suite     string               `json:"suite"`
	Results   map[string][]float64 `json:"results"`
}

func (s *ResultsService) Publish(ctx context.Context, sub Submission) error {
	results := make(map[string][]float64, len(sub.Results.Keys()))
	for _, key := range sub.Results.Keys() {
		results[key] = sub.Results.Values(key)
	}

	body := submissionBody{
		RunID:     sub.RunID.String(),
		Machine:   sub.Machine,
		OS:        sub.OS,
		Platform:  sub.Arch,
		BuildName: sub.Browser,
		Version:   sub.Version,
		Branch:    sub.Branch,
		Revision:  sub.Version,
		Suite:     sub.Benchmark.Suite,
		Results:   results,
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.Endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.config.Key, s.config.Secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post submission: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("results service responded %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
