package publish

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

type ESConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
}

// ESPublisher indexes one document per folded measurement, so downstream
// dashboards can slice by suite, browser and grouping key.
type ESPublisher struct {
	client    *elasticsearch.TypedClient
	indexName string
}

type measurementDoc struct {
	RunID     string    `json:"run_id"`
	Suite     string    `json:"suite"`
	Browser   string    `json:"browser"`
	Branch    string    `json:"branch"`
	Version   string    `json:"version,omitempty"`
	Name      string    `json:"name"`
	RunIndex  int       `json:"run_index"`
	Value     float64   `json:"value"`
	Machine   string    `json:"machine"`
	OS        string    `json:"os"`
	Timestamp time.Time `json:"timestamp"`
}

func NewESPublisher(cfg ESConfig) (*ESPublisher, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewTypedClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create Elasticsearch client: %w", err)
	}

	indexName := cfg.IndexName
	if indexName == "" {
		indexName = "webbench"
	}

	return &ESPublisher{client: client, indexName: indexName}, nil
}

func (p *ESPublisher) Publish(ctx context.Context, sub Submission) error {
	indexed := 0
	for _, key := range sub.Results.Keys() {
		for i, value := range sub.Results.Values(key) {
			doc := measurementDoc{
				RunID:     sub.RunID.String(),
				Suite:     sub.Benchmark.Suite,
				Browser:   sub.Browser,
				Branch:    sub.Branch,
				Version:   sub.Version,
				Name:      key,
				RunIndex:  i,
				Value:     value,
				Machine:   sub.Machine,
				OS:        sub.OS,
				Timestamp: sub.Timestamp,
			}
			docID := fmt.Sprintf("%s-%s-%s-%d", sub.RunID, sub.Benchmark.Suite, key, i)

			if _, err := p.client.Index(p.indexName).Id(docID).Document(doc).Do(ctx); err != nil {
				return fmt.Errorf("index measurement %s: %w", docID, err)
			}
			indexed++
		}
	}

	slog.Debug("measurements indexed", "index", p.indexName, "count", indexed, "suite", sub.Benchmark.Suite)
	return nil
}
