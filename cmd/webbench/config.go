package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/webbench/internal/publish"
	"github.com/DjordjeVuckovic/webbench/pkg/stringsutil"
)

// publishConfig is read from the environment (optionally via .env):
// RESULTS_ENDPOINT/RESULTS_KEY/RESULTS_SECRET for the HTTP results
// service, ES_ADDRESSES (comma-separated) plus ES_INDEX/ES_USERNAME/
// ES_PASSWORD for Elasticsearch, PG_CONN for Postgres.
type publishConfig struct {
	Endpoint string
	Key      string
	Secret   string

	ESAddresses []string
	ESIndex     string
	ESUsername  string
	ESPassword  string

	PGConn string
}

func loadPublishConfig() publishConfig {
	return publishConfig{
		Endpoint:    os.Getenv("RESULTS_ENDPOINT"),
		Key:         os.Getenv("RESULTS_KEY"),
		Secret:      os.Getenv("RESULTS_SECRET"),
		ESAddresses: stringsutil.SplitCSV(os.Getenv("ES_ADDRESSES")),
		ESIndex:     os.Getenv("ES_INDEX"),
		ESUsername:  os.Getenv("ES_USERNAME"),
		ESPassword:  os.Getenv("ES_PASSWORD"),
		PGConn:      os.Getenv("PG_CONN"),
	}
}

// buildPublisher assembles the configured sinks into a single best-effort
// publisher. A nil publisher disables publishing entirely.
func buildPublisher(ctx context.Context) (publish.Publisher, func(), error) {
	noop := func() {}
	if !postResults {
		return nil, noop, nil
	}

	cfg := loadPublishConfig()
	var sinks publish.Multi
	var cleanups []func()

	if cfg.Endpoint != "" {
		svc, err := publish.NewResultsService(publish.ResultsServiceConfig{
			Endpoint: cfg.Endpoint,
			Key:      cfg.Key,
			Secret:   cfg.Secret,
		})
		if err != nil {
			return nil, noop, err
		}
		sinks = append(sinks, svc)
	}

	if len(cfg.ESAddresses) > 0 {
		es, err := publish.NewESPublisher(publish.ESConfig{
			Addresses: cfg.ESAddresses,
			IndexName: cfg.ESIndex,
			Username:  cfg.ESUsername,
			Password:  cfg.ESPassword,
		})
		if err != nil {
			return nil, noop, err
		}
		sinks = append(sinks, es)
	}

	if cfg.PGConn != "" {
		pg, err := publish.NewPGPublisher(ctx, publish.PGConfig{ConnStr: cfg.PGConn})
		if err != nil {
			return nil, noop, err
		}
		cleanups = append(cleanups, pg.Close)
		sinks = append(sinks, pg)
	}

	if len(sinks) == 0 {
		slog.Warn("--post-results set but no sinks configured, results will not be published")
		return nil, noop, nil
	}

	cleanup := func() {
		for _, c := range cleanups {
			c()
		}
	}
	return sinks, cleanup, nil
}
