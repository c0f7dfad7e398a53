package publish

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGConfig struct {
	ConnStr string
}

// PGPublisher writes folded measurements into a Postgres results table.
type PGPublisher struct {
	db *pgxpool.Pool
}

func NewPGPublisher(ctx context.Context, cfg PGConfig) (*PGPublisher, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping results DB: %w", err)
	}
	return &PGPublisher{db: pool}, nil
}

func (p *PGPublisher) Close() {
	p.db.Close()
}

func (p *PGPublisher) Publish(ctx context.Context, sub Submission) error {
	rows := make([][]any, 0, sub.Results.Len())
	for _, key := range sub.Results.Keys() {
		for i, value := range sub.Results.Values(key) {
			rows = append(rows, []any{
				sub.RunID,
				sub.Benchmark.Suite,
				sub.Browser,
				sub.Branch,
				sub.Version,
				key,
				i,
				value,
				sub.Machine,
				sub.OS,
				sub.Timestamp,
			})
		}
	}

	copied, err := p.db.CopyFrom(
		ctx,
		pgx.Identifier{"measurements"},
		[]string{"run_id", "suite", "browser", "branch", "version", "name", "run_index", "value", "machine", "os", "recorded_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy measurements: %w", err)
	}
	if copied != int64(len(rows)) {
		return fmt.Errorf("copied %d of %d measurements", copied, len(rows))
	}
	return nil
}
