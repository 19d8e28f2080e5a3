package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/Sanjit42/naming-service/internal/domain"
	"github.com/Sanjit42/naming-service/internal/logger"
	"github.com/Sanjit42/naming-service/pkg/dataflow"
)

// Reindexer copies every stored intern into the search index.
type Reindexer struct {
	store     domain.InternStore
	index     domain.InternIndexer
	batchSize int
	workers   int
}

// NewReindexer sends interns to index in bulk requests of batchSize, with workers in parallel.
func NewReindexer(store domain.InternStore, index domain.InternIndexer, batchSize, workers int) *Reindexer {
	if batchSize < 1 {
		batchSize = 500
	}
	if workers < 1 {
		workers = 1
	}
	return &Reindexer{store: store, index: index, batchSize: batchSize, workers: workers}
}

// Reindex returns the number of interns indexed. A bulk request is retried
// twice before the run fails.
func (r *Reindexer) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	interns, err := r.store.FindAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load interns: %w", err)
	}

	var indexed int64
	batches := dataflow.Batch(ctx, dataflow.From(ctx, interns...), r.batchSize)
	err = dataflow.ForEach(ctx, batches, func(batch []domain.Intern) error {
		if err := r.index.Index(ctx, batch); err != nil {
			return err
		}
		atomic.AddInt64(&indexed, int64(len(batch)))
		return nil
	},
		dataflow.WithWorkers(r.workers),
		dataflow.WithRetry(2, func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond }),
	)

	n := int(atomic.LoadInt64(&indexed))
	if err != nil {
		return n, fmt.Errorf("reindex stopped after %d interns: %w", n, err)
	}
	logger.InfoLog(ctx, "reindexed %d interns in %s", n, time.Since(start))
	return n, nil
}
