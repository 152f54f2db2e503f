package lookup

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/sells-group/hotelinfo/internal/model"
)

// BatchConfig tunes the batch runner.
type BatchConfig struct {
	// MaxConcurrency caps lookups in flight at once.
	MaxConcurrency int
	// MaxProviderConcurrency caps lookups in the search stage at once,
	// keeping the search providers below their own rate limits.
	MaxProviderConcurrency int
	// RequestsPerMinute paces uncached lookups across the whole process.
	RequestsPerMinute int
}

// DefaultBatchConfig returns production batch defaults.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		MaxConcurrency:         25,
		MaxProviderConcurrency: 15,
		RequestsPerMinute:      60,
	}
}

// Batch runs many lookups concurrently while keeping output aligned with
// input order.
type Batch struct {
	orch *Orchestrator
	cfg  BatchConfig
}

// NewBatch wires the shared limiter and provider semaphore into the
// orchestrator and returns the batch runner.
func NewBatch(orch *Orchestrator, cfg BatchConfig) *Batch {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 25
	}
	if cfg.MaxProviderConcurrency <= 0 {
		cfg.MaxProviderConcurrency = cfg.MaxConcurrency
	}
	if cfg.RequestsPerMinute > 0 {
		orch.SetLimiter(rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute))
	}
	orch.SetSearchSemaphore(semaphore.NewWeighted(int64(cfg.MaxProviderConcurrency)))
	return &Batch{orch: orch, cfg: cfg}
}

// Run resolves every query and returns one record per query in the same
// order. A query that fails validation or whose lookup errors yields an
// error-status record in its slot; Run itself only fails when the context
// is cancelled.
func (b *Batch) Run(ctx context.Context, queries []model.HotelQuery) ([]*model.HotelRecord, error) {
	return b.RunWithConcurrency(ctx, queries, b.cfg.MaxConcurrency)
}

// RunWithConcurrency is Run with a per-call concurrency cap. Values outside
// (0, MaxConcurrency] fall back to the configured cap.
func (b *Batch) RunWithConcurrency(ctx context.Context, queries []model.HotelQuery, maxConcurrency int) ([]*model.HotelRecord, error) {
	if maxConcurrency <= 0 || maxConcurrency > b.cfg.MaxConcurrency {
		maxConcurrency = b.cfg.MaxConcurrency
	}

	results := make([]*model.HotelRecord, len(queries))
	started := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, q := range queries {
		g.Go(func() error {
			rec, err := b.orch.Lookup(gctx, q, false)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				rec = &model.HotelRecord{
					SearchName:    q.Name,
					SearchAddress: q.Address,
					Status:        model.StatusError,
					LastChecked:   time.Now().UTC(),
				}
				rec.AddError(err.Error())
			}
			results[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("batch complete",
		zap.Int("queries", len(queries)),
		zap.Duration("elapsed", time.Since(started)))
	return results, nil
}
