package integrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ComprehensiveAnalysisMany analyzes a batch of code units with a worker pool
// bounded by the configured concurrency limit. Results are reassembled by
// input index, so output ordering always matches input ordering regardless of
// completion order.
func (it *Integrator) ComprehensiveAnalysisMany(ctx context.Context, codes []string) []Assessment {
	results := make([]Assessment, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(it.cfg.BatchConcurrency)

	for i, code := range codes {
		g.Go(func() error {
			results[i] = it.ComprehensiveAnalysis(gctx, code)
			return nil
		})
	}

	// workers never return errors; every failure mode degrades into its
	// own assessment
	_ = g.Wait()

	if it.metrics != nil {
		it.metrics.IncrementBatch()
	}

	return results
}
