package analyzer

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/handlens/handlens/history"
)

// HandResult pairs one hand's analysis with its per-hand error. A failed
// hand does not abort the batch.
type HandResult struct {
	HandID   string
	Analysis HandAnalysis
	Err      error
}

// maxBatchWorkers bounds the default worker count.
const maxBatchWorkers = 8

// AnalyzeBatch analyzes hands concurrently and returns results in input
// order. parallelism <= 0 picks a worker count from the machine. The only
// error returned is context cancellation; per-hand failures are carried in
// the results.
func AnalyzeBatch(ctx context.Context, hands []history.Hand, heroID string, cfg Config, parallelism int) ([]HandResult, error) {
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
		if parallelism > maxBatchWorkers {
			parallelism = maxBatchWorkers
		}
	}

	results := make([]HandResult, len(hands))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range hands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			analysis, err := Analyze(hands[i], heroID, cfg)
			results[i] = HandResult{HandID: analysis.HandID, Analysis: analysis, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
