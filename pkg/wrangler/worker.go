// pkg/wrangler/worker.go
package wrangler

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mhamadwd/Data-Wrangler/pkg/cleaner"
	"github.com/mhamadwd/Data-Wrangler/pkg/model"
)

// cleanJob is one table handed to a worker
type cleanJob struct {
	index int
	name  string
	table *model.Table
}

// cleanOutcome is what a worker produced for one job
type cleanOutcome struct {
	name   string
	result *cleaner.Result
	err    error
}

// cleanAll cleans every table of the collection. With one worker the
// tables are cleaned one at a time in input order; more workers opt in to
// a bounded pool. Outcomes are indexed by input position so the caller can
// consume them in input order. A done ctx stops feeding new jobs.
func (w *Wrangler) cleanAll(ctx context.Context, inputs *model.Collection) ([]cleanOutcome, error) {
	names := inputs.Names()
	outcomes := make([]cleanOutcome, len(names))
	if len(names) == 0 {
		return outcomes, ctx.Err()
	}

	workers := w.workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(names) {
		workers = len(names)
	}
	if workers == 1 {
		for i, name := range names {
			if err := ctx.Err(); err != nil {
				return outcomes, err
			}
			table, _ := inputs.Get(name)
			cr, err := w.cleaner.Clean(name, table)
			outcomes[i] = cleanOutcome{name: name, result: cr, err: err}
		}
		return outcomes, ctx.Err()
	}

	jobs := make(chan cleanJob)
	// Clean failures are per table and never cancel the group
	var g errgroup.Group
	for id := 0; id < workers; id++ {
		id := id
		g.Go(func() error {
			log := w.logger.With(zap.Int("workerID", id))
			for job := range jobs {
				log.Debug("Cleaning table", zap.String("table", job.name))
				cr, err := w.cleaner.Clean(job.name, job.table)
				outcomes[job.index] = cleanOutcome{name: job.name, result: cr, err: err}
			}
			return nil
		})
	}

feed:
	for i, name := range names {
		table, _ := inputs.Get(name)
		select {
		case jobs <- cleanJob{index: i, name: name, table: table}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	_ = g.Wait()

	return outcomes, ctx.Err()
}
