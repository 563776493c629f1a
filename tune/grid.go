package tune

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scitune/scitune/pkg/errors"
	"github.com/scitune/scitune/pkg/log"
)

// GridSearch exhaustively evaluates the Cartesian product of a GridSpace.
// Trials are independent and run concurrently on a bounded worker pool, but
// the returned history is always in combination-index order (last declared
// parameter fastest), never in completion order.
//
// A GridSearch carries no state between Search calls; independent searches
// can share one instance or use separate ones freely.
type GridSearch struct {
	// Workers bounds the number of concurrently training models. Zero
	// means runtime.NumCPU().
	Workers int

	// EvalTimeout caps the wall-clock time of a single trial. Zero means
	// no per-trial budget. A timed-out trial is recorded as failed.
	EvalTimeout time.Duration

	// Logger receives per-trial debug records and a sweep summary. Nil
	// means the process-default logger.
	Logger log.Logger
}

// NewGridSearch creates a grid search driver with default worker settings.
func NewGridSearch() *GridSearch {
	return &GridSearch{}
}

// Search evaluates every combination in the grid exactly once and returns
// all trials, including failed ones. It does not pick a winner; use Best on
// the returned history.
//
// Evaluation failures are recorded on their trial and do not stop the sweep.
// Cancelling ctx aborts the sweep with ctx's error.
func (gs *GridSearch) Search(ctx context.Context, space GridSpace, obj Objective) ([]Trial, error) {
	if obj == nil {
		return nil, errors.NewValidationError("objective", "must not be nil", nil)
	}
	if err := space.Validate(); err != nil {
		return nil, err
	}
	size, err := space.Size()
	if err != nil {
		return nil, err
	}

	workers := gs.Workers
	if workers < 0 {
		return nil, errors.NewValidationError("workers", "must be non-negative", workers)
	}
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	logger := gs.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("tune")
	}
	logger = logger.With(log.StrategyKey, "grid", log.OperationKey, "search")
	logger.Info("starting grid sweep",
		log.TrialsTotalKey, size,
		log.WorkersKey, workers,
	)

	start := time.Now()
	trials := make([]Trial, size)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx := 0; idx < size; idx++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			params := space.assignment(idx)
			loss, evalErr := evaluate(gctx, "GridSearch", obj, params, gs.EvalTimeout)
			if evalErr != nil && gctx.Err() != nil {
				// The search itself was cancelled; abort instead of
				// recording a failed trial.
				return gctx.Err()
			}

			trials[idx] = Trial{Index: idx, Params: params, Loss: loss, Err: evalErr}

			logger.Debug("trial completed",
				log.TrialIndexKey, idx,
				log.TrialLossKey, loss,
				log.TrialFailedKey, evalErr != nil,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, t := range trials {
		if t.Failed() {
			failed++
		}
	}
	if best, err := Best(trials); err == nil {
		logger.Info("grid sweep finished",
			log.TrialsTotalKey, size,
			log.TrialFailedKey, failed,
			log.BestLossKey, best.Loss,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	} else {
		logger.Warn("grid sweep finished without a successful trial",
			log.TrialsTotalKey, size,
			log.TrialFailedKey, failed,
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}

	return trials, nil
}
