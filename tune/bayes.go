package tune

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/scitune/scitune/pkg/errors"
	"github.com/scitune/scitune/pkg/log"
)

// BayesSearch tunes continuous hyperparameters with Gaussian-process guided
// sequential search: a random initialization phase followed by refinement
// steps that each propose the candidate maximizing an acquisition function
// over the surrogate posterior.
//
// The history it returns always holds exactly InitPoints+NIter trials,
// failed ones included. Failed trials feed the surrogate a penalty score one
// spread below the worst successful observation, steering proposals away
// from broken regions without distorting the posterior near good ones.
type BayesSearch struct {
	// InitPoints is the number of uniformly random trials evaluated before
	// the surrogate takes over. Must be at least 1.
	InitPoints int

	// NIter is the number of surrogate-guided refinement trials. Must be
	// at least 1.
	NIter int

	// Candidates is the number of random points scored by the acquisition
	// function at each refinement step. Zero means 100.
	Candidates int

	// Acquisition ranks candidates from the surrogate posterior. Nil means
	// ExpectedImprovement.
	Acquisition AcquisitionFunc

	// Beta weights the exploration term of UpperConfidenceBound.
	Beta float64

	// Xi is the improvement margin used by ExpectedImprovement and
	// ProbabilityOfImprovement.
	Xi float64

	// Seed fixes the random source for reproducible searches. Zero means
	// seed from the clock.
	Seed int64

	// EvalTimeout caps the wall-clock time of a single trial. Zero means
	// no per-trial budget. A timed-out trial is recorded as failed.
	EvalTimeout time.Duration

	// Workers bounds concurrency during the initialization phase only;
	// refinement is inherently sequential. Zero means runtime.NumCPU().
	Workers int

	// Logger receives per-trial debug records and a search summary. Nil
	// means the process-default logger.
	Logger log.Logger
}

const defaultCandidates = 100

// NewBayesSearch creates a Bayesian search driver with expected improvement
// and the default candidate and exploration settings.
func NewBayesSearch(initPoints, nIter int) *BayesSearch {
	return &BayesSearch{
		InitPoints:  initPoints,
		NIter:       nIter,
		Candidates:  defaultCandidates,
		Acquisition: ExpectedImprovement,
		Beta:        2.0,
		Xi:          0.01,
	}
}

// Search runs the full optimization and returns the best successful trial
// along with the complete history in evaluation order.
//
// If every initialization trial fails the search aborts with
// ErrNoSuccessfulTrial; once at least one succeeds, later failures are
// recorded and the search continues. Cancelling ctx aborts with ctx's error.
func (bs *BayesSearch) Search(ctx context.Context, space Space, obj Objective) (Trial, []Trial, error) {
	if obj == nil {
		return Trial{}, nil, errors.NewValidationError("objective", "must not be nil", nil)
	}
	if err := space.Validate(); err != nil {
		return Trial{}, nil, err
	}
	if bs.InitPoints < 1 {
		return Trial{}, nil, errors.NewValidationError("init_points", "must be at least 1", bs.InitPoints)
	}
	if bs.NIter < 1 {
		return Trial{}, nil, errors.NewValidationError("n_iter", "must be at least 1", bs.NIter)
	}

	candidates := bs.Candidates
	if candidates <= 0 {
		candidates = defaultCandidates
	}
	acquire := bs.Acquisition
	if acquire == nil {
		acquire = ExpectedImprovement
	}

	seed := bs.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	logger := bs.Logger
	if logger == nil {
		logger = log.GetLoggerWithName("tune")
	}
	logger = logger.With(log.StrategyKey, "bayes", log.OperationKey, "search")
	logger.Info("starting bayesian search",
		log.TrialsTotalKey, bs.InitPoints+bs.NIter,
	)
	start := time.Now()

	// Points are drawn from the sequential random source up front so the
	// trajectory is reproducible regardless of worker scheduling.
	points := make([][]float64, bs.InitPoints, bs.InitPoints+bs.NIter)
	for i := range points {
		points[i] = space.sample(rng)
	}

	trials := make([]Trial, bs.InitPoints, bs.InitPoints+bs.NIter)
	if err := bs.evaluateInit(ctx, space, obj, points, trials, logger); err != nil {
		return Trial{}, nil, err
	}

	if _, err := Best(trials); err != nil {
		return Trial{}, nil, errors.Wrap(err, "BayesSearch: initialization phase produced no successful trial")
	}

	for step := 0; step < bs.NIter; step++ {
		if err := ctx.Err(); err != nil {
			return Trial{}, nil, err
		}

		point, err := bs.propose(space, points, trials, candidates, acquire, rng)
		if err != nil {
			return Trial{}, nil, err
		}

		idx := bs.InitPoints + step
		params := space.params(point)
		loss, evalErr := evaluate(ctx, "BayesSearch", obj, params, bs.EvalTimeout)
		if evalErr != nil && ctx.Err() != nil {
			return Trial{}, nil, ctx.Err()
		}

		points = append(points, point)
		trials = append(trials, Trial{Index: idx, Params: params, Loss: loss, Err: evalErr})

		logger.Debug("trial completed",
			log.PhaseKey, "refine",
			log.TrialIndexKey, idx,
			log.TrialLossKey, loss,
			log.TrialFailedKey, evalErr != nil,
		)
	}

	best, err := Best(trials)
	if err != nil {
		return Trial{}, nil, err
	}

	logger.Info("bayesian search finished",
		log.TrialsTotalKey, len(trials),
		log.BestLossKey, best.Loss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return best, trials, nil
}

// evaluateInit runs the initialization trials concurrently, writing each
// result into its pre-assigned history slot.
func (bs *BayesSearch) evaluateInit(ctx context.Context, space Space, obj Objective, points [][]float64, trials []Trial, logger log.Logger) error {
	workers := bs.Workers
	if workers < 0 {
		return errors.NewValidationError("workers", "must be non-negative", workers)
	}
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range points {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			params := space.params(points[i])
			loss, evalErr := evaluate(gctx, "BayesSearch", obj, params, bs.EvalTimeout)
			if evalErr != nil && gctx.Err() != nil {
				return gctx.Err()
			}

			trials[i] = Trial{Index: i, Params: params, Loss: loss, Err: evalErr}

			logger.Debug("trial completed",
				log.PhaseKey, "init",
				log.TrialIndexKey, i,
				log.TrialLossKey, loss,
				log.TrialFailedKey, evalErr != nil,
			)
			return nil
		})
	}

	return g.Wait()
}

// propose refits the surrogate on the history and returns the candidate
// point maximizing the acquisition function.
func (bs *BayesSearch) propose(space Space, points [][]float64, trials []Trial, candidates int, acquire AcquisitionFunc, rng *rand.Rand) ([]float64, error) {
	normalized := make([][]float64, len(points))
	for i, p := range points {
		normalized[i] = space.normalize(p)
	}
	scores, bestScore := surrogateScores(trials)

	gp := newGaussianProcess()
	if err := gp.fit(normalized, scores); err != nil {
		return nil, err
	}

	p := AcquisitionParams{BestScore: bestScore, Beta: bs.Beta, Xi: bs.Xi, Rand: rng}

	var best []float64
	bestAcq := math.Inf(-1)
	for c := 0; c < candidates; c++ {
		cand := space.sample(rng)
		mean, variance := gp.predict(space.normalize(cand))
		if a := acquire(mean, variance, p); best == nil || a > bestAcq {
			bestAcq = a
			best = cand
		}
	}
	return best, nil
}

// surrogateScores converts the trial history into maximization-convention
// targets for the surrogate. Successful trials contribute their negated
// loss; failed ones a penalty one observed spread below the worst success.
// It also returns the best score so far for the acquisition incumbent.
func surrogateScores(trials []Trial) (scores []float64, bestScore float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, t := range trials {
		if t.Failed() {
			continue
		}
		s := -t.Loss
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	penalty := lo - (hi - lo) - 1

	scores = make([]float64, len(trials))
	for i, t := range trials {
		if t.Failed() {
			scores[i] = penalty
		} else {
			scores[i] = -t.Loss
		}
	}
	return scores, hi
}
