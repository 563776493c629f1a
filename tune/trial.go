package tune

import (
	"github.com/scitune/scitune/pkg/errors"
)

// Trial records one objective evaluation: a complete hyperparameter
// assignment and the loss it achieved, or the error that failed it. Trials
// are immutable once recorded.
type Trial struct {
	// Index is the evaluation-order position of the trial. For grid search
	// it is the combination index; for Bayesian search it is temporal.
	Index int

	// Params is the complete hyperparameter assignment that was evaluated.
	Params map[string]float64

	// Loss is the objective value (lower is better). Only meaningful when
	// Err is nil.
	Loss float64

	// Err is non-nil when the evaluation failed. A failed trial never
	// masquerades as a zero-loss success.
	Err error
}

// Failed reports whether the trial's evaluation failed.
func (t Trial) Failed() bool {
	return t.Err != nil
}

// Best returns the successful trial with the lowest loss. It returns
// ErrNoSuccessfulTrial when every trial failed (or none were run).
func Best(trials []Trial) (Trial, error) {
	best := Trial{}
	found := false
	for _, t := range trials {
		if t.Failed() {
			continue
		}
		if !found || t.Loss < best.Loss {
			best = t
			found = true
		}
	}
	if !found {
		return Trial{}, errors.Wrap(errors.ErrNoSuccessfulTrial, "Best")
	}
	return best, nil
}
