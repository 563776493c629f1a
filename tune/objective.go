package tune

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/scitune/scitune/core/model"
	"github.com/scitune/scitune/dataset"
	"github.com/scitune/scitune/metrics"
	"github.com/scitune/scitune/pkg/errors"
)

// Objective evaluates one hyperparameter assignment and returns its loss.
// Lower is better; this sign convention holds across the whole package (the
// Bayesian driver negates internally where it needs a quantity to maximize).
// An Objective must be safely callable concurrently and must not leak state
// between calls.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

// ModelFactory builds a fresh, unfitted estimator from a hyperparameter
// assignment. Returning an error marks the assignment as invalid for the
// model family.
type ModelFactory func(params map[string]float64) (model.Estimator, error)

// HoldoutObjective returns an Objective that trains a fresh model on the
// training set and scores mean squared error on the holdout set. Dataset
// shapes are validated once, up front.
func HoldoutObjective(factory ModelFactory, XTrain, yTrain, XTest, yTest mat.Matrix) (Objective, error) {
	if factory == nil {
		return nil, errors.NewValidationError("factory", "model factory must not be nil", nil)
	}
	if err := checkDataset("HoldoutObjective", XTrain, yTrain); err != nil {
		return nil, err
	}
	if err := checkDataset("HoldoutObjective", XTest, yTest); err != nil {
		return nil, err
	}
	_, dTrain := XTrain.Dims()
	_, dTest := XTest.Dims()
	if dTrain != dTest {
		return nil, errors.NewDimensionError("HoldoutObjective", dTrain, dTest, 1)
	}

	return func(_ context.Context, params map[string]float64) (float64, error) {
		est, err := factory(params)
		if err != nil {
			return 0, err
		}
		if err := est.Fit(XTrain, yTrain); err != nil {
			return 0, err
		}
		pred, err := est.Predict(XTest)
		if err != nil {
			return 0, err
		}
		return metrics.MSEMatrix(yTest, pred)
	}, nil
}

// CrossValObjective returns an Objective that scores a hyperparameter
// assignment by the mean MSE across k-fold cross-validation splits. The folds
// are generated once so every assignment is scored on identical splits.
func CrossValObjective(factory ModelFactory, X, y mat.Matrix, kf *dataset.KFold) (Objective, error) {
	if factory == nil {
		return nil, errors.NewValidationError("factory", "model factory must not be nil", nil)
	}
	if kf == nil {
		return nil, errors.NewValidationError("kfold", "splitter must not be nil", nil)
	}
	if err := checkDataset("CrossValObjective", X, y); err != nil {
		return nil, err
	}

	n, _ := X.Dims()
	folds, err := kf.Split(n)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, params map[string]float64) (float64, error) {
		var total float64
		for _, fold := range folds {
			if err := ctx.Err(); err != nil {
				return 0, err
			}

			est, err := factory(params)
			if err != nil {
				return 0, err
			}

			XTrain := dataset.SelectRows(X, fold.TrainIndices)
			yTrain := dataset.SelectRows(y, fold.TrainIndices)
			XTest := dataset.SelectRows(X, fold.TestIndices)
			yTest := dataset.SelectRows(y, fold.TestIndices)

			if err := est.Fit(XTrain, yTrain); err != nil {
				return 0, err
			}
			pred, err := est.Predict(XTest)
			if err != nil {
				return 0, err
			}
			mse, err := metrics.MSEMatrix(yTest, pred)
			if err != nil {
				return 0, err
			}
			total += mse
		}
		return total / float64(len(folds)), nil
	}, nil
}

func checkDataset(op string, X, y mat.Matrix) error {
	n, d := X.Dims()
	ny, cy := y.Dims()
	if n == 0 || d == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	if ny != n {
		return errors.NewDimensionError(op, n, ny, 0)
	}
	if cy != 1 {
		return errors.NewValueError(op, "y must be a column vector")
	}
	return nil
}

// evaluate runs one objective call under the per-trial budget, converting
// panics, non-finite losses, timeouts and plain errors into an
// EvaluationError. On timeout the goroutine running the objective is left to
// finish in the background; its result is discarded.
func evaluate(ctx context.Context, op string, obj Objective, params map[string]float64, timeout time.Duration) (float64, error) {
	evalCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type result struct {
		loss float64
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		var res result
		res.err = errors.SafeExecute(op, func() error {
			loss, err := obj(evalCtx, params)
			if err != nil {
				return err
			}
			if err := errors.CheckScalar(op+" loss", loss, 0); err != nil {
				return err
			}
			res.loss = loss
			return nil
		})
		ch <- res
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return 0, errors.NewEvaluationError(op, params, r.err)
		}
		return r.loss, nil
	case <-evalCtx.Done():
		return 0, errors.NewEvaluationError(op, params, evalCtx.Err())
	}
}
