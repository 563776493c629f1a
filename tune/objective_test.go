package tune

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/scitune/scitune/core/model"
	"github.com/scitune/scitune/dataset"
	"github.com/scitune/scitune/linear"
	"github.com/scitune/scitune/pkg/errors"
)

func ridgeFactory(params map[string]float64) (model.Estimator, error) {
	return linear.NewRidge(params["lambda"]), nil
}

func lineData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		x := float64(i)
		X.Set(i, 0, x)
		y.Set(i, 0, 2*x+1)
	}
	return X, y
}

func TestHoldoutObjective(t *testing.T) {
	XTrain, yTrain := lineData(8)
	XTest, yTest := lineData(4)

	obj, err := HoldoutObjective(ridgeFactory, XTrain, yTrain, XTest, yTest)
	require.NoError(t, err)

	loss, err := obj(context.Background(), map[string]float64{"lambda": 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, loss, 1e-10, "OLS on noise-free line is exact")
}

func TestHoldoutObjectiveValidation(t *testing.T) {
	X, y := lineData(8)

	_, err := HoldoutObjective(nil, X, y, X, y)
	assert.Error(t, err, "nil factory")

	XMismatch := mat.NewDense(8, 2, nil)
	_, err = HoldoutObjective(ridgeFactory, X, y, XMismatch, y)
	assert.Error(t, err, "feature count mismatch between train and test")

	yWide := mat.NewDense(8, 2, nil)
	_, err = HoldoutObjective(ridgeFactory, X, yWide, X, yWide)
	assert.Error(t, err, "y must be a column vector")
}

func TestCrossValObjective(t *testing.T) {
	X, y := lineData(20)
	kf := dataset.NewKFold(5, true, 42)

	obj, err := CrossValObjective(ridgeFactory, X, y, kf)
	require.NoError(t, err)

	ctx := context.Background()
	loss, err := obj(ctx, map[string]float64{"lambda": 0})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, loss, 1e-8)

	// Identical folds must produce identical scores on repeat calls.
	again, err := obj(ctx, map[string]float64{"lambda": 0})
	require.NoError(t, err)
	assert.Equal(t, loss, again)
}

func TestCrossValObjectiveHonorsCancellation(t *testing.T) {
	X, y := lineData(20)
	kf := dataset.NewKFold(5, false, 0)

	obj, err := CrossValObjective(ridgeFactory, X, y, kf)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = obj(ctx, map[string]float64{"lambda": 0})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateWrapsFailures(t *testing.T) {
	ctx := context.Background()
	params := map[string]float64{"eta": 0.3}

	t.Run("plain error", func(t *testing.T) {
		obj := Objective(func(context.Context, map[string]float64) (float64, error) {
			return 0, errors.New("boom")
		})
		_, err := evaluate(ctx, "test", obj, params, 0)
		require.Error(t, err)
		var evalErr *errors.EvaluationError
		assert.True(t, errors.As(err, &evalErr))
	})

	t.Run("panic", func(t *testing.T) {
		obj := Objective(func(context.Context, map[string]float64) (float64, error) {
			panic("model exploded")
		})
		_, err := evaluate(ctx, "test", obj, params, 0)
		require.Error(t, err)
		var evalErr *errors.EvaluationError
		assert.True(t, errors.As(err, &evalErr))
	})

	t.Run("non-finite loss", func(t *testing.T) {
		obj := Objective(func(context.Context, map[string]float64) (float64, error) {
			return math.Inf(1), nil
		})
		_, err := evaluate(ctx, "test", obj, params, 0)
		assert.Error(t, err)
	})

	t.Run("timeout", func(t *testing.T) {
		obj := Objective(func(ctx context.Context, _ map[string]float64) (float64, error) {
			select {
			case <-time.After(5 * time.Second):
				return 1, nil
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		})
		start := time.Now()
		_, err := evaluate(ctx, "test", obj, params, 20*time.Millisecond)
		require.Error(t, err)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("success", func(t *testing.T) {
		obj := Objective(func(context.Context, map[string]float64) (float64, error) {
			return 0.25, nil
		})
		loss, err := evaluate(ctx, "test", obj, params, 0)
		require.NoError(t, err)
		assert.Equal(t, 0.25, loss)
	})
}
