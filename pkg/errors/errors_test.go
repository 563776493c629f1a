package errors

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("Ridge", "Predict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ridge")
	assert.Contains(t, err.Error(), "not fitted")

	var nf *NotFittedError
	require.True(t, As(err, &nf))
	assert.Equal(t, "Ridge", nf.ModelName)
	assert.Equal(t, "Predict", nf.Method)
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("init_points", "must be positive", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init_points")
	assert.Contains(t, err.Error(), "must be positive")

	var ve *ValidationError
	require.True(t, As(err, &ve))
	assert.Equal(t, "init_points", ve.ParamName)
	assert.Equal(t, 0, ve.Value)
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("MSE", 10, 8, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected 10, got 8")

	var de *DimensionError
	require.True(t, As(err, &de))
	assert.Equal(t, 0, de.Axis)
}

func TestEvaluationError(t *testing.T) {
	cause := New("training diverged")
	err := NewEvaluationError("GridSearch", map[string]float64{"eta": 0.3, "nrounds": 50}, cause)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "eta: 0.3")
	assert.Contains(t, err.Error(), "nrounds: 50")
	assert.True(t, Is(err, cause))

	var ee *EvaluationError
	require.True(t, As(err, &ee))
	assert.Equal(t, "GridSearch", ee.Op)

	// The error keeps its own copy of the assignment.
	src := map[string]float64{"x": 1}
	err2 := NewEvaluationError("op", src, cause)
	src["x"] = 2
	require.True(t, As(err2, &ee))
	assert.Equal(t, 1.0, ee.Params["x"])
}

func TestCheckScalar(t *testing.T) {
	assert.NoError(t, CheckScalar("loss", 1.5, 0))

	err := CheckScalar("loss", math.NaN(), 3)
	require.Error(t, err)
	var ne *NumericalInstabilityError
	require.True(t, As(err, &ne))
	assert.Equal(t, 3, ne.Iteration)
}

func TestCheckNumericalStability(t *testing.T) {
	assert.NoError(t, CheckNumericalStability("fit", []float64{1, 2, 3}, 0))

	err := CheckNumericalStability("fit", []float64{1, math.Inf(1), 3}, 7)
	require.Error(t, err)
	var ne *NumericalInstabilityError
	require.True(t, As(err, &ne))
	assert.Equal(t, 7, ne.Iteration)
}

func TestClipValue(t *testing.T) {
	assert.Equal(t, 0.5, ClipValue(0.5, 0, 1))
	assert.Equal(t, 0.0, ClipValue(-2, 0, 1))
	assert.Equal(t, 1.0, ClipValue(3, 0, 1))
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "boom")
		panic("something broke")
	}

	err := fn()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in boom")

	var pe *PanicError
	require.True(t, As(err, &pe))
	assert.NotEmpty(t, pe.StackTrace)
}

func TestSafeExecute(t *testing.T) {
	err := SafeExecute("ok", func() error { return nil })
	assert.NoError(t, err)

	err = SafeExecute("fail", func() error { panic(42) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in fail")
}

func TestWarningHandler(t *testing.T) {
	var captured error
	SetWarningHandler(func(w error) { captured = w })
	defer SetWarningHandler(nil)

	w := NewConvergenceWarning("gaussian process", 5, "jitter exhausted")
	Warn(w)
	require.Error(t, captured)
	assert.Contains(t, captured.Error(), "gaussian process")
}
