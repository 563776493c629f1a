// Package linear implements linear regression models with L2 regularization.
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/scitune/scitune/core/model"
	"github.com/scitune/scitune/core/parallel"
	"github.com/scitune/scitune/metrics"
	"github.com/scitune/scitune/pkg/errors"
)

// Ridge is a linear regression model with L2 regularization. The intercept is
// not penalized: features and target are centered before solving, so Lambda
// only shrinks the slope coefficients.
type Ridge struct {
	model.BaseEstimator

	// Lambda is the L2 regularization strength. Zero gives ordinary least
	// squares.
	Lambda float64

	weights   *mat.VecDense
	intercept float64
	nFeatures int
}

// NewRidge creates a ridge regression model with the given regularization
// strength.
func NewRidge(lambda float64) *Ridge {
	return &Ridge{Lambda: lambda}
}

// Fit trains the model by solving the regularized normal equations
// (Xc^T Xc + λI) w = Xc^T yc on centered data with a Cholesky factorization.
func (r *Ridge) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	ry, cy := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("Ridge.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != rows {
		return errors.NewDimensionError("Ridge.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("Ridge.Fit", "y must be a column vector")
	}
	if r.Lambda < 0 {
		return errors.NewValidationError("lambda", "must be non-negative", r.Lambda)
	}

	r.nFeatures = cols

	// Column means for centering.
	xMeans := make([]float64, cols)
	var yMean float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			xMeans[j] += X.At(i, j)
		}
		yMean += y.At(i, 0)
	}
	for j := 0; j < cols; j++ {
		xMeans[j] /= float64(rows)
	}
	yMean /= float64(rows)

	XC := mat.NewDense(rows, cols, nil)
	yC := mat.NewVecDense(rows, nil)

	const parallelThreshold = 1000

	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				XC.Set(i, j, X.At(i, j)-xMeans[j])
			}
			yC.SetVec(i, y.At(i, 0)-yMean)
		}
	})

	// A = Xc^T Xc + λI, symmetric positive definite for λ > 0.
	var xtx mat.Dense
	xtx.Mul(XC.T(), XC)

	gram := mat.NewSymDense(cols, nil)
	for i := 0; i < cols; i++ {
		for j := i; j < cols; j++ {
			v := xtx.At(i, j)
			if i == j {
				v += r.Lambda
			}
			gram.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(gram); !ok {
		return errors.NewModelError("Ridge.Fit", "singular matrix", errors.ErrSingularMatrix)
	}

	var xty mat.VecDense
	xty.MulVec(XC.T(), yC)

	weights := mat.NewVecDense(cols, nil)
	if err := chol.SolveVecTo(weights, &xty); err != nil {
		return errors.NewModelError("Ridge.Fit", "solve failed", err)
	}

	r.weights = weights
	r.intercept = yMean
	for j := 0; j < cols; j++ {
		r.intercept -= xMeans[j] * weights.AtVec(j)
	}

	r.SetFitted()

	return nil
}

// Predict returns predictions for X as an n×1 matrix.
func (r *Ridge) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Ridge", "Predict")
	}

	rows, cols := X.Dims()
	if cols != r.nFeatures {
		return nil, errors.NewDimensionError("Ridge.Predict", r.nFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		pred := r.intercept
		for j := 0; j < cols; j++ {
			pred += X.At(i, j) * r.weights.AtVec(j)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Score returns the coefficient of determination R² of the prediction.
func (r *Ridge) Score(X, y mat.Matrix) (float64, error) {
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	yVec := mat.NewVecDense(rows, nil)
	pVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
		pVec.SetVec(i, pred.At(i, 0))
	}

	return metrics.R2Score(yVec, pVec)
}

// Weights returns the learned slope coefficients.
func (r *Ridge) Weights() []float64 {
	if r.weights == nil {
		return nil
	}

	weights := make([]float64, r.weights.Len())
	for i := 0; i < r.weights.Len(); i++ {
		weights[i] = r.weights.AtVec(i)
	}
	return weights
}

// Intercept returns the learned intercept.
func (r *Ridge) Intercept() float64 {
	return r.intercept
}
