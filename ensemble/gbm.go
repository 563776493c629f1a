// Package ensemble implements gradient-boosted tree models for regression.
package ensemble

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/scitune/scitune/core/model"
	"github.com/scitune/scitune/core/parallel"
	"github.com/scitune/scitune/metrics"
	"github.com/scitune/scitune/pkg/errors"
)

// stump is a depth-1 regression tree. Leaf values are stored with the
// learning rate already applied.
type stump struct {
	feature   int
	threshold float64
	left      float64
	right     float64
}

func (s stump) predict(x []float64) float64 {
	if x[s.feature] <= s.threshold {
		return s.left
	}
	return s.right
}

// splitCandidate is the best split found for one feature in one round.
type splitCandidate struct {
	gain      float64
	threshold float64
	left      float64
	right     float64
	valid     bool
}

// GBMRegressor is a gradient-boosted ensemble of regression stumps trained
// with squared-error loss. Each round fits one stump to the current
// residuals; leaf values are L2-regularized by Lambda and shrunk by
// LearningRate.
type GBMRegressor struct {
	model.BaseEstimator

	// LearningRate (eta) shrinks each stump's contribution. Must be in (0, 1].
	LearningRate float64

	// NRounds is the number of boosting rounds. Must be at least 1.
	NRounds int

	// Lambda is the L2 regularization applied to leaf values. Must be
	// non-negative.
	Lambda float64

	// MinSamplesLeaf is the minimum number of samples per leaf. Zero means 1.
	MinSamplesLeaf int

	baseScore float64
	stumps    []stump
	nFeatures int
}

// NewGBMRegressor creates a gradient-boosted stump regressor.
func NewGBMRegressor(learningRate float64, nRounds int, lambda float64) *GBMRegressor {
	return &GBMRegressor{
		LearningRate: learningRate,
		NRounds:      nRounds,
		Lambda:       lambda,
	}
}

func (g *GBMRegressor) validate() error {
	if g.LearningRate <= 0 || g.LearningRate > 1 {
		return errors.NewValidationError("learning_rate", "must be in (0, 1]", g.LearningRate)
	}
	if g.NRounds < 1 {
		return errors.NewValidationError("n_rounds", "must be at least 1", g.NRounds)
	}
	if g.Lambda < 0 {
		return errors.NewValidationError("lambda", "must be non-negative", g.Lambda)
	}
	if g.MinSamplesLeaf < 0 {
		return errors.NewValidationError("min_samples_leaf", "must be non-negative", g.MinSamplesLeaf)
	}
	return nil
}

// Fit trains the ensemble on X (n×d) and y (n×1).
func (g *GBMRegressor) Fit(X, y mat.Matrix) error {
	if err := g.validate(); err != nil {
		return err
	}

	rows, cols := X.Dims()
	ry, cy := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("GBMRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if ry != rows {
		return errors.NewDimensionError("GBMRegressor.Fit", rows, ry, 0)
	}
	if cy != 1 {
		return errors.NewValueError("GBMRegressor.Fit", "y must be a column vector")
	}

	minLeaf := g.MinSamplesLeaf
	if minLeaf == 0 {
		minLeaf = 1
	}
	if 2*minLeaf > rows {
		return errors.NewValidationError("min_samples_leaf",
			"leaves cannot hold more samples than the dataset", minLeaf)
	}

	g.nFeatures = cols

	// Dense copies so the boosting loop avoids the mat.Matrix interface
	// in its inner loops.
	features := make([][]float64, cols)
	for j := 0; j < cols; j++ {
		col := make([]float64, rows)
		for i := 0; i < rows; i++ {
			col[i] = X.At(i, j)
		}
		features[j] = col
	}

	// Presorted sample order per feature, computed once.
	order := make([][]int, cols)
	parallel.ParallelizeWithThreshold(cols, 4, func(start, end int) {
		for j := start; j < end; j++ {
			idx := make([]int, rows)
			for i := range idx {
				idx[i] = i
			}
			col := features[j]
			sort.Slice(idx, func(a, b int) bool { return col[idx[a]] < col[idx[b]] })
			order[j] = idx
		}
	})

	g.baseScore = 0
	for i := 0; i < rows; i++ {
		g.baseScore += y.At(i, 0)
	}
	g.baseScore /= float64(rows)

	residual := make([]float64, rows)
	for i := 0; i < rows; i++ {
		residual[i] = y.At(i, 0) - g.baseScore
	}

	g.stumps = make([]stump, 0, g.NRounds)
	candidates := make([]splitCandidate, cols)

	for round := 0; round < g.NRounds; round++ {
		var total float64
		for _, r := range residual {
			total += r
		}

		parallel.ParallelizeWithThreshold(cols, 4, func(start, end int) {
			for j := start; j < end; j++ {
				candidates[j] = g.bestSplit(features[j], order[j], residual, total, minLeaf)
			}
		})

		best := splitCandidate{gain: math.Inf(-1)}
		bestFeature := -1
		for j, cand := range candidates {
			if cand.valid && cand.gain > best.gain {
				best = cand
				bestFeature = j
			}
		}

		if bestFeature < 0 {
			// No informative split remains; further rounds would be no-ops.
			errors.Warn(errors.NewConvergenceWarning("GBMRegressor", round,
				"no informative split found, stopping early"))
			break
		}

		if err := errors.CheckNumericalStability("GBMRegressor.Fit",
			[]float64{best.left, best.right}, round); err != nil {
			return err
		}

		s := stump{
			feature:   bestFeature,
			threshold: best.threshold,
			left:      g.LearningRate * best.left,
			right:     g.LearningRate * best.right,
		}
		g.stumps = append(g.stumps, s)

		col := features[bestFeature]
		for i := 0; i < rows; i++ {
			if col[i] <= s.threshold {
				residual[i] -= s.left
			} else {
				residual[i] -= s.right
			}
		}
	}

	g.SetFitted()

	return nil
}

// bestSplit scans one presorted feature for the split maximizing the
// regularized gain leftSum²/(nL+λ) + rightSum²/(nR+λ).
func (g *GBMRegressor) bestSplit(col []float64, order []int, residual []float64, total float64, minLeaf int) splitCandidate {
	n := len(order)
	best := splitCandidate{gain: math.Inf(-1)}

	var leftSum float64
	for k := 1; k < n; k++ {
		leftSum += residual[order[k-1]]

		// Can't split between identical values.
		if col[order[k-1]] == col[order[k]] {
			continue
		}
		if k < minLeaf || n-k < minLeaf {
			continue
		}

		rightSum := total - leftSum
		nL := float64(k)
		nR := float64(n - k)

		gain := leftSum*leftSum/(nL+g.Lambda) + rightSum*rightSum/(nR+g.Lambda)
		if gain > best.gain {
			best = splitCandidate{
				gain:      gain,
				threshold: (col[order[k-1]] + col[order[k]]) / 2,
				left:      leftSum / (nL + g.Lambda),
				right:     rightSum / (nR + g.Lambda),
				valid:     true,
			}
		}
	}

	return best
}

// Predict returns predictions for X as an n×1 matrix.
func (g *GBMRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !g.IsFitted() {
		return nil, errors.NewNotFittedError("GBMRegressor", "Predict")
	}

	rows, cols := X.Dims()
	if cols != g.nFeatures {
		return nil, errors.NewDimensionError("GBMRegressor.Predict", g.nFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		pred := g.baseScore
		for _, s := range g.stumps {
			pred += s.predict(row)
		}
		predictions.Set(i, 0, pred)
	}

	return predictions, nil
}

// Score returns the coefficient of determination R² of the prediction.
func (g *GBMRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := g.Predict(X)
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

// NTrees returns the number of stumps actually fitted. It can be lower than
// NRounds when boosting stopped early.
func (g *GBMRegressor) NTrees() int {
	return len(g.stumps)
}
