package tune

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/scitune/scitune/pkg/errors"
)

// gaussianProcess is the exact GP regression surrogate used by BayesSearch.
// It works on points normalized to the unit cube and on standardized targets,
// so one kernel length scale serves every search space.
type gaussianProcess struct {
	lengthScale float64
	noise       float64

	x     [][]float64
	chol  mat.Cholesky
	alpha *mat.VecDense

	yMean  float64
	yStd   float64
	fitted bool
}

const (
	defaultLengthScale = 0.2
	defaultGPNoise     = 1e-6
)

func newGaussianProcess() *gaussianProcess {
	return &gaussianProcess{lengthScale: defaultLengthScale, noise: defaultGPNoise}
}

// rbf is the squared-exponential kernel on pre-normalized coordinates.
func (gp *gaussianProcess) rbf(a, b []float64) float64 {
	var d2 float64
	for i := range a {
		diff := a[i] - b[i]
		d2 += diff * diff
	}
	return math.Exp(-d2 / (2 * gp.lengthScale * gp.lengthScale))
}

// fit conditions the surrogate on the observed points and scores. Scores
// follow the maximization convention (higher is better); callers hand in
// negated losses. The targets are standardized internally, with a degenerate
// spread clamped so constant observations stay solvable.
func (gp *gaussianProcess) fit(x [][]float64, y []float64) error {
	n := len(x)
	if n == 0 || len(y) != n {
		return errors.NewDimensionError("gaussianProcess.fit", n, len(y), 0)
	}

	var sum float64
	for _, v := range y {
		sum += v
	}
	gp.yMean = sum / float64(n)

	var ss float64
	for _, v := range y {
		d := v - gp.yMean
		ss += d * d
	}
	gp.yStd = math.Sqrt(ss / float64(n))
	if gp.yStd < 1e-12 {
		gp.yStd = 1
	}

	z := mat.NewVecDense(n, nil)
	for i, v := range y {
		z.SetVec(i, (v-gp.yMean)/gp.yStd)
	}

	kernel := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			kernel.SetSym(i, j, gp.rbf(x[i], x[j]))
		}
	}

	// Cholesky can fail on near-duplicate points; back off by inflating
	// the diagonal jitter a few times before giving up.
	jitter := gp.noise
	for attempt := 0; ; attempt++ {
		k := mat.NewSymDense(n, nil)
		k.CopySym(kernel)
		for i := 0; i < n; i++ {
			k.SetSym(i, i, k.At(i, i)+jitter)
		}
		if gp.chol.Factorize(k) {
			break
		}
		if attempt >= 5 {
			return errors.Wrap(errors.ErrSingularMatrix, "gaussianProcess.fit: kernel matrix is not positive definite")
		}
		jitter *= 10
	}

	alpha := mat.NewVecDense(n, nil)
	if err := gp.chol.SolveVecTo(alpha, z); err != nil {
		return errors.Wrap(err, "gaussianProcess.fit: solving for kernel weights")
	}

	gp.x = x
	gp.alpha = alpha
	gp.fitted = true
	return nil
}

// predict returns the posterior mean and variance at q, in the original
// (de-standardized) score units. An unfitted surrogate reports the prior.
func (gp *gaussianProcess) predict(q []float64) (mean, variance float64) {
	if !gp.fitted {
		return 0, 1
	}

	n := len(gp.x)
	k := mat.NewVecDense(n, nil)
	for i := range gp.x {
		k.SetVec(i, gp.rbf(gp.x[i], q))
	}

	mean = gp.yMean + gp.yStd*mat.Dot(k, gp.alpha)

	v := mat.NewVecDense(n, nil)
	if err := gp.chol.SolveVecTo(v, k); err != nil {
		// Factorization already succeeded in fit; treat a solve failure
		// as maximal uncertainty rather than aborting the search.
		return mean, gp.yStd * gp.yStd
	}
	variance = (1 + gp.noise - mat.Dot(k, v)) * gp.yStd * gp.yStd
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}
