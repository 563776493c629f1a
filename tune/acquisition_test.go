package tune

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpectedImprovement(t *testing.T) {
	p := AcquisitionParams{BestScore: 1.0, Xi: 0.0}

	// Far above the incumbent with no uncertainty: improvement is the gap.
	assert.InDelta(t, 1.0, ExpectedImprovement(2.0, 0, p), 1e-12)

	// Below the incumbent with no uncertainty: nothing to gain.
	assert.Equal(t, 0.0, ExpectedImprovement(0.5, 0, p))

	// Uncertainty adds value even below the incumbent.
	assert.Greater(t, ExpectedImprovement(0.5, 1.0, p), 0.0)

	// More uncertainty, same mean: never worse.
	low := ExpectedImprovement(0.5, 0.1, p)
	high := ExpectedImprovement(0.5, 2.0, p)
	assert.GreaterOrEqual(t, high, low)
}

func TestUpperConfidenceBound(t *testing.T) {
	p := AcquisitionParams{Beta: 2.0}
	assert.InDelta(t, 1.0+2.0*3.0, UpperConfidenceBound(1.0, 9.0, p), 1e-12)
	assert.InDelta(t, 1.0, UpperConfidenceBound(1.0, 0, p), 1e-12)
}

func TestProbabilityOfImprovement(t *testing.T) {
	p := AcquisitionParams{BestScore: 0.0, Xi: 0.0}

	// Symmetric around the incumbent.
	assert.InDelta(t, 0.5, ProbabilityOfImprovement(0.0, 1.0, p), 1e-12)
	assert.Greater(t, ProbabilityOfImprovement(1.0, 1.0, p), 0.5)
	assert.Less(t, ProbabilityOfImprovement(-1.0, 1.0, p), 0.5)

	// Degenerate posterior collapses to an indicator.
	assert.Equal(t, 1.0, ProbabilityOfImprovement(0.5, 0, p))
	assert.Equal(t, 0.0, ProbabilityOfImprovement(-0.5, 0, p))
}

func TestThompsonSamplingUsesPosteriorSpread(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 11))
	p := AcquisitionParams{Rand: rng}

	// Zero variance collapses to the mean.
	assert.Equal(t, 2.5, ThompsonSampling(2.5, 0, p))

	// Nonzero variance produces spread around the mean.
	var lo, hi float64 = 1, 1
	for i := 0; i < 100; i++ {
		s := ThompsonSampling(1.0, 4.0, p)
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	assert.Less(t, lo, 0.0)
	assert.Greater(t, hi, 2.0)
}

func TestAcquisitionByName(t *testing.T) {
	for _, name := range []string{
		"expected_improvement", "ei",
		"upper_confidence_bound", "ucb",
		"probability_of_improvement", "pi",
		"thompson_sampling", "ts",
	} {
		fn, err := AcquisitionByName(name)
		require.NoError(t, err, name)
		require.NotNil(t, fn, name)
	}

	_, err := AcquisitionByName("simulated_annealing")
	assert.Error(t, err)
}
