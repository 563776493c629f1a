package tune

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/scitune/scitune/pkg/errors"
)

// AcquisitionParams carries the per-step state an acquisition function may
// consult. BestScore is the best observed score so far under the
// maximization convention (negated loss).
type AcquisitionParams struct {
	BestScore float64
	Beta      float64
	Xi        float64
	Rand      *rand.Rand
}

// AcquisitionFunc scores a candidate from the surrogate posterior. Higher
// means more promising; BayesSearch proposes the candidate that maximizes it.
type AcquisitionFunc func(mean, variance float64, p AcquisitionParams) float64

// ExpectedImprovement is the default acquisition: the expected amount by
// which a candidate beats the incumbent, discounted by the exploration
// margin Xi.
func ExpectedImprovement(mean, variance float64, p AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	if sigma < 1e-12 {
		return math.Max(mean-p.BestScore-p.Xi, 0)
	}
	z := (mean - p.BestScore - p.Xi) / sigma
	return (mean-p.BestScore-p.Xi)*distuv.UnitNormal.CDF(z) + sigma*distuv.UnitNormal.Prob(z)
}

// UpperConfidenceBound trades off mean and uncertainty with weight Beta.
func UpperConfidenceBound(mean, variance float64, p AcquisitionParams) float64 {
	return mean + p.Beta*math.Sqrt(variance)
}

// ProbabilityOfImprovement is the posterior probability that a candidate
// beats the incumbent by at least Xi.
func ProbabilityOfImprovement(mean, variance float64, p AcquisitionParams) float64 {
	sigma := math.Sqrt(variance)
	if sigma < 1e-12 {
		if mean > p.BestScore+p.Xi {
			return 1
		}
		return 0
	}
	return distuv.UnitNormal.CDF((mean - p.BestScore - p.Xi) / sigma)
}

// ThompsonSampling draws one sample from the candidate's posterior and ranks
// candidates by the draw.
func ThompsonSampling(mean, variance float64, p AcquisitionParams) float64 {
	return mean + math.Sqrt(variance)*p.Rand.NormFloat64()
}

// AcquisitionByName resolves an acquisition function from its configuration
// name. Recognized names: "expected_improvement", "upper_confidence_bound",
// "probability_of_improvement", "thompson_sampling".
func AcquisitionByName(name string) (AcquisitionFunc, error) {
	switch name {
	case "expected_improvement", "ei":
		return ExpectedImprovement, nil
	case "upper_confidence_bound", "ucb":
		return UpperConfidenceBound, nil
	case "probability_of_improvement", "pi":
		return ProbabilityOfImprovement, nil
	case "thompson_sampling", "ts":
		return ThompsonSampling, nil
	default:
		return nil, errors.NewValidationError("acquisition", "unknown acquisition function", name)
	}
}
