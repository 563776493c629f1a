package tune

import (
	"math"
	"math/rand/v2"

	"github.com/scitune/scitune/pkg/errors"
)

// Param declares one grid-search dimension: a named, finite, ordered list of
// candidate values. Declaration order is part of the search contract; see
// GridSpace.
type Param struct {
	Name   string
	Values []float64
}

// GridSpace is an ordered hyperparameter grid. The Cartesian product of the
// candidate lists is enumerated with the LAST declared parameter varying
// fastest, mirroring nested loops over the declaration order.
type GridSpace []Param

// Validate checks the grid before any evaluation starts.
func (s GridSpace) Validate() error {
	if len(s) == 0 {
		return errors.NewValidationError("space", "search space must not be empty", len(s))
	}

	seen := make(map[string]bool, len(s))
	for _, p := range s {
		if p.Name == "" {
			return errors.NewValidationError("space", "parameter name must not be empty", p.Name)
		}
		if seen[p.Name] {
			return errors.NewValidationError(p.Name, "duplicate parameter name", p.Name)
		}
		seen[p.Name] = true

		if len(p.Values) == 0 {
			return errors.NewValidationError(p.Name, "candidate list must not be empty", len(p.Values))
		}
		for _, v := range p.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValidationError(p.Name, "candidate values must be finite", v)
			}
		}
	}

	return nil
}

// Size returns the number of combinations in the grid.
func (s GridSpace) Size() (int, error) {
	size := 1
	for _, p := range s {
		if size > math.MaxInt/len(p.Values) {
			return 0, errors.NewValidationError("space", "grid size overflows int", p.Name)
		}
		size *= len(p.Values)
	}
	return size, nil
}

// assignment decodes combination index idx into a full hyperparameter
// assignment. The last declared parameter varies fastest.
func (s GridSpace) assignment(idx int) map[string]float64 {
	params := make(map[string]float64, len(s))
	for i := len(s) - 1; i >= 0; i-- {
		n := len(s[i].Values)
		params[s[i].Name] = s[i].Values[idx%n]
		idx /= n
	}
	return params
}

// Bounds declares one continuous search dimension for Bayesian optimization.
// Integer marks dimensions that only take whole values: proposals are rounded
// to the nearest integer inside [Lo, Hi] before they reach the objective or
// the surrogate, so the two always see the same value.
type Bounds struct {
	Name    string
	Lo, Hi  float64
	Integer bool
}

// Space is an ordered list of continuous search dimensions.
type Space []Bounds

// Validate checks the space before any evaluation starts.
func (s Space) Validate() error {
	if len(s) == 0 {
		return errors.NewValidationError("space", "search space must not be empty", len(s))
	}

	seen := make(map[string]bool, len(s))
	for _, b := range s {
		if b.Name == "" {
			return errors.NewValidationError("space", "parameter name must not be empty", b.Name)
		}
		if seen[b.Name] {
			return errors.NewValidationError(b.Name, "duplicate parameter name", b.Name)
		}
		seen[b.Name] = true

		if math.IsNaN(b.Lo) || math.IsInf(b.Lo, 0) || math.IsNaN(b.Hi) || math.IsInf(b.Hi, 0) {
			return errors.NewValidationError(b.Name, "bounds must be finite", [2]float64{b.Lo, b.Hi})
		}
		if b.Lo >= b.Hi {
			return errors.NewValidationError(b.Name, "lower bound must be below upper bound", [2]float64{b.Lo, b.Hi})
		}
		if b.Integer && math.Floor(b.Hi) < math.Ceil(b.Lo) {
			return errors.NewValidationError(b.Name, "integer dimension contains no integer", [2]float64{b.Lo, b.Hi})
		}
	}

	return nil
}

// sample draws one point uniformly at random from the space, applying the
// integer rounding policy.
func (s Space) sample(rng *rand.Rand) []float64 {
	v := make([]float64, len(s))
	for i, b := range s {
		x := b.Lo + rng.Float64()*(b.Hi-b.Lo)
		if b.Integer {
			x = roundInto(x, b.Lo, b.Hi)
		}
		v[i] = x
	}
	return v
}

// normalize maps a point into the unit cube. The surrogate always works on
// normalized coordinates so its kernel length scale is dimensionless.
func (s Space) normalize(v []float64) []float64 {
	q := make([]float64, len(s))
	for i, b := range s {
		q[i] = (v[i] - b.Lo) / (b.Hi - b.Lo)
	}
	return q
}

// params converts a point vector into a named assignment.
func (s Space) params(v []float64) map[string]float64 {
	m := make(map[string]float64, len(s))
	for i, b := range s {
		m[b.Name] = v[i]
	}
	return m
}

// roundInto rounds x to the nearest integer that still lies in [lo, hi].
func roundInto(x, lo, hi float64) float64 {
	r := math.Round(x)
	if r < lo {
		r = math.Ceil(lo)
	}
	if r > hi {
		r = math.Floor(hi)
	}
	return r
}
