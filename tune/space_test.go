package tune

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridSpaceValidate(t *testing.T) {
	tests := []struct {
		name  string
		space GridSpace
		ok    bool
	}{
		{
			name:  "empty space",
			space: GridSpace{},
			ok:    false,
		},
		{
			name:  "empty name",
			space: GridSpace{{Name: "", Values: []float64{1}}},
			ok:    false,
		},
		{
			name: "duplicate name",
			space: GridSpace{
				{Name: "eta", Values: []float64{0.1}},
				{Name: "eta", Values: []float64{0.2}},
			},
			ok: false,
		},
		{
			name:  "empty candidates",
			space: GridSpace{{Name: "eta", Values: nil}},
			ok:    false,
		},
		{
			name:  "nan candidate",
			space: GridSpace{{Name: "eta", Values: []float64{0.1, math.NaN()}}},
			ok:    false,
		},
		{
			name: "valid",
			space: GridSpace{
				{Name: "eta", Values: []float64{0.1, 0.3}},
				{Name: "lambda", Values: []float64{0, 1}},
			},
			ok: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.space.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGridSpaceAssignmentOrder(t *testing.T) {
	// The last declared parameter varies fastest, like the innermost of
	// nested loops.
	space := GridSpace{
		{Name: "a", Values: []float64{1, 2}},
		{Name: "b", Values: []float64{10, 20, 30}},
	}

	size, err := space.Size()
	require.NoError(t, err)
	require.Equal(t, 6, size)

	want := []map[string]float64{
		{"a": 1, "b": 10},
		{"a": 1, "b": 20},
		{"a": 1, "b": 30},
		{"a": 2, "b": 10},
		{"a": 2, "b": 20},
		{"a": 2, "b": 30},
	}
	for idx, w := range want {
		assert.Equal(t, w, space.assignment(idx), "combination %d", idx)
	}
}

func TestSpaceValidate(t *testing.T) {
	tests := []struct {
		name  string
		space Space
		ok    bool
	}{
		{
			name:  "empty space",
			space: Space{},
			ok:    false,
		},
		{
			name:  "inverted bounds",
			space: Space{{Name: "eta", Lo: 1, Hi: 0}},
			ok:    false,
		},
		{
			name:  "degenerate bounds",
			space: Space{{Name: "eta", Lo: 1, Hi: 1}},
			ok:    false,
		},
		{
			name:  "infinite bound",
			space: Space{{Name: "eta", Lo: 0, Hi: math.Inf(1)}},
			ok:    false,
		},
		{
			name:  "integer dimension without integers",
			space: Space{{Name: "n", Lo: 2.1, Hi: 2.9, Integer: true}},
			ok:    false,
		},
		{
			name: "valid",
			space: Space{
				{Name: "eta", Lo: 0.01, Hi: 0.5},
				{Name: "nrounds", Lo: 10, Hi: 200, Integer: true},
			},
			ok: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.space.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSpaceSampleRespectsBoundsAndIntegers(t *testing.T) {
	space := Space{
		{Name: "eta", Lo: 0.01, Hi: 0.5},
		{Name: "nrounds", Lo: 10, Hi: 200, Integer: true},
	}
	rng := rand.New(rand.NewPCG(7, 7))

	for i := 0; i < 200; i++ {
		v := space.sample(rng)
		require.Len(t, v, 2)

		assert.GreaterOrEqual(t, v[0], 0.01)
		assert.LessOrEqual(t, v[0], 0.5)

		assert.GreaterOrEqual(t, v[1], 10.0)
		assert.LessOrEqual(t, v[1], 200.0)
		assert.Equal(t, math.Round(v[1]), v[1], "integer dimension must hold whole values")
	}
}

func TestSpaceNormalize(t *testing.T) {
	space := Space{
		{Name: "a", Lo: 0, Hi: 10},
		{Name: "b", Lo: -1, Hi: 1},
	}

	q := space.normalize([]float64{5, 0})
	assert.InDelta(t, 0.5, q[0], 1e-12)
	assert.InDelta(t, 0.5, q[1], 1e-12)

	q = space.normalize([]float64{0, -1})
	assert.InDelta(t, 0.0, q[0], 1e-12)
	assert.InDelta(t, 0.0, q[1], 1e-12)
}

func TestRoundInto(t *testing.T) {
	assert.Equal(t, 3.0, roundInto(2.7, 1, 10))
	assert.Equal(t, 2.0, roundInto(1.2, 1.5, 10))
	assert.Equal(t, 9.0, roundInto(9.8, 1, 9.5))
}
