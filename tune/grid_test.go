package tune

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scitune/scitune/pkg/errors"
	"github.com/scitune/scitune/pkg/log"
)

// sumObjective has its minimum at the smallest candidate of every parameter.
func sumObjective(_ context.Context, params map[string]float64) (float64, error) {
	var total float64
	for _, v := range params {
		total += v
	}
	return total, nil
}

func testGrid() GridSpace {
	return GridSpace{
		{Name: "eta", Values: []float64{0.1, 0.3, 0.5}},
		{Name: "lambda", Values: []float64{0, 1}},
	}
}

func TestGridSearchEvaluatesEveryCombinationOnce(t *testing.T) {
	space := testGrid()

	var mu sync.Mutex
	seen := make(map[[2]float64]int)

	testLogger, _ := log.NewTestLogger(log.LevelError)
	gs := &GridSearch{Workers: 4, Logger: testLogger}
	trials, err := gs.Search(context.Background(), space, func(ctx context.Context, params map[string]float64) (float64, error) {
		mu.Lock()
		seen[[2]float64{params["eta"], params["lambda"]}]++
		mu.Unlock()
		return sumObjective(ctx, params)
	})
	require.NoError(t, err)
	require.Len(t, trials, 6)

	assert.Len(t, seen, 6)
	for combo, count := range seen {
		assert.Equal(t, 1, count, "combination %v evaluated more than once", combo)
	}
}

func TestGridSearchHistoryOrderIsDeterministic(t *testing.T) {
	space := testGrid()
	gs := NewGridSearch()
	gs.Workers = 8

	first, err := gs.Search(context.Background(), space, sumObjective)
	require.NoError(t, err)

	second, err := gs.Search(context.Background(), space, sumObjective)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, i, first[i].Index)
		assert.Equal(t, first[i].Params, second[i].Params)
		assert.Equal(t, first[i].Loss, second[i].Loss)
	}

	// Last declared parameter varies fastest.
	assert.Equal(t, map[string]float64{"eta": 0.1, "lambda": 0}, first[0].Params)
	assert.Equal(t, map[string]float64{"eta": 0.1, "lambda": 1}, first[1].Params)
	assert.Equal(t, map[string]float64{"eta": 0.3, "lambda": 0}, first[2].Params)
}

func TestGridSearchFindsArgmin(t *testing.T) {
	gs := NewGridSearch()
	trials, err := gs.Search(context.Background(), testGrid(), sumObjective)
	require.NoError(t, err)

	best, err := Best(trials)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"eta": 0.1, "lambda": 0}, best.Params)
	assert.InDelta(t, 0.1, best.Loss, 1e-12)
}

func TestGridSearchContinuesPastFailures(t *testing.T) {
	space := testGrid()

	gs := NewGridSearch()
	trials, err := gs.Search(context.Background(), space, func(ctx context.Context, params map[string]float64) (float64, error) {
		if params["eta"] == 0.3 {
			return 0, errors.New("diverged")
		}
		return sumObjective(ctx, params)
	})
	require.NoError(t, err)
	require.Len(t, trials, 6)

	failed := 0
	for _, tr := range trials {
		if tr.Failed() {
			failed++
			assert.Equal(t, 0.3, tr.Params["eta"])
		}
	}
	assert.Equal(t, 2, failed)

	best, err := Best(trials)
	require.NoError(t, err)
	assert.False(t, best.Failed())
}

func TestGridSearchValidation(t *testing.T) {
	gs := NewGridSearch()
	ctx := context.Background()

	_, err := gs.Search(ctx, GridSpace{}, sumObjective)
	assert.Error(t, err, "empty space")

	_, err = gs.Search(ctx, testGrid(), nil)
	assert.Error(t, err, "nil objective")

	bad := &GridSearch{Workers: -1}
	_, err = bad.Search(ctx, testGrid(), sumObjective)
	assert.Error(t, err, "negative workers")
}

func TestGridSearchAbortsOnCancel(t *testing.T) {
	space := GridSpace{{Name: "x", Values: []float64{1, 2, 3, 4, 5, 6, 7, 8}}}

	ctx, cancel := context.WithCancel(context.Background())
	gs := &GridSearch{Workers: 1}

	calls := 0
	_, err := gs.Search(ctx, space, func(ctx context.Context, _ map[string]float64) (float64, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return float64(calls), nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, calls, 8)
}
