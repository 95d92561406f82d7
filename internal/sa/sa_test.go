package sa

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowShopILS/internal/flowshop"
	"flowShopILS/internal/stats"
)

func smallConfig(nb Neighborhood) Config {
	cfg := DefaultConfig()
	cfg.Iterations = 3000
	cfg.Neighborhood = nb
	cfg.StagnationWindow = 50
	return cfg
}

func TestSolve_ResultIsConsistent(t *testing.T) {
	inst := flowshop.RandomInstance(15, 4, 1, 99, rand.New(rand.NewSource(1)))
	eval, err := flowshop.NewEvaluator(inst)
	require.NoError(t, err)

	for _, nb := range []Neighborhood{NeighborhoodSwap, NeighborhoodInsert} {
		t.Run(string(nb), func(t *testing.T) {
			s, err := New(smallConfig(nb), rand.New(rand.NewSource(2)))
			require.NoError(t, err)
			res, err := s.Solve(context.Background(), inst)
			require.NoError(t, err)

			assert.Equal(t, eval.MustMakespan(res.Permutation), res.Makespan)
			assert.Equal(t, res.Iterations+1, res.Evaluations)
			assert.LessOrEqual(t, res.Iterations, 3000)
		})
	}
}

func TestSolve_ImprovesRandomStart(t *testing.T) {
	inst := flowshop.RandomInstance(20, 5, 1, 99, rand.New(rand.NewSource(3)))
	eval, err := flowshop.NewEvaluator(inst)
	require.NoError(t, err)

	// то же начальное решение, что строит Solve
	jobs := inst.JobsCopy()
	rng := rand.New(rand.NewSource(4))
	rng.Shuffle(len(jobs), func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })
	startCost := eval.MustMakespan(flowshop.PermutationOf(jobs))

	s, err := New(smallConfig(NeighborhoodInsert), rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Makespan, startCost)
}

func TestSolve_Deterministic(t *testing.T) {
	inst := flowshop.RandomInstance(10, 3, 1, 99, rand.New(rand.NewSource(5)))
	solve := func() []int {
		s, err := New(smallConfig(NeighborhoodSwap), rand.New(rand.NewSource(9)))
		require.NoError(t, err)
		res, err := s.Solve(context.Background(), inst)
		require.NoError(t, err)
		return res.Permutation
	}
	assert.Equal(t, solve(), solve())
}

func TestSolve_ReheatsOnStagnation(t *testing.T) {
	// все работы одинаковы: стоимость не меняется, окно заполняется каждые 5 итераций
	times := make([]int, 6*2)
	for i := range times {
		times[i] = 3
	}
	inst, err := flowshop.NewInstance(6, 2, times)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Iterations = 50
	cfg.StagnationWindow = 5
	cfg.Robust = true

	agg := stats.NewAggregator()
	s, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	s.Sink = agg

	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Iterations)
	assert.Equal(t, 10, res.LocalOptima)
	assert.Equal(t, int64(10), agg.Snapshot().Count)
	assert.Equal(t, float64(res.Makespan), agg.Snapshot().Last)
}

func TestSolve_Cancelled(t *testing.T) {
	inst := flowshop.RandomInstance(8, 2, 1, 99, rand.New(rand.NewSource(1)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(smallConfig(NeighborhoodInsert), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := s.Solve(ctx, inst)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "context", res.Meta["stopped"])
	assert.Len(t, res.Permutation, 8)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no iterations", func(c *Config) { c.Iterations, c.IterationsPerJob = 0, 0 }},
		{"zero initial temp", func(c *Config) { c.InitialTemp = 0 }},
		{"final above initial", func(c *Config) { c.FinalTemp = c.InitialTemp + 1 }},
		{"alpha out of range", func(c *Config) { c.Alpha = 1 }},
		{"unknown neighborhood", func(c *Config) { c.Neighborhood = "2opt" }},
		{"negative window", func(c *Config) { c.StagnationWindow = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg, rand.New(rand.NewSource(1)))
			assert.Error(t, err)
		})
	}
}

func TestNeighbors_KeepPermutation(t *testing.T) {
	inst := flowshop.RandomInstance(7, 2, 1, 9, rand.New(rand.NewSource(1)))
	rng := rand.New(rand.NewSource(2))
	sol := flowshop.NewSolution(nil, inst.Jobs, inst.Machines)
	sol.SetJobs(inst.Records)
	for i := 0; i < 100; i++ {
		before := sol.Permutation()
		if i%2 == 0 {
			neighborSwap(sol, rng)
		} else {
			neighborInsert(sol, rng)
		}
		require.NoError(t, flowshop.ValidateSequence(inst, sol.Jobs()))
		assert.NotEqual(t, before, sol.Permutation())
	}
}
