package ils

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowShopILS/internal/flowshop"
	"flowShopILS/internal/stats"
)

func testInstance(jobs, machines int, seed int64) *flowshop.Instance {
	return flowshop.RandomInstance(jobs, machines, 1, 99, rand.New(rand.NewSource(seed)))
}

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Iterations = 40
	cfg.StagnationWindow = 10
	return cfg
}

func TestSolve_ResultIsConsistent(t *testing.T) {
	inst := testInstance(20, 5, 1)
	s, err := New(smallConfig(), rand.New(rand.NewSource(2)))
	require.NoError(t, err)

	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)

	eval, err := flowshop.NewEvaluator(inst)
	require.NoError(t, err)
	ms, err := eval.Makespan(res.Permutation)
	require.NoError(t, err)
	assert.Equal(t, ms, res.Makespan)
	assert.Positive(t, res.Evaluations)
	assert.Equal(t, 40, res.Iterations)
	assert.Equal(t, "iterations", res.Meta["stopped"])
}

func TestSolve_NotWorseThanNEH(t *testing.T) {
	for seed := int64(0); seed < 5; seed++ {
		inst := testInstance(15, 4, 100+seed)

		neh, err := NEH{Rng: rand.New(rand.NewSource(seed))}.Solve(context.Background(), inst)
		require.NoError(t, err)

		s, err := New(smallConfig(), rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		res, err := s.Solve(context.Background(), inst)
		require.NoError(t, err)

		assert.LessOrEqual(t, res.Makespan, neh.Makespan, "seed %d", seed)
	}
}

func TestSolve_Deterministic(t *testing.T) {
	inst := testInstance(12, 4, 3)
	solve := func() (int64, []int) {
		s, err := New(smallConfig(), rand.New(rand.NewSource(77)))
		require.NoError(t, err)
		res, err := s.Solve(context.Background(), inst)
		require.NoError(t, err)
		return res.Makespan, res.Permutation
	}
	ms1, p1 := solve()
	ms2, p2 := solve()
	assert.Equal(t, ms1, ms2)
	assert.Equal(t, p1, p2)
}

func TestSolve_StopsOnStagnation(t *testing.T) {
	// Две работы: локальный поиск сразу находит оптимум, и окно быстро заполняется.
	inst := testInstance(2, 3, 4)
	cfg := DefaultConfig()
	cfg.Iterations = 1000
	cfg.StagnationWindow = 3
	cfg.MaxRestarts = 1
	cfg.Robust = true

	agg := stats.NewAggregator()
	s, err := New(cfg, rand.New(rand.NewSource(5)))
	require.NoError(t, err)
	s.Sink = agg

	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, "stagnation", res.Meta["stopped"])
	assert.Equal(t, 1, res.LocalOptima)
	assert.Less(t, res.Iterations, 1000)

	snap := agg.Snapshot()
	assert.Equal(t, int64(1), snap.Count)
	assert.Equal(t, float64(res.Makespan), snap.Last)
}

func TestSolve_RestartsWithoutLimit(t *testing.T) {
	inst := testInstance(2, 2, 8)
	cfg := DefaultConfig()
	cfg.Iterations = 30
	cfg.StagnationWindow = 3
	cfg.Robust = false

	s, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, 30, res.Iterations)
	assert.Greater(t, res.LocalOptima, 1)
}

func TestSolve_Stochastic(t *testing.T) {
	inst := testInstance(10, 3, 6)
	cfg := smallConfig()
	cfg.Stochastic = true

	s, err := New(cfg, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := s.Solve(context.Background(), inst)
	require.NoError(t, err)
	// ожидаемые времена совпадают с детерминированными
	assert.InDelta(t, float64(res.Makespan), res.ExpectedMakespan, 1e-9)
}

func TestSolve_Cancelled(t *testing.T) {
	inst := testInstance(10, 3, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(smallConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	res, err := s.Solve(ctx, inst)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "context", res.Meta["stopped"])
	assert.Len(t, res.Permutation, 10)
}

func TestSolve_SharedRuntime(t *testing.T) {
	rt := flowshop.NewRuntime()
	s, err := New(smallConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	s.Runtime = rt

	_, err = s.Solve(context.Background(), testInstance(6, 2, 1))
	require.NoError(t, err)
	assert.Positive(t, rt.Solutions())
}

func TestSolve_InvalidInput(t *testing.T) {
	s, err := New(smallConfig(), rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = s.Solve(context.Background(), &flowshop.Instance{})
	assert.Error(t, err)

	s.Rng = nil
	_, err = s.Solve(context.Background(), testInstance(3, 2, 1))
	assert.Error(t, err)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	assert.Error(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no iterations", func(c *Config) { c.Iterations, c.IterationsPerJob = 0, 0 }},
		{"negative iterations", func(c *Config) { c.Iterations = -1 }},
		{"zero destruction", func(c *Config) { c.DestructionSize = 0 }},
		{"negative temperature", func(c *Config) { c.TempFactor = -1 }},
		{"negative window", func(c *Config) { c.StagnationWindow = -1 }},
		{"negative restarts", func(c *Config) { c.MaxRestarts = -1 }},
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

func TestAccept(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.True(t, accept(10, 12, 0, rng))
	assert.True(t, accept(12, 12, 0, rng))
	assert.False(t, accept(13, 12, 0, rng))

	accepted := 0
	for i := 0; i < 1000; i++ {
		if accept(13, 12, 1, rng) {
			accepted++
		}
	}
	// exp(-1) ≈ 0.37
	assert.InDelta(t, 368, accepted, 60)
}
