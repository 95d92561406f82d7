package ils

import (
	"context"
	"math/rand"
	"time"

	"flowShopILS/internal/flowshop"
	"flowShopILS/internal/opt"
)

// NEH — только конструктивная эвристика, без поиска. Базовая линия для сравнения.
type NEH struct {
	// Rng перемешивает работы с равным суммарным временем; nil — исходный порядок.
	Rng        *rand.Rand
	Runtime    *flowshop.Runtime
	Stochastic bool
}

func (h NEH) Solve(ctx context.Context, inst *flowshop.Instance) (opt.Result, error) {
	start := time.Now()
	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return opt.Result{}, err
	}

	r := &run{rng: h.Rng}
	sol := r.construct(h.Runtime, inst)
	if h.Stochastic {
		sol.SetExpectedMakespan(sol.ComputeExpectedMakespan(inst.Jobs))
	}
	sol.SetElapsed(time.Since(start))

	return opt.Result{
		Permutation:      sol.Permutation(),
		Makespan:         sol.Makespan(),
		ExpectedMakespan: sol.ExpectedMakespan(),
		Evaluations:      r.evals,
		Iterations:       1,
		Duration:         sol.Elapsed(),
		Meta:             map[string]any{"solution_id": sol.ID()},
	}, nil
}
