package opt

import (
	"context"
	"time"

	"flowShopILS/internal/flowshop"
)

type Optimizer interface {
	Solve(ctx context.Context, inst *flowshop.Instance) (Result, error)
}

type Result struct {
	Permutation []int
	Makespan    int64
	// ExpectedMakespan заполняется в стохастическом режиме.
	ExpectedMakespan float64
	Evaluations      int
	Iterations       int
	// LocalOptima — сколько раз поиск застрял и был перезапущен.
	LocalOptima int
	Duration    time.Duration
	Meta        map[string]any
}
