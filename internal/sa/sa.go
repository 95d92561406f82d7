package sa

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"flowShopILS/internal/flowshop"
	"flowShopILS/internal/opt"
	"flowShopILS/internal/stagnation"
)

// Solver — имитация отжига над последовательностью работ.
// Заморозка определяется детектором стагнации и снимается повторным нагревом.
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	Runtime *flowshop.Runtime
	Sink    stagnation.Sink
	Logger  *slog.Logger
}

// New возвращает новый SA-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
// Используется в фабриках.
func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

// Solve — реализация эвристики.
func (s *Solver) Solve(ctx context.Context, inst *flowshop.Instance) (opt.Result, error) {
	start := time.Now()

	if err := inst.Validate(); err != nil {
		return opt.Result{}, err
	}
	if err := s.Cfg.Validate(); err != nil {
		return opt.Result{}, err
	}
	if s.Rng == nil {
		return opt.Result{}, fmt.Errorf("генератор случайных чисел не инициализирован (nil)")
	}

	n := inst.Jobs
	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerJob * n
	}

	// Текущее и кандидатное решения
	jobs := inst.JobsCopy()
	s.Rng.Shuffle(n, func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })

	curr := flowshop.NewSolution(s.Runtime, n, inst.Machines)
	curr.SetJobs(jobs)
	curr.SetMakespan(curr.ComputeMakespan(n))
	cand := flowshop.NewSolution(s.Runtime, n, inst.Machines)

	best := curr.Clone()
	evals := 1

	det := stagnation.New(s.Cfg.StagnationWindow, s.Cfg.Robust, s.Sink)
	reheats := 0

	T := s.Cfg.InitialTemp
	iter := 0
	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := s.result(best, evals, iter, reheats, start)
			res.Meta["stopped"] = "context"
			res.Meta["T"] = T
			return res, err
		}

		cand.SetJobs(curr.Jobs())
		switch s.Cfg.Neighborhood {
		case NeighborhoodSwap:
			// Окрестность на основе обмена двух элементов
			neighborSwap(cand, s.Rng)
		default:
			// Окрестность на основе вставки элемента в другую позицию
			neighborInsert(cand, s.Rng)
		}
		cand.SetMakespan(cand.ComputeMakespan(n))
		evals++

		if accept(cand.Makespan(), curr.Makespan(), T, s.Rng) {
			// Обмен ролей текущего и кандидатного решений
			curr, cand = cand, curr

			// Обновление глобально лучшего решения
			if curr.Makespan() < best.Makespan() {
				best = curr.Clone()
			}
		}

		// Охлаждение температуры
		T *= s.Cfg.Alpha

		cost := float64(curr.Makespan())
		det.Observe(cost)
		if det.IsStagnant(cost) {
			reheats++
			T = s.Cfg.InitialTemp
			det.Reset()
			s.logger().Debug("повторный нагрев", "iter", iter, "makespan", curr.Makespan(), "reheats", reheats)
		}
	}

	res := s.result(best, evals, iter, reheats, start)
	res.Meta["T"] = T
	s.logger().Info("отжиг завершён", "makespan", res.Makespan, "iterations", iter, "reheats", reheats)
	return res, nil
}

func (s *Solver) result(best *flowshop.Solution, evals, iter, reheats int, start time.Time) opt.Result {
	return opt.Result{
		Permutation: best.Permutation(),
		Makespan:    best.Makespan(),
		Evaluations: evals,
		Iterations:  iter,
		LocalOptima: reheats,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"initial_temp": s.Cfg.InitialTemp,
			"final_temp":   s.Cfg.FinalTemp,
			"alpha":        s.Cfg.Alpha,
			"neighborhood": string(s.Cfg.Neighborhood),
			"window":       s.Cfg.StagnationWindow,
		},
	}
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// accept — критерий Метрополиса: улучшающее решение принимается всегда,
// ухудшающее — с вероятностью exp(-delta/T).
func accept(cand, curr int64, T float64, rng *rand.Rand) bool {
	delta := cand - curr
	if delta <= 0 {
		return true
	}
	return rng.Float64() < math.Exp(-float64(delta)/T)
}

// Формирует соседнее решение путём обмена двух случайных позиций.
func neighborSwap(sol *flowshop.Solution, rng *rand.Rand) {
	p := sol.Jobs()
	if len(p) < 2 {
		return
	}
	i := rng.Intn(len(p))
	j := rng.Intn(len(p) - 1)
	if j >= i {
		j++
	}
	p[i], p[j] = p[j], p[i]
}

// Формирует соседнее решение путём извлечения работы из позиции i и вставки её в позицию j.
func neighborInsert(sol *flowshop.Solution, rng *rand.Rand) {
	n := sol.NumJobs()
	if n < 2 {
		return
	}
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	sol.MoveTo(i, j)
}
