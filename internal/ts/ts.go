package ts

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

// Solver — табу-поиск в окрестности вставок. Все вставки выбранной работы
// оцениваются одним проходом ускорения Тайярда.
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	Runtime *flowshop.Runtime
	Sink    stagnation.Sink
	Logger  *slog.Logger
}

// New возвращает новый TS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

type move struct {
	from, to int
	job      int
	cost     int64
}

// Solve — основной цикл алгоритма
func (s *Solver) Solve(ctx context.Context, inst *flowshop.Instance) (opt.Result, error) {
	start := time.Now()

	// Валидация входных данных
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

	// Инициализация начального решения
	jobs := inst.JobsCopy()
	s.Rng.Shuffle(n, func(i, j int) { jobs[i], jobs[j] = jobs[j], jobs[i] })
	curr := flowshop.NewSolution(s.Runtime, n, inst.Machines)
	curr.SetJobs(jobs)
	curr.SetMakespan(curr.ComputeMakespan(n))
	evals := 1

	// scratch — рабочая копия для оценки вставок
	scratch := flowshop.NewSolution(s.Runtime, n, inst.Machines)
	best := curr.Clone()

	tabu := newTabuList((s.Cfg.TabuTenure + s.Cfg.TabuTenureRand) * 4)
	det := stagnation.New(s.Cfg.StagnationWindow, s.Cfg.Robust, s.Sink)
	restarts := 0

	iter := 0
	for ; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			res := s.result(best, evals, iter, restarts, start)
			res.Meta["stopped"] = "context"
			return res, err
		}

		// Лучший допустимый ход и запасной (лучший без учёта табу)
		chosen := move{from: -1, cost: math.MaxInt64}
		fallback := move{from: -1, cost: math.MaxInt64}

		for range s.Cfg.JobsPerIter {
			from := s.Rng.Intn(n)
			job := curr.Job(from).ID

			scratch.SetJobs(curr.Jobs())
			scratch.MoveToEnd(from)
			costs := scratch.InsertionCosts(n - 1)
			evals += n

			for to, cost := range costs {
				if to == from {
					continue
				}
				if cost < fallback.cost {
					fallback = move{from: from, to: to, job: job, cost: cost}
				}
				// Табуированный ход пропускается, если не выполняется критерий аспирации
				if tabu.IsTabu(moveKey(job, from, to), iter) && cost >= best.Makespan() {
					continue
				}
				if cost < chosen.cost {
					chosen = move{from: from, to: to, job: job, cost: cost}
				}
			}
		}
		if chosen.from < 0 {
			chosen = fallback
		}
		// Нет допустимых ходов — завершаем поиск
		if chosen.from < 0 {
			break
		}

		curr.MoveTo(chosen.from, chosen.to)
		curr.SetMakespan(chosen.cost)

		// Добавление обратного хода в табу-список
		tenure := s.Cfg.TabuTenure
		if s.Cfg.TabuTenureRand > 0 {
			tenure += s.Rng.Intn(s.Cfg.TabuTenureRand + 1)
		}
		tabu.Add(moveKey(chosen.job, chosen.to, chosen.from), iter+tenure)

		// Обновление глобально лучшего решения
		if curr.Makespan() < best.Makespan() {
			best = curr.Clone()
		}

		cost := float64(curr.Makespan())
		det.Observe(cost)
		if !det.IsStagnant(cost) {
			continue
		}

		// Перезапуск от лучшего со случайными вставками
		restarts++
		curr.SetJobs(best.Jobs())
		for range s.Cfg.Kicks {
			from := s.Rng.Intn(n)
			curr.MoveTo(from, s.Rng.Intn(n))
		}
		curr.SetMakespan(curr.ComputeMakespan(n))
		evals++
		tabu.Clear()
		det.Reset()
		s.logger().Debug("перезапуск", "iter", iter, "best", best.Makespan(), "restarts", restarts)
	}

	res := s.result(best, evals, iter, restarts, start)
	s.logger().Info("табу-поиск завершён", "makespan", res.Makespan, "iterations", iter, "restarts", restarts)
	return res, nil
}

func (s *Solver) result(best *flowshop.Solution, evals, iter, restarts int, start time.Time) opt.Result {
	return opt.Result{
		Permutation: best.Permutation(),
		Makespan:    best.Makespan(),
		Evaluations: evals,
		Iterations:  iter,
		LocalOptima: restarts,
		Duration:    time.Since(start),
		Meta: map[string]any{
			"tabu_tenure":      s.Cfg.TabuTenure,
			"tabu_tenure_rand": s.Cfg.TabuTenureRand,
			"jobs_per_iter":    s.Cfg.JobsPerIter,
			"window":           s.Cfg.StagnationWindow,
		},
	}
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
