package ils

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"flowShopILS/internal/flowshop"
	"flowShopILS/internal/opt"
	"flowShopILS/internal/stagnation"
)

var tracer = otel.Tracer("flowShopILS/internal/ils")

// Solver — итерированный локальный поиск (iterated greedy) для flow-shop:
// построение NEH, локальный поиск вставками, разрушение/восстановление,
// критерий принятия с постоянной температурой и перезапуски по стагнации.
type Solver struct {
	Cfg Config
	Rng *rand.Rand

	// Runtime — общий счётчик решений; nil — собственный на каждый Solve.
	Runtime *flowshop.Runtime
	// Sink получает отчёты детектора стагнации в режиме Robust; может быть nil.
	Sink stagnation.Sink
	// Logger — nil отключает логирование.
	Logger *slog.Logger
}

// New возвращает новый ILS-солвер с валидацией конфигурации, с использованием инициализированного генератора случайных чисел.
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

// Solve — основной цикл поиска. Отмена через ctx проверяется между итерациями.
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

	ctx, span := tracer.Start(ctx, "ils.Solve", trace.WithAttributes(
		attribute.Int("flowshop.jobs", inst.Jobs),
		attribute.Int("flowshop.machines", inst.Machines),
	))
	defer span.End()

	log := s.logger().With("jobs", inst.Jobs, "machines", inst.Machines)
	rt := s.Runtime
	if rt == nil {
		rt = flowshop.NewRuntime()
	}

	n := inst.Jobs
	maxIter := s.Cfg.Iterations
	if maxIter <= 0 {
		maxIter = s.Cfg.IterationsPerJob * n
	}

	r := &run{cfg: s.Cfg, rng: s.Rng}

	// Начальное решение
	curr := r.construct(rt, inst)
	if s.Cfg.LocalSearch {
		r.localSearch(curr)
	}
	best := curr.Clone()
	log.Debug("начальное решение построено", "makespan", curr.Makespan())

	// Постоянная температура критерия принятия
	temperature := s.Cfg.TempFactor * float64(inst.TotalTime()) / float64(n*inst.Machines*10)

	det := stagnation.New(s.Cfg.StagnationWindow, s.Cfg.Robust, s.Sink)
	det.Observe(float64(curr.Makespan()))

	restarts := 0
	improving := 0
	iter := 0
	stopped := "iterations"
	for ; iter < maxIter; iter++ {
		// Для поддержки отмены через context
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")
			res := s.result(best, r, iter, restarts, start)
			res.Meta["stopped"] = "context"
			return res, err
		}

		cand := curr.Clone()
		r.perturb(cand)
		if s.Cfg.LocalSearch {
			r.localSearch(cand)
		}

		candCost := cand.Makespan()
		if det.IsImproving(float64(candCost)) {
			improving++
		}

		if accept(candCost, curr.Makespan(), temperature, s.Rng) {
			curr = cand
			if curr.Makespan() < best.Makespan() {
				best = curr.Clone()
				log.Debug("новое лучшее решение", "iter", iter, "makespan", best.Makespan(),
					"window_best", det.IsBestImproving(float64(best.Makespan())))
			}
		}

		cost := float64(curr.Makespan())
		det.Observe(cost)
		if !det.IsStagnant(cost) {
			continue
		}

		restarts++
		log.Debug("стагнация", "iter", iter, "makespan", curr.Makespan(), "restarts", restarts)
		if s.Cfg.MaxRestarts > 0 && restarts >= s.Cfg.MaxRestarts {
			stopped = "stagnation"
			iter++
			break
		}

		// Диверсификация: перезапуск от лучшего с двойным возмущением
		curr = best.Clone()
		r.perturb(curr)
		r.perturb(curr)
		if s.Cfg.LocalSearch {
			r.localSearch(curr)
		}
		if curr.Makespan() < best.Makespan() {
			best = curr.Clone()
		}
		det.Configure(s.Cfg.StagnationWindow, s.Cfg.Robust)
		det.Observe(float64(curr.Makespan()))
	}

	res := s.result(best, r, iter, restarts, start)
	res.Meta["stopped"] = stopped
	res.Meta["improving_iterations"] = improving
	res.Meta["temperature"] = temperature

	span.SetAttributes(
		attribute.Int64("flowshop.makespan", res.Makespan),
		attribute.Int("ils.restarts", restarts),
		attribute.Int("ils.iterations", iter),
	)
	log.Info("поиск завершён",
		"makespan", res.Makespan,
		"iterations", iter,
		"restarts", restarts,
		"evaluations", res.Evaluations,
		"duration", res.Duration,
	)
	return res, nil
}

func (s *Solver) result(best *flowshop.Solution, r *run, iter, restarts int, start time.Time) opt.Result {
	n := best.NumJobs()
	if s.Cfg.Stochastic {
		best.SetExpectedMakespan(best.ComputeExpectedMakespan(n))
	}
	best.SetElapsed(time.Since(start))
	s.logger().Debug("лучшее решение", "report", best.Report(false))

	return opt.Result{
		Permutation:      best.Permutation(),
		Makespan:         best.Makespan(),
		ExpectedMakespan: best.ExpectedMakespan(),
		Evaluations:      r.evals,
		Iterations:       iter,
		LocalOptima:      restarts,
		Duration:         best.Elapsed(),
		Meta: map[string]any{
			"solution_id":      best.ID(),
			"destruction_size": s.Cfg.DestructionSize,
			"temp_factor":      s.Cfg.TempFactor,
			"window":           s.Cfg.StagnationWindow,
			"robust":           s.Cfg.Robust,
		},
	}
}

func (s *Solver) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}

// accept — улучшающее или равное решение принимается всегда,
// ухудшающее — по критерию Метрополиса.
func accept(cand, curr int64, temperature float64, rng *rand.Rand) bool {
	delta := cand - curr
	if delta <= 0 {
		return true
	}
	if temperature <= 0 {
		return false
	}
	return rng.Float64() < math.Exp(-float64(delta)/temperature)
}
