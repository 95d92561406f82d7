package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"flowShopILS/internal/flowshop"
	"flowShopILS/internal/opt"
)

type Algorithm struct {
	Name    string
	Factory func(seed int64) (opt.Optimizer, error)
}

// Case — экземпляр задачи: случайный (Jobs×Machines, InstanceSeed) или заранее загруженный.
type Case struct {
	Name         string
	Jobs         int
	Machines     int
	InstanceSeed int64
	Instance     *flowshop.Instance
}

// Load возвращает экземпляр кейса, при необходимости генерируя его.
func (c Case) Load() *flowshop.Instance {
	if c.Instance != nil {
		return c.Instance
	}
	return flowshop.RandomInstance(c.Jobs, c.Machines, 1, 99, randForSeed(c.InstanceSeed))
}

type Record struct {
	Session  string
	Case     string
	Algo     string
	Jobs     int
	Machines int
	Runs     int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest int64
	MakespanMean float64
	MakespanStd  float64

	ExpMakespanMean float64
	LocalOptimaMean float64
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	// Parallel — сколько запусков выполняется одновременно; <= 1 — последовательно.
	Parallel int
	Session  string
	Logger   *slog.Logger
}

type runOutcome struct {
	makespan    int64
	expMakespan float64
	localOptima int
	timeMs      float64
}

func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Record, error) {
	inst := c.Load()
	if err := inst.Validate(); err != nil {
		return Record{}, fmt.Errorf("case %s: %w", c.Name, err)
	}

	outcomes := make([]runOutcome, r.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Parallel, 1))

	for i := 0; i < r.Runs; i++ {
		g.Go(func() error {
			out, err := r.runOnce(gctx, inst, algo, i)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Record{}, err
	}

	makespans := make([]int64, 0, r.Runs)
	timesMs := make([]float64, 0, r.Runs)
	expMs := make([]float64, 0, r.Runs)
	optima := make([]float64, 0, r.Runs)
	for _, o := range outcomes {
		makespans = append(makespans, o.makespan)
		timesMs = append(timesMs, o.timeMs)
		expMs = append(expMs, o.expMakespan)
		optima = append(optima, float64(o.localOptima))
	}

	msStats := CalcIntStats(makespans)
	tStats := CalcFloatStats(timesMs)

	return Record{
		Session:  r.Session,
		Case:     c.Name,
		Algo:     algo.Name,
		Jobs:     inst.Jobs,
		Machines: inst.Machines,
		Runs:     r.Runs,

		TimeBestMs: tStats.Best,
		TimeMeanMs: tStats.Mean,
		TimeStdMs:  tStats.Std,

		MakespanBest: msStats.Best,
		MakespanMean: msStats.Mean,
		MakespanStd:  msStats.Std,

		ExpMakespanMean: CalcFloatStats(expMs).Mean,
		LocalOptimaMean: CalcFloatStats(optima).Mean,
	}, nil
}

// runOnce выполняет один запуск и сверяет результат с эталонным Evaluator.
func (r Runner) runOnce(ctx context.Context, inst *flowshop.Instance, algo Algorithm, i int) (runOutcome, error) {
	runSeed := r.BaseSeed + int64(i)

	op, err := algo.Factory(runSeed)
	if err != nil {
		return runOutcome{}, fmt.Errorf("run %d: %w", i, err)
	}

	runCtx := ctx
	cancel := func() {}
	if r.PerRunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
	}
	start := time.Now()
	res, err := op.Solve(runCtx, inst)
	dur := time.Since(start)
	cancel()

	if err != nil && runCtx.Err() != nil {
		return runOutcome{}, fmt.Errorf("run %d: cancelled/timeout: %w", i, err)
	}
	if err != nil {
		return runOutcome{}, fmt.Errorf("run %d: solve error: %w", i, err)
	}

	eval, err := flowshop.NewEvaluator(inst)
	if err != nil {
		return runOutcome{}, err
	}
	check, err := eval.Makespan(res.Permutation)
	if err != nil {
		return runOutcome{}, fmt.Errorf("run %d: invalid permutation: %w", i, err)
	}
	if check != res.Makespan {
		return runOutcome{}, fmt.Errorf("run %d: reported makespan %d, evaluated %d", i, res.Makespan, check)
	}

	r.logger().Debug("run finished",
		"algo", algo.Name, "run", i, "seed", runSeed,
		"makespan", res.Makespan, "duration", dur)

	return runOutcome{
		makespan:    res.Makespan,
		expMakespan: res.ExpectedMakespan,
		localOptima: res.LocalOptima,
		timeMs:      float64(dur.Microseconds()) / 1000.0,
	}, nil
}

func (r Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

func WriteCSV(path string, records []Record) error {
	if dir := dirOf(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{
		"session", "case", "algo", "jobs", "machines", "runs",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
		"exp_makespan_mean", "local_optima_mean",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.Session,
			r.Case,
			r.Algo,
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Runs),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			i64toa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),

			ftoa(r.ExpMakespanMean),
			ftoa(r.LocalOptimaMean),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
