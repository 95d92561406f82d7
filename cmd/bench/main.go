package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"flowShopILS/internal/bench"
	"flowShopILS/internal/config"
	"flowShopILS/internal/flowshop"
	"flowShopILS/internal/ils"
	"flowShopILS/internal/opt"
	"flowShopILS/internal/sa"
	"flowShopILS/internal/stagnation"
	"flowShopILS/internal/stats"
	"flowShopILS/internal/ts"
)

// Фабрики

func newILSFactory(cfg ils.Config, rt *flowshop.Runtime, sink stagnation.Sink, log *slog.Logger) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := ils.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		solver.Runtime = rt
		solver.Sink = sink
		solver.Logger = log
		return solver, nil
	}
}

func newSAFactory(cfg sa.Config, rt *flowshop.Runtime, sink stagnation.Sink, log *slog.Logger) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := sa.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		solver.Runtime = rt
		solver.Sink = sink
		solver.Logger = log
		return solver, nil
	}
}

func newTSFactory(cfg ts.Config, rt *flowshop.Runtime, sink stagnation.Sink, log *slog.Logger) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		solver, err := ts.New(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		solver.Runtime = rt
		solver.Sink = sink
		solver.Logger = log
		return solver, nil
	}
}

func newNEHFactory(rt *flowshop.Runtime, stochastic bool) func(seed int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		return ils.NEH{Rng: rand.New(rand.NewSource(seed)), Runtime: rt, Stochastic: stochastic}, nil
	}
}

var (
	configPath string
	flags      = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "bench",
	Short: "Сравнение NEH, ILS, SA и TS на задачах flow-shop",
	Long: `bench запускает выбранные алгоритмы на случайных экземплярах (--pairs)
или на файлах в формате Baker (--input) и сохраняет сводную статистику в CSV.`,
	SilenceUsage: true,
	RunE:         runBench,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&configPath, "config", "", "путь к YAML-файлу конфигурации")

	f.StringVar(&flags.Bench.Out, "out", flags.Bench.Out, "путь к выходному CSV-файлу")
	f.StringVar(&flags.Bench.Pairs, "pairs", flags.Bench.Pairs, "конфигурации: количество работ Х количество станков (через запятую)")
	f.StringSliceVar(&flags.Bench.Inputs, "input", nil, "файлы экземпляров в формате Baker (вместо --pairs)")
	f.StringVar(&flags.Bench.Algos, "algos", flags.Bench.Algos, "список алгоритмов: NEH, ILS, SA, TS (через запятую)")
	f.IntVar(&flags.Bench.Runs, "runs", flags.Bench.Runs, "количество запусков каждого алгоритма (с разными сидами)")
	f.Int64Var(&flags.Bench.Seed, "seed", flags.Bench.Seed, "базовый сид для запусков алгоритмов")
	f.Int64Var(&flags.Bench.InstanceSeed, "instance_seed", flags.Bench.InstanceSeed, "базовый сид для генерации экземпляров задачи (фиксирован для конфигурации)")
	f.IntVar(&flags.Bench.Parallel, "parallel", flags.Bench.Parallel, "количество одновременных запусков")
	f.DurationVar(&flags.Bench.PerRunTimeout, "per_run_timeout", 0, "таймаут одного запуска; 0 — без ограничения")
	f.StringVar(&flags.Bench.MetricsAddr, "metrics-addr", "", "адрес HTTP для метрик Prometheus (например :9090); пусто — выключено")
	f.BoolVar(&flags.Bench.Trace, "trace", false, "выводить трассировку OpenTelemetry в stderr")
	f.StringVar(&flags.Log.Level, "log-level", flags.Log.Level, "уровень логирования: debug | info | warn | error")

	// --- Итерированный локальный поиск ---
	f.IntVar(&flags.ILS.IterationsPerJob, "ils_iter_per_job", flags.ILS.IterationsPerJob, "количество итераций на одну работу (используется, если ils_iter == 0)")
	f.IntVar(&flags.ILS.Iterations, "ils_iter", flags.ILS.Iterations, "общее количество итераций (0 => ils_iter_per_job × nJobs)")
	f.IntVar(&flags.ILS.DestructionSize, "ils_d", flags.ILS.DestructionSize, "количество извлекаемых работ при возмущении")
	f.Float64Var(&flags.ILS.TempFactor, "ils_temp", flags.ILS.TempFactor, "коэффициент температуры критерия принятия")
	f.IntVar(&flags.ILS.StagnationWindow, "ils_window", flags.ILS.StagnationWindow, "длина окна детектора стагнации (0 — выключено)")
	f.BoolVar(&flags.ILS.Robust, "ils_robust", flags.ILS.Robust, "сообщать о локальных оптимумах в статистику")
	f.IntVar(&flags.ILS.MaxRestarts, "ils_max_restarts", flags.ILS.MaxRestarts, "завершать поиск после стольких стагнаций (0 — без ограничения)")
	f.BoolVar(&flags.ILS.LocalSearch, "ils_ls", flags.ILS.LocalSearch, "локальный поиск вставками после каждого возмущения")
	f.BoolVar(&flags.ILS.Stochastic, "stochastic", flags.ILS.Stochastic, "считать ожидаемый makespan лучшего решения")

	// --- Имитация отжига ---
	f.IntVar(&flags.SA.IterationsPerJob, "sa_iter_per_job", flags.SA.IterationsPerJob, "количество итераций на одну работу (используется, если sa_iter == 0)")
	f.IntVar(&flags.SA.Iterations, "sa_iter", flags.SA.Iterations, "общее количество итераций (0 => sa_iter_per_job × nJobs)")
	f.Float64Var(&flags.SA.InitialTemp, "sa_t0", flags.SA.InitialTemp, "начальная температура")
	f.Float64Var(&flags.SA.FinalTemp, "sa_tmin", flags.SA.FinalTemp, "конечная температура")
	f.Float64Var(&flags.SA.Alpha, "sa_alpha", flags.SA.Alpha, "коэффициент охлаждения (alpha)")
	f.StringVar((*string)(&flags.SA.Neighborhood), "sa_neigh", string(flags.SA.Neighborhood), "тип окрестности: swap | insert")
	f.IntVar(&flags.SA.StagnationWindow, "sa_window", flags.SA.StagnationWindow, "окно заморозки до повторного нагрева (0 — выключено)")

	// --- Табу-поиск ---
	f.IntVar(&flags.TS.IterationsPerJob, "ts_iter_per_job", flags.TS.IterationsPerJob, "количество итераций на одну работу (используется, если ts_iter == 0)")
	f.IntVar(&flags.TS.Iterations, "ts_iter", flags.TS.Iterations, "общее количество итераций (0 => ts_iter_per_job × nJobs)")
	f.IntVar(&flags.TS.TabuTenure, "ts_tenure", flags.TS.TabuTenure, "длина табу-списка (в итерациях)")
	f.IntVar(&flags.TS.TabuTenureRand, "ts_tenure_rand", flags.TS.TabuTenureRand, "случайное добавление к сроку табу [0..rand]")
	f.IntVar(&flags.TS.JobsPerIter, "ts_jobs", flags.TS.JobsPerIter, "количество работ, вставки которых оцениваются за итерацию")
	f.IntVar(&flags.TS.StagnationWindow, "ts_window", flags.TS.StagnationWindow, "длина окна детектора стагнации (0 — выключено)")
	f.IntVar(&flags.TS.Kicks, "ts_kicks", flags.TS.Kicks, "случайных вставок при перезапуске")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("конфликт в конфигурации: %w", err)
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	shutdownTracing, err := setupTracing(cfg.Bench.Trace)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("tracing shutdown", "error", err)
		}
	}()

	reg := prometheus.NewRegistry()
	aggregator := stats.NewAggregator()
	sink := stats.Multi{aggregator, stats.NewPromSink(reg)}
	if cfg.Bench.MetricsAddr != "" {
		srv := serveMetrics(cfg.Bench.MetricsAddr, reg, log)
		defer srv.Close()
	}

	cases, err := buildCases(cfg.Bench)
	if err != nil {
		return err
	}

	rt := flowshop.NewRuntime()
	available := map[string]bench.Algorithm{
		"NEH": {Name: "NEH", Factory: newNEHFactory(rt, cfg.ILS.Stochastic)},
		"ILS": {Name: "ILS", Factory: newILSFactory(cfg.ILS, rt, sink, log)},
		"SA":  {Name: "SA", Factory: newSAFactory(cfg.SA, rt, sink, log)},
		"TS":  {Name: "TS", Factory: newTSFactory(cfg.TS, rt, sink, log)},
	}

	var selected []bench.Algorithm
	for _, a := range splitCSV(cfg.Bench.Algos) {
		al, ok := available[strings.ToUpper(a)]
		if !ok {
			return fmt.Errorf("алгоритм не предоставлен в программе %q; доступные: %v", a, keys(available))
		}
		selected = append(selected, al)
	}

	runner := bench.Runner{
		Runs:          cfg.Bench.Runs,
		BaseSeed:      cfg.Bench.Seed,
		PerRunTimeout: cfg.Bench.PerRunTimeout,
		Parallel:      cfg.Bench.Parallel,
		Session:       uuid.NewString(),
		Logger:        log,
	}
	log.Info("сессия запущена", "session", runner.Session, "cases", len(cases), "algos", len(selected))

	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			log.Info("запущен алгоритм", "algo", a.Name, "case", c.Name, "runs", runner.Runs)

			rec, err := runner.RunCase(ctx, c, a)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", c.Name, a.Name, err)
			}
			records = append(records, rec)

			fmt.Printf("%s %s: лучшее=%d среднее=%.2f стандартное отклонение=%.2f | Время: среднее=%.2fms отклонение=%.2fms\n",
				a.Name, c.Name,
				rec.MakespanBest, rec.MakespanMean, rec.MakespanStd,
				rec.TimeMeanMs, rec.TimeStdMs,
			)
		}
	}

	snap := aggregator.Snapshot()
	log.Info("локальные оптимумы", "count", snap.Count, "best", snap.Best, "mean", snap.Mean, "solutions", rt.Solutions())

	if err := bench.WriteCSV(cfg.Bench.Out, records); err != nil {
		return fmt.Errorf("ошибка при записи в CSV: %w", err)
	}
	fmt.Println("Saved:", cfg.Bench.Out)
	return nil
}

// applyFlags переносит в cfg только явно заданные флаги: они важнее файла.
func applyFlags(cmd *cobra.Command, cfg *config.File) {
	set := func(name string, apply func()) {
		if cmd.Flags().Changed(name) {
			apply()
		}
	}
	set("out", func() { cfg.Bench.Out = flags.Bench.Out })
	set("pairs", func() { cfg.Bench.Pairs = flags.Bench.Pairs })
	set("input", func() { cfg.Bench.Inputs = flags.Bench.Inputs })
	set("algos", func() { cfg.Bench.Algos = flags.Bench.Algos })
	set("runs", func() { cfg.Bench.Runs = flags.Bench.Runs })
	set("seed", func() { cfg.Bench.Seed = flags.Bench.Seed })
	set("instance_seed", func() { cfg.Bench.InstanceSeed = flags.Bench.InstanceSeed })
	set("parallel", func() { cfg.Bench.Parallel = flags.Bench.Parallel })
	set("per_run_timeout", func() { cfg.Bench.PerRunTimeout = flags.Bench.PerRunTimeout })
	set("metrics-addr", func() { cfg.Bench.MetricsAddr = flags.Bench.MetricsAddr })
	set("trace", func() { cfg.Bench.Trace = flags.Bench.Trace })
	set("log-level", func() { cfg.Log.Level = flags.Log.Level })

	set("ils_iter_per_job", func() { cfg.ILS.IterationsPerJob = flags.ILS.IterationsPerJob })
	set("ils_iter", func() { cfg.ILS.Iterations = flags.ILS.Iterations })
	set("ils_d", func() { cfg.ILS.DestructionSize = flags.ILS.DestructionSize })
	set("ils_temp", func() { cfg.ILS.TempFactor = flags.ILS.TempFactor })
	set("ils_window", func() { cfg.ILS.StagnationWindow = flags.ILS.StagnationWindow })
	set("ils_robust", func() { cfg.ILS.Robust = flags.ILS.Robust })
	set("ils_max_restarts", func() { cfg.ILS.MaxRestarts = flags.ILS.MaxRestarts })
	set("ils_ls", func() { cfg.ILS.LocalSearch = flags.ILS.LocalSearch })
	set("stochastic", func() { cfg.ILS.Stochastic = flags.ILS.Stochastic })

	set("sa_iter_per_job", func() { cfg.SA.IterationsPerJob = flags.SA.IterationsPerJob })
	set("sa_iter", func() { cfg.SA.Iterations = flags.SA.Iterations })
	set("sa_t0", func() { cfg.SA.InitialTemp = flags.SA.InitialTemp })
	set("sa_tmin", func() { cfg.SA.FinalTemp = flags.SA.FinalTemp })
	set("sa_alpha", func() { cfg.SA.Alpha = flags.SA.Alpha })
	set("sa_neigh", func() { cfg.SA.Neighborhood = flags.SA.Neighborhood })
	set("sa_window", func() { cfg.SA.StagnationWindow = flags.SA.StagnationWindow })

	set("ts_iter_per_job", func() { cfg.TS.IterationsPerJob = flags.TS.IterationsPerJob })
	set("ts_iter", func() { cfg.TS.Iterations = flags.TS.Iterations })
	set("ts_tenure", func() { cfg.TS.TabuTenure = flags.TS.TabuTenure })
	set("ts_tenure_rand", func() { cfg.TS.TabuTenureRand = flags.TS.TabuTenureRand })
	set("ts_jobs", func() { cfg.TS.JobsPerIter = flags.TS.JobsPerIter })
	set("ts_window", func() { cfg.TS.StagnationWindow = flags.TS.StagnationWindow })
	set("ts_kicks", func() { cfg.TS.Kicks = flags.TS.Kicks })
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("неизвестный уровень логирования %q", level)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// helpers

func buildCases(cfg config.BenchConfig) ([]bench.Case, error) {
	if len(cfg.Inputs) > 0 {
		cases := make([]bench.Case, 0, len(cfg.Inputs))
		for _, path := range cfg.Inputs {
			inst, err := flowshop.LoadBaker(path)
			if err != nil {
				return nil, err
			}
			cases = append(cases, bench.Case{
				Name:     filepath.Base(path),
				Jobs:     inst.Jobs,
				Machines: inst.Machines,
				Instance: inst,
			})
		}
		return cases, nil
	}
	return parsePairs(cfg.Pairs, cfg.InstanceSeed)
}

func parsePairs(s string, baseInstanceSeed int64) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		jm := strings.Split(p, "x")
		if len(jm) != 2 {
			return nil, fmt.Errorf("пара %q невалидной схемы, пример: 50x10", p)
		}
		jobs, err := atoiStrict(jm[0])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества работ: %w", p, err)
		}
		machines, err := atoiStrict(jm[1])
		if err != nil {
			return nil, fmt.Errorf("пара %q: ошибка парсинга количества машин: %w", p, err)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, fmt.Errorf("пара %q: количество работ и машин должно быть > 0", p)
		}

		seed := baseInstanceSeed + int64(i)*10_000 + int64(jobs)*100 + int64(machines)

		cases = append(cases, bench.Case{
			Name:         fmt.Sprintf("%dx%d", jobs, machines),
			Jobs:         jobs,
			Machines:     machines,
			InstanceSeed: seed,
		})
	}

	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func atoiStrict(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
