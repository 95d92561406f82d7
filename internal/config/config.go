// Package config загружает параметры запуска: значения по умолчанию ← YAML-файл ← флаги CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"flowShopILS/internal/ils"
	"flowShopILS/internal/sa"
	"flowShopILS/internal/ts"
)

// File — содержимое конфигурационного файла.
type File struct {
	Bench BenchConfig `yaml:"bench"`
	ILS   ils.Config  `yaml:"ils"`
	SA    sa.Config   `yaml:"sa"`
	TS    ts.Config   `yaml:"ts"`
	Log   LogConfig   `yaml:"log"`
}

type BenchConfig struct {
	Out           string        `yaml:"out"`
	Pairs         string        `yaml:"pairs"`
	Inputs        []string      `yaml:"inputs"`
	Algos         string        `yaml:"algos"`
	Runs          int           `yaml:"runs"`
	Seed          int64         `yaml:"seed"`
	InstanceSeed  int64         `yaml:"instance_seed"`
	Parallel      int           `yaml:"parallel"`
	PerRunTimeout time.Duration `yaml:"per_run_timeout"`
	MetricsAddr   string        `yaml:"metrics_addr"`
	Trace         bool          `yaml:"trace"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func Default() File {
	return File{
		Bench: BenchConfig{
			Out:          "artifacts/results.csv",
			Pairs:        "20x5,50x10,100x20",
			Algos:        "NEH,ILS,SA,TS",
			Runs:         10,
			Seed:         1000,
			InstanceSeed: 777,
			Parallel:     1,
		},
		ILS: ils.DefaultConfig(),
		SA:  sa.DefaultConfig(),
		TS:  ts.DefaultConfig(),
		Log: LogConfig{Level: "info"},
	}
}

// Load читает YAML поверх значений по умолчанию. Пустой path — только значения по умолчанию.
// Отсутствующий файл считается ошибкой: путь задан явно.
func Load(path string) (File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (f File) Validate() error {
	if f.Bench.Runs <= 0 {
		return fmt.Errorf("runs must be > 0 (got %d)", f.Bench.Runs)
	}
	if f.Bench.Parallel <= 0 {
		return fmt.Errorf("parallel must be > 0 (got %d)", f.Bench.Parallel)
	}
	if f.Bench.Pairs == "" && len(f.Bench.Inputs) == 0 {
		return errors.New("either pairs or inputs must be set")
	}
	if err := f.ILS.Validate(); err != nil {
		return fmt.Errorf("ils: %w", err)
	}
	if err := f.SA.Validate(); err != nil {
		return fmt.Errorf("sa: %w", err)
	}
	if err := f.TS.Validate(); err != nil {
		return fmt.Errorf("ts: %w", err)
	}
	return nil
}
