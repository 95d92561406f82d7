package ils

import "fmt"

type Config struct {
	// Iterations — общее число итераций; при 0 используется IterationsPerJob × nJobs.
	Iterations       int `yaml:"iterations"`
	IterationsPerJob int `yaml:"iterations_per_job"`

	// DestructionSize — сколько работ извлекается при возмущении.
	DestructionSize int `yaml:"destruction_size"`

	// TempFactor задаёт постоянную температуру критерия принятия:
	// T = TempFactor · Σp / (n · m · 10).
	TempFactor float64 `yaml:"temp_factor"`

	// StagnationWindow — длина окна детектора стагнации; 0 — без перезапусков.
	StagnationWindow int  `yaml:"stagnation_window"`
	Robust           bool `yaml:"robust"`
	// MaxRestarts — после стольких стагнаций поиск завершается; 0 — без ограничения.
	MaxRestarts int `yaml:"max_restarts"`

	LocalSearch bool `yaml:"local_search"`
	Stochastic  bool `yaml:"stochastic"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:       0,
		IterationsPerJob: 5,

		DestructionSize: 4,
		TempFactor:      0.4,

		StagnationWindow: 25,
		Robust:           true,
		MaxRestarts:      0,

		LocalSearch: true,
		Stochastic:  false,
	}
}

func (c Config) Validate() error {
	if c.Iterations < 0 || c.IterationsPerJob < 0 {
		return fmt.Errorf(
			"Iterations и IterationsPerJob должны быть >= 0 (получено %d, %d)",
			c.Iterations,
			c.IterationsPerJob,
		)
	}
	if c.Iterations == 0 && c.IterationsPerJob == 0 {
		return fmt.Errorf(
			"должно быть задано Iterations > 0 или IterationsPerJob > 0",
		)
	}
	if c.DestructionSize <= 0 {
		return fmt.Errorf(
			"DestructionSize должно быть > 0 (получено %d)",
			c.DestructionSize,
		)
	}
	if c.TempFactor < 0 {
		return fmt.Errorf(
			"TempFactor должно быть >= 0 (получено %f)",
			c.TempFactor,
		)
	}
	if c.StagnationWindow < 0 {
		return fmt.Errorf(
			"StagnationWindow должно быть >= 0 (получено %d)",
			c.StagnationWindow,
		)
	}
	if c.MaxRestarts < 0 {
		return fmt.Errorf(
			"MaxRestarts должно быть >= 0 (получено %d)",
			c.MaxRestarts,
		)
	}
	return nil
}
