package ts

import "fmt"

type Config struct {
	Iterations       int `yaml:"iterations"`
	IterationsPerJob int `yaml:"iterations_per_job"`

	TabuTenure     int `yaml:"tabu_tenure"`
	TabuTenureRand int `yaml:"tabu_tenure_rand"`

	// JobsPerIter — сколько случайных работ рассматривается за итерацию;
	// для каждой оцениваются все позиции вставки сразу.
	JobsPerIter int `yaml:"jobs_per_iter"`

	// StagnationWindow — длина окна детектора стагнации; 0 — без перезапусков.
	StagnationWindow int  `yaml:"stagnation_window"`
	Robust           bool `yaml:"robust"`
	// Kicks — сколько случайных вставок применяется к лучшему решению при перезапуске.
	Kicks int `yaml:"kicks"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:       0,
		IterationsPerJob: 50,

		TabuTenure:     7,
		TabuTenureRand: 3,

		JobsPerIter: 10,

		StagnationWindow: 30,
		Robust:           true,
		Kicks:            3,
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
	if c.TabuTenure <= 0 {
		return fmt.Errorf(
			"TabuTenure должно быть > 0 (получено %d)",
			c.TabuTenure,
		)
	}
	if c.TabuTenureRand < 0 {
		return fmt.Errorf(
			"TabuTenureRand должно быть >= 0 (получено %d)",
			c.TabuTenureRand,
		)
	}
	if c.JobsPerIter <= 0 {
		return fmt.Errorf(
			"JobsPerIter должно быть > 0 (получено %d)",
			c.JobsPerIter,
		)
	}
	if c.StagnationWindow < 0 {
		return fmt.Errorf(
			"StagnationWindow должно быть >= 0 (получено %d)",
			c.StagnationWindow,
		)
	}
	if c.Kicks < 0 {
		return fmt.Errorf(
			"Kicks должно быть >= 0 (получено %d)",
			c.Kicks,
		)
	}
	return nil
}
