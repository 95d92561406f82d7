package sa

import "fmt"

// Тип окрестности
type Neighborhood string

const (
	NeighborhoodSwap   Neighborhood = "swap"
	NeighborhoodInsert Neighborhood = "insert"
)

type Config struct {
	Iterations       int `yaml:"iterations"`
	IterationsPerJob int `yaml:"iterations_per_job"`

	InitialTemp float64 `yaml:"initial_temp"`
	FinalTemp   float64 `yaml:"final_temp"`
	Alpha       float64 `yaml:"alpha"`

	Neighborhood Neighborhood `yaml:"neighborhood"`

	// StagnationWindow — сколько одинаковых подряд стоимостей текущего решения
	// считается заморозкой; после неё температура возвращается к InitialTemp.
	// 0 — без повторного нагрева.
	StagnationWindow int  `yaml:"stagnation_window"`
	Robust           bool `yaml:"robust"`
}

func DefaultConfig() Config {
	return Config{
		Iterations:       0,
		IterationsPerJob: 2500,

		InitialTemp: 2000.0,
		FinalTemp:   0.5,
		Alpha:       0.995,

		Neighborhood: NeighborhoodInsert,

		StagnationWindow: 200,
		Robust:           true,
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
	if c.InitialTemp <= 0 {
		return fmt.Errorf(
			"InitialTemp должно быть > 0 (получено %f)",
			c.InitialTemp,
		)
	}
	if c.FinalTemp <= 0 {
		return fmt.Errorf(
			"FinalTemp должно быть > 0 (получено %f)",
			c.FinalTemp,
		)
	}
	if c.FinalTemp >= c.InitialTemp {
		return fmt.Errorf(
			"FinalTemp должно быть < InitialTemp (получено %f >= %f)",
			c.FinalTemp,
			c.InitialTemp,
		)
	}
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf(
			"alpha должно лежать в интервале (0,1) (получено %f)",
			c.Alpha,
		)
	}
	switch c.Neighborhood {
	case NeighborhoodSwap, NeighborhoodInsert:
		// ok
	default:
		return fmt.Errorf(
			"неизвестный тип окрестности %q",
			c.Neighborhood,
		)
	}
	if c.StagnationWindow < 0 {
		return fmt.Errorf(
			"StagnationWindow должно быть >= 0 (получено %d)",
			c.StagnationWindow,
		)
	}
	return nil
}
