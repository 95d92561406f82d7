package bench

import "math"

// Stats — сводка по запускам: лучшее (минимум), среднее и выборочное стандартное отклонение.
type Stats[T int64 | float64] struct {
	N    int
	Best T
	Mean float64
	Std  float64
}

type (
	IntStats   = Stats[int64]
	FloatStats = Stats[float64]
)

func CalcIntStats(values []int64) IntStats { return calcStats(values) }

func CalcFloatStats(values []float64) FloatStats { return calcStats(values) }

func calcStats[T int64 | float64](values []T) Stats[T] {
	s := Stats[T]{N: len(values)}
	if s.N == 0 {
		return s
	}

	s.Best = values[0]
	sum := 0.0
	for _, v := range values {
		s.Best = min(s.Best, v)
		sum += float64(v)
	}
	s.Mean = sum / float64(s.N)

	if s.N >= 2 {
		variance := 0.0
		for _, v := range values {
			d := float64(v) - s.Mean
			variance += d * d
		}
		s.Std = math.Sqrt(variance / float64(s.N-1))
	}
	return s
}
