package flowshop

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Solution — последовательность работ (одинаковая на всех станках) с кэшированной стоимостью.
// Длина последовательности фиксируется при создании.
// Стоимости актуальны только после явного пересчёта (ComputeMakespan или ImproveInsertion(n-1)).
// Решение не потокобезопасно: им владеет один агент, передача — через Clone.
type Solution struct {
	rt          *Runtime
	id          int64
	jobs        []*Job
	machines    int
	makespan    int64
	expMakespan float64
	elapsed     time.Duration

	// Рабочие таблицы ускорения Тайярда, переиспользуются между вызовами.
	e, q, f, v []int64
}

// NewSolution создаёт пустое решение на nJobs работ и nMachines станков.
func NewSolution(rt *Runtime, nJobs, nMachines int) *Solution {
	return &Solution{
		rt:       rt,
		id:       rt.nextSolutionID(),
		jobs:     make([]*Job, nJobs),
		machines: nMachines,
	}
}

func (s *Solution) ID() int64 { return s.id }

func (s *Solution) NumJobs() int { return len(s.jobs) }

func (s *Solution) NumMachines() int { return s.machines }

func (s *Solution) Makespan() int64 { return s.makespan }

func (s *Solution) SetMakespan(v int64) { s.makespan = v }

func (s *Solution) ExpectedMakespan() float64 { return s.expMakespan }

func (s *Solution) SetExpectedMakespan(v float64) { s.expMakespan = v }

// Elapsed — время вычислений, только для отчётов.
func (s *Solution) Elapsed() time.Duration { return s.elapsed }

func (s *Solution) SetElapsed(d time.Duration) { s.elapsed = d }

func (s *Solution) Job(pos int) *Job { return s.jobs[pos] }

// Jobs возвращает внутренний срез; изменять его может только владелец решения.
func (s *Solution) Jobs() []*Job { return s.jobs }

func (s *Solution) SetJob(pos int, job *Job) { s.jobs[pos] = job }

// SetJobs перезаписывает последовательность; лишние элементы jobs отбрасываются.
func (s *Solution) SetJobs(jobs []*Job) { copy(s.jobs, jobs) }

// MoveToEnd переносит работу из позиции pos в конец, сдвигая остальные влево.
func (s *Solution) MoveToEnd(pos int) { s.MoveTo(pos, len(s.jobs)-1) }

// MoveTo извлекает работу из позиции from и вставляет её так, чтобы она оказалась в позиции to.
// Стоимости не пересчитываются.
func (s *Solution) MoveTo(from, to int) {
	job := s.jobs[from]
	switch {
	case from < to:
		copy(s.jobs[from:to], s.jobs[from+1:to+1])
	case from > to:
		copy(s.jobs[to+1:from+1], s.jobs[to:from])
	}
	s.jobs[to] = job
}

// Permutation возвращает индексы работ (с нуля) в порядке последовательности.
func (s *Solution) Permutation() []int { return PermutationOf(s.jobs) }

// Clone копирует ссылки на работы и стоимости. Время вычислений не наследуется.
func (s *Solution) Clone() *Solution {
	c := NewSolution(s.rt, len(s.jobs), s.machines)
	copy(c.jobs, s.jobs)
	c.makespan = s.makespan
	c.expMakespan = s.expMakespan
	return c
}

// ComputeMakespan считает время завершения работы nUsed-1 на последнем станке
// для префикса [0, nUsed).
func (s *Solution) ComputeMakespan(nUsed int) int64 {
	if nUsed <= 0 {
		return 0
	}
	m := s.machines
	c := s.table(&s.e, nUsed*m)
	for row := 0; row < nUsed; row++ {
		job := s.jobs[row]
		for col := 0; col < m; col++ {
			t := int64(job.Time(col))
			switch {
			case row == 0 && col == 0:
				c[0] = t
			case col == 0:
				c[row*m] = c[(row-1)*m] + t
			case row == 0:
				c[col] = c[col-1] + t
			default:
				c[row*m+col] = max(c[(row-1)*m+col], c[row*m+col-1]) + t
			}
		}
	}
	return c[(nUsed-1)*m+m-1]
}

// ComputeExpectedMakespan — тот же пересчёт по ожидаемым временам.
// Внутренние клетки таблицы прибавляют детерминированное время работы,
// а не ожидаемое: так считались эталонные результаты, менять нельзя.
func (s *Solution) ComputeExpectedMakespan(nUsed int) float64 {
	if nUsed <= 0 {
		return 0
	}
	m := s.machines
	c := make([]float64, nUsed*m)
	for row := 0; row < nUsed; row++ {
		job := s.jobs[row]
		for col := 0; col < m; col++ {
			switch {
			case row == 0 && col == 0:
				c[0] = job.ExpTime(0)
			case col == 0:
				c[row*m] = c[(row-1)*m] + job.ExpTime(0)
			case row == 0:
				c[col] = c[col-1] + job.ExpTime(col)
			default:
				c[row*m+col] = math.Max(c[(row-1)*m+col], c[row*m+col-1]) + float64(job.Time(col))
			}
		}
	}
	return c[(nUsed-1)*m+m-1]
}

// InsertionCosts — ускорение Тайярда. Работа в позиции k считается свободной;
// элемент i результата равен makespan префикса [0, k] после её вставки в позицию i
// при неизменном порядке остальных работ. Последовательность не меняется.
// Срез переиспользуется и действителен до следующего вызова. Требуется 0 <= k < NumJobs().
func (s *Solution) InsertionCosts(k int) []int64 {
	m := s.machines
	e := s.table(&s.e, k*m)
	q := s.table(&s.q, (k+1)*m)
	f := s.table(&s.f, (k+1)*m)
	v := s.table(&s.v, k+1)

	s.fillE(e, k)
	s.fillQ(q, k)
	s.fillF(f, e, k)

	for i := 0; i <= k; i++ {
		var value int64
		row := i * m
		for j := 0; j < m; j++ {
			value = max(value, f[row+j]+q[row+j])
		}
		v[i] = value
	}
	return v
}

// ImproveInsertion переносит свободную работу из позиции k в лучшую позицию
// среди [0, k] по InsertionCosts. При равенстве выигрывает самая левая позиция.
// Если k — последняя позиция, найденное значение становится makespan решения.
// Возвращает выбранную позицию и makespan префикса. Требуется 0 <= k < NumJobs().
func (s *Solution) ImproveInsertion(k int) (int, int64) {
	costs := s.InsertionCosts(k)

	best := k
	bestValue := int64(math.MaxInt64)
	for i := k; i >= 0; i-- {
		if costs[i] <= bestValue {
			bestValue = costs[i]
			best = i
		}
	}

	if best < k {
		s.MoveTo(k, best)
	}
	if k == len(s.jobs)-1 {
		s.makespan = bestValue
	}
	return best, bestValue
}

// fillE: времена завершения первых k работ без свободной (k строк).
func (s *Solution) fillE(e []int64, k int) {
	m := s.machines
	for i := 0; i < k; i++ {
		job := s.jobs[i]
		for j := 0; j < m; j++ {
			var up, left int64
			if i > 0 {
				up = e[(i-1)*m+j]
			}
			if j > 0 {
				left = e[i*m+j-1]
			}
			e[i*m+j] = max(up, left) + int64(job.Time(j))
		}
	}
}

// fillQ: хвосты — минимальное время дообработки работ i..k-1 на станках j..m-1.
// Строка k нулевая.
func (s *Solution) fillQ(q []int64, k int) {
	m := s.machines
	for j := 0; j < m; j++ {
		q[k*m+j] = 0
	}
	for i := k - 1; i >= 0; i-- {
		job := s.jobs[i]
		for j := m - 1; j >= 0; j-- {
			down := q[(i+1)*m+j]
			var right int64
			if j < m-1 {
				right = q[i*m+j+1]
			}
			q[i*m+j] = max(down, right) + int64(job.Time(j))
		}
	}
}

// fillF: время завершения свободной работы, вставленной в позицию i.
func (s *Solution) fillF(f, e []int64, k int) {
	m := s.machines
	free := s.jobs[k]
	for i := 0; i <= k; i++ {
		for j := 0; j < m; j++ {
			var up, left int64
			if i > 0 {
				up = e[(i-1)*m+j]
			}
			if j > 0 {
				left = f[i*m+j-1]
			}
			f[i*m+j] = max(up, left) + int64(free.Time(j))
		}
	}
}

func (s *Solution) table(buf *[]int64, size int) []int64 {
	if cap(*buf) < size {
		*buf = make([]int64, size)
	}
	return (*buf)[:size]
}

// Report форматирует решение для вывода; includeJobs добавляет список ID работ.
func (s *Solution) Report(includeJobs bool) string {
	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sol ID : %d\n", s.id)
	fmt.Fprintf(&b, "Sol costs: %d\n", s.makespan)
	fmt.Fprintf(&b, "Sol expCosts: %g\n", s.expMakespan)
	secs := s.elapsed.Seconds()
	fmt.Fprintf(&b, "Sol time: %s (%g sec.)\n", formatHMS(int64(math.Round(secs))), secs)
	if includeJobs {
		b.WriteString("List of jobs: \n")
		for _, job := range s.jobs {
			if job == nil {
				b.WriteString("-\n")
				continue
			}
			fmt.Fprintf(&b, "%d\n", job.ID)
		}
	}
	return b.String()
}

func formatHMS(total int64) string {
	h := total / 3600
	mm := (total % 3600) / 60
	ss := total % 60
	return fmt.Sprintf("%dh %02dm %02ds", h, mm, ss)
}
