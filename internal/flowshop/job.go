package flowshop

import "math/rand"

// Job — данные одной работы: времена обработки по станкам.
// После загрузки экземпляра не изменяется и разделяется всеми решениями.
type Job struct {
	// ID нумеруется с 1, как в файлах Baker.
	ID int

	times     []int32
	expTimes  []float64
	variances []float64
	total     int64
}

// NewJob создаёт работу с порядковым номером order (с нуля) для machines станков.
func NewJob(order, machines int) *Job {
	return &Job{
		ID:        order + 1,
		times:     make([]int32, machines),
		expTimes:  make([]float64, machines),
		variances: make([]float64, machines),
	}
}

// Index возвращает позицию работы в Instance.Records.
func (j *Job) Index() int { return j.ID - 1 }

func (j *Job) Machines() int { return len(j.times) }

func (j *Job) Time(machine int) int32 { return j.times[machine] }

func (j *Job) SetTime(machine int, t int32) { j.times[machine] = t }

func (j *Job) ExpTime(machine int) float64 { return j.expTimes[machine] }

func (j *Job) SetExpTime(machine int, t float64) { j.expTimes[machine] = t }

// Variance — дисперсия времени обработки из входного файла. Ядро её не читает.
func (j *Job) Variance(machine int) float64 { return j.variances[machine] }

func (j *Job) SetVariance(machine int, v float64) { j.variances[machine] = v }

// Total — суммарное время обработки на всех станках.
func (j *Job) Total() int64 { return j.total }

func (j *Job) SetTotal(v int64) { j.total = v }

// Finalize пересчитывает Total по детерминированным временам.
func (j *Job) Finalize() {
	var sum int64
	for _, t := range j.times {
		sum += int64(t)
	}
	j.total = sum
}

// TieBreak решает, какая из двух работ с равным Total идёт первой:
// true — первая из сравниваемых.
type TieBreak func() bool

// CoinFlip возвращает подбрасывание монеты на основе rng.
// rng не потокобезопасен — у каждого агента свой.
func CoinFlip(rng *rand.Rand) TieBreak {
	if rng == nil {
		return nil
	}
	return func() bool { return rng.Float64() > 0.5 }
}

// Compare упорядочивает работы по убыванию Total.
// Возвращает -1, если a должна стоять раньше b, иначе 1.
// При равенстве решает tb; при tb == nil порядок сохраняется (a раньше b).
func Compare(a, b *Job, tb TieBreak) int {
	switch {
	case a.total > b.total:
		return -1
	case a.total < b.total:
		return 1
	}
	if tb == nil || tb() {
		return -1
	}
	return 1
}

// SortByTotalDesc упорядочивает работы по Compare вставками: каждая работа
// сдвигается влево, пока предшественник должен стоять после неё.
// Каждая пара равных работ разрешается одним вызовом tb, поэтому порядок по Total
// не зависит от tb. При tb == nil равные работы сохраняют исходный порядок.
func SortByTotalDesc(jobs []*Job, tb TieBreak) {
	for i := 1; i < len(jobs); i++ {
		job := jobs[i]
		j := i
		for j > 0 && Compare(jobs[j-1], job, tb) > 0 {
			jobs[j] = jobs[j-1]
			j--
		}
		jobs[j] = job
	}
}
