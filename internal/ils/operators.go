package ils

import (
	"math/rand"

	"flowShopILS/internal/flowshop"
)

// run — состояние одного запуска Solve.
type run struct {
	cfg   Config
	rng   *rand.Rand
	evals int
}

// insert вызывает ускорение Тайярда для позиции k и учитывает k+1 оценённых вставок.
func (r *run) insert(sol *flowshop.Solution, k int) {
	sol.ImproveInsertion(k)
	r.evals += k + 1
}

// construct — эвристика NEH: работы по убыванию суммарного времени,
// каждая вставляется в лучшую позицию уже построенного префикса.
// Последняя вставка записывает makespan решения.
func (r *run) construct(rt *flowshop.Runtime, inst *flowshop.Instance) *flowshop.Solution {
	jobs := inst.JobsCopy()
	flowshop.SortByTotalDesc(jobs, flowshop.CoinFlip(r.rng))

	sol := flowshop.NewSolution(rt, inst.Jobs, inst.Machines)
	for k, job := range jobs {
		sol.SetJob(k, job)
		r.insert(sol, k)
	}
	return sol
}

// localSearch — окрестность вставок: каждая работа (в случайном порядке)
// извлекается и вставляется в лучшую позицию. Повторяется, пока есть улучшение.
// Исходная позиция тоже рассматривается, поэтому makespan не растёт.
func (r *run) localSearch(sol *flowshop.Solution) {
	n := sol.NumJobs()
	if n < 2 {
		return
	}
	for improved := true; improved; {
		improved = false
		order := r.rng.Perm(n)
		jobs := make([]*flowshop.Job, n)
		copy(jobs, sol.Jobs())
		for _, idx := range order {
			job := jobs[idx]
			pos := position(sol, job)
			before := sol.Makespan()
			sol.MoveToEnd(pos)
			r.insert(sol, n-1)
			if sol.Makespan() < before {
				improved = true
			}
		}
	}
}

// perturb — разрушение и восстановление: DestructionSize случайных работ
// извлекаются и по одной вставляются обратно в лучшие позиции.
func (r *run) perturb(sol *flowshop.Solution) {
	n := sol.NumJobs()
	d := min(r.cfg.DestructionSize, n)

	picked := make([]bool, n)
	removed := make([]*flowshop.Job, 0, d)
	for _, p := range r.rng.Perm(n)[:d] {
		picked[p] = true
		removed = append(removed, sol.Job(p))
	}
	seq := make([]*flowshop.Job, 0, n)
	for p := 0; p < n; p++ {
		if !picked[p] {
			seq = append(seq, sol.Job(p))
		}
	}
	kept := len(seq)
	sol.SetJobs(append(seq, removed...))

	for k := kept; k < n; k++ {
		r.insert(sol, k)
	}
}

func position(sol *flowshop.Solution, job *flowshop.Job) int {
	for i, j := range sol.Jobs() {
		if j == job {
			return i
		}
	}
	return -1
}
