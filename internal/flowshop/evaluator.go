package flowshop

import "fmt"

// Evaluator — эталонный подсчёт makespan по перестановке индексов работ
// за O(n·m) с одной строкой завершений. Используется для проверки результатов.
type Evaluator struct {
	inst              *Instance
	machineCompletion []int64
}

func NewEvaluator(inst *Instance) (*Evaluator, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return &Evaluator{inst: inst, machineCompletion: make([]int64, inst.Machines)}, nil
}

// Makespan считает makespan полной перестановки.
func (e *Evaluator) Makespan(perm []int) (int64, error) {
	if e == nil || e.inst == nil {
		return 0, fmt.Errorf("nil evaluator")
	}
	if err := ValidatePermutation(perm, e.inst.Jobs); err != nil {
		return 0, err
	}
	return e.PrefixMakespan(perm), nil
}

// PrefixMakespan считает время завершения последней работы prefix на последнем станке.
// Индексы не проверяются.
func (e *Evaluator) PrefixMakespan(prefix []int) int64 {
	for m := range e.machineCompletion {
		e.machineCompletion[m] = 0
	}
	if len(prefix) == 0 {
		return 0
	}

	for _, job := range prefix {
		rec := e.inst.Records[job]
		e.machineCompletion[0] += int64(rec.Time(0))
		for m := 1; m < e.inst.Machines; m++ {
			left := e.machineCompletion[m-1]
			up := e.machineCompletion[m]
			if left > up {
				e.machineCompletion[m] = left + int64(rec.Time(m))
			} else {
				e.machineCompletion[m] = up + int64(rec.Time(m))
			}
		}
	}
	return e.machineCompletion[e.inst.Machines-1]
}

func (e *Evaluator) MustMakespan(perm []int) int64 {
	ms, err := e.Makespan(perm)
	if err != nil {
		panic(err)
	}
	return ms
}
