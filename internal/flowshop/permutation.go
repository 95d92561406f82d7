package flowshop

import "fmt"

func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return fmt.Errorf("permutation length must be %d (got %d)", n, len(perm))
	}
	seen := make([]bool, n)
	for i, v := range perm {
		if v < 0 || v >= n {
			return fmt.Errorf("perm[%d]=%d out of range [0,%d)", i, v, n)
		}
		if seen[v] {
			return fmt.Errorf("duplicate job id %d in permutation", v)
		}
		seen[v] = true
	}
	return nil
}

// PermutationOf переводит последовательность работ в индексы Instance.Records.
// Пустые слоты дают -1.
func PermutationOf(jobs []*Job) []int {
	perm := make([]int, len(jobs))
	for i, job := range jobs {
		if job == nil {
			perm[i] = -1
			continue
		}
		perm[i] = job.Index()
	}
	return perm
}

// ValidateSequence проверяет, что jobs — перестановка всех работ inst.
// Ядро это не проверяет; вызывается драйвером и тестами.
func ValidateSequence(inst *Instance, jobs []*Job) error {
	if err := ValidatePermutation(PermutationOf(jobs), inst.Jobs); err != nil {
		return err
	}
	for i, job := range jobs {
		if inst.Records[job.Index()] != job {
			return fmt.Errorf("jobs[%d] (id %d) does not belong to the instance", i, job.ID)
		}
	}
	return nil
}
