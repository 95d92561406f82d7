package flowshop

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

type Instance struct {
	Jobs     int
	Machines int
	// Records — работы в порядке загрузки; Records[i].ID == i+1.
	// После NewInstance/загрузки не изменяются.
	Records []*Job
}

// NewInstance строит экземпляр по плоской матрице времён jobs*machines (по строкам-работам).
// Ожидаемые времена совпадают с детерминированными.
func NewInstance(jobs, machines int, procTimes []int) (*Instance, error) {
	if jobs <= 0 {
		return nil, fmt.Errorf("jobs must be > 0 (got %d)", jobs)
	}
	if machines <= 0 {
		return nil, fmt.Errorf("machines must be > 0 (got %d)", machines)
	}
	if len(procTimes) != jobs*machines {
		return nil, fmt.Errorf("procTimes length must be jobs*machines=%d (got %d)", jobs*machines, len(procTimes))
	}
	inst := &Instance{Jobs: jobs, Machines: machines, Records: make([]*Job, jobs)}
	for i := 0; i < jobs; i++ {
		job := NewJob(i, machines)
		for m := 0; m < machines; m++ {
			v := procTimes[i*machines+m]
			if v < 0 || v > math.MaxInt32 {
				return nil, fmt.Errorf("procTimes[%d] must be in [0,%d] (got %d)", i*machines+m, math.MaxInt32, v)
			}
			job.SetTime(m, int32(v))
			job.SetExpTime(m, float64(v))
		}
		job.Finalize()
		inst.Records[i] = job
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	if inst == nil {
		return errors.New("instance is nil")
	}
	if inst.Jobs <= 0 {
		return fmt.Errorf("jobs must be > 0 (got %d)", inst.Jobs)
	}
	if inst.Machines <= 0 {
		return fmt.Errorf("machines must be > 0 (got %d)", inst.Machines)
	}
	if len(inst.Records) != inst.Jobs {
		return fmt.Errorf("records length must be jobs=%d (got %d)", inst.Jobs, len(inst.Records))
	}
	for i, job := range inst.Records {
		if job == nil {
			return fmt.Errorf("records[%d] is nil", i)
		}
		if job.Machines() != inst.Machines || len(job.expTimes) != inst.Machines {
			return fmt.Errorf("records[%d]: timing length must be %d (got %d)", i, inst.Machines, job.Machines())
		}
		for m := 0; m < inst.Machines; m++ {
			if job.Time(m) < 0 {
				return fmt.Errorf("records[%d] machine %d: time must be >= 0 (got %d)", i, m, job.Time(m))
			}
			if job.ExpTime(m) < 0 {
				return fmt.Errorf("records[%d] machine %d: expected time must be >= 0 (got %f)", i, m, job.ExpTime(m))
			}
		}
	}
	return nil
}

func (inst *Instance) Time(job, machine int) int32 {
	return inst.Records[job].Time(machine)
}

// TotalTime — сумма всех времён обработки экземпляра.
func (inst *Instance) TotalTime() int64 {
	var sum int64
	for _, job := range inst.Records {
		sum += job.Total()
	}
	return sum
}

// JobsCopy возвращает новый срез ссылок на работы (сами работы не копируются).
func (inst *Instance) JobsCopy() []*Job {
	out := make([]*Job, len(inst.Records))
	copy(out, inst.Records)
	return out
}

func RandomInstance(jobs, machines, minTime, maxTime int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("генератор случайных чисел не инициализирован (nil)")
	}
	if minTime < 0 || maxTime < 0 || maxTime < minTime {
		panic("invalid time bounds")
	}
	pt := make([]int, jobs*machines)
	span := maxTime - minTime + 1
	for i := range pt {
		pt[i] = minTime
		if span > 1 {
			pt[i] += rng.Intn(span)
		}
	}
	inst, err := NewInstance(jobs, machines, pt)
	if err != nil {
		panic(err)
	}
	return inst
}
