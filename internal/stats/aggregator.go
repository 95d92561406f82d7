// Package stats — приёмники отчётов о локальных оптимумах, общие для всех агентов процесса.
package stats

import (
	"math"
	"sync"
	"sync/atomic"

	"flowShopILS/internal/stagnation"
)

// Aggregator считает найденные локальные оптимумы. Безопасен для конкурентного использования.
type Aggregator struct {
	count atomic.Int64

	mu     sync.Mutex
	values int64
	best   float64
	last   float64
	sum    float64
}

func NewAggregator() *Aggregator {
	return &Aggregator{best: math.Inf(1)}
}

func (a *Aggregator) RecordLocalOptimumCount() {
	a.count.Add(1)
}

func (a *Aggregator) RecordLocalOptimumValue(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values++
	a.last = value
	a.sum += value
	if value < a.best {
		a.best = value
	}
}

// Snapshot — согласованный срез значений агрегатора.
type Snapshot struct {
	Count  int64
	Values int64
	Best   float64
	Last   float64
	Mean   float64
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Snapshot{
		Count:  a.count.Load(),
		Values: a.values,
		Best:   a.best,
		Last:   a.last,
	}
	if a.values > 0 {
		s.Mean = a.sum / float64(a.values)
	}
	return s
}

// Multi рассылает отчёты во все приёмники по порядку.
type Multi []stagnation.Sink

func (m Multi) RecordLocalOptimumCount() {
	for _, s := range m {
		s.RecordLocalOptimumCount()
	}
}

func (m Multi) RecordLocalOptimumValue(value float64) {
	for _, s := range m {
		s.RecordLocalOptimumValue(value)
	}
}
