// Package stagnation определяет момент, когда поиск перестал улучшать решение:
// последние W наблюдений стоимости совпадают.
package stagnation

import "math"

// Sink принимает отчёты о найденных локальных оптимумах (режим robust).
type Sink interface {
	RecordLocalOptimumCount()
	RecordLocalOptimumValue(value float64)
}

// Detector — скользящее окно последних W значений стоимости (FIFO).
// Не потокобезопасен: у каждого агента свой детектор.
type Detector struct {
	window []float64 // кольцевой буфер ёмкости W
	head   int       // индекс самого старого значения
	size   int
	robust bool
	sink   Sink
}

// New создаёт детектор с окном window. window == 0 отключает обнаружение.
// sink может быть nil.
func New(window int, robust bool, sink Sink) *Detector {
	d := &Detector{sink: sink}
	d.Configure(window, robust)
	return d
}

// Configure сбрасывает окно и задаёт новую ёмкость.
func (d *Detector) Configure(window int, robust bool) {
	if window < 0 {
		window = 0
	}
	d.window = make([]float64, window)
	d.head = 0
	d.size = 0
	d.robust = robust
}

// Reset очищает окно, сохраняя ёмкость.
func (d *Detector) Reset() {
	d.head = 0
	d.size = 0
}

func (d *Detector) Cap() int { return len(d.window) }

func (d *Detector) Len() int { return d.size }

func (d *Detector) Robust() bool { return d.robust }

// Observe добавляет значение; при заполненном окне вытесняется самое старое.
func (d *Detector) Observe(value float64) {
	w := len(d.window)
	if w == 0 {
		return
	}
	if d.size < w {
		d.window[(d.head+d.size)%w] = value
		d.size++
		return
	}
	d.window[d.head] = value
	d.head = (d.head + 1) % w
}

// Values возвращает содержимое окна от старого к новому.
func (d *Detector) Values() []float64 {
	out := make([]float64, d.size)
	for i := range out {
		out[i] = d.window[(d.head+i)%len(d.window)]
	}
	return out
}

// IsStagnant — окно заполнено и все значения побитово равны cost.
// В режиме robust каждый положительный ответ отправляется в Sink,
// поэтому вызывать его нужно не чаще одного раза на новое наблюдение.
func (d *Detector) IsStagnant(cost float64) bool {
	w := len(d.window)
	if w == 0 || d.size != w {
		return false
	}
	bits := math.Float64bits(cost)
	for _, v := range d.window {
		if math.Float64bits(v) != bits {
			return false
		}
	}
	if d.robust && d.sink != nil {
		d.sink.RecordLocalOptimumCount()
		d.sink.RecordLocalOptimumValue(cost)
	}
	return true
}

// IsBestImproving — минимум окна не меньше candidate.
// На пустом окне возвращает false.
func (d *Detector) IsBestImproving(candidate float64) bool {
	if d.size == 0 {
		return false
	}
	lo := math.Inf(1)
	for i := 0; i < d.size; i++ {
		lo = math.Min(lo, d.window[(d.head+i)%len(d.window)])
	}
	return lo >= candidate
}

// IsImproving — максимум окна строго больше candidate.
// На пустом окне возвращает false.
func (d *Detector) IsImproving(candidate float64) bool {
	if d.size == 0 {
		return false
	}
	hi := math.Inf(-1)
	for i := 0; i < d.size; i++ {
		hi = math.Max(hi, d.window[(d.head+i)%len(d.window)])
	}
	return hi > candidate
}
