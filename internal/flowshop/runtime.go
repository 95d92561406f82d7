package flowshop

import "sync/atomic"

// Runtime — общий для всех агентов процесса контекст со счётчиком решений.
// Передаётся в конструкторы вместо глобальных переменных.
type Runtime struct {
	solutions atomic.Int64
}

func NewRuntime() *Runtime { return &Runtime{} }

// nextSolutionID выдаёт возрастающий номер решения, начиная с 1.
// Для nil-контекста возвращает 0.
func (rt *Runtime) nextSolutionID() int64 {
	if rt == nil {
		return 0
	}
	return rt.solutions.Add(1)
}

// Solutions — сколько решений создано в этом контексте.
func (rt *Runtime) Solutions() int64 {
	if rt == nil {
		return 0
	}
	return rt.solutions.Load()
}
