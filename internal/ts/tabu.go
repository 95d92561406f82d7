package ts

// tabuList — табу-список: кольцевой буфер фиксированного размера
// с map для быстрой проверки табуированности.
type tabuList struct {
	m   map[uint64]int // ключ → итерация истечения табу
	key []uint64       // кольцевой буфер ключей
	exp []int          // соответствующие сроки истечения
	i   int            // текущая позиция в кольце
}

func newTabuList(capacity int) *tabuList {
	capacity = max(capacity, 8)
	return &tabuList{
		m:   make(map[uint64]int, capacity*2),
		key: make([]uint64, capacity),
		exp: make([]int, capacity),
	}
}

// IsTabu проверяет, запрещён ли ход на итерации iter.
func (t *tabuList) IsTabu(k uint64, iter int) bool {
	exp, ok := t.m[k]
	return ok && exp > iter
}

// Add запрещает ход до итерации expiry; самый старый ключ кольца вытесняется.
func (t *tabuList) Add(k uint64, expiry int) {
	if old := t.key[t.i]; old != 0 {
		if cur, ok := t.m[old]; ok && cur == t.exp[t.i] {
			delete(t.m, old)
		}
	}
	t.key[t.i] = k
	t.exp[t.i] = expiry
	t.m[k] = expiry
	t.i = (t.i + 1) % len(t.key)
}

// Clear снимает все запреты.
func (t *tabuList) Clear() {
	clear(t.m)
	clear(t.key)
	clear(t.exp)
	t.i = 0
}

// moveKey — ключ хода «работа job из позиции from в позицию to».
// ID работ начинаются с 1, поэтому ключ не бывает нулевым.
func moveKey(job, from, to int) uint64 {
	return (uint64(uint32(job)) << 42) |
		(uint64(uint32(from)) << 21) |
		uint64(uint32(to))
}
