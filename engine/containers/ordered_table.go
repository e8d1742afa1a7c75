package containers

import "golang.org/x/exp/constraints"

// OrderedTable maps keys to values and iterates in insertion order.
// Removal keeps the relative order of the remaining entries.
type OrderedTable[K constraints.Ordered, V any] struct {
	index map[K]int
	keys  []K
	vals  []V
}

func NewOrderedTable[K constraints.Ordered, V any]() *OrderedTable[K, V] {
	return &OrderedTable[K, V]{index: make(map[K]int)}
}

// Put inserts or replaces the value for k. Replacing keeps the original position.
func (t *OrderedTable[K, V]) Put(k K, v V) {
	if i, ok := t.index[k]; ok {
		t.vals[i] = v
		return
	}
	t.index[k] = len(t.keys)
	t.keys = append(t.keys, k)
	t.vals = append(t.vals, v)
}

func (t *OrderedTable[K, V]) Get(k K) (V, bool) {
	i, ok := t.index[k]
	if !ok {
		var zero V
		return zero, false
	}
	return t.vals[i], true
}

func (t *OrderedTable[K, V]) Has(k K) bool {
	_, ok := t.index[k]
	return ok
}

// Delete removes k and reports whether it was present.
func (t *OrderedTable[K, V]) Delete(k K) bool {
	i, ok := t.index[k]
	if !ok {
		return false
	}
	delete(t.index, k)
	t.keys = append(t.keys[:i], t.keys[i+1:]...)
	t.vals = append(t.vals[:i], t.vals[i+1:]...)
	for j := i; j < len(t.keys); j++ {
		t.index[t.keys[j]] = j
	}
	return true
}

func (t *OrderedTable[K, V]) Len() int {
	return len(t.keys)
}

// Keys returns a copy of the keys in insertion order.
func (t *OrderedTable[K, V]) Keys() []K {
	out := make([]K, len(t.keys))
	copy(out, t.keys)
	return out
}

// Each calls fn for every entry in insertion order until fn returns false.
func (t *OrderedTable[K, V]) Each(fn func(k K, v V) bool) {
	for i := range t.keys {
		if !fn(t.keys[i], t.vals[i]) {
			return
		}
	}
}

func (t *OrderedTable[K, V]) Clear() {
	t.index = make(map[K]int)
	t.keys = nil
	t.vals = nil
}
