package memstore

import (
	"fmt"
	"sync"
)

// table is an insertion ordered map of rows guarded by a mutex
type table[T any] struct {
	mu      sync.RWMutex
	rows    map[string]T
	order   []string
	prefix  string
	counter uint64
}

func newTable[T any](prefix string) *table[T] {
	return &table[T]{
		rows:   make(map[string]T),
		order:  make([]string, 0),
		prefix: prefix,
	}
}

// nextID must be called with mu held
func (t *table[T]) nextID() string {
	t.counter++
	return fmt.Sprintf("%s%014d", t.prefix, t.counter)
}

// insert must be called with mu held
func (t *table[T]) insert(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = row
}

func (t *table[T]) get(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	return row, ok
}

// filter returns the rows matching keep in insertion order, at most limit when limit > 0
func (t *table[T]) filter(keep func(T) bool, limit int) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]T, 0)
	for _, id := range t.order {
		row := t.rows[id]
		if keep == nil || keep(row) {
			out = append(out, row)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}
