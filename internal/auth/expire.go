package auth

import (
	"container/heap"
	"sync"
	"time"
)

// ExpiringMap is a small in-process map whose entries vanish after a fixed
// duration. Expired entries are swept lazily on access via a min-heap of
// insertion times, so no background goroutine is needed. Safe for concurrent
// use.
type ExpiringMap[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]expiringEntry[V]
	order    expiryHeap[K]
	duration time.Duration
}

type expiringEntry[V any] struct {
	at    time.Time
	value V
}

type expiryItem[K comparable] struct {
	at  time.Time
	key K
}

type expiryHeap[K comparable] []expiryItem[K]

func (h expiryHeap[K]) Len() int            { return len(h) }
func (h expiryHeap[K]) Less(i, j int) bool  { return h[i].at.Before(h[j].at) }
func (h expiryHeap[K]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap[K]) Push(x any)         { *h = append(*h, x.(expiryItem[K])) }
func (h *expiryHeap[K]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// NewExpiringMap creates an ExpiringMap whose entries live for duration.
func NewExpiringMap[K comparable, V any](duration time.Duration) *ExpiringMap[K, V] {
	return &ExpiringMap[K, V]{
		entries:  make(map[K]expiringEntry[V]),
		duration: duration,
	}
}

// Set stores a value, replacing any previous one and resetting its lifetime.
func (m *ExpiringMap[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.entries[key] = expiringEntry[V]{at: now, value: value}
	heap.Push(&m.order, expiryItem[K]{at: now, key: key})
	m.sweep(now)
}

// Get returns the value for key if it has not expired.
func (m *ExpiringMap[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(time.Now())
	entry, ok := m.entries[key]
	return entry.value, ok
}

// Delete removes key immediately.
func (m *ExpiringMap[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// sweep pops heap items past the deadline. An item whose map entry was
// re-inserted later is pushed back with its current time instead of being
// dropped. Caller holds the lock.
func (m *ExpiringMap[K, V]) sweep(now time.Time) {
	deadline := now.Add(-m.duration)
	for m.order.Len() > 0 {
		item := m.order[0]
		if item.at.After(deadline) {
			return
		}
		heap.Pop(&m.order)

		entry, ok := m.entries[item.key]
		if !ok {
			continue
		}
		if entry.at.After(deadline) {
			heap.Push(&m.order, expiryItem[K]{at: entry.at, key: item.key})
		} else {
			delete(m.entries, item.key)
		}
	}
}
