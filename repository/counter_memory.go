package repository

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	count   int64
	expires time.Time
}

// MemoryCounter is an in-process CounterRepository for single-instance
// deployments and tests.
type MemoryCounter struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]*memoryWindow
}

func NewMemoryCounter() *MemoryCounter {
	return NewMemoryCounterWithClock(time.Now)
}

func NewMemoryCounterWithClock(now func() time.Time) *MemoryCounter {
	return &MemoryCounter{
		now:  now,
		data: make(map[string]*memoryWindow),
	}
}

func (m *MemoryCounter) Increment(_ context.Context, key string, window time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.data[key]
	if !ok || !now.Before(w.expires) {
		w = &memoryWindow{expires: now.Add(window)}
		m.data[key] = w
	}
	w.count++
	return w.count, nil
}

// Len reports how many keys are tracked, including expired ones.
func (m *MemoryCounter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
