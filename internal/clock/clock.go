// Package clock поставляет текущее время для решений о жизненном цикле слотов.
package clock

import (
	"sync"
	"time"
)

// Clock источник текущего момента
type Clock interface {
	Now() time.Time
}

// System реальные часы, всегда в UTC
type System struct{}

func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fixed часы с ручным управлением для тестов
type Fixed struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now.UTC()}
}

func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set переставляет часы на t
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t.UTC()
	f.mu.Unlock()
}

// Advance сдвигает часы вперёд на d
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
