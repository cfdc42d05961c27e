package clock

import (
	"sync"
	"time"
)

// Clock источник текущего времени для рассылки и дневного лога
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Real системные часы
func Real() Clock {
	return realClock{}
}

// MockClock управляемые часы для тестов; безопасны при конкурентном доступе
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMockClock(now time.Time) *MockClock {
	return &MockClock{now: now}
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Add сдвигает часы вперёд (или назад при отрицательном d)
func (c *MockClock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
