// Package throttle implements the login write-suppression cache: a
// best-effort, lossy map from email to the last recorded login time.
// Losing its state only costs extra store writes, never incorrect data.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Cache records the most recent login timestamp per email. Both methods
// may fail (an external backend can be unavailable); callers treat any
// error as "cannot use cache" and fall through to the store write.
type Cache interface {
	LastLogin(ctx context.Context, email string) (time.Time, bool, error)
	SetLastLogin(ctx context.Context, email string, at time.Time) error
}

// Memory is the in-process Cache. Entries expire by value comparison on
// the caller's side, so no background sweep is needed; retention only
// bounds memory growth.
type Memory struct {
	mu        sync.RWMutex
	last      map[string]time.Time
	retention time.Duration
}

// NewMemory builds an in-process cache. Entries older than retention are
// dropped opportunistically on write.
func NewMemory(retention time.Duration) *Memory {
	return &Memory{
		last:      make(map[string]time.Time),
		retention: retention,
	}
}

func (m *Memory) LastLogin(ctx context.Context, email string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.last[email]
	return t, ok, nil
}

func (m *Memory) SetLastLogin(ctx context.Context, email string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := at.Add(-m.retention)
	for k, v := range m.last {
		if v.Before(cutoff) {
			delete(m.last, k)
		}
	}
	m.last[email] = at
	return nil
}
