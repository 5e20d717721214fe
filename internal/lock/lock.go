// Package lock serializes work that shares a key, such as concurrent
// generation requests for the same course and artifact kind.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scholar-api/internal/domain"
)

// ErrNotAcquired is returned when a lock could not be obtained before the
// context ended.
var ErrNotAcquired = errors.New("lock not acquired")

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func()

// Locker acquires exclusive access to a key.
type Locker interface {
	// Lock blocks until the key is held or ctx ends.
	Lock(ctx context.Context, key string) (Unlock, error)
}

// GenerationKey is the serialization key for one course and artifact kind.
func GenerationKey(courseID uuid.UUID, kind domain.TemplateKind) string {
	return fmt.Sprintf("generation:%s:%s", kind, courseID)
}

// Memory is an in-process keyed mutex. Entries are reference counted and
// removed once no holder or waiter remains.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// NewMemory creates an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*entry)}
}

// Lock implements Locker.
func (m *Memory) Lock(ctx context.Context, key string) (Unlock, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		m.entries[key] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		m.release(key, e)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			m.release(key, e)
		})
	}, nil
}

func (m *Memory) release(key string, e *entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(m.entries, key)
	}
}

// size reports the number of tracked keys.
func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
