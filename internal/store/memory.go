// Package store keeps live games in memory and persists snapshots of them.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
)

var (
	// ErrNotFound is returned when no entry exists for an ID.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned by Create when the ID is already taken.
	ErrExists = errors.New("already exists")
)

// Store holds live values keyed by game ID.
type Store[T any] interface {
	Create(ctx context.Context, id string, v T) error
	Get(ctx context.Context, id string) (T, error)
	Delete(ctx context.Context, id string) error
	Sweep(ctx context.Context) []string
}

type entry[T any] struct {
	value    T
	lastUsed time.Time
}

// MemoryStore is an in-process Store. Entries that have not been read for
// longer than the TTL are dropped by Sweep. A zero TTL never expires.
type MemoryStore[T any] struct {
	mu       sync.Mutex
	clock    quartz.Clock
	ttl      time.Duration
	entries  map[string]*entry[T]
	onExpire func(id string, v T)
}

var _ Store[int] = (*MemoryStore[int])(nil)

// NewMemoryStore creates an empty store using clock for expiry.
func NewMemoryStore[T any](clock quartz.Clock, ttl time.Duration) *MemoryStore[T] {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryStore[T]{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]*entry[T]),
	}
}

// OnExpire registers a callback run by Sweep for each expired entry. It is
// called without the store lock held.
func (s *MemoryStore[T]) OnExpire(fn func(id string, v T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onExpire = fn
}

func (s *MemoryStore[T]) Create(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; ok {
		return fmt.Errorf("game %s: %w", id, ErrExists)
	}
	s.entries[id] = &entry[T]{value: v, lastUsed: s.clock.Now()}
	return nil
}

// Get returns the value for id and refreshes its idle timer.
func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	e.lastUsed = s.clock.Now()
	return e.value, nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	delete(s.entries, id)
	return nil
}

// Len returns the number of live entries.
func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep removes entries idle for longer than the TTL and returns their IDs
// in sorted order.
func (s *MemoryStore[T]) Sweep(_ context.Context) []string {
	if s.ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	now := s.clock.Now()
	expired := make(map[string]T)
	for id, e := range s.entries {
		if now.Sub(e.lastUsed) > s.ttl {
			expired[id] = e.value
			delete(s.entries, id)
		}
	}
	onExpire := s.onExpire
	s.mu.Unlock()

	ids := make([]string, 0, len(expired))
	for id := range expired {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if onExpire != nil {
		for _, id := range ids {
			onExpire(id, expired[id])
		}
	}
	return ids
}

// Run sweeps every interval until ctx is cancelled.
func (s *MemoryStore[T]) Run(ctx context.Context, interval time.Duration) error {
	w := s.clock.TickerFunc(ctx, interval, func() error {
		s.Sweep(ctx)
		return nil
	}, "store", "sweep")
	err := w.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
