// Package store provides the bounded event history for toastyd.
package store

import (
	"cmp"
	"slices"
	"sync"

	"github.com/jmylchreest/toasty/internal/model"
)

// DefaultLimit is used when a store is created with a non-positive limit.
const DefaultLimit = 200

// ChangeType indicates the type of store change.
type ChangeType int

const (
	// ChangeTypeAdd indicates events were added.
	ChangeTypeAdd ChangeType = iota
	// ChangeTypeClear indicates all events were cleared.
	ChangeTypeClear
	// ChangeTypeTrim indicates old events were dropped to honour the limit.
	ChangeTypeTrim
)

// ChangeEvent signals store content changes.
type ChangeEvent struct {
	Type  ChangeType
	Count int
	Kind  model.Kind // Set for single adds
}

// Store keeps the most recent events in memory and appends every event to
// persistence. The file is compacted once it holds twice the limit.
type Store struct {
	mu     sync.RWMutex
	events []model.Event // Oldest first
	index  map[string]int
	limit  int

	persistence Persistence
	persisted   int // Records in the file since the last rewrite

	subscribers []chan ChangeEvent
	closed      bool
}

// NewStore creates a new Store keeping at most limit events.
// If persistence is not nil, it will be used to persist events.
func NewStore(persistence Persistence, limit int) *Store {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store{
		index:       make(map[string]int),
		limit:       limit,
		persistence: persistence,
	}
}

// Add appends an event, dropping the oldest ones beyond the limit.
func (s *Store) Add(e model.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if _, exists := s.index[e.ID]; exists {
		return nil
	}

	s.events = append(s.events, e)
	s.index[e.ID] = len(s.events) - 1
	trimmed := s.trimLocked()

	if s.persistence != nil {
		if err := s.persistence.Append(e); err != nil {
			return err
		}
		s.persisted++
		if s.persisted >= 2*s.limit {
			if err := s.persistence.Rewrite(s.events); err != nil {
				return err
			}
			s.persisted = len(s.events)
		}
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, Count: 1, Kind: e.Kind})
	if trimmed > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypeTrim, Count: trimmed})
	}
	return nil
}

// trimLocked drops the oldest events beyond the limit and rebuilds the index.
func (s *Store) trimLocked() int {
	excess := len(s.events) - s.limit
	if excess <= 0 {
		return 0
	}
	s.events = slices.Delete(s.events, 0, excess)
	s.reindexLocked()
	return excess
}

func (s *Store) reindexLocked() {
	clear(s.index)
	for i, e := range s.events {
		s.index[e.ID] = i
	}
}

// SetLimit changes the bound, trimming immediately if it shrank.
func (s *Store) SetLimit(limit int) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.limit = limit
	if trimmed := s.trimLocked(); trimmed > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypeTrim, Count: trimmed})
	}
}

// Limit returns the current bound.
func (s *Store) Limit() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limit
}

// Recent returns up to n events, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Newest(s.events, n)
}

// Newest returns up to n of events (oldest first) in newest-first order.
// n <= 0 returns all.
func Newest(events []model.Event, n int) []model.Event {
	if n <= 0 || n > len(events) {
		n = len(events)
	}
	out := make([]model.Event, 0, n)
	for i := len(events) - 1; i >= len(events)-n; i-- {
		out = append(out, events[i])
	}
	return out
}

// All returns every event, oldest first.
func (s *Store) All() []model.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// GetByID returns an event by its ULID.
func (s *Store) GetByID(id string) (model.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return model.Event{}, false
	}
	return s.events[i], true
}

// Count returns the number of events held in memory.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Subscribe returns a channel that receives change events.
func (s *Store) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 10)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscription.
func (s *Store) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = slices.Delete(s.subscribers, i, i+1)
			close(sub)
			return
		}
	}
}

// Hydrate loads the newest events from persistence into the store.
func (s *Store) Hydrate() error {
	if s.persistence == nil {
		return nil
	}

	events, err := s.persistence.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, e := range events {
		if _, exists := s.index[e.ID]; exists {
			continue
		}
		s.events = append(s.events, e)
		s.index[e.ID] = len(s.events) - 1
		added++
	}
	slices.SortStableFunc(s.events, func(a, b model.Event) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	s.reindexLocked()
	s.trimLocked()
	s.persisted = len(events)

	if added > 0 {
		s.notifyChange(ChangeEvent{Type: ChangeTypeAdd, Count: added})
	}
	return nil
}

// Clear removes all events from the store and its persistence.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	count := len(s.events)
	s.events = nil
	clear(s.index)

	if s.persistence != nil {
		if err := s.persistence.Clear(); err != nil {
			return err
		}
		s.persisted = 0
	}

	s.notifyChange(ChangeEvent{Type: ChangeTypeClear, Count: count})
	return nil
}

// Close releases resources and closes all subscriber channels.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil

	if s.persistence != nil {
		return s.persistence.Close()
	}
	return nil
}

// notifyChange sends a change event to all subscribers (non-blocking).
func (s *Store) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Channel full, skip
		}
	}
}

// Errors
var (
	ErrStoreClosed = storeError("store is closed")
)

type storeError string

func (e storeError) Error() string {
	return string(e)
}
