package store

import (
	"sync"

	"github.com/jherrick/sattrack/internal/telemetry"
)

// UpdateBufferSize is the capacity of the update notification channel.
const UpdateBufferSize = 256

// Store is the thread-safe latest-position cache. It is written only by
// the feed manager's message path; view-side consumers read snapshots
// and subscribe to update notifications.
type Store struct {
	mu   sync.RWMutex
	sats map[int64]*telemetry.Satellite

	updates chan telemetry.Satellite
}

// New creates an empty store.
func New() *Store {
	return &Store{
		sats:    make(map[int64]*telemetry.Satellite),
		updates: make(chan telemetry.Satellite, UpdateBufferSize),
	}
}

// Upsert inserts or fully replaces the record for sat's NORAD id and
// notifies subscribers.
func (s *Store) Upsert(sat telemetry.Satellite) {
	s.mu.Lock()
	cp := sat
	s.sats[sat.Norad] = &cp
	s.mu.Unlock()

	s.notify(sat)
}

// Get returns the record for a NORAD id.
func (s *Store) Get(norad int64) (telemetry.Satellite, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sat, ok := s.sats[norad]
	if !ok {
		return telemetry.Satellite{}, false
	}
	return *sat, true
}

// Snapshot returns a copy of all current records. Iteration order is not
// meaningful.
func (s *Store) Snapshot() []telemetry.Satellite {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]telemetry.Satellite, 0, len(s.sats))
	for _, sat := range s.sats {
		result = append(result, *sat)
	}
	return result
}

// Len returns the number of tracked satellites.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sats)
}

// Updates returns the channel of record change notifications.
func (s *Store) Updates() <-chan telemetry.Satellite {
	return s.updates
}

// notify sends an update notification without blocking the writer. When
// the channel is full the oldest pending notification is dropped in
// favor of the new one.
func (s *Store) notify(sat telemetry.Satellite) {
	select {
	case s.updates <- sat:
	default:
		select {
		case <-s.updates:
			s.updates <- sat
		default:
		}
	}
}
