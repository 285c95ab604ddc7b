package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/pitwall/pitwall/internal/monitor"
)

// Entry is one session's latest status with its wall-clock arrival time.
type Entry struct {
	SessionID string
	Status    monitor.Status
	UpdatedAt time.Time
}

// Store holds the latest status per session. Reads and writes may come from
// any goroutine. Sessions that stop updating go stale after the TTL: List
// stops returning them, and the Run loop eventually drops them entirely,
// which is how a silent feed surfaces as "offline" to the HTTP consumers.
type Store struct {
	ttl time.Duration
	now func() time.Time // swapped out in tests

	mu       sync.RWMutex
	sessions map[string]Entry
}

// New creates a Store with the given staleness TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]Entry),
	}
}

// TTL returns the configured staleness TTL.
func (s *Store) TTL() time.Duration { return s.ttl }

// Put records st as the session's latest status, stamped with the current
// time.
func (s *Store) Put(sessionID string, st monitor.Status) {
	now := s.now()
	s.mu.Lock()
	s.sessions[sessionID] = Entry{SessionID: sessionID, Status: st, UpdatedAt: now}
	s.mu.Unlock()
}

// Get returns the session's entry, found or not. The entry may already be
// stale; callers that care use Fresh.
func (s *Store) Get(sessionID string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	return e, ok
}

// Fresh reports whether the entry's UpdatedAt is within the TTL.
func (s *Store) Fresh(e Entry) bool {
	return e.UpdatedAt.After(s.now().Add(-s.ttl))
}

// List returns every fresh entry, ordered by session id so API and broadcast
// output is stable.
func (s *Store) List() []Entry {
	cutoff := s.now().Add(-s.ttl)

	s.mu.RLock()
	out := make([]Entry, 0, len(s.sessions))
	for _, e := range s.sessions {
		if e.UpdatedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

// Count returns how many entries are held, stale included.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Evict drops entries stale as of now and returns how many went.
func (s *Store) Evict(now time.Time) int {
	cutoff := now.Add(-s.ttl)
	removed := 0

	s.mu.Lock()
	for id, e := range s.sessions {
		if !e.UpdatedAt.After(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}

// Run evicts stale sessions on a timer until ctx is cancelled. The timer
// ticks at half the TTL, floored at one second, so sessions disappear within
// roughly one and a half TTLs of their last update.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: dropped stale sessions", "count", n)
			}
		}
	}
}
