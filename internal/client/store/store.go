// Package store holds the observable state of the upload queue.
//
// The scheduler is the only writer. Readers either take the latest snapshot
// or subscribe to the stream of published snapshots; a subscriber that falls
// behind skips straight to the newest one.
package store

import (
	"sync"

	"github.com/dmitrijs2005/mediavault/internal/client/models"
)

type Store struct {
	mu     sync.RWMutex
	latest models.Snapshot
	subs   map[int]chan models.Snapshot
	nextID int
	closed bool
}

func New() *Store {
	return &Store{
		latest: models.NewSnapshot(),
		subs:   map[int]chan models.Snapshot{},
	}
}

// Snapshot returns a copy of the latest published state.
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest.Clone()
}

// Subscribe returns a channel that first receives the current snapshot and
// then every later one, coalesced for slow readers. The channel is closed by
// the returned cancel func or by Close.
func (s *Store) Subscribe() (<-chan models.Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan models.Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.latest.Clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Publish replaces the latest snapshot and fans it out. It never blocks on
// subscribers.
func (s *Store) Publish(snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.latest = snap.Clone()
	for _, ch := range s.subs {
		// Drop the undelivered snapshot, if any, in favour of the new one.
		select {
		case <-ch:
		default:
		}
		ch <- s.latest.Clone()
	}
}

// Close ends every subscription. Later publishes are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
