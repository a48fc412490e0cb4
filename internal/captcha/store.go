package captcha

import (
	"container/list"
	"errors"
	"sync"
	"time"
)

var (
	// ErrExpiredOrMissing is returned when the id was never issued, already
	// consumed, or aged out of the store.
	ErrExpiredOrMissing = errors.New("captcha expired or missing")
)

type entry struct {
	id       string
	answer   string
	deadline time.Time
}

// Store is an in-process, TTL-evicted, capacity-bounded cache of captcha
// answers. Take is the only read path: an entry is removed on its first
// lookup so a captcha can never validate twice.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	capacity int
	entries  map[string]*list.Element
	order    *list.List // oldest at front

	now func() time.Time
}

// NewStore builds a Store. ttl <= 0 defaults to 10 minutes, capacity <= 0
// defaults to 10000 entries.
func NewStore(ttl time.Duration, capacity int) *Store {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if capacity <= 0 {
		capacity = 10000
	}
	return &Store{
		ttl:      ttl,
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
	}
}

// Put records id -> answer with a fresh TTL. When the store is full, expired
// entries are dropped first, then the oldest live entry.
func (s *Store) Put(id, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.pruneExpiredLocked(now)
	if el, ok := s.entries[id]; ok {
		s.order.Remove(el)
		delete(s.entries, id)
	}
	for len(s.entries) >= s.capacity {
		oldest := s.order.Front()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.entries, oldest.Value.(*entry).id)
	}
	s.entries[id] = s.order.PushBack(&entry{id: id, answer: answer, deadline: now.Add(s.ttl)})
}

// Take atomically removes and returns the answer bound to id. A second Take
// with the same id fails, as does a Take after the TTL elapsed.
func (s *Store) Take(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[id]
	if !ok {
		return "", ErrExpiredOrMissing
	}
	e := el.Value.(*entry)
	s.order.Remove(el)
	delete(s.entries, id)
	if !s.now().Before(e.deadline) {
		return "", ErrExpiredOrMissing
	}
	return e.answer, nil
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) pruneExpiredLocked(now time.Time) {
	for el := s.order.Front(); el != nil; {
		e := el.Value.(*entry)
		if now.Before(e.deadline) {
			break
		}
		next := el.Next()
		s.order.Remove(el)
		delete(s.entries, e.id)
		el = next
	}
}
