// Threatcast - Live Threat Feed Aggregation and Streaming
// Copyright 2026 C. Wadley (cwadley)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cwadley/threatcast

// Package dedup provides the bounded recency set used by every source
// adapter to suppress re-emission of previously seen items.
package dedup

import (
	"container/list"
	"sync"
	"time"
)

// SeenSet remembers dedup keys in insertion order. When the set grows past
// its cap it is trimmed to half capacity, discarding the oldest insertions.
// A zero TTL disables expiry; time-boxed sources set one so stale keys fall
// out even without cap pressure.
type SeenSet struct {
	mu    sync.Mutex
	cap   int
	ttl   time.Duration
	order *list.List               // oldest insertion at back
	items map[string]*list.Element // key -> element

	now func() time.Time
}

type entry struct {
	key string
	exp time.Time
}

// NewSeenSet creates a recency set. maxKeys <= 0 defaults to 2000.
func NewSeenSet(maxKeys int, ttl time.Duration) *SeenSet {
	if maxKeys <= 0 {
		maxKeys = 2000
	}
	return &SeenSet{
		cap:   maxKeys,
		ttl:   ttl,
		order: list.New(),
		items: make(map[string]*list.Element, maxKeys),
		now:   time.Now,
	}
}

// Seen reports whether key is present and unexpired. It does not refresh
// insertion order: eviction age is the original insertion, not last sighting.
func (s *SeenSet) Seen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return false
	}
	en := el.Value.(entry)
	if s.ttl > 0 && s.now().After(en.exp) {
		s.order.Remove(el)
		delete(s.items, key)
		return false
	}
	return true
}

// Mark inserts key. If the set exceeds its cap it is trimmed to half
// capacity, oldest insertions first.
func (s *SeenSet) Mark(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; ok {
		return
	}

	var exp time.Time
	if s.ttl > 0 {
		exp = s.now().Add(s.ttl)
	}
	s.items[key] = s.order.PushFront(entry{key: key, exp: exp})

	if s.order.Len() > s.cap {
		s.trimLocked(s.cap / 2)
	}
}

// trimLocked removes oldest insertions until at most keep entries remain.
func (s *SeenSet) trimLocked(keep int) {
	for s.order.Len() > keep {
		back := s.order.Back()
		if back == nil {
			return
		}
		s.order.Remove(back)
		delete(s.items, back.Value.(entry).key)
	}
}

// Len returns the current number of remembered keys.
func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// Cap returns the configured maximum before a trim triggers.
func (s *SeenSet) Cap() int {
	return s.cap
}
