// Package bloom provides the per-session set of visited product URLs.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/fwojciec/shopscrape"
)

var _ shopscrape.URLSet = (*Set)(nil)

// Set records canonical product URLs. The Bloom filter is a compact
// pre-check: a filter miss answers without touching the exact index, and
// the index confirms filter hits so the set never reports a false positive.
// EstimatedCount exposes the filter's view for session summaries.
type Set struct {
	mu    sync.Mutex
	f     *bloom.BloomFilter
	exact map[string]struct{}
}

// NewSet creates a set sized for n expected URLs with the given filter
// false positive rate.
func NewSet(n uint, fpRate float64) *Set {
	return &Set{
		f:     bloom.NewWithEstimates(n, fpRate),
		exact: make(map[string]struct{}, n),
	}
}

// Add records url and reports whether it was new.
func (s *Set) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.contains(url) {
		return false
	}
	s.f.AddString(url)
	s.exact[url] = struct{}{}
	return true
}

// Contains reports whether url was added.
func (s *Set) Contains(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contains(url)
}

// Len returns the number of distinct URLs added.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.exact)
}

// EstimatedCount returns the filter's approximation of Len.
func (s *Set) EstimatedCount() uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint(s.f.ApproximatedSize())
}

func (s *Set) contains(url string) bool {
	if !s.f.TestString(url) {
		return false
	}
	_, ok := s.exact[url]
	return ok
}
