package mock

import (
	"context"

	"github.com/fwojciec/shopscrape"
)

var _ shopscrape.URLSet = (*URLSet)(nil)

// URLSet is a mock implementation of shopscrape.URLSet.
type URLSet struct {
	AddFn      func(url string) bool
	ContainsFn func(url string) bool
	LenFn      func() int
}

func (s *URLSet) Add(url string) bool {
	return s.AddFn(url)
}

func (s *URLSet) Contains(url string) bool {
	return s.ContainsFn(url)
}

func (s *URLSet) Len() int {
	return s.LenFn()
}

var _ shopscrape.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of shopscrape.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	return l.WaitFn(ctx, domain)
}
