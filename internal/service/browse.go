package service

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/showsaver/internal/domain"
	"github.com/bnema/showsaver/internal/port"
)

// BrowseService lists the catalog's new releases through the extractor,
// with a short single-entry TTL cache so the UI can poll the endpoint
// without hammering the upstream site. The TTL is plain data, not policy
// baked into the fetch path.
type BrowseService struct {
	browser port.Browser
	ttl     time.Duration
	now     func() time.Time

	mu        sync.Mutex
	cached    []domain.Release
	fetchedAt time.Time
}

func NewBrowseService(browser port.Browser, ttl time.Duration) *BrowseService {
	return &BrowseService{
		browser: browser,
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewReleases returns the cached list while it is fresh, refetching
// otherwise. forceRefresh bypasses the cache. The second return value
// reports whether the result came from cache; fetch errors never poison
// a previously cached list's slot (the stale data simply stays until a
// fetch succeeds, but is not returned past its TTL).
func (s *BrowseService) NewReleases(ctx context.Context, forceRefresh bool) ([]domain.Release, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !forceRefresh && s.cached != nil && s.now().Sub(s.fetchedAt) < s.ttl {
		return s.cached, true, nil
	}

	releases, err := s.browser.NewReleases(ctx)
	if err != nil {
		return nil, false, err
	}

	s.cached = releases
	s.fetchedAt = s.now()
	return releases, false, nil
}
