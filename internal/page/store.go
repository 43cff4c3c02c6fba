package page

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/logging"
)

// ErrNotFound is returned for unknown or expired page ids.
var ErrNotFound = errors.New("page not found")

// Store keeps live pages until they sit idle for longer than the TTL.
// With a positive limit, adding a page to a full store evicts the page that
// has been idle longest.
type Store struct {
	mu     sync.Mutex
	pages  map[string]*Page
	ttl    time.Duration
	limit  int
	now    func() time.Time
	logger *zap.Logger
}

// NewStore creates a Store expiring pages idle for ttl and holding at most
// maxPages pages. Zero means unbounded.
func NewStore(ttl time.Duration, maxPages int, logger *zap.Logger) *Store {
	return &Store{
		pages:  make(map[string]*Page),
		ttl:    ttl,
		limit:  maxPages,
		now:    time.Now,
		logger: logging.OrNop(logger),
	}
}

// Put adds p, evicting the longest idle page if the store is full.
func (s *Store) Put(p *Page) {
	now := s.now()
	p.touch(now)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pages[p.ID]; !ok && s.limit > 0 && len(s.pages) >= s.limit {
		s.evictIdlest(now)
	}
	s.pages[p.ID] = p
}

func (s *Store) evictIdlest(now time.Time) {
	var (
		victim string
		idle   time.Duration = -1
	)
	for id, p := range s.pages {
		if d := p.idleSince(now); d > idle {
			victim, idle = id, d
		}
	}
	delete(s.pages, victim)
	s.logger.Debug("Evicted idle page", zap.String("page", victim), zap.Duration("idle", idle))
}

// Get returns the page with id and marks it as seen.
func (s *Store) Get(id string) (*Page, error) {
	s.mu.Lock()
	p, ok := s.pages[id]
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	p.touch(s.now())
	return p, nil
}

// Len returns the number of live pages.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// Sweep drops pages idle for longer than the TTL and returns how many.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, p := range s.pages {
		if p.idleSince(now) > s.ttl {
			delete(s.pages, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("Expired idle pages", zap.Int("removed", n), zap.Int("live", s.Len()))
			}
		}
	}
}
