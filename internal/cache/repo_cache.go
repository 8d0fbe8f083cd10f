package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/clintrovert/firstissue/pkg/types"
)

// ErrNotFound is returned when repository metadata could not be obtained
var ErrNotFound = errors.New("repository metadata not found")

// Fetcher retrieves repository metadata by API URL
type Fetcher interface {
	GetRepository(ctx context.Context, repositoryURL string) (*types.RepositoryMetadata, error)
}

// Stats is a point-in-time view of cache activity
type Stats struct {
	Entries  int   `json:"entries"`
	Hits     int64 `json:"hits"`
	Misses   int64 `json:"misses"`
	Failures int64 `json:"failures"`
}

// DefaultFetchTimeout bounds a shared fetch once it is detached from the
// caller that started it
const DefaultFetchTimeout = 30 * time.Second

// RepoCache memoizes repository metadata for as long as it is kept. Concurrent
// lookups of the same URL share a single fetch, and only successful fetches
// are stored.
type RepoCache struct {
	fetcher      Fetcher
	logger       *zap.Logger
	fetchTimeout time.Duration

	mu      sync.RWMutex
	entries map[string]types.RepositoryMetadata
	group   singleflight.Group

	served   atomic.Int64
	fetched  atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// NewRepoCache creates an empty cache backed by fetcher
func NewRepoCache(fetcher Fetcher, logger *zap.Logger) *RepoCache {
	return &RepoCache{
		fetcher:      fetcher,
		logger:       logger,
		fetchTimeout: DefaultFetchTimeout,
		entries:      make(map[string]types.RepositoryMetadata),
	}
}

// fetchPanic carries a fetcher panic out of the shared flight so it can be
// raised again in each waiting caller's goroutine
type fetchPanic struct {
	value interface{}
}

func (p *fetchPanic) Error() string {
	return fmt.Sprintf("repository fetch panicked: %v", p.value)
}

// GetOrFetch returns cached metadata for repositoryURL, fetching it on the
// first request. Errors wrap ErrNotFound and leave the cache untouched so a
// later call may retry. A caller only stops waiting when its own ctx is done;
// the shared fetch keeps running for the others.
func (c *RepoCache) GetOrFetch(ctx context.Context, repositoryURL string) (types.RepositoryMetadata, error) {
	if repo, ok := c.lookup(repositoryURL); ok {
		c.served.Add(1)
		return repo, nil
	}

	ch := c.group.DoChan(repositoryURL, func() (interface{}, error) {
		return c.fetch(ctx, repositoryURL)
	})

	select {
	case <-ctx.Done():
		return types.RepositoryMetadata{}, fmt.Errorf("%w: %s: %w", ErrNotFound, repositoryURL, ctx.Err())
	case res := <-ch:
		var panicked *fetchPanic
		if errors.As(res.Err, &panicked) {
			panic(panicked.value)
		}
		if res.Err != nil {
			c.logger.Warn("repository metadata unavailable",
				zap.String("repository_url", repositoryURL),
				zap.Error(res.Err),
			)
			return types.RepositoryMetadata{}, fmt.Errorf("%w: %s: %w", ErrNotFound, repositoryURL, res.Err)
		}

		c.served.Add(1)
		return res.Val.(types.RepositoryMetadata), nil
	}
}

func (c *RepoCache) fetch(ctx context.Context, repositoryURL string) (v interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.failures.Add(1)
			v, err = nil, &fetchPanic{value: r}
		}
	}()

	// another caller may have stored it while we waited for the group
	if repo, ok := c.lookup(repositoryURL); ok {
		return repo, nil
	}

	// the flight is shared, so the starting caller's cancellation must not end it
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
	defer cancel()

	c.misses.Add(1)
	repo, err := c.fetcher.GetRepository(fetchCtx, repositoryURL)
	if err != nil {
		c.failures.Add(1)
		return nil, err
	}
	if repo == nil {
		c.failures.Add(1)
		return nil, fmt.Errorf("%w: empty metadata", types.ErrMalformedResponse)
	}

	c.mu.Lock()
	c.entries[repositoryURL] = *repo
	c.mu.Unlock()
	c.fetched.Add(1)

	return *repo, nil
}

// Len returns the number of cached repositories
func (c *RepoCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats reports hit, miss and failure counts. A hit is any successful lookup
// that did not itself store a fresh fetch.
func (c *RepoCache) Stats() Stats {
	return Stats{
		Entries:  c.Len(),
		Hits:     max(c.served.Load()-c.fetched.Load(), 0),
		Misses:   c.misses.Load(),
		Failures: c.failures.Load(),
	}
}

func (c *RepoCache) lookup(repositoryURL string) (types.RepositoryMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	repo, ok := c.entries[repositoryURL]
	return repo, ok
}
