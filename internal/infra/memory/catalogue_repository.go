package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mstokur-collab/sosyal-bilgiler-bilgi-yarismasi-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

// CatalogueLoader fetches the question catalogue from a backing store.
type CatalogueLoader interface {
	LoadCatalogue(ctx context.Context) ([]domain.Question, error)
}

// CatalogueRepository caches the catalogue with TTL to avoid repeated store
// hits; authoring-side changes show up once the cache expires, never inside a
// round already in progress.
type CatalogueRepository struct {
	loader CatalogueLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Question
	expiresAt time.Time
}

func NewCatalogueRepository(loader CatalogueLoader, ttl time.Duration) *CatalogueRepository {
	return &CatalogueRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogueRepository) Catalogue(ctx context.Context) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if r.cached != nil && r.expiresAt.After(now) {
		cached := r.cached
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("catalogue", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.cached != nil && r.expiresAt.After(now) {
			cached := r.cached
			r.mu.RUnlock()
			return cached, nil
		}
		r.mu.RUnlock()

		catalogue, err := r.loader.LoadCatalogue(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cached = catalogue
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return catalogue, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *CatalogueRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogueLoader serves an in-memory question list (tests, demos, and
// the standalone server without postgres).
type StaticCatalogueLoader struct {
	questions []domain.Question
}

func NewStaticCatalogueLoader(questions []domain.Question) *StaticCatalogueLoader {
	return &StaticCatalogueLoader{questions: questions}
}

func (l *StaticCatalogueLoader) LoadCatalogue(context.Context) ([]domain.Question, error) {
	return l.questions, nil
}
