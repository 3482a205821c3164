// Package distance memoizes great-circle distances between coordinates.
package distance

import (
	"github.com/couchcryptid/shipping-estimate-service/internal/cache"
	"github.com/couchcryptid/shipping-estimate-service/internal/domain"
	"github.com/couchcryptid/shipping-estimate-service/internal/observability"
)

// DefaultCacheSize is the cache capacity used when none is configured.
const DefaultCacheSize = 1000

// route is the cache key. Order matters: (a, b) and (b, a) are cached separately.
type route struct {
	from domain.Coordinate
	to   domain.Coordinate
}

// Engine computes haversine distances in miles behind a bounded LRU cache.
// It is safe for concurrent use.
type Engine struct {
	cache   *cache.LRU[route, float64]
	metrics *observability.Metrics
}

// NewEngine creates an Engine caching up to cacheSize routes.
func NewEngine(cacheSize int, metrics *observability.Metrics) *Engine {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Engine{
		cache:   cache.New[route, float64](cacheSize),
		metrics: metrics,
	}
}

// Distance returns the great-circle distance from a to b in miles.
func (e *Engine) Distance(a, b domain.Coordinate) float64 {
	key := route{from: a, to: b}
	if miles, ok := e.cache.Get(key); ok {
		e.metrics.DistanceCache.WithLabelValues("hit").Inc()
		return miles
	}
	e.metrics.DistanceCache.WithLabelValues("miss").Inc()

	miles := domain.Haversine(a, b)
	e.cache.Put(key, miles)
	return miles
}

// Cached returns the number of routes currently memoized.
func (e *Engine) Cached() int {
	return e.cache.Len()
}
