package places

import (
	"sync"

	"github.com/assistive-ai/digitalcane/internal/geo"
	"github.com/assistive-ai/digitalcane/internal/models"
)

// ProximityCache holds the last successful nearby-search result set. It has
// no TTL; entries are invalidated only by the caller moving beyond the
// movement threshold. Written by the aggregator only.
type ProximityCache struct {
	mu         sync.Mutex
	thresholdM float64
	center     models.Coordinate
	places     []models.Place
	valid      bool
}

// NewProximityCache creates a cache with the given movement threshold in
// meters.
func NewProximityCache(thresholdMeters float64) *ProximityCache {
	return &ProximityCache{thresholdM: thresholdMeters}
}

// Get returns the cached result set if center is within the movement
// threshold of the last successful fetch.
func (p *ProximityCache) Get(center models.Coordinate) ([]models.Place, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.valid || geo.Haversine(center, p.center) > p.thresholdM {
		return nil, false
	}
	return p.places, true
}

// Set records a successful fetch for center.
func (p *ProximityCache) Set(center models.Coordinate, places []models.Place) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.center = center
	p.places = places
	p.valid = true
}

// Invalidate drops the cached result set.
func (p *ProximityCache) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.valid = false
	p.places = nil
}
