package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/assistive-ai/digitalcane/internal/geo"
	"github.com/assistive-ai/digitalcane/internal/models"
)

// ErrProvidersUnavailable reports that both search tiers failed, so an empty
// result means "network problem", not "no places nearby".
var ErrProvidersUnavailable = errors.New("nearby search providers unavailable")

// escalationThreshold is the minimum Stage-1 result count below which the
// rich provider is consulted. Above it the cheap tier alone is returned,
// keeping paid-API traffic down.
const escalationThreshold = 5

// categoryQueries are the four fixed Stage-1 partitions. The wildcard query
// runs alongside them to catch places the partitions miss.
var categoryQueries = []string{
	"음식점 카페",
	"마트 편의점 은행",
	"지하철역 버스정류장",
	"공원 명소",
}

const wildcardQuery = "주변 장소"

// CheapSearcher is the low-cost Stage-1 provider.
type CheapSearcher interface {
	SearchKeyword(ctx context.Context, query string, center models.Coordinate, radiusMeters int) ([]models.Place, error)
}

// RichSearcher is the paid Stage-2 provider.
type RichSearcher interface {
	SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int) ([]models.Place, error)
}

// Aggregator fans nearby searches out across category partitions of the
// cheap provider and escalates to the rich provider only when coverage is
// thin.
type Aggregator struct {
	cheap CheapSearcher
	rich  RichSearcher
	cache *ProximityCache
}

// NewAggregator creates a hybrid nearby-search aggregator.
func NewAggregator(cheap CheapSearcher, rich RichSearcher, cache *ProximityCache) *Aggregator {
	return &Aggregator{cheap: cheap, rich: rich, cache: cache}
}

// SearchNearby returns places around center, deduplicated across queries and
// providers. A caller who has not moved beyond the cache threshold gets the
// previous result set without any provider traffic.
func (a *Aggregator) SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int) ([]models.Place, error) {
	if cached, ok := a.cache.Get(center); ok {
		return cached, nil
	}

	stage1, stage1Err := a.fanOut(ctx, center, radiusMeters)
	if stage1Err != nil {
		slog.Warn("stage-1 nearby search failed", "error", stage1Err)
	}

	if len(stage1) >= escalationThreshold {
		a.cache.Set(center, stage1)
		return stage1, nil
	}

	rich, richErr := a.rich.SearchNearby(ctx, center, radiusMeters)
	if richErr != nil {
		if stage1Err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvidersUnavailable, errors.Join(stage1Err, richErr))
		}
		slog.Warn("stage-2 nearby search failed", "error", richErr)
		a.cache.Set(center, stage1)
		return stage1, nil
	}

	merged := mergeByName(stage1, rich)
	a.cache.Set(center, merged)
	return merged, nil
}

// fanOut runs the four category queries plus the wildcard concurrently and
// merges them under a single lock. All queries are awaited before the merge;
// an error is returned only when every query failed.
func (a *Aggregator) fanOut(ctx context.Context, center models.Coordinate, radiusMeters int) ([]models.Place, error) {
	queries := append(append([]string{}, categoryQueries...), wildcardQuery)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []models.Place
		errs    []error
	)

	for _, q := range queries {
		wg.Add(1)
		go func(query string) {
			defer wg.Done()
			found, err := a.cheap.SearchKeyword(ctx, query, center, radiusMeters)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("query %q: %w", query, err))
				return
			}
			results = append(results, found...)
		}(q)
	}
	wg.Wait()

	if len(errs) == len(queries) {
		return nil, errors.Join(errs...)
	}

	return dedupe(results), nil
}

// dedupe removes same-provider duplicates by (name, rounded coordinate),
// deterministically regardless of goroutine completion order.
func dedupe(places []models.Place) []models.Place {
	sort.SliceStable(places, func(i, j int) bool {
		return geo.DedupeKey(places[i].Name, places[i].Location) < geo.DedupeKey(places[j].Name, places[j].Location)
	})

	seen := make(map[string]bool, len(places))
	out := places[:0]
	for _, p := range places {
		key := geo.DedupeKey(p.Name, p.Location)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// mergeByName merges rich-provider results into the Stage-1 set. Coordinates
// from different providers are not bit-comparable, so cross-provider dedupe
// is by name only.
func mergeByName(base, extra []models.Place) []models.Place {
	seen := make(map[string]bool, len(base))
	for _, p := range base {
		seen[p.Name] = true
	}

	out := base
	for _, p := range extra {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	return out
}
