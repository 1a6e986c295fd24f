package places

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/assistive-ai/digitalcane/internal/models"
)

type fakeCheap struct {
	mu      sync.Mutex
	calls   int
	results map[string][]models.Place // query -> places
	err     error
}

func (f *fakeCheap) SearchKeyword(ctx context.Context, query string, center models.Coordinate, radiusMeters int) ([]models.Place, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func (f *fakeCheap) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRich struct {
	calls   int
	results []models.Place
	err     error
}

func (f *fakeRich) SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int) ([]models.Place, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func place(name string, lat, lng float64) models.Place {
	return models.Place{ID: name, Name: name, Location: models.Coordinate{Lat: lat, Lng: lng}}
}

var seoul = models.Coordinate{Lat: 37.4979, Lng: 127.0276}

func manyPlaces(n int) map[string][]models.Place {
	out := make([]models.Place, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, place(fmt.Sprintf("장소%d", i), 37.49+float64(i)*0.001, 127.02))
	}
	return map[string][]models.Place{wildcardQuery: out}
}

func TestAggregatorSkipsRichWhenCoverageSufficient(t *testing.T) {
	cheap := &fakeCheap{results: manyPlaces(6)}
	rich := &fakeRich{results: []models.Place{place("부자장소", 37.5, 127.0)}}
	agg := NewAggregator(cheap, rich, NewProximityCache(15))

	got, err := agg.SearchNearby(context.Background(), seoul, 400)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if len(got) != 6 {
		t.Errorf("len = %d, want 6", len(got))
	}
	if rich.calls != 0 {
		t.Errorf("rich provider called %d times, want 0", rich.calls)
	}
}

func TestAggregatorEscalatesWhenCoverageThin(t *testing.T) {
	cheap := &fakeCheap{results: map[string][]models.Place{
		wildcardQuery: {place("국밥집", 37.4979, 127.0276)},
	}}
	rich := &fakeRich{results: []models.Place{
		place("국밥집", 37.49791, 127.02761), // same name, different provider coords
		place("약국", 37.4981, 127.0279),
	}}
	agg := NewAggregator(cheap, rich, NewProximityCache(15))

	got, err := agg.SearchNearby(context.Background(), seoul, 400)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if rich.calls != 1 {
		t.Fatalf("rich provider called %d times, want 1", rich.calls)
	}

	names := make(map[string]int)
	for _, p := range got {
		names[p.Name]++
	}
	if names["국밥집"] != 1 {
		t.Errorf("cross-provider merge kept %d copies of 국밥집, want 1", names["국밥집"])
	}
	if names["약국"] != 1 {
		t.Errorf("missing rich-only result, got %v", names)
	}
}

func TestAggregatorDedupesStageOne(t *testing.T) {
	dup := place("카페", 37.4979, 127.0276)
	cheap := &fakeCheap{results: map[string][]models.Place{
		categoryQueries[0]: {dup},
		wildcardQuery:      {dup},
	}}
	rich := &fakeRich{}
	agg := NewAggregator(cheap, rich, NewProximityCache(15))

	got, err := agg.SearchNearby(context.Background(), seoul, 400)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	count := 0
	for _, p := range got {
		if p.Name == "카페" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate survived merge: %d copies", count)
	}
}

func TestAggregatorStageOneFailureStillTriesRich(t *testing.T) {
	cheap := &fakeCheap{err: errors.New("quota exceeded")}
	rich := &fakeRich{results: []models.Place{place("약국", 37.4981, 127.0279)}}
	agg := NewAggregator(cheap, rich, NewProximityCache(15))

	got, err := agg.SearchNearby(context.Background(), seoul, 400)
	if err != nil {
		t.Fatalf("SearchNearby: %v", err)
	}
	if rich.calls != 1 {
		t.Errorf("rich provider called %d times, want 1", rich.calls)
	}
	if len(got) != 1 || got[0].Name != "약국" {
		t.Errorf("got %v", got)
	}
}

func TestAggregatorBothTiersFailing(t *testing.T) {
	cheap := &fakeCheap{err: errors.New("quota exceeded")}
	rich := &fakeRich{err: errors.New("connection refused")}
	agg := NewAggregator(cheap, rich, NewProximityCache(15))

	_, err := agg.SearchNearby(context.Background(), seoul, 400)
	if !errors.Is(err, ErrProvidersUnavailable) {
		t.Errorf("err = %v, want ErrProvidersUnavailable", err)
	}
}

func TestAggregatorProximityCache(t *testing.T) {
	cheap := &fakeCheap{results: manyPlaces(6)}
	rich := &fakeRich{}
	agg := NewAggregator(cheap, rich, NewProximityCache(15))

	if _, err := agg.SearchNearby(context.Background(), seoul, 400); err != nil {
		t.Fatalf("first search: %v", err)
	}
	firstCalls := cheap.callCount()

	// ~5 m east: inside the movement threshold, must be served from cache.
	nearby := models.Coordinate{Lat: seoul.Lat, Lng: seoul.Lng + 0.00006}
	if _, err := agg.SearchNearby(context.Background(), nearby, 400); err != nil {
		t.Fatalf("cached search: %v", err)
	}
	if cheap.callCount() != firstCalls {
		t.Errorf("cached call issued %d new provider requests", cheap.callCount()-firstCalls)
	}

	// ~100 m east: beyond the threshold, must fetch fresh.
	far := models.Coordinate{Lat: seoul.Lat, Lng: seoul.Lng + 0.00113}
	if _, err := agg.SearchNearby(context.Background(), far, 400); err != nil {
		t.Fatalf("fresh search: %v", err)
	}
	if cheap.callCount() == firstCalls {
		t.Error("moving beyond the threshold did not trigger a fresh fetch")
	}
}

func TestDedupeDeterministic(t *testing.T) {
	a := []models.Place{place("B", 37.5, 127.0), place("A", 37.5, 127.0), place("B", 37.5, 127.0)}
	b := []models.Place{place("B", 37.5, 127.0), place("B", 37.5, 127.0), place("A", 37.5, 127.0)}

	gotA := dedupe(a)
	gotB := dedupe(b)

	if len(gotA) != len(gotB) {
		t.Fatalf("lengths differ: %d vs %d", len(gotA), len(gotB))
	}
	for i := range gotA {
		if gotA[i].Name != gotB[i].Name {
			t.Errorf("order differs at %d: %q vs %q", i, gotA[i].Name, gotB[i].Name)
		}
	}
}
