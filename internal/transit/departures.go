// Package transit reads an optional GTFS-realtime trip-updates feed to
// enrich the navigation overview with live departure times. Everything here
// is best-effort; the overview is announced without it on any failure.
package transit

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/assistive-ai/digitalcane/internal/cache"
)

// Departure is an upcoming vehicle departure at a stop.
type Departure struct {
	Route       string    `json:"route"`
	StopID      string    `json:"stop_id"`
	Time        time.Time `json:"time"`
	MinutesAway int       `json:"minutes_away"`
}

// DepartureService fetches and caches a GTFS-RT trip-updates feed.
type DepartureService struct {
	feedURL string
	client  *http.Client
	cache   *cache.Cache[[]Departure]
}

// NewDepartureService creates a departures service. An empty feed URL
// disables it.
func NewDepartureService(feedURL string, timeout, cacheTTL time.Duration) *DepartureService {
	return &DepartureService{
		feedURL: feedURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New[[]Departure](cacheTTL),
	}
}

// Enabled reports whether a feed URL is configured.
func (s *DepartureService) Enabled() bool {
	return s.feedURL != ""
}

// NextDeparture returns the soonest departure for the given route at any
// stop in the feed, or false when the feed has none.
func (s *DepartureService) NextDeparture(ctx context.Context, route string) (Departure, bool, error) {
	departures, err := s.fetchFeed(ctx)
	if err != nil {
		return Departure{}, false, err
	}

	for _, d := range departures {
		if d.Route == route {
			return d, true, nil
		}
	}
	return Departure{}, false, nil
}

func (s *DepartureService) fetchFeed(ctx context.Context) ([]Departure, error) {
	if s.feedURL == "" {
		return nil, fmt.Errorf("departures feed not configured")
	}
	if cached, ok := s.cache.Get("feed"); ok {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("parsing protobuf: %w", err)
	}

	departures := parseDepartures(feed)
	s.cache.Set("feed", departures)
	return departures, nil
}

func parseDepartures(feed *gtfs.FeedMessage) []Departure {
	var departures []Departure
	now := time.Now()

	for _, entity := range feed.GetEntity() {
		tripUpdate := entity.GetTripUpdate()
		if tripUpdate == nil {
			continue
		}

		routeID := tripUpdate.GetTrip().GetRouteId()

		for _, stopTimeUpdate := range tripUpdate.GetStopTimeUpdate() {
			departureTime := stopTimeUpdate.GetDeparture().GetTime()
			if departureTime == 0 {
				departureTime = stopTimeUpdate.GetArrival().GetTime()
			}
			if departureTime == 0 {
				continue
			}

			depTime := time.Unix(departureTime, 0)
			if depTime.Before(now) {
				continue
			}

			departures = append(departures, Departure{
				Route:       routeID,
				StopID:      stopTimeUpdate.GetStopId(),
				Time:        depTime,
				MinutesAway: int(depTime.Sub(now).Minutes()),
			})
		}
	}

	sort.Slice(departures, func(i, j int) bool {
		return departures[i].Time.Before(departures[j].Time)
	})

	return departures
}
