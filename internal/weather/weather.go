// Package weather fetches current conditions and turns them into a short
// spoken advisory. It is strictly best-effort: navigation never waits on it
// beyond its timeout and never fails because of it.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/assistive-ai/digitalcane/internal/cache"
	"github.com/assistive-ai/digitalcane/internal/geo"
	"github.com/assistive-ai/digitalcane/internal/models"
)

const currentWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// Service fetches current weather from OpenWeatherMap, cached per rounded
// coordinate so repeated route searches from the same spot reuse one fetch.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	cache   *cache.Cache[string]
}

// NewService creates a weather service. An empty API key disables it.
func NewService(apiKey string, timeout, cacheTTL time.Duration) *Service {
	return &Service{
		apiKey:  apiKey,
		baseURL: currentWeatherURL,
		client:  &http.Client{Timeout: timeout},
		cache:   cache.New[string](cacheTTL),
	}
}

// Enabled reports whether an API key is configured.
func (s *Service) Enabled() bool {
	return s.apiKey != ""
}

// Advisory returns a short spoken weather sentence for the coordinate, or
// an error the caller is expected to swallow.
func (s *Service) Advisory(ctx context.Context, loc models.Coordinate) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("weather API key not configured")
	}

	cacheKey := geo.CacheKey(loc)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached, nil
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	params.Set("appid", s.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var result currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	advisory := composeAdvisory(result)
	s.cache.Set(cacheKey, advisory)
	return advisory, nil
}

// composeAdvisory maps the provider's coded condition to a localized
// sentence. Condition code groups follow the OpenWeatherMap convention:
// 2xx thunderstorm, 3xx drizzle, 5xx rain, 6xx snow, 7xx atmosphere,
// 800 clear, 80x clouds.
func composeAdvisory(w currentWeatherResponse) string {
	temp := int(math.Round(w.Main.Temp))

	condition := ""
	if len(w.Weather) > 0 {
		code := w.Weather[0].ID
		switch {
		case code >= 200 && code < 300:
			condition = "천둥번개가 치고 있어요. 외출에 주의하세요."
		case code >= 300 && code < 600:
			condition = "비가 오고 있어요. 우산을 챙기세요."
		case code >= 600 && code < 700:
			condition = "눈이 오고 있어요. 미끄럼에 주의하세요."
		case code >= 700 && code < 800:
			condition = "대기 상태가 좋지 않아요."
		case code == 800:
			condition = "맑은 날씨예요."
		case code > 800:
			condition = "구름이 낀 날씨예요."
		}
	}

	if condition == "" {
		return fmt.Sprintf("현재 기온은 %d도입니다.", temp)
	}
	return fmt.Sprintf("현재 기온은 %d도이며 %s", temp, condition)
}

// API response structure
type currentWeatherResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}
