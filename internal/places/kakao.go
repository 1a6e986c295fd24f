package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/assistive-ai/digitalcane/internal/models"
)

const kakaoKeywordURL = "https://dapi.kakao.com/v2/local/search/keyword.json"

// kakaoPageSize is the provider maximum per request.
const kakaoPageSize = 15

// KakaoClient is the low-cost places provider used for Stage-1 category
// fan-out of the hybrid search.
type KakaoClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewKakaoClient creates a client for the Kakao Local keyword search API.
func NewKakaoClient(apiKey string, timeout time.Duration) *KakaoClient {
	return &KakaoClient{
		apiKey:  apiKey,
		baseURL: kakaoKeywordURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// SearchKeyword searches for places matching query around center. Results
// lacking a parseable coordinate are discarded.
func (k *KakaoClient) SearchKeyword(ctx context.Context, query string, center models.Coordinate, radiusMeters int) ([]models.Place, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("x", strconv.FormatFloat(center.Lng, 'f', -1, 64))
	params.Set("y", strconv.FormatFloat(center.Lat, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radiusMeters))
	params.Set("size", strconv.Itoa(kakaoPageSize))
	params.Set("sort", "distance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+k.apiKey)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching places: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
	}

	var result kakaoKeywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	var out []models.Place
	for _, doc := range result.Documents {
		lng, errX := strconv.ParseFloat(doc.X, 64)
		lat, errY := strconv.ParseFloat(doc.Y, 64)
		if errX != nil || errY != nil {
			continue
		}
		loc := models.Coordinate{Lat: lat, Lng: lng}
		if !loc.IsValid() {
			continue
		}

		address := doc.RoadAddressName
		if address == "" {
			address = doc.AddressName
		}

		var types []string
		if doc.CategoryGroupName != "" {
			types = append(types, doc.CategoryGroupName)
		}

		out = append(out, models.Place{
			ID:       doc.ID,
			Name:     doc.PlaceName,
			Address:  address,
			Types:    types,
			Location: loc,
		})
	}
	return out, nil
}

// API response structures
type kakaoKeywordResponse struct {
	Documents []struct {
		ID                string `json:"id"`
		PlaceName         string `json:"place_name"`
		AddressName       string `json:"address_name"`
		RoadAddressName   string `json:"road_address_name"`
		CategoryGroupName string `json:"category_group_name"`
		X                 string `json:"x"` // longitude
		Y                 string `json:"y"` // latitude
	} `json:"documents"`
	Meta struct {
		TotalCount int `json:"total_count"`
	} `json:"meta"`
}
