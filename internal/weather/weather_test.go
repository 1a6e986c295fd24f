package weather

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/assistive-ai/digitalcane/internal/models"
)

func conditionResponse(temp float64, code int) currentWeatherResponse {
	var r currentWeatherResponse
	r.Main.Temp = temp
	r.Weather = []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	}{{ID: code}}
	return r
}

func TestComposeAdvisory(t *testing.T) {
	tests := []struct {
		name string
		temp float64
		code int
		want string
	}{
		{"thunderstorm", 18.2, 211, "천둥번개"},
		{"drizzle", 15.0, 301, "비가 오고"},
		{"rain", 12.7, 501, "우산"},
		{"snow", -1.4, 601, "미끄럼"},
		{"fog", 9.0, 741, "대기 상태"},
		{"clear", 23.6, 800, "맑은"},
		{"clouds", 20.0, 803, "구름"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := composeAdvisory(conditionResponse(tt.temp, tt.code))
			if !strings.Contains(got, tt.want) {
				t.Errorf("advisory %q missing %q", got, tt.want)
			}
			wantTemp := fmt.Sprintf("%d도", int(math.Round(tt.temp)))
			if !strings.Contains(got, wantTemp) {
				t.Errorf("advisory %q missing temperature %q", got, wantTemp)
			}
		})
	}
}

func TestComposeAdvisoryRoundsBelowZero(t *testing.T) {
	// -2.6 must announce as -3, not -2.
	got := composeAdvisory(conditionResponse(-2.6, 601))
	if !strings.Contains(got, "-3도") {
		t.Errorf("advisory = %q, want -3도", got)
	}

	got = composeAdvisory(conditionResponse(-0.4, 800))
	if !strings.Contains(got, "0도") {
		t.Errorf("advisory = %q, want 0도", got)
	}
}

func TestComposeAdvisoryWithoutCondition(t *testing.T) {
	var r currentWeatherResponse
	r.Main.Temp = 17.0

	got := composeAdvisory(r)
	if got != "현재 기온은 17도입니다." {
		t.Errorf("advisory = %q", got)
	}
}

func TestAdvisoryFetchesAndCaches(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("appid") != "test-key" {
			t.Errorf("appid = %q", r.URL.Query().Get("appid"))
		}
		fmt.Fprint(w, `{"main":{"temp":21.3},"weather":[{"id":800,"main":"Clear","description":"clear sky"}]}`)
	}))
	defer server.Close()

	svc := NewService("test-key", time.Second, time.Minute)
	svc.baseURL = server.URL

	loc := models.Coordinate{Lat: 37.4979, Lng: 127.0276}

	got, err := svc.Advisory(context.Background(), loc)
	if err != nil {
		t.Fatalf("Advisory: %v", err)
	}
	if !strings.Contains(got, "21도") || !strings.Contains(got, "맑은") {
		t.Errorf("advisory = %q", got)
	}

	// A second call from effectively the same spot hits the cache.
	jittered := models.Coordinate{Lat: 37.49791, Lng: 127.02762}
	if _, err := svc.Advisory(context.Background(), jittered); err != nil {
		t.Fatalf("cached Advisory: %v", err)
	}
	if requests != 1 {
		t.Errorf("provider called %d times, want 1", requests)
	}
}

func TestAdvisoryUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := NewService("bad-key", time.Second, time.Minute)
	svc.baseURL = server.URL

	if _, err := svc.Advisory(context.Background(), models.Coordinate{Lat: 37.5, Lng: 127.0}); err == nil {
		t.Error("expected error on upstream failure")
	}
}

func TestDisabledWithoutAPIKey(t *testing.T) {
	svc := NewService("", time.Second, time.Minute)
	if svc.Enabled() {
		t.Error("Enabled() should be false without an API key")
	}
}
