package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/assistive-ai/digitalcane/internal/models"
	"github.com/assistive-ai/digitalcane/internal/places"
)

const (
	defaultNearbyRadius = 400 // meters
	maxNearbyRadius     = 2000
)

// PlacesHandler exposes the hybrid nearby search.
type PlacesHandler struct {
	nearby NearbyProvider
}

func NewPlacesHandler(nearby NearbyProvider) *PlacesHandler {
	return &PlacesHandler{nearby: nearby}
}

// GetNearby returns places around the given coordinate. An empty result with
// success=true means "no places nearby"; a provider outage is reported as an
// error so the shell can speak a network message instead.
func (h *PlacesHandler) GetNearby(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng query parameters are required")
		return
	}

	center := models.Coordinate{Lat: lat, Lng: lng}
	if !center.IsValid() {
		writeError(w, http.StatusBadRequest, "coordinate out of range")
		return
	}

	radius := defaultNearbyRadius
	if v := r.URL.Query().Get("radius"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			radius = min(parsed, maxNearbyRadius)
		}
	}

	found, err := h.nearby.SearchNearby(r.Context(), center, radius)
	if err != nil {
		if errors.Is(err, places.ErrProvidersUnavailable) {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"error":  "nearby search providers unavailable",
				"reason": "provider_failure",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "nearby search failed")
		return
	}

	if found == nil {
		found = []models.Place{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(found),
		"places":  found,
	})
}
