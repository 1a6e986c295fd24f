package nav

import (
	"sync"

	"github.com/assistive-ai/digitalcane/internal/models"
)

// LocationHolder is a LocationSource fed by the device shell, which reports
// its latest fix alongside each request. It starts in the "still acquiring"
// state until the first update arrives.
type LocationHolder struct {
	mu     sync.Mutex
	coord  models.Coordinate
	fixed  bool
	denied bool
}

// NewLocationHolder creates an empty holder.
func NewLocationHolder() *LocationHolder {
	return &LocationHolder{}
}

// Update records the latest device position.
func (h *LocationHolder) Update(c models.Coordinate) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !c.IsValid() {
		return
	}
	h.coord = c
	h.fixed = true
}

// SetDenied records whether location permission has been denied.
func (h *LocationHolder) SetDenied(denied bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.denied = denied
}

// Current implements LocationSource.
func (h *LocationHolder) Current() (models.Coordinate, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.denied {
		return models.Coordinate{}, ErrPermissionDenied
	}
	if !h.fixed {
		return models.Coordinate{}, ErrLocationAcquiring
	}
	return h.coord, nil
}
