package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/assistive-ai/digitalcane/internal/models"
	"github.com/assistive-ai/digitalcane/internal/nav"
)

// NavHandler exposes the navigation orchestrator to the device shell.
type NavHandler struct {
	navigator Navigator
	location  *nav.LocationHolder
}

func NewNavHandler(navigator Navigator, location *nav.LocationHolder) *NavHandler {
	return &NavHandler{navigator: navigator, location: location}
}

type findRouteRequest struct {
	Utterance string   `json:"utterance"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}

// FindRoute starts the voice-to-route pipeline. The shell reports its
// current fix in the same request so the orchestrator's location guard sees
// a fresh position.
func (h *NavHandler) FindRoute(w http.ResponseWriter, r *http.Request) {
	var req findRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Utterance == "" {
		writeError(w, http.StatusBadRequest, "utterance is required")
		return
	}

	if req.Lat != nil && req.Lng != nil {
		h.location.Update(models.Coordinate{Lat: *req.Lat, Lng: *req.Lng})
	}

	outcome := h.navigator.FindRoute(r.Context(), req.Utterance)

	writeJSON(w, http.StatusOK, map[string]any{
		"outcome": outcome,
		"session": h.navigator.Session(),
	})
}

// Advance moves to the next step; at the last step the session completes.
func (h *NavHandler) Advance(w http.ResponseWriter, r *http.Request) {
	session := h.navigator.AdvanceStep()
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

type selectStepRequest struct {
	Index int `json:"index"`
}

// Select jumps to a step index.
func (h *NavHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectStepRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session, err := h.navigator.SelectStep(req.Index)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   err.Error(),
			"session": session,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

// Stop cancels any in-flight search and clears the session.
func (h *NavHandler) Stop(w http.ResponseWriter, r *http.Request) {
	session := h.navigator.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

// GetSession returns the current session snapshot.
func (h *NavHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"session": h.navigator.Session()})
}
