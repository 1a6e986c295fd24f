package handlers

import (
	"net/http"
)

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        "digitalcane",
		"description": "Voice-to-route transit navigation core for visually impaired riders",
		"version":     "1.0.0",
		"endpoints": map[string]string{
			"GET /":              "API information",
			"GET /health":        "Health check",
			"POST /nav/route":    "Start navigation from an utterance",
			"POST /nav/advance":  "Advance to the next step",
			"POST /nav/select":   "Jump to a step index",
			"POST /nav/stop":     "Stop navigation",
			"GET /nav/session":   "Current navigation session",
			"GET /places/nearby": "Nearby places around a coordinate",
		},
	})
}

func (h *RootHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":   "Route not found",
		"message": "Check the root endpoint (/) for available routes",
	})
}
