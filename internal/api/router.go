package api

import (
	"net/http"

	"github.com/assistive-ai/digitalcane/internal/api/handlers"
	"github.com/assistive-ai/digitalcane/internal/config"
	"github.com/assistive-ai/digitalcane/internal/nav"
)

// NewRouter creates and configures the HTTP router with all routes and middleware
func NewRouter(
	cfg *config.Config,
	navigator handlers.Navigator,
	nearby handlers.NearbyProvider,
	location *nav.LocationHolder,
) http.Handler {
	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler()
	rootHandler := handlers.NewRootHandler()
	navHandler := handlers.NewNavHandler(navigator, location)
	placesHandler := handlers.NewPlacesHandler(nearby)

	mux.HandleFunc("GET /", rootHandler.Index)
	mux.HandleFunc("GET /health", healthHandler.Health)

	// Navigation lifecycle
	mux.HandleFunc("POST /nav/route", navHandler.FindRoute)
	mux.HandleFunc("POST /nav/advance", navHandler.Advance)
	mux.HandleFunc("POST /nav/select", navHandler.Select)
	mux.HandleFunc("POST /nav/stop", navHandler.Stop)
	mux.HandleFunc("GET /nav/session", navHandler.GetSession)

	// Nearby places (spatial scan collaborator)
	mux.HandleFunc("GET /places/nearby", placesHandler.GetNearby)

	// Apply middleware stack. The timeout must outlive a full pipeline run
	// (several provider calls), so it is a multiple of the per-call timeout.
	handler := Chain(mux,
		Recovery,
		Logging,
		CORS,
		Timeout(4*cfg.HTTPTimeout),
	)

	return handler
}
