// Package main is the entry point for the digitalcane core server.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/assistive-ai/digitalcane/internal/api"
	"github.com/assistive-ai/digitalcane/internal/config"
	"github.com/assistive-ai/digitalcane/internal/intent"
	"github.com/assistive-ai/digitalcane/internal/nav"
	"github.com/assistive-ai/digitalcane/internal/places"
	"github.com/assistive-ai/digitalcane/internal/route"
	"github.com/assistive-ai/digitalcane/internal/transit"
	"github.com/assistive-ai/digitalcane/internal/weather"
)

func main() {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration error: ", err)
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		log.Fatal("Intent provider error: ", err)
	}

	google, err := places.NewGoogleClient(cfg.GoogleMapsAPIKey, cfg.Language, "kr")
	if err != nil {
		log.Fatal("Places client error: ", err)
	}

	preference := route.ResolvePreference(cfg.PreferLessWalking, cfg.PreferFewerTransfers)
	fetcher, err := route.NewFetcher(cfg.GoogleMapsAPIKey, cfg.Language, "kr", preference)
	if err != nil {
		log.Fatal("Route client error: ", err)
	}

	kakao := places.NewKakaoClient(cfg.KakaoRESTAPIKey, cfg.HTTPTimeout)
	proximity := places.NewProximityCache(cfg.MoveThresholdM)
	aggregator := places.NewAggregator(kakao, google, proximity)

	location := nav.NewLocationHolder()
	orchestrator := nav.New(nav.Deps{
		Intents:    resolver,
		Validator:  google,
		Routes:     fetcher,
		Weather:    weather.NewService(cfg.WeatherAPIKey, cfg.HTTPTimeout, cfg.CacheTTL),
		Departures: transit.NewDepartureService(cfg.GTFSFeedURL, cfg.HTTPTimeout, cfg.CacheTTL),
		Location:   location,
		Preference: preference,
		Timeout:    cfg.HTTPTimeout,
	})

	router := api.NewRouter(cfg, orchestrator, aggregator, location)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	fmt.Printf("🦯 digitalcane core starting on port %s\n", cfg.Port)
	fmt.Printf("📍 Environment: %s\n", cfg.Env)
	fmt.Printf("🔗 http://localhost:%s\n", cfg.Port)

	if err := server.ListenAndServe(); err != nil {
		log.Fatal("Server failed to start: ", err)
	}
}

func newResolver(cfg *config.Config) (intent.Resolver, error) {
	switch cfg.IntentProvider {
	case "openai":
		return intent.NewOpenAIResolver(cfg.OpenAIAPIKey, "", cfg.HTTPTimeout), nil
	default:
		return intent.NewGeminiResolver(context.Background(), cfg.GeminiAPIKey, "")
	}
}
