package handlers

import (
	"context"

	"github.com/assistive-ai/digitalcane/internal/models"
	"github.com/assistive-ai/digitalcane/internal/nav"
)

// Navigator abstracts the navigation orchestrator for testability.
type Navigator interface {
	FindRoute(ctx context.Context, utterance string) nav.Outcome
	AdvanceStep() nav.Session
	SelectStep(index int) (nav.Session, error)
	Stop() nav.Session
	Session() nav.Session
}

// NearbyProvider abstracts the hybrid nearby-search aggregator.
type NearbyProvider interface {
	SearchNearby(ctx context.Context, center models.Coordinate, radiusMeters int) ([]models.Place, error)
}
