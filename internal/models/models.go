// Package models defines shared data types
package models

import "math"

// CurrentLocationToken is the origin sentinel meaning "route from where the
// user is standing right now". The intent provider is instructed to emit it
// when the utterance names no explicit origin.
const CurrentLocationToken = "CURRENT_LOCATION"

// Coordinate is a WGS84 point.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid reports whether both components are finite and inside the
// geographic range. Places without a valid coordinate are discarded
// during response parsing.
func (c Coordinate) IsValid() bool {
	if math.IsNaN(c.Lat) || math.IsInf(c.Lat, 0) || math.IsNaN(c.Lng) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Place is a single search result from a places provider. Immutable; owned
// by the caller of the search that produced it.
type Place struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Address  string     `json:"address"`
	Types    []string   `json:"types,omitempty"`
	Location Coordinate `json:"location"`
}

// TransportMode is the travel mode requested by the user.
type TransportMode string

const (
	ModeTransit TransportMode = "TRANSIT"
	ModeWalking TransportMode = "WALKING"
)

// LocationIntent is the structured result of intent extraction. An empty
// OriginName means "use current position". When ClarificationNeeded is set,
// ClarificationQuestion carries the question to speak back to the user and
// no routing should happen.
type LocationIntent struct {
	OriginName            string        `json:"originName"`
	DestinationName       string        `json:"destinationName"`
	TransportMode         TransportMode `json:"transportMode"`
	ClarificationNeeded   bool          `json:"clarificationNeeded"`
	ClarificationQuestion string        `json:"clarificationQuestion,omitempty"`
}

// StepKind classifies a route step for the presentation layer.
type StepKind string

const (
	StepWalk   StepKind = "walk"
	StepWait   StepKind = "wait"
	StepBoard  StepKind = "board"
	StepRide   StepKind = "ride"
	StepAlight StepKind = "alight"
)

// RouteStep is one rider-facing instruction in travel order. LineCode keeps
// the provider's raw line identifier for real-time departure lookups; it is
// never spoken.
type RouteStep struct {
	Kind        StepKind `json:"kind"`
	Instruction string   `json:"instruction"`
	Detail      string   `json:"detail,omitempty"`
	Action      string   `json:"action,omitempty"`
	StopCount   int      `json:"stop_count"`
	LineCode    string   `json:"line_code,omitempty"`
}

// RouteData is a fully normalized route. Steps are in travel order and the
// value is immutable once constructed; the navigation orchestrator owns it
// for the lifetime of an active session.
type RouteData struct {
	Steps         []RouteStep `json:"steps"`
	TotalDuration string      `json:"total_duration"`
	TotalDistance string      `json:"total_distance"`
}

// BoardingCount returns the number of steps where the rider boards a vehicle.
func (r RouteData) BoardingCount() int {
	count := 0
	for _, s := range r.Steps {
		if s.Kind != StepWalk {
			count++
		}
	}
	return count
}

// TotalStops sums the stop counts across all steps.
func (r RouteData) TotalStops() int {
	total := 0
	for _, s := range r.Steps {
		total += s.StopCount
	}
	return total
}
