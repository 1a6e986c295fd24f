// Package nav drives the voice-to-route pipeline as an Idle/Loading/Active
// state machine. Every provider failure is converted here into one short
// spoken sentence; raw errors are logged internally only.
package nav

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/assistive-ai/digitalcane/internal/intent"
	"github.com/assistive-ai/digitalcane/internal/models"
	"github.com/assistive-ai/digitalcane/internal/places"
	"github.com/assistive-ai/digitalcane/internal/route"
	"github.com/assistive-ai/digitalcane/internal/transit"
)

// Status is the navigation lifecycle state.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusActive  Status = "active"
)

// Location source failure modes.
var (
	ErrPermissionDenied  = errors.New("location permission denied")
	ErrLocationAcquiring = errors.New("location still acquiring")
	// ErrNotActive reports a navigation primitive called outside Active.
	ErrNotActive = errors.New("no active navigation session")
	// ErrInvalidStep reports a step index outside the route.
	ErrInvalidStep = errors.New("step index out of range")
)

// Spoken sentences surfaced to the user. Stage-specific so the rider knows
// whether to re-speak, wait, or check their connection.
const (
	MsgAlreadySearching    = "이미 경로를 찾는 중입니다. 잠시만 기다려 주세요."
	MsgPermissionDenied    = "위치 접근 권한이 없어 길안내를 시작할 수 없습니다."
	MsgLocationAcquiring   = "현재 위치를 확인하는 중입니다. 잠시 후 다시 시도해 주세요."
	MsgLocationUnavailable = "위치 서비스를 사용할 수 없습니다."
	MsgIntentFailure       = "말씀을 이해하지 못했어요. 다시 말씀해 주세요."
	MsgDestinationMissing  = "목적지를 알아듣지 못했어요. 다시 말씀해 주세요."
	MsgNoRoute             = "경로를 찾을 수 없습니다."
	MsgRouteDecode         = "경로 정보를 해석하지 못했습니다. 다시 시도해 주세요."
	MsgNetworkProblem      = "네트워크 문제가 발생했습니다. 잠시 후 다시 시도해 주세요."
)

// LocationSource reports the device's current position. It returns
// ErrPermissionDenied when access was denied and ErrLocationAcquiring when a
// fix is not yet available.
type LocationSource interface {
	Current() (models.Coordinate, error)
}

// DestinationValidator resolves a spoken destination name to a Place.
type DestinationValidator interface {
	ValidateDestination(ctx context.Context, name string) (models.Place, error)
}

// RouteFetcher fetches a normalized transit route.
type RouteFetcher interface {
	FetchRoute(ctx context.Context, origin, destination string, current *models.Coordinate) (models.RouteData, error)
}

// WeatherAdvisor supplies the optional weather sentence for the overview.
type WeatherAdvisor interface {
	Enabled() bool
	Advisory(ctx context.Context, loc models.Coordinate) (string, error)
}

// DepartureProvider supplies optional live departure info for the overview.
type DepartureProvider interface {
	Enabled() bool
	NextDeparture(ctx context.Context, lineCode string) (transit.Departure, bool, error)
}

// Session is the navigation state read by presentation collaborators.
// Mutated only by the Orchestrator.
type Session struct {
	ID               string             `json:"id,omitempty"`
	Status           Status             `json:"status"`
	Steps            []models.RouteStep `json:"steps,omitempty"`
	CurrentStepIndex int                `json:"current_step_index"`
	Origin           string             `json:"origin,omitempty"`
	Destination      string             `json:"destination,omitempty"`
	TotalDuration    string             `json:"total_duration,omitempty"`
	TotalDistance    string             `json:"total_distance,omitempty"`
}

// CurrentStep returns the step at the current index while Active.
func (s Session) CurrentStep() (models.RouteStep, bool) {
	if s.Status != StatusActive || s.CurrentStepIndex < 0 || s.CurrentStepIndex >= len(s.Steps) {
		return models.RouteStep{}, false
	}
	return s.Steps[s.CurrentStepIndex], true
}

// OutcomeKind classifies what FindRoute produced.
type OutcomeKind string

const (
	// OutcomeStarted means navigation is Active; Spoken is the overview.
	OutcomeStarted OutcomeKind = "started"
	// OutcomeClarification means the intent was ambiguous; Spoken is the
	// question to ask the user. Not an error.
	OutcomeClarification OutcomeKind = "clarification"
	// OutcomeFailure means a stage failed; Spoken is the failure sentence.
	OutcomeFailure OutcomeKind = "failure"
	// OutcomeCancelled means Stop was called mid-pipeline; nothing to speak.
	OutcomeCancelled OutcomeKind = "cancelled"
)

// Outcome is what the caller should announce after FindRoute returns.
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Spoken string      `json:"spoken,omitempty"`
}

// Deps are the collaborators an Orchestrator drives. Weather and Departures
// may be nil.
type Deps struct {
	Intents    intent.Resolver
	Validator  DestinationValidator
	Routes     RouteFetcher
	Weather    WeatherAdvisor
	Departures DepartureProvider
	Location   LocationSource
	Preference route.Preference
	// Timeout bounds each provider call so a hung request cannot pin the
	// machine in Loading.
	Timeout time.Duration
}

// Orchestrator owns the navigation session and runs one pipeline at a time.
type Orchestrator struct {
	deps Deps

	mu         sync.Mutex
	session    Session
	generation int
	cancel     context.CancelFunc
}

// New creates an orchestrator in the Idle state.
func New(deps Deps) *Orchestrator {
	if deps.Timeout <= 0 {
		deps.Timeout = 10 * time.Second
	}
	return &Orchestrator{
		deps:    deps,
		session: Session{Status: StatusIdle},
	}
}

// Session returns a read-only snapshot of the current session.
func (o *Orchestrator) Session() Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// FindRoute runs the full pipeline for one utterance: intent resolution,
// destination validation, route fetch, activation. Any stage failure
// returns the machine to Idle with a stage-specific spoken sentence. A
// clarification request short-circuits before validation.
func (o *Orchestrator) FindRoute(ctx context.Context, utterance string) Outcome {
	o.mu.Lock()
	if o.session.Status != StatusIdle {
		o.mu.Unlock()
		return Outcome{Kind: OutcomeFailure, Spoken: MsgAlreadySearching}
	}

	current, err := o.deps.Location.Current()
	if err != nil {
		o.mu.Unlock()
		return Outcome{Kind: OutcomeFailure, Spoken: locationMessage(err)}
	}

	gen := o.generation
	pipelineCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.session = Session{Status: StatusLoading}
	o.mu.Unlock()

	defer cancel()
	return o.runPipeline(pipelineCtx, utterance, current, gen)
}

func (o *Orchestrator) runPipeline(ctx context.Context, utterance string, current models.Coordinate, gen int) Outcome {
	li, err := o.resolveIntent(ctx, utterance)
	if err != nil {
		return o.fail(gen, "intent resolution", err, intentMessage(err))
	}

	// A clarification is a terminal "ask again", never a route, regardless
	// of whatever destination text the model also produced.
	if li.ClarificationNeeded {
		if !o.reset(gen) {
			return Outcome{Kind: OutcomeCancelled}
		}
		return Outcome{Kind: OutcomeClarification, Spoken: li.ClarificationQuestion}
	}
	if li.DestinationName == "" {
		if !o.reset(gen) {
			return Outcome{Kind: OutcomeCancelled}
		}
		return Outcome{Kind: OutcomeFailure, Spoken: MsgDestinationMissing}
	}

	place, err := o.validateDestination(ctx, li.DestinationName)
	if err != nil {
		return o.fail(gen, "destination validation", err, destinationMessage(li.DestinationName, err))
	}

	origin := li.OriginName
	if origin == "" {
		origin = models.CurrentLocationToken
	}
	destination := place.Address
	if destination == "" {
		destination = place.Name
	}

	data, err := o.fetchRoute(ctx, origin, destination, current)
	if err != nil {
		return o.fail(gen, "route fetch", err, routeMessage(err))
	}
	if len(data.Steps) == 0 {
		return o.fail(gen, "route fetch", route.ErrNoRouteFound, MsgNoRoute)
	}

	originDisplay := origin
	if origin == models.CurrentLocationToken {
		originDisplay = "현재 위치"
	}

	o.mu.Lock()
	if o.generation != gen {
		// Stopped mid-flight; the result arrives too late and is discarded.
		o.mu.Unlock()
		return Outcome{Kind: OutcomeCancelled}
	}
	o.session = Session{
		ID:               uuid.NewString(),
		Status:           StatusActive,
		Steps:            data.Steps,
		CurrentStepIndex: 0,
		Origin:           originDisplay,
		Destination:      place.Name,
		TotalDuration:    data.TotalDuration,
		TotalDistance:    data.TotalDistance,
	}
	o.cancel = nil
	snapshot := o.snapshotLocked()
	o.mu.Unlock()

	return Outcome{Kind: OutcomeStarted, Spoken: o.composeOverview(ctx, snapshot, data, current)}
}

// AdvanceStep moves to the next step. Advancing past the last step completes
// the route and returns the machine to Idle.
func (o *Orchestrator) AdvanceStep() Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Status != StatusActive {
		return o.snapshotLocked()
	}
	if o.session.CurrentStepIndex < len(o.session.Steps)-1 {
		o.session.CurrentStepIndex++
	} else {
		o.clearLocked()
	}
	return o.snapshotLocked()
}

// SelectStep jumps to the given step index without changing state.
func (o *Orchestrator) SelectStep(index int) (Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Status != StatusActive {
		return o.snapshotLocked(), ErrNotActive
	}
	if index < 0 || index >= len(o.session.Steps) {
		return o.snapshotLocked(), fmt.Errorf("%w: %d", ErrInvalidStep, index)
	}
	o.session.CurrentStepIndex = index
	return o.snapshotLocked(), nil
}

// Stop unconditionally returns the machine to Idle, clearing the session and
// cancelling any in-flight pipeline work.
func (o *Orchestrator) Stop() Session {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.generation++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.clearLocked()
	return o.snapshotLocked()
}

// --- pipeline stages, each bounded by the configured timeout ---

func (o *Orchestrator) resolveIntent(ctx context.Context, utterance string) (models.LocationIntent, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.deps.Timeout)
	defer cancel()
	return o.deps.Intents.Resolve(stageCtx, utterance)
}

func (o *Orchestrator) validateDestination(ctx context.Context, name string) (models.Place, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.deps.Timeout)
	defer cancel()
	return o.deps.Validator.ValidateDestination(stageCtx, name)
}

func (o *Orchestrator) fetchRoute(ctx context.Context, origin, destination string, current models.Coordinate) (models.RouteData, error) {
	stageCtx, cancel := context.WithTimeout(ctx, o.deps.Timeout)
	defer cancel()
	return o.deps.Routes.FetchRoute(stageCtx, origin, destination, &current)
}

// composeOverview builds the sentence announced once on entering Active.
// Weather and live departures are appended best-effort; their failures never
// delay or block the announcement beyond the stage timeout.
func (o *Orchestrator) composeOverview(ctx context.Context, s Session, data models.RouteData, current models.Coordinate) string {
	var b []byte
	b = fmt.Appendf(b, "%s에서 %s까지 경로 안내를 시작합니다.", s.Origin, s.Destination)

	switch o.deps.Preference {
	case route.PreferLessWalking:
		b = fmt.Appendf(b, " 도보를 줄인 경로입니다.")
	case route.PreferFewerTransfers:
		b = fmt.Appendf(b, " 환승이 적은 경로입니다.")
	}

	b = fmt.Appendf(b, " 총 %s, %s 이동이며 %d회 탑승, 정거장 %d개를 지납니다.",
		s.TotalDuration, s.TotalDistance, data.BoardingCount(), data.TotalStops())

	if o.deps.Departures != nil && o.deps.Departures.Enabled() && len(data.Steps) > 0 {
		stageCtx, cancel := context.WithTimeout(ctx, o.deps.Timeout)
		dep, ok, err := o.deps.Departures.NextDeparture(stageCtx, data.Steps[0].LineCode)
		cancel()
		switch {
		case err != nil:
			slog.Warn("departure lookup failed", "error", err)
		case ok && dep.MinutesAway >= 0:
			b = fmt.Appendf(b, " 첫 차량은 약 %d분 후 도착 예정입니다.", dep.MinutesAway)
		}
	}

	if o.deps.Weather != nil && o.deps.Weather.Enabled() {
		stageCtx, cancel := context.WithTimeout(ctx, o.deps.Timeout)
		advisory, err := o.deps.Weather.Advisory(stageCtx, current)
		cancel()
		if err != nil {
			slog.Warn("weather advisory failed", "error", err)
		} else if advisory != "" {
			b = fmt.Appendf(b, " %s", advisory)
		}
	}

	return string(b)
}

// fail logs the raw error, returns to Idle, and yields the spoken sentence.
// A stage failure caused by Stop cancelling the pipeline is not announced;
// the rider asked for silence and gets it.
func (o *Orchestrator) fail(gen int, stage string, err error, spoken string) Outcome {
	if !o.reset(gen) {
		return Outcome{Kind: OutcomeCancelled}
	}
	slog.Error("navigation stage failed", "stage", stage, "error", err)
	return Outcome{Kind: OutcomeFailure, Spoken: spoken}
}

// reset returns to Idle and reports whether this pipeline still owned the
// session. A newer generation (a Stop) means the result arrived too late.
func (o *Orchestrator) reset(gen int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return false
	}
	o.cancel = nil
	o.clearLocked()
	return true
}

func (o *Orchestrator) clearLocked() {
	o.session = Session{Status: StatusIdle}
}

func (o *Orchestrator) snapshotLocked() Session {
	s := o.session
	if s.Steps != nil {
		steps := make([]models.RouteStep, len(s.Steps))
		copy(steps, s.Steps)
		s.Steps = steps
	}
	return s
}

// --- failure-to-sentence mapping ---

func locationMessage(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return MsgPermissionDenied
	case errors.Is(err, ErrLocationAcquiring):
		return MsgLocationAcquiring
	default:
		return MsgLocationUnavailable
	}
}

func intentMessage(err error) string {
	if errors.Is(err, intent.ErrParse) {
		return MsgIntentFailure
	}
	return MsgNetworkProblem
}

func destinationMessage(name string, err error) string {
	if errors.Is(err, places.ErrNotFound) {
		return fmt.Sprintf("'%s'을(를) 찾을 수 없습니다. 다른 이름으로 말씀해 주세요.", name)
	}
	return MsgNetworkProblem
}

func routeMessage(err error) string {
	switch {
	case errors.Is(err, route.ErrNoRouteFound):
		return MsgNoRoute
	case errors.Is(err, route.ErrLocationUnavailable):
		return MsgLocationUnavailable
	case errors.Is(err, route.ErrDecode):
		return MsgRouteDecode
	default:
		return MsgNetworkProblem
	}
}
