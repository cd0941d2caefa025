package view

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"ulascansenturk/season-service/internal/clock"
	"ulascansenturk/season-service/internal/geolocation"
	"ulascansenturk/season-service/internal/season"
)

// WaitingMessage is shown while no geolocation outcome has arrived.
const WaitingMessage = "Please accept location request"

type Status string

const (
	StatusPending   Status = "pending"
	StatusAvailable Status = "available"
	StatusFailed    Status = "failed"
)

type Kind string

const (
	KindWaiting Kind = "waiting"
	KindError   Kind = "error"
	KindSeason  Kind = "season"
)

// State is a snapshot of the view. Coords is set only when Status is
// StatusAvailable and Err only when it is StatusFailed.
type State struct {
	Status Status
	Coords *geolocation.Coordinates
	Err    *geolocation.PositionError
}

// Descriptor is what a renderer needs to draw the view.
type Descriptor struct {
	Kind     Kind       `json:"kind"`
	Message  string     `json:"message,omitempty"`
	Season   season.Tag `json:"season,omitempty"`
	Text     string     `json:"text,omitempty"`
	IconName string     `json:"icon_name,omitempty"`
}

// Resolution is handed to the resolve hook once the view reaches a terminal state.
type Resolution struct {
	ViewID     string
	Provider   string
	State      State
	ResolvedAt time.Time
}

type Option func(*LocationView)

// WithRemoteIP records the client address passed on to the provider.
func WithRemoteIP(ip string) Option {
	return func(v *LocationView) {
		v.remoteIP = ip
	}
}

// WithResolveHook registers fn to run once after the terminal transition.
func WithResolveHook(fn func(Resolution)) Option {
	return func(v *LocationView) {
		v.onResolve = fn
	}
}

// LocationView asks a geolocation provider for a position once and renders
// a season greeting, an error or a waiting prompt depending on the outcome.
type LocationView struct {
	id       string
	provider geolocation.Provider
	clock    clock.Clock
	remoteIP string

	onResolve func(Resolution)

	mu        sync.RWMutex
	state     State
	activated bool
	closed    bool
	live      bool
	cancel    context.CancelFunc
	done      chan struct{}
	lastSeen  time.Time
}

func New(id string, provider geolocation.Provider, clk clock.Clock, opts ...Option) *LocationView {
	v := &LocationView{
		id:       id,
		provider: provider,
		clock:    clk,
		state:    State{Status: StatusPending},
		done:     make(chan struct{}),
		lastSeen: time.Now(),
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

func (v *LocationView) ID() string {
	return v.id
}

func (v *LocationView) ProviderName() string {
	return v.provider.Name()
}

// Activate issues the geolocation request. Only the first call has an effect
// and a deactivated view cannot be activated again.
func (v *LocationView) Activate(ctx context.Context) {
	v.mu.Lock()
	if v.activated || v.closed {
		v.mu.Unlock()
		return
	}
	v.activated = true
	v.live = true

	reqCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	v.cancel = cancel
	v.mu.Unlock()

	results := v.provider.CurrentPosition(reqCtx, geolocation.Request{
		ViewID:   v.id,
		RemoteIP: v.remoteIP,
	})

	go v.await(results, cancel)
}

// Deactivate stops the view from accepting an outcome that arrives later.
func (v *LocationView) Deactivate() {
	v.mu.Lock()
	v.live = false
	v.closed = true
	cancel := v.cancel
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (v *LocationView) await(results <-chan geolocation.Result, cancel context.CancelFunc) {
	defer cancel()

	result, ok := <-results
	if !ok {
		log.Warn().Str("view_id", v.id).Str("provider", v.provider.Name()).Msg("provider closed without a result")
		return
	}

	v.Resolve(result)
}

// Resolve applies a provider outcome. It reports whether the state changed;
// outcomes for terminal or deactivated views are dropped.
func (v *LocationView) Resolve(result geolocation.Result) bool {
	v.mu.Lock()

	if !v.live || v.state.Status != StatusPending {
		v.mu.Unlock()
		log.Debug().Str("view_id", v.id).Msg("ignoring late geolocation outcome")
		return false
	}

	if result.Succeeded() {
		coords := *result.Position
		v.state = State{Status: StatusAvailable, Coords: &coords}
	} else {
		posErr := result.Err
		if posErr == nil {
			posErr = &geolocation.PositionError{}
		}
		v.state = State{Status: StatusFailed, Err: &geolocation.PositionError{Message: posErr.Message}}
	}

	snapshot := v.state
	close(v.done)
	v.mu.Unlock()

	log.Info().
		Str("view_id", v.id).
		Str("provider", v.provider.Name()).
		Str("status", string(snapshot.Status)).
		Msg("view resolved")

	if v.onResolve != nil {
		v.onResolve(Resolution{
			ViewID:     v.id,
			Provider:   v.provider.Name(),
			State:      snapshot,
			ResolvedAt: time.Now(),
		})
	}

	return true
}

func (v *LocationView) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

// Done is closed once the view reaches a terminal state.
func (v *LocationView) Done() <-chan struct{} {
	return v.done
}

func (v *LocationView) Live() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.live
}

// Touch marks the view as recently used.
func (v *LocationView) Touch() {
	v.mu.Lock()
	v.lastSeen = time.Now()
	v.mu.Unlock()
}

func (v *LocationView) LastSeen() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastSeen
}

func (v *LocationView) Render() Descriptor {
	return Project(v.State(), v.clock)
}

// Project derives the descriptor for state. The month is read from clk only
// when a position is available.
func Project(state State, clk clock.Clock) Descriptor {
	switch state.Status {
	case StatusFailed:
		return Descriptor{Kind: KindError, Message: state.Err.Message}
	case StatusAvailable:
		tag := season.Classify(state.Coords.Latitude, clk.MonthIndex(*state.Coords))
		info, err := season.Lookup(tag)
		if err != nil {
			return Descriptor{Kind: KindError, Message: err.Error()}
		}
		return Descriptor{
			Kind:     KindSeason,
			Season:   tag,
			Text:     info.Text,
			IconName: info.IconName,
		}
	default:
		return Descriptor{Kind: KindWaiting, Message: WaitingMessage}
	}
}
