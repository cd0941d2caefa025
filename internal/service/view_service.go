package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"ulascansenturk/season-service/internal/clock"
	"ulascansenturk/season-service/internal/db/viewlog"
	"ulascansenturk/season-service/internal/geolocation"
	"ulascansenturk/season-service/internal/season"
	"ulascansenturk/season-service/internal/view"
)

var (
	ErrViewNotFound        = errors.New("view not found")
	ErrStatsUnavailable    = errors.New("view log is not configured")
	ErrReportNotAcceptable = errors.New("view does not accept client reports")
)

type ViewSnapshot struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"`
	Status     view.Status     `json:"status"`
	Descriptor view.Descriptor `json:"descriptor"`
}

type OpenRequest struct {
	Provider string
	RemoteIP string
}

type ViewService interface {
	OpenView(ctx context.Context, req OpenRequest) (ViewSnapshot, error)
	RenderView(ctx context.Context, id string) (ViewSnapshot, error)
	WaitView(ctx context.Context, id string) (ViewSnapshot, error)
	ReportPosition(ctx context.Context, id string, report geolocation.Report) error
	CloseView(ctx context.Context, id string) error
	SeasonStats(ctx context.Context, since time.Time) ([]viewlog.SeasonCount, error)
	Shutdown()
}

// positionReporter is implemented by providers that wait for the client to
// send its own position.
type positionReporter interface {
	Deliver(viewID string, report geolocation.Report) error
}

type Options struct {
	DefaultProvider string
	ViewTTL         time.Duration
	SweepInterval   time.Duration
}

type viewService struct {
	providers map[string]geolocation.Provider
	clock     clock.Clock
	repo      viewlog.Repository
	opts      Options

	views     map[string]*view.LocationView
	viewMutex sync.RWMutex

	stop     chan struct{}
	stopOnce sync.Once

	// closing is set by Shutdown; logResolution only reserves a slot in
	// logging while it is false, under closeMutex.
	closeMutex sync.Mutex
	closing    bool
	logging    sync.WaitGroup
}

// NewViewService builds the view registry. repo may be nil, in which case
// resolutions are not persisted.
func NewViewService(
	providers []geolocation.Provider,
	clk clock.Clock,
	repo viewlog.Repository,
	opts Options,
) ViewService {
	byName := make(map[string]geolocation.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}

	s := &viewService{
		providers: byName,
		clock:     clk,
		repo:      repo,
		opts:      opts,
		views:     make(map[string]*view.LocationView),
		stop:      make(chan struct{}),
	}

	if opts.ViewTTL > 0 && opts.SweepInterval > 0 {
		go s.sweep()
	}

	return s
}

func (s *viewService) OpenView(ctx context.Context, req OpenRequest) (ViewSnapshot, error) {
	name := req.Provider
	if name == "" {
		name = s.opts.DefaultProvider
	}

	provider, ok := s.providers[name]
	if !ok {
		return ViewSnapshot{}, fmt.Errorf("%w: %q", geolocation.ErrUnknownProvider, name)
	}

	id := uuid.New().String()
	v := view.New(id, provider, s.clock,
		view.WithRemoteIP(req.RemoteIP),
		view.WithResolveHook(s.logResolution),
	)

	s.viewMutex.Lock()
	s.views[id] = v
	s.viewMutex.Unlock()

	v.Activate(ctx)

	log.Info().Str("view_id", id).Str("provider", name).Msg("view opened")

	return s.snapshot(v), nil
}

// RenderView renders a registered view. Views that are gone from the
// registry, closed or expired, are rendered from their last logged
// resolution when a view log is configured.
func (s *viewService) RenderView(_ context.Context, id string) (ViewSnapshot, error) {
	v, err := s.lookup(id)
	if err != nil {
		return s.renderFromLog(id, err)
	}
	return s.snapshot(v), nil
}

// WaitView blocks until the view is resolved or ctx ends, then renders it.
// Running out of time is not an error: the waiting descriptor is returned.
func (s *viewService) WaitView(ctx context.Context, id string) (ViewSnapshot, error) {
	v, err := s.lookup(id)
	if err != nil {
		return s.renderFromLog(id, err)
	}

	select {
	case <-v.Done():
	case <-ctx.Done():
	}

	return s.snapshot(v), nil
}

func (s *viewService) ReportPosition(_ context.Context, id string, report geolocation.Report) error {
	v, err := s.lookup(id)
	if err != nil {
		return err
	}

	reporter, ok := s.providers[v.ProviderName()].(positionReporter)
	if !ok {
		return fmt.Errorf("%w: provider %s", ErrReportNotAcceptable, v.ProviderName())
	}

	return reporter.Deliver(id, report)
}

func (s *viewService) CloseView(_ context.Context, id string) error {
	s.viewMutex.Lock()
	v, ok := s.views[id]
	delete(s.views, id)
	s.viewMutex.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}

	v.Deactivate()
	log.Info().Str("view_id", id).Msg("view closed")

	return nil
}

func (s *viewService) SeasonStats(_ context.Context, since time.Time) ([]viewlog.SeasonCount, error) {
	if s.repo == nil {
		return nil, ErrStatsUnavailable
	}

	counts, err := s.repo.CountBySeason(since)
	if err != nil {
		return nil, fmt.Errorf("failed to count views by season: %w", err)
	}
	return counts, nil
}

func (s *viewService) Shutdown() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.closeMutex.Lock()
	s.closing = true
	s.closeMutex.Unlock()

	s.viewMutex.Lock()
	for id, v := range s.views {
		v.Deactivate()
		delete(s.views, id)
	}
	s.viewMutex.Unlock()

	s.logging.Wait()
}

func (s *viewService) lookup(id string) (*view.LocationView, error) {
	s.viewMutex.RLock()
	v, ok := s.views[id]
	s.viewMutex.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrViewNotFound, id)
	}

	v.Touch()
	return v, nil
}

func (s *viewService) snapshot(v *view.LocationView) ViewSnapshot {
	state := v.State()
	return ViewSnapshot{
		ID:         v.ID(),
		Provider:   v.ProviderName(),
		Status:     state.Status,
		Descriptor: view.Project(state, s.clock),
	}
}

func (s *viewService) renderFromLog(id string, lookupErr error) (ViewSnapshot, error) {
	if s.repo == nil {
		return ViewSnapshot{}, lookupErr
	}

	record, err := s.repo.GetRecentResolution(id)
	if errors.Is(err, viewlog.ErrResolutionNotFound) {
		return ViewSnapshot{}, lookupErr
	}
	if err != nil {
		return ViewSnapshot{}, fmt.Errorf("failed to load view resolution: %w", err)
	}

	return snapshotFromRecord(record), nil
}

func snapshotFromRecord(r *viewlog.ViewResolution) ViewSnapshot {
	snapshot := ViewSnapshot{
		ID:       r.ViewID,
		Provider: r.Provider,
		Status:   view.Status(r.Status),
	}

	if snapshot.Status != view.StatusAvailable {
		snapshot.Descriptor = view.Descriptor{Kind: view.KindError, Message: r.ErrorMessage}
		return snapshot
	}

	tag, err := season.ParseTag(r.Season)
	if err != nil {
		snapshot.Descriptor = view.Descriptor{Kind: view.KindError, Message: err.Error()}
		return snapshot
	}

	info, _ := season.Lookup(tag)
	snapshot.Descriptor = view.Descriptor{
		Kind:     view.KindSeason,
		Season:   tag,
		Text:     info.Text,
		IconName: info.IconName,
	}
	return snapshot
}

func (s *viewService) logResolution(r view.Resolution) {
	if s.repo == nil {
		return
	}

	record := &viewlog.ViewResolution{
		ViewID:    r.ViewID,
		Provider:  r.Provider,
		Status:    string(r.State.Status),
		CreatedAt: r.ResolvedAt,
	}

	switch r.State.Status {
	case view.StatusAvailable:
		lat, lon := r.State.Coords.Latitude, r.State.Coords.Longitude
		record.Latitude = &lat
		record.Longitude = &lon
		record.Season = string(season.Classify(lat, s.clock.MonthIndex(*r.State.Coords)))
	case view.StatusFailed:
		record.ErrorMessage = r.State.Err.Message
	}

	s.closeMutex.Lock()
	if s.closing {
		s.closeMutex.Unlock()
		log.Warn().Str("view_id", r.ViewID).Msg("service shutting down, view resolution not logged")
		return
	}
	s.logging.Add(1)
	s.closeMutex.Unlock()

	go func() {
		defer s.logging.Done()
		if err := s.repo.LogResolution(record); err != nil {
			log.Error().Err(err).Str("view_id", r.ViewID).Msg("failed to log view resolution")
		}
	}()
}

func (s *viewService) sweep() {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.expire(now)
		}
	}
}

func (s *viewService) expire(now time.Time) {
	var expired []*view.LocationView

	s.viewMutex.Lock()
	for id, v := range s.views {
		if now.Sub(v.LastSeen()) > s.opts.ViewTTL {
			expired = append(expired, v)
			delete(s.views, id)
		}
	}
	s.viewMutex.Unlock()

	for _, v := range expired {
		v.Deactivate()
		log.Debug().Str("view_id", v.ID()).Msg("view expired")
	}
}
