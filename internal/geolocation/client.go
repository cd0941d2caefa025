package geolocation

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Report is what a browser sends back after calling its own geolocation API.
type Report struct {
	Position     *Coordinates
	ErrorMessage string
}

// ClientProvider waits for the client to report its position out of band.
type ClientProvider struct {
	timeout time.Duration
	pending map[string]chan Report
	mu      sync.Mutex
}

func NewClientProvider(timeout time.Duration) *ClientProvider {
	return &ClientProvider{
		timeout: timeout,
		pending: make(map[string]chan Report),
	}
}

func (p *ClientProvider) Name() string {
	return ProviderClient
}

func (p *ClientProvider) CurrentPosition(ctx context.Context, req Request) <-chan Result {
	reports := make(chan Report, 1)

	// registered before returning so a report can arrive right after the view opens
	p.mu.Lock()
	p.pending[req.ViewID] = reports
	p.mu.Unlock()

	return resolve(ctx, p.timeout, func(ctx context.Context) (Coordinates, error) {
		defer p.forget(req.ViewID, reports)

		select {
		case report := <-reports:
			if report.Position == nil {
				return Coordinates{}, &PositionError{Message: report.ErrorMessage}
			}
			return *report.Position, nil
		case <-ctx.Done():
			return Coordinates{}, ctx.Err()
		}
	})
}

// Deliver hands a client report to the request waiting for viewID.
func (p *ClientProvider) Deliver(viewID string, report Report) error {
	p.mu.Lock()
	reports, ok := p.pending[viewID]
	if ok {
		delete(p.pending, viewID)
	}
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w for view %s", ErrNoPendingRequest, viewID)
	}

	reports <- report
	return nil
}

func (p *ClientProvider) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func (p *ClientProvider) forget(viewID string, reports chan Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current, ok := p.pending[viewID]; ok && current == reports {
		delete(p.pending, viewID)
	}
}
