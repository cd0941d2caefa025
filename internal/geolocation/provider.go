package geolocation

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	ProviderClient = "client"
	ProviderIP     = "ip"
	ProviderStatic = "static"
)

// TimeoutMessage is reported when a provider gives up waiting for a fix.
const TimeoutMessage = "Timeout expired"

var (
	ErrUnknownProvider  = errors.New("unknown geolocation provider")
	ErrNoPendingRequest = errors.New("no pending geolocation request")
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PositionError is the error descriptor handed back by a provider when no fix
// could be obtained. Message is shown to the user as is.
type PositionError struct {
	Message string
}

func (e *PositionError) Error() string {
	return e.Message
}

// Result carries exactly one of Position or Err.
type Result struct {
	Position *Coordinates
	Err      *PositionError
}

func (r Result) Succeeded() bool {
	return r.Position != nil
}

type Request struct {
	ViewID   string
	RemoteIP string
}

// Provider resolves the current position of a client. The returned channel
// delivers exactly one Result and is then closed.
type Provider interface {
	Name() string
	CurrentPosition(ctx context.Context, req Request) <-chan Result
}

type lookupFunc func(ctx context.Context) (Coordinates, error)

// resolve runs lookup on its own goroutine and turns its outcome into a single
// Result. A zero timeout leaves the deadline to ctx.
func resolve(ctx context.Context, timeout time.Duration, lookup lookupFunc) <-chan Result {
	out := make(chan Result, 1)

	go func() {
		defer close(out)

		lookupCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			lookupCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		coords, err := lookup(lookupCtx)
		if err != nil {
			out <- failure(err)
			return
		}
		out <- Result{Position: &coords}
	}()

	return out
}

func failure(err error) Result {
	var posErr *PositionError
	switch {
	case errors.As(err, &posErr):
		return Result{Err: posErr}
	case errors.Is(err, context.DeadlineExceeded):
		return Result{Err: &PositionError{Message: TimeoutMessage}}
	default:
		return Result{Err: &PositionError{Message: fmt.Sprintf("Position unavailable: %v", err)}}
	}
}
