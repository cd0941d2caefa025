package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"ulascansenturk/season-service/internal/inmemorycache"
)

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errInvalidRetry = errors.New("invalid backoff configuration")
)

type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

type IPProviderConfig struct {
	BaseURL        string
	Client         *http.Client
	Backoff        BackoffConfig
	Timeout        time.Duration
	CacheTTL       time.Duration
	FailedCacheTTL time.Duration
}

// IPAPIResponse is the subset of the ip-api.com JSON answer we read.
type IPAPIResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Query   string  `json:"query,omitempty"`
}

// IPProvider approximates a client position from its IP address.
type IPProvider struct {
	cfg     IPProviderConfig
	cache   inmemorycache.Cache
	circuit *gobreaker.CircuitBreaker
}

func NewIPProvider(cfg IPProviderConfig, cache inmemorycache.Cache) *IPProvider {
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ip-api",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &IPProvider{
		cfg:     cfg,
		cache:   cache,
		circuit: cb,
	}
}

func (p *IPProvider) Name() string {
	return ProviderIP
}

func (p *IPProvider) CurrentPosition(ctx context.Context, req Request) <-chan Result {
	return resolve(ctx, p.cfg.Timeout, func(ctx context.Context) (Coordinates, error) {
		return p.Lookup(ctx, req.RemoteIP)
	})
}

// Lookup resolves ip, consulting the cache first. An empty ip asks the
// upstream service to locate the caller.
func (p *IPProvider) Lookup(ctx context.Context, ip string) (Coordinates, error) {
	if cached, ok := p.fromCache(ip); ok {
		if cached.Error != "" {
			return Coordinates{}, &PositionError{Message: cached.Error}
		}
		return Coordinates{Latitude: cached.Latitude, Longitude: cached.Longitude}, nil
	}

	coords, err := p.fetch(ctx, ip)

	var posErr *PositionError
	switch {
	case err == nil:
		p.toCache(ip, &inmemorycache.PositionCacheData{Latitude: coords.Latitude, Longitude: coords.Longitude}, p.cfg.CacheTTL)
	case errors.As(err, &posErr):
		p.toCache(ip, &inmemorycache.PositionCacheData{Error: posErr.Message}, p.cfg.FailedCacheTTL)
	}

	return coords, err
}

func (p *IPProvider) fetch(ctx context.Context, ip string) (Coordinates, error) {
	url := fmt.Sprintf("%s/json/%s?fields=status,message,lat,lon,query", p.cfg.BaseURL, ip)

	resp, err := p.doRequestWithResilience(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	})
	if err != nil {
		return Coordinates{}, fmt.Errorf("ip-api request failed: %w", err)
	}
	defer resp.Body.Close()

	var apiResp IPAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return Coordinates{}, fmt.Errorf("ip-api returned malformed JSON: %w", err)
	}

	if apiResp.Status != "success" {
		msg := apiResp.Message
		if msg == "" {
			msg = "unable to locate " + ip
		}
		return Coordinates{}, &PositionError{Message: msg}
	}

	if apiResp.Lat < -90 || apiResp.Lat > 90 {
		return Coordinates{}, fmt.Errorf("ip-api returned invalid latitude: %f", apiResp.Lat)
	}

	return Coordinates{Latitude: apiResp.Lat, Longitude: apiResp.Lon}, nil
}

// doRequestWithResilience executes the request through the circuit breaker,
// retrying rate limits and server errors with exponential backoff.
func (p *IPProvider) doRequestWithResilience(
	ctx context.Context,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	backoff := p.cfg.Backoff
	if backoff.MaxRetries < 0 || (backoff.MaxRetries > 0 && backoff.InitialInterval <= 0) {
		return nil, errInvalidRetry
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		result, err := p.circuit.Execute(func() (interface{}, error) {
			resp, execErr := p.cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			if resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return nil, errRateLimited
			}
			if resp.StatusCode >= 500 {
				resp.Body.Close()
				return nil, errServerError
			}
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				resp.Body.Close()
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if attempt >= backoff.MaxRetries {
			return nil, err
		}

		delay := backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if backoff.MaxInterval > 0 && delay > backoff.MaxInterval {
			delay = backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}

func (p *IPProvider) fromCache(ip string) (*inmemorycache.PositionCacheData, bool) {
	if p.cache == nil {
		return nil, false
	}

	data, ok, err := p.cache.Get(ip)
	if err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("failed to read cached position")
		return nil, false
	}
	return data, ok
}

func (p *IPProvider) toCache(ip string, data *inmemorycache.PositionCacheData, ttl time.Duration) {
	if p.cache == nil || ttl <= 0 {
		return
	}

	if err := p.cache.Set(ip, data, ttl); err != nil {
		log.Warn().Err(err).Str("ip", ip).Msg("failed to cache position")
	}
}
