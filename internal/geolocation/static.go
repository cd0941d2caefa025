package geolocation

import "context"

// StaticProvider always reports the same coordinates.
type StaticProvider struct {
	coords Coordinates
}

func NewStaticProvider(latitude, longitude float64) *StaticProvider {
	return &StaticProvider{coords: Coordinates{Latitude: latitude, Longitude: longitude}}
}

func (p *StaticProvider) Name() string {
	return ProviderStatic
}

func (p *StaticProvider) CurrentPosition(ctx context.Context, _ Request) <-chan Result {
	return resolve(ctx, 0, func(context.Context) (Coordinates, error) {
		return p.coords, nil
	})
}
