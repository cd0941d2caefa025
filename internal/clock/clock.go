package clock

import (
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/bradfitz/latlong"
	"github.com/rs/zerolog/log"
	"ulascansenturk/season-service/internal/geolocation"
	"ulascansenturk/season-service/internal/season"
)

// Clock tells the current month index (January is 0) for a position.
type Clock interface {
	MonthIndex(coords geolocation.Coordinates) int
}

type NowFunc func() time.Time

// SystemClock reads the month from the server's local time.
type SystemClock struct {
	Now NowFunc
}

func NewSystemClock() *SystemClock {
	return &SystemClock{Now: time.Now}
}

func (c *SystemClock) MonthIndex(geolocation.Coordinates) int {
	return season.MonthIndex(c.Now().Local())
}

// ZoneClock reads the month in the time zone covering the coordinates and
// falls back to Fallback when no zone is known for them.
type ZoneClock struct {
	Now      NowFunc
	Fallback *time.Location

	warnOnce sync.Once
}

func NewZoneClock() *ZoneClock {
	return &ZoneClock{Now: time.Now, Fallback: time.Local}
}

func (c *ZoneClock) MonthIndex(coords geolocation.Coordinates) int {
	return season.MonthIndex(c.Now().In(c.Location(coords)))
}

func (c *ZoneClock) Location(coords geolocation.Coordinates) *time.Location {
	name := latlong.LookupZoneName(coords.Latitude, coords.Longitude)
	if name == "" {
		return c.Fallback
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		c.warnOnce.Do(func() {
			log.Warn().Err(err).Str("zone", name).Msg("time zone not loadable, using fallback location")
		})
		return c.Fallback
	}
	return loc
}

func New(kind string) Clock {
	if kind == "zone" {
		return NewZoneClock()
	}
	return NewSystemClock()
}
