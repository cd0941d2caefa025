package clock_test

import (
	"testing"
	"time"
	"ulascansenturk/season-service/internal/clock"
	"ulascansenturk/season-service/internal/geolocation"
	"ulascansenturk/season-service/internal/season"

	"github.com/stretchr/testify/assert"
)

func fixed(t time.Time) clock.NowFunc {
	return func() time.Time { return t }
}

func TestSystemClockMonthIndex(t *testing.T) {
	c := &clock.SystemClock{Now: fixed(time.Date(2024, time.July, 15, 12, 0, 0, 0, time.Local))}

	assert.Equal(t, 6, c.MonthIndex(geolocation.Coordinates{Latitude: -33.9}))
	assert.Equal(t, 6, c.MonthIndex(geolocation.Coordinates{Latitude: 40.7}))
}

func TestZoneClockCrossesMonthBoundary(t *testing.T) {
	// 23:30 UTC on June 30 is already July 1 in Sydney.
	now := time.Date(2024, time.June, 30, 23, 30, 0, 0, time.UTC)
	c := &clock.ZoneClock{Now: fixed(now), Fallback: time.UTC}

	sydney := geolocation.Coordinates{Latitude: -33.87, Longitude: 151.21}

	assert.Equal(t, 6, c.MonthIndex(sydney))
	assert.Equal(t, 5, c.MonthIndex(geolocation.Coordinates{Latitude: 40.71, Longitude: -74.0}))
}

func TestZoneClockLoadsEmbeddedZones(t *testing.T) {
	c := &clock.ZoneClock{Now: time.Now, Fallback: time.UTC}

	assert.Equal(t, "Australia/Sydney", c.Location(geolocation.Coordinates{Latitude: -33.87, Longitude: 151.21}).String())
	assert.Equal(t, "America/New_York", c.Location(geolocation.Coordinates{Latitude: 40.71, Longitude: -74.0}).String())
}

func TestZoneClockUsesResolvedLocation(t *testing.T) {
	now := time.Date(2024, time.January, 31, 23, 30, 0, 0, time.UTC)
	c := &clock.ZoneClock{Now: fixed(now), Fallback: time.UTC}

	coords := geolocation.Coordinates{Latitude: -60, Longitude: -140}
	expected := season.MonthIndex(now.In(c.Location(coords)))

	assert.Equal(t, expected, c.MonthIndex(coords))
}

func TestNew(t *testing.T) {
	assert.IsType(t, &clock.ZoneClock{}, clock.New("zone"))
	assert.IsType(t, &clock.SystemClock{}, clock.New("system"))
	assert.IsType(t, &clock.SystemClock{}, clock.New(""))
}
