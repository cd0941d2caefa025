package season_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"ulascansenturk/season-service/internal/season"
)

type SeasonTestSuite struct {
	suite.Suite
}

var (
	northernSummerMonths = []int{3, 4, 5, 6, 7, 8}
	northernWinterMonths = []int{0, 1, 2, 9, 10, 11}
)

func (s *SeasonTestSuite) TestNorthernHemisphere() {
	for _, lat := range []float64{0.0001, 12.5, 40.7, 89.9} {
		for _, month := range northernSummerMonths {
			s.Equal(season.Summer, season.Classify(lat, month), "lat=%v month=%d", lat, month)
		}
		for _, month := range northernWinterMonths {
			s.Equal(season.Winter, season.Classify(lat, month), "lat=%v month=%d", lat, month)
		}
	}
}

func (s *SeasonTestSuite) TestSouthernHemisphereAndEquator() {
	for _, lat := range []float64{0, -0.0001, -33.9, -89.9} {
		for _, month := range northernSummerMonths {
			s.Equal(season.Winter, season.Classify(lat, month), "lat=%v month=%d", lat, month)
		}
		for _, month := range northernWinterMonths {
			s.Equal(season.Summer, season.Classify(lat, month), "lat=%v month=%d", lat, month)
		}
	}
}

func (s *SeasonTestSuite) TestDeterministic() {
	first := season.Classify(51.5, 10)
	for i := 0; i < 100; i++ {
		s.Equal(first, season.Classify(51.5, 10))
	}
}

func (s *SeasonTestSuite) TestNewYorkInJuly() {
	tag := season.Classify(40.7, 6)
	s.Equal(season.Summer, tag)

	info, err := season.Lookup(tag)
	s.NoError(err)
	s.Equal("Let's hit the beach!", info.Text)
	s.Equal("sun", info.IconName)
}

func (s *SeasonTestSuite) TestSydneyInJuly() {
	tag := season.Classify(-33.9, 6)
	s.Equal(season.Winter, tag)

	info, err := season.Lookup(tag)
	s.NoError(err)
	s.Equal("Burr, it's chilly!", info.Text)
	s.Equal("snowflake", info.IconName)
}

func (s *SeasonTestSuite) TestLookupUnknownTag() {
	info, err := season.Lookup("autumn")

	s.ErrorIs(err, season.ErrUnknownSeason)
	s.Equal(season.Info{}, info)
}

func (s *SeasonTestSuite) TestParseTag() {
	tag, err := season.ParseTag("winter")
	s.NoError(err)
	s.Equal(season.Winter, tag)

	_, err = season.ParseTag("spring")
	s.ErrorIs(err, season.ErrUnknownSeason)
}

func (s *SeasonTestSuite) TestMonthIndex() {
	s.Equal(0, season.MonthIndex(time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)))
	s.Equal(6, season.MonthIndex(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)))
	s.Equal(11, season.MonthIndex(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)))
}

func TestSeasonSuite(t *testing.T) {
	suite.Run(t, new(SeasonTestSuite))
}
