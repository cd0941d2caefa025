package season

import (
	"errors"
	"fmt"
	"time"
)

type Tag string

const (
	Summer Tag = "summer"
	Winter Tag = "winter"
)

var ErrUnknownSeason = errors.New("unknown season")

type Info struct {
	Text     string `json:"text"`
	IconName string `json:"icon_name"`
}

var infos = map[Tag]Info{
	Summer: {Text: "Let's hit the beach!", IconName: "sun"},
	Winter: {Text: "Burr, it's chilly!", IconName: "snowflake"},
}

// Classify maps a latitude and a zero-based month index to a season tag.
// April through September is summer north of the equator and winter south of it.
// A latitude of exactly 0 is handled like the southern hemisphere.
func Classify(latitude float64, monthIndex int) Tag {
	if monthIndex > 2 && monthIndex < 9 {
		if latitude > 0 {
			return Summer
		}
		return Winter
	}

	if latitude > 0 {
		return Winter
	}
	return Summer
}

func Lookup(tag Tag) (Info, error) {
	info, ok := infos[tag]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownSeason, tag)
	}
	return info, nil
}

func ParseTag(s string) (Tag, error) {
	tag := Tag(s)
	if _, ok := infos[tag]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSeason, s)
	}
	return tag, nil
}

// MonthIndex returns the month of t counted from zero (January is 0).
func MonthIndex(t time.Time) int {
	return int(t.Month()) - 1
}
