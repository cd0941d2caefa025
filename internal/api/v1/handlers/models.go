package handlers

import (
	"ulascansenturk/season-service/internal/season"
	"ulascansenturk/season-service/internal/view"
)

type ViewResponse struct {
	ID       string     `json:"id"`
	Provider string     `json:"provider"`
	Status   string     `json:"status"`
	Kind     view.Kind  `json:"kind"`
	Message  string     `json:"message,omitempty"`
	Season   season.Tag `json:"season,omitempty"`
	Text     string     `json:"text,omitempty"`
	IconName string     `json:"icon_name,omitempty"`
}

// PositionReport mirrors what the browser geolocation API hands back: either
// a position or an error message.
type PositionReport struct {
	Latitude  *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Error     string   `json:"error,omitempty" validate:"max=512"`
}

type SeasonResponse struct {
	Latitude   float64    `json:"latitude"`
	MonthIndex int        `json:"month_index"`
	Season     season.Tag `json:"season"`
	Text       string     `json:"text"`
	IconName   string     `json:"icon_name"`
}

type SeasonCountResponse struct {
	Season string `json:"season"`
	Count  int64  `json:"count"`
}

type SeasonStatsResponse struct {
	Since  string                `json:"since"`
	Counts []SeasonCountResponse `json:"counts"`
}

type Error struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
	Title  string `json:"title"`
}

type ErrorResponse struct {
	Errors []Error `json:"errors"`
}
