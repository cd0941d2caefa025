package viewlog

import (
	"time"
)

type ViewResolution struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ViewID       string    `json:"view_id" gorm:"column:view_id;index:idx_view_id"`
	Provider     string    `json:"provider" gorm:"column:provider"`
	Status       string    `json:"status" gorm:"column:status"`
	Latitude     *float64  `json:"latitude,omitempty" gorm:"column:latitude"`
	Longitude    *float64  `json:"longitude,omitempty" gorm:"column:longitude"`
	Season       string    `json:"season,omitempty" gorm:"column:season;index:idx_season_created_at"`
	ErrorMessage string    `json:"error_message,omitempty" gorm:"column:error_message"`
	CreatedAt    time.Time `json:"created_at" gorm:"index:idx_created_at;index:idx_season_created_at"`
}

func (ViewResolution) TableName() string {
	return "view_resolutions"
}

type SeasonCount struct {
	Season string `json:"season"`
	Count  int64  `json:"count"`
}
