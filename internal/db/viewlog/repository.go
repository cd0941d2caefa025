package viewlog

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrResolutionNotFound = errors.New("view resolution not found")

type Repository interface {
	LogResolution(resolution *ViewResolution) error
	GetRecentResolution(viewID string) (*ViewResolution, error)
	CountBySeason(since time.Time) ([]SeasonCount, error)
}

type ViewSQLRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &ViewSQLRepository{db: db}
}

func (r *ViewSQLRepository) LogResolution(resolution *ViewResolution) error {
	if resolution.CreatedAt.IsZero() {
		resolution.CreatedAt = time.Now()
	}

	return r.db.Create(resolution).Error
}

func (r *ViewSQLRepository) GetRecentResolution(viewID string) (*ViewResolution, error) {
	var resolution ViewResolution
	err := r.db.Where("view_id = ?", viewID).Order("created_at DESC").First(&resolution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s: %w", ErrResolutionNotFound, viewID, err)
	}
	if err != nil {
		return nil, err
	}
	return &resolution, nil
}

// CountBySeason groups successful resolutions created at or after since.
func (r *ViewSQLRepository) CountBySeason(since time.Time) ([]SeasonCount, error) {
	var counts []SeasonCount
	err := r.db.Model(&ViewResolution{}).
		Select("season, count(*) as count").
		Where("status = ? AND created_at >= ?", "available", since).
		Group("season").
		Order("season").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
