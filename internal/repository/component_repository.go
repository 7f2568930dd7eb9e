package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComponentRepository handles database operations for catalog components
type ComponentRepository struct {
	db *gorm.DB
}

// NewComponentRepository creates a new ComponentRepository instance
func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

// Create inserts a new component into the database
func (r *ComponentRepository) Create(ctx context.Context, component *domain.Component) error {
	return r.db.WithContext(ctx).Create(component).Error
}

// GetByID retrieves a component by its ID
func (r *ComponentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Component, error) {
	var component domain.Component
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&component).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

// GetByCode retrieves a component by its internal code
func (r *ComponentRepository) GetByCode(ctx context.Context, code string) (*domain.Component, error) {
	var component domain.Component
	err := r.db.WithContext(ctx).Where("internal_code = ?", code).First(&component).Error
	if err != nil {
		return nil, err
	}
	return &component, nil
}

// ListByIDs retrieves components for the given IDs
func (r *ComponentRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Component, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var components []domain.Component
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&components).Error
	return components, err
}

// Search returns components matching the search term by code or description
func (r *ComponentRepository) Search(ctx context.Context, search string, limit, offset int) ([]domain.Component, error) {
	var components []domain.Component
	query := r.db.WithContext(ctx).Model(&domain.Component{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("internal_code ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	err := query.Order("internal_code ASC").Limit(limit).Offset(offset).Find(&components).Error
	return components, err
}

// Upsert inserts a component or updates description and unit when the internal
// code already exists. Used by the catalog sync.
func (r *ComponentRepository) Upsert(ctx context.Context, component *domain.Component) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "internal_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "unit", "updated_at"}),
		}).
		Create(component).Error
}
