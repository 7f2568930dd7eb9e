package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// LineRepository handles database operations for cost lines
type LineRepository struct {
	db *gorm.DB
}

// NewLineRepository creates a new LineRepository instance
func NewLineRepository(db *gorm.DB) *LineRepository {
	return &LineRepository{db: db}
}

// Create inserts a new cost line into the database
func (r *LineRepository) Create(ctx context.Context, line *domain.CostLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// CreateBatch inserts multiple cost lines in a single transaction
func (r *LineRepository) CreateBatch(ctx context.Context, lines []domain.CostLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// GetByID retrieves a cost line by its ID
func (r *LineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CostLine, error) {
	var line domain.CostLine
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// Update saves changes to an existing cost line
func (r *LineRepository) Update(ctx context.Context, line *domain.CostLine) error {
	return r.db.WithContext(ctx).Save(line).Error
}

// Delete removes a cost line from the database
func (r *LineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.CostLine{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByCluster returns all lines for a cluster ordered by sort order
func (r *LineRepository) ListByCluster(ctx context.Context, clusterID uuid.UUID) ([]domain.CostLine, error) {
	var lines []domain.CostLine
	err := r.db.WithContext(ctx).
		Where("cluster_id = ?", clusterID).
		Order("sort_order ASC, created_at ASC").
		Find(&lines).Error
	return lines, err
}

// GetMaxSortOrder returns the maximum sort order among a cluster's lines
func (r *LineRepository) GetMaxSortOrder(ctx context.Context, clusterID uuid.UUID) (int, error) {
	var maxOrder *int
	err := r.db.WithContext(ctx).
		Model(&domain.CostLine{}).
		Where("cluster_id = ?", clusterID).
		Select("MAX(sort_order)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	if maxOrder == nil {
		return 0, nil
	}
	return *maxOrder, nil
}
