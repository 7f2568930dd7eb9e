package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// BundleRepository handles database operations for cost bundles
type BundleRepository struct {
	db *gorm.DB
}

// NewBundleRepository creates a new BundleRepository instance
func NewBundleRepository(db *gorm.DB) *BundleRepository {
	return &BundleRepository{db: db}
}

// Create inserts a new bundle into the database
func (r *BundleRepository) Create(ctx context.Context, bundle *domain.CostBundle) error {
	return r.db.WithContext(ctx).Create(bundle).Error
}

// GetByID retrieves a bundle with its items and their components
func (r *BundleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CostBundle, error) {
	var bundle domain.CostBundle
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Items.Component").
		Where("id = ?", id).
		First(&bundle).Error
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

// List returns all bundles ordered by name
func (r *BundleRepository) List(ctx context.Context) ([]domain.CostBundle, error) {
	var bundles []domain.CostBundle
	err := r.db.WithContext(ctx).Order("name ASC").Find(&bundles).Error
	return bundles, err
}

// Delete removes a bundle and its items from the database
func (r *BundleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.CostBundle{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
