package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// ClusterRepository handles database operations for cost clusters
type ClusterRepository struct {
	db *gorm.DB
}

// NewClusterRepository creates a new ClusterRepository instance
func NewClusterRepository(db *gorm.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

// Create inserts a new cluster into the database
func (r *ClusterRepository) Create(ctx context.Context, cluster *domain.CostCluster) error {
	return r.db.WithContext(ctx).Create(cluster).Error
}

// GetByID retrieves a cluster by its ID without lines
func (r *ClusterRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CostCluster, error) {
	var cluster domain.CostCluster
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&cluster).Error
	if err != nil {
		return nil, err
	}
	return &cluster, nil
}

// GetByIDWithLines retrieves a cluster with its lines ordered by sort order
func (r *ClusterRepository) GetByIDWithLines(ctx context.Context, id uuid.UUID) (*domain.CostCluster, error) {
	var cluster domain.CostCluster
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Where("id = ?", id).
		First(&cluster).Error
	if err != nil {
		return nil, err
	}
	return &cluster, nil
}

// Update saves changes to an existing cluster
func (r *ClusterRepository) Update(ctx context.Context, cluster *domain.CostCluster) error {
	return r.db.WithContext(ctx).Save(cluster).Error
}

// Delete removes a cluster and its lines from the database
func (r *ClusterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.CostCluster{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByItem returns all clusters for a quote item ordered by position
func (r *ClusterRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.CostCluster, error) {
	var clusters []domain.CostCluster
	err := r.db.WithContext(ctx).
		Where("quote_item_id = ?", itemID).
		Order("position ASC, created_at ASC").
		Find(&clusters).Error
	return clusters, err
}

// FirstByItem returns the first cluster for a quote item by position, or
// gorm.ErrRecordNotFound when the item has none.
func (r *ClusterRepository) FirstByItem(ctx context.Context, itemID uuid.UUID) (*domain.CostCluster, error) {
	var cluster domain.CostCluster
	err := r.db.WithContext(ctx).
		Where("quote_item_id = ?", itemID).
		Order("position ASC, created_at ASC").
		First(&cluster).Error
	if err != nil {
		return nil, err
	}
	return &cluster, nil
}

// GetMaxPosition returns the maximum position among an item's clusters
func (r *ClusterRepository) GetMaxPosition(ctx context.Context, itemID uuid.UUID) (int, error) {
	var maxPosition *int
	err := r.db.WithContext(ctx).
		Model(&domain.CostCluster{}).
		Where("quote_item_id = ?", itemID).
		Select("MAX(position)").
		Scan(&maxPosition).Error
	if err != nil {
		return 0, err
	}
	if maxPosition == nil {
		return 0, nil
	}
	return *maxPosition, nil
}
