package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// QuoteRepository handles database operations for quotes
type QuoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository creates a new QuoteRepository instance
func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a new quote into the database
func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

// GetByID retrieves a quote by its ID without related items
func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByIDWithItems retrieves a quote with its items, clusters, lines and attachments
func (r *QuoteRepository) GetByIDWithItems(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Items.Clusters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Items.Clusters.Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Items.Attachments").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Update saves changes to an existing quote
func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// Delete removes a quote and its items from the database
func (r *QuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.Quote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns quotes matching the optional search term, newest first
func (r *QuoteRepository) List(ctx context.Context, search string, limit, offset int) ([]domain.Quote, error) {
	var quotes []domain.Quote
	query := r.db.WithContext(ctx).Model(&domain.Quote{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR number ILIKE ? OR customer_name ILIKE ?", pattern, pattern, pattern)
	}
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&quotes).Error
	return quotes, err
}

// Count returns the total number of quotes
func (r *QuoteRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Quote{}).Count(&count).Error
	return count, err
}
