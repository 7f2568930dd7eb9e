package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// QuoteItemRepository handles database operations for quote items
type QuoteItemRepository struct {
	db *gorm.DB
}

// NewQuoteItemRepository creates a new QuoteItemRepository instance
func NewQuoteItemRepository(db *gorm.DB) *QuoteItemRepository {
	return &QuoteItemRepository{db: db}
}

// Create inserts a new quote item into the database
func (r *QuoteItemRepository) Create(ctx context.Context, item *domain.QuoteItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// GetByID retrieves a quote item by its ID
func (r *QuoteItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteItem, error) {
	var item domain.QuoteItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByIDWithDetails retrieves a quote item with clusters, lines and attachments
func (r *QuoteItemRepository) GetByIDWithDetails(ctx context.Context, id uuid.UUID) (*domain.QuoteItem, error) {
	var item domain.QuoteItem
	err := r.db.WithContext(ctx).
		Preload("Clusters", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Clusters.Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		}).
		Preload("Attachments").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update saves changes to an existing quote item
func (r *QuoteItemRepository) Update(ctx context.Context, item *domain.QuoteItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes a quote item from the database
func (r *QuoteItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.QuoteItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByQuote returns all items for a quote ordered by position
func (r *QuoteItemRepository) ListByQuote(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteItem, error) {
	var items []domain.QuoteItem
	err := r.db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("position ASC, created_at ASC").
		Find(&items).Error
	return items, err
}

// CountByQuote returns the number of items on a quote
func (r *QuoteItemRepository) CountByQuote(ctx context.Context, quoteID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.QuoteItem{}).
		Where("quote_id = ?", quoteID).
		Count(&count).Error
	return int(count), err
}

// GetMaxPosition returns the maximum position among a quote's items
func (r *QuoteItemRepository) GetMaxPosition(ctx context.Context, quoteID uuid.UUID) (int, error) {
	var maxPosition *int
	err := r.db.WithContext(ctx).
		Model(&domain.QuoteItem{}).
		Where("quote_id = ?", quoteID).
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

// UpdatePositions persists a new item ordering in a single transaction.
// If any update fails the transaction rolls back and the stored order is
// left untouched.
func (r *QuoteItemRepository) UpdatePositions(ctx context.Context, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			result := tx.Model(&domain.QuoteItem{}).
				Where("id = ?", id).
				Update("position", i)
			if result.Error != nil {
				return fmt.Errorf("failed to update position for item %s: %w", id, result.Error)
			}
		}
		return nil
	})
}
