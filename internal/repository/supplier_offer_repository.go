package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// SupplierOfferRepository handles database operations for supplier offers
type SupplierOfferRepository struct {
	db *gorm.DB
}

// NewSupplierOfferRepository creates a new SupplierOfferRepository instance
func NewSupplierOfferRepository(db *gorm.DB) *SupplierOfferRepository {
	return &SupplierOfferRepository{db: db}
}

// Create inserts a new supplier offer into the database
func (r *SupplierOfferRepository) Create(ctx context.Context, offer *domain.SupplierOffer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

// GetByID retrieves a supplier offer by its ID
func (r *SupplierOfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.SupplierOffer, error) {
	var offer domain.SupplierOffer
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// Update saves changes to an existing supplier offer
func (r *SupplierOfferRepository) Update(ctx context.Context, offer *domain.SupplierOffer) error {
	return r.db.WithContext(ctx).Save(offer).Error
}

// Delete removes a supplier offer from the database
func (r *SupplierOfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&domain.SupplierOffer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByComponent returns all offers for a component in creation order.
// Creation order matters: default selection picks the first of the cheapest
// offers encountered in this order.
func (r *SupplierOfferRepository) ListByComponent(ctx context.Context, componentID uuid.UUID) ([]domain.SupplierOffer, error) {
	var offers []domain.SupplierOffer
	err := r.db.WithContext(ctx).
		Where("component_id = ?", componentID).
		Order("created_at ASC").
		Find(&offers).Error
	return offers, err
}

// UpsertBySupplier inserts an offer or updates the price fields when the
// component already has an offer from the same supplier. Used by the catalog sync.
func (r *SupplierOfferRepository) UpsertBySupplier(ctx context.Context, offer *domain.SupplierOffer) error {
	var existing domain.SupplierOffer
	err := r.db.WithContext(ctx).
		Where("component_id = ? AND supplier_name = ?", offer.ComponentID, offer.SupplierName).
		First(&existing).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return r.db.WithContext(ctx).Create(offer).Error
		}
		return err
	}

	existing.Price = offer.Price
	existing.Currency = offer.Currency
	existing.LeadTimeDays = offer.LeadTimeDays
	existing.MinOrderQty = offer.MinOrderQty
	return r.db.WithContext(ctx).Save(&existing).Error
}
