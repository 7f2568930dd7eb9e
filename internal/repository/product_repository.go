package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository handles database operations for products, their bill of
// materials and bill of labor rows.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository instance
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product into the database
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID retrieves a product with its images
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// GetByCode retrieves a product by its internal code
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).Where("internal_code = ?", code).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Search returns products matching the search term by code or name
func (r *ProductRepository) Search(ctx context.Context, search string, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	query := r.db.WithContext(ctx).Model(&domain.Product{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("internal_code ILIKE ? OR name ILIKE ?", pattern, pattern)
	}
	err := query.Order("internal_code ASC").Limit(limit).Offset(offset).Find(&products).Error
	return products, err
}

// ListDirectComponents returns a product's direct bill-of-materials rows with
// the component preloaded, ordered by position.
func (r *ProductRepository) ListDirectComponents(ctx context.Context, productID uuid.UUID) ([]domain.ProductComponent, error) {
	var rows []domain.ProductComponent
	err := r.db.WithContext(ctx).
		Preload("Component").
		Where("product_id = ?", productID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListEffectiveComponents returns a product's flattened bill-of-materials rows
// with the component preloaded, ordered by position.
func (r *ProductRepository) ListEffectiveComponents(ctx context.Context, productID uuid.UUID) ([]domain.EffectiveComponent, error) {
	var rows []domain.EffectiveComponent
	err := r.db.WithContext(ctx).
		Preload("Component").
		Where("product_id = ?", productID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ListLaborOperations returns a product's bill-of-labor rows ordered by position
func (r *ProductRepository) ListLaborOperations(ctx context.Context, productID uuid.UUID) ([]domain.LaborOperation, error) {
	var rows []domain.LaborOperation
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

// GetPrimaryImage returns the product's primary image, falling back to the
// first image when none is flagged primary. Returns gorm.ErrRecordNotFound
// when the product has no images.
func (r *ProductRepository) GetPrimaryImage(ctx context.Context, productID uuid.UUID) (*domain.ProductImage, error) {
	var image domain.ProductImage
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("is_primary DESC, created_at ASC").
		First(&image).Error
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// ReplaceEffectiveComponents swaps a product's flattened bill-of-materials
// rows in a single transaction. Used by the catalog sync.
func (r *ProductRepository) ReplaceEffectiveComponents(ctx context.Context, productID uuid.UUID, rows []domain.EffectiveComponent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&domain.EffectiveComponent{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
