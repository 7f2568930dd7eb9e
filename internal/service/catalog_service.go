package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BOMRow is a resolved bill-of-materials row. Rows from the flattened and the
// direct tables are normalized into this shape before costing.
type BOMRow struct {
	ComponentID   uuid.UUID
	ComponentCode string
	Description   string
	Quantity      float64
	UnitCost      *float64
	OptionGroup   string
	OptionValue   string
}

// CatalogService resolves products, bills of materials and bills of labor
// from the local catalog tables. All methods are read-only; resolution errors
// propagate to the caller rather than producing partial results.
type CatalogService struct {
	productRepo   *repository.ProductRepository
	componentRepo *repository.ComponentRepository
	bundleRepo    *repository.BundleRepository
	logger        *zap.Logger
}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService(
	productRepo *repository.ProductRepository,
	componentRepo *repository.ComponentRepository,
	bundleRepo *repository.BundleRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		productRepo:   productRepo,
		componentRepo: componentRepo,
		bundleRepo:    bundleRepo,
		logger:        logger,
	}
}

// GetProduct retrieves a product with its images
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// SearchProducts returns products matching the search term
func (s *CatalogService) SearchProducts(ctx context.Context, search string, limit, offset int) ([]domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	products, err := s.productRepo.Search(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// GetComponent retrieves a component by ID
func (s *CatalogService) GetComponent(ctx context.Context, id uuid.UUID) (*domain.Component, error) {
	component, err := s.componentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComponentNotFound
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}
	return component, nil
}

// SearchComponents returns components matching the search term
func (s *CatalogService) SearchComponents(ctx context.Context, search string, limit, offset int) ([]domain.Component, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	components, err := s.componentRepo.Search(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search components: %w", err)
	}
	return components, nil
}

// ListBundles returns all cost bundles
func (s *CatalogService) ListBundles(ctx context.Context) ([]domain.CostBundle, error) {
	bundles, err := s.bundleRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	return bundles, nil
}

// GetBundle retrieves a bundle with its items
func (s *CatalogService) GetBundle(ctx context.Context, id uuid.UUID) (*domain.CostBundle, error) {
	bundle, err := s.bundleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	return bundle, nil
}

// ResolveEffectiveBOM returns the bill-of-materials rows that apply for a
// product under the given option selection. Flattened rows maintained by the
// ERP sync take precedence; when a product has none the direct rows are used.
func (s *CatalogService) ResolveEffectiveBOM(ctx context.Context, productID uuid.UUID, selectedOptions map[string]string) ([]BOMRow, error) {
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	effective, err := s.productRepo.ListEffectiveComponents(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load effective BOM: %w", err)
	}

	// The fallback is decided on row presence, before option filtering: a
	// selection that filters out every flattened row yields an empty BOM and
	// does not resurrect the direct rows.
	var rows []BOMRow
	if len(effective) > 0 {
		rows = make([]BOMRow, 0, len(effective))
		for _, row := range effective {
			r := BOMRow{
				ComponentID: row.ComponentID,
				Quantity:    row.Quantity,
				UnitCost:    row.UnitCost,
				OptionGroup: row.OptionGroup,
				OptionValue: row.OptionValue,
			}
			if row.Component != nil {
				r.ComponentCode = row.Component.InternalCode
				r.Description = row.Component.Description
			}
			rows = append(rows, r)
		}
	} else {
		direct, err := s.productRepo.ListDirectComponents(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("failed to load direct BOM: %w", err)
		}
		rows = make([]BOMRow, 0, len(direct))
		for _, row := range direct {
			r := BOMRow{
				ComponentID: row.ComponentID,
				Quantity:    row.Quantity,
				UnitCost:    row.UnitCost,
				OptionGroup: row.OptionGroup,
				OptionValue: row.OptionValue,
			}
			if row.Component != nil {
				r.ComponentCode = row.Component.InternalCode
				r.Description = row.Component.Description
			}
			rows = append(rows, r)
		}
	}

	return FilterRowsByOptions(rows, selectedOptions), nil
}

// ResolveLabor returns a product's bill-of-labor rows
func (s *CatalogService) ResolveLabor(ctx context.Context, productID uuid.UUID) ([]domain.LaborOperation, error) {
	rows, err := s.productRepo.ListLaborOperations(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load labor operations: %w", err)
	}
	return rows, nil
}

// FilterRowsByOptions keeps rows that apply under the given option selection.
// A row applies when it has no option group, or when the selection contains
// its group with a matching value.
func FilterRowsByOptions(rows []BOMRow, selectedOptions map[string]string) []BOMRow {
	filtered := make([]BOMRow, 0, len(rows))
	for _, row := range rows {
		if row.OptionGroup == "" {
			filtered = append(filtered, row)
			continue
		}
		if value, ok := selectedOptions[row.OptionGroup]; ok && value == row.OptionValue {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
