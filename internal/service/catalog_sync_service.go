package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/erp"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogSyncService pulls the component catalog, supplier prices and
// flattened bills of materials from the ERP warehouse into the local tables.
// Row failures are counted and logged but never abort a sync run; the catalog
// converges over successive runs.
type CatalogSyncService struct {
	erpClient     *erp.Client
	componentRepo *repository.ComponentRepository
	offerRepo     *repository.SupplierOfferRepository
	productRepo   *repository.ProductRepository
	logger        *zap.Logger
}

// NewCatalogSyncService creates a new CatalogSyncService instance
func NewCatalogSyncService(
	erpClient *erp.Client,
	componentRepo *repository.ComponentRepository,
	offerRepo *repository.SupplierOfferRepository,
	productRepo *repository.ProductRepository,
	logger *zap.Logger,
) *CatalogSyncService {
	return &CatalogSyncService{
		erpClient:     erpClient,
		componentRepo: componentRepo,
		offerRepo:     offerRepo,
		productRepo:   productRepo,
		logger:        logger,
	}
}

// SyncComponentsFromErp upserts the component catalog and supplier prices
func (s *CatalogSyncService) SyncComponentsFromErp(ctx context.Context) (int, int, error) {
	if !s.erpClient.IsEnabled() {
		return 0, 0, fmt.Errorf("erp client not enabled")
	}

	componentRows, err := s.erpClient.FetchComponents(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch components from erp: %w", err)
	}

	synced, failed := 0, 0
	for _, row := range componentRows {
		component := &domain.Component{
			InternalCode: row.InternalCode,
			Description:  row.Description,
			Unit:         row.Unit,
		}
		if err := s.componentRepo.Upsert(ctx, component); err != nil {
			s.logger.Warn("failed to upsert component",
				zap.String("internal_code", row.InternalCode),
				zap.Error(err),
			)
			failed++
			continue
		}
		synced++
	}

	offerSynced, offerFailed, err := s.syncSupplierOffers(ctx)
	if err != nil {
		// Component sync still counts; report the offer failure upward.
		return synced, failed, err
	}

	return synced + offerSynced, failed + offerFailed, nil
}

// syncSupplierOffers upserts supplier prices keyed by component code and
// supplier name. Rows referencing unknown components are counted as failures.
func (s *CatalogSyncService) syncSupplierOffers(ctx context.Context) (int, int, error) {
	offerRows, err := s.erpClient.FetchSupplierOffers(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch supplier offers from erp: %w", err)
	}

	synced, failed := 0, 0
	for _, row := range offerRows {
		component, err := s.componentRepo.GetByCode(ctx, row.ComponentCode)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("failed to look up component for supplier offer",
					zap.String("component_code", row.ComponentCode),
					zap.Error(err),
				)
			}
			failed++
			continue
		}

		offer := &domain.SupplierOffer{
			ComponentID:  component.ID,
			SupplierName: row.SupplierName,
			Price:        row.Price,
			Currency:     row.Currency,
			LeadTimeDays: row.LeadTimeDays,
			MinOrderQty:  row.MinOrderQty,
		}
		if err := s.offerRepo.UpsertBySupplier(ctx, offer); err != nil {
			s.logger.Warn("failed to upsert supplier offer",
				zap.String("component_code", row.ComponentCode),
				zap.String("supplier", row.SupplierName),
				zap.Error(err),
			)
			failed++
			continue
		}
		synced++
	}

	return synced, failed, nil
}

// SyncEffectiveBOMFromErp replaces the flattened bill-of-materials rows for
// every product present in the ERP extract. Products or rows referencing
// unknown codes are skipped and counted as failures.
func (s *CatalogSyncService) SyncEffectiveBOMFromErp(ctx context.Context) (int, int, error) {
	if !s.erpClient.IsEnabled() {
		return 0, 0, fmt.Errorf("erp client not enabled")
	}

	bomRows, err := s.erpClient.FetchEffectiveBOM(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch effective BOM from erp: %w", err)
	}

	byProduct := make(map[string][]erp.EffectiveBOMRow)
	for _, row := range bomRows {
		byProduct[row.ProductCode] = append(byProduct[row.ProductCode], row)
	}

	synced, failed := 0, 0
	for productCode, rows := range byProduct {
		product, err := s.productRepo.GetByCode(ctx, productCode)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("failed to look up product for BOM sync",
					zap.String("product_code", productCode),
					zap.Error(err),
				)
			}
			failed++
			continue
		}

		effective := make([]domain.EffectiveComponent, 0, len(rows))
		skipProduct := false
		for _, row := range rows {
			component, err := s.componentRepo.GetByCode(ctx, row.ComponentCode)
			if err != nil {
				s.logger.Warn("BOM row references unknown component, skipping product",
					zap.String("product_code", productCode),
					zap.String("component_code", row.ComponentCode),
					zap.Error(err),
				)
				skipProduct = true
				break
			}
			effective = append(effective, domain.EffectiveComponent{
				ProductID:   product.ID,
				ComponentID: component.ID,
				Quantity:    row.Quantity,
				UnitCost:    row.UnitCost,
				OptionGroup: row.OptionGroup,
				OptionValue: row.OptionValue,
				Position:    row.Position,
			})
		}
		if skipProduct {
			failed++
			continue
		}

		if err := s.productRepo.ReplaceEffectiveComponents(ctx, product.ID, effective); err != nil {
			s.logger.Warn("failed to replace effective BOM rows",
				zap.String("product_code", productCode),
				zap.Error(err),
			)
			failed++
			continue
		}
		synced++
	}

	return synced, failed, nil
}
