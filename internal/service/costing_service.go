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

// CostingService turns product definitions into cost lines. Costs are
// snapshotted onto the lines at explosion time; later catalog or supplier
// price changes never touch existing lines.
type CostingService struct {
	catalogService *CatalogService
	offerRepo      *repository.SupplierOfferRepository
	bundleRepo     *repository.BundleRepository
	clusterRepo    *repository.ClusterRepository
	lineRepo       *repository.LineRepository
	logger         *zap.Logger
}

// NewCostingService creates a new CostingService instance
func NewCostingService(
	catalogService *CatalogService,
	offerRepo *repository.SupplierOfferRepository,
	bundleRepo *repository.BundleRepository,
	clusterRepo *repository.ClusterRepository,
	lineRepo *repository.LineRepository,
	logger *zap.Logger,
) *CostingService {
	return &CostingService{
		catalogService: catalogService,
		offerRepo:      offerRepo,
		bundleRepo:     bundleRepo,
		clusterRepo:    clusterRepo,
		lineRepo:       lineRepo,
		logger:         logger,
	}
}

// ExplodeProduct resolves a product's bill of materials and bill of labor and
// creates the resulting cost lines in the given cluster. The item quantity
// multiplies into every line. BOM and labor are fetched concurrently; an error
// in either aborts the whole explosion. A product without any costing rows
// returns ErrNoCostingRows, which callers treat as non-fatal.
func (s *CostingService) ExplodeProduct(ctx context.Context, clusterID, productID uuid.UUID, qty float64, selectedOptions map[string]string, includeLabor bool) ([]domain.CostLine, error) {
	cluster, err := s.clusterRepo.GetByID(ctx, clusterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}

	var (
		bomRows   []BOMRow
		laborRows []domain.LaborOperation
		bomErr    error
		laborErr  error
	)

	done := make(chan struct{}, 2)
	go func() {
		bomRows, bomErr = s.catalogService.ResolveEffectiveBOM(ctx, productID, selectedOptions)
		done <- struct{}{}
	}()
	go func() {
		if includeLabor {
			laborRows, laborErr = s.catalogService.ResolveLabor(ctx, productID)
		}
		done <- struct{}{}
	}()
	<-done
	<-done

	if bomErr != nil {
		return nil, fmt.Errorf("failed to resolve bill of materials: %w", bomErr)
	}
	if laborErr != nil {
		return nil, fmt.Errorf("failed to resolve bill of labor: %w", laborErr)
	}

	if len(bomRows) == 0 && len(laborRows) == 0 {
		return nil, ErrNoCostingRows
	}

	maxOrder, err := s.lineRepo.GetMaxSortOrder(ctx, cluster.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get max sort order: %w", err)
	}

	lines := BuildComponentLines(cluster.ID, bomRows, qty, maxOrder+1)
	lines = append(lines, BuildLaborLines(cluster.ID, laborRows, qty, maxOrder+1+len(lines))...)

	// Lines without a BOM cost fall back to the cheapest supplier offer.
	// Offer lookup failures leave the cost unknown rather than failing the
	// explosion.
	for i := range lines {
		if lines[i].LineType != domain.LineTypeComponent || lines[i].UnitCost != nil || lines[i].ComponentID == nil {
			continue
		}
		offers, err := s.offerRepo.ListByComponent(ctx, *lines[i].ComponentID)
		if err != nil {
			s.logger.Warn("failed to resolve supplier offers for component, leaving cost unknown",
				zap.String("component_id", lines[i].ComponentID.String()),
				zap.Error(err),
			)
			continue
		}
		if offer := SelectDefaultOffer(offers); offer != nil {
			lines[i].SupplierOfferID = &offer.ID
			lines[i].UnitCost = copyFloat(offer.Price)
		}
	}

	if err := s.lineRepo.CreateBatch(ctx, lines); err != nil {
		return nil, fmt.Errorf("failed to create cost lines: %w", err)
	}

	s.logger.Info("product exploded into cost lines",
		zap.String("cluster_id", cluster.ID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("component_lines", len(bomRows)),
		zap.Int("labor_lines", len(lines)-len(bomRows)),
	)

	return lines, nil
}

// ExpandBundle creates component lines in a cluster from a named bundle.
// The multiplier scales every row quantity; a multiplier of 0 defaults to 1.
// Bundle item prices take precedence over supplier pricing.
func (s *CostingService) ExpandBundle(ctx context.Context, clusterID, bundleID uuid.UUID, multiplier float64) ([]domain.CostLine, error) {
	cluster, err := s.clusterRepo.GetByID(ctx, clusterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}

	bundle, err := s.bundleRepo.GetByID(ctx, bundleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}

	if multiplier <= 0 {
		multiplier = 1
	}

	maxOrder, err := s.lineRepo.GetMaxSortOrder(ctx, cluster.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get max sort order: %w", err)
	}

	lines := make([]domain.CostLine, 0, len(bundle.Items))
	for i, item := range bundle.Items {
		componentID := item.ComponentID
		line := domain.CostLine{
			ClusterID:       cluster.ID,
			LineType:        domain.LineTypeComponent,
			Qty:             item.Quantity * multiplier,
			ComponentID:     &componentID,
			IncludeInMarkup: true,
			SortOrder:       maxOrder + 1 + i,
		}
		if item.Component != nil {
			line.Description = item.Component.Description
			if line.Description == "" {
				line.Description = item.Component.InternalCode
			}
		}
		if item.Price != nil {
			line.UnitCost = copyFloat(item.Price)
		} else {
			offers, err := s.offerRepo.ListByComponent(ctx, item.ComponentID)
			if err != nil {
				s.logger.Warn("failed to resolve supplier offers for bundle item, leaving cost unknown",
					zap.String("component_id", item.ComponentID.String()),
					zap.Error(err),
				)
			} else if offer := SelectDefaultOffer(offers); offer != nil {
				line.SupplierOfferID = &offer.ID
				line.UnitCost = copyFloat(offer.Price)
			}
		}
		lines = append(lines, line)
	}

	if err := s.lineRepo.CreateBatch(ctx, lines); err != nil {
		return nil, fmt.Errorf("failed to create bundle lines: %w", err)
	}

	s.logger.Info("bundle expanded into cost lines",
		zap.String("cluster_id", cluster.ID.String()),
		zap.String("bundle_id", bundle.ID.String()),
		zap.Float64("multiplier", multiplier),
		zap.Int("lines", len(lines)),
	)

	return lines, nil
}

// ToHours converts a time requirement to hours
func ToHours(value float64, unit domain.TimeUnit) float64 {
	switch unit {
	case domain.TimeUnitMinutes:
		return value / 60
	case domain.TimeUnitSeconds:
		return value / 3600
	default:
		return value
	}
}

// BuildComponentLines creates component cost lines from resolved BOM rows.
// Row quantities multiply with the item quantity; row costs are carried as-is,
// including unknown (nil) costs.
func BuildComponentLines(clusterID uuid.UUID, rows []BOMRow, qty float64, startOrder int) []domain.CostLine {
	lines := make([]domain.CostLine, 0, len(rows))
	for i, row := range rows {
		componentID := row.ComponentID
		description := row.Description
		if description == "" {
			description = row.ComponentCode
		}
		lines = append(lines, domain.CostLine{
			ClusterID:       clusterID,
			LineType:        domain.LineTypeComponent,
			Description:     description,
			Qty:             row.Quantity * qty,
			UnitCost:        copyFloat(row.UnitCost),
			ComponentID:     &componentID,
			IncludeInMarkup: true,
			SortOrder:       startOrder + i,
		})
	}
	return lines
}

// BuildLaborLines creates labor cost lines from bill-of-labor rows.
// Piece work costs per produced unit; hourly work costs per hour, with the
// time requirement converted to hours and multiplied into the quantity.
func BuildLaborLines(clusterID uuid.UUID, rows []domain.LaborOperation, qty float64, startOrder int) []domain.CostLine {
	lines := make([]domain.CostLine, 0, len(rows))
	for i, row := range rows {
		payType := row.PayType
		line := domain.CostLine{
			ClusterID:       clusterID,
			LineType:        domain.LineTypeLabor,
			Description:     LaborDescription(row),
			LaborType:       &payType,
			IncludeInMarkup: true,
			SortOrder:       startOrder + i,
		}

		switch row.PayType {
		case domain.PayTypePiece:
			line.Qty = row.Quantity * qty
			line.UnitCost, line.Rate = laborRate(row.PieceRate)
		case domain.PayTypeHourly:
			hours := ToHours(row.TimeRequired, row.TimeUnit)
			line.Qty = row.Quantity * qty * hours
			line.UnitCost, line.Rate = laborRate(row.HourlyRate)
			line.Hours = &hours
		}

		lines = append(lines, line)
	}
	return lines
}

// laborRate snapshots a labor rate onto a line. Unlike component costs, a
// missing rate is an explicit zero rather than an unknown cost.
func laborRate(v *float64) (unitCost, rate *float64) {
	r := 0.0
	if v != nil {
		r = *v
	}
	c := r
	return &c, &r
}

// LaborDescription builds the display text for a labor line
func LaborDescription(row domain.LaborOperation) string {
	name := row.JobName
	if name == "" {
		name = fmt.Sprintf("Job %s", row.ID)
	}
	if row.CategoryName != "" {
		return fmt.Sprintf("Labour – %s · %s", row.CategoryName, name)
	}
	return fmt.Sprintf("Labour – %s", name)
}
