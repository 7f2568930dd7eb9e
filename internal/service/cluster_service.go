package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultClusterName is the name given to auto-created cost clusters
const DefaultClusterName = "Costing Cluster"

// ClusterTotals is the aggregation result for a cluster
type ClusterTotals struct {
	Subtotal     float64
	MarkupAmount float64
	Total        float64
	UnknownCosts int
}

// ClusterService manages cost clusters and their lines, aggregates cluster
// totals and propagates them to the owning quote item on request.
type ClusterService struct {
	clusterRepo *repository.ClusterRepository
	lineRepo    *repository.LineRepository
	itemRepo    *repository.QuoteItemRepository
	logger      *zap.Logger
}

// NewClusterService creates a new ClusterService instance
func NewClusterService(
	clusterRepo *repository.ClusterRepository,
	lineRepo *repository.LineRepository,
	itemRepo *repository.QuoteItemRepository,
	logger *zap.Logger,
) *ClusterService {
	return &ClusterService{
		clusterRepo: clusterRepo,
		lineRepo:    lineRepo,
		itemRepo:    itemRepo,
		logger:      logger,
	}
}

// GetCluster retrieves a cluster with its lines
func (s *ClusterService) GetCluster(ctx context.Context, id uuid.UUID) (*domain.CostCluster, error) {
	cluster, err := s.clusterRepo.GetByIDWithLines(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}
	return cluster, nil
}

// EnsureCluster returns the item's first cluster, creating the default one at
// position 0 when the item has none. This is the single get-or-create call
// site for clusters; heading and note items are rejected.
func (s *ClusterService) EnsureCluster(ctx context.Context, itemID uuid.UUID) (*domain.CostCluster, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if !item.ItemType.IsPriced() {
		return nil, ErrItemNotPriced
	}

	cluster, err := s.clusterRepo.FirstByItem(ctx, itemID)
	if err == nil {
		return cluster, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up cluster: %w", err)
	}

	cluster = &domain.CostCluster{
		QuoteItemID: itemID,
		Name:        DefaultClusterName,
		Position:    0,
		MarkupType:  domain.MarkupTypePercentage,
		MarkupValue: 0,
	}
	if err := s.clusterRepo.Create(ctx, cluster); err != nil {
		return nil, fmt.Errorf("failed to create cluster: %w", err)
	}

	s.logger.Info("default cluster created",
		zap.String("item_id", itemID.String()),
		zap.String("cluster_id", cluster.ID.String()),
	)

	return cluster, nil
}

// UpdateCluster updates a cluster's name and markup. Switching the markup
// type resets the markup value to zero so a percentage is never reinterpreted
// as an amount.
func (s *ClusterService) UpdateCluster(ctx context.Context, id uuid.UUID, req *domain.UpdateClusterRequest) (*domain.CostCluster, error) {
	cluster, err := s.clusterRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}

	cluster.Name = req.Name

	if req.MarkupType != nil && *req.MarkupType != cluster.MarkupType {
		if !req.MarkupType.IsValid() {
			return nil, fmt.Errorf("%w: invalid markup type %q", ErrInvalidInput, *req.MarkupType)
		}
		cluster.MarkupType = *req.MarkupType
		cluster.MarkupValue = 0
	}
	if req.MarkupValue != nil {
		cluster.MarkupValue = *req.MarkupValue
	}

	if err := s.clusterRepo.Update(ctx, cluster); err != nil {
		return nil, fmt.Errorf("failed to update cluster: %w", err)
	}

	return cluster, nil
}

// GetTotals aggregates a cluster's lines into subtotal, markup and total
func (s *ClusterService) GetTotals(ctx context.Context, id uuid.UUID) (*domain.CostCluster, *ClusterTotals, error) {
	cluster, err := s.clusterRepo.GetByIDWithLines(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrClusterNotFound
		}
		return nil, nil, fmt.Errorf("failed to get cluster: %w", err)
	}

	totals := ComputeTotals(cluster)
	return cluster, &totals, nil
}

// ApplyTotalToItem writes a cluster's total, rounded to two decimals, into the
// owning quote item's unit price. Propagation only ever happens through this
// explicit call; editing lines or markup never touches the item price.
func (s *ClusterService) ApplyTotalToItem(ctx context.Context, itemID, clusterID uuid.UUID) (*domain.QuoteItem, error) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if !item.ItemType.IsPriced() {
		return nil, ErrItemNotPriced
	}

	cluster, err := s.clusterRepo.GetByIDWithLines(ctx, clusterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}

	if cluster.QuoteItemID != item.ID {
		return nil, fmt.Errorf("%w: cluster does not belong to item", ErrInvalidInput)
	}

	totals := ComputeTotals(cluster)
	item.UnitPrice = RoundPrice(totals.Total)

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item price: %w", err)
	}

	s.logger.Info("cluster total applied to item price",
		zap.String("item_id", item.ID.String()),
		zap.String("cluster_id", cluster.ID.String()),
		zap.Float64("unit_price", item.UnitPrice),
	)

	return item, nil
}

// CreateLine adds a manual line to a cluster
func (s *ClusterService) CreateLine(ctx context.Context, clusterID uuid.UUID, req *domain.CreateLineRequest) (*domain.CostLine, error) {
	cluster, err := s.clusterRepo.GetByID(ctx, clusterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClusterNotFound
		}
		return nil, fmt.Errorf("failed to get cluster: %w", err)
	}

	if !req.LineType.IsValid() {
		return nil, fmt.Errorf("%w: invalid line type %q", ErrInvalidInput, req.LineType)
	}

	maxOrder, err := s.lineRepo.GetMaxSortOrder(ctx, cluster.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get max sort order: %w", err)
	}

	line := &domain.CostLine{
		ClusterID:       cluster.ID,
		LineType:        req.LineType,
		Description:     req.Description,
		Qty:             req.Qty,
		UnitCost:        copyFloat(req.UnitCost),
		ComponentID:     req.ComponentID,
		IncludeInMarkup: true,
		SortOrder:       maxOrder + 1,
		LaborType:       req.LaborType,
		Hours:           copyFloat(req.Hours),
		Rate:            copyFloat(req.Rate),
		CutlistSlot:     req.CutlistSlot,
	}
	if req.IncludeInMarkup != nil {
		line.IncludeInMarkup = *req.IncludeInMarkup
	}

	if err := s.lineRepo.Create(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to create line: %w", err)
	}

	return line, nil
}

// UpdateLine applies field-level changes to a cost line. A line whose cost is
// snapshotted from a supplier offer rejects direct cost edits unless the
// override flag is set in the same request or was set before.
func (s *ClusterService) UpdateLine(ctx context.Context, id uuid.UUID, req *domain.UpdateLineRequest) (*domain.CostLine, error) {
	line, err := s.lineRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to get line: %w", err)
	}

	if req.CostOverride != nil {
		line.CostOverride = *req.CostOverride
	}

	if req.UnitCost != nil {
		if line.SupplierOfferID != nil && !line.CostOverride {
			return nil, ErrCostLocked
		}
		line.UnitCost = copyFloat(req.UnitCost)
	}

	if req.Description != nil {
		line.Description = *req.Description
	}
	if req.Qty != nil {
		line.Qty = *req.Qty
	}
	if req.IncludeInMarkup != nil {
		line.IncludeInMarkup = *req.IncludeInMarkup
	}
	if req.SortOrder != nil {
		line.SortOrder = *req.SortOrder
	}
	if req.Hours != nil {
		line.Hours = copyFloat(req.Hours)
	}
	if req.Rate != nil {
		line.Rate = copyFloat(req.Rate)
	}
	if req.CutlistSlot != nil {
		line.CutlistSlot = *req.CutlistSlot
	}

	if err := s.lineRepo.Update(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to update line: %w", err)
	}

	return line, nil
}

// DeleteLine removes a cost line
func (s *ClusterService) DeleteLine(ctx context.Context, id uuid.UUID) error {
	if err := s.lineRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLineNotFound
		}
		return fmt.Errorf("failed to delete line: %w", err)
	}
	return nil
}

// ComputeSubtotal sums qty * unit cost across the lines.
// Lines with unknown cost contribute zero.
func ComputeSubtotal(lines []domain.CostLine) float64 {
	subtotal := 0.0
	for _, line := range lines {
		if line.UnitCost == nil {
			continue
		}
		subtotal += line.Qty * *line.UnitCost
	}
	return subtotal
}

// ComputeMarkupBase sums qty * unit cost across the lines that participate in
// markup.
func ComputeMarkupBase(lines []domain.CostLine) float64 {
	base := 0.0
	for _, line := range lines {
		if !line.IncludeInMarkup || line.UnitCost == nil {
			continue
		}
		base += line.Qty * *line.UnitCost
	}
	return base
}

// ComputeMarkupAmount computes the markup amount for a base value.
// Percentage markup scales the base; fixed markup is the value itself.
func ComputeMarkupAmount(base float64, markupType domain.MarkupType, markupValue float64) float64 {
	switch markupType {
	case domain.MarkupTypeFixed:
		return markupValue
	default:
		return base * markupValue / 100
	}
}

// ComputeTotals aggregates a cluster with loaded lines
func ComputeTotals(cluster *domain.CostCluster) ClusterTotals {
	totals := ClusterTotals{
		Subtotal: ComputeSubtotal(cluster.Lines),
	}
	totals.MarkupAmount = ComputeMarkupAmount(ComputeMarkupBase(cluster.Lines), cluster.MarkupType, cluster.MarkupValue)
	totals.Total = totals.Subtotal + totals.MarkupAmount

	for _, line := range cluster.Lines {
		if line.UnitCost == nil {
			totals.UnknownCosts++
		}
	}
	return totals
}

// RoundPrice rounds a price to two decimals
func RoundPrice(v float64) float64 {
	return math.Round(v*100) / 100
}
