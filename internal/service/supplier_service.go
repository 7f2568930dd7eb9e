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

// SupplierService resolves supplier prices for catalog components and applies
// selected offers to cost lines.
type SupplierService struct {
	offerRepo     *repository.SupplierOfferRepository
	componentRepo *repository.ComponentRepository
	lineRepo      *repository.LineRepository
	logger        *zap.Logger
}

// NewSupplierService creates a new SupplierService instance
func NewSupplierService(
	offerRepo *repository.SupplierOfferRepository,
	componentRepo *repository.ComponentRepository,
	lineRepo *repository.LineRepository,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		offerRepo:     offerRepo,
		componentRepo: componentRepo,
		lineRepo:      lineRepo,
		logger:        logger,
	}
}

// ListOffers returns all supplier offers for a component in creation order
func (s *SupplierService) ListOffers(ctx context.Context, componentID uuid.UUID) ([]domain.SupplierOffer, error) {
	if _, err := s.componentRepo.GetByID(ctx, componentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComponentNotFound
		}
		return nil, fmt.Errorf("failed to get component: %w", err)
	}

	offers, err := s.offerRepo.ListByComponent(ctx, componentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list supplier offers: %w", err)
	}
	return offers, nil
}

// SelectDefaultOffer picks the cheapest priced offer from the given slice.
// Ties resolve to the offer encountered first. Returns nil when no offer
// carries a price.
func SelectDefaultOffer(offers []domain.SupplierOffer) *domain.SupplierOffer {
	var best *domain.SupplierOffer
	for i := range offers {
		if offers[i].Price == nil {
			continue
		}
		if best == nil || *offers[i].Price < *best.Price {
			best = &offers[i]
		}
	}
	return best
}

// IsLowestOffer reports whether the offer's price equals the lowest price in
// the slice. All tied offers are lowest. Unpriced offers never are.
func IsLowestOffer(offer *domain.SupplierOffer, offers []domain.SupplierOffer) bool {
	if offer == nil || offer.Price == nil {
		return false
	}
	best := SelectDefaultOffer(offers)
	if best == nil {
		return false
	}
	return *offer.Price == *best.Price
}

// ApplyOfferToLine snapshots a supplier offer's price onto a cost line.
// Picking an offer is an explicit choice, so a previous manual override is
// cleared and the line follows the offer's price from now on.
func (s *SupplierService) ApplyOfferToLine(ctx context.Context, lineID, offerID uuid.UUID) (*domain.CostLine, error) {
	line, err := s.lineRepo.GetByID(ctx, lineID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to get line: %w", err)
	}

	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, fmt.Errorf("failed to get supplier offer: %w", err)
	}

	if line.ComponentID == nil || *line.ComponentID != offer.ComponentID {
		return nil, ErrOfferComponentMismatch
	}

	line.SupplierOfferID = &offer.ID
	line.UnitCost = copyFloat(offer.Price)
	line.CostOverride = false

	if err := s.lineRepo.Update(ctx, line); err != nil {
		return nil, fmt.Errorf("failed to apply supplier offer: %w", err)
	}

	s.logger.Info("supplier offer applied to line",
		zap.String("line_id", line.ID.String()),
		zap.String("offer_id", offer.ID.String()),
		zap.String("supplier", offer.SupplierName),
	)

	return line, nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
