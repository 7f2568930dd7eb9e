package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ItemService manages the quote item lifecycle: creation from manual input,
// products or text, updates, duplication and reordering.
type ItemService struct {
	itemRepo          *repository.QuoteItemRepository
	quoteRepo         *repository.QuoteRepository
	clusterRepo       *repository.ClusterRepository
	lineRepo          *repository.LineRepository
	productRepo       *repository.ProductRepository
	clusterService    *ClusterService
	costingService    *CostingService
	attachmentService *AttachmentService
	logger            *zap.Logger
}

// NewItemService creates a new ItemService instance
func NewItemService(
	itemRepo *repository.QuoteItemRepository,
	quoteRepo *repository.QuoteRepository,
	clusterRepo *repository.ClusterRepository,
	lineRepo *repository.LineRepository,
	productRepo *repository.ProductRepository,
	clusterService *ClusterService,
	costingService *CostingService,
	attachmentService *AttachmentService,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		itemRepo:          itemRepo,
		quoteRepo:         quoteRepo,
		clusterRepo:       clusterRepo,
		lineRepo:          lineRepo,
		productRepo:       productRepo,
		clusterService:    clusterService,
		costingService:    costingService,
		attachmentService: attachmentService,
		logger:            logger,
	}
}

// GetItem retrieves a quote item with clusters, lines and attachments
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*domain.QuoteItem, error) {
	item, err := s.itemRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems returns a quote's items in display order
func (s *ItemService) ListItems(ctx context.Context, quoteID uuid.UUID) ([]domain.QuoteItem, error) {
	if _, err := s.quoteRepo.GetByID(ctx, quoteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	items, err := s.itemRepo.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// CreateItem creates a quote item from a tagged request. Exactly one of the
// manual, product or text payloads must match the kind.
func (s *ItemService) CreateItem(ctx context.Context, quoteID uuid.UUID, req *domain.CreateItemRequest) (*domain.QuoteItem, error) {
	if _, err := s.quoteRepo.GetByID(ctx, quoteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	switch req.Kind {
	case domain.ItemKindManual:
		if req.Manual == nil {
			return nil, fmt.Errorf("%w: manual payload required for kind %q", ErrInvalidInput, req.Kind)
		}
		return s.createManualItem(ctx, quoteID, req.Manual)
	case domain.ItemKindProduct:
		if req.Product == nil {
			return nil, fmt.Errorf("%w: product payload required for kind %q", ErrInvalidInput, req.Kind)
		}
		return s.createProductItem(ctx, quoteID, req.Product)
	case domain.ItemKindText:
		if req.Text == nil {
			return nil, fmt.Errorf("%w: text payload required for kind %q", ErrInvalidInput, req.Kind)
		}
		return s.createTextItem(ctx, quoteID, req.Text)
	default:
		return nil, fmt.Errorf("%w: invalid item kind %q", ErrInvalidInput, req.Kind)
	}
}

func (s *ItemService) createManualItem(ctx context.Context, quoteID uuid.UUID, req *domain.CreateManualItemRequest) (*domain.QuoteItem, error) {
	position, err := s.nextPosition(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	item := &domain.QuoteItem{
		QuoteID:     quoteID,
		Description: req.Description,
		Qty:         req.Qty,
		UnitPrice:   req.UnitPrice,
		ItemType:    domain.ItemTypePriced,
		TextAlign:   domain.TextAlignLeft,
		Position:    position,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// createProductItem creates a priced item from a product. When cost explosion
// is requested the product's bill of materials and labor land in the item's
// default cluster; a product without costing rows still yields an item. The
// product's primary image is attached best-effort.
func (s *ItemService) createProductItem(ctx context.Context, quoteID uuid.UUID, req *domain.CreateProductItemRequest) (*domain.QuoteItem, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	position, err := s.nextPosition(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	selectedOptions := "{}"
	if len(req.SelectedOptions) > 0 {
		encoded, err := json.Marshal(req.SelectedOptions)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid option selection: %v", ErrInvalidInput, err)
		}
		selectedOptions = string(encoded)
	}

	item := &domain.QuoteItem{
		QuoteID:         quoteID,
		Description:     product.Name,
		Qty:             req.Qty,
		UnitPrice:       0,
		ItemType:        domain.ItemTypePriced,
		TextAlign:       domain.TextAlignLeft,
		ProductID:       &product.ID,
		SelectedOptions: selectedOptions,
		Position:        position,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	cluster, err := s.clusterService.EnsureCluster(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure cluster for product item: %w", err)
	}

	if req.ExplodeCosts {
		_, err = s.costingService.ExplodeProduct(ctx, cluster.ID, product.ID, req.Qty, req.SelectedOptions, req.IncludeLabor)
		if err != nil && !errors.Is(err, ErrNoCostingRows) {
			return nil, fmt.Errorf("failed to explode product costs: %w", err)
		}
		if errors.Is(err, ErrNoCostingRows) {
			s.logger.Warn("product has no costing rows, item created without cost lines",
				zap.String("product_id", product.ID.String()),
				zap.String("item_id", item.ID.String()),
			)
		}
	}

	if req.AttachImage {
		s.attachPrimaryImage(ctx, item.ID, product.ID)
	}

	return item, nil
}

func (s *ItemService) createTextItem(ctx context.Context, quoteID uuid.UUID, req *domain.CreateTextItemRequest) (*domain.QuoteItem, error) {
	if !req.ItemType.IsValid() || req.ItemType.IsPriced() {
		return nil, fmt.Errorf("%w: invalid text item type %q", ErrInvalidInput, req.ItemType)
	}

	textAlign := req.TextAlign
	if textAlign == "" {
		textAlign = domain.TextAlignLeft
	}
	if !textAlign.IsValid() {
		return nil, fmt.Errorf("%w: invalid text alignment %q", ErrInvalidInput, textAlign)
	}

	position, err := s.nextPosition(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	item := &domain.QuoteItem{
		QuoteID:      quoteID,
		Description:  req.Description,
		Qty:          0,
		UnitPrice:    0,
		ItemType:     req.ItemType,
		TextAlign:    textAlign,
		BulletPoints: req.BulletPoints,
		Position:     position,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

// UpdateItem applies field-level changes to a quote item. Quantity and price
// edits on heading and note items are rejected; those rows never carry prices.
func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, req *domain.UpdateItemRequest) (*domain.QuoteItem, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if !item.ItemType.IsPriced() && (req.Qty != nil || req.UnitPrice != nil) {
		return nil, ErrItemNotPriced
	}

	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Qty != nil {
		item.Qty = *req.Qty
	}
	if req.UnitPrice != nil {
		item.UnitPrice = *req.UnitPrice
	}
	if req.TextAlign != nil {
		if !req.TextAlign.IsValid() {
			return nil, fmt.Errorf("%w: invalid text alignment %q", ErrInvalidInput, *req.TextAlign)
		}
		item.TextAlign = *req.TextAlign
	}
	if req.BulletPoints != nil {
		item.BulletPoints = req.BulletPoints
	}
	if req.InternalNotes != nil {
		item.InternalNotes = *req.InternalNotes
	}
	if req.SelectedOptions != nil {
		encoded, err := json.Marshal(req.SelectedOptions)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid option selection: %v", ErrInvalidInput, err)
		}
		item.SelectedOptions = string(encoded)
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return item, nil
}

// DeleteItem removes a quote item. Clusters, lines and attachment records go
// with it through the cascade.
func (s *ItemService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.itemRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// DuplicateItem deep-copies an item at the end of its quote. Clusters and
// lines must copy completely or the duplication fails; attachment copies are
// best-effort and a broken file never blocks the operation.
func (s *ItemService) DuplicateItem(ctx context.Context, id uuid.UUID) (*domain.QuoteItem, error) {
	source, err := s.itemRepo.GetByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	position, err := s.nextPosition(ctx, source.QuoteID)
	if err != nil {
		return nil, err
	}

	copyItem := &domain.QuoteItem{
		QuoteID:         source.QuoteID,
		Description:     source.Description,
		Qty:             source.Qty,
		UnitPrice:       source.UnitPrice,
		ItemType:        source.ItemType,
		TextAlign:       source.TextAlign,
		BulletPoints:    source.BulletPoints,
		InternalNotes:   source.InternalNotes,
		ProductID:       source.ProductID,
		SelectedOptions: source.SelectedOptions,
		Position:        position,
	}
	if err := s.itemRepo.Create(ctx, copyItem); err != nil {
		return nil, fmt.Errorf("failed to create duplicated item: %w", err)
	}

	for _, cluster := range source.Clusters {
		copyCluster := &domain.CostCluster{
			QuoteItemID: copyItem.ID,
			Name:        cluster.Name,
			Position:    cluster.Position,
			MarkupType:  cluster.MarkupType,
			MarkupValue: cluster.MarkupValue,
		}
		if err := s.clusterRepo.Create(ctx, copyCluster); err != nil {
			return nil, fmt.Errorf("failed to duplicate cluster %s: %w", cluster.ID, err)
		}

		if len(cluster.Lines) == 0 {
			continue
		}
		copyLines := make([]domain.CostLine, 0, len(cluster.Lines))
		for _, line := range cluster.Lines {
			copyLines = append(copyLines, domain.CostLine{
				ClusterID:       copyCluster.ID,
				LineType:        line.LineType,
				Description:     line.Description,
				Qty:             line.Qty,
				UnitCost:        copyFloat(line.UnitCost),
				ComponentID:     line.ComponentID,
				SupplierOfferID: line.SupplierOfferID,
				CostOverride:    line.CostOverride,
				IncludeInMarkup: line.IncludeInMarkup,
				SortOrder:       line.SortOrder,
				LaborType:       line.LaborType,
				Hours:           copyFloat(line.Hours),
				Rate:            copyFloat(line.Rate),
				CutlistSlot:     line.CutlistSlot,
			})
		}
		if err := s.lineRepo.CreateBatch(ctx, copyLines); err != nil {
			return nil, fmt.Errorf("failed to duplicate lines of cluster %s: %w", cluster.ID, err)
		}
	}

	copied := s.attachmentService.DuplicateForItem(ctx, source.ID, copyItem.ID)

	s.logger.Info("item duplicated",
		zap.String("source_item_id", source.ID.String()),
		zap.String("item_id", copyItem.ID.String()),
		zap.Int("clusters", len(source.Clusters)),
		zap.Int("attachments_copied", copied),
	)

	return copyItem, nil
}

// ReorderItems persists a new item ordering for a quote. The request must
// list every current item of the quote exactly once; positions are assigned
// from the list order in a single transaction.
func (s *ItemService) ReorderItems(ctx context.Context, quoteID uuid.UUID, orderedIDs []uuid.UUID) ([]domain.QuoteItem, error) {
	items, err := s.ListItems(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if len(orderedIDs) != len(items) {
		return nil, ErrReorderIncomplete
	}
	current := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		current[item.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if !current[id] || seen[id] {
			return nil, ErrReorderIncomplete
		}
		seen[id] = true
	}

	if err := s.itemRepo.UpdatePositions(ctx, orderedIDs); err != nil {
		return nil, fmt.Errorf("failed to reorder items: %w", err)
	}

	return s.itemRepo.ListByQuote(ctx, quoteID)
}

func (s *ItemService) nextPosition(ctx context.Context, quoteID uuid.UUID) (int, error) {
	count, err := s.itemRepo.CountByQuote(ctx, quoteID)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	if count == 0 {
		return 0, nil
	}
	maxPosition, err := s.itemRepo.GetMaxPosition(ctx, quoteID)
	if err != nil {
		return 0, fmt.Errorf("failed to get max position: %w", err)
	}
	return maxPosition + 1, nil
}

// attachPrimaryImage links the product's primary image to a freshly created
// item. Failures are logged and swallowed; the image is presentation only.
func (s *ItemService) attachPrimaryImage(ctx context.Context, itemID, productID uuid.UUID) {
	image, err := s.productRepo.GetPrimaryImage(ctx, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("failed to look up product image",
				zap.String("product_id", productID.String()),
				zap.Error(err),
			)
		}
		return
	}

	req := &domain.CreateAttachmentFromURLRequest{
		URL:          image.URL,
		OriginalName: image.OriginalName,
	}
	if _, err := s.attachmentService.CreateFromURL(ctx, itemID, req); err != nil {
		s.logger.Warn("failed to attach product image to item",
			zap.String("item_id", itemID.String()),
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
	}
}
