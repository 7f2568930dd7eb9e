package mapper

import (
	"encoding/json"

	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/service"
)

// ToQuoteDTO converts Quote to QuoteDTO. The total value sums the line totals
// of the quote's priced items.
func ToQuoteDTO(quote *domain.Quote) domain.QuoteDTO {
	items := make([]domain.QuoteItemDTO, len(quote.Items))
	totalValue := 0.0
	for i, item := range quote.Items {
		items[i] = ToQuoteItemDTO(&item)
		totalValue += items[i].LineTotal
	}

	dto := domain.QuoteDTO{
		ID:           quote.ID,
		Number:       quote.Number,
		Title:        quote.Title,
		CustomerName: quote.CustomerName,
		Status:       quote.Status,
		Notes:        quote.Notes,
		Items:        items,
		TotalValue:   totalValue,
		CreatedAt:    quote.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    quote.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}

	if quote.ValidUntil != nil {
		validUntil := quote.ValidUntil.Format("2006-01-02T15:04:05Z")
		dto.ValidUntil = &validUntil
	}

	return dto
}

// ToQuoteItemDTO converts QuoteItem to QuoteItemDTO. Heading and note items
// never carry a line total.
func ToQuoteItemDTO(item *domain.QuoteItem) domain.QuoteItemDTO {
	clusters := make([]domain.CostClusterDTO, len(item.Clusters))
	for i, cluster := range item.Clusters {
		clusters[i] = ToCostClusterDTO(&cluster)
	}

	attachments := make([]domain.AttachmentDTO, len(item.Attachments))
	for i, attachment := range item.Attachments {
		attachments[i] = ToAttachmentDTO(&attachment)
	}

	lineTotal := 0.0
	if item.ItemType.IsPriced() {
		lineTotal = service.RoundPrice(item.Qty * item.UnitPrice)
	}

	return domain.QuoteItemDTO{
		ID:              item.ID,
		QuoteID:         item.QuoteID,
		Description:     item.Description,
		Qty:             item.Qty,
		UnitPrice:       item.UnitPrice,
		LineTotal:       lineTotal,
		ItemType:        item.ItemType,
		TextAlign:       item.TextAlign,
		BulletPoints:    item.BulletPoints,
		InternalNotes:   item.InternalNotes,
		ProductID:       item.ProductID,
		SelectedOptions: decodeSelectedOptions(item.SelectedOptions),
		Position:        item.Position,
		Clusters:        clusters,
		Attachments:     attachments,
		CreatedAt:       item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToCostClusterDTO converts CostCluster to CostClusterDTO with computed totals
func ToCostClusterDTO(cluster *domain.CostCluster) domain.CostClusterDTO {
	lines := make([]domain.CostLineDTO, len(cluster.Lines))
	for i, line := range cluster.Lines {
		lines[i] = ToCostLineDTO(&line)
	}

	totals := service.ComputeTotals(cluster)

	return domain.CostClusterDTO{
		ID:           cluster.ID,
		QuoteItemID:  cluster.QuoteItemID,
		Name:         cluster.Name,
		Position:     cluster.Position,
		MarkupType:   cluster.MarkupType,
		MarkupValue:  cluster.MarkupValue,
		Subtotal:     totals.Subtotal,
		MarkupAmount: totals.MarkupAmount,
		Total:        totals.Total,
		Lines:        lines,
		CreatedAt:    cluster.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    cluster.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToClusterTotalsDTO converts cluster aggregation results to a DTO
func ToClusterTotalsDTO(cluster *domain.CostCluster, totals *service.ClusterTotals) domain.ClusterTotalsDTO {
	return domain.ClusterTotalsDTO{
		ClusterID:    cluster.ID,
		Subtotal:     totals.Subtotal,
		MarkupType:   cluster.MarkupType,
		MarkupValue:  cluster.MarkupValue,
		MarkupAmount: totals.MarkupAmount,
		Total:        totals.Total,
		UnknownCosts: totals.UnknownCosts,
	}
}

// ToCostLineDTO converts CostLine to CostLineDTO
func ToCostLineDTO(line *domain.CostLine) domain.CostLineDTO {
	lineTotal := 0.0
	if line.UnitCost != nil {
		lineTotal = line.Qty * *line.UnitCost
	}

	dto := domain.CostLineDTO{
		ID:              line.ID,
		ClusterID:       line.ClusterID,
		LineType:        line.LineType,
		Description:     line.Description,
		Qty:             line.Qty,
		UnitCost:        line.UnitCost,
		LineTotal:       lineTotal,
		CostUnknown:     !line.HasKnownCost(),
		ComponentID:     line.ComponentID,
		SupplierOfferID: line.SupplierOfferID,
		CostOverride:    line.CostOverride,
		IncludeInMarkup: line.IncludeInMarkup,
		SortOrder:       line.SortOrder,
		LaborType:       line.LaborType,
		Hours:           line.Hours,
		Rate:            line.Rate,
		CutlistSlot:     line.CutlistSlot,
	}

	if line.Component != nil {
		dto.ComponentCode = line.Component.InternalCode
	}

	return dto
}

// ToComponentDTO converts Component to ComponentDTO. Offers carry the lowest
// price flag computed against the component's full offer slice.
func ToComponentDTO(component *domain.Component) domain.ComponentDTO {
	offers := make([]domain.SupplierOfferDTO, len(component.Offers))
	for i := range component.Offers {
		offers[i] = ToSupplierOfferDTO(&component.Offers[i], component.Offers)
	}

	return domain.ComponentDTO{
		ID:           component.ID,
		InternalCode: component.InternalCode,
		Description:  component.Description,
		Unit:         component.Unit,
		Offers:       offers,
	}
}

// ToSupplierOfferDTO converts SupplierOffer to SupplierOfferDTO
func ToSupplierOfferDTO(offer *domain.SupplierOffer, all []domain.SupplierOffer) domain.SupplierOfferDTO {
	return domain.SupplierOfferDTO{
		ID:           offer.ID,
		ComponentID:  offer.ComponentID,
		SupplierName: offer.SupplierName,
		Price:        offer.Price,
		Currency:     offer.Currency,
		LeadTimeDays: offer.LeadTimeDays,
		MinOrderQty:  offer.MinOrderQty,
		IsLowest:     service.IsLowestOffer(offer, all),
		CreatedAt:    offer.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToProductDTO converts Product to ProductDTO
func ToProductDTO(product *domain.Product) domain.ProductDTO {
	images := make([]domain.ProductImageDTO, len(product.Images))
	for i, image := range product.Images {
		images[i] = domain.ProductImageDTO{
			ID:           image.ID,
			URL:          image.URL,
			OriginalName: image.OriginalName,
			IsPrimary:    image.IsPrimary,
		}
	}

	return domain.ProductDTO{
		ID:           product.ID,
		InternalCode: product.InternalCode,
		Name:         product.Name,
		Description:  product.Description,
		Images:       images,
	}
}

// ToBOMRowDTO converts a resolved bill-of-materials row to a DTO
func ToBOMRowDTO(row *service.BOMRow) domain.BOMRowDTO {
	return domain.BOMRowDTO{
		ComponentID:   row.ComponentID,
		ComponentCode: row.ComponentCode,
		Description:   row.Description,
		Quantity:      row.Quantity,
		UnitCost:      row.UnitCost,
		OptionGroup:   row.OptionGroup,
		OptionValue:   row.OptionValue,
	}
}

// ToLaborRowDTO converts LaborOperation to LaborRowDTO
func ToLaborRowDTO(row *domain.LaborOperation) domain.LaborRowDTO {
	return domain.LaborRowDTO{
		ID:           row.ID,
		JobName:      row.JobName,
		CategoryName: row.CategoryName,
		PayType:      row.PayType,
		PieceRate:    row.PieceRate,
		HourlyRate:   row.HourlyRate,
		TimeRequired: row.TimeRequired,
		TimeUnit:     row.TimeUnit,
		Quantity:     row.Quantity,
	}
}

// ToCostBundleDTO converts CostBundle to CostBundleDTO
func ToCostBundleDTO(bundle *domain.CostBundle) domain.CostBundleDTO {
	items := make([]domain.CostBundleItemDTO, len(bundle.Items))
	for i, item := range bundle.Items {
		items[i] = domain.CostBundleItemDTO{
			ID:          item.ID,
			ComponentID: item.ComponentID,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
		if item.Component != nil {
			items[i].ComponentCode = item.Component.InternalCode
		}
	}

	return domain.CostBundleDTO{
		ID:          bundle.ID,
		Name:        bundle.Name,
		Description: bundle.Description,
		Items:       items,
	}
}

// ToAttachmentDTO converts Attachment to AttachmentDTO
func ToAttachmentDTO(attachment *domain.Attachment) domain.AttachmentDTO {
	return domain.AttachmentDTO{
		ID:          attachment.ID,
		QuoteItemID: attachment.QuoteItemID,
		Filename:    attachment.Filename,
		ContentType: attachment.ContentType,
		Size:        attachment.Size,
		SourceURL:   attachment.SourceURL,
		CreatedAt:   attachment.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// decodeSelectedOptions parses the stored option selection. A broken value
// maps to nil rather than an error; the selection is display data here.
func decodeSelectedOptions(raw string) map[string]string {
	if raw == "" || raw == "{}" {
		return nil
	}
	var options map[string]string
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil
	}
	if len(options) == 0 {
		return nil
	}
	return options
}
