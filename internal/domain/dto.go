package domain

import (
	"github.com/google/uuid"
)

// Response DTOs

type QuoteDTO struct {
	ID           uuid.UUID      `json:"id"`
	Number       string         `json:"number"`
	Title        string         `json:"title"`
	CustomerName string         `json:"customerName,omitempty"`
	Status       QuoteStatus    `json:"status"`
	ValidUntil   *string        `json:"validUntil,omitempty"`
	Notes        string         `json:"notes,omitempty"`
	Items        []QuoteItemDTO `json:"items,omitempty"`
	TotalValue   float64        `json:"totalValue"`
	CreatedAt    string         `json:"createdAt"` // ISO 8601
	UpdatedAt    string         `json:"updatedAt"` // ISO 8601
}

type QuoteItemDTO struct {
	ID              uuid.UUID         `json:"id"`
	QuoteID         uuid.UUID         `json:"quoteId"`
	Description     string            `json:"description"`
	Qty             float64           `json:"qty"`
	UnitPrice       float64           `json:"unitPrice"`
	LineTotal       float64           `json:"lineTotal"`
	ItemType        ItemType          `json:"itemType"`
	TextAlign       TextAlign         `json:"textAlign"`
	BulletPoints    []string          `json:"bulletPoints,omitempty"`
	InternalNotes   string            `json:"internalNotes,omitempty"`
	ProductID       *uuid.UUID        `json:"productId,omitempty"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	Position        int               `json:"position"`
	Clusters        []CostClusterDTO  `json:"clusters,omitempty"`
	Attachments     []AttachmentDTO   `json:"attachments,omitempty"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
}

type CostClusterDTO struct {
	ID           uuid.UUID     `json:"id"`
	QuoteItemID  uuid.UUID     `json:"quoteItemId"`
	Name         string        `json:"name"`
	Position     int           `json:"position"`
	MarkupType   MarkupType    `json:"markupType"`
	MarkupValue  float64       `json:"markupValue"`
	Subtotal     float64       `json:"subtotal"`
	MarkupAmount float64       `json:"markupAmount"`
	Total        float64       `json:"total"`
	Lines        []CostLineDTO `json:"lines,omitempty"`
	CreatedAt    string        `json:"createdAt"`
	UpdatedAt    string        `json:"updatedAt"`
}

type CostLineDTO struct {
	ID              uuid.UUID  `json:"id"`
	ClusterID       uuid.UUID  `json:"clusterId"`
	LineType        LineType   `json:"lineType"`
	Description     string     `json:"description"`
	Qty             float64    `json:"qty"`
	UnitCost        *float64   `json:"unitCost"`
	LineTotal       float64    `json:"lineTotal"`
	CostUnknown     bool       `json:"costUnknown"`
	ComponentID     *uuid.UUID `json:"componentId,omitempty"`
	ComponentCode   string     `json:"componentCode,omitempty"`
	SupplierOfferID *uuid.UUID `json:"supplierOfferId,omitempty"`
	CostOverride    bool       `json:"costOverride"`
	IncludeInMarkup bool       `json:"includeInMarkup"`
	SortOrder       int        `json:"sortOrder"`
	LaborType       *PayType   `json:"laborType,omitempty"`
	Hours           *float64   `json:"hours,omitempty"`
	Rate            *float64   `json:"rate,omitempty"`
	CutlistSlot     string     `json:"cutlistSlot,omitempty"`
}

// ClusterTotalsDTO is the aggregation result for a single cluster
type ClusterTotalsDTO struct {
	ClusterID    uuid.UUID  `json:"clusterId"`
	Subtotal     float64    `json:"subtotal"`
	MarkupType   MarkupType `json:"markupType"`
	MarkupValue  float64    `json:"markupValue"`
	MarkupAmount float64    `json:"markupAmount"`
	Total        float64    `json:"total"`
	UnknownCosts int        `json:"unknownCosts"` // lines without a usable unit cost
}

type ComponentDTO struct {
	ID           uuid.UUID          `json:"id"`
	InternalCode string             `json:"internalCode"`
	Description  string             `json:"description,omitempty"`
	Unit         string             `json:"unit"`
	Offers       []SupplierOfferDTO `json:"offers,omitempty"`
}

type SupplierOfferDTO struct {
	ID           uuid.UUID `json:"id"`
	ComponentID  uuid.UUID `json:"componentId"`
	SupplierName string    `json:"supplierName"`
	Price        *float64  `json:"price"`
	Currency     string    `json:"currency"`
	LeadTimeDays *int      `json:"leadTimeDays,omitempty"`
	MinOrderQty  *float64  `json:"minOrderQty,omitempty"`
	IsLowest     bool      `json:"isLowest"`
	CreatedAt    string    `json:"createdAt"`
}

type ProductDTO struct {
	ID           uuid.UUID         `json:"id"`
	InternalCode string            `json:"internalCode"`
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Images       []ProductImageDTO `json:"images,omitempty"`
}

type ProductImageDTO struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName,omitempty"`
	IsPrimary    bool      `json:"isPrimary"`
}

// BOMRowDTO is a resolved bill-of-materials row for a product
type BOMRowDTO struct {
	ComponentID   uuid.UUID `json:"componentId"`
	ComponentCode string    `json:"componentCode,omitempty"`
	Description   string    `json:"description,omitempty"`
	Quantity      float64   `json:"quantity"`
	UnitCost      *float64  `json:"unitCost"`
	OptionGroup   string    `json:"optionGroup,omitempty"`
	OptionValue   string    `json:"optionValue,omitempty"`
}

// LaborRowDTO is a resolved bill-of-labor row for a product
type LaborRowDTO struct {
	ID           uuid.UUID `json:"id"`
	JobName      string    `json:"jobName,omitempty"`
	CategoryName string    `json:"categoryName,omitempty"`
	PayType      PayType   `json:"payType"`
	PieceRate    *float64  `json:"pieceRate,omitempty"`
	HourlyRate   *float64  `json:"hourlyRate,omitempty"`
	TimeRequired float64   `json:"timeRequired"`
	TimeUnit     TimeUnit  `json:"timeUnit"`
	Quantity     float64   `json:"quantity"`
}

type CostBundleDTO struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Items       []CostBundleItemDTO `json:"items,omitempty"`
}

type CostBundleItemDTO struct {
	ID            uuid.UUID `json:"id"`
	ComponentID   uuid.UUID `json:"componentId"`
	ComponentCode string    `json:"componentCode,omitempty"`
	Quantity      float64   `json:"quantity"`
	Price         *float64  `json:"price,omitempty"`
}

type AttachmentDTO struct {
	ID          uuid.UUID `json:"id"`
	QuoteItemID uuid.UUID `json:"quoteItemId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	CreatedAt   string    `json:"createdAt"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// Quote Request DTOs

type CreateQuoteRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	CustomerName string `json:"customerName,omitempty" validate:"max=255"`
	Notes        string `json:"notes,omitempty"`
}

type UpdateQuoteRequest struct {
	Title        string       `json:"title" validate:"required,max=255"`
	CustomerName string       `json:"customerName,omitempty" validate:"max=255"`
	Status       *QuoteStatus `json:"status,omitempty"`
	ValidUntil   *string      `json:"validUntil,omitempty"` // ISO 8601 date
	Notes        string       `json:"notes,omitempty"`
}

// Quote item Request DTOs. Item creation is a tagged request: exactly one of
// the manual/product/text payloads applies, discriminated by Kind.

type ItemKind string

const (
	ItemKindManual  ItemKind = "manual"
	ItemKindProduct ItemKind = "product"
	ItemKindText    ItemKind = "text"
)

// IsValid checks if the item kind is valid
func (k ItemKind) IsValid() bool {
	switch k {
	case ItemKindManual, ItemKindProduct, ItemKindText:
		return true
	}
	return false
}

type CreateItemRequest struct {
	Kind    ItemKind                  `json:"kind" validate:"required"`
	Manual  *CreateManualItemRequest  `json:"manual,omitempty"`
	Product *CreateProductItemRequest `json:"product,omitempty"`
	Text    *CreateTextItemRequest    `json:"text,omitempty"`
}

type CreateManualItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Qty         float64 `json:"qty" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
}

type CreateProductItemRequest struct {
	ProductID       uuid.UUID         `json:"productId" validate:"required"`
	Qty             float64           `json:"qty" validate:"gt=0"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	IncludeLabor    bool              `json:"includeLabor"`
	ExplodeCosts    bool              `json:"explodeCosts"`
	AttachImage     bool              `json:"attachImage"`
}

type CreateTextItemRequest struct {
	ItemType     ItemType  `json:"itemType" validate:"required,oneof=heading note"`
	Description  string    `json:"description" validate:"required"`
	TextAlign    TextAlign `json:"textAlign,omitempty"`
	BulletPoints []string  `json:"bulletPoints,omitempty"`
}

type UpdateItemRequest struct {
	Description     *string           `json:"description,omitempty"`
	Qty             *float64          `json:"qty,omitempty" validate:"omitempty,gt=0"`
	UnitPrice       *float64          `json:"unitPrice,omitempty" validate:"omitempty,gte=0"`
	TextAlign       *TextAlign        `json:"textAlign,omitempty"`
	BulletPoints    []string          `json:"bulletPoints,omitempty"`
	InternalNotes   *string           `json:"internalNotes,omitempty"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
}

// ReorderItemsRequest contains the full ordered list of item IDs for a quote
type ReorderItemsRequest struct {
	OrderedIDs []uuid.UUID `json:"orderedIds" validate:"required,min=1"`
}

// ApplyPriceRequest selects which cluster's total is written to the item price
type ApplyPriceRequest struct {
	ClusterID uuid.UUID `json:"clusterId" validate:"required"`
}

// Cluster Request DTOs

type UpdateClusterRequest struct {
	Name        string      `json:"name" validate:"required,max=255"`
	MarkupType  *MarkupType `json:"markupType,omitempty"`
	MarkupValue *float64    `json:"markupValue,omitempty" validate:"omitempty,gte=0"`
}

// ExplodeProductRequest resolves a product's bill of materials and labor into
// cost lines in an existing cluster
type ExplodeProductRequest struct {
	ProductID       uuid.UUID         `json:"productId" validate:"required"`
	Qty             float64           `json:"qty" validate:"gt=0"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	IncludeLabor    bool              `json:"includeLabor"`
}

type ExpandBundleRequest struct {
	BundleID   uuid.UUID `json:"bundleId" validate:"required"`
	Multiplier float64   `json:"multiplier,omitempty" validate:"omitempty,gt=0"`
}

// Cost line Request DTOs

type CreateLineRequest struct {
	LineType        LineType   `json:"lineType" validate:"required"`
	Description     string     `json:"description" validate:"max=512"`
	Qty             float64    `json:"qty" validate:"gt=0"`
	UnitCost        *float64   `json:"unitCost,omitempty" validate:"omitempty,gte=0"`
	ComponentID     *uuid.UUID `json:"componentId,omitempty"`
	IncludeInMarkup *bool      `json:"includeInMarkup,omitempty"`
	LaborType       *PayType   `json:"laborType,omitempty"`
	Hours           *float64   `json:"hours,omitempty" validate:"omitempty,gte=0"`
	Rate            *float64   `json:"rate,omitempty" validate:"omitempty,gte=0"`
	CutlistSlot     string     `json:"cutlistSlot,omitempty" validate:"max=100"`
}

type UpdateLineRequest struct {
	Description     *string  `json:"description,omitempty" validate:"omitempty,max=512"`
	Qty             *float64 `json:"qty,omitempty" validate:"omitempty,gt=0"`
	UnitCost        *float64 `json:"unitCost,omitempty" validate:"omitempty,gte=0"`
	CostOverride    *bool    `json:"costOverride,omitempty"`
	IncludeInMarkup *bool    `json:"includeInMarkup,omitempty"`
	SortOrder       *int     `json:"sortOrder,omitempty" validate:"omitempty,gte=0"`
	Hours           *float64 `json:"hours,omitempty" validate:"omitempty,gte=0"`
	Rate            *float64 `json:"rate,omitempty" validate:"omitempty,gte=0"`
	CutlistSlot     *string  `json:"cutlistSlot,omitempty" validate:"omitempty,max=100"`
}

// ApplyOfferRequest snapshots a supplier offer's price onto a cost line
type ApplyOfferRequest struct {
	OfferID uuid.UUID `json:"offerId" validate:"required"`
}

// Attachment Request DTOs

type CreateAttachmentFromURLRequest struct {
	URL          string `json:"url" validate:"required,url"`
	OriginalName string `json:"originalName,omitempty" validate:"max=255"`
}
