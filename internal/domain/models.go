package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// QuoteStatus represents the lifecycle state of a quote
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// IsValid checks if the quote status is valid
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected:
		return true
	}
	return false
}

// ItemType distinguishes priced line items from presentation-only rows
type ItemType string

const (
	ItemTypePriced  ItemType = "priced"
	ItemTypeHeading ItemType = "heading"
	ItemTypeNote    ItemType = "note"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypePriced, ItemTypeHeading, ItemTypeNote:
		return true
	}
	return false
}

// IsPriced reports whether items of this type carry a price and may own cost clusters
func (t ItemType) IsPriced() bool {
	return t == ItemTypePriced
}

// TextAlign controls rendering of heading and note items
type TextAlign string

const (
	TextAlignLeft   TextAlign = "left"
	TextAlignCenter TextAlign = "center"
	TextAlignRight  TextAlign = "right"
)

// IsValid checks if the text alignment is valid
func (a TextAlign) IsValid() bool {
	switch a {
	case TextAlignLeft, TextAlignCenter, TextAlignRight:
		return true
	}
	return false
}

// MarkupType is the persisted discriminator for cluster markup
type MarkupType string

const (
	MarkupTypePercentage MarkupType = "percentage"
	MarkupTypeFixed      MarkupType = "fixed"
)

// IsValid checks if the markup type is valid
func (m MarkupType) IsValid() bool {
	switch m {
	case MarkupTypePercentage, MarkupTypeFixed:
		return true
	}
	return false
}

// LineType classifies the origin of a cost line
type LineType string

const (
	LineTypeManual    LineType = "manual"
	LineTypeComponent LineType = "component"
	LineTypeProduct   LineType = "product"
	LineTypeLabor     LineType = "labor"
	LineTypeCluster   LineType = "cluster"
	LineTypeOverhead  LineType = "overhead"
)

// IsValid checks if the line type is valid
func (t LineType) IsValid() bool {
	switch t {
	case LineTypeManual, LineTypeComponent, LineTypeProduct, LineTypeLabor, LineTypeCluster, LineTypeOverhead:
		return true
	}
	return false
}

// PayType is how a labor operation is compensated
type PayType string

const (
	PayTypePiece  PayType = "piece"
	PayTypeHourly PayType = "hourly"
)

// IsValid checks if the pay type is valid
func (p PayType) IsValid() bool {
	switch p {
	case PayTypePiece, PayTypeHourly:
		return true
	}
	return false
}

// TimeUnit is the unit a labor operation's time requirement is expressed in
type TimeUnit string

const (
	TimeUnitHours   TimeUnit = "hours"
	TimeUnitMinutes TimeUnit = "minutes"
	TimeUnitSeconds TimeUnit = "seconds"
)

// IsValid checks if the time unit is valid
func (u TimeUnit) IsValid() bool {
	switch u {
	case TimeUnitHours, TimeUnitMinutes, TimeUnitSeconds:
		return true
	}
	return false
}

// Quote represents a customer-facing sales quote containing ordered line items
type Quote struct {
	BaseModel
	Number       string      `gorm:"type:varchar(50);uniqueIndex" json:"number"`
	Title        string      `gorm:"type:varchar(255);not null" json:"title"`
	CustomerName string      `gorm:"type:varchar(255)" json:"customerName,omitempty"`
	Status       QuoteStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	ValidUntil   *time.Time  `json:"validUntil,omitempty"`
	Notes        string      `gorm:"type:text" json:"notes,omitempty"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// QuoteItem is a single row on a quote. Priced items carry quantity and unit
// price and may own cost clusters; heading and note items are presentation
// only and never do.
type QuoteItem struct {
	BaseModel
	QuoteID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"quoteId"`
	Description     string         `gorm:"type:text" json:"description"`
	Qty             float64        `gorm:"not null;default:1" json:"qty"`
	UnitPrice       float64        `gorm:"not null;default:0" json:"unitPrice"`
	ItemType        ItemType       `gorm:"type:varchar(20);not null;default:'priced'" json:"itemType"`
	TextAlign       TextAlign      `gorm:"type:varchar(10);not null;default:'left'" json:"textAlign"`
	BulletPoints    pq.StringArray `gorm:"type:text[]" json:"bulletPoints,omitempty"`
	InternalNotes   string         `gorm:"type:text" json:"internalNotes,omitempty"`
	ProductID       *uuid.UUID     `gorm:"type:uuid;index" json:"productId,omitempty"`
	SelectedOptions string         `gorm:"type:jsonb;default:'{}'" json:"selectedOptions,omitempty"`
	Position        int            `gorm:"not null;default:0" json:"position"`

	Quote       *Quote        `gorm:"foreignKey:QuoteID" json:"-"`
	Product     *Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Clusters    []CostCluster `gorm:"foreignKey:QuoteItemID;constraint:OnDelete:CASCADE" json:"clusters,omitempty"`
	Attachments []Attachment  `gorm:"foreignKey:QuoteItemID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// CostCluster groups cost lines under a quote item and carries the markup
// applied on top of their subtotal. MarkupType discriminates how MarkupValue
// is interpreted: a percentage of the subtotal or a fixed amount.
type CostCluster struct {
	BaseModel
	QuoteItemID uuid.UUID  `gorm:"type:uuid;not null;index" json:"quoteItemId"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Position    int        `gorm:"not null;default:0" json:"position"`
	MarkupType  MarkupType `gorm:"type:varchar(20);not null;default:'percentage'" json:"markupType"`
	MarkupValue float64    `gorm:"not null;default:0" json:"markupValue"`

	Lines []CostLine `gorm:"foreignKey:ClusterID;constraint:OnDelete:CASCADE" json:"lines,omitempty"`
}

// CostLine is a single cost entry inside a cluster. Quantity and unit cost are
// snapshots taken when the line was created or a supplier offer was applied;
// they are never re-derived from catalog data. A nil UnitCost means the cost
// is unknown, which is flagged in totals but not an error.
type CostLine struct {
	BaseModel
	ClusterID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"clusterId"`
	LineType        LineType   `gorm:"type:varchar(20);not null" json:"lineType"`
	Description     string     `gorm:"type:varchar(512)" json:"description"`
	Qty             float64    `gorm:"not null;default:1" json:"qty"`
	UnitCost        *float64   `json:"unitCost,omitempty"`
	ComponentID     *uuid.UUID `gorm:"type:uuid;index" json:"componentId,omitempty"`
	SupplierOfferID *uuid.UUID `gorm:"type:uuid" json:"supplierOfferId,omitempty"`
	CostOverride    bool       `gorm:"not null;default:false" json:"costOverride"`
	IncludeInMarkup bool       `gorm:"not null;default:true" json:"includeInMarkup"`
	SortOrder       int        `gorm:"not null;default:0" json:"sortOrder"`
	LaborType       *PayType   `gorm:"type:varchar(20)" json:"laborType,omitempty"`
	Hours           *float64   `json:"hours,omitempty"`
	Rate            *float64   `json:"rate,omitempty"`
	CutlistSlot     string     `gorm:"type:varchar(100)" json:"cutlistSlot,omitempty"`

	Component *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
}

// HasKnownCost reports whether the line carries a usable unit cost
func (l *CostLine) HasKnownCost() bool {
	return l.UnitCost != nil
}

// Component represents a purchasable part from the catalog
type Component struct {
	BaseModel
	InternalCode string `gorm:"type:varchar(100);uniqueIndex;not null" json:"internalCode"`
	Description  string `gorm:"type:varchar(512)" json:"description,omitempty"`
	Unit         string `gorm:"type:varchar(20);not null;default:'pcs'" json:"unit"`

	Offers []SupplierOffer `gorm:"foreignKey:ComponentID;constraint:OnDelete:CASCADE" json:"offers,omitempty"`
}

// SupplierOffer is one supplier's price for a component. Price may be nil when
// the supplier is registered but has not quoted yet.
type SupplierOffer struct {
	BaseModel
	ComponentID  uuid.UUID `gorm:"type:uuid;not null;index" json:"componentId"`
	SupplierName string    `gorm:"type:varchar(255);not null" json:"supplierName"`
	Price        *float64  `json:"price,omitempty"`
	Currency     string    `gorm:"type:varchar(3);not null;default:'NOK'" json:"currency"`
	LeadTimeDays *int      `json:"leadTimeDays,omitempty"`
	MinOrderQty  *float64  `json:"minOrderQty,omitempty"`
}

// Product is a sellable assembly defined by a bill of materials and a bill of labor
type Product struct {
	BaseModel
	InternalCode string `gorm:"type:varchar(100);uniqueIndex;not null" json:"internalCode"`
	Name         string `gorm:"type:varchar(255);not null" json:"name"`
	Description  string `gorm:"type:text" json:"description,omitempty"`

	Components          []ProductComponent   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"components,omitempty"`
	EffectiveComponents []EffectiveComponent `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"effectiveComponents,omitempty"`
	LaborOperations     []LaborOperation     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"laborOperations,omitempty"`
	Images              []ProductImage       `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// ProductComponent is a direct bill-of-materials row. OptionGroup and
// OptionValue scope the row to a product option; an empty OptionGroup means
// the row always applies.
type ProductComponent struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	ComponentID uuid.UUID `gorm:"type:uuid;not null;index" json:"componentId"`
	Quantity    float64   `gorm:"not null;default:1" json:"quantity"`
	UnitCost    *float64  `json:"unitCost,omitempty"`
	OptionGroup string    `gorm:"type:varchar(100)" json:"optionGroup,omitempty"`
	OptionValue string    `gorm:"type:varchar(100)" json:"optionValue,omitempty"`
	Position    int       `gorm:"not null;default:0" json:"position"`

	Component *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
}

// EffectiveComponent is a flattened bill-of-materials row with sub-assemblies
// already expanded. Rows are maintained by the ERP sync job; when a product
// has none, resolution falls back to the direct rows.
type EffectiveComponent struct {
	BaseModel
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	ComponentID uuid.UUID `gorm:"type:uuid;not null;index" json:"componentId"`
	Quantity    float64   `gorm:"not null;default:1" json:"quantity"`
	UnitCost    *float64  `json:"unitCost,omitempty"`
	OptionGroup string    `gorm:"type:varchar(100)" json:"optionGroup,omitempty"`
	OptionValue string    `gorm:"type:varchar(100)" json:"optionValue,omitempty"`
	Position    int       `gorm:"not null;default:0" json:"position"`

	Component *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
}

// LaborOperation is a bill-of-labor row on a product
type LaborOperation struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	JobName      string    `gorm:"type:varchar(255)" json:"jobName,omitempty"`
	CategoryName string    `gorm:"type:varchar(255)" json:"categoryName,omitempty"`
	PayType      PayType   `gorm:"type:varchar(20);not null" json:"payType"`
	PieceRate    *float64  `json:"pieceRate,omitempty"`
	HourlyRate   *float64  `json:"hourlyRate,omitempty"`
	TimeRequired float64   `gorm:"not null;default:0" json:"timeRequired"`
	TimeUnit     TimeUnit  `gorm:"type:varchar(10);not null;default:'hours'" json:"timeUnit"`
	Quantity     float64   `gorm:"not null;default:1" json:"quantity"`
	Position     int       `gorm:"not null;default:0" json:"position"`
}

// ProductImage is an image linked to a product. The primary image is attached
// to quote items created from the product.
type ProductImage struct {
	BaseModel
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index" json:"productId"`
	URL          string    `gorm:"type:varchar(1024);not null" json:"url"`
	OriginalName string    `gorm:"type:varchar(255)" json:"originalName,omitempty"`
	IsPrimary    bool      `gorm:"not null;default:false" json:"isPrimary"`
}

// CostBundle is a reusable named set of components that can be expanded into a
// cluster in one operation.
type CostBundle struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	Items []CostBundleItem `gorm:"foreignKey:BundleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// CostBundleItem is one component row inside a bundle. Price, when set,
// overrides the component's supplier pricing at expansion time.
type CostBundleItem struct {
	BaseModel
	BundleID    uuid.UUID `gorm:"type:uuid;not null;index" json:"bundleId"`
	ComponentID uuid.UUID `gorm:"type:uuid;not null;index" json:"componentId"`
	Quantity    float64   `gorm:"not null;default:1" json:"quantity"`
	Price       *float64  `json:"price,omitempty"`
	Position    int       `gorm:"not null;default:0" json:"position"`

	Component *Component `gorm:"foreignKey:ComponentID" json:"component,omitempty"`
}

// Attachment is a file linked to a quote item, stored through the storage backend
type Attachment struct {
	BaseModel
	QuoteItemID uuid.UUID `gorm:"type:uuid;not null;index" json:"quoteItemId"`
	Filename    string    `gorm:"type:varchar(255);not null" json:"filename"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType,omitempty"`
	Size        int64     `gorm:"not null;default:0" json:"size"`
	StoragePath string    `gorm:"type:varchar(512);not null" json:"-"`
	SourceURL   string    `gorm:"type:varchar(1024)" json:"sourceUrl,omitempty"`
}
