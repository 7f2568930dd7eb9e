package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrQuoteNotFound is returned when a quote is not found
	ErrQuoteNotFound = errors.New("quote not found")

	// ErrItemNotFound is returned when a quote item is not found
	ErrItemNotFound = errors.New("quote item not found")

	// ErrClusterNotFound is returned when a cost cluster is not found
	ErrClusterNotFound = errors.New("cost cluster not found")

	// ErrLineNotFound is returned when a cost line is not found
	ErrLineNotFound = errors.New("cost line not found")

	// ErrComponentNotFound is returned when a catalog component is not found
	ErrComponentNotFound = errors.New("component not found")

	// ErrProductNotFound is returned when a product is not found
	ErrProductNotFound = errors.New("product not found")

	// ErrBundleNotFound is returned when a cost bundle is not found
	ErrBundleNotFound = errors.New("cost bundle not found")

	// ErrOfferNotFound is returned when a supplier offer is not found
	ErrOfferNotFound = errors.New("supplier offer not found")

	// ErrAttachmentNotFound is returned when an attachment is not found
	ErrAttachmentNotFound = errors.New("attachment not found")

	// ErrItemNotPriced is returned when a cost operation targets a heading or
	// note item, which never carry clusters or prices
	ErrItemNotPriced = errors.New("item is not a priced item")

	// ErrNoCostingRows is returned when a product has neither bill-of-materials
	// nor bill-of-labor rows to explode. Callers treat this as non-fatal.
	ErrNoCostingRows = errors.New("no costing lines found for product")

	// ErrCostLocked is returned when a direct cost edit targets a line whose
	// cost is snapshotted from a supplier offer and the override flag is not set
	ErrCostLocked = errors.New("line cost is locked to a supplier offer")

	// ErrOfferComponentMismatch is returned when a supplier offer is applied to
	// a line referencing a different component
	ErrOfferComponentMismatch = errors.New("supplier offer does not belong to the line's component")

	// ErrReorderIncomplete is returned when a reorder request does not cover
	// exactly the quote's current items
	ErrReorderIncomplete = errors.New("reorder must include every item of the quote exactly once")
)
