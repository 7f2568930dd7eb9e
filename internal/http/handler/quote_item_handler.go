package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/mapper"
	"github.com/vestfab-as/quoting-api/internal/service"
	"go.uber.org/zap"
)

type QuoteItemHandler struct {
	itemService    *service.ItemService
	clusterService *service.ClusterService
	logger         *zap.Logger
}

func NewQuoteItemHandler(itemService *service.ItemService, clusterService *service.ClusterService, logger *zap.Logger) *QuoteItemHandler {
	return &QuoteItemHandler{
		itemService:    itemService,
		clusterService: clusterService,
		logger:         logger,
	}
}

// ListByQuote godoc
// @Summary List quote items
// @Description Get a quote's items in display order
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {array} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotes/{id}/items [get]
func (h *QuoteItemHandler) ListByQuote(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	items, err := h.itemService.ListItems(r.Context(), quoteID)
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("failed to list items", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}

	dtos := make([]domain.QuoteItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToQuoteItemDTO(&items[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Create quote item
// @Description Create an item from manual input, a product or text. The kind field selects which payload applies. Product items can explode their bill of materials and labor into cost lines.
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.CreateItemRequest true "Item data"
// @Success 201 {object} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotes/{id}/items [post]
func (h *QuoteItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}
	if err := validateItemPayload(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.itemService.CreateItem(r.Context(), quoteID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuoteNotFound):
			respondWithError(w, http.StatusNotFound, "Quote not found")
		case errors.Is(err, service.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create item", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create item")
		}
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToQuoteItemDTO(item))
}

// validateItemPayload runs struct validation on the payload matching the kind
func validateItemPayload(req *domain.CreateItemRequest) error {
	switch req.Kind {
	case domain.ItemKindManual:
		if req.Manual != nil {
			return validate.Struct(req.Manual)
		}
	case domain.ItemKindProduct:
		if req.Product != nil {
			return validate.Struct(req.Product)
		}
	case domain.ItemKindText:
		if req.Text != nil {
			return validate.Struct(req.Text)
		}
	}
	return nil
}

// GetByID godoc
// @Summary Get quote item
// @Description Get an item with its cost clusters, lines and attachments
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Success 200 {object} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /items/{id} [get]
func (h *QuoteItemHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.itemService.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondWithError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.Error("failed to get item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get item")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteItemDTO(item))
}

// Update godoc
// @Summary Update quote item
// @Description Apply field-level changes to an item. Quantity and price edits on heading and note items are rejected.
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Param request body domain.UpdateItemRequest true "Item data"
// @Success 200 {object} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Price edit on non-priced item"
// @Security BearerAuth
// @Router /items/{id} [put]
func (h *QuoteItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req domain.UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.itemService.UpdateItem(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			respondWithError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, service.ErrItemNotPriced):
			respondWithError(w, http.StatusUnprocessableEntity, "Heading and note items do not carry quantity or price")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update item", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update item")
		}
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteItemDTO(item))
}

// Delete godoc
// @Summary Delete quote item
// @Description Delete an item, its cost clusters, lines and attachment records
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /items/{id} [delete]
func (h *QuoteItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	if err := h.itemService.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondWithError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.Error("failed to delete item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete item")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// Duplicate godoc
// @Summary Duplicate quote item
// @Description Deep-copy an item to the end of its quote. Clusters and lines copy completely or the operation fails; attachment copies are best-effort.
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Success 201 {object} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /items/{id}/duplicate [post]
func (h *QuoteItemHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	item, err := h.itemService.DuplicateItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondWithError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.Error("failed to duplicate item", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to duplicate item")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToQuoteItemDTO(item))
}

// Reorder godoc
// @Summary Reorder quote items
// @Description Persist a new item ordering. The request must list every current item of the quote exactly once.
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.ReorderItemsRequest true "Ordered item IDs"
// @Success 200 {array} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Request does not cover the quote's items"
// @Security BearerAuth
// @Router /quotes/{id}/items/reorder [put]
func (h *QuoteItemHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	quoteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.ReorderItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	items, err := h.itemService.ReorderItems(r.Context(), quoteID, req.OrderedIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuoteNotFound):
			respondWithError(w, http.StatusNotFound, "Quote not found")
		case errors.Is(err, service.ErrReorderIncomplete):
			respondWithError(w, http.StatusUnprocessableEntity, "Reorder must include every item of the quote exactly once")
		default:
			h.logger.Error("failed to reorder items", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to reorder items")
		}
		return
	}

	dtos := make([]domain.QuoteItemDTO, len(items))
	for i := range items {
		dtos[i] = mapper.ToQuoteItemDTO(&items[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// EnsureCluster godoc
// @Summary Ensure cost cluster
// @Description Get or create the item's default cost cluster. Heading and note items are rejected.
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Success 200 {object} domain.CostClusterDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Item is not a priced item"
// @Security BearerAuth
// @Router /items/{id}/ensure-cluster [post]
func (h *QuoteItemHandler) EnsureCluster(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	cluster, err := h.clusterService.EnsureCluster(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			respondWithError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, service.ErrItemNotPriced):
			respondWithError(w, http.StatusUnprocessableEntity, "Heading and note items cannot carry cost clusters")
		default:
			h.logger.Error("failed to ensure cluster", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to ensure cluster")
		}
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCostClusterDTO(cluster))
}

// ApplyPrice godoc
// @Summary Apply cluster total to item price
// @Description Write a cluster's total, rounded to two decimals, into the item's unit price
// @Tags Items
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Param request body domain.ApplyPriceRequest true "Cluster selection"
// @Success 200 {object} domain.QuoteItemDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Item is not a priced item"
// @Security BearerAuth
// @Router /items/{id}/apply-price [post]
func (h *QuoteItemHandler) ApplyPrice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req domain.ApplyPriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.clusterService.ApplyTotalToItem(r.Context(), id, req.ClusterID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			respondWithError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, service.ErrClusterNotFound):
			respondWithError(w, http.StatusNotFound, "Cluster not found")
		case errors.Is(err, service.ErrItemNotPriced):
			respondWithError(w, http.StatusUnprocessableEntity, "Heading and note items do not carry prices")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to apply cluster total", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to apply cluster total")
		}
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteItemDTO(item))
}
