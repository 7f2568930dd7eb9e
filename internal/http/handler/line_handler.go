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

type LineHandler struct {
	clusterService  *service.ClusterService
	supplierService *service.SupplierService
	logger          *zap.Logger
}

func NewLineHandler(clusterService *service.ClusterService, supplierService *service.SupplierService, logger *zap.Logger) *LineHandler {
	return &LineHandler{
		clusterService:  clusterService,
		supplierService: supplierService,
		logger:          logger,
	}
}

// Update godoc
// @Summary Update cost line
// @Description Apply field-level changes to a cost line. Direct cost edits on a line locked to a supplier offer require the override flag.
// @Tags Lines
// @Accept json
// @Produce json
// @Param id path string true "Line ID" format(uuid)
// @Param request body domain.UpdateLineRequest true "Line data"
// @Success 200 {object} domain.CostLineDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Line cost is locked to a supplier offer"
// @Security BearerAuth
// @Router /lines/{id} [put]
func (h *LineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid line ID format")
		return
	}

	var req domain.UpdateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.clusterService.UpdateLine(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLineNotFound):
			respondWithError(w, http.StatusNotFound, "Line not found")
		case errors.Is(err, service.ErrCostLocked):
			respondWithError(w, http.StatusConflict, "Line cost is locked to a supplier offer; set costOverride to edit it")
		default:
			h.logger.Error("failed to update line", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update line")
		}
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCostLineDTO(line))
}

// Delete godoc
// @Summary Delete cost line
// @Description Remove a cost line from its cluster
// @Tags Lines
// @Accept json
// @Produce json
// @Param id path string true "Line ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /lines/{id} [delete]
func (h *LineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid line ID format")
		return
	}

	if err := h.clusterService.DeleteLine(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrLineNotFound) {
			respondWithError(w, http.StatusNotFound, "Line not found")
			return
		}
		h.logger.Error("failed to delete line", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete line")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// ApplyOffer godoc
// @Summary Apply supplier offer to line
// @Description Snapshot a supplier offer's price onto the line. The offer must belong to the line's component.
// @Tags Lines
// @Accept json
// @Produce json
// @Param id path string true "Line ID" format(uuid)
// @Param request body domain.ApplyOfferRequest true "Offer selection"
// @Success 200 {object} domain.CostLineDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Offer does not belong to the line's component"
// @Security BearerAuth
// @Router /lines/{id}/apply-offer [post]
func (h *LineHandler) ApplyOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid line ID format")
		return
	}

	var req domain.ApplyOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.supplierService.ApplyOfferToLine(r.Context(), id, req.OfferID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLineNotFound):
			respondWithError(w, http.StatusNotFound, "Line not found")
		case errors.Is(err, service.ErrOfferNotFound):
			respondWithError(w, http.StatusNotFound, "Supplier offer not found")
		case errors.Is(err, service.ErrOfferComponentMismatch):
			respondWithError(w, http.StatusUnprocessableEntity, "Supplier offer does not belong to the line's component")
		default:
			h.logger.Error("failed to apply supplier offer", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to apply supplier offer")
		}
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCostLineDTO(line))
}
