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

type ClusterHandler struct {
	clusterService *service.ClusterService
	costingService *service.CostingService
	logger         *zap.Logger
}

func NewClusterHandler(clusterService *service.ClusterService, costingService *service.CostingService, logger *zap.Logger) *ClusterHandler {
	return &ClusterHandler{
		clusterService: clusterService,
		costingService: costingService,
		logger:         logger,
	}
}

// GetByID godoc
// @Summary Get cost cluster
// @Description Get a cluster with its lines and computed totals
// @Tags Clusters
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID" format(uuid)
// @Success 200 {object} domain.CostClusterDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clusters/{id} [get]
func (h *ClusterHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cluster ID format")
		return
	}

	cluster, err := h.clusterService.GetCluster(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClusterNotFound) {
			respondWithError(w, http.StatusNotFound, "Cluster not found")
			return
		}
		h.logger.Error("failed to get cluster", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get cluster")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCostClusterDTO(cluster))
}

// Update godoc
// @Summary Update cost cluster
// @Description Update a cluster's name and markup. Switching the markup type resets the markup value to zero.
// @Tags Clusters
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID" format(uuid)
// @Param request body domain.UpdateClusterRequest true "Cluster data"
// @Success 200 {object} domain.CostClusterDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clusters/{id} [put]
func (h *ClusterHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cluster ID format")
		return
	}

	var req domain.UpdateClusterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	cluster, err := h.clusterService.UpdateCluster(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClusterNotFound):
			respondWithError(w, http.StatusNotFound, "Cluster not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update cluster", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update cluster")
		}
		return
	}

	// Reload with lines so the response carries totals
	withLines, err := h.clusterService.GetCluster(r.Context(), cluster.ID)
	if err != nil {
		h.logger.Error("failed to reload cluster", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update cluster")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCostClusterDTO(withLines))
}

// GetTotals godoc
// @Summary Get cluster totals
// @Description Get a cluster's subtotal, markup amount, total and unknown-cost count
// @Tags Clusters
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID" format(uuid)
// @Success 200 {object} domain.ClusterTotalsDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clusters/{id}/totals [get]
func (h *ClusterHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cluster ID format")
		return
	}

	cluster, totals, err := h.clusterService.GetTotals(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrClusterNotFound) {
			respondWithError(w, http.StatusNotFound, "Cluster not found")
			return
		}
		h.logger.Error("failed to compute cluster totals", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to compute cluster totals")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToClusterTotalsDTO(cluster, totals))
}

// Explode godoc
// @Summary Explode product into cost lines
// @Description Resolve a product's bill of materials and bill of labor and create the resulting cost lines in the cluster
// @Tags Clusters
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID" format(uuid)
// @Param request body domain.ExplodeProductRequest true "Explosion parameters"
// @Success 201 {array} domain.CostLineDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Product has no costing rows"
// @Security BearerAuth
// @Router /clusters/{id}/explode [post]
func (h *ClusterHandler) Explode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cluster ID format")
		return
	}

	var req domain.ExplodeProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lines, err := h.costingService.ExplodeProduct(r.Context(), id, req.ProductID, req.Qty, req.SelectedOptions, req.IncludeLabor)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClusterNotFound):
			respondWithError(w, http.StatusNotFound, "Cluster not found")
		case errors.Is(err, service.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, service.ErrNoCostingRows):
			respondWithError(w, http.StatusUnprocessableEntity, "Product has no costing rows to explode")
		default:
			h.logger.Error("failed to explode product", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to explode product")
		}
		return
	}

	dtos := make([]domain.CostLineDTO, len(lines))
	for i := range lines {
		dtos[i] = mapper.ToCostLineDTO(&lines[i])
	}

	respondJSON(w, http.StatusCreated, dtos)
}

// ExpandBundle godoc
// @Summary Expand cost bundle
// @Description Create component lines in the cluster from a named bundle, with an optional quantity multiplier
// @Tags Clusters
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID" format(uuid)
// @Param request body domain.ExpandBundleRequest true "Bundle selection"
// @Success 201 {array} domain.CostLineDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clusters/{id}/expand-bundle [post]
func (h *ClusterHandler) ExpandBundle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cluster ID format")
		return
	}

	var req domain.ExpandBundleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	lines, err := h.costingService.ExpandBundle(r.Context(), id, req.BundleID, req.Multiplier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClusterNotFound):
			respondWithError(w, http.StatusNotFound, "Cluster not found")
		case errors.Is(err, service.ErrBundleNotFound):
			respondWithError(w, http.StatusNotFound, "Bundle not found")
		default:
			h.logger.Error("failed to expand bundle", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to expand bundle")
		}
		return
	}

	dtos := make([]domain.CostLineDTO, len(lines))
	for i := range lines {
		dtos[i] = mapper.ToCostLineDTO(&lines[i])
	}

	respondJSON(w, http.StatusCreated, dtos)
}

// CreateLine godoc
// @Summary Create cost line
// @Description Add a manual cost line to a cluster
// @Tags Lines
// @Accept json
// @Produce json
// @Param id path string true "Cluster ID" format(uuid)
// @Param request body domain.CreateLineRequest true "Line data"
// @Success 201 {object} domain.CostLineDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clusters/{id}/lines [post]
func (h *ClusterHandler) CreateLine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid cluster ID format")
		return
	}

	var req domain.CreateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	line, err := h.clusterService.CreateLine(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClusterNotFound):
			respondWithError(w, http.StatusNotFound, "Cluster not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create line", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to create line")
		}
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToCostLineDTO(line))
}
