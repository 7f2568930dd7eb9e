package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/mapper"
	"github.com/vestfab-as/quoting-api/internal/service"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalogService  *service.CatalogService
	supplierService *service.SupplierService
	logger          *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, supplierService *service.SupplierService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		supplierService: supplierService,
		logger:          logger,
	}
}

// SearchComponents godoc
// @Summary Search components
// @Description Search catalog components by internal code or description
// @Tags Catalog
// @Accept json
// @Produce json
// @Param search query string false "Search term"
// @Param limit query int false "Max results (default 50)"
// @Param offset query int false "Result offset"
// @Success 200 {array} domain.ComponentDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /components [get]
func (h *CatalogHandler) SearchComponents(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	components, err := h.catalogService.SearchComponents(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.logger.Error("failed to search components", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search components")
		return
	}

	dtos := make([]domain.ComponentDTO, len(components))
	for i := range components {
		dtos[i] = mapper.ToComponentDTO(&components[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GetComponent godoc
// @Summary Get component
// @Description Get a catalog component by ID
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Component ID" format(uuid)
// @Success 200 {object} domain.ComponentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /components/{id} [get]
func (h *CatalogHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	component, err := h.catalogService.GetComponent(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrComponentNotFound) {
			respondWithError(w, http.StatusNotFound, "Component not found")
			return
		}
		h.logger.Error("failed to get component", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get component")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToComponentDTO(component))
}

// ListOffers godoc
// @Summary List supplier offers
// @Description Get a component's supplier offers with the lowest-price flag computed
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Component ID" format(uuid)
// @Success 200 {array} domain.SupplierOfferDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /components/{id}/offers [get]
func (h *CatalogHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	offers, err := h.supplierService.ListOffers(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrComponentNotFound) {
			respondWithError(w, http.StatusNotFound, "Component not found")
			return
		}
		h.logger.Error("failed to list supplier offers", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list supplier offers")
		return
	}

	dtos := make([]domain.SupplierOfferDTO, len(offers))
	for i := range offers {
		dtos[i] = mapper.ToSupplierOfferDTO(&offers[i], offers)
	}

	respondJSON(w, http.StatusOK, dtos)
}

// SearchProducts godoc
// @Summary Search products
// @Description Search products by internal code or name
// @Tags Catalog
// @Accept json
// @Produce json
// @Param search query string false "Search term"
// @Param limit query int false "Max results (default 50)"
// @Param offset query int false "Result offset"
// @Success 200 {array} domain.ProductDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /products [get]
func (h *CatalogHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	products, err := h.catalogService.SearchProducts(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.logger.Error("failed to search products", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search products")
		return
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GetProduct godoc
// @Summary Get product
// @Description Get a product with its images
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID" format(uuid)
// @Success 200 {object} domain.ProductDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.catalogService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to get product", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToProductDTO(product))
}

// GetProductBOM godoc
// @Summary Resolve product bill of materials
// @Description Resolve the bill-of-materials rows that apply for a product under an option selection. Options are passed as a JSON object in the options query parameter.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID" format(uuid)
// @Param options query string false "Option selection as JSON object"
// @Success 200 {array} domain.BOMRowDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/bom [get]
func (h *CatalogHandler) GetProductBOM(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var selectedOptions map[string]string
	if raw := r.URL.Query().Get("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &selectedOptions); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid options parameter, expected a JSON object")
			return
		}
	}

	rows, err := h.catalogService.ResolveEffectiveBOM(r.Context(), id, selectedOptions)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("failed to resolve product BOM", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve product BOM")
		return
	}

	dtos := make([]domain.BOMRowDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToBOMRowDTO(&rows[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GetProductLabor godoc
// @Summary Get product bill of labor
// @Description Get a product's labor operations in position order
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Product ID" format(uuid)
// @Success 200 {array} domain.LaborRowDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /products/{id}/labor [get]
func (h *CatalogHandler) GetProductLabor(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	rows, err := h.catalogService.ResolveLabor(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to resolve product labor", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to resolve product labor")
		return
	}

	dtos := make([]domain.LaborRowDTO, len(rows))
	for i := range rows {
		dtos[i] = mapper.ToLaborRowDTO(&rows[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// ListBundles godoc
// @Summary List cost bundles
// @Description Get all reusable cost bundles
// @Tags Catalog
// @Accept json
// @Produce json
// @Success 200 {array} domain.CostBundleDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /bundles [get]
func (h *CatalogHandler) ListBundles(w http.ResponseWriter, r *http.Request) {
	bundles, err := h.catalogService.ListBundles(r.Context())
	if err != nil {
		h.logger.Error("failed to list bundles", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list bundles")
		return
	}

	dtos := make([]domain.CostBundleDTO, len(bundles))
	for i := range bundles {
		dtos[i] = mapper.ToCostBundleDTO(&bundles[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GetBundle godoc
// @Summary Get cost bundle
// @Description Get a bundle with its component rows
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Bundle ID" format(uuid)
// @Success 200 {object} domain.CostBundleDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /bundles/{id} [get]
func (h *CatalogHandler) GetBundle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid bundle ID format")
		return
	}

	bundle, err := h.catalogService.GetBundle(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrBundleNotFound) {
			respondWithError(w, http.StatusNotFound, "Bundle not found")
			return
		}
		h.logger.Error("failed to get bundle", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get bundle")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToCostBundleDTO(bundle))
}
