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

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// List godoc
// @Summary List quotes
// @Description Get quotes with optional search by title, number or customer name
// @Tags Quotes
// @Accept json
// @Produce json
// @Param search query string false "Search term"
// @Param limit query int false "Max results (default 50)"
// @Param offset query int false "Result offset"
// @Success 200 {array} domain.QuoteDTO
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	quotes, err := h.quoteService.ListQuotes(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.logger.Error("failed to list quotes", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotes")
		return
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// GetByID godoc
// @Summary Get quote by ID
// @Description Get a quote with its items, cost clusters, lines and attachments
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	quote, err := h.quoteService.GetQuote(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("failed to get quote", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get quote")
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// Create godoc
// @Summary Create quote
// @Description Create a new draft quote with a generated number
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.CreateQuote(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quote", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, mapper.ToQuoteDTO(quote))
}

// Update godoc
// @Summary Update quote
// @Description Update a quote's header fields
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteRequest true "Quote data"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	var req domain.UpdateQuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quote, err := h.quoteService.UpdateQuote(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuoteNotFound):
			respondWithError(w, http.StatusNotFound, "Quote not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update quote", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to update quote")
		}
		return
	}

	respondJSON(w, http.StatusOK, mapper.ToQuoteDTO(quote))
}

// Delete godoc
// @Summary Delete quote
// @Description Delete a quote and everything hanging off it
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /quotes/{id} [delete]
func (h *QuoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quote ID format")
		return
	}

	if err := h.quoteService.DeleteQuote(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			respondWithError(w, http.StatusNotFound, "Quote not found")
			return
		}
		h.logger.Error("failed to delete quote", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete quote")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
