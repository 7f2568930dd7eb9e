package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/mapper"
	"github.com/vestfab-as/quoting-api/internal/service"
	"go.uber.org/zap"
)

// maxUploadBytes caps multipart uploads
const maxUploadBytes = 25 << 20

type AttachmentHandler struct {
	attachmentService *service.AttachmentService
	logger            *zap.Logger
}

func NewAttachmentHandler(attachmentService *service.AttachmentService, logger *zap.Logger) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
		logger:            logger,
	}
}

// ListByItem godoc
// @Summary List item attachments
// @Description Get a quote item's attachments in creation order
// @Tags Attachments
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Success 200 {array} domain.AttachmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /items/{id}/attachments [get]
func (h *AttachmentHandler) ListByItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	attachments, err := h.attachmentService.ListByItem(r.Context(), itemID)
	if err != nil {
		h.logger.Error("failed to list attachments", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list attachments")
		return
	}

	dtos := make([]domain.AttachmentDTO, len(attachments))
	for i := range attachments {
		dtos[i] = mapper.ToAttachmentDTO(&attachments[i])
	}

	respondJSON(w, http.StatusOK, dtos)
}

// Upload godoc
// @Summary Upload attachment
// @Description Upload a file as multipart form data and link it to a quote item. The file part must be named "file".
// @Tags Attachments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.AttachmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /items/{id}/attachments [post]
func (h *AttachmentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing or invalid file part")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	attachment, err := h.attachmentService.Upload(r.Context(), itemID, header.Filename, contentType, file)
	if err != nil {
		if errors.Is(err, service.ErrItemNotFound) {
			respondWithError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.Error("failed to upload attachment", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to upload attachment")
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToAttachmentDTO(attachment))
}

// CreateFromURL godoc
// @Summary Create attachment from URL
// @Description Fetch a remote file and store it as an attachment on a quote item
// @Tags Attachments
// @Accept json
// @Produce json
// @Param id path string true "Item ID" format(uuid)
// @Param request body domain.CreateAttachmentFromURLRequest true "Source URL"
// @Success 201 {object} domain.AttachmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 502 {object} domain.ErrorResponse "Remote fetch failed"
// @Security BearerAuth
// @Router /items/{id}/attachments/from-url [post]
func (h *AttachmentHandler) CreateFromURL(w http.ResponseWriter, r *http.Request) {
	itemID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID format")
		return
	}

	var req domain.CreateAttachmentFromURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	attachment, err := h.attachmentService.CreateFromURL(r.Context(), itemID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrItemNotFound):
			respondWithError(w, http.StatusNotFound, "Item not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create attachment from url", zap.Error(err))
			respondWithError(w, http.StatusBadGateway, "Failed to fetch file from URL")
		}
		return
	}

	respondJSON(w, http.StatusCreated, mapper.ToAttachmentDTO(attachment))
}

// Download godoc
// @Summary Download attachment
// @Description Stream an attachment's file bytes
// @Tags Attachments
// @Produce octet-stream
// @Param id path string true "Attachment ID" format(uuid)
// @Success 200 {file} binary
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /attachments/{id}/download [get]
func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attachment ID format")
		return
	}

	attachment, reader, err := h.attachmentService.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrAttachmentNotFound) {
			respondWithError(w, http.StatusNotFound, "Attachment not found")
			return
		}
		h.logger.Error("failed to download attachment", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to download attachment")
		return
	}
	defer reader.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachment.Filename))

	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("failed to stream attachment",
			zap.String("attachment_id", id.String()),
			zap.Error(err),
		)
	}
}

// Delete godoc
// @Summary Delete attachment
// @Description Remove an attachment record and its stored file
// @Tags Attachments
// @Accept json
// @Produce json
// @Param id path string true "Attachment ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /attachments/{id} [delete]
func (h *AttachmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attachment ID format")
		return
	}

	if err := h.attachmentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrAttachmentNotFound) {
			respondWithError(w, http.StatusNotFound, "Attachment not found")
			return
		}
		h.logger.Error("failed to delete attachment", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete attachment")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
