package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"github.com/vestfab-as/quoting-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxRemoteFetchBytes caps the size of files pulled in from a URL
const maxRemoteFetchBytes = 25 << 20

// AttachmentService manages files linked to quote items. File bytes live in
// the storage backend; the database only carries metadata.
type AttachmentService struct {
	attachmentRepo *repository.AttachmentRepository
	itemRepo       *repository.QuoteItemRepository
	storage        storage.Storage
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewAttachmentService creates a new AttachmentService instance
func NewAttachmentService(
	attachmentRepo *repository.AttachmentRepository,
	itemRepo *repository.QuoteItemRepository,
	store storage.Storage,
	logger *zap.Logger,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		itemRepo:       itemRepo,
		storage:        store,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		logger:         logger,
	}
}

// Upload stores an uploaded file and links it to a quote item
func (s *AttachmentService) Upload(ctx context.Context, itemID uuid.UUID, filename, contentType string, data io.Reader) (*domain.Attachment, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	attachment := &domain.Attachment{
		QuoteItemID: itemID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned file after db error",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	return attachment, nil
}

// CreateFromURL fetches a remote file and stores it as an attachment on a
// quote item. The source URL is kept on the record for traceability.
func (s *AttachmentService) CreateFromURL(ctx context.Context, itemID uuid.UUID, req *domain.CreateAttachmentFromURLRequest) (*domain.Attachment, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", ErrInvalidInput, err)
	}

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file from url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch file from url: unexpected status %d", resp.StatusCode)
	}

	filename := req.OriginalName
	if filename == "" {
		filename = filenameFromURL(req.URL)
	}
	contentType := resp.Header.Get("Content-Type")

	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, io.LimitReader(resp.Body, maxRemoteFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to store fetched file: %w", err)
	}

	attachment := &domain.Attachment{
		QuoteItemID: itemID,
		Filename:    filename,
		ContentType: contentType,
		Size:        size,
		StoragePath: storagePath,
		SourceURL:   req.URL,
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned file after db error",
				zap.String("storage_path", storagePath),
				zap.Error(delErr),
			)
		}
		return nil, fmt.Errorf("failed to create attachment: %w", err)
	}

	s.logger.Info("attachment created from url",
		zap.String("item_id", itemID.String()),
		zap.String("attachment_id", attachment.ID.String()),
		zap.Int64("size", size),
	)

	return attachment, nil
}

// ListByItem returns a quote item's attachments
func (s *AttachmentService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]domain.Attachment, error) {
	attachments, err := s.attachmentRepo.ListByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}

// Download opens an attachment's file for reading
func (s *AttachmentService) Download(ctx context.Context, id uuid.UUID) (*domain.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAttachmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to get attachment: %w", err)
	}

	reader, err := s.storage.Download(ctx, attachment.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download file: %w", err)
	}

	return attachment, reader, nil
}

// Delete removes an attachment record and its stored file. A failed file
// delete is logged but does not keep the record alive.
func (s *AttachmentService) Delete(ctx context.Context, id uuid.UUID) error {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("failed to get attachment: %w", err)
	}

	if err := s.attachmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	if err := s.storage.Delete(ctx, attachment.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored file for attachment",
			zap.String("attachment_id", id.String()),
			zap.String("storage_path", attachment.StoragePath),
			zap.Error(err),
		)
	}

	return nil
}

// DuplicateForItem copies every attachment of the source item onto the target
// item, including the stored file bytes. Individual copy failures are logged
// and skipped so a broken file never blocks an item duplication.
func (s *AttachmentService) DuplicateForItem(ctx context.Context, sourceItemID, targetItemID uuid.UUID) int {
	attachments, err := s.attachmentRepo.ListByItem(ctx, sourceItemID)
	if err != nil {
		s.logger.Warn("failed to list attachments for duplication",
			zap.String("source_item_id", sourceItemID.String()),
			zap.Error(err),
		)
		return 0
	}

	copied := 0
	for _, src := range attachments {
		reader, err := s.storage.Download(ctx, src.StoragePath)
		if err != nil {
			s.logger.Warn("failed to read attachment file for duplication",
				zap.String("attachment_id", src.ID.String()),
				zap.Error(err),
			)
			continue
		}

		storagePath, size, err := s.storage.Upload(ctx, src.Filename, src.ContentType, reader)
		reader.Close()
		if err != nil {
			s.logger.Warn("failed to copy attachment file",
				zap.String("attachment_id", src.ID.String()),
				zap.Error(err),
			)
			continue
		}

		attachment := &domain.Attachment{
			QuoteItemID: targetItemID,
			Filename:    src.Filename,
			ContentType: src.ContentType,
			Size:        size,
			StoragePath: storagePath,
			SourceURL:   src.SourceURL,
		}
		if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
			s.logger.Warn("failed to create duplicated attachment record",
				zap.String("attachment_id", src.ID.String()),
				zap.Error(err),
			)
			continue
		}
		copied++
	}

	return copied
}

func filenameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || path.Base(parsed.Path) == "/" || path.Base(parsed.Path) == "." {
		return "attachment"
	}
	return path.Base(parsed.Path)
}
