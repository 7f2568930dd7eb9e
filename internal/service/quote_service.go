package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuoteService manages the quote lifecycle
type QuoteService struct {
	quoteRepo *repository.QuoteRepository
	logger    *zap.Logger
}

// NewQuoteService creates a new QuoteService instance
func NewQuoteService(quoteRepo *repository.QuoteRepository, logger *zap.Logger) *QuoteService {
	return &QuoteService{
		quoteRepo: quoteRepo,
		logger:    logger,
	}
}

// CreateQuote creates a draft quote with a generated number
func (s *QuoteService) CreateQuote(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.Quote, error) {
	count, err := s.quoteRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	quote := &domain.Quote{
		Title:        req.Title,
		CustomerName: req.CustomerName,
		Status:       domain.QuoteStatusDraft,
		Notes:        req.Notes,
	}

	// The sequence part comes from the table count, so a concurrent create can
	// collide on the unique number index. Retry with the next number.
	for attempt := 0; attempt < 3; attempt++ {
		quote.Number = fmt.Sprintf("Q-%d-%04d", time.Now().Year(), count+1+int64(attempt))
		err = s.quoteRepo.Create(ctx, quote)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create quote: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logger.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("number", quote.Number),
	)

	return quote, nil
}

// GetQuote retrieves a quote with its items, clusters, lines and attachments
func (s *QuoteService) GetQuote(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByIDWithItems(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return quote, nil
}

// ListQuotes returns quotes matching the optional search term, newest first
func (s *QuoteService) ListQuotes(ctx context.Context, search string, limit, offset int) ([]domain.Quote, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	quotes, err := s.quoteRepo.List(ctx, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	return quotes, nil
}

// UpdateQuote updates a quote's header fields
func (s *QuoteService) UpdateQuote(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.Quote, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	quote.Title = req.Title
	quote.CustomerName = req.CustomerName
	quote.Notes = req.Notes

	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: invalid quote status %q", ErrInvalidInput, *req.Status)
		}
		quote.Status = *req.Status
	}

	if req.ValidUntil != nil {
		if *req.ValidUntil == "" {
			quote.ValidUntil = nil
		} else {
			validUntil, err := parseDate(*req.ValidUntil)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid valid-until date: %v", ErrInvalidInput, err)
			}
			quote.ValidUntil = &validUntil
		}
	}

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	return quote, nil
}

// DeleteQuote removes a quote and everything hanging off it
func (s *QuoteService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	if err := s.quoteRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuoteNotFound
		}
		return fmt.Errorf("failed to delete quote: %w", err)
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
