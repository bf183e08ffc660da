package core

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// IngestService runs the write path: classify a normalized email and
// store it in its account's collection. Classification never fails
// upward; any error degrades to CategoryUnknown.
type IngestService struct {
	classifier   Classifier
	index        EmailIndex
	cache        CategoryCache
	logger       *zap.Logger
	cacheEnabled bool
	cacheTTL     time.Duration
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	classifier Classifier,
	index EmailIndex,
	cache CategoryCache,
	logger *zap.Logger,
	cacheEnabled bool,
	cacheTTL time.Duration,
) *IngestService {
	return &IngestService{
		classifier:   classifier,
		index:        index,
		cache:        cache,
		logger:       logger,
		cacheEnabled: cacheEnabled,
		cacheTTL:     cacheTTL,
	}
}

// Categorize returns the label for an email. The classifier sees the
// lowercased subject and body; transport or service errors are logged
// and replaced with CategoryUnknown.
func (s *IngestService) Categorize(ctx context.Context, email *Email) string {
	if s.cacheEnabled {
		if entry, err := s.cache.Get(ctx, email.Sender); err == nil {
			s.logger.Debug("Category cache hit",
				zap.String("sender", email.Sender),
				zap.String("category", entry.Category))
			return entry.Category
		}
	}

	text := strings.ToLower(email.Subject + " " + email.Body)

	label, err := s.classifier.Classify(ctx, text)
	if err != nil {
		s.logger.Warn("Classification failed, defaulting category",
			zap.String("sender", email.Sender),
			zap.Error(err))
		return CategoryUnknown
	}

	if s.cacheEnabled && label != CategoryUnknown {
		entry := &CategoryEntry{
			Sender:    email.Sender,
			Category:  label,
			LastSeen:  time.Now(),
			ExpiresAt: time.Now().Add(s.cacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update category cache", zap.Error(err))
		}
	}

	return label
}

// Ingest classifies the email and writes it to the collection. The
// category is always populated before the record reaches the index.
func (s *IngestService) Ingest(ctx context.Context, collection string, email *Email) error {
	email.Category = s.Categorize(ctx, email)

	if err := s.index.Insert(ctx, collection, email); err != nil {
		return err
	}

	s.logger.Debug("Indexed email",
		zap.String("collection", collection),
		zap.String("sender", email.Sender),
		zap.String("category", email.Category))
	return nil
}
