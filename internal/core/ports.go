package core

import (
	"context"
	"time"
)

// Classifier assigns one of the candidate labels to a piece of text.
type Classifier interface {
	// Classify returns the top-ranked label for the given text.
	Classify(ctx context.Context, text string) (string, error)
}

// EmailIndex is the gateway to the external search engine.
type EmailIndex interface {
	// EnsureCollection creates the named collection with the fixed
	// schema if it does not exist yet. Safe to call repeatedly.
	EnsureCollection(ctx context.Context, name string) error

	// Insert writes a single record. No batching, no dedup.
	Insert(ctx context.Context, collection string, email *Email) error

	// ListRecent returns up to limit records sorted by date descending.
	ListRecent(ctx context.Context, collection string, limit int) ([]Email, error)

	// Search runs a fuzzy text match with an optional folder filter,
	// sorted by date descending.
	Search(ctx context.Context, collection string, q SearchQuery) ([]Email, error)

	// LastIndexedDate returns the date of the most recently indexed
	// record, or the zero time when the collection is empty.
	LastIndexedDate(ctx context.Context, collection string) (time.Time, error)
}

// ReplyGenerator drafts a reply from a grounding prompt.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// Notifier announces a newly indexed message to an external channel.
type Notifier interface {
	NotifyNewMail(ctx context.Context, email *Email) error
}

// CategoryCache stores per-sender classification results.
type CategoryCache interface {
	// Get retrieves a cached entry for a sender.
	Get(ctx context.Context, sender string) (*CategoryEntry, error)

	// Set stores a cache entry.
	Set(ctx context.Context, entry *CategoryEntry) error

	// Delete removes a cache entry.
	Delete(ctx context.Context, sender string) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}
