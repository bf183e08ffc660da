package core

import (
	"errors"
	"time"
)

// TimeOffset is the fixed IST offset applied to every message date at
// normalization time. It is applied exactly once; values read back from
// the index already carry it.
const TimeOffset = 5*time.Hour + 30*time.Minute

// CategoryUnknown is assigned whenever classification fails.
const CategoryUnknown = "Unknown"

// CategoryInterested marks high-value mail.
const CategoryInterested = "Interested"

// CandidateLabels is the fixed label set submitted to the zero-shot
// classifier. Every indexed email carries one of these or Unknown.
var CandidateLabels = []string{
	CategoryInterested,
	"Meeting Booked",
	"Not Interested",
	"Spam",
	"Out of Office",
}

// ErrMalformedResponse indicates an external service answered with a
// payload that does not match its documented shape.
var ErrMalformedResponse = errors.New("malformed response from external service")

// Email is the canonical record persisted in the search index, one
// collection per account.
type Email struct {
	Subject  string    `json:"subject"`
	Sender   string    `json:"sender"`
	Body     string    `json:"body"`
	Date     time.Time `json:"date"`
	Folder   string    `json:"folder"`
	Account  string    `json:"account"`
	Category string    `json:"category,omitempty"`
}

// SearchQuery describes a read against a collection.
type SearchQuery struct {
	Text   string
	Folder string
	Limit  int
}

// Reference is one entry of the static grounding corpus used by the
// reply advisor. Loaded once at process start, never mutated.
type Reference struct {
	ID   string
	Text string
}

// CategoryEntry is a cached classification result for a sender.
type CategoryEntry struct {
	Sender    string
	Category  string
	LastSeen  time.Time
	ExpiresAt time.Time
}
