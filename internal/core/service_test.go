package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

type fakeClassifier struct {
	label string
	err   error
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.label, f.err
}

type fakeIndex struct {
	inserted []*Email
	err      error
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, name string) error { return nil }

func (f *fakeIndex) Insert(ctx context.Context, collection string, email *Email) error {
	f.inserted = append(f.inserted, email)
	return f.err
}

func (f *fakeIndex) ListRecent(ctx context.Context, collection string, limit int) ([]Email, error) {
	return nil, nil
}

func (f *fakeIndex) Search(ctx context.Context, collection string, q SearchQuery) ([]Email, error) {
	return nil, nil
}

func (f *fakeIndex) LastIndexedDate(ctx context.Context, collection string) (time.Time, error) {
	return time.Time{}, nil
}

type fakeCache struct {
	entries map[string]*CategoryEntry
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*CategoryEntry)}
}

func (f *fakeCache) Get(ctx context.Context, sender string) (*CategoryEntry, error) {
	entry, ok := f.entries[sender]
	if !ok {
		return nil, errors.New("not found")
	}
	return entry, nil
}

func (f *fakeCache) Set(ctx context.Context, entry *CategoryEntry) error {
	f.sets++
	f.entries[entry.Sender] = entry
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, sender string) error {
	delete(f.entries, sender)
	return nil
}

func (f *fakeCache) Cleanup(ctx context.Context) error { return nil }

func TestCategorizeClassifierErrorDefaultsToUnknown(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("service unavailable")}
	svc := NewIngestService(classifier, &fakeIndex{}, newFakeCache(), zap.NewNop(), false, 0)

	got := svc.Categorize(context.Background(), &Email{Sender: "a@example.com", Subject: "Hi"})
	if got != CategoryUnknown {
		t.Errorf("expected %q on classifier error, got %q", CategoryUnknown, got)
	}
}

func TestCategorizeCacheHitSkipsClassifier(t *testing.T) {
	classifier := &fakeClassifier{label: CategoryInterested}
	cache := newFakeCache()
	cache.entries["a@example.com"] = &CategoryEntry{
		Sender:   "a@example.com",
		Category: "Meeting Booked",
	}
	svc := NewIngestService(classifier, &fakeIndex{}, cache, zap.NewNop(), true, time.Hour)

	got := svc.Categorize(context.Background(), &Email{Sender: "a@example.com"})
	if got != "Meeting Booked" {
		t.Errorf("expected cached category, got %q", got)
	}
	if classifier.calls != 0 {
		t.Errorf("classifier was called %d times on a cache hit", classifier.calls)
	}
}

func TestCategorizeCachesResult(t *testing.T) {
	classifier := &fakeClassifier{label: CategoryInterested}
	cache := newFakeCache()
	svc := NewIngestService(classifier, &fakeIndex{}, cache, zap.NewNop(), true, time.Hour)

	svc.Categorize(context.Background(), &Email{Sender: "a@example.com"})
	if cache.sets != 1 {
		t.Errorf("expected 1 cache write, got %d", cache.sets)
	}

	// Unknown must never be cached.
	classifier.err = errors.New("boom")
	svc.Categorize(context.Background(), &Email{Sender: "b@example.com"})
	if cache.sets != 1 {
		t.Errorf("unknown category was cached, got %d writes", cache.sets)
	}
}

func TestIngestSetsCategoryBeforeInsert(t *testing.T) {
	classifier := &fakeClassifier{label: "Out of Office"}
	index := &fakeIndex{}
	svc := NewIngestService(classifier, index, newFakeCache(), zap.NewNop(), false, 0)

	email := &Email{Sender: "a@example.com", Subject: "Away"}
	if err := svc.Ingest(context.Background(), "emails_work", email); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(index.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(index.inserted))
	}
	if index.inserted[0].Category != "Out of Office" {
		t.Errorf("category not set before insert, got %q", index.inserted[0].Category)
	}
}

func TestIngestPropagatesIndexError(t *testing.T) {
	index := &fakeIndex{err: errors.New("index down")}
	svc := NewIngestService(&fakeClassifier{label: CategoryInterested}, index, newFakeCache(), zap.NewNop(), false, 0)

	if err := svc.Ingest(context.Background(), "emails_work", &Email{}); err == nil {
		t.Error("expected insert error to propagate")
	}
}
