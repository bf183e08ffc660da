package imapsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emersion/go-imap"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
)

type fakeClassifier struct{}

func (fakeClassifier) Classify(ctx context.Context, text string) (string, error) {
	return core.CategoryInterested, nil
}

type fakeIndex struct {
	inserted []*core.Email
	lastDate time.Time
	lastErr  error
}

func (f *fakeIndex) EnsureCollection(ctx context.Context, name string) error { return nil }

func (f *fakeIndex) Insert(ctx context.Context, collection string, email *core.Email) error {
	f.inserted = append(f.inserted, email)
	return nil
}

func (f *fakeIndex) ListRecent(ctx context.Context, collection string, limit int) ([]core.Email, error) {
	return nil, nil
}

func (f *fakeIndex) Search(ctx context.Context, collection string, q core.SearchQuery) ([]core.Email, error) {
	return nil, nil
}

func (f *fakeIndex) LastIndexedDate(ctx context.Context, collection string) (time.Time, error) {
	return f.lastDate, f.lastErr
}

type fakeNotifier struct {
	notified []*core.Email
}

func (f *fakeNotifier) NotifyNewMail(ctx context.Context, email *core.Email) error {
	f.notified = append(f.notified, email)
	return nil
}

func newTestEngine(index *fakeIndex, notifier *fakeNotifier) *Engine {
	svc := core.NewIngestService(fakeClassifier{}, index, nil, zap.NewNop(), false, 0)
	return NewEngine(nil, svc, index, notifier, zap.NewNop(), 720*time.Hour, 24*time.Hour)
}

func newEnvelopeMessage(subject string, date time.Time) *imap.Message {
	return &imap.Message{
		Envelope: &imap.Envelope{
			Subject: subject,
			From:    []*imap.Address{{MailboxName: "alice", HostName: "example.com"}},
			Date:    date,
		},
	}
}

func TestIngestNewAfterWatermark(t *testing.T) {
	index := &fakeIndex{}
	notifier := &fakeNotifier{}
	e := newTestEngine(index, notifier)

	envDate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := newEnvelopeMessage("Project update", envDate)
	watermark := envDate.Add(core.TimeOffset).Add(-time.Minute)

	section := &imap.BodySectionName{}
	ingested, err := e.ingestNew(context.Background(), msg, section, "work", "emails_work", watermark, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ingested {
		t.Fatal("expected message after watermark to be ingested")
	}

	if len(index.inserted) != 1 {
		t.Fatalf("expected 1 insert, got %d", len(index.inserted))
	}
	if index.inserted[0].Category != core.CategoryInterested {
		t.Errorf("category = %q, want %q", index.inserted[0].Category, core.CategoryInterested)
	}
	if len(notifier.notified) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notifier.notified))
	}
}

func TestIngestNewSkipsAtOrBeforeWatermark(t *testing.T) {
	index := &fakeIndex{}
	notifier := &fakeNotifier{}
	e := newTestEngine(index, notifier)

	envDate := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := newEnvelopeMessage("Old news", envDate)
	// Equal to the normalized date: strictly-after excludes it.
	watermark := envDate.Add(core.TimeOffset)

	section := &imap.BodySectionName{}
	ingested, err := e.ingestNew(context.Background(), msg, section, "work", "emails_work", watermark, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ingested {
		t.Fatal("message at the watermark must not be ingested")
	}

	if len(index.inserted) != 0 {
		t.Errorf("expected no inserts, got %d", len(index.inserted))
	}
	if len(notifier.notified) != 0 {
		t.Errorf("expected no notifications, got %d", len(notifier.notified))
	}
}

func TestWatermarkFromIndex(t *testing.T) {
	last := time.Date(2026, 3, 1, 17, 30, 0, 0, time.UTC)
	index := &fakeIndex{lastDate: last}
	e := newTestEngine(index, &fakeNotifier{})

	got := e.watermark(context.Background(), "emails_work", zap.NewNop())
	if !got.Equal(last) {
		t.Errorf("watermark = %v, want %v", got, last)
	}
}

func TestWatermarkEmptyIndexFallsBack(t *testing.T) {
	index := &fakeIndex{}
	e := newTestEngine(index, &fakeNotifier{})

	before := time.Now().Add(-24 * time.Hour)
	got := e.watermark(context.Background(), "emails_work", zap.NewNop())
	after := time.Now().Add(-24 * time.Hour)

	if got.Before(before) || got.After(after) {
		t.Errorf("watermark = %v, want ~now-24h", got)
	}
}

func TestWatermarkIndexErrorFallsBack(t *testing.T) {
	index := &fakeIndex{lastErr: errors.New("search failed")}
	e := newTestEngine(index, &fakeNotifier{})

	before := time.Now().Add(-24 * time.Hour)
	got := e.watermark(context.Background(), "emails_work", zap.NewNop())
	after := time.Now().Add(-24 * time.Hour)

	if got.Before(before) || got.After(after) {
		t.Errorf("watermark = %v, want ~now-24h", got)
	}
}
