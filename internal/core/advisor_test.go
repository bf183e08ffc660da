package core

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) GenerateReply(ctx context.Context, prompt string) (string, error) {
	return f.reply, f.err
}

var testRefs = []Reference{
	{ID: "1", Text: "We build backend systems in Go."},
	{ID: "2", Text: "Our team works on email tooling and search."},
	{ID: "3", Text: "I am available for a call on weekday afternoons."},
}

func TestMostRelevantPicksMatchingEntry(t *testing.T) {
	a := NewReplyAdvisor(&fakeGenerator{}, testRefs, zap.NewNop())

	got := a.MostRelevant("Are you available for a call this week?")
	if got != testRefs[2].Text {
		t.Errorf("expected availability entry, got %q", got)
	}
}

func TestMostRelevantTieKeepsFirstSeen(t *testing.T) {
	a := NewReplyAdvisor(&fakeGenerator{}, testRefs, zap.NewNop())

	// No query term appears in any reference, so every score is zero
	// and the first entry must win.
	got := a.MostRelevant("xyzzy quux")
	if got != testRefs[0].Text {
		t.Errorf("expected first entry on tie, got %q", got)
	}
}

func TestSuggestReplyPassesThroughCompletion(t *testing.T) {
	gen := &fakeGenerator{reply: "Happy to chat, how about Tuesday?"}
	a := NewReplyAdvisor(gen, testRefs, zap.NewNop())

	got := a.SuggestReply(context.Background(), "Can we schedule a call?")
	if got != gen.reply {
		t.Errorf("expected completion passthrough, got %q", got)
	}
}

func TestSuggestReplyFallsBackOnGeneratorError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	a := NewReplyAdvisor(gen, testRefs, zap.NewNop())

	got := a.SuggestReply(context.Background(), "Can we schedule a call?")
	if got != CannedReply {
		t.Errorf("expected canned reply on error, got %q", got)
	}
}

func TestSuggestReplyFallsBackOnEmptyCompletion(t *testing.T) {
	gen := &fakeGenerator{reply: "   \n"}
	a := NewReplyAdvisor(gen, testRefs, zap.NewNop())

	got := a.SuggestReply(context.Background(), "Hello")
	if got != CannedReply {
		t.Errorf("expected canned reply on blank completion, got %q", got)
	}
}
