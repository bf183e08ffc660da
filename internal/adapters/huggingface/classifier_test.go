package huggingface

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
)

func TestClassify_ReturnsTopLabel(t *testing.T) {
	t.Parallel()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(req.Parameters.CandidateLabels) != len(core.CandidateLabels) {
			t.Errorf("unexpected candidate labels: %v", req.Parameters.CandidateLabels)
		}

		json.NewEncoder(w).Encode(classifyResponse{
			Labels: []string{"Meeting Booked", "Interested"},
			Scores: []float64{0.8, 0.2},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret", zap.NewNop())

	label, err := c.Classify(context.Background(), "let's meet tomorrow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != "Meeting Booked" {
		t.Errorf("unexpected label: %q", label)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
}

func TestClassify_ServiceError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", zap.NewNop())

	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestClassify_MalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"labels": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", zap.NewNop())

	_, err := c.Classify(context.Background(), "hello")
	if !errors.Is(err, core.ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestClassify_NetworkFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL, "", zap.NewNop())

	if _, err := c.Classify(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for unreachable classifier")
	}
}
