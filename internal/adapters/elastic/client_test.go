package elastic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
)

// fakeES emulates the two index APIs EnsureCollection touches: HEAD
// for existence and PUT for creation.
type fakeES struct {
	mu          sync.Mutex
	exists      bool
	createCalls int
	createBody  []byte
	createPath  string
}

func (f *fakeES) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The v8 client refuses to talk to servers missing this header.
		w.Header().Set("X-Elastic-Product", "Elasticsearch")

		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodHead:
			if f.exists {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
		case http.MethodPut:
			f.createCalls++
			f.createPath = r.URL.Path
			f.createBody, _ = io.ReadAll(r.Body)
			f.exists = true
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"acknowledged":true}`))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func TestEnsureCollection_CreatesOnceWithMapping(t *testing.T) {
	t.Parallel()

	es := &fakeES{}
	srv := httptest.NewServer(es.handler())
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.EnsureCollection(context.Background(), "emails_work"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if es.createCalls != 1 {
		t.Fatalf("expected 1 create, got %d", es.createCalls)
	}
	if es.createPath != "/emails_work" {
		t.Errorf("created index at %q", es.createPath)
	}

	var mapping struct {
		Mappings struct {
			Properties map[string]struct {
				Type string `json:"type"`
			} `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.Unmarshal(es.createBody, &mapping); err != nil {
		t.Fatalf("create body is not valid JSON: %v", err)
	}
	props := mapping.Mappings.Properties
	if props["date"].Type != "date" {
		t.Errorf("date field type = %q", props["date"].Type)
	}
	if props["category"].Type != "keyword" {
		t.Errorf("category field type = %q", props["category"].Type)
	}

	// Second call sees the index and must not create again.
	if err := c.EnsureCollection(context.Background(), "emails_work"); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}
	if es.createCalls != 1 {
		t.Errorf("expected create to stay at 1, got %d", es.createCalls)
	}
}

func TestEnsureCollection_ExistingIndexSkipsCreate(t *testing.T) {
	t.Parallel()

	es := &fakeES{exists: true}
	srv := httptest.NewServer(es.handler())
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.EnsureCollection(context.Background(), "emails_personal"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if es.createCalls != 0 {
		t.Errorf("expected no creates for an existing index, got %d", es.createCalls)
	}
}

func TestBuildSearchBody_TextAndFolder(t *testing.T) {
	t.Parallel()

	body := buildSearchBody(core.SearchQuery{Text: "invoice", Folder: "INBOX", Limit: 10})

	if body["size"] != 10 {
		t.Errorf("unexpected size: %v", body["size"])
	}

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]map[string]interface{})
	if len(must) != 1 {
		t.Fatalf("expected one must clause, got %d", len(must))
	}
	mm, ok := must[0]["multi_match"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected multi_match clause, got %v", must[0])
	}
	if mm["query"] != "invoice" {
		t.Errorf("unexpected query text: %v", mm["query"])
	}
	if mm["fuzziness"] != "AUTO" {
		t.Errorf("expected AUTO fuzziness, got %v", mm["fuzziness"])
	}

	filter := boolQuery["filter"].([]map[string]interface{})
	if len(filter) != 1 {
		t.Fatalf("expected one filter clause, got %d", len(filter))
	}
	match := filter[0]["match"].(map[string]interface{})
	if match["folder"] != "INBOX" {
		t.Errorf("unexpected folder filter: %v", match["folder"])
	}
}

func TestBuildSearchBody_EmptyTextIsMatchAll(t *testing.T) {
	t.Parallel()

	body := buildSearchBody(core.SearchQuery{Limit: 10})

	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})

	must := boolQuery["must"].([]map[string]interface{})
	if len(must) != 1 {
		t.Fatalf("expected one must clause, got %d", len(must))
	}
	if _, ok := must[0]["match_all"]; !ok {
		t.Errorf("expected match_all clause, got %v", must[0])
	}

	filter := boolQuery["filter"].([]map[string]interface{})
	if len(filter) != 0 {
		t.Errorf("expected no filter clauses, got %d", len(filter))
	}
}

func TestBuildSearchBody_SortsByDateDescending(t *testing.T) {
	t.Parallel()

	body := buildSearchBody(core.SearchQuery{Text: "hello", Limit: 5})

	sort := body["sort"].([]map[string]interface{})
	if len(sort) != 1 {
		t.Fatalf("expected one sort clause, got %d", len(sort))
	}
	date := sort[0]["date"].(map[string]interface{})
	if date["order"] != "desc" {
		t.Errorf("expected descending date sort, got %v", date["order"])
	}
}
