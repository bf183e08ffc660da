package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
)

// collectionMapping is the fixed schema every collection is created
// with. Subject and body are full-text; the rest are exact-match.
const collectionMapping = `{
	"mappings": {
		"properties": {
			"subject":  { "type": "text" },
			"sender":   { "type": "keyword" },
			"body":     { "type": "text" },
			"date":     { "type": "date" },
			"folder":   { "type": "keyword" },
			"account":  { "type": "keyword" },
			"category": { "type": "keyword" }
		}
	}
}`

// Client is the gateway to Elasticsearch. It implements
// core.EmailIndex. One instance is created at process start and shared
// by every component.
type Client struct {
	es           *elasticsearch.Client
	logger       *zap.Logger
	pingInterval time.Duration
}

// NewClient creates a client against the given node URL.
func NewClient(url string, pingInterval time.Duration, logger *zap.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Client{
		es:           es,
		logger:       logger,
		pingInterval: pingInterval,
	}, nil
}

// WaitReady blocks until the cluster answers a ping, retrying with a
// fixed delay. Used only during startup; there is no bound on the
// number of attempts.
func (c *Client) WaitReady(ctx context.Context) error {
	for {
		res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
		if err == nil && !res.IsError() {
			res.Body.Close()
			c.logger.Info("Elasticsearch is ready")
			return nil
		}
		if res != nil {
			res.Body.Close()
		}

		c.logger.Info("Waiting for Elasticsearch...")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pingInterval):
		}
	}
}

// EnsureCollection creates the named collection with the fixed schema
// if it does not already exist. Calling it repeatedly is safe.
func (c *Client) EnsureCollection(ctx context.Context, name string) error {
	res, err := c.es.Indices.Exists([]string{name}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %q: %w", name, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return apiError("exists check", res)
	}

	createRes, err := c.es.Indices.Create(name,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(collectionMapping))),
	)
	if err != nil {
		return fmt.Errorf("failed to create index %q: %w", name, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return apiError("index create", createRes)
	}

	c.logger.Info("Elasticsearch index created", zap.String("index", name))
	return nil
}

// Insert writes a single record. There is no batching and no dedup key;
// the same message indexed twice yields two documents.
func (c *Client) Insert(ctx context.Context, collection string, email *core.Email) error {
	doc, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	res, err := c.es.Index(collection, bytes.NewReader(doc), c.es.Index.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apiError("document insert", res)
	}
	return nil
}

// ListRecent returns up to limit records sorted by date descending.
func (c *Client) ListRecent(ctx context.Context, collection string, limit int) ([]core.Email, error) {
	body := map[string]interface{}{
		"size": limit,
		"sort": []map[string]interface{}{
			{"date": map[string]interface{}{"order": "desc"}},
		},
	}
	return c.runSearch(ctx, collection, body)
}

// Search runs the filtered/fuzzy query shape: a fuzzy multi-field match
// over subject and body when text is present, match-all otherwise, with
// an optional exact folder filter. Results are date descending.
func (c *Client) Search(ctx context.Context, collection string, q core.SearchQuery) ([]core.Email, error) {
	return c.runSearch(ctx, collection, buildSearchBody(q))
}

// LastIndexedDate returns the newest indexed document's date, or the
// zero time when the collection has no documents.
func (c *Client) LastIndexedDate(ctx context.Context, collection string) (time.Time, error) {
	body := map[string]interface{}{
		"size": 1,
		"sort": []map[string]interface{}{
			{"date": map[string]interface{}{"order": "desc"}},
		},
		"_source": []string{"date"},
	}

	hits, err := c.runSearch(ctx, collection, body)
	if err != nil {
		return time.Time{}, err
	}
	if len(hits) == 0 {
		return time.Time{}, nil
	}
	return hits[0].Date, nil
}

// buildSearchBody assembles the query document for Search.
func buildSearchBody(q core.SearchQuery) map[string]interface{} {
	var must []map[string]interface{}
	if q.Text != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     q.Text,
				"fields":    []string{"subject", "body"},
				"fuzziness": "AUTO",
			},
		})
	} else {
		must = append(must, map[string]interface{}{
			"match_all": map[string]interface{}{},
		})
	}

	filter := []map[string]interface{}{}
	if q.Folder != "" {
		filter = append(filter, map[string]interface{}{
			"match": map[string]interface{}{"folder": q.Folder},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
		"sort": []map[string]interface{}{
			{"date": map[string]interface{}{"order": "desc"}},
		},
		"size": q.Limit,
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source core.Email `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// runSearch executes a search body and unpacks the hit sources.
func (c *Client) runSearch(ctx context.Context, collection string, body map[string]interface{}) ([]core.Email, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode search body: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(collection),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apiError("search", res)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}

	emails := make([]core.Email, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		emails = append(emails, hit.Source)
	}
	return emails, nil
}

// apiError turns a non-2xx Elasticsearch response into an error
// carrying the raw body.
func apiError(op string, res *esapi.Response) error {
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("elasticsearch %s failed: %s: %s", op, res.Status(), string(msg))
}
