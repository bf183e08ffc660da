package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/adityaparmar/onebox/internal/core"
)

// Client calls the HuggingFace inference API for zero-shot
// classification against the fixed candidate label set. It implements
// core.Classifier.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiToken   string
	labels     []string
	logger     *zap.Logger
}

// NewClient creates a classifier client for the given inference
// endpoint.
func NewClient(apiURL, apiToken string, logger *zap.Logger) *Client {
	return &Client{
		httpClient: http.DefaultClient,
		apiURL:     apiURL,
		apiToken:   apiToken,
		labels:     core.CandidateLabels,
		logger:     logger,
	}
}

type classifyParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type classifyRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters classifyParameters `json:"parameters"`
}

type classifyResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify submits the text and returns the top-ranked label.
func (c *Client) Classify(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(classifyRequest{
		Inputs:     text,
		Parameters: classifyParameters{CandidateLabels: c.labels},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build classify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("classifier returned %s: %s", res.Status, string(body))
	}

	var parsed classifyResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}
	if len(parsed.Labels) == 0 {
		return "", fmt.Errorf("%w: no labels in classifier response", core.ErrMalformedResponse)
	}

	c.logger.Debug("Classified text",
		zap.String("label", parsed.Labels[0]),
		zap.Int("input_size", len(text)))

	return parsed.Labels[0], nil
}
