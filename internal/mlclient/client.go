// Package mlclient is an HTTP client for the fake-report detection model
// service. The model is treated as an opaque oracle: text in, a fake
// probability and label out.
package mlclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/guardline/report-verifier/internal/retry"
)

// ErrUnavailable indicates the fake-report model service is unreachable.
var ErrUnavailable = errors.New("fake-report model service unavailable")

const defaultTimeout = 5 * time.Second

// PredictRequest is the request body for POST /predict.
type PredictRequest struct {
	ReportText          string `json:"report_text"`
	Location            string `json:"location,omitempty"`
	TimeOfOccurrence    string `json:"time_of_occurrence,omitempty"`
	ReporterCredibility int    `json:"reporter_credibility"`
}

// PredictResponse is the model's verdict on one report.
type PredictResponse struct {
	Label            string  `json:"label"`
	FakeProbability  float64 `json:"fake_probability"`
	ProcessingTimeMs int64   `json:"processing_time_ms"`
}

// IsFake reports whether the model labelled the report fake.
func (r *PredictResponse) IsFake() bool {
	return r.Label == "fake"
}

// Client calls the fake-report model service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Predict sends the report to the model. Transport failures wrap
// ErrUnavailable so the verification cascade can fall to its next tier.
func (c *Client) Predict(ctx context.Context, req *PredictRequest) (*PredictResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: model service returned 429", retry.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var result PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// Health checks whether the model service is up.
func (c *Client) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}
