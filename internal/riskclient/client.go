// Package riskclient is an HTTP client for the escalation risk model
// service. It returns the model's raw prediction; the escalation package
// applies keyword overrides and confidence adjustments on top.
package riskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/guardline/report-verifier/internal/domain"
	"github.com/guardline/report-verifier/internal/retry"
)

// ErrUnavailable indicates the risk model service is unreachable.
var ErrUnavailable = errors.New("risk model service unavailable")

const defaultTimeout = 5 * time.Second

// PredictRequest is the request body for POST /predict.
type PredictRequest struct {
	Description  string `json:"description"`
	CrimeType    string `json:"crime_type,omitempty"`
	Location     string `json:"location,omitempty"`
	PartOfDay    string `json:"part_of_day,omitempty"`
	IsUserReport bool   `json:"is_user_report"`
}

// PredictResponse carries the raw model output.
type PredictResponse struct {
	PredictedRisk     string             `json:"predicted_risk"`
	Confidence        float64            `json:"confidence"`
	Probabilities     map[string]float64 `json:"probabilities"`
	UnknownCategories []string           `json:"unknown_categories"`
}

// Base converts the wire response into a domain prediction.
func (r *PredictResponse) Base() domain.BaseRiskPrediction {
	return domain.BaseRiskPrediction{
		Risk:              r.PredictedRisk,
		Confidence:        r.Confidence,
		Probabilities:     r.Probabilities,
		UnknownCategories: len(r.UnknownCategories),
	}
}

// Client calls the escalation risk model service.
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

// Predict requests a base risk prediction for one incident.
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
		return nil, fmt.Errorf("%w: risk model returned 429", retry.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var result PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
