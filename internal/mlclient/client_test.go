package mlclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/guardline/report-verifier/internal/retry"
)

func TestClient_Predict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Errorf("path = %q, want /predict", r.URL.Path)
		}
		var req PredictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.ReportText == "" {
			t.Error("report_text missing from request body")
		}
		_ = json.NewEncoder(w).Encode(PredictResponse{Label: "fake", FakeProbability: 0.91})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.Predict(context.Background(), &PredictRequest{
		ReportText:          "lol this never happened",
		ReporterCredibility: 50,
	})
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if !got.IsFake() {
		t.Error("IsFake() = false, want true")
	}
	if got.FakeProbability != 0.91 {
		t.Errorf("fake probability = %v, want 0.91", got.FakeProbability)
	}
}

func TestClient_PredictUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Predict(context.Background(), &PredictRequest{ReportText: "x"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Predict() error = %v, want ErrUnavailable", err)
	}
}

func TestClient_PredictUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.Predict(context.Background(), &PredictRequest{ReportText: "x"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Predict() error = %v, want ErrUnavailable", err)
	}
}

func TestClient_PredictRateLimitedIsNotUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Predict(context.Background(), &PredictRequest{ReportText: "x"})
	if err == nil {
		t.Fatal("Predict() error = nil, want rate limit error")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Error("429 must stay retryable, not ErrUnavailable")
	}
	if !errors.Is(err, retry.ErrRateLimited) {
		t.Errorf("err = %v, want retry.ErrRateLimited", err)
	}
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := NewClient(srv.URL).Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
	if err := NewClient("http://127.0.0.1:1").Health(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Health() error = %v, want ErrUnavailable", err)
	}
}
