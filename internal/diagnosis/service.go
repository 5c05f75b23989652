package diagnosis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agrilink-backend/internal/model"
)

// Request describes a crop sample submitted for diagnosis.
type Request struct {
	Crop     string `json:"crop" binding:"required"`
	ImageURL string `json:"image_url"`
	Notes    string `json:"notes"`
}

// Service is the external AI diagnosis collaborator. Its internals are a
// black box; it returns a classification-like result.
type Service interface {
	Diagnose(ctx context.Context, req Request) (*model.DiagnosisResultPayload, error)
}

// HTTPService calls a remote diagnosis endpoint.
type HTTPService struct {
	url    string
	client *http.Client
}

// NewHTTPService creates an HTTP-backed diagnosis service.
func NewHTTPService(url string) *HTTPService {
	return &HTTPService{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPService) Diagnose(ctx context.Context, req Request) (*model.DiagnosisResultPayload, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diagnosis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("diagnosis service returned status %d", resp.StatusCode)
	}

	var result model.DiagnosisResultPayload
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode diagnosis response: %w", err)
	}
	return &result, nil
}
