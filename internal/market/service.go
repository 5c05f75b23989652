package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agrilink-backend/internal/model"
)

// Provider is the external market data collaborator.
type Provider interface {
	Prices(ctx context.Context) ([]model.MarketPricePayload, error)
}

// HTTPProvider fetches commodity quotes from a remote endpoint.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider creates an HTTP-backed market data provider.
func NewHTTPProvider(url string) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) Prices(ctx context.Context) ([]model.MarketPricePayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market service returned status %d", resp.StatusCode)
	}

	var quotes []model.MarketPricePayload
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("failed to decode market response: %w", err)
	}
	return quotes, nil
}
