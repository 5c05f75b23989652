package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"agrilink-backend/config"
	"agrilink-backend/internal/model"
	"agrilink-backend/internal/realtime"
)

// Report is the current-conditions response relayed to clients.
type Report struct {
	Region      string    `json:"region"`
	Condition   string    `json:"condition"`
	TempC       float64   `json:"temp_c"`
	Humidity    int       `json:"humidity"`
	WindKph     float64   `json:"wind_kph"`
	ObservedAt  time.Time `json:"observed_at"`
}

// Provider is the external weather collaborator.
type Provider interface {
	Current(ctx context.Context, region string) (*Report, error)
	Alerts(ctx context.Context, region string) ([]model.WeatherAlertPayload, error)
}

// HTTPProvider fetches weather data from a remote endpoint.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider creates an HTTP-backed weather provider.
func NewHTTPProvider(url string) *HTTPProvider {
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) Current(ctx context.Context, region string) (*Report, error) {
	var report Report
	if err := p.get(ctx, p.url+"/current?region="+url.QueryEscape(region), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (p *HTTPProvider) Alerts(ctx context.Context, region string) ([]model.WeatherAlertPayload, error) {
	var alerts []model.WeatherAlertPayload
	if err := p.get(ctx, p.url+"/alerts?region="+url.QueryEscape(region), &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

func (p *HTTPProvider) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}

// Service periodically polls the provider for alerts and broadcasts them
// through the delivery gateway.
type Service struct {
	cfg      *config.WeatherConfig
	provider Provider
	gateway  *realtime.Gateway
}

// NewService creates the background alert poller.
func NewService(cfg *config.WeatherConfig, provider Provider, gateway *realtime.Gateway) *Service {
	return &Service{cfg: cfg, provider: provider, gateway: gateway}
}

// Run starts the polling loop. It returns when ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("Weather poller is disabled. Not starting.")
		return
	}
	log.Println("Starting weather alert poller...")

	s.PollOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Weather poller shutting down.")
			return
		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// PollOnce performs a single alert fetch and broadcast cycle.
func (s *Service) PollOnce(ctx context.Context) {
	alerts, err := s.provider.Alerts(ctx, s.cfg.Region)
	if err != nil {
		log.Printf("Weather alert fetch failed: %v", err)
		return
	}

	for _, alert := range alerts {
		s.gateway.BroadcastWeatherAlert(alert)
	}
	if len(alerts) > 0 {
		log.Printf("Broadcast %d weather alert(s)", len(alerts))
	}
}
