package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/resilience"
)

// PolygonProvider is the primary market-data adapter, grounded on the
// teacher's Alpha Vantage client shape (url.Values query building,
// http.Client with a fixed timeout, JSON decode into a narrow response
// struct).
type PolygonProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewPolygonProvider creates a PolygonProvider.
func NewPolygonProvider(apiKey, baseURL string) *PolygonProvider {
	return &PolygonProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    baseURL,
	}
}

func (p *PolygonProvider) Name() string { return "polygon" }

type polygonLastTradeResponse struct {
	Results struct {
		Price float64 `json:"p"`
	} `json:"results"`
	Status string `json:"status"`
}

func (p *PolygonProvider) Quote(ctx context.Context, ticker models.Ticker) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "polygon.quote", func() error {
		reqURL := fmt.Sprintf("%s/v2/last/trade/%s?apiKey=%s", p.baseURL, ticker.String(), url.QueryEscape(p.apiKey))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed polygonLastTradeResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}
		price = decimal.NewFromFloat(parsed.Results.Price)
		return nil
	})
	return price, err
}

type polygonAggsResponse struct {
	Results []struct {
		Timestamp int64   `json:"t"`
		Open      float64 `json:"o"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		Close     float64 `json:"c"`
		Volume    float64 `json:"v"`
	} `json:"results"`
}

func (p *PolygonProvider) Historical(ctx context.Context, ticker models.Ticker, days int) ([]models.Bar, error) {
	var bars []models.Bar
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "polygon.historical", func() error {
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -days)
		reqURL := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s?sort=desc&limit=%d&apiKey=%s",
			p.baseURL, ticker.String(), start.Format("2006-01-02"), end.Format("2006-01-02"), days, url.QueryEscape(p.apiKey))

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		resp, err := p.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed polygonAggsResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}

		bars = make([]models.Bar, 0, len(parsed.Results))
		for _, r := range parsed.Results {
			bars = append(bars, models.Bar{
				Date:   time.UnixMilli(r.Timestamp).UTC(),
				Open:   decimal.NewFromFloat(r.Open),
				High:   decimal.NewFromFloat(r.High),
				Low:    decimal.NewFromFloat(r.Low),
				Close:  decimal.NewFromFloat(r.Close),
				Volume: int64(r.Volume),
			})
		}
		return nil
	})
	return bars, err
}

type httpStatusError struct {
	code int
}

func statusError(code int) error {
	return &httpStatusError{code: code}
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.code)
}

func (e *httpStatusError) HTTPStatus() int {
	return e.code
}
