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

// FinnhubProvider is the secondary market-data adapter.
type FinnhubProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFinnhubProvider creates a FinnhubProvider.
func NewFinnhubProvider(apiKey, baseURL string) *FinnhubProvider {
	return &FinnhubProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    baseURL,
	}
}

func (f *FinnhubProvider) Name() string { return "finnhub" }

type finnhubQuoteResponse struct {
	CurrentPrice float64 `json:"c"`
}

func (f *FinnhubProvider) Quote(ctx context.Context, ticker models.Ticker) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "finnhub.quote", func() error {
		params := url.Values{}
		params.Set("symbol", ticker.String())
		params.Set("token", f.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/quote?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := f.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed finnhubQuoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}
		price = decimal.NewFromFloat(parsed.CurrentPrice)
		return nil
	})
	return price, err
}

type finnhubCandleResponse struct {
	Close  []float64 `json:"c"`
	High   []float64 `json:"h"`
	Low    []float64 `json:"l"`
	Open   []float64 `json:"o"`
	Volume []float64 `json:"v"`
	Time   []int64   `json:"t"`
	Status string    `json:"s"`
}

func (f *FinnhubProvider) Historical(ctx context.Context, ticker models.Ticker, days int) ([]models.Bar, error) {
	var bars []models.Bar
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "finnhub.historical", func() error {
		end := time.Now().UTC()
		start := end.AddDate(0, 0, -days)

		params := url.Values{}
		params.Set("symbol", ticker.String())
		params.Set("resolution", "D")
		params.Set("from", fmt.Sprintf("%d", start.Unix()))
		params.Set("to", fmt.Sprintf("%d", end.Unix()))
		params.Set("token", f.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/stock/candle?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := f.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed finnhubCandleResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}
		if parsed.Status != "ok" {
			return fmt.Errorf("finnhub candle status %q", parsed.Status)
		}

		bars = make([]models.Bar, 0, len(parsed.Close))
		for i := len(parsed.Close) - 1; i >= 0; i-- {
			bars = append(bars, models.Bar{
				Date:   time.Unix(parsed.Time[i], 0).UTC(),
				Open:   decimal.NewFromFloat(parsed.Open[i]),
				High:   decimal.NewFromFloat(parsed.High[i]),
				Low:    decimal.NewFromFloat(parsed.Low[i]),
				Close:  decimal.NewFromFloat(parsed.Close[i]),
				Volume: int64(parsed.Volume[i]),
			})
		}
		return nil
	})
	return bars, err
}
