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

// FMPProvider is the quaternary, last-resort market-data adapter, grounded
// on the teacher's FMPService request/decode shape.
type FMPProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFMPProvider creates an FMPProvider.
func NewFMPProvider(apiKey, baseURL string) *FMPProvider {
	return &FMPProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    baseURL,
	}
}

func (f *FMPProvider) Name() string { return "fmp" }

type fmpQuoteResponse struct {
	Price float64 `json:"price"`
}

func (f *FMPProvider) Quote(ctx context.Context, ticker models.Ticker) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "fmp.quote", func() error {
		reqURL := fmt.Sprintf("%s/quote/%s?apikey=%s", f.baseURL, ticker.String(), url.QueryEscape(f.apiKey))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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

		var parsed []fmpQuoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}
		if len(parsed) == 0 {
			return fmt.Errorf("fmp: no quote data for %s", ticker)
		}
		price = decimal.NewFromFloat(parsed[0].Price)
		return nil
	})
	return price, err
}

type fmpHistoricalResponse struct {
	Historical []struct {
		Date   string  `json:"date"`
		Open   float64 `json:"open"`
		High   float64 `json:"high"`
		Low    float64 `json:"low"`
		Close  float64 `json:"close"`
		Volume int64   `json:"volume"`
	} `json:"historical"`
}

func (f *FMPProvider) Historical(ctx context.Context, ticker models.Ticker, days int) ([]models.Bar, error) {
	var bars []models.Bar
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "fmp.historical", func() error {
		reqURL := fmt.Sprintf("%s/historical-price-full/%s?apikey=%s", f.baseURL, ticker.String(), url.QueryEscape(f.apiKey))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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

		var parsed fmpHistoricalResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}

		limit := len(parsed.Historical)
		if limit > days {
			limit = days
		}

		bars = make([]models.Bar, 0, limit)
		for i := 0; i < limit; i++ {
			row := parsed.Historical[i]
			date, err := time.Parse("2006-01-02", row.Date)
			if err != nil {
				continue
			}
			bars = append(bars, models.Bar{
				Date:   date,
				Open:   decimal.NewFromFloat(row.Open),
				High:   decimal.NewFromFloat(row.High),
				Low:    decimal.NewFromFloat(row.Low),
				Close:  decimal.NewFromFloat(row.Close),
				Volume: row.Volume,
			})
		}
		return nil
	})
	return bars, err
}
