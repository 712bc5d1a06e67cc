package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/resilience"
)

// AlphaVantageProvider is the tertiary market-data adapter, grounded on the
// teacher's AlphaVantageService query-building and GLOBAL_QUOTE/TIME_SERIES_DAILY
// response shapes.
type AlphaVantageProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageProvider creates an AlphaVantageProvider.
func NewAlphaVantageProvider(apiKey, baseURL string) *AlphaVantageProvider {
	return &AlphaVantageProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    baseURL,
	}
}

func (a *AlphaVantageProvider) Name() string { return "alphavantage" }

type avQuoteResponse struct {
	GlobalQuote struct {
		Price string `json:"05. price"`
	} `json:"Global Quote"`
}

func (a *AlphaVantageProvider) Quote(ctx context.Context, ticker models.Ticker) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "alphavantage.quote", func() error {
		params := url.Values{}
		params.Set("function", "GLOBAL_QUOTE")
		params.Set("symbol", ticker.String())
		params.Set("apikey", a.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := a.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed avQuoteResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}
		price, err = decimal.NewFromString(parsed.GlobalQuote.Price)
		return err
	})
	return price, err
}

type avDailyResponse struct {
	TimeSeries map[string]struct {
		Open   string `json:"1. open"`
		High   string `json:"2. high"`
		Low    string `json:"3. low"`
		Close  string `json:"4. close"`
		Volume string `json:"5. volume"`
	} `json:"Time Series (Daily)"`
}

func (a *AlphaVantageProvider) Historical(ctx context.Context, ticker models.Ticker, days int) ([]models.Bar, error) {
	var bars []models.Bar
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "alphavantage.historical", func() error {
		params := url.Values{}
		params.Set("function", "TIME_SERIES_DAILY")
		params.Set("symbol", ticker.String())
		params.Set("outputsize", "compact")
		params.Set("apikey", a.apiKey)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		resp, err := a.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed avDailyResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}

		dates := make([]string, 0, len(parsed.TimeSeries))
		for d := range parsed.TimeSeries {
			dates = append(dates, d)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(dates)))
		if len(dates) > days {
			dates = dates[:days]
		}

		bars = make([]models.Bar, 0, len(dates))
		for _, d := range dates {
			row := parsed.TimeSeries[d]
			date, err := time.Parse("2006-01-02", d)
			if err != nil {
				continue
			}
			open, _ := decimal.NewFromString(row.Open)
			high, _ := decimal.NewFromString(row.High)
			low, _ := decimal.NewFromString(row.Low)
			closeP, _ := decimal.NewFromString(row.Close)
			volume, _ := decimal.NewFromString(row.Volume)

			bars = append(bars, models.Bar{
				Date:   date,
				Open:   open,
				High:   high,
				Low:    low,
				Close:  closeP,
				Volume: volume.IntPart(),
			})
		}
		return nil
	})
	return bars, err
}
