package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zurychhh/alpha-machine/models"
)

func TestAlphaVantageProvider_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote":{"05. price":"142.10"}}`))
	}))
	defer server.Close()

	p := NewAlphaVantageProvider("test-key", server.URL)
	ticker, _ := models.NewTicker("GOOG")

	price, err := p.Quote(context.Background(), ticker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.IsZero() {
		t.Error("expected non-zero price")
	}
}

func TestAlphaVantageProvider_Historical(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)":{
			"2024-01-03":{"1. open":"100","2. high":"105","3. low":"99","4. close":"103","5. volume":"1000000"},
			"2024-01-02":{"1. open":"98","2. high":"101","3. low":"97","4. close":"100","5. volume":"900000"}
		}}`))
	}))
	defer server.Close()

	p := NewAlphaVantageProvider("test-key", server.URL)
	ticker, _ := models.NewTicker("GOOG")

	bars, err := p.Historical(context.Background(), ticker, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Date.Before(bars[1].Date) {
		t.Error("expected newest-first ordering")
	}
}

func TestAlphaVantageProvider_Historical_RespectsDayLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)":{
			"2024-01-03":{"1. open":"100","2. high":"105","3. low":"99","4. close":"103","5. volume":"1000000"},
			"2024-01-02":{"1. open":"98","2. high":"101","3. low":"97","4. close":"100","5. volume":"900000"},
			"2024-01-01":{"1. open":"95","2. high":"99","3. low":"94","4. close":"98","5. volume":"800000"}
		}}`))
	}))
	defer server.Close()

	p := NewAlphaVantageProvider("test-key", server.URL)
	ticker, _ := models.NewTicker("GOOG")

	bars, err := p.Historical(context.Background(), ticker, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected day limit of 2 bars, got %d", len(bars))
	}
}
