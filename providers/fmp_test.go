package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zurychhh/alpha-machine/models"
)

func TestFMPProvider_Quote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"symbol":"TSLA","price":242.50}]`))
	}))
	defer server.Close()

	p := NewFMPProvider("test-key", server.URL)
	ticker, _ := models.NewTicker("TSLA")

	price, err := p.Quote(context.Background(), ticker)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.IsZero() {
		t.Error("expected non-zero price")
	}
}

func TestFMPProvider_Quote_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	p := NewFMPProvider("test-key", server.URL)
	ticker, _ := models.NewTicker("TSLA")

	_, err := p.Quote(context.Background(), ticker)
	if err == nil {
		t.Fatal("expected error for empty quote array")
	}
}

func TestFMPProvider_Historical(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"historical":[
			{"date":"2024-01-03","open":240,"high":245,"low":238,"close":242.5,"volume":5000000},
			{"date":"2024-01-02","open":235,"high":241,"low":233,"close":239,"volume":4800000}
		]}`))
	}))
	defer server.Close()

	p := NewFMPProvider("test-key", server.URL)
	ticker, _ := models.NewTicker("TSLA")

	bars, err := p.Historical(context.Background(), ticker, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
}
