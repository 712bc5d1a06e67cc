package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VolumeTrend tags the direction of recent trading volume relative to its
// prior baseline.
type VolumeTrend string

const (
	VolumeTrendIncreasing VolumeTrend = "increasing"
	VolumeTrendDecreasing VolumeTrend = "decreasing"
	VolumeTrendNeutral    VolumeTrend = "neutral"
	VolumeTrendUnknown    VolumeTrend = "unknown"
)

// Bar is one daily OHLCV observation.
type Bar struct {
	Date   time.Time       `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// MarketSnapshot is the Aggregator's point-in-time view of a ticker. Fields
// are left at their zero value when no provider could supply them; a
// present CurrentPrice always means at least one provider responded or a
// non-expired cache entry was returned.
type MarketSnapshot struct {
	Ticker       Ticker             `json:"ticker"`
	AsOf         time.Time          `json:"as_of"`
	CurrentPrice decimal.Decimal    `json:"current_price"`
	HasPrice     bool               `json:"has_price"`
	Historical   []Bar              `json:"historical"` // newest-first, 0-100 entries
	Indicators   map[string]float64 `json:"indicators"`
	VolumeTrend  VolumeTrend        `json:"volume_trend"`
	SourceUsed   string             `json:"source_used"`
}

// RSI returns the rsi indicator, and whether it was present.
func (s MarketSnapshot) RSI() (float64, bool) {
	v, ok := s.Indicators["rsi"]
	return v, ok
}

// SourceAvailability describes one sentiment source's contribution.
type SourceAvailability struct {
	Available bool    `json:"available"`
	Score     float64 `json:"score"`
}

// RedditAvailability mirrors SourceAvailability with a mention count.
type RedditAvailability struct {
	Mentions  uint    `json:"mentions"`
	Score     float64 `json:"score"`
	Available bool    `json:"available"`
}

// NewsAvailability mirrors SourceAvailability with an article count.
type NewsAvailability struct {
	ArticleCount uint    `json:"article_count"`
	Score        float64 `json:"score"`
	Available    bool    `json:"available"`
}

// SentimentSnapshot blends social and news sentiment for a ticker.
type SentimentSnapshot struct {
	Ticker             Ticker             `json:"ticker"`
	AsOf               time.Time          `json:"as_of"`
	CombinedSentiment  float64            `json:"combined_sentiment"`
	CombinedAvailable  bool               `json:"combined_available"`
	Reddit             RedditAvailability `json:"reddit"`
	News               NewsAvailability   `json:"news"`
}

const (
	redditWeight = 0.6
	newsWeight   = 0.4
)

// Combine applies the weighted-blend rule: 0.6/0.4 when both sources are
// available, full weight to whichever source is available alone, and
// combined=0/unavailable when neither source responded.
func Combine(reddit RedditAvailability, news NewsAvailability) (score float64, available bool) {
	switch {
	case reddit.Available && news.Available:
		return redditWeight*reddit.Score + newsWeight*news.Score, true
	case reddit.Available:
		return reddit.Score, true
	case news.Available:
		return news.Score, true
	default:
		return 0, false
	}
}

// NewSentimentSnapshot builds a SentimentSnapshot by applying Combine.
func NewSentimentSnapshot(ticker Ticker, asOf time.Time, reddit RedditAvailability, news NewsAvailability) SentimentSnapshot {
	combined, available := Combine(reddit, news)
	return SentimentSnapshot{
		Ticker:            ticker,
		AsOf:              asOf,
		CombinedSentiment: combined,
		CombinedAvailable: available,
		Reddit:            reddit,
		News:              news,
	}
}
