package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/zurychhh/alpha-machine/models"
	"github.com/zurychhh/alpha-machine/resilience"
)

// NewsProvider fetches recent news articles mentioning a ticker and scores
// their sentiment.
type NewsProvider interface {
	Name() string
	Sentiment(ctx context.Context, ticker models.Ticker) (models.NewsAvailability, error)
}

// SocialProvider fetches recent social-media mentions of a ticker and scores
// their sentiment.
type SocialProvider interface {
	Name() string
	Sentiment(ctx context.Context, ticker models.Ticker) (models.RedditAvailability, error)
}

var positiveKeywords = []string{
	"buy", "bullish", "moon", "rocket", "gain", "profit", "calls",
	"long", "undervalued", "breakout", "surge", "beat", "upgrade",
}

var negativeKeywords = []string{
	"sell", "bearish", "crash", "dump", "loss", "puts", "short",
	"overvalued", "downgrade", "weak", "miss", "plunge", "drop",
}

// keywordSentiment scores a snippet of text by counting positive and
// negative keyword hits, returning +0.5/-0.5/0 matching the fallback rule
// used when no proper sentiment model is wired up.
func keywordSentiment(text string) float64 {
	lower := strings.ToLower(text)
	var positive, negative int
	for _, kw := range positiveKeywords {
		if strings.Contains(lower, kw) {
			positive++
		}
	}
	for _, kw := range negativeKeywords {
		if strings.Contains(lower, kw) {
			negative++
		}
	}
	switch {
	case positive > negative:
		return 0.5
	case negative > positive:
		return -0.5
	default:
		return 0
	}
}

// NewsAPIProvider adapts NewsAPI.org, grounded on the teacher's NewsAPIService
// request/decode shape.
type NewsAPIProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewNewsAPIProvider creates a NewsAPIProvider.
func NewNewsAPIProvider(apiKey, baseURL string) *NewsAPIProvider {
	return &NewsAPIProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: httpTimeout},
		baseURL:    baseURL,
	}
}

func (n *NewsAPIProvider) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"articles"`
}

func (n *NewsAPIProvider) Sentiment(ctx context.Context, ticker models.Ticker) (models.NewsAvailability, error) {
	var result models.NewsAvailability
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "newsapi.sentiment", func() error {
		params := url.Values{}
		params.Set("q", ticker.String())
		params.Set("language", "en")
		params.Set("sortBy", "publishedAt")
		params.Set("pageSize", "20")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/everything?"+params.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("X-Api-Key", n.apiKey)

		resp, err := n.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed newsAPIResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}

		if len(parsed.Articles) == 0 {
			result = models.NewsAvailability{Available: false}
			return nil
		}

		var sum float64
		for _, a := range parsed.Articles {
			sum += keywordSentiment(a.Title + " " + a.Description)
		}

		result = models.NewsAvailability{
			ArticleCount: uint(len(parsed.Articles)),
			Score:        sum / float64(len(parsed.Articles)),
			Available:    true,
		}
		return nil
	})
	return result, err
}

// RedditProvider adapts Reddit's public JSON search endpoint, grounded on
// the community reddit_client.go pattern (unauthenticated .json search,
// title-based keyword sentiment over the resulting listing).
type RedditProvider struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
}

// NewRedditProvider creates a RedditProvider against Reddit's public search
// endpoint.
func NewRedditProvider(userAgent string) *RedditProvider {
	return &RedditProvider{
		httpClient: &http.Client{Timeout: httpTimeout},
		userAgent:  userAgent,
		baseURL:    "https://www.reddit.com",
	}
}

func (r *RedditProvider) Name() string { return "reddit" }

type redditListingResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title    string  `json:"title"`
				Selftext string  `json:"selftext"`
				Score    int     `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *RedditProvider) Sentiment(ctx context.Context, ticker models.Ticker) (models.RedditAvailability, error) {
	var result models.RedditAvailability
	err := resilience.WithRetry(ctx, resilience.DefaultRetryConfig, "reddit.sentiment", func() error {
		params := url.Values{}
		params.Set("q", fmt.Sprintf("%s subreddit:wallstreetbets+stocks+investing", ticker.String()))
		params.Set("sort", "relevance")
		params.Set("t", "week")
		params.Set("limit", "25")

		reqURL := r.baseURL + "/search.json?" + params.Encode()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", r.userAgent)

		resp, err := r.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return statusError(resp.StatusCode)
		}

		var parsed redditListingResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return err
		}

		if len(parsed.Data.Children) == 0 {
			result = models.RedditAvailability{Available: false}
			return nil
		}

		var sum float64
		for _, c := range parsed.Data.Children {
			sum += keywordSentiment(c.Data.Title + " " + c.Data.Selftext)
		}

		result = models.RedditAvailability{
			Mentions:  uint(len(parsed.Data.Children)),
			Score:     sum / float64(len(parsed.Data.Children)),
			Available: true,
		}
		return nil
	})
	return result, err
}
