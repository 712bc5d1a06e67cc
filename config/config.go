// Package config loads the engine's tunables from the environment, mirroring
// the teacher's flat os.Getenv-with-defaults style rather than a config file
// format, since no example repo in the retrieved pack reaches for a config
// library (viper, koanf) for this shape of service.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every tunable the engine reads at startup.
type Config struct {
	Database DatabaseConfig

	OpenAI  OpenAIConfig
	Bedrock BedrockConfig

	Polygon      MarketProviderConfig
	Finnhub      MarketProviderConfig
	AlphaVantage MarketProviderConfig
	FMP          MarketProviderConfig
	NewsAPI      SentimentProviderConfig
	Reddit       SentimentProviderConfig

	Retry   RetryConfig
	Breaker BreakerConfig
	Cache   CacheConfig

	Aggregator AggregatorConfig
	Agent      AgentConfig
	Consensus  ConsensusConfig
	Backtest   BacktestConfig
}

// DatabaseConfig holds Postgres connection configuration.
type DatabaseConfig struct {
	URL string
}

// OpenAIConfig backs the Contrarian agent's adapter.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// BedrockConfig backs the Growth and Multi-modal agents.
type BedrockConfig struct {
	Region        string
	GrowthModelID string
	SynthModelID  string
}

// MarketProviderConfig holds one market-data provider's credentials.
type MarketProviderConfig struct {
	APIKey  string
	BaseURL string
}

// SentimentProviderConfig holds one sentiment provider's credentials.
type SentimentProviderConfig struct {
	APIKey string
}

// RetryConfig mirrors resilience.RetryConfig in env-configurable form.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoffMs  int
	MaxBackoffMs      int
}

// BreakerConfig mirrors resilience.BreakerConfig in env-configurable form.
type BreakerConfig struct {
	ConsecutiveFailures int
	WindowSeconds       int
	CooldownSeconds     int
}

// CacheConfig holds the Aggregator's per-operation TTLs and stale-read bound.
type CacheConfig struct {
	QuoteTTLSeconds      int
	HistoricalTTLSeconds int
	IndicatorsTTLSeconds int
	StaleMultiplier      int
}

// AggregatorConfig holds the Data Aggregator's time budgets.
type AggregatorConfig struct {
	OperationTimeoutSeconds int // per top-level operation (quote/historical/indicators/sentiment)
	HistoricalLookbackDays  int
}

// AgentConfig holds Agent Panel tunables.
type AgentConfig struct {
	PanelTimeoutSeconds int // shared deadline across all agents
	GrowthMomentumDays  int
}

// ConsensusConfig holds the Consensus Engine's thresholds and risk/sizing
// constants.
type ConsensusConfig struct {
	BuySellThreshold   float64 // default 0.1
	StrongThreshold    float64 // default 0.5
	StopLossPct        float64 // S, default 0.10
	TargetPct          float64 // T1, default 0.25
	ScaleOutT2         float64 // default 0.50, informational only
	ScaleOutT3         float64 // default 1.00, informational only
	Capital            float64 // default 50000
	MaxPositionPct     float64 // default 0.10
}

// BacktestConfig holds Backtest Engine defaults.
type BacktestConfig struct {
	HoldPeriodDays  int
	DeadlineMinutes int
}

// Load reads configuration from the environment, applying defaults, and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		OpenAI: OpenAIConfig{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			Model:     getEnvString("OPENAI_MODEL", "gpt-4o"),
			MaxTokens: getEnvInt("OPENAI_MAX_TOKENS", 4096),
		},
		Bedrock: BedrockConfig{
			Region:        getEnvString("AWS_REGION", "us-east-1"),
			GrowthModelID: getEnvString("BEDROCK_GROWTH_MODEL_ID", "anthropic.claude-3-sonnet-20240229-v1:0"),
			SynthModelID:  getEnvString("BEDROCK_SYNTH_MODEL_ID", "anthropic.claude-3-haiku-20240307-v1:0"),
		},
		Polygon: MarketProviderConfig{
			APIKey:  os.Getenv("POLYGON_API_KEY"),
			BaseURL: getEnvString("POLYGON_BASE_URL", "https://api.polygon.io"),
		},
		Finnhub: MarketProviderConfig{
			APIKey:  os.Getenv("FINNHUB_API_KEY"),
			BaseURL: getEnvString("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		},
		AlphaVantage: MarketProviderConfig{
			APIKey:  os.Getenv("ALPHA_VANTAGE_API_KEY"),
			BaseURL: getEnvString("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
		},
		FMP: MarketProviderConfig{
			APIKey:  os.Getenv("FMP_API_KEY"),
			BaseURL: getEnvString("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
		},
		NewsAPI: SentimentProviderConfig{
			APIKey: os.Getenv("NEWS_API_KEY"),
		},
		Reddit: SentimentProviderConfig{
			APIKey: os.Getenv("REDDIT_API_KEY"),
		},
		Retry: RetryConfig{
			MaxRetries:       getEnvInt("RETRY_MAX_RETRIES", 3),
			InitialBackoffMs: getEnvInt("RETRY_INITIAL_BACKOFF_MS", 750),
			MaxBackoffMs:     getEnvInt("RETRY_MAX_BACKOFF_MS", 8000),
		},
		Breaker: BreakerConfig{
			ConsecutiveFailures: getEnvInt("BREAKER_CONSECUTIVE_FAILURES", 5),
			WindowSeconds:       getEnvInt("BREAKER_WINDOW_SECONDS", 60),
			CooldownSeconds:     getEnvInt("BREAKER_COOLDOWN_SECONDS", 30),
		},
		Cache: CacheConfig{
			QuoteTTLSeconds:      getEnvInt("CACHE_QUOTE_TTL_SECONDS", 60),
			HistoricalTTLSeconds: getEnvInt("CACHE_HISTORICAL_TTL_SECONDS", 3600),
			IndicatorsTTLSeconds: getEnvInt("CACHE_INDICATORS_TTL_SECONDS", 900),
			StaleMultiplier:      getEnvInt("CACHE_STALE_MULTIPLIER", 10),
		},
		Aggregator: AggregatorConfig{
			OperationTimeoutSeconds: getEnvInt("AGGREGATOR_OPERATION_TIMEOUT_SECONDS", 10),
			HistoricalLookbackDays:  getEnvInt("AGGREGATOR_HISTORICAL_LOOKBACK_DAYS", 100),
		},
		Agent: AgentConfig{
			PanelTimeoutSeconds: getEnvInt("AGENT_PANEL_TIMEOUT_SECONDS", 30),
			GrowthMomentumDays:  getEnvInt("AGENT_GROWTH_MOMENTUM_DAYS", 30),
		},
		Consensus: ConsensusConfig{
			BuySellThreshold: getEnvFloatUnbounded("CONSENSUS_BUY_SELL_THRESHOLD", 0.1),
			StrongThreshold:  getEnvFloatUnbounded("CONSENSUS_STRONG_THRESHOLD", 0.5),
			StopLossPct:      getEnvFloatUnbounded("CONSENSUS_STOP_LOSS_PCT", 0.10),
			TargetPct:        getEnvFloatUnbounded("CONSENSUS_TARGET_PCT", 0.25),
			ScaleOutT2:       getEnvFloatUnbounded("CONSENSUS_SCALE_OUT_T2", 0.50),
			ScaleOutT3:       getEnvFloatUnbounded("CONSENSUS_SCALE_OUT_T3", 1.00),
			Capital:          getEnvFloatUnbounded("CONSENSUS_CAPITAL", 50000),
			MaxPositionPct:   getEnvFloatRange("CONSENSUS_MAX_POSITION_PCT", 0.10, 0.01, 1.0),
		},
		Backtest: BacktestConfig{
			HoldPeriodDays:  getEnvInt("BACKTEST_HOLD_PERIOD_DAYS", 30),
			DeadlineMinutes: getEnvInt("BACKTEST_DEADLINE_MINUTES", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field invariants that env parsing alone can't catch.
func (c *Config) Validate() error {
	if c.Consensus.BuySellThreshold <= 0 || c.Consensus.BuySellThreshold >= c.Consensus.StrongThreshold {
		return fmt.Errorf("CONSENSUS_BUY_SELL_THRESHOLD must be positive and less than CONSENSUS_STRONG_THRESHOLD, got %.2f / %.2f",
			c.Consensus.BuySellThreshold, c.Consensus.StrongThreshold)
	}
	if c.Consensus.StopLossPct <= 0 || c.Consensus.StopLossPct >= 1 {
		return fmt.Errorf("CONSENSUS_STOP_LOSS_PCT must be in (0,1), got %.2f", c.Consensus.StopLossPct)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("RETRY_MAX_RETRIES must be non-negative, got %d", c.Retry.MaxRetries)
	}
	if c.Breaker.ConsecutiveFailures <= 0 {
		return fmt.Errorf("BREAKER_CONSECUTIVE_FAILURES must be positive, got %d", c.Breaker.ConsecutiveFailures)
	}
	if c.Backtest.HoldPeriodDays <= 0 {
		return fmt.Errorf("BACKTEST_HOLD_PERIOD_DAYS must be positive, got %d", c.Backtest.HoldPeriodDays)
	}
	return nil
}

// HasDatabase returns true if database configuration is available.
func (c *Config) HasDatabase() bool { return c.Database.URL != "" }

// HasOpenAI returns true if OpenAI configuration is available.
func (c *Config) HasOpenAI() bool { return c.OpenAI.APIKey != "" }

// HasPolygon returns true if the Polygon-shaped provider is configured.
func (c *Config) HasPolygon() bool { return c.Polygon.APIKey != "" }

// HasFinnhub returns true if the Finnhub-shaped provider is configured.
func (c *Config) HasFinnhub() bool { return c.Finnhub.APIKey != "" }

// HasAlphaVantage returns true if the Alpha-Vantage-shaped provider is configured.
func (c *Config) HasAlphaVantage() bool { return c.AlphaVantage.APIKey != "" }

// HasFMP returns true if the FMP fallback is configured.
func (c *Config) HasFMP() bool { return c.FMP.APIKey != "" }

// HasNewsAPI returns true if the news sentiment provider is configured.
func (c *Config) HasNewsAPI() bool { return c.NewsAPI.APIKey != "" }

// HasReddit returns true if the social sentiment provider is configured.
func (c *Config) HasReddit() bool { return c.Reddit.APIKey != "" }

func (c RetryConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffMs) * time.Millisecond
}

func (c RetryConfig) MaxBackoff() time.Duration {
	return time.Duration(c.MaxBackoffMs) * time.Millisecond
}

func (c BreakerConfig) Window() time.Duration {
	return time.Duration(c.WindowSeconds) * time.Second
}

func (c BreakerConfig) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatRange(key string, defaultValue, minVal, maxVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed >= minVal && parsed <= maxVal {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloatUnbounded(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing.
func NewTestConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{Model: "gpt-4o", MaxTokens: 4096},
		Bedrock: BedrockConfig{
			Region:        "us-east-1",
			GrowthModelID: "anthropic.claude-3-sonnet-20240229-v1:0",
			SynthModelID:  "anthropic.claude-3-haiku-20240307-v1:0",
		},
		Retry: RetryConfig{MaxRetries: 3, InitialBackoffMs: 750, MaxBackoffMs: 8000},
		Breaker: BreakerConfig{ConsecutiveFailures: 5, WindowSeconds: 60, CooldownSeconds: 30},
		Cache: CacheConfig{
			QuoteTTLSeconds:      60,
			HistoricalTTLSeconds: 3600,
			IndicatorsTTLSeconds: 900,
			StaleMultiplier:      10,
		},
		Aggregator: AggregatorConfig{OperationTimeoutSeconds: 10, HistoricalLookbackDays: 100},
		Agent:      AgentConfig{PanelTimeoutSeconds: 30, GrowthMomentumDays: 30},
		Consensus: ConsensusConfig{
			BuySellThreshold: 0.1,
			StrongThreshold:  0.5,
			StopLossPct:      0.10,
			TargetPct:        0.25,
			ScaleOutT2:       0.50,
			ScaleOutT3:       1.00,
			Capital:          50000,
			MaxPositionPct:   0.10,
		},
		Backtest: BacktestConfig{HoldPeriodDays: 30, DeadlineMinutes: 5},
	}
}
