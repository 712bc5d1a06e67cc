package config

import (
	"os"
	"testing"
)

func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"DATABASE_URL",
	"AWS_REGION",
	"BEDROCK_GROWTH_MODEL_ID",
	"BEDROCK_SYNTH_MODEL_ID",
	"OPENAI_API_KEY",
	"OPENAI_MODEL",
	"OPENAI_MAX_TOKENS",
	"POLYGON_API_KEY",
	"FINNHUB_API_KEY",
	"ALPHA_VANTAGE_API_KEY",
	"FMP_API_KEY",
	"NEWS_API_KEY",
	"REDDIT_API_KEY",
	"RETRY_MAX_RETRIES",
	"RETRY_INITIAL_BACKOFF_MS",
	"RETRY_MAX_BACKOFF_MS",
	"BREAKER_CONSECUTIVE_FAILURES",
	"BREAKER_WINDOW_SECONDS",
	"BREAKER_COOLDOWN_SECONDS",
	"CACHE_QUOTE_TTL_SECONDS",
	"AGGREGATOR_OPERATION_TIMEOUT_SECONDS",
	"AGENT_PANEL_TIMEOUT_SECONDS",
	"CONSENSUS_BUY_SELL_THRESHOLD",
	"CONSENSUS_STRONG_THRESHOLD",
	"CONSENSUS_STOP_LOSS_PCT",
	"CONSENSUS_CAPITAL",
	"BACKTEST_HOLD_PERIOD_DAYS",
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-4o" {
		t.Errorf("expected OpenAI.Model='gpt-4o', got %s", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != 4096 {
		t.Errorf("expected OpenAI.MaxTokens=4096, got %d", cfg.OpenAI.MaxTokens)
	}
	if cfg.Retry.MaxRetries != 3 {
		t.Errorf("expected Retry.MaxRetries=3, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Breaker.ConsecutiveFailures != 5 {
		t.Errorf("expected Breaker.ConsecutiveFailures=5, got %d", cfg.Breaker.ConsecutiveFailures)
	}
	if cfg.Cache.QuoteTTLSeconds != 60 {
		t.Errorf("expected Cache.QuoteTTLSeconds=60, got %d", cfg.Cache.QuoteTTLSeconds)
	}
	if cfg.Consensus.BuySellThreshold != 0.1 {
		t.Errorf("expected Consensus.BuySellThreshold=0.1, got %f", cfg.Consensus.BuySellThreshold)
	}
	if cfg.Consensus.StrongThreshold != 0.5 {
		t.Errorf("expected Consensus.StrongThreshold=0.5, got %f", cfg.Consensus.StrongThreshold)
	}
	if cfg.Consensus.StopLossPct != 0.10 {
		t.Errorf("expected Consensus.StopLossPct=0.10, got %f", cfg.Consensus.StopLossPct)
	}
	if cfg.Backtest.HoldPeriodDays != 30 {
		t.Errorf("expected Backtest.HoldPeriodDays=30, got %d", cfg.Backtest.HoldPeriodDays)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("DATABASE_URL", "postgres://localhost/test")
	os.Setenv("AWS_REGION", "us-west-2")
	os.Setenv("BEDROCK_GROWTH_MODEL_ID", "anthropic.claude-3-opus")
	os.Setenv("POLYGON_API_KEY", "poly-key")
	os.Setenv("NEWS_API_KEY", "news-key")
	os.Setenv("RETRY_MAX_RETRIES", "5")
	os.Setenv("CONSENSUS_CAPITAL", "100000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with custom values failed: %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/test" {
		t.Errorf("expected Database.URL='postgres://localhost/test', got %s", cfg.Database.URL)
	}
	if cfg.Bedrock.Region != "us-west-2" {
		t.Errorf("expected Bedrock.Region='us-west-2', got %s", cfg.Bedrock.Region)
	}
	if cfg.Bedrock.GrowthModelID != "anthropic.claude-3-opus" {
		t.Errorf("expected Bedrock.GrowthModelID='anthropic.claude-3-opus', got %s", cfg.Bedrock.GrowthModelID)
	}
	if cfg.Polygon.APIKey != "poly-key" {
		t.Errorf("expected Polygon.APIKey='poly-key', got %s", cfg.Polygon.APIKey)
	}
	if cfg.Retry.MaxRetries != 5 {
		t.Errorf("expected Retry.MaxRetries=5, got %d", cfg.Retry.MaxRetries)
	}
	if cfg.Consensus.Capital != 100000 {
		t.Errorf("expected Consensus.Capital=100000, got %f", cfg.Consensus.Capital)
	}
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Consensus.BuySellThreshold = 0.6
	cfg.Consensus.StrongThreshold = 0.5

	if err := cfg.Validate(); err == nil {
		t.Error("expected error when buy/sell threshold exceeds strong threshold")
	}
}

func TestValidate_StopLossRange(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Consensus.StopLossPct = 1.5

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for stop loss pct outside (0,1)")
	}
}

func TestValidate_BreakerConsecutiveFailures(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Breaker.ConsecutiveFailures = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive consecutive failures")
	}
}

func TestValidate_HoldPeriod(t *testing.T) {
	cfg := NewTestConfig()
	cfg.Backtest.HoldPeriodDays = 0

	if err := cfg.Validate(); err == nil {
		t.Error("expected error for non-positive hold period")
	}
}

func TestHasDatabase(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{URL: ""}}
	if cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return false for empty URL")
	}
	cfg.Database.URL = "postgres://localhost/test"
	if !cfg.HasDatabase() {
		t.Error("expected HasDatabase() to return true for non-empty URL")
	}
}

func TestHasOpenAI(t *testing.T) {
	cfg := &Config{OpenAI: OpenAIConfig{APIKey: ""}}
	if cfg.HasOpenAI() {
		t.Error("expected HasOpenAI() to return false for empty key")
	}
	cfg.OpenAI.APIKey = "key"
	if !cfg.HasOpenAI() {
		t.Error("expected HasOpenAI() to return true for non-empty key")
	}
}

func TestHasAlphaVantage(t *testing.T) {
	cfg := &Config{AlphaVantage: MarketProviderConfig{APIKey: ""}}
	if cfg.HasAlphaVantage() {
		t.Error("expected HasAlphaVantage() to return false for empty key")
	}
	cfg.AlphaVantage.APIKey = "key"
	if !cfg.HasAlphaVantage() {
		t.Error("expected HasAlphaVantage() to return true for non-empty key")
	}
}

func TestHasNewsAPI(t *testing.T) {
	cfg := &Config{NewsAPI: SentimentProviderConfig{APIKey: ""}}
	if cfg.HasNewsAPI() {
		t.Error("expected HasNewsAPI() to return false for empty key")
	}
	cfg.NewsAPI.APIKey = "key"
	if !cfg.HasNewsAPI() {
		t.Error("expected HasNewsAPI() to return true for non-empty key")
	}
}

func TestRetryConfig_Durations(t *testing.T) {
	rc := RetryConfig{InitialBackoffMs: 750, MaxBackoffMs: 8000}
	if rc.InitialBackoff().Milliseconds() != 750 {
		t.Errorf("InitialBackoff() = %v, want 750ms", rc.InitialBackoff())
	}
	if rc.MaxBackoff().Milliseconds() != 8000 {
		t.Errorf("MaxBackoff() = %v, want 8000ms", rc.MaxBackoff())
	}
}

func TestBreakerConfig_Durations(t *testing.T) {
	bc := BreakerConfig{WindowSeconds: 60, CooldownSeconds: 30}
	if bc.Window().Seconds() != 60 {
		t.Errorf("Window() = %v, want 60s", bc.Window())
	}
	if bc.Cooldown().Seconds() != 30 {
		t.Errorf("Cooldown() = %v, want 30s", bc.Cooldown())
	}
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_GET_ENV_STRING"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvString(key, "default"); got != "default" {
		t.Errorf("expected 'default', got %s", got)
	}
	os.Setenv(key, "custom")
	if got := getEnvString(key, "default"); got != "custom" {
		t.Errorf("expected 'custom', got %s", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_GET_ENV_INT"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	os.Setenv(key, "100")
	if got := getEnvInt(key, 42); got != 100 {
		t.Errorf("expected 100, got %d", got)
	}
	os.Setenv(key, "invalid")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for invalid value, got %d", got)
	}
	os.Setenv(key, "-5")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for negative value, got %d", got)
	}
	os.Setenv(key, "0")
	if got := getEnvInt(key, 42); got != 42 {
		t.Errorf("expected 42 for zero value, got %d", got)
	}
}

func TestGetEnvFloatUnbounded(t *testing.T) {
	key := "TEST_GET_ENV_FLOAT_UNBOUNDED"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvFloatUnbounded(key, 0.5); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	os.Setenv(key, "1.5")
	if got := getEnvFloatUnbounded(key, 0.5); got != 1.5 {
		t.Errorf("expected 1.5, got %f", got)
	}
	os.Setenv(key, "invalid")
	if got := getEnvFloatUnbounded(key, 0.5); got != 0.5 {
		t.Errorf("expected 0.5 for invalid value, got %f", got)
	}
}

func TestGetEnvFloatRange(t *testing.T) {
	key := "TEST_GET_ENV_FLOAT_RANGE"
	defer os.Unsetenv(key)

	os.Unsetenv(key)
	if got := getEnvFloatRange(key, 0.1, 0.01, 1.0); got != 0.1 {
		t.Errorf("expected 0.1, got %f", got)
	}
	os.Setenv(key, "2.0")
	if got := getEnvFloatRange(key, 0.1, 0.01, 1.0); got != 0.1 {
		t.Errorf("expected default for out-of-range value, got %f", got)
	}
}
