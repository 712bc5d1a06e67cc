package main

import (
	"context"

	"github.com/zurychhh/alpha-machine/agents"
	"github.com/zurychhh/alpha-machine/config"
	"github.com/zurychhh/alpha-machine/llm"
	"github.com/zurychhh/alpha-machine/observability"
	"github.com/zurychhh/alpha-machine/providers"
	"github.com/zurychhh/alpha-machine/repository"
)

// engine holds every wired collaborator an operation might need. A nil
// field means that subsystem's credentials were absent at startup; callers
// check before using one, the same graceful-degradation contract the
// Aggregator itself applies per provider.
type engine struct {
	cfg        *config.Config
	aggregator *providers.Aggregator
	panel      *agents.Panel
	repo       repository.RepositoryInterface
	backtest   *backtestEngine
}

// buildEngine wires every collaborator conditionally on which credentials
// config.Load found, logging a warning and leaving the collaborator nil
// rather than failing startup outright.
func buildEngine(ctx context.Context, cfg *config.Config) *engine {
	chain := buildMarketChain(cfg)
	news := buildNewsProvider(cfg)
	social := buildSocialProvider(cfg)

	aggregator := providers.NewAggregator(chain, news, social, providers.AggregatorConfig{
		QuoteTTL:               secondsToDuration(cfg.Cache.QuoteTTLSeconds),
		HistoricalTTL:          secondsToDuration(cfg.Cache.HistoricalTTLSeconds),
		IndicatorsTTL:          secondsToDuration(cfg.Cache.IndicatorsTTLSeconds),
		OperationTimeout:       secondsToDuration(cfg.Aggregator.OperationTimeoutSeconds),
		HistoricalLookbackDays: cfg.Aggregator.HistoricalLookbackDays,
	})

	panel := buildPanel(ctx, cfg)

	var repo repository.RepositoryInterface
	if cfg.HasDatabase() {
		r, err := repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Warn("failed to connect to database, persistence disabled", "error", err)
		} else {
			repo = r
		}
	} else {
		observability.Warn("DATABASE_URL not set, persistence disabled")
	}

	bt := newBacktestEngine(chain, cfg.Backtest.HoldPeriodDays)

	observability.Info("engine wired", "panel_size", len(panel.Agents()), "persistence", repo != nil)
	return &engine{cfg: cfg, aggregator: aggregator, panel: panel, repo: repo, backtest: bt}
}

func buildMarketChain(cfg *config.Config) *providers.MarketChain {
	var chain []providers.MarketProvider

	if cfg.HasPolygon() {
		chain = append(chain, providers.NewPolygonProvider(cfg.Polygon.APIKey, cfg.Polygon.BaseURL))
	} else {
		observability.Warn("POLYGON_API_KEY not set, primary market provider disabled")
	}
	if cfg.HasFinnhub() {
		chain = append(chain, providers.NewFinnhubProvider(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL))
	} else {
		observability.Warn("FINNHUB_API_KEY not set, secondary market provider disabled")
	}
	if cfg.HasAlphaVantage() {
		chain = append(chain, providers.NewAlphaVantageProvider(cfg.AlphaVantage.APIKey, cfg.AlphaVantage.BaseURL))
	} else {
		observability.Warn("ALPHA_VANTAGE_API_KEY not set, tertiary market provider disabled")
	}
	if cfg.HasFMP() {
		chain = append(chain, providers.NewFMPProvider(cfg.FMP.APIKey, cfg.FMP.BaseURL))
	} else {
		observability.Warn("FMP_API_KEY not set, quaternary market provider disabled")
	}

	return providers.NewMarketChain(chain...)
}

func buildNewsProvider(cfg *config.Config) providers.NewsProvider {
	if !cfg.HasNewsAPI() {
		observability.Warn("NEWS_API_KEY not set, news sentiment disabled")
		return nil
	}
	return providers.NewNewsAPIProvider(cfg.NewsAPI.APIKey, "https://newsapi.org/v2")
}

func buildSocialProvider(cfg *config.Config) providers.SocialProvider {
	if !cfg.HasReddit() {
		observability.Warn("REDDIT_API_KEY not set, social sentiment disabled")
		return nil
	}
	return providers.NewRedditProvider("alpha-machine/1.0")
}

// buildPanel registers the Predictor agent unconditionally (it has no
// external dependency). The Contrarian agent is registered only when the
// OpenAI credentials are present; the Growth and Multi-modal agents are
// registered whenever their Bedrock client can be constructed.
func buildPanel(ctx context.Context, cfg *config.Config) *agents.Panel {
	thresholds := agents.Thresholds{BuySell: cfg.Consensus.BuySellThreshold, Strong: cfg.Consensus.StrongThreshold}

	members := []agents.Agent{agents.NewPredictorAgent(1.0, thresholds)}

	if cfg.HasOpenAI() {
		openaiClient, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.MaxTokens)
		if err != nil {
			observability.Warn("failed to initialize OpenAI client, contrarian agent disabled", "error", err)
		} else {
			members = append(members, agents.NewContrarianAgent(openaiClient, 1.0, thresholds))
		}
	} else {
		observability.Warn("OPENAI_API_KEY not set, contrarian agent disabled")
	}

	growthClient, err := llm.NewBedrockClient(ctx, cfg.Bedrock.Region, cfg.Bedrock.GrowthModelID, "bedrock-growth")
	if err != nil {
		observability.Warn("failed to initialize Bedrock growth client, growth agent disabled", "error", err)
	} else {
		members = append(members, agents.NewGrowthAgent(growthClient, 1.0, thresholds))
	}

	synthClient, err := llm.NewBedrockClient(ctx, cfg.Bedrock.Region, cfg.Bedrock.SynthModelID, "bedrock-synth")
	if err != nil {
		observability.Warn("failed to initialize Bedrock synth client, multi-modal agent disabled", "error", err)
	} else {
		members = append(members, agents.NewMultiModalAgent(synthClient, 1.0, thresholds))
	}

	return agents.NewPanel(members, secondsToDuration(cfg.Agent.PanelTimeoutSeconds))
}
