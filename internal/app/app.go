package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"RepoScout/internal/config"
	"RepoScout/internal/domain"
	"RepoScout/internal/infrastructure/github"
	"RepoScout/internal/infrastructure/llm"
	"RepoScout/internal/infrastructure/ml"
	"RepoScout/internal/infrastructure/report"
	"RepoScout/internal/infrastructure/storage"
	"RepoScout/internal/ports"
	"RepoScout/internal/rank"
	"RepoScout/internal/usecase"
)

// Application owns the object graph and the resources that need closing.
type Application struct {
	pipeline *usecase.Pipeline
	cache    *storage.ContentCache
	embedder *ml.LocalEmbedder
	logger   *slog.Logger
}

// New assembles the full pipeline from configuration. Optional integrations
// degrade rather than fail: without an LLM key the expander falls back to
// heuristic tags and the personal rubric runs on hard signals only.
func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	app := &Application{logger: logger}

	cache, err := storage.Open(cfg.Cache.Path, cfg.Cache.MemoryEntries, logger)
	if err != nil {
		logger.Warn("content cache unavailable, fetching without cache", "error", err)
	} else {
		app.cache = cache
	}

	var cacheDep ports.ContentCache
	if app.cache != nil {
		cacheDep = app.cache
	}
	source := github.NewClient(github.Config{
		APIURL:              cfg.GitHub.APIURL,
		Token:               cfg.GitHub.Token,
		PerPage:             cfg.GitHub.PerPage,
		MaxResults:          cfg.GitHub.MaxResults,
		SearchInterval:      time.Duration(cfg.GitHub.SearchIntervalSecs) * time.Second,
		RateLimitBackoff:    time.Duration(cfg.GitHub.RateLimitBackoffSecs) * time.Second,
		DocFetchConcurrency: int64(cfg.GitHub.DocFetchConcurrency),
		ReadmeCap:           cfg.GitHub.ReadmeCap,
		ArchDocsCap:         cfg.GitHub.ArchDocsCap,
		TotalDocCap:         cfg.GitHub.TotalDocCap,
	}, cacheDep, nil, logger)

	var chat *llm.ChatClient
	if cfg.LLM.APIKey != "" {
		chat = llm.NewChatClient(cfg.LLM)
	} else {
		logger.Warn("no LLM API key, tag expansion and authenticity judging run degraded")
	}

	var embedder ports.Embedder
	mlClient := ml.NewClient(cfg.ML.InferenceURL, cfg.ML.APIKey)
	if cfg.ML.Backend == "local" {
		local, err := ml.NewLocalEmbedder(cfg.ML.LocalModelPath)
		if err != nil {
			return nil, fmt.Errorf("init local embedder: %w", err)
		}
		app.embedder = local
		embedder = local
	} else {
		embedder = mlClient
	}

	var judge ports.SignalJudge
	var hardware ports.HardwareFilter
	if chat != nil {
		judge = llm.NewJudge(chat)
		hardware = llm.NewHardwareJudge(chat, logger)
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Hardware: llm.NewHardwareParser(chat, logger),
		Expander: llm.NewExpander(chat, cfg.Ranking.MaxQueries, logger),
		Source:   source,
		Semantic: rank.NewSemanticRanker(embedder, 0, logger),
		Reranker: rank.NewReranker(mlClient, rank.RerankConfig{
			ChunkSize:       cfg.Ranking.ChunkSize,
			MaxDocLength:    cfg.Ranking.MaxDocLength,
			MinDocLength:    cfg.Ranking.MinDocLength,
			LowDocThreshold: cfg.Ranking.LowDocThreshold,
			SparsePenalty:   cfg.Ranking.SparseDocPenalty,
			TopN:            cfg.Ranking.RerankTopN,
		}, logger),
		Filter:       rank.NewThresholdFilter(cfg.Ranking.CrossEncoderThreshold, cfg.Ranking.DisableFilterFallback, hardware, logger),
		Personal:     rank.NewPersonalEvaluator(judge, cfg.Ranking.PersonalGoldBar, logger),
		Reporter:     report.NewConsoleReporter(nil, logger),
		SemanticTopN: cfg.Ranking.SemanticTopN,
		Logger:       logger,
	})
	return app, nil
}

// Run executes a single discovery query.
func (a *Application) Run(ctx context.Context, query string, projectType domain.ProjectType, industry string) (*domain.RunState, error) {
	return a.pipeline.Run(ctx, query, projectType, industry)
}

// Close releases the cache and any local model session.
func (a *Application) Close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("closing content cache", "error", err)
		}
	}
	if a.embedder != nil {
		if err := a.embedder.Close(); err != nil {
			a.logger.Warn("closing local embedder", "error", err)
		}
	}
}
