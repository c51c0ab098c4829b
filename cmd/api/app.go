package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"meal-planner/internal/api"
	"meal-planner/internal/core/budget"
	"meal-planner/internal/core/corpus"
	"meal-planner/internal/core/product"
	"meal-planner/internal/core/queue"
	"meal-planner/internal/core/recipe"
	"meal-planner/internal/core/repository"
	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/infrastructure/storage"
	"meal-planner/internal/pkg/common"
)

// newSource 有 URL 時從網路下載，否則讀取本機檔案
func newSource(cfg config.CorpusConfig) corpus.Source {
	if cfg.URL != "" {
		return corpus.NewHTTPSource(cfg.URL, corpus.HTTPOptions{
			Timeout:  cfg.Timeout,
			RetryMax: cfg.RetryMax,
		})
	}
	return corpus.FileSource{Path: cfg.File}
}

// newStore 依設定選擇快取後端
func newStore(ctx context.Context, cfg config.CacheConfig) (repository.Store, error) {
	if !cfg.Enabled {
		return &repository.NoopStore{}, nil
	}

	switch cfg.Backend {
	case repository.BackendRedis:
		return repository.NewRedisStore(ctx, repository.RedisOptions{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
			TTL:  cfg.TTL,
		})
	case "", repository.BackendMemory:
		return repository.NewMemoryStore(repository.MemoryOptions{
			MaxSize:         cfg.MaxSize,
			TTL:             cfg.TTL,
			CleanupInterval: cfg.CleanupInterval,
		}), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// buildServices 依序建立目錄、轉換器、倉庫與推薦器
func buildServices(ctx context.Context, cfg *config.Config) (api.Services, func(), error) {
	catalog, err := storage.LoadCatalog(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		return api.Services{}, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	products, mappings := catalog.Size()
	common.LogInfo("商品目錄已載入",
		zap.String("driver", cfg.Catalog.Driver),
		zap.Int("products", products),
		zap.Int("ingredients", mappings),
	)

	store, err := newStore(ctx, cfg.Cache)
	if err != nil {
		return api.Services{}, nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	source := newSource(cfg.Corpus)
	loader := corpus.NewLoader(source, corpus.Options{MaxRecords: cfg.Corpus.MaxRecords}, cfg.Corpus.CacheTTL)
	transformer := recipe.NewTransformer(product.NewMatcher(catalog))
	repo := repository.New(loader, transformer, store, repository.Options{GoalLimit: cfg.Recommend.GoalLimit})

	recommender := budget.NewRecommender(repo, budget.Options{
		AffordableShare: cfg.Recommend.AffordableShare,
		MaxCombinations: cfg.Recommend.MaxCombinations,
		Frequency:       cfg.Recommend.MonthlyFrequency,
		Catalog:         catalog,
	})
	fast := budget.NewFastEngine(repo, cfg.Recommend.FastCacheTTL)
	q := queue.NewManager(cfg.Queue)

	common.LogInfo("服務初始化完成",
		zap.String("corpus", source.Name()),
		zap.String("cache_backend", store.Stats().Backend),
		zap.Int("queue_workers", cfg.Queue.Workers),
	)

	cleanup := func() {
		q.Close()
		if err := store.Close(); err != nil {
			common.LogWarn("Failed to close cache store", zap.Error(err))
		}
	}
	return api.Services{
		Repository:  repo,
		Recommender: recommender,
		Fast:        fast,
		Queue:       q,
	}, cleanup, nil
}

// warmup 背景預先載入每個目標的食譜
func warmup(ctx context.Context, cfg *config.Config, svc api.Services) {
	if !cfg.Queue.Warmup {
		return
	}
	svc.Queue.Start(ctx, queue.WarmupHandler(svc.Repository))
	go func() {
		total := 0
		for _, res := range svc.Queue.Warmup(ctx, common.AllGoals, 0) {
			if res.Error != nil {
				common.LogWarn("預熱失敗", zap.String("goal", string(res.Job.Goal)), zap.Error(res.Error))
				continue
			}
			total += res.Count
		}
		common.LogInfo("預熱完成", zap.Int("recipes", total))
	}()
}
