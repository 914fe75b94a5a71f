package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"claimgen/internal/config"
	"claimgen/internal/domain"
	"claimgen/internal/infra/cachemem"
	"claimgen/internal/infra/cacheredis"
	"claimgen/internal/infra/db"
	httpinfra "claimgen/internal/infra/http"
	"claimgen/internal/infra/ratelimit"
	"claimgen/internal/infra/snapshot"
	"claimgen/internal/usecase"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg := config.FromEnv()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	gormDB, err := db.Open(cfg.PostgresDSN)
	if err != nil {
		logger.Error("failed to init store", "error", err)
		return 1
	}

	cache, err := newPredicateCache(cfg)
	if err != nil {
		logger.Error("failed to init predicate cache", "error", err)
		return 1
	}

	limiter, err := newRateLimiter(cfg)
	if err != nil {
		logger.Error("failed to init rate limiter", "error", err)
		return 1
	}

	ruleRepo := db.NewRuleRepository(gormDB)
	requirementRepo := db.NewRequirementRepository(gormDB)
	auditRepo := db.NewAuditRepository(gormDB)
	generationRepo := db.NewGenerationRepository(gormDB)

	srv := httpinfra.NewServer(cfg, httpinfra.ServerDeps{
		Rules: &usecase.RuleCatalog{
			Rules:        ruleRepo,
			Requirements: requirementRepo,
			Logger:       logger,
		},
		Requirements: &usecase.RequirementCatalog{
			Requirements: requirementRepo,
			Logger:       logger,
		},
		Audits: &usecase.AuditLifecycle{
			Audits: auditRepo,
			Logger: logger,
		},
		Engine: &usecase.GenerateRequirements{
			Audits:       auditRepo,
			Rules:        ruleRepo,
			Requirements: requirementRepo,
			Generations:  generationRepo,
			Cache:        cache,
			Hasher:       snapshot.New(),
			Logger:       logger,
			Parallelism:  cfg.GenerationParallelism,
		},
		Logger:      logger,
		RateLimiter: limiter,
	})
	if err := srv.Run(); err != nil {
		logger.Error("server exited", "error", err)
		return 1
	}
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func newPredicateCache(cfg config.Config) (usecase.PredicateCache, error) {
	switch cfg.CacheBackend {
	case "redis":
		return cacheredis.New(cacheredis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case "", "memory":
		return cachemem.New(cfg.CacheMaxRules), nil
	default:
		return nil, fmt.Errorf("unknown predicate cache backend %q", cfg.CacheBackend)
	}
}

func newRateLimiter(cfg config.Config) (domain.RateLimiter, error) {
	if cfg.RateLimitRequests <= 0 {
		return nil, nil
	}
	switch cfg.RateLimitBackend {
	case "redis":
		return ratelimit.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, nil)
	case "", "memory":
		return ratelimit.NewMemory(ratelimit.MemoryConfig{}), nil
	default:
		return nil, fmt.Errorf("unknown rate limit backend %q", cfg.RateLimitBackend)
	}
}
