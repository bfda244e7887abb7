package bootstrap

import (
	"context"
	"fmt"
	"time"

	"querygate/internal/config"
	"querygate/internal/core/ports"
	"querygate/internal/core/querybuilder"
	"querygate/internal/core/usecase"
	"querygate/internal/infrastructure/repository/postgres"
	"querygate/internal/infrastructure/resilience"
	"querygate/internal/infrastructure/sampledata"
	"querygate/internal/infrastructure/search/elastic"
	"querygate/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Search   ports.SearchQueryService
	QueryLog ports.QueryLog
	Metrics  *metrics.Metrics

	SearchSchema   *querybuilder.Schema
	DocumentSchema *querybuilder.Schema

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	es := elastic.New(cfg.ElasticURL)
	interval := time.Duration(cfg.ElasticWaitIntervalMS) * time.Millisecond
	if err := es.WaitReady(ctx, interval, cfg.ElasticWaitMaxAttempts); err != nil {
		return nil, fmt.Errorf("wait for elasticsearch: %w", err)
	}

	if cfg.SeedSampleData {
		exists, err := es.IndexExists(ctx, cfg.ElasticIndex)
		if err != nil {
			return nil, fmt.Errorf("check sample index: %w", err)
		}
		if !exists {
			if err := es.CreateIndex(ctx, cfg.ElasticIndex, sampledata.Mapping()); err != nil {
				return nil, fmt.Errorf("create sample index: %w", err)
			}
			if err := sampledata.Seed(ctx, es, cfg.ElasticIndex, cfg.SeedDocCount); err != nil {
				return nil, fmt.Errorf("seed sample data: %w", err)
			}
		}
	}

	guard := resilience.NewGuard("elasticsearch", resilience.Policy{}, elastic.ClassifyError)
	executor := elastic.NewResilient(es, guard)

	var queryLog ports.QueryLog
	closeFn := func() {}
	if cfg.PostgresDSN != "" {
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewQueryLogRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure query log schema: %w", err)
		}
		queryLog = repo
		closeFn = func() { _ = db.Close() }
	}

	searchBuilder, err := newSearchBuilder(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure search builder: %w", err)
	}
	docBuilder, err := newDocumentBuilder()
	if err != nil {
		return nil, fmt.Errorf("configure document builder: %w", err)
	}

	m := metrics.New("api")
	searchUC := usecase.NewSearchUseCase(searchBuilder, docBuilder, executor, queryLog, m, cfg.ElasticIndex)

	return &App{
		Config: cfg,

		Search:   searchUC,
		QueryLog: queryLog,
		Metrics:  m,

		SearchSchema:   searchBuilder.Schema(),
		DocumentSchema: docBuilder.Schema(),

		closeFn: closeFn,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
