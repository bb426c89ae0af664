package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"resume-matcher/internal/api"
	"resume-matcher/internal/config"
	"resume-matcher/internal/document"
	"resume-matcher/internal/embedding"
	"resume-matcher/internal/events"
	"resume-matcher/internal/geministore"
	"resume-matcher/internal/outreach"
	"resume-matcher/internal/parser"
	"resume-matcher/internal/postgresdb"
	"resume-matcher/internal/processor"
	"resume-matcher/internal/redis"
	"resume-matcher/internal/resume"
	"resume-matcher/internal/s3"
	"resume-matcher/internal/search"
	"resume-matcher/internal/telemetry"
	"resume-matcher/internal/valkeydb"
)

const leaseName = "ingestion"

// application holds the shared clients of one process.
type application struct {
	cfg *config.Config
	log *zap.Logger

	store *postgresdb.Store
	files *s3.FileStore
	llm   *geministore.GeminiClient

	cache     *valkeydb.ValkeyClient
	redis     *redis.RedisClient
	publisher *events.Publisher

	resumes *resume.Service

	shutdownTracer telemetry.Shutdown
}

func newApplication(ctx context.Context, cfg *config.Config, log *zap.Logger) (*application, error) {
	a := &application{cfg: cfg, log: log}

	var err error
	a.shutdownTracer, err = telemetry.InitTracer(ctx, telemetry.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	a.store, err = postgresdb.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	a.files, err = s3.NewFileStore(ctx, s3.S3Config{
		EndpointURL: cfg.S3.EndpointURL,
		Region:      cfg.S3.Region,
		AccessKey:   cfg.S3.AccessKey,
		SecretKey:   cfg.S3.SecretKey,
		Bucket:      cfg.S3.Bucket,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating s3 filestore: %w", err)
	}

	a.llm, err = geministore.New(ctx, geministore.Config{
		APIKey:            cfg.Gemini.APIKey,
		Model:             cfg.Gemini.Model,
		EmbeddingModel:    cfg.Gemini.EmbeddingModel,
		EmbeddingDim:      cfg.Gemini.EmbeddingDim,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	if cfg.Valkey.Address != "" {
		a.cache, err = valkeydb.New(ctx, cfg.Valkey.Address, cfg.Valkey.Password, cfg.Valkey.CacheTTL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to valkey: %w", err)
		}
	}

	if cfg.Redis.Address != "" {
		a.redis, err = redis.New(ctx, cfg.Redis.Address, cfg.Redis.Password)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
	}

	if cfg.AMQP.URL != "" {
		a.publisher, err = events.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting to rabbitmq: %w", err)
		}
	}

	a.resumes = resume.NewService(
		document.NewExtractor(log),
		parser.New(a.llm, log),
		a.embeddings(),
		a.store,
		log,
	)

	return a, nil
}

func (a *application) embeddings() *embedding.Service {
	var cache embedding.Cache
	if a.cache != nil {
		cache = a.cache
	}
	return embedding.NewService(a.llm, cache, a.cfg.Gemini.EmbeddingModel, a.log)
}

func (a *application) handler() *api.APIHandler {
	return api.NewAPIHandler(
		a.resumes,
		search.NewEngine(a.embeddings(), a.store, a.log),
		outreach.NewComposer(a.resumes, a.store, a.llm, a.log),
		a.store,
		a.files,
		a.cfg.API.MaxUploadBytes,
	)
}

func (a *application) worker() *processor.Worker {
	opts := []processor.Option{
		processor.WithLogger(a.log),
		processor.WithInterval(a.cfg.Worker.PollInterval),
		processor.WithConcurrency(a.cfg.Worker.Concurrency),
		processor.WithRecordTimeout(a.cfg.Worker.RecordTimeout),
		processor.WithStaleAfter(a.cfg.Worker.StaleAfter),
	}
	if a.redis != nil {
		opts = append(opts, processor.WithLease(a.redis.Lease(leaseName, a.cfg.Redis.LeaseTTL)))
	}
	if a.publisher != nil {
		opts = append(opts, processor.WithPublisher(a.publisher))
	}
	return processor.NewWorker(a.store, a.files, a.resumes, opts...)
}

func (a *application) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("closing rabbitmq publisher", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("closing redis client", zap.Error(err))
		}
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.shutdownTracer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.shutdownTracer(ctx); err != nil {
			a.log.Warn("flushing traces", zap.Error(err))
		}
	}
}
