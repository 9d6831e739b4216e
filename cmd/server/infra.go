package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"recordgate/internal/platform/config"
	platformredis "recordgate/internal/platform/redis"
	"recordgate/internal/records/continuation"
	"recordgate/internal/records/locale"
	"recordgate/internal/records/ports"
	"recordgate/internal/records/store/memory"
	"recordgate/internal/records/store/postgres"
	"recordgate/internal/records/store/sqlite"
	audit "recordgate/pkg/platform/audit"
	"recordgate/pkg/platform/audit/publisher"
	"recordgate/pkg/platform/audit/publishers/kafka"
	auditmemory "recordgate/pkg/platform/audit/store/memory"
	auditpostgres "recordgate/pkg/platform/audit/store/postgres"
)

// infra owns the process-wide backends selected by configuration.
type infra struct {
	storage      ports.Storage
	continuation ports.QueryContinuation
	auditor      ports.Auditor
	localization ports.Localization

	health  []func(context.Context) error
	closers []func()
}

func buildInfra(ctx context.Context, cfg config.Config, log *slog.Logger) (*infra, error) {
	in := &infra{}
	var err error
	if err = in.openStorage(ctx, cfg.Store); err != nil {
		in.Close()
		return nil, err
	}
	if err = in.openContinuation(ctx, cfg); err != nil {
		in.Close()
		return nil, err
	}
	if err = in.openAudit(ctx, cfg, log); err != nil {
		in.Close()
		return nil, err
	}
	if cfg.LocaleCatalog != "" {
		in.localization, err = locale.LoadFile(cfg.LocaleCatalog, cfg.Locale)
	} else {
		in.localization, err = locale.Default(cfg.Locale)
	}
	if err != nil {
		in.Close()
		return nil, fmt.Errorf("load locale catalog: %w", err)
	}

	log.Info("infrastructure ready",
		"store", cfg.Store.Backend,
		"redis", cfg.Redis.URL != "",
		"kafka", len(cfg.Kafka.Brokers) > 0,
	)
	return in, nil
}

func (in *infra) openStorage(ctx context.Context, cfg config.StoreConfig) error {
	switch cfg.Backend {
	case "memory":
		in.storage = memory.NewInMemoryStore()
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite store: %w", err)
		}
		in.storage = store
		in.health = append(in.health, store.DB().PingContext)
		in.closers = append(in.closers, func() { _ = store.Close() })
	case "postgres":
		store, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect postgres store: %w", err)
		}
		in.closers = append(in.closers, store.Close)
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		in.storage = store
		in.health = append(in.health, store.Health)
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
	return nil
}

func (in *infra) openContinuation(ctx context.Context, cfg config.Config) error {
	client, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		in.continuation = continuation.NewInMemoryStore(cfg.Query.ContinuationTTL)
		return nil
	}
	in.continuation = continuation.NewRedisStore(client.Client, continuation.WithTTL(cfg.Query.ContinuationTTL))
	in.health = append(in.health, client.Health)
	in.closers = append(in.closers, func() { _ = client.Close() })
	return nil
}

// openAudit picks the audit store (postgres outbox when a database URL is
// set) and puts Kafka in front of it when brokers are configured.
func (in *infra) openAudit(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var store audit.Store = auditmemory.NewInMemoryStore()
	if cfg.Store.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.Store.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open audit database: %w", err)
		}
		in.closers = append(in.closers, func() { _ = db.Close() })
		outbox := auditpostgres.New(db)
		if err := outbox.Migrate(ctx); err != nil {
			return err
		}
		store = outbox
	}

	if len(cfg.Kafka.Brokers) > 0 {
		pub, err := kafka.Dial(ctx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, store,
			kafka.WithLogger(log),
			kafka.WithMetrics(kafka.NewMetrics()),
		)
		if err != nil {
			return fmt.Errorf("dial kafka: %w", err)
		}
		in.auditor = pub
		in.closers = append(in.closers, pub.Close)
		return nil
	}

	pub := publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(cfg.Audit.AsyncBuffer),
		publisher.WithLogger(log),
	)
	in.auditor = pub
	in.closers = append(in.closers, pub.Close)
	return nil
}

// Health reports the first failing backend.
func (in *infra) Health(ctx context.Context) error {
	for _, check := range in.health {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close releases backends in reverse order of acquisition.
func (in *infra) Close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
	in.closers = nil
}
