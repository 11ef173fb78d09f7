package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "romportal/internal/auth/handler"
	authservice "romportal/internal/auth/service"
	"romportal/internal/auth/store/revocation"
	userstore "romportal/internal/auth/store/user"
	"romportal/internal/certificate/cache"
	certhandler "romportal/internal/certificate/handler"
	certmetrics "romportal/internal/certificate/metrics"
	certservice "romportal/internal/certificate/service"
	certmemory "romportal/internal/certificate/store/memory"
	certpostgres "romportal/internal/certificate/store/postgres"
	certsqlite "romportal/internal/certificate/store/sqlite"
	jwttoken "romportal/internal/jwt_token"
	"romportal/internal/platform/config"
	"romportal/internal/platform/database"
	platformmetrics "romportal/internal/platform/metrics"
	platformredis "romportal/internal/platform/redis"
	httptransport "romportal/internal/transport/http"
	audit "romportal/pkg/platform/audit"
	auditkafka "romportal/pkg/platform/audit/kafka"
	"romportal/pkg/platform/audit/publisher"
	auditmemory "romportal/pkg/platform/audit/store/memory"
	auditpostgres "romportal/pkg/platform/audit/store/postgres"
	auditsqlite "romportal/pkg/platform/audit/store/sqlite"
	"romportal/pkg/platform/audit/worker"
)

const (
	tokenAudience           = "romportal-admin"
	revocationPurgeInterval = time.Hour
)

// app holds the wired object graph for one process.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	certRepo    certservice.Repository
	auditStore  audit.Store
	users       authservice.UserStore
	trl         authservice.TokenRevocationList
	verifyCache certservice.VerifyCache
	sink        worker.Sink
	redis       *platformredis.Client

	jwt          *jwttoken.JWTService
	auth         *authservice.Service
	certificates *certservice.Service

	health    map[string]httptransport.HealthCheck
	migrateFn func(ctx context.Context) ([]string, error)
	closers   []func()
}

// newApp opens the configured backends and builds the services. Schema
// migration is left to the caller.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg *prometheus.Registry) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		health:   make(map[string]httptransport.HealthCheck),
	}
	if err := a.openStores(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openRedis(ctx); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.openSink(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.buildServices(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) openStores(ctx context.Context) error {
	switch a.cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.OpenPostgres(ctx, database.PostgresConfig{URL: a.cfg.DatabaseURL})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		a.health["database"] = db.PingContext
		a.certRepo = certpostgres.New(db)
		a.auditStore = auditpostgres.New(db)
		a.users = userstore.NewPostgres(db)
		a.trl = revocation.NewPostgresTRL(db, nil)
		a.migrateFn = func(ctx context.Context) ([]string, error) { return database.Migrate(ctx, db) }

	case config.DriverSQLite:
		gdb, err := database.OpenSQLite(a.cfg.SQLitePath, a.logger)
		if err != nil {
			return err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = sqlDB.Close() })
		a.health["database"] = sqlDB.PingContext
		certs, audits, users := certsqlite.New(gdb), auditsqlite.New(gdb), userstore.NewSQLite(gdb)
		a.certRepo, a.auditStore, a.users = certs, audits, users
		a.trl = revocation.NewInMemoryTRL(nil)
		a.migrateFn = sqliteMigrator(
			namedMigrator{"certificates", certs},
			namedMigrator{"audit_outbox", audits},
			namedMigrator{"admin_users", users},
		)

	default:
		a.certRepo = certmemory.New()
		a.auditStore = auditmemory.NewInMemoryStore()
		a.users = userstore.New()
		a.trl = revocation.NewInMemoryTRL(nil)
		a.migrateFn = func(context.Context) ([]string, error) { return nil, nil }
	}
	return nil
}

type namedMigrator struct {
	table string
	m     interface{ Migrate(ctx context.Context) error }
}

func sqliteMigrator(stores ...namedMigrator) func(context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		applied := make([]string, 0, len(stores))
		for _, s := range stores {
			if err := s.m.Migrate(ctx); err != nil {
				return applied, fmt.Errorf("migrate %s: %w", s.table, err)
			}
			applied = append(applied, s.table)
		}
		return applied, nil
	}
}

func (a *app) openRedis(ctx context.Context) error {
	client, err := platformredis.New(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	if client == nil {
		a.verifyCache = cache.NewMemory(a.cfg.VerifyCacheTTL)
		return nil
	}
	a.redis = client
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.health["redis"] = client.Health
	a.verifyCache = cache.NewRedis(client.Client, cache.WithRedisTTL(a.cfg.VerifyCacheTTL))
	a.trl = revocation.NewRedisTRL(client.Client,
		revocation.WithLatencyObserver(revocation.NewLatencyHistogram(a.registry)),
	)
	return nil
}

func (a *app) openSink() error {
	if len(a.cfg.KafkaBrokers) == 0 {
		a.sink = worker.LogSink{Logger: a.logger}
		return nil
	}
	producer, err := auditkafka.NewProducer(a.cfg.KafkaBrokers, a.cfg.AuditTopic)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, producer.Close)
	a.sink = producer
	return nil
}

func (a *app) buildServices() error {
	pub := publisher.NewPublisher(a.auditStore, publisher.WithLogger(a.logger))
	a.jwt = jwttoken.NewJWTService(a.cfg.JWTSigningKey, a.cfg.JWTIssuer, tokenAudience)

	auth, err := authservice.New(a.users, a.jwt, a.trl,
		authservice.WithLogger(a.logger),
		authservice.WithAuditPublisher(pub),
		authservice.WithTokenTTL(a.cfg.TokenTTL),
	)
	if err != nil {
		return err
	}
	a.auth = auth

	bucket, err := certservice.ParseBucketPolicy(a.cfg.SerialBucket)
	if err != nil {
		return err
	}
	certs, err := certservice.New(a.certRepo, auth,
		certservice.WithLogger(a.logger),
		certservice.WithAuditPublisher(pub),
		certservice.WithVerifyCache(a.verifyCache),
		certservice.WithMetrics(certmetrics.New(a.registry)),
		certservice.WithPolicy(certservice.Policy{
			Bucket:        bucket,
			ModernMarkers: a.cfg.ModernSchoolYears,
			DefaultIssuer: a.cfg.DefaultIssuer,
		}),
	)
	if err != nil {
		return err
	}
	a.certificates = certs
	return nil
}

// router builds the HTTP handler. Process-wide collectors registered with
// promauto on the default registry are served alongside the app registry.
func (a *app) router() http.Handler {
	gatherers := prometheus.Gatherers{a.registry, prometheus.DefaultGatherer}
	return httptransport.NewRouter(httptransport.Deps{
		Logger:         a.logger,
		Certificates:   certhandler.New(a.certificates, a.logger, a.cfg.PublicBaseURL),
		Auth:           authhandler.New(a.auth, a.logger),
		TokenValidator: jwttoken.NewJWTServiceAdapter(a.jwt),
		Revocations:    a.auth,
		Metrics:        platformmetrics.New(a.registry),
		MetricsHandler: promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}),
		HealthChecks:   a.health,
		RequestTimeout: a.cfg.RequestTimeout,
	})
}

// relay builds the audit outbox relay.
func (a *app) relay() *worker.Relay {
	factory := promauto.With(a.registry)
	return worker.NewRelay(a.auditStore, a.sink,
		worker.WithInterval(a.cfg.AuditRelayInterval),
		worker.WithLogger(a.logger),
		worker.WithCounters(
			factory.NewCounter(prometheus.CounterOpts{
				Name: "romportal_audit_relayed_total",
				Help: "Audit outbox entries delivered to the sink",
			}),
			factory.NewCounter(prometheus.CounterOpts{
				Name: "romportal_audit_relay_failures_total",
				Help: "Audit relay batches that failed and will be retried",
			}),
		),
	)
}

// ensureTopic creates the Kafka audit topic when a producer is configured.
func (a *app) ensureTopic(ctx context.Context) {
	producer, ok := a.sink.(*auditkafka.Producer)
	if !ok {
		return
	}
	if err := producer.EnsureTopic(ctx, 1, 1); err != nil {
		a.logger.WarnContext(ctx, "could not ensure audit topic", "topic", a.cfg.AuditTopic, "error", err)
	}
}

// revocationPurger returns the sweep loop for table-backed revocations, or
// nil when the backend expires entries itself.
func (a *app) revocationPurger() func(ctx context.Context) error {
	trl, ok := a.trl.(*revocation.PostgresTRL)
	if !ok {
		return nil
	}
	return func(ctx context.Context) error {
		return trl.RunPurger(ctx, revocationPurgeInterval, a.logger)
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

var errNoMigrator = errors.New("store driver has no migrator")

func (a *app) migrate(ctx context.Context) ([]string, error) {
	if a.migrateFn == nil {
		return nil, errNoMigrator
	}
	return a.migrateFn(ctx)
}
