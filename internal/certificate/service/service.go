package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"romportal/internal/certificate/metrics"
	"romportal/internal/certificate/models"
	audit "romportal/pkg/platform/audit"
	"romportal/pkg/requestcontext"
)

const tracerName = "romportal/internal/certificate/service"

// BucketPolicy selects the grouping for modern serial numbers.
type BucketPolicy string

const (
	// BucketByType keeps one continuous serial per certificate type.
	BucketByType BucketPolicy = "type"
	// BucketByYearAndType restarts serials for every graduation year.
	BucketByYearAndType BucketPolicy = "year_type"
)

// ParseBucketPolicy accepts "type" or "year_type"; empty means type.
func ParseBucketPolicy(s string) (BucketPolicy, error) {
	switch BucketPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", BucketByType:
		return BucketByType, nil
	case BucketByYearAndType:
		return BucketByYearAndType, nil
	default:
		return "", errors.New("serial bucket must be one of [type year_type]")
	}
}

// Policy holds the configurable issuance rules.
type Policy struct {
	Bucket BucketPolicy
	// ModernMarkers route a registrant to the modern cohort when any of
	// them appears in the registrant's school year.
	ModernMarkers []string
	DefaultIssuer string
	// MaxSerialProbes bounds how far a generated serial is bumped past
	// existing numbers before giving up.
	MaxSerialProbes int
}

// DefaultPolicy returns the rules the portal ships with.
func DefaultPolicy() Policy {
	return Policy{
		Bucket:          BucketByType,
		ModernMarkers:   []string{"2025", "2026"},
		DefaultIssuer:   "RMMO Alumni Advisory Council",
		MaxSerialProbes: 1000,
	}
}

func (p Policy) bucketFor(certType models.CertificateType, yearGraduated string) models.SerialBucket {
	return models.SerialBucket{
		Type:          certType,
		YearGraduated: yearGraduated,
		ByYear:        p.Bucket == BucketByYearAndType,
	}
}

func (p Policy) cohortFor(schoolYear string) models.Cohort {
	if models.ContainsAny(schoolYear, p.ModernMarkers) {
		return models.CohortModern
	}
	return models.CohortLegacy
}

func (p Policy) issuer(issuedBy string) string {
	if issuedBy = strings.TrimSpace(issuedBy); issuedBy != "" {
		return issuedBy
	}
	return p.DefaultIssuer
}

// Service orchestrates certificate issuance, registrant promotion and
// public verification.
type Service struct {
	repo           Repository
	passwords      PasswordVerifier
	auditPublisher AuditPublisher
	cache          VerifyCache
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	policy         Policy
	lookups        singleflight.Group

	// cacheMu orders cache writes against invalidations; epoch counts
	// invalidations.
	cacheMu sync.Mutex
	epoch   uint64
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithVerifyCache(cache VerifyCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithPolicy(p Policy) Option {
	return func(s *Service) {
		defaults := DefaultPolicy()
		if p.Bucket == "" {
			p.Bucket = defaults.Bucket
		}
		if p.ModernMarkers == nil {
			p.ModernMarkers = defaults.ModernMarkers
		}
		if strings.TrimSpace(p.DefaultIssuer) == "" {
			p.DefaultIssuer = defaults.DefaultIssuer
		}
		if p.MaxSerialProbes <= 0 {
			p.MaxSerialProbes = defaults.MaxSerialProbes
		}
		s.policy = p
	}
}

// New constructs a Service. The repository and password verifier are
// required; everything else is optional.
func New(repo Repository, passwords PasswordVerifier, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("certificate repository is required")
	}
	if passwords == nil {
		return nil, errors.New("password verifier is required")
	}
	s := &Service{
		repo:      repo,
		passwords: passwords,
		logger:    slog.Default(),
		tracer:    otel.Tracer(tracerName),
		policy:    DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Policy returns the active issuance rules.
func (s *Service) Policy() Policy {
	return s.policy
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// emitAudit appends an audit event. Inside a transaction a failure aborts
// the write it describes.
func (s *Service) emitAudit(ctx context.Context, action audit.Action, subject string, details map[string]string) error {
	if s.auditPublisher == nil {
		s.logger.InfoContext(ctx, string(action),
			"log_type", "audit",
			"subject", subject,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil
	}
	return s.auditPublisher.Emit(ctx, audit.Event{
		Action:  action,
		Subject: subject,
		Details: details,
	})
}

func (s *Service) invalidate(ctx context.Context, numbers ...string) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	s.epoch++
	s.cacheMu.Unlock()
	if err := s.cache.Invalidate(ctx, numbers...); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate verification cache",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}
