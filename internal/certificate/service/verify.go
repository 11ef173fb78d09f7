package service

import (
	"context"
	"errors"
	"time"

	"romportal/internal/certificate/certid"
	"romportal/internal/certificate/models"
	dErrors "romportal/pkg/domain-errors"
	"romportal/pkg/platform/sentinel"
	"romportal/pkg/requestcontext"
)

// Verify looks up a certificate by a user-supplied code or scanned QR
// payload. Modern certificates are searched first, then legacy. A miss is
// returned as a result with Found false.
func (s *Service) Verify(ctx context.Context, raw string) (*models.VerificationResult, error) {
	code := certid.NormalizeCode(raw)
	if code == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "code is required")
	}
	start := time.Now()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, code)
		if err != nil {
			s.logger.WarnContext(ctx, "verification cache read failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		} else if ok {
			s.recordVerification(cached, start)
			return cached, nil
		}
	}

	v, err, _ := s.lookups.Do(code, func() (any, error) {
		epoch := s.cacheEpoch()
		result, err := s.lookup(ctx, code)
		if err != nil {
			return nil, err
		}
		s.storeResult(ctx, code, result, epoch)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	result := v.(*models.VerificationResult)

	s.recordVerification(result, start)
	return result, nil
}

// storeResult caches a hit unless an invalidation ran since epoch was read.
// Misses are never cached.
func (s *Service) storeResult(ctx context.Context, code string, result *models.VerificationResult, epoch uint64) {
	if s.cache == nil || !result.Found {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.epoch != epoch {
		return
	}
	if err := s.cache.Set(ctx, code, result); err != nil {
		s.logger.WarnContext(ctx, "verification cache write failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
}

func (s *Service) cacheEpoch() uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.epoch
}

func (s *Service) lookup(ctx context.Context, code string) (*models.VerificationResult, error) {
	ctx, span := s.startSpan(ctx, "certificate.Verify")
	var err error
	defer func() { endSpan(span, err) }()

	for _, cohort := range []models.Cohort{models.CohortModern, models.CohortLegacy} {
		cert, findErr := s.repo.FindByNumber(ctx, cohort, code)
		if findErr == nil {
			return &models.VerificationResult{Found: true, Certificate: cert, IsModern: cohort.IsModern()}, nil
		}
		if !errors.Is(findErr, sentinel.ErrNotFound) {
			err = wrapStoreErr(findErr, "certificate not found", "failed to verify certificate")
			return nil, err
		}
	}
	return &models.VerificationResult{Found: false}, nil
}

func (s *Service) recordVerification(result *models.VerificationResult, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveVerify(start)
	switch {
	case !result.Found:
		s.metrics.IncrementVerification("miss")
	case result.IsModern:
		s.metrics.IncrementVerification("modern")
	default:
		s.metrics.IncrementVerification("legacy")
	}
}
