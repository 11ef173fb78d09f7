package service

import (
	"context"
	"strconv"
	"strings"

	"romportal/internal/certificate/certid"
	"romportal/internal/certificate/models"
	dErrors "romportal/pkg/domain-errors"
	audit "romportal/pkg/platform/audit"
	"romportal/pkg/requestcontext"
)

// SubmitRegistrant records a public self-registration as PENDING.
func (s *Service) SubmitRegistrant(ctx context.Context, r *models.Registrant) (*models.Registrant, error) {
	if r == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "registrant is required")
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.Surname) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "first_name and surname are required")
	}

	now := requestcontext.Now(ctx)
	reg := r.Clone()
	reg.ID = 0
	reg.Status = models.RegistrantPending
	reg.CreatedAt = now
	reg.UpdatedAt = now

	err := s.repo.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.InsertRegistrant(txCtx, reg); err != nil {
			return wrapStoreErr(err, "registrant not found", "failed to save registration")
		}
		return s.emitAudit(txCtx, audit.ActionRegistrantSubmitted, strconv.FormatInt(reg.ID, 10), map[string]string{
			"school_year": reg.SchoolYear,
		})
	})
	if err != nil {
		return nil, wrapStoreErr(err, "registrant not found", "failed to save registration")
	}
	return reg, nil
}

// ListRegistrants returns registrants in the given status, oldest first.
// An empty status lists the pending queue.
func (s *Service) ListRegistrants(ctx context.Context, status models.RegistrantStatus) ([]*models.Registrant, error) {
	if status == "" {
		status = models.RegistrantPending
	}
	regs, err := s.repo.ListRegistrants(ctx, status)
	if err != nil {
		return nil, wrapStoreErr(err, "registrants not found", "failed to list registrants")
	}
	return regs, nil
}

// Promote turns a pending registrant into a certificate and marks the
// registrant APPROVED, all in one transaction. The cohort follows the
// registrant's school year.
func (s *Service) Promote(ctx context.Context, registrantID int64, cmd models.PromoteRegistrant) (*models.Certificate, error) {
	ctx, span := s.startSpan(ctx, "certificate.Promote")
	var err error
	defer func() { endSpan(span, err) }()

	certType, err := models.ParseCertificateType(string(cmd.Type))
	if err != nil {
		return nil, err
	}
	validity, err := models.ParseValidity(string(cmd.Validity))
	if err != nil {
		return nil, err
	}

	var cert *models.Certificate
	err = s.repo.RunInTx(ctx, func(txCtx context.Context) error {
		reg, findErr := s.repo.FindRegistrantForUpdate(txCtx, registrantID)
		if findErr != nil {
			return wrapStoreErr(findErr, "registrant not found", "failed to load registrant")
		}
		if !reg.IsPending() {
			return dErrors.New(dErrors.CodeConflict, "registrant is already approved")
		}

		now := requestcontext.Now(txCtx)
		cohort := s.policy.cohortFor(reg.SchoolYear)
		yearGraduated := strings.TrimSpace(cmd.YearGraduated)
		if yearGraduated == "" {
			yearGraduated = models.GraduationYear(reg.SchoolYear)
		}
		sourceID := reg.ID
		c := &models.Certificate{
			Cohort:             cohort,
			CertNumber:         certid.NormalizeNumber(cmd.CertNumber),
			IssuedTo:           reg.FullName(),
			Type:               certType,
			IssuedBy:           s.policy.issuer(cmd.IssuedBy),
			DateIssued:         dateOrToday(cmd.DateIssued, now),
			Validity:           validity,
			SchoolYear:         reg.SchoolYear,
			YearGraduated:      yearGraduated,
			GooglePhotosLink:   strings.TrimSpace(cmd.GooglePhotosLink),
			SourceRegistrantID: &sourceID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		if c.CertNumber == "" {
			if !cohort.IsModern() {
				return dErrors.New(dErrors.CodeValidation, "cert_number is required for legacy registrants")
			}
			number, genErr := s.generateNumber(txCtx, reg.FirstName, reg.Surname, c)
			if genErr != nil {
				return genErr
			}
			c.CertNumber = number
		}

		if insErr := s.repo.Insert(txCtx, c); insErr != nil {
			return wrapStoreErr(insErr, "certificate not found", "failed to save certificate")
		}
		if stErr := s.repo.SetRegistrantStatus(txCtx, reg.ID, models.RegistrantApproved, now); stErr != nil {
			return wrapStoreErr(stErr, "registrant not found", "failed to approve registrant")
		}
		cert = c
		return s.emitAudit(txCtx, audit.ActionRegistrantPromoted, c.CertNumber, map[string]string{
			"registrant": strconv.FormatInt(reg.ID, 10),
			"cohort":     cohort.String(),
		})
	})
	if err != nil {
		err = wrapStoreErr(err, "registrant not found", "failed to promote registrant")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementPromoted()
		s.metrics.IncrementIssued(cert.Cohort.String(), "promotion")
	}
	s.invalidate(ctx, cert.CertNumber)
	s.logger.InfoContext(ctx, "registrant promoted",
		"request_id", requestcontext.RequestID(ctx),
		"registrant_id", registrantID,
		"cert_number", cert.CertNumber,
		"cohort", cert.Cohort,
	)
	return cert, nil
}
