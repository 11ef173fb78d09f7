package service

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"romportal/internal/certificate/certid"
	"romportal/internal/certificate/models"
	dErrors "romportal/pkg/domain-errors"
	audit "romportal/pkg/platform/audit"
	"romportal/pkg/requestcontext"
)

const dateLayout = "2006-01-02"

// IssueCertificate creates a certificate from an admin request. Legacy
// certificates keep the manually entered number; modern certificates get a
// generated number unless one is supplied.
func (s *Service) IssueCertificate(ctx context.Context, cmd models.IssueCertificate) (*models.Certificate, error) {
	ctx, span := s.startSpan(ctx, "certificate.Issue")
	var err error
	defer func() { endSpan(span, err) }()

	cert, err := s.prepareIssue(ctx, cmd)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	generate := cert.CertNumber == ""
	err = s.repo.RunInTx(ctx, func(txCtx context.Context) error {
		if generate {
			first, surname := initialsSource(cmd)
			number, genErr := s.generateNumber(txCtx, first, surname, cert)
			if genErr != nil {
				return genErr
			}
			cert.CertNumber = number
		}
		if insErr := s.repo.Insert(txCtx, cert); insErr != nil {
			return wrapStoreErr(insErr, "certificate not found", "failed to save certificate")
		}
		return s.emitAudit(txCtx, audit.ActionCertificateIssued, cert.CertNumber, map[string]string{
			"cohort":      cert.Cohort.String(),
			"certificate": strconv.FormatInt(cert.ID, 10),
		})
	})
	if err != nil {
		err = wrapStoreErr(err, "certificate not found", "failed to issue certificate")
		return nil, err
	}

	origin := "manual"
	if generate {
		origin = "generated"
	}
	if s.metrics != nil {
		s.metrics.ObserveIssue(start)
		s.metrics.IncrementIssued(cert.Cohort.String(), origin)
	}
	s.invalidate(ctx, cert.CertNumber)
	s.logger.InfoContext(ctx, "certificate issued",
		"request_id", requestcontext.RequestID(ctx),
		"cert_number", cert.CertNumber,
		"cohort", cert.Cohort,
		"origin", origin,
	)
	return cert, nil
}

func (s *Service) prepareIssue(ctx context.Context, cmd models.IssueCertificate) (*models.Certificate, error) {
	cohort, err := models.ParseCohort(string(cmd.Cohort))
	if err != nil {
		return nil, err
	}
	certType, err := models.ParseCertificateType(string(cmd.Type))
	if err != nil {
		return nil, err
	}
	validity, err := models.ParseValidity(string(cmd.Validity))
	if err != nil {
		return nil, err
	}
	name := cmd.DisplayName()
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "issued_to or first_name and surname are required")
	}

	number := certid.NormalizeNumber(cmd.CertNumber)
	if number == "" && cohort == models.CohortLegacy {
		return nil, dErrors.New(dErrors.CodeValidation, "cert_number is required for legacy certificates")
	}

	now := requestcontext.Now(ctx)
	return &models.Certificate{
		Cohort:           cohort,
		CertNumber:       number,
		IssuedTo:         name,
		Type:             certType,
		IssuedBy:         s.policy.issuer(cmd.IssuedBy),
		DateIssued:       dateOrToday(cmd.DateIssued, now),
		Validity:         validity,
		SchoolYear:       strings.TrimSpace(cmd.SchoolYear),
		YearGraduated:    strings.TrimSpace(cmd.YearGraduated),
		GooglePhotosLink: strings.TrimSpace(cmd.GooglePhotosLink),
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// generateNumber assigns the next free modern number in the certificate's
// bucket. It must run inside RunInTx: the bucket lock is held until commit,
// so concurrent issuers in one bucket observe each other's inserts.
func (s *Service) generateNumber(ctx context.Context, firstName, surname string, cert *models.Certificate) (string, error) {
	bucket := s.policy.bucketFor(cert.Type, cert.YearGraduated)
	if err := s.repo.LockSerialBucket(ctx, bucket); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock serial bucket")
	}
	count, err := s.repo.CountInBucket(ctx, bucket)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to count certificates")
	}

	for serial := count + 1; serial <= count+s.policy.MaxSerialProbes; serial++ {
		code := certid.Generate(firstName, surname, cert.DateIssued, cert.Type, serial)
		exists, err := s.repo.NumberExists(ctx, models.CohortModern, code)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check certificate number")
		}
		if !exists {
			return code, nil
		}
		if s.metrics != nil {
			s.metrics.IncrementProbeRetry()
		}
	}
	return "", dErrors.New(dErrors.CodeConflict, "no free serial number in bucket")
}

// initialsSource picks the names used for the code initials. Structured
// names win; otherwise the first and last words of IssuedTo are used.
func initialsSource(cmd models.IssueCertificate) (first, surname string) {
	if strings.TrimSpace(cmd.FirstName) != "" || strings.TrimSpace(cmd.Surname) != "" {
		return cmd.FirstName, cmd.Surname
	}
	words := strings.Fields(cmd.IssuedTo)
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return words[0], ""
	default:
		return words[0], words[len(words)-1]
	}
}

func dateOrToday(date string, now time.Time) string {
	if date = strings.TrimSpace(date); date != "" {
		return date
	}
	return now.Format(dateLayout)
}

// NextSerial previews the serial the next generated certificate in the
// bucket would receive. It takes no lock, so the value is advisory.
func (s *Service) NextSerial(ctx context.Context, certType models.CertificateType, yearGraduated string) (int, error) {
	t, err := models.ParseCertificateType(string(certType))
	if err != nil {
		return 0, err
	}
	count, err := s.repo.CountInBucket(ctx, s.policy.bucketFor(t, strings.TrimSpace(yearGraduated)))
	if err != nil {
		return 0, wrapStoreErr(err, "bucket not found", "failed to count certificates")
	}
	return count + 1, nil
}

// ListCertificates returns certificates for the dashboard. Without a cohort
// filter both cohorts are read concurrently and merged newest first.
func (s *Service) ListCertificates(ctx context.Context, filter models.ListFilter) ([]*models.Certificate, error) {
	ctx, span := s.startSpan(ctx, "certificate.List")
	var err error
	defer func() { endSpan(span, err) }()

	var certs []*models.Certificate
	if filter.Cohort != "" {
		certs, err = s.repo.List(ctx, filter.Cohort)
		if err != nil {
			err = wrapStoreErr(err, "certificates not found", "failed to list certificates")
			return nil, err
		}
	} else {
		var modern, legacy []*models.Certificate
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var listErr error
			modern, listErr = s.repo.List(gctx, models.CohortModern)
			return listErr
		})
		g.Go(func() error {
			var listErr error
			legacy, listErr = s.repo.List(gctx, models.CohortLegacy)
			return listErr
		})
		if err = g.Wait(); err != nil {
			err = wrapStoreErr(err, "certificates not found", "failed to list certificates")
			return nil, err
		}
		certs = append(modern, legacy...)
		sort.SliceStable(certs, func(i, j int) bool { return certs[i].ID > certs[j].ID })
	}

	out := certs[:0]
	for _, c := range certs {
		if !c.Matches(filter.Query) {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if filter.Validity != "" && c.Validity != filter.Validity {
			continue
		}
		out = append(out, c)
	}
	sortByYear(out, filter.SortByYear)
	return out, nil
}

func sortByYear(certs []*models.Certificate, order models.SortOrder) {
	if order == models.SortNone {
		return
	}
	year := func(c *models.Certificate) int {
		y, _ := strconv.Atoi(strings.TrimSpace(c.YearGraduated))
		return y
	}
	sort.SliceStable(certs, func(i, j int) bool {
		if order == models.SortYearOldest {
			return year(certs[i]) < year(certs[j])
		}
		return year(certs[i]) > year(certs[j])
	})
}

// GetCertificate returns one certificate by id.
func (s *Service) GetCertificate(ctx context.Context, id int64) (*models.Certificate, error) {
	cert, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapStoreErr(err, "certificate not found", "failed to load certificate")
	}
	return cert, nil
}

// UpdateCertificate overwrites a certificate's mutable fields. The caller's
// cohort must match the stored row. Legacy numbers may be re-entered;
// modern numbers are fixed at issue.
func (s *Service) UpdateCertificate(ctx context.Context, id int64, cmd models.UpdateCertificate) (*models.Certificate, error) {
	ctx, span := s.startSpan(ctx, "certificate.Update")
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
	name := models.FullName(cmd.IssuedTo)
	if name == "" {
		err = dErrors.New(dErrors.CodeValidation, "issued_to is required")
		return nil, err
	}

	var updated *models.Certificate
	var previousNumber string
	err = s.repo.RunInTx(ctx, func(txCtx context.Context) error {
		cert, findErr := s.repo.FindByID(txCtx, id)
		if findErr != nil {
			return wrapStoreErr(findErr, "certificate not found", "failed to load certificate")
		}
		if cert.Cohort != cmd.Cohort {
			return dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		previousNumber = cert.CertNumber

		if number := certid.NormalizeNumber(cmd.CertNumber); number != "" && number != cert.CertNumber {
			if cert.Cohort.IsModern() {
				return dErrors.New(dErrors.CodeValidation, "cert_number of a modern certificate cannot be changed")
			}
			cert.CertNumber = number
		}
		cert.IssuedTo = name
		cert.Type = certType
		cert.IssuedBy = s.policy.issuer(cmd.IssuedBy)
		cert.DateIssued = dateOrToday(cmd.DateIssued, requestcontext.Now(txCtx))
		cert.Validity = validity
		cert.SchoolYear = strings.TrimSpace(cmd.SchoolYear)
		cert.YearGraduated = strings.TrimSpace(cmd.YearGraduated)
		cert.GooglePhotosLink = strings.TrimSpace(cmd.GooglePhotosLink)
		cert.UpdatedAt = requestcontext.Now(txCtx)

		if updErr := s.repo.Update(txCtx, cert); updErr != nil {
			return wrapStoreErr(updErr, "certificate not found", "failed to update certificate")
		}
		updated = cert
		return s.emitAudit(txCtx, audit.ActionCertificateUpdated, cert.CertNumber, map[string]string{
			"cohort":          cert.Cohort.String(),
			"previous_number": previousNumber,
		})
	})
	if err != nil {
		err = wrapStoreErr(err, "certificate not found", "failed to update certificate")
		return nil, err
	}

	s.invalidate(ctx, previousNumber, updated.CertNumber)
	return updated, nil
}

// DeleteCertificate removes a certificate after re-authenticating the acting
// admin with password. A wrong password leaves the record untouched.
func (s *Service) DeleteCertificate(ctx context.Context, id int64, cohort models.Cohort, password string) error {
	ctx, span := s.startSpan(ctx, "certificate.Delete")
	var err error
	defer func() { endSpan(span, err) }()

	actor := requestcontext.UserID(ctx)
	if actor == uuid.Nil {
		err = dErrors.New(dErrors.CodeUnauthorized, "authentication required")
		return err
	}
	if err = s.passwords.VerifyPassword(ctx, actor, password); err != nil {
		if auditErr := s.emitAudit(ctx, audit.ActionReauthFailed, actor.String(), map[string]string{
			"certificate": strconv.FormatInt(id, 10),
		}); auditErr != nil {
			s.logger.WarnContext(ctx, "failed to record re-authentication failure",
				"request_id", requestcontext.RequestID(ctx),
				"certificate_id", id,
				"error", auditErr,
			)
		}
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify password")
			return err
		}
		err = dErrors.New(dErrors.CodeUnauthorized, "incorrect password")
		return err
	}

	var number string
	err = s.repo.RunInTx(ctx, func(txCtx context.Context) error {
		cert, findErr := s.repo.FindByID(txCtx, id)
		if findErr != nil {
			return wrapStoreErr(findErr, "certificate not found", "failed to load certificate")
		}
		if cert.Cohort != cohort {
			return dErrors.New(dErrors.CodeNotFound, "certificate not found")
		}
		if delErr := s.repo.Delete(txCtx, id); delErr != nil {
			return wrapStoreErr(delErr, "certificate not found", "failed to delete certificate")
		}
		number = cert.CertNumber
		return s.emitAudit(txCtx, audit.ActionCertificateDeleted, cert.CertNumber, map[string]string{
			"cohort": cert.Cohort.String(),
		})
	})
	if err != nil {
		err = wrapStoreErr(err, "certificate not found", "failed to delete certificate")
		return err
	}
	s.invalidate(ctx, number)
	return nil
}
