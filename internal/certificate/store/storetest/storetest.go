// Package storetest holds the conformance suite every certificate store
// backend runs.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"romportal/internal/certificate/models"
	"romportal/internal/certificate/service"
	"romportal/pkg/platform/sentinel"
)

// Suite exercises a service.Repository. Embedders set NewRepo, which must
// return an empty repository for every test.
type Suite struct {
	suite.Suite
	NewRepo func() service.Repository

	repo service.Repository
	ctx  context.Context
}

func (s *Suite) SetupTest() {
	s.repo = s.NewRepo()
	s.ctx = context.Background()
}

func (s *Suite) newCert(cohort models.Cohort, number string) *models.Certificate {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Certificate{
		Cohort:        cohort,
		CertNumber:    number,
		IssuedTo:      "JUAN DELA CRUZ",
		Type:          models.TypeCompletion,
		IssuedBy:      "RMMO Alumni Advisory Council",
		DateIssued:    "2026-03-27",
		Validity:      models.ValidityValid,
		SchoolYear:    "2025-2026",
		YearGraduated: "2026",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *Suite) newRegistrant(first string) *models.Registrant {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Registrant{
		FirstName:  first,
		Surname:    "Santos",
		Gender:     "HER",
		Email:      first + "@example.org",
		Strand:     "TVL-ICT",
		SchoolYear: "2025-2026",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TestInsertAndFind verifies id assignment and both lookups.
func (s *Suite) TestInsertAndFind() {
	s.Run("assigns ids and finds by id", func() {
		c := s.newCert(models.CohortModern, "RMMO-26J03D27C01")
		s.Require().NoError(s.repo.Insert(s.ctx, c))
		s.NotZero(c.ID)

		found, err := s.repo.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(c.CertNumber, found.CertNumber)
		s.Equal(models.CohortModern, found.Cohort)
	})

	s.Run("finds by number case-insensitively within cohort", func() {
		found, err := s.repo.FindByNumber(s.ctx, models.CohortModern, "rmmo-26j03d27c01")
		s.Require().NoError(err)
		s.Equal("RMMO-26J03D27C01", found.CertNumber)

		_, err = s.repo.FindByNumber(s.ctx, models.CohortLegacy, "RMMO-26J03D27C01")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.repo.FindByID(s.ctx, 999999)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

// TestNumberUniqueness verifies numbers are unique per cohort only.
func (s *Suite) TestNumberUniqueness() {
	s.Require().NoError(s.repo.Insert(s.ctx, s.newCert(models.CohortLegacy, "RMMO-L-1")))

	err := s.repo.Insert(s.ctx, s.newCert(models.CohortLegacy, "RMMO-L-1"))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	s.NoError(s.repo.Insert(s.ctx, s.newCert(models.CohortModern, "RMMO-L-1")))

	exists, err := s.repo.NumberExists(s.ctx, models.CohortLegacy, "RMMO-L-1")
	s.Require().NoError(err)
	s.True(exists)
	exists, err = s.repo.NumberExists(s.ctx, models.CohortLegacy, "RMMO-L-2")
	s.Require().NoError(err)
	s.False(exists)
}

// TestListNewestFirst verifies per-cohort listing order.
func (s *Suite) TestListNewestFirst() {
	for i := 1; i <= 3; i++ {
		s.Require().NoError(s.repo.Insert(s.ctx, s.newCert(models.CohortLegacy, fmt.Sprintf("RMMO-L-%d", i))))
	}
	s.Require().NoError(s.repo.Insert(s.ctx, s.newCert(models.CohortModern, "RMMO-M-1")))

	certs, err := s.repo.List(s.ctx, models.CohortLegacy)
	s.Require().NoError(err)
	s.Require().Len(certs, 3)
	s.Equal("RMMO-L-3", certs[0].CertNumber)
	s.Equal("RMMO-L-1", certs[2].CertNumber)
}

// TestUpdateAndDelete verifies overwrite and removal semantics.
func (s *Suite) TestUpdateAndDelete() {
	c := s.newCert(models.CohortLegacy, "RMMO-L-1")
	s.Require().NoError(s.repo.Insert(s.ctx, c))
	other := s.newCert(models.CohortLegacy, "RMMO-L-2")
	s.Require().NoError(s.repo.Insert(s.ctx, other))

	s.Run("overwrites mutable fields", func() {
		c.IssuedTo = "ANA SANTOS"
		c.Validity = models.ValidityRevoked
		c.CertNumber = "RMMO-L-9"
		s.Require().NoError(s.repo.Update(s.ctx, c))

		found, err := s.repo.FindByID(s.ctx, c.ID)
		s.Require().NoError(err)
		s.Equal("ANA SANTOS", found.IssuedTo)
		s.Equal(models.ValidityRevoked, found.Validity)
		s.Equal("RMMO-L-9", found.CertNumber)
	})

	s.Run("rejects a number taken by another row", func() {
		c.CertNumber = other.CertNumber
		s.ErrorIs(s.repo.Update(s.ctx, c), sentinel.ErrAlreadyUsed)
	})

	s.Run("update of missing row is not found", func() {
		missing := s.newCert(models.CohortLegacy, "RMMO-L-404")
		missing.ID = 999999
		s.ErrorIs(s.repo.Update(s.ctx, missing), sentinel.ErrNotFound)
	})

	s.Run("deletes and reports missing rows", func() {
		s.Require().NoError(s.repo.Delete(s.ctx, other.ID))
		_, err := s.repo.FindByID(s.ctx, other.ID)
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.ErrorIs(s.repo.Delete(s.ctx, other.ID), sentinel.ErrNotFound)
	})
}

// TestCountInBucket verifies bucket counting over modern rows only.
func (s *Suite) TestCountInBucket() {
	insert := func(cohort models.Cohort, number string, t models.CertificateType, year string) {
		c := s.newCert(cohort, number)
		c.Type = t
		c.YearGraduated = year
		s.Require().NoError(s.repo.Insert(s.ctx, c))
	}
	insert(models.CohortModern, "RMMO-A", models.TypeCompletion, "2025")
	insert(models.CohortModern, "RMMO-B", models.TypeCompletion, "2026")
	insert(models.CohortModern, "RMMO-C", models.TypeAwards, "2026")
	insert(models.CohortLegacy, "RMMO-D", models.TypeCompletion, "2026")

	n, err := s.repo.CountInBucket(s.ctx, models.SerialBucket{Type: models.TypeCompletion})
	s.Require().NoError(err)
	s.Equal(2, n)

	n, err = s.repo.CountInBucket(s.ctx, models.SerialBucket{Type: models.TypeCompletion, YearGraduated: "2026", ByYear: true})
	s.Require().NoError(err)
	s.Equal(1, n)
}

// TestRunInTxRollsBack verifies a failed transaction leaves no trace.
func (s *Suite) TestRunInTxRollsBack() {
	boom := errors.New("boom")
	reg := s.newRegistrant("Ana")
	s.Require().NoError(s.repo.InsertRegistrant(s.ctx, reg))

	err := s.repo.RunInTx(s.ctx, func(txCtx context.Context) error {
		if err := s.repo.Insert(txCtx, s.newCert(models.CohortModern, "RMMO-TX-1")); err != nil {
			return err
		}
		if err := s.repo.SetRegistrantStatus(txCtx, reg.ID, models.RegistrantApproved, time.Now()); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.repo.FindByNumber(s.ctx, models.CohortModern, "RMMO-TX-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	found, err := s.repo.FindRegistrant(s.ctx, reg.ID)
	s.Require().NoError(err)
	s.Equal(models.RegistrantPending, found.Status)
}

// TestRegistrants verifies the pending queue and status transitions.
func (s *Suite) TestRegistrants() {
	first := s.newRegistrant("Ana")
	first.Status = models.RegistrantApproved
	second := s.newRegistrant("Ben")
	s.Require().NoError(s.repo.InsertRegistrant(s.ctx, first))
	s.Require().NoError(s.repo.InsertRegistrant(s.ctx, second))
	s.Equal(models.RegistrantPending, first.Status, "inserted registrants are always pending")

	pending, err := s.repo.ListRegistrants(s.ctx, models.RegistrantPending)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal("Ana", pending[0].FirstName)

	s.Require().NoError(s.repo.SetRegistrantStatus(s.ctx, first.ID, models.RegistrantApproved, time.Now()))
	pending, err = s.repo.ListRegistrants(s.ctx, models.RegistrantPending)
	s.Require().NoError(err)
	s.Len(pending, 1)

	s.ErrorIs(s.repo.SetRegistrantStatus(s.ctx, 999999, models.RegistrantApproved, time.Now()), sentinel.ErrNotFound)
	_, err = s.repo.FindRegistrant(s.ctx, 999999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestSerialBucketLockSerializesCounters verifies that lock, count and
// insert inside one transaction never hand out the same serial twice.
func (s *Suite) TestSerialBucketLockSerializesCounters() {
	const workers = 20
	bucket := models.SerialBucket{Type: models.TypeCompletion}

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.repo.RunInTx(s.ctx, func(txCtx context.Context) error {
				if err := s.repo.LockSerialBucket(txCtx, bucket); err != nil {
					return err
				}
				n, err := s.repo.CountInBucket(txCtx, bucket)
				if err != nil {
					return err
				}
				return s.repo.Insert(txCtx, s.newCert(models.CohortModern, fmt.Sprintf("RMMO-SER-%02d", n+1)))
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.Require().NoError(err)
	}

	n, err := s.repo.CountInBucket(s.ctx, bucket)
	s.Require().NoError(err)
	s.Equal(workers, n)
}
