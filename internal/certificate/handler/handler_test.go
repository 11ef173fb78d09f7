package handler

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"romportal/internal/certificate/handler/mocks"
	"romportal/internal/certificate/models"
	dErrors "romportal/pkg/domain-errors"
	"romportal/pkg/testutil"
)

const baseURL = "https://portal.example.org"

type CertificateHandlerSuite struct {
	suite.Suite
	actor uuid.UUID
}

func TestCertificateHandlerSuite(t *testing.T) {
	suite.Run(t, new(CertificateHandlerSuite))
}

func (s *CertificateHandlerSuite) SetupSuite() {
	s.actor = uuid.New()
}

func (s *CertificateHandlerSuite) newHandler(t *testing.T) (*mocks.MockService, chi.Router) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)), baseURL)

	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Group(func(admin chi.Router) {
		admin.Use(testutil.AsActor(s.actor, "admin"))
		h.RegisterAdmin(admin)
	})
	return svc, r
}

func modernCert() *models.Certificate {
	return &models.Certificate{
		ID:            7,
		Cohort:        models.CohortModern,
		CertNumber:    "RMMO-26J03D27C01",
		IssuedTo:      "JUAN DELA CRUZ",
		Type:          models.TypeCompletion,
		IssuedBy:      "RMMO Alumni Advisory Council",
		DateIssued:    "2026-03-27",
		Validity:      models.ValidityValid,
		SchoolYear:    "2025-2026",
		YearGraduated: "2026",
	}
}

func (s *CertificateHandlerSuite) TestVerify() {
	s.T().Run("found certificate returns 200 with share link", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Verify(gomock.Any(), "26j03d27c01").
			Return(&models.VerificationResult{Found: true, IsModern: true, Certificate: modernCert()}, nil)

		rr := testutil.Do(t, router, http.MethodGet, "/verify?code=26j03d27c01", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		got := testutil.DecodeJSON[VerifyResponse](t, rr)
		assert.True(t, got.Found)
		assert.True(t, got.IsModern)
		require.NotNil(t, got.Certificate)
		assert.Equal(t, "https://portal.example.org/?c=26J03D27C01", got.Certificate.ShareLink)
	})

	s.T().Run("scanned link parameter c is accepted", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Verify(gomock.Any(), "26J03D27C01").Return(&models.VerificationResult{Found: false}, nil)

		rr := testutil.Do(t, router, http.MethodGet, "/verify?c=26J03D27C01", "")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	s.T().Run("miss returns 200 with found false only", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Verify(gomock.Any(), "nope").Return(&models.VerificationResult{Found: false}, nil)

		rr := testutil.Do(t, router, http.MethodGet, "/verify?code=nope", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"found":false}`, rr.Body.String())
	})

	s.T().Run("blank code returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Verify(gomock.Any(), "").Return(nil, dErrors.New(dErrors.CodeValidation, "code is required"))

		rr := testutil.Do(t, router, http.MethodGet, "/verify", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func (s *CertificateHandlerSuite) TestSubmitRegistrant() {
	valid := `{"first_name":"Juan","middle_name":"P","surname":"Dela Cruz","email":"Juan@Example.org","school_year":"2025-2026"}`

	s.T().Run("valid form returns 201 pending", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().SubmitRegistrant(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, r *models.Registrant) (*models.Registrant, error) {
				assert.Equal(t, "juan@example.org", r.Email)
				out := *r
				out.ID = 1
				out.Status = models.RegistrantPending
				return &out, nil
			})

		rr := testutil.Do(t, router, http.MethodPost, "/registrants", valid)

		assert.Equal(t, http.StatusCreated, rr.Code)
		got := testutil.DecodeJSON[RegistrantResponse](t, rr)
		assert.Equal(t, "PENDING", got.Status)
		assert.Equal(t, "JUAN P DELA CRUZ", got.FullName)
	})

	s.T().Run("middle name longer than initials returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().SubmitRegistrant(gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodPost, "/registrants",
			`{"first_name":"Juan","middle_name":"Pedro","surname":"Dela Cruz","school_year":"2025-2026"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := testutil.DecodeJSON[map[string]string](t, rr)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "middle_name must be at most 2 characters", body["error_description"])
	})

	s.T().Run("missing surname returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().SubmitRegistrant(gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodPost, "/registrants", `{"first_name":"Juan","school_year":"2025-2026"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func (s *CertificateHandlerSuite) TestIssue() {
	s.T().Run("valid modern request returns 201", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().IssueCertificate(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, cmd models.IssueCertificate) (*models.Certificate, error) {
				assert.Equal(t, models.CohortModern, cmd.Cohort)
				assert.Equal(t, models.TypeCompletion, cmd.Type)
				return modernCert(), nil
			})

		rr := testutil.Do(t, router, http.MethodPost, "/admin/certificates",
			`{"cohort":"Modern","first_name":"Juan","surname":"Dela Cruz","type":"Certificate of Completion","date_issued":"2026-03-27"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
		got := testutil.DecodeJSON[CertificateResponse](t, rr)
		assert.Equal(t, "RMMO-26J03D27C01", got.CertNumber)
		assert.True(t, got.IsModern)
	})

	s.T().Run("invalid json returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().IssueCertificate(gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodPost, "/admin/certificates", "{bad-json")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "bad_request", testutil.DecodeJSON[map[string]string](t, rr)["error"])
	})

	s.T().Run("unknown type returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().IssueCertificate(gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodPost, "/admin/certificates", `{"cohort":"modern","issued_to":"Ana","type":"Diploma"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	s.T().Run("malformed date returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().IssueCertificate(gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodPost, "/admin/certificates",
			`{"cohort":"modern","issued_to":"Ana","type":"Awards Certificate","date_issued":"03/27/2026"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	s.T().Run("duplicate number conflict returns 409", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().IssueCertificate(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "certificate number already exists"))

		rr := testutil.Do(t, router, http.MethodPost, "/admin/certificates",
			`{"cohort":"legacy","cert_number":"RMMO-2019-045","issued_to":"Ana","type":"Awards Certificate"}`)

		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})
}

func (s *CertificateHandlerSuite) TestUpdate() {
	s.T().Run("passes id and command", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().UpdateCertificate(gomock.Any(), int64(7), gomock.Any()).Return(modernCert(), nil)

		rr := testutil.Do(t, router, http.MethodPut, "/admin/certificates/7",
			`{"cohort":"modern","issued_to":"Juan Dela Cruz","type":"Certificate of Completion","validity":"revoked"}`)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	s.T().Run("non numeric id returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().UpdateCertificate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodPut, "/admin/certificates/abc", `{}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func (s *CertificateHandlerSuite) TestDelete() {
	s.T().Run("wrong password returns 401", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().DeleteCertificate(gomock.Any(), int64(7), models.CohortLegacy, "wrong").
			Return(dErrors.New(dErrors.CodeUnauthorized, "incorrect password"))

		rr := testutil.Do(t, router, http.MethodDelete, "/admin/certificates/7", `{"cohort":"legacy","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "incorrect password", testutil.DecodeJSON[map[string]string](t, rr)["error_description"])
	})

	s.T().Run("correct password returns 204", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().DeleteCertificate(gomock.Any(), int64(7), models.CohortLegacy, "secret").Return(nil)

		rr := testutil.Do(t, router, http.MethodDelete, "/admin/certificates/7", `{"cohort":"legacy","password":"secret"}`)

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	s.T().Run("missing password returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().DeleteCertificate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodDelete, "/admin/certificates/7", `{"cohort":"legacy"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func (s *CertificateHandlerSuite) TestQR() {
	s.T().Run("renders a png", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetCertificate(gomock.Any(), int64(7)).Return(modernCert(), nil)

		rr := testutil.Do(t, router, http.MethodGet, "/admin/certificates/7/qr", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
		assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))
	})

	s.T().Run("unknown certificate returns 404", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().GetCertificate(gomock.Any(), int64(8)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "certificate not found"))

		rr := testutil.Do(t, router, http.MethodGet, "/admin/certificates/8/qr", "")

		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})
}

func (s *CertificateHandlerSuite) TestList() {
	s.T().Run("parses filters", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ListCertificates(gomock.Any(), models.ListFilter{
			Cohort:     models.CohortModern,
			Query:      "juan",
			Validity:   models.ValidityValid,
			SortByYear: models.SortYearOldest,
		}).Return([]*models.Certificate{modernCert()}, nil)

		rr := testutil.Do(t, router, http.MethodGet, "/admin/certificates?cohort=modern&q=juan&validity=valid&sort=year_asc", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		got := testutil.DecodeJSON[CertificateListResponse](t, rr)
		assert.Equal(t, 1, got.Count)
	})

	s.T().Run("unknown cohort returns 400", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ListCertificates(gomock.Any(), gomock.Any()).Times(0)

		rr := testutil.Do(t, router, http.MethodGet, "/admin/certificates?cohort=future", "")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func (s *CertificateHandlerSuite) TestNextSerial() {
	svc, router := s.newHandler(s.T())
	svc.EXPECT().NextSerial(gomock.Any(), models.TypeAwards, "2026").Return(4, nil)

	rr := testutil.Do(s.T(), router, http.MethodGet, "/admin/serials/next?type=Awards+Certificate&year_graduated=2026", "")

	s.Equal(http.StatusOK, rr.Code)
	s.Equal(4, testutil.DecodeJSON[NextSerialResponse](s.T(), rr).NextSerial)
}

func (s *CertificateHandlerSuite) TestRegistrantsAndPromote() {
	s.T().Run("lists pending by default", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().ListRegistrants(gomock.Any(), models.RegistrantStatus("")).
			Return([]*models.Registrant{{ID: 1, FirstName: "Ana", Surname: "Santos", Status: models.RegistrantPending}}, nil)

		rr := testutil.Do(t, router, http.MethodGet, "/admin/registrants", "")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 1, testutil.DecodeJSON[RegistrantListResponse](t, rr).Count)
	})

	s.T().Run("promote returns 201 with the certificate", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Promote(gomock.Any(), int64(1), models.PromoteRegistrant{Type: models.TypeCompletion}).
			Return(modernCert(), nil)

		rr := testutil.Do(t, router, http.MethodPost, "/admin/registrants/1/promote", `{"type":"Certificate of Completion"}`)

		assert.Equal(t, http.StatusCreated, rr.Code)
	})

	s.T().Run("already approved returns 409", func(t *testing.T) {
		svc, router := s.newHandler(t)
		svc.EXPECT().Promote(gomock.Any(), int64(1), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "registrant is already approved"))

		rr := testutil.Do(t, router, http.MethodPost, "/admin/registrants/1/promote", `{"type":"Certificate of Completion"}`)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}
