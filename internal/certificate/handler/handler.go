package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"romportal/internal/certificate/certid"
	"romportal/internal/certificate/models"
	dErrors "romportal/pkg/domain-errors"
	"romportal/pkg/platform/httputil"
	"romportal/pkg/requestcontext"
)

const qrSize = 256

// Service defines the certificate operations exposed over HTTP.
type Service interface {
	IssueCertificate(ctx context.Context, cmd models.IssueCertificate) (*models.Certificate, error)
	UpdateCertificate(ctx context.Context, id int64, cmd models.UpdateCertificate) (*models.Certificate, error)
	DeleteCertificate(ctx context.Context, id int64, cohort models.Cohort, password string) error
	GetCertificate(ctx context.Context, id int64) (*models.Certificate, error)
	ListCertificates(ctx context.Context, filter models.ListFilter) ([]*models.Certificate, error)
	NextSerial(ctx context.Context, certType models.CertificateType, yearGraduated string) (int, error)
	Verify(ctx context.Context, raw string) (*models.VerificationResult, error)
	SubmitRegistrant(ctx context.Context, r *models.Registrant) (*models.Registrant, error)
	ListRegistrants(ctx context.Context, status models.RegistrantStatus) ([]*models.Registrant, error)
	Promote(ctx context.Context, registrantID int64, cmd models.PromoteRegistrant) (*models.Certificate, error)
}

// Handler wires certificate, registrant and verification endpoints to the
// certificate service.
type Handler struct {
	service Service
	logger  *slog.Logger
	baseURL string
}

// New constructs a certificate handler. baseURL prefixes share links.
func New(service Service, logger *slog.Logger, baseURL string) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		baseURL: baseURL,
	}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/verify", h.HandleVerify)
	r.Post("/registrants", h.HandleSubmitRegistrant)
}

// RegisterAdmin mounts the dashboard endpoints. The caller applies
// authentication; deleteGuard wraps only the delete route.
func (h *Handler) RegisterAdmin(r chi.Router, deleteGuard ...func(http.Handler) http.Handler) {
	r.Get("/admin/certificates", h.HandleList)
	r.Post("/admin/certificates", h.HandleIssue)
	r.Put("/admin/certificates/{id}", h.HandleUpdate)
	r.With(deleteGuard...).Delete("/admin/certificates/{id}", h.HandleDelete)
	r.Get("/admin/certificates/{id}/qr", h.HandleQR)
	r.Get("/admin/serials/next", h.HandleNextSerial)
	r.Get("/admin/registrants", h.HandleListRegistrants)
	r.Post("/admin/registrants/{id}/promote", h.HandlePromote)
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "id must be a positive integer")
	}
	return id, nil
}

// HandleVerify handles GET /verify?code=... . The code may be a bare code or
// a scanned share link.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	raw := r.URL.Query().Get("code")
	if raw == "" {
		raw = r.URL.Query().Get("c")
	}
	result, err := h.service.Verify(ctx, raw)
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "verification failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	resp := VerifyResponse{Found: result.Found}
	if result.Found {
		resp.IsModern = result.IsModern
		resp.Certificate = toCertificateResponse(result.Certificate, h.baseURL)
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleSubmitRegistrant handles POST /registrants.
func (h *Handler) HandleSubmitRegistrant(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegistrantRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	reg, err := h.service.SubmitRegistrant(ctx, req.toModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "registrant submitted",
		"request_id", requestID,
		"registrant_id", reg.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, toRegistrantResponse(reg))
}

// HandleList handles GET /admin/certificates with optional cohort, q, type,
// validity and sort query parameters.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	filter := models.ListFilter{Query: q.Get("q")}
	if raw := q.Get("cohort"); raw != "" {
		cohort, err := models.ParseCohort(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Cohort = cohort
	}
	if raw := q.Get("type"); raw != "" {
		t, err := models.ParseCertificateType(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Type = t
	}
	if raw := q.Get("validity"); raw != "" {
		v, err := models.ParseValidity(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Validity = v
	}
	switch sort := models.SortOrder(q.Get("sort")); sort {
	case models.SortNone, models.SortYearNewest, models.SortYearOldest:
		filter.SortByYear = sort
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "sort must be one of [year_desc year_asc]"))
		return
	}

	certs, err := h.service.ListCertificates(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list certificates",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := CertificateListResponse{
		Certificates: make([]*CertificateResponse, 0, len(certs)),
		Count:        len(certs),
	}
	for _, c := range certs {
		resp.Certificates = append(resp.Certificates, toCertificateResponse(c, h.baseURL))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleIssue handles POST /admin/certificates.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cert, err := h.service.IssueCertificate(ctx, req.toCommand())
	if err != nil {
		h.logger.WarnContext(ctx, "certificate issue failed",
			"request_id", requestID,
			"cohort", req.Cohort,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "certificate created",
		"request_id", requestID,
		"user_id", requestcontext.UserID(ctx),
		"cert_number", cert.CertNumber,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toCertificateResponse(cert, h.baseURL))
}

// HandleUpdate handles PUT /admin/certificates/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cert, err := h.service.UpdateCertificate(ctx, id, req.toCommand())
	if err != nil {
		h.logger.WarnContext(ctx, "certificate update failed",
			"request_id", requestID,
			"certificate_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCertificateResponse(cert, h.baseURL))
}

// HandleDelete handles DELETE /admin/certificates/{id}. The body carries the
// cohort and the admin's password.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DeleteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.DeleteCertificate(ctx, id, models.Cohort(req.Cohort), req.Password); err != nil {
		h.logger.WarnContext(ctx, "certificate delete failed",
			"request_id", requestID,
			"user_id", requestcontext.UserID(ctx),
			"certificate_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "certificate deleted",
		"request_id", requestID,
		"user_id", requestcontext.UserID(ctx),
		"certificate_id", id,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleQR handles GET /admin/certificates/{id}/qr and renders the share
// link as a PNG.
func (h *Handler) HandleQR(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cert, err := h.service.GetCertificate(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	png, err := qrcode.Encode(certid.ShareLink(h.baseURL, cert.CertNumber), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to render qr code",
			"request_id", requestcontext.RequestID(ctx),
			"certificate_id", id,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render qr code"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="`+strings.TrimPrefix(cert.CertNumber, certid.Prefix)+`.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// HandleNextSerial handles GET /admin/serials/next?type=...&year_graduated=... .
func (h *Handler) HandleNextSerial(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	t, err := models.ParseCertificateType(q.Get("type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	year := strings.TrimSpace(q.Get("year_graduated"))
	next, err := h.service.NextSerial(ctx, t, year)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NextSerialResponse{
		Type:          string(t),
		YearGraduated: year,
		NextSerial:    next,
	})
}

// HandleListRegistrants handles GET /admin/registrants[?status=].
func (h *Handler) HandleListRegistrants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := models.RegistrantStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	switch status {
	case "", models.RegistrantPending, models.RegistrantApproved:
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "status must be one of [PENDING APPROVED]"))
		return
	}

	regs, err := h.service.ListRegistrants(ctx, status)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list registrants",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	resp := RegistrantListResponse{
		Registrants: make([]*RegistrantResponse, 0, len(regs)),
		Count:       len(regs),
	}
	for _, reg := range regs {
		resp.Registrants = append(resp.Registrants, toRegistrantResponse(reg))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandlePromote handles POST /admin/registrants/{id}/promote.
func (h *Handler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[PromoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	cert, err := h.service.Promote(ctx, id, req.toCommand())
	if err != nil {
		h.logger.WarnContext(ctx, "registrant promotion failed",
			"request_id", requestID,
			"registrant_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCertificateResponse(cert, h.baseURL))
}
