// Package httptransport assembles the portal's chi router: shared
// middleware, the public verification surface, session endpoints and the
// authenticated admin dashboard API.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authhandler "romportal/internal/auth/handler"
	authmodels "romportal/internal/auth/models"
	certhandler "romportal/internal/certificate/handler"
	platformmetrics "romportal/internal/platform/metrics"
	"romportal/pkg/platform/httputil"
	authmw "romportal/pkg/platform/middleware/auth"
	"romportal/pkg/platform/middleware/metadata"
	request "romportal/pkg/platform/middleware/request"
	"romportal/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Certificates   *certhandler.Handler
	Auth           *authhandler.Handler
	TokenValidator authmw.JWTValidator
	Revocations    authmw.TokenRevocationChecker
	Metrics        *platformmetrics.Metrics
	MetricsHandler http.Handler
	HealthChecks   map[string]HealthCheck
	RequestTimeout time.Duration
}

// NewRouter wires all endpoints.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(d.Logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/health", healthHandler(d.HealthChecks))
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(d.RequestTimeout))

		d.Certificates.RegisterPublic(r)
		d.Auth.Register(r)

		r.Group(func(admin chi.Router) {
			admin.Use(authmw.RequireAuth(d.TokenValidator, d.Revocations, d.Logger))
			adminOnly := authmw.RequireRole(d.Logger, authmodels.RoleAdmin.String())

			d.Certificates.RegisterAdmin(admin, adminOnly)
			admin.Group(func(owner chi.Router) {
				owner.Use(adminOnly)
				d.Auth.RegisterAdmin(owner)
			})
		})
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
