package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	authmodels "romportal/internal/auth/models"
	"romportal/internal/platform/config"
)

// AppSuite drives the fully wired memory-driver process through its HTTP
// surface: sign in, issue, verify, sign out.
type AppSuite struct {
	suite.Suite
	app    *app
	server *httptest.Server
}

func TestAppSuite(t *testing.T) {
	suite.Run(t, new(AppSuite))
}

func (s *AppSuite) SetupTest() {
	cfg := config.Default()
	cfg.StoreDriver = config.DriverMemory
	cfg.PublicBaseURL = "https://verify.example.org"
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := newApp(context.Background(), cfg, logger, prometheus.NewRegistry())
	s.Require().NoError(err)
	applied, err := a.migrate(context.Background())
	s.Require().NoError(err)
	s.Empty(applied)

	s.app = a
	s.server = httptest.NewServer(a.router())
}

func (s *AppSuite) TearDownTest() {
	s.server.Close()
	s.app.Close()
}

func (s *AppSuite) do(method, path, token string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *AppSuite) signIn(email, password string) string {
	resp := s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	session := decode[struct {
		AccessToken string `json:"access_token"`
	}](s.T(), resp)
	s.Require().NotEmpty(session.AccessToken)
	return session.AccessToken
}

func (s *AppSuite) TestIssueAndVerify() {
	ctx := context.Background()
	s.Require().NoError(s.app.bootstrapAdmin(ctx, "Owner@Example.org", "correct-horse"))
	token := s.signIn("owner@example.org", "correct-horse")

	resp := s.do(http.MethodPost, "/admin/certificates", token, map[string]string{
		"cohort":      "modern",
		"first_name":  "Juan",
		"surname":     "Dela Cruz",
		"type":        "Certificate of Completion",
		"date_issued": "2026-03-15",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	cert := decode[struct {
		CertNumber string `json:"cert_number"`
		IssuedTo   string `json:"issued_to"`
		ShareLink  string `json:"share_link"`
	}](s.T(), resp)
	s.Equal("RMMO-26J03D15C01", cert.CertNumber)
	s.Equal("JUAN DELA CRUZ", cert.IssuedTo)
	s.Equal("https://verify.example.org/?c=26J03D15C01", cert.ShareLink)

	s.Run("verify by scanned share link", func() {
		resp := s.do(http.MethodGet, "/verify?code="+url.QueryEscape(cert.ShareLink), "", nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		out := decode[struct {
			Found    bool `json:"found"`
			IsModern bool `json:"is_modern"`
		}](s.T(), resp)
		s.True(out.Found)
		s.True(out.IsModern)
	})

	s.Run("verify unknown code is a miss, not an error", func() {
		resp := s.do(http.MethodGet, "/verify?c=nope", "", nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		out := decode[map[string]any](s.T(), resp)
		s.Equal(false, out["found"])
		s.NotContains(out, "certificate")
	})

	s.Run("signed out token is rejected", func() {
		resp := s.do(http.MethodPost, "/auth/logout", token, nil)
		s.Equal(http.StatusNoContent, resp.StatusCode)
		resp.Body.Close()

		resp = s.do(http.MethodGet, "/admin/certificates", token, nil)
		s.Equal(http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	})
}

func (s *AppSuite) TestBootstrapAdminOnlyOnce() {
	ctx := context.Background()
	s.Require().NoError(s.app.bootstrapAdmin(ctx, "first@example.org", "password-one"))
	s.Require().NoError(s.app.bootstrapAdmin(ctx, "second@example.org", "password-two"))

	has, err := s.app.auth.HasAdmins(ctx)
	s.Require().NoError(err)
	s.True(has)

	resp := s.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "second@example.org",
		"password": "password-two",
	})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *AppSuite) TestEncoderCannotManageUsers() {
	ctx := context.Background()
	_, err := s.app.auth.CreateAdmin(ctx, authmodels.CreateAdmin{
		Email:    "encoder@example.org",
		Password: "encoder-pass",
		Role:     authmodels.RoleEncoder,
	})
	s.Require().NoError(err)
	token := s.signIn("encoder@example.org", "encoder-pass")

	resp := s.do(http.MethodPost, "/admin/users", token, map[string]string{
		"email":    "another@example.org",
		"password": "another-pass",
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func (s *AppSuite) TestHealthAndMetrics() {
	resp := s.do(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodGet, "/metrics", "", nil)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	assert.Contains(s.T(), string(body), "romportal_http_requests_total")
}
