//go:build e2e

// Package e2e runs Gherkin scenarios against a running portal. Start the
// server with --bootstrap-admin-email and --bootstrap-admin-password matching
// E2E_ADMIN_EMAIL and E2E_ADMIN_PASSWORD, then run go test -tags e2e ./e2e.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// TestContext carries per-scenario HTTP state shared by every step package.
type TestContext struct {
	baseURL       string
	adminEmail    string
	adminPassword string
	client        *http.Client

	lastStatus int
	lastBody   []byte

	accessToken string
	certNumber  string
	certID      int64
}

// NewTestContext reads the target and credentials from the environment.
func NewTestContext() *TestContext {
	return &TestContext{
		baseURL:       envOr("E2E_BASE_URL", "http://localhost:8080"),
		adminEmail:    envOr("E2E_ADMIN_EMAIL", "admin@example.org"),
		adminPassword: envOr("E2E_ADMIN_PASSWORD", "change-me-please"),
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Reset clears state between scenarios.
func (tc *TestContext) Reset() {
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.accessToken = ""
	tc.certNumber = ""
	tc.certID = 0
}

func (tc *TestContext) do(ctx context.Context, method, path string, body any, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, tc.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) authHeaders() map[string]string {
	if tc.accessToken == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + tc.accessToken}
}

func (tc *TestContext) GET(ctx context.Context, path string) error {
	return tc.do(ctx, http.MethodGet, path, nil, tc.authHeaders())
}

func (tc *TestContext) POST(ctx context.Context, path string, body any) error {
	return tc.do(ctx, http.MethodPost, path, body, tc.authHeaders())
}

func (tc *TestContext) DELETE(ctx context.Context, path string, body any) error {
	return tc.do(ctx, http.MethodDelete, path, body, tc.authHeaders())
}

func (tc *TestContext) Status() int { return tc.lastStatus }

// GetResponseField returns a top-level field of the last JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var body map[string]any
	if err := json.Unmarshal(tc.lastBody, &body); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %w", err)
	}
	v, ok := body[field]
	if !ok {
		return nil, fmt.Errorf("field %q not in response %s", field, tc.lastBody)
	}
	return v, nil
}

func (tc *TestContext) Body() []byte { return tc.lastBody }

func (tc *TestContext) AdminCredentials() (string, string) { return tc.adminEmail, tc.adminPassword }

func (tc *TestContext) GetAccessToken() string      { return tc.accessToken }
func (tc *TestContext) SetAccessToken(token string) { tc.accessToken = token }
func (tc *TestContext) GetCertNumber() string       { return tc.certNumber }
func (tc *TestContext) GetCertID() int64            { return tc.certID }

func (tc *TestContext) SetCertificate(id int64, number string) {
	tc.certID, tc.certNumber = id, number
}
