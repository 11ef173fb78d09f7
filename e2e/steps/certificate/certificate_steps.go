//go:build e2e

package certificate

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(ctx context.Context, path string, body any) error
	GET(ctx context.Context, path string) error
	DELETE(ctx context.Context, path string, body any) error
	GetResponseField(field string) (any, error)
	AdminCredentials() (email, password string)
	GetCertNumber() string
	GetCertID() int64
	SetCertificate(id int64, number string)
}

// RegisterSteps registers issuance and verification step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &certificateSteps{tc: tc}

	ctx.Step(`^I issue a modern "([^"]*)" for "([^"]*)" "([^"]*)" dated "([^"]*)"$`, steps.issueModern)
	ctx.Step(`^I issue a legacy "([^"]*)" numbered "([^"]*)" to "([^"]*)"$`, steps.issueLegacy)
	ctx.Step(`^I save the issued certificate$`, steps.saveIssued)
	ctx.Step(`^I verify the issued certificate$`, steps.verifyIssued)
	ctx.Step(`^I verify the issued certificate by its share link$`, steps.verifyByShareLink)
	ctx.Step(`^I verify code "([^"]*)"$`, steps.verifyCode)
	ctx.Step(`^I delete the issued certificate with my password$`, steps.deleteIssued)
}

type certificateSteps struct {
	tc        TestContext
	shareLink string
	cohort    string
}

func (s *certificateSteps) issueModern(ctx context.Context, certType, first, surname, date string) error {
	s.cohort = "modern"
	return s.tc.POST(ctx, "/admin/certificates", map[string]string{
		"cohort":      "modern",
		"type":        certType,
		"first_name":  first,
		"surname":     surname,
		"date_issued": date,
	})
}

func (s *certificateSteps) issueLegacy(ctx context.Context, certType, number, issuedTo string) error {
	s.cohort = "legacy"
	return s.tc.POST(ctx, "/admin/certificates", map[string]string{
		"cohort":      "legacy",
		"type":        certType,
		"cert_number": number,
		"issued_to":   issuedTo,
	})
}

func (s *certificateSteps) saveIssued(context.Context) error {
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	number, err := s.tc.GetResponseField("cert_number")
	if err != nil {
		return err
	}
	link, err := s.tc.GetResponseField("share_link")
	if err != nil {
		return err
	}
	s.shareLink = fmt.Sprint(link)
	s.tc.SetCertificate(int64(id.(float64)), fmt.Sprint(number))
	return nil
}

func (s *certificateSteps) verifyIssued(ctx context.Context) error {
	return s.verifyCode(ctx, s.tc.GetCertNumber())
}

func (s *certificateSteps) verifyByShareLink(ctx context.Context) error {
	return s.verifyCode(ctx, s.shareLink)
}

func (s *certificateSteps) verifyCode(ctx context.Context, code string) error {
	return s.tc.GET(ctx, "/verify?code="+url.QueryEscape(code))
}

func (s *certificateSteps) deleteIssued(ctx context.Context) error {
	_, password := s.tc.AdminCredentials()
	return s.tc.DELETE(ctx, fmt.Sprintf("/admin/certificates/%d", s.tc.GetCertID()), map[string]string{
		"cohort":   s.cohort,
		"password": password,
	})
}
