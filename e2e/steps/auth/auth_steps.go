//go:build e2e

package auth

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(ctx context.Context, path string, body any) error
	GET(ctx context.Context, path string) error
	GetResponseField(field string) (any, error)
	AdminCredentials() (email, password string)
	GetAccessToken() string
	SetAccessToken(token string)
}

// RegisterSteps registers dashboard session step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &authSteps{tc: tc}

	ctx.Step(`^I am signed in as the bootstrap admin$`, steps.signInAsAdmin)
	ctx.Step(`^I sign in with email "([^"]*)" and password "([^"]*)"$`, steps.signIn)
	ctx.Step(`^I sign out$`, steps.signOut)
	ctx.Step(`^I request my profile$`, steps.me)
	ctx.Step(`^I use the invalid token "([^"]*)"$`, steps.useToken)
}

type authSteps struct {
	tc TestContext
}

func (s *authSteps) signInAsAdmin(ctx context.Context) error {
	email, password := s.tc.AdminCredentials()
	if err := s.signIn(ctx, email, password); err != nil {
		return err
	}
	token, err := s.tc.GetResponseField("access_token")
	if err != nil {
		return fmt.Errorf("bootstrap admin sign-in failed: %w", err)
	}
	s.tc.SetAccessToken(token.(string))
	return nil
}

func (s *authSteps) signIn(ctx context.Context, email, password string) error {
	return s.tc.POST(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

func (s *authSteps) signOut(ctx context.Context) error {
	return s.tc.POST(ctx, "/auth/logout", nil)
}

func (s *authSteps) me(ctx context.Context) error {
	return s.tc.GET(ctx, "/auth/me")
}

func (s *authSteps) useToken(_ context.Context, token string) error {
	s.tc.SetAccessToken(token)
	return nil
}
