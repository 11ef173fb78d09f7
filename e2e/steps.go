//go:build e2e

package e2e

import (
	"github.com/cucumber/godog"

	"romportal/e2e/steps/auth"
	"romportal/e2e/steps/certificate"
	"romportal/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	auth.RegisterSteps(ctx, tc)
	certificate.RegisterSteps(ctx, tc)
}
