package steps

import "github.com/cucumber/godog"

func initializeTestSteps(ctx *godog.ScenarioContext) {
	// Then steps
	ctx.Step(`^the basket should contain <b>&"fresh"</b> cukes$`, func() error { return nil })
}
