package checkout

import "github.com/cucumber/godog"

const payPattern = `^I pay (\d+) euros?$`

func InitializeCheckoutSteps(ctx *godog.ScenarioContext) {
	// When steps
	ctx.Step(payPattern, pay)
}

func pay(amount int) error { return nil }
