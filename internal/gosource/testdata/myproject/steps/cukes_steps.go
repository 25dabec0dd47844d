package steps

import (
	"context"

	"github.com/cucumber/godog"
)

type cukes struct {
	count int
}

// InitializeCukeSteps registers the cucumber basket steps.
func InitializeCukeSteps(ctx *godog.ScenarioContext) {
	c := &cukes{}

	ctx.Given(`^I have (\d+) cukes$`, c.iHaveCukes)
	ctx.When(`^I eat (\d+)$`, c.iEat)
	ctx.Then(`^I should have (\d+) left$`, c.iShouldHaveLeft)
}

func (c *cukes) iHaveCukes(ctx context.Context, n int) error { c.count = n; return nil }
func (c *cukes) iEat(n int) error                            { c.count -= n; return nil }
func (c *cukes) iShouldHaveLeft(n int) error                 { return nil }
