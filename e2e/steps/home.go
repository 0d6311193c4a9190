// Package steps binds scenario step text to page object operations
package steps

import (
	"context"

	"github.com/gravitational/uitest/e2e/framework"
	"github.com/gravitational/uitest/e2e/uimodel"

	"github.com/cucumber/godog"
	"github.com/gravitational/trace"
)

// Register adds every step definition to sc
func Register(sc *godog.ScenarioContext) {
	sc.Step(`^I open the Playwright site$`, openSite)
	sc.Step(`^I navigate to Docs$`, navigateToDocs)
}

func openSite(ctx context.Context) error {
	w, err := framework.WorldFrom(ctx)
	if err != nil {
		return trace.Wrap(err)
	}
	ui, err := w.UI()
	if err != nil {
		return trace.Wrap(err)
	}
	home, err := uimodel.Home(w)
	if err != nil {
		return trace.Wrap(err)
	}
	w.Infof("Environment is %v.", w.Environment)
	if err := ui.NavigateTo(ctx, w.BaseURL); err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(home.ClickOnHomePage(ctx))
}

func navigateToDocs(ctx context.Context) error {
	w, err := framework.WorldFrom(ctx)
	if err != nil {
		return trace.Wrap(err)
	}
	home, err := uimodel.Home(w)
	if err != nil {
		return trace.Wrap(err)
	}
	return trace.Wrap(home.ValidateHomePage(ctx))
}
