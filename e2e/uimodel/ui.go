package uimodel

import (
	"github.com/gravitational/uitest/e2e/framework"
	"github.com/gravitational/uitest/e2e/uimodel/home"

	"github.com/gravitational/trace"
)

// Home returns the home page object of the scenario
func Home(w *framework.World) (*home.Page, error) {
	page, err := framework.GetPage(w, home.New)
	return page, trace.Wrap(err)
}
