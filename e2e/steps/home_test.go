package steps

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/gravitational/uitest/driver"
	"github.com/gravitational/uitest/e2e/framework"
	"github.com/gravitational/uitest/lib/browser"
	"github.com/gravitational/uitest/lib/browser/browsertest"
	"github.com/gravitational/uitest/lib/config"

	"github.com/cucumber/godog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type launcher struct {
	page *browsertest.Page
}

func (l launcher) Launch(ctx context.Context, target driver.Target) (*browser.Session, error) {
	session, _ := browsertest.NewSession("steps", l.page)
	return session, nil
}

func TestHomeScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(`{"common": {"url": "https://example.com"}, "tst": {}}`), 0644))
	settings, err := framework.NewSettings(
		framework.Options{ConfigFile: path, ReportDir: dir},
		config.Profile{}, nil, config.Environ{"ENV": "tst"})
	require.NoError(t, err)

	header := browsertest.NewElement("h1")
	header.WaitForFn = func(state browser.State, timeout time.Duration) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	}
	link := browsertest.NewElement("text=Get started")
	page := browsertest.NewPage().Add(header, link)

	hooks, err := framework.NewHooks(framework.HooksConfig{
		Settings: settings,
		Launcher: launcher{page: page},
	}, logrus.New())
	require.NoError(t, err)

	scenario := &godog.Scenario{Name: "Open the documentation from the home page"}
	ctx, err := hooks.BeforeScenario(context.Background(), scenario)
	require.NoError(t, err)

	require.NoError(t, openSite(ctx))
	require.Equal(t, []string{"https://example.com"}, page.Visited())
	require.Equal(t, 1, link.CallCount("Click"))

	require.NoError(t, navigateToDocs(ctx))

	_, err = hooks.AfterScenario(ctx, scenario, nil)
	require.NoError(t, err)

	require.Error(t, navigateToDocs(ctx))
}
