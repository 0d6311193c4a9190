package framework

import (
	"context"
	"errors"
	"io/ioutil"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/gravitational/uitest/driver"
	"github.com/gravitational/uitest/e2e/uimodel/actions"
	"github.com/gravitational/uitest/lib/browser"
	"github.com/gravitational/uitest/lib/browser/browsertest"
	"github.com/gravitational/uitest/lib/config"

	"github.com/cucumber/godog"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const document = `{
  "common": {"url": "https://example.com", "user": "common"},
  "tst": {"user": "tester"}
}`

func newSettings(t *testing.T, env config.Environ, params map[string]string) *Settings {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(document), 0644))
	settings, err := NewSettings(
		Options{ConfigFile: path, ReportDir: filepath.Join(dir, "reports")},
		config.Profile{Parameters: params},
		nil, env)
	require.NoError(t, err)
	return settings
}

type fakeLauncher struct {
	page     *browsertest.Page
	recorder *browsertest.Recorder
	err      error
	launches int32
}

func newFakeLauncher(page *browsertest.Page) *fakeLauncher {
	return &fakeLauncher{page: page}
}

func (l *fakeLauncher) Launch(ctx context.Context, target driver.Target) (*browser.Session, error) {
	atomic.AddInt32(&l.launches, 1)
	if l.err != nil {
		return nil, l.err
	}
	session, rec := browsertest.NewSession("session-1", l.page)
	l.recorder = rec
	return session, nil
}

func TestNewSettingsResolvesEnvironment(t *testing.T) {
	settings := newSettings(t, config.Environ{}, nil)
	require.Equal(t, "tst", settings.Environment)
	require.Equal(t, "https://example.com", settings.BaseURL)
	require.Equal(t, "tester", settings.Values.GetString("user", ""))
	require.Equal(t, []string{"features"}, settings.Paths)

	settings = newSettings(t, config.Environ{"BASE_URL_tst": "https://tst.example.com"}, nil)
	require.Equal(t, "https://tst.example.com", settings.BaseURL)
}

func TestNewSettingsFailsOnMissingEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(document), 0644))

	_, err := NewSettings(Options{ConfigFile: path}, config.Profile{}, nil, config.Environ{"ENV": "prd"})
	require.True(t, trace.IsNotFound(err), "expected not found, got %v", err)
}

func TestOptionsValidation(t *testing.T) {
	opts := Options{ArtifactBucket: "screenshots"}
	require.True(t, trace.IsBadParameter(opts.CheckAndSetDefaults()))

	opts = Options{ProgressDataset: "uitest"}
	require.True(t, trace.IsBadParameter(opts.CheckAndSetDefaults()))

	opts = Options{}
	require.NoError(t, opts.CheckAndSetDefaults())
	require.Equal(t, "features/data/config.json", opts.ConfigFile)
	require.Equal(t, "reports", opts.ReportDir)
}

func TestFormatsPlaceFilesInReportDir(t *testing.T) {
	settings := &Settings{
		Options: Options{ReportDir: "out"},
		Profile: config.Profile{Formats: []string{"pretty", "cucumber:cucumber.json", "junit:/tmp/junit.xml"}},
	}
	require.Equal(t, "pretty,cucumber:out/cucumber.json,junit:/tmp/junit.xml", settings.Formats())
}

func TestWorldLifecycle(t *testing.T) {
	settings := newSettings(t, config.Environ{}, nil)
	launcher := newFakeLauncher(browsertest.NewPage())
	w := NewWorld("lifecycle", settings, logrus.New())

	_, err := w.UI()
	require.True(t, trace.IsBadParameter(err))

	target, err := settings.Target()
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), launcher, *target))

	type pageObject struct{ ui *actions.UI }
	var built int
	factory := func(ui *actions.UI) *pageObject {
		built++
		return &pageObject{ui: ui}
	}
	first, err := GetPage(w, factory)
	require.NoError(t, err)
	second, err := GetPage(w, factory)
	require.NoError(t, err)
	require.True(t, first == second)
	require.Equal(t, 1, built)

	require.True(t, trace.IsCompareFailed(w.Start(context.Background(), launcher, *target)))

	require.NoError(t, w.Teardown())
	require.NoError(t, w.Teardown())
	require.Equal(t, []string{"page.close", "context.close", "browser.close"}, launcher.recorder.Events())

	_, err = w.Session()
	require.True(t, trace.IsCompareFailed(err))
	_, err = GetPage(w, factory)
	require.True(t, trace.IsCompareFailed(err))
}

func TestTeardownWithoutSession(t *testing.T) {
	settings := newSettings(t, config.Environ{}, nil)
	w := NewWorld("never started", settings, logrus.New())
	require.NoError(t, w.Teardown())
}

func newHooks(t *testing.T, settings *Settings, launcher driver.Launcher) (*Hooks, *[]godog.Attachment) {
	t.Helper()
	hooks, err := NewHooks(HooksConfig{Settings: settings, Launcher: launcher}, logrus.New())
	require.NoError(t, err)
	var attached []godog.Attachment
	hooks.attach = func(ctx context.Context, attachments ...godog.Attachment) context.Context {
		attached = append(attached, attachments...)
		return ctx
	}
	return hooks, &attached
}

func TestScreenshotIsTakenBeforeTeardown(t *testing.T) {
	settings := newSettings(t, config.Environ{}, nil)
	launcher := newFakeLauncher(browsertest.NewPage())
	hooks, attached := newHooks(t, settings, launcher)
	scenario := &godog.Scenario{Name: "Open the documentation"}
	step := &godog.Step{Text: "I navigate to Docs"}

	ctx, err := hooks.BeforeScenario(context.Background(), scenario)
	require.NoError(t, err)
	ctx, err = hooks.BeforeStep(ctx, step)
	require.NoError(t, err)
	_, hasDeadline := ctx.Deadline()
	require.True(t, hasDeadline)

	stepErr := errors.New(`element "h1" did not become visible within 5s`)
	ctx, err = hooks.AfterStep(ctx, step, godog.StepFailed, stepErr)
	require.NoError(t, err)
	require.NoError(t, ctx.Err())
	_, hasDeadline = ctx.Deadline()
	require.False(t, hasDeadline)

	_, err = hooks.AfterScenario(ctx, scenario, stepErr)
	require.NoError(t, err)

	require.Equal(t, []string{"screenshot", "page.close", "context.close", "browser.close"}, launcher.recorder.Events())
	require.Len(t, *attached, 1)
	require.Equal(t, "image/png", (*attached)[0].MediaType)
	require.Equal(t, browsertest.PNG, (*attached)[0].Body)

	files, err := filepath.Glob(filepath.Join(settings.ReportDir, "screenshots", "*.png"))
	require.NoError(t, err)
	require.Len(t, files, 1)
}

func TestPassedStepTakesNoScreenshot(t *testing.T) {
	settings := newSettings(t, config.Environ{}, nil)
	page := browsertest.NewPage()
	hooks, attached := newHooks(t, settings, newFakeLauncher(page))
	scenario := &godog.Scenario{Name: "passing"}
	step := &godog.Step{Text: "I open the Playwright site"}

	ctx, err := hooks.BeforeScenario(context.Background(), scenario)
	require.NoError(t, err)
	ctx, _ = hooks.BeforeStep(ctx, step)
	ctx, err = hooks.AfterStep(ctx, step, godog.StepPassed, nil)
	require.NoError(t, err)
	_, err = hooks.AfterScenario(ctx, scenario, nil)
	require.NoError(t, err)

	require.Equal(t, 0, page.Screenshots())
	require.Empty(t, *attached)
}

func TestTeardownErrorsDoNotFailScenario(t *testing.T) {
	settings := newSettings(t, config.Environ{}, nil)
	page := browsertest.NewPage()
	page.CloseErr = errors.New("target closed")
	launcher := newFakeLauncher(page)
	hooks, _ := newHooks(t, settings, launcher)
	scenario := &godog.Scenario{Name: "failing teardown"}

	ctx, err := hooks.BeforeScenario(context.Background(), scenario)
	require.NoError(t, err)
	_, err = hooks.AfterScenario(ctx, scenario, errors.New("step failed"))
	require.NoError(t, err)
	require.Equal(t, []string{"page.close", "context.close", "browser.close"}, launcher.recorder.Events())
}

func TestRemoteWithoutCredentialsFailsBeforeLaunch(t *testing.T) {
	settings := newSettings(t, config.Environ{}, map[string]string{"target": "browserstack"})
	launcher := newFakeLauncher(browsertest.NewPage())
	hooks, _ := newHooks(t, settings, launcher)

	_, err := hooks.BeforeScenario(context.Background(), &godog.Scenario{Name: "remote"})
	require.True(t, trace.IsBadParameter(err), "expected bad parameter, got %v", err)
	require.EqualValues(t, 0, atomic.LoadInt32(&launcher.launches))
}

func TestLaunchFailureLeavesNothingToTearDown(t *testing.T) {
	settings := newSettings(t, config.Environ{}, nil)
	launcher := newFakeLauncher(browsertest.NewPage())
	launcher.err = trace.ConnectionProblem(nil, "browser closed")
	hooks, _ := newHooks(t, settings, launcher)
	scenario := &godog.Scenario{Name: "no browser"}

	ctx, err := hooks.BeforeScenario(context.Background(), scenario)
	require.Error(t, err)
	_, err = hooks.AfterScenario(ctx, scenario, err)
	require.NoError(t, err)
}

func TestWorldFromEmptyContext(t *testing.T) {
	_, err := WorldFrom(context.Background())
	require.True(t, trace.IsNotFound(err))
}
