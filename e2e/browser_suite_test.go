package e2e

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gravitational/uitest/driver"
	"github.com/gravitational/uitest/driver/playwright"
	"github.com/gravitational/uitest/e2e/uimodel/actions"
	"github.com/gravitational/uitest/lib/browser"
	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/loc"

	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestBrowser(t *testing.T) {
	if !*runBrowser {
		t.Skip("browser suite disabled, pass -browser to enable")
	}
	RegisterFailHandler(Fail)
	RunSpecs(t, "UI actions")
}

const fixture = `<!doctype html>
<html>
<head><title>fixture</title></head>
<body>
  <h1>Fixture</h1>
  <input id="name" value="initial">
  <button id="enable" onclick="document.getElementById('late').disabled = false">enable</button>
  <button id="late" disabled>late</button>
  <select id="color">
    <option value="r">Red</option>
    <option value="g">Green</option>
  </select>
  <div id="delayed" style="display:none">ready</div>
  <script>setTimeout(function() { document.getElementById('delayed').style.display = 'block' }, 300)</script>
</body>
</html>`

var _ = Describe("UI actions", func() {
	var (
		server   *httptest.Server
		launcher *playwright.Launcher
		session  *browser.Session
		ui       *actions.UI
		ctx      = context.Background()
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, fixture)
		}))
		var err error
		launcher, err = playwright.New(playwright.Config{Headless: true}, logrus.StandardLogger())
		Expect(err).NotTo(HaveOccurred())
		session, err = launcher.Launch(ctx, driver.Target{
			Mode:   constants.TargetLocal,
			Engine: constants.EngineChromium,
		})
		Expect(err).NotTo(HaveOccurred())
		ui = actions.New(session.Page, logrus.StandardLogger())
		Expect(ui.NavigateTo(ctx, server.URL)).To(Succeed())
	})

	AfterEach(func() {
		if session != nil {
			Expect(session.Close(logrus.StandardLogger())).To(Succeed())
		}
		if launcher != nil {
			Expect(launcher.Stop()).To(Succeed())
		}
		server.Close()
	})

	It("replaces input values", func() {
		Expect(ui.SetValue(ctx, loc.Selector("#name"), "uitest")).To(Succeed())
		Expect(ui.SetValue(ctx, loc.Selector("#name"), "uitest")).To(Succeed())
		Expect(ui.Type(ctx, loc.Selector("#name"), "!", false)).To(Succeed())
	})

	It("waits for delayed elements", func() {
		Expect(ui.WaitForVisible(ctx, loc.Selector("#delayed"), 5*time.Second)).To(Succeed())
		Expect(ui.WaitForText(ctx, loc.Selector("#delayed"), actions.ExactText("ready"))).To(Succeed())
	})

	It("waits for elements to become enabled", func() {
		Expect(ui.WaitForDisabled(ctx, loc.Selector("#late"))).To(Succeed())
		Expect(ui.Click(ctx, loc.Selector("#enable"))).To(Succeed())
		Expect(ui.WaitForEnabled(ctx, loc.Selector("#late"))).To(Succeed())
	})

	It("selects options", func() {
		Expect(ui.SelectByLabel(ctx, loc.Selector("#color"), "Green")).To(Succeed())
		Expect(ui.SelectByIndex(ctx, loc.Selector("#color"), 0)).To(Succeed())
		err := ui.SelectByIndex(ctx, loc.Selector("#color"), 5)
		Expect(trace.IsNotFound(err)).To(BeTrue())
	})

	It("times out on missing elements", func() {
		err := ui.WaitForVisible(ctx, loc.Selector("#missing"), 200*time.Millisecond)
		Expect(trace.IsLimitExceeded(err)).To(BeTrue())
		Expect(ui.IsVisible(ctx, loc.Selector("#missing"))).To(BeFalse())
	})

	It("takes screenshots", func() {
		data, err := session.Page.Screenshot()
		Expect(err).NotTo(HaveOccurred())
		Expect(data).NotTo(BeEmpty())
		Expect(ui.WaitForURL(ctx, regexp.MustCompile(`^http://127\.0\.0\.1`))).To(Succeed())
	})
})
