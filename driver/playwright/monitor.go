package playwright

import (
	"encoding/json"
	"strings"

	"github.com/gravitational/uitest/lib/defaults"

	"github.com/dustin/go-humanize"
	pw "github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// monitor logs console output, page errors and network traffic of a page
type monitor struct {
	log   logrus.FieldLogger
	limit int
}

func newMonitor(log logrus.FieldLogger) *monitor {
	return &monitor{log: log.WithField("monitor", true), limit: defaults.MonitorBodyLimit}
}

func (m *monitor) attach(page pw.Page) {
	page.OnConsole(func(msg pw.ConsoleMessage) {
		m.log.WithField("type", msg.Type()).Infof("console: %v", msg.Text())
	})
	page.OnPageError(func(err error) {
		m.log.WithError(err).Warn("page error")
	})
	page.OnRequest(func(req pw.Request) {
		entry := m.log.WithFields(logrus.Fields{
			"method": req.Method(),
			"url":    req.URL(),
		})
		if body, err := req.PostData(); err == nil && body != "" {
			entry = entry.WithField("body", m.preview(body))
		}
		entry.Info("request")
	})
	page.OnResponse(func(res pw.Response) {
		entry := m.log.WithFields(logrus.Fields{
			"status": res.Status(),
			"url":    res.URL(),
		})
		entry.WithField("body", m.responseBody(res)).Info("response")
	})
}

func (m *monitor) responseBody(res pw.Response) string {
	contentType := res.Headers()["content-type"]
	if !strings.Contains(contentType, "application/json") && !strings.Contains(contentType, "text/") {
		return "<non-text content>"
	}
	text, err := res.Text()
	if err != nil {
		return "<unreadable: " + err.Error() + ">"
	}
	if strings.Contains(contentType, "application/json") {
		text = prettyJSON(text)
	}
	return m.preview(text)
}

// preview truncates s to the configured limit
func (m *monitor) preview(s string) string {
	return truncate(s, m.limit)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated " + humanize.Bytes(uint64(len(s)-limit)) + ")"
}

func prettyJSON(text string) string {
	var v interface{}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return text
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return text
	}
	return string(out)
}
