package xlog

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"runtime"

	"github.com/gravitational/trace"

	cl "cloud.google.com/go/logging"
	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
)

const (
	statusTopic = "uitest"
	maxStack    = 10
)

var levelMap = map[logrus.Level]cl.Severity{
	logrus.PanicLevel: cl.Emergency,
	logrus.FatalLevel: cl.Critical,
	logrus.ErrorLevel: cl.Error,
	logrus.WarnLevel:  cl.Warning,
	logrus.InfoLevel:  cl.Info,
	logrus.DebugLevel: cl.Debug,
}

// GCLClient ships logs to Google Cloud Logging and publishes
// scenario results on a pub/sub topic
type GCLClient struct {
	gclClient    *cl.Client
	pubsubClient *pubsub.Client
	topic        *pubsub.Topic
	ctx          context.Context
}

// Close flushes pending log entries and releases the clients
func (c *GCLClient) Close() {
	c.gclClient.Close()
	c.topic.Stop()
	c.pubsubClient.Close()
}

// GCLHook is a logrus hook writing entries to a cloud logger
type GCLHook struct {
	log          *cl.Logger
	commonFields logrus.Fields
}

// NewGCLClient tries to establish connection to google cloud logger using default authentication method and project ID
func NewGCLClient(ctx context.Context, projectID string) (client *GCLClient, err error) {
	if projectID == "" {
		return nil, trace.BadParameter("no cloud logging project ID provided")
	}

	client = &GCLClient{ctx: ctx}

	client.gclClient, err = cl.NewClient(ctx, projectID)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	err = client.gclClient.Ping(ctx)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	client.pubsubClient, err = pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	client.topic = client.pubsubClient.Topic(statusTopic)
	ok, err := client.topic.Exists(ctx)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if ok {
		return client, nil
	}

	client.topic, err = client.pubsubClient.CreateTopic(ctx, statusTopic)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return client, nil
}

// Context returns context instance this client was initialized with
// as it may survive local function context which is i.e. cancelled or timed out
func (c *GCLClient) Context() context.Context {
	return c.ctx
}

// Hook returns logrus log hook
func (c *GCLClient) Hook(name string, fields logrus.Fields) *GCLHook {
	return &GCLHook{
		log:          c.gclClient.Logger(name, cl.CommonLabels(labels(fields))),
		commonFields: fields,
	}
}

// ReportScenario publishes the scenario result on the status topic
func (c *GCLClient) ReportScenario(ctx context.Context, result ScenarioResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return trace.Wrap(err)
	}
	res := c.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"status": result.Status, "environment": result.Environment},
	})
	_, err = res.Get(ctx)
	return trace.Wrap(err)
}

func labels(fields logrus.Fields) map[string]string {
	labels := make(map[string]string, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case string:
			labels[k] = val
		default:
			labels[k] = ToJSON(v)
		}
	}
	return labels
}

// ToJSON formats obj as JSON, falling back to %v
func ToJSON(obj interface{}) string {
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Sprintf("%v", obj)
	}
	return string(data)
}

// Fire fires the event to the GCL
func (hook *GCLHook) Fire(e *logrus.Entry) error {
	hook.log.Log(cl.Entry{
		Payload:  hook.payload(e),
		Severity: severity(e.Level),
	})
	return nil
}

func (hook *GCLHook) payload(e *logrus.Entry) logrus.Fields {
	p := e.WithFields(logrus.Fields{"stack": where(maxStack), "message": e.Message}).Data
	for key := range hook.commonFields {
		delete(p, key)
	}
	for key, v := range p {
		if err, ok := v.(error); ok {
			p[key] = trace.UserMessage(err)
		}
	}
	return p
}

func severity(level logrus.Level) cl.Severity {
	severity, ok := levelMap[level]
	if !ok {
		return cl.Default
	}
	return severity
}

// Levels returns logging levels supported by logrus
func (hook *GCLHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

var exclude = regexp.MustCompile(`github\.com/sirupsen/logrus|/usr/local/go/src|uitest/lib/xlog/`)

func where(max int) (stack []string) {
	for i := 3; i <= 10 && len(stack) < max; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if !exclude.MatchString(file) {
			stack = append(stack, fmt.Sprintf("%s:%d", shortPath(file), line))
		}
	}
	return stack
}

var shortPackage = regexp.MustCompile(`(\/[a-zA-Z\_]+){1,3}\.go$`)

func shortPath(p string) string {
	if s := shortPackage.FindString(p); s != "" {
		return s
	}
	return p
}
