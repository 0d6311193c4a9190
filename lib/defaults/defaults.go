package defaults

import "time"

const (
	// RetryDelay defines the interval between retry attempts
	RetryDelay = 5 * time.Second
	// RetryAttempts defines the maximum number of retry attempts
	RetryAttempts = 100
	// RetryMaxDelay caps the exponential delay between retry attempts
	RetryMaxDelay = 30 * time.Second

	// ActionTimeout bounds the implicit waits performed by click/type/fill verbs
	ActionTimeout = 30 * time.Second
	// WaitTimeout is the default bound for explicit wait verbs
	WaitTimeout = 5 * time.Second
	// PollInterval defines the frequency of polling attempts for conditions
	// the engine cannot wait on directly (enabled, disabled, text)
	PollInterval = 100 * time.Millisecond
	// LoadStateTimeout is the default bound for page load state waits
	LoadStateTimeout = 10 * time.Second

	// ClickRetries is the number of additional click attempts made by ClickWithRetry
	ClickRetries = 2
	// ClickRetryDelay is the fixed pause between click attempts
	ClickRetryDelay = 300 * time.Millisecond

	// StepTimeout bounds a single scenario step
	StepTimeout = 50 * time.Second
	// ScenarioTimeout bounds a whole scenario
	ScenarioTimeout = 60 * time.Second
	// Concurrency is the default number of parallel scenario worker slots
	Concurrency = 2

	// RemoteConnectTimeout bounds the total time spent connecting to a remote device farm
	RemoteConnectTimeout = 30 * time.Second
	// RemoteConnectInitialDelay is the first backoff interval between connect attempts
	RemoteConnectInitialDelay = 500 * time.Millisecond
	// RemoteConnectAttemptTimeout caps a single connect attempt so that
	// several attempts fit into RemoteConnectTimeout
	RemoteConnectAttemptTimeout = 10 * time.Second

	// TeardownTimeout bounds each close call during session teardown
	TeardownTimeout = 10 * time.Second

	// MonitorBodyLimit is the maximum number of bytes of a request/response body
	// written to the log by the page monitor
	MonitorBodyLimit = 2000

	// Environment is the application environment used when none is configured
	Environment = "tst"
	// BaseURL is the application URL used when neither config nor environment provides one
	BaseURL = "https://example.com"
	// Engine is the local browser engine used when none is configured
	Engine = "chromium"
	// ReportDir is where report files and screenshots are written
	ReportDir = "reports"
	// FeaturePath is where feature files are looked up by default
	FeaturePath = "features"
	// ConfigFile is the default location of the environment config document
	ConfigFile = "features/data/config.json"

	// SharedDirMask is the permission mask for report directories
	SharedDirMask = 0755
	// SharedReadWriteMask is the permission mask for report files
	SharedReadWriteMask = 0644
)
