package constants

const (
	// FieldCommandErrorReport defines a logging field to store the error message for a failed command
	FieldCommandErrorReport = "errmsg"
	// FieldCommandError defines a logging field that determines if the command has failed
	FieldCommandError = "cmderr"

	// FieldScenario names the scenario a log entry belongs to
	FieldScenario = "scenario"
	// FieldSession carries the unique id of a browser session
	FieldSession = "session"
	// FieldAction names the UI verb being executed
	FieldAction = "action"
	// FieldLocator describes the element an action targets
	FieldLocator = "locator"
	// FieldEnvironment names the application environment
	FieldEnvironment = "env"
	// FieldTarget names the session target (local or browserstack)
	FieldTarget = "target"
	// FieldEngine names the browser engine
	FieldEngine = "engine"
	// FieldStep carries the text of a scenario step
	FieldStep = "step"
)

// Session targets
const (
	// TargetLocal launches a browser on this machine
	TargetLocal = "local"
	// TargetBrowserStack connects to the BrowserStack device farm
	TargetBrowserStack = "browserstack"
)

// Browser engines
const (
	EngineChromium = "chromium"
	EngineFirefox  = "firefox"
	EngineWebKit   = "webkit"
)

// Branded channels for the chromium engine
const (
	ChannelChrome = "chrome"
	ChannelEdge   = "msedge"
)

// Environment variables
const (
	EnvAppEnvironment = "ENV"
	EnvBaseURL        = "BASE_URL"
	// EnvBaseURLPrefix is suffixed with the environment name, i.e. BASE_URL_tst
	EnvBaseURLPrefix = "BASE_URL_"
	EnvTarget        = "TARGET"
	EnvBrowser       = "BROWSER"
	EnvChannel       = "CHANNEL"
	EnvHeadless      = "HEADLESS"
	EnvMonitor       = "MONITOR"

	EnvBrowserStackUsername  = "BROWSERSTACK_USERNAME"
	EnvBrowserStackAccessKey = "BROWSERSTACK_ACCESS_KEY"
	EnvBSBrowser             = "BS_BROWSER"
	EnvBSOS                  = "BS_OS"
	EnvBSOSVersion           = "BS_OS_VERSION"
	EnvBSBrowserVersion      = "BS_BROWSER_VERSION"
	EnvBSProject             = "BS_PROJECT"
	EnvBSBuild               = "BS_BUILD"
	EnvBSName                = "BS_NAME"
	EnvBSLocal               = "BS_LOCAL"
	EnvBSLocalID             = "BS_LOCAL_ID"
	EnvPlaywrightVersion     = "PLAYWRIGHT_VERSION"
)

// Profile parameters
const (
	ParamTarget           = "target"
	ParamBrowser          = "browser"
	ParamChannel          = "channel"
	ParamBSBrowser        = "bsBrowser"
	ParamBSOS             = "bsOS"
	ParamBSOSVersion      = "bsOSVersion"
	ParamBSBrowserVersion = "bsBrowserVersion"
)

// MediaTypePNG is the media type of failure screenshots attached to reports
const MediaTypePNG = "image/png"
