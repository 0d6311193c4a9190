package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gravitational/uitest/driver/browserstack"
	"github.com/gravitational/uitest/e2e"
	"github.com/gravitational/uitest/lib/config"
	"github.com/gravitational/uitest/lib/debug"
	"github.com/gravitational/uitest/lib/xlog"

	"github.com/gravitational/configure/cstrings"
	"github.com/gravitational/trace"
	"github.com/joho/godotenv"
	"github.com/kr/pretty"
	log "github.com/sirupsen/logrus"
	"gopkg.in/alecthomas/kingpin.v2"
)

func main() {
	if err := run(); err != nil {
		log.Error(trace.DebugReport(err))
		os.Exit(255)
	}
}

func run() error {
	args, _ := cstrings.SplitAt(os.Args, "--")

	var (
		app       = kingpin.New("uitest", "Browser scenario runner")
		debugMode = app.Flag("debug", "enable verbose logging").Bool()
		debugAddr = app.Flag("debug-addr", "serve profiling endpoints on this address").String()
		envFile   = app.Flag("env-file", "load environment variables from this file when it exists").Default(".env").String()
		runConfig = app.Flag("config", "json string with configuration").Default("{}").String()
		profile   = app.Flag("profile", "run profile, name or name=JSON").Short('p').String()

		crun         = app.Command("run", "run feature files")
		crunPaths    = crun.Arg("paths", "feature files or directories").Strings()
		crunHeadless = crun.Flag("headless", "run local browsers without a window").Bool()
		crunMonitor  = crun.Flag("monitor", "log page console and network traffic").Bool()
		crunReport   = crun.Flag("report-dir", "directory for reports and screenshots").String()
		crunInstall  = crun.Flag("install", "install the playwright driver and browsers first").Bool()

		cconfig = app.Command("config", "print the merged configuration of the selected environment")

		ccaps      = app.Command("caps", "print the remote browser capabilities and endpoint")
		ccapsProbe = ccaps.Flag("probe", "detect the playwright version with the local CLI").Bool()

		cprofiles = app.Command("profiles", "list run profiles")
	)

	cmd, err := app.Parse(args[1:])
	if err != nil {
		return trace.Wrap(err)
	}

	level := log.InfoLevel
	if *debugMode {
		level = log.DebugLevel
	}
	xlog.InitLogger(level)
	if *debugAddr != "" {
		debug.StartProfiling(*debugAddr, log.StandardLogger())
		go debug.DumpLoop(log.StandardLogger())
	}

	if err := loadEnvFile(*envFile); err != nil {
		return trace.Wrap(err)
	}

	conf, err := newFileConfig(strings.NewReader(*runConfig))
	if err != nil {
		return trace.Wrap(err)
	}

	ctx := context.Background()
	switch cmd {
	case crun.FullCommand():
		if *crunHeadless {
			conf.Headless = true
		}
		if *crunMonitor {
			conf.Monitor = true
		}
		if *crunReport != "" {
			conf.ReportDir = *crunReport
		}
		return runFeatures(ctx, conf, *profile, *crunPaths, *crunInstall, level)
	case cconfig.FullCommand():
		settings, err := conf.settings(*profile, nil)
		if err != nil {
			return trace.Wrap(err)
		}
		fmt.Printf("environment: %v\nbase url: %v\n%# v\n", settings.Environment, settings.BaseURL, pretty.Formatter(settings.Values))
		return nil
	case ccaps.FullCommand():
		return printCaps(ctx, conf, *profile, *ccapsProbe)
	case cprofiles.FullCommand():
		for _, name := range config.NewProfiles().Names() {
			fmt.Println(name)
		}
		return nil
	}

	return nil
}

func runFeatures(ctx context.Context, conf *fileConfig, profile string, paths []string, install bool, level log.Level) error {
	settings, err := conf.settings(profile, paths)
	if err != nil {
		return trace.Wrap(err)
	}
	logger := xlog.ConsoleLogger(level)
	runner, err := e2e.New(ctx, e2e.Config{Settings: settings, Install: install}, logger)
	if err != nil {
		return trace.Wrap(err)
	}
	err = runner.Run()
	if cerr := runner.Close(); cerr != nil {
		log.WithError(cerr).Warn("Failed to clean up after the run.")
	}
	return trace.Wrap(err)
}

func printCaps(ctx context.Context, conf *fileConfig, profile string, probe bool) error {
	settings, err := conf.settings(profile, nil)
	if err != nil {
		return trace.Wrap(err)
	}
	target, err := settings.Target()
	if err != nil {
		return trace.Wrap(err)
	}
	if !target.IsRemote() {
		fmt.Printf("target %v needs no capabilities\n", target)
		return nil
	}
	caps := target.Capabilities.Clone()
	if probe && !caps.HasClientVersion() {
		version, err := browserstack.ProbeClientVersion(ctx)
		if err != nil {
			return trace.Wrap(err)
		}
		if err := caps.SetClientVersion(version); err != nil {
			return trace.Wrap(err)
		}
	}
	endpoint, err := caps.Redacted().Endpoint()
	if err != nil {
		return trace.Wrap(err)
	}
	fmt.Printf("%# v\n%v\n", pretty.Formatter(caps.Redacted()), endpoint)
	return nil
}

// loadEnvFile loads variables from path without overriding the environment
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return trace.Wrap(godotenv.Load(path))
}
