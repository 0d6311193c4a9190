package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/gravitational/uitest/e2e/framework"
	"github.com/gravitational/uitest/lib/config"

	"github.com/gravitational/trace"
)

// newFileConfig reads the run configuration from JSON and applies
// overrides from the environment
func newFileConfig(input io.Reader) (*fileConfig, error) {
	var config fileConfig
	d := json.NewDecoder(input)
	err := d.Decode(&config)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	err = config.ParseEnv()
	if err != nil {
		return nil, trace.Wrap(err)
	}

	err = config.Validate()
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return &config, nil
}

func (r *fileConfig) Validate() error {
	var errors []error
	if err := r.Options.CheckAndSetDefaults(); err != nil {
		errors = append(errors, err)
	}
	if r.ProfilesFile != "" {
		if _, err := os.Stat(r.ProfilesFile); err != nil {
			errors = append(errors, trace.ConvertSystemError(err))
		}
	}
	return trace.NewAggregate(errors...)
}

// settings resolves the run settings for the named profile
func (r *fileConfig) settings(profileArg string, paths []string) (*framework.Settings, error) {
	profiles := config.NewProfiles()
	if r.ProfilesFile != "" {
		if err := profiles.LoadFile(r.ProfilesFile); err != nil {
			return nil, trace.Wrap(err)
		}
	}
	if profileArg == "" {
		profileArg = r.Profile
	}
	profile, err := profiles.Parse(profileArg)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if len(paths) == 0 {
		paths = r.Paths
	}
	settings, err := framework.NewSettings(r.Options, *profile, paths, config.NewEnviron(os.Environ()))
	return settings, trace.Wrap(err)
}

type fileConfig struct {
	framework.Options

	// Profile names the run profile, name or name=JSON
	Profile string `json:"profile"`
	// ProfilesFile adds profiles from a YAML document
	ProfilesFile string `json:"profiles_file"`
	// Paths are feature files or directories
	Paths []string `json:"paths"`
}
