/*
Copyright 2020 Gravitational, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gravitational/trace"
)

func TestBuiltinProfile(t *testing.T) {
	p, err := NewProfiles().Parse("firefox")
	if err != nil {
		t.Fatal(err)
	}
	expected := Profile{
		Parameters:  map[string]string{"browser": "firefox"},
		Formats:     []string{"pretty", "cucumber:cucumber.json", "junit:junit.xml"},
		Concurrency: 2,
		StepTimeout: &Timeout{50 * time.Second},
	}
	if diff := cmp.Diff(expected, *p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileOverridesDoNotLeak(t *testing.T) {
	profiles := NewProfiles()
	p, err := profiles.Parse(`bs-chrome={"parameters":{"bsOSVersion":"10"},"concurrency":4,"step_timeout":"20s"}`)
	if err != nil {
		t.Fatal(err)
	}
	if p.Parameters["bsOSVersion"] != "10" || p.Parameters["bsOS"] != "Windows" {
		t.Errorf("unexpected parameters %v", p.Parameters)
	}
	if p.Concurrency != 4 || p.Timeout() != 20*time.Second {
		t.Errorf("unexpected runner settings %+v", p)
	}

	again, err := profiles.Parse("bs-chrome")
	if err != nil {
		t.Fatal(err)
	}
	if again.Parameters["bsOSVersion"] != "11" {
		t.Errorf("override leaked into registry: %v", again.Parameters)
	}
}

func TestUnknownProfile(t *testing.T) {
	_, err := NewProfiles().Parse("safari")
	if !trace.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestInvalidProfileJSON(t *testing.T) {
	_, err := NewProfiles().Parse("chrome={nope")
	if !trace.IsBadParameter(err) {
		t.Errorf("expected bad parameter, got %v", err)
	}
}

func TestProfileValidation(t *testing.T) {
	profiles := NewProfiles()
	profiles.Add("bad-channel", Profile{Parameters: map[string]string{"browser": "firefox", "channel": "chrome"}})
	profiles.Add("bad-concurrency", Profile{Concurrency: 1000})

	for _, name := range []string{"bad-channel", "bad-concurrency"} {
		if _, err := profiles.Parse(name); !trace.IsBadParameter(err) {
			t.Errorf("%v: expected bad parameter, got %v", name, err)
		}
	}
}

func TestProfileKeepsUnknownTarget(t *testing.T) {
	profiles := NewProfiles()
	profiles.Add("grid", Profile{Parameters: map[string]string{"target": "saucelabs"}})

	profile, err := profiles.Parse("grid")
	if err != nil {
		t.Fatalf("expected unknown target to run locally, got %v", err)
	}
	if profile.Parameters["target"] != "saucelabs" {
		t.Errorf("expected parameters to be kept, got %v", profile.Parameters)
	}
}

func TestLoadProfilesFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "uitest-profiles")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "profiles.yaml")
	data := `
webkit:
  parameters:
    browser: webkit
  concurrency: 1
  step_timeout: 10s
  tags: "@smoke"
`
	if err := ioutil.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	profiles := NewProfiles()
	if err := profiles.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	p, err := profiles.Parse("webkit")
	if err != nil {
		t.Fatal(err)
	}
	expected := Profile{
		Parameters:  map[string]string{"browser": "webkit"},
		Formats:     []string{"pretty", "cucumber:cucumber.json", "junit:junit.xml"},
		Concurrency: 1,
		StepTimeout: &Timeout{10 * time.Second},
		Tags:        "@smoke",
	}
	if diff := cmp.Diff(expected, *p); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}
