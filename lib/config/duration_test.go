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
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v2"
)

type timeoutMessage struct {
	Timeout Timeout `json:"timeout" yaml:"timeout"`
}

func TestJsonDeserialization(t *testing.T) {
	data := []byte(`{"timeout":"30s"}`)
	var msg timeoutMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Error(err)
	}
	if msg.Timeout.Duration != 30*time.Second {
		t.Errorf("expected 30s, got %v", msg.Timeout)
	}
}

func TestYamlDeserialization(t *testing.T) {
	var msg timeoutMessage
	if err := yaml.Unmarshal([]byte("timeout: 1m30s\n"), &msg); err != nil {
		t.Error(err)
	}
	if msg.Timeout.Duration != 90*time.Second {
		t.Errorf("expected 1m30s, got %v", msg.Timeout)
	}
}

func TestInvalidDeserialization(t *testing.T) {
	data := []byte(`{"timeout":3600}`)
	var msg timeoutMessage
	if err := json.Unmarshal(data, &msg); err == nil {
		t.Errorf("Expected to get an error when deserializing an unqualified integer.")
	}
	if err := yaml.Unmarshal([]byte("timeout: -5s\n"), &msg); err == nil {
		t.Errorf("Expected to get an error when deserializing a negative timeout.")
	}
}

func TestDurationSerialization(t *testing.T) {
	msg := timeoutMessage{Timeout{24 * time.Hour}}
	data, err := json.Marshal(&msg)
	if err != nil {
		t.Error(err)
	}
	expected := []byte(`{"timeout":"24h0m0s"}`)
	if !bytes.Equal(data, expected) {
		t.Errorf("serializing 24h, expected %q, got %q", expected, data)
	}
}

func TestSetEnv(t *testing.T) {
	var timeout Timeout
	if err := timeout.SetEnv("45s"); err != nil {
		t.Error(err)
	}
	if timeout.Duration != 45*time.Second {
		t.Errorf("expected 45s, got %v", timeout)
	}
	if err := timeout.SetEnv("soon"); err == nil {
		t.Errorf("Expected to get an error when parsing %q.", "soon")
	}
}
