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
	"fmt"
	"io/ioutil"
	"sort"

	"github.com/gravitational/trace"
	"gopkg.in/yaml.v2"
)

// CommonSection names the document section shared by all environments
const CommonSection = "common"

// Document is an environment config document:
//
//	{ "common": {...}, "<env>": {...}, ... }
//
// It is read-only once loaded.
type Document struct {
	sections map[string]Values
}

// Load reads a YAML or JSON config document from path
func Load(path string) (*Document, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, trace.Wrap(err, "parsing %v", path)
	}
	return doc, nil
}

// Parse decodes a YAML or JSON config document
func Parse(data []byte) (*Document, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, trace.BadParameter("invalid config document: %v", err)
	}
	doc := &Document{sections: make(map[string]Values, len(raw))}
	for name, section := range raw {
		if section == nil {
			doc.sections[name] = Values{}
			continue
		}
		m, ok := normalize(section).(map[string]interface{})
		if !ok {
			return nil, trace.BadParameter("config section %q must be a map, got %T", name, section)
		}
		doc.sections[name] = Values(m)
	}
	return doc, nil
}

// Environments lists the environment sections of the document
func (d *Document) Environments() []string {
	var envs []string
	for name := range d.sections {
		if name != CommonSection {
			envs = append(envs, name)
		}
	}
	sort.Strings(envs)
	return envs
}

// Resolve merges the common section with the section of the named environment.
// Environment keys win over common keys. It fails with trace.NotFound
// if the document has no section for env.
func (d *Document) Resolve(env string) (Values, error) {
	section, ok := d.sections[env]
	if !ok {
		return nil, trace.NotFound("config for environment %q not found, have %v", env, d.Environments())
	}
	merged := make(Values, len(d.sections[CommonSection])+len(section))
	for k, v := range d.sections[CommonSection] {
		merged[k] = v
	}
	for k, v := range section {
		merged[k] = v
	}
	return merged, nil
}

// Values is a merged configuration block
type Values map[string]interface{}

// String returns the value of key formatted as a string
func (v Values) String(key string) (string, bool) {
	val, ok := v[key]
	if !ok || val == nil {
		return "", false
	}
	if s, ok := val.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", val), true
}

// GetString returns the value of key or def if the key is absent
func (v Values) GetString(key, def string) string {
	if s, ok := v.String(key); ok {
		return s
	}
	return def
}

// URL returns the application URL configured under "url"
func (v Values) URL() (string, bool) {
	return v.String("url")
}

// normalize converts the map[interface{}]interface{} values produced by
// yaml.v2 into map[string]interface{}
func normalize(in interface{}) interface{} {
	switch val := in.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v := range val {
			out[fmt.Sprintf("%v", k)] = normalize(v)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, v := range val {
			out[k] = normalize(v)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, v := range val {
			out[i] = normalize(v)
		}
		return out
	default:
		return in
	}
}
