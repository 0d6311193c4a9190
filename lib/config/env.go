package config

import (
	"strings"

	"github.com/gravitational/uitest/lib/constants"
	"github.com/gravitational/uitest/lib/defaults"
)

// LookupFunc looks up an environment variable, i.e. os.LookupEnv
type LookupFunc func(key string) (string, bool)

// Getenv returns the non-empty value of key or an empty string
func (f LookupFunc) Getenv(key string) string {
	if f == nil {
		return ""
	}
	v, ok := f(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// Environ is an immutable snapshot of environment variables
type Environ map[string]string

// NewEnviron snapshots a KEY=VALUE list as returned by os.Environ
func NewEnviron(kv []string) Environ {
	env := make(Environ, len(kv))
	for _, pair := range kv {
		if i := strings.IndexByte(pair, '='); i > 0 {
			env[pair[:i]] = pair[i+1:]
		}
	}
	return env
}

// Lookup implements LookupFunc
func (e Environ) Lookup(key string) (string, bool) {
	v, ok := e[key]
	return v, ok
}

// EnvironmentName returns the application environment selected by ENV
func EnvironmentName(lookup LookupFunc) string {
	if env := lookup.Getenv(constants.EnvAppEnvironment); env != "" {
		return env
	}
	return defaults.Environment
}

// BaseURL resolves the application URL for env: BASE_URL_<env>, then
// BASE_URL, then the merged config "url", then the built-in default
func BaseURL(env string, values Values, lookup LookupFunc) string {
	if url := lookup.Getenv(constants.EnvBaseURLPrefix + env); url != "" {
		return url
	}
	if url := lookup.Getenv(constants.EnvBaseURL); url != "" {
		return url
	}
	if url, ok := values.URL(); ok && url != "" {
		return url
	}
	return defaults.BaseURL
}
