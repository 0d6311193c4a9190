package driver

import (
	"testing"

	"github.com/gravitational/uitest/lib/config"

	"github.com/gravitational/trace"
	"github.com/stretchr/testify/require"
)

func TestResolveLocalDefaults(t *testing.T) {
	target, err := ResolveTarget(nil, config.Environ{}.Lookup)
	require.NoError(t, err)
	require.Equal(t, Target{Mode: "local", Engine: "chromium"}, *target)
	require.False(t, target.IsRemote())
	require.Equal(t, "local(chromium)", target.String())
}

func TestResolveLocalEngine(t *testing.T) {
	tests := []struct {
		comment string
		params  Parameters
		env     config.Environ
		want    Target
	}{
		{
			comment: "environment selects engine",
			env:     config.Environ{"BROWSER": "Firefox"},
			want:    Target{Mode: "local", Engine: "firefox"},
		},
		{
			comment: "parameter wins over environment",
			params:  Parameters{"browser": "webkit"},
			env:     config.Environ{"BROWSER": "firefox"},
			want:    Target{Mode: "local", Engine: "webkit"},
		},
		{
			comment: "unknown engine falls back to chromium",
			params:  Parameters{"browser": "netscape"},
			want:    Target{Mode: "local", Engine: "chromium"},
		},
		{
			comment: "channel applies to chromium",
			params:  Parameters{"channel": "msedge"},
			env:     config.Environ{"CHANNEL": "chrome"},
			want:    Target{Mode: "local", Engine: "chromium", Channel: "msedge"},
		},
		{
			comment: "channel is ignored for other engines",
			env:     config.Environ{"BROWSER": "firefox", "CHANNEL": "chrome"},
			want:    Target{Mode: "local", Engine: "firefox"},
		},
	}
	for _, tt := range tests {
		target, err := ResolveTarget(tt.params, tt.env.Lookup)
		require.NoError(t, err, tt.comment)
		require.Equal(t, tt.want, *target, tt.comment)
	}
}

func TestResolveRemoteWithoutCredentials(t *testing.T) {
	_, err := ResolveTarget(Parameters{"target": "BrowserStack"}, config.Environ{}.Lookup)
	require.Error(t, err)
	require.True(t, trace.IsBadParameter(err), "expected bad parameter, got %v", err)

	_, err = ResolveTarget(nil, config.Environ{"TARGET": "browserstack"}.Lookup)
	require.True(t, trace.IsBadParameter(err), "expected bad parameter, got %v", err)
}

func TestResolveRemote(t *testing.T) {
	env := config.Environ{
		"ENV":                     "acc",
		"BROWSERSTACK_USERNAME":   "alice",
		"BROWSERSTACK_ACCESS_KEY": "s3cr3t",
	}
	target, err := ResolveTarget(Parameters{"target": "browserstack", "bsBrowser": "edge"}, env.Lookup)
	require.NoError(t, err)
	require.True(t, target.IsRemote())
	require.Equal(t, "edge", target.Capabilities["browser"])
	require.Equal(t, "build-acc", target.Capabilities["build"])
	require.NotContains(t, target.String(), "s3cr3t")
}

func TestResolveUnknownTargetRunsLocally(t *testing.T) {
	target, err := ResolveTarget(nil, config.Environ{"TARGET": "saucelabs", "BROWSER": "firefox"}.Lookup)
	require.NoError(t, err)
	require.False(t, target.IsRemote())
	require.Equal(t, "local", target.Mode)
	require.Equal(t, "firefox", target.Engine)

	target, err = ResolveTarget(Parameters{"target": "BrowserStack-ish"}, config.Environ{}.Lookup)
	require.NoError(t, err)
	require.Equal(t, "local", target.Mode)
}
