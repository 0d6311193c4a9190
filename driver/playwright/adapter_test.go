package playwright

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/gravitational/uitest/lib/browser"

	"github.com/gravitational/trace"
	pw "github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
)

func TestConvertError(t *testing.T) {
	require.NoError(t, convertError(nil))

	err := convertError(fmt.Errorf("locator.waitFor: %w", pw.ErrTimeout))
	require.True(t, trace.IsLimitExceeded(err), "expected limit exceeded, got %v", err)

	err = convertError(fmt.Errorf("waiting for locator(\"a[href*='%%20docs']\"): %w", pw.ErrTimeout))
	require.True(t, trace.IsLimitExceeded(err))
	require.Contains(t, err.Error(), "%20docs")
	require.NotContains(t, err.Error(), "%!")

	err = convertError(errors.New("target closed"))
	require.False(t, trace.IsLimitExceeded(err))
	require.Contains(t, err.Error(), "target closed")
}

func TestStateMapping(t *testing.T) {
	require.Equal(t, pw.WaitForSelectorStateAttached, waitState(browser.StateAttached))
	require.Equal(t, pw.WaitForSelectorStateDetached, waitState(browser.StateDetached))
	require.Equal(t, pw.WaitForSelectorStateVisible, waitState(browser.StateVisible))
	require.Equal(t, pw.WaitForSelectorStateHidden, waitState(browser.StateHidden))

	require.Equal(t, pw.LoadStateLoad, loadState(browser.LoadStateLoad))
	require.Equal(t, pw.LoadStateDomcontentloaded, loadState(browser.LoadStateDOMContentLoaded))
	require.Equal(t, pw.LoadStateNetworkidle, loadState(browser.LoadStateNetworkIdle))
}

func TestMilliseconds(t *testing.T) {
	require.Equal(t, 5000.0, *ms(5*time.Second))
	require.Equal(t, 100.0, *ms(100*time.Millisecond))
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	require.NoError(t, c.CheckAndSetDefaults())
	require.Equal(t, 30*time.Second, c.ConnectTimeout)

	c = Config{ConnectTimeout: -time.Second}
	require.True(t, trace.IsBadParameter(c.CheckAndSetDefaults()))
}
