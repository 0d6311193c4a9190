package metrics

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveAction(t *testing.T) {
	before := testutil.ToFloat64(Actions.WithLabelValues("probe", ResultFailure))
	ObserveAction("probe", time.Now(), errors.New("boom"))
	ObserveAction("probe", time.Now(), nil)
	require.Equal(t, before+1, testutil.ToFloat64(Actions.WithLabelValues("probe", ResultFailure)))
	require.Equal(t, float64(1), testutil.ToFloat64(Actions.WithLabelValues("probe", ResultSuccess)))
}

func TestWriteTextfile(t *testing.T) {
	dir, err := ioutil.TempDir("", "uitest-metrics")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	Scenarios.WithLabelValues(ResultSuccess).Inc()
	path := filepath.Join(dir, "uitest.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "uitest_scenarios_total"), string(data))
}
