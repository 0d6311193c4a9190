package debug

import (
	"net/http"
	"net/http/pprof"

	"github.com/gravitational/uitest/lib/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Handler serves the pprof endpoints under /debug/pprof/ and the
// harness metrics under /metrics
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	return mux
}

// StartProfiling serves Handler on httpEndpoint in the background
func StartProfiling(httpEndpoint string, logger log.FieldLogger) {
	logger = logger.WithField("addr", httpEndpoint)
	logger.Info("Serving profiling and metrics endpoints.")

	go func() {
		if err := http.ListenAndServe(httpEndpoint, Handler()); err != nil {
			logger.WithError(err).Warn("Profiling endpoint stopped.")
		}
	}()
}
