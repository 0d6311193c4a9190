package debug

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// Dump writes the stacks of all goroutines to w and returns the number
// of bytes written
func Dump(w io.Writer) (int, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%v goroutines\n", runtime.NumGoroutine())
	if err := pprof.Lookup("goroutine").WriteTo(&buf, 1); err != nil {
		return 0, trace.Wrap(err)
	}
	n, err := w.Write(buf.Bytes())
	return n, trace.Wrap(err)
}

// DumpLoop dumps goroutine stacks to stderr on the first interrupt.
// A second interrupt within two seconds exits the process with 130.
func DumpLoop(logger log.FieldLogger) {
	var interrupts byte
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	var interruptTimeout <-chan time.Time
L:
	for {
		select {
		case <-interrupt:
			interrupts += 1
			if interrupts > 1 {
				break L
			}
			n, err := Dump(os.Stderr)
			if err != nil {
				logger.WithError(err).Warn("Failed to dump goroutine stacks.")
			} else {
				logger.Infof("Dumped %v of goroutine stacks. Press Ctrl-C again to quit.", humanize.Bytes(uint64(n)))
			}
			interruptTimeout = time.After(2 * time.Second)
		case <-interruptTimeout:
			interruptTimeout = nil
			interrupts = 0
		}
	}

	signal.Stop(interrupt)
	logger.Info("Closing dump loop.")
	os.Exit(130)
}
