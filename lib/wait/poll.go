package wait

import (
	"context"
	"time"

	"github.com/gravitational/trace"
)

// Until polls cond every interval until it reports true or timeout elapses.
// On expiry it returns a trace.LimitExceeded error, never before timeout has passed.
// A cancelled ctx stops polling early with the context error.
func Until(ctx context.Context, interval, timeout time.Duration, cond func() bool) error {
	deadline := time.Now().Add(timeout)
	for {
		if cond() {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return trace.LimitExceeded("condition not met within %v", timeout)
		}
		delay := interval
		if remaining < delay {
			delay = remaining
		}
		select {
		case <-ctx.Done():
			return trace.Wrap(ctx.Err())
		case <-time.After(delay):
		}
	}
}
