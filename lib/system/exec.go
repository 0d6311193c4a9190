package system

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/gravitational/uitest/lib/constants"

	"github.com/gravitational/trace"
	log "github.com/sirupsen/logrus"
)

// ExecL runs cmd and logs the command line together with its outcome
func ExecL(cmd *exec.Cmd, out io.Writer, entry log.FieldLogger) error {
	err := Exec(cmd, out)
	entry.WithFields(log.Fields{
		constants.FieldCommandError:       (err != nil),
		constants.FieldCommandErrorReport: trace.UserMessage(err),
	}).Debug(strings.Join(cmd.Args, " "))
	return err
}

// Exec runs cmd writing both stdout and stderr to out
func Exec(cmd *exec.Cmd, out io.Writer) error {
	execPath, err := exec.LookPath(cmd.Path)
	if err != nil {
		return trace.ConvertSystemError(err)
	}
	cmd.Path = execPath
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Start(); err != nil {
		return trace.Wrap(err)
	}
	if err := cmd.Wait(); err != nil {
		return trace.Wrap(err)
	}
	return nil
}

// Output runs the named program bound to ctx and returns its trimmed combined output
func Output(ctx context.Context, name string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	err := ExecL(cmd, &out, log.WithField("cmd", name))
	if err != nil {
		return "", trace.Wrap(err, "%v %v: %s", name, strings.Join(args, " "), out.String())
	}
	return strings.TrimSpace(out.String()), nil
}
