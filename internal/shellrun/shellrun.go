// Package shellrun turns an ordered list of command strings into a single
// guarded POSIX script and runs it through the mvdan.cc/sh interpreter.
//
// Each command is followed by a guard that checks its exit status and aborts
// the whole script on failure, reporting which command failed. A multi-line
// string is one command: its guard applies to the overall exit status, which
// is the supported way to embed shell control flow as one atomic unit.
package shellrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/kassick/dotdot/internal/errs"
)

// Script assembles the guarded script for cmds.
func Script(cmds []string) string {
	var b strings.Builder
	for _, cmd := range cmds {
		b.WriteString(cmd)
		b.WriteString("\n")
		b.WriteString("__dotdot_rc=$?\n")
		fmt.Fprintf(&b,
			"if [ $__dotdot_rc -ne 0 ]; then\n"+
				"  echo \"dotdot: command failed with exit $__dotdot_rc:\" %s >&2\n"+
				"  exit $__dotdot_rc\n"+
				"fi\n",
			quote(label(cmd)))
	}
	return b.String()
}

// Run executes cmds as one guarded script with dir as the working directory.
// The process's working directory is changed for the duration and restored on
// every exit path. A non-zero script exit surfaces as ExecutionFailed.
func Run(ctx context.Context, cmds []string, dir string, stdout, stderr io.Writer) error {
	script := Script(cmds)

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "dotdot")
	if err != nil {
		return errs.Wrap(err, errs.ExecutionFailed, "cannot parse command script")
	}

	orig, err := os.Getwd()
	if err != nil {
		return errs.Wrap(err, errs.ExecutionFailed, "cannot determine working directory")
	}
	if err := os.Chdir(dir); err != nil {
		return errs.Wrapf(err, errs.ExecutionFailed, "cannot enter %s", dir)
	}
	defer func() {
		_ = os.Chdir(orig)
	}()

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(os.Stdin, stdout, stderr),
	)
	if err != nil {
		return errs.Wrap(err, errs.ExecutionFailed, "cannot create shell interpreter")
	}

	if err := runner.Run(ctx, prog); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return errs.Newf(errs.ExecutionFailed, "command script exited with status %d", status)
		}
		return errs.Wrap(err, errs.ExecutionFailed, "command script failed")
	}
	return nil
}

// label shortens a command to its first line for failure reporting.
func label(cmd string) string {
	line := cmd
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i] + " ..."
	}
	return strings.TrimSpace(line)
}

// quote wraps s in single quotes, escaping embedded ones, so the failure
// message survives shell evaluation verbatim.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
