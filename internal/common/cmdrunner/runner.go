package cmdrunner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// CommandRunner abstracts subprocess execution so components that shell out
// to external toolkits can be exercised without the real binaries.
type CommandRunner interface {
	Run(ctx context.Context, env []string, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes name with args, appending env entries ("KEY=VALUE") to the
// inherited environment, and returns captured stdout and stderr.
func (r *ExecRunner) Run(ctx context.Context, env []string, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return outBuf.String(), errBuf.String(), err
}
