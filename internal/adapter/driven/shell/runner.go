// Package shell runs external commands on behalf of the driven adapters that
// wrap a CLI (gh, ruby, bundle).
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/apparentlymart/go-shquot/shquot"
)

// Runner executes external commands.
type Runner interface {
	// Run executes name with args in dir (the current directory when empty)
	// and returns its standard output. A non-zero exit yields an *ExitError.
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)

	// LookPath resolves name to an executable on PATH.
	LookPath(name string) (string, error)
}

// ExitError reports a command that failed to run or exited non-zero.
// Output interleaves stdout and stderr as the operator would have seen them.
type ExitError struct {
	Command string
	Output  string
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("`%s` failed: %v\n%s", e.Command, e.Err, e.Output)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Quote renders a command line the way a POSIX shell user would type it.
func Quote(name string, args ...string) string {
	return shquot.POSIXShell(append([]string{name}, args...))
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	combined := &syncBuffer{}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	// exec copies each stream on its own goroutine.
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = combined

	slog.Debug("running command", "command", Quote(name, args...), "dir", dir)
	if err := cmd.Run(); err != nil {
		return stdout.Bytes(), &ExitError{
			Command: Quote(name, args...),
			Output:  combined.String(),
			Err:     err,
		}
	}
	return stdout.Bytes(), nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// LookPath implements Runner.
func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
