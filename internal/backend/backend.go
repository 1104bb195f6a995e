package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"pipesched/internal/schedule"
)

// Backend is the capability every native scheduler provides.
type Backend interface {
	// Name identifies the backend in logs and audit entries.
	Name() string
	Install(ctx context.Context, s schedule.Schedule) error
	// Remove is a no-op when the name is not installed.
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// ErrInvalidSchedule wraps translation failures (e.g. day out of range).
var ErrInvalidSchedule = errors.New("invalid schedule")

// CommandError reports a native command that could not run or exited non-zero.
type CommandError struct {
	Op     string
	Name   string
	Cmd    string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Name != "" {
		fmt.Fprintf(&b, " %q", e.Name)
	}
	fmt.Fprintf(&b, ": %s: %v", e.Cmd, e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString(": ")
		b.WriteString(out)
	}
	return b.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner executes native commands. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec. There is no timeout: a hung native
// command blocks until ctx is cancelled.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func commandLine(name string, args []string) string {
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}
