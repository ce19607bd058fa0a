// Package shell runs external commands and captures their output.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/v-gjy/redwood/internal/domain"
)

// Command describes a single subprocess invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  []string // KEY=VALUE, appended to the parent environment
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes commands. The zero value is not usable; call New.
type Runner struct {
	lookPath func(string) (string, error)
	logger   *slog.Logger
	stream   io.Writer
}

type Option func(*Runner)

// WithLogger sets the logger used for command tracing.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStream tees stdout and stderr of every command to w as it runs.
func WithStream(w io.Writer) Option {
	return func(r *Runner) { r.stream = w }
}

// WithLookPath overrides executable resolution (useful for tests).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(r *Runner) { r.lookPath = fn }
}

func New(opts ...Option) *Runner {
	r := &Runner{
		lookPath: exec.LookPath,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes cmd and waits for it. A non-zero exit is reported as an
// *ExitError carrying the captured stderr.
func (r *Runner) Run(ctx context.Context, cmd Command) (Result, error) {
	if strings.TrimSpace(cmd.Name) == "" {
		return Result{}, &domain.OpError{
			Op:   "shell.run",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("command is required"),
		}
	}

	bin, err := r.lookPath(cmd.Name)
	if err != nil {
		return Result{}, &domain.OpError{
			Op:   "shell.lookpath",
			Kind: domain.KindNotFound,
			Err:  fmt.Errorf("%q not found on PATH: %w", cmd.Name, err),
		}
	}

	//nolint:gosec // G204: running the package manager is the point
	c := exec.CommandContext(ctx, bin, cmd.Args...)
	c.Dir = cmd.Dir
	// Children that inherit the pipes must not keep Run blocked after a kill.
	c.WaitDelay = waitDelay
	if len(cmd.Env) > 0 {
		c.Env = append(c.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if r.stream != nil {
		c.Stdout = io.MultiWriter(&stdout, r.stream)
		c.Stderr = io.MultiWriter(&stderr, r.stream)
	}

	r.logger.Debug("shell.start", "cmd", cmd.String(), "dir", cmd.Dir)

	start := time.Now()
	runErr := c.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.ExitCode = -1
			return res, &domain.OpError{Op: "shell.run", Kind: domain.KindExecution, Err: ctxErr}
		}

		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			r.logger.Debug("shell.exit", "cmd", cmd.String(), "code", res.ExitCode, "duration", res.Duration)
			return res, &ExitError{Command: cmd.String(), Code: res.ExitCode, Stderr: res.Stderr}
		}

		return res, &domain.OpError{Op: "shell.run", Kind: domain.KindExecution, Err: runErr}
	}

	r.logger.Debug("shell.done", "cmd", cmd.String(), "duration", res.Duration)
	return res, nil
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
}

const (
	stderrTailLines = 10
	waitDelay       = 2 * time.Second
)

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with code %d", e.Command, e.Code)
	if tail := tailLines(e.Stderr, stderrTailLines); tail != "" {
		msg += ":\n" + tail
	}
	return msg
}

func (e *ExitError) Is(target error) bool {
	return target == domain.ErrExecution
}

func tailLines(s string, n int) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
