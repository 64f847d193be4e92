package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Runner performs one merge.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// CommandRunner runs the merge command as a child process in Dir.
// The child is not tied to the context: once started it runs to completion.
type CommandRunner struct {
	Dir     string
	Command []string
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewCommandRunner creates a CommandRunner that forwards the child's output to ours.
func NewCommandRunner(dir string, command []string) *CommandRunner {
	return &CommandRunner{
		Dir:     dir,
		Command: command,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

func (r *CommandRunner) Run(_ context.Context) error {
	if len(r.Command) == 0 {
		return errors.New("no merge command configured")
	}

	cmd := exec.Command(r.Command[0], r.Command[1:]...)
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("running %v: %w", r.Command, err)
	}
	return nil
}
