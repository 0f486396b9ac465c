// ABOUTME: Git operations and utilities for reading repository state
// ABOUTME: Provides safe wrappers around git commands with captured output and typed errors

// Package git provides git repository operations and utilities.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCommandFailed is wrapped by every CommandError.
var ErrCommandFailed = errors.New("git command failed")

// CommandError reports a git invocation that ran but exited non-zero.
type CommandError struct {
	Args     []string
	ExitCode int
	Stderr   []byte
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.ExitCode)
}

// Unwrap lets errors.Is match both ErrCommandFailed and the underlying *exec.ExitError.
func (e *CommandError) Unwrap() []error {
	return []error{ErrCommandFailed, e.Err}
}

// Output holds the raw bytes of a captured git invocation
type Output struct {
	Stdout []byte
	Stderr []byte
}

// Repository represents a git repository
type Repository struct {
	Dir string
}

// NewRepository creates a new repository instance
func NewRepository(dir string) *Repository {
	return &Repository{Dir: dir}
}

// RunGit executes a git command in the repository, discarding its output
func (r *Repository) RunGit(args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	return classify(args, cmd.Run(), nil)
}

// GitOutput executes a git command and returns its trimmed output
func (r *Repository) GitOutput(args ...string) (string, error) {
	stdout, _, err := r.Capture(args...)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(stdout)), nil
}

// Capture executes a git command and returns stdout and stderr as raw bytes.
// Both buffers are returned even when the command fails.
func (r *Repository) Capture(args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), classify(args, err, stderr.Bytes())
}

// IsInsideWorkTree reports whether Dir lies inside a git working tree.
// A non-zero exit from git is reported as false with no error; only a
// failure to run git at all is returned as an error.
func (r *Repository) IsInsideWorkTree() (bool, error) {
	out, err := r.GitOutput("rev-parse", "--is-inside-work-tree")
	if err != nil {
		if errors.Is(err, ErrCommandFailed) {
			return false, nil
		}
		return false, err
	}

	return out == "true", nil
}

// Diff captures the unstaged changes between the working tree and the index.
// With no paths the command is a bare `git diff`.
func (r *Repository) Diff(paths ...string) (*Output, error) {
	args := []string{"diff"}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	stdout, stderr, err := r.Capture(args...)
	return &Output{Stdout: stdout, Stderr: stderr}, err
}

// TopLevel returns the absolute path of the working tree root
func (r *Repository) TopLevel() (string, error) {
	return r.GitOutput("rev-parse", "--show-toplevel")
}

func classify(args []string, err error, stderr []byte) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// git missing from PATH, bad working directory, ...
		return fmt.Errorf("run git %s: %w", strings.Join(args, " "), err)
	}

	return &CommandError{
		Args:     args,
		ExitCode: exitErr.ExitCode(),
		Stderr:   stderr,
		Err:      err,
	}
}
