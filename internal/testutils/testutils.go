// ABOUTME: Test utilities for git operations and repository setup
// ABOUTME: Provides helper functions to create test repos with committed and unstaged changes

package testutils

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// TestRepo represents a test git repository
type TestRepo struct {
	Dir string
	t   *testing.T
}

// NewTestRepo creates a new temporary git repository for testing
func NewTestRepo(t *testing.T) *TestRepo {
	t.Helper()

	repo := &TestRepo{Dir: NewPlainDir(t), t: t}
	repo.RunGit("init")
	repo.RunGit("config", "user.name", "Test User")
	repo.RunGit("config", "user.email", "test@example.com")
	repo.RunGit("config", "core.autocrlf", "false")
	repo.RunGit("config", "commit.gpgsign", "false")

	return repo
}

// NewPlainDir creates a temporary directory that git will not resolve to any
// enclosing repository.
func NewPlainDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "git-export-unstaged-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	dir, err = filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("Failed to resolve temp dir: %v", err)
	}

	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(dir))
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return dir
}

// WriteFile writes content to a file in the test repo
func (r *TestRepo) WriteFile(path, content string) {
	r.t.Helper()

	fullPath := filepath.Join(r.Dir, path)
	dir := filepath.Dir(fullPath)

	if err := os.MkdirAll(dir, 0755); err != nil {
		r.t.Fatalf("Failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		r.t.Fatalf("Failed to write file %s: %v", fullPath, err)
	}
}

// Commit adds all files and creates a commit with the given message
func (r *TestRepo) Commit(message string) string {
	r.t.Helper()

	r.RunGit("add", ".")
	r.RunGit("commit", "-m", message)

	return r.GitOutput("rev-parse", "HEAD")
}

// Stage adds a specific file to the index without committing
func (r *TestRepo) Stage(file string) {
	r.t.Helper()

	r.RunGit("add", file)
}

// Diff returns the raw bytes of `git diff` run independently of the code under test
func (r *TestRepo) Diff() []byte {
	r.t.Helper()

	cmd := exec.Command("git", "diff")
	cmd.Dir = r.Dir

	output, err := cmd.Output()
	if err != nil {
		r.t.Fatalf("Failed to run git diff: %v", err)
	}

	return output
}

// RunGit executes a git command in the test repo
func (r *TestRepo) RunGit(args ...string) {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir

	if out, err := cmd.CombinedOutput(); err != nil {
		r.t.Fatalf("Git command failed: git %v, error: %v\n%s", args, err, out)
	}
}

// GitOutput executes a git command and returns its trimmed output
func (r *TestRepo) GitOutput(args ...string) string {
	r.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir

	output, err := cmd.Output()
	if err != nil {
		r.t.Fatalf("Git command failed: git %v, error: %v", args, err)
	}

	return strings.TrimSpace(string(output))
}
