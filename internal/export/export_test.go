// ABOUTME: Core tests for exporting unstaged changes
// ABOUTME: Runs the exporter against real temporary git repositories

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obra/git-export-unstaged/internal/console"
	"github.com/obra/git-export-unstaged/internal/testutils"
)

func newPrinter(t *testing.T) (*console.Printer, *bytes.Buffer) {
	t.Helper()

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	return console.New(&buf), &buf
}

func repoWithCommit(t *testing.T) *testutils.TestRepo {
	t.Helper()

	repo := testutils.NewTestRepo(t)
	repo.WriteFile("main.go", "package main\n")
	repo.WriteFile("docs/readme.md", "hello\n")
	repo.Commit("Initial commit")
	return repo
}

func TestExport_CleanRepoWritesEmptyFile(t *testing.T) {
	repo := repoWithCommit(t)
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	result, err := NewExporter(repo.Dir).Export(out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.Equal(t, 0, result.Bytes)
	assert.Empty(t, result.Stats.Files)
}

func TestExport_MatchesIndependentGitDiff(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("main.go", "package main\n\nfunc main() {}\n")
	repo.WriteFile("docs/readme.md", "hello world\n")
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	result, err := NewExporter(repo.Dir).Export(out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(repo.Diff()), string(data))
	assert.Equal(t, []string{"docs/readme.md", "main.go"}, result.Stats.Files)
	assert.Equal(t, len(data), result.Bytes)
}

func TestExport_StagedChangesExcluded(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("main.go", "package main\n\n// staged\n")
	repo.Stage("main.go")
	repo.WriteFile("docs/readme.md", "unstaged\n")
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	_, err := NewExporter(repo.Dir).Export(out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "+unstaged")
	assert.NotContains(t, string(data), "main.go")
}

func TestExport_NotARepository(t *testing.T) {
	dir := testutils.NewPlainDir(t)
	out := filepath.Join(dir, "unstaged.diff")

	_, err := NewExporter(dir).Export(out)

	assert.ErrorIs(t, err, ErrNotRepository)
	assert.Equal(t, NotARepository, Classify(err))
	assert.NoFileExists(t, out)
}

func TestExport_NotARepositoryLeavesExistingFile(t *testing.T) {
	dir := testutils.NewPlainDir(t)
	out := filepath.Join(dir, "unstaged.diff")
	require.NoError(t, os.WriteFile(out, []byte("previous"), 0644))

	_, err := NewExporter(dir).Export(out)
	require.ErrorIs(t, err, ErrNotRepository)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))
}

func TestExport_InsideGitDirIsNotAWorkTree(t *testing.T) {
	repo := repoWithCommit(t)
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	_, err := NewExporter(filepath.Join(repo.Dir, ".git")).Export(out)

	assert.ErrorIs(t, err, ErrNotRepository)
	assert.NoFileExists(t, out)
}

func TestExport_DiffCommandFailure(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("main.go", "package main\n// changed\n")
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	exporter := NewExporter(repo.Dir)
	exporter.SetPaths("../outside-the-repo.txt")
	_, err := exporter.Export(out)

	assert.Equal(t, CommandFailed, Classify(err))
	assert.NoFileExists(t, out)
}

func TestExport_UnwritableOutput(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("main.go", "package main\n// changed\n")

	// A regular file used as a directory cannot be written through, even as root.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	_, err := NewExporter(repo.Dir).Export(filepath.Join(blocker, "unstaged.diff"))

	require.Error(t, err)
	assert.Equal(t, UnknownFailure, Classify(err))
}

func TestExport_Idempotent(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("main.go", "package main\n\nvar x = 1\n")
	dir := t.TempDir()
	first := filepath.Join(dir, "first.diff")
	second := filepath.Join(dir, "second.diff")

	exporter := NewExporter(repo.Dir)
	_, err := exporter.Export(first)
	require.NoError(t, err)
	_, err = exporter.Export(second)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestExport_OverwritesPreviousContent(t *testing.T) {
	repo := repoWithCommit(t)
	out := filepath.Join(t.TempDir(), "unstaged.diff")
	require.NoError(t, os.WriteFile(out, []byte(strings.Repeat("stale\n", 100)), 0644))

	_, err := NewExporter(repo.Dir).Export(out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestExport_InvalidUTF8Replaced(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("latin1.txt", "plain\n")
	repo.Commit("Add latin1 file")
	repo.WriteFile("latin1.txt", "caf\xe9\n")
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	_, err := NewExporter(repo.Dir).Export(out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, utf8.Valid(data))
	assert.Contains(t, string(data), "+caf�")
}

func TestExport_LegacyEncoding(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("latin1.txt", "plain\n")
	repo.Commit("Add latin1 file")
	repo.WriteFile("latin1.txt", "caf\xe9\n")
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	exporter := NewExporter(repo.Dir)
	exporter.SetEncoding("windows-1252")
	_, err := exporter.Export(out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "+café")
}

func TestExport_RelativePathFollowsWorkingDirectory(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("docs/readme.md", "changed\n")
	sub := filepath.Join(repo.Dir, "docs")

	result, err := NewExporter(sub).Export("changes.diff")
	require.NoError(t, err)

	assert.Equal(t, "changes.diff", result.Path)
	assert.FileExists(t, filepath.Join(sub, "changes.diff"))
}

func TestExport_RepoRootResolution(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("docs/readme.md", "changed\n")
	sub := filepath.Join(repo.Dir, "docs")

	exporter := NewExporter(sub)
	exporter.SetRepoRoot(true)
	result, err := exporter.Export("changes.diff")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(repo.Dir, "changes.diff"))
	assert.NoFileExists(t, filepath.Join(sub, "changes.diff"))
	assert.Equal(t, filepath.Join(repo.Dir, "changes.diff"), result.AbsPath)
	assert.Equal(t, filepath.Join(repo.Dir, "changes.diff"), result.Path)
}

func TestExport_PathspecLimitsDiff(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("main.go", "package main\n// changed\n")
	repo.WriteFile("docs/readme.md", "changed\n")
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	exporter := NewExporter(repo.Dir)
	exporter.SetPaths("docs")
	result, err := exporter.Export(out)
	require.NoError(t, err)

	assert.Equal(t, []string{"docs/readme.md"}, result.Stats.Files)
}

func TestDryRun_WritesNothing(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("main.go", "package main\n// changed\n")
	out := filepath.Join(t.TempDir(), "unstaged.diff")

	summary, err := NewExporter(repo.Dir).DryRun(out)
	require.NoError(t, err)

	assert.NoFileExists(t, out)
	assert.Contains(t, summary, "Would write")
	assert.Contains(t, summary, "1 file changed, 1 insertion(+), 0 deletions(-)")
	assert.Contains(t, summary, "  main.go\n")
}

func TestRun_ReportsSuccess(t *testing.T) {
	repo := repoWithCommit(t)
	out := filepath.Join(t.TempDir(), "unstaged.diff")
	p, buf := newPrinter(t)

	kind := NewExporter(repo.Dir).Run(p, out)

	assert.Equal(t, Succeeded, kind)
	assert.Equal(t, "✅ Unstaged changes exported to "+out+"\n", buf.String())
}

func TestRun_ReportsNotARepository(t *testing.T) {
	dir := testutils.NewPlainDir(t)
	p, buf := newPrinter(t)

	kind := NewExporter(dir).Run(p, filepath.Join(dir, "unstaged.diff"))

	assert.Equal(t, NotARepository, kind)
	assert.Contains(t, buf.String(), "❌ Not inside a git working tree.")
}

func TestRun_ReportsCommandFailureWithStderr(t *testing.T) {
	repo := repoWithCommit(t)
	p, buf := newPrinter(t)

	exporter := NewExporter(repo.Dir)
	exporter.SetPaths("../outside-the-repo.txt")
	kind := exporter.Run(p, filepath.Join(t.TempDir(), "unstaged.diff"))

	assert.Equal(t, CommandFailed, kind)
	assert.Contains(t, buf.String(), "❌ Git command failed.\n")
	assert.Contains(t, buf.String(), "fatal:")
}

func TestRun_ReportsUnknownFailure(t *testing.T) {
	repo := repoWithCommit(t)
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	p, buf := newPrinter(t)

	kind := NewExporter(repo.Dir).Run(p, filepath.Join(blocker, "unstaged.diff"))

	assert.Equal(t, UnknownFailure, kind)
	assert.Contains(t, buf.String(), "❌ An unknown error occurred: write ")
}

func TestPreview_ReportsSummary(t *testing.T) {
	repo := repoWithCommit(t)
	repo.WriteFile("docs/readme.md", "changed\n")
	p, buf := newPrinter(t)

	kind := NewExporter(repo.Dir).Preview(p, "unstaged.diff")

	assert.Equal(t, Succeeded, kind)
	assert.Contains(t, buf.String(), "docs/readme.md")
	assert.NoFileExists(t, filepath.Join(repo.Dir, "unstaged.diff"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not a repository", NotARepository.String())
	assert.Equal(t, "command failed", CommandFailed.String())
	assert.Equal(t, "unknown failure", UnknownFailure.String())
	assert.Equal(t, "succeeded", Succeeded.String())
}
