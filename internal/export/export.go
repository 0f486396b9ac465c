// ABOUTME: Core logic for exporting unstaged git changes to a file
// ABOUTME: Probes for a work tree, captures git diff, decodes it leniently and writes it out

// Package export captures the unstaged changes of a git work tree into a file.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/obra/git-export-unstaged/internal/diff"
	"github.com/obra/git-export-unstaged/internal/git"
	"github.com/obra/git-export-unstaged/internal/log"
	"github.com/obra/git-export-unstaged/internal/textenc"
)

// DefaultOutput is the file written when no path is given
const DefaultOutput = "unstaged.diff"

// ErrNotRepository is returned when the directory is not inside a git work tree
var ErrNotRepository = errors.New("not a git repository")

// Result describes a completed export
type Result struct {
	// Path is the output path shown to the user: as given, or joined to the
	// repository root when repo-root resolution is on.
	Path    string
	AbsPath string
	Bytes   int
	Stats   diff.Stats
}

// Capture is the decoded diff payload before anything is written
type Capture struct {
	Text  string
	Stats diff.Stats
}

// Exporter runs the probe, diff, decode and write sequence for one directory
type Exporter struct {
	repo     *git.Repository
	dir      string
	encoding string
	repoRoot bool
	paths    []string
}

// NewExporter creates an exporter for the work tree containing dir
func NewExporter(dir string) *Exporter {
	return &Exporter{
		repo:     git.NewRepository(dir),
		dir:      dir,
		encoding: textenc.DefaultEncoding,
	}
}

// SetEncoding sets the encoding git output is decoded from
func (e *Exporter) SetEncoding(name string) {
	e.encoding = name
}

// SetRepoRoot makes relative output paths resolve against the repository top level
func (e *Exporter) SetRepoRoot(enabled bool) {
	e.repoRoot = enabled
}

// SetPaths limits the diff to the given pathspecs
func (e *Exporter) SetPaths(paths ...string) {
	e.paths = paths
}

// Capture verifies the work tree and returns the decoded unstaged diff
func (e *Exporter) Capture() (*Capture, error) {
	inside, err := e.repo.IsInsideWorkTree()
	if err != nil {
		return nil, err
	}
	if !inside {
		return nil, fmt.Errorf("%s: %w", e.dir, ErrNotRepository)
	}

	out, err := e.repo.Diff(e.paths...)
	if err != nil {
		return nil, err
	}
	log.Debugw("git diff captured", "dir", e.dir, "stdout_bytes", len(out.Stdout), "stderr_bytes", len(out.Stderr))

	text, err := textenc.Decode(out.Stdout, e.encoding)
	if err != nil {
		return nil, err
	}

	return &Capture{Text: text, Stats: diff.Summarize(text)}, nil
}

// Export writes the unstaged diff to outputPath, replacing any previous content.
// Nothing is written unless the capture succeeds.
func (e *Exporter) Export(outputPath string) (*Result, error) {
	if outputPath == "" {
		outputPath = DefaultOutput
	}

	captured, err := e.Capture()
	if err != nil {
		return nil, err
	}

	path, abs, err := e.resolve(outputPath)
	if err != nil {
		return nil, err
	}

	data := []byte(captured.Text)
	if err := os.WriteFile(abs, data, 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	log.Debugw("unstaged diff written", "path", abs, "bytes", len(data), "stats", captured.Stats.String())

	return &Result{
		Path:    path,
		AbsPath: abs,
		Bytes:   len(data),
		Stats:   captured.Stats,
	}, nil
}

// DryRun reports what Export would write without touching the filesystem
func (e *Exporter) DryRun(outputPath string) (string, error) {
	if outputPath == "" {
		outputPath = DefaultOutput
	}

	captured, err := e.Capture()
	if err != nil {
		return "", err
	}

	path, _, err := e.resolve(outputPath)
	if err != nil {
		return "", err
	}

	output := fmt.Sprintf("Would write %d bytes to %s\n", len(captured.Text), path)
	output += captured.Stats.String() + "\n"
	for _, file := range captured.Stats.Files {
		output += "  " + file + "\n"
	}

	return output, nil
}

// resolve returns the display path and the absolute path for outputPath
func (e *Exporter) resolve(outputPath string) (string, string, error) {
	if filepath.IsAbs(outputPath) {
		return outputPath, outputPath, nil
	}

	base := e.dir
	path := outputPath
	if e.repoRoot {
		top, err := e.repo.TopLevel()
		if err != nil {
			return "", "", fmt.Errorf("resolve repository root: %w", err)
		}
		base = top
		path = filepath.Join(top, outputPath)
	}

	abs, err := filepath.Abs(filepath.Join(base, outputPath))
	if err != nil {
		return "", "", err
	}

	return path, abs, nil
}
