// ABOUTME: Top-level failure classification and user-facing reporting for an export run
// ABOUTME: Every failure is printed, none escapes as a crash

package export

import (
	"errors"

	"github.com/obra/git-export-unstaged/internal/console"
	"github.com/obra/git-export-unstaged/internal/git"
	"github.com/obra/git-export-unstaged/internal/log"
	"github.com/obra/git-export-unstaged/internal/textenc"
)

// Kind classifies the outcome of a run
type Kind int

const (
	// Succeeded means the diff was written
	Succeeded Kind = iota
	// NotARepository means the work tree probe failed
	NotARepository
	// CommandFailed means git diff exited non-zero
	CommandFailed
	// UnknownFailure covers everything else: missing git, I/O errors, ...
	UnknownFailure
)

func (k Kind) String() string {
	switch k {
	case Succeeded:
		return "succeeded"
	case NotARepository:
		return "not a repository"
	case CommandFailed:
		return "command failed"
	default:
		return "unknown failure"
	}
}

// Classify maps an error returned by Export or DryRun onto a Kind
func Classify(err error) Kind {
	if err == nil {
		return Succeeded
	}
	if errors.Is(err, ErrNotRepository) {
		return NotARepository
	}
	if errors.Is(err, git.ErrCommandFailed) {
		return CommandFailed
	}
	return UnknownFailure
}

// Run exports to outputPath and reports the outcome on p.
// The returned Kind is informational; failures have already been printed.
func (e *Exporter) Run(p *console.Printer, outputPath string) Kind {
	result, err := e.Export(outputPath)
	if err != nil {
		return Report(p, err)
	}

	p.SuccessWithPath("Unstaged changes exported to", result.Path)
	return Succeeded
}

// Preview runs a dry run and prints the summary on p
func (e *Exporter) Preview(p *console.Printer, outputPath string) Kind {
	summary, err := e.DryRun(outputPath)
	if err != nil {
		return Report(p, err)
	}

	p.Detail(summary)
	return Succeeded
}

// Report prints the message for a failed run and returns its Kind
func Report(p *console.Printer, err error) Kind {
	kind := Classify(err)
	log.Debugw("export failed", "kind", kind.String(), "error", err)

	switch kind {
	case NotARepository:
		p.Failure("Not inside a git working tree.")
	case CommandFailed:
		p.Failure("Git command failed.")
		var cmdErr *git.CommandError
		if errors.As(err, &cmdErr) {
			p.Detail(textenc.Lenient(cmdErr.Stderr))
		}
	default:
		p.Failure("An unknown error occurred: %v", err)
	}

	return kind
}
