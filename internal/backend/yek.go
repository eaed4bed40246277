package backend

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/repopick/repopick/internal/logger"
)

// maxYekFiles is a hard ceiling; yek is invoked with one argument per file
// and breaks down well before the full argument-length limit.
const maxYekFiles = 10000

// YekBackend drives the yek CLI. Yek writes the packaged output to stdout
// and takes the file list as plain arguments, so it needs no output file and
// no environment scrubbing.
type YekBackend struct {
	root string
	exe  string
}

// NewYek resolves the yek executable on PATH.
func NewYek(root string) (*YekBackend, error) {
	exe, err := exec.LookPath("yek")
	if err != nil {
		return nil, fmt.Errorf("yek not found in PATH; see https://github.com/bodo-run/yek for install instructions")
	}
	return &YekBackend{root: root, exe: exe}, nil
}

func (b *YekBackend) Kind() Kind { return Yek }

// Validate returns non-blocking warnings for the current selection. Yek is
// more permissive than repomix, so the large-selection threshold is higher.
func (b *YekBackend) Validate(files []string) []string {
	var warnings []string
	if len(files) == 0 {
		warnings = append(warnings, "No files selected")
	}
	if len(files) > 1000 {
		warnings = append(warnings, "Large number of files selected. May take a moment to process.")
	}
	return warnings
}

// Run executes yek over the selected files and copies its stdout to the
// clipboard. Yek ignores the formatting options; treeText is prepended as a
// plain section when the include-tree option is on.
func (b *YekBackend) Run(ctx context.Context, files []string, opts Options, treeText string) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("no files selected for processing")
	}
	if len(files) > maxYekFiles {
		return "", fmt.Errorf("too many files selected (%d); yek may fail with large file counts", len(files))
	}

	args := relativePaths(files, b.root, nil)
	if len(args) == 0 {
		return "", fmt.Errorf("no valid files to process after path validation")
	}

	cmd := exec.CommandContext(ctx, b.exe, args...)
	cmd.Dir = b.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Get().Debug().Int("files", len(args)).Msg("running yek")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("yek failed: %s", commandOutput(stderr.String(), "", err))
	}

	text := stdout.String()
	if opts.IncludeTree {
		text = formatTreeSection(Plain, treeText) + text
	}

	if err := copyText(text); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d files processed and copied to clipboard", len(files)), nil
}
