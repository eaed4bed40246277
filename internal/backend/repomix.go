package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/repopick/repopick/internal/logger"
)

// maxIncludeFiles is the point where one comma-joined --include value risks
// exceeding command-line limits; above it files are grouped into
// directory-based glob patterns instead.
const maxIncludeFiles = 1000

// RepomixBackend drives the repomix CLI in isolation: its own output file,
// no gitignore or default patterns, and a scrubbed environment so no user or
// project repomix configuration can interfere.
type RepomixBackend struct {
	root string
	exe  string
}

// NewRepomix resolves the repomix executable on PATH. The error carries an
// install hint because this is a startup-fatal condition.
func NewRepomix(root string) (*RepomixBackend, error) {
	exe, err := exec.LookPath("repomix")
	if err != nil {
		return nil, fmt.Errorf("repomix not found in PATH; install it with `npm install -g repomix`")
	}
	return &RepomixBackend{root: root, exe: exe}, nil
}

func (b *RepomixBackend) Kind() Kind { return Repomix }

// Validate returns non-blocking warnings for the current selection.
func (b *RepomixBackend) Validate(files []string) []string {
	var warnings []string
	if len(files) == 0 {
		warnings = append(warnings, "No files selected for processing")
	}
	if len(files) > 100 {
		warnings = append(warnings, fmt.Sprintf("Large number of files selected (%d). May take a moment to process.", len(files)))
	}
	return warnings
}

// Run executes repomix over the selected files, reads back its output file,
// prepends the directory listing when requested, and copies the result to
// the clipboard.
func (b *RepomixBackend) Run(ctx context.Context, files []string, opts Options, treeText string) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("no files selected for processing")
	}

	outputFile := filepath.Join(b.root, fmt.Sprintf("repopick-%d.md", os.Getpid()))
	args, err := repomixArgs(files, b.root, opts, outputFile)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, b.exe, args...)
	cmd.Dir = b.root
	cmd.Env = isolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Get().Debug().Strs("args", args).Msg("running repomix")
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("repomix failed: %s", commandOutput(stderr.String(), stdout.String(), err))
	}

	content, err := os.ReadFile(outputFile)
	if err != nil {
		return "", fmt.Errorf("repomix did not create the expected output file: %w", err)
	}
	defer os.Remove(outputFile)

	text := string(content)
	if opts.IncludeTree {
		text = formatTreeSection(opts.Format, treeText) + text
	}

	if err := copyText(text); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d files processed and copied to clipboard", len(files)), nil
}

// repomixArgs builds the full argument list. Options the user did not set
// are pinned off, so a stray repomix.config.json can never change a run.
func repomixArgs(files []string, root string, opts Options, outputFile string) ([]string, error) {
	args := []string{
		"--no-gitignore",
		"--no-default-patterns",
		"--no-directory-structure",
		"--output", outputFile,
	}

	if opts.Compress {
		args = append(args, "--compress")
	}
	if opts.StripComments {
		args = append(args, "--remove-comments")
	}
	if flag := opts.Format.repomixFlag(); flag != "" {
		args = append(args, flag)
	}

	var include []string
	if len(files) > maxIncludeFiles {
		patterns := directoryPatterns(files, root)
		if len(patterns) == 0 {
			return nil, fmt.Errorf("no valid directory patterns could be created")
		}
		include = patterns
	} else {
		valid := relativePaths(files, root, func(rel string) bool {
			// A comma would split the --include value into two patterns.
			if strings.Contains(rel, ",") {
				logger.Get().Warn().Str("path", rel).Msg("skipping file with comma in name")
				return false
			}
			return true
		})
		if len(valid) == 0 {
			return nil, fmt.Errorf("no valid files to process after path validation")
		}
		include = valid
	}

	args = append(args, "--include", strings.Join(include, ","))
	args = append(args, ".")
	return args, nil
}

// relativePaths converts absolute selected paths to slash-separated paths
// relative to root, dropping anything outside root, empty, traversal-shaped,
// or starting with a dash (which the tool would parse as a flag). extra is
// an optional additional filter.
func relativePaths(files []string, root string, extra func(string) bool) []string {
	var out []string
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil || strings.HasPrefix(rel, "..") {
			logger.Get().Warn().Str("path", file).Msg("skipping file outside working directory")
			continue
		}
		rel = filepath.ToSlash(rel)
		if rel == "" || rel == "." || strings.Contains(rel, "..") || strings.HasPrefix(rel, "-") {
			logger.Get().Warn().Str("path", rel).Msg("skipping file with invalid path")
			continue
		}
		if extra != nil && !extra(rel) {
			continue
		}
		out = append(out, rel)
	}
	return out
}

// directoryPatterns groups files by parent directory to keep the --include
// value bounded for very large selections. Directories holding more than ten
// selected files collapse to a "dir/**" glob.
func directoryPatterns(files []string, root string) []string {
	byDir := make(map[string][]string)
	for _, rel := range relativePaths(files, root, nil) {
		dir := ""
		if i := strings.LastIndex(rel, "/"); i >= 0 {
			dir = rel[:i+1]
		}
		byDir[dir] = append(byDir[dir], rel)
	}

	var patterns []string
	for dir, members := range byDir {
		if len(members) > 10 {
			patterns = append(patterns, dir+"**")
			continue
		}
		patterns = append(patterns, members...)
	}
	return patterns
}

// isolatedEnv is a minimal environment with a throwaway HOME, so repomix
// cannot pick up global configuration.
func isolatedEnv() []string {
	fakeHome := filepath.Join(os.TempDir(), "repopick-fake-home")
	os.MkdirAll(fakeHome, 0o755)
	return []string{
		"NODE_ENV=production",
		"NO_UPDATE_NOTIFIER=1",
		"NO_COLOR=1",
		"HOME=" + fakeHome,
		"USERPROFILE=" + fakeHome,
		"XDG_CONFIG_HOME=" + fakeHome,
		"APPDATA=" + fakeHome,
		"PATH=" + os.Getenv("PATH"),
	}
}

// commandOutput condenses a failed command's streams into one message.
func commandOutput(stderr, stdout string, err error) string {
	stderr = strings.TrimSpace(stderr)
	stdout = strings.TrimSpace(stdout)
	switch {
	case stderr != "" && stdout != "":
		return fmt.Sprintf("stderr: %s | stdout: %s", stderr, stdout)
	case stderr != "":
		return stderr
	case stdout != "":
		return stdout
	default:
		return err.Error()
	}
}

// formatTreeSection wraps the directory listing in the markup matching the
// chosen output format.
func formatTreeSection(format Format, treeText string) string {
	switch format {
	case XML:
		return fmt.Sprintf("<directory_structure>\n%s</directory_structure>\n\n", treeText)
	case Markdown:
		return fmt.Sprintf("## Directory Structure\n\n```\n%s\n```\n\n", treeText)
	default:
		return fmt.Sprintf("Directory Structure:\n%s\n", treeText)
	}
}
