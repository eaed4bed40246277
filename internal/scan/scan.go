// Package scan walks a directory and builds the tree store the rest of the
// application navigates. Filtering combines the project .gitignore, a fixed
// skip list of heavy build directories, a file-size ceiling, and
// user-configured exclude globs.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/repopick/repopick/internal/tree"
)

// maxFileSize is the per-file ceiling; anything larger is almost certainly
// binary or generated data and would only stall tokenization.
const maxFileSize = 100_000_000

// skipDirs are dependency and build output directories that routinely hold
// thousands of generated files.
var skipDirs = map[string]bool{
	"target":        true,
	"node_modules":  true,
	"build":         true,
	"dist":          true,
	".next":         true,
	".nuxt":         true,
	"__pycache__":   true,
	".pytest_cache": true,
	".mypy_cache":   true,
	".tox":          true,
	"venv":          true,
	".venv":         true,
	"coverage":      true,
	".idea":         true,
	".vscode":       true,
}

// Scanner filters paths while walking the tree.
type Scanner struct {
	root      string
	gitIgnore *ignore.GitIgnore
	excludes  []string
}

// NewScanner prepares a scanner rooted at root. The project's .gitignore is
// compiled when present; excludes are doublestar globs matched against the
// slash-separated path relative to root.
func NewScanner(root string, excludes []string) (*Scanner, error) {
	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	s := &Scanner{root: root, excludes: excludes}

	gitIgnorePath := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(gitIgnorePath); err == nil {
		gi, err := ignore.CompileIgnoreFile(gitIgnorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s: %w", gitIgnorePath, err)
		}
		s.gitIgnore = gi
	}

	return s, nil
}

// Scan walks the root directory and returns a fully linked store with
// children in display order. Unreadable entries are skipped, symlinks are
// not followed.
func (s *Scanner) Scan() (*tree.Store, error) {
	info, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", s.root)
	}

	store := tree.NewStore(s.root)

	err = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Permission problems on a subtree are not fatal; just leave
			// it out of the store.
			if path == s.root {
				return walkErr
			}
			return nil
		}
		if path == s.root {
			store.Add(path, true, 0)
			return nil
		}
		if s.skip(path, d) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		depth := strings.Count(strings.TrimPrefix(path, s.root), string(filepath.Separator))
		store.Add(path, d.IsDir(), depth)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", s.root, err)
	}

	store.SortChildren()
	return store, nil
}

func (s *Scanner) skip(path string, d fs.DirEntry) bool {
	name := d.Name()

	if name == ".git" || name == ".gitignore" {
		return true
	}
	if d.IsDir() && skipDirs[strings.ToLower(name)] {
		return true
	}

	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	if s.gitIgnore != nil {
		if s.gitIgnore.MatchesPath(rel) {
			return true
		}
		// Directory-only patterns ("out/") need the trailing slash to match.
		if d.IsDir() && s.gitIgnore.MatchesPath(rel+"/") {
			return true
		}
	}
	for _, pattern := range s.excludes {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	if !d.IsDir() {
		if info, err := d.Info(); err == nil && info.Size() > maxFileSize {
			return true
		}
		// Symlinks are recorded as neither followed nor read.
		if d.Type()&fs.ModeSymlink != 0 {
			return true
		}
	}

	return false
}
