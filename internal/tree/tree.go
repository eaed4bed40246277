// Package tree holds the in-memory representation of the scanned directory:
// a flat, path-keyed table of nodes with parent/child links expressed as
// path lists. Everything the UI shows and everything the token accountant
// sums is derived from this store.
package tree

import (
	"path/filepath"
	"sort"
)

// Node is one file-system entry. After the scan only Selected and Expanded
// are ever mutated.
type Node struct {
	// Path is the absolute path and the node's key in the store.
	Path string
	// Name is the last path component, used for display.
	Name string
	// IsDir reports whether the entry is a directory.
	IsDir bool
	// Selected marks the node as chosen for packaging.
	Selected bool
	// Expanded applies to directories only.
	Expanded bool
	// Children holds the paths of direct children, directories first,
	// then files, each group lexicographic.
	Children []string
	// Depth is the distance from the scan root (root = 0).
	Depth int
}

// Store maps every scanned path to its node. The root path is kept so
// traversals know where ancestor walks stop.
type Store struct {
	Root  string
	Nodes map[string]*Node
}

// NewStore returns an empty store rooted at root.
func NewStore(root string) *Store {
	return &Store{
		Root:  root,
		Nodes: make(map[string]*Node),
	}
}

// Add inserts a node for path. The parent's child list is updated when the
// parent is already present; SortChildren must run after the full scan to
// establish display order.
func (s *Store) Add(path string, isDir bool, depth int) *Node {
	n := &Node{
		Path:  path,
		Name:  filepath.Base(path),
		IsDir: isDir,
		Depth: depth,
	}
	s.Nodes[path] = n
	if path != s.Root {
		if parent, ok := s.Nodes[filepath.Dir(path)]; ok && parent.IsDir {
			parent.Children = append(parent.Children, path)
		}
	}
	return n
}

// Node returns the node for path, or nil.
func (s *Store) Node(path string) *Node {
	return s.Nodes[path]
}

// SortChildren puts every directory's child list into display order:
// directories before files, then lexicographic by name.
func (s *Store) SortChildren() {
	for _, n := range s.Nodes {
		if !n.IsDir || len(n.Children) < 2 {
			continue
		}
		children := n.Children
		sort.Slice(children, func(i, j int) bool {
			a, b := s.Nodes[children[i]], s.Nodes[children[j]]
			if a.IsDir != b.IsDir {
				return a.IsDir
			}
			return a.Name < b.Name
		})
	}
}

// Visible returns the flattened list of paths currently visible in the tree
// view: a depth-first walk of expanded directories starting from the root's
// children. The root itself is never listed (rootless view).
func (s *Store) Visible() []string {
	var visible []string
	root := s.Nodes[s.Root]
	if root == nil || !root.IsDir || !root.Expanded {
		return visible
	}
	for _, child := range root.Children {
		s.appendVisible(child, &visible)
	}
	return visible
}

func (s *Store) appendVisible(path string, visible *[]string) {
	n := s.Nodes[path]
	if n == nil {
		return
	}
	*visible = append(*visible, path)
	if n.IsDir && n.Expanded {
		for _, child := range n.Children {
			s.appendVisible(child, visible)
		}
	}
}

// SelectedFiles returns the sorted list of selected file paths (directories
// excluded). This is the exact set handed to the backends and to the token
// accountant.
func (s *Store) SelectedFiles() []string {
	var files []string
	for path, n := range s.Nodes {
		if n.Selected && !n.IsDir {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files
}

// SelectedFileCount counts selected files without allocating the list.
func (s *Store) SelectedFileCount() int {
	count := 0
	for _, n := range s.Nodes {
		if n.Selected && !n.IsDir {
			count++
		}
	}
	return count
}

// Ancestors calls fn for each ancestor directory of path, nearest first,
// ending with the scan root. Paths outside the store are skipped; the walk
// always terminates at the root.
func (s *Store) Ancestors(path string, fn func(dir *Node)) {
	for p := filepath.Dir(path); ; p = filepath.Dir(p) {
		if n, ok := s.Nodes[p]; ok && n.IsDir {
			fn(n)
		}
		if p == s.Root || p == filepath.Dir(p) {
			return
		}
	}
}

// DirsWithSelectedDescendants recomputes, from scratch, which directories
// hold at least one selected node strictly below them. Directories never
// reached by an ancestor walk stay false.
func (s *Store) DirsWithSelectedDescendants() map[string]bool {
	marked := make(map[string]bool)
	for path, n := range s.Nodes {
		if !n.Selected {
			continue
		}
		s.Ancestors(path, func(dir *Node) {
			marked[dir.Path] = true
		})
	}
	return marked
}

// Relevant reports whether a token cache entry should exist for path:
// a selected file, or a directory that is selected or has a selected
// descendant.
func (s *Store) Relevant(path string, dirDescendants map[string]bool) bool {
	n := s.Nodes[path]
	if n == nil {
		return false
	}
	if n.IsDir {
		return n.Selected || dirDescendants[path]
	}
	return n.Selected
}
