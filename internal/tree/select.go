package tree

// ToggleSelection flips the selection state of path. For a directory the new
// state is applied to the entire subtree; for a file only the file changes.
// Traversal is an explicit work list over child paths.
func (s *Store) ToggleSelection(path string) {
	n := s.Nodes[path]
	if n == nil {
		return
	}
	s.SetSelection(path, !n.Selected)
}

// SetSelection applies state to path and, for directories, to every
// descendant file and directory.
func (s *Store) SetSelection(path string, state bool) {
	work := []string{path}
	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]
		n := s.Nodes[p]
		if n == nil {
			continue
		}
		n.Selected = state
		if n.IsDir {
			work = append(work, n.Children...)
		}
	}
}

// SelectAllVisible clears every selection, then recursively selects each
// path in the visible list. Collapsed subtrees below a visible directory are
// selected along with it.
func (s *Store) SelectAllVisible(visible []string) {
	s.UnselectAll()
	for _, path := range visible {
		if n := s.Nodes[path]; n != nil && !n.Selected {
			s.SetSelection(path, true)
		}
	}
}

// UnselectAll clears the selected flag on every node, visible or not.
func (s *Store) UnselectAll() {
	for _, n := range s.Nodes {
		n.Selected = false
	}
}

// ExpandAll marks every directory expanded.
func (s *Store) ExpandAll() {
	for _, n := range s.Nodes {
		if n.IsDir {
			n.Expanded = true
		}
	}
}

// CollapseAll collapses every directory except the scan root, which stays
// expanded so the view is never empty.
func (s *Store) CollapseAll() {
	for _, n := range s.Nodes {
		if n.IsDir {
			n.Expanded = false
		}
	}
	if root := s.Nodes[s.Root]; root != nil {
		root.Expanded = true
	}
}
