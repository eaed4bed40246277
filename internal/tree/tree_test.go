package tree

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// buildStore creates a small fixed tree:
//
//	/root
//	├── docs/
//	│   └── guide.md
//	├── src/
//	│   ├── util/
//	│   │   └── util.go
//	│   └── main.go
//	└── README.md
func buildStore() *Store {
	root := filepath.FromSlash("/root")
	s := NewStore(root)
	s.Add(root, true, 0)
	s.Add(filepath.Join(root, "README.md"), false, 1)
	s.Add(filepath.Join(root, "src"), true, 1)
	s.Add(filepath.Join(root, "docs"), true, 1)
	s.Add(filepath.Join(root, "src", "main.go"), false, 2)
	s.Add(filepath.Join(root, "src", "util"), true, 2)
	s.Add(filepath.Join(root, "src", "util", "util.go"), false, 3)
	s.Add(filepath.Join(root, "docs", "guide.md"), false, 2)
	s.SortChildren()
	return s
}

func p(elem ...string) string {
	return filepath.Join(append([]string{filepath.FromSlash("/root")}, elem...)...)
}

func TestSortChildrenDirsFirst(t *testing.T) {
	s := buildStore()
	got := s.Node(p()).Children
	want := []string{p("docs"), p("src"), p("README.md")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("root children = %v, want %v", got, want)
	}
}

func TestVisibleSkipsRoot(t *testing.T) {
	s := buildStore()
	s.Node(p()).Expanded = true

	got := s.Visible()
	want := []string{p("docs"), p("src"), p("README.md")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Visible() = %v, want %v", got, want)
	}

	s.Node(p("src")).Expanded = true
	got = s.Visible()
	want = []string{p("docs"), p("src"), p("src", "util"), p("src", "main.go"), p("README.md")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Visible() after expanding src = %v, want %v", got, want)
	}
}

func TestVisibleEmptyWhenRootCollapsed(t *testing.T) {
	s := buildStore()
	if got := s.Visible(); len(got) != 0 {
		t.Errorf("Visible() with collapsed root = %v, want empty", got)
	}
}

func TestToggleSelectionRecursive(t *testing.T) {
	s := buildStore()
	s.ToggleSelection(p("src"))

	for _, path := range []string{p("src"), p("src", "main.go"), p("src", "util"), p("src", "util", "util.go")} {
		if !s.Node(path).Selected {
			t.Errorf("%s not selected after directory toggle", path)
		}
	}
	if s.Node(p("README.md")).Selected {
		t.Error("README.md selected, toggle leaked outside the subtree")
	}

	s.ToggleSelection(p("src"))
	for path, n := range s.Nodes {
		if n.Selected {
			t.Errorf("%s still selected after toggling back", path)
		}
	}
}

func TestToggleSelectionFileOnly(t *testing.T) {
	s := buildStore()
	s.ToggleSelection(p("src", "main.go"))

	if !s.Node(p("src", "main.go")).Selected {
		t.Fatal("file not selected")
	}
	if s.Node(p("src")).Selected || s.Node(p("src", "util", "util.go")).Selected {
		t.Error("file toggle affected other nodes")
	}
}

func TestDirsWithSelectedDescendants(t *testing.T) {
	s := buildStore()
	s.ToggleSelection(p("src", "util", "util.go"))

	marked := s.DirsWithSelectedDescendants()
	for _, dir := range []string{p("src", "util"), p("src"), p()} {
		if !marked[dir] {
			t.Errorf("%s should have a selected descendant", dir)
		}
	}
	if marked[p("docs")] {
		t.Error("docs marked but holds no selected node")
	}
}

func TestRelevantCorrectness(t *testing.T) {
	s := buildStore()
	s.ToggleSelection(p("docs", "guide.md"))
	marked := s.DirsWithSelectedDescendants()

	// For all directories D: marked iff at least one node strictly under D
	// is selected.
	for path, n := range s.Nodes {
		if !n.IsDir {
			continue
		}
		want := false
		for other, on := range s.Nodes {
			if on.Selected && strings.HasPrefix(other, path+string(filepath.Separator)) {
				want = true
				break
			}
		}
		if marked[path] != want {
			t.Errorf("marked[%s] = %v, want %v", path, marked[path], want)
		}
	}
}

func TestSelectAllVisible(t *testing.T) {
	s := buildStore()
	s.Node(p()).Expanded = true

	s.ToggleSelection(p("docs", "guide.md"))
	s.Node(p("docs")).Expanded = false

	s.SelectAllVisible(s.Visible())

	// Everything under visible entries is selected, including files inside
	// collapsed directories.
	for _, path := range []string{p("docs"), p("docs", "guide.md"), p("src"), p("src", "main.go"), p("src", "util", "util.go"), p("README.md")} {
		if !s.Node(path).Selected {
			t.Errorf("%s not selected by SelectAllVisible", path)
		}
	}
}

func TestUnselectAllIncludesCollapsed(t *testing.T) {
	s := buildStore()
	s.ToggleSelection(p("src"))
	s.Node(p("src")).Expanded = false

	s.UnselectAll()
	for path, n := range s.Nodes {
		if n.Selected {
			t.Errorf("%s still selected after UnselectAll", path)
		}
	}
}

func TestCollapseAllKeepsRootExpanded(t *testing.T) {
	s := buildStore()
	s.ExpandAll()
	s.CollapseAll()

	if !s.Node(p()).Expanded {
		t.Error("root collapsed by CollapseAll")
	}
	if s.Node(p("src")).Expanded {
		t.Error("src still expanded after CollapseAll")
	}
}

func TestSelectedFilesSortedFilesOnly(t *testing.T) {
	s := buildStore()
	s.ToggleSelection(p("src"))
	s.ToggleSelection(p("README.md"))

	got := s.SelectedFiles()
	want := []string{p("README.md"), p("src", "main.go"), p("src", "util", "util.go")}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SelectedFiles() = %v, want %v", got, want)
	}
	if got := s.SelectedFileCount(); got != 3 {
		t.Errorf("SelectedFileCount() = %d, want 3", got)
	}
}
