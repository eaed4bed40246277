package backend

import (
	"path/filepath"
	"testing"

	"github.com/repopick/repopick/internal/tree"
)

func TestRenderTree(t *testing.T) {
	root := filepath.FromSlash("/repo")
	st := tree.NewStore(root)
	st.Add(root, true, 0)
	st.Add(filepath.Join(root, "src"), true, 1)
	st.Add(filepath.Join(root, "src", "main.go"), false, 2)
	st.Add(filepath.Join(root, "src", "util.go"), false, 2)
	st.Add(filepath.Join(root, "README.md"), false, 1)
	st.SortChildren()

	got := RenderTree(st)
	want := "" +
		"├── src\n" +
		"│   ├── main.go\n" +
		"│   └── util.go\n" +
		"└── README.md\n"
	if got != want {
		t.Errorf("rendered tree:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderTreeEmptyStore(t *testing.T) {
	st := tree.NewStore(filepath.FromSlash("/repo"))
	if got := RenderTree(st); got != "" {
		t.Errorf("rendered %q for an empty store", got)
	}
}
