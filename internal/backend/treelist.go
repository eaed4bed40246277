package backend

import (
	"strings"

	"github.com/repopick/repopick/internal/tree"
)

// RenderTree returns the scanned directory structure as indented text, one
// entry per line with box-drawing connectors. The scan root itself is not
// printed. The caller renders this on the control loop and passes the result
// into Run, so background tasks never touch the store.
func RenderTree(st *tree.Store) string {
	var sb strings.Builder
	root, ok := st.Nodes[st.Root]
	if !ok {
		return ""
	}
	for i, child := range root.Children {
		renderSubtree(st, &sb, child, "", i == len(root.Children)-1)
	}
	return sb.String()
}

func renderSubtree(st *tree.Store, sb *strings.Builder, path, prefix string, isLast bool) {
	node, ok := st.Nodes[path]
	if !ok {
		return
	}

	marker := "├── "
	if isLast {
		marker = "└── "
	}
	sb.WriteString(prefix + marker + node.Name + "\n")

	if !node.IsDir {
		return
	}
	childPrefix := prefix
	if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}
	for i, child := range node.Children {
		renderSubtree(st, sb, child, childPrefix, i == len(node.Children)-1)
	}
}
