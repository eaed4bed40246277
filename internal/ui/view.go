// Package ui renders the file browser with tcell: an options row for the
// repomix toggles, a header with the selection summary and the running token
// total, the scrollable tree listing, the status line, and the key hints.
package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/repopick/repopick/internal/backend"
	"github.com/repopick/repopick/internal/tokens"
	"github.com/repopick/repopick/internal/tree"
)

// State is everything the view needs for one frame. The control loop owns
// all of it; the view only reads.
type State struct {
	Store   *tree.Store
	Visible []string
	Cursor  int

	Backend backend.Kind
	Opts    backend.Options

	Total   int
	Status  string
	Count   func(path string) (int, bool)
	DirDesc map[string]bool
}

// View draws frames and keeps the scroll offset between them.
type View struct {
	screen tcell.Screen
	scroll int
}

func NewView(screen tcell.Screen) *View {
	return &View{screen: screen}
}

// ListTop is the first screen row of the tree listing. The repomix options
// row shifts everything down by one.
func (v *View) ListTop(k backend.Kind) int {
	if k == backend.Repomix {
		return 2
	}
	return 1
}

// RowToIndex maps a clicked screen row to an index into the visible list,
// accounting for the current scroll offset.
func (v *View) RowToIndex(st State, row int) (int, bool) {
	top := v.ListTop(st.Backend)
	_, h := v.screen.Size()
	if row < top || row >= h-2 {
		return 0, false
	}
	idx := row - top + v.scroll
	if idx >= len(st.Visible) {
		return 0, false
	}
	return idx, true
}

// Draw renders one full frame.
func (v *View) Draw(st State) {
	v.screen.Clear()
	w, h := v.screen.Size()
	if w <= 0 || h < 4 {
		v.screen.Show()
		return
	}

	row := 0
	if st.Backend == backend.Repomix {
		v.drawOptions(st, row, w)
		row++
	}
	v.drawHeader(st, row, w)
	row++

	top := row
	listRows := h - 2 - top
	if listRows < 1 {
		listRows = 1
	}

	// Keep the cursor on screen.
	if st.Cursor < v.scroll {
		v.scroll = st.Cursor
	}
	if st.Cursor >= v.scroll+listRows {
		v.scroll = st.Cursor - listRows + 1
	}
	if v.scroll < 0 {
		v.scroll = 0
	}

	for i := 0; i < listRows; i++ {
		idx := v.scroll + i
		if idx >= len(st.Visible) {
			break
		}
		v.drawEntry(st, st.Visible[idx], top+i, w, idx == st.Cursor)
	}

	v.drawStatus(st, h-2, w)
	v.drawHints(h-1, w)
	v.screen.Show()
}

func (v *View) drawOptions(st State, y, w int) {
	x := drawText(v.screen, 0, y, w, tcell.StyleDefault, "Options: ")
	x = drawToggle(v.screen, x, y, w, st.Opts.IncludeTree)
	x = drawText(v.screen, x, y, w-x, tcell.StyleDefault, " File Tree (t) │ ")
	x = drawToggle(v.screen, x, y, w, st.Opts.Compress)
	x = drawText(v.screen, x, y, w-x, tcell.StyleDefault, " Compress (c) │ ")
	x = drawToggle(v.screen, x, y, w, st.Opts.StripComments)
	x = drawText(v.screen, x, y, w-x, tcell.StyleDefault, " Remove Comments (m) │ Format: ")
	x = drawText(v.screen, x, y, w-x, tcell.StyleDefault.Foreground(tcell.ColorGreen), formatName(st.Opts.Format))
	drawText(v.screen, x, y, w-x, tcell.StyleDefault, " (f)")
}

func drawToggle(s tcell.Screen, x, y, w int, on bool) int {
	symbol, color := "○", tcell.ColorGray
	if on {
		symbol, color = "●", tcell.ColorGreen
	}
	return drawText(s, x, y, w-x, tcell.StyleDefault.Foreground(color), symbol)
}

func formatName(f backend.Format) string {
	switch f {
	case backend.Markdown:
		return "Markdown"
	case backend.XML:
		return "XML"
	default:
		return "Plain Text"
	}
}

func (v *View) drawHeader(st State, y, w int) {
	rootName := filepath.Base(st.Store.Root)
	selected := st.Store.SelectedFileCount()
	info := fmt.Sprintf("%s  •  Selected: %d items  [%s]", rootName, selected, st.Backend.DisplayName())
	drawText(v.screen, 0, y, w, tcell.StyleDefault.Foreground(tcell.ColorAqua), info)

	tokenText := "Tokens: " + tokens.FormatCount(st.Total)
	x := w - runewidth.StringWidth(tokenText)
	if x > runewidth.StringWidth(info)+2 {
		drawText(v.screen, x, y, w-x, tcell.StyleDefault.Foreground(tcell.ColorYellow), tokenText)
	}
}

func (v *View) drawEntry(st State, path string, y, w int, highlighted bool) {
	n := st.Store.Node(path)
	if n == nil {
		return
	}

	displayDepth := n.Depth - 1
	if displayDepth < 0 {
		displayDepth = 0
	}
	indent := strings.Repeat("  ", displayDepth)

	var icon string
	var color tcell.Color
	if n.IsDir {
		icon = "[+]"
		if n.Expanded {
			icon = "[-]"
		}
		switch {
		case n.Selected:
			color = tcell.ColorGreen
		case st.DirDesc[path]:
			color = tcell.ColorYellow
		default:
			color = tcell.ColorAqua
		}
	} else {
		icon = "○"
		color = tcell.ColorWhite
		if n.Selected {
			icon = "●"
			color = tcell.ColorGreen
		}
	}

	style := tcell.StyleDefault.Foreground(color)
	prefix := "  "
	if highlighted {
		style = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlue)
		prefix = "► "
		// Paint the full row so the highlight reads as a bar.
		for x := 0; x < w; x++ {
			v.screen.SetContent(x, y, ' ', nil, style)
		}
	}

	x := drawText(v.screen, 0, y, w, style, prefix+indent+icon+" "+n.Name)

	if count, ok := entryCount(st, path, n); ok {
		tokenColor := tokenCountColor(count)
		if highlighted {
			tokenColor = tcell.ColorLightBlue
		}
		tokenStyle := style.Foreground(tokenColor)
		drawText(v.screen, x, y, w-x, tokenStyle, " ("+tokens.FormatCount(count)+")")
	}
}

// entryCount decides whether a resolved token count is shown next to the
// entry: selected files, and directories that are selected or hold selected
// descendants.
func entryCount(st State, path string, n *tree.Node) (int, bool) {
	show := n.Selected || (n.IsDir && st.DirDesc[path])
	if !show || st.Count == nil {
		return 0, false
	}
	return st.Count(path)
}

// tokenCountColor grades counts: green below 1K, yellow below 10K, red above.
func tokenCountColor(count int) tcell.Color {
	switch {
	case count < 1_000:
		return tcell.ColorGreen
	case count < 10_000:
		return tcell.ColorYellow
	default:
		return tcell.ColorRed
	}
}

func (v *View) drawStatus(st State, y, w int) {
	if st.Status == "" {
		return
	}
	color := tcell.ColorWhite
	switch {
	case strings.Contains(st.Status, "Success") || strings.Contains(st.Status, "copied to clipboard") || strings.HasPrefix(st.Status, "✓"):
		color = tcell.ColorGreen
	case strings.Contains(st.Status, "Error") || strings.Contains(st.Status, "Failed") || strings.Contains(st.Status, "failed"):
		color = tcell.ColorRed
	case strings.Contains(st.Status, "Warning"):
		color = tcell.ColorYellow
	case strings.Contains(st.Status, "Running") || strings.Contains(st.Status, "Calculating"):
		color = tcell.ColorAqua
	}
	drawText(v.screen, 0, y, w, tcell.StyleDefault.Foreground(color), st.Status)
}

func (v *View) drawHints(y, w int) {
	hints := "↑/↓ navigate • ←/→ collapse/expand dirs • Space select • E expand all • C collapse all • A select all • U unselect all • r run • q quit"
	drawText(v.screen, 0, y, w, tcell.StyleDefault.Foreground(tcell.ColorYellow), hints)
}

// drawText writes text at (x, y), clipping at maxWidth columns, and returns
// the next free column. Width accounting goes through runewidth so wide
// runes and the box-drawing hints render correctly.
func drawText(s tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) int {
	col := x
	limit := x + maxWidth
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if col+rw > limit {
			break
		}
		s.SetContent(col, y, r, nil, style)
		col += rw
	}
	return col
}
