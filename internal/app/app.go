// Package app owns the control loop: one goroutine holding all mutable state
// (tree, aggregates, run identifier), fed by the terminal event pump, the
// background token counter, and the run coordinator. Background tasks never
// touch state directly; everything arrives as a message on a channel.
package app

import (
	"context"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/repopick/repopick/internal/backend"
	"github.com/repopick/repopick/internal/config"
	"github.com/repopick/repopick/internal/logger"
	"github.com/repopick/repopick/internal/runner"
	"github.com/repopick/repopick/internal/tokens"
	"github.com/repopick/repopick/internal/tree"
	"github.com/repopick/repopick/internal/ui"
)

// tickInterval drives status expiry and other periodic housekeeping.
const tickInterval = 100 * time.Millisecond

// App wires the store, the token accounting engine, and the run coordinator
// behind one event loop.
type App struct {
	screen tcell.Screen
	view   *ui.View

	store   *tree.Store
	visible []string
	cursor  int

	kind     backend.Kind
	opts     backend.Options
	cfg      config.Config
	backends map[backend.Kind]backend.Backend

	counter *tokens.Counter
	acct    *tokens.Accountant
	coord   *runner.Coordinator

	status statusLine

	// bulk marks a select-all/unselect-all token sweep; it widens the status
	// TTL and enables progress messages.
	bulk bool
	// suppress silences calculation chatter while the user is navigating.
	suppress     bool
	suppressedAt time.Time

	quit bool
}

// New assembles the application around already-constructed resources. The
// caller owns screen setup and teardown.
func New(screen tcell.Screen, store *tree.Store, kind backend.Kind, cfg config.Config, backends map[backend.Kind]backend.Backend, counter *tokens.Counter) *App {
	a := &App{
		screen:   screen,
		view:     ui.NewView(screen),
		store:    store,
		kind:     kind,
		cfg:      cfg,
		backends: backends,
		counter:  counter,
		coord:    runner.NewCoordinator(),
		status:   newStatusLine(),
		opts: backend.Options{
			Compress:      cfg.Compress,
			StripComments: cfg.StripComments,
			IncludeTree:   cfg.IncludeTree,
			Format:        backend.ParseFormat(cfg.Format),
		},
	}
	a.acct = tokens.NewAccountant(counter.Enqueue)
	a.expandRoot()
	return a
}

func (a *App) expandRoot() {
	if root := a.store.Node(a.store.Root); root != nil && root.IsDir {
		root.Expanded = true
	}
	a.refreshVisible()
}

func (a *App) refreshVisible() {
	a.visible = a.store.Visible()
	if a.cursor >= len(a.visible) {
		a.cursor = len(a.visible) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// Run drives the loop until the user quits. The screen event pump runs on
// its own goroutine so the select below can also react to background
// results and the housekeeping tick.
func (a *App) Run() error {
	a.counter.Start()
	a.refreshTokens(false)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			events <- a.screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for !a.quit {
		a.draw()
		select {
		case ev := <-events:
			a.handleEvent(ev)
		case res := <-a.counter.Results():
			a.applyTokenResult(res)
			a.drainTokenResults()
		case res := <-a.coord.Results():
			a.applyRunResult(res)
		case <-ticker.C:
			a.periodic()
		}
	}

	a.coord.Cancel()
	a.counter.Close()
	return nil
}

func (a *App) draw() {
	a.view.Draw(ui.State{
		Store:   a.store,
		Visible: a.visible,
		Cursor:  a.cursor,
		Backend: a.kind,
		Opts:    a.opts,
		Total:   a.acct.Total(),
		Status:  a.status.Message(),
		Count:   a.acct.Count,
		DirDesc: a.store.DirsWithSelectedDescendants(),
	})
}

func (a *App) handleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a.handleKey(ev)
	case *tcell.EventMouse:
		a.handleMouse(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC, tcell.KeyEscape:
		a.quit = true
		return
	case tcell.KeyUp:
		a.moveCursor(-1)
		return
	case tcell.KeyDown:
		a.moveCursor(1)
		return
	case tcell.KeyLeft:
		a.collapseCurrent()
		return
	case tcell.KeyRight:
		a.expandCurrent()
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q':
		a.quit = true
	case 'r':
		a.runBackend()
	case 'c':
		a.toggleOption(&a.opts.Compress, &a.cfg.Compress, "Compress")
	case 'm':
		a.toggleOption(&a.opts.StripComments, &a.cfg.StripComments, "Remove comments")
	case 't':
		a.toggleOption(&a.opts.IncludeTree, &a.cfg.IncludeTree, "File tree")
	case 'f':
		a.cycleFormat()
	case 'E':
		a.store.ExpandAll()
		a.refreshVisible()
		a.status.Set("Expanded all directories")
	case 'C':
		a.store.CollapseAll()
		a.refreshVisible()
		a.status.Set("Collapsed all directories")
	case 'A':
		a.selectAll()
	case 'U':
		a.unselectAll()
	case ' ':
		a.toggleCurrent()
	case 'k':
		a.moveCursor(-1)
	case 'j':
		a.moveCursor(1)
	case 'h':
		a.collapseCurrent()
	case 'l':
		a.expandCurrent()
	}
}

// moveCursor wraps at both ends. Navigation never changes selections, so no
// token refresh happens; stale calculation chatter is cleared instead.
func (a *App) moveCursor(delta int) {
	if len(a.visible) == 0 {
		return
	}
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = len(a.visible) - 1
	}
	if a.cursor >= len(a.visible) {
		a.cursor = 0
	}
	if !a.bulk && strings.Contains(a.status.Message(), "Calculating tokens") {
		a.status.Clear()
	}
	a.suppress = true
	a.suppressedAt = time.Now()
}

func (a *App) toggleCurrent() {
	if a.cursor >= len(a.visible) {
		return
	}
	a.store.ToggleSelection(a.visible[a.cursor])
	a.suppress = false
	a.refreshTokens(true)
}

func (a *App) collapseCurrent() {
	if a.cursor >= len(a.visible) {
		return
	}
	if n := a.store.Node(a.visible[a.cursor]); n != nil && n.IsDir && n.Expanded {
		n.Expanded = false
		a.refreshVisible()
	}
}

func (a *App) expandCurrent() {
	if a.cursor >= len(a.visible) {
		return
	}
	if n := a.store.Node(a.visible[a.cursor]); n != nil && n.IsDir && !n.Expanded {
		n.Expanded = true
		a.refreshVisible()
	}
}

func (a *App) selectAll() {
	a.store.SelectAllVisible(a.visible)
	a.acct.Clear()
	a.bulk = true
	a.suppress = false
	a.status.Set("Selected all items - calculating tokens...")
	a.refreshTokens(false)
}

func (a *App) unselectAll() {
	a.store.UnselectAll()
	a.acct.Clear()
	a.bulk = false
	a.suppress = false
	a.status.Set("Unselected all items")
}

// toggleOption flips a repomix run option, persists it, and reports the new
// state. The toggles are repomix-only because yek has no equivalents.
func (a *App) toggleOption(opt *bool, persisted *bool, label string) {
	if a.kind != backend.Repomix {
		return
	}
	*opt = !*opt
	*persisted = *opt
	if err := config.Save(a.cfg); err != nil {
		a.status.Setf("Error: config save error %v", err)
		return
	}
	state := "disabled"
	if *opt {
		state = "enabled"
	}
	a.status.Setf("%s: %s", label, state)
}

func (a *App) cycleFormat() {
	if a.kind != backend.Repomix {
		return
	}
	a.opts.Format = a.opts.Format.Next()
	a.cfg.Format = a.opts.Format.String()
	if err := config.Save(a.cfg); err != nil {
		a.status.Setf("Error: config save error %v", err)
		return
	}
	a.status.Setf("Output format: %s", a.opts.Format)
}

func (a *App) handleMouse(ev *tcell.EventMouse) {
	switch {
	case ev.Buttons()&tcell.WheelUp != 0:
		a.moveCursor(-1)
	case ev.Buttons()&tcell.WheelDown != 0:
		a.moveCursor(1)
	case ev.Buttons()&tcell.Button1 != 0:
		x, y := ev.Position()
		a.handleClick(x, y)
	}
}

// handleClick moves the cursor to the clicked entry and either toggles
// expansion (click on a directory's [+]/[-] icon) or selection (anywhere
// else on the entry).
func (a *App) handleClick(x, y int) {
	idx, ok := a.view.RowToIndex(ui.State{Backend: a.kind, Visible: a.visible}, y)
	if !ok {
		return
	}
	a.cursor = idx
	path := a.visible[idx]
	n := a.store.Node(path)
	if n == nil {
		return
	}

	if n.IsDir {
		displayDepth := n.Depth - 1
		if displayDepth < 0 {
			displayDepth = 0
		}
		// "► " or "  " prefix, then two columns per indent level, then the
		// three-column expansion icon.
		iconStart := 2 + displayDepth*2
		if x >= iconStart && x <= iconStart+3 {
			n.Expanded = !n.Expanded
			a.refreshVisible()
			return
		}
	}

	a.store.ToggleSelection(path)
	a.suppress = false
	a.refreshTokens(true)
}

// refreshTokens reconciles the accountant with the current selection,
// debounced for rapid single toggles.
func (a *App) refreshTokens(debounced bool) {
	var stats tokens.RefreshStats
	if debounced {
		var applied bool
		stats, applied = a.acct.RefreshDebounced(a.store)
		if !applied {
			return
		}
	} else {
		stats = a.acct.Refresh(a.store)
	}

	if stats.Overflow > 0 && a.bulk && !a.suppress {
		a.status.Setf("Processing %d files (showing first %d)...", stats.Queued+stats.Overflow, tokens.MaxFilesPerRefresh)
	}
}

func (a *App) applyTokenResult(res tokens.Result) {
	done := a.acct.Apply(res.Path, res.Count)
	a.acct.RecomputeTotals(a.store)

	if done {
		if a.bulk {
			a.bulk = false
			a.status.Setf("✓ Calculated tokens for %d files", a.store.SelectedFileCount())
		}
		return
	}
	if a.bulk && !a.suppress {
		completed, total := a.acct.Progress()
		a.status.Setf("Calculating tokens... %d/%d", completed, total)
	}
}

func (a *App) drainTokenResults() {
	for {
		select {
		case res := <-a.counter.Results():
			a.applyTokenResult(res)
		default:
			return
		}
	}
}

// runBackend launches the current backend over the selected files, first
// cancelling any run in flight so results cannot interleave.
func (a *App) runBackend() {
	files := a.store.SelectedFiles()
	if len(files) == 0 {
		a.status.Set("No files selected for processing")
		return
	}

	be := a.backends[a.kind]
	if warnings := be.Validate(files); len(warnings) > 0 {
		a.status.Setf("Warning: %s", strings.Join(warnings, ", "))
	}

	if a.coord.Running() {
		a.status.Set("Cancelling previous run and restarting...")
	}

	// Render the listing here, on the loop goroutine; the background task
	// must not read the store.
	var treeText string
	if a.opts.IncludeTree {
		treeText = backend.RenderTree(a.store)
	}
	opts := a.opts

	id := a.coord.Start(func(ctx context.Context) (string, error) {
		return be.Run(ctx, files, opts, treeText)
	})
	logger.Get().Info().Uint64("id", id).Int("files", len(files)).Str("backend", a.kind.String()).Msg("backend run dispatched")
	a.status.Setf("Running %s on %d files...", a.kind.DisplayName(), len(files))
}

func (a *App) applyRunResult(res runner.Result) {
	if !a.coord.Apply(res) {
		return
	}
	switch res.Outcome {
	case runner.Success:
		msg := res.Message
		if len(msg) > 100 {
			msg = msg[:100] + "..."
		}
		a.status.Set("✓ " + msg)
	case runner.Cancelled:
		a.status.Set("Operation cancelled")
	default:
		a.status.Setf("Error: %v", res.Err)
	}
}

// periodic expires the status line and lifts navigation suppression after a
// quiet period.
func (a *App) periodic() {
	if !a.coord.Running() {
		a.status.Expire(a.bulk)
	}
	if a.suppress && time.Since(a.suppressedAt) > 2*time.Second {
		a.suppress = false
	}
}

