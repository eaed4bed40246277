// Command repopick is an interactive terminal file browser for assembling
// LLM context: walk a directory tree, select files, watch the token estimate,
// and hand the selection to repomix or yek for packaging.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/repopick/repopick/internal/app"
	"github.com/repopick/repopick/internal/backend"
	"github.com/repopick/repopick/internal/config"
	"github.com/repopick/repopick/internal/logger"
	"github.com/repopick/repopick/internal/scan"
	"github.com/repopick/repopick/internal/tokens"
)

var (
	useYek     bool
	useRepomix bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "repopick [directory]",
	Short: "Interactive file picker with repomix and yek packaging backends",
	Long: `Repopick scans a directory, shows it as a navigable tree, and keeps a
live token-count estimate for whatever you select. Press r to package the
selection with repomix or yek; the result lands on your clipboard.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if useYek && useRepomix {
			return fmt.Errorf("cannot specify both --yek and --repomix")
		}

		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("path is not a directory: %s", dir)
		}
		root, err := filepath.Abs(dir)
		if err != nil {
			return err
		}

		level := "info"
		if verbose {
			level = "debug"
		}
		if logPath, err := logger.DefaultPath(); err == nil {
			// Logging is best-effort; the browser works without it.
			_ = logger.Init(level, logPath)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		kind := backend.ParseKind(cfg.DefaultBackend)
		if useYek {
			kind = backend.Yek
		} else if useRepomix {
			kind = backend.Repomix
		}

		// The chosen backend must exist before the screen is taken over, so
		// the install hint stays readable.
		backends, err := buildBackends(root, kind)
		if err != nil {
			return err
		}

		scanner, err := scan.NewScanner(root, cfg.Exclude)
		if err != nil {
			return err
		}
		store, err := scanner.Scan()
		if err != nil {
			return err
		}

		counter, err := tokens.NewCounter()
		if err != nil {
			return fmt.Errorf("failed to initialize tokenizer: %w", err)
		}

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to create terminal screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		screen.EnableMouse()
		defer screen.Fini()

		return app.New(screen, store, kind, cfg, backends, counter).Run()
	},
}

// buildBackends constructs both backends; only the chosen one is required.
// The other is kept when available so a future backend switch needs no
// restart, and dropped silently when its tool is missing.
func buildBackends(root string, required backend.Kind) (map[backend.Kind]backend.Backend, error) {
	backends := make(map[backend.Kind]backend.Backend)

	repomix, repomixErr := backend.NewRepomix(root)
	if repomixErr == nil {
		backends[backend.Repomix] = repomix
	}
	yek, yekErr := backend.NewYek(root)
	if yekErr == nil {
		backends[backend.Yek] = yek
	}

	if _, ok := backends[required]; !ok {
		if required == backend.Yek {
			return nil, yekErr
		}
		return nil, repomixErr
	}
	return backends, nil
}

func init() {
	rootCmd.Flags().BoolVar(&useYek, "yek", false, "Use the yek backend instead of repomix")
	rootCmd.Flags().BoolVar(&useRepomix, "repomix", false, "Use the repomix backend (default)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
