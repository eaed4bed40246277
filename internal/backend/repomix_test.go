package backend

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

func abs(root string, rel ...string) string {
	return filepath.Join(append([]string{root}, rel...)...)
}

func TestRepomixArgsBaseline(t *testing.T) {
	root := filepath.FromSlash("/repo")
	files := []string{abs(root, "main.go"), abs(root, "pkg", "util.go")}

	args, err := repomixArgs(files, root, Options{}, filepath.Join(root, "out.md"))
	if err != nil {
		t.Fatal(err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{"--no-gitignore", "--no-default-patterns", "--no-directory-structure"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %s: %v", want, args)
		}
	}
	for _, banned := range []string{"--compress", "--remove-comments", "--style"} {
		if strings.Contains(joined, banned) {
			t.Errorf("args contain %s with default options: %v", banned, args)
		}
	}
	if !strings.Contains(joined, "--include main.go,pkg/util.go") {
		t.Errorf("include list wrong: %v", args)
	}
	if args[len(args)-1] != "." {
		t.Errorf("last argument = %q, want the target directory", args[len(args)-1])
	}
}

func TestRepomixArgsOptions(t *testing.T) {
	root := filepath.FromSlash("/repo")
	files := []string{abs(root, "main.go")}
	opts := Options{Compress: true, StripComments: true, Format: Markdown}

	args, err := repomixArgs(files, root, opts, filepath.Join(root, "out.md"))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(args, " ")
	for _, want := range []string{"--compress", "--remove-comments", "--style=markdown"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %s: %v", want, args)
		}
	}
}

func TestRepomixArgsRejectsUnsafePaths(t *testing.T) {
	root := filepath.FromSlash("/repo")
	files := []string{
		filepath.FromSlash("/elsewhere/secret.txt"), // outside root
		abs(root, "a,b.go"),                         // comma splits the include list
		abs(root, "ok.go"),
	}

	args, err := repomixArgs(files, root, Options{}, filepath.Join(root, "out.md"))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "--include ok.go") {
		t.Errorf("include list should hold only ok.go: %v", args)
	}
	if strings.Contains(joined, "secret") || strings.Contains(joined, "a,b") {
		t.Errorf("unsafe path leaked into args: %v", args)
	}
}

func TestRepomixArgsErrorWhenNothingValid(t *testing.T) {
	root := filepath.FromSlash("/repo")
	files := []string{filepath.FromSlash("/elsewhere/secret.txt")}
	if _, err := repomixArgs(files, root, Options{}, filepath.Join(root, "out.md")); err == nil {
		t.Fatal("expected an error when every path is filtered out")
	}
}

func TestDirectoryPatternsCollapseBigDirs(t *testing.T) {
	root := filepath.FromSlash("/repo")
	var files []string
	// 12 files in src collapse to a glob; 2 files in docs stay individual.
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		files = append(files, abs(root, "src", name+".go"))
	}
	files = append(files, abs(root, "docs", "x.md"), abs(root, "docs", "y.md"))

	patterns := directoryPatterns(files, root)
	sort.Strings(patterns)
	want := []string{"docs/x.md", "docs/y.md", "src/**"}
	if len(patterns) != len(want) {
		t.Fatalf("patterns = %v, want %v", patterns, want)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Errorf("patterns[%d] = %q, want %q", i, patterns[i], want[i])
		}
	}
}

func TestRepomixArgsSwitchToPatternsAboveCeiling(t *testing.T) {
	root := filepath.FromSlash("/repo")
	files := make([]string, 0, maxIncludeFiles+1)
	for i := 0; i <= maxIncludeFiles; i++ {
		files = append(files, abs(root, "gen", "f"+itoa(i)+".go"))
	}

	args, err := repomixArgs(files, root, Options{}, filepath.Join(root, "out.md"))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "gen/**") {
		t.Errorf("expected a directory glob for the overfull dir: %v", args)
	}
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}

func TestRepomixValidateWarnings(t *testing.T) {
	b := &RepomixBackend{root: "/repo", exe: "repomix"}

	if w := b.Validate(nil); len(w) != 1 || !strings.Contains(w[0], "No files selected") {
		t.Errorf("warnings for empty selection = %v", w)
	}

	files := make([]string, 101)
	for i := range files {
		files[i] = abs("/repo", itoa(i)+".go")
	}
	if w := b.Validate(files); len(w) != 1 || !strings.Contains(w[0], "Large number of files") {
		t.Errorf("warnings for big selection = %v", w)
	}

	if w := b.Validate(files[:5]); len(w) != 0 {
		t.Errorf("unexpected warnings for normal selection: %v", w)
	}
}

func TestYekValidateWarnings(t *testing.T) {
	b := &YekBackend{root: "/repo", exe: "yek"}

	if w := b.Validate(nil); len(w) != 1 || !strings.Contains(w[0], "No files selected") {
		t.Errorf("warnings for empty selection = %v", w)
	}

	files := make([]string, 1001)
	for i := range files {
		files[i] = abs("/repo", itoa(i)+".go")
	}
	if w := b.Validate(files); len(w) != 1 || !strings.Contains(w[0], "Large number of files") {
		t.Errorf("warnings for big selection = %v", w)
	}
}

func TestFormatTreeSection(t *testing.T) {
	treeText := "├── a.go\n└── b.go\n"

	if got := formatTreeSection(XML, treeText); !strings.HasPrefix(got, "<directory_structure>\n") {
		t.Errorf("xml section = %q", got)
	}
	if got := formatTreeSection(Markdown, treeText); !strings.HasPrefix(got, "## Directory Structure") {
		t.Errorf("markdown section = %q", got)
	}
	if got := formatTreeSection(Plain, treeText); !strings.HasPrefix(got, "Directory Structure:") {
		t.Errorf("plain section = %q", got)
	}
}

func TestFormatCycle(t *testing.T) {
	if Plain.Next() != Markdown || Markdown.Next() != XML || XML.Next() != Plain {
		t.Error("format cycle broken")
	}
}

func TestParseKindAndFormat(t *testing.T) {
	if ParseKind("yek") != Yek || ParseKind("repomix") != Repomix || ParseKind("") != Repomix {
		t.Error("ParseKind mapping wrong")
	}
	if ParseFormat("markdown") != Markdown || ParseFormat("xml") != XML || ParseFormat("bogus") != Plain {
		t.Error("ParseFormat mapping wrong")
	}
}
