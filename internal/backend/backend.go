// Package backend invokes the external packaging tools. Both backends take
// the selected file list, run the tool from the scan root, and put the result
// on the clipboard; they differ in how the tool is driven and where its
// output lands.
package backend

import "context"

// Kind identifies one of the two fixed backends.
type Kind int

const (
	Repomix Kind = iota
	Yek
)

func (k Kind) String() string {
	if k == Yek {
		return "yek"
	}
	return "repomix"
}

// DisplayName is the capitalized form used in the UI.
func (k Kind) DisplayName() string {
	if k == Yek {
		return "Yek"
	}
	return "Repomix"
}

// ParseKind maps a configuration value to a Kind; unknown values mean
// repomix, the default backend.
func ParseKind(s string) Kind {
	if s == "yek" {
		return Yek
	}
	return Repomix
}

// Format selects the output format of a repomix run. Yek ignores it.
type Format int

const (
	Plain Format = iota
	Markdown
	XML
)

func (f Format) String() string {
	switch f {
	case Markdown:
		return "markdown"
	case XML:
		return "xml"
	default:
		return "plain"
	}
}

// Next cycles to the following format, for the UI toggle.
func (f Format) Next() Format {
	switch f {
	case Plain:
		return Markdown
	case Markdown:
		return XML
	default:
		return Plain
	}
}

// repomixFlag is the --style argument for non-default formats, empty for
// plain text.
func (f Format) repomixFlag() string {
	switch f {
	case Markdown:
		return "--style=markdown"
	case XML:
		return "--style=xml"
	default:
		return ""
	}
}

// ParseFormat maps a configuration value to a Format; unknown values mean
// plain text.
func ParseFormat(s string) Format {
	switch s {
	case "markdown":
		return Markdown
	case "xml":
		return XML
	default:
		return Plain
	}
}

// Options are the user-toggleable run options, loaded from configuration and
// flipped from the UI.
type Options struct {
	Compress      bool
	StripComments bool
	IncludeTree   bool
	Format        Format
}

// Backend runs a packaging tool over the selected files. treeText is the
// pre-rendered directory listing, computed by the caller before the run is
// handed to a background task; it is prepended to the output when the
// include-tree option is on. Run must honor ctx and return a short
// human-readable success message.
type Backend interface {
	Kind() Kind
	Validate(files []string) []string
	Run(ctx context.Context, files []string, opts Options, treeText string) (string, error)
}
