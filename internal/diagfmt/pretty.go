package diagfmt

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"cooklang/internal/diag"
	"cooklang/internal/source"
)

// Pretty renders diagnostics in a human-readable form. Expects bag.Sort()
// to have been called. For each diagnostic:
//
//	<path>:<line>:<col>: <SEV> <CODE>: <message>
//	  <source line>
//	  ^~~~~
//	  note: ...
//	  help: ...
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		prettyOne(w, &d, fs, opts)
	}
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return color.New(color.FgRed, color.Bold)
	case diag.SevWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgCyan, color.Bold)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sev := severityColor(d.Severity)
	if !opts.Color {
		sev.DisableColor()
	}

	loc, line, caret := location(fs, d.Primary, opts.PathMode)
	if loc != "" {
		fmt.Fprintf(w, "%s: %s %s: %s\n", loc, sev.Sprint(d.Severity), d.Code.ID(), d.Message)
	} else {
		fmt.Fprintf(w, "%s %s: %s\n", sev.Sprint(d.Severity), d.Code.ID(), d.Message)
	}
	if line != "" {
		fmt.Fprintf(w, "  %s\n", line)
		fmt.Fprintf(w, "  %s\n", sev.Sprint(caret))
	}

	if opts.ShowNotes {
		for _, note := range d.Notes {
			noteLoc, _, _ := location(fs, note.Span, opts.PathMode)
			if noteLoc != "" {
				fmt.Fprintf(w, "  note: %s (%s)\n", note.Msg, noteLoc)
			} else {
				fmt.Fprintf(w, "  note: %s\n", note.Msg)
			}
		}
	}
	if opts.ShowHelp && d.Help != "" {
		fmt.Fprintf(w, "  help: %s\n", d.Help)
	}
}

// location resolves a span to "path:line:col" plus the source line and a
// caret underline aligned under the span. Tabs are expanded to single
// spaces so the underline stays aligned.
func location(fs *source.FileSet, span source.Span, mode PathMode) (loc, line, caret string) {
	if fs == nil || int(span.File) >= fs.Len() {
		return "", "", ""
	}
	f := fs.Get(span.File)
	if span.Empty() && len(f.Content) == 0 {
		return displayPath(f, fs, mode), "", ""
	}

	start, end := fs.Resolve(span)
	loc = fmt.Sprintf("%s:%d:%d", displayPath(f, fs, mode), start.Line, start.Col)

	raw := f.GetLine(start.Line)
	line = strings.ReplaceAll(raw, "\t", " ")

	// columns are 1-based byte offsets into the line
	from := clamp(int(start.Col)-1, 0, len(raw))
	to := len(raw)
	if end.Line == start.Line {
		to = clamp(int(end.Col)-1, from, len(raw))
	}

	// underline only the part of the span on its first line
	width := runewidth.StringWidth(strings.ReplaceAll(raw[:from], "\t", " "))
	spanLen := runewidth.StringWidth(raw[from:to])
	if spanLen < 1 {
		spanLen = 1
	}

	caret = strings.Repeat(" ", width) + "^" + strings.Repeat("~", spanLen-1)
	return loc, line, caret
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func displayPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeAbsolute:
		return f.Path
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		return f.DisplayPath(fs.BaseDir())
	}
}
