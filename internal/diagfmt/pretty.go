package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"indentguard/internal/diag"
	"indentguard/internal/source"
)

type palette struct {
	path, code, gutter, caret, note, fix, del, add *color.Color
	sev                                            map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		code:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgRed, color.Bold),
		note:   color.New(color.FgCyan),
		fix:    color.New(color.FgGreen),
		del:    color.New(color.FgRed),
		add:    color.New(color.FgGreen),
		sev: map[diag.Severity]*color.Color{
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevError:   color.New(color.FgRed, color.Bold),
		},
	}
	all := []*color.Color{p.path, p.code, p.gutter, p.caret, p.note, p.fix, p.del, p.add}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	if c, ok := p.sev[s]; ok {
		return c
	}
	return p.code
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^^^ по Span, затем Notes и Fixes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	p := newPalette(opts.Color)
	tabWidth := opts.TabWidth
	if tabWidth <= 0 {
		tabWidth = 4
	}
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, &d, fs, opts, p, tabWidth)
	}
}

func prettyOne(w io.Writer, d *diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, p palette, tabWidth int) {
	file := fs.Get(d.Primary.File)
	path := formatPath(file, fs, opts.PathMode)

	loc := d.Loc
	if loc.Line == 0 && file != nil {
		loc = file.Position(d.Primary.Start)
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.path.Sprintf("%s:%d:%d", path, loc.Line, loc.Col),
		p.severity(d.Severity).Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message,
	)
	if file == nil || loc.Line == 0 || len(file.Content) == 0 {
		return
	}

	width := len(fmt.Sprintf("%d", loc.Line))
	first := loc.Line
	if ctx := uint32(max(opts.Context, 0)); ctx > 0 {
		first = 1
		if loc.Line > ctx {
			first = loc.Line - ctx
		}
	}
	for line := first; line <= loc.Line; line++ {
		text := expandTabs(file.GetLine(line), tabWidth)
		fmt.Fprintf(w, " %s %s\n", p.gutter.Sprintf("%*d |", width, line), text)
	}

	lineText := file.GetLine(loc.Line)
	lineStart := file.LineStart(loc.Line)
	startCol, caretLen := caretRange(lineText, lineStart, d.Primary, tabWidth)
	fmt.Fprintf(w, " %s %s%s\n",
		p.gutter.Sprintf("%*s |", width, ""),
		strings.Repeat(" ", startCol),
		p.caret.Sprint(strings.Repeat("^", caretLen)),
	)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			nf := fs.Get(n.Span.File)
			pos := source.LineCol{}
			if nf != nil {
				pos = nf.Position(n.Span.Start)
			}
			fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", p.note.Sprint("note:"), formatPath(nf, fs, opts.PathMode), pos.Line, pos.Col, n.Msg)
		}
	}
	if opts.ShowFixes {
		for k, f := range d.Fixes {
			label := fmt.Sprintf("fix #%d: %s", k+1, f.Title)
			if f.ID != "" {
				label += fmt.Sprintf(" (id=%s)", f.ID)
			}
			fmt.Fprintf(w, "  %s\n", p.fix.Sprint(label))
			for _, e := range f.Edits {
				fmt.Fprintf(w, "    edit [%d, %d) apply=%q\n", e.Start, e.End, e.NewText)
				if !opts.ShowPreview {
					continue
				}
				preview, err := buildFixEditPreview(file, e)
				if err != nil {
					continue
				}
				fmt.Fprintln(w, "    preview:")
				for _, l := range preview.before {
					fmt.Fprintf(w, "      %s\n", p.del.Sprint("- "+showIndent(l)))
				}
				for _, l := range preview.after {
					fmt.Fprintf(w, "      %s\n", p.add.Sprint("+ "+showIndent(l)))
				}
			}
		}
	}
}

// caretRange returns the display column and width of the part of span
// that lies on the line starting at lineStart.
func caretRange(line string, lineStart uint32, span source.Span, tabWidth int) (col, length int) {
	clamp := func(off uint32) int {
		if off < lineStart {
			return 0
		}
		return min(int(off-lineStart), len(line))
	}
	from, to := clamp(span.Start), clamp(span.End)
	col = displayWidth(line[:from], tabWidth)
	length = displayWidth(line[:to], tabWidth) - col
	if length <= 0 {
		length = 1
	}
	return col, length
}

func displayWidth(s string, tabWidth int) int {
	return runewidth.StringWidth(expandTabs(s, tabWidth))
}

// expandTabs replaces tabs with spaces up to the next tab stop.
func expandTabs(s string, tabWidth int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var sb strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			sb.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		sb.WriteRune(r)
		col += runewidth.RuneWidth(r)
	}
	return sb.String()
}
