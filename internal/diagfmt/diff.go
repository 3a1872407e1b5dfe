package diagfmt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	godiff "github.com/sourcegraph/go-diff/diff"
)

// FileDiff pairs the text of one file before and after fixing.
type FileDiff struct {
	Path   string
	Before []byte
	After  []byte
}

// DiffStat summarises a rendered diff.
type DiffStat struct {
	Files   int
	Hunks   int
	Added   int
	Removed int
}

func (s DiffStat) String() string {
	return fmt.Sprintf("%d file(s) changed, %d hunk(s), %d insertion(s)(+), %d deletion(s)(-)",
		s.Files, s.Hunks, s.Added, s.Removed)
}

// UnifiedDiff renders one file change as a unified diff with a/ and b/ prefixes.
// Unchanged files produce an empty string.
func UnifiedDiff(fd FileDiff, context int) (string, error) {
	if bytes.Equal(fd.Before, fd.After) {
		return "", nil
	}
	if context <= 0 {
		context = 3
	}
	ud := difflib.UnifiedDiff{
		A:        splitLines(fd.Before),
		B:        splitLines(fd.After),
		FromFile: "a/" + fd.Path,
		ToFile:   "b/" + fd.Path,
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", fd.Path, err)
	}
	return text, nil
}

// splitLines режет текст на строки с сохранением "\n". Последняя строка без
// перевода строки получает маркер "\ No newline at end of file".
func splitLines(text []byte) []string {
	if len(text) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(text), "\n")
	if lines[len(lines)-1] == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n\\ No newline at end of file\n"
	return lines
}

// Diff writes a multi-file unified diff of files and returns its statistics.
// Each generated patch is parsed back so that the output is printed in a
// canonical form and hunks can be counted.
func Diff(w io.Writer, files []FileDiff, opts DiffOpts) (DiffStat, error) {
	var parsed []*godiff.FileDiff
	for _, fd := range files {
		text, err := UnifiedDiff(fd, opts.Context)
		if err != nil {
			return DiffStat{}, err
		}
		if text == "" {
			continue
		}
		fileDiff, err := godiff.ParseFileDiff([]byte(text))
		if err != nil {
			return DiffStat{}, fmt.Errorf("parse generated diff for %s: %w", fd.Path, err)
		}
		parsed = append(parsed, fileDiff)
	}
	if len(parsed) == 0 {
		return DiffStat{}, nil
	}

	stat := DiffStat{Files: len(parsed)}
	for _, fd := range parsed {
		stat.Hunks += len(fd.Hunks)
		s := fd.Stat()
		stat.Added += int(s.Added + s.Changed)
		stat.Removed += int(s.Deleted + s.Changed)
	}

	out, err := godiff.PrintMultiFileDiff(parsed)
	if err != nil {
		return stat, fmt.Errorf("print diff: %w", err)
	}
	if err := writeColoredDiff(w, out, opts.Color); err != nil {
		return stat, err
	}
	return stat, nil
}

func writeColoredDiff(w io.Writer, patch []byte, enabled bool) error {
	if !enabled {
		_, err := w.Write(patch)
		return err
	}
	header := color.New(color.Bold)
	hunk := color.New(color.FgCyan)
	del := color.New(color.FgRed)
	add := color.New(color.FgGreen)
	for _, c := range []*color.Color{header, hunk, del, add} {
		c.EnableColor()
	}

	sc := bufio.NewScanner(bytes.NewReader(patch))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		var err error
		switch {
		case strings.HasPrefix(line, "--- "), strings.HasPrefix(line, "+++ "):
			_, err = header.Fprintln(w, line)
		case strings.HasPrefix(line, "@@"):
			_, err = hunk.Fprintln(w, line)
		case strings.HasPrefix(line, "-"):
			_, err = del.Fprintln(w, line)
		case strings.HasPrefix(line, "+"):
			_, err = add.Fprintln(w, line)
		default:
			_, err = fmt.Fprintln(w, line)
		}
		if err != nil {
			return err
		}
	}
	return sc.Err()
}
