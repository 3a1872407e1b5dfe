package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"indentguard/internal/diag"
	"indentguard/internal/diagfmt"
	"indentguard/internal/driver"
	"indentguard/internal/source"
)

// reportOptions are the output flags shared by check, fix and watch.
type reportOptions struct {
	format    string
	withNotes bool
	suggest   bool
	preview   bool
	pathMode  diagfmt.PathMode
	context   int8
	color     bool
}

func addReportFlags(cmd *cobra.Command, formats string) {
	cmd.Flags().String("format", "text", "output format ("+formats+")")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes")
	cmd.Flags().Bool("suggest", false, "show the fix attached to each diagnostic")
	cmd.Flags().Bool("preview", false, "show before/after preview of fixes (implies --suggest)")
	cmd.Flags().String("path-mode", "auto", "how to print file paths (auto|absolute|relative|basename)")
	cmd.Flags().Bool("fullpath", false, "shorthand for --path-mode=absolute")
	cmd.Flags().Int8("context", 0, "source lines printed before each diagnostic")
}

func readReportOptions(cmd *cobra.Command, formats ...string) (reportOptions, error) {
	var (
		ro  reportOptions
		err error
	)
	flags := cmd.Flags()
	if ro.format, err = flags.GetString("format"); err != nil {
		return ro, err
	}
	if !slices.Contains(formats, ro.format) {
		return ro, fmt.Errorf("unknown format %q", ro.format)
	}
	if ro.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return ro, err
	}
	if ro.suggest, err = flags.GetBool("suggest"); err != nil {
		return ro, err
	}
	if ro.preview, err = flags.GetBool("preview"); err != nil {
		return ro, err
	}
	ro.suggest = ro.suggest || ro.preview

	modeStr, err := flags.GetString("path-mode")
	if err != nil {
		return ro, err
	}
	mode, ok := diagfmt.ParsePathMode(modeStr)
	if !ok {
		return ro, fmt.Errorf("invalid --path-mode value %q", modeStr)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return ro, err
	}
	if fullPath {
		mode = diagfmt.PathModeAbsolute
	}
	ro.pathMode = mode
	if ro.context, err = flags.GetInt8("context"); err != nil {
		return ro, err
	}
	if ro.color, err = useColor(cmd, os.Stdout); err != nil {
		return ro, err
	}
	return ro, nil
}

// writeDiagnostics prints bag in the selected format. Text output is
// followed by a summary on errOut.
func writeDiagnostics(out, errOut io.Writer, bag *diag.Bag, fs *source.FileSet, ro reportOptions) error {
	bag.Sort()
	switch ro.format {
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         ro.pathMode,
			IncludeNotes:     ro.withNotes,
			IncludeFixes:     ro.suggest,
			IncludePreviews:  ro.preview,
		})
	case "short":
		_, err := io.WriteString(out, diag.FormatShortDiagnostics(bag.Items(), fs))
		return err
	default:
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:       ro.color,
			Context:     ro.context,
			PathMode:    ro.pathMode,
			ShowNotes:   ro.withNotes,
			ShowFixes:   ro.suggest,
			ShowPreview: ro.preview,
		})
		return writeSummary(errOut, bag, ro.color)
	}
}

// writeSummary печатает итог: "✖ 3 problems (3 errors, 0 warnings)".
func writeSummary(w io.Writer, bag *diag.Bag, colored bool) error {
	var errs, warnings, fixable int
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			errs++
		} else if d.Severity == diag.SevWarning {
			warnings++
		}
		if d.HasFix() {
			fixable++
		}
	}
	total := errs + warnings
	if total == 0 {
		return nil
	}
	mark := color.New(color.FgRed, color.Bold)
	if errs == 0 {
		mark = color.New(color.FgYellow, color.Bold)
	}
	if colored {
		mark.EnableColor()
	} else {
		mark.DisableColor()
	}
	line := fmt.Sprintf("✖ %d %s (%d %s, %d %s)",
		total, plural(total, "problem"), errs, plural(errs, "error"), warnings, plural(warnings, "warning"))
	if _, err := mark.Fprintln(w, line); err != nil {
		return err
	}
	if fixable > 0 {
		_, err := fmt.Fprintf(w, "  %d %s potentially fixable with `indentguard fix`.\n", fixable, plural(fixable, "problem"))
		return err
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	if strings.HasSuffix(word, "s") || strings.HasSuffix(word, "x") {
		return word + "es"
	}
	return word + "s"
}

// writeDiff renders the changes of a fix run as a unified diff.
func writeDiff(out, errOut io.Writer, run *driver.FixRun, colored bool) error {
	files := make([]diagfmt.FileDiff, 0, len(run.Files))
	for _, ff := range run.Files {
		if !ff.Changed() {
			continue
		}
		files = append(files, diagfmt.FileDiff{Path: ff.Path, Before: ff.Before, After: ff.After})
	}
	stat, err := diagfmt.Diff(out, files, diagfmt.DiffOpts{Color: colored})
	if err != nil {
		return err
	}
	if stat.Files > 0 {
		_, err = fmt.Fprintln(errOut, stat.String())
	}
	return err
}
