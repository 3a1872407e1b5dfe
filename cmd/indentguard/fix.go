package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"indentguard/internal/driver"
	"indentguard/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] [file.js|directory...]",
	Short: "Rewrite indentation in place",
	Long: `Fix applies the indentation edits reported by check and re-checks the
result until no edit applies or the pass limit is reached.`,
	RunE: runFix,
}

func init() {
	addReportFlags(fixCmd, "text|diff|json")
	fixCmd.Flags().Bool("once", false, "apply only the first available fix")
	fixCmd.Flags().String("id", "", "apply the fix with a specific identifier (IND3001-<line>)")
	fixCmd.Flags().Int("max-passes", driver.DefaultMaxPasses, "maximum check/fix passes per file")
	fixCmd.Flags().Bool("dry-run", false, "compute fixes without writing files")
	fixCmd.Flags().Bool("stdin", false, "read source from standard input and print the fixed text")
	fixCmd.Flags().String("stdin-filename", "<stdin>", "file name reported for standard input")
}

func runFix(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil && !errors.Is(err, errProblems)) }()

	ro, err := readReportOptions(cmd, "text", "diff", "json")
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	once, err := flags.GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := flags.GetString("id")
	if err != nil {
		return err
	}
	if once && targetID != "" {
		return fmt.Errorf("--once and --id are mutually exclusive")
	}
	maxPasses, err := flags.GetInt("max-passes")
	if err != nil {
		return err
	}
	if maxPasses < 1 {
		return fmt.Errorf("--max-passes must be at least 1")
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return err
	}
	fromStdin, err := flags.GetBool("stdin")
	if err != nil {
		return err
	}
	stdinName, err := flags.GetString("stdin-filename")
	if err != nil {
		return err
	}
	if fromStdin && len(args) > 0 {
		return fmt.Errorf("--stdin cannot be combined with path arguments")
	}

	mode := fix.ModeAll
	switch {
	case once:
		mode = fix.ModeOnce
	case targetID != "":
		mode = fix.ModeID
	}

	opts, err := driverOptions(cmd, args)
	if err != nil {
		return err
	}
	fixOpts := driver.FixOptions{
		Options:   opts,
		MaxPasses: maxPasses,
		Mode:      mode,
		TargetID:  targetID,
		DryRun:    dryRun || ro.format == "diff",
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if fromStdin {
		return runFixStdin(cmd, stdinName, fixOpts, ro)
	}
	// выбор --once/--id идёт по всему прогону, а не по файлу
	if mode != fix.ModeAll && !fixOpts.DryRun {
		return runFixSelected(cmd, paths, opts, fix.ApplyOptions{Mode: mode, TargetID: targetID})
	}

	run, err := driver.FixPaths(cmd.Context(), paths, fixOpts)
	if err != nil {
		return err
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	switch ro.format {
	case "diff":
		if err := writeDiff(out, errOut, run, ro.color); err != nil {
			return err
		}
	case "json":
		if err := writeDiagnostics(out, errOut, run.Bag(), run.FileSet, ro); err != nil {
			return err
		}
	default:
		if err := writeFixSummary(out, run, fixOpts.DryRun, ro.color); err != nil {
			return err
		}
		if err := writeDiagnostics(out, errOut, run.Bag(), run.FileSet, ro); err != nil {
			return err
		}
	}
	if err := printTimings(cmd, run.TimingPayloads(), ro.format == "json"); err != nil {
		return err
	}
	if run.Bag().HasErrors() {
		return errProblems
	}
	return nil
}

func runFixStdin(cmd *cobra.Command, name string, opts driver.FixOptions, ro reportOptions) error {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	opts.DryRun = true
	run, err := driver.FixSource(cmd.Context(), name, content, opts)
	if err != nil {
		return err
	}
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	switch ro.format {
	case "diff":
		if err := writeDiff(out, errOut, run, ro.color); err != nil {
			return err
		}
	case "json":
		if err := writeDiagnostics(out, errOut, run.Bag(), run.FileSet, ro); err != nil {
			return err
		}
	default:
		// исправленный текст в stdout, остаток диагностик в stderr
		if _, err := out.Write(run.Files[0].After); err != nil {
			return err
		}
		ro.color = false
		if err := writeDiagnostics(errOut, errOut, run.Bag(), run.FileSet, ro); err != nil {
			return err
		}
	}
	if err := printTimings(cmd, run.TimingPayloads(), ro.format == "json"); err != nil {
		return err
	}
	if run.Bag().HasErrors() {
		return errProblems
	}
	return nil
}

// runFixSelected checks paths and applies a single selected fix across the run.
func runFixSelected(cmd *cobra.Command, paths []string, opts driver.Options, applyOpts fix.ApplyOptions) error {
	run, err := driver.CheckPaths(cmd.Context(), paths, opts)
	if err != nil {
		return err
	}
	res, applyErr := fix.Apply(run.FileSet, run.Diagnostics(), applyOpts)
	return handleApplyResult(cmd.OutOrStdout(), res, applyErr)
}

func writeFixSummary(w io.Writer, run *driver.FixRun, dryRun, colored bool) error {
	ok := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	for _, c := range []*color.Color{ok, warn} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	verb := "fixed"
	if dryRun {
		verb = "would fix"
	}
	for _, ff := range run.Files {
		if ff.Fixed == 0 {
			continue
		}
		if _, err := ok.Fprintf(w, "%s %d %s in %s (%d %s)\n",
			verb, ff.Fixed, plural(ff.Fixed, "problem"), ff.Path, ff.Passes, plural(ff.Passes, "pass")); err != nil {
			return err
		}
		if !ff.Converged {
			if _, err := warn.Fprintf(w, "  %s: stopped after %d passes with fixable problems left\n", ff.Path, ff.Passes); err != nil {
				return err
			}
		}
	}
	fixed, changed := run.Totals()
	if fixed == 0 {
		_, err := fmt.Fprintln(w, "No fixes applied.")
		return err
	}
	_, err := fmt.Fprintf(w, "%d %s, %d %s changed.\n", fixed, plural(fixed, "fix"), changed, plural(changed, "file"))
	return err
}

func handleApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		if _, err := fmt.Fprintf(w, "Applied %d fix(es):\n", len(res.Applied)); err != nil {
			return err
		}
		for _, item := range res.Applied {
			location := item.Path
			if location == "" {
				location = "(unknown location)"
			}
			if _, err := fmt.Fprintf(w, "  %s [%s]: %s (%d edits)\n", item.Title, item.ID, location, item.EditCount); err != nil {
				return err
			}
		}
	}

	if len(res.FileChanges) > 0 {
		if _, err := fmt.Fprintln(w, "Updated files:"); err != nil {
			return err
		}
		for _, change := range res.FileChanges {
			if _, err := fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount); err != nil {
				return err
			}
		}
	}

	if len(res.Skipped) > 0 {
		if _, err := fmt.Fprintln(w, "Skipped fixes:"); err != nil {
			return err
		}
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			var err error
			if skip.Title != "" {
				_, err = fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				_, err = fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
			}
			if err != nil {
				return err
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			_, err := fmt.Fprintln(w, "No applicable fixes found.")
			return err
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		_, err := fmt.Fprintln(w, "No fixes applied.")
		return err
	}
	return nil
}
