package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"indentguard/internal/driver"
	"indentguard/internal/ui"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [file.js|directory...]",
	Short: "Report indentation problems",
	Long: `Check parses every file, computes the expected indentation of each line
and reports the lines whose leading whitespace differs.
Directories are walked recursively; without arguments the current directory is checked.`,
	RunE: runCheck,
}

func init() {
	addReportFlags(checkCmd, "text|short|json|diff")
	checkCmd.Flags().Bool("stdin", false, "read source from standard input")
	checkCmd.Flags().String("stdin-filename", "<stdin>", "file name reported for standard input")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runCheck(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil && !errors.Is(err, errProblems)) }()

	ro, err := readReportOptions(cmd, "text", "short", "json", "diff")
	if err != nil {
		return err
	}
	fromStdin, err := cmd.Flags().GetBool("stdin")
	if err != nil {
		return err
	}
	stdinName, err := cmd.Flags().GetString("stdin-filename")
	if err != nil {
		return err
	}
	if fromStdin && len(args) > 0 {
		return fmt.Errorf("--stdin cannot be combined with path arguments")
	}

	opts, err := driverOptions(cmd, args)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	// diff: прогон исправлений без записи
	if ro.format == "diff" {
		return runCheckDiff(cmd, paths, fromStdin, stdinName, opts, ro)
	}

	var run *driver.Run
	if fromStdin {
		content, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		run, err = driver.CheckSource(cmd.Context(), stdinName, content, opts)
	} else {
		run, err = checkWithProgress(cmd, paths, opts, ro.format == "text")
	}
	if err != nil {
		return err
	}

	if err := writeDiagnostics(cmd.OutOrStdout(), cmd.ErrOrStderr(), run.Bag(), run.FileSet, ro); err != nil {
		return err
	}
	if err := printTimings(cmd, run.TimingPayloads(), ro.format == "json"); err != nil {
		return err
	}
	if errs, _ := run.Counts(); errs > 0 {
		return errProblems
	}
	return nil
}

// checkWithProgress runs CheckPaths, drawing the progress view on stderr
// when the UI is enabled.
func checkWithProgress(cmd *cobra.Command, paths []string, opts driver.Options, allowUI bool) (*driver.Run, error) {
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return nil, err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return nil, err
	}
	if !allowUI || !shouldUseTUI(mode) {
		return driver.CheckPaths(cmd.Context(), paths, opts)
	}

	files, err := driver.ListFiles(paths, opts.Config.Files)
	if err != nil {
		return nil, err
	}
	var run *driver.Run
	err = ui.RunWithProgress(os.Stderr, "checking", files, func(obs driver.PhaseObserver) error {
		withObserver := opts
		withObserver.Observer = obs
		var runErr error
		run, runErr = driver.CheckPaths(cmd.Context(), paths, withObserver)
		return runErr
	})
	return run, err
}

func runCheckDiff(cmd *cobra.Command, paths []string, fromStdin bool, stdinName string, opts driver.Options, ro reportOptions) error {
	fixOpts := driver.FixOptions{Options: opts, DryRun: true}
	var (
		run *driver.FixRun
		err error
	)
	if fromStdin {
		content, readErr := io.ReadAll(cmd.InOrStdin())
		if readErr != nil {
			return fmt.Errorf("read stdin: %w", readErr)
		}
		run, err = driver.FixSource(cmd.Context(), stdinName, content, fixOpts)
	} else {
		run, err = driver.FixPaths(cmd.Context(), paths, fixOpts)
	}
	if err != nil {
		return err
	}
	if err := writeDiff(cmd.OutOrStdout(), cmd.ErrOrStderr(), run, ro.color); err != nil {
		return err
	}
	if err := printTimings(cmd, run.TimingPayloads(), false); err != nil {
		return err
	}
	if _, changed := run.Totals(); changed > 0 || run.Bag().HasErrors() {
		return errProblems
	}
	return nil
}
