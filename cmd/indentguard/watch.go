package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"indentguard/internal/driver"
	"indentguard/internal/trace"
	"indentguard/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [file.js|directory...]",
	Short: "Re-check files whenever they change",
	Long: `Watch checks the given paths once, then re-checks every changed file
until interrupted. With --fix changed files are rewritten in place.`,
	RunE: runWatch,
}

func init() {
	addReportFlags(watchCmd, "text|short|json")
	watchCmd.Flags().Bool("fix", false, "fix changed files instead of only reporting")
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "quiet period before a batch of changes is checked")
}

func runWatch(cmd *cobra.Command, args []string) (err error) {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer func() { cleanup(err != nil) }()

	ro, err := readReportOptions(cmd, "text", "short", "json")
	if err != nil {
		return err
	}
	withFix, err := cmd.Flags().GetBool("fix")
	if err != nil {
		return err
	}
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return err
	}
	opts, err := driverOptions(cmd, args)
	if err != nil {
		return err
	}
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	header := color.New(color.FgCyan, color.Bold)
	if ro.color {
		header.EnableColor()
	} else {
		header.DisableColor()
	}
	round := func(ctx context.Context, targets []string) {
		if _, err := header.Fprintf(cmd.ErrOrStderr(), "[%s] %s %d path(s)\n",
			time.Now().Format("15:04:05"), verbFor(withFix), len(targets)); err != nil {
			return
		}
		// в ring-режиме дамп содержит только упавший раунд
		ring, _ := trace.FromContext(ctx).(*trace.RingTracer)
		if ring != nil {
			ring.Reset()
		}
		if err := watchRound(ctx, cmd, targets, opts, withFix, ro); err != nil {
			trace.Errorf(trace.FromContext(ctx), "watch", "%v", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "indentguard: %v\n", err)
			if ring != nil {
				_ = ring.Dump(cmd.ErrOrStderr(), trace.FormatText)
			}
		}
	}

	round(ctx, paths)

	w, err := watch.New(paths, watch.Options{
		Debounce:   debounce,
		Extensions: opts.Config.Files.Extensions,
		Exclude:    opts.Config.Files.Exclude,
	}, func(ctx context.Context, changed []string) {
		// удалённые файлы не проверяем
		existing := changed[:0]
		for _, p := range changed {
			if _, err := os.Stat(p); err == nil {
				existing = append(existing, p)
			}
		}
		if len(existing) > 0 {
			round(ctx, existing)
		}
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	w.OnError(func(err error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
	})
	fmt.Fprintln(cmd.ErrOrStderr(), "Watching for changes. Press Ctrl+C to stop.")
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func verbFor(withFix bool) string {
	if withFix {
		return "fixing"
	}
	return "checking"
}

func watchRound(ctx context.Context, cmd *cobra.Command, paths []string, opts driver.Options, withFix bool, ro reportOptions) error {
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if withFix {
		run, err := driver.FixPaths(ctx, paths, driver.FixOptions{Options: opts})
		if err != nil {
			return err
		}
		if ro.format == "text" {
			if err := writeFixSummary(out, run, false, ro.color); err != nil {
				return err
			}
		}
		if err := writeDiagnostics(out, errOut, run.Bag(), run.FileSet, ro); err != nil {
			return err
		}
		return printTimings(cmd, run.TimingPayloads(), ro.format == "json")
	}

	run, err := driver.CheckPaths(ctx, paths, opts)
	if err != nil {
		return err
	}
	if err := writeDiagnostics(out, errOut, run.Bag(), run.FileSet, ro); err != nil {
		return err
	}
	if errs, _ := run.Counts(); errs == 0 && ro.format == "text" {
		fmt.Fprintln(errOut, "no problems")
	}
	return printTimings(cmd, run.TimingPayloads(), ro.format == "json")
}
