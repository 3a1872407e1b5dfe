package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"indentguard/internal/prof"
)

var profSession *prof.Session

// setupProfiling starts the profiles requested by the persistent flags.
// They are stopped by stopProfiling after the command finishes.
func setupProfiling(cmd *cobra.Command, _ []string) error {
	pf := cmd.Root().PersistentFlags()
	var (
		opts prof.Options
		err  error
	)
	if opts.CPU, err = pf.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Mem, err = pf.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = pf.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if opts == (prof.Options{}) {
		return nil
	}
	profSession, err = prof.Start(opts)
	return err
}

func stopProfiling() {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "profile: %v\n", err)
	}
	profSession = nil
}
