package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"indentguard/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// The returned cleanup flushes the tracer; in ring mode it dumps the
// buffered events when failed is true.
func setupTracing(cmd *cobra.Command) (func(failed bool), error) {
	pf := cmd.Root().PersistentFlags()

	traceOutput, err := pf.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := pf.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	formatStr, err := pf.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	modeStr, err := pf.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := pf.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	// --trace без уровня означает phase
	if level == trace.LevelOff && traceOutput != "" {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}

	var tracer trace.Tracer
	var ring *trace.RingTracer
	switch strings.ToLower(modeStr) {
	case "", "stream":
		tracer, err = trace.New(trace.Config{Level: level, Format: format, OutputPath: traceOutput})
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer: %w", err)
		}
	case "ring":
		ring = trace.NewRingTracer(ringSize, level)
		tracer = ring
	default:
		return nil, fmt.Errorf("invalid --trace-mode value %q (expected stream|ring)", modeStr)
	}

	cmd.SetContext(trace.WithTracer(cmd.Context(), tracer))

	cleanup := func(failed bool) {
		if ring != nil && failed {
			if err := dumpRing(ring, traceOutput, format); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func dumpRing(ring *trace.RingTracer, output string, format trace.Format) error {
	if format == trace.FormatAuto {
		format = trace.FormatText
		if strings.HasSuffix(output, ".ndjson") || strings.HasSuffix(output, ".jsonl") {
			format = trace.FormatNDJSON
		}
	}
	if output == "" || output == "-" {
		return ring.Dump(os.Stderr, format)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := ring.Dump(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
