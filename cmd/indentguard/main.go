package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"indentguard/internal/version"
)

// errProblems сообщает main, что проверка нашла ошибки; вывод уже напечатан.
var errProblems = errors.New("problems found")

var rootCmd = &cobra.Command{
	Use:   "indentguard",
	Short: "Indentation checker and fixer for JavaScript",
	Long: `indentguard checks the indentation of JavaScript sources against
an offset model of the syntax tree and rewrites leading whitespace to match.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupProfiling,
}

func init() {
	rootCmd.Version = version.Version
	cobra.OnFinalize(stopProfiling)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	pf := rootCmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("config", "", "path to a project file (default: search upwards for .indentguard.toml|yaml)")
	pf.String("indent", "", `indentation unit override: a width or "tab"`)
	pf.Int("switch-case", 0, "SwitchCase override")
	pf.Int("member-expression", 0, "MemberExpression override")
	pf.Int("max-diagnostics", 0, "maximum diagnostics per file (0 = unbounded)")
	pf.Bool("timings", false, "show timing information")
	pf.Int("jobs", 0, "parallel workers (0 = GOMAXPROCS)")
	pf.Bool("check-on-syntax-error", false, "check indentation even when a file has syntax errors")
	pf.Bool("cache", false, "reuse results from the on-disk cache")
	pf.String("cache-dir", "", "cache directory (default: $XDG_CACHE_HOME/indentguard)")
	pf.String("trace", "", `trace output file ("-" for stderr)`)
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	pf.String("trace-mode", "stream", "trace mode (stream|ring)")
	pf.Int("trace-ring-size", 4096, "events kept in ring mode")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode печатает ошибку и выбирает код выхода: 1 для найденных проблем, 2 для сбоев.
func exitCode(err error) int {
	if errors.Is(err, errProblems) {
		return 1
	}
	fmt.Fprintf(os.Stderr, "indentguard: %v\n", err)
	return 2
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
