package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const badSource = "if (a) {\nb();\n}\n"

// execute runs the root command with fresh flag values.
func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestReadUIMode(t *testing.T) {
	cases := map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff}
	for in, want := range cases {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestReadColorMode(t *testing.T) {
	if m, err := readColorMode("always"); err != nil || m != colorOn {
		t.Fatalf("readColorMode(always) = %q, %v", m, err)
	}
	if _, err := readColorMode("purple"); err == nil {
		t.Fatal("expected error for unknown color mode")
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(errProblems); got != 1 {
		t.Fatalf("exitCode(errProblems) = %d, want 1", got)
	}
	if got := exitCode(errors.New("boom")); got != 2 {
		t.Fatalf("exitCode(other) = %d, want 2", got)
	}
}

func TestPlural(t *testing.T) {
	cases := []struct {
		n    int
		word string
		want string
	}{
		{1, "problem", "problem"},
		{2, "problem", "problems"},
		{0, "fix", "fixes"},
		{3, "pass", "passes"},
	}
	for _, tc := range cases {
		if got := plural(tc.n, tc.word); got != tc.want {
			t.Fatalf("plural(%d, %q) = %q, want %q", tc.n, tc.word, got, tc.want)
		}
	}
}

func TestCheckStdinShort(t *testing.T) {
	stdout, _, err := execute(t, badSource, "check", "--stdin", "--format", "short", "--color", "off")
	if !errors.Is(err, errProblems) {
		t.Fatalf("expected errProblems, got %v", err)
	}
	if !strings.Contains(stdout, ":2:1: IND3001 Expected indentation of 4 spaces but found 0.") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestCheckStdinClean(t *testing.T) {
	stdout, stderr, err := execute(t, "if (a) {\n    b();\n}\n", "check", "--stdin", "--color", "off")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, stderr)
	}
	if stdout != "" || stderr != "" {
		t.Fatalf("expected no output, got stdout=%q stderr=%q", stdout, stderr)
	}
}

func TestCheckIndentOverride(t *testing.T) {
	_, _, err := execute(t, "if (a) {\n  b();\n}\n", "check", "--stdin", "--indent", "2", "--color", "off")
	if err != nil {
		t.Fatalf("check with --indent 2: %v", err)
	}
}

func TestFixStdinPrintsFixedText(t *testing.T) {
	stdout, _, err := execute(t, badSource, "fix", "--stdin", "--color", "off")
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if stdout != "if (a) {\n    b();\n}\n" {
		t.Fatalf("unexpected fixed text %q", stdout)
	}
}

func TestFixWritesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte(badSource), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := execute(t, "", "fix", "--color", "off", dir)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(stdout, "fixed 1 problem in") {
		t.Fatalf("unexpected summary:\n%s", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "if (a) {\n    b();\n}\n" {
		t.Fatalf("file not fixed: %q", data)
	}
}

func TestFixDiffLeavesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte(badSource), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := execute(t, "", "fix", "--format", "diff", "--color", "off", path)
	if err != nil {
		t.Fatalf("fix --format diff: %v", err)
	}
	if !strings.Contains(stdout, "-b();") || !strings.Contains(stdout, "+    b();") {
		t.Fatalf("unexpected diff:\n%s", stdout)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != badSource {
		t.Fatalf("diff mode modified the file: %q", data)
	}
}

func TestFixIDNotFound(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	if err := os.WriteFile(path, []byte(badSource), 0o600); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := execute(t, "", "fix", "--id", "IND3001-99", "--color", "off", path)
	if err != nil {
		t.Fatalf("fix --id: %v", err)
	}
	if !strings.Contains(stdout, "No applicable fixes found.") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestFixRejectsOnceWithID(t *testing.T) {
	_, _, err := execute(t, "", "fix", "--once", "--id", "IND3001-2", ".")
	if err == nil || errors.Is(err, errProblems) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestVersionJSON(t *testing.T) {
	stdout, _, err := execute(t, "", "version", "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, `"tool": "indentguard"`) {
		t.Fatalf("unexpected payload:\n%s", stdout)
	}
}
