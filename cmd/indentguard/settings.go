package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"indentguard/internal/config"
	"indentguard/internal/driver"
)

type colorMode string

const (
	colorAuto colorMode = "auto"
	colorOn   colorMode = "on"
	colorOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorAuto, nil
	case "on", "always":
		return colorOn, nil
	case "off", "never":
		return colorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// useColor решает, раскрашивать ли вывод в f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	mode, err := readColorMode(value)
	if err != nil {
		return false, err
	}
	switch mode {
	case colorOn:
		return true, nil
	case colorOff:
		return false, nil
	default:
		return isTerminal(f), nil
	}
}

// startDir is where the project file search begins for the given arguments.
func startDir(paths []string) string {
	if len(paths) == 0 {
		return "."
	}
	first := paths[0]
	if info, err := os.Stat(first); err == nil && info.IsDir() {
		return first
	}
	return filepath.Dir(first)
}

// loadConfig reads the project file and applies command-line overrides.
func loadConfig(cmd *cobra.Command, paths []string) (config.Config, error) {
	pf := cmd.Root().PersistentFlags()
	explicit, err := pf.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(startDir(paths), explicit)
	if err != nil {
		return config.Config{}, err
	}

	var ov config.Overrides
	if ov.Indent, err = pf.GetString("indent"); err != nil {
		return config.Config{}, err
	}
	if pf.Changed("switch-case") {
		n, err := pf.GetInt("switch-case")
		if err != nil {
			return config.Config{}, err
		}
		ov.SwitchCase = &n
	}
	if pf.Changed("member-expression") {
		n, err := pf.GetInt("member-expression")
		if err != nil {
			return config.Config{}, err
		}
		ov.MemberExpression = &n
	}
	if err := ov.Apply(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

// driverOptions собирает driver.Options из глобальных флагов.
func driverOptions(cmd *cobra.Command, paths []string) (driver.Options, error) {
	cfg, err := loadConfig(cmd, paths)
	if err != nil {
		return driver.Options{}, err
	}
	pf := cmd.Root().PersistentFlags()
	opts := driver.Options{Config: cfg}
	// пути в отчёте считаются от корня проекта
	if cfg.Path != "" {
		opts.BaseDir = filepath.Dir(cfg.Path)
	}
	if opts.MaxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return opts, err
	}
	if opts.Jobs, err = pf.GetInt("jobs"); err != nil {
		return opts, err
	}
	if opts.CheckOnSyntaxError, err = pf.GetBool("check-on-syntax-error"); err != nil {
		return opts, err
	}
	if opts.Timings, err = pf.GetBool("timings"); err != nil {
		return opts, err
	}

	useCache, err := pf.GetBool("cache")
	if err != nil {
		return opts, err
	}
	cacheDir, err := pf.GetString("cache-dir")
	if err != nil {
		return opts, err
	}
	if useCache || cacheDir != "" {
		if cacheDir != "" {
			opts.Cache, err = driver.OpenDiskCacheAt(cacheDir)
		} else {
			opts.Cache, err = driver.OpenDiskCache("indentguard")
		}
		if err != nil {
			return opts, fmt.Errorf("cache: %w", err)
		}
	}
	return opts, nil
}

// printTimings выводит тайминги в stderr, если включён --timings.
func printTimings(cmd *cobra.Command, payloads []driver.TimingPayload, asJSON bool) error {
	enabled, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil || !enabled {
		return err
	}
	return driver.WriteTimings(cmd.ErrOrStderr(), payloads, asJSON)
}
