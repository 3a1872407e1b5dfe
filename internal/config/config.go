// Package config loads .indentguard.toml / .indentguard.yaml project files
// and turns them into an indent.Config.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"

	"indentguard/internal/indent"
)

// FileNames are the project file names searched for, in priority order.
var FileNames = []string{".indentguard.toml", ".indentguard.yaml", ".indentguard.yml"}

// Format is the syntax of a project file.
type Format uint8

const (
	FormatTOML Format = iota
	FormatYAML
)

// Config is a fully validated project configuration.
type Config struct {
	// Path of the file the configuration came from; empty for defaults.
	Path   string
	Indent indent.Config
	Files  Files
}

// Files selects which files a directory walk visits.
type Files struct {
	Extensions []string
	Exclude    []string
}

// Default returns the configuration used when no project file exists.
func Default() Config {
	return Config{
		Indent: indent.DefaultConfig(),
		Files: Files{
			Extensions: []string{".js"},
			Exclude:    []string{"node_modules", ".git"},
		},
	}
}

// Find walks from startDir up to the filesystem root looking for a project file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads explicit when given, otherwise the nearest project file above
// startDir. Without any file it returns Default().
func Load(startDir, explicit string) (Config, error) {
	path := explicit
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return LoadFile(path)
}

// LoadFile reads and validates one project file.
func LoadFile(path string) (Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// FormatOf picks the syntax from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("config: %s: unsupported file type (want .toml or .yaml)", path)
	}
}

// Parse decodes data in the given format and validates it.
func Parse(data []byte, format Format) (Config, error) {
	raw := make(map[string]any)
	var keys [][]string
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: failed to parse TOML: %w", err)
		}
		for _, k := range meta.Keys() {
			keys = append(keys, []string(k))
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("config: failed to parse YAML: %w", err)
		}
		keys = collectKeys(nil, raw)
	default:
		return Config{}, fmt.Errorf("config: unknown format %d", format)
	}
	if err := checkKeys(keys); err != nil {
		return Config{}, err
	}
	return Decode(raw)
}

// known lists every accepted key path.
var known = map[string]bool{
	"indent":                         true,
	"SwitchCase":                     true,
	"MemberExpression":               true,
	"outerIIFEBody":                  true,
	"VariableDeclarator":             true,
	"VariableDeclarator.var":         true,
	"VariableDeclarator.let":         true,
	"VariableDeclarator.const":       true,
	"FunctionDeclaration":            true,
	"FunctionDeclaration.parameters": true,
	"FunctionDeclaration.body":       true,
	"FunctionExpression":             true,
	"FunctionExpression.parameters":  true,
	"FunctionExpression.body":        true,
	"CallExpression":                 true,
	"CallExpression.arguments":       true,
	"ArrayExpression":                true,
	"ObjectExpression":               true,
	"files":                          true,
	"files.extensions":               true,
	"files.exclude":                  true,
}

func collectKeys(prefix []string, m map[string]any) [][]string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var out [][]string
	for _, name := range names {
		key := append(append([]string(nil), prefix...), name)
		out = append(out, key)
		if sub, ok := m[name].(map[string]any); ok {
			out = append(out, collectKeys(key, sub)...)
		}
	}
	return out
}

func checkKeys(keys [][]string) error {
	var unknown []string
	for _, k := range keys {
		name := strings.Join(k, ".")
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	switch len(unknown) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("config: %s: unknown key", unknown[0])
	default:
		return fmt.Errorf("config: unknown keys: %s", strings.Join(unknown, ", "))
	}
}

// Decode validates an already parsed key/value tree.
func Decode(raw map[string]any) (Config, error) {
	cfg := Default()
	ic := &cfg.Indent

	if v, ok := raw["indent"]; ok {
		unit, err := parseUnit("indent", v)
		if err != nil {
			return Config{}, err
		}
		ic.Unit = unit
	}
	for key, dst := range map[string]*int{
		"SwitchCase":    &ic.SwitchCase,
		"outerIIFEBody": &ic.OuterIIFEBody,
	} {
		if v, ok := raw[key]; ok {
			n, err := count(key, v)
			if err != nil {
				return Config{}, err
			}
			*dst = n
		}
	}
	if v, ok := raw["MemberExpression"]; ok {
		opt, err := listOption("MemberExpression", v, false)
		if err != nil {
			return Config{}, err
		}
		ic.MemberExpression = opt
	}
	if v, ok := raw["VariableDeclarator"]; ok {
		vo, err := varOptions(v)
		if err != nil {
			return Config{}, err
		}
		ic.VariableDeclarator = vo
	}
	for key, dst := range map[string]*indent.FunctionOptions{
		"FunctionDeclaration": &ic.FunctionDeclaration,
		"FunctionExpression":  &ic.FunctionExpression,
	} {
		if v, ok := raw[key]; ok {
			fo, err := functionOptions(key, v, *dst)
			if err != nil {
				return Config{}, err
			}
			*dst = fo
		}
	}
	if v, ok := raw["CallExpression"]; ok {
		tbl, err := table("CallExpression", v)
		if err != nil {
			return Config{}, err
		}
		if a, ok := tbl["arguments"]; ok {
			opt, err := listOption("CallExpression.arguments", a, true)
			if err != nil {
				return Config{}, err
			}
			ic.CallArguments = opt
		}
	}
	for key, dst := range map[string]*indent.ListOption{
		"ArrayExpression":  &ic.ArrayExpression,
		"ObjectExpression": &ic.ObjectExpression,
	} {
		if v, ok := raw[key]; ok {
			opt, err := listOption(key, v, true)
			if err != nil {
				return Config{}, err
			}
			*dst = opt
		}
	}
	if v, ok := raw["files"]; ok {
		files, err := filesSection(v, cfg.Files)
		if err != nil {
			return Config{}, err
		}
		cfg.Files = files
	}
	return cfg, nil
}

// ParseUnit parses an indent value given on the command line: a number of
// spaces or "tab".
func ParseUnit(s string) (indent.Unit, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return parseUnit("indent", n)
	}
	return parseUnit("indent", s)
}

func parseUnit(key string, v any) (indent.Unit, error) {
	if s, ok := v.(string); ok {
		if s == "tab" {
			return indent.Tab(), nil
		}
		return indent.Unit{}, fmt.Errorf("config: %s: expected integer or \"tab\", got %q", key, s)
	}
	if !isNumber(v) {
		return indent.Unit{}, fmt.Errorf("config: %s: expected integer or \"tab\", got %s", key, describe(v))
	}
	n, err := count(key, v)
	if err != nil {
		return indent.Unit{}, err
	}
	return indent.Spaces(n), nil
}

// count accepts a non-negative integer.
func count(key string, v any) (int, error) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int64:
		n = x
	case uint64:
		if x > math.MaxInt32 {
			return 0, fmt.Errorf("config: %s: value %d is too large", key, x)
		}
		n = int64(x)
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("config: %s: expected integer, got %v", key, x)
		}
		n = int64(x)
	default:
		return 0, fmt.Errorf("config: %s: expected integer, got %s", key, describe(v))
	}
	if n < 0 {
		return 0, fmt.Errorf("config: %s: must not be negative, got %d", key, n)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("config: %s: value %d is too large", key, n)
	}
	return int(n), nil
}

// listOption accepts an integer, "off", and when allowFirst also "first".
func listOption(key string, v any, allowFirst bool) (indent.ListOption, error) {
	if s, ok := v.(string); ok {
		switch {
		case s == "off":
			return indent.Ignore(), nil
		case s == "first" && allowFirst:
			return indent.First(), nil
		}
		want := `integer or "off"`
		if allowFirst {
			want = `integer, "first" or "off"`
		}
		return indent.ListOption{}, fmt.Errorf("config: %s: expected %s, got %q", key, want, s)
	}
	n, err := count(key, v)
	if err != nil {
		return indent.ListOption{}, err
	}
	return indent.Offset(n), nil
}

func table(key string, v any) (map[string]any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("config: %s: expected table, got %s", key, describe(v))
	}
	return m, nil
}

func varOptions(v any) (indent.VarOptions, error) {
	tbl, isTable := v.(map[string]any)
	if !isTable {
		if !isNumber(v) {
			return indent.VarOptions{}, fmt.Errorf("config: VariableDeclarator: expected integer or table, got %s", describe(v))
		}
		n, err := count("VariableDeclarator", v)
		if err != nil {
			return indent.VarOptions{}, err
		}
		return indent.VarOptions{Var: n, Let: n, Const: n}, nil
	}
	out := indent.VarOptions{Var: 1, Let: 1, Const: 1}
	for name, dst := range map[string]*int{"var": &out.Var, "let": &out.Let, "const": &out.Const} {
		x, ok := tbl[name]
		if !ok {
			continue
		}
		n, err := count("VariableDeclarator."+name, x)
		if err != nil {
			return indent.VarOptions{}, err
		}
		*dst = n
	}
	return out, nil
}

func functionOptions(key string, v any, base indent.FunctionOptions) (indent.FunctionOptions, error) {
	tbl, err := table(key, v)
	if err != nil {
		return base, err
	}
	if p, ok := tbl["parameters"]; ok {
		opt, err := listOption(key+".parameters", p, true)
		if err != nil {
			return base, err
		}
		base.Parameters = opt
	}
	if b, ok := tbl["body"]; ok {
		n, err := count(key+".body", b)
		if err != nil {
			return base, err
		}
		base.Body = n
	}
	return base, nil
}

func filesSection(v any, base Files) (Files, error) {
	tbl, err := table("files", v)
	if err != nil {
		return base, err
	}
	if x, ok := tbl["extensions"]; ok {
		list, err := stringList("files.extensions", x)
		if err != nil {
			return base, err
		}
		for i, ext := range list {
			if !strings.HasPrefix(ext, ".") {
				list[i] = "." + ext
			}
		}
		base.Extensions = list
	}
	if x, ok := tbl["exclude"]; ok {
		list, err := stringList("files.exclude", x)
		if err != nil {
			return base, err
		}
		base.Exclude = list
	}
	return base, nil
}

func stringList(key string, v any) ([]string, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("config: %s: expected list of strings, got %s", key, describe(v))
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("config: %s[%d]: expected string, got %s", key, i, describe(item))
		}
		out = append(out, s)
	}
	return out, nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int64, uint64, float64:
		return true
	}
	return false
}

func describe(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case bool:
		return "boolean"
	case map[string]any:
		return "table"
	case []any:
		return "list"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Fingerprint identifies the settings that influence check results.
func (c Config) Fingerprint() string {
	payload, err := msgpack.Marshal(c.Indent)
	if err != nil {
		// indent.Config состоит из простых полей
		panic(fmt.Errorf("config: fingerprint: %w", err))
	}
	sum := blake3.Sum256(payload)
	return fmt.Sprintf("%x", sum[:8])
}

// Overrides carries command-line values that replace file settings.
type Overrides struct {
	Indent           string
	SwitchCase       *int
	MemberExpression *int
}

// Apply validates and applies the overrides.
func (o Overrides) Apply(cfg *Config) error {
	if o.Indent != "" {
		unit, err := ParseUnit(o.Indent)
		if err != nil {
			return err
		}
		cfg.Indent.Unit = unit
	}
	if o.SwitchCase != nil {
		n, err := count("SwitchCase", *o.SwitchCase)
		if err != nil {
			return err
		}
		cfg.Indent.SwitchCase = n
	}
	if o.MemberExpression != nil {
		n, err := count("MemberExpression", *o.MemberExpression)
		if err != nil {
			return err
		}
		cfg.Indent.MemberExpression = indent.Offset(n)
	}
	return nil
}
