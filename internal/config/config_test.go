package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indentguard/internal/indent"
)

func TestParseTOMLFull(t *testing.T) {
	src := `
indent = 2
SwitchCase = 1
MemberExpression = 1
outerIIFEBody = 0
VariableDeclarator = { var = 2, let = 2, const = 3 }
ArrayExpression = "first"
ObjectExpression = "off"

[FunctionDeclaration]
parameters = "first"
body = 2

[FunctionExpression]
parameters = 1

[CallExpression]
arguments = "off"

[files]
extensions = ["js", ".mjs"]
exclude = ["vendor"]
`
	cfg, err := Parse([]byte(src), FormatTOML)
	require.NoError(t, err)

	ic := cfg.Indent
	assert.Equal(t, indent.Spaces(2), ic.Unit)
	assert.Equal(t, 1, ic.SwitchCase)
	assert.Equal(t, indent.Offset(1), ic.MemberExpression)
	assert.Equal(t, 0, ic.OuterIIFEBody)
	assert.Equal(t, indent.VarOptions{Var: 2, Let: 2, Const: 3}, ic.VariableDeclarator)
	assert.Equal(t, indent.First(), ic.ArrayExpression)
	assert.Equal(t, indent.Ignore(), ic.ObjectExpression)
	assert.Equal(t, indent.FunctionOptions{Parameters: indent.First(), Body: 2}, ic.FunctionDeclaration)
	assert.Equal(t, indent.FunctionOptions{Parameters: indent.Offset(1), Body: 1}, ic.FunctionExpression)
	assert.Equal(t, indent.Ignore(), ic.CallArguments)
	assert.Equal(t, []string{".js", ".mjs"}, cfg.Files.Extensions)
	assert.Equal(t, []string{"vendor"}, cfg.Files.Exclude)
}

func TestParseYAML(t *testing.T) {
	src := `
indent: tab
SwitchCase: 1
VariableDeclarator: 2
CallExpression:
  arguments: first
`
	cfg, err := Parse([]byte(src), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, indent.Tab(), cfg.Indent.Unit)
	assert.Equal(t, 1, cfg.Indent.SwitchCase)
	assert.Equal(t, indent.VarOptions{Var: 2, Let: 2, Const: 2}, cfg.Indent.VariableDeclarator)
	assert.Equal(t, indent.First(), cfg.Indent.CallArguments)
}

func TestEmptyFileGivesDefaults(t *testing.T) {
	cfg, err := Parse(nil, FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, indent.Spaces(4), cfg.Indent.Unit)
	assert.Equal(t, 0, cfg.Indent.SwitchCase)
}

func TestPartialVariableDeclaratorKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("VariableDeclarator = { const = 3 }\n"), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, indent.VarOptions{Var: 1, Let: 1, Const: 3}, cfg.Indent.VariableDeclarator)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		src    string
		errMsg string
	}{
		{"negative", FormatTOML, "SwitchCase = -1\n", "config: SwitchCase: must not be negative"},
		{"negative indent", FormatTOML, "indent = -2\n", "config: indent: must not be negative"},
		{"bad unit", FormatTOML, "indent = \"tabs\"\n", `config: indent: expected integer or "tab", got "tabs"`},
		{"bool unit", FormatYAML, "indent: true\n", `config: indent: expected integer or "tab", got boolean`},
		{"unknown", FormatTOML, "Indent = 2\n", "config: Indent: unknown key"},
		{"unknown nested", FormatTOML, "[FunctionDeclaration]\nparams = 1\n", "config: FunctionDeclaration.params: unknown key"},
		{"unknown yaml", FormatYAML, "CallExpression:\n  args: 1\n", "config: CallExpression.args: unknown key"},
		{"first on member", FormatTOML, "MemberExpression = \"first\"\n", `config: MemberExpression: expected integer or "off"`},
		{"fraction", FormatYAML, "SwitchCase: 1.5\n", "config: SwitchCase: expected integer"},
		{"declarator kind", FormatTOML, "VariableDeclarator = { let = \"x\" }\n", `config: VariableDeclarator.let: expected integer, got "x"`},
		{"declarator type", FormatTOML, "VariableDeclarator = \"x\"\n", "config: VariableDeclarator: expected integer or table"},
		{"table expected", FormatTOML, "FunctionExpression = 1\n", "config: FunctionExpression: expected table"},
		{"params string", FormatTOML, "[FunctionExpression]\nparameters = \"last\"\n", `config: FunctionExpression.parameters: expected integer, "first" or "off", got "last"`},
		{"extension list", FormatTOML, "[files]\nextensions = [1]\n", "config: files.extensions[0]: expected string"},
		{"bad toml", FormatTOML, "indent = \n", "config: failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), tt.format)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := filepath.Join(root, ".indentguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("indent: 2\n"), 0o600))

	got, ok, err := Find(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, got)

	cfg, err := Load(nested, "")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, indent.Spaces(2), cfg.Indent.Unit)
}

func TestTOMLWinsOverYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".indentguard.yaml"), []byte("indent: 2\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".indentguard.toml"), []byte("indent = 3\n"), 0o600))

	cfg, err := Load(dir, "")
	require.NoError(t, err)
	assert.Equal(t, indent.Spaces(3), cfg.Indent.Unit)
}

func TestLoadFileErrorsNamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("SwitchCase = \"x\"\n"), 0o600))

	_, err := Load(dir, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, err.Error(), "SwitchCase")

	_, err = LoadFile(filepath.Join(dir, "custom.json"))
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestOverrides(t *testing.T) {
	cfg := Default()
	switchCase, member := 1, 2
	require.NoError(t, Overrides{Indent: "tab", SwitchCase: &switchCase, MemberExpression: &member}.Apply(&cfg))
	assert.Equal(t, indent.Tab(), cfg.Indent.Unit)
	assert.Equal(t, 1, cfg.Indent.SwitchCase)
	assert.Equal(t, indent.Offset(2), cfg.Indent.MemberExpression)

	require.NoError(t, Overrides{Indent: " 2 "}.Apply(&cfg))
	assert.Equal(t, indent.Spaces(2), cfg.Indent.Unit)

	neg := -1
	assert.Error(t, Overrides{SwitchCase: &neg}.Apply(&cfg))
	assert.Error(t, Overrides{Indent: "wide"}.Apply(&cfg))
}

func TestFingerprintTracksIndentSettings(t *testing.T) {
	a, b := Default(), Default()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	b.Indent.SwitchCase = 1
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	b = Default()
	b.Files.Exclude = nil
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}
