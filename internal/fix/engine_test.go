package fix

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indentguard/internal/diag"
	"indentguard/internal/source"
)

func fixable(line uint32, id string, edits ...diag.TextEdit) diag.Diagnostic {
	d := diag.NewError(diag.IndentMismatch, source.Span{}, "bad indent")
	d.Loc = source.LineCol{Line: line, Col: 1}
	d.Fixes = []diag.Fix{New("fix", edits, WithID(id))}
	return d
}

func plain(line uint32) diag.Diagnostic {
	d := diag.NewError(diag.SynUnexpectedToken, source.Span{}, "unexpected")
	d.Loc = source.LineCol{Line: line, Col: 1}
	return d
}

func text(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte('a' + i%26)
	}
	return out
}

func TestOverlapPrefersLaterEdit(t *testing.T) {
	first := fixable(1, "first", Replace(10, 20, "X"))
	second := fixable(2, "second", Replace(15, 25, "Y"))

	res := ApplyEdits(Source{Text: text(30)}, []diag.Diagnostic{first, second})
	require.True(t, res.Applied)
	assert.Equal(t, []diag.TextEdit{Replace(15, 25, "Y")}, res.Accepted)
	require.Len(t, res.Residual, 1)
	assert.Equal(t, "first", res.Residual[0].Fixes[0].ID)

	want := string(text(30)[:15]) + "Y" + string(text(30)[25:])
	assert.Equal(t, want, string(res.Output))
}

func TestDiagnosticsWithoutFixesPassThrough(t *testing.T) {
	res := ApplyEdits(Source{Text: []byte("abc")}, []diag.Diagnostic{plain(3), plain(1)})
	assert.False(t, res.Applied)
	assert.Equal(t, "abc", string(res.Output))
	require.Len(t, res.Residual, 2)
	assert.Equal(t, uint32(1), res.Residual[0].Loc.Line)
}

func TestAdjacentEditsConflict(t *testing.T) {
	res := ApplyEdits(Source{Text: text(10)}, []diag.Diagnostic{
		fixable(1, "a", Delete(2, 4)),
		fixable(2, "b", Insert(4, "!")),
	})
	assert.Equal(t, []diag.TextEdit{Insert(4, "!")}, res.Accepted)
	require.Len(t, res.Residual, 1)
	assert.Equal(t, "a", res.Residual[0].Fixes[0].ID)
}

func TestAtomicity(t *testing.T) {
	multi := fixable(1, "multi", Insert(0, "<"), Replace(10, 20, "X"))
	other := fixable(2, "other", Replace(15, 25, "Y"))

	res := ApplyEdits(Source{Text: text(30)}, []diag.Diagnostic{multi, other})
	assert.Equal(t, []diag.TextEdit{Replace(15, 25, "Y")}, res.Accepted, "no partial subset of multi")
	require.Len(t, res.Residual, 1)
	assert.Equal(t, "multi", res.Residual[0].Fixes[0].ID)
	require.Len(t, res.Fixed, 1)
	assert.Equal(t, "other", res.Fixed[0].Fixes[0].ID)
}

func TestMalformedEditsAreResidual(t *testing.T) {
	res := ApplyEdits(Source{Text: []byte("abc")}, []diag.Diagnostic{
		fixable(1, "past-end", Replace(2, 9, "x")),
		fixable(2, "inverted", Replace(2, 1, "x")),
	})
	assert.False(t, res.Applied)
	assert.Len(t, res.Residual, 2)
	assert.Equal(t, "abc", string(res.Output))
}

func TestResidualSortedByPosition(t *testing.T) {
	diags := []diag.Diagnostic{
		plain(9),
		fixable(7, "x", Replace(0, 5, "")),
		fixable(3, "y", Replace(2, 8, "")),
		plain(1),
	}
	diags[0].Loc.Col = 4
	res := ApplyEdits(Source{Text: text(10)}, diags)
	var got []uint32
	for _, d := range res.Residual {
		got = append(got, d.Loc.Line)
	}
	assert.Equal(t, []uint32{1, 7, 9}, got)
}

func TestRandomEditsNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		var diags []diag.Diagnostic
		for i := 0; i < 12; i++ {
			start := rng.Intn(50)
			end := start + rng.Intn(6)
			edits := []diag.TextEdit{Replace(start, end, "z")}
			if rng.Intn(3) == 0 {
				s2 := rng.Intn(50)
				edits = append(edits, Insert(s2, "w"))
			}
			diags = append(diags, fixable(uint32(i+1), "", edits...))
		}
		res := ApplyEdits(Source{Text: text(60)}, diags)

		for i := 1; i < len(res.Accepted); i++ {
			prev, cur := res.Accepted[i-1], res.Accepted[i]
			assert.Less(t, prev.End, cur.Start, "round %d: %v overlaps %v", round, prev, cur)
		}
		accepted := make(map[diag.TextEdit]bool)
		for _, e := range res.Accepted {
			accepted[e] = true
		}
		for _, d := range res.Fixed {
			for _, e := range d.Fixes[0].Edits {
				assert.True(t, accepted[e], "round %d: fixed diagnostic lost edit %v", round, e)
			}
		}
		assert.Equal(t, len(diags), len(res.Fixed)+len(res.Residual))
		assert.Equal(t, len(res.Accepted) > 0, res.Applied)
	}
}

func TestBOMPreserved(t *testing.T) {
	res := ApplyEdits(Source{Text: []byte("a\nb\n"), BOM: true}, []diag.Diagnostic{
		fixable(2, "indent", Insert(2, "  ")),
	})
	assert.True(t, res.BOM)
	assert.Equal(t, BOM+"a\n  b\n", string(res.Output))
	assert.Equal(t, "a\n  b\n", string(res.Text))
}

func TestBOMRemovedByNegativeStart(t *testing.T) {
	res := ApplyEdits(Source{Text: []byte("ab"), BOM: true}, []diag.Diagnostic{
		fixable(1, "unicode-bom", RemoveBOM()),
	})
	require.True(t, res.Applied)
	assert.False(t, res.BOM)
	assert.Equal(t, "ab", string(res.Output))
}

func TestBOMInsertedAtStart(t *testing.T) {
	res := ApplyEdits(Source{Text: []byte("ab")}, []diag.Diagnostic{
		fixable(1, "unicode-bom", Insert(0, BOM)),
	})
	assert.True(t, res.BOM)
	assert.Equal(t, BOM+"ab", string(res.Output))
}

func TestSelectionModes(t *testing.T) {
	diags := []diag.Diagnostic{
		fixable(3, "IND3001-3", Insert(6, " ")),
		fixable(1, "IND3001-1", Insert(0, " ")),
		fixable(2, "IND3001-2", Insert(3, " ")),
	}
	src := Source{Text: []byte("ab\ncd\nef\n")}

	once := ApplyEditsMode(src, diags, ApplyOptions{Mode: ModeOnce})
	assert.Equal(t, " ab\ncd\nef\n", string(once.Output))
	assert.Len(t, once.Residual, 2)

	byID := ApplyEditsMode(src, diags, ApplyOptions{Mode: ModeID, TargetID: "IND3001-2"})
	assert.Equal(t, "ab\n cd\nef\n", string(byID.Output))

	missing := ApplyEditsMode(src, diags, ApplyOptions{Mode: ModeID, TargetID: "nope"})
	assert.False(t, missing.Applied)
	assert.Len(t, missing.Residual, 3)
}

func TestApplyWritesFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBFif (a) {\nb();\n}\n"), 0o600))

	fs := source.NewFileSetWithBase(dir)
	id, err := fs.Load(path)
	require.NoError(t, err)

	d := fixable(2, "IND3001-2", Insert(9, "  "))
	d.Primary.File = id
	res, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{Mode: ModeAll})
	require.NoError(t, err)
	require.Len(t, res.Applied, 1)
	assert.Equal(t, []FileChange{{Path: "a.js", EditCount: 1}}, res.FileChanges)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFif (a) {\n  b();\n}\n", string(got))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestApplyReportsNoFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("x.js", []byte("a"))
	d := plain(1)
	d.Primary.File = id

	_, err := Apply(fs, []diag.Diagnostic{d}, ApplyOptions{})
	assert.ErrorIs(t, err, ErrNoFixes)

	res, err := Apply(fs, nil, ApplyOptions{Mode: ModeID, TargetID: "missing"})
	assert.ErrorIs(t, err, ErrNoFixes)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "fix id not found", res.Skipped[0].Reason)
}
