package fix

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"indentguard/internal/diag"
	"indentguard/internal/source"
)

// ErrNoFixes is returned when no fixes were applied.
var ErrNoFixes = errors.New("no applicable fixes found")

// BOM is the UTF-8 byte order mark.
const BOM = "\uFEFF"

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ModeAll ApplyMode = iota
	ModeOnce
	ModeID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
}

// Source is the text of one file without its byte order mark.
type Source struct {
	Text []byte
	BOM  bool
}

// Result of a single application pass over one text.
type Result struct {
	// Applied is true iff at least one edit was accepted.
	Applied bool
	// Residual holds diagnostics that were not fixed, sorted by line and column.
	Residual []diag.Diagnostic
	// Fixed holds diagnostics whose edits were all applied.
	Fixed []diag.Diagnostic
	// Accepted lists the applied edits in ascending order.
	Accepted []diag.TextEdit
	// Text is the corrected text without BOM; Output carries it when BOM is set.
	Text   []byte
	BOM    bool
	Output []byte
}

type ownedEdit struct {
	edit  diag.TextEdit
	owner int
}

// primaryEdits returns the edits of the first fix that has any.
func primaryEdits(d *diag.Diagnostic) (diag.Fix, bool) {
	for _, f := range d.Fixes {
		if len(f.Edits) > 0 {
			return f, true
		}
	}
	return diag.Fix{}, false
}

// ApplyEdits applies a maximal non-overlapping subset of the diagnostics'
// edits to src in one pass. Overlaps are resolved in favour of the edit
// further right; a diagnostic whose edits are not all accepted stays
// residual and none of its edits are applied.
func ApplyEdits(src Source, diags []diag.Diagnostic) Result {
	return ApplyEditsMode(src, diags, ApplyOptions{Mode: ModeAll})
}

// ApplyEditsMode is ApplyEdits restricted to the diagnostics opts selects.
func ApplyEditsMode(src Source, diags []diag.Diagnostic, opts ApplyOptions) Result {
	selected := selectDiagnostics(diags, opts)

	var residual []diag.Diagnostic
	var edits []ownedEdit
	for i := range diags {
		f, ok := primaryEdits(&diags[i])
		if !ok || !selected[i] {
			residual = append(residual, diags[i])
			continue
		}
		for _, e := range f.Edits {
			edits = append(edits, ownedEdit{edit: e, owner: i})
		}
	}

	sort.SliceStable(edits, func(i, j int) bool {
		a, b := edits[i].edit, edits[j].edit
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Start < b.Start
	})

	accepted := make([]bool, len(edits))
	rejected := make(map[int]bool)
	lastStart := math.MaxInt
	for k := len(edits) - 1; k >= 0; k-- {
		e := edits[k].edit
		if e.End < lastStart && wellFormed(e, len(src.Text)) {
			accepted[k] = true
			lastStart = e.Start
			continue
		}
		rejected[edits[k].owner] = true
	}

	var kept []diag.TextEdit
	fixed := make(map[int]bool)
	for k, oe := range edits {
		if !accepted[k] || rejected[oe.owner] {
			continue
		}
		kept = append(kept, oe.edit)
		fixed[oe.owner] = true
	}
	var fixedDiags []diag.Diagnostic
	for i := range diags {
		switch {
		case fixed[i]:
			fixedDiags = append(fixedDiags, diags[i])
		case rejected[i]:
			residual = append(residual, diags[i])
		}
	}
	sortByPosition(residual)

	text, bom := apply(src.Text, src.BOM, kept)
	res := Result{
		Applied:  len(kept) > 0,
		Residual: residual,
		Fixed:    fixedDiags,
		Accepted: kept,
		Text:     text,
		BOM:      bom,
		Output:   text,
	}
	if bom {
		res.Output = append([]byte(BOM), text...)
	}
	return res
}

// wellFormed rejects edits that fall outside the text.
func wellFormed(e diag.TextEdit, size int) bool {
	return e.Start <= e.End && e.End <= size && e.End >= 0
}

// apply splices accepted (ascending, disjoint) edits into text, walking
// from the last edit to the first.
func apply(text []byte, bom bool, edits []diag.TextEdit) ([]byte, bool) {
	chunks := make([]string, 0, 2*len(edits)+1)
	tail := len(text)
	for k := len(edits) - 1; k >= 0; k-- {
		e := edits[k]
		start := e.Start
		if start < 0 {
			start, bom = 0, false
		}
		newText := e.NewText
		if start == 0 && strings.HasPrefix(newText, BOM) {
			newText, bom = strings.TrimPrefix(newText, BOM), true
		}
		chunks = append(chunks, string(text[e.End:tail]), newText)
		tail = start
	}
	chunks = append(chunks, string(text[:tail]))

	var sb strings.Builder
	sb.Grow(len(text))
	for k := len(chunks) - 1; k >= 0; k-- {
		sb.WriteString(chunks[k])
	}
	return []byte(sb.String()), bom
}

func sortByPosition(diags []diag.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Loc.Less(diags[j].Loc)
	})
}

// selectDiagnostics marks which fixable diagnostics take part in the pass.
func selectDiagnostics(diags []diag.Diagnostic, opts ApplyOptions) []bool {
	selected := make([]bool, len(diags))
	switch opts.Mode {
	case ModeOnce:
		best := -1
		for i := range diags {
			if _, ok := primaryEdits(&diags[i]); !ok {
				continue
			}
			if best < 0 || diags[i].Loc.Less(diags[best].Loc) {
				best = i
			}
		}
		if best >= 0 {
			selected[best] = true
		}
	case ModeID:
		for i := range diags {
			if f, ok := primaryEdits(&diags[i]); ok && f.ID == opts.TargetID {
				selected[i] = true
				break
			}
		}
	default:
		for i := range selected {
			selected[i] = true
		}
	}
	return selected
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID        string
	Title     string
	Code      diag.Code
	Message   string
	Path      string
	EditCount int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Path   string
	Reason string
}

// FileChange summarises modifications performed on a file.
type FileChange struct {
	Path      string
	EditCount int
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
	Residual    []diag.Diagnostic
}

// Apply runs one pass per file of fs over diagnostics, selecting fixes by
// opts, and writes every changed file that is backed by disk.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	result := &ApplyResult{
		Applied:     make([]AppliedFix, 0),
		Skipped:     make([]SkippedFix, 0),
		FileChanges: make([]FileChange, 0),
	}
	if fs == nil {
		return result, fmt.Errorf("fix: FileSet is nil")
	}
	if opts.Mode == ModeID && !hasFixID(diagnostics, opts.TargetID) {
		result.Skipped = append(result.Skipped, SkippedFix{ID: opts.TargetID, Reason: "fix id not found"})
		return result, ErrNoFixes
	}

	byFile := make(map[source.FileID][]diag.Diagnostic)
	var order []source.FileID
	for _, d := range diagnostics {
		if _, seen := byFile[d.Primary.File]; !seen {
			order = append(order, d.Primary.File)
		}
		byFile[d.Primary.File] = append(byFile[d.Primary.File], d)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	// ModeOnce: одна правка на весь прогон, первая по файлу и позиции
	target, haveTarget := source.FileID(0), false
	if opts.Mode == ModeOnce {
		for _, id := range order {
			if hasFix(byFile[id]) {
				target, haveTarget = id, true
				break
			}
		}
	}

	baseDir := fs.BaseDir()
	for _, id := range order {
		file := fs.Get(id)
		if file == nil || (opts.Mode == ModeOnce && (!haveTarget || id != target)) {
			result.Residual = append(result.Residual, byFile[id]...)
			continue
		}
		path := file.FormatPath("relative", baseDir)
		res := ApplyEditsMode(Source{Text: file.Content, BOM: file.Flags&source.FileHadBOM != 0}, byFile[id], opts)
		result.Residual = append(result.Residual, res.Residual...)
		for _, d := range res.Residual {
			if f, ok := primaryEdits(&d); ok && (opts.Mode == ModeAll || f.ID == opts.TargetID) {
				result.Skipped = append(result.Skipped, SkippedFix{
					ID:     f.ID,
					Title:  f.Title,
					Path:   path,
					Reason: "conflicts with another accepted edit",
				})
			}
		}
		if !res.Applied {
			continue
		}
		if file.Flags&source.FileVirtual != 0 {
			for _, d := range res.Fixed {
				f, _ := primaryEdits(&d)
				result.Skipped = append(result.Skipped, SkippedFix{ID: f.ID, Title: f.Title, Path: path, Reason: "target file is virtual"})
			}
			continue
		}
		if err := WriteFile(file.Path, res.Output); err != nil {
			return result, err
		}
		for _, d := range res.Fixed {
			f, _ := primaryEdits(&d)
			result.Applied = append(result.Applied, AppliedFix{
				ID:        f.ID,
				Title:     f.Title,
				Code:      d.Code,
				Message:   d.Message,
				Path:      path,
				EditCount: len(f.Edits),
			})
		}
		result.FileChanges = append(result.FileChanges, FileChange{Path: path, EditCount: len(res.Accepted)})
	}

	sort.SliceStable(result.FileChanges, func(i, j int) bool {
		return result.FileChanges[i].Path < result.FileChanges[j].Path
	})
	if len(result.Applied) == 0 {
		return result, ErrNoFixes
	}
	return result, nil
}

func hasFix(diags []diag.Diagnostic) bool {
	for i := range diags {
		if _, ok := primaryEdits(&diags[i]); ok {
			return true
		}
	}
	return false
}

func hasFixID(diags []diag.Diagnostic, id string) bool {
	for i := range diags {
		if f, ok := primaryEdits(&diags[i]); ok && f.ID == id {
			return true
		}
	}
	return false
}

// WriteFile replaces path atomically, keeping its permissions.
func WriteFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".indentguard-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
