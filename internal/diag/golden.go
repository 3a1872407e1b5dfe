package diag

import (
	"fmt"
	"sort"
	"strings"

	"indentguard/internal/source"
)

type shortDiagnostic struct {
	Path    string
	Line    uint32
	Column  uint32
	Code    string
	Message string
}

// FormatShortDiagnostics renders diagnostics as stable "path:line:col: CODE message"
// lines, sorted by path and position. Paths are relative to the FileSet base.
func FormatShortDiagnostics(diags []Diagnostic, fs *source.FileSet) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	baseDir := fs.BaseDir()
	rendered := make([]shortDiagnostic, 0, len(diags))
	for i := range diags {
		d := &diags[i]
		path := ""
		if int(d.Primary.File) < fs.Len() {
			path = fs.Get(d.Primary.File).FormatPath("relative", baseDir)
		}
		msg, _, _ := strings.Cut(d.Message, "\n")
		rendered = append(rendered, shortDiagnostic{
			Path:    path,
			Line:    d.Loc.Line,
			Column:  d.Loc.Col,
			Code:    d.Code.ID(),
			Message: msg,
		})
	}
	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		return di.Column < dj.Column
	})

	var sb strings.Builder
	for _, d := range rendered {
		fmt.Fprintf(&sb, "%s:%d:%d: %s %s\n", d.Path, d.Line, d.Column, d.Code, d.Message)
	}
	return sb.String()
}
