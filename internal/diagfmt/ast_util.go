package diagfmt

import (
	"fmt"

	"fortio.org/safecast"

	"indentguard/internal/diag"
	"indentguard/internal/source"
)

// formatSpan formats a source.Span into a string.
// If fs is non-nil, it resolves the span to start and end positions and returns "startLine:startCol-endLine:endCol".
// If fs is nil, it returns "span(start-end)".
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && fs.Get(span.File) != nil {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

// formatPath renders the path of file according to mode.
func formatPath(file *source.File, fs *source.FileSet, mode PathMode) string {
	if file == nil {
		return "<unknown>"
	}
	switch mode {
	case PathModeAbsolute:
		return file.FormatPath("absolute", "")
	case PathModeRelative:
		return file.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return file.FormatPath("basename", "")
	case PathModeAuto:
		return file.FormatPath("auto", "")
	default:
		return file.Path
	}
}

// editSpan converts a byte-offset edit into a span of file; a negative start
// (byte order mark removal) is clamped to zero.
func editSpan(file source.FileID, e diag.TextEdit) source.Span {
	start, end := max(e.Start, 0), max(e.End, 0)
	s, err := safecast.Conv[uint32](start)
	if err != nil {
		panic(fmt.Errorf("edit start overflow: %w", err))
	}
	en, err := safecast.Conv[uint32](end)
	if err != nil {
		panic(fmt.Errorf("edit end overflow: %w", err))
	}
	return source.Span{File: file, Start: s, End: en}
}
