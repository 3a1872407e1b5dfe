package diagfmt

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"indentguard/internal/diag"
	"indentguard/internal/source"
)

type fixEditPreview struct {
	before []string
	after  []string
}

// buildFixEditPreview renders the lines touched by edit before and after it is applied.
func buildFixEditPreview(file *source.File, edit diag.TextEdit) (fixEditPreview, error) {
	if file == nil {
		return fixEditPreview{}, fmt.Errorf("nil file")
	}
	span := editSpan(file.ID, edit)
	lenContent, err := safecast.Conv[uint32](len(file.Content))
	if err != nil {
		return fixEditPreview{}, fmt.Errorf("len file content overflow: %w", err)
	}
	if span.Start > span.End || span.End > lenContent {
		return fixEditPreview{}, fmt.Errorf("edit [%d, %d) out of range", edit.Start, edit.End)
	}

	startLine := file.Position(span.Start).Line
	endLine := max(file.Position(span.End).Line, startLine)

	blockStart := file.LineStart(startLine)
	blockEnd := min(max(lineEndOffsetInclusive(file, endLine), blockStart), lenContent)

	original := file.Content[blockStart:blockEnd]
	relStart := int(span.Start - blockStart)
	relEnd := int(span.End - blockStart)

	after := make([]byte, 0, len(original)+len(edit.NewText))
	after = append(after, original[:relStart]...)
	after = append(after, edit.NewText...)
	after = append(after, original[relEnd:]...)

	return fixEditPreview{
		before: splitPreviewLines(original),
		after:  splitPreviewLines(after),
	}, nil
}

func splitPreviewLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	text := strings.TrimRight(string(content), "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func lineEndOffsetInclusive(f *source.File, line uint32) uint32 {
	if line == 0 {
		return 0
	}
	idx := line - 1
	if int(idx) < len(f.LineIdx) {
		return f.LineIdx[idx] + 1
	}
	lenFileContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return lenFileContent
}

// showIndent makes leading whitespace visible: spaces as '·', tabs as '→'.
func showIndent(line string) string {
	var sb strings.Builder
	i := 0
	for ; i < len(line); i++ {
		switch line[i] {
		case ' ':
			sb.WriteString("·")
		case '\t':
			sb.WriteString("→")
		default:
			sb.WriteString(line[i:])
			return sb.String()
		}
	}
	return sb.String()
}
