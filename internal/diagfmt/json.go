package diagfmt

import (
	"encoding/json"
	"io"

	"indentguard/internal/diag"
	"indentguard/internal/source"
)

// LocationJSON представляет местоположение в файле для JSON
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON представляет одно редактирование для JSON
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

// FixJSON представляет предложение по исправлению для JSON
type FixJSON struct {
	ID    string        `json:"id,omitempty"`
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// IndentJSON carries the measured and expected indentation of a line.
type IndentJSON struct {
	Expected     int `json:"expected"`
	ActualSpaces int `json:"actual_spaces"`
	ActualTabs   int `json:"actual_tabs"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Line     uint32       `json:"line"`
	Column   uint32       `json:"column"`
	Location LocationJSON `json:"location"`
	Indent   *IndentJSON  `json:"indent,omitempty"`
	Fixable  bool         `json:"fixable"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput представляет корневую структуру JSON вывода
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Errors      int              `json:"errors"`
	Fixable     int              `json:"fixable"`
}

// makeLocation создаёт LocationJSON из Span
func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	f := fs.Get(span.File)
	loc := LocationJSON{
		File:      formatPath(f, fs, pathMode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if includePositions && f != nil {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput формирует структуру JSON-вывода без сериализации.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) (DiagnosticsOutput, error) {
	items := bag.Items()
	maxItems := len(items)
	if opts.Max > 0 && opts.Max < maxItems {
		maxItems = opts.Max
	}
	diagnostics := make([]DiagnosticJSON, 0, maxItems)
	output := DiagnosticsOutput{}

	for i := range maxItems {
		d := items[i]
		file := fs.Get(d.Primary.File)

		loc := d.Loc
		if loc.Line == 0 && file != nil {
			loc = file.Position(d.Primary.Start)
		}
		diagJSON := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Line:     loc.Line,
			Column:   loc.Col,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
			Fixable:  d.HasFix(),
		}
		if d.Indent != nil {
			diagJSON.Indent = &IndentJSON{
				Expected:     d.Indent.Expected,
				ActualSpaces: d.Indent.ActualSpaces,
				ActualTabs:   d.Indent.ActualTabs,
			}
		}
		if d.Severity >= diag.SevError {
			output.Errors++
		}
		if diagJSON.Fixable {
			output.Fixable++
		}

		if opts.IncludeNotes && len(d.Notes) > 0 {
			diagJSON.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				diagJSON.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}

		if opts.IncludeFixes && len(d.Fixes) > 0 {
			diagJSON.Fixes = make([]FixJSON, 0, len(d.Fixes))
			for _, fix := range d.Fixes {
				fixJSON := FixJSON{ID: fix.ID, Title: fix.Title}
				if len(fix.Edits) > 0 {
					fixJSON.Edits = make([]FixEditJSON, len(fix.Edits))
				}
				for k, edit := range fix.Edits {
					span := editSpan(d.Primary.File, edit)
					editJSON := FixEditJSON{
						Location: makeLocation(span, fs, opts.PathMode, opts.IncludePositions),
						NewText:  edit.NewText,
					}
					if file != nil && int(span.End) <= len(file.Content) && span.Start <= span.End {
						editJSON.OldText = string(file.Content[span.Start:span.End])
					}
					if opts.IncludePreviews {
						if preview, err := buildFixEditPreview(file, edit); err == nil {
							editJSON.BeforeLines = append([]string(nil), preview.before...)
							editJSON.AfterLines = append([]string(nil), preview.after...)
						}
					}
					fixJSON.Edits[k] = editJSON
				}
				diagJSON.Fixes = append(diagJSON.Fixes, fixJSON)
			}
		}

		diagnostics = append(diagnostics, diagJSON)
	}

	output.Diagnostics = diagnostics
	output.Count = len(diagnostics)
	return output, nil
}

// JSON форматирует диагностики в JSON формат.
// Выводит массив диагностик с полной информацией о местоположении, заметках и исправлениях.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	output, err := BuildDiagnosticsOutput(bag, fs, opts)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
