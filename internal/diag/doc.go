// Package diag defines the diagnostic model shared by the lexer, parser and
// indentation checker.
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error), see severity.go.
//   - Code – compact numeric identifier with a stable string form (codes.go).
//   - Message – short human text.
//   - Primary – source.Span of the offending token; Loc caches its line/column.
//   - Notes – optional secondary spans.
//   - Fixes – optional Fix records made of byte-range TextEdits.
//   - Indent – expected/actual counts for indentation findings.
//
// TextEdit offsets address the file content without its byte order mark.
// A negative Start reaches into the BOM: the fix engine treats it as
// "remove the BOM".
//
// Producers emit through a Reporter (BagReporter collects into a Bag). The
// package performs no formatting beyond FormatShortDiagnostics; rendering
// lives in internal/diagfmt and edit application in internal/fix.
package diag
