// Package token defines lexical token kinds for the JavaScript subset handled by indentguard.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - Start/End are 1-based line/column positions of Span.Start/Span.End.
//   - Comments are tokens too (LineComment, BlockComment); the lexer routes
//     them to a separate stream so the parser never sees them.
//   - A template literal is split into Template chunks that keep their
//     delimiters: "`a${", "}b${", "}c`" or a whole "`abc`".
//   - Contextual words (let, of, get, set, static, async) are identifiers;
//     the parser gives them meaning.
package token
