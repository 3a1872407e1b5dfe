package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"indentguard/internal/source"
	"indentguard/internal/token"
)

type TokenOutput struct {
	Kind  string         `json:"kind"`
	Text  string         `json:"text,omitempty"`
	Span  source.Span    `json:"span"`
	Start source.LineCol `json:"start"`
	End   source.LineCol `json:"end"`
}

// FormatTokensPretty выводит токены в человекочитаемом формате
func FormatTokensPretty(w io.Writer, tokens []token.Token) error {
	for i, tok := range tokens {
		if _, err := fmt.Fprintf(w, "%3d: %-17s", i+1, tok.Kind.String()); err != nil {
			return err
		}
		if tok.Text != "" {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d\n",
			tok.Start.Line, tok.Start.Col,
			tok.End.Line, tok.End.Col)
		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		output = append(output, TokenOutput{
			Kind:  tok.Kind.String(),
			Text:  tok.Text,
			Span:  tok.Span,
			Start: tok.Start,
			End:   tok.End,
		})
		if tok.Kind == token.EOF {
			break
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
