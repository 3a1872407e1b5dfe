package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF
	// Ident represents an identifier, including contextual keywords.
	Ident
	// Keyword represents a reserved word.
	Keyword
	// Punct represents an operator or punctuator.
	Punct
	// String represents a single or double quoted string literal.
	String
	// Numeric represents a number literal.
	Numeric
	// RegExp represents a regular expression literal.
	RegExp
	// Template represents one chunk of a template literal.
	Template
	// LineComment represents a // comment.
	LineComment
	// BlockComment represents a /* */ comment.
	BlockComment
)

var kindNames = [...]string{
	Invalid:      "Invalid",
	EOF:          "EOF",
	Ident:        "Identifier",
	Keyword:      "Keyword",
	Punct:        "Punctuator",
	String:       "String",
	Numeric:      "Numeric",
	RegExp:       "RegularExpression",
	Template:     "Template",
	LineComment:  "Line",
	BlockComment: "Block",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}
