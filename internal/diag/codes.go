package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedTemplate     Code = 1005
	LexUnterminatedRegExp       Code = 1006

	SynInfo               Code = 2000
	SynUnexpectedToken    Code = 2001
	SynUnclosedDelimiter  Code = 2002
	SynExpectSemicolon    Code = 2003
	SynExpectIdentifier   Code = 2004
	SynExpectExpression   Code = 2005
	SynInvalidAssignment  Code = 2006
	SynIllegalReturn      Code = 2007
	SynUnsupportedSyntax  Code = 2008
	SynTooManyErrors      Code = 2009
	SynNewlineAfterThrow  Code = 2010
	SynMissingInitializer Code = 2011

	IndentInfo     Code = 3000
	IndentMismatch Code = 3001

	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
)

var codeDescription = map[Code]string{
	UnknownCode:                 "Unknown error",
	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Bad number",
	LexUnterminatedTemplate:     "Unterminated template literal",
	LexUnterminatedRegExp:       "Unterminated regular expression",
	SynInfo:                     "Syntax information",
	SynUnexpectedToken:          "Unexpected token",
	SynUnclosedDelimiter:        "Unclosed delimiter",
	SynExpectSemicolon:          "Expect semicolon",
	SynExpectIdentifier:         "Expect identifier",
	SynExpectExpression:         "Expect expression",
	SynInvalidAssignment:        "Invalid assignment target",
	SynIllegalReturn:            "Illegal return statement",
	SynUnsupportedSyntax:        "Unsupported syntax",
	SynTooManyErrors:            "Too many syntax errors",
	SynNewlineAfterThrow:        "Illegal newline after throw",
	SynMissingInitializer:       "Missing initializer in const declaration",
	IndentInfo:                  "Indentation information",
	IndentMismatch:              "Wrong indentation",
	IOLoadFileError:             "I/O error",
	IOWriteFileError:            "Write error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("IND%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
