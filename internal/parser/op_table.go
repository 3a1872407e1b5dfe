package parser

import (
	"indentguard/internal/token"
)

// Таблица приоритетов для бинарных операторов
// Чем больше число, тем выше приоритет
const (
	precNone           = 0
	precLogicalOr      = 1  // ||
	precLogicalAnd     = 2  // &&
	precBitwiseOr      = 3  // |
	precBitwiseXor     = 4  // ^
	precBitwiseAnd     = 5  // &
	precEquality       = 6  // == != === !==
	precRelational     = 7  // < > <= >= instanceof in
	precShift          = 8  // << >> >>>
	precAdditive       = 9  // + -
	precMultiplicative = 10 // * / %
	precExponent       = 11 // ** (правоассоциативный)
)

// binaryPrec возвращает приоритет и правоассоциативность оператора.
// noIn исключает `in` (заголовок for).
func binaryPrec(tok token.Token, noIn bool) (int, bool) {
	if tok.Kind == token.Keyword {
		switch tok.Text {
		case "instanceof":
			return precRelational, false
		case "in":
			if noIn {
				return precNone, false
			}
			return precRelational, false
		}
		return precNone, false
	}
	if tok.Kind != token.Punct {
		return precNone, false
	}
	switch tok.Text {
	case "||":
		return precLogicalOr, false
	case "&&":
		return precLogicalAnd, false
	case "|":
		return precBitwiseOr, false
	case "^":
		return precBitwiseXor, false
	case "&":
		return precBitwiseAnd, false
	case "==", "!=", "===", "!==":
		return precEquality, false
	case "<", ">", "<=", ">=":
		return precRelational, false
	case "<<", ">>", ">>>":
		return precShift, false
	case "+", "-":
		return precAdditive, false
	case "*", "/", "%":
		return precMultiplicative, false
	case "**":
		return precExponent, true
	}
	return precNone, false
}

func isAssignOp(tok token.Token) bool {
	if tok.Kind != token.Punct {
		return false
	}
	switch tok.Text {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=", "&=", "|=", "^=":
		return true
	}
	return false
}

func isUnaryOp(tok token.Token) bool {
	switch tok.Kind {
	case token.Punct:
		switch tok.Text {
		case "!", "~", "+", "-":
			return true
		}
	case token.Keyword:
		switch tok.Text {
		case "typeof", "void", "delete":
			return true
		}
	}
	return false
}
