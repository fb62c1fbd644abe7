package calc

import (
	"strings"
	"unicode"
)

// Symbols contains the non-alphanumeric runes allowed in an expression,
// besides whitespace.
const Symbols = Operators + "()."

// letters is the set of letters allowed in an expression: exactly those that
// spell the names of functions and constants.
var letters = nameLetters(globalfuncs)

func nameLetters(funcs map[string]Func) string {
	var b strings.Builder
	for name := range funcs {
		for _, r := range name {
			if !strings.ContainsRune(b.String(), r) {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// Validate checks that expr contains only digits, operators, parentheses,
// decimal points, whitespace, and the letters of function and constant names.
// It is a whitelist of characters, not a grammar check. The error, if any, is
// a *LexError.
func Validate(expr string) error {
	col := 0
	for _, r := range expr {
		col++
		switch {
		case '0' <= r && r <= '9':
		case strings.ContainsRune(Symbols, r):
		case unicode.IsSpace(r):
		case strings.ContainsRune(letters, r):
		default:
			return &LexError{Text: string(r), Col: col}
		}
	}
	return nil
}

// CheckBalance checks that every parenthesis in expr is matched. A close
// parenthesis with no open one before it fails immediately. The error, if any,
// is a *BracketError locating the unmatched parenthesis.
func CheckBalance(expr string) error {
	var open []int
	col := 0
	for _, r := range expr {
		col++
		switch r {
		case '(':
			open = append(open, col)
		case ')':
			if len(open) == 0 {
				return &BracketError{Col: col, Right: ")"}
			}
			open = open[:len(open)-1]
		}
	}
	if len(open) != 0 {
		return &BracketError{Col: open[len(open)-1], Left: "("}
	}
	return nil
}
