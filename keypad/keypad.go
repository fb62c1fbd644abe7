// Package keypad holds the state of a calculator's input line: the expression
// being composed, edited one key at a time, and the result of evaluating it.
//
// A Keypad inserts the multiplication implied by juxtaposition when a
// parenthesis, a function, or PI is appended directly after a number, a close
// parenthesis, or PI, so that the expressions it builds need no implicit
// multiplication at evaluation time.
package keypad

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/zephyrtronium/calc"
)

// ErrorMarker is the text a Keypad displays after a failed evaluation.
const ErrorMarker = "Error"

// Evaluator evaluates expressions for a Keypad. *calc.Evaluator implements it.
type Evaluator interface {
	Evaluate(expr string) (float64, error)
}

// Keypad is the calculator's input state. The zero value is not usable; use
// New.
type Keypad struct {
	text   string
	failed bool
	eval   Evaluator
}

// New creates an empty Keypad. If ev is nil, the Keypad uses calc.Evaluate.
func New(ev Evaluator) *Keypad {
	if ev == nil {
		ev = calc.New()
	}
	return &Keypad{eval: ev}
}

// Text returns the current expression, or ErrorMarker after a failed
// evaluation.
func (k *Keypad) Text() string {
	return k.text
}

// Display returns the text to show for the current state. An empty
// expression displays as "0".
func (k *Keypad) Display() string {
	if k.text == "" {
		return "0"
	}
	return k.text
}

// Failed returns whether the last evaluation failed and its error marker is
// still displayed.
func (k *Keypad) Failed() bool {
	return k.failed
}

// Append appends s to the expression. If the last evaluation failed, s
// replaces the error marker instead. A multiplication is inserted first if
// InsertImplicitOperator(k.Text(), s).
func (k *Keypad) Append(s string) {
	if k.failed {
		k.Clear()
	}
	if InsertImplicitOperator(k.text, s) {
		k.text += "*"
	}
	k.text += s
}

// Delete removes the last character of the expression. After a failed
// evaluation, Delete clears the error marker.
func (k *Keypad) Delete() {
	if k.failed {
		k.Clear()
		return
	}
	_, n := utf8.DecodeLastRuneInString(k.text)
	k.text = k.text[:len(k.text)-n]
}

// Clear empties the expression.
func (k *Keypad) Clear() {
	k.text = ""
	k.failed = false
}

// Equals evaluates the expression and replaces it with the formatted result,
// so that further keys continue from it. On failure the expression becomes
// ErrorMarker and the error from the evaluator is returned.
func (k *Keypad) Equals() (float64, error) {
	v, err := k.eval.Evaluate(k.text)
	if err != nil {
		k.text = ErrorMarker
		k.failed = true
		return 0, err
	}
	k.text = Format(v)
	k.failed = false
	return v, nil
}

// Press handles a key by name, as a keyboard reports it: digits and the
// characters +-*/(). append themselves, "=" and "Enter" evaluate, "Backspace"
// deletes, and "Escape", "c", and "C" clear. Press reports whether it
// recognized the key.
func (k *Keypad) Press(key string) bool {
	switch {
	case len(key) == 1 && ('0' <= key[0] && key[0] <= '9' || strings.IndexByte("+-*/().", key[0]) >= 0):
		k.Append(key)
	case key == "=", key == "Enter":
		k.Equals()
	case key == "Backspace":
		k.Delete()
	case key == "Escape", key == "c", key == "C":
		k.Clear()
	default:
		return false
	}
	return true
}

// ErrUnknownFunc is returned by Func for a name with no button.
var ErrUnknownFunc = errors.New("keypad: unknown function")

// Func handles a scientific function button: "sqrt", "sin", "cos", "tan",
// "log", and "exp" open a call, "square" appends "^2", "recip" appends "1/(",
// and "PI" appends the constant.
func (k *Keypad) Func(name string) error {
	switch name {
	case "square":
		k.Append("^2")
	case "recip":
		k.Append("1/(")
	case "PI":
		k.Append("PI")
	case "sqrt", "sin", "cos", "tan", "log", "exp":
		k.Append(name + "(")
	default:
		return ErrUnknownFunc
	}
	return nil
}

// InsertImplicitOperator returns whether appending next to current needs a
// multiplication operator between them: next opens a parenthesis or is PI,
// and current ends with a digit, a close parenthesis, or PI.
func InsertImplicitOperator(current, next string) bool {
	if current == "" {
		return false
	}
	if !strings.Contains(next, "(") && next != "PI" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(current)
	return '0' <= r && r <= '9' || r == ')' || r == 'I'
}

// Format formats a result the way the keypad displays it: plain decimal for
// magnitudes from 1e-6 up to 1e21, otherwise exponent form without padding
// zeros, as in "1e-7" or "1.5e+300". The text evaluates back to exactly v.
func Format(v float64) string {
	if v == 0 {
		// Also catches negative zero.
		return "0"
	}
	if a := math.Abs(v); 1e-6 <= a && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	// The exponent always has a sign and at least two digits.
	i := strings.LastIndexByte(s, 'e') + 2
	if s[i] == '0' {
		s = s[:i] + s[i+1:]
	}
	return s
}
