package calc_test

import (
	"errors"
	"testing"

	"github.com/zephyrtronium/calc"
)

func TestValidate(t *testing.T) {
	ok := []string{
		"",
		"0123456789",
		"1 + 2 - 3 * 4 / 5 ^ 6",
		"(1.5)",
		"\t2\n",
		"PI",
		"sin(30)+cos(60)+tan(45)",
		"log(2)*exp(3)/sqrt(4)",
		"1e+21",
		// Validate is only an alphabet check.
		"))((",
		"nix",
	}
	for _, s := range ok {
		if err := calc.Validate(s); err != nil {
			t.Errorf("%q rejected: %v", s, err)
		}
	}
	bad := []struct {
		src string
		col int
	}{
		{"$", 1},
		{"2+y", 3},
		{"2E5", 2},
		{"2PIE", 4},
		{"1,5", 2},
		{"x=1", 2},
		{"2+2;", 4},
		{"[2]", 1},
		{"2×3", 2},
		{"π", 1},
		{"sin(30)#", 8},
		{"Math.PI", 1},
	}
	for _, c := range bad {
		err := calc.Validate(c.src)
		var le *calc.LexError
		if !errors.As(err, &le) {
			t.Errorf("%q: want *LexError, got %v", c.src, err)
			continue
		}
		if le.Col != c.col {
			t.Errorf("%q: want column %d, got %d", c.src, c.col, le.Col)
		}
	}
}

func TestCheckBalance(t *testing.T) {
	ok := []string{
		"",
		"2",
		"()",
		"(())()",
		"sqrt((1+2)*(3+4))",
		"((((((((((1))))))))))",
	}
	for _, s := range ok {
		if err := calc.CheckBalance(s); err != nil {
			t.Errorf("%q rejected: %v", s, err)
		}
	}
	bad := []struct {
		src         string
		col         int
		left, right string
	}{
		{"(", 1, "(", ""},
		{")", 1, "", ")"},
		{")(", 1, "", ")"},
		{"(()", 1, "(", ""},
		{"()(", 3, "(", ""},
		{"(1+2))", 6, "", ")"},
		{"sin(90", 4, "(", ""},
		{"((1)", 1, "(", ""},
		{"(1)+(2", 5, "(", ""},
	}
	for _, c := range bad {
		err := calc.CheckBalance(c.src)
		var be *calc.BracketError
		if !errors.As(err, &be) {
			t.Errorf("%q: want *BracketError, got %v", c.src, err)
			continue
		}
		if be.Col != c.col || be.Left != c.left || be.Right != c.right {
			t.Errorf("%q: want %d %q %q, got %d %q %q", c.src, c.col, c.left, c.right, be.Col, be.Left, be.Right)
		}
	}
}
