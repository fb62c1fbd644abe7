package calc_test

import (
	"testing"

	"github.com/zephyrtronium/calc"
)

func FuzzParse(f *testing.F) {
	f.Add("PI")
	f.Add("2(3)")
	f.Add("((")
	f.Add("1e+")
	f.Add("1×2")
	f.Fuzz(func(t *testing.T, s string) {
		x, err := calc.ParseString(s)
		if err == nil && x.String() == "" {
			t.Errorf("%q: empty rendering", s)
		}
	})
}
