package keypad_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/keypad"
)

func TestInsertImplicitOperator(t *testing.T) {
	cases := []struct {
		current, next string
		want          bool
	}{
		{"", "(", false},
		{"", "PI", false},
		{"", "sqrt(", false},
		{"2", "(", true},
		{"2", "PI", true},
		{"2", "sin(", true},
		{"2.5", "sqrt(", true},
		{"(1+2)", "(", true},
		{"(1+2)", "PI", true},
		{"PI", "PI", true},
		{"PI", "(", true},
		{"2", "3", false},
		{"2", "+", false},
		{"2", "P", false},
		{"2+", "(", false},
		{"2*", "PI", false},
		{"(", "(", false},
		{"sqrt(", "PI", false},
		{"2.", "(", false},
		{"2", "^2", false},
		{"2", "1/(", true},
	}
	for _, c := range cases {
		if got := keypad.InsertImplicitOperator(c.current, c.next); got != c.want {
			t.Errorf("InsertImplicitOperator(%q, %q) = %t, want %t", c.current, c.next, got, c.want)
		}
	}
}

// step is one action in a keypad transcript and the text it leaves.
type step struct {
	Action string
	Text   string
}

func run(k *keypad.Keypad, actions []string) []step {
	r := make([]step, 0, len(actions))
	for _, a := range actions {
		switch a {
		case "=":
			k.Equals()
		case "del":
			k.Delete()
		case "clear":
			k.Clear()
		case "square", "recip", "PI", "sqrt", "sin", "cos", "tan", "log", "exp":
			k.Func(a)
		default:
			k.Append(a)
		}
		r = append(r, step{Action: a, Text: k.Text()})
	}
	return r
}

func TestTranscripts(t *testing.T) {
	cases := []struct {
		name string
		want []step
	}{
		{"implicit-paren", []step{{"2", "2"}, {"(", "2*("}, {"3", "2*(3"}, {")", "2*(3)"}, {"=", "6"}}},
		{"implicit-pi", []step{{"PI", "PI"}, {"PI", "PI*PI"}}},
		{"implicit-func", []step{{"3", "3"}, {"sqrt", "3*sqrt("}, {"16", "3*sqrt(16"}, {")", "3*sqrt(16)"}, {"=", "12"}}},
		{"paren-paren", []step{{"(", "("}, {"1", "(1"}, {")", "(1)"}, {"(", "(1)*("}, {"2", "(1)*(2"}, {")", "(1)*(2)"}, {"=", "2"}}},
		{"square", []step{{"7", "7"}, {"square", "7^2"}, {"=", "49"}}},
		{"recip", []step{{"recip", "1/("}, {"4", "1/(4"}, {")", "1/(4)"}, {"=", "0.25"}}},
		{"degrees", []step{{"sin", "sin("}, {"30", "sin(30"}, {")", "sin(30)"}, {"=", "0.49999999999999994"}}},
		{"continue", []step{{"2", "2"}, {"+", "2+"}, {"2", "2+2"}, {"=", "4"}, {"*", "4*"}, {"3", "4*3"}, {"=", "12"}}},
		{"continue-paren", []step{{"3", "3"}, {"=", "3"}, {"(", "3*("}}},
		{"error", []step{{"1", "1"}, {"/", "1/"}, {"0", "1/0"}, {"=", "Error"}}},
		{"error-replace", []step{{"1/0", "1/0"}, {"=", "Error"}, {"5", "5"}, {"=", "5"}}},
		{"error-replace-paren", []step{{"1/0", "1/0"}, {"=", "Error"}, {"(", "("}}},
		{"error-func", []step{{"1/0", "1/0"}, {"=", "Error"}, {"PI", "PI"}}},
		{"error-delete", []step{{"(", "("}, {"=", "Error"}, {"del", ""}}},
		{"error-empty", []step{{"=", "Error"}, {"clear", ""}}},
		{"delete", []step{{"12", "12"}, {"+", "12+"}, {"del", "12"}, {"del", "1"}, {"del", ""}, {"del", ""}}},
		{"clear", []step{{"12+3", "12+3"}, {"clear", ""}, {"4", "4"}}},
		{"big", []step{{"10", "10"}, {"^", "10^"}, {"21", "10^21"}, {"=", "1e+21"}, {"*", "1e+21*"}, {"10", "1e+21*10"}, {"=", "1e+22"}}},
		{"small", []step{{"1/10^8", "1/10^8"}, {"=", "1e-8"}, {"*", "1e-8*"}, {"2", "1e-8*2"}, {"=", "2e-8"}}},
		{"negative", []step{{"2-5", "2-5"}, {"=", "-3"}, {"(", "-3*("}, {"2", "-3*(2"}, {")", "-3*(2)"}, {"=", "-6"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actions := make([]string, len(c.want))
			for i, s := range c.want {
				actions[i] = s.Action
			}
			got := run(keypad.New(nil), actions)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Errorf("transcript differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEquals(t *testing.T) {
	k := keypad.New(nil)
	k.Append("2^10")
	v, err := k.Equals()
	if err != nil || v != 1024 {
		t.Errorf("want 1024, got %g, %v", v, err)
	}
	if k.Failed() {
		t.Error("failed after successful evaluation")
	}
	k.Append("/0")
	v, err = k.Equals()
	if err != calc.ErrEvaluation || v != 0 {
		t.Errorf("want error marker, got %g, %v", v, err)
	}
	if !k.Failed() || k.Text() != keypad.ErrorMarker {
		t.Errorf("want failed state, got %t %q", k.Failed(), k.Text())
	}
	k.Clear()
	if k.Failed() {
		t.Error("still failed after Clear")
	}
}

func TestDisplay(t *testing.T) {
	k := keypad.New(nil)
	if got := k.Display(); got != "0" {
		t.Errorf("empty keypad displays %q", got)
	}
	k.Append("1+")
	if got := k.Display(); got != "1+" {
		t.Errorf("want 1+, got %q", got)
	}
	k.Equals()
	if got := k.Display(); got != keypad.ErrorMarker {
		t.Errorf("want error marker, got %q", got)
	}
}

func TestPress(t *testing.T) {
	k := keypad.New(nil)
	keys := []string{"1", "2", "+", "3", ".", "5", "Backspace", "Backspace", "*", "(", "4", ")", "Enter"}
	for _, key := range keys {
		if !k.Press(key) {
			t.Fatalf("key %q not recognized", key)
		}
	}
	if got := k.Text(); got != "24" {
		t.Errorf("want 24, got %q", got)
	}
	for _, key := range []string{"Escape", "c", "C"} {
		k.Append("9")
		if !k.Press(key) || k.Text() != "" {
			t.Errorf("key %q did not clear: %q", key, k.Text())
		}
	}
	k.Append("7")
	for _, key := range []string{"a", "x", "Tab", "^", "12", "", "Shift", "P"} {
		if k.Press(key) {
			t.Errorf("key %q recognized", key)
		}
	}
	if got := k.Text(); got != "7" {
		t.Errorf("unrecognized keys changed text to %q", got)
	}
	if !k.Press("=") || k.Text() != "7" {
		t.Errorf("= gave %q", k.Text())
	}
}

func TestFunc(t *testing.T) {
	cases := []struct {
		name, want string
	}{
		{"sqrt", "sqrt("},
		{"sin", "sin("},
		{"cos", "cos("},
		{"tan", "tan("},
		{"log", "log("},
		{"exp", "exp("},
		{"square", "^2"},
		{"recip", "1/("},
		{"PI", "PI"},
	}
	for _, c := range cases {
		k := keypad.New(nil)
		if err := k.Func(c.name); err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if k.Text() != c.want {
			t.Errorf("%s: want %q, got %q", c.name, c.want, k.Text())
		}
	}
	k := keypad.New(nil)
	for _, name := range []string{"", "pi", "asin", "ln", "sqrt("} {
		if err := k.Func(name); !errors.Is(err, keypad.ErrUnknownFunc) {
			t.Errorf("%q: want ErrUnknownFunc, got %v", name, err)
		}
	}
	if k.Text() != "" {
		t.Errorf("unknown functions changed text to %q", k.Text())
	}
}

type fixed struct {
	v   float64
	err error
	got []string
}

func (f *fixed) Evaluate(expr string) (float64, error) {
	f.got = append(f.got, expr)
	return f.v, f.err
}

func TestEvaluator(t *testing.T) {
	ev := &fixed{v: 42}
	k := keypad.New(ev)
	k.Append("anything")
	if v, err := k.Equals(); v != 42 || err != nil {
		t.Errorf("want 42, got %g, %v", v, err)
	}
	if k.Text() != "42" {
		t.Errorf("want 42, got %q", k.Text())
	}
	ev.err = errors.New("no")
	if _, err := k.Equals(); err != ev.err {
		t.Errorf("want evaluator's error, got %v", err)
	}
	if diff := cmp.Diff([]string{"anything", "42"}, ev.got); diff != "" {
		t.Errorf("evaluated expressions differ (-want +got):\n%s", diff)
	}

	rad := keypad.New(calc.New(calc.WithAngles(calc.Radians)))
	rad.Append("cos(PI)")
	if v, err := rad.Equals(); v != -1 || err != nil {
		t.Errorf("cos(PI) in radians gave %g, %v", v, err)
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		v    float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-3, "-3"},
		{0.25, "0.25"},
		{0.30000000000000004, "0.30000000000000004"},
		{1e20, "100000000000000000000"},
		{1e21, "1e+21"},
		{1e-6, "0.000001"},
		{-1e-6, "-0.000001"},
		{1e-7, "1e-7"},
		{1.5e-7, "1.5e-7"},
		{1e-8, "1e-8"},
		{1e-10, "1e-10"},
		{1e100, "1e+100"},
		{-1e22, "-1e+22"},
		{-2.5e-10, "-2.5e-10"},
		{math.Pi, "3.141592653589793"},
		{math.MaxFloat64, "1.7976931348623157e+308"},
		{5e-324, "5e-324"},
	}
	for _, c := range cases {
		if got := keypad.Format(c.v); got != c.want {
			t.Errorf("Format(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	vs := []float64{
		1, -1, 0.1, 1.0 / 3, -2.0 / 3, math.Pi, math.E, 1e21, 1e-6, 1e-7, 1e-8, 1.5e-7,
		123456789.123456789, math.MaxFloat64, math.SmallestNonzeroFloat64, -math.MaxFloat64,
	}
	for _, v := range vs {
		s := keypad.Format(v)
		r, err := calc.Evaluate(s)
		if err != nil {
			t.Errorf("%v formatted as %q: %v", v, s, err)
			continue
		}
		if r != v {
			t.Errorf("%v formatted as %q evaluates to %v", v, s, r)
		}
	}
}
