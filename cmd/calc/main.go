package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"github.com/zephyrtronium/calc"
	"github.com/zephyrtronium/calc/keypad"
)

func main() {
	log.SetFlags(0)
	var (
		inname, verb  string
		rad, echo, vb bool
		prec          int
	)
	flag.StringVar(&inname, "in", "", "input file, one expression per line (default stdin if no args given)")
	flag.StringVar(&verb, "fmt", "%g", "result formatting string with -p")
	flag.BoolVar(&rad, "rad", false, "take trigonometric arguments in radians instead of degrees")
	flag.IntVar(&prec, "p", 0, "evaluate arguments and input lines with this many bits of precision (0 for float64)")
	flag.BoolVar(&echo, "echo", false, "print parse trees")
	flag.BoolVar(&vb, "v", false, "log why evaluations fail")
	flag.Parse()
	if err := checkFlags(inname, prec, flag.NArg()); err != nil {
		log.Fatal(err)
	}
	if vb {
		calc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	opts := []calc.EvaluatorOption{calc.WithPrec(uint(prec))}
	if rad {
		opts = append(opts, calc.WithAngles(calc.Radians))
	}
	ev := calc.New(opts...)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	r := results{w: out, ev: ev, verb: verb + "\n", precise: prec > 0, echo: echo}

	if flag.NArg() > 0 {
		for _, arg := range flag.Args() {
			r.print(arg)
		}
		return
	}
	if inname == "" && isatty.IsTerminal(os.Stdin.Fd()) {
		out.Flush()
		repl(os.Stdin, os.Stdout, keypad.New(ev))
		return
	}
	f, err := infile(inname)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := r.lines(f); err != nil {
		// log.Fatal skips deferred calls.
		out.Flush()
		log.Fatal(err)
	}
}

// checkFlags rejects inconsistent command lines.
func checkFlags(inname string, prec, nargs int) error {
	if prec < 0 {
		return fmt.Errorf("precision (%d) must not be negative", prec)
	}
	if inname != "" && nargs > 0 {
		return errors.New("cannot use -in with expression arguments")
	}
	return nil
}

// results prints the results of whole expressions.
type results struct {
	w       io.Writer
	ev      *calc.Evaluator
	verb    string
	precise bool
	echo    bool
}

func (r *results) print(expr string) {
	if r.echo {
		if a, err := r.ev.Parse(expr); err == nil {
			fmt.Fprintf(r.w, "%v : ", a)
		}
	}
	if r.precise {
		v, err := r.ev.EvaluatePrecise(expr)
		if err != nil {
			fmt.Fprintln(r.w, keypad.ErrorMarker)
			return
		}
		fmt.Fprintf(r.w, r.verb, v)
		return
	}
	v, err := r.ev.Evaluate(expr)
	if err != nil {
		fmt.Fprintln(r.w, keypad.ErrorMarker)
		return
	}
	fmt.Fprintln(r.w, keypad.Format(v))
}

// lines prints the result of each non-blank line of in. The error, if any, is
// from reading in; results of lines read before it are already printed.
func (r *results) lines(in io.Reader) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		r.print(sc.Text())
	}
	return sc.Err()
}

// repl runs an interactive session. Each line is typed into the keypad and
// evaluated. A line that starts with a binary operator continues from the
// previous result; any other line starts a new expression.
func repl(in io.Reader, out io.Writer, kp *keypad.Keypad) {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			if strings.IndexByte("+-*/^", line[0]) < 0 {
				kp.Clear()
			}
			for _, k := range keys(line) {
				kp.Append(k)
			}
			kp.Equals()
			fmt.Fprintln(out, kp.Display())
		}
		fmt.Fprint(out, "> ")
	}
	fmt.Fprintln(out)
}

// keys splits a line into the units a keypad button would append: a function
// name with its open parenthesis, PI, or a single character.
func keys(line string) []string {
	var k []string
	for line != "" {
		n := strings.IndexFunc(line, func(r rune) bool { return !unicode.IsLetter(r) })
		switch {
		case n == 0:
			_, sz := utf8.DecodeRuneInString(line)
			k = append(k, line[:sz])
			line = line[sz:]
			continue
		case n < 0:
			n = len(line)
		case line[n] == '(':
			n++
		}
		k = append(k, line[:n])
		line = line[n:]
	}
	return k
}

func infile(inname string) (*os.File, error) {
	if inname == "" || inname == "-" {
		return os.Stdin, nil
	}
	return os.Open(inname)
}
