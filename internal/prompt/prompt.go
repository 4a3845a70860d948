// Package prompt asks typed questions on a line-oriented terminal. Every
// question loops until it gets a valid answer; end of input is an error so
// a closed stdin never spins.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ErrNoInput is returned when input ends before a valid answer arrives.
var ErrNoInput = errors.New("input closed before an answer was given")

// Prompter reads answers from in and writes questions to out.
type Prompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{sc: bufio.NewScanner(in), out: out}
}

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.sc.Scan() {
		fmt.Fprintln(p.out)
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", ErrNoInput
	}
	return strings.TrimSpace(p.sc.Text()), nil
}

// Text asks question and returns the trimmed answer, which may be empty.
func (p *Prompter) Text(question string) (string, error) {
	return p.ask(question + ": ")
}

// YesNo asks question and accepts y/yes/n/no in any case.
func (p *Prompter) YesNo(question string) (bool, error) {
	for {
		resp, err := p.ask(question + " (y/n): ")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(resp) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer with 'y' or 'n'.")
	}
}

// Choice asks until the answer is one of choices (case-insensitive) and
// returns the matching choice as given.
func (p *Prompter) Choice(question string, choices []string) (string, error) {
	list := strings.Join(choices, "/")
	for {
		resp, err := p.ask(fmt.Sprintf("%s (%s): ", question, list))
		if err != nil {
			return "", err
		}
		for _, c := range choices {
			if strings.EqualFold(resp, c) {
				return c, nil
			}
		}
		fmt.Fprintf(p.out, "Please choose one of: %s.\n", list)
	}
}

// Input asks question and returns the answer, or def when it is blank.
func (p *Prompter) Input(question, def string) (string, error) {
	resp, err := p.ask(fmt.Sprintf("%s [default: %s]: ", question, def))
	if err != nil {
		return "", err
	}
	if resp == "" {
		return def, nil
	}
	return resp, nil
}

// Int asks for an integer in [min, max], offering def; invalid answers are
// explained and asked again.
func (p *Prompter) Int(question string, def, min, max int) (int, error) {
	for {
		s, err := p.Input(question, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err == nil && n >= min && n <= max {
			return n, nil
		}
		fmt.Fprintf(p.out, "Please enter a whole number between %d and %d.\n", min, max)
	}
}

// Float asks for a finite number accepted by valid (nil accepts any),
// offering def.
func (p *Prompter) Float(question string, def float64, valid func(float64) error) (float64, error) {
	for {
		s, err := p.Input(question, strconv.FormatFloat(def, 'f', -1, 64))
		if err != nil {
			return 0, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			fmt.Fprintf(p.out, "%q is not a number.\n", s)
			continue
		}
		if valid != nil {
			if err := valid(f); err != nil {
				fmt.Fprintf(p.out, "%v.\n", err)
				continue
			}
		}
		return f, nil
	}
}
