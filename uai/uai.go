// Package uai reads the UAI model and evidence file formats: whitespace
// separated tokens, '#' starts a line comment, producing typed Variables
// and Factors for the inference engine. This is a thin external
// collaborator (out of scope per spec.md §1) — it returns already-typed
// data and does no inference itself.
package uai

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pgmgo/pgmgo/factor"
)

// Kind distinguishes the two header tokens a model file may start with.
type Kind string

const (
	Bayes  Kind = "BAYES"
	Markov Kind = "MARKOV"
)

// Model is the engine boundary load_model returns: typed variables and
// factors plus which kind of network they came from.
type Model struct {
	Kind    Kind
	Reg     *factor.Registry
	Factors []*factor.Factor
}

// tokenizer walks whitespace-separated tokens across lines, stripping
// '#' comments, and remembers the 1-based line/token position of the last
// token read so errors can name exactly where they occurred.
type tokenizer struct {
	tokens []string
	lines  []int
	pos    int
}

func newTokenizer(r io.Reader) (*tokenizer, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	t := &tokenizer{}
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}
		for _, tok := range strings.Fields(line) {
			t.tokens = append(t.tokens, tok)
			t.lines = append(t.lines, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("uai: reading input: %w", err)
	}
	return t, nil
}

func (t *tokenizer) next(what string) (string, error) {
	if t.pos >= len(t.tokens) {
		return "", fmt.Errorf("uai: unexpected end of input while reading %s (after token %d)", what, t.pos)
	}
	tok := t.tokens[t.pos]
	t.pos++
	return tok, nil
}

func (t *tokenizer) nextInt(what string) (int, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		line := t.lines[t.pos-1]
		return 0, fmt.Errorf("uai: line %d: expected integer for %s, got %q", line, what, tok)
	}
	return n, nil
}

func (t *tokenizer) nextFloat(what string) (float64, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		line := t.lines[t.pos-1]
		return 0, fmt.Errorf("uai: line %d: expected number for %s, got %q", line, what, tok)
	}
	return f, nil
}

// LoadModel parses the UAI model format documented in spec.md §6: header
// token BAYES or MARKOV; N; cardinalities; M; per-factor scope lists
// (width then variable ids, child first for BAYES); per-factor value
// tables (size then values) in the same order.
func LoadModel(r io.Reader) (*Model, error) {
	t, err := newTokenizer(r)
	if err != nil {
		return nil, err
	}

	header, err := t.next("header")
	if err != nil {
		return nil, err
	}
	kind := Kind(header)
	if kind != Bayes && kind != Markov {
		return nil, fmt.Errorf("uai: unrecognized header %q, want BAYES or MARKOV", header)
	}

	n, err := t.nextInt("variable count")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("uai: negative variable count %d", n)
	}

	reg := factor.NewRegistry()
	for i := 0; i < n; i++ {
		card, err := t.nextInt(fmt.Sprintf("cardinality of variable %d", i))
		if err != nil {
			return nil, err
		}
		if card < 1 {
			return nil, fmt.Errorf("uai: variable %d has non-positive cardinality %d", i, card)
		}
		if _, err := reg.Add(card); err != nil {
			return nil, err
		}
	}

	m, err := t.nextInt("factor count")
	if err != nil {
		return nil, err
	}
	if m < 0 {
		return nil, fmt.Errorf("uai: negative factor count %d", m)
	}

	scopes := make([][]int, m)
	for i := 0; i < m; i++ {
		width, err := t.nextInt(fmt.Sprintf("scope width of factor %d", i))
		if err != nil {
			return nil, err
		}
		scope := make([]int, width)
		for j := 0; j < width; j++ {
			v, err := t.nextInt(fmt.Sprintf("scope variable %d of factor %d", j, i))
			if err != nil {
				return nil, err
			}
			if v < 0 || v >= n {
				return nil, fmt.Errorf("uai: factor %d references unknown variable id %d", i, v)
			}
			scope[j] = v
		}
		scopes[i] = scope
	}

	factors := make([]*factor.Factor, m)
	for i := 0; i < m; i++ {
		size, err := t.nextInt(fmt.Sprintf("table size of factor %d", i))
		if err != nil {
			return nil, err
		}
		domain := factor.NewDomain(reg, scopes[i])
		if size != domain.Size() {
			return nil, fmt.Errorf("uai: factor %d declares size %d but its scope implies %d", i, size, domain.Size())
		}
		values := make([]float64, size)
		for k := 0; k < size; k++ {
			v, err := t.nextFloat(fmt.Sprintf("value %d of factor %d", k, i))
			if err != nil {
				return nil, err
			}
			values[k] = v
		}
		f, err := factor.NewFactor(domain, values)
		if err != nil {
			return nil, fmt.Errorf("uai: factor %d: %w", i, err)
		}
		factors[i] = f
	}

	return &Model{Kind: kind, Reg: reg, Factors: factors}, nil
}

// LoadEvidence parses the evidence file format documented in spec.md §6:
// one integer n (typically 1, the number of evidence instances), then for
// each instance k followed by k (variable, value) pairs. It returns the
// last instance as the engine's evidence mapping; models using multiple
// simultaneous evidence instances are out of this engine's scope.
func LoadEvidence(r io.Reader, reg *factor.Registry) (map[int]int, error) {
	t, err := newTokenizer(r)
	if err != nil {
		return nil, err
	}

	n, err := t.nextInt("evidence instance count")
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("uai: negative evidence instance count %d", n)
	}

	evidence := make(map[int]int)
	for i := 0; i < n; i++ {
		k, err := t.nextInt(fmt.Sprintf("pair count of evidence instance %d", i))
		if err != nil {
			return nil, err
		}
		instance := make(map[int]int, k)
		for j := 0; j < k; j++ {
			v, err := t.nextInt(fmt.Sprintf("variable id %d of evidence instance %d", j, i))
			if err != nil {
				return nil, err
			}
			if v < 0 || v >= reg.Len() {
				return nil, fmt.Errorf("uai: evidence references unknown variable id %d", v)
			}
			a, err := t.nextInt(fmt.Sprintf("value %d of evidence instance %d", j, i))
			if err != nil {
				return nil, err
			}
			if a < 0 || a >= reg.Cardinality(v) {
				return nil, fmt.Errorf("uai: evidence value %d out of range for variable %d (cardinality %d)", a, v, reg.Cardinality(v))
			}
			instance[v] = a
		}
		evidence = instance
	}

	return evidence, nil
}
