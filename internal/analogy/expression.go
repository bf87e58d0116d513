package analogy

import (
	"fmt"
	"strings"

	"analogy/internal/domain"
)

// Expression is a vector-arithmetic query: the sum of the positive terms
// minus the sum of the negative terms.
type Expression struct {
	Positive []string
	Negative []string
}

// String renders the expression in canonical "a + b - c" form.
func (e Expression) String() string {
	var sb strings.Builder
	for i, tok := range e.Positive {
		if i > 0 {
			sb.WriteString(" + ")
		}
		sb.WriteString(tok)
	}
	for _, tok := range e.Negative {
		sb.WriteString(" - ")
		sb.WriteString(tok)
	}
	return sb.String()
}

// ParseExpression parses free text like "king - man + woman" into an
// Expression. Terms without a preceding operator are positive, so
// "king woman - man" also works. A hyphen always acts as an operator,
// which rules out hyphenated vocabulary entries in this form.
func ParseExpression(input string) (Expression, error) {
	spaced := strings.NewReplacer("+", " + ", "-", " - ").Replace(input)
	fields := strings.Fields(spaced)
	if len(fields) == 0 {
		return Expression{}, fmt.Errorf("analogy: empty expression")
	}

	var expr Expression
	negative := false
	pending := false
	for _, f := range fields {
		switch f {
		case "+", "-":
			if pending {
				return Expression{}, fmt.Errorf("analogy: consecutive operators in %q", input)
			}
			negative = f == "-"
			pending = true
		default:
			if negative {
				expr.Negative = append(expr.Negative, f)
			} else {
				expr.Positive = append(expr.Positive, f)
			}
			negative = false
			pending = false
		}
	}
	if pending {
		return Expression{}, fmt.Errorf("analogy: dangling operator in %q", input)
	}
	return expr, nil
}

// ParseAnalogy parses the proportion form "a:b::c", optionally carrying
// an expected answer as "a:b::c:d". Whitespace around terms is ignored.
func ParseAnalogy(input string) (domain.Query, error) {
	halves := strings.SplitN(input, "::", 2)
	if len(halves) != 2 {
		return domain.Query{}, fmt.Errorf("analogy: %q is not in a:b::c form", input)
	}
	left := strings.Split(halves[0], ":")
	right := strings.Split(halves[1], ":")
	if len(left) != 2 || len(right) < 1 || len(right) > 2 {
		return domain.Query{}, fmt.Errorf("analogy: %q is not in a:b::c form", input)
	}

	q := domain.Query{
		A: strings.TrimSpace(left[0]),
		B: strings.TrimSpace(left[1]),
		C: strings.TrimSpace(right[0]),
	}
	if len(right) == 2 {
		q.Expected = strings.TrimSpace(right[1])
	}
	if q.A == "" || q.B == "" || q.C == "" {
		return domain.Query{}, fmt.Errorf("analogy: %q has an empty term", input)
	}
	return q, nil
}
