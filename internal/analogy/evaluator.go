package analogy

import (
	"errors"
	"fmt"

	"analogy/internal/domain"
)

// Evaluator answers analogy, similarity and vector-arithmetic queries
// over a vector store.
type Evaluator struct {
	store domain.VectorStore
}

// New creates an evaluator over the given store.
func New(store domain.VectorStore) *Evaluator {
	return &Evaluator{store: store}
}

// Evaluate answers "A is to B as C is to ?" by searching near
// v(B) - v(A) + v(C). The three input tokens are excluded from the
// candidates. When the query carries an expected answer, the result
// records whether and where it appeared.
func (e *Evaluator) Evaluate(q domain.Query, topK, searchSpace int) (domain.Result, error) {
	va, err := e.lookup(q.A)
	if err != nil {
		return domain.Result{}, err
	}
	vb, err := e.lookup(q.B)
	if err != nil {
		return domain.Result{}, err
	}
	vc, err := e.lookup(q.C)
	if err != nil {
		return domain.Result{}, err
	}

	target := make([]float32, len(va))
	for i := range target {
		target[i] = vb[i] - va[i] + vc[i]
	}

	neighbors, err := e.store.NearestNeighbors(target, domain.SearchOptions{
		TopK:    topK,
		Exclude: []string{q.A, q.B, q.C},
		Limit:   searchSpace,
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("analogy: %s:%s::%s: %w", q.A, q.B, q.C, err)
	}

	result := domain.Result{Query: q, Neighbors: neighbors}
	if q.Expected != "" {
		want := domain.NormalizeToken(q.Expected)
		for i, n := range neighbors {
			if n.Token == want {
				result.Matched = true
				result.Rank = i + 1
				break
			}
		}
	}
	return result, nil
}

// Neighbors returns the tokens most similar to the given token, the
// token itself excluded.
func (e *Evaluator) Neighbors(token string, topK, searchSpace int) ([]domain.Neighbor, error) {
	v, err := e.lookup(token)
	if err != nil {
		return nil, err
	}
	return e.store.NearestNeighbors(v, domain.SearchOptions{
		TopK:    topK,
		Exclude: []string{token},
		Limit:   searchSpace,
	})
}

// Arithmetic searches near the sum of the positive terms minus the sum
// of the negative terms. All terms are excluded from the candidates.
func (e *Evaluator) Arithmetic(expr Expression, topK, searchSpace int) ([]domain.Neighbor, error) {
	if len(expr.Positive) == 0 {
		return nil, errors.New("analogy: expression needs at least one positive term")
	}

	combined := make([]float32, e.store.Dimension())
	for _, tok := range expr.Positive {
		v, err := e.lookup(tok)
		if err != nil {
			return nil, err
		}
		for i := range combined {
			combined[i] += v[i]
		}
	}
	for _, tok := range expr.Negative {
		v, err := e.lookup(tok)
		if err != nil {
			return nil, err
		}
		for i := range combined {
			combined[i] -= v[i]
		}
	}

	exclude := make([]string, 0, len(expr.Positive)+len(expr.Negative))
	exclude = append(exclude, expr.Positive...)
	exclude = append(exclude, expr.Negative...)

	neighbors, err := e.store.NearestNeighbors(combined, domain.SearchOptions{
		TopK:    topK,
		Exclude: exclude,
		Limit:   searchSpace,
	})
	if err != nil {
		return nil, fmt.Errorf("analogy: %s: %w", expr, err)
	}
	return neighbors, nil
}

// lookup translates a store miss into a MissingTokenError naming the
// offending input token.
func (e *Evaluator) lookup(token string) ([]float32, error) {
	v, err := e.store.Lookup(token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.MissingTokenError{Token: domain.NormalizeToken(token)}
		}
		return nil, err
	}
	return v, nil
}
