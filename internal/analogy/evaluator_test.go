package analogy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analogy/internal/domain"
	"analogy/internal/vectorstore"
)

// royalStore builds a tiny vocabulary with a gender axis, a royalty axis
// and one unrelated token, so king - man + woman lands exactly on queen.
func royalStore(t *testing.T) *vectorstore.Store {
	t.Helper()
	b, err := vectorstore.NewBuilder(3)
	require.NoError(t, err)
	entries := []struct {
		token  string
		vector []float32
	}{
		{"man", []float32{1, 0, 0}},
		{"woman", []float32{0, 1, 0}},
		{"king", []float32{1, 0, 1}},
		{"queen", []float32{0, 1, 1}},
		{"prince", []float32{0.9, 0.1, 0.8}},
		{"princess", []float32{0.1, 0.9, 0.8}},
		{"apple", []float32{0.2, 0.2, -1}},
	}
	for _, e := range entries {
		require.NoError(t, b.Add(e.token, e.vector))
	}
	return b.Build()
}

func TestEvaluate(t *testing.T) {
	e := New(royalStore(t))

	res, err := e.Evaluate(domain.Query{A: "man", B: "woman", C: "king", Expected: "queen"}, 5, 0)
	require.NoError(t, err)
	require.NotEmpty(t, res.Neighbors)

	assert.Equal(t, "queen", res.Neighbors[0].Token)
	assert.InDelta(t, 1.0, res.Neighbors[0].Score, 1e-6)
	assert.True(t, res.Matched)
	assert.Equal(t, 1, res.Rank)

	for _, n := range res.Neighbors {
		assert.NotContains(t, []string{"man", "woman", "king"}, n.Token,
			"input tokens must be excluded")
	}
}

func TestEvaluateExpectedAbsent(t *testing.T) {
	e := New(royalStore(t))

	res, err := e.Evaluate(domain.Query{A: "man", B: "woman", C: "king", Expected: "apple"}, 2, 0)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, 0, res.Rank)
}

func TestEvaluateUnscored(t *testing.T) {
	e := New(royalStore(t))

	res, err := e.Evaluate(domain.Query{A: "man", B: "woman", C: "king"}, 3, 0)
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, 0, res.Rank)
	assert.Len(t, res.Neighbors, 3)
}

func TestEvaluateMissingToken(t *testing.T) {
	e := New(royalStore(t))

	for _, q := range []domain.Query{
		{A: "GhostWord", B: "woman", C: "king"},
		{A: "man", B: "ghostword", C: "king"},
		{A: "man", B: "woman", C: "ghostword"},
	} {
		_, err := e.Evaluate(q, 5, 0)
		require.Error(t, err)

		var missing *domain.MissingTokenError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "ghostword", missing.Token)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	}
}

func TestEvaluateSearchSpace(t *testing.T) {
	e := New(royalStore(t))

	// The first four vocabulary entries are man, woman, king, queen; the
	// three inputs are excluded, leaving queen as the only candidate.
	res, err := e.Evaluate(domain.Query{A: "man", B: "woman", C: "king"}, 5, 4)
	require.NoError(t, err)
	require.Len(t, res.Neighbors, 1)
	assert.Equal(t, "queen", res.Neighbors[0].Token)
}

func TestNeighbors(t *testing.T) {
	e := New(royalStore(t))

	got, err := e.Neighbors("king", 3, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "prince", got[0].Token)
	for _, n := range got {
		assert.NotEqual(t, "king", n.Token, "the token itself must be excluded")
	}
}

func TestNeighborsMissingToken(t *testing.T) {
	e := New(royalStore(t))

	_, err := e.Neighbors("ghostword", 3, 0)
	var missing *domain.MissingTokenError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ghostword", missing.Token)
}

func TestArithmetic(t *testing.T) {
	e := New(royalStore(t))

	got, err := e.Arithmetic(Expression{
		Positive: []string{"king", "woman"},
		Negative: []string{"man"},
	}, 3, 0)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	assert.Equal(t, "queen", got[0].Token)
	for _, n := range got {
		assert.NotContains(t, []string{"king", "woman", "man"}, n.Token)
	}
}

func TestArithmeticNeedsPositive(t *testing.T) {
	e := New(royalStore(t))

	_, err := e.Arithmetic(Expression{Negative: []string{"man"}}, 3, 0)
	assert.Error(t, err)
}

func TestArithmeticMissingToken(t *testing.T) {
	e := New(royalStore(t))

	_, err := e.Arithmetic(Expression{Positive: []string{"king", "ghostword"}}, 3, 0)
	var missing *domain.MissingTokenError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "ghostword", missing.Token)
}
