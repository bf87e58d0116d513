package service

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"analogy/internal/analogy"
	"analogy/internal/domain"
	"analogy/internal/vectorstore"
)

func newTestService(t *testing.T, topK int) *AnalogyService {
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
	return NewAnalogyService(analogy.New(b.Build()), topK, 0)
}

func writeSuite(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.csv")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return path
}

func TestServiceTest(t *testing.T) {
	svc := newTestService(t, 5)

	res, err := svc.Test("man", "woman", "king", "queen")
	require.NoError(t, err)
	assert.True(t, res.Matched)
	assert.Equal(t, 1, res.Rank)
	assert.Equal(t, "queen", res.Neighbors[0].Token)
}

func TestServiceNeighbors(t *testing.T) {
	svc := newTestService(t, 3)

	got, err := svc.Neighbors("king")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, n := range got {
		assert.NotEqual(t, "king", n.Token)
	}
}

func TestServiceArithmetic(t *testing.T) {
	svc := newTestService(t, 3)

	got, err := svc.Arithmetic(analogy.Expression{
		Positive: []string{"king", "woman"},
		Negative: []string{"man"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "queen", got[0].Token)
}

func TestRunSuite(t *testing.T) {
	svc := newTestService(t, 5)
	path := writeSuite(t, "word1,word2,word3,word4,category\n"+
		"man,woman,king,queen,family\n"+
		"man,woman,prince,princess,family\n"+
		"ghostword,woman,king,queen,oov\n")

	summary, rows, err := svc.RunSuite(path)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// First record lands exactly on queen.
	assert.Equal(t, "queen", rows[0].Predicted)
	assert.Equal(t, 1, rows[0].Rank)
	assert.True(t, rows[0].Matched)

	// Second record: queen edges out princess, which still ranks second.
	assert.True(t, rows[1].Matched)
	assert.Equal(t, 2, rows[1].Rank)

	// Third record is skipped, not fatal.
	require.Error(t, rows[2].Err)
	var missing *domain.MissingTokenError
	require.True(t, errors.As(rows[2].Err, &missing))
	assert.Equal(t, "ghostword", missing.Token)
	assert.Empty(t, rows[2].Predicted)

	fam := summary.Category("family")
	assert.Equal(t, 2, fam.Total)
	assert.Equal(t, 2, fam.Matched)
	assert.Equal(t, 1, fam.Top1)

	oov := summary.Category("oov")
	assert.Equal(t, 1, oov.Skipped)

	overall := summary.Overall()
	assert.Equal(t, 3, overall.Total)
	assert.Equal(t, 2, overall.Matched)
	assert.Equal(t, 1, overall.Skipped)
}

func TestRunSuiteMalformed(t *testing.T) {
	svc := newTestService(t, 5)
	path := writeSuite(t, "word1,word2,word3,word4,category\nman,woman,king,family\n")

	_, _, err := svc.RunSuite(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMalformedRecord))
}

func TestRunSuiteMissingFile(t *testing.T) {
	svc := newTestService(t, 5)
	_, _, err := svc.RunSuite(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
