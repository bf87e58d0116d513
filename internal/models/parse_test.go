package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type binEntry struct {
	token  string
	vector []float32
}

func word2vecBinary(t *testing.T, dim int, entries []binEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(entries), dim)
	for _, e := range entries {
		buf.WriteString(e.token)
		buf.WriteByte(' ')
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, e.vector))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func TestParseGloVeText(t *testing.T) {
	input := strings.Join([]string{
		"the 0.1 0.2 0.3",
		"of 0.4 0.5 0.6",
		"and 0.7 0.8 0.9",
	}, "\n")

	st, stats, err := ParseVectors(strings.NewReader(input), FormatGloVeText, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Dimension(), "dimension comes from the first row")
	assert.Equal(t, 3, st.Len())
	assert.Equal(t, 3, stats.Rows)

	v, err := st.Lookup("of")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.4, 0.5, 0.6}, v, 1e-6)

	var order []string
	st.Each(func(token string, vector []float32) bool {
		order = append(order, token)
		return true
	})
	assert.Equal(t, []string{"the", "of", "and"}, order)
}

func TestParseGloVeTextDimensionMismatch(t *testing.T) {
	_, _, err := ParseVectors(strings.NewReader("the 0.1 0.2 0.3\n"), FormatGloVeText, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestParseGloVeTextBadComponent(t *testing.T) {
	input := "the 0.1 0.2\nof 0.3 oops\n"
	_, _, err := ParseVectors(strings.NewReader(input), FormatGloVeText, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseGloVeTextSkipsZeroVectors(t *testing.T) {
	input := "the 0.1 0.2\nnull 0 0\nof 0.3 0.4\n"
	st, stats, err := ParseVectors(strings.NewReader(input), FormatGloVeText, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 1, stats.SkippedZero)
	assert.False(t, st.Contains("null"))
}

func TestParseGloVeTextCountsDuplicates(t *testing.T) {
	input := "the 0.1 0.2\nThe 0.3 0.4\n"
	st, stats, err := ParseVectors(strings.NewReader(input), FormatGloVeText, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, 1, stats.Duplicates)

	v, err := st.Lookup("the")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float32{0.1, 0.2}, v, 1e-6, "first occurrence wins")
}

func TestParseGloVeTextEmpty(t *testing.T) {
	_, _, err := ParseVectors(strings.NewReader(""), FormatGloVeText, 0)
	assert.Error(t, err)
}

func TestParseWord2VecText(t *testing.T) {
	input := "2 3\nking 1 0 1\nqueen 0 1 1\n"
	st, stats, err := ParseVectors(strings.NewReader(input), FormatWord2VecText, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 3, st.Dimension())
	assert.Equal(t, 2, stats.Rows)
}

func TestParseWord2VecTextHeaderMismatches(t *testing.T) {
	t.Run("entry count", func(t *testing.T) {
		_, _, err := ParseVectors(strings.NewReader("3 2\na 1 0\nb 0 1\n"), FormatWord2VecText, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "declares 3 entries")
	})

	t.Run("dimension", func(t *testing.T) {
		_, _, err := ParseVectors(strings.NewReader("1 3\na 1 0 0\n"), FormatWord2VecText, 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "declares 3 dimensions")
	})

	t.Run("garbage header", func(t *testing.T) {
		_, _, err := ParseVectors(strings.NewReader("not a header\n"), FormatWord2VecText, 0)
		assert.Error(t, err)
	})
}

func TestParseWord2VecBinary(t *testing.T) {
	data := word2vecBinary(t, 3, []binEntry{
		{"king", []float32{1, 0, 1}},
		{"queen", []float32{0, 1, 1}},
	})

	st, stats, err := ParseVectors(bytes.NewReader(data), FormatWord2VecBinary, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Len())
	assert.Equal(t, 2, stats.Rows)

	v, err := st.Lookup("queen")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 1}, v)
}

func TestParseWord2VecBinaryTruncated(t *testing.T) {
	data := word2vecBinary(t, 3, []binEntry{
		{"king", []float32{1, 0, 1}},
		{"queen", []float32{0, 1, 1}},
	})

	_, _, err := ParseVectors(bytes.NewReader(data[:len(data)-6]), FormatWord2VecBinary, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 2")
}

func TestParseWord2VecBinarySkipsZeroVectors(t *testing.T) {
	data := word2vecBinary(t, 2, []binEntry{
		{"null", []float32{0, 0}},
		{"king", []float32{1, 0}},
	})

	st, stats, err := ParseVectors(bytes.NewReader(data), FormatWord2VecBinary, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, 1, stats.SkippedZero)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatWord2VecText, DetectFormat("400000 300"))
	assert.Equal(t, FormatGloVeText, DetectFormat("the 0.1 0.2 0.3"))
	assert.Equal(t, FormatGloVeText, DetectFormat("the 0.5"))
}
