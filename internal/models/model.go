package models

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Variant names a family of pre-trained embeddings.
type Variant string

const (
	Word2Vec     Variant = "word2vec"
	GloVe        Variant = "glove"
	GloVeTwitter Variant = "glove-twitter"
	FastText     Variant = "fasttext"
	Custom       Variant = "custom"
)

// Model identifies an embedding model to load. Dimension selects among a
// variant's published sizes; zero picks the variant default. Path and
// Binary apply to the Custom variant only, where Dimension zero means
// take it from the file.
type Model struct {
	Variant   Variant
	Dimension int
	Path      string
	Binary    bool
}

var (
	variantDims = map[Variant][]int{
		Word2Vec:     {300},
		GloVe:        {50, 100, 200, 300},
		GloVeTwitter: {25, 50, 100, 200},
		FastText:     {300},
	}
	variantDefaultDim = map[Variant]int{
		Word2Vec:     300,
		GloVe:        100,
		GloVeTwitter: 100,
		FastText:     300,
	}
)

// WithDefaults fills the variant and dimension defaults. A zero-valued
// Model resolves to the default word2vec Google News embeddings.
func (m Model) WithDefaults() Model {
	if m.Variant == "" {
		m.Variant = Word2Vec
	}
	if m.Dimension == 0 && m.Variant != Custom {
		m.Dimension = variantDefaultDim[m.Variant]
	}
	return m
}

// Validate checks that the model names a published variant size, or for
// Custom that a file path is set.
func (m Model) Validate() error {
	if m.Variant == Custom {
		if m.Path == "" {
			return fmt.Errorf("models: custom model needs a file path")
		}
		return nil
	}
	dims, ok := variantDims[m.Variant]
	if !ok {
		return fmt.Errorf("models: unknown variant %q", m.Variant)
	}
	for _, d := range dims {
		if d == m.Dimension {
			return nil
		}
	}
	return fmt.Errorf("models: %s has no %d-dimensional variant (available: %v)", m.Variant, m.Dimension, dims)
}

// Name returns the canonical model name used for caching and display.
func (m Model) Name() string {
	switch m.Variant {
	case Word2Vec:
		return "word2vec-google-news-300"
	case GloVe:
		return fmt.Sprintf("glove-wiki-gigaword-%d", m.Dimension)
	case GloVeTwitter:
		return fmt.Sprintf("glove-twitter-%d", m.Dimension)
	case FastText:
		return "fasttext-wiki-news-subwords-300"
	case Custom:
		return "custom:" + filepath.Base(m.Path)
	}
	return string(m.Variant)
}

// ParseVariant maps a user-facing model name to a Variant. The empty
// string selects the default variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "word2vec", "word2vec-google-news", "google-news":
		return Word2Vec, nil
	case "glove", "glove-wiki", "glove-wiki-gigaword":
		return GloVe, nil
	case "glove-twitter", "twitter":
		return GloVeTwitter, nil
	case "fasttext", "fasttext-wiki-news":
		return FastText, nil
	case "custom":
		return Custom, nil
	}
	return "", fmt.Errorf("models: unknown model %q", s)
}
