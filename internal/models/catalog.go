package models

import "fmt"

// Format identifies the on-disk layout of a vector file.
type Format int

const (
	// FormatGloVeText is one "token v1 ... vn" row per line, no header.
	FormatGloVeText Format = iota
	// FormatWord2VecText starts with a "vocab dim" header line followed
	// by the same row layout as GloVe text.
	FormatWord2VecText
	// FormatWord2VecBinary starts with a "vocab dim" header line; each
	// entry is the token, a space, then dim little-endian float32 values.
	FormatWord2VecBinary
)

type archiveKind int

const (
	archiveGzip archiveKind = iota
	archiveZip
)

// catalogEntry describes where a published model lives and how to read it.
type catalogEntry struct {
	Name      string
	URL       string
	Kind      archiveKind
	Member    string // file to pull out of a zip archive
	File      string // extracted vector file name under the cache dir
	Format    Format
	Dimension int
	Size      string // rough download size, shown in listings
}

var catalog = buildCatalog()

func buildCatalog() []catalogEntry {
	entries := []catalogEntry{{
		Name:      "word2vec-google-news-300",
		URL:       "https://s3.amazonaws.com/dl4j-distribution/GoogleNews-vectors-negative300.bin.gz",
		Kind:      archiveGzip,
		File:      "GoogleNews-vectors-negative300.bin",
		Format:    FormatWord2VecBinary,
		Dimension: 300,
		Size:      "1.6 GB",
	}}
	for _, d := range variantDims[GloVe] {
		entries = append(entries, catalogEntry{
			Name:      fmt.Sprintf("glove-wiki-gigaword-%d", d),
			URL:       "https://nlp.stanford.edu/data/glove.6B.zip",
			Kind:      archiveZip,
			Member:    fmt.Sprintf("glove.6B.%dd.txt", d),
			File:      fmt.Sprintf("glove.6B.%dd.txt", d),
			Format:    FormatGloVeText,
			Dimension: d,
			Size:      "822 MB",
		})
	}
	for _, d := range variantDims[GloVeTwitter] {
		entries = append(entries, catalogEntry{
			Name:      fmt.Sprintf("glove-twitter-%d", d),
			URL:       "https://nlp.stanford.edu/data/glove.twitter.27B.zip",
			Kind:      archiveZip,
			Member:    fmt.Sprintf("glove.twitter.27B.%dd.txt", d),
			File:      fmt.Sprintf("glove.twitter.27B.%dd.txt", d),
			Format:    FormatGloVeText,
			Dimension: d,
			Size:      "1.4 GB",
		})
	}
	entries = append(entries, catalogEntry{
		Name:      "fasttext-wiki-news-subwords-300",
		URL:       "https://dl.fbaipublicfiles.com/fasttext/vectors-english/wiki-news-300d-1M.vec.zip",
		Kind:      archiveZip,
		Member:    "wiki-news-300d-1M.vec",
		File:      "wiki-news-300d-1M.vec",
		Format:    FormatWord2VecText,
		Dimension: 300,
		Size:      "681 MB",
	})
	return entries
}

// resolve maps a validated non-custom model to its catalog entry.
func resolve(m Model) (catalogEntry, error) {
	name := m.Name()
	for _, e := range catalog {
		if e.Name == name {
			return e, nil
		}
	}
	return catalogEntry{}, fmt.Errorf("models: no catalog entry for %q", name)
}

// Listing describes one downloadable model for display.
type Listing struct {
	Name      string
	Dimension int
	Size      string
}

// Catalog returns the downloadable models in a stable listing order.
func Catalog() []Listing {
	out := make([]Listing, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, Listing{Name: e.Name, Dimension: e.Dimension, Size: e.Size})
	}
	return out
}
