package domain

import "strings"

// NormalizeToken maps a raw token to its canonical vocabulary form.
// The same normalization is applied when a store is built and when it
// is queried, so lookups are case-insensitive.
func NormalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}

// Query is a single analogy question: A is to B as C is to ?.
// Expected optionally names the answer the suite scores against;
// Category groups related questions in reports.
type Query struct {
	A        string
	B        string
	C        string
	Expected string
	Category string
}

// Neighbor is one vocabulary token with its cosine similarity to a query
// vector. Scores lie in [-1, 1], higher is more similar.
type Neighbor struct {
	Token string
	Score float64
}

// Result is the outcome of evaluating one analogy query.
// Rank is the 1-based position of the expected token among the
// neighbors, or 0 when the expected token did not appear.
type Result struct {
	Query     Query
	Neighbors []Neighbor
	Matched   bool
	Rank      int
}

// SearchOptions controls a nearest-neighbor search.
// TopK bounds the number of results (a non-positive value selects the
// store default). Exclude lists tokens to drop from the candidates
// before ranking. Limit restricts scoring to the first Limit vocabulary
// entries in insertion order; zero means the whole vocabulary.
type SearchOptions struct {
	TopK    int
	Exclude []string
	Limit   int
}

// VectorStore is read-only access to a loaded embedding vocabulary.
type VectorStore interface {
	Dimension() int
	Len() int
	Contains(token string) bool
	Lookup(token string) ([]float32, error)
	NearestNeighbors(query []float32, opts SearchOptions) ([]Neighbor, error)
}
