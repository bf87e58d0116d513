package vectorstore

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/viant/vec/search"
	"golang.org/x/sync/errgroup"

	"analogy/internal/domain"
)

// defaultTopK bounds a search when the caller does not set one.
const defaultTopK = 10

// parallelThreshold is the candidate count above which scoring is sharded
// across goroutines. Published vocabularies run to hundreds of thousands
// of entries; small test stores stay on the serial path.
const parallelThreshold = 50_000

// Store is an immutable in-memory vector store over a fixed vocabulary.
// Entries keep their insertion order, which for published embedding files
// is descending corpus frequency; searches rank ties by that order, so
// results are deterministic for a given store.
type Store struct {
	dimension int
	tokens    []string
	vectors   [][]float32
	mags      []float32
	index     map[string]int
}

var _ domain.VectorStore = (*Store)(nil)

// Builder accumulates token/vector pairs and freezes them into a Store.
// Tokens are normalized on Add; when a normalized token repeats, the first
// occurrence wins and later ones are counted as duplicates.
type Builder struct {
	dimension  int
	tokens     []string
	vectors    [][]float32
	mags       []float32
	index      map[string]int
	duplicates int
}

// NewBuilder creates a builder for vectors of the given dimension.
func NewBuilder(dimension int) (*Builder, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vectorstore: invalid dimension %d", dimension)
	}
	return &Builder{
		dimension: dimension,
		index:     make(map[string]int),
	}, nil
}

// Add records one token with its embedding. The builder retains the
// vector, so callers must not reuse the slice. Zero-magnitude vectors are
// rejected with domain.ErrInvalidVector since cosine similarity is
// undefined for them.
func (b *Builder) Add(token string, vector []float32) error {
	norm := domain.NormalizeToken(token)
	if norm == "" {
		return fmt.Errorf("vectorstore: empty token")
	}
	if len(vector) != b.dimension {
		return fmt.Errorf("vectorstore: vector for %q has dimension %d, want %d", norm, len(vector), b.dimension)
	}
	if _, ok := b.index[norm]; ok {
		b.duplicates++
		return nil
	}
	mag := search.Float32s(vector).Magnitude()
	if mag == 0 {
		return fmt.Errorf("vectorstore: token %q: %w", norm, domain.ErrInvalidVector)
	}
	b.index[norm] = len(b.tokens)
	b.tokens = append(b.tokens, norm)
	b.vectors = append(b.vectors, vector)
	b.mags = append(b.mags, mag)
	return nil
}

// Len reports how many entries the builder holds so far.
func (b *Builder) Len() int { return len(b.tokens) }

// Duplicates reports how many repeated tokens were skipped.
func (b *Builder) Duplicates() int { return b.duplicates }

// Build freezes the accumulated entries into a Store. The builder must
// not be used afterwards.
func (b *Builder) Build() *Store {
	return &Store{
		dimension: b.dimension,
		tokens:    b.tokens,
		vectors:   b.vectors,
		mags:      b.mags,
		index:     b.index,
	}
}

// Dimension returns the vector dimensionality of the store.
func (s *Store) Dimension() int { return s.dimension }

// Len returns the vocabulary size.
func (s *Store) Len() int { return len(s.tokens) }

// Contains reports whether the normalized token is in the vocabulary.
func (s *Store) Contains(token string) bool {
	_, ok := s.index[domain.NormalizeToken(token)]
	return ok
}

// Lookup returns a copy of the stored vector for the token, or
// domain.ErrNotFound when the token is absent.
func (s *Store) Lookup(token string) ([]float32, error) {
	norm := domain.NormalizeToken(token)
	i, ok := s.index[norm]
	if !ok {
		return nil, fmt.Errorf("vectorstore: %q: %w", norm, domain.ErrNotFound)
	}
	out := make([]float32, s.dimension)
	copy(out, s.vectors[i])
	return out, nil
}

// Each calls fn for every entry in insertion order until fn returns false.
func (s *Store) Each(fn func(token string, vector []float32) bool) {
	for i, tok := range s.tokens {
		if !fn(tok, s.vectors[i]) {
			return
		}
	}
}

// NearestNeighbors scores the query against the vocabulary by cosine
// similarity and returns the best matches, highest first. Tokens listed
// in opts.Exclude never appear in the result and do not consume TopK
// slots. Equal scores keep vocabulary order.
func (s *Store) NearestNeighbors(query []float32, opts domain.SearchOptions) ([]domain.Neighbor, error) {
	if len(query) != s.dimension {
		return nil, fmt.Errorf("vectorstore: query has dimension %d, want %d", len(query), s.dimension)
	}
	qmag := search.Float32s(query).Magnitude()
	if qmag == 0 {
		return nil, fmt.Errorf("vectorstore: query: %w", domain.ErrInvalidVector)
	}

	n := len(s.tokens)
	if opts.Limit > 0 && opts.Limit < n {
		n = opts.Limit
	}
	topK := opts.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	scores := make([]float64, n)
	if n >= parallelThreshold {
		s.scoreParallel(query, qmag, scores)
	} else {
		s.scoreRange(query, qmag, scores, 0, n)
	}

	idxs := make([]int, n)
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return scores[idxs[a]] > scores[idxs[b]]
	})

	excluded := make(map[string]struct{}, len(opts.Exclude))
	for _, tok := range opts.Exclude {
		excluded[domain.NormalizeToken(tok)] = struct{}{}
	}

	results := make([]domain.Neighbor, 0, topK)
	for _, i := range idxs {
		if len(results) == topK {
			break
		}
		if _, skip := excluded[s.tokens[i]]; skip {
			continue
		}
		results = append(results, domain.Neighbor{Token: s.tokens[i], Score: scores[i]})
	}
	return results, nil
}

func (s *Store) scoreRange(query []float32, qmag float32, scores []float64, lo, hi int) {
	q := search.Float32s(query)
	for i := lo; i < hi; i++ {
		dist := q.CosineDistanceWithMagnitudesNeon(s.vectors[i], qmag, s.mags[i])
		scores[i] = float64(1 - dist)
	}
}

// scoreParallel shards scoring over GOMAXPROCS goroutines. Shards write
// disjoint ranges of scores, so the result is identical to a serial pass.
func (s *Store) scoreParallel(query []float32, qmag float32, scores []float64) {
	n := len(scores)
	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			s.scoreRange(query, qmag, scores, lo, hi)
			return nil
		})
	}
	_ = g.Wait()
}
