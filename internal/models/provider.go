package models

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"analogy/internal/domain"
	"analogy/internal/models/cache"
	"analogy/internal/vectorstore"
)

// Options configures a Provider.
type Options struct {
	// CacheDir holds downloaded archives, extracted vector files and the
	// parsed-vector database. Empty means "data/models".
	CacheDir string
	// Mirror optionally overrides the catalog hosts; archives are fetched
	// from "<mirror>/<archive name>" instead.
	Mirror string
	// DisableCache skips the parsed-vector database entirely.
	DisableCache bool
	Logger       *slog.Logger
	HTTPClient   *http.Client
}

// Provider resolves model identifiers to loaded vector stores. Published
// models resolve through the parsed-vector cache, then the extracted
// file on disk, then the network.
type Provider struct {
	cacheDir string
	mirror   string
	client   *http.Client
	cache    *cache.Cache
	log      *slog.Logger
}

// NewProvider creates a provider rooted at the cache directory. A broken
// parsed-vector cache degrades to uncached operation rather than failing.
func NewProvider(opts Options) (*Provider, error) {
	dir := opts.CacheDir
	if dir == "" {
		dir = filepath.Join("data", "models")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("models: create cache dir: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	p := &Provider{
		cacheDir: dir,
		mirror:   opts.Mirror,
		client:   client,
		log:      logger,
	}
	if !opts.DisableCache {
		c, err := cache.Open(filepath.Join(dir, "vectors.db"))
		if err != nil {
			logger.Warn("parsed-vector cache unavailable", "error", err)
		} else {
			p.cache = c
		}
	}
	return p, nil
}

// Close releases the parsed-vector cache.
func (p *Provider) Close() error {
	if p.cache == nil {
		return nil
	}
	return p.cache.Close()
}

// Load resolves the model to a vector store. Failures to produce a
// usable model wrap domain.ErrModelUnavailable.
func (p *Provider) Load(ctx context.Context, m Model) (*vectorstore.Store, error) {
	m = m.WithDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if m.Variant == Custom {
		return p.loadCustom(m)
	}

	entry, err := resolve(m)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		st, ok, err := p.cache.Load(ctx, entry.Name)
		if err != nil {
			p.log.Warn("vector cache read failed", "model", entry.Name, "error", err)
		}
		if ok {
			p.log.Info("loaded model from cache",
				"model", entry.Name, "tokens", st.Len(), "dimension", st.Dimension())
			return st, nil
		}
	}

	filePath := filepath.Join(p.cacheDir, entry.File)
	if _, err := os.Stat(filePath); err != nil {
		if err := p.download(ctx, entry, filePath); err != nil {
			return nil, fmt.Errorf("models: %s: %w: %v", entry.Name, domain.ErrModelUnavailable, err)
		}
	}

	st, err := p.parseFile(filePath, entry.Name, entry.Format, entry.Dimension)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Save(ctx, entry.Name, st, entry.URL); err != nil {
			p.log.Warn("vector cache write failed", "model", entry.Name, "error", err)
		}
	}
	return st, nil
}

// loadCustom parses a vector file supplied by the user. Text files are
// sniffed for a word2vec header; binary must be declared explicitly.
func (p *Provider) loadCustom(m Model) (*vectorstore.Store, error) {
	name := m.Name()
	format := FormatWord2VecBinary
	if !m.Binary {
		var err error
		format, err = sniffFile(m.Path)
		if err != nil {
			return nil, fmt.Errorf("models: %s: %w: %v", name, domain.ErrModelUnavailable, err)
		}
	}
	return p.parseFile(m.Path, name, format, m.Dimension)
}

func (p *Provider) parseFile(path, name string, format Format, dimension int) (*vectorstore.Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("models: %s: %w: %v", name, domain.ErrModelUnavailable, err)
	}
	defer f.Close()

	p.log.Info("parsing model", "model", name, "file", path)
	st, stats, err := ParseVectors(bufio.NewReaderSize(f, 1<<20), format, dimension)
	if err != nil {
		return nil, fmt.Errorf("models: %s: %w: %v", name, domain.ErrModelUnavailable, err)
	}

	p.log.Info("model parsed", "model", name, "tokens", st.Len(), "dimension", st.Dimension())
	if stats.SkippedZero > 0 {
		p.log.Warn("skipped zero-magnitude vectors", "model", name, "count", stats.SkippedZero)
	}
	if stats.Duplicates > 0 {
		p.log.Warn("skipped duplicate tokens", "model", name, "count", stats.Duplicates)
	}
	return st, nil
}
