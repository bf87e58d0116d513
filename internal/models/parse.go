package models

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"analogy/internal/domain"
	"analogy/internal/vectorstore"
)

// maxLineBytes caps a single text row. 300-dimensional rows stay well
// under this even with long tokens.
const maxLineBytes = 1 << 20

// Stats summarizes a parse run.
type Stats struct {
	Rows        int
	SkippedZero int
	Duplicates  int
}

// ParseVectors reads an embedding file in the given format into a store.
// dimension zero means take the dimensionality from the file itself;
// otherwise the file must agree. Zero-magnitude rows are skipped and
// counted rather than failing the whole file.
func ParseVectors(r io.Reader, format Format, dimension int) (*vectorstore.Store, Stats, error) {
	switch format {
	case FormatWord2VecBinary:
		return parseWord2VecBinary(r, dimension)
	case FormatWord2VecText:
		return parseWord2VecText(r, dimension)
	default:
		return parseGloVeText(r, dimension)
	}
}

func parseGloVeText(r io.Reader, dimension int) (*vectorstore.Store, Stats, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		b     *vectorstore.Builder
		stats Stats
		line  int
	)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if b == nil {
			dim := dimension
			if dim == 0 {
				dim = len(fields) - 1
			}
			if dim <= 0 {
				return nil, stats, fmt.Errorf("models: line %d: no vector components", line)
			}
			var err error
			b, err = vectorstore.NewBuilder(dim)
			if err != nil {
				return nil, stats, err
			}
		}
		if err := addTextRow(b, fields, line, &stats); err != nil {
			return nil, stats, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("models: read vectors: %w", err)
	}
	if b == nil {
		return nil, stats, fmt.Errorf("models: empty vector file")
	}
	stats.Duplicates = b.Duplicates()
	return b.Build(), stats, nil
}

func parseWord2VecText(r io.Reader, dimension int) (*vectorstore.Store, Stats, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var stats Stats
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, stats, fmt.Errorf("models: read header: %w", err)
		}
		return nil, stats, fmt.Errorf("models: empty vector file")
	}
	vocab, dim, err := parseHeader(sc.Text())
	if err != nil {
		return nil, stats, err
	}
	if dimension != 0 && dimension != dim {
		return nil, stats, fmt.Errorf("models: header declares %d dimensions, want %d", dim, dimension)
	}

	b, err := vectorstore.NewBuilder(dim)
	if err != nil {
		return nil, stats, err
	}
	line := 1
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if err := addTextRow(b, fields, line, &stats); err != nil {
			return nil, stats, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("models: read vectors: %w", err)
	}
	if stats.Rows != vocab {
		return nil, stats, fmt.Errorf("models: header declares %d entries, found %d", vocab, stats.Rows)
	}
	stats.Duplicates = b.Duplicates()
	return b.Build(), stats, nil
}

func parseWord2VecBinary(r io.Reader, dimension int) (*vectorstore.Store, Stats, error) {
	br := bufio.NewReaderSize(r, 1<<20)

	var stats Stats
	header, err := br.ReadString('\n')
	if err != nil {
		return nil, stats, fmt.Errorf("models: read header: %w", err)
	}
	vocab, dim, err := parseHeader(header)
	if err != nil {
		return nil, stats, err
	}
	if dimension != 0 && dimension != dim {
		return nil, stats, fmt.Errorf("models: header declares %d dimensions, want %d", dim, dimension)
	}

	b, err := vectorstore.NewBuilder(dim)
	if err != nil {
		return nil, stats, err
	}
	row := make([]byte, 4*dim)
	for i := 0; i < vocab; i++ {
		token, err := readBinaryToken(br)
		if err != nil {
			return nil, stats, fmt.Errorf("models: entry %d: %w", i+1, err)
		}
		if _, err := io.ReadFull(br, row); err != nil {
			return nil, stats, fmt.Errorf("models: entry %d (%q): %w", i+1, token, err)
		}
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = math.Float32frombits(binary.LittleEndian.Uint32(row[j*4:]))
		}
		stats.Rows++
		if err := b.Add(token, vec); err != nil {
			if errors.Is(err, domain.ErrInvalidVector) {
				stats.SkippedZero++
				continue
			}
			return nil, stats, fmt.Errorf("models: entry %d: %w", i+1, err)
		}
	}
	stats.Duplicates = b.Duplicates()
	return b.Build(), stats, nil
}

// addTextRow parses one "token v1 ... vn" row into the builder.
func addTextRow(b *vectorstore.Builder, fields []string, line int, stats *Stats) error {
	vec := make([]float32, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return fmt.Errorf("models: line %d: component %d: %w", line, i+1, err)
		}
		vec[i] = float32(v)
	}
	stats.Rows++
	if err := b.Add(fields[0], vec); err != nil {
		if errors.Is(err, domain.ErrInvalidVector) {
			stats.SkippedZero++
			return nil
		}
		return fmt.Errorf("models: line %d: %w", line, err)
	}
	return nil
}

// parseHeader parses a "vocab dim" header line.
func parseHeader(s string) (vocab, dim int, err error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("models: malformed vector file header %q", strings.TrimSpace(s))
	}
	vocab, err = strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("models: malformed vocabulary count %q", fields[0])
	}
	dim, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("models: malformed dimension %q", fields[1])
	}
	if vocab <= 0 || dim <= 0 {
		return 0, 0, fmt.Errorf("models: implausible vector file header %q", strings.TrimSpace(s))
	}
	return vocab, dim, nil
}

// readBinaryToken reads a space-terminated token, tolerating the newline
// some writers emit between entries.
func readBinaryToken(br *bufio.Reader) (string, error) {
	tok, err := br.ReadString(' ')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}

// DetectFormat sniffs whether the first line of a text vector file is a
// word2vec header. Binary files are declared by the caller, not sniffed.
func DetectFormat(firstLine string) Format {
	if _, _, err := parseHeader(firstLine); err == nil {
		return FormatWord2VecText
	}
	return FormatGloVeText
}

// sniffFile reads the first line of a file for format detection.
func sniffFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatGloVeText, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return FormatGloVeText, err
		}
		return FormatGloVeText, fmt.Errorf("models: empty vector file")
	}
	return DetectFormat(sc.Text()), nil
}
