package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"analogy/internal/domain"
)

// fieldCount is the record width of the analogy suite format:
// word1,word2,word3,word4,category.
const fieldCount = 5

var headerFields = []string{"word1", "word2", "word3", "word4", "category"}

// LoadAnalogies reads an analogy suite from a CSV file on disk.
func LoadAnalogies(path string) ([]domain.Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open suite: %w", err)
	}
	defer f.Close()

	queries, err := ReadAnalogies(f)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return queries, nil
}

// ReadAnalogies parses analogy records from r. Each record carries four
// analogy tokens and a category. A leading header line is skipped when
// present. Any record that does not follow the format fails the whole
// read with a MalformedRecordError naming the line.
func ReadAnalogies(r io.Reader) ([]domain.Query, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var queries []domain.Query
	first := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				line = parseErr.Line
			}
			return nil, &domain.MalformedRecordError{Line: line, Reason: err.Error()}
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}
		if len(record) != fieldCount {
			return nil, &domain.MalformedRecordError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, got %d", fieldCount, len(record)),
			}
		}
		for i, field := range record {
			if strings.TrimSpace(field) == "" {
				return nil, &domain.MalformedRecordError{
					Line:   line,
					Reason: fmt.Sprintf("empty %s field", headerFields[i]),
				}
			}
		}

		queries = append(queries, domain.Query{
			A:        strings.TrimSpace(record[0]),
			B:        strings.TrimSpace(record[1]),
			C:        strings.TrimSpace(record[2]),
			Expected: strings.TrimSpace(record[3]),
			Category: strings.TrimSpace(record[4]),
		})
	}
	return queries, nil
}

func isHeader(record []string) bool {
	if len(record) != len(headerFields) {
		return false
	}
	for i, field := range record {
		if !strings.EqualFold(strings.TrimSpace(field), headerFields[i]) {
			return false
		}
	}
	return true
}
