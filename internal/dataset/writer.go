package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"analogy/internal/domain"
)

// ResultRow is one scored suite record ready for export. Rows whose
// evaluation failed keep the cause in Err and an empty prediction.
type ResultRow struct {
	Query     domain.Query
	Predicted string
	Rank      int
	Matched   bool
	Err       error
}

// WriteResults exports suite results as CSV with the input fields plus
// predicted, rank and matched columns. Failed rows leave predicted and
// rank empty.
func WriteResults(path string, rows []ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: create results file: %w", err)
	}

	w := csv.NewWriter(f)
	header := append(append([]string{}, headerFields...), "predicted", "rank", "matched")
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("dataset: write results: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.Query.A,
			row.Query.B,
			row.Query.C,
			row.Query.Expected,
			row.Query.Category,
			row.Predicted,
			"",
			strconv.FormatBool(row.Matched),
		}
		if row.Rank > 0 {
			record[6] = strconv.Itoa(row.Rank)
		}
		if err := w.Write(record); err != nil {
			f.Close()
			return fmt.Errorf("dataset: write results: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("dataset: write results: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dataset: close results file: %w", err)
	}
	return nil
}
