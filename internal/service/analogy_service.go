package service

import (
	"analogy/internal/analogy"
	"analogy/internal/dataset"
	"analogy/internal/domain"
	"analogy/internal/report"
)

// AnalogyService wires the evaluator, dataset loading and report
// aggregation behind one facade shared by the CLI and the TUI.
type AnalogyService struct {
	evaluator   *analogy.Evaluator
	topK        int
	searchSpace int
}

func NewAnalogyService(evaluator *analogy.Evaluator, topK, searchSpace int) *AnalogyService {
	if topK <= 0 {
		topK = 10
	}
	return &AnalogyService{evaluator: evaluator, topK: topK, searchSpace: searchSpace}
}

// Test answers a single analogy question. The expected answer may be
// empty, in which case the result is unscored.
func (s *AnalogyService) Test(a, b, c, expected string) (domain.Result, error) {
	q := domain.Query{A: a, B: b, C: c, Expected: expected}
	return s.evaluator.Evaluate(q, s.topK, s.searchSpace)
}

// Neighbors lists the tokens most similar to the given one.
func (s *AnalogyService) Neighbors(token string) ([]domain.Neighbor, error) {
	return s.evaluator.Neighbors(token, s.topK, s.searchSpace)
}

// Arithmetic evaluates a positive/negative token combination.
func (s *AnalogyService) Arithmetic(expr analogy.Expression) ([]domain.Neighbor, error) {
	return s.evaluator.Arithmetic(expr, s.topK, s.searchSpace)
}

// RunSuite evaluates every record of an analogy suite file. A record
// whose tokens are missing from the vocabulary is skipped and counted;
// it never aborts the rest of the suite.
func (s *AnalogyService) RunSuite(path string) (*report.Summary, []dataset.ResultRow, error) {
	queries, err := dataset.LoadAnalogies(path)
	if err != nil {
		return nil, nil, err
	}

	summary := report.NewSummary()
	rows := make([]dataset.ResultRow, 0, len(queries))
	for _, q := range queries {
		res, err := s.evaluator.Evaluate(q, s.topK, s.searchSpace)
		if err != nil {
			summary.RecordSkipped(q.Category)
			rows = append(rows, dataset.ResultRow{Query: q, Err: err})
			continue
		}
		row := dataset.ResultRow{Query: q, Rank: res.Rank, Matched: res.Matched}
		if len(res.Neighbors) > 0 {
			row.Predicted = res.Neighbors[0].Token
		}
		summary.Record(q.Category, res)
		rows = append(rows, row)
	}
	return summary, rows, nil
}
