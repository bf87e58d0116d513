package report

import (
	"fmt"
	"strings"

	"analogy/internal/domain"
)

// Tally counts suite outcomes for one category or for a whole run.
type Tally struct {
	Total   int
	Matched int
	Top1    int
	Skipped int
}

// Scored is how many records produced a ranking.
func (t Tally) Scored() int { return t.Total - t.Skipped }

// Accuracy is the matched share of scored records.
func (t Tally) Accuracy() float64 {
	if t.Scored() == 0 {
		return 0
	}
	return float64(t.Matched) / float64(t.Scored())
}

// Top1Accuracy is the share of scored records whose expected token
// ranked first.
func (t Tally) Top1Accuracy() float64 {
	if t.Scored() == 0 {
		return 0
	}
	return float64(t.Top1) / float64(t.Scored())
}

// Summary aggregates analogy suite results by category. Categories keep
// their first-seen order, so reports are stable across runs.
type Summary struct {
	order   []string
	byCat   map[string]*Tally
	overall Tally
}

func NewSummary() *Summary {
	return &Summary{byCat: make(map[string]*Tally)}
}

func (s *Summary) tally(category string) *Tally {
	t, ok := s.byCat[category]
	if !ok {
		t = &Tally{}
		s.byCat[category] = t
		s.order = append(s.order, category)
	}
	return t
}

// Record counts one evaluated result under its category.
func (s *Summary) Record(category string, res domain.Result) {
	t := s.tally(category)
	t.Total++
	s.overall.Total++
	if res.Matched {
		t.Matched++
		s.overall.Matched++
	}
	if res.Rank == 1 {
		t.Top1++
		s.overall.Top1++
	}
}

// RecordSkipped counts a record that could not be evaluated.
func (s *Summary) RecordSkipped(category string) {
	t := s.tally(category)
	t.Total++
	t.Skipped++
	s.overall.Total++
	s.overall.Skipped++
}

// Categories returns the category names in first-seen order.
func (s *Summary) Categories() []string {
	return append([]string(nil), s.order...)
}

// Category returns the tally for one category; unknown names yield a
// zero tally.
func (s *Summary) Category(name string) Tally {
	if t, ok := s.byCat[name]; ok {
		return *t
	}
	return Tally{}
}

// Overall returns the whole-suite tally.
func (s *Summary) Overall() Tally { return s.overall }

// String renders a fixed-width per-category accuracy table.
func (s *Summary) String() string {
	var sb strings.Builder
	rule := strings.Repeat("-", 66)

	fmt.Fprintf(&sb, "%-32s %6s %8s %6s %9s\n", "category", "total", "matched", "top-1", "accuracy")
	sb.WriteString(rule + "\n")
	for _, name := range s.order {
		t := s.byCat[name]
		fmt.Fprintf(&sb, "%-32s %6d %8d %6d %8.1f%%\n",
			name, t.Total, t.Matched, t.Top1, t.Accuracy()*100)
	}
	sb.WriteString(rule + "\n")
	o := s.overall
	fmt.Fprintf(&sb, "%-32s %6d %8d %6d %8.1f%%\n",
		"overall", o.Total, o.Matched, o.Top1, o.Accuracy()*100)
	if o.Skipped > 0 {
		fmt.Fprintf(&sb, "%d record(s) skipped: tokens missing from the vocabulary\n", o.Skipped)
	}
	return sb.String()
}
