package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"analogy/internal/domain"
)

func TestSummaryTallies(t *testing.T) {
	s := NewSummary()
	s.Record("family", domain.Result{Matched: true, Rank: 1})
	s.Record("family", domain.Result{Matched: true, Rank: 3})
	s.Record("family", domain.Result{})
	s.Record("currency", domain.Result{Matched: true, Rank: 1})
	s.RecordSkipped("currency")

	fam := s.Category("family")
	assert.Equal(t, 3, fam.Total)
	assert.Equal(t, 2, fam.Matched)
	assert.Equal(t, 1, fam.Top1)
	assert.Equal(t, 0, fam.Skipped)
	assert.InDelta(t, 2.0/3.0, fam.Accuracy(), 1e-9)
	assert.InDelta(t, 1.0/3.0, fam.Top1Accuracy(), 1e-9)

	cur := s.Category("currency")
	assert.Equal(t, 2, cur.Total)
	assert.Equal(t, 1, cur.Skipped)
	assert.Equal(t, 1, cur.Scored())
	assert.InDelta(t, 1.0, cur.Accuracy(), 1e-9)

	overall := s.Overall()
	assert.Equal(t, 5, overall.Total)
	assert.Equal(t, 3, overall.Matched)
	assert.Equal(t, 1, overall.Skipped)
}

func TestSummaryCategoryOrder(t *testing.T) {
	s := NewSummary()
	s.Record("zulu", domain.Result{})
	s.Record("alpha", domain.Result{})
	s.Record("zulu", domain.Result{})
	s.Record("mike", domain.Result{})

	assert.Equal(t, []string{"zulu", "alpha", "mike"}, s.Categories())
}

func TestSummaryUnknownCategory(t *testing.T) {
	s := NewSummary()
	assert.Equal(t, Tally{}, s.Category("nothing"))
	assert.Equal(t, 0.0, Tally{}.Accuracy())
}

func TestSummaryString(t *testing.T) {
	s := NewSummary()
	s.Record("family", domain.Result{Matched: true, Rank: 1})
	s.RecordSkipped("family")

	out := s.String()
	assert.True(t, strings.HasPrefix(out, "category"))
	assert.Contains(t, out, "family")
	assert.Contains(t, out, "overall")
	assert.Contains(t, out, "1 record(s) skipped")
	assert.Contains(t, out, "100.0%")
}
