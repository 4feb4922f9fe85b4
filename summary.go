package gogrid

import (
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/phil-mansfield/gogrid/errs"
)

// Summary describes the distribution of one component of a Field over its
// Valid cells.
type Summary struct {
	Count                             int
	Min, Max, Mean, Median            float64
	StdDev, Percentile5, Percentile95 float64
}

// Summarize computes a Summary of component c over the cells that m marks
// as Valid. It returns an error wrapping errs.ErrEmptyInput if there are no
// such cells.
func Summarize(f *Field, m *Mask, c int) (Summary, error) {
	if m.Len() != f.Len() {
		return Summary{}, errs.Validation(
			"mask has %d cells, but the field has %d", m.Len(), f.Len(),
		)
	} else if c < 0 || c >= f.comps {
		return Summary{}, errs.Validation(
			"component %d requested from a field with %d components",
			c, f.comps,
		)
	}

	data := make(stats.Float64Data, 0, m.Count(Valid))
	for i, q := range m.cells {
		if q == Valid { data = append(data, f.vals[i*f.comps+c]) }
	}
	if len(data) == 0 {
		return Summary{}, errs.EmptyInput("no valid cells to summarize")
	}

	var err error
	sum := Summary{Count: len(data)}
	steps := []struct {
		name string
		out  *float64
		f    func(stats.Float64Data) (float64, error)
	}{
		{"min", &sum.Min, stats.Min},
		{"max", &sum.Max, stats.Max},
		{"mean", &sum.Mean, stats.Mean},
		{"median", &sum.Median, stats.Median},
		{"stddev", &sum.StdDev, stats.StandardDeviationPopulation},
		{"p5", &sum.Percentile5, percentile(5)},
		{"p95", &sum.Percentile95, percentile(95)},
	}
	for _, step := range steps {
		if *step.out, err = step.f(data); err != nil {
			if errors.Is(err, stats.ErrEmptyInput) {
				return Summary{}, errs.EmptyInput("%s of valid cells", step.name)
			}
			return Summary{}, errors.Wrapf(err, "computing %s", step.name)
		}
	}
	return sum, nil
}

func percentile(p float64) func(stats.Float64Data) (float64, error) {
	return func(data stats.Float64Data) (float64, error) {
		return stats.PercentileNearestRank(data, p)
	}
}
