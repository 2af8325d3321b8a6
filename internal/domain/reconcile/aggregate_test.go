package reconcile

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seg(label string, planned, draft, actual int) Result {
	r := newResult(planned, draft, actual)
	r.Segment = label
	return r
}

func TestSummarize_FirstSeenOrderAndResumming(t *testing.T) {
	results := []Result{
		seg("Urban", 10, 1, 5),
		seg("Mono", 4, 0, 4),
		seg("Urban", 6, 2, 3),
		seg("Classic", 0, 0, 0),
	}

	s := Summarize(results)

	assert.Equal(t, Totals{Planned: 20, Draft: 3, Actual: 12, Diff: 8, Ratio: 60}, s.Overall)
	require.Len(t, s.Groups, 3)
	assert.Equal(t, []string{"Urban", "Mono", "Classic"}, []string{s.Groups[0].Label, s.Groups[1].Label, s.Groups[2].Label})

	assert.Equal(t, Totals{Planned: 16, Draft: 3, Actual: 8, Diff: 8, Ratio: 50}, s.Groups[0].Totals)
	assert.Equal(t, 100, s.Groups[1].Ratio)
	assert.Equal(t, 0, s.Groups[2].Ratio)
	assert.Zero(t, s.ThemeCount)
}

func TestSummarize_RatioFromSumsNotAverages(t *testing.T) {
	// Row ratios are 100% and 10%; their mean is 55% but the group is 2/11.
	s := Summarize([]Result{seg("A", 1, 0, 1), seg("A", 10, 0, 1)})
	assert.Equal(t, 18, s.Groups[0].Ratio)
	assert.Equal(t, 18, s.Overall.Ratio)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Totals{}, s.Overall)
	assert.NotNil(t, s.Groups)
	assert.Empty(t, s.Groups)
}

func TestAggregate_GroupSumsEqualOverall(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	labels := []string{"A", "B", "C", "D", "E"}

	for i := 0; i < 200; i++ {
		n := rng.Intn(30)
		results := make([]Result, 0, n)
		for j := 0; j < n; j++ {
			results = append(results, seg(labels[rng.Intn(len(labels))], rng.Intn(50), rng.Intn(10), rng.Intn(60)))
		}

		s := Summarize(results)
		var planned, draft, actual int
		for _, g := range s.Groups {
			planned += g.Planned
			draft += g.Draft
			actual += g.Actual
		}
		require.Equal(t, s.Overall.Planned, planned)
		require.Equal(t, s.Overall.Draft, draft)
		require.Equal(t, s.Overall.Actual, actual)
	}
}

func TestSummarizeThemes_ExcludesSyntheticRows(t *testing.T) {
	coastal := newResult(4, 0, 2)
	coastal.ThemeName, coastal.ThemeID = "Coastal", intPtr(3)
	night := newResult(6, 1, 1)
	night.ThemeName, night.ThemeID = "Nightfall", intPtr(4)

	results := appendSynthetic([]Result{coastal, night})
	s := SummarizeThemes(results)

	assert.Equal(t, 2, s.ThemeCount)
	assert.Equal(t, Totals{Planned: 10, Draft: 1, Actual: 3, Diff: 7, Ratio: 30}, s.Overall)
	require.Len(t, s.Groups, 2)
	assert.Equal(t, "Coastal", s.Groups[0].Label)
	assert.Equal(t, "Nightfall", s.Groups[1].Label)
}

func TestRealThemes(t *testing.T) {
	results := MatchThemes(nil, nil)
	assert.Empty(t, RealThemes(results))
}
