// Package reconcile counts PLM options against the plan catalog and rolls the
// counts up into summaries.
package reconcile

// Synthetic theme row names.
const (
	SeasonAverageName = "SeasonAverage"
	ReferenceName     = "Reference"

	referencePlanned = 100
)

// Result is the reconciliation of one plan target.
// Segment rows fill the brand/category/segment/subgroup labels; theme rows fill
// ThemeName and ThemeID. ThemeID is nil only on the synthetic theme rows.
type Result struct {
	Brand    string
	Category string
	Segment  string
	Subgroup string

	ThemeName string
	ThemeID   *int

	Planned int
	Draft   int
	Actual  int
	Diff    int
	Ratio   int
}

// IsSynthetic reports whether the row was injected by theme reconciliation.
func (r Result) IsSynthetic() bool {
	return r.ThemeName != "" && r.ThemeID == nil
}

func newResult(planned, draft, actual int) Result {
	return Result{
		Planned: planned,
		Draft:   draft,
		Actual:  actual,
		Diff:    planned - actual,
		Ratio:   CompletionRatio(actual, planned),
	}
}

// Totals are summed counts with the ratio recomputed from the sums.
type Totals struct {
	Planned int
	Draft   int
	Actual  int
	Diff    int
	Ratio   int
}

// GroupTotals are the totals of one label partition.
type GroupTotals struct {
	Label string
	Totals
}

// Summary is the overall roll-up plus a breakdown in first-seen label order.
type Summary struct {
	Overall Totals
	Groups  []GroupTotals
	// ThemeCount is the number of real theme rows; zero for segment summaries.
	ThemeCount int
}

// Headline is one banner block.
type Headline struct {
	Planned int
	Actual  int
	Diff    int
	Ratio   int
}

// Banner is the dashboard headline for both plan dimensions.
type Banner struct {
	Segments Headline
	Themes   Headline
}
