package reconcile

import (
	"github.com/FACorreiaa/range-tracker/internal/domain/plan/catalog"
	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

// isEligibleColorway is the null rule: a colorway only exists as an option when
// its style carries brand, division and sub-category and the colorway carries a
// segment tag. It applies per colorway even where the style was already
// compared on those fields.
func isEligibleColorway(style plm.Style, cw plm.Colorway) bool {
	return style.BrandID != nil &&
		style.DivisionID != nil &&
		style.SubCategoryID != nil &&
		cw.SegmentTag != nil
}

// criteria selects the options that count toward one plan target.
type criteria struct {
	// style filters whole records; nil accepts every style.
	style func(plm.Style) bool
	// colorway is the key comparison for a single eligible colorway.
	colorway func(plm.Colorway) bool
}

// count returns draft and actual option counts for c over snapshot.
func count(c criteria, snapshot []plm.Style) (draft, actual int) {
	for _, s := range snapshot {
		if c.style != nil && !c.style(s) {
			continue
		}
		for _, cw := range s.Colorways {
			if !isEligibleColorway(s, cw) || !c.colorway(cw) {
				continue
			}
			if s.IsDraft() {
				draft++
			} else {
				actual++
			}
		}
	}
	return draft, actual
}

func segmentCriteria(row catalog.PlanRow) criteria {
	return criteria{
		style: func(s plm.Style) bool {
			return row.Matchable() &&
				equalID(s.BrandID, row.BrandID) &&
				equalID(s.DivisionID, row.CategoryID) &&
				equalID(s.SubCategoryID, row.SubgroupID)
		},
		colorway: func(cw plm.Colorway) bool {
			return *cw.SegmentTag == row.SegmentID
		},
	}
}

func themeCriteria(target catalog.ThemeTarget) criteria {
	return criteria{
		colorway: func(cw plm.Colorway) bool {
			return cw.ThemeID != nil && *cw.ThemeID == target.ThemeID
		},
	}
}

func equalID(got *int, want int) bool {
	return got != nil && *got == want
}

// MatchSegment reconciles one segment plan row against a snapshot.
func MatchSegment(row catalog.PlanRow, snapshot []plm.Style) Result {
	draft, actual := count(segmentCriteria(row), snapshot)
	r := newResult(row.PlannedCount, draft, actual)
	r.Brand = row.BrandLabel
	r.Category = row.CategoryLabel
	r.Segment = row.SegmentLabel
	r.Subgroup = row.SubgroupLabel
	return r
}

// MatchTheme reconciles one theme target against a snapshot.
func MatchTheme(target catalog.ThemeTarget, snapshot []plm.Style) Result {
	draft, actual := count(themeCriteria(target), snapshot)
	r := newResult(target.PlannedCount, draft, actual)
	r.ThemeName = target.ThemeName
	themeID := target.ThemeID
	r.ThemeID = &themeID
	return r
}

// MatchSegments reconciles every row, keeping catalog order.
func MatchSegments(rows []catalog.PlanRow, snapshot []plm.Style) []Result {
	out := make([]Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, MatchSegment(row, snapshot))
	}
	return out
}

// MatchThemes reconciles every theme target and appends the SeasonAverage and
// Reference rows after the real ones.
func MatchThemes(targets []catalog.ThemeTarget, snapshot []plm.Style) []Result {
	out := make([]Result, 0, len(targets)+2)
	for _, t := range targets {
		out = append(out, MatchTheme(t, snapshot))
	}
	return appendSynthetic(out)
}

func appendSynthetic(rows []Result) []Result {
	var planned, draft, actual int
	for _, r := range rows {
		planned += r.Planned
		draft += r.Draft
		actual += r.Actual
	}

	average := newResult(planned, draft, actual)
	average.ThemeName = SeasonAverageName

	reference := Result{
		ThemeName: ReferenceName,
		Planned:   referencePlanned,
		Actual:    referencePlanned,
		Ratio:     100,
	}
	return append(rows, average, reference)
}
