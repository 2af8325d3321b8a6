package reconcile

func sum(results []Result) Totals {
	var t Totals
	for _, r := range results {
		t.Planned += r.Planned
		t.Draft += r.Draft
		t.Actual += r.Actual
	}
	t.Diff = t.Planned - t.Actual
	t.Ratio = CompletionRatio(t.Actual, t.Planned)
	return t
}

// Aggregate sums results overall and per label. Labels keep the order they are
// first seen in; each group is re-summed from its own rows so group sums always
// add up to the overall totals.
func Aggregate(results []Result, label func(Result) string) Summary {
	var order []string
	seen := make(map[string]bool)
	for _, r := range results {
		l := label(r)
		if !seen[l] {
			seen[l] = true
			order = append(order, l)
		}
	}

	groups := make([]GroupTotals, 0, len(order))
	for _, l := range order {
		var members []Result
		for _, r := range results {
			if label(r) == l {
				members = append(members, r)
			}
		}
		groups = append(groups, GroupTotals{Label: l, Totals: sum(members)})
	}

	return Summary{Overall: sum(results), Groups: groups}
}

// Summarize rolls segment results up by segment label.
func Summarize(results []Result) Summary {
	return Aggregate(results, func(r Result) string { return r.Segment })
}

// RealThemes drops rows without a theme id, i.e. the synthetic rows.
func RealThemes(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.ThemeID != nil {
			out = append(out, r)
		}
	}
	return out
}

// SummarizeThemes rolls theme results up by theme name, ignoring synthetic rows.
func SummarizeThemes(results []Result) Summary {
	themes := RealThemes(results)
	s := Aggregate(themes, func(r Result) string { return r.ThemeName })
	s.ThemeCount = len(themes)
	return s
}

func headline(results []Result) Headline {
	t := sum(results)
	return Headline{Planned: t.Planned, Actual: t.Actual, Diff: t.Diff, Ratio: t.Ratio}
}
