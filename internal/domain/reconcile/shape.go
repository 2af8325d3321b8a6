package reconcile

import "strings"

// Shape selects the JSON field naming of reconciliation output. Both shapes
// carry the same values.
type Shape string

const (
	// ShapeCamel uses camelCase keys.
	ShapeCamel Shape = "camel"
	// ShapeLegacy uses the column labels of the planning workbook.
	ShapeLegacy Shape = "legacy"
)

// ParseShape maps a query value to a Shape, defaulting to ShapeCamel.
func ParseShape(s string) Shape {
	if strings.EqualFold(strings.TrimSpace(s), string(ShapeLegacy)) {
		return ShapeLegacy
	}
	return ShapeCamel
}

type segmentRow struct {
	Brand    string `json:"brand"`
	Category string `json:"category"`
	Segment  string `json:"segment"`
	Subgroup string `json:"subgroup"`
	Planned  int    `json:"planned"`
	Draft    int    `json:"draft"`
	Actual   int    `json:"actual"`
	Diff     int    `json:"diff"`
	Ratio    string `json:"ratio"`
}

type legacySegmentRow struct {
	Brand    string `json:"Marka"`
	Category string `json:"Kategori"`
	Segment  string `json:"Life Style Grup"`
	Subgroup string `json:"Ürün Alt Grup"`
	Planned  int    `json:"P_Opt"`
	Draft    int    `json:"T_Opt"`
	Actual   int    `json:"G_Opt"`
	Diff     int    `json:"Fark"`
	Ratio    string `json:"Oran"`
}

type themeRow struct {
	ThemeName string `json:"themeName"`
	ThemeID   *int   `json:"themeId"`
	Planned   int    `json:"planned"`
	Draft     int    `json:"draft"`
	Actual    int    `json:"actual"`
	Diff      int    `json:"diff"`
	Ratio     string `json:"ratio"`
}

type legacyThemeRow struct {
	ThemeName string `json:"TemaAdi"`
	ThemeID   *int   `json:"Tema_Id"`
	Planned   int    `json:"P_Opt"`
	Draft     int    `json:"T_Opt"`
	Actual    int    `json:"G_Opt"`
	Diff      int    `json:"Fark"`
	Ratio     string `json:"Oran"`
}

// EncodeSegments renders segment results in the requested shape.
func EncodeSegments(results []Result, shape Shape) any {
	if shape == ShapeLegacy {
		out := make([]legacySegmentRow, 0, len(results))
		for _, r := range results {
			out = append(out, legacySegmentRow{
				Brand: r.Brand, Category: r.Category, Segment: r.Segment, Subgroup: r.Subgroup,
				Planned: r.Planned, Draft: r.Draft, Actual: r.Actual, Diff: r.Diff,
				Ratio: FormatPercent(r.Ratio),
			})
		}
		return out
	}

	out := make([]segmentRow, 0, len(results))
	for _, r := range results {
		out = append(out, segmentRow{
			Brand: r.Brand, Category: r.Category, Segment: r.Segment, Subgroup: r.Subgroup,
			Planned: r.Planned, Draft: r.Draft, Actual: r.Actual, Diff: r.Diff,
			Ratio: FormatPercent(r.Ratio),
		})
	}
	return out
}

// EncodeThemes renders theme results, synthetic rows included, in the requested shape.
func EncodeThemes(results []Result, shape Shape) any {
	if shape == ShapeLegacy {
		out := make([]legacyThemeRow, 0, len(results))
		for _, r := range results {
			out = append(out, legacyThemeRow{
				ThemeName: r.ThemeName, ThemeID: r.ThemeID,
				Planned: r.Planned, Draft: r.Draft, Actual: r.Actual, Diff: r.Diff,
				Ratio: FormatPercent(r.Ratio),
			})
		}
		return out
	}

	out := make([]themeRow, 0, len(results))
	for _, r := range results {
		out = append(out, themeRow{
			ThemeName: r.ThemeName, ThemeID: r.ThemeID,
			Planned: r.Planned, Draft: r.Draft, Actual: r.Actual, Diff: r.Diff,
			Ratio: FormatPercent(r.Ratio),
		})
	}
	return out
}

type totalsView struct {
	Planned    int    `json:"planned"`
	Draft      int    `json:"draft"`
	Actual     int    `json:"actual"`
	Diff       int    `json:"diff"`
	Ratio      string `json:"ratio"`
	ThemeCount *int   `json:"themeCount,omitempty"`
}

type groupView struct {
	Label   string `json:"label"`
	Planned int    `json:"planned"`
	Draft   int    `json:"draft"`
	Actual  int    `json:"actual"`
	Diff    int    `json:"diff"`
	Ratio   string `json:"ratio"`
}

type summaryView struct {
	Overall totalsView  `json:"overall"`
	Groups  []groupView `json:"groups"`
}

type legacyTotalsView struct {
	Planned    int    `json:"toplamPlanlanan"`
	Actual     int    `json:"toplamGerceklesen"`
	Draft      int    `json:"toplamTaslak"`
	Diff       int    `json:"toplamFark"`
	Ratio      string `json:"genelTamamlanma"`
	ThemeCount *int   `json:"temaSayisi,omitempty"`
}

type legacyGroupView struct {
	Label   string `json:"grup"`
	Planned int    `json:"planlanan"`
	Actual  int    `json:"gerceklesen"`
	Draft   int    `json:"taslak"`
	Diff    int    `json:"fark"`
	Ratio   string `json:"tamamlanma"`
}

type legacySummaryView struct {
	Overall legacyTotalsView  `json:"genel"`
	Groups  []legacyGroupView `json:"grupBazinda"`
}

// EncodeSummary renders a summary in the requested shape. Theme summaries
// (themes == true) also carry the theme count.
func EncodeSummary(s Summary, shape Shape, themes bool) any {
	var themeCount *int
	if themes {
		n := s.ThemeCount
		themeCount = &n
	}

	if shape == ShapeLegacy {
		v := legacySummaryView{
			Overall: legacyTotalsView{
				Planned: s.Overall.Planned, Actual: s.Overall.Actual, Draft: s.Overall.Draft,
				Diff: s.Overall.Diff, Ratio: FormatPercent(s.Overall.Ratio), ThemeCount: themeCount,
			},
			Groups: make([]legacyGroupView, 0, len(s.Groups)),
		}
		for _, g := range s.Groups {
			v.Groups = append(v.Groups, legacyGroupView{
				Label: g.Label, Planned: g.Planned, Actual: g.Actual, Draft: g.Draft,
				Diff: g.Diff, Ratio: FormatPercent(g.Ratio),
			})
		}
		return v
	}

	v := summaryView{
		Overall: totalsView{
			Planned: s.Overall.Planned, Draft: s.Overall.Draft, Actual: s.Overall.Actual,
			Diff: s.Overall.Diff, Ratio: FormatPercent(s.Overall.Ratio), ThemeCount: themeCount,
		},
		Groups: make([]groupView, 0, len(s.Groups)),
	}
	for _, g := range s.Groups {
		v.Groups = append(v.Groups, groupView{
			Label: g.Label, Planned: g.Planned, Draft: g.Draft, Actual: g.Actual,
			Diff: g.Diff, Ratio: FormatPercent(g.Ratio),
		})
	}
	return v
}

type headlineView struct {
	Planned int    `json:"planned"`
	Actual  int    `json:"actual"`
	Diff    int    `json:"diff"`
	Ratio   string `json:"ratio"`
}

type legacyHeadlineView struct {
	Planned int    `json:"toplamPOpt"`
	Actual  int    `json:"toplamGOpt"`
	Diff    int    `json:"fark"`
	Ratio   string `json:"tamamlanmaOrani"`
}

// EncodeBanner renders banner headlines in the requested shape.
func EncodeBanner(b Banner, shape Shape) any {
	if shape == ShapeLegacy {
		return struct {
			Segments legacyHeadlineView `json:"urunKategorisi"`
			Themes   legacyHeadlineView `json:"tema"`
		}{
			Segments: legacyHeadlineView(headlineView{b.Segments.Planned, b.Segments.Actual, b.Segments.Diff, FormatPercent(b.Segments.Ratio)}),
			Themes:   legacyHeadlineView(headlineView{b.Themes.Planned, b.Themes.Actual, b.Themes.Diff, FormatPercent(b.Themes.Ratio)}),
		}
	}
	return struct {
		Segments headlineView `json:"segments"`
		Themes   headlineView `json:"themes"`
	}{
		Segments: headlineView{b.Segments.Planned, b.Segments.Actual, b.Segments.Diff, FormatPercent(b.Segments.Ratio)},
		Themes:   headlineView{b.Themes.Planned, b.Themes.Actual, b.Themes.Diff, FormatPercent(b.Themes.Ratio)},
	}
}
