// Package catalog holds the planned option targets that PLM progress is
// reconciled against.
package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// PlanRow is one planning target for a brand/category/segment/subgroup cell.
// Rows with blank ids are kept: their planned count still belongs to the
// totals, they just never match a style.
type PlanRow struct {
	BrandID       int    `json:"brandId" validate:"gte=0"`
	BrandLabel    string `json:"brand"`
	CategoryID    int    `json:"categoryId" validate:"gte=0"`
	CategoryLabel string `json:"category"`
	// SegmentID is compared with the colorway segment tag, so it is kept as text.
	SegmentID     string `json:"segmentId"`
	SegmentLabel  string `json:"segment"`
	SubgroupID    int    `json:"subgroupId" validate:"gte=0"`
	SubgroupLabel string `json:"subgroup"`
	ThemeID       *int   `json:"themeId,omitempty"`
	PlannedCount  int    `json:"plannedCount" validate:"gte=0"`
}

// Matchable reports whether every key the matcher compares is present.
func (r PlanRow) Matchable() bool {
	return r.BrandID != 0 && r.CategoryID != 0 && r.SubgroupID != 0 && r.SegmentID != ""
}

// ThemeTarget is the planned option count for one collection theme.
type ThemeTarget struct {
	ThemeID      int    `json:"themeId" validate:"required"`
	ThemeName    string `json:"themeName"`
	PlannedCount int    `json:"plannedCount" validate:"gte=0"`
}

// Catalog is an immutable snapshot of every plan target. Never mutate a
// catalog returned by Store.Current; build a new one and swap it in.
type Catalog struct {
	Segments []PlanRow
	Themes   []ThemeTarget
	LoadedAt time.Time
	Source   string
}

// Empty is the catalog used before the first load and after a failed one.
func Empty() *Catalog {
	return &Catalog{Segments: []PlanRow{}, Themes: []ThemeTarget{}}
}

// IsEmpty reports whether there is nothing to reconcile.
func (c *Catalog) IsEmpty() bool {
	return len(c.Segments) == 0 && len(c.Themes) == 0
}

// BySegmentLabel returns the rows whose segment label equals label.
func (c *Catalog) BySegmentLabel(label string) []PlanRow {
	out := make([]PlanRow, 0)
	for _, r := range c.Segments {
		if r.SegmentLabel == label {
			out = append(out, r)
		}
	}
	return out
}

// BySubgroupLabel returns the rows whose subgroup label equals label.
func (c *Catalog) BySubgroupLabel(label string) []PlanRow {
	out := make([]PlanRow, 0)
	for _, r := range c.Segments {
		if r.SubgroupLabel == label {
			out = append(out, r)
		}
	}
	return out
}

// LabelKind tells which dimension a search hit came from.
type LabelKind string

const (
	LabelSegment  LabelKind = "segment"
	LabelSubgroup LabelKind = "subgroup"
	LabelTheme    LabelKind = "theme"
)

// SearchHit is one label matched by Search.
type SearchHit struct {
	Label    string    `json:"label"`
	Kind     LabelKind `json:"kind"`
	Distance int       `json:"distance"`
}

// Search fuzzy-matches query against the distinct segment, subgroup and theme
// labels. Closer matches come first; limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []SearchHit {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchHit{}
	}

	var labels []string
	var kinds []LabelKind
	seen := make(map[string]bool)
	add := func(label string, kind LabelKind) {
		key := string(kind) + "\x00" + label
		if label == "" || seen[key] {
			return
		}
		seen[key] = true
		labels = append(labels, label)
		kinds = append(kinds, kind)
	}
	for _, r := range c.Segments {
		add(r.SegmentLabel, LabelSegment)
	}
	for _, r := range c.Segments {
		add(r.SubgroupLabel, LabelSubgroup)
	}
	for _, t := range c.Themes {
		add(t.ThemeName, LabelTheme)
	}

	ranks := fuzzy.RankFindNormalizedFold(query, labels)
	sort.Stable(ranks)

	hits := make([]SearchHit, 0, len(ranks))
	for _, r := range ranks {
		hits = append(hits, SearchHit{
			Label:    r.Target,
			Kind:     kinds[r.OriginalIndex],
			Distance: r.Distance,
		})
		if limit > 0 && len(hits) == limit {
			break
		}
	}
	return hits
}
