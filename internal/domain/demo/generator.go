// Package demo provides randomized stand-ins for PLM and for the counts the
// range sheet leaves blank. Nothing here is wired unless demo mode is enabled.
package demo

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/range-tracker/internal/domain/pastseason"
	"github.com/FACorreiaa/range-tracker/internal/domain/plan/catalog"
	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

// draftShare is the probability that a generated style is still a draft.
const draftShare = 0.15

// Generator produces demo data from a seeded faker. Seed 0 picks a random seed.
type Generator struct {
	faker *gofakeit.Faker
}

// NewGenerator creates a generator with the given seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// SnapshotProvider fabricates PLM snapshots around the loaded plan so demo
// reconciliations show partial progress.
type SnapshotProvider struct {
	gen     *Generator
	catalog catalog.Reader
	logger  *slog.Logger
}

func NewSnapshotProvider(gen *Generator, cat catalog.Reader, logger *slog.Logger) *SnapshotProvider {
	return &SnapshotProvider{gen: gen, catalog: cat, logger: logger}
}

// FetchSnapshot returns a fresh random snapshot. Segment snapshots carry no
// theme ids, matching the PLM projection.
func (p *SnapshotProvider) FetchSnapshot(ctx context.Context, kind plm.SnapshotKind) ([]plm.Style, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cat := p.catalog.Current()
	f := p.gen.faker

	themeIDs := make([]int, 0, len(cat.Themes))
	for _, t := range cat.Themes {
		themeIDs = append(themeIDs, t.ThemeID)
	}

	var styles []plm.Style
	nextID := 1
	newStyle := func(brand, division, sub *int) plm.Style {
		s := plm.Style{
			StyleID:       nextID,
			StyleCode:     fmt.Sprintf("DM-%05d", nextID),
			BrandID:       brand,
			DivisionID:    division,
			SubCategoryID: sub,
			Status:        2,
		}
		if f.Float64Range(0, 1) < draftShare {
			s.Status = plm.DraftStatus
		}
		nextID++
		return s
	}

	for _, row := range cat.Segments {
		target := f.IntRange(0, row.PlannedCount+2)
		for target > 0 {
			s := newStyle(intPtr(row.BrandID), intPtr(row.CategoryID), intPtr(row.SubgroupID))
			n := min(f.IntRange(1, 3), target)
			for i := 0; i < n; i++ {
				cw := plm.Colorway{
					Code:       f.Numerify("###"),
					Name:       f.SafeColor(),
					SegmentTag: strPtr(row.SegmentID),
				}
				if kind == plm.SnapshotThemes {
					cw.ThemeID = p.pickTheme(row, themeIDs)
				}
				s.Colorways = append(s.Colorways, cw)
			}
			target -= n
			styles = append(styles, s)
		}
	}

	// Incomplete records the reconciliation must ignore.
	noise := f.IntRange(1, 3)
	for i := 0; i < noise; i++ {
		s := newStyle(nil, intPtr(f.IntRange(1, 9)), intPtr(f.IntRange(1, 99)))
		s.Colorways = []plm.Colorway{{Code: f.Numerify("###"), Name: f.SafeColor(), SegmentTag: strPtr(f.Noun())}}
		styles = append(styles, s)
	}

	p.logger.Debug("generated demo snapshot", slog.String("kind", string(kind)), slog.Int("styles", len(styles)))
	return styles, nil
}

func (p *SnapshotProvider) pickTheme(row catalog.PlanRow, themeIDs []int) *int {
	if row.ThemeID != nil {
		return intPtr(*row.ThemeID)
	}
	if len(themeIDs) == 0 {
		return nil
	}
	return intPtr(themeIDs[p.gen.faker.IntRange(0, len(themeIDs)-1)])
}

// PastSeasonProvider returns random last-season metrics.
type PastSeasonProvider struct {
	gen *Generator
}

func NewPastSeasonProvider(gen *Generator) *PastSeasonProvider {
	return &PastSeasonProvider{gen: gen}
}

func (p *PastSeasonProvider) Metrics(_ context.Context, _ plm.StyleSummary) (pastseason.Metrics, error) {
	f := p.gen.faker
	return pastseason.Metrics{
		Sellout:        f.IntRange(50, 500),
		Markdown:       p.gen.amount(0, 40),
		ROS:            p.gen.amount(60, 95),
		FOBCostUSD:     p.gen.amount(15, 85),
		FabricCost:     p.gen.amount(8, 45),
		TrimCost:       p.gen.amount(1, 8),
		LaborCost:      p.gen.amount(5, 20),
		EmbroideryCost: p.gen.amount(0, 15),
	}, nil
}

// amount returns a value in [lo, hi] with two decimals.
func (g *Generator) amount(lo, hi float64) float64 {
	return decimal.NewFromFloat(g.faker.Float64Range(lo, hi)).Round(2).InexactFloat64()
}

// StyleLookup answers style lookups without PLM. Even ids carry a
// previous-season code, odd ids do not.
type StyleLookup struct {
	gen *Generator
}

func NewStyleLookup(gen *Generator) *StyleLookup {
	return &StyleLookup{gen: gen}
}

func (l *StyleLookup) GetStyle(_ context.Context, styleID int) (*plm.StyleSummary, error) {
	if styleID <= 0 {
		return nil, fmt.Errorf("%w: StyleId=%d", plm.ErrStyleNotFound, styleID)
	}
	s := &plm.StyleSummary{StyleID: styleID, StyleCode: fmt.Sprintf("DM-%05d", styleID)}
	if styleID%2 == 0 {
		s.PreviousSeasonCode = strPtr(strings.ToUpper(l.gen.faker.LetterN(3)) + l.gen.faker.Numerify("-####"))
	}
	return s, nil
}

// RandomFiller fills blank range sheet counts: actual between 60% and 100% of
// planned, draft between 0 and 5.
type RandomFiller struct {
	gen *Generator
}

func NewRandomFiller(gen *Generator) *RandomFiller {
	return &RandomFiller{gen: gen}
}

func (r *RandomFiller) Actual(planned int) int {
	share := decimal.NewFromFloat(r.gen.faker.Float64Range(0.6, 1.0))
	return int(decimal.NewFromInt(int64(planned)).Mul(share).Floor().IntPart())
}

func (r *RandomFiller) Draft() int {
	return r.gen.faker.IntRange(0, 5)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
