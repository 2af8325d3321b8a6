// Package legacy serves the range counter spreadsheet that predates the PLM
// integration. Its rows share the reconciliation result model.
package legacy

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/FACorreiaa/range-tracker/internal/domain/plan/excel"
	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
)

// Range sheet headers.
const (
	colBrand    = "Marka"
	colCategory = "Kategori"
	colSegment  = "Life Style Grup"
	colSubgroup = "Ürün Alt Grup"
	colPlanned  = "P_Opt"
	colActual   = "G_Opt"
	colDraft    = "T_Opt"
)

// Filler supplies counts the sheet leaves blank.
type Filler interface {
	Actual(planned int) int
	Draft() int
}

// ZeroFiller treats blank counts as zero.
type ZeroFiller struct{}

func (ZeroFiller) Actual(int) int { return 0 }
func (ZeroFiller) Draft() int     { return 0 }

// Service holds the rows of the range sheet.
type Service struct {
	path   string
	sheet  string
	filler Filler
	logger *slog.Logger
	rows   atomic.Pointer[[]reconcile.Result]
}

// NewService creates a legacy range service. A nil filler means ZeroFiller.
func NewService(path, sheet string, filler Filler, logger *slog.Logger) *Service {
	if filler == nil {
		filler = ZeroFiller{}
	}
	s := &Service{path: path, sheet: sheet, filler: filler, logger: logger}
	empty := []reconcile.Result{}
	s.rows.Store(&empty)
	return s
}

// Reload re-reads the sheet. On failure the service serves no rows.
func (s *Service) Reload(_ context.Context) error {
	rows, err := s.load()
	if err != nil {
		empty := []reconcile.Result{}
		s.rows.Store(&empty)
		s.logger.Error("failed to load range sheet", slog.String("file", s.path), slog.Any("error", err))
		return err
	}

	s.rows.Store(&rows)
	s.logger.Info("range sheet loaded", slog.Int("rows", len(rows)))
	return nil
}

func (s *Service) load() ([]reconcile.Result, error) {
	parser, err := excel.NewParserFromFile(s.path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	table, err := parser.ReadTable(s.sheet, colSegment, colSubgroup, colPlanned)
	if err != nil {
		return nil, fmt.Errorf("failed to read range sheet: %w", err)
	}

	rows := make([]reconcile.Result, 0, len(table.Rows))
	for _, r := range table.Rows {
		row, err := s.process(r)
		if err != nil {
			s.logger.Warn("skipping range row", slog.Any("error", err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// process fills blank counts and caps actual at planned.
func (s *Service) process(r excel.Row) (reconcile.Result, error) {
	planned, err := r.Int(colPlanned)
	if err != nil {
		return reconcile.Result{}, err
	}

	actual, err := r.OptionalInt(colActual)
	if err != nil {
		return reconcile.Result{}, err
	}
	if actual == nil {
		n := s.filler.Actual(planned)
		actual = &n
	}
	if *actual > planned {
		*actual = planned
	}

	draft, err := r.OptionalInt(colDraft)
	if err != nil {
		return reconcile.Result{}, err
	}
	if draft == nil {
		n := s.filler.Draft()
		draft = &n
	}

	return reconcile.Result{
		Brand:    r.Text(colBrand),
		Category: r.Text(colCategory),
		Segment:  r.Text(colSegment),
		Subgroup: r.Text(colSubgroup),
		Planned:  planned,
		Draft:    *draft,
		Actual:   *actual,
		Diff:     planned - *actual,
		Ratio:    reconcile.CompletionRatio(*actual, planned),
	}, nil
}

// All returns every row in sheet order.
func (s *Service) All() []reconcile.Result {
	return *s.rows.Load()
}

// BySegment returns rows of one life-style group.
func (s *Service) BySegment(segment string) []reconcile.Result {
	out := make([]reconcile.Result, 0)
	for _, r := range s.All() {
		if r.Segment == segment {
			out = append(out, r)
		}
	}
	return out
}

// BySubgroup returns rows of one product subgroup.
func (s *Service) BySubgroup(subgroup string) []reconcile.Result {
	out := make([]reconcile.Result, 0)
	for _, r := range s.All() {
		if r.Subgroup == subgroup {
			out = append(out, r)
		}
	}
	return out
}

// Summary rolls the sheet up by life-style group.
func (s *Service) Summary() reconcile.Summary {
	return reconcile.Summarize(s.All())
}
