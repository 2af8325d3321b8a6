// Package detail serves the fabric-level breakdown of the range plan.
package detail

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/FACorreiaa/range-tracker/internal/domain/plan/excel"
	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
)

// Detail sheet headers.
const (
	colSegment     = "Life Style Grup"
	colSubgroup    = "Ürün Alt Grup"
	colFabricType  = "Kumaş Tipi"
	colDescription = "Açıklama"
	colPlanned     = "P_Opt"
	colDraft       = "T_Opt"
	colActual      = "G_Opt"
)

// Row is one segment/subgroup/fabric cell of the detail sheet. Diff and Ratio
// are recomputed from the counts on load.
type Row struct {
	Segment     string
	Subgroup    string
	FabricType  string
	Description string
	Planned     int
	Draft       int
	Actual      int
	Diff        int
	Ratio       int
}

// FabricSummary totals the planned options of one fabric type.
type FabricSummary struct {
	FabricType   string
	TotalPlanned int
	RowCount     int
}

// Service holds the detail rows loaded from the workbook.
type Service struct {
	path   string
	sheet  string
	logger *slog.Logger
	rows   atomic.Pointer[[]Row]
}

// NewService creates a detail service. Call Reload to load the sheet.
func NewService(path, sheet string, logger *slog.Logger) *Service {
	s := &Service{path: path, sheet: sheet, logger: logger}
	empty := []Row{}
	s.rows.Store(&empty)
	return s
}

// Reload re-reads the workbook. On failure the service serves no rows and the
// error is returned.
func (s *Service) Reload(_ context.Context) error {
	rows, err := s.load()
	if err != nil {
		empty := []Row{}
		s.rows.Store(&empty)
		s.logger.Error("failed to load range detail", slog.String("file", s.path), slog.Any("error", err))
		return err
	}

	s.rows.Store(&rows)
	s.logger.Info("range detail loaded", slog.Int("rows", len(rows)))
	return nil
}

func (s *Service) load() ([]Row, error) {
	parser, err := excel.NewParserFromFile(s.path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	table, err := parser.ReadTable(s.sheet, colSegment, colSubgroup, colFabricType, colPlanned)
	if err != nil {
		return nil, fmt.Errorf("failed to read range detail: %w", err)
	}

	rows := make([]Row, 0, len(table.Rows))
	for _, r := range table.Rows {
		row, err := rowFromExcel(r)
		if err != nil {
			s.logger.Warn("skipping detail row", slog.Any("error", err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowFromExcel(r excel.Row) (Row, error) {
	row := Row{
		Segment:     r.Text(colSegment),
		Subgroup:    r.Text(colSubgroup),
		FabricType:  r.Text(colFabricType),
		Description: r.Text(colDescription),
	}

	var err error
	if row.Planned, err = r.Int(colPlanned); err != nil {
		return row, err
	}
	if row.Draft, err = r.Int(colDraft); err != nil {
		return row, err
	}
	if row.Actual, err = r.Int(colActual); err != nil {
		return row, err
	}
	row.Diff = row.Planned - row.Actual
	row.Ratio = reconcile.CompletionRatio(row.Actual, row.Planned)
	return row, nil
}

// All returns every row in sheet order.
func (s *Service) All() []Row {
	return *s.rows.Load()
}

func (s *Service) filter(keep func(Row) bool) []Row {
	out := make([]Row, 0)
	for _, r := range s.All() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// BySegment returns rows of one life-style group.
func (s *Service) BySegment(segment string) []Row {
	return s.filter(func(r Row) bool { return r.Segment == segment })
}

// BySubgroup returns rows of one product subgroup.
func (s *Service) BySubgroup(subgroup string) []Row {
	return s.filter(func(r Row) bool { return r.Subgroup == subgroup })
}

// ByFabric returns rows of one fabric type.
func (s *Service) ByFabric(fabricType string) []Row {
	return s.filter(func(r Row) bool { return r.FabricType == fabricType })
}

// Cell returns rows matching both the life-style group and the subgroup.
func (s *Service) Cell(segment, subgroup string) []Row {
	return s.filter(func(r Row) bool { return r.Segment == segment && r.Subgroup == subgroup })
}

// FabricSummaries totals planned options per fabric type in first-seen order.
func (s *Service) FabricSummaries() []FabricSummary {
	index := make(map[string]int)
	out := make([]FabricSummary, 0)
	for _, r := range s.All() {
		i, ok := index[r.FabricType]
		if !ok {
			i = len(out)
			index[r.FabricType] = i
			out = append(out, FabricSummary{FabricType: r.FabricType})
		}
		out[i].TotalPlanned += r.Planned
		out[i].RowCount++
	}
	return out
}
