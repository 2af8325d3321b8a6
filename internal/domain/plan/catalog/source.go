package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/FACorreiaa/range-tracker/internal/domain/plan/excel"
)

// Source loads plan targets from some backing store.
type Source interface {
	Name() string
	LoadSegments(ctx context.Context) ([]PlanRow, error)
	LoadThemes(ctx context.Context) ([]ThemeTarget, error)
}

// Workbook column headers.
const (
	colBrand         = "Marka"
	colBrandID       = "Marka_Id"
	colCategory      = "Kategori"
	colCategoryID    = "Kategori_Id"
	colSegment       = "LifeStyleGrup"
	colSegmentID     = "LifeStyleGrup_Id"
	colSubgroup      = "ÜrünAltGrup"
	colSubgroupID    = "UrunAltGrup_Id"
	colThemeID       = "Tema_Id"
	colThemeName     = "TemaAdi"
	colPlannedCount  = "P_Opt"
	subgroupFallback = "UrunAltGrup"
)

var (
	segmentColumns = []string{colBrandID, colCategoryID, colSegmentID, colSubgroupID, colPlannedCount}
	themeColumns   = []string{colThemeID, colPlannedCount}
)

// ExcelSource reads the segment plan and theme targets from two workbooks.
type ExcelSource struct {
	SegmentPath  string
	SegmentSheet string
	ThemePath    string
	ThemeSheet   string

	logger *slog.Logger
}

func NewExcelSource(segmentPath, segmentSheet, themePath, themeSheet string, logger *slog.Logger) *ExcelSource {
	return &ExcelSource{
		SegmentPath:  segmentPath,
		SegmentSheet: segmentSheet,
		ThemePath:    themePath,
		ThemeSheet:   themeSheet,
		logger:       logger,
	}
}

func (s *ExcelSource) Name() string { return "excel" }

func (s *ExcelSource) LoadSegments(_ context.Context) ([]PlanRow, error) {
	table, err := readWorkbook(s.SegmentPath, s.SegmentSheet, segmentColumns)
	if err != nil {
		return nil, err
	}

	rows := make([]PlanRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		row, err := segmentFromExcel(r)
		if err != nil {
			s.logger.Warn("skipping plan row", slog.String("file", s.SegmentPath), slog.Any("error", err))
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *ExcelSource) LoadThemes(_ context.Context) ([]ThemeTarget, error) {
	table, err := readWorkbook(s.ThemePath, s.ThemeSheet, themeColumns)
	if err != nil {
		return nil, err
	}

	targets := make([]ThemeTarget, 0, len(table.Rows))
	for _, r := range table.Rows {
		themeID, err := r.Int(colThemeID)
		if err != nil {
			s.logger.Warn("skipping theme row", slog.String("file", s.ThemePath), slog.Any("error", err))
			continue
		}
		planned, err := r.Int(colPlannedCount)
		if err != nil {
			s.logger.Warn("skipping theme row", slog.String("file", s.ThemePath), slog.Any("error", err))
			continue
		}
		targets = append(targets, ThemeTarget{
			ThemeID:      themeID,
			ThemeName:    r.Text(colThemeName),
			PlannedCount: planned,
		})
	}
	return targets, nil
}

func readWorkbook(path, sheet string, required []string) (*excel.Table, error) {
	parser, err := excel.NewParserFromFile(path)
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	return parser.ReadTable(sheet, required...)
}

func segmentFromExcel(r excel.Row) (PlanRow, error) {
	var row PlanRow
	var err error

	if row.BrandID, err = r.Int(colBrandID); err != nil {
		return row, err
	}
	if row.CategoryID, err = r.Int(colCategoryID); err != nil {
		return row, err
	}
	if row.SubgroupID, err = r.Int(colSubgroupID); err != nil {
		return row, err
	}
	if row.PlannedCount, err = r.Int(colPlannedCount); err != nil {
		return row, err
	}
	if row.ThemeID, err = r.OptionalInt(colThemeID); err != nil {
		return row, err
	}

	row.SegmentID = normalizeID(r.Text(colSegmentID))
	row.BrandLabel = r.Text(colBrand)
	row.CategoryLabel = r.Text(colCategory)
	row.SegmentLabel = r.Text(colSegment)
	row.SubgroupLabel = r.Text(colSubgroup)
	if row.SubgroupLabel == "" {
		row.SubgroupLabel = r.Text(subgroupFallback)
	}
	return row, nil
}

// normalizeID renders whole numbers without a decimal part so "15" and "15.0"
// compare equal to a colorway tag of 15.
func normalizeID(raw string) string {
	raw = strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return raw
}

// segmentRecord is the CSV layout of the segment plan; headers match the workbook.
type segmentRecord struct {
	Brand        string `csv:"Marka"`
	BrandID      string `csv:"Marka_Id"`
	Category     string `csv:"Kategori"`
	CategoryID   string `csv:"Kategori_Id"`
	Segment      string `csv:"LifeStyleGrup"`
	SegmentID    string `csv:"LifeStyleGrup_Id"`
	Subgroup     string `csv:"UrunAltGrup"`
	SubgroupID   string `csv:"UrunAltGrup_Id"`
	ThemeID      string `csv:"Tema_Id,omitempty"`
	PlannedCount string `csv:"P_Opt"`
}

type themeRecord struct {
	ThemeName    string `csv:"TemaAdi"`
	ThemeID      string `csv:"Tema_Id"`
	PlannedCount string `csv:"P_Opt"`
}

// CSVSource reads the same layouts as ExcelSource from comma-separated files.
type CSVSource struct {
	SegmentPath string
	ThemePath   string

	logger *slog.Logger
}

func NewCSVSource(segmentPath, themePath string, logger *slog.Logger) *CSVSource {
	return &CSVSource{SegmentPath: segmentPath, ThemePath: themePath, logger: logger}
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) LoadSegments(_ context.Context) ([]PlanRow, error) {
	var records []segmentRecord
	if err := unmarshalCSVFile(s.SegmentPath, &records); err != nil {
		return nil, err
	}

	rows := make([]PlanRow, 0, len(records))
	for i, rec := range records {
		row, err := rec.toPlanRow()
		if err != nil {
			s.logger.Warn("skipping plan row",
				slog.String("file", s.SegmentPath),
				slog.Int("line", i+2),
				slog.Any("error", err),
			)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVSource) LoadThemes(_ context.Context) ([]ThemeTarget, error) {
	var records []themeRecord
	if err := unmarshalCSVFile(s.ThemePath, &records); err != nil {
		return nil, err
	}

	targets := make([]ThemeTarget, 0, len(records))
	for i, rec := range records {
		themeID, err1 := parseCount(rec.ThemeID)
		planned, err2 := parseCount(rec.PlannedCount)
		if err1 != nil || err2 != nil {
			s.logger.Warn("skipping theme row",
				slog.String("file", s.ThemePath),
				slog.Int("line", i+2),
			)
			continue
		}
		targets = append(targets, ThemeTarget{
			ThemeID:      themeID,
			ThemeName:    strings.TrimSpace(rec.ThemeName),
			PlannedCount: planned,
		})
	}
	return targets, nil
}

func unmarshalCSVFile(path string, out any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.Unmarshal(f, out); err != nil {
		return fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	return nil
}

func (rec segmentRecord) toPlanRow() (PlanRow, error) {
	row := PlanRow{
		BrandLabel:    strings.TrimSpace(rec.Brand),
		CategoryLabel: strings.TrimSpace(rec.Category),
		SegmentID:     normalizeID(rec.SegmentID),
		SegmentLabel:  strings.TrimSpace(rec.Segment),
		SubgroupLabel: strings.TrimSpace(rec.Subgroup),
	}

	var err error
	if row.BrandID, err = parseCount(rec.BrandID); err != nil {
		return row, fmt.Errorf("Marka_Id: %w", err)
	}
	if row.CategoryID, err = parseCount(rec.CategoryID); err != nil {
		return row, fmt.Errorf("Kategori_Id: %w", err)
	}
	if row.SubgroupID, err = parseCount(rec.SubgroupID); err != nil {
		return row, fmt.Errorf("UrunAltGrup_Id: %w", err)
	}
	if row.PlannedCount, err = parseCount(rec.PlannedCount); err != nil {
		return row, fmt.Errorf("P_Opt: %w", err)
	}
	if strings.TrimSpace(rec.ThemeID) != "" {
		themeID, err := parseCount(rec.ThemeID)
		if err != nil {
			return row, fmt.Errorf("Tema_Id: %w", err)
		}
		row.ThemeID = &themeID
	}
	return row, nil
}

// parseCount parses a whole number; blank is 0.
func parseCount(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	return int(math.Round(f)), nil
}
