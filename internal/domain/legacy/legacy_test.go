package legacy

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
)

type fixedFiller struct {
	actualShare int
	draft       int
}

func (f fixedFiller) Actual(planned int) int { return planned * f.actualShare / 100 }
func (f fixedFiller) Draft() int             { return f.draft }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeRangeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []any{"Marka", "Kategori", "Life Style Grup", "Ürün Alt Grup", "P_Opt", "G_Opt", "T_Opt"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(t.TempDir(), "RangeSayac.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

var sheetRows = [][]any{
	{"Acme", "Menswear", "Urban", "Shirts", 10, 7, 2},
	{"Acme", "Menswear", "Urban", "Pants", 4, 9, 0},
	{"Acme", "Menswear", "Mono", "Shirts", 20, nil, nil},
}

func TestService_ZeroFillerByDefault(t *testing.T) {
	svc := NewService(writeRangeWorkbook(t, sheetRows), "", nil, testLogger())
	require.NoError(t, svc.Reload(context.Background()))

	rows := svc.All()
	require.Len(t, rows, 3)

	assert.Equal(t, reconcile.Result{
		Brand: "Acme", Category: "Menswear", Segment: "Urban", Subgroup: "Shirts",
		Planned: 10, Draft: 2, Actual: 7, Diff: 3, Ratio: 70,
	}, rows[0])

	// Actual above planned is capped.
	assert.Equal(t, 4, rows[1].Actual)
	assert.Equal(t, 0, rows[1].Diff)
	assert.Equal(t, 100, rows[1].Ratio)

	assert.Equal(t, 0, rows[2].Actual)
	assert.Equal(t, 0, rows[2].Draft)
	assert.Equal(t, 20, rows[2].Diff)
}

func TestService_FillerSuppliesBlankCounts(t *testing.T) {
	svc := NewService(writeRangeWorkbook(t, sheetRows), "", fixedFiller{actualShare: 75, draft: 3}, testLogger())
	require.NoError(t, svc.Reload(context.Background()))

	row := svc.All()[2]
	assert.Equal(t, 15, row.Actual)
	assert.Equal(t, 3, row.Draft)
	assert.Equal(t, 75, row.Ratio)

	// Present counts are never replaced.
	assert.Equal(t, 7, svc.All()[0].Actual)
}

func TestService_FiltersAndSummary(t *testing.T) {
	svc := NewService(writeRangeWorkbook(t, sheetRows), "", nil, testLogger())
	require.NoError(t, svc.Reload(context.Background()))

	assert.Len(t, svc.BySegment("Urban"), 2)
	assert.Len(t, svc.BySubgroup("Shirts"), 2)
	assert.Empty(t, svc.BySegment("Unknown"))

	s := svc.Summary()
	assert.Equal(t, 34, s.Overall.Planned)
	assert.Equal(t, 11, s.Overall.Actual)
	assert.Equal(t, 2, s.Overall.Draft)
	require.Len(t, s.Groups, 2)
	assert.Equal(t, "Urban", s.Groups[0].Label)
	assert.Equal(t, 14, s.Groups[0].Planned)
	assert.Equal(t, 11, s.Groups[0].Actual)
}

func TestService_MissingSheetServesNothing(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "none.xlsx"), "", nil, testLogger())

	require.Error(t, svc.Reload(context.Background()))
	assert.Empty(t, svc.All())
	assert.Equal(t, reconcile.Totals{}, svc.Summary().Overall)
}
