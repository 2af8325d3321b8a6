package detail

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDetailWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	header := []any{"Life Style Grup", "Ürün Alt Grup", "Kumaş Tipi", "Açıklama", "P_Opt", "T_Opt", "G_Opt"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	path := filepath.Join(t.TempDir(), "RangeDetay.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func loadedService(t *testing.T) *Service {
	t.Helper()
	path := writeDetailWorkbook(t, [][]any{
		{"Urban", "Shirts", "Denim", "washed", 10, 1, 4},
		{"Urban", "Pants", "Twill", "", 6, 0, 6},
		{"Mono", "Shirts", "Denim", "raw", 5, 2, 1},
		{"Mono", "Knit", "Jersey", "", 8, 0, 0},
	})
	svc := NewService(path, "", testLogger())
	require.NoError(t, svc.Reload(context.Background()))
	return svc
}

func TestService_Reload(t *testing.T) {
	svc := loadedService(t)

	rows := svc.All()
	require.Len(t, rows, 4)
	assert.Equal(t, Row{
		Segment: "Urban", Subgroup: "Shirts", FabricType: "Denim", Description: "washed",
		Planned: 10, Draft: 1, Actual: 4, Diff: 6, Ratio: 40,
	}, rows[0])
	assert.Equal(t, 100, rows[1].Ratio)
	assert.Equal(t, 0, rows[3].Ratio)
}

func TestService_Filters(t *testing.T) {
	svc := loadedService(t)

	assert.Len(t, svc.BySegment("Urban"), 2)
	assert.Len(t, svc.BySubgroup("Shirts"), 2)
	assert.Len(t, svc.ByFabric("Denim"), 2)
	assert.Len(t, svc.Cell("Mono", "Shirts"), 1)

	none := svc.BySegment("Nope")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestService_FabricSummaries(t *testing.T) {
	svc := loadedService(t)

	assert.Equal(t, []FabricSummary{
		{FabricType: "Denim", TotalPlanned: 15, RowCount: 2},
		{FabricType: "Twill", TotalPlanned: 6, RowCount: 1},
		{FabricType: "Jersey", TotalPlanned: 8, RowCount: 1},
	}, svc.FabricSummaries())
}

func TestService_ReloadFailureEmptiesRows(t *testing.T) {
	svc := loadedService(t)
	svc.path = filepath.Join(t.TempDir(), "missing.xlsx")

	err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.Empty(t, svc.All())
	assert.Empty(t, svc.FabricSummaries())
}

func TestEncodeRows(t *testing.T) {
	rows := []Row{{Segment: "Urban", Subgroup: "Shirts", FabricType: "Denim", Planned: 10, Actual: 4, Diff: 6, Ratio: 40}}

	legacy, err := json.Marshal(EncodeRows(rows, reconcile.ShapeLegacy))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"lifeStyleGrup":"Urban","urunAltGrup":"Shirts","kumasTipi":"Denim","aciklama":"",
		"pOpt":10,"tOpt":0,"gOpt":4,"fark":6,"oran":"40%"}]`, string(legacy))

	summary, err := json.Marshal(EncodeFabricSummaries([]FabricSummary{{FabricType: "Denim", TotalPlanned: 15, RowCount: 2}}, reconcile.ShapeCamel))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"fabricType":"Denim","totalPlanned":15,"rowCount":2}]`, string(summary))
}
