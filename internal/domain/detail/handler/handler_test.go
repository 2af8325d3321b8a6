package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/range-tracker/internal/domain/detail"
)

type fakeSheet struct {
	rows      []detail.Row
	reloadErr error
}

func (f *fakeSheet) All() []detail.Row { return f.rows }

func (f *fakeSheet) where(keep func(detail.Row) bool) []detail.Row {
	out := []detail.Row{}
	for _, r := range f.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeSheet) BySegment(s string) []detail.Row {
	return f.where(func(r detail.Row) bool { return r.Segment == s })
}

func (f *fakeSheet) BySubgroup(s string) []detail.Row {
	return f.where(func(r detail.Row) bool { return r.Subgroup == s })
}

func (f *fakeSheet) ByFabric(s string) []detail.Row {
	return f.where(func(r detail.Row) bool { return r.FabricType == s })
}

func (f *fakeSheet) Cell(seg, sub string) []detail.Row {
	return f.where(func(r detail.Row) bool { return r.Segment == seg && r.Subgroup == sub })
}

func (f *fakeSheet) FabricSummaries() []detail.FabricSummary {
	return []detail.FabricSummary{{FabricType: "Denim", TotalPlanned: 15, RowCount: 2}}
}

func (f *fakeSheet) Reload(context.Context) error { return f.reloadErr }

func sheet() *fakeSheet {
	return &fakeSheet{rows: []detail.Row{
		{Segment: "Urban", Subgroup: "Shirts", FabricType: "Denim", Planned: 10, Actual: 4, Diff: 6, Ratio: 40},
		{Segment: "Mono", Subgroup: "Shirts", FabricType: "Denim", Planned: 5, Actual: 1, Diff: 4, Ratio: 20},
	}}
}

func hit(t *testing.T, s DetailSheet, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewDetailHandler(s).Register(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		path  string
		count int
	}{
		{"/api/range-details", 2},
		{"/api/range-details/lifestyle/Urban", 1},
		{"/api/range-details/product/Shirts", 2},
		{"/api/range-details/fabric/Denim", 2},
		{"/api/range-details/fabric/Twill", 0},
		{"/api/range-details/detail/Mono/Shirts", 1},
	}
	for _, tt := range tests {
		w, body := hit(t, sheet(), http.MethodGet, tt.path)
		assert.Equal(t, http.StatusOK, w.Code, tt.path)
		assert.EqualValues(t, tt.count, body["count"], tt.path)
	}
}

func TestLegacyShapeAndSummary(t *testing.T) {
	_, body := hit(t, sheet(), http.MethodGet, "/api/range-details/lifestyle/Urban?shape=legacy")
	row := body["data"].([]any)[0].(map[string]any)
	assert.Equal(t, "Denim", row["kumasTipi"])
	assert.Equal(t, "40%", row["oran"])

	_, body = hit(t, sheet(), http.MethodGet, "/api/range-details/summary/fabric?shape=legacy")
	sum := body["summary"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 15, sum["toplamPlan"])
	assert.EqualValues(t, 2, sum["satirSayisi"])
}

func TestReload(t *testing.T) {
	w, _ := hit(t, sheet(), http.MethodPost, "/api/range-details/reload")
	assert.Equal(t, http.StatusOK, w.Code)

	failing := sheet()
	failing.reloadErr = errors.New("open RangeDetay.xlsx: no such file")
	w, body := hit(t, failing, http.MethodPost, "/api/range-details/reload")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to reload range details", body["error"])
}
