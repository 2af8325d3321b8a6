// Package e2etest runs the assembled service against fake PLM and SSO servers.
package e2etest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/range-tracker/cmd/api"
	"github.com/FACorreiaa/range-tracker/internal/server"
	"github.com/FACorreiaa/range-tracker/pkg/config"
)

const tenant = "ACME_TST"

const segmentsCSV = `Marka,Marka_Id,Kategori,Kategori_Id,LifeStyleGrup,LifeStyleGrup_Id,UrunAltGrup,UrunAltGrup_Id,Tema_Id,P_Opt
Acme,1,Menswear,10,Urban,7,Shirts,100,,5
Acme,1,Menswear,10,Mono,8,Shirts,100,,4
`

const themesCSV = `TemaAdi,Tema_Id,P_Opt
Summer Nights,501,6
`

const snapshot = `{"value": [
  {"StyleId": 1, "StyleCode": "S-1", "BrandId": 1, "DivisionId": 10, "ProductSubSubCategoryId": 100, "Status": 2, "SeasonId": 3,
   "StyleColorways": [
     {"Code": "01", "Name": "Black", "ColorwayUserField4": "7", "ThemeId": 501},
     {"Code": "02", "Name": "White", "ColorwayUserField4": " 7 ", "ThemeId": 501},
     {"Code": "03", "Name": "Red", "ColorwayUserField4": "8", "ThemeId": null}
   ]},
  {"StyleId": 2, "StyleCode": "S-2", "BrandId": 1, "DivisionId": 10, "ProductSubSubCategoryId": 100, "Status": 1, "SeasonId": 3,
   "StyleColorways": [
     {"Code": "01", "Name": "Navy", "ColorwayUserField4": "7", "ThemeId": 501}
   ]},
  {"StyleId": 3, "StyleCode": "S-3", "BrandId": null, "DivisionId": 10, "ProductSubSubCategoryId": 100, "Status": 2, "SeasonId": 3,
   "StyleColorways": [
     {"Code": "01", "Name": "Grey", "ColorwayUserField4": "7", "ThemeId": 501}
   ]}
]}`

type fakePLM struct {
	tokensIssued atomic.Int32
	failStyles   atomic.Bool
}

func (f *fakePLM) sso(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token.oauth2":
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "password", r.PostForm.Get("grant_type"))
			n := f.tokensIssued.Add(1)
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":3600}`, n)
		case "/revoke_token.oauth2":
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
}

func (f *fakePLM) odata(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer tok-") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		prefix := "/" + tenant + "/FASHIONPLM/odata2/api/odata2/"
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case prefix + "Style":
			if f.failStyles.Load() {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, `{"error":"upstream"}`)
				return
			}
			_, _ = io.WriteString(w, snapshot)
		case prefix + "STYLE":
			if strings.Contains(r.URL.RawQuery, "StyleId%20eq%201") {
				_, _ = io.WriteString(w, `{"value":[{"StyleId":1,"StyleCode":"S-1","UserDefinedField7Id":"S-1-OLD"}]}`)
				return
			}
			_, _ = io.WriteString(w, `{"value":[]}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newStack(t *testing.T) (*fakePLM, http.Handler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	plmFake := &fakePLM{}
	sso := plmFake.sso(t)
	t.Cleanup(sso.Close)
	odata := plmFake.odata(t)
	t.Cleanup(odata.Close)

	dir := t.TempDir()
	cfg := &config.Config{
		PLM: config.PLMConfig{
			TenantID:         tenant,
			IONAPIURL:        odata.URL,
			ProviderURL:      sso.URL,
			ClientID:         "client",
			ClientSecret:     "secret",
			ServiceAccessKey: "saak",
			ServiceSecretKey: "sask",
			SeasonID:         3,
			ArchivedStatus:   103,
			RequestsPerSec:   100,
			RequestBurst:     10,
			Timeout:          5 * time.Second,
			TokenMargin:      time.Minute,
			DefaultTokenTTL:  time.Hour,
		},
		Catalog: config.CatalogConfig{
			Source:      "csv",
			SegmentPath: writeFile(t, dir, "segments.csv", segmentsCSV),
			ThemePath:   writeFile(t, dir, "themes.csv", themesCSV),
			DetailPath:  filepath.Join(dir, "missing-detail.xlsx"),
			LegacyPath:  filepath.Join(dir, "missing-range.xlsx"),
		},
		Observability: config.ObservabilityConfig{MetricsEnabled: true},
	}
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps, err := api.InitDependencies(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(deps.Cleanup)

	srv := server.New(server.Config{Addr: "127.0.0.1:0"}, logger, deps.Metrics, deps.Routes()...)
	return plmFake, srv.Handler()
}

func getJSON(t *testing.T, h http.Handler, method, path string) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w.Code, body
}

func rowBySegment(t *testing.T, body map[string]any, segment string) map[string]any {
	t.Helper()
	for _, item := range body["data"].([]any) {
		row := item.(map[string]any)
		if row["segment"] == segment {
			return row
		}
	}
	t.Fatalf("no row for segment %q", segment)
	return nil
}

func TestSegmentReconciliation(t *testing.T) {
	_, h := newStack(t)

	code, body := getJSON(t, h, http.MethodGet, "/api/plm-ranges")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	urban := rowBySegment(t, body, "Urban")
	assert.EqualValues(t, 5, urban["planned"])
	assert.EqualValues(t, 1, urban["actual"], "padded tag \" 7 \" must not match")
	assert.EqualValues(t, 1, urban["draft"])
	assert.EqualValues(t, 4, urban["diff"])
	assert.Equal(t, "20%", urban["ratio"])

	mono := rowBySegment(t, body, "Mono")
	assert.EqualValues(t, 1, mono["actual"])
	assert.Equal(t, "25%", mono["ratio"])
}

func TestThemeSummaryAndBanner(t *testing.T) {
	_, h := newStack(t)

	code, body := getJSON(t, h, http.MethodGet, "/api/plm-themes/summary")
	require.Equal(t, http.StatusOK, code)
	overall := body["summary"].(map[string]any)["overall"].(map[string]any)
	assert.NotNil(t, overall["themeCount"])

	code, body = getJSON(t, h, http.MethodGet, "/api/banner?shape=legacy")
	require.Equal(t, http.StatusOK, code)
	banner := body["data"].(map[string]any)
	assert.Contains(t, banner, "urunKategorisi")
	assert.Contains(t, banner, "tema")
}

func TestPLMFailureSurfacesAs503(t *testing.T) {
	plmFake, h := newStack(t)
	plmFake.failStyles.Store(true)

	code, body := getJSON(t, h, http.MethodGet, "/api/plm-ranges")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, false, body["success"])
}

func TestTokenReuseAndRefresh(t *testing.T) {
	plmFake, h := newStack(t)

	getJSON(t, h, http.MethodGet, "/api/plm-ranges")
	getJSON(t, h, http.MethodGet, "/api/plm-themes")
	assert.EqualValues(t, 1, plmFake.tokensIssued.Load())

	code, body := getJSON(t, h, http.MethodPost, "/api/token/refresh")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "tok-2", body["accessToken"])
}

func TestPastSeasonLookup(t *testing.T) {
	_, h := newStack(t)

	code, body := getJSON(t, h, http.MethodGet, "/api/plm-style/1/past-season")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["hasData"])
	assert.Equal(t, "S-1-OLD", body["previousSeasonStyleCode"])

	code, _ = getJSON(t, h, http.MethodGet, "/api/plm-style/99/past-season")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestUnreadableSheetsServeEmptyLists(t *testing.T) {
	_, h := newStack(t)

	code, body := getJSON(t, h, http.MethodGet, "/api/range-details")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])

	code, body = getJSON(t, h, http.MethodGet, "/api/ranges")
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["count"])
}
