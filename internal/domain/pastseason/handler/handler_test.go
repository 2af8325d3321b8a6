package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/range-tracker/internal/domain/pastseason"
	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

type fakeStyles struct{}

func (fakeStyles) GetStyle(_ context.Context, id int) (*plm.StyleSummary, error) {
	if id != 41 {
		return nil, fmt.Errorf("%w: StyleId=%d", plm.ErrStyleNotFound, id)
	}
	code := "S-41-PS"
	return &plm.StyleSummary{StyleID: 41, StyleCode: "S-41", PreviousSeasonCode: &code}, nil
}

type fakeProvider struct{}

func (fakeProvider) Metrics(context.Context, plm.StyleSummary) (pastseason.Metrics, error) {
	return pastseason.Metrics{Sellout: 120, ROS: 81.25}, nil
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := pastseason.NewService(fakeStyles{}, fakeProvider{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	NewPastSeasonHandler(svc, fakeStyles{}).Register(r.Group("/api"))
	return r
}

func call(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newRouter().ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func TestPastSeason(t *testing.T) {
	w, body := call(t, http.MethodGet, "/api/plm-style/41/past-season", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["hasData"])
	assert.Equal(t, "S-41-PS", body["previousSeasonStyleCode"])
	assert.EqualValues(t, 120, body["data"].(map[string]any)["sellout"])
}

func TestPastSeasonByBody(t *testing.T) {
	w, body := call(t, http.MethodPost, "/api/past-season-data", `{"StyleId": 41}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 41, body["styleId"])

	w, _ = call(t, http.MethodPost, "/api/past-season-data", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotFoundAndBadID(t *testing.T) {
	w, body := call(t, http.MethodGet, "/api/plm-style/7/past-season", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, body["success"])

	w, _ = call(t, http.MethodGet, "/api/plm-style/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStyle(t *testing.T) {
	_, body := call(t, http.MethodGet, "/api/plm-style/41", "")
	data := body["data"].(map[string]any)
	assert.Equal(t, "S-41", data["StyleCode"])
	assert.Equal(t, "S-41-PS", data["UserDefinedField7Id"])
}
