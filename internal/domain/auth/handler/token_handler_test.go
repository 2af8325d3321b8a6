package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/range-tracker/pkg/plm"
)

type fakeTokens struct {
	cached    *plm.Token
	issued    int
	revoked   int
	revokeErr error
	issueErr  error
}

func (f *fakeTokens) AccessToken(context.Context) (*plm.Token, error) {
	if f.cached != nil {
		return f.cached, nil
	}
	return f.issue()
}

func (f *fakeTokens) issue() (*plm.Token, error) {
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	f.issued++
	f.cached = &plm.Token{
		AccessToken: fmt.Sprintf("tok-%d", f.issued),
		TokenType:   "Bearer",
		Expiry:      time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	return f.cached, nil
}

func (f *fakeTokens) Refresh(context.Context) (*plm.Token, error) {
	f.cached = nil
	return f.issue()
}

func (f *fakeTokens) Info(context.Context) (plm.TokenInfo, error) {
	if f.cached == nil {
		return plm.TokenInfo{}, nil
	}
	exp := f.cached.Expiry
	return plm.TokenInfo{HasToken: true, IsValid: true, ExpiryTime: &exp, TokenType: f.cached.TokenType}, nil
}

func (f *fakeTokens) Revoke(context.Context) error {
	f.revoked++
	f.cached = nil
	return f.revokeErr
}

func do(t *testing.T, tokens TokenManager, method, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewTokenHandler(tokens).Register(r.Group("/api"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestToken(t *testing.T) {
	tokens := &fakeTokens{}

	w, body := do(t, tokens, http.MethodGet, "/api/token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok-1", body["accessToken"])
	assert.Equal(t, "Bearer", body["tokenType"])
	assert.Equal(t, "2026-01-01T12:00:00Z", body["expiresAt"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestInfo_NeverExposesToken(t *testing.T) {
	tokens := &fakeTokens{}
	_, _ = tokens.issue()

	_, body := do(t, tokens, http.MethodGet, "/api/token/info")
	info := body["tokenInfo"].(map[string]any)
	assert.Equal(t, true, info["hasToken"])
	assert.NotContains(t, fmt.Sprint(body), "tok-1")
}

func TestRefresh_RevokesExistingToken(t *testing.T) {
	tokens := &fakeTokens{}
	_, _ = tokens.issue()

	_, body := do(t, tokens, http.MethodPost, "/api/token/refresh")
	assert.Equal(t, "tok-2", body["accessToken"])
	assert.Equal(t, "Token refreshed successfully", body["message"])
	assert.Equal(t, 1, tokens.revoked)

	fresh := &fakeTokens{}
	do(t, fresh, http.MethodPost, "/api/token/refresh")
	assert.Zero(t, fresh.revoked)
}

func TestRevokeFailure(t *testing.T) {
	tokens := &fakeTokens{revokeErr: fmt.Errorf("%w: status 400", plm.ErrTokenUnavailable)}
	_, _ = tokens.issue()

	w, body := do(t, tokens, http.MethodPost, "/api/token/revoke")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Failed to revoke token", body["error"])
	assert.Nil(t, tokens.cached)
}

func TestTokenFailure(t *testing.T) {
	tokens := &fakeTokens{issueErr: fmt.Errorf("%w: invalid_grant", plm.ErrTokenUnavailable)}

	w, body := do(t, tokens, http.MethodGet, "/api/token")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, body["message"], "invalid_grant")
}
