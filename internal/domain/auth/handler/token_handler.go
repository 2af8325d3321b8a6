// Package handler exposes the PLM access token lifecycle over HTTP.
package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/range-tracker/pkg/plm"
	"github.com/FACorreiaa/range-tracker/pkg/respond"
)

// TokenManager is the part of plm.TokenManager the handler needs.
type TokenManager interface {
	AccessToken(ctx context.Context) (*plm.Token, error)
	Refresh(ctx context.Context) (*plm.Token, error)
	Info(ctx context.Context) (plm.TokenInfo, error)
	Revoke(ctx context.Context) error
}

// TokenHandler serves the token routes
type TokenHandler struct {
	tokens TokenManager
	now    func() time.Time
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokens TokenManager) *TokenHandler {
	return &TokenHandler{tokens: tokens, now: time.Now}
}

// Register mounts the routes on r.
func (h *TokenHandler) Register(r gin.IRouter) {
	g := r.Group("/token")
	g.GET("", h.Token)
	g.GET("/info", h.Info)
	g.POST("/revoke", h.Revoke)
	g.POST("/refresh", h.Refresh)
}

func (h *TokenHandler) tokenBody(tok *plm.Token) gin.H {
	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return gin.H{
		"accessToken": tok.AccessToken,
		"tokenType":   tokenType,
		"expiresAt":   tok.Expiry,
		"timestamp":   h.now().UTC(),
	}
}

// Token returns a valid access token, requesting one if needed.
func (h *TokenHandler) Token(c *gin.Context) {
	tok, err := h.tokens.AccessToken(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Failed to acquire token")
		return
	}
	respond.OK(c, h.tokenBody(tok))
}

// Info describes the cached token without exposing it.
func (h *TokenHandler) Info(c *gin.Context) {
	info, err := h.tokens.Info(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Failed to get token info")
		return
	}
	respond.OK(c, gin.H{"tokenInfo": info, "timestamp": h.now().UTC()})
}

// Revoke revokes and forgets the cached token.
func (h *TokenHandler) Revoke(c *gin.Context) {
	if err := h.tokens.Revoke(c.Request.Context()); err != nil {
		respond.Error(c, err, "Failed to revoke token")
		return
	}
	respond.OK(c, gin.H{"message": "Token revoked successfully", "timestamp": h.now().UTC()})
}

// Refresh revokes the cached token, if any, and requests a new one.
func (h *TokenHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	info, err := h.tokens.Info(ctx)
	if err != nil {
		respond.Error(c, err, "Failed to refresh token")
		return
	}
	if info.HasToken {
		if err := h.tokens.Revoke(ctx); err != nil {
			respond.Error(c, err, "Failed to refresh token")
			return
		}
	}

	tok, err := h.tokens.Refresh(ctx)
	if err != nil {
		respond.Error(c, err, "Failed to refresh token")
		return
	}
	body := h.tokenBody(tok)
	body["message"] = "Token refreshed successfully"
	respond.OK(c, body)
}
