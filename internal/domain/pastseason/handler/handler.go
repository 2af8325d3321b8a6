// Package handler serves past-season style data over HTTP.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/range-tracker/internal/domain/pastseason"
	"github.com/FACorreiaa/range-tracker/pkg/plm"
	"github.com/FACorreiaa/range-tracker/pkg/respond"
)

// PastSeason is the part of pastseason.Service the handler needs.
type PastSeason interface {
	Get(ctx context.Context, styleID int) (*pastseason.Result, error)
}

// StyleLookup fetches a raw style projection.
type StyleLookup interface {
	GetStyle(ctx context.Context, styleID int) (*plm.StyleSummary, error)
}

type PastSeasonHandler struct {
	svc    PastSeason
	styles StyleLookup
}

func NewPastSeasonHandler(svc PastSeason, styles StyleLookup) *PastSeasonHandler {
	return &PastSeasonHandler{svc: svc, styles: styles}
}

// Register mounts the routes on r.
func (h *PastSeasonHandler) Register(r gin.IRouter) {
	r.GET("/plm-style/:styleId", h.Style)
	r.GET("/plm-style/:styleId/past-season", h.PastSeason)
	r.POST("/past-season-data", h.PastSeasonByBody)
}

type pastSeasonRequest struct {
	StyleID int `json:"StyleId" binding:"required,gt=0"`
}

type pastSeasonResponse struct {
	Success bool `json:"success"`
	*pastseason.Result
}

func styleIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("styleId"))
	if err != nil || id <= 0 {
		respond.BadRequest(c, "styleId must be a positive integer")
		return 0, false
	}
	return id, true
}

// Style returns the PLM projection of one style.
func (h *PastSeasonHandler) Style(c *gin.Context) {
	id, ok := styleIDParam(c)
	if !ok {
		return
	}
	style, err := h.styles.GetStyle(c.Request.Context(), id)
	if err != nil {
		respond.Error(c, err, "Failed to get PLM style")
		return
	}
	respond.OK(c, gin.H{"data": style})
}

func (h *PastSeasonHandler) PastSeason(c *gin.Context) {
	id, ok := styleIDParam(c)
	if !ok {
		return
	}
	h.write(c, id)
}

func (h *PastSeasonHandler) PastSeasonByBody(c *gin.Context) {
	var req pastSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "StyleId must be a positive integer")
		return
	}
	h.write(c, req.StyleID)
}

func (h *PastSeasonHandler) write(c *gin.Context, styleID int) {
	res, err := h.svc.Get(c.Request.Context(), styleID)
	if err != nil {
		respond.Error(c, err, "Failed to get past season data")
		return
	}
	c.JSON(http.StatusOK, pastSeasonResponse{Success: true, Result: res})
}
