// Package handler serves the range counter sheet over HTTP.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
	"github.com/FACorreiaa/range-tracker/pkg/respond"
)

// RangeSheet is the part of legacy.Service the handler needs.
type RangeSheet interface {
	All() []reconcile.Result
	BySegment(segment string) []reconcile.Result
	BySubgroup(subgroup string) []reconcile.Result
	Summary() reconcile.Summary
	Reload(ctx context.Context) error
}

type RangeHandler struct {
	sheet RangeSheet
}

func NewRangeHandler(sheet RangeSheet) *RangeHandler {
	return &RangeHandler{sheet: sheet}
}

// Register mounts the routes on r.
func (h *RangeHandler) Register(r gin.IRouter) {
	g := r.Group("/ranges")
	g.GET("", h.All)
	g.GET("/summary", h.Summary)
	g.GET("/lifestyle/:group", h.BySegment)
	g.GET("/product/:group", h.BySubgroup)
	g.POST("/reload", h.Reload)
}

func (h *RangeHandler) list(c *gin.Context, rows []reconcile.Result) {
	respond.List(c, reconcile.EncodeSegments(rows, reconcile.ParseShape(c.Query("shape"))), len(rows))
}

func (h *RangeHandler) All(c *gin.Context) {
	h.list(c, h.sheet.All())
}

func (h *RangeHandler) BySegment(c *gin.Context) {
	h.list(c, h.sheet.BySegment(c.Param("group")))
}

func (h *RangeHandler) BySubgroup(c *gin.Context) {
	h.list(c, h.sheet.BySubgroup(c.Param("group")))
}

func (h *RangeHandler) Summary(c *gin.Context) {
	shape := reconcile.ParseShape(c.Query("shape"))
	respond.OK(c, gin.H{"summary": reconcile.EncodeSummary(h.sheet.Summary(), shape, false)})
}

func (h *RangeHandler) Reload(c *gin.Context) {
	if err := h.sheet.Reload(c.Request.Context()); err != nil {
		respond.Error(c, err, "Failed to reload range data")
		return
	}
	respond.OK(c, gin.H{"message": "Range data reloaded", "count": len(h.sheet.All())})
}
