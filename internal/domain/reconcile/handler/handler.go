// Package handler exposes plan-to-actual reconciliation over HTTP.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
	"github.com/FACorreiaa/range-tracker/pkg/respond"
)

// Reconciler is the part of reconcile.Service the handler needs.
type Reconciler interface {
	ReconcileSegments(ctx context.Context) ([]reconcile.Result, error)
	ReconcileThemes(ctx context.Context) ([]reconcile.Result, error)
	Banner(ctx context.Context) (*reconcile.Banner, error)
}

// ReconcileHandler serves segment, theme and banner reconciliations.
type ReconcileHandler struct {
	svc Reconciler
}

// NewReconcileHandler creates a new reconciliation handler
func NewReconcileHandler(svc Reconciler) *ReconcileHandler {
	return &ReconcileHandler{svc: svc}
}

// Register mounts the routes on r.
func (h *ReconcileHandler) Register(r gin.IRouter) {
	r.GET("/plm-ranges", h.Segments)
	r.GET("/plm-ranges/summary", h.SegmentSummary)
	r.GET("/plm-themes", h.Themes)
	r.GET("/plm-themes/summary", h.ThemeSummary)
	r.GET("/banner", h.Banner)
}

func shapeOf(c *gin.Context) reconcile.Shape {
	return reconcile.ParseShape(c.Query("shape"))
}

// Segments returns one row per segment plan row.
func (h *ReconcileHandler) Segments(c *gin.Context) {
	results, err := h.svc.ReconcileSegments(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Failed to calculate PLM ranges")
		return
	}
	respond.List(c, reconcile.EncodeSegments(results, shapeOf(c)), len(results))
}

// SegmentSummary returns segment totals overall and per life-style group.
func (h *ReconcileHandler) SegmentSummary(c *gin.Context) {
	results, err := h.svc.ReconcileSegments(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Failed to calculate PLM summary")
		return
	}
	respond.OK(c, gin.H{"summary": reconcile.EncodeSummary(reconcile.Summarize(results), shapeOf(c), false)})
}

// Themes returns one row per theme plus the SeasonAverage and Reference rows.
func (h *ReconcileHandler) Themes(c *gin.Context) {
	results, err := h.svc.ReconcileThemes(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Failed to calculate PLM themes")
		return
	}
	respond.List(c, reconcile.EncodeThemes(results, shapeOf(c)), len(results))
}

// ThemeSummary returns theme totals, the theme count and per-theme rows.
func (h *ReconcileHandler) ThemeSummary(c *gin.Context) {
	results, err := h.svc.ReconcileThemes(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Failed to calculate PLM theme summary")
		return
	}
	respond.OK(c, gin.H{"summary": reconcile.EncodeSummary(reconcile.SummarizeThemes(results), shapeOf(c), true)})
}

// Banner returns the segment and theme headlines.
func (h *ReconcileHandler) Banner(c *gin.Context) {
	b, err := h.svc.Banner(c.Request.Context())
	if err != nil {
		respond.Error(c, err, "Failed to calculate banner metrics")
		return
	}
	respond.OK(c, gin.H{"data": reconcile.EncodeBanner(*b, shapeOf(c))})
}
