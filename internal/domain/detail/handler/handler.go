// Package handler serves the fabric detail sheet over HTTP.
package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/range-tracker/internal/domain/detail"
	"github.com/FACorreiaa/range-tracker/internal/domain/reconcile"
	"github.com/FACorreiaa/range-tracker/pkg/respond"
)

// DetailSheet is the part of detail.Service the handler needs.
type DetailSheet interface {
	All() []detail.Row
	BySegment(segment string) []detail.Row
	BySubgroup(subgroup string) []detail.Row
	ByFabric(fabricType string) []detail.Row
	Cell(segment, subgroup string) []detail.Row
	FabricSummaries() []detail.FabricSummary
	Reload(ctx context.Context) error
}

type DetailHandler struct {
	sheet DetailSheet
}

func NewDetailHandler(sheet DetailSheet) *DetailHandler {
	return &DetailHandler{sheet: sheet}
}

// Register mounts the routes on r.
func (h *DetailHandler) Register(r gin.IRouter) {
	g := r.Group("/range-details")
	g.GET("", h.All)
	g.GET("/lifestyle/:group", h.BySegment)
	g.GET("/product/:group", h.BySubgroup)
	g.GET("/fabric/:type", h.ByFabric)
	g.GET("/detail/:lifestyle/:product", h.Cell)
	g.GET("/summary/fabric", h.FabricSummary)
	g.POST("/reload", h.Reload)
}

func shapeOf(c *gin.Context) reconcile.Shape {
	return reconcile.ParseShape(c.Query("shape"))
}

func (h *DetailHandler) list(c *gin.Context, rows []detail.Row) {
	respond.List(c, detail.EncodeRows(rows, shapeOf(c)), len(rows))
}

func (h *DetailHandler) All(c *gin.Context) {
	h.list(c, h.sheet.All())
}

func (h *DetailHandler) BySegment(c *gin.Context) {
	h.list(c, h.sheet.BySegment(c.Param("group")))
}

func (h *DetailHandler) BySubgroup(c *gin.Context) {
	h.list(c, h.sheet.BySubgroup(c.Param("group")))
}

func (h *DetailHandler) ByFabric(c *gin.Context) {
	h.list(c, h.sheet.ByFabric(c.Param("type")))
}

func (h *DetailHandler) Cell(c *gin.Context) {
	lifestyle, product := c.Param("lifestyle"), c.Param("product")
	rows := h.sheet.Cell(lifestyle, product)
	respond.OK(c, gin.H{
		"lifeStyleGroup": lifestyle,
		"productGroup":   product,
		"count":          len(rows),
		"data":           detail.EncodeRows(rows, shapeOf(c)),
	})
}

func (h *DetailHandler) FabricSummary(c *gin.Context) {
	respond.OK(c, gin.H{"summary": detail.EncodeFabricSummaries(h.sheet.FabricSummaries(), shapeOf(c))})
}

func (h *DetailHandler) Reload(c *gin.Context) {
	if err := h.sheet.Reload(c.Request.Context()); err != nil {
		respond.Error(c, err, "Failed to reload range details")
		return
	}
	respond.OK(c, gin.H{"message": "Range details reloaded", "count": len(h.sheet.All())})
}
