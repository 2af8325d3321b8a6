// Package handler provides HTTP handlers for the plan catalog.
package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/range-tracker/internal/domain/plan/catalog"
	"github.com/FACorreiaa/range-tracker/pkg/respond"
)

// CatalogStore is the part of catalog.Store the handler needs.
type CatalogStore interface {
	catalog.Reader
	Reload(ctx context.Context) error
}

// CatalogHandler serves catalog inspection, search and reload.
type CatalogHandler struct {
	store CatalogStore
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(store CatalogStore) *CatalogHandler {
	return &CatalogHandler{store: store}
}

// Register mounts the routes on r.
func (h *CatalogHandler) Register(r gin.IRouter) {
	g := r.Group("/catalog")
	g.GET("", h.Info)
	g.GET("/search", h.Search)
	g.GET("/segments/:label", h.BySegment)
	g.GET("/subgroups/:label", h.BySubgroup)
	g.POST("/reload", h.Reload)
}

type catalogInfo struct {
	Source   string     `json:"source"`
	LoadedAt *time.Time `json:"loadedAt"`
	Segments int        `json:"segments"`
	Themes   int        `json:"themes"`
}

func infoOf(c *catalog.Catalog) catalogInfo {
	info := catalogInfo{Source: c.Source, Segments: len(c.Segments), Themes: len(c.Themes)}
	if !c.LoadedAt.IsZero() {
		loaded := c.LoadedAt
		info.LoadedAt = &loaded
	}
	return info
}

// Info reports what is loaded.
func (h *CatalogHandler) Info(c *gin.Context) {
	respond.OK(c, gin.H{"data": infoOf(h.store.Current())})
}

type searchQuery struct {
	Q     string `form:"q" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,gte=1,lte=100"`
}

// Search fuzzy-matches plan labels.
func (h *CatalogHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respond.BadRequest(c, "q is required and limit must be between 1 and 100")
		return
	}
	if q.Limit == 0 {
		q.Limit = 10
	}
	hits := h.store.Current().Search(q.Q, q.Limit)
	respond.List(c, hits, len(hits))
}

// BySegment lists plan rows of one life-style group.
func (h *CatalogHandler) BySegment(c *gin.Context) {
	rows := h.store.Current().BySegmentLabel(c.Param("label"))
	respond.List(c, rows, len(rows))
}

// BySubgroup lists plan rows of one product subgroup.
func (h *CatalogHandler) BySubgroup(c *gin.Context) {
	rows := h.store.Current().BySubgroupLabel(c.Param("label"))
	respond.List(c, rows, len(rows))
}

// Reload re-reads the plan. Sets that fail to load are left empty.
func (h *CatalogHandler) Reload(c *gin.Context) {
	if err := h.store.Reload(c.Request.Context()); err != nil {
		respond.Error(c, err, "Failed to reload plan catalog")
		return
	}
	respond.OK(c, gin.H{"message": "Plan catalog reloaded", "data": infoOf(h.store.Current())})
}
