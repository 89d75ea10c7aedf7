package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers pricing routes. Calculation is public; every
// record mutation and the dedupe routine are admin-only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, sysAdminMiddleware gin.HandlerFunc) {
	g.POST("/pricing/calculate", h.Calculate)

	admin := g.Group("/admin/pricing")
	admin.Use(authMiddleware, sysAdminMiddleware)
	{
		admin.GET("/rule-sets/:id", h.GetRuleSet)

		admin.POST("/seasons", h.CreateSeason)
		admin.PUT("/seasons/:id", h.UpdateSeason)
		admin.DELETE("/seasons/:id", h.DeleteSeason)

		admin.POST("/time-bands", h.CreateTimeBand)
		admin.PUT("/time-bands/:id", h.UpdateTimeBand)
		admin.DELETE("/time-bands/:id", h.DeleteTimeBand)

		admin.POST("/price-rules", h.CreatePriceRule)
		admin.PUT("/price-rules/:id", h.UpdatePriceRule)
		admin.DELETE("/price-rules/:id", h.DeletePriceRule)

		admin.POST("/overrides", h.CreateOverride)
		admin.PUT("/overrides/:id", h.UpdateOverride)
		admin.DELETE("/overrides/:id", h.DeleteOverride)

		admin.PUT("/base-products/:id", h.UpsertBaseProduct)
		admin.PUT("/canonical-bands/:id", h.ReplaceCanonicalBands)

		admin.POST("/dedupe", h.Dedupe)
	}
}
