package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers course routes. Browsing is public; mutations are
// admin-only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, sysAdminMiddleware gin.HandlerFunc) {
	group := g.Group("/courses")

	// === Public Routes ===
	group.GET("", h.List)            // List active courses
	group.GET("/:id", h.Get)         // Course details
	group.GET("/:id/photo", h.Photo) // Course photo / thumbnail

	// === Admin Routes ===
	admin := group.Group("")
	admin.Use(authMiddleware, sysAdminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
		admin.POST("/:id/photo", h.UploadPhoto)
	}
}
