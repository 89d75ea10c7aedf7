package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers auth and user management routes.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, sysAdminMiddleware gin.HandlerFunc) {
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	g.GET("/me", authMiddleware, h.Me)

	admin := g.Group("/users")
	admin.Use(authMiddleware, sysAdminMiddleware)
	{
		admin.GET("", h.List)
		admin.GET("/:id", h.Get)
		admin.PATCH("/:id", h.Update)
	}
}
