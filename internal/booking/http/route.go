package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. All of them require a logged-in
// user; confirmation is reserved for admins (the payment callback path).
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, sysAdminMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.POST("", h.Create)            // Reserve a tee time with a verified quote
		group.GET("", h.List)               // List own bookings (admins: all)
		group.GET("/:id", h.Get)            // Booking details
		group.POST("/:id/cancel", h.Cancel) // Cancel a booking
	}

	group.POST("/:id/confirm", sysAdminMiddleware, h.Confirm)
}
