package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers quote routes. Both endpoints are public: quotes
// are requested before login during checkout, and verification happens
// server-to-server at payment time.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/quotes")
	{
		group.POST("", h.Create)         // Price a slot and sign the quote
		group.POST("/verify", h.Verify)  // Check a quote before payment
	}
}
