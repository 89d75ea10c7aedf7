package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fairwaylabs/teetime-backend/internal/auth"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/response"
	"github.com/fairwaylabs/teetime-backend/internal/user"
)

// RequireSystemAdmin rejects callers without the system admin flag. It must
// run after auth.AuthRequired so the user ID is in the context.
func RequireSystemAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
			return
		}

		isAdmin, err := userService.IsSystemAdmin(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.ErrorResponse{Error: "unauthorized"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ErrorResponse{Error: "system admin access required"})
			return
		}

		c.Next()
	}
}
