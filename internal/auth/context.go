package auth

import "github.com/gin-gonic/gin"

const (
	ctxUserID    = "auth.userID"
	ctxUserEmail = "auth.userEmail"
)

func setIdentity(c *gin.Context, claims *Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxUserEmail, claims.Email)
}

// GetUserID returns the authenticated user's ID, or "" outside an
// authenticated request.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// GetUserEmail returns the authenticated user's email, or "".
func GetUserEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmail)
}
