package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/apperror"
	"github.com/gin-gonic/gin"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error writes an error as JSON. AppErrors carry their own status and
// message; anything else is logged and reported as a plain 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
