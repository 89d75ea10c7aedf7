package http

import (
	"net/http"

	"github.com/fairwaylabs/teetime-backend/internal/auth"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/response"
	"github.com/fairwaylabs/teetime-backend/internal/quote"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service quote.Service
}

func NewHandler(service quote.Service) *Handler {
	return &Handler{service: service}
}

// Create prices the requested slot and returns a signed, expiring quote.
// Works for anonymous visitors; an authenticated user's identity is passed
// to the coupon collaborator for per-user promo restrictions.
func (h *Handler) Create(c *gin.Context) {
	var body QuoteRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	q, err := h.service.BuildQuote(c.Request.Context(), quote.BuildRequest{
		CourseID:  body.CourseID,
		Date:      body.Date,
		Time:      body.Time,
		Players:   body.Players,
		Holes:     body.Holes,
		BasePrice: body.BasePrice,
		PromoCode: body.PromoCode,
		UserID:    auth.GetUserID(c),
		UserEmail: auth.GetUserEmail(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewQuoteResponse(q))
}

// Verify checks a re-submitted quote before payment authorization.
func (h *Handler) Verify(c *gin.Context) {
	var body VerifyRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.service.Verify(body.ToSubmission()); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyResponse{
		Valid:      true,
		TotalCents: body.TotalCents,
		Currency:   body.Currency,
	})
}
