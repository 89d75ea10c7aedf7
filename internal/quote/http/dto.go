package http

import (
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pricing"
	"github.com/fairwaylabs/teetime-backend/internal/quote"
)

// QuoteRequestBody is the checkout-boundary quote request.
type QuoteRequestBody struct {
	CourseID  string   `json:"course_id" binding:"required,uuid"`
	Date      string   `json:"date" binding:"required"`
	Time      string   `json:"time" binding:"required"`
	Players   int      `json:"players" binding:"required,min=1"`
	Holes     int      `json:"holes" binding:"required,oneof=9 18 27"`
	BasePrice *float64 `json:"base_price" binding:"omitempty,min=0"`
	PromoCode *string  `json:"promo_code"`
}

// Validate performs custom validation for QuoteRequestBody.
func (r *QuoteRequestBody) Validate() error {
	if _, err := pricing.ParseDate(r.Date); err != nil {
		return pricing.ErrInvalidDate
	}
	if _, err := pricing.ParseClock(r.Time); err != nil {
		return pricing.ErrInvalidTime
	}
	return nil
}

// QuoteResponse is the signed quote sent back to the client. Field names
// are part of the payment contract and must stay stable.
type QuoteResponse struct {
	Currency      string    `json:"currency"`
	TaxRate       float64   `json:"tax_rate"`
	SubtotalCents int64     `json:"subtotal_cents"`
	DiscountCents int64     `json:"discount_cents"`
	TaxCents      int64     `json:"tax_cents"`
	TotalCents    int64     `json:"total_cents"`
	QuoteHash     string    `json:"quote_hash"`
	ExpiresAt     time.Time `json:"expires_at"`
	PromoCode     *string   `json:"promo_code,omitempty"`
}

func NewQuoteResponse(q *quote.Quote) QuoteResponse {
	return QuoteResponse{
		Currency:      q.Currency,
		TaxRate:       q.TaxRate,
		SubtotalCents: q.SubtotalCents,
		DiscountCents: q.DiscountCents,
		TaxCents:      q.TaxCents,
		TotalCents:    q.TotalCents,
		QuoteHash:     q.QuoteHash,
		ExpiresAt:     q.ExpiresAt,
		PromoCode:     q.PromoCode,
	}
}

// VerifyRequestBody is the client's unmodified re-send of a quote before
// payment authorization.
type VerifyRequestBody struct {
	Currency      string    `json:"currency" binding:"required"`
	TaxRate       float64   `json:"tax_rate"`
	SubtotalCents int64     `json:"subtotal_cents"`
	DiscountCents int64     `json:"discount_cents"`
	TaxCents      int64     `json:"tax_cents"`
	TotalCents    int64     `json:"total_cents"`
	QuoteHash     string    `json:"quote_hash" binding:"required"`
	ExpiresAt     time.Time `json:"expires_at" binding:"required"`
}

// Validate performs custom validation for VerifyRequestBody.
func (r *VerifyRequestBody) Validate() error {
	return nil
}

func (r *VerifyRequestBody) ToSubmission() quote.VerifySubmission {
	return quote.VerifySubmission{
		Currency:      r.Currency,
		TaxRate:       r.TaxRate,
		SubtotalCents: r.SubtotalCents,
		DiscountCents: r.DiscountCents,
		TaxCents:      r.TaxCents,
		TotalCents:    r.TotalCents,
		QuoteHash:     r.QuoteHash,
		ExpiresAt:     r.ExpiresAt,
	}
}

// VerifyResponse confirms the amount the caller may authorize.
type VerifyResponse struct {
	Valid      bool   `json:"valid"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}
