package quote

import (
	"net/http"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/apperror"
)

var (
	// ErrInvalidHash deliberately carries a generic message: a signature
	// mismatch must not reveal which field was tampered with.
	ErrInvalidHash  = apperror.New(http.StatusBadRequest, "invalid quote")
	ErrExpired      = apperror.New(http.StatusGone, "quote expired, request a new quote")
	ErrInvalidHoles = apperror.New(http.StatusBadRequest, "holes must be 9, 18 or 27")
	ErrInvalidPromo = apperror.New(http.StatusBadRequest, "invalid promo code")
)

// Quote is a short-lived signed price offer. It is never persisted by this
// package; the checkout flow stores an immutable copy next to the booking it
// pays for.
type Quote struct {
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
