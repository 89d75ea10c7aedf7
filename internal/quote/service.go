package quote

import (
	"context"
	"math"
	"time"

	"github.com/fairwaylabs/teetime-backend/internal/pricing"
)

// Hole-count multipliers applied to the per-player price before totals.
// Fixed platform constants, not configurable per course.
const (
	holeFactor9  = 0.6
	holeFactor18 = 1.0
	holeFactor27 = 1.4
)

// DefaultTTL is the quote lifetime when the caller does not set one.
const DefaultTTL = 10 * time.Minute

// BuildRequest is one quote request across the checkout boundary.
type BuildRequest struct {
	CourseID  string
	Date      string
	Time      string
	Players   int
	Holes     int
	BasePrice *float64 // fallback when the course has no base product
	PromoCode *string
	UserID    string
	UserEmail string
}

// VerifySubmission is the client's unmodified re-send of a quote at
// payment-authorization time.
type VerifySubmission struct {
	Currency      string
	TaxRate       float64
	SubtotalCents int64
	DiscountCents int64
	TaxCents      int64
	TotalCents    int64
	QuoteHash     string
	ExpiresAt     time.Time
}

// Service builds signed quotes from engine prices and verifies them before
// payment. It is a pure value producer: no quote is persisted here.
type Service interface {
	BuildQuote(ctx context.Context, req BuildRequest) (*Quote, error)
	Verify(sub VerifySubmission) error
}

// Config carries the platform-level quote settings.
type Config struct {
	Currency string
	TaxRate  float64
	TTL      time.Duration
}

type service struct {
	pricing pricing.Service
	coupons CouponValidator
	signer  *Signer
	cfg     Config
	now     func() time.Time
}

func NewService(pricingService pricing.Service, coupons CouponValidator, signer *Signer, cfg Config) Service {
	return NewServiceWithClock(pricingService, coupons, signer, cfg, time.Now)
}

func NewServiceWithClock(pricingService pricing.Service, coupons CouponValidator, signer *Signer, cfg Config, now func() time.Time) Service {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &service{
		pricing: pricingService,
		coupons: coupons,
		signer:  signer,
		cfg:     cfg,
		now:     now,
	}
}

func (s *service) BuildQuote(ctx context.Context, req BuildRequest) (*Quote, error) {
	factor, err := holeFactor(req.Holes)
	if err != nil {
		return nil, err
	}

	result, err := s.pricing.Calculate(ctx, pricing.CalculateRequest{
		CourseID:     req.CourseID,
		Date:         req.Date,
		Time:         req.Time,
		Players:      req.Players,
		FallbackBase: req.BasePrice,
	})
	if err != nil {
		return nil, err
	}

	adjustedPerPlayer := result.FinalPricePerPlayer * factor
	subtotalCents := usdToCents(adjustedPerPlayer * float64(req.Players))

	var discountUSD float64
	var promo *string
	if req.PromoCode != nil && *req.PromoCode != "" {
		d, err := s.coupons.ValidateCoupon(ctx, *req.PromoCode, CouponUser{
			UserID:    req.UserID,
			UserEmail: req.UserEmail,
		})
		if err != nil {
			return nil, err
		}
		subtotalUSD := float64(subtotalCents) / 100
		switch d.Type {
		case DiscountPercentage:
			discountUSD = subtotalUSD * d.Value / 100
		case DiscountFixed:
			discountUSD = d.Value
		}
		promo = req.PromoCode
	}

	// Discount never exceeds the subtotal and is never negative.
	discountCents := usdToCents(discountUSD)
	if discountCents < 0 {
		discountCents = 0
	}
	if discountCents > subtotalCents {
		discountCents = subtotalCents
	}

	taxable := subtotalCents - discountCents
	if taxable < 0 {
		taxable = 0
	}
	taxCents := int64(math.Round(float64(taxable) * s.cfg.TaxRate))
	totalCents := taxable + taxCents

	expiresAt := s.now().UTC().Add(s.cfg.TTL).Truncate(time.Second)

	q := &Quote{
		Currency:      s.cfg.Currency,
		TaxRate:       s.cfg.TaxRate,
		SubtotalCents: subtotalCents,
		DiscountCents: discountCents,
		TaxCents:      taxCents,
		TotalCents:    totalCents,
		ExpiresAt:     expiresAt,
		PromoCode:     promo,
	}
	q.QuoteHash = s.signer.Sign(signedFields(q))
	return q, nil
}

// Verify recomputes the hash over the submitted fields and checks expiry.
// A hash mismatch always wins over expiry so a tampered quote is reported
// as invalid, never merely stale.
func (s *service) Verify(sub VerifySubmission) error {
	fields := SignedFields{
		Currency:      sub.Currency,
		TaxRate:       sub.TaxRate,
		SubtotalCents: sub.SubtotalCents,
		DiscountCents: sub.DiscountCents,
		TaxCents:      sub.TaxCents,
		TotalCents:    sub.TotalCents,
		ExpiresAtUnix: sub.ExpiresAt.Unix(),
	}
	if !s.signer.Matches(fields, sub.QuoteHash) {
		return ErrInvalidHash
	}
	if s.now().UTC().After(sub.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

func signedFields(q *Quote) SignedFields {
	return SignedFields{
		Currency:      q.Currency,
		TaxRate:       q.TaxRate,
		SubtotalCents: q.SubtotalCents,
		DiscountCents: q.DiscountCents,
		TaxCents:      q.TaxCents,
		TotalCents:    q.TotalCents,
		ExpiresAtUnix: q.ExpiresAt.Unix(),
	}
}

func holeFactor(holes int) (float64, error) {
	switch holes {
	case 9:
		return holeFactor9, nil
	case 18:
		return holeFactor18, nil
	case 27:
		return holeFactor27, nil
	default:
		return 0, ErrInvalidHoles
	}
}

// usdToCents converts a dollar amount to whole cents, rounding half away
// from zero.
func usdToCents(usd float64) int64 {
	return int64(math.Round(usd * 100))
}
