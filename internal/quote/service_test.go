package quote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/teetime-backend/internal/pricing"
)

var quoteNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// stubPricing satisfies pricing.Service for quote building; only Calculate
// is ever called from this package.
type stubPricing struct {
	pricing.Service
	perPlayer float64
	err       error
}

func (s *stubPricing) Calculate(_ context.Context, req pricing.CalculateRequest) (*pricing.CalcResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &pricing.CalcResult{
		FinalPricePerPlayer: s.perPlayer,
		TotalPrice:          s.perPlayer * float64(req.Players),
		Players:             req.Players,
	}, nil
}

func newTestService(perPlayer float64, promos map[string]Discount, cfg Config) Service {
	return NewServiceWithClock(
		&stubPricing{perPlayer: perPlayer},
		NewStaticCouponValidator(promos),
		NewSigner("test-signing-key"),
		cfg,
		func() time.Time { return quoteNow },
	)
}

func baseRequest() BuildRequest {
	return BuildRequest{
		CourseID: "course-1",
		Date:     "2025-06-07",
		Time:     "10:00",
		Players:  2,
		Holes:    18,
		UserID:   "user-1",
	}
}

func TestBuildQuoteMath(t *testing.T) {
	ctx := context.Background()

	t.Run("subtotal, tax and total", func(t *testing.T) {
		promos := map[string]Discount{"SAVE10": {Type: DiscountFixed, Value: 10}}
		svc := newTestService(50, promos, Config{Currency: "USD", TaxRate: 0.16})

		req := baseRequest()
		code := "SAVE10"
		req.PromoCode = &code

		q, err := svc.BuildQuote(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, "USD", q.Currency)
		assert.Equal(t, int64(10000), q.SubtotalCents) // 2 players x $50 x 18-hole factor 1.0
		assert.Equal(t, int64(1000), q.DiscountCents)
		assert.Equal(t, int64(1440), q.TaxCents) // (10000-1000) * 0.16
		assert.Equal(t, int64(10440), q.TotalCents)
		assert.NotEmpty(t, q.QuoteHash)
		assert.Equal(t, quoteNow.Add(DefaultTTL), q.ExpiresAt)
		require.NotNil(t, q.PromoCode)
		assert.Equal(t, "SAVE10", *q.PromoCode)
	})

	t.Run("percentage discount", func(t *testing.T) {
		promos := map[string]Discount{"QUARTER": {Type: DiscountPercentage, Value: 25}}
		svc := newTestService(40, promos, Config{Currency: "USD", TaxRate: 0})

		req := baseRequest()
		req.Players = 1
		code := "QUARTER"
		req.PromoCode = &code

		q, err := svc.BuildQuote(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(4000), q.SubtotalCents)
		assert.Equal(t, int64(1000), q.DiscountCents)
		assert.Equal(t, int64(3000), q.TotalCents)
	})

	t.Run("discount is clamped to the subtotal", func(t *testing.T) {
		promos := map[string]Discount{"BIG": {Type: DiscountFixed, Value: 500}}
		svc := newTestService(30, promos, Config{Currency: "USD", TaxRate: 0.1})

		req := baseRequest()
		req.Players = 1
		code := "BIG"
		req.PromoCode = &code

		q, err := svc.BuildQuote(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, int64(3000), q.SubtotalCents)
		assert.Equal(t, int64(3000), q.DiscountCents)
		assert.Equal(t, int64(0), q.TaxCents)
		assert.Equal(t, int64(0), q.TotalCents)
	})

	t.Run("unknown promo code is rejected", func(t *testing.T) {
		svc := newTestService(50, nil, Config{Currency: "USD"})

		req := baseRequest()
		code := "NOPE"
		req.PromoCode = &code

		_, err := svc.BuildQuote(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidPromo)
	})

	t.Run("hole factors", func(t *testing.T) {
		svc := newTestService(50, nil, Config{Currency: "USD"})

		cases := []struct {
			holes int
			want  int64
		}{
			{9, 3000},  // 50 * 0.6
			{18, 5000}, // 50 * 1.0
			{27, 7000}, // 50 * 1.4
		}
		for _, tc := range cases {
			req := baseRequest()
			req.Players = 1
			req.Holes = tc.holes

			q, err := svc.BuildQuote(ctx, req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, q.SubtotalCents, "holes=%d", tc.holes)
		}
	})

	t.Run("unsupported hole count", func(t *testing.T) {
		svc := newTestService(50, nil, Config{Currency: "USD"})
		req := baseRequest()
		req.Holes = 12
		_, err := svc.BuildQuote(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidHoles)
	})
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(50, nil, Config{Currency: "USD", TaxRate: 0.08})

	build := func(t *testing.T) *Quote {
		t.Helper()
		q, err := svc.BuildQuote(ctx, baseRequest())
		require.NoError(t, err)
		return q
	}

	submission := func(q *Quote) VerifySubmission {
		return VerifySubmission{
			Currency:      q.Currency,
			TaxRate:       q.TaxRate,
			SubtotalCents: q.SubtotalCents,
			DiscountCents: q.DiscountCents,
			TaxCents:      q.TaxCents,
			TotalCents:    q.TotalCents,
			QuoteHash:     q.QuoteHash,
			ExpiresAt:     q.ExpiresAt,
		}
	}

	t.Run("round trip verifies", func(t *testing.T) {
		q := build(t)
		assert.NoError(t, svc.Verify(submission(q)))
	})

	t.Run("any mutated field invalidates the hash", func(t *testing.T) {
		q := build(t)

		mutations := map[string]func(*VerifySubmission){
			"currency": func(s *VerifySubmission) { s.Currency = "EUR" },
			"tax rate": func(s *VerifySubmission) { s.TaxRate = 0 },
			"subtotal": func(s *VerifySubmission) { s.SubtotalCents-- },
			"discount": func(s *VerifySubmission) { s.DiscountCents += 100 },
			"tax":      func(s *VerifySubmission) { s.TaxCents = 0 },
			"total":    func(s *VerifySubmission) { s.TotalCents -= 500 },
			"expiry":   func(s *VerifySubmission) { s.ExpiresAt = s.ExpiresAt.Add(time.Hour) },
			"hash":     func(s *VerifySubmission) { s.QuoteHash = s.QuoteHash[:len(s.QuoteHash)-1] + "0" },
		}
		for name, mutate := range mutations {
			sub := submission(q)
			mutate(&sub)
			assert.ErrorIs(t, svc.Verify(sub), ErrInvalidHash, "mutated %s", name)
		}
	})

	t.Run("expired quote", func(t *testing.T) {
		q := build(t)

		late := NewServiceWithClock(
			&stubPricing{perPlayer: 50},
			NewStaticCouponValidator(nil),
			NewSigner("test-signing-key"),
			Config{Currency: "USD", TaxRate: 0.08},
			func() time.Time { return quoteNow.Add(DefaultTTL + time.Second) },
		)
		assert.ErrorIs(t, late.Verify(submission(q)), ErrExpired)
	})

	t.Run("valid exactly at expiry", func(t *testing.T) {
		q := build(t)

		atExpiry := NewServiceWithClock(
			&stubPricing{perPlayer: 50},
			NewStaticCouponValidator(nil),
			NewSigner("test-signing-key"),
			Config{Currency: "USD", TaxRate: 0.08},
			func() time.Time { return q.ExpiresAt },
		)
		assert.NoError(t, atExpiry.Verify(submission(q)))
	})

	t.Run("tampered and expired reports invalid, not stale", func(t *testing.T) {
		q := build(t)
		sub := submission(q)
		sub.TotalCents -= 100

		late := NewServiceWithClock(
			&stubPricing{perPlayer: 50},
			NewStaticCouponValidator(nil),
			NewSigner("test-signing-key"),
			Config{Currency: "USD", TaxRate: 0.08},
			func() time.Time { return quoteNow.Add(time.Hour) },
		)
		assert.ErrorIs(t, late.Verify(sub), ErrInvalidHash)
	})

	t.Run("different signing key rejects the quote", func(t *testing.T) {
		q := build(t)

		rotated := NewServiceWithClock(
			&stubPricing{perPlayer: 50},
			NewStaticCouponValidator(nil),
			NewSigner("rotated-key"),
			Config{Currency: "USD", TaxRate: 0.08},
			func() time.Time { return quoteNow },
		)
		assert.ErrorIs(t, rotated.Verify(submission(q)), ErrInvalidHash)
	})
}
