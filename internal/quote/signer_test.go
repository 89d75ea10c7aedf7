package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigner(t *testing.T) {
	fields := SignedFields{
		Currency:      "USD",
		TaxRate:       0.16,
		SubtotalCents: 10000,
		DiscountCents: 1000,
		TaxCents:      1440,
		TotalCents:    10440,
		ExpiresAtUnix: 1748781000,
	}

	t.Run("signature is stable for identical fields", func(t *testing.T) {
		s := NewSigner("key")
		assert.Equal(t, s.Sign(fields), s.Sign(fields))
		assert.True(t, s.Matches(fields, s.Sign(fields)))
	})

	t.Run("canonical serialization covers every field", func(t *testing.T) {
		assert.Equal(t,
			"currency=USD&tax_rate=0.16&subtotal_cents=10000&discount_cents=1000&tax_cents=1440&total_cents=10440&expires_at=1748781000",
			canonical(fields))
	})

	t.Run("different key yields a different signature", func(t *testing.T) {
		a := NewSigner("key-a")
		b := NewSigner("key-b")
		assert.NotEqual(t, a.Sign(fields), b.Sign(fields))
		assert.False(t, b.Matches(fields, a.Sign(fields)))
	})

	t.Run("field change yields a different signature", func(t *testing.T) {
		s := NewSigner("key")
		changed := fields
		changed.TotalCents++
		assert.NotEqual(t, s.Sign(fields), s.Sign(changed))
	})
}
